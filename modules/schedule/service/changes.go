package service

import (
	"fmt"
	"time"

	"cfp-api/core/config"
	"cfp-api/modules/schedule/entity"

	"github.com/google/uuid"
)

// HasChanges compares the draft slots with the slots of the latest release
// as multisets. The loose comparison looks at submission, room and start;
// the exact one also at end, visibility and description. Before the first
// release any draft slot counts as a change.
func HasChanges(draft []entity.TalkSlot, released []entity.TalkSlot, hasRelease bool, mode string) bool {
	if !hasRelease {
		return len(draft) > 0
	}
	if len(draft) != len(released) {
		return true
	}
	counts := make(map[string]int, len(draft))
	for i := range draft {
		counts[slotKey(&draft[i], mode)]++
	}
	for i := range released {
		key := slotKey(&released[i], mode)
		if counts[key] == 0 {
			return true
		}
		counts[key]--
	}
	return false
}

func slotKey(s *entity.TalkSlot, mode string) string {
	key := fmt.Sprintf("%s|%s|%s", optionalID(s.SubmissionID), optionalID(s.RoomID), optionalTime(s.Start))
	if mode == config.ComparisonLoose {
		return key
	}
	return fmt.Sprintf("%s|%s|%t|%q", key, optionalTime(s.End), s.IsVisible, s.Description)
}

func optionalID(id *uuid.UUID) string {
	if id == nil {
		return "-"
	}
	return id.String()
}

func optionalTime(t *time.Time) string {
	if t == nil {
		return "-"
	}
	return t.UTC().Format(time.RFC3339Nano)
}
