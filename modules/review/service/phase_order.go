package service

import (
	"fmt"
	"sort"
	"time"

	"cfp-api/core/errors"
	"cfp-api/modules/review/entity"
)

const (
	msgOpenEnded      = "Only the last review phase may be open-ended."
	msgMissingStart   = "All review phases except for the first one need a start date."
	msgOverlap        = "The review phases '%s' and '%s' overlap. Please make sure that review phases do not overlap, then save again."
	msgEndBeforeStart = "The review phase '%s' ends before it starts."
)

// SortPhases orders phases by start, open start first, then by end, open
// end last.
func SortPhases(phases []entity.ReviewPhase) {
	sort.SliceStable(phases, func(i, j int) bool {
		a, b := phases[i], phases[j]
		if c := compareTimes(a.Start, b.Start, true); c != 0 {
			return c < 0
		}
		return compareTimes(a.End, b.End, false) < 0
	})
}

// compareTimes orders nil before every time when nilFirst is set, after
// every time otherwise.
func compareTimes(a, b *time.Time, nilFirst bool) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		if nilFirst {
			return -1
		}
		return 1
	case b == nil:
		if nilFirst {
			return 1
		}
		return -1
	default:
		return a.Compare(*b)
	}
}

// ValidatePhaseOrder checks phases that are already sorted. It returns
// every distinct violation; an empty result means the order is valid.
func ValidatePhaseOrder(phases []entity.ReviewPhase) []errors.Violation {
	var violations []errors.Violation
	seen := map[string]bool{}
	add := func(msg string) {
		if !seen[msg] {
			seen[msg] = true
			violations = append(violations, errors.Violation{Field: "phases", Message: msg})
		}
	}

	for _, phase := range phases {
		if phase.Start != nil && phase.End != nil && phase.End.Before(*phase.Start) {
			add(fmt.Sprintf(msgEndBeforeStart, phase.Name))
		}
	}

	for i := 0; i+1 < len(phases); i++ {
		phase, next := phases[i], phases[i+1]
		if phase.End == nil {
			add(msgOpenEnded)
			continue
		}
		if next.Start == nil {
			add(msgMissingStart)
			continue
		}
		if phase.End.After(*next.Start) {
			add(fmt.Sprintf(msgOverlap, phase.Name, next.Name))
		}
	}
	return violations
}

// ReorderPhases sorts phases, validates the result and rewrites their
// positions. It is run inside the saving transaction.
func ReorderPhases(phases []entity.ReviewPhase) ([]entity.ReviewPhase, error) {
	SortPhases(phases)
	if violations := ValidatePhaseOrder(phases); len(violations) > 0 {
		return nil, errors.NewValidationError("Invalid review phases", violations...)
	}
	for i := range phases {
		phases[i].Position = i
	}
	return phases, nil
}
