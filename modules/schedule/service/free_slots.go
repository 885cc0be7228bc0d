package service

import (
	"sort"
	"time"
)

const (
	defaultStepMinutes = 15
	maxFreeSlots       = 50
)

type TimeRange struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

func (r TimeRange) overlaps(other TimeRange) bool {
	return r.Start.Before(other.End) && r.End.After(other.Start)
}

// FreeSlotFinder lists start times in a room where a talk of a given
// length fits between the slots already placed there.
type FreeSlotFinder struct {
	StepMinutes int
	Limit       int
}

func NewFreeSlotFinder() *FreeSlotFinder {
	return &FreeSlotFinder{StepMinutes: defaultStepMinutes, Limit: maxFreeSlots}
}

// Find returns candidate ranges of the given length inside [from, to),
// aligned to the step and earliest first.
func (f *FreeSlotFinder) Find(from, to time.Time, duration time.Duration, busy []TimeRange) []TimeRange {
	if duration <= 0 || !from.Before(to) {
		return []TimeRange{}
	}
	merged := mergeRanges(busy)
	step := time.Duration(f.StepMinutes) * time.Minute

	free := []TimeRange{}
	for start := alignUp(from.UTC(), step); !start.Add(duration).After(to); start = start.Add(step) {
		candidate := TimeRange{Start: start, End: start.Add(duration)}
		if blocker := firstOverlap(candidate, merged); blocker != nil {
			// resume at the first step after the busy block
			start = alignUp(blocker.End, step).Add(-step)
			continue
		}
		free = append(free, candidate)
		if f.Limit > 0 && len(free) >= f.Limit {
			break
		}
	}
	return free
}

func mergeRanges(ranges []TimeRange) []TimeRange {
	if len(ranges) == 0 {
		return nil
	}
	sorted := append([]TimeRange(nil), ranges...)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Start.Before(sorted[j].Start)
	})

	merged := []TimeRange{sorted[0]}
	for _, current := range sorted[1:] {
		last := &merged[len(merged)-1]
		if !current.Start.After(last.End) {
			if current.End.After(last.End) {
				last.End = current.End
			}
			continue
		}
		merged = append(merged, current)
	}
	return merged
}

func firstOverlap(candidate TimeRange, busy []TimeRange) *TimeRange {
	for i := range busy {
		if candidate.overlaps(busy[i]) {
			return &busy[i]
		}
	}
	return nil
}

func alignUp(t time.Time, step time.Duration) time.Time {
	truncated := t.Truncate(step)
	if truncated.Equal(t) {
		return t
	}
	return truncated.Add(step)
}
