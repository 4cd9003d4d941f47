package availability

import (
	"errors"
	"fmt"
	"time"
)

// ErrInvalidArgument is returned when the window or slot duration is malformed.
var ErrInvalidArgument = errors.New("invalid argument")

// TimeWindow is the range searched for free slots.
type TimeWindow struct {
	Start time.Time
	End   time.Time
}

// BusyInterval is a range during which the calendar owner is already committed.
type BusyInterval struct {
	Start time.Time
	End   time.Time
}

// FreeSlot is a candidate slot that overlaps no busy interval.
type FreeSlot struct {
	Start time.Time
	End   time.Time
}

// Duration returns the length of the slot.
func (s FreeSlot) Duration() time.Duration {
	return s.End.Sub(s.Start)
}

// Validate checks that the window is non-empty.
func (w TimeWindow) Validate() error {
	if !w.Start.Before(w.End) {
		return fmt.Errorf("%w: window start %s is not before end %s",
			ErrInvalidArgument, w.Start.Format(time.RFC3339), w.End.Format(time.RFC3339))
	}
	return nil
}

// overlaps reports whether [aStart, aEnd) and [bStart, bEnd) intersect.
func overlaps(aStart, aEnd, bStart, bEnd time.Time) bool {
	return aStart.Before(bEnd) && aEnd.After(bStart)
}

// ComputeFreeSlots returns every slotDuration-long slot in window that overlaps
// none of the busy intervals, in chronological order.
//
// Candidates start at window.Start and advance in steps of slotDuration. A
// trailing candidate that would end after window.End is dropped, and adjacent
// free slots are reported separately rather than merged. Busy intervals may be
// unsorted, overlapping or lie outside the window.
func ComputeFreeSlots(window TimeWindow, busy []BusyInterval, slotDuration time.Duration) ([]FreeSlot, error) {
	if err := window.Validate(); err != nil {
		return nil, err
	}
	if slotDuration <= 0 {
		return nil, fmt.Errorf("%w: slot duration must be positive, got %s", ErrInvalidArgument, slotDuration)
	}

	slots := make([]FreeSlot, 0)
	for current := window.Start; !current.Add(slotDuration).After(window.End); current = current.Add(slotDuration) {
		slotEnd := current.Add(slotDuration)

		free := true
		for _, b := range busy {
			if overlaps(current, slotEnd, b.Start, b.End) {
				free = false
				break
			}
		}

		if free {
			slots = append(slots, FreeSlot{Start: current, End: slotEnd})
		}
	}

	return slots, nil
}
