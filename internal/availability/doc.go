// Package availability computes fixed-length free slots inside a time window.
//
// The engine is a pure function: given a window, an unordered set of busy
// intervals and a slot duration it walks candidate slots from the start of the
// window and keeps the ones that overlap no busy interval. All intervals are
// half-open, [Start, End), so a busy interval ending exactly when a candidate
// starts does not block it.
//
// Example usage:
//
//	window := availability.TimeWindow{Start: nine, End: six}
//	slots, err := availability.ComputeFreeSlots(window, busy, time.Hour)
//	if errors.Is(err, availability.ErrInvalidArgument) {
//	    // reject the request
//	}
package availability
