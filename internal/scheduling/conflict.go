package scheduling

import (
	"github.com/m04kA/SMC-ShopBookingService/internal/domain"
	"github.com/m04kA/SMC-ShopBookingService/pkg/types"
)

// Interval is a half-open range of minutes since midnight: [Start, End)
type Interval struct {
	Start int
	End   int
}

// NewInterval builds the occupied range of a slot starting at start
func NewInterval(start types.TimeString, durationMinutes int) Interval {
	s := start.Minutes()
	return Interval{Start: s, End: s + durationMinutes}
}

// Overlaps reports whether two half-open ranges intersect.
// Ranges that only touch (10:00-11:00 and 11:00-12:00) do not overlap.
func (i Interval) Overlaps(other Interval) bool {
	return i.Start < other.End && other.Start < i.End
}

// OccupiedRanges returns the ranges of active bookings, skipping excludeID (0 = none)
func OccupiedRanges(bookings []*domain.Booking, excludeID int64) []Interval {
	ranges := make([]Interval, 0, len(bookings))
	for _, b := range bookings {
		if b == nil || !b.IsActive() {
			continue
		}
		if excludeID != 0 && b.ID == excludeID {
			continue
		}
		if b.StartTime.Minutes() < 0 || b.DurationMinutes <= 0 {
			continue
		}
		ranges = append(ranges, NewInterval(b.StartTime, b.DurationMinutes))
	}
	return ranges
}

// HasConflict reports whether candidate overlaps any occupied range
func HasConflict(occupied []Interval, candidate Interval) bool {
	for _, r := range occupied {
		if r.Overlaps(candidate) {
			return true
		}
	}
	return false
}
