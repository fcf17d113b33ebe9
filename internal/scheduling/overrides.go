package scheduling

import (
	"time"

	"github.com/m04kA/SMC-ShopBookingService/internal/domain"
	"github.com/m04kA/SMC-ShopBookingService/pkg/types"
)

// OverrideSet is the blocked/forced-open lookup for a single date
type OverrideSet struct {
	blocked   map[types.TimeString]struct{}
	forceOpen map[types.TimeString]struct{}
}

// LookupOverrides returns the overrides for date, or empty sets when there are none
func LookupOverrides(overrides domain.SlotOverrideMap, date time.Time) OverrideSet {
	set := OverrideSet{
		blocked:   map[types.TimeString]struct{}{},
		forceOpen: map[types.TimeString]struct{}{},
	}

	day, ok := overrides[date.Format(domain.DateFormat)]
	if !ok {
		return set
	}

	for _, t := range day.Blocked {
		set.blocked[t] = struct{}{}
	}
	for _, t := range day.ForceOpen {
		set.forceOpen[t] = struct{}{}
	}
	return set
}

func (s OverrideSet) IsBlocked(t types.TimeString) bool {
	_, ok := s.blocked[t]
	return ok
}

func (s OverrideSet) IsForceOpen(t types.TimeString) bool {
	_, ok := s.forceOpen[t]
	return ok
}
