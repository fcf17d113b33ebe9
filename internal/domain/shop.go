package domain

import (
	"time"

	"github.com/m04kA/SMC-ShopBookingService/pkg/types"
)

// DaySchedule is the recurring configuration for one weekday
type DaySchedule struct {
	Open   types.TimeString `json:"open"`
	Close  types.TimeString `json:"close"`
	Closed bool             `json:"closed"`
}

// WeeklySchedule is indexed by time.Weekday (0 = Sunday ... 6 = Saturday)
type WeeklySchedule [7]DaySchedule

// Day returns the schedule for the given weekday
func (w WeeklySchedule) Day(d time.Weekday) DaySchedule {
	return w[int(d)]
}

// DayOverrides are manual exceptions for one date
type DayOverrides struct {
	Blocked   []types.TimeString `json:"blocked"`
	ForceOpen []types.TimeString `json:"forceOpen"`
}

// IsEmpty reports whether there is nothing to override
func (o DayOverrides) IsEmpty() bool {
	return len(o.Blocked) == 0 && len(o.ForceOpen) == 0
}

// SlotOverrideMap is keyed by date (YYYY-MM-DD)
type SlotOverrideMap map[string]DayOverrides

// Shop is the tenant root
type Shop struct {
	ID   int64
	Slug string
	Name string

	WeeklySchedule WeeklySchedule
	ClosedDates    []string // YYYY-MM-DD
	SlotOverrides  SlotOverrideMap

	DepositRequired bool
	DepositAmount   float64

	StaffIDs []int64

	// ConfigIssues lists problems found while decoding stored calendar JSON.
	// The affected parts were replaced by defaults.
	ConfigIssues []string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// IsStaff reports whether userID may manage the shop
func (s *Shop) IsStaff(userID int64) bool {
	for _, id := range s.StaffIDs {
		if id == userID {
			return true
		}
	}
	return false
}

// DefaultWeeklySchedule is Monday–Saturday 09:00–18:00, Sunday closed
func DefaultWeeklySchedule() WeeklySchedule {
	var w WeeklySchedule
	for d := time.Sunday; d <= time.Saturday; d++ {
		w[d] = DefaultDaySchedule(d)
	}
	return w
}

// DefaultDaySchedule returns the default entry for a weekday
func DefaultDaySchedule(d time.Weekday) DaySchedule {
	if d == time.Sunday {
		return DaySchedule{Open: DefaultOpenTime, Close: DefaultCloseTime, Closed: true}
	}
	return DaySchedule{Open: DefaultOpenTime, Close: DefaultCloseTime}
}
