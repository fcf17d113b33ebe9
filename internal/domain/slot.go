package domain

import "github.com/m04kA/SMC-ShopBookingService/pkg/types"

// UnavailableReason explains why a slot cannot be booked
type UnavailableReason string

const (
	ReasonPast          UnavailableReason = "past"
	ReasonBlocked       UnavailableReason = "blocked"
	ReasonExceedsHours  UnavailableReason = "exceeds_business_hours"
	ReasonAlreadyBooked UnavailableReason = "already_booked"
	ReasonNotOnGrid     UnavailableReason = "not_on_slot_grid"
	ReasonBeforeOpening UnavailableReason = "before_opening"
)

// ClosureReason explains why a whole date is closed
type ClosureReason string

const (
	ClosureOneOff ClosureReason = "one_off_closure"
	ClosureWeekly ClosureReason = "weekly_recurring_closure"
)

// SlotVerdict is the availability of a single slot
type SlotVerdict struct {
	StartTime types.TimeString
	Available bool
	Reason    UnavailableReason
}

// DayAvailability is the result for a date: either closed, or a per-slot list
type DayAvailability struct {
	Date          string
	Closed        bool
	ClosureReason ClosureReason
	Weekday       string
	Open          types.TimeString
	Close         types.TimeString
	Slots         []SlotVerdict
}
