package scheduling

import (
	"time"

	"github.com/m04kA/SMC-ShopBookingService/internal/domain"
	"github.com/m04kA/SMC-ShopBookingService/pkg/types"
)

// Input is everything the assembler needs for one date
type Input struct {
	Hours           DayHours
	Overrides       OverrideSet
	Occupied        []Interval
	DurationMinutes int
	SlotStep        int
	Now             time.Time // already in the shop's zone
}

// CheckOptions relaxes checks for staff-entered bookings
type CheckOptions struct {
	RequireGrid  bool // start must be a generated slot
	AllowPast    bool
	IgnoreBlocks bool
}

// Assemble produces the per-slot verdicts for a date.
// A closed date yields a single closed result without slots.
func Assemble(in Input) domain.DayAvailability {
	result := domain.DayAvailability{
		Date:    in.Hours.Date,
		Weekday: in.Hours.Weekday.String(),
	}

	if in.Hours.Closed {
		result.Closed = true
		result.ClosureReason = in.Hours.Reason
		return result
	}

	result.Open = in.Hours.Open
	result.Close = in.Hours.Close

	slots := GenerateSlots(in.Hours.Open, in.Hours.Close, in.SlotStep)
	result.Slots = make([]domain.SlotVerdict, 0, len(slots))
	for _, start := range slots {
		result.Slots = append(result.Slots, evaluate(in, start, CheckOptions{}))
	}
	return result
}

// CheckSlot evaluates a single requested start time with the same precedence as Assemble.
// The caller must handle closed dates before calling it.
func CheckSlot(in Input, start types.TimeString, opts CheckOptions) domain.SlotVerdict {
	if start.Minutes() < in.Hours.Open.Minutes() {
		return domain.SlotVerdict{StartTime: start, Reason: domain.ReasonBeforeOpening}
	}
	if opts.RequireGrid && !IsOnGrid(in.Hours, start, in.SlotStep) {
		return domain.SlotVerdict{StartTime: start, Reason: domain.ReasonNotOnGrid}
	}
	return evaluate(in, start, opts)
}

// evaluate applies, first match wins: past, blocked, exceeds hours, booked (unless forced open)
func evaluate(in Input, start types.TimeString, opts CheckOptions) domain.SlotVerdict {
	verdict := domain.SlotVerdict{StartTime: start}

	if !opts.AllowPast && isPast(in.Hours.Date, start, in.Now) {
		verdict.Reason = domain.ReasonPast
		return verdict
	}

	if !opts.IgnoreBlocks && in.Overrides.IsBlocked(start) {
		verdict.Reason = domain.ReasonBlocked
		return verdict
	}

	candidate := NewInterval(start, in.DurationMinutes)
	if candidate.End > in.Hours.Close.Minutes() {
		verdict.Reason = domain.ReasonExceedsHours
		return verdict
	}

	if HasConflict(in.Occupied, candidate) && !in.Overrides.IsForceOpen(start) {
		verdict.Reason = domain.ReasonAlreadyBooked
		return verdict
	}

	verdict.Available = true
	return verdict
}

// isPast: earlier dates are entirely past; on today a slot is past when start <= now
func isPast(date string, start types.TimeString, now time.Time) bool {
	today := now.Format(domain.DateFormat)
	switch {
	case date < today:
		return true
	case date > today:
		return false
	default:
		return start.Minutes() <= now.Hour()*60+now.Minute()
	}
}
