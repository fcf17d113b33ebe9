// Package scheduling turns a shop's calendar configuration and existing
// bookings into per-slot availability.
//
// The functions here are pure: they never read the clock or the database.
// "Now" and every input are passed in explicitly.
package scheduling

import (
	"time"

	"github.com/m04kA/SMC-ShopBookingService/internal/domain"
	"github.com/m04kA/SMC-ShopBookingService/pkg/types"
)

// DayHours is the resolved calendar for a single date
type DayHours struct {
	Date    string
	Weekday time.Weekday
	Closed  bool
	Reason  domain.ClosureReason
	Open    types.TimeString
	Close   types.TimeString
}

// ResolveDay applies one-off closures and then the weekly schedule to date.
// The date is treated as a wall-clock date, no zone conversion is made.
func ResolveDay(schedule domain.WeeklySchedule, closedDates []string, date time.Time) DayHours {
	key := date.Format(domain.DateFormat)
	hours := DayHours{Date: key, Weekday: date.Weekday()}

	for _, d := range closedDates {
		if d == key {
			hours.Closed = true
			hours.Reason = domain.ClosureOneOff
			return hours
		}
	}

	day := schedule.Day(date.Weekday())
	if day.Closed {
		hours.Closed = true
		hours.Reason = domain.ClosureWeekly
		return hours
	}

	hours.Open = day.Open
	hours.Close = day.Close
	return hours
}

// GenerateSlots emits slot start times from open (inclusive) to close (exclusive) every step minutes
func GenerateSlots(open, close types.TimeString, step int) []types.TimeString {
	if step <= 0 {
		step = domain.DefaultSlotStepMinutes
	}

	openMin, closeMin := open.Minutes(), close.Minutes()
	if openMin < 0 || closeMin < 0 {
		return []types.TimeString{}
	}

	slots := make([]types.TimeString, 0, (closeMin-openMin)/step+1)
	for m := openMin; m < closeMin; m += step {
		slot, err := types.FromMinutes(m)
		if err != nil {
			break
		}
		slots = append(slots, slot)
	}
	return slots
}

// IsOnGrid reports whether start is one of the generated slots for the day
func IsOnGrid(hours DayHours, start types.TimeString, step int) bool {
	if step <= 0 {
		step = domain.DefaultSlotStepMinutes
	}
	offset := start.Minutes() - hours.Open.Minutes()
	return offset >= 0 && offset%step == 0 && start.IsBefore(hours.Close)
}
