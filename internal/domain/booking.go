package domain

import (
	"time"

	"github.com/m04kA/SMC-ShopBookingService/pkg/types"
)

// BookingStatus represents the status of a booking
type BookingStatus string

const (
	StatusPending   BookingStatus = "pending"
	StatusConfirmed BookingStatus = "confirmed"
	StatusRejected  BookingStatus = "rejected"
	StatusCancelled BookingStatus = "cancelled"
)

// DepositStatus is independent of BookingStatus
type DepositStatus string

const (
	DepositNone    DepositStatus = "none"
	DepositWaiting DepositStatus = "waiting"
	DepositPaid    DepositStatus = "paid"
)

// BookingSource tells how a booking entered the system
type BookingSource string

const (
	SourceOnline BookingSource = "online" // public booking page
	SourceManual BookingSource = "manual" // entered by shop staff
)

// Booking represents a customer's appointment at a shop
type Booking struct {
	ID         int64
	ShopID     int64
	CustomerID int64
	ServiceID  int64

	BookingDate     time.Time // wall-clock date, time part is zero
	StartTime       types.TimeString
	DurationMinutes int // snapshot of the service duration at creation/reschedule

	Status BookingStatus
	Source BookingSource

	DepositStatus   DepositStatus
	DepositDeadline *time.Time

	VisitCompleted bool
	IsFirstVisit   bool
	ReminderSentAt *time.Time

	// Denormalized data for history
	ServiceName   string
	ServicePrice  float64
	CustomerName  string
	CustomerPhone string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// IsActive returns true if the booking occupies its slot
func (b *Booking) IsActive() bool {
	return b.Status == StatusPending || b.Status == StatusConfirmed
}

// IsTerminal returns true for rejected and cancelled bookings
func (b *Booking) IsTerminal() bool {
	return b.Status == StatusRejected || b.Status == StatusCancelled
}

// Instant returns the appointment start as an instant in loc
func (b *Booking) Instant(loc *time.Location) time.Time {
	y, m, d := b.BookingDate.Date()
	minutes := b.StartTime.Minutes()
	if minutes < 0 {
		minutes = 0
	}
	return time.Date(y, m, d, minutes/60, minutes%60, 0, 0, loc)
}

// HasPassed reports whether the appointment instant is strictly before now
func (b *Booking) HasPassed(now time.Time) bool {
	return b.Instant(now.Location()).Before(now)
}

// ShopBookingsFilter фильтр для списка бронирований магазина
type ShopBookingsFilter struct {
	ShopID          int64          // Обязательный параметр
	StartDate       *time.Time     // Начало периода (опционально)
	EndDate         *time.Time     // Конец периода (опционально)
	Status          *BookingStatus // Фильтр по статусу (опционально)
	IncludeInactive bool           // Включать ли отклоненные и отмененные
}

// DueForCompletionFilter выборка подтвержденных, но не завершенных визитов
type DueForCompletionFilter struct {
	ShopID *int64    // nil - все магазины
	Before time.Time // дата-время, до которой визит считается прошедшим
}
