package events

import (
	"time"

	"github.com/m04kA/SMC-ShopBookingService/internal/domain"
)

// Type тип события бронирования
type Type string

const (
	TypeBookingCreated     Type = "booking.created"
	TypeBookingApproved    Type = "booking.approved"
	TypeBookingRejected    Type = "booking.rejected"
	TypeBookingCancelled   Type = "booking.cancelled"
	TypeBookingRescheduled Type = "booking.rescheduled"
	TypeDepositRequested   Type = "booking.deposit_requested"
	TypeDepositConfirmed   Type = "booking.deposit_confirmed"
	TypeVisitCompleted     Type = "booking.visit_completed"
)

// BookingEvent событие изменения бронирования
type BookingEvent struct {
	ID              string  `json:"id"`
	Type            Type    `json:"type"`
	OccurredAt      string  `json:"occurredAt"`
	BookingID       int64   `json:"bookingId"`
	ShopID          int64   `json:"shopId"`
	CustomerID      int64   `json:"customerId"`
	BookingDate     string  `json:"bookingDate"`
	StartTime       string  `json:"startTime"`
	DurationMinutes int     `json:"durationMinutes"`
	Status          string  `json:"status"`
	DepositStatus   string  `json:"depositStatus"`
	Source          string  `json:"source"`
	PreviousDate    *string `json:"previousDate,omitempty"`
	PreviousTime    *string `json:"previousTime,omitempty"`
}

// NewBookingEvent собирает событие по текущему состоянию бронирования
func NewBookingEvent(t Type, b *domain.Booking, at time.Time) BookingEvent {
	return BookingEvent{
		Type:            t,
		OccurredAt:      at.Format(time.RFC3339),
		BookingID:       b.ID,
		ShopID:          b.ShopID,
		CustomerID:      b.CustomerID,
		BookingDate:     b.BookingDate.Format(domain.DateFormat),
		StartTime:       b.StartTime.String(),
		DurationMinutes: b.DurationMinutes,
		Status:          string(b.Status),
		DepositStatus:   string(b.DepositStatus),
		Source:          string(b.Source),
	}
}
