package domain

import (
	"time"

	"github.com/m04kA/SMC-ShopBookingService/pkg/types"
)

// Scheduling defaults
const (
	DefaultSlotStepMinutes      = 30
	DefaultUTCOffsetMinutes     = 9 * 60 // UTC+9
	DefaultDepositWindowMinutes = 120
	DefaultOpenTime             = types.TimeString("09:00")
	DefaultCloseTime            = types.TimeString("18:00")
)

// DepositWindow is how long a customer has to pay a requested deposit
const DepositWindow = DefaultDepositWindowMinutes * time.Minute

// Business validation constants
const (
	MaxServiceDurationMinutes = 12 * 60
	MaxMemoLength             = 1000
	MaxCustomerNameLength     = 100
)

// Time format constants
const (
	TimeFormat = "15:04"      // HH:MM
	DateFormat = "2006-01-02" // YYYY-MM-DD
)

// ActiveStatuses статусы, занимающие слот
var ActiveStatuses = []BookingStatus{
	StatusPending,
	StatusConfirmed,
}

// InactiveStatuses статусы, не участвующие в поиске конфликтов
var InactiveStatuses = []BookingStatus{
	StatusRejected,
	StatusCancelled,
}
