package reschedule_booking

import "github.com/m04kA/SMC-ShopBookingService/internal/domain"

// Request модель запроса на перенос бронирования
// Незаданные поля сохраняют текущие значения
type Request struct {
	StaffID   int64
	BookingID int64
	Date      *string // YYYY-MM-DD
	StartTime *string // HH:MM
	ServiceID *int64
}

// Response модель ответа с перенесенным бронированием
type Response struct {
	Booking      *domain.Booking
	PreviousDate string
	PreviousTime string
}
