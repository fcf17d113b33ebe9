package get_availability

import "github.com/m04kA/SMC-ShopBookingService/internal/domain"

// Request модель запроса доступности на дату
// Длительность задается либо услугой, либо явно
type Request struct {
	ShopSlug        string
	Date            string // YYYY-MM-DD
	ServiceID       *int64
	DurationMinutes *int
}

// Response модель ответа с доступностью
type Response struct {
	ShopID          int64
	DurationMinutes int
	Availability    domain.DayAvailability
}
