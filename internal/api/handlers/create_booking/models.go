package create_booking

import (
	"github.com/m04kA/SMC-ShopBookingService/internal/service/bookings/models"
	createBooking "github.com/m04kA/SMC-ShopBookingService/internal/usecase/create_booking"
)

// CreateBookingResponse HTTP response model
type CreateBookingResponse struct {
	*models.BookingResponse
	NewCustomer bool `json:"newCustomer"`
}

// FromUseCaseResponse конвертирует ответ use case в HTTP response
func FromUseCaseResponse(resp *createBooking.Response) *CreateBookingResponse {
	return &CreateBookingResponse{
		BookingResponse: models.FromDomainBooking(resp.Booking),
		NewCustomer:     resp.NewCustomer,
	}
}
