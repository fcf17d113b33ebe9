package reschedule_booking

import (
	"github.com/m04kA/SMC-ShopBookingService/internal/service/bookings/models"
	rescheduleBooking "github.com/m04kA/SMC-ShopBookingService/internal/usecase/reschedule_booking"
)

// RescheduleBookingRequest HTTP request model, незаданные поля не меняются
type RescheduleBookingRequest struct {
	Date      *string `json:"date,omitempty"`
	Time      *string `json:"time,omitempty"`
	ServiceID *int64  `json:"serviceId,omitempty"`
}

// RescheduleBookingResponse HTTP response model
type RescheduleBookingResponse struct {
	*models.BookingResponse
	PreviousDate string `json:"previousDate"`
	PreviousTime string `json:"previousTime"`
}

// ToUseCaseRequest конвертирует HTTP запрос в модель use case
func (r *RescheduleBookingRequest) ToUseCaseRequest(bookingID, staffID int64) *rescheduleBooking.Request {
	return &rescheduleBooking.Request{
		StaffID:   staffID,
		BookingID: bookingID,
		Date:      r.Date,
		StartTime: r.Time,
		ServiceID: r.ServiceID,
	}
}

// FromUseCaseResponse конвертирует ответ use case в HTTP response
func FromUseCaseResponse(resp *rescheduleBooking.Response) *RescheduleBookingResponse {
	return &RescheduleBookingResponse{
		BookingResponse: models.FromDomainBooking(resp.Booking),
		PreviousDate:    resp.PreviousDate,
		PreviousTime:    resp.PreviousTime,
	}
}
