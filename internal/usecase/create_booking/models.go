package create_booking

import "github.com/m04kA/SMC-ShopBookingService/internal/domain"

// Request модель запроса на создание бронирования
// Онлайн-запись приходит по slug магазина, ручная запись сотрудника - по ID
type Request struct {
	Source   domain.BookingSource `json:"-"`
	ShopSlug string               `json:"-"`
	ShopID   int64                `json:"-"`
	StaffID  int64                `json:"-"` // только для ручной записи

	ServiceID     int64  `json:"serviceId" validate:"required,gt=0"`
	Date          string `json:"date" validate:"required,date"`
	StartTime     string `json:"time" validate:"required,clock"`
	CustomerName  string `json:"customerName" validate:"required,max=100"`
	CustomerPhone string `json:"customerPhone" validate:"required,phone"`

	PetName   string `json:"petName" validate:"max=100"`
	PetBreed  string `json:"petBreed" validate:"max=100"`
	PetAge    string `json:"petAge" validate:"max=50"`
	PetWeight string `json:"petWeight" validate:"max=50"`
	Memo      string `json:"memo" validate:"max=1000"`
}

// Response модель ответа с созданным бронированием
type Response struct {
	Booking     *domain.Booking
	NewCustomer bool
}
