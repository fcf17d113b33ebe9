package bookings

import "errors"

var (
	// ErrBookingNotFound возвращается, когда бронирование не найдено
	ErrBookingNotFound = errors.New("bookings.service: booking not found")

	// ErrShopNotFound возвращается, когда магазин не найден
	ErrShopNotFound = errors.New("bookings.service: shop not found")

	// ErrAccessDenied возвращается, когда сотрудник не относится к магазину
	ErrAccessDenied = errors.New("bookings.service: access denied")

	// ErrInvalidTransition возвращается, когда операция недопустима в текущем состоянии
	ErrInvalidTransition = errors.New("bookings.service: transition not allowed")

	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("bookings.service: invalid input data")

	// ErrInternal возвращается при внутренних ошибках сервиса
	ErrInternal = errors.New("bookings.service: internal error")
)
