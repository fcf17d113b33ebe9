package create_booking

import "errors"

var (
	// ErrShopNotFound возвращается, когда магазин не найден
	ErrShopNotFound = errors.New("create_booking: shop not found")

	// ErrServiceNotFound возвращается, когда услуга не найдена или выключена
	ErrServiceNotFound = errors.New("create_booking: service not found")

	// ErrForbidden возвращается, когда сотрудник не относится к магазину
	ErrForbidden = errors.New("create_booking: staff does not belong to the shop")

	// ErrShopClosed возвращается, когда магазин закрыт в указанную дату
	ErrShopClosed = errors.New("create_booking: shop is closed on this date")

	// ErrSlotUnavailable возвращается, когда слот недоступен (прошел, заблокирован, вне часов работы, вне сетки)
	ErrSlotUnavailable = errors.New("create_booking: slot is not available")

	// ErrSlotConflict возвращается, когда слот пересекается с активным бронированием
	ErrSlotConflict = errors.New("create_booking: slot overlaps an existing booking")

	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("create_booking: invalid input data")

	// ErrInternal возвращается при внутренних ошибках usecase
	ErrInternal = errors.New("create_booking: internal error")
)
