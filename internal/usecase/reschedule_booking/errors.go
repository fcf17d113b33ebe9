package reschedule_booking

import "errors"

var (
	// ErrBookingNotFound возвращается, когда бронирование не найдено
	ErrBookingNotFound = errors.New("reschedule_booking: booking not found")

	// ErrServiceNotFound возвращается, когда новая услуга не найдена или выключена
	ErrServiceNotFound = errors.New("reschedule_booking: service not found")

	// ErrForbidden возвращается, когда сотрудник не относится к магазину
	ErrForbidden = errors.New("reschedule_booking: staff does not belong to the shop")

	// ErrInvalidTransition возвращается для отклоненных и отмененных бронирований
	ErrInvalidTransition = errors.New("reschedule_booking: booking cannot be rescheduled in its current state")

	// ErrShopClosed возвращается, когда магазин закрыт в новую дату
	ErrShopClosed = errors.New("reschedule_booking: shop is closed on this date")

	// ErrSlotUnavailable возвращается, когда новый слот вне часов работы
	ErrSlotUnavailable = errors.New("reschedule_booking: slot is not available")

	// ErrSlotConflict возвращается, когда новый слот пересекается с другим бронированием
	ErrSlotConflict = errors.New("reschedule_booking: slot overlaps an existing booking")

	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("reschedule_booking: invalid input data")

	// ErrInternal возвращается при внутренних ошибках usecase
	ErrInternal = errors.New("reschedule_booking: internal error")
)
