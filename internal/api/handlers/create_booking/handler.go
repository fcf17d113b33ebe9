package create_booking

import (
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/m04kA/SMC-ShopBookingService/internal/api/handlers"
	"github.com/m04kA/SMC-ShopBookingService/internal/api/middleware"
	"github.com/m04kA/SMC-ShopBookingService/internal/domain"
	createBooking "github.com/m04kA/SMC-ShopBookingService/internal/usecase/create_booking"
)

const (
	msgInvalidRequestBody = "некорректное тело запроса"
	msgInvalidShopID      = "некорректный ID магазина"
	msgMissingStaffID     = "отсутствует ID сотрудника"
	msgInvalidInput       = "некорректные данные бронирования"
	msgShopNotFound       = "магазин не найден"
	msgServiceNotFound    = "услуга не найдена"
	msgForbidden          = "доступ запрещен"
	msgShopClosed         = "магазин закрыт в выбранную дату"
	msgSlotUnavailable    = "выбранный временной слот недоступен"
	msgSlotConflict       = "выбранное время пересекается с другим бронированием"
)

type Handler struct {
	useCase CreateBookingUseCase
	logger  Logger
}

func NewHandler(useCase CreateBookingUseCase, logger Logger) *Handler {
	return &Handler{
		useCase: useCase,
		logger:  logger,
	}
}

// Handle POST /api/v1/shops/{slug}/bookings
// Онлайн-запись клиента, создается в статусе pending
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	var req createBooking.Request
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("POST /shops/{slug}/bookings - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	req.Source = domain.SourceOnline
	req.ShopSlug = mux.Vars(r)["slug"]

	h.execute(w, r, "POST /shops/{slug}/bookings", &req)
}

// HandleManual POST /api/v1/shops/{shopId}/bookings/manual
// Запись, созданная сотрудником: сразу confirmed, без проверки сетки и блокировок
func (h *Handler) HandleManual(w http.ResponseWriter, r *http.Request) {
	shopID, err := handlers.PathInt64(r, "shopId")
	if err != nil {
		h.logger.Warn("POST /shops/{id}/bookings/manual - Invalid shop ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidShopID)
		return
	}

	staffID, ok := middleware.GetStaffID(r.Context())
	if !ok {
		h.logger.Warn("POST /shops/{id}/bookings/manual - Missing staff ID")
		handlers.RespondUnauthorized(w, msgMissingStaffID)
		return
	}

	var req createBooking.Request
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("POST /shops/{id}/bookings/manual - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	req.Source = domain.SourceManual
	req.ShopID = shopID
	req.StaffID = staffID

	h.execute(w, r, "POST /shops/{id}/bookings/manual", &req)
}

func (h *Handler) execute(w http.ResponseWriter, r *http.Request, route string, req *createBooking.Request) {
	result, err := h.useCase.Execute(r.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, createBooking.ErrInvalidInput):
			h.logger.Warn("%s - Invalid input: %v", route, err)
			handlers.RespondErrorWithDetails(w, http.StatusBadRequest, msgInvalidInput,
				map[string]string{"reason": handlers.Reason(err, createBooking.ErrInvalidInput)})

		case errors.Is(err, createBooking.ErrShopNotFound):
			h.logger.Warn("%s - Shop not found: slug=%s, shop_id=%d", route, req.ShopSlug, req.ShopID)
			handlers.RespondNotFound(w, msgShopNotFound)

		case errors.Is(err, createBooking.ErrServiceNotFound):
			h.logger.Warn("%s - Service not found: service_id=%d", route, req.ServiceID)
			handlers.RespondNotFound(w, msgServiceNotFound)

		case errors.Is(err, createBooking.ErrForbidden):
			h.logger.Warn("%s - Access denied: shop_id=%d, staff_id=%d", route, req.ShopID, req.StaffID)
			handlers.RespondForbidden(w, msgForbidden)

		case errors.Is(err, createBooking.ErrShopClosed):
			h.logger.Warn("%s - Shop closed: date=%s", route, req.Date)
			handlers.RespondConflict(w, msgShopClosed)

		case errors.Is(err, createBooking.ErrSlotUnavailable):
			h.logger.Warn("%s - Slot unavailable: date=%s, time=%s, error=%v", route, req.Date, req.StartTime, err)
			handlers.RespondErrorWithDetails(w, http.StatusConflict, msgSlotUnavailable,
				map[string]string{"reason": handlers.Reason(err, createBooking.ErrSlotUnavailable)})

		case errors.Is(err, createBooking.ErrSlotConflict):
			h.logger.Warn("%s - Slot conflict: date=%s, time=%s", route, req.Date, req.StartTime)
			handlers.RespondErrorWithDetails(w, http.StatusConflict, msgSlotConflict,
				map[string]string{"reason": string(domain.ReasonAlreadyBooked)})

		default:
			h.logger.Error("%s - Failed to create booking: error=%v", route, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("%s - Booking created successfully: booking_id=%d, shop_id=%d, status=%s",
		route, result.Booking.ID, result.Booking.ShopID, result.Booking.Status)
	handlers.RespondJSON(w, http.StatusCreated, FromUseCaseResponse(result))
}
