package change_booking_status

import (
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/m04kA/SMC-ShopBookingService/internal/api/handlers"
	"github.com/m04kA/SMC-ShopBookingService/internal/api/middleware"
	"github.com/m04kA/SMC-ShopBookingService/internal/domain"
	"github.com/m04kA/SMC-ShopBookingService/internal/service/bookings"
)

const (
	msgInvalidBookingID  = "некорректный ID бронирования"
	msgMissingStaffID    = "отсутствует ID сотрудника"
	msgUnknownAction     = "неизвестное действие"
	msgBookingNotFound   = "бронирование не найдено"
	msgForbidden         = "доступ запрещен"
	msgInvalidTransition = "действие недоступно в текущем статусе бронирования"
)

// ActionPattern ограничение переменной {action} в маршруте
const ActionPattern = "approve|reject|cancel|request-deposit|confirm-deposit"

var actions = map[string]domain.BookingOperation{
	"approve":         domain.OpApprove,
	"reject":          domain.OpReject,
	"cancel":          domain.OpCancel,
	"request-deposit": domain.OpRequestDeposit,
	"confirm-deposit": domain.OpConfirmDeposit,
}

type Handler struct {
	service BookingService
	logger  Logger
}

func NewHandler(service BookingService, logger Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Handle PATCH /api/v1/bookings/{bookingId}/{action}
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	bookingID, err := handlers.PathInt64(r, "bookingId")
	if err != nil {
		h.logger.Warn("PATCH /bookings/{id}/{action} - Invalid booking ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidBookingID)
		return
	}

	action := mux.Vars(r)["action"]
	op, ok := actions[action]
	if !ok {
		h.logger.Warn("PATCH /bookings/{id}/{action} - Unknown action: %q", action)
		handlers.RespondBadRequest(w, msgUnknownAction)
		return
	}

	staffID, ok := middleware.GetStaffID(r.Context())
	if !ok {
		h.logger.Warn("PATCH /bookings/{id}/%s - Missing staff ID", action)
		handlers.RespondUnauthorized(w, msgMissingStaffID)
		return
	}

	booking, err := h.service.Apply(r.Context(), op, bookingID, staffID)
	if err != nil {
		switch {
		case errors.Is(err, bookings.ErrBookingNotFound), errors.Is(err, bookings.ErrShopNotFound):
			h.logger.Warn("PATCH /bookings/{id}/%s - Booking not found: booking_id=%d", action, bookingID)
			handlers.RespondNotFound(w, msgBookingNotFound)

		case errors.Is(err, bookings.ErrAccessDenied):
			h.logger.Warn("PATCH /bookings/{id}/%s - Access denied: booking_id=%d, staff_id=%d", action, bookingID, staffID)
			handlers.RespondForbidden(w, msgForbidden)

		case errors.Is(err, bookings.ErrInvalidTransition):
			h.logger.Warn("PATCH /bookings/{id}/%s - Invalid transition: booking_id=%d", action, bookingID)
			handlers.RespondConflict(w, msgInvalidTransition)

		case errors.Is(err, bookings.ErrInvalidInput):
			handlers.RespondBadRequest(w, msgUnknownAction)

		default:
			h.logger.Error("PATCH /bookings/{id}/%s - Failed: booking_id=%d, error=%v", action, bookingID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("PATCH /bookings/{id}/%s - Done: booking_id=%d, status=%s, deposit=%s",
		action, bookingID, booking.Status, booking.DepositStatus)
	handlers.RespondJSON(w, http.StatusOK, booking)
}
