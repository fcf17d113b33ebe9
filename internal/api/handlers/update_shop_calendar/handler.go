package update_shop_calendar

import (
	"errors"
	"net/http"

	"github.com/m04kA/SMC-ShopBookingService/internal/api/handlers"
	"github.com/m04kA/SMC-ShopBookingService/internal/api/middleware"
	"github.com/m04kA/SMC-ShopBookingService/internal/service/shops"
	"github.com/m04kA/SMC-ShopBookingService/internal/service/shops/models"
)

const (
	msgInvalidRequestBody = "некорректное тело запроса"
	msgInvalidShopID      = "некорректный ID магазина"
	msgMissingStaffID     = "отсутствует ID сотрудника"
	msgInvalidCalendar    = "некорректные настройки календаря"
	msgShopNotFound       = "магазин не найден"
	msgForbidden          = "доступ запрещен"
)

type Handler struct {
	service ShopService
	logger  Logger
}

func NewHandler(service ShopService, logger Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Handle PUT /api/v1/shops/{shopId}/calendar
// Частичное обновление: переданные дни недели, закрытые даты, настройки депозита
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	shopID, err := handlers.PathInt64(r, "shopId")
	if err != nil {
		h.logger.Warn("PUT /shops/{id}/calendar - Invalid shop ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidShopID)
		return
	}

	staffID, ok := middleware.GetStaffID(r.Context())
	if !ok {
		handlers.RespondUnauthorized(w, msgMissingStaffID)
		return
	}

	var req models.UpdateCalendarRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("PUT /shops/{id}/calendar - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}
	req.ShopID = shopID
	req.StaffID = staffID

	calendar, err := h.service.UpdateCalendar(r.Context(), &req)
	if err != nil {
		switch {
		case errors.Is(err, shops.ErrInvalidInput):
			h.logger.Warn("PUT /shops/{id}/calendar - Invalid calendar: shop_id=%d, error=%v", shopID, err)
			handlers.RespondErrorWithDetails(w, http.StatusBadRequest, msgInvalidCalendar,
				map[string]string{"reason": handlers.Reason(err, shops.ErrInvalidInput)})
		case errors.Is(err, shops.ErrShopNotFound):
			handlers.RespondNotFound(w, msgShopNotFound)
		case errors.Is(err, shops.ErrAccessDenied):
			h.logger.Warn("PUT /shops/{id}/calendar - Access denied: shop_id=%d, staff_id=%d", shopID, staffID)
			handlers.RespondForbidden(w, msgForbidden)
		default:
			h.logger.Error("PUT /shops/{id}/calendar - Failed: shop_id=%d, error=%v", shopID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("PUT /shops/{id}/calendar - Calendar updated: shop_id=%d, staff_id=%d", shopID, staffID)
	handlers.RespondJSON(w, http.StatusOK, calendar)
}
