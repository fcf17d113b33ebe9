package get_shop_calendar

import (
	"errors"
	"net/http"

	"github.com/m04kA/SMC-ShopBookingService/internal/api/handlers"
	"github.com/m04kA/SMC-ShopBookingService/internal/api/middleware"
	"github.com/m04kA/SMC-ShopBookingService/internal/service/shops"
)

const (
	msgInvalidShopID  = "некорректный ID магазина"
	msgMissingStaffID = "отсутствует ID сотрудника"
	msgShopNotFound   = "магазин не найден"
	msgForbidden      = "доступ запрещен"
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

// Handle GET /api/v1/shops/{shopId}/calendar
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	shopID, err := handlers.PathInt64(r, "shopId")
	if err != nil {
		h.logger.Warn("GET /shops/{id}/calendar - Invalid shop ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidShopID)
		return
	}

	staffID, ok := middleware.GetStaffID(r.Context())
	if !ok {
		handlers.RespondUnauthorized(w, msgMissingStaffID)
		return
	}

	calendar, err := h.service.GetCalendar(r.Context(), shopID, staffID)
	if err != nil {
		switch {
		case errors.Is(err, shops.ErrShopNotFound):
			handlers.RespondNotFound(w, msgShopNotFound)
		case errors.Is(err, shops.ErrAccessDenied):
			h.logger.Warn("GET /shops/{id}/calendar - Access denied: shop_id=%d, staff_id=%d", shopID, staffID)
			handlers.RespondForbidden(w, msgForbidden)
		default:
			h.logger.Error("GET /shops/{id}/calendar - Failed: shop_id=%d, error=%v", shopID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	handlers.RespondJSON(w, http.StatusOK, calendar)
}
