package get_availability

import (
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/m04kA/SMC-ShopBookingService/internal/api/handlers"
	getAvailability "github.com/m04kA/SMC-ShopBookingService/internal/usecase/get_availability"
)

const (
	msgInvalidParams   = "некорректные параметры запроса"
	msgShopNotFound    = "магазин не найден"
	msgServiceNotFound = "услуга не найдена"
)

type Handler struct {
	useCase GetAvailabilityUseCase
	logger  Logger
}

func NewHandler(useCase GetAvailabilityUseCase, logger Logger) *Handler {
	return &Handler{
		useCase: useCase,
		logger:  logger,
	}
}

// Handle GET /api/v1/shops/{slug}/availability
// Query params: date (обязательно), serviceId или duration
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	slug := mux.Vars(r)["slug"]
	query := r.URL.Query()

	req, err := ToUseCaseRequest(slug, query.Get("date"), query.Get("serviceId"), query.Get("duration"))
	if err != nil {
		h.logger.Warn("GET /shops/{slug}/availability - Invalid parameters: %v", err)
		handlers.RespondBadRequest(w, msgInvalidParams)
		return
	}

	result, err := h.useCase.Execute(r.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, getAvailability.ErrInvalidInput):
			h.logger.Warn("GET /shops/{slug}/availability - Invalid input: slug=%s, error=%v", slug, err)
			handlers.RespondErrorWithDetails(w, http.StatusBadRequest, msgInvalidParams,
				map[string]string{"reason": handlers.Reason(err, getAvailability.ErrInvalidInput)})

		case errors.Is(err, getAvailability.ErrShopNotFound):
			h.logger.Warn("GET /shops/{slug}/availability - Shop not found: slug=%s", slug)
			handlers.RespondNotFound(w, msgShopNotFound)

		case errors.Is(err, getAvailability.ErrServiceNotFound):
			h.logger.Warn("GET /shops/{slug}/availability - Service not found: slug=%s", slug)
			handlers.RespondNotFound(w, msgServiceNotFound)

		default:
			h.logger.Error("GET /shops/{slug}/availability - Failed to get availability: slug=%s, error=%v", slug, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	handlers.RespondJSON(w, http.StatusOK, FromUseCaseResponse(result))
}
