package list_shop_bookings

import (
	"net/http"
	"strconv"

	"github.com/m04kA/SMC-ShopBookingService/internal/api/handlers"
	"github.com/m04kA/SMC-ShopBookingService/internal/service/bookings/models"
)

// ToServiceRequest собирает фильтр из query-параметров
func ToServiceRequest(r *http.Request, shopID, staffID int64) (*models.ListBookingsRequest, error) {
	req := &models.ListBookingsRequest{
		StaffID: staffID,
		ShopID:  shopID,
		From:    handlers.OptionalQuery(r, "from"),
		To:      handlers.OptionalQuery(r, "to"),
		Status:  handlers.OptionalQuery(r, "status"),
	}

	if v := r.URL.Query().Get("includeInactive"); v != "" {
		include, err := strconv.ParseBool(v)
		if err != nil {
			return nil, err
		}
		req.IncludeInactive = include
	}

	return req, nil
}
