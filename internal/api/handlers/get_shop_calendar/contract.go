package get_shop_calendar

import (
	"context"

	"github.com/m04kA/SMC-ShopBookingService/internal/service/shops/models"
)

type ShopService interface {
	GetCalendar(ctx context.Context, shopID, staffID int64) (*models.CalendarResponse, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
