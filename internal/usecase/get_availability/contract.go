package get_availability

import (
	"context"
	"time"

	"github.com/m04kA/SMC-ShopBookingService/internal/domain"
)

// ShopRepository интерфейс репозитория магазинов
type ShopRepository interface {
	GetBySlug(ctx context.Context, slug string) (*domain.Shop, error)
}

// ServiceRepository интерфейс каталога услуг
type ServiceRepository interface {
	GetByID(ctx context.Context, shopID, serviceID int64) (*domain.Service, error)
}

// BookingRepository интерфейс репозитория бронирований
type BookingRepository interface {
	GetActiveByShopAndDate(ctx context.Context, shopID int64, date time.Time) ([]*domain.Booking, error)
}

// AvailabilityCache кеш собранной доступности
type AvailabilityCache interface {
	Get(ctx context.Context, shopID int64, date string, durationMinutes int) (*domain.DayAvailability, bool)
	Set(ctx context.Context, shopID int64, day *domain.DayAvailability, durationMinutes int)
}

// TimeProvider интерфейс для получения текущего времени в зоне магазина
type TimeProvider interface {
	Now() time.Time
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
