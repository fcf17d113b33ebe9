package reschedule_booking

import (
	"context"
	"time"

	"github.com/m04kA/SMC-ShopBookingService/internal/domain"
	"github.com/m04kA/SMC-ShopBookingService/internal/infra/events"
)

// ShopRepository интерфейс репозитория магазинов
type ShopRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Shop, error)
}

// ServiceRepository интерфейс каталога услуг
type ServiceRepository interface {
	GetByID(ctx context.Context, shopID, serviceID int64) (*domain.Service, error)
}

// BookingRepository интерфейс репозитория бронирований
type BookingRepository interface {
	LockShopDate(ctx context.Context, shopID int64, date time.Time) error
	GetByID(ctx context.Context, id int64) (*domain.Booking, error)
	GetActiveByShopAndDate(ctx context.Context, shopID int64, date time.Time) ([]*domain.Booking, error)
	Update(ctx context.Context, booking *domain.Booking) error
}

// CustomerRepository интерфейс репозитория клиентов
type CustomerRepository interface {
	DecrementVisitCount(ctx context.Context, id int64) error
}

// AvailabilityCache инвалидация кеша доступности
type AvailabilityCache interface {
	Invalidate(ctx context.Context, shopID int64, dates ...string)
}

// EventPublisher публикация событий бронирований
type EventPublisher interface {
	Publish(ctx context.Context, event events.BookingEvent)
}

// TransactionManager интерфейс для управления транзакциями
type TransactionManager interface {
	DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error
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
