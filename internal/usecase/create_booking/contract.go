package create_booking

import (
	"context"
	"time"

	"github.com/m04kA/SMC-ShopBookingService/internal/domain"
	"github.com/m04kA/SMC-ShopBookingService/internal/infra/events"
)

// ShopRepository интерфейс репозитория магазинов
type ShopRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Shop, error)
	GetBySlug(ctx context.Context, slug string) (*domain.Shop, error)
}

// ServiceRepository интерфейс каталога услуг
type ServiceRepository interface {
	GetByID(ctx context.Context, shopID, serviceID int64) (*domain.Service, error)
}

// BookingRepository интерфейс репозитория бронирований
type BookingRepository interface {
	LockShopDate(ctx context.Context, shopID int64, date time.Time) error
	GetActiveByShopAndDate(ctx context.Context, shopID int64, date time.Time) ([]*domain.Booking, error)
	Create(ctx context.Context, booking *domain.Booking) (*domain.Booking, error)
}

// CustomerRepository интерфейс репозитория клиентов
type CustomerRepository interface {
	GetByShopAndPhone(ctx context.Context, shopID int64, phone string) (*domain.Customer, error)
	Create(ctx context.Context, c *domain.Customer) (*domain.Customer, error)
	UpdateProfile(ctx context.Context, c *domain.Customer) error
}

// AvailabilityCache инвалидация кеша доступности
type AvailabilityCache interface {
	Invalidate(ctx context.Context, shopID int64, dates ...string)
}

// EventPublisher публикация событий бронирований
type EventPublisher interface {
	Publish(ctx context.Context, event events.BookingEvent)
}

// Validator проверка входных данных по тегам
type Validator interface {
	Struct(s interface{}) error
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
