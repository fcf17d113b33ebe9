package bookings

import (
	"context"
	"time"

	"github.com/m04kA/SMC-ShopBookingService/internal/domain"
	"github.com/m04kA/SMC-ShopBookingService/internal/infra/events"
	"github.com/m04kA/SMC-ShopBookingService/internal/integrations/notificationservice"
)

// BookingRepository интерфейс репозитория бронирований
type BookingRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Booking, error)
	GetByShopWithFilter(ctx context.Context, filter domain.ShopBookingsFilter) ([]*domain.Booking, error)
	ListDueForCompletion(ctx context.Context, filter domain.DueForCompletionFilter) ([]*domain.Booking, error)
	Update(ctx context.Context, booking *domain.Booking) error
	MarkVisitCompleted(ctx context.Context, id int64) (bool, error)
}

// CustomerRepository интерфейс репозитория клиентов
type CustomerRepository interface {
	IncrementVisitCount(ctx context.Context, id int64, visitedAt time.Time) error
	DecrementVisitCount(ctx context.Context, id int64) error
}

// ShopRepository интерфейс репозитория магазинов
type ShopRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Shop, error)
}

// NotificationClient интерфейс клиента NotificationService
type NotificationClient interface {
	SendDepositRequestWithGracefulDegradation(ctx context.Context, req *notificationservice.DepositRequest) error
}

// AvailabilityCache инвалидация кеша доступности
type AvailabilityCache interface {
	Invalidate(ctx context.Context, shopID int64, dates ...string)
}

// EventPublisher публикация событий бронирований
type EventPublisher interface {
	Publish(ctx context.Context, event events.BookingEvent)
}

// MetricsRecorder учет операций жизненного цикла
type MetricsRecorder interface {
	RecordBookingOperation(operation string, err error)
	RecordSweep(n int)
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
