package shops

import (
	"context"

	"github.com/m04kA/SMC-ShopBookingService/internal/domain"
)

// ShopRepository интерфейс репозитория магазинов
type ShopRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Shop, error)
	UpdateCalendar(ctx context.Context, shop *domain.Shop) error
	UpdateSlotOverrides(ctx context.Context, shopID int64, overrides domain.SlotOverrideMap) error
}

// AvailabilityCache инвалидация кеша доступности
type AvailabilityCache interface {
	Invalidate(ctx context.Context, shopID int64, dates ...string)
	InvalidateShop(ctx context.Context, shopID int64)
}

// TransactionManager интерфейс для управления транзакциями
type TransactionManager interface {
	DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
