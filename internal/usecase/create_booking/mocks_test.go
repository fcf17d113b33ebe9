package create_booking

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/m04kA/SMC-ShopBookingService/internal/domain"
	"github.com/m04kA/SMC-ShopBookingService/internal/infra/events"
)

type mockShopRepo struct{ mock.Mock }

func (m *mockShopRepo) GetByID(ctx context.Context, id int64) (*domain.Shop, error) {
	args := m.Called(ctx, id)
	if s, ok := args.Get(0).(*domain.Shop); ok {
		return s, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockShopRepo) GetBySlug(ctx context.Context, slug string) (*domain.Shop, error) {
	args := m.Called(ctx, slug)
	if s, ok := args.Get(0).(*domain.Shop); ok {
		return s, args.Error(1)
	}
	return nil, args.Error(1)
}

type mockServiceRepo struct{ mock.Mock }

func (m *mockServiceRepo) GetByID(ctx context.Context, shopID, serviceID int64) (*domain.Service, error) {
	args := m.Called(ctx, shopID, serviceID)
	if s, ok := args.Get(0).(*domain.Service); ok {
		return s, args.Error(1)
	}
	return nil, args.Error(1)
}

type mockBookingRepo struct{ mock.Mock }

func (m *mockBookingRepo) LockShopDate(ctx context.Context, shopID int64, date time.Time) error {
	return m.Called(ctx, shopID, date).Error(0)
}

func (m *mockBookingRepo) GetActiveByShopAndDate(ctx context.Context, shopID int64, date time.Time) ([]*domain.Booking, error) {
	args := m.Called(ctx, shopID, date)
	if b, ok := args.Get(0).([]*domain.Booking); ok {
		return b, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockBookingRepo) Create(ctx context.Context, booking *domain.Booking) (*domain.Booking, error) {
	args := m.Called(ctx, booking)
	if fn, ok := args.Get(0).(func(context.Context, *domain.Booking) *domain.Booking); ok {
		return fn(ctx, booking), args.Error(1)
	}
	if b, ok := args.Get(0).(*domain.Booking); ok {
		return b, args.Error(1)
	}
	return nil, args.Error(1)
}

type mockCustomerRepo struct{ mock.Mock }

func (m *mockCustomerRepo) GetByShopAndPhone(ctx context.Context, shopID int64, phone string) (*domain.Customer, error) {
	args := m.Called(ctx, shopID, phone)
	if c, ok := args.Get(0).(*domain.Customer); ok {
		return c, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockCustomerRepo) Create(ctx context.Context, c *domain.Customer) (*domain.Customer, error) {
	args := m.Called(ctx, c)
	if fn, ok := args.Get(0).(func(context.Context, *domain.Customer) *domain.Customer); ok {
		return fn(ctx, c), args.Error(1)
	}
	if created, ok := args.Get(0).(*domain.Customer); ok {
		return created, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockCustomerRepo) UpdateProfile(ctx context.Context, c *domain.Customer) error {
	return m.Called(ctx, c).Error(0)
}

type recordingCache struct {
	invalidated []string
}

func (c *recordingCache) Invalidate(_ context.Context, _ int64, dates ...string) {
	c.invalidated = append(c.invalidated, dates...)
}

type recordingPublisher struct {
	events []events.BookingEvent
}

func (p *recordingPublisher) Publish(_ context.Context, e events.BookingEvent) {
	p.events = append(p.events, e)
}

// inlineTx выполняет функцию без реальной транзакции
type inlineTx struct{}

func (inlineTx) DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}
