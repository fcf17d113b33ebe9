package get_availability

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/m04kA/SMC-ShopBookingService/internal/domain"
)

type mockShopRepo struct{ mock.Mock }

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

func (m *mockBookingRepo) GetActiveByShopAndDate(ctx context.Context, shopID int64, date time.Time) ([]*domain.Booking, error) {
	args := m.Called(ctx, shopID, date)
	if b, ok := args.Get(0).([]*domain.Booking); ok {
		return b, args.Error(1)
	}
	return nil, args.Error(1)
}

type memoryCache struct {
	entries map[string]domain.DayAvailability
	hits    int
}

func newMemoryCache() *memoryCache {
	return &memoryCache{entries: map[string]domain.DayAvailability{}}
}

func (c *memoryCache) Get(_ context.Context, _ int64, date string, _ int) (*domain.DayAvailability, bool) {
	d, ok := c.entries[date]
	if ok {
		c.hits++
	}
	return &d, ok
}

func (c *memoryCache) Set(_ context.Context, _ int64, day *domain.DayAvailability, _ int) {
	c.entries[day.Date] = *day
}
