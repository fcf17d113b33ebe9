package get_availability

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-ShopBookingService/internal/domain"
	"github.com/m04kA/SMC-ShopBookingService/internal/infra/storage/catalog"
	"github.com/m04kA/SMC-ShopBookingService/internal/infra/storage/shop"
	"github.com/m04kA/SMC-ShopBookingService/pkg/clock"
	"github.com/m04kA/SMC-ShopBookingService/pkg/logger"
	"github.com/m04kA/SMC-ShopBookingService/pkg/ptr"
	"github.com/m04kA/SMC-ShopBookingService/pkg/types"
)

const wednesday = "2025-10-15"

type fixture struct {
	shops    *mockShopRepo
	services *mockServiceRepo
	bookings *mockBookingRepo
	cache    *memoryCache
	uc       *UseCase
}

// now задается в зоне UTC+9
func newFixture(now time.Time) *fixture {
	f := &fixture{
		shops:    &mockShopRepo{},
		services: &mockServiceRepo{},
		bookings: &mockBookingRepo{},
		cache:    newMemoryCache(),
	}
	f.uc = NewUseCase(f.shops, f.services, f.bookings, f.cache,
		clock.NewFixed(now, domain.DefaultUTCOffsetMinutes), domain.DefaultSlotStepMinutes, logger.Nop())
	return f
}

func defaultShop() *domain.Shop {
	return &domain.Shop{
		ID:             1,
		Slug:           "happy-paws",
		WeeklySchedule: domain.DefaultWeeklySchedule(),
		SlotOverrides:  domain.SlotOverrideMap{},
	}
}

func kst(y int, m time.Month, d, hh, mm int) time.Time {
	return time.Date(y, m, d, hh, mm, 0, 0, clock.FixedZone(domain.DefaultUTCOffsetMinutes))
}

func mustDate(s string) time.Time {
	d, _ := time.Parse(domain.DateFormat, s)
	return d
}

func verdicts(day domain.DayAvailability) map[string]domain.SlotVerdict {
	m := make(map[string]domain.SlotVerdict, len(day.Slots))
	for _, s := range day.Slots {
		m[s.StartTime.String()] = s
	}
	return m
}

func TestExecute_DefaultScheduleAllAvailable(t *testing.T) {
	f := newFixture(kst(2025, 10, 14, 12, 0))
	f.shops.On("GetBySlug", mock.Anything, "happy-paws").Return(defaultShop(), nil)
	f.services.On("GetByID", mock.Anything, int64(1), int64(3)).
		Return(&domain.Service{ID: 3, ShopID: 1, DurationMinutes: 60, Active: true}, nil)
	f.bookings.On("GetActiveByShopAndDate", mock.Anything, int64(1), mustDate(wednesday)).
		Return([]*domain.Booking{}, nil)

	resp, err := f.uc.Execute(context.Background(), &Request{
		ShopSlug:  "happy-paws",
		Date:      wednesday,
		ServiceID: ptr.Ptr(int64(3)),
	})

	require.NoError(t, err)
	assert.Equal(t, 60, resp.DurationMinutes)
	assert.False(t, resp.Availability.Closed)
	assert.Equal(t, "Wednesday", resp.Availability.Weekday)

	slots := resp.Availability.Slots
	require.Len(t, slots, 18)
	assert.Equal(t, "09:00", slots[0].StartTime.String())
	assert.Equal(t, "17:30", slots[17].StartTime.String())

	v := verdicts(resp.Availability)
	assert.True(t, v["17:00"].Available)
	assert.Equal(t, domain.ReasonExceedsHours, v["17:30"].Reason)
}

func TestExecute_ClosedSundaySkipsBookings(t *testing.T) {
	f := newFixture(kst(2025, 10, 14, 12, 0))
	f.shops.On("GetBySlug", mock.Anything, "happy-paws").Return(defaultShop(), nil)

	resp, err := f.uc.Execute(context.Background(), &Request{
		ShopSlug:        "happy-paws",
		Date:            "2025-10-19",
		DurationMinutes: ptr.Ptr(30),
	})

	require.NoError(t, err)
	assert.True(t, resp.Availability.Closed)
	assert.Equal(t, domain.ClosureWeekly, resp.Availability.ClosureReason)
	assert.Empty(t, resp.Availability.Slots)
	f.bookings.AssertNotCalled(t, "GetActiveByShopAndDate", mock.Anything, mock.Anything, mock.Anything)
}

func TestExecute_ExistingBookingAndOverrides(t *testing.T) {
	f := newFixture(kst(2025, 10, 14, 12, 0))
	s := defaultShop()
	s.SlotOverrides[wednesday] = domain.DayOverrides{Blocked: []types.TimeString{"14:00"}, ForceOpen: []types.TimeString{"10:00"}}
	f.shops.On("GetBySlug", mock.Anything, "happy-paws").Return(s, nil)
	f.bookings.On("GetActiveByShopAndDate", mock.Anything, int64(1), mustDate(wednesday)).
		Return([]*domain.Booking{{ID: 9, StartTime: "10:00", DurationMinutes: 60, Status: domain.StatusConfirmed}}, nil)

	resp, err := f.uc.Execute(context.Background(), &Request{
		ShopSlug:        "happy-paws",
		Date:            wednesday,
		DurationMinutes: ptr.Ptr(30),
	})

	require.NoError(t, err)
	v := verdicts(resp.Availability)
	assert.True(t, v["09:30"].Available)
	assert.True(t, v["10:00"].Available, "forced open despite the booking")
	assert.Equal(t, domain.ReasonAlreadyBooked, v["10:30"].Reason)
	assert.True(t, v["11:00"].Available)
	assert.Equal(t, domain.ReasonBlocked, v["14:00"].Reason)
}

func TestExecute_TodayMarksPastSlotsAndIsNotCached(t *testing.T) {
	f := newFixture(kst(2025, 10, 15, 10, 0))
	f.shops.On("GetBySlug", mock.Anything, "happy-paws").Return(defaultShop(), nil)
	f.bookings.On("GetActiveByShopAndDate", mock.Anything, int64(1), mustDate(wednesday)).
		Return([]*domain.Booking{}, nil)

	resp, err := f.uc.Execute(context.Background(), &Request{
		ShopSlug:        "happy-paws",
		Date:            wednesday,
		DurationMinutes: ptr.Ptr(30),
	})

	require.NoError(t, err)
	v := verdicts(resp.Availability)
	assert.Equal(t, domain.ReasonPast, v["09:30"].Reason)
	assert.Equal(t, domain.ReasonPast, v["10:00"].Reason)
	assert.True(t, v["10:30"].Available)
	assert.Empty(t, f.cache.entries)
}

func TestExecute_FutureDateServedFromCache(t *testing.T) {
	f := newFixture(kst(2025, 10, 14, 12, 0))
	f.shops.On("GetBySlug", mock.Anything, "happy-paws").Return(defaultShop(), nil)
	f.bookings.On("GetActiveByShopAndDate", mock.Anything, int64(1), mustDate(wednesday)).
		Return([]*domain.Booking{}, nil).Once()

	req := &Request{ShopSlug: "happy-paws", Date: wednesday, DurationMinutes: ptr.Ptr(30)}

	first, err := f.uc.Execute(context.Background(), req)
	require.NoError(t, err)
	second, err := f.uc.Execute(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, first.Availability, second.Availability)
	assert.Equal(t, 1, f.cache.hits)
	f.bookings.AssertNumberOfCalls(t, "GetActiveByShopAndDate", 1)
}

func TestExecute_Errors(t *testing.T) {
	tests := []struct {
		name  string
		req   *Request
		setup func(f *fixture)
		want  error
	}{
		{
			name: "bad date",
			req:  &Request{ShopSlug: "happy-paws", Date: "15.10.2025", DurationMinutes: ptr.Ptr(30)},
			want: ErrInvalidInput,
		},
		{
			name: "no duration source",
			req:  &Request{ShopSlug: "happy-paws", Date: wednesday},
			want: ErrInvalidInput,
		},
		{
			name: "both duration sources",
			req:  &Request{ShopSlug: "happy-paws", Date: wednesday, ServiceID: ptr.Ptr(int64(1)), DurationMinutes: ptr.Ptr(30)},
			want: ErrInvalidInput,
		},
		{
			name: "zero duration",
			req:  &Request{ShopSlug: "happy-paws", Date: wednesday, DurationMinutes: ptr.Ptr(0)},
			want: ErrInvalidInput,
		},
		{
			name: "unknown shop",
			req:  &Request{ShopSlug: "nope", Date: wednesday, DurationMinutes: ptr.Ptr(30)},
			setup: func(f *fixture) {
				f.shops.On("GetBySlug", mock.Anything, "nope").Return(nil, shop.ErrShopNotFound)
			},
			want: ErrShopNotFound,
		},
		{
			name: "unknown service",
			req:  &Request{ShopSlug: "happy-paws", Date: wednesday, ServiceID: ptr.Ptr(int64(5))},
			setup: func(f *fixture) {
				f.shops.On("GetBySlug", mock.Anything, "happy-paws").Return(defaultShop(), nil)
				f.services.On("GetByID", mock.Anything, int64(1), int64(5)).Return(nil, catalog.ErrServiceNotFound)
			},
			want: ErrServiceNotFound,
		},
		{
			name: "inactive service",
			req:  &Request{ShopSlug: "happy-paws", Date: wednesday, ServiceID: ptr.Ptr(int64(5))},
			setup: func(f *fixture) {
				f.shops.On("GetBySlug", mock.Anything, "happy-paws").Return(defaultShop(), nil)
				f.services.On("GetByID", mock.Anything, int64(1), int64(5)).
					Return(&domain.Service{ID: 5, DurationMinutes: 30, Active: false}, nil)
			},
			want: ErrServiceNotFound,
		},
		{
			name: "storage failure",
			req:  &Request{ShopSlug: "happy-paws", Date: wednesday, DurationMinutes: ptr.Ptr(30)},
			setup: func(f *fixture) {
				f.shops.On("GetBySlug", mock.Anything, "happy-paws").Return(nil, errors.New("connection reset"))
			},
			want: ErrInternal,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(kst(2025, 10, 14, 12, 0))
			if tt.setup != nil {
				tt.setup(f)
			}

			_, err := f.uc.Execute(context.Background(), tt.req)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}
