package create_booking

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-ShopBookingService/internal/domain"
	"github.com/m04kA/SMC-ShopBookingService/internal/infra/events"
	"github.com/m04kA/SMC-ShopBookingService/internal/infra/storage/customer"
	"github.com/m04kA/SMC-ShopBookingService/internal/validation"
	"github.com/m04kA/SMC-ShopBookingService/pkg/clock"
	"github.com/m04kA/SMC-ShopBookingService/pkg/logger"
	"github.com/m04kA/SMC-ShopBookingService/pkg/types"
)

const (
	wednesday = "2025-10-15"
	shopID    = int64(1)
	staffID   = int64(500)
	serviceID = int64(3)
)

type fixture struct {
	shops     *mockShopRepo
	services  *mockServiceRepo
	bookings  *mockBookingRepo
	customers *mockCustomerRepo
	cache     *recordingCache
	publisher *recordingPublisher
	shop      *domain.Shop
	uc        *UseCase
}

func newFixture(t *testing.T, existing []*domain.Booking) *fixture {
	t.Helper()

	f := &fixture{
		shops:     &mockShopRepo{},
		services:  &mockServiceRepo{},
		bookings:  &mockBookingRepo{},
		customers: &mockCustomerRepo{},
		cache:     &recordingCache{},
		publisher: &recordingPublisher{},
		shop: &domain.Shop{
			ID:             shopID,
			Slug:           "happy-paws",
			WeeklySchedule: domain.DefaultWeeklySchedule(),
			SlotOverrides:  domain.SlotOverrideMap{},
			StaffIDs:       []int64{staffID},
		},
	}

	date, _ := time.Parse(domain.DateFormat, wednesday)

	f.shops.On("GetBySlug", mock.Anything, "happy-paws").Return(f.shop, nil).Maybe()
	f.shops.On("GetByID", mock.Anything, shopID).Return(f.shop, nil).Maybe()
	f.services.On("GetByID", mock.Anything, shopID, serviceID).
		Return(&domain.Service{ID: serviceID, ShopID: shopID, Name: "Full groom", DurationMinutes: 60, Price: 55000, Active: true}, nil).Maybe()
	f.bookings.On("LockShopDate", mock.Anything, shopID, date).Return(nil).Maybe()
	f.bookings.On("GetActiveByShopAndDate", mock.Anything, shopID, date).Return(existing, nil).Maybe()
	f.bookings.On("Create", mock.Anything, mock.AnythingOfType("*domain.Booking")).
		Return(func(_ context.Context, b *domain.Booking) *domain.Booking {
			b.ID = 100
			return b
		}, nil).Maybe()

	// 2025-10-14 12:00 UTC+9, накануне записи
	now := time.Date(2025, 10, 14, 12, 0, 0, 0, clock.FixedZone(domain.DefaultUTCOffsetMinutes))

	f.uc = NewUseCase(f.shops, f.services, f.bookings, f.customers, f.cache, f.publisher,
		validation.New(), inlineTx{}, clock.NewFixed(now, domain.DefaultUTCOffsetMinutes),
		domain.DefaultSlotStepMinutes, logger.Nop())
	return f
}

func (f *fixture) newCustomer() {
	f.customers.On("GetByShopAndPhone", mock.Anything, shopID, "01012345678").Return(nil, customer.ErrCustomerNotFound)
	f.customers.On("Create", mock.Anything, mock.AnythingOfType("*domain.Customer")).
		Return(func(_ context.Context, c *domain.Customer) *domain.Customer {
			c.ID = 42
			return c
		}, nil)
}

func onlineRequest(start string) *Request {
	return &Request{
		Source:        domain.SourceOnline,
		ShopSlug:      "happy-paws",
		ServiceID:     serviceID,
		Date:          wednesday,
		StartTime:     start,
		CustomerName:  "Kim",
		CustomerPhone: "010-1234-5678",
		PetName:       "Bori",
		Memo:          "sensitive ears",
	}
}

func manualRequest(start string) *Request {
	req := onlineRequest(start)
	req.Source = domain.SourceManual
	req.ShopSlug = ""
	req.ShopID = shopID
	req.StaffID = staffID
	return req
}

func confirmedAt(id int64, start string) *domain.Booking {
	return &domain.Booking{ID: id, StartTime: types.TimeString(start), DurationMinutes: 60, Status: domain.StatusConfirmed}
}

func TestExecute_OnlineNewCustomer(t *testing.T) {
	f := newFixture(t, []*domain.Booking{})
	f.newCustomer()

	resp, err := f.uc.Execute(context.Background(), onlineRequest("10:00"))

	require.NoError(t, err)
	assert.True(t, resp.NewCustomer)

	b := resp.Booking
	assert.Equal(t, int64(100), b.ID)
	assert.Equal(t, int64(42), b.CustomerID)
	assert.Equal(t, domain.StatusPending, b.Status)
	assert.Equal(t, domain.DepositNone, b.DepositStatus)
	assert.Equal(t, 60, b.DurationMinutes)
	assert.Equal(t, "Full groom", b.ServiceName)
	assert.Equal(t, "01012345678", b.CustomerPhone)
	assert.True(t, b.IsFirstVisit)

	created := f.customers.Calls[1].Arguments.Get(1).(*domain.Customer)
	assert.Equal(t, 0, created.VisitCount)
	require.Len(t, created.Memos, 1)
	assert.Equal(t, "sensitive ears", created.Memos[0].Text)
	assert.Equal(t, "Bori", created.Pet.Name)
	require.NotNil(t, created.FirstVisitDate)

	assert.Equal(t, []string{wednesday}, f.cache.invalidated)
	require.Len(t, f.publisher.events, 1)
	assert.Equal(t, events.TypeBookingCreated, f.publisher.events[0].Type)
}

func TestExecute_ExistingCustomerMergesProfile(t *testing.T) {
	f := newFixture(t, []*domain.Booking{})
	existing := &domain.Customer{
		ID:     42,
		ShopID: shopID,
		Phone:  "01012345678",
		Name:   "Kim",
		Pet:    domain.PetProfile{Name: "Bori", Breed: "Maltese"},
		Memos:  []domain.MemoEntry{{Text: "first note"}},
	}
	f.customers.On("GetByShopAndPhone", mock.Anything, shopID, "01012345678").Return(existing, nil)
	f.customers.On("UpdateProfile", mock.Anything, existing).Return(nil)

	req := onlineRequest("11:00")
	req.PetName = ""
	req.PetWeight = "3kg"

	resp, err := f.uc.Execute(context.Background(), req)

	require.NoError(t, err)
	assert.False(t, resp.NewCustomer)
	assert.False(t, resp.Booking.IsFirstVisit)
	assert.Equal(t, "Bori", existing.Pet.Name)
	assert.Equal(t, "Maltese", existing.Pet.Breed)
	assert.Equal(t, "3kg", existing.Pet.Weight)
	require.Len(t, existing.Memos, 2)
	assert.Equal(t, "sensitive ears", existing.Memos[1].Text)
}

func TestExecute_ConflictWithActiveBooking(t *testing.T) {
	f := newFixture(t, []*domain.Booking{confirmedAt(9, "10:00")})

	_, err := f.uc.Execute(context.Background(), onlineRequest("10:30"))

	assert.ErrorIs(t, err, ErrSlotConflict)
	f.bookings.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	assert.Empty(t, f.publisher.events)
}

func TestExecute_CancelledBookingDoesNotConflict(t *testing.T) {
	cancelled := confirmedAt(9, "10:00")
	cancelled.Status = domain.StatusCancelled
	f := newFixture(t, []*domain.Booking{cancelled})
	f.newCustomer()

	_, err := f.uc.Execute(context.Background(), onlineRequest("10:00"))

	assert.NoError(t, err)
}

func TestExecute_TouchingBookingsDoNotConflict(t *testing.T) {
	f := newFixture(t, []*domain.Booking{confirmedAt(9, "10:00")})
	f.newCustomer()

	_, err := f.uc.Execute(context.Background(), onlineRequest("11:00"))

	assert.NoError(t, err)
}

func TestExecute_ForceOpenAllowsDoubleBooking(t *testing.T) {
	f := newFixture(t, []*domain.Booking{confirmedAt(9, "10:00")})
	f.shop.SlotOverrides[wednesday] = domain.DayOverrides{ForceOpen: []types.TimeString{"10:00"}}
	f.newCustomer()

	_, err := f.uc.Execute(context.Background(), onlineRequest("10:00"))

	assert.NoError(t, err)
}

func TestExecute_BlockedSlot(t *testing.T) {
	t.Run("online is rejected", func(t *testing.T) {
		f := newFixture(t, []*domain.Booking{})
		f.shop.SlotOverrides[wednesday] = domain.DayOverrides{Blocked: []types.TimeString{"14:00"}}

		_, err := f.uc.Execute(context.Background(), onlineRequest("14:00"))

		assert.ErrorIs(t, err, ErrSlotUnavailable)
		assert.Contains(t, err.Error(), string(domain.ReasonBlocked))
	})

	t.Run("manual ignores blocks and is confirmed", func(t *testing.T) {
		f := newFixture(t, []*domain.Booking{})
		f.shop.SlotOverrides[wednesday] = domain.DayOverrides{Blocked: []types.TimeString{"14:00"}}
		f.newCustomer()

		resp, err := f.uc.Execute(context.Background(), manualRequest("14:00"))

		require.NoError(t, err)
		assert.Equal(t, domain.StatusConfirmed, resp.Booking.Status)
		assert.Equal(t, domain.SourceManual, resp.Booking.Source)
	})
}

func TestExecute_SlotGrid(t *testing.T) {
	t.Run("online off-grid start is rejected", func(t *testing.T) {
		f := newFixture(t, []*domain.Booking{})

		_, err := f.uc.Execute(context.Background(), onlineRequest("10:15"))

		assert.ErrorIs(t, err, ErrSlotUnavailable)
		assert.Contains(t, err.Error(), string(domain.ReasonNotOnGrid))
	})

	t.Run("manual off-grid start is accepted", func(t *testing.T) {
		f := newFixture(t, []*domain.Booking{})
		f.newCustomer()

		_, err := f.uc.Execute(context.Background(), manualRequest("10:15"))

		assert.NoError(t, err)
	})
}

func TestExecute_ExceedsBusinessHours(t *testing.T) {
	f := newFixture(t, []*domain.Booking{})

	_, err := f.uc.Execute(context.Background(), manualRequest("17:30"))

	assert.ErrorIs(t, err, ErrSlotUnavailable)
	assert.Contains(t, err.Error(), string(domain.ReasonExceedsHours))
}

func TestExecute_ClosedDate(t *testing.T) {
	f := newFixture(t, nil)
	req := onlineRequest("10:00")
	req.Date = "2025-10-19"

	_, err := f.uc.Execute(context.Background(), req)

	assert.ErrorIs(t, err, ErrShopClosed)
	f.bookings.AssertNotCalled(t, "LockShopDate", mock.Anything, mock.Anything, mock.Anything)
}

func TestExecute_ManualRequiresStaff(t *testing.T) {
	f := newFixture(t, nil)
	req := manualRequest("10:00")
	req.StaffID = 999

	_, err := f.uc.Execute(context.Background(), req)

	assert.ErrorIs(t, err, ErrForbidden)
}

func TestExecute_Validation(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(r *Request)
		field  string
	}{
		{"bad phone", func(r *Request) { r.CustomerPhone = "12ab" }, "customerPhone"},
		{"missing name", func(r *Request) { r.CustomerName = "" }, "customerName"},
		{"bad date", func(r *Request) { r.Date = "2025/10/15" }, "date"},
		{"bad time", func(r *Request) { r.StartTime = "25:00" }, "time"},
		{"no service", func(r *Request) { r.ServiceID = 0 }, "serviceId"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, nil)
			req := onlineRequest("10:00")
			tt.mutate(req)

			_, err := f.uc.Execute(context.Background(), req)

			assert.ErrorIs(t, err, ErrInvalidInput)
			assert.Contains(t, err.Error(), tt.field)
		})
	}
}
