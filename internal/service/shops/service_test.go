package shops

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-ShopBookingService/internal/domain"
	shopRepo "github.com/m04kA/SMC-ShopBookingService/internal/infra/storage/shop"
	"github.com/m04kA/SMC-ShopBookingService/internal/service/shops/models"
	"github.com/m04kA/SMC-ShopBookingService/pkg/logger"
	"github.com/m04kA/SMC-ShopBookingService/pkg/ptr"
	"github.com/m04kA/SMC-ShopBookingService/pkg/types"
)

const staffID = int64(500)

type fakeShops struct {
	shop           domain.Shop
	calendarWrites int
}

func (f *fakeShops) GetByID(_ context.Context, id int64) (*domain.Shop, error) {
	if id != f.shop.ID {
		return nil, shopRepo.ErrShopNotFound
	}
	s := f.shop
	return &s, nil
}

func (f *fakeShops) UpdateCalendar(_ context.Context, s *domain.Shop) error {
	f.calendarWrites++
	f.shop.WeeklySchedule = s.WeeklySchedule
	f.shop.ClosedDates = s.ClosedDates
	f.shop.DepositRequired = s.DepositRequired
	f.shop.DepositAmount = s.DepositAmount
	return nil
}

func (f *fakeShops) UpdateSlotOverrides(_ context.Context, _ int64, overrides domain.SlotOverrideMap) error {
	f.shop.SlotOverrides = overrides
	return nil
}

type recordingCache struct {
	dates        []string
	shopsFlushed []int64
}

func (c *recordingCache) Invalidate(_ context.Context, _ int64, dates ...string) {
	c.dates = append(c.dates, dates...)
}

func (c *recordingCache) InvalidateShop(_ context.Context, shopID int64) {
	c.shopsFlushed = append(c.shopsFlushed, shopID)
}

type inlineTx struct{}

func (inlineTx) DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

func newTestService() (*Service, *fakeShops, *recordingCache) {
	repo := &fakeShops{shop: domain.Shop{
		ID:             1,
		Slug:           "happy-paws",
		Name:           "Happy Paws",
		WeeklySchedule: domain.DefaultWeeklySchedule(),
		ClosedDates:    []string{},
		SlotOverrides:  domain.SlotOverrideMap{},
		StaffIDs:       []int64{staffID},
	}}
	cache := &recordingCache{}
	return NewService(repo, cache, inlineTx{}, logger.Nop()), repo, cache
}

func TestGetCalendar(t *testing.T) {
	svc, _, _ := newTestService()

	resp, err := svc.GetCalendar(context.Background(), 1, staffID)
	require.NoError(t, err)
	assert.Equal(t, "happy-paws", resp.Slug)
	assert.True(t, resp.WeeklySchedule["sunday"].Closed)
	assert.Equal(t, models.DaySchedule{Open: "09:00", Close: "18:00"}, resp.WeeklySchedule["monday"])

	_, err = svc.GetCalendar(context.Background(), 1, 777)
	assert.ErrorIs(t, err, ErrAccessDenied)

	_, err = svc.GetCalendar(context.Background(), 2, staffID)
	assert.ErrorIs(t, err, ErrShopNotFound)
}

func TestUpdateCalendar(t *testing.T) {
	svc, repo, cache := newTestService()

	resp, err := svc.UpdateCalendar(context.Background(), &models.UpdateCalendarRequest{
		StaffID: staffID,
		ShopID:  1,
		WeeklySchedule: map[string]models.DaySchedule{
			"sunday": {Open: "10:00", Close: "14:00"},
			"1":      {Closed: true},
		},
		ClosedDates:     ptr.Ptr([]string{"2025-12-31", "2025-12-25", "2025-12-31"}),
		DepositRequired: ptr.Ptr(true),
		DepositAmount:   ptr.Ptr(5000.0),
	})

	require.NoError(t, err)
	assert.Equal(t, domain.DaySchedule{Open: "10:00", Close: "14:00"}, repo.shop.WeeklySchedule[0])
	assert.True(t, repo.shop.WeeklySchedule[1].Closed)
	assert.Equal(t, domain.DefaultDaySchedule(2), repo.shop.WeeklySchedule[2], "untouched days keep their schedule")
	assert.Equal(t, []string{"2025-12-25", "2025-12-31"}, repo.shop.ClosedDates)
	assert.True(t, repo.shop.DepositRequired)
	assert.Equal(t, 5000.0, resp.DepositAmount)
	assert.Equal(t, []int64{1}, cache.shopsFlushed)
}

func TestUpdateCalendar_InvalidInput(t *testing.T) {
	tests := []struct {
		name string
		req  models.UpdateCalendarRequest
	}{
		{"unknown weekday", models.UpdateCalendarRequest{WeeklySchedule: map[string]models.DaySchedule{"funday": {Open: "09:00", Close: "10:00"}}}},
		{"open after close", models.UpdateCalendarRequest{WeeklySchedule: map[string]models.DaySchedule{"monday": {Open: "18:00", Close: "09:00"}}}},
		{"malformed time", models.UpdateCalendarRequest{WeeklySchedule: map[string]models.DaySchedule{"monday": {Open: "9am", Close: "18:00"}}}},
		{"malformed closed date", models.UpdateCalendarRequest{ClosedDates: ptr.Ptr([]string{"31.12.2025"})}},
		{"negative deposit", models.UpdateCalendarRequest{DepositAmount: ptr.Ptr(-1.0)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, repo, cache := newTestService()
			req := tt.req
			req.ShopID = 1
			req.StaffID = staffID

			_, err := svc.UpdateCalendar(context.Background(), &req)

			assert.ErrorIs(t, err, ErrInvalidInput)
			assert.Zero(t, repo.calendarWrites)
			assert.Empty(t, cache.shopsFlushed)
		})
	}
}

func TestSetSlotOverride(t *testing.T) {
	svc, repo, cache := newTestService()
	ctx := context.Background()
	set := func(kind string, enabled bool) {
		t.Helper()
		_, err := svc.SetSlotOverride(ctx, &models.SetSlotOverrideRequest{
			StaffID: staffID, ShopID: 1, Date: "2025-10-20", Time: "10:00", Kind: kind, Enabled: enabled,
		})
		require.NoError(t, err)
	}

	set("blocked", true)
	set("blocked", true)
	assert.Equal(t, []types.TimeString{"10:00"}, repo.shop.SlotOverrides["2025-10-20"].Blocked)

	set("force_open", true)
	day := repo.shop.SlotOverrides["2025-10-20"]
	assert.Empty(t, day.Blocked, "a slot is never both blocked and forced open")
	assert.Equal(t, []types.TimeString{"10:00"}, day.ForceOpen)

	set("force_open", false)
	assert.NotContains(t, repo.shop.SlotOverrides, "2025-10-20", "empty dates are dropped")

	assert.Equal(t, []string{"2025-10-20", "2025-10-20", "2025-10-20", "2025-10-20"}, cache.dates)
}

func TestSetSlotOverride_InvalidInput(t *testing.T) {
	svc, _, cache := newTestService()

	for _, req := range []models.SetSlotOverrideRequest{
		{Date: "2025-13-01", Time: "10:00", Kind: "blocked"},
		{Date: "2025-10-20", Time: "25:00", Kind: "blocked"},
		{Date: "2025-10-20", Time: "10:00", Kind: "closed"},
	} {
		req := req
		req.ShopID = 1
		req.StaffID = staffID
		_, err := svc.SetSlotOverride(context.Background(), &req)
		assert.ErrorIs(t, err, ErrInvalidInput)
	}

	_, err := svc.SetSlotOverride(context.Background(), &models.SetSlotOverrideRequest{
		StaffID: 777, ShopID: 1, Date: "2025-10-20", Time: "10:00", Kind: "blocked", Enabled: true,
	})
	assert.ErrorIs(t, err, ErrAccessDenied)
	assert.Empty(t, cache.dates)
}
