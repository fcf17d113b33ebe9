package bookings

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/m04kA/SMC-ShopBookingService/internal/domain"
	"github.com/m04kA/SMC-ShopBookingService/internal/infra/events"
	bookingRepo "github.com/m04kA/SMC-ShopBookingService/internal/infra/storage/booking"
	shopRepo "github.com/m04kA/SMC-ShopBookingService/internal/infra/storage/shop"
	"github.com/m04kA/SMC-ShopBookingService/internal/integrations/notificationservice"
)

// fakeBookings хранит копии, как настоящая БД
type fakeBookings struct {
	rows map[int64]domain.Booking
}

func newFakeBookings(bookings ...*domain.Booking) *fakeBookings {
	f := &fakeBookings{rows: map[int64]domain.Booking{}}
	for _, b := range bookings {
		f.rows[b.ID] = *b
	}
	return f
}

func (f *fakeBookings) GetByID(_ context.Context, id int64) (*domain.Booking, error) {
	b, ok := f.rows[id]
	if !ok {
		return nil, bookingRepo.ErrBookingNotFound
	}
	return &b, nil
}

func (f *fakeBookings) GetByShopWithFilter(_ context.Context, filter domain.ShopBookingsFilter) ([]*domain.Booking, error) {
	result := make([]*domain.Booking, 0)
	for _, b := range f.rows {
		if b.ShopID != filter.ShopID {
			continue
		}
		if filter.Status != nil && b.Status != *filter.Status {
			continue
		}
		if filter.Status == nil && !filter.IncludeInactive && !b.IsActive() {
			continue
		}
		c := b
		result = append(result, &c)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

func (f *fakeBookings) ListDueForCompletion(_ context.Context, filter domain.DueForCompletionFilter) ([]*domain.Booking, error) {
	before := filter.Before.Format(domain.DateFormat)
	result := make([]*domain.Booking, 0)
	for _, b := range f.rows {
		if filter.ShopID != nil && b.ShopID != *filter.ShopID {
			continue
		}
		if b.Status != domain.StatusConfirmed || b.VisitCompleted {
			continue
		}
		if b.BookingDate.Format(domain.DateFormat) > before {
			continue
		}
		c := b
		result = append(result, &c)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

func (f *fakeBookings) Update(_ context.Context, b *domain.Booking) error {
	if _, ok := f.rows[b.ID]; !ok {
		return bookingRepo.ErrBookingNotFound
	}
	f.rows[b.ID] = *b
	return nil
}

func (f *fakeBookings) MarkVisitCompleted(_ context.Context, id int64) (bool, error) {
	b, ok := f.rows[id]
	if !ok || b.Status != domain.StatusConfirmed || b.VisitCompleted {
		return false, nil
	}
	b.VisitCompleted = true
	f.rows[id] = b
	return true, nil
}

type fakeCustomers struct {
	visits    map[int64]int
	lastVisit map[int64]time.Time
}

func newFakeCustomers() *fakeCustomers {
	return &fakeCustomers{visits: map[int64]int{}, lastVisit: map[int64]time.Time{}}
}

func (f *fakeCustomers) IncrementVisitCount(_ context.Context, id int64, at time.Time) error {
	f.visits[id]++
	f.lastVisit[id] = at
	return nil
}

func (f *fakeCustomers) DecrementVisitCount(_ context.Context, id int64) error {
	if f.visits[id] > 0 {
		f.visits[id]--
	}
	return nil
}

type fakeShops struct {
	shops map[int64]*domain.Shop
}

func (f *fakeShops) GetByID(_ context.Context, id int64) (*domain.Shop, error) {
	s, ok := f.shops[id]
	if !ok {
		return nil, shopRepo.ErrShopNotFound
	}
	return s, nil
}

type recordingNotifier struct {
	requests []*notificationservice.DepositRequest
	err      error
}

func (n *recordingNotifier) SendDepositRequestWithGracefulDegradation(_ context.Context, req *notificationservice.DepositRequest) error {
	n.requests = append(n.requests, req)
	return n.err
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

func (p *recordingPublisher) types() []events.Type {
	result := make([]events.Type, 0, len(p.events))
	for _, e := range p.events {
		result = append(result, e.Type)
	}
	return result
}

type recordingMetrics struct {
	operations map[string]int
	swept      int
}

func (m *recordingMetrics) RecordBookingOperation(op string, err error) {
	key := op + ":ok"
	if err != nil {
		key = op + ":error"
	}
	m.operations[key]++
}

func (m *recordingMetrics) RecordSweep(n int) {
	m.swept += n
}

// inlineTx выполняет функцию без транзакции: фейки не умеют откатывать изменения
type inlineTx struct{}

func (inlineTx) DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

var errBoom = errors.New("boom")
