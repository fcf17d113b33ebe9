package get_availability

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/m04kA/SMC-ShopBookingService/internal/domain"
	"github.com/m04kA/SMC-ShopBookingService/internal/infra/storage/catalog"
	"github.com/m04kA/SMC-ShopBookingService/internal/infra/storage/shop"
	"github.com/m04kA/SMC-ShopBookingService/internal/scheduling"
)

// UseCase use case для получения доступных слотов на дату
type UseCase struct {
	shopRepo     ShopRepository
	serviceRepo  ServiceRepository
	bookingRepo  BookingRepository
	cache        AvailabilityCache
	timeProvider TimeProvider
	slotStep     int
	logger       Logger
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(
	shopRepo ShopRepository,
	serviceRepo ServiceRepository,
	bookingRepo BookingRepository,
	cache AvailabilityCache,
	timeProvider TimeProvider,
	slotStep int,
	logger Logger,
) *UseCase {
	return &UseCase{
		shopRepo:     shopRepo,
		serviceRepo:  serviceRepo,
		bookingRepo:  bookingRepo,
		cache:        cache,
		timeProvider: timeProvider,
		slotStep:     slotStep,
		logger:       logger,
	}
}

// Execute выполняет use case получения доступности
// Чтение без блокировок: создание бронирования все равно перепроверяет слот
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	uc.logger.Info("GetAvailability: shop=%s, date=%s", req.ShopSlug, req.Date)

	// 1. Валидация входных данных
	date, err := validateRequest(req)
	if err != nil {
		uc.logger.Warn("GetAvailability: validation failed: %v", err)
		return nil, err
	}

	// 2. Получаем магазин
	s, err := uc.shopRepo.GetBySlug(ctx, req.ShopSlug)
	if err != nil {
		if errors.Is(err, shop.ErrShopNotFound) {
			uc.logger.Warn("GetAvailability: shop slug=%s not found", req.ShopSlug)
			return nil, ErrShopNotFound
		}
		uc.logger.Error("GetAvailability: failed to get shop slug=%s: %v", req.ShopSlug, err)
		return nil, fmt.Errorf("%w: failed to get shop: %v", ErrInternal, err)
	}
	for _, issue := range s.ConfigIssues {
		uc.logger.Warn("GetAvailability: shop=%d config: %s", s.ID, issue)
	}

	// 3. Определяем длительность
	duration, err := uc.resolveDuration(ctx, s.ID, req)
	if err != nil {
		return nil, err
	}

	// 4. Будущие даты отдаем из кеша: для них результат не зависит от текущего времени
	now := uc.timeProvider.Now()
	dateKey := date.Format(domain.DateFormat)
	cacheable := dateKey > now.Format(domain.DateFormat)

	if cacheable {
		if cached, ok := uc.cache.Get(ctx, s.ID, dateKey, duration); ok {
			return &Response{ShopID: s.ID, DurationMinutes: duration, Availability: *cached}, nil
		}
	}

	// 5. Рабочие часы на дату
	hours := scheduling.ResolveDay(s.WeeklySchedule, s.ClosedDates, date)

	// 6. Занятые интервалы (для закрытого дня не нужны)
	var occupied []scheduling.Interval
	if !hours.Closed {
		bookings, err := uc.bookingRepo.GetActiveByShopAndDate(ctx, s.ID, date)
		if err != nil {
			uc.logger.Error("GetAvailability: failed to get bookings shop=%d date=%s: %v", s.ID, dateKey, err)
			return nil, fmt.Errorf("%w: failed to get bookings: %v", ErrInternal, err)
		}
		occupied = scheduling.OccupiedRanges(bookings, 0)
	}

	// 7. Собираем вердикты по слотам
	day := scheduling.Assemble(scheduling.Input{
		Hours:           hours,
		Overrides:       scheduling.LookupOverrides(s.SlotOverrides, date),
		Occupied:        occupied,
		DurationMinutes: duration,
		SlotStep:        uc.slotStep,
		Now:             now,
	})

	if cacheable {
		uc.cache.Set(ctx, s.ID, &day, duration)
	}

	uc.logger.Info("GetAvailability: shop=%d date=%s closed=%t slots=%d", s.ID, dateKey, day.Closed, len(day.Slots))

	return &Response{ShopID: s.ID, DurationMinutes: duration, Availability: day}, nil
}

func (uc *UseCase) resolveDuration(ctx context.Context, shopID int64, req *Request) (int, error) {
	if req.ServiceID == nil {
		return *req.DurationMinutes, nil
	}

	service, err := uc.serviceRepo.GetByID(ctx, shopID, *req.ServiceID)
	if err != nil {
		if errors.Is(err, catalog.ErrServiceNotFound) {
			uc.logger.Warn("GetAvailability: service id=%d not found in shop=%d", *req.ServiceID, shopID)
			return 0, ErrServiceNotFound
		}
		uc.logger.Error("GetAvailability: failed to get service id=%d: %v", *req.ServiceID, err)
		return 0, fmt.Errorf("%w: failed to get service: %v", ErrInternal, err)
	}
	if !service.Active {
		uc.logger.Warn("GetAvailability: service id=%d is inactive", service.ID)
		return 0, ErrServiceNotFound
	}
	return service.DurationMinutes, nil
}

func validateRequest(req *Request) (time.Time, error) {
	if req.ShopSlug == "" {
		return time.Time{}, fmt.Errorf("%w: shop slug is required", ErrInvalidInput)
	}

	date, err := time.Parse(domain.DateFormat, req.Date)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: date must be YYYY-MM-DD", ErrInvalidInput)
	}

	switch {
	case req.ServiceID == nil && req.DurationMinutes == nil:
		return time.Time{}, fmt.Errorf("%w: serviceId or duration is required", ErrInvalidInput)
	case req.ServiceID != nil && req.DurationMinutes != nil:
		return time.Time{}, fmt.Errorf("%w: serviceId and duration are mutually exclusive", ErrInvalidInput)
	case req.ServiceID != nil && *req.ServiceID <= 0:
		return time.Time{}, fmt.Errorf("%w: serviceId must be positive", ErrInvalidInput)
	case req.DurationMinutes != nil && (*req.DurationMinutes <= 0 || *req.DurationMinutes > domain.MaxServiceDurationMinutes):
		return time.Time{}, fmt.Errorf("%w: duration must be in 1..%d minutes", ErrInvalidInput, domain.MaxServiceDurationMinutes)
	}

	return date, nil
}
