package reschedule_booking

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/m04kA/SMC-ShopBookingService/internal/domain"
	"github.com/m04kA/SMC-ShopBookingService/internal/infra/events"
	"github.com/m04kA/SMC-ShopBookingService/internal/infra/storage/booking"
	"github.com/m04kA/SMC-ShopBookingService/internal/infra/storage/catalog"
	"github.com/m04kA/SMC-ShopBookingService/internal/scheduling"
	"github.com/m04kA/SMC-ShopBookingService/pkg/types"
)

// UseCase use case для переноса бронирования сотрудником
type UseCase struct {
	shopRepo     ShopRepository
	serviceRepo  ServiceRepository
	bookingRepo  BookingRepository
	customerRepo CustomerRepository
	cache        AvailabilityCache
	publisher    EventPublisher
	txManager    TransactionManager
	timeProvider TimeProvider
	logger       Logger
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(
	shopRepo ShopRepository,
	serviceRepo ServiceRepository,
	bookingRepo BookingRepository,
	customerRepo CustomerRepository,
	cache AvailabilityCache,
	publisher EventPublisher,
	txManager TransactionManager,
	timeProvider TimeProvider,
	logger Logger,
) *UseCase {
	return &UseCase{
		shopRepo:     shopRepo,
		serviceRepo:  serviceRepo,
		bookingRepo:  bookingRepo,
		customerRepo: customerRepo,
		cache:        cache,
		publisher:    publisher,
		txManager:    txManager,
		timeProvider: timeProvider,
		logger:       logger,
	}
}

// Execute выполняет перенос бронирования
// Конфликты проверяются без учета самого переносимого бронирования
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	uc.logger.Info("RescheduleBooking: staff=%d, booking=%d", req.StaffID, req.BookingID)

	// 1. Валидация входных данных
	if err := validateRequest(req); err != nil {
		uc.logger.Warn("RescheduleBooking: validation failed: %v", err)
		return nil, err
	}

	// 2. Получаем бронирование, чтобы узнать магазин
	current, err := uc.bookingRepo.GetByID(ctx, req.BookingID)
	if err != nil {
		if errors.Is(err, booking.ErrBookingNotFound) {
			uc.logger.Warn("RescheduleBooking: booking id=%d not found", req.BookingID)
			return nil, ErrBookingNotFound
		}
		uc.logger.Error("RescheduleBooking: failed to get booking id=%d: %v", req.BookingID, err)
		return nil, fmt.Errorf("%w: failed to get booking: %v", ErrInternal, err)
	}

	// 3. Проверяем права сотрудника
	s, err := uc.shopRepo.GetByID(ctx, current.ShopID)
	if err != nil {
		uc.logger.Error("RescheduleBooking: failed to get shop id=%d: %v", current.ShopID, err)
		return nil, fmt.Errorf("%w: failed to get shop: %v", ErrInternal, err)
	}
	if !s.IsStaff(req.StaffID) {
		uc.logger.Warn("RescheduleBooking: staff=%d is not a member of shop=%d", req.StaffID, s.ID)
		return nil, ErrForbidden
	}

	// 4. Новая услуга (длительность берется из нее)
	var service *domain.Service
	if req.ServiceID != nil && *req.ServiceID != current.ServiceID {
		service, err = uc.serviceRepo.GetByID(ctx, s.ID, *req.ServiceID)
		if err != nil {
			if errors.Is(err, catalog.ErrServiceNotFound) {
				uc.logger.Warn("RescheduleBooking: service id=%d not found in shop=%d", *req.ServiceID, s.ID)
				return nil, ErrServiceNotFound
			}
			uc.logger.Error("RescheduleBooking: failed to get service id=%d: %v", *req.ServiceID, err)
			return nil, fmt.Errorf("%w: failed to get service: %v", ErrInternal, err)
		}
		if !service.Active {
			uc.logger.Warn("RescheduleBooking: service id=%d is inactive", service.ID)
			return nil, ErrServiceNotFound
		}
	}

	// 5. Целевые дата и время
	date := current.BookingDate
	if req.Date != nil {
		date, _ = time.Parse(domain.DateFormat, *req.Date)
	}
	start := current.StartTime
	if req.StartTime != nil {
		start, _ = types.NewTimeStringFromString(*req.StartTime)
	}

	hours := scheduling.ResolveDay(s.WeeklySchedule, s.ClosedDates, date)
	if hours.Closed {
		uc.logger.Warn("RescheduleBooking: shop=%d is closed on %s (%s)", s.ID, hours.Date, hours.Reason)
		return nil, fmt.Errorf("%w: %s", ErrShopClosed, hours.Reason)
	}

	now := uc.timeProvider.Now()

	var result *domain.Booking
	var previousDate string
	var previousTime types.TimeString

	// 6. Выполняем операции с БД в сериализуемой транзакции
	err = uc.txManager.DoSerializable(ctx, func(txCtx context.Context) error {
		// 6.1. Блокируем целевой день магазина
		if err := uc.bookingRepo.LockShopDate(txCtx, s.ID, date); err != nil {
			uc.logger.Error("RescheduleBooking: failed to lock shop=%d date=%s: %v", s.ID, hours.Date, err)
			return fmt.Errorf("%w: failed to lock date: %v", ErrInternal, err)
		}

		// 6.2. Перечитываем бронирование под блокировкой
		b, err := uc.bookingRepo.GetByID(txCtx, req.BookingID)
		if err != nil {
			if errors.Is(err, booking.ErrBookingNotFound) {
				return ErrBookingNotFound
			}
			return fmt.Errorf("%w: failed to get booking: %v", ErrInternal, err)
		}
		if err := b.CanApply(domain.OpReschedule); err != nil {
			uc.logger.Warn("RescheduleBooking: booking id=%d status=%s: %v", b.ID, b.Status, err)
			return ErrInvalidTransition
		}

		duration := b.DurationMinutes
		if service != nil {
			duration = service.DurationMinutes
		}

		// 6.3. Проверяем слот, исключая само бронирование
		bookings, err := uc.bookingRepo.GetActiveByShopAndDate(txCtx, s.ID, date)
		if err != nil {
			uc.logger.Error("RescheduleBooking: failed to get bookings: %v", err)
			return fmt.Errorf("%w: failed to get bookings: %v", ErrInternal, err)
		}

		verdict := scheduling.CheckSlot(scheduling.Input{
			Hours:           hours,
			Overrides:       scheduling.LookupOverrides(s.SlotOverrides, date),
			Occupied:        scheduling.OccupiedRanges(bookings, b.ID),
			DurationMinutes: duration,
			Now:             now,
		}, start, scheduling.CheckOptions{AllowPast: true, IgnoreBlocks: true})

		if !verdict.Available {
			uc.logger.Warn("RescheduleBooking: slot %s %s rejected: %s", hours.Date, start, verdict.Reason)
			if verdict.Reason == domain.ReasonAlreadyBooked {
				return ErrSlotConflict
			}
			return fmt.Errorf("%w: %s", ErrSlotUnavailable, verdict.Reason)
		}

		// 6.4. Применяем перенос; завершенный визит сбрасывается
		previousDate = b.BookingDate.Format(domain.DateFormat)
		previousTime = b.StartTime

		visitReverted, err := b.Apply(domain.OpReschedule)
		if err != nil {
			return ErrInvalidTransition
		}

		b.BookingDate = date
		b.StartTime = start
		b.DurationMinutes = duration
		if service != nil {
			b.ServiceID = service.ID
			b.ServiceName = service.Name
			b.ServicePrice = service.Price
		}

		if err := uc.bookingRepo.Update(txCtx, b); err != nil {
			uc.logger.Error("RescheduleBooking: failed to update booking id=%d: %v", b.ID, err)
			return fmt.Errorf("%w: failed to update booking: %v", ErrInternal, err)
		}

		// 6.5. Компенсируем счетчик визитов
		if visitReverted {
			if err := uc.customerRepo.DecrementVisitCount(txCtx, b.CustomerID); err != nil {
				uc.logger.Error("RescheduleBooking: failed to decrement visit count customer=%d: %v", b.CustomerID, err)
				return fmt.Errorf("%w: failed to decrement visit count: %v", ErrInternal, err)
			}
		}

		result = b
		return nil
	})

	if err != nil {
		return nil, err
	}

	// 7. После фиксации: сбрасываем кеш старой и новой даты, публикуем событие
	uc.cache.Invalidate(ctx, s.ID, previousDate, hours.Date)

	event := events.NewBookingEvent(events.TypeBookingRescheduled, result, now)
	prevTime := previousTime.String()
	event.PreviousDate = &previousDate
	event.PreviousTime = &prevTime
	uc.publisher.Publish(ctx, event)

	uc.logger.Info("RescheduleBooking: booking id=%d moved %s %s -> %s %s",
		result.ID, previousDate, previousTime, hours.Date, result.StartTime)

	return &Response{Booking: result, PreviousDate: previousDate, PreviousTime: prevTime}, nil
}

func validateRequest(req *Request) error {
	if req.BookingID <= 0 {
		return fmt.Errorf("%w: bookingId must be positive", ErrInvalidInput)
	}
	if req.Date == nil && req.StartTime == nil && req.ServiceID == nil {
		return fmt.Errorf("%w: nothing to change", ErrInvalidInput)
	}
	if req.Date != nil {
		if _, err := time.Parse(domain.DateFormat, *req.Date); err != nil {
			return fmt.Errorf("%w: date must be YYYY-MM-DD", ErrInvalidInput)
		}
	}
	if req.StartTime != nil {
		if _, err := types.NewTimeStringFromString(*req.StartTime); err != nil {
			return fmt.Errorf("%w: time must be HH:MM", ErrInvalidInput)
		}
	}
	if req.ServiceID != nil && *req.ServiceID <= 0 {
		return fmt.Errorf("%w: serviceId must be positive", ErrInvalidInput)
	}
	return nil
}
