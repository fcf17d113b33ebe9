package create_booking

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/m04kA/SMC-ShopBookingService/internal/domain"
	"github.com/m04kA/SMC-ShopBookingService/internal/infra/events"
	"github.com/m04kA/SMC-ShopBookingService/internal/infra/storage/catalog"
	"github.com/m04kA/SMC-ShopBookingService/internal/infra/storage/customer"
	"github.com/m04kA/SMC-ShopBookingService/internal/infra/storage/shop"
	"github.com/m04kA/SMC-ShopBookingService/internal/scheduling"
	"github.com/m04kA/SMC-ShopBookingService/internal/validation"
	"github.com/m04kA/SMC-ShopBookingService/pkg/types"
)

// UseCase use case для создания бронирования
type UseCase struct {
	shopRepo     ShopRepository
	serviceRepo  ServiceRepository
	bookingRepo  BookingRepository
	customerRepo CustomerRepository
	cache        AvailabilityCache
	publisher    EventPublisher
	validator    Validator
	txManager    TransactionManager
	timeProvider TimeProvider
	slotStep     int
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
	validator Validator,
	txManager TransactionManager,
	timeProvider TimeProvider,
	slotStep int,
	logger Logger,
) *UseCase {
	return &UseCase{
		shopRepo:     shopRepo,
		serviceRepo:  serviceRepo,
		bookingRepo:  bookingRepo,
		customerRepo: customerRepo,
		cache:        cache,
		publisher:    publisher,
		validator:    validator,
		txManager:    txManager,
		timeProvider: timeProvider,
		slotStep:     slotStep,
		logger:       logger,
	}
}

// Execute выполняет use case создания бронирования
// Проверка слота и запись выполняются в одной сериализуемой транзакции под блокировкой (магазин, дата)
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	uc.logger.Info("CreateBooking: source=%s, shop=%s/%d, service=%d, date=%s, time=%s",
		req.Source, req.ShopSlug, req.ShopID, req.ServiceID, req.Date, req.StartTime)

	// 1. Валидация входных данных
	date, start, err := uc.validateRequest(req)
	if err != nil {
		uc.logger.Warn("CreateBooking: validation failed: %v", err)
		return nil, err
	}
	phone := validation.NormalizePhone(req.CustomerPhone)

	// 2. Получаем магазин
	s, err := uc.getShop(ctx, req)
	if err != nil {
		return nil, err
	}
	for _, issue := range s.ConfigIssues {
		uc.logger.Warn("CreateBooking: shop=%d config: %s", s.ID, issue)
	}

	// 3. Ручную запись может создать только сотрудник магазина
	if req.Source == domain.SourceManual && !s.IsStaff(req.StaffID) {
		uc.logger.Warn("CreateBooking: staff=%d is not a member of shop=%d", req.StaffID, s.ID)
		return nil, ErrForbidden
	}

	// 4. Получаем услугу; длительность фиксируется в бронировании
	service, err := uc.serviceRepo.GetByID(ctx, s.ID, req.ServiceID)
	if err != nil {
		if errors.Is(err, catalog.ErrServiceNotFound) {
			uc.logger.Warn("CreateBooking: service id=%d not found in shop=%d", req.ServiceID, s.ID)
			return nil, ErrServiceNotFound
		}
		uc.logger.Error("CreateBooking: failed to get service id=%d: %v", req.ServiceID, err)
		return nil, fmt.Errorf("%w: failed to get service: %v", ErrInternal, err)
	}
	if !service.Active {
		uc.logger.Warn("CreateBooking: service id=%d is inactive", service.ID)
		return nil, ErrServiceNotFound
	}

	// 5. Рабочие часы на дату
	hours := scheduling.ResolveDay(s.WeeklySchedule, s.ClosedDates, date)
	if hours.Closed {
		uc.logger.Warn("CreateBooking: shop=%d is closed on %s (%s)", s.ID, hours.Date, hours.Reason)
		return nil, fmt.Errorf("%w: %s", ErrShopClosed, hours.Reason)
	}

	now := uc.timeProvider.Now()

	var result *domain.Booking
	var newCustomer bool

	// 6. Выполняем операции с БД в сериализуемой транзакции
	err = uc.txManager.DoSerializable(ctx, func(txCtx context.Context) error {
		// 6.1. Блокируем день магазина: параллельные записи на эту дату ждут
		if err := uc.bookingRepo.LockShopDate(txCtx, s.ID, date); err != nil {
			uc.logger.Error("CreateBooking: failed to lock shop=%d date=%s: %v", s.ID, hours.Date, err)
			return fmt.Errorf("%w: failed to lock date: %v", ErrInternal, err)
		}

		// 6.2. Перечитываем активные бронирования дня
		bookings, err := uc.bookingRepo.GetActiveByShopAndDate(txCtx, s.ID, date)
		if err != nil {
			uc.logger.Error("CreateBooking: failed to get bookings: %v", err)
			return fmt.Errorf("%w: failed to get bookings: %v", ErrInternal, err)
		}

		// 6.3. Проверяем слот
		verdict := scheduling.CheckSlot(scheduling.Input{
			Hours:           hours,
			Overrides:       scheduling.LookupOverrides(s.SlotOverrides, date),
			Occupied:        scheduling.OccupiedRanges(bookings, 0),
			DurationMinutes: service.DurationMinutes,
			SlotStep:        uc.slotStep,
			Now:             now,
		}, start, checkOptions(req.Source))

		if !verdict.Available {
			uc.logger.Warn("CreateBooking: slot %s %s rejected: %s", hours.Date, start, verdict.Reason)
			if verdict.Reason == domain.ReasonAlreadyBooked {
				return ErrSlotConflict
			}
			return fmt.Errorf("%w: %s", ErrSlotUnavailable, verdict.Reason)
		}

		// 6.4. Создаем или обновляем клиента
		c, created, err := uc.upsertCustomer(txCtx, s.ID, phone, req, now)
		if err != nil {
			return err
		}
		newCustomer = created

		// 6.5. Создаем бронирование с денормализацией данных
		booking := &domain.Booking{
			ShopID:          s.ID,
			CustomerID:      c.ID,
			ServiceID:       service.ID,
			BookingDate:     date,
			StartTime:       start,
			DurationMinutes: service.DurationMinutes,
			Status:          initialStatus(req.Source),
			Source:          req.Source,
			DepositStatus:   domain.DepositNone,
			IsFirstVisit:    created,
			ServiceName:     service.Name,
			ServicePrice:    service.Price,
			CustomerName:    c.Name,
			CustomerPhone:   c.Phone,
		}

		result, err = uc.bookingRepo.Create(txCtx, booking)
		if err != nil {
			uc.logger.Error("CreateBooking: failed to create booking: %v", err)
			return fmt.Errorf("%w: failed to create booking: %v", ErrInternal, err)
		}

		return nil
	})

	if err != nil {
		return nil, err
	}

	// 7. После фиксации: сбрасываем кеш дня и публикуем событие
	uc.cache.Invalidate(ctx, s.ID, hours.Date)
	uc.publisher.Publish(ctx, events.NewBookingEvent(events.TypeBookingCreated, result, now))

	uc.logger.Info("CreateBooking: created booking id=%d shop=%d status=%s new_customer=%t",
		result.ID, s.ID, result.Status, newCustomer)

	return &Response{Booking: result, NewCustomer: newCustomer}, nil
}

func (uc *UseCase) validateRequest(req *Request) (time.Time, types.TimeString, error) {
	switch req.Source {
	case domain.SourceOnline:
		if req.ShopSlug == "" {
			return time.Time{}, "", fmt.Errorf("%w: shop slug is required", ErrInvalidInput)
		}
	case domain.SourceManual:
		if req.ShopID <= 0 {
			return time.Time{}, "", fmt.Errorf("%w: shopId must be positive", ErrInvalidInput)
		}
	default:
		return time.Time{}, "", fmt.Errorf("%w: unknown source %q", ErrInvalidInput, req.Source)
	}

	if err := uc.validator.Struct(req); err != nil {
		if field := validation.FirstInvalidField(err); field != "" {
			return time.Time{}, "", fmt.Errorf("%w: field %s", ErrInvalidInput, field)
		}
		return time.Time{}, "", fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	date, err := time.Parse(domain.DateFormat, req.Date)
	if err != nil {
		return time.Time{}, "", fmt.Errorf("%w: field date", ErrInvalidInput)
	}
	start, err := types.NewTimeStringFromString(req.StartTime)
	if err != nil {
		return time.Time{}, "", fmt.Errorf("%w: field time", ErrInvalidInput)
	}

	return date, start, nil
}

func (uc *UseCase) getShop(ctx context.Context, req *Request) (*domain.Shop, error) {
	var s *domain.Shop
	var err error
	if req.Source == domain.SourceManual {
		s, err = uc.shopRepo.GetByID(ctx, req.ShopID)
	} else {
		s, err = uc.shopRepo.GetBySlug(ctx, req.ShopSlug)
	}

	if err != nil {
		if errors.Is(err, shop.ErrShopNotFound) {
			uc.logger.Warn("CreateBooking: shop %s/%d not found", req.ShopSlug, req.ShopID)
			return nil, ErrShopNotFound
		}
		uc.logger.Error("CreateBooking: failed to get shop: %v", err)
		return nil, fmt.Errorf("%w: failed to get shop: %v", ErrInternal, err)
	}
	return s, nil
}

// upsertCustomer ищет клиента по (магазин, телефон); новый клиент создается,
// у существующего дополняется профиль и журнал заметок
func (uc *UseCase) upsertCustomer(ctx context.Context, shopID int64, phone string, req *Request, now time.Time) (*domain.Customer, bool, error) {
	pet := domain.PetProfile{
		Name:   req.PetName,
		Breed:  req.PetBreed,
		Age:    req.PetAge,
		Weight: req.PetWeight,
	}

	c, err := uc.customerRepo.GetByShopAndPhone(ctx, shopID, phone)
	switch {
	case errors.Is(err, customer.ErrCustomerNotFound):
		today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
		c = &domain.Customer{
			ShopID:         shopID,
			Phone:          phone,
			FirstVisitDate: &today,
		}
		c.MergeProfile(req.CustomerName, pet)
		c.AppendMemo(req.Memo, now)

		created, err := uc.customerRepo.Create(ctx, c)
		if err != nil {
			uc.logger.Error("CreateBooking: failed to create customer shop=%d: %v", shopID, err)
			return nil, false, fmt.Errorf("%w: failed to create customer: %v", ErrInternal, err)
		}
		return created, true, nil

	case err != nil:
		uc.logger.Error("CreateBooking: failed to get customer shop=%d: %v", shopID, err)
		return nil, false, fmt.Errorf("%w: failed to get customer: %v", ErrInternal, err)
	}

	c.MergeProfile(req.CustomerName, pet)
	c.AppendMemo(req.Memo, now)

	if err := uc.customerRepo.UpdateProfile(ctx, c); err != nil {
		uc.logger.Error("CreateBooking: failed to update customer id=%d: %v", c.ID, err)
		return nil, false, fmt.Errorf("%w: failed to update customer: %v", ErrInternal, err)
	}
	return c, false, nil
}

// checkOptions онлайн-запись обязана попадать в сетку слотов, не в прошлое и не в блокировку;
// сотрудник может вносить запись задним числом и поверх блокировок
func checkOptions(source domain.BookingSource) scheduling.CheckOptions {
	if source == domain.SourceManual {
		return scheduling.CheckOptions{AllowPast: true, IgnoreBlocks: true}
	}
	return scheduling.CheckOptions{RequireGrid: true}
}

func initialStatus(source domain.BookingSource) domain.BookingStatus {
	if source == domain.SourceManual {
		return domain.StatusConfirmed
	}
	return domain.StatusPending
}
