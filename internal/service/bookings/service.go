package bookings

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/m04kA/SMC-ShopBookingService/internal/domain"
	"github.com/m04kA/SMC-ShopBookingService/internal/infra/events"
	bookingRepo "github.com/m04kA/SMC-ShopBookingService/internal/infra/storage/booking"
	shopRepo "github.com/m04kA/SMC-ShopBookingService/internal/infra/storage/shop"
	"github.com/m04kA/SMC-ShopBookingService/internal/integrations/notificationservice"
	"github.com/m04kA/SMC-ShopBookingService/internal/service/bookings/models"
)

// operationEvents событие, публикуемое после успешной операции
var operationEvents = map[domain.BookingOperation]events.Type{
	domain.OpApprove:        events.TypeBookingApproved,
	domain.OpReject:         events.TypeBookingRejected,
	domain.OpCancel:         events.TypeBookingCancelled,
	domain.OpRequestDeposit: events.TypeDepositRequested,
	domain.OpConfirmDeposit: events.TypeDepositConfirmed,
}

// Service жизненный цикл бронирования: подтверждение, отклонение, отмена, депозит, завершение визита
type Service struct {
	bookingRepo   BookingRepository
	customerRepo  CustomerRepository
	shopRepo      ShopRepository
	notifier      NotificationClient
	cache         AvailabilityCache
	publisher     EventPublisher
	metrics       MetricsRecorder
	txManager     TransactionManager
	timeProvider  TimeProvider
	depositWindow time.Duration
	logger        Logger
}

// NewService создает новый экземпляр сервиса бронирований
func NewService(
	bookingRepo BookingRepository,
	customerRepo CustomerRepository,
	shopRepo ShopRepository,
	notifier NotificationClient,
	cache AvailabilityCache,
	publisher EventPublisher,
	metrics MetricsRecorder,
	txManager TransactionManager,
	timeProvider TimeProvider,
	depositWindow time.Duration,
	logger Logger,
) *Service {
	if depositWindow <= 0 {
		depositWindow = domain.DepositWindow
	}
	return &Service{
		bookingRepo:   bookingRepo,
		customerRepo:  customerRepo,
		shopRepo:      shopRepo,
		notifier:      notifier,
		cache:         cache,
		publisher:     publisher,
		metrics:       metrics,
		txManager:     txManager,
		timeProvider:  timeProvider,
		depositWindow: depositWindow,
		logger:        logger,
	}
}

// GetByID получает бронирование по ID
// Доступно только сотрудникам магазина
func (s *Service) GetByID(ctx context.Context, id int64, staffID int64) (*models.BookingResponse, error) {
	s.logger.Info("GetByID: fetching booking id=%d for staff=%d", id, staffID)

	booking, _, err := s.loadForStaff(ctx, "GetByID", id, staffID)
	if err != nil {
		return nil, err
	}

	return models.FromDomainBooking(booking), nil
}

// ListBookings получает бронирования магазина
// Перед чтением завершает прошедшие визиты магазина, ошибка завершения не прерывает чтение
func (s *Service) ListBookings(ctx context.Context, req *models.ListBookingsRequest) (*models.BookingListResponse, error) {
	s.logger.Info("ListBookings: shop=%d staff=%d", req.ShopID, req.StaffID)

	// 1. Проверяем права доступа
	if _, err := s.checkStaffAccess(ctx, "ListBookings", req.ShopID, req.StaffID); err != nil {
		return nil, err
	}

	// 2. Конвертируем request в domain фильтр
	filter, err := req.ToDomainFilter()
	if err != nil {
		s.logger.Warn("ListBookings: invalid filter for shop=%d: %v", req.ShopID, err)
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	// 3. Завершаем прошедшие визиты
	shopID := req.ShopID
	swept, err := s.SweepCompleted(ctx, &shopID)
	if err != nil {
		s.logger.Error("ListBookings: sweep failed for shop=%d: %v", req.ShopID, err)
	}

	// 4. Получаем бронирования
	bookings, err := s.bookingRepo.GetByShopWithFilter(ctx, filter)
	if err != nil {
		s.logger.Error("ListBookings: repository error for shop=%d: %v", req.ShopID, err)
		return nil, fmt.Errorf("%w: ListBookings - repository error: %v", ErrInternal, err)
	}

	s.logger.Info("ListBookings: fetched %d bookings for shop=%d (swept=%d)", len(bookings), req.ShopID, swept)

	resp := models.FromDomainBookingList(bookings)
	resp.Swept = swept
	return resp, nil
}

// Approve pending -> confirmed
func (s *Service) Approve(ctx context.Context, bookingID, staffID int64) (*models.BookingResponse, error) {
	return s.transition(ctx, domain.OpApprove, bookingID, staffID)
}

// Reject pending|confirmed -> rejected, с компенсацией счетчика визитов
func (s *Service) Reject(ctx context.Context, bookingID, staffID int64) (*models.BookingResponse, error) {
	return s.transition(ctx, domain.OpReject, bookingID, staffID)
}

// Cancel pending|confirmed -> cancelled, с компенсацией счетчика визитов
func (s *Service) Cancel(ctx context.Context, bookingID, staffID int64) (*models.BookingResponse, error) {
	return s.transition(ctx, domain.OpCancel, bookingID, staffID)
}

// RequestDeposit выставляет депозит с дедлайном now + окно депозита и уведомляет клиента
func (s *Service) RequestDeposit(ctx context.Context, bookingID, staffID int64) (*models.BookingResponse, error) {
	return s.transition(ctx, domain.OpRequestDeposit, bookingID, staffID)
}

// ConfirmDeposit waiting -> paid
func (s *Service) ConfirmDeposit(ctx context.Context, bookingID, staffID int64) (*models.BookingResponse, error) {
	return s.transition(ctx, domain.OpConfirmDeposit, bookingID, staffID)
}

// Apply выполняет операцию по ее имени (для обработчиков с действием в пути)
func (s *Service) Apply(ctx context.Context, op domain.BookingOperation, bookingID, staffID int64) (*models.BookingResponse, error) {
	if _, ok := operationEvents[op]; !ok {
		return nil, fmt.Errorf("%w: unsupported operation %q", ErrInvalidInput, op)
	}
	return s.transition(ctx, op, bookingID, staffID)
}

func (s *Service) transition(ctx context.Context, op domain.BookingOperation, bookingID, staffID int64) (resp *models.BookingResponse, err error) {
	s.logger.Info("Transition: op=%s booking=%d staff=%d", op, bookingID, staffID)
	defer func() { s.metrics.RecordBookingOperation(string(op), err) }()

	// 1. Проверяем права сотрудника
	current, shop, err := s.loadForStaff(ctx, "Transition", bookingID, staffID)
	if err != nil {
		return nil, err
	}

	now := s.timeProvider.Now()
	var result *domain.Booking

	// 2. Применяем переход в транзакции над заблокированной строкой
	err = s.txManager.DoSerializable(ctx, func(txCtx context.Context) error {
		b, err := s.bookingRepo.GetByID(txCtx, bookingID)
		if err != nil {
			if errors.Is(err, bookingRepo.ErrBookingNotFound) {
				return ErrBookingNotFound
			}
			return fmt.Errorf("%w: Transition - repository error: %v", ErrInternal, err)
		}

		visitReverted, err := b.Apply(op)
		if err != nil {
			s.logger.Warn("Transition: op=%s rejected for booking id=%d status=%s deposit=%s",
				op, b.ID, b.Status, b.DepositStatus)
			return fmt.Errorf("%w: %v", ErrInvalidTransition, err)
		}

		if op == domain.OpRequestDeposit {
			deadline := now.Add(s.depositWindow)
			b.DepositDeadline = &deadline
		}

		if err := s.bookingRepo.Update(txCtx, b); err != nil {
			s.logger.Error("Transition: failed to update booking id=%d: %v", b.ID, err)
			return fmt.Errorf("%w: Transition - update error: %v", ErrInternal, err)
		}

		// Визит был засчитан: откатываем счетчик клиента
		if visitReverted {
			if err := s.customerRepo.DecrementVisitCount(txCtx, b.CustomerID); err != nil {
				s.logger.Error("Transition: failed to decrement visit count customer=%d: %v", b.CustomerID, err)
				return fmt.Errorf("%w: Transition - decrement visit count: %v", ErrInternal, err)
			}
			s.logger.Info("Transition: visit reverted for booking id=%d customer=%d", b.ID, b.CustomerID)
		}

		result = b
		return nil
	})

	if err != nil {
		return nil, err
	}

	// 3. После фиксации: кеш, событие, уведомление
	if !result.IsActive() && current.IsActive() {
		s.cache.Invalidate(ctx, result.ShopID, result.BookingDate.Format(domain.DateFormat))
	}
	s.publisher.Publish(ctx, events.NewBookingEvent(operationEvents[op], result, now))

	if op == domain.OpRequestDeposit {
		s.notifyDeposit(ctx, shop, result)
	}

	s.logger.Info("Transition: op=%s booking id=%d -> status=%s deposit=%s", op, result.ID, result.Status, result.DepositStatus)
	return models.FromDomainBooking(result), nil
}

// CompleteVisit отмечает визит завершенным, если время записи прошло
// Повторный вызов ничего не меняет; возвращает true, если визит засчитан этим вызовом
func (s *Service) CompleteVisit(ctx context.Context, bookingID int64) (completed bool, err error) {
	defer func() {
		if completed || err != nil {
			s.metrics.RecordBookingOperation(string(domain.OpCompleteVisit), err)
		}
	}()

	now := s.timeProvider.Now()
	var result *domain.Booking

	err = s.txManager.DoSerializable(ctx, func(txCtx context.Context) error {
		b, err := s.bookingRepo.GetByID(txCtx, bookingID)
		if err != nil {
			if errors.Is(err, bookingRepo.ErrBookingNotFound) {
				return ErrBookingNotFound
			}
			return fmt.Errorf("%w: CompleteVisit - repository error: %v", ErrInternal, err)
		}

		if b.CanApply(domain.OpCompleteVisit) != nil || !b.HasPassed(now) {
			return nil
		}

		// Условное обновление: параллельный вызов уже мог засчитать визит
		marked, err := s.bookingRepo.MarkVisitCompleted(txCtx, b.ID)
		if err != nil {
			return fmt.Errorf("%w: CompleteVisit - mark error: %v", ErrInternal, err)
		}
		if !marked {
			return nil
		}

		if err := s.customerRepo.IncrementVisitCount(txCtx, b.CustomerID, now); err != nil {
			return fmt.Errorf("%w: CompleteVisit - increment visit count: %v", ErrInternal, err)
		}

		_, _ = b.Apply(domain.OpCompleteVisit)
		result = b
		return nil
	})

	if err != nil {
		s.logger.Error("CompleteVisit: booking id=%d: %v", bookingID, err)
		return false, err
	}
	if result == nil {
		return false, nil
	}

	s.publisher.Publish(ctx, events.NewBookingEvent(events.TypeVisitCompleted, result, now))
	s.logger.Info("CompleteVisit: booking id=%d customer=%d", result.ID, result.CustomerID)
	return true, nil
}

// SweepCompleted завершает все подтвержденные визиты, время которых прошло
// shopID == nil - по всем магазинам. Возвращает количество завершенных визитов
func (s *Service) SweepCompleted(ctx context.Context, shopID *int64) (int, error) {
	now := s.timeProvider.Now()

	due, err := s.bookingRepo.ListDueForCompletion(ctx, domain.DueForCompletionFilter{
		ShopID: shopID,
		Before: now,
	})
	if err != nil {
		return 0, fmt.Errorf("%w: SweepCompleted - repository error: %v", ErrInternal, err)
	}

	completed := 0
	var firstErr error
	for _, b := range due {
		if !b.HasPassed(now) {
			continue
		}

		ok, err := s.CompleteVisit(ctx, b.ID)
		if err != nil {
			// Один сбой не должен останавливать остальные
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		if ok {
			completed++
		}
	}

	s.metrics.RecordSweep(completed)
	if completed > 0 {
		s.logger.Info("SweepCompleted: completed %d visits", completed)
	}
	return completed, firstErr
}

// Вспомогательные методы

// loadForStaff получает бронирование и проверяет, что сотрудник относится к его магазину
func (s *Service) loadForStaff(ctx context.Context, method string, bookingID, staffID int64) (*domain.Booking, *domain.Shop, error) {
	booking, err := s.bookingRepo.GetByID(ctx, bookingID)
	if err != nil {
		if errors.Is(err, bookingRepo.ErrBookingNotFound) {
			s.logger.Warn("%s: booking id=%d not found", method, bookingID)
			return nil, nil, ErrBookingNotFound
		}
		s.logger.Error("%s: repository error for booking id=%d: %v", method, bookingID, err)
		return nil, nil, fmt.Errorf("%w: %s - repository error: %v", ErrInternal, method, err)
	}

	shop, err := s.checkStaffAccess(ctx, method, booking.ShopID, staffID)
	if err != nil {
		return nil, nil, err
	}

	return booking, shop, nil
}

// checkStaffAccess проверяет, что пользователь является сотрудником магазина
func (s *Service) checkStaffAccess(ctx context.Context, method string, shopID, staffID int64) (*domain.Shop, error) {
	shop, err := s.shopRepo.GetByID(ctx, shopID)
	if err != nil {
		if errors.Is(err, shopRepo.ErrShopNotFound) {
			s.logger.Warn("%s: shop id=%d not found", method, shopID)
			return nil, ErrShopNotFound
		}
		s.logger.Error("%s: failed to get shop id=%d: %v", method, shopID, err)
		return nil, fmt.Errorf("%w: %s - shop repository error: %v", ErrInternal, method, err)
	}

	if !shop.IsStaff(staffID) {
		s.logger.Warn("%s: access denied for staff=%d to shop id=%d", method, staffID, shopID)
		return nil, ErrAccessDenied
	}

	return shop, nil
}

// notifyDeposit отправляет клиенту запрос депозита; недоступность сервиса не влияет на результат
func (s *Service) notifyDeposit(ctx context.Context, shop *domain.Shop, b *domain.Booking) {
	req := &notificationservice.DepositRequest{
		BookingID:     b.ID,
		ShopID:        b.ShopID,
		CustomerPhone: b.CustomerPhone,
		CustomerName:  b.CustomerName,
		BookingDate:   b.BookingDate.Format(domain.DateFormat),
		StartTime:     b.StartTime.String(),
		Amount:        shop.DepositAmount,
	}
	if b.DepositDeadline != nil {
		req.Deadline = b.DepositDeadline.Format(time.RFC3339)
	}

	if err := s.notifier.SendDepositRequestWithGracefulDegradation(ctx, req); err != nil {
		s.logger.Warn("RequestDeposit: customer not notified for booking id=%d: %v", b.ID, err)
	}
}
