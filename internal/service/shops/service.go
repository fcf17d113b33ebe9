package shops

import (
	"context"
	"errors"
	"fmt"

	"github.com/m04kA/SMC-ShopBookingService/internal/domain"
	shopRepo "github.com/m04kA/SMC-ShopBookingService/internal/infra/storage/shop"
	"github.com/m04kA/SMC-ShopBookingService/internal/service/shops/models"
	"github.com/m04kA/SMC-ShopBookingService/pkg/types"
)

// Service управление календарем магазина: расписание, закрытые даты, исключения для слотов
type Service struct {
	shopRepo  ShopRepository
	cache     AvailabilityCache
	txManager TransactionManager
	logger    Logger
}

// NewService создает новый экземпляр сервиса магазинов
func NewService(
	shopRepo ShopRepository,
	cache AvailabilityCache,
	txManager TransactionManager,
	logger Logger,
) *Service {
	return &Service{
		shopRepo:  shopRepo,
		cache:     cache,
		txManager: txManager,
		logger:    logger,
	}
}

// GetCalendar возвращает календарь магазина
// Доступно только сотрудникам магазина
func (s *Service) GetCalendar(ctx context.Context, shopID, staffID int64) (*models.CalendarResponse, error) {
	s.logger.Info("GetCalendar: shop=%d staff=%d", shopID, staffID)

	shop, err := s.loadForStaff(ctx, "GetCalendar", shopID, staffID)
	if err != nil {
		return nil, err
	}

	return models.FromDomainShop(shop), nil
}

// UpdateCalendar частично обновляет расписание, закрытые даты и настройки депозита
// Сбрасывает весь кеш доступности магазина
func (s *Service) UpdateCalendar(ctx context.Context, req *models.UpdateCalendarRequest) (*models.CalendarResponse, error) {
	s.logger.Info("UpdateCalendar: shop=%d staff=%d", req.ShopID, req.StaffID)

	var updated *domain.Shop
	err := s.txManager.DoSerializable(ctx, func(txCtx context.Context) error {
		// 1. Читаем магазин под блокировкой и проверяем права
		shop, err := s.loadForStaff(txCtx, "UpdateCalendar", req.ShopID, req.StaffID)
		if err != nil {
			return err
		}

		// 2. Применяем изменения
		next, err := req.ApplyTo(*shop)
		if err != nil {
			s.logger.Warn("UpdateCalendar: invalid input for shop=%d: %v", req.ShopID, err)
			return fmt.Errorf("%w: %v", ErrInvalidInput, err)
		}

		// 3. Сохраняем
		if err := s.shopRepo.UpdateCalendar(txCtx, next); err != nil {
			s.logger.Error("UpdateCalendar: failed to update shop=%d: %v", req.ShopID, err)
			return fmt.Errorf("%w: UpdateCalendar - repository error: %v", ErrInternal, err)
		}

		// Исправленные данные больше не содержат ошибок расписания
		next.ConfigIssues = nil
		updated = next
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.cache.InvalidateShop(ctx, req.ShopID)

	s.logger.Info("UpdateCalendar: shop=%d updated", req.ShopID)
	return models.FromDomainShop(updated), nil
}

// SetSlotOverride блокирует слот или открывает его принудительно (или снимает исключение)
// Слот не может одновременно быть в обоих списках: включение одного типа убирает время из другого
func (s *Service) SetSlotOverride(ctx context.Context, req *models.SetSlotOverrideRequest) (*models.CalendarResponse, error) {
	s.logger.Info("SetSlotOverride: shop=%d date=%s time=%s kind=%s enabled=%t staff=%d",
		req.ShopID, req.Date, req.Time, req.Kind, req.Enabled, req.StaffID)

	date, t, kind, err := req.Parse()
	if err != nil {
		s.logger.Warn("SetSlotOverride: invalid input: %v", err)
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	var updated *domain.Shop
	err = s.txManager.DoSerializable(ctx, func(txCtx context.Context) error {
		shop, err := s.loadForStaff(txCtx, "SetSlotOverride", req.ShopID, req.StaffID)
		if err != nil {
			return err
		}

		overrides := copyOverrides(shop.SlotOverrides)
		day := overrides[date]

		switch {
		case kind == models.OverrideBlocked && req.Enabled:
			day.Blocked = addTime(day.Blocked, t)
			day.ForceOpen = removeTime(day.ForceOpen, t)
		case kind == models.OverrideBlocked:
			day.Blocked = removeTime(day.Blocked, t)
		case req.Enabled:
			day.ForceOpen = addTime(day.ForceOpen, t)
			day.Blocked = removeTime(day.Blocked, t)
		default:
			day.ForceOpen = removeTime(day.ForceOpen, t)
		}

		if day.IsEmpty() {
			delete(overrides, date)
		} else {
			overrides[date] = day
		}

		if err := s.shopRepo.UpdateSlotOverrides(txCtx, shop.ID, overrides); err != nil {
			s.logger.Error("SetSlotOverride: failed to update shop=%d: %v", shop.ID, err)
			return fmt.Errorf("%w: SetSlotOverride - repository error: %v", ErrInternal, err)
		}

		shop.SlotOverrides = overrides
		updated = shop
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.cache.Invalidate(ctx, req.ShopID, date)

	return models.FromDomainShop(updated), nil
}

// loadForStaff получает магазин и проверяет, что пользователь его сотрудник
func (s *Service) loadForStaff(ctx context.Context, method string, shopID, staffID int64) (*domain.Shop, error) {
	shop, err := s.shopRepo.GetByID(ctx, shopID)
	if err != nil {
		if errors.Is(err, shopRepo.ErrShopNotFound) {
			s.logger.Warn("%s: shop id=%d not found", method, shopID)
			return nil, ErrShopNotFound
		}
		s.logger.Error("%s: failed to get shop id=%d: %v", method, shopID, err)
		return nil, fmt.Errorf("%w: %s - repository error: %v", ErrInternal, method, err)
	}

	if len(shop.ConfigIssues) > 0 {
		s.logger.Warn("%s: shop id=%d has calendar issues: %v", method, shopID, shop.ConfigIssues)
	}

	if !shop.IsStaff(staffID) {
		s.logger.Warn("%s: access denied for staff=%d to shop id=%d", method, staffID, shopID)
		return nil, ErrAccessDenied
	}

	return shop, nil
}

func copyOverrides(src domain.SlotOverrideMap) domain.SlotOverrideMap {
	dst := make(domain.SlotOverrideMap, len(src))
	for date, day := range src {
		dst[date] = domain.DayOverrides{
			Blocked:   append([]types.TimeString(nil), day.Blocked...),
			ForceOpen: append([]types.TimeString(nil), day.ForceOpen...),
		}
	}
	return dst
}

func addTime(times []types.TimeString, t types.TimeString) []types.TimeString {
	for _, existing := range times {
		if existing == t {
			return times
		}
	}
	return append(times, t)
}

func removeTime(times []types.TimeString, t types.TimeString) []types.TimeString {
	result := times[:0]
	for _, existing := range times {
		if existing != t {
			result = append(result, existing)
		}
	}
	return result
}
