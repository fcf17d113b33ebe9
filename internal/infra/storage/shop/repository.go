package shop

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/lib/pq"

	"github.com/m04kA/SMC-ShopBookingService/internal/domain"
	"github.com/m04kA/SMC-ShopBookingService/internal/scheduling"
	"github.com/m04kA/SMC-ShopBookingService/pkg/dbmetrics"
	"github.com/m04kA/SMC-ShopBookingService/pkg/psqlbuilder"
)

type DBExecutor = dbmetrics.DBExecutor

var shopColumns = []string{
	"id",
	"slug",
	"name",
	"weekly_schedule",
	"closed_dates",
	"slot_overrides",
	"deposit_required",
	"deposit_amount",
	"staff_ids",
	"created_at",
	"updated_at",
}

// Repository репозиторий магазинов и их календарей
// JSON-поля календаря разбираются здесь: некорректные данные заменяются значениями по умолчанию
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория магазинов
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// GetByID получает магазин по ID (внутри транзакции с блокировкой строки)
func (r *Repository) GetByID(ctx context.Context, id int64) (*domain.Shop, error) {
	return r.getOne(ctx, "GetByID", squirrel.Eq{"id": id})
}

// GetBySlug получает магазин по публичному slug
func (r *Repository) GetBySlug(ctx context.Context, slug string) (*domain.Shop, error) {
	return r.getOne(ctx, "GetBySlug", squirrel.Eq{"slug": slug})
}

func (r *Repository) getOne(ctx context.Context, method string, where squirrel.Eq) (*domain.Shop, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	selectBuilder := psqlbuilder.Select(shopColumns...).
		From("shops").
		Where(where)

	if dbmetrics.IsInTransaction(ctx) {
		selectBuilder = selectBuilder.Suffix("FOR UPDATE")
	}

	query, args, err := selectBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: %s - build select query: %v", ErrBuildQuery, method, err)
	}

	var s domain.Shop
	var schedule, closedDates, overrides []byte
	var createdAt, updatedAt sql.NullTime

	err = executor.QueryRowContext(ctx, query, args...).Scan(
		&s.ID,
		&s.Slug,
		&s.Name,
		&schedule,
		&closedDates,
		&overrides,
		&s.DepositRequired,
		&s.DepositAmount,
		pq.Array(&s.StaffIDs),
		&createdAt,
		&updatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, ErrShopNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %s - scan shop: %v", ErrScanRow, method, err)
	}

	var issues, more []string
	s.WeeklySchedule, issues = scheduling.ParseWeeklySchedule(schedule)
	s.ClosedDates, more = scheduling.ParseClosedDates(closedDates)
	issues = append(issues, more...)
	s.SlotOverrides, more = scheduling.ParseSlotOverrides(overrides)
	s.ConfigIssues = append(issues, more...)

	s.CreatedAt = createdAt.Time
	s.UpdatedAt = updatedAt.Time

	return &s, nil
}

// UpdateCalendar сохраняет недельное расписание, разовые закрытия и политику депозита
func (r *Repository) UpdateCalendar(ctx context.Context, s *domain.Shop) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	schedule, err := scheduling.EncodeWeeklySchedule(s.WeeklySchedule)
	if err != nil {
		return fmt.Errorf("%w: UpdateCalendar - weekly schedule: %v", ErrEncode, err)
	}
	closedDates, err := json.Marshal(nonNil(s.ClosedDates))
	if err != nil {
		return fmt.Errorf("%w: UpdateCalendar - closed dates: %v", ErrEncode, err)
	}

	query, args, err := psqlbuilder.Update("shops").
		Set("weekly_schedule", string(schedule)).
		Set("closed_dates", string(closedDates)).
		Set("deposit_required", s.DepositRequired).
		Set("deposit_amount", s.DepositAmount).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": s.ID}).
		ToSql()

	if err != nil {
		return fmt.Errorf("%w: UpdateCalendar - build update query: %v", ErrBuildQuery, err)
	}

	return r.execOne(ctx, executor, "UpdateCalendar", query, args)
}

// UpdateSlotOverrides сохраняет ручные блокировки и принудительно открытые слоты
func (r *Repository) UpdateSlotOverrides(ctx context.Context, shopID int64, overrides domain.SlotOverrideMap) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	raw, err := scheduling.EncodeSlotOverrides(overrides)
	if err != nil {
		return fmt.Errorf("%w: UpdateSlotOverrides - encode: %v", ErrEncode, err)
	}

	query, args, err := psqlbuilder.Update("shops").
		Set("slot_overrides", string(raw)).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": shopID}).
		ToSql()

	if err != nil {
		return fmt.Errorf("%w: UpdateSlotOverrides - build update query: %v", ErrBuildQuery, err)
	}

	return r.execOne(ctx, executor, "UpdateSlotOverrides", query, args)
}

func (r *Repository) execOne(ctx context.Context, executor DBExecutor, method, query string, args []interface{}) error {
	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: %s - execute update: %v", ErrExecQuery, method, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: %s - get rows affected: %v", ErrExecQuery, method, err)
	}
	if rowsAffected == 0 {
		return ErrShopNotFound
	}
	return nil
}

func nonNil(dates []string) []string {
	if dates == nil {
		return []string{}
	}
	return dates
}
