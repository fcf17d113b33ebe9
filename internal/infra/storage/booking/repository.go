package booking

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"

	"github.com/m04kA/SMC-ShopBookingService/internal/domain"
	"github.com/m04kA/SMC-ShopBookingService/pkg/dbmetrics"
	"github.com/m04kA/SMC-ShopBookingService/pkg/psqlbuilder"
)

var bookingColumns = []string{
	"id",
	"shop_id",
	"customer_id",
	"service_id",
	"booking_date",
	"start_time",
	"duration_minutes",
	"status",
	"source",
	"deposit_status",
	"deposit_deadline",
	"visit_completed",
	"is_first_visit",
	"reminder_sent_at",
	"service_name",
	"service_price",
	"customer_name",
	"customer_phone",
	"created_at",
	"updated_at",
}

// Repository репозиторий для работы с бронированиями
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория бронирований
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// LockShopDate берет транзакционную advisory-блокировку на пару (магазин, дата)
// Сериализует создание и перенос бронирований одного дня, снимается при завершении транзакции.
// Вне транзакции ничего не делает.
func (r *Repository) LockShopDate(ctx context.Context, shopID int64, date time.Time) error {
	if !dbmetrics.IsInTransaction(ctx) {
		return nil
	}
	executor := dbmetrics.GetExecutor(ctx, r.db)

	// Ключ: shop_id в старших битах, номер дня от эпохи в младших
	day := date.Unix() / 86400
	key := shopID<<20 | (day & 0xFFFFF)

	if _, err := executor.ExecContext(ctx, "SELECT pg_advisory_xact_lock($1)", key); err != nil {
		return fmt.Errorf("%w: shop=%d date=%s: %v", ErrLock, shopID, date.Format(domain.DateFormat), err)
	}
	return nil
}

// Create создает новое бронирование
// Если в контексте передана активная транзакция, использует её
func (r *Repository) Create(ctx context.Context, booking *domain.Booking) (*domain.Booking, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Insert("bookings").
		Columns(
			"shop_id",
			"customer_id",
			"service_id",
			"booking_date",
			"start_time",
			"duration_minutes",
			"status",
			"source",
			"deposit_status",
			"deposit_deadline",
			"visit_completed",
			"is_first_visit",
			"service_name",
			"service_price",
			"customer_name",
			"customer_phone",
		).
		Values(
			booking.ShopID,
			booking.CustomerID,
			booking.ServiceID,
			dateParam(booking.BookingDate),
			booking.StartTime,
			booking.DurationMinutes,
			booking.Status,
			booking.Source,
			booking.DepositStatus,
			booking.DepositDeadline,
			booking.VisitCompleted,
			booking.IsFirstVisit,
			booking.ServiceName,
			booking.ServicePrice,
			booking.CustomerName,
			booking.CustomerPhone,
		).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: Create - build insert query: %v", ErrBuildQuery, err)
	}

	var createdAt, updatedAt sql.NullTime
	err = executor.QueryRowContext(ctx, query, args...).Scan(
		&booking.ID,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("%w: Create - execute insert: %v", ErrExecQuery, err)
	}

	booking.CreatedAt = createdAt.Time
	booking.UpdatedAt = updatedAt.Time

	return booking, nil
}

// GetByID получает бронирование по ID
// Внутри транзакции строка блокируется (FOR UPDATE)
func (r *Repository) GetByID(ctx context.Context, id int64) (*domain.Booking, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	selectBuilder := psqlbuilder.Select(bookingColumns...).
		From("bookings").
		Where(squirrel.Eq{"id": id})

	if dbmetrics.IsInTransaction(ctx) {
		selectBuilder = selectBuilder.Suffix("FOR UPDATE")
	}

	query, args, err := selectBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - build select query: %v", ErrBuildQuery, err)
	}

	booking, err := scanBooking(executor.QueryRowContext(ctx, query, args...))
	if err == sql.ErrNoRows {
		return nil, ErrBookingNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - scan booking: %v", ErrScanRow, err)
	}

	return booking, nil
}

// GetActiveByShopAndDate получает бронирования, занимающие слоты на дату (pending, confirmed)
func (r *Repository) GetActiveByShopAndDate(ctx context.Context, shopID int64, date time.Time) ([]*domain.Booking, error) {
	return r.GetByShopWithFilter(ctx, domain.ShopBookingsFilter{
		ShopID:    shopID,
		StartDate: &date,
		EndDate:   &date,
	})
}

// GetByShopWithFilter получает бронирования магазина с фильтрацией по периоду и статусу
//
// Примеры использования:
//
// 1. Все активные бронирования магазина:
//    filter := domain.ShopBookingsFilter{ShopID: 1}
//
// 2. Бронирования на дату (внутри транзакции строки блокируются):
//    filter := domain.ShopBookingsFilter{ShopID: 1, StartDate: &date, EndDate: &date}
//
// 3. Все бронирования включая отклонённые и отменённые:
//    filter := domain.ShopBookingsFilter{ShopID: 1, IncludeInactive: true}
func (r *Repository) GetByShopWithFilter(ctx context.Context, filter domain.ShopBookingsFilter) ([]*domain.Booking, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	selectBuilder := psqlbuilder.Select(bookingColumns...).
		From("bookings").
		Where(squirrel.Eq{"shop_id": filter.ShopID})

	if filter.StartDate != nil {
		selectBuilder = selectBuilder.Where(squirrel.GtOrEq{"booking_date": dateParam(*filter.StartDate)})
	}
	if filter.EndDate != nil {
		selectBuilder = selectBuilder.Where(squirrel.LtOrEq{"booking_date": dateParam(*filter.EndDate)})
	}

	if filter.Status != nil {
		selectBuilder = selectBuilder.Where(squirrel.Eq{"status": *filter.Status})
	} else if !filter.IncludeInactive {
		selectBuilder = selectBuilder.Where(squirrel.NotEq{"status": statusStrings(domain.InactiveStatuses)})
	}

	singleDay := filter.StartDate != nil && filter.EndDate != nil && filter.StartDate.Equal(*filter.EndDate)
	if singleDay {
		selectBuilder = selectBuilder.OrderBy("start_time ASC")
	} else {
		selectBuilder = selectBuilder.OrderBy("booking_date DESC, start_time DESC")
	}

	if dbmetrics.IsInTransaction(ctx) && singleDay {
		selectBuilder = selectBuilder.Suffix("FOR UPDATE")
	}

	query, args, err := selectBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetByShopWithFilter - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: GetByShopWithFilter - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	return scanBookings(rows)
}

// ListDueForCompletion подтвержденные бронирования без отметки о визите, дата которых не позже filter.Before
// Точное сравнение с временем начала делает вызывающая сторона
func (r *Repository) ListDueForCompletion(ctx context.Context, filter domain.DueForCompletionFilter) ([]*domain.Booking, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	selectBuilder := psqlbuilder.Select(bookingColumns...).
		From("bookings").
		Where(squirrel.Eq{"status": domain.StatusConfirmed}).
		Where(squirrel.Eq{"visit_completed": false}).
		Where(squirrel.LtOrEq{"booking_date": dateParam(filter.Before)}).
		OrderBy("booking_date ASC, start_time ASC")

	if filter.ShopID != nil {
		selectBuilder = selectBuilder.Where(squirrel.Eq{"shop_id": *filter.ShopID})
	}

	query, args, err := selectBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: ListDueForCompletion - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: ListDueForCompletion - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	return scanBookings(rows)
}

// Update сохраняет изменяемые поля бронирования (статус, депозит, визит, дата/время/услуга)
func (r *Repository) Update(ctx context.Context, booking *domain.Booking) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update("bookings").
		Set("service_id", booking.ServiceID).
		Set("booking_date", dateParam(booking.BookingDate)).
		Set("start_time", booking.StartTime).
		Set("duration_minutes", booking.DurationMinutes).
		Set("status", booking.Status).
		Set("deposit_status", booking.DepositStatus).
		Set("deposit_deadline", booking.DepositDeadline).
		Set("visit_completed", booking.VisitCompleted).
		Set("service_name", booking.ServiceName).
		Set("service_price", booking.ServicePrice).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": booking.ID}).
		Suffix("RETURNING updated_at").
		ToSql()

	if err != nil {
		return fmt.Errorf("%w: Update - build update query: %v", ErrBuildQuery, err)
	}

	var updatedAt sql.NullTime
	err = executor.QueryRowContext(ctx, query, args...).Scan(&updatedAt)
	if err == sql.ErrNoRows {
		return ErrBookingNotFound
	}
	if err != nil {
		return fmt.Errorf("%w: Update - execute update: %v", ErrExecQuery, err)
	}

	booking.UpdatedAt = updatedAt.Time
	return nil
}

// MarkVisitCompleted атомарно отмечает визит завершённым
// Возвращает false, если бронирование уже завершено или больше не подтверждено
func (r *Repository) MarkVisitCompleted(ctx context.Context, id int64) (bool, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update("bookings").
		Set("visit_completed", true).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": id}).
		Where(squirrel.Eq{"status": domain.StatusConfirmed}).
		Where(squirrel.Eq{"visit_completed": false}).
		ToSql()

	if err != nil {
		return false, fmt.Errorf("%w: MarkVisitCompleted - build update query: %v", ErrBuildQuery, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return false, fmt.Errorf("%w: MarkVisitCompleted - execute update: %v", ErrExecQuery, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("%w: MarkVisitCompleted - get rows affected: %v", ErrExecQuery, err)
	}

	return rowsAffected == 1, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanBooking(row rowScanner) (*domain.Booking, error) {
	var booking domain.Booking
	var depositDeadline, reminderSentAt, createdAt, updatedAt sql.NullTime

	err := row.Scan(
		&booking.ID,
		&booking.ShopID,
		&booking.CustomerID,
		&booking.ServiceID,
		&booking.BookingDate,
		&booking.StartTime,
		&booking.DurationMinutes,
		&booking.Status,
		&booking.Source,
		&booking.DepositStatus,
		&depositDeadline,
		&booking.VisitCompleted,
		&booking.IsFirstVisit,
		&reminderSentAt,
		&booking.ServiceName,
		&booking.ServicePrice,
		&booking.CustomerName,
		&booking.CustomerPhone,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	if depositDeadline.Valid {
		booking.DepositDeadline = &depositDeadline.Time
	}
	if reminderSentAt.Valid {
		booking.ReminderSentAt = &reminderSentAt.Time
	}
	booking.CreatedAt = createdAt.Time
	booking.UpdatedAt = updatedAt.Time

	return &booking, nil
}

// scanBookings сканирует результаты запроса в слайс бронирований
func scanBookings(rows *sql.Rows) ([]*domain.Booking, error) {
	bookings := make([]*domain.Booking, 0)

	for rows.Next() {
		booking, err := scanBooking(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: scanBookings - scan row: %v", ErrScanRow, err)
		}
		bookings = append(bookings, booking)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: scanBookings - rows error: %v", ErrScanRow, err)
	}

	return bookings, nil
}

func statusStrings(statuses []domain.BookingStatus) []string {
	result := make([]string, len(statuses))
	for i, s := range statuses {
		result[i] = string(s)
	}
	return result
}

// dateParam передает дату строкой, чтобы часовой пояс сессии не сдвигал DATE
func dateParam(t time.Time) string {
	return t.Format(domain.DateFormat)
}
