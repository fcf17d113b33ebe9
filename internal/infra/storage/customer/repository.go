package customer

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"

	"github.com/m04kA/SMC-ShopBookingService/internal/domain"
	"github.com/m04kA/SMC-ShopBookingService/pkg/dbmetrics"
	"github.com/m04kA/SMC-ShopBookingService/pkg/psqlbuilder"
)

type DBExecutor = dbmetrics.DBExecutor

var customerColumns = []string{
	"id",
	"shop_id",
	"phone",
	"name",
	"pet_name",
	"pet_breed",
	"pet_age",
	"pet_weight",
	"memos",
	"visit_count",
	"last_visit",
	"first_visit_date",
	"created_at",
	"updated_at",
}

// Repository репозиторий клиентов магазина
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория клиентов
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// GetByShopAndPhone ищет клиента по (магазин, телефон)
// Внутри транзакции строка блокируется
func (r *Repository) GetByShopAndPhone(ctx context.Context, shopID int64, phone string) (*domain.Customer, error) {
	return r.getOne(ctx, "GetByShopAndPhone", squirrel.Eq{"shop_id": shopID, "phone": phone})
}

// GetByID получает клиента по ID
func (r *Repository) GetByID(ctx context.Context, id int64) (*domain.Customer, error) {
	return r.getOne(ctx, "GetByID", squirrel.Eq{"id": id})
}

func (r *Repository) getOne(ctx context.Context, method string, where squirrel.Eq) (*domain.Customer, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	selectBuilder := psqlbuilder.Select(customerColumns...).
		From("customers").
		Where(where)

	if dbmetrics.IsInTransaction(ctx) {
		selectBuilder = selectBuilder.Suffix("FOR UPDATE")
	}

	query, args, err := selectBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: %s - build select query: %v", ErrBuildQuery, method, err)
	}

	var c domain.Customer
	var memos []byte
	var lastVisit, firstVisit, createdAt, updatedAt sql.NullTime

	err = executor.QueryRowContext(ctx, query, args...).Scan(
		&c.ID,
		&c.ShopID,
		&c.Phone,
		&c.Name,
		&c.Pet.Name,
		&c.Pet.Breed,
		&c.Pet.Age,
		&c.Pet.Weight,
		&memos,
		&c.VisitCount,
		&lastVisit,
		&firstVisit,
		&createdAt,
		&updatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, ErrCustomerNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %s - scan customer: %v", ErrScanRow, method, err)
	}

	if len(memos) > 0 {
		if err := json.Unmarshal(memos, &c.Memos); err != nil {
			return nil, fmt.Errorf("%w: %s - decode memos: %v", ErrMemos, method, err)
		}
	}
	if lastVisit.Valid {
		c.LastVisit = &lastVisit.Time
	}
	if firstVisit.Valid {
		c.FirstVisitDate = &firstVisit.Time
	}
	c.CreatedAt = createdAt.Time
	c.UpdatedAt = updatedAt.Time

	return &c, nil
}

// Create создает клиента
func (r *Repository) Create(ctx context.Context, c *domain.Customer) (*domain.Customer, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	memos, err := encodeMemos(c.Memos)
	if err != nil {
		return nil, fmt.Errorf("%w: Create - encode memos: %v", ErrMemos, err)
	}

	query, args, err := psqlbuilder.Insert("customers").
		Columns(
			"shop_id",
			"phone",
			"name",
			"pet_name",
			"pet_breed",
			"pet_age",
			"pet_weight",
			"memos",
			"visit_count",
			"first_visit_date",
		).
		Values(
			c.ShopID,
			c.Phone,
			c.Name,
			c.Pet.Name,
			c.Pet.Breed,
			c.Pet.Age,
			c.Pet.Weight,
			memos,
			c.VisitCount,
			dateOrNil(c.FirstVisitDate),
		).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: Create - build insert query: %v", ErrBuildQuery, err)
	}

	var createdAt, updatedAt sql.NullTime
	if err := executor.QueryRowContext(ctx, query, args...).Scan(&c.ID, &createdAt, &updatedAt); err != nil {
		return nil, fmt.Errorf("%w: Create - execute insert: %v", ErrExecQuery, err)
	}

	c.CreatedAt = createdAt.Time
	c.UpdatedAt = updatedAt.Time
	return c, nil
}

// UpdateProfile сохраняет имя, профиль питомца и журнал заметок
func (r *Repository) UpdateProfile(ctx context.Context, c *domain.Customer) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	memos, err := encodeMemos(c.Memos)
	if err != nil {
		return fmt.Errorf("%w: UpdateProfile - encode memos: %v", ErrMemos, err)
	}

	query, args, err := psqlbuilder.Update("customers").
		Set("name", c.Name).
		Set("pet_name", c.Pet.Name).
		Set("pet_breed", c.Pet.Breed).
		Set("pet_age", c.Pet.Age).
		Set("pet_weight", c.Pet.Weight).
		Set("memos", memos).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": c.ID}).
		ToSql()

	if err != nil {
		return fmt.Errorf("%w: UpdateProfile - build update query: %v", ErrBuildQuery, err)
	}

	return r.execOne(ctx, executor, "UpdateProfile", query, args)
}

// IncrementVisitCount увеличивает счетчик визитов и обновляет дату последнего визита
func (r *Repository) IncrementVisitCount(ctx context.Context, id int64, visitedAt time.Time) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update("customers").
		Set("visit_count", squirrel.Expr("visit_count + 1")).
		Set("last_visit", visitedAt).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": id}).
		ToSql()

	if err != nil {
		return fmt.Errorf("%w: IncrementVisitCount - build update query: %v", ErrBuildQuery, err)
	}

	return r.execOne(ctx, executor, "IncrementVisitCount", query, args)
}

// DecrementVisitCount уменьшает счетчик визитов, не опуская его ниже нуля
func (r *Repository) DecrementVisitCount(ctx context.Context, id int64) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update("customers").
		Set("visit_count", squirrel.Expr("GREATEST(visit_count - 1, 0)")).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": id}).
		ToSql()

	if err != nil {
		return fmt.Errorf("%w: DecrementVisitCount - build update query: %v", ErrBuildQuery, err)
	}

	return r.execOne(ctx, executor, "DecrementVisitCount", query, args)
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
		return ErrCustomerNotFound
	}
	return nil
}

// encodeMemos JSON передается строкой: []byte lib/pq отправил бы как bytea
func encodeMemos(memos []domain.MemoEntry) (string, error) {
	if memos == nil {
		return "[]", nil
	}
	raw, err := json.Marshal(memos)
	if err != nil {
		return "", err
	}
	return string(raw), nil
}

func dateOrNil(t *time.Time) interface{} {
	if t == nil {
		return nil
	}
	return t.Format(domain.DateFormat)
}
