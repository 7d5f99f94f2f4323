package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"credit-control/internal/domain/customer"
	"credit-control/internal/infrastructure/monitoring"
	"credit-control/internal/pkg/apperrors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pashagolub/pgxmock/v4"
)

type DBPool interface {
	Begin(ctx context.Context) (pgx.Tx, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Acquire(ctx context.Context) (*pgxpool.Conn, error)
	Close()
}

var _ DBPool = (*pgxpool.Pool)(nil)

var _ DBPool = (pgxmock.PgxPoolIface)(nil)

const customerColumns = `customer_id, customer_code, company_name, contact_person, phone, email, address, industry, registration_number, status, created_at, updated_at`

type CustomerRepository struct {
	db           DBPool
	queryTimeout time.Duration
	logger       *slog.Logger
}

var _ customer.CustomerRepository = (*CustomerRepository)(nil)

// NewCustomerRepository wraps a pool with the customer table access paths.
// Every query runs under queryTimeout; expiry surfaces as a resource
// exhaustion fault, never as a partial result.
func NewCustomerRepository(db DBPool, queryTimeout time.Duration, logger *slog.Logger) *CustomerRepository {
	if db == nil {
		panic("DBPool cannot be nil for CustomerRepository")
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
		logger.Warn("Warning: No logger provided to NewCustomerRepository, using default stderr handler")
	}
	return &CustomerRepository{
		db:           db,
		queryTimeout: queryTimeout,
		logger:       logger.With("component", "CustomerRepository"),
	}
}

func (r *CustomerRepository) queryCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	if r.queryTimeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, r.queryTimeout)
}

func observeQuery(name string, start time.Time, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	monitoring.DB.QueryDuration.WithLabelValues(name, status).Observe(time.Since(start).Seconds())
}

// Save performs an insert-or-full-replace keyed by customer_id. Timestamps
// are persisted exactly as assigned by the caller.
func (r *CustomerRepository) Save(ctx context.Context, cust *customer.Customer) error {
	if cust == nil {
		return fmt.Errorf("%w: customer cannot be nil", apperrors.ErrInvalidArgument)
	}

	ctx, cancel := r.queryCtx(ctx)
	defer cancel()

	query := `
        INSERT INTO customers (customer_id, customer_code, company_name, contact_person, phone, email, address, industry, registration_number, status, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
        ON CONFLICT (customer_id) DO UPDATE SET
            customer_code = EXCLUDED.customer_code,
            company_name = EXCLUDED.company_name,
            contact_person = EXCLUDED.contact_person,
            phone = EXCLUDED.phone,
            email = EXCLUDED.email,
            address = EXCLUDED.address,
            industry = EXCLUDED.industry,
            registration_number = EXCLUDED.registration_number,
            status = EXCLUDED.status,
            updated_at = EXCLUDED.updated_at`

	start := time.Now()
	_, err := r.db.Exec(ctx, query,
		cust.CustomerID,
		cust.CustomerCode,
		cust.CompanyName,
		cust.ContactPerson,
		cust.Phone,
		cust.Email,
		cust.Address,
		cust.Industry,
		cust.RegistrationNumber,
		string(cust.Status),
		cust.CreatedAt,
		cust.UpdatedAt,
	)
	observeQuery("save_customer", start, err)

	if err != nil {
		translatedErr := r.translateDBError(ctx, err)
		if errors.Is(translatedErr, customer.ErrDuplicateCode) {
			r.logger.WarnContext(ctx, "Unique constraint violation saving customer",
				slog.String("customerCode", cust.CustomerCode))
			return translatedErr
		}
		r.logger.ErrorContext(ctx, "Failed to save customer", slog.Any("error", err))
		return translatedErr
	}

	r.logger.DebugContext(ctx, "Customer saved", slog.Int64("customerID", cust.CustomerID))
	return nil
}

func (r *CustomerRepository) FindByID(ctx context.Context, customerID int64) (*customer.Customer, error) {
	ctx, cancel := r.queryCtx(ctx)
	defer cancel()

	query := `SELECT ` + customerColumns + ` FROM customers WHERE customer_id = $1`

	start := time.Now()
	cust, err := scanCustomer(r.db.QueryRow(ctx, query, customerID))
	observeQuery("find_by_id", start, err)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			r.logger.WarnContext(ctx, "Customer not found", slog.Int64("customerID", customerID))
			return nil, customer.ErrNotFound
		}
		r.logger.ErrorContext(ctx, "Failed to query customer by ID", slog.Any("error", err))
		return nil, r.translateDBError(ctx, err)
	}

	return cust, nil
}

func (r *CustomerRepository) FindByCode(ctx context.Context, customerCode string) (*customer.Customer, error) {
	ctx, cancel := r.queryCtx(ctx)
	defer cancel()

	query := `SELECT ` + customerColumns + ` FROM customers WHERE customer_code = $1`

	start := time.Now()
	cust, err := scanCustomer(r.db.QueryRow(ctx, query, customerCode))
	observeQuery("find_by_code", start, err)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			r.logger.WarnContext(ctx, "Customer not found by code", slog.String("customerCode", customerCode))
			return nil, customer.ErrNotFound
		}
		r.logger.ErrorContext(ctx, "Failed to query customer by code", slog.Any("error", err))
		return nil, r.translateDBError(ctx, err)
	}

	return cust, nil
}

func (r *CustomerRepository) ExistsByCode(ctx context.Context, customerCode string) (bool, error) {
	ctx, cancel := r.queryCtx(ctx)
	defer cancel()

	query := `SELECT EXISTS (SELECT 1 FROM customers WHERE customer_code = $1)`

	var exists bool
	start := time.Now()
	err := r.db.QueryRow(ctx, query, customerCode).Scan(&exists)
	observeQuery("exists_by_code", start, err)

	if err != nil {
		r.logger.ErrorContext(ctx, "Failed to check customer code existence", slog.Any("error", err))
		return false, r.translateDBError(ctx, err)
	}
	return exists, nil
}

// Search matches companyName OR customerCode case-insensitively, pages by
// companyName ascending and reports the total match count. Empty text
// matches everything subject to the status filter.
func (r *CustomerRepository) Search(ctx context.Context, q customer.SearchQuery) ([]*customer.Customer, int64, error) {
	ctx, cancel := r.queryCtx(ctx)
	defer cancel()

	where := ""
	args := []any{}
	if q.Text != "" {
		args = append(args, "%"+q.Text+"%")
		where = `WHERE (company_name ILIKE $1 OR customer_code ILIKE $1)`
		if !q.IncludeInactive {
			where += ` AND status = $2`
			args = append(args, string(customer.StatusActive))
		}
	} else if !q.IncludeInactive {
		where = `WHERE status = $1`
		args = append(args, string(customer.StatusActive))
	}

	countQuery := `SELECT COUNT(*) FROM customers ` + where

	var total int64
	start := time.Now()
	err := r.db.QueryRow(ctx, countQuery, args...).Scan(&total)
	observeQuery("search_count", start, err)
	if err != nil {
		r.logger.ErrorContext(ctx, "Failed to count search matches", slog.Any("error", err))
		return nil, 0, r.translateDBError(ctx, err)
	}

	pageQuery := fmt.Sprintf(`SELECT `+customerColumns+` FROM customers %s ORDER BY company_name ASC LIMIT $%d OFFSET $%d`,
		where, len(args)+1, len(args)+2)
	pageArgs := append(args, q.Size, q.Offset())

	start = time.Now()
	rows, err := r.db.Query(ctx, pageQuery, pageArgs...)
	observeQuery("search_page", start, err)
	if err != nil {
		r.logger.ErrorContext(ctx, "Failed to query customer search page", slog.Any("error", err))
		return nil, 0, r.translateDBError(ctx, err)
	}
	defer rows.Close()

	customers := make([]*customer.Customer, 0)
	for rows.Next() {
		cust, err := scanCustomer(rows)
		if err != nil {
			r.logger.ErrorContext(ctx, "Failed to scan customer row", slog.Any("error", err))
			return nil, 0, r.translateDBError(ctx, err)
		}
		customers = append(customers, cust)
	}

	if err = rows.Err(); err != nil {
		r.logger.ErrorContext(ctx, "Error iterating customer rows", slog.Any("error", err))
		return nil, 0, r.translateDBError(ctx, err)
	}

	r.logger.DebugContext(ctx, "Search finished",
		slog.String("query", q.Text), slog.Int("count", len(customers)), slog.Int64("total", total))
	return customers, total, nil
}

func (r *CustomerRepository) Count(ctx context.Context) (int64, error) {
	return r.countWhere(ctx, "count_customers", `SELECT COUNT(*) FROM customers`)
}

func (r *CustomerRepository) CountActive(ctx context.Context) (int64, error) {
	return r.countWhere(ctx, "count_active_customers",
		`SELECT COUNT(*) FROM customers WHERE status = $1`, string(customer.StatusActive))
}

func (r *CustomerRepository) countWhere(ctx context.Context, name, query string, args ...any) (int64, error) {
	ctx, cancel := r.queryCtx(ctx)
	defer cancel()

	var count int64
	start := time.Now()
	err := r.db.QueryRow(ctx, query, args...).Scan(&count)
	observeQuery(name, start, err)

	if err != nil {
		r.logger.ErrorContext(ctx, "Failed to count customers", slog.String("query_name", name), slog.Any("error", err))
		return 0, r.translateDBError(ctx, err)
	}
	return count, nil
}

func (r *CustomerRepository) DistinctIndustries(ctx context.Context) ([]string, error) {
	ctx, cancel := r.queryCtx(ctx)
	defer cancel()

	query := `
        SELECT DISTINCT industry FROM customers
        WHERE industry IS NOT NULL AND status = $1
        ORDER BY industry ASC`

	start := time.Now()
	rows, err := r.db.Query(ctx, query, string(customer.StatusActive))
	observeQuery("distinct_industries", start, err)
	if err != nil {
		r.logger.ErrorContext(ctx, "Failed to query distinct industries", slog.Any("error", err))
		return nil, r.translateDBError(ctx, err)
	}
	defer rows.Close()

	industries := make([]string, 0)
	for rows.Next() {
		var industry string
		if err := rows.Scan(&industry); err != nil {
			r.logger.ErrorContext(ctx, "Failed to scan industry row", slog.Any("error", err))
			return nil, r.translateDBError(ctx, err)
		}
		industries = append(industries, industry)
	}

	if err = rows.Err(); err != nil {
		r.logger.ErrorContext(ctx, "Error iterating industry rows", slog.Any("error", err))
		return nil, r.translateDBError(ctx, err)
	}

	return industries, nil
}

func (r *CustomerRepository) MaxAssignedID(ctx context.Context) (int64, error) {
	ctx, cancel := r.queryCtx(ctx)
	defer cancel()

	query := `SELECT COALESCE(MAX(customer_id), 0) FROM customers`

	var maxID int64
	start := time.Now()
	err := r.db.QueryRow(ctx, query).Scan(&maxID)
	observeQuery("max_assigned_id", start, err)

	if err != nil {
		r.logger.ErrorContext(ctx, "Failed to query max assigned customer ID", slog.Any("error", err))
		return 0, r.translateDBError(ctx, err)
	}
	return maxID, nil
}

func scanCustomer(row pgx.Row) (*customer.Customer, error) {
	var cust customer.Customer
	var status string
	var contactPerson, phone, email, address, industry, registrationNumber pgtype.Text

	err := row.Scan(
		&cust.CustomerID,
		&cust.CustomerCode,
		&cust.CompanyName,
		&contactPerson,
		&phone,
		&email,
		&address,
		&industry,
		&registrationNumber,
		&status,
		&cust.CreatedAt,
		&cust.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	cust.ContactPerson = textPtr(contactPerson)
	cust.Phone = textPtr(phone)
	cust.Email = textPtr(email)
	cust.Address = textPtr(address)
	cust.Industry = textPtr(industry)
	cust.RegistrationNumber = textPtr(registrationNumber)
	cust.Status = customer.Status(status)
	return &cust, nil
}

func textPtr(t pgtype.Text) *string {
	if !t.Valid {
		return nil
	}
	s := t.String
	return &s
}

// translateDBError maps driver failures onto the domain and apperrors
// taxonomy: unique violations become ErrDuplicateCode, pool or deadline
// pressure becomes ErrResourceExhausted, everything else is a database fault.
func (r *CustomerRepository) translateDBError(ctx context.Context, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return customer.ErrNotFound
	}
	if errors.Is(err, context.DeadlineExceeded) {
		r.logger.WarnContext(ctx, "Database query exceeded its deadline", slog.Any("error", err))
		return fmt.Errorf("%w: %w", apperrors.ErrResourceExhausted, err)
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		if pgErr.Code == "23505" {
			r.logger.Warn("Database unique constraint violation",
				"detail", pgErr.Detail, "constraint", pgErr.ConstraintName)
			return fmt.Errorf("%w: %s", customer.ErrDuplicateCode, pgErr.ConstraintName)
		}
		r.logger.Error("PostgreSQL specific error",
			"code", pgErr.Code, "message", pgErr.Message, "detail", pgErr.Detail)
		return fmt.Errorf("%w: db error code %s", apperrors.ErrDatabase, pgErr.Code)
	}

	return fmt.Errorf("%w: %w", apperrors.ErrDatabase, err)
}
