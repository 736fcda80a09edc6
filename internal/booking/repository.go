package booking

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Guard inspects the active bookings of a property before an insert and vetoes it by returning an error.
type Guard func(active []*Booking) error

type Repository interface {
	GetByID(ctx context.Context, id string) (*Booking, error)
	List(ctx context.Context, filter Filter) ([]*Booking, int, error)
	ListActiveByProperty(ctx context.Context, propertyID string) ([]*Booking, error)

	// Create inserts b in a transaction holding a per-property lock.
	// guard sees the property's active bookings as of that lock; a non-nil result aborts the insert.
	Create(ctx context.Context, b *Booking, guard Guard) error

	// UpdateStatus moves a booking from expected to next only if its stored status is still expected.
	// It returns ErrStatusChanged when another writer got there first.
	UpdateStatus(ctx context.Context, id string, expected, next Status) (*Booking, error)

	// ListDueForCompletion returns approved bookings checking out before the given date.
	ListDueForCompletion(ctx context.Context, before time.Time, limit int) ([]*Booking, error)
}

// querier is the subset of pgx shared by *pgxpool.Pool and pgx.Tx.
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

var psql = squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)

var bookingColumns = []string{
	"id", "property_id", "user_id", "check_in", "check_out", "guest_count",
	"total_price", "status", "special_request", "created_at", "updated_at",
}

var sortColumns = map[string]string{
	"check_in":    "check_in",
	"check_out":   "check_out",
	"created_at":  "created_at",
	"total_price": "total_price",
	"status":      "status",
}

type pgxRepository struct {
	pool *pgxpool.Pool
}

func NewPgxRepository(pool *pgxpool.Pool) Repository {
	return &pgxRepository{pool: pool}
}

func statusValues(statuses []Status) []string {
	out := make([]string, len(statuses))
	for i, s := range statuses {
		out[i] = s.String()
	}
	return out
}

// scanBooking scans bookingColumns followed by any extra destinations.
func scanBooking(row pgx.Row, extra ...any) (*Booking, error) {
	var b Booking
	var status string
	dest := append([]any{
		&b.ID, &b.PropertyID, &b.UserID, &b.CheckIn, &b.CheckOut, &b.GuestCount,
		&b.TotalPrice, &status, &b.SpecialRequest, &b.CreatedAt, &b.UpdatedAt,
	}, extra...)
	if err := row.Scan(dest...); err != nil {
		return nil, err
	}

	st, err := ParseStatus(status)
	if err != nil {
		return nil, err
	}
	b.Status = st
	return &b, nil
}

func (r *pgxRepository) GetByID(ctx context.Context, id string) (*Booking, error) {
	query, args, err := psql.Select(bookingColumns...).
		From("public.bookings").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build get booking query failed: %w", err)
	}

	b, err := scanBooking(r.pool.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get booking failed: %w", err)
	}
	return b, nil
}

func (r *pgxRepository) List(ctx context.Context, filter Filter) ([]*Booking, int, error) {
	query := psql.Select(bookingColumns...).
		Column("count(*) OVER() AS total_count").
		From("public.bookings")

	if filter.UserID != "" {
		query = query.Where(squirrel.Eq{"user_id": filter.UserID})
	}
	if filter.PropertyID != "" {
		query = query.Where(squirrel.Eq{"property_id": filter.PropertyID})
	}
	if filter.Status != nil {
		query = query.Where(squirrel.Eq{"status": filter.Status.String()})
	}
	// Date window uses the same half-open overlap as availability
	if filter.From != nil {
		query = query.Where(squirrel.Gt{"check_out": *filter.From})
	}
	if filter.To != nil {
		query = query.Where(squirrel.Lt{"check_in": *filter.To})
	}

	orderBy, ok := sortColumns[filter.SortBy]
	if !ok {
		orderBy = "check_in"
	}
	orderDir := "DESC"
	if strings.EqualFold(filter.SortOrder, "asc") {
		orderDir = "ASC"
	}
	query = query.OrderBy(orderBy+" "+orderDir, "id")

	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.PageSize < 1 {
		filter.PageSize = 20
	}
	offset := (filter.Page - 1) * filter.PageSize
	query = query.Limit(uint64(filter.PageSize)).Offset(uint64(offset))

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build list bookings query failed: %w", err)
	}

	rows, err := r.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list bookings failed: %w", err)
	}
	defer rows.Close()

	var bookings []*Booking
	var total int
	for rows.Next() {
		b, err := scanBooking(rows, &total)
		if err != nil {
			return nil, 0, fmt.Errorf("scan booking failed: %w", err)
		}
		bookings = append(bookings, b)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate bookings failed: %w", err)
	}

	return bookings, total, nil
}

func (r *pgxRepository) ListActiveByProperty(ctx context.Context, propertyID string) ([]*Booking, error) {
	return listActive(ctx, r.pool, propertyID)
}

func listActive(ctx context.Context, q querier, propertyID string) ([]*Booking, error) {
	query, args, err := psql.Select(bookingColumns...).
		From("public.bookings").
		Where(squirrel.Eq{"property_id": propertyID}).
		Where(squirrel.Eq{"status": statusValues(activeStatuses)}).
		OrderBy("check_in").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list active bookings query failed: %w", err)
	}

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list active bookings failed: %w", err)
	}
	defer rows.Close()

	var bookings []*Booking
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, fmt.Errorf("scan booking failed: %w", err)
		}
		bookings = append(bookings, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate active bookings failed: %w", err)
	}
	return bookings, nil
}

func (r *pgxRepository) Create(ctx context.Context, b *Booking, guard Guard) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin create booking tx failed: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	// Serializes check-then-insert per property until commit.
	if _, err := tx.Exec(ctx, "SELECT pg_advisory_xact_lock(hashtext($1::text))", b.PropertyID); err != nil {
		return fmt.Errorf("lock property calendar failed: %w", err)
	}

	active, err := listActive(ctx, tx, b.PropertyID)
	if err != nil {
		return err
	}
	if guard != nil {
		if err := guard(active); err != nil {
			return err
		}
	}

	query, args, err := psql.Insert("public.bookings").
		Columns("property_id", "user_id", "check_in", "check_out", "guest_count", "total_price", "status", "special_request").
		Values(b.PropertyID, b.UserID, b.CheckIn, b.CheckOut, b.GuestCount, b.TotalPrice, b.Status.String(), b.SpecialRequest).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("build create booking query failed: %w", err)
	}

	if err := tx.QueryRow(ctx, query, args...).Scan(&b.ID, &b.CreatedAt, &b.UpdatedAt); err != nil {
		var e *pgconn.PgError
		if errors.As(err, &e) && e.Code == pgerrcode.ExclusionViolation {
			return ErrDateConflict
		}
		return fmt.Errorf("create booking failed: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		var e *pgconn.PgError
		if errors.As(err, &e) && e.Code == pgerrcode.ExclusionViolation {
			return ErrDateConflict
		}
		return fmt.Errorf("commit booking failed: %w", err)
	}
	return nil
}

func (r *pgxRepository) UpdateStatus(ctx context.Context, id string, expected, next Status) (*Booking, error) {
	query, args, err := psql.Update("public.bookings").
		Set("status", next.String()).
		Set("updated_at", squirrel.Expr("now()")).
		Where(squirrel.Eq{"id": id}).
		Where(squirrel.Eq{"status": expected.String()}).
		Suffix("RETURNING " + strings.Join(bookingColumns, ", ")).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build update booking status query failed: %w", err)
	}

	b, err := scanBooking(r.pool.QueryRow(ctx, query, args...))
	if err == nil {
		return b, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("update booking status failed: %w", err)
	}

	// No row matched: either the booking is gone or its status moved on.
	var exists bool
	if err := r.pool.QueryRow(ctx, "SELECT EXISTS (SELECT 1 FROM public.bookings WHERE id = $1)", id).Scan(&exists); err != nil {
		return nil, fmt.Errorf("check booking exists failed: %w", err)
	}
	if !exists {
		return nil, ErrNotFound
	}
	return nil, ErrStatusChanged
}

func (r *pgxRepository) ListDueForCompletion(ctx context.Context, before time.Time, limit int) ([]*Booking, error) {
	if limit < 1 {
		limit = 100
	}
	query, args, err := psql.Select(bookingColumns...).
		From("public.bookings").
		Where(squirrel.Eq{"status": StatusApproved.String()}).
		Where(squirrel.Lt{"check_out": before}).
		OrderBy("check_out").
		Limit(uint64(limit)).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list due bookings query failed: %w", err)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list due bookings failed: %w", err)
	}
	defer rows.Close()

	var bookings []*Booking
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, fmt.Errorf("scan booking failed: %w", err)
		}
		bookings = append(bookings, b)
	}
	return bookings, rows.Err()
}
