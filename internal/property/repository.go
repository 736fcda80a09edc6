package property

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Repository interface {
	Create(ctx context.Context, p *Property) error
	GetByID(ctx context.Context, id string) (*Property, error)
	List(ctx context.Context, filter Filter) ([]*Property, int, error)
	Update(ctx context.Context, p *Property) error
	SetActive(ctx context.Context, id string, active bool) error
	AddImage(ctx context.Context, id, fileID string) error
}

var propertyColumns = []string{
	"p.id", "p.owner_id", "p.title", "p.description", "p.property_type",
	"p.location", "p.address", "p.city", "p.country", "p.postal_code",
	"p.latitude", "p.longitude", "p.nightly_rate", "p.max_guests",
	"p.bedrooms", "p.bathrooms", "p.amenities", "p.images", "p.is_active",
	"p.created_at", "p.updated_at",
}

var sortColumns = map[string]string{
	"created_at":   "p.created_at",
	"nightly_rate": "p.nightly_rate",
	"max_guests":   "p.max_guests",
	"title":        "p.title",
}

// availableFor excludes properties holding an active booking that overlaps [check_in, check_out).
const availableFor = `NOT EXISTS (
	SELECT 1 FROM public.bookings b
	WHERE b.property_id = p.id
	  AND b.status IN ('pending', 'approved')
	  AND b.check_in < ? AND ? < b.check_out
)`

type pgxRepository struct {
	pool *pgxpool.Pool
}

func NewPgxRepository(pool *pgxpool.Pool) Repository {
	return &pgxRepository{pool: pool}
}

func scanProperty(row pgx.Row, extra ...any) (*Property, error) {
	var p Property
	var typ string
	dest := append([]any{
		&p.ID, &p.OwnerID, &p.Title, &p.Description, &typ,
		&p.Location, &p.Address, &p.City, &p.Country, &p.PostalCode,
		&p.Latitude, &p.Longitude, &p.NightlyRate, &p.MaxGuests,
		&p.Bedrooms, &p.Bathrooms, &p.Amenities, &p.Images, &p.IsActive,
		&p.CreatedAt, &p.UpdatedAt,
	}, extra...)
	if err := row.Scan(dest...); err != nil {
		return nil, err
	}

	t, err := parseType(typ)
	if err != nil {
		return nil, err
	}
	p.Type = t
	return &p, nil
}

func (r *pgxRepository) Create(ctx context.Context, p *Property) error {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query, args, err := psql.Insert("public.properties").
		Columns(
			"owner_id", "title", "description", "property_type", "location", "address",
			"city", "country", "postal_code", "latitude", "longitude", "nightly_rate",
			"max_guests", "bedrooms", "bathrooms", "amenities", "is_active",
		).
		Values(
			p.OwnerID, p.Title, p.Description, string(p.Type), p.Location, p.Address,
			p.City, p.Country, p.PostalCode, p.Latitude, p.Longitude, p.NightlyRate,
			p.MaxGuests, p.Bedrooms, p.Bathrooms, nonNil(p.Amenities), p.IsActive,
		).
		Suffix("RETURNING id, images, created_at, updated_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("build create property query failed: %w", err)
	}

	if err := r.pool.QueryRow(ctx, query, args...).Scan(&p.ID, &p.Images, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return fmt.Errorf("create property failed: %w", err)
	}
	return nil
}

func (r *pgxRepository) GetByID(ctx context.Context, id string) (*Property, error) {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query, args, err := psql.Select(propertyColumns...).
		From("public.properties p").
		Where(squirrel.Eq{"p.id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build get property query failed: %w", err)
	}

	p, err := scanProperty(r.pool.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get property failed: %w", err)
	}
	return p, nil
}

func (r *pgxRepository) List(ctx context.Context, filter Filter) ([]*Property, int, error) {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query := psql.Select(propertyColumns...).
		Column("count(*) OVER() AS total_count").
		From("public.properties p")

	if !filter.IncludeInactive {
		query = query.Where(squirrel.Eq{"p.is_active": true})
	}
	if filter.OwnerID != "" {
		query = query.Where(squirrel.Eq{"p.owner_id": filter.OwnerID})
	}
	if filter.Location != "" {
		pattern := "%" + filter.Location + "%"
		query = query.Where(squirrel.Or{
			squirrel.ILike{"p.location": pattern},
			squirrel.ILike{"p.city": pattern},
			squirrel.ILike{"p.country": pattern},
		})
	}
	if filter.Type != "" {
		query = query.Where(squirrel.Eq{"p.property_type": string(filter.Type)})
	}
	if filter.MinPrice != nil {
		query = query.Where(squirrel.GtOrEq{"p.nightly_rate": *filter.MinPrice})
	}
	if filter.MaxPrice != nil {
		query = query.Where(squirrel.LtOrEq{"p.nightly_rate": *filter.MaxPrice})
	}
	if filter.Guests > 0 {
		query = query.Where(squirrel.GtOrEq{"p.max_guests": filter.Guests})
	}
	if filter.Stay != nil {
		query = query.Where(availableFor, filter.Stay.CheckOut, filter.Stay.CheckIn)
	}

	// Sorting
	orderBy, ok := sortColumns[filter.SortBy]
	if !ok {
		orderBy = "p.created_at"
	}
	orderDir := "DESC"
	if strings.EqualFold(filter.SortOrder, "asc") {
		orderDir = "ASC"
	}
	query = query.OrderBy(orderBy+" "+orderDir, "p.id")

	// Pagination
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
		return nil, 0, fmt.Errorf("build list properties query failed: %w", err)
	}

	rows, err := r.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list properties failed: %w", err)
	}
	defer rows.Close()

	var properties []*Property
	var total int
	for rows.Next() {
		p, err := scanProperty(rows, &total)
		if err != nil {
			return nil, 0, fmt.Errorf("scan property failed: %w", err)
		}
		properties = append(properties, p)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate properties failed: %w", err)
	}

	return properties, total, nil
}

// Update writes every mutable column. owner_id is never touched.
func (r *pgxRepository) Update(ctx context.Context, p *Property) error {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query, args, err := psql.Update("public.properties").
		Set("title", p.Title).
		Set("description", p.Description).
		Set("property_type", string(p.Type)).
		Set("location", p.Location).
		Set("address", p.Address).
		Set("city", p.City).
		Set("country", p.Country).
		Set("postal_code", p.PostalCode).
		Set("latitude", p.Latitude).
		Set("longitude", p.Longitude).
		Set("nightly_rate", p.NightlyRate).
		Set("max_guests", p.MaxGuests).
		Set("bedrooms", p.Bedrooms).
		Set("bathrooms", p.Bathrooms).
		Set("amenities", nonNil(p.Amenities)).
		Set("updated_at", squirrel.Expr("now()")).
		Where(squirrel.Eq{"id": p.ID}).
		Suffix("RETURNING updated_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("build update property query failed: %w", err)
	}

	if err := r.pool.QueryRow(ctx, query, args...).Scan(&p.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrNotFound
		}
		return fmt.Errorf("update property failed: %w", err)
	}
	return nil
}

func (r *pgxRepository) SetActive(ctx context.Context, id string, active bool) error {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query, args, err := psql.Update("public.properties").
		Set("is_active", active).
		Set("updated_at", squirrel.Expr("now()")).
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build set property active query failed: %w", err)
	}

	ct, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("set property active failed: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *pgxRepository) AddImage(ctx context.Context, id, fileID string) error {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query, args, err := psql.Update("public.properties").
		Set("images", squirrel.Expr("array_append(images, ?::text)", fileID)).
		Set("updated_at", squirrel.Expr("now()")).
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build add property image query failed: %w", err)
	}

	ct, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("add property image failed: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// nonNil keeps NOT NULL array columns from receiving NULL.
func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
