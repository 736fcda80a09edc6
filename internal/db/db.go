package db

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// NewPool creates a new pgx connection pool using the provided DSN.
// It pings the database to ensure the connection is valid.
func NewPool(ctx context.Context, dsn string) (*pgxpool.Pool, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database config: %w", err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create database pool: %w", err)
	}

	// Use a short-lived context for the initial ping.
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return pool, nil
}

// schema is idempotent; every statement can run against an existing database.
var schema = []string{
	`CREATE EXTENSION IF NOT EXISTS pgcrypto`,
	`CREATE EXTENSION IF NOT EXISTS btree_gist`,

	`CREATE TABLE IF NOT EXISTS public.users (
		id            UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		email         TEXT NOT NULL UNIQUE,
		password_hash TEXT NOT NULL,
		display_name  TEXT,
		role          TEXT NOT NULL DEFAULT 'guest'
		              CHECK (role IN ('guest', 'property_owner', 'admin')),
		is_active     BOOLEAN NOT NULL DEFAULT TRUE,
		created_at    TIMESTAMPTZ NOT NULL DEFAULT now(),
		last_login_at TIMESTAMPTZ
	)`,

	`CREATE TABLE IF NOT EXISTS public.files (
		id             UUID PRIMARY KEY,
		user_id        UUID NOT NULL REFERENCES public.users(id),
		filename       TEXT NOT NULL,
		storage_path   TEXT NOT NULL,
		thumbnail_path TEXT,
		content_type   TEXT NOT NULL,
		size           BIGINT NOT NULL CHECK (size >= 0),
		created_at     TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,

	`CREATE TABLE IF NOT EXISTS public.properties (
		id            UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		owner_id      UUID NOT NULL REFERENCES public.users(id),
		title         TEXT NOT NULL CHECK (btrim(title) <> ''),
		description   TEXT NOT NULL DEFAULT '',
		property_type TEXT NOT NULL CHECK (property_type IN ('hotel', 'hostel', 'apartment')),
		location      TEXT NOT NULL DEFAULT '',
		address       TEXT NOT NULL DEFAULT '',
		city          TEXT NOT NULL DEFAULT '',
		country       TEXT NOT NULL DEFAULT '',
		postal_code   TEXT,
		latitude      DOUBLE PRECISION,
		longitude     DOUBLE PRECISION,
		nightly_rate  BIGINT NOT NULL CHECK (nightly_rate > 0),
		max_guests    INTEGER NOT NULL CHECK (max_guests > 0),
		bedrooms      INTEGER NOT NULL DEFAULT 0 CHECK (bedrooms >= 0),
		bathrooms     INTEGER NOT NULL DEFAULT 0 CHECK (bathrooms >= 0),
		amenities     TEXT[] NOT NULL DEFAULT '{}',
		images        TEXT[] NOT NULL DEFAULT '{}',
		is_active     BOOLEAN NOT NULL DEFAULT TRUE,
		created_at    TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at    TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,

	// The exclusion constraint is the last line of defence against double booking.
	`CREATE TABLE IF NOT EXISTS public.bookings (
		id              UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		property_id     UUID NOT NULL REFERENCES public.properties(id),
		user_id         UUID NOT NULL REFERENCES public.users(id),
		check_in        DATE NOT NULL,
		check_out       DATE NOT NULL,
		guest_count     INTEGER NOT NULL CHECK (guest_count > 0),
		total_price     BIGINT NOT NULL CHECK (total_price > 0),
		status          TEXT NOT NULL DEFAULT 'pending'
		                CHECK (status IN ('pending', 'approved', 'denied', 'cancelled', 'completed')),
		special_request TEXT,
		created_at      TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at      TIMESTAMPTZ NOT NULL DEFAULT now(),
		CHECK (check_out > check_in),
		CONSTRAINT bookings_no_overlap EXCLUDE USING gist (
			property_id WITH =,
			daterange(check_in, check_out, '[)') WITH &&
		) WHERE (status IN ('pending', 'approved'))
	)`,

	// Indexes
	`CREATE INDEX IF NOT EXISTS idx_properties_owner_id ON public.properties(owner_id)`,
	`CREATE INDEX IF NOT EXISTS idx_properties_active_rate ON public.properties(is_active, nightly_rate)`,
	`CREATE INDEX IF NOT EXISTS idx_bookings_user_id ON public.bookings(user_id)`,
	`CREATE INDEX IF NOT EXISTS idx_bookings_property_status ON public.bookings(property_id, status)`,
	`CREATE INDEX IF NOT EXISTS idx_bookings_status_check_out ON public.bookings(status, check_out)`,
}

// ApplySchema creates any missing tables, constraints and indexes.
func ApplySchema(ctx context.Context, pool *pgxpool.Pool) error {
	for i, stmt := range schema {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("failed to apply schema statement %d: %w", i, err)
		}
	}
	return nil
}
