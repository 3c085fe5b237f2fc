package database

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"notably/internal/models"
)

// NewPool creates a pgx connection pool and verifies connectivity.
func NewPool(ctx context.Context, dsn string) (*pgxpool.Pool, error) {
	config, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, err
	}

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, err
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}

	return pool, nil
}

var schema = []string{
	`CREATE TABLE IF NOT EXISTS tenants (
		id UUID PRIMARY KEY,
		name TEXT NOT NULL,
		slug TEXT UNIQUE NOT NULL,
		subscription_plan TEXT NOT NULL DEFAULT 'free' CHECK (subscription_plan IN ('free', 'pro')),
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS users (
		id UUID PRIMARY KEY,
		email TEXT UNIQUE NOT NULL,
		password_hash TEXT NOT NULL,
		role TEXT NOT NULL CHECK (role IN ('admin', 'member')),
		tenant_id UUID NOT NULL REFERENCES tenants (id),
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS notes (
		id UUID PRIMARY KEY,
		title TEXT NOT NULL,
		content TEXT NOT NULL,
		tenant_id UUID NOT NULL REFERENCES tenants (id),
		user_id UUID NOT NULL REFERENCES users (id),
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_users_tenant_id ON users (tenant_id)`,
	`CREATE INDEX IF NOT EXISTS idx_notes_tenant_id ON notes (tenant_id)`,
	`CREATE INDEX IF NOT EXISTS idx_notes_user_id ON notes (user_id)`,
}

// Migrate creates the schema. Runs once at startup, before the server accepts
// requests, so no request path ever has to check initialization state.
func Migrate(ctx context.Context, pool *pgxpool.Pool) error {
	for _, stmt := range schema {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
	}
	return nil
}

// Seed inserts the default tenants and users. It is a no-op when any tenant
// already exists.
func Seed(ctx context.Context, pool *pgxpool.Pool) error {
	var count int
	if err := pool.QueryRow(ctx, `SELECT COUNT(*) FROM tenants`).Scan(&count); err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte("password"), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	tenants := []struct {
		id   uuid.UUID
		name string
		slug string
	}{
		{uuid.New(), "Acme Corp", "acme"},
		{uuid.New(), "Globex Corp", "globex"},
	}

	for _, t := range tenants {
		_, err := pool.Exec(ctx,
			`INSERT INTO tenants (id, name, slug, subscription_plan) VALUES ($1, $2, $3, $4)`,
			t.id, t.name, t.slug, models.PlanFree,
		)
		if err != nil {
			return err
		}

		users := []struct {
			email string
			role  string
		}{
			{"admin@" + t.slug + ".test", models.RoleAdmin},
			{"user@" + t.slug + ".test", models.RoleMember},
		}
		for _, u := range users {
			_, err := pool.Exec(ctx,
				`INSERT INTO users (id, email, password_hash, role, tenant_id) VALUES ($1, $2, $3, $4, $5)`,
				uuid.New(), u.email, string(hash), u.role, t.id,
			)
			if err != nil {
				return err
			}
		}
	}

	zap.L().Info("database seeded with default tenants and users")
	return nil
}
