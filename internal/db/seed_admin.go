package db

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jatolabs/projecthub/internal/config"
	"github.com/jatolabs/projecthub/internal/security"
)

// EnsureAdminUser creates the configured admin account if it does not exist
// yet. A no-op when ADMIN_EMAIL / ADMIN_PASSWORD are unset.
func EnsureAdminUser(ctx context.Context, pool *pgxpool.Pool, cfg config.Config) error {
	if cfg.AdminEmail == "" || cfg.AdminPassword == "" {
		return nil
	}

	var dummy int64

	err := pool.QueryRow(ctx, `SELECT id FROM users WHERE email = $1`, cfg.AdminEmail).Scan(&dummy)

	if err == nil {
		return nil
	}

	if !errors.Is(err, pgx.ErrNoRows) {
		return err
	}

	hash, err := security.HashPassword(cfg.AdminPassword)

	if err != nil {
		return err
	}

	_, err = pool.Exec(ctx,
		`INSERT INTO users (name, email, password_hash, is_active, role)
		 VALUES ($1,$2,$3,$4,$5)`,
		cfg.AdminName, cfg.AdminEmail, hash, true, cfg.AdminRole,
	)

	return err
}
