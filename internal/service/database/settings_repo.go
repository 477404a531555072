package database

import (
	"context"
	"database/sql"
	"errors"

	"go.uber.org/zap"
)

// SettingsRepo reads the admin-managed key-value configuration table. Writes
// happen only through the admin UI, so this side is read-only.
type SettingsRepo struct {
	db     *sql.DB
	logger *zap.Logger
}

func NewSettingsRepo(ps *PostgresService, logger *zap.Logger) *SettingsRepo {
	return &SettingsRepo{
		db:     ps.GetDB(),
		logger: logger,
	}
}

// Get returns the persisted value for key, or "" when the key is absent.
// Errors mean the store itself failed; the resolver falls back to env then.
func (r *SettingsRepo) Get(ctx context.Context, key string) (string, error) {
	var value string
	err := r.db.QueryRowContext(ctx,
		`SELECT value FROM site_settings WHERE key = $1`, key,
	).Scan(&value)

	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", err
	}

	return value, nil
}
