package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/imovia/imovia-go/internal/domain"
	"go.uber.org/zap"
)

type PageRepo struct {
	db     *sql.DB
	logger *zap.Logger
}

func NewPageRepo(ps *PostgresService, logger *zap.Logger) *PageRepo {
	return &PageRepo{
		db:     ps.GetDB(),
		logger: logger,
	}
}

// Insert writes a finished landing page as a single statement, so the record
// is never readable half-written.
func (r *PageRepo) Insert(ctx context.Context, page *domain.LandingPage) error {
	content, err := json.Marshal(page.Content)
	if err != nil {
		return fmt.Errorf("failed to encode page content: %w", err)
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO landing_pages (id, slug, title, agent_id, content, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		page.ID, page.Slug, page.Title, page.AgentID, content, time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert landing page: %w", err)
	}

	r.logger.Info("Landing page persisted",
		zap.String("id", page.ID),
		zap.String("slug", page.Slug),
	)

	return nil
}
