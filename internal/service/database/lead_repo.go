package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/imovia/imovia-go/internal/domain"
	"go.uber.org/zap"
)

type LeadRepo struct {
	db     *sql.DB
	logger *zap.Logger
}

func NewLeadRepo(ps *PostgresService, logger *zap.Logger) *LeadRepo {
	return &LeadRepo{
		db:     ps.GetDB(),
		logger: logger,
	}
}

// Upsert stores the latest extracted lead for a conversation. Extraction runs
// after every visitor message, so the row is refreshed as the conversation
// yields more fields.
func (r *LeadRepo) Upsert(ctx context.Context, conversationID string, lead *domain.Lead) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO leads (id, conversation_id, name, phone, email, budget, timeframe, interest, summary, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (conversation_id) DO UPDATE SET
			name = COALESCE(EXCLUDED.name, leads.name),
			phone = COALESCE(EXCLUDED.phone, leads.phone),
			email = COALESCE(EXCLUDED.email, leads.email),
			budget = COALESCE(EXCLUDED.budget, leads.budget),
			timeframe = COALESCE(EXCLUDED.timeframe, leads.timeframe),
			interest = COALESCE(EXCLUDED.interest, leads.interest),
			summary = COALESCE(EXCLUDED.summary, leads.summary),
			updated_at = EXCLUDED.updated_at`,
		uuid.NewString(), conversationID,
		nullable(lead.Name), nullable(lead.Phone), nullable(lead.Email),
		nullable(lead.Budget), nullable(lead.Timeframe), nullable(lead.Interest),
		nullable(lead.Summary), time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("failed to upsert lead: %w", err)
	}

	r.logger.Debug("Lead upserted", zap.String("conversation_id", conversationID))
	return nil
}

func nullable(value *string) sql.NullString {
	if value == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *value, Valid: true}
}
