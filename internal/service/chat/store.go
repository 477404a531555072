// Package chat handles visitor and admin conversations: history storage,
// reply generation through the AI gateway and best-effort lead capture.
package chat

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/imovia/imovia-go/internal/domain"
	apperrors "github.com/imovia/imovia-go/pkg/errors"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	historyKeyPrefix = "chat:history:"
	historyTTL       = 24 * time.Hour

	// maxStoredTurns bounds prompt size for long-running conversations;
	// older turns are dropped oldest-first.
	maxStoredTurns = 40
)

// ConversationStore keeps per-conversation chat history in Redis with a
// sliding expiry.
type ConversationStore struct {
	client *redis.Client
	logger *zap.Logger
}

func NewConversationStore(client *redis.Client, logger *zap.Logger) *ConversationStore {
	return &ConversationStore{
		client: client,
		logger: logger,
	}
}

// History returns the stored turns for a conversation, oldest first. A missing
// key is an empty history, not an error.
func (s *ConversationStore) History(ctx context.Context, conversationID string) ([]domain.ChatTurn, error) {
	data, err := s.client.Get(ctx, historyKey(conversationID)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, apperrors.NewCacheError("failed to load conversation history", "get", historyKey(conversationID), err)
	}

	var turns []domain.ChatTurn
	if err := json.Unmarshal(data, &turns); err != nil {
		s.logger.Warn("Discarding corrupt conversation history",
			zap.String("conversation_id", conversationID),
			zap.Error(err),
		)
		return nil, nil
	}

	return turns, nil
}

// Append stores new turns at the end of the conversation and refreshes the
// expiry. History is truncated to the most recent turns.
func (s *ConversationStore) Append(ctx context.Context, conversationID string, turns ...domain.ChatTurn) error {
	existing, err := s.History(ctx, conversationID)
	if err != nil {
		return err
	}

	combined := append(existing, turns...)
	if len(combined) > maxStoredTurns {
		combined = combined[len(combined)-maxStoredTurns:]
	}

	data, err := json.Marshal(combined)
	if err != nil {
		return fmt.Errorf("failed to encode conversation history: %w", err)
	}

	if err := s.client.Set(ctx, historyKey(conversationID), data, historyTTL).Err(); err != nil {
		return apperrors.NewCacheError("failed to store conversation history", "set", historyKey(conversationID), err)
	}

	return nil
}

// Transcript renders the history as "Role: text" lines for lead extraction.
func Transcript(turns []domain.ChatTurn) string {
	var builder strings.Builder
	for _, turn := range turns {
		label := "Visitante"
		if turn.Role == domain.RoleAssistant {
			label = "Assistente"
		}
		builder.WriteString(label)
		builder.WriteString(": ")
		builder.WriteString(turn.Content)
		builder.WriteString("\n")
	}
	return builder.String()
}

func historyKey(conversationID string) string {
	return historyKeyPrefix + conversationID
}
