package chat

import (
	"context"
	"strings"
	"time"

	"github.com/imovia/imovia-go/internal/domain"
	"go.uber.org/zap"
)

const leadCaptureTimeout = 30 * time.Second

// Replier generates the assistant reply for a conversation context.
type Replier interface {
	GenerateChatReply(ctx context.Context, pc domain.ProviderContext, history []domain.ChatTurn, newMessage string) (string, error)
}

// HistoryStore persists conversation turns.
type HistoryStore interface {
	History(ctx context.Context, conversationID string) ([]domain.ChatTurn, error)
	Append(ctx context.Context, conversationID string, turns ...domain.ChatTurn) error
}

// LeadCapturer records whatever lead data the conversation has yielded so
// far. Implementations must never fail the chat flow.
type LeadCapturer interface {
	Capture(ctx context.Context, conversationID string, history []domain.ChatTurn)
}

// Fallbacks resolves the reply served when the provider cannot answer.
type Fallbacks interface {
	FallbackReply(ctx context.Context) string
}

// Service drives a chat exchange: load history, generate the reply, persist
// both turns and trigger lead capture for visitor conversations.
type Service struct {
	replier Replier
	store   HistoryStore
	leads   LeadCapturer
	prompts Fallbacks
	logger  *zap.Logger
}

func NewService(replier Replier, store HistoryStore, leads LeadCapturer, prompts Fallbacks, logger *zap.Logger) *Service {
	return &Service{
		replier: replier,
		store:   store,
		leads:   leads,
		prompts: prompts,
		logger:  logger,
	}
}

// HandleMessage answers one visitor or admin message. Provider failures
// degrade to the configured fallback reply; the visitor always gets text back.
func (s *Service) HandleMessage(ctx context.Context, pc domain.ProviderContext, conversationID, message string) (string, error) {
	message = strings.TrimSpace(message)
	if message == "" {
		return s.prompts.FallbackReply(ctx), nil
	}

	history, err := s.store.History(ctx, conversationID)
	if err != nil {
		s.logger.Warn("Proceeding without conversation history",
			zap.String("conversation_id", conversationID),
			zap.Error(err),
		)
		history = nil
	}

	reply, err := s.replier.GenerateChatReply(ctx, pc, history, message)
	if err != nil {
		s.logger.Error("Chat reply generation failed, serving fallback",
			zap.String("conversation_id", conversationID),
			zap.String("context", string(pc)),
			zap.Error(err),
		)
		return s.prompts.FallbackReply(ctx), nil
	}

	turns := []domain.ChatTurn{
		{Role: domain.RoleUser, Content: message},
		{Role: domain.RoleAssistant, Content: reply},
	}
	if err := s.store.Append(ctx, conversationID, turns...); err != nil {
		s.logger.Warn("Failed to persist conversation turns",
			zap.String("conversation_id", conversationID),
			zap.Error(err),
		)
	}

	if pc == domain.ContextConcierge && s.leads != nil {
		full := append(append([]domain.ChatTurn{}, history...), turns...)
		go s.captureLead(conversationID, full)
	}

	return reply, nil
}

// captureLead runs detached from the request so extraction latency never
// delays the visitor's reply.
func (s *Service) captureLead(conversationID string, history []domain.ChatTurn) {
	ctx, cancel := context.WithTimeout(context.Background(), leadCaptureTimeout)
	defer cancel()

	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("Lead capture panicked",
				zap.String("conversation_id", conversationID),
				zap.Any("panic", r),
			)
		}
	}()

	s.leads.Capture(ctx, conversationID, history)
}
