// Package lead turns chat conversations into stored lead records.
package lead

import (
	"context"
	"fmt"

	"github.com/imovia/imovia-go/internal/domain"
	"github.com/imovia/imovia-go/internal/service/chat"
	"github.com/imovia/imovia-go/internal/util"
	"go.uber.org/zap"
)

// DefaultSummary fills the summary when extraction found no contact data;
// the stored record always carries a human-readable summary.
const DefaultSummary = "Conversa sem dados de contato identificados."

// minPhoneDigits is the shortest digit run accepted as a normalized phone.
// Shorter matches keep the model's original text.
const minPhoneDigits = 8

// FieldExtractor is the AI operation that mines a transcript for lead fields.
type FieldExtractor interface {
	ExtractFields(ctx context.Context, transcript string) *domain.Lead
}

// Store persists the extracted lead for a conversation.
type Store interface {
	Upsert(ctx context.Context, conversationID string, lead *domain.Lead) error
}

// Capturer extracts lead fields from a conversation and records them. It is
// fire-and-forget: every failure is logged and swallowed.
type Capturer struct {
	extractor FieldExtractor
	store     Store
	messenger domain.Messenger
	notifyTo  string
	logger    *zap.Logger
}

// NewCapturer builds a Capturer. messenger may be nil; notifications are then
// skipped.
func NewCapturer(extractor FieldExtractor, store Store, messenger domain.Messenger, notifyTo string, logger *zap.Logger) *Capturer {
	return &Capturer{
		extractor: extractor,
		store:     store,
		messenger: messenger,
		notifyTo:  notifyTo,
		logger:    logger,
	}
}

// Capture runs extraction over the conversation and upserts the result.
func (c *Capturer) Capture(ctx context.Context, conversationID string, history []domain.ChatTurn) {
	if len(history) == 0 {
		return
	}

	lead := c.extractor.ExtractFields(ctx, chat.Transcript(history))
	if lead == nil {
		c.logger.Debug("Lead extraction yielded nothing",
			zap.String("conversation_id", conversationID),
		)
		return
	}

	NormalizeLead(lead)

	if err := c.store.Upsert(ctx, conversationID, lead); err != nil {
		c.logger.Warn("Failed to store extracted lead",
			zap.String("conversation_id", conversationID),
			zap.Error(err),
		)
		return
	}

	c.notify(ctx, conversationID, lead)
}

// notify pings the configured agent when a lead first yields a phone number.
func (c *Capturer) notify(ctx context.Context, conversationID string, lead *domain.Lead) {
	if c.messenger == nil || c.notifyTo == "" || lead.Phone == nil {
		return
	}

	name := "visitante"
	if lead.Name != nil {
		name = *lead.Name
	}
	message := fmt.Sprintf("Novo lead capturado: %s, telefone %s (conversa %s)", name, *lead.Phone, conversationID)

	if err := c.messenger.SendText(ctx, c.notifyTo, message); err != nil {
		c.logger.Warn("Failed to notify agent about new lead",
			zap.String("conversation_id", conversationID),
			zap.Error(err),
		)
	}
}

// NormalizeLead applies post-extraction cleanup: phone numbers collapse to
// digits when long enough, and an absent summary gets the default text.
func NormalizeLead(lead *domain.Lead) {
	if lead.Phone != nil {
		digits := util.DigitsOnly(*lead.Phone)
		if len(digits) >= minPhoneDigits {
			lead.Phone = &digits
		}
	}

	if lead.Summary == nil {
		summary := DefaultSummary
		lead.Summary = &summary
	}
}
