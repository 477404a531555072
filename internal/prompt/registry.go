// Package prompt supplies the system prompts and extraction instructions used
// by AI gateway calls. Each prompt has a compile-time default and may be
// overridden through the settings store; caller-supplied text never replaces
// a system prompt.
package prompt

import (
	"context"
	"strings"

	"github.com/imovia/imovia-go/internal/domain"
)

// Settings keys under which admins may override each prompt.
const (
	KeyConciergePrompt      = "concierge_system_prompt"
	KeyAdminAssistantPrompt = "admin_assistant_system_prompt"
	KeyClonerInstruction    = "cloner_instruction"
	KeyLeadExtractionPrompt = "lead_extraction_prompt"
	KeyFallbackReply        = "chat_fallback_reply"
)

// Resolver is the settings lookup the registry reads through.
type Resolver interface {
	Get(ctx context.Context, key string) string
}

type Registry struct {
	resolver Resolver
}

func NewRegistry(resolver Resolver) *Registry {
	return &Registry{resolver: resolver}
}

// SystemPrompt returns the persona prompt for a chat context.
func (r *Registry) SystemPrompt(ctx context.Context, pc domain.ProviderContext) string {
	switch pc {
	case domain.ContextAdminAssistant:
		return r.lookup(ctx, KeyAdminAssistantPrompt, DefaultAdminAssistantPrompt)
	default:
		return r.lookup(ctx, KeyConciergePrompt, DefaultConciergePrompt)
	}
}

// ClonerInstruction returns the structured-generation instruction for the
// cloning pipeline.
func (r *Registry) ClonerInstruction(ctx context.Context) string {
	return r.lookup(ctx, KeyClonerInstruction, DefaultClonerInstruction)
}

// LeadExtractionPrompt returns the constrained-output extraction instruction.
func (r *Registry) LeadExtractionPrompt(ctx context.Context) string {
	return r.lookup(ctx, KeyLeadExtractionPrompt, DefaultLeadExtractionPrompt)
}

// FallbackReply is the in-character apology substituted for provider failures.
func (r *Registry) FallbackReply(ctx context.Context) string {
	return r.lookup(ctx, KeyFallbackReply, DefaultFallbackReply)
}

func (r *Registry) lookup(ctx context.Context, key, fallback string) string {
	if r.resolver != nil {
		if value := strings.TrimSpace(r.resolver.Get(ctx, key)); value != "" {
			return value
		}
	}
	return fallback
}
