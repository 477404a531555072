package prompt

import (
	"context"
	"testing"

	"github.com/imovia/imovia-go/internal/domain"
)

type fakeResolver struct {
	values map[string]string
}

func (f *fakeResolver) Get(_ context.Context, key string) string {
	return f.values[key]
}

func TestSystemPromptDefaults(t *testing.T) {
	r := NewRegistry(&fakeResolver{values: map[string]string{}})

	if got := r.SystemPrompt(context.Background(), domain.ContextConcierge); got != DefaultConciergePrompt {
		t.Fatalf("expected default concierge prompt, got %q", got)
	}
	if got := r.SystemPrompt(context.Background(), domain.ContextAdminAssistant); got != DefaultAdminAssistantPrompt {
		t.Fatalf("expected default admin prompt, got %q", got)
	}
}

func TestSystemPromptOverride(t *testing.T) {
	r := NewRegistry(&fakeResolver{values: map[string]string{
		KeyConciergePrompt: "Você é a Helena.",
	}})

	if got := r.SystemPrompt(context.Background(), domain.ContextConcierge); got != "Você é a Helena." {
		t.Fatalf("expected override, got %q", got)
	}
}

func TestBlankOverrideFallsBackToDefault(t *testing.T) {
	r := NewRegistry(&fakeResolver{values: map[string]string{
		KeyClonerInstruction: "   ",
	}})

	if got := r.ClonerInstruction(context.Background()); got != DefaultClonerInstruction {
		t.Fatalf("expected default on blank override, got %q", got)
	}
}

func TestNilResolverUsesDefaults(t *testing.T) {
	r := NewRegistry(nil)

	if got := r.LeadExtractionPrompt(context.Background()); got != DefaultLeadExtractionPrompt {
		t.Fatal("expected default extraction prompt with nil resolver")
	}
	if got := r.FallbackReply(context.Background()); got != DefaultFallbackReply {
		t.Fatal("expected default fallback reply with nil resolver")
	}
}
