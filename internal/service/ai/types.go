package ai

import (
	"context"

	"github.com/imovia/imovia-go/internal/domain"
)

// Provider is one generative-AI vendor behind a common surface. Two closed
// implementations exist (Gemini, OpenAI); the gateway selects one per call
// context and never falls back to the other vendor on failure.
type Provider interface {
	Name() domain.ProviderName
	// GenerateJSON runs a single-prompt completion in the vendor's JSON-output
	// mode and returns the raw response text (possibly fence-wrapped).
	GenerateJSON(ctx context.Context, prompt string, opts GenerateOptions) (string, error)
	// GenerateChat produces the assistant reply for a conversation. History is
	// shaped per vendor; systemPrompt is never caller-supplied text.
	GenerateChat(ctx context.Context, systemPrompt string, history []domain.ChatTurn, message string, opts GenerateOptions) (string, error)
}

// ModelPreset selects tuning for a class of call.
type ModelPreset string

const (
	PresetChat       ModelPreset = "chat"       // conversational replies
	PresetExtraction ModelPreset = "extraction" // constrained field extraction
	PresetPage       ModelPreset = "page"       // long-form structured page output
)

// ModelConfig holds generation tuning.
type ModelConfig struct {
	Temperature     float32
	TopP            float32
	TopK            int
	MaxOutputTokens int
}

// GenerateOptions holds per-call options resolved by the gateway.
type GenerateOptions struct {
	Model  string
	Preset ModelPreset
}

// GetPresetConfig returns the tuning for a preset.
func GetPresetConfig(preset ModelPreset) ModelConfig {
	switch preset {
	case PresetChat:
		return ModelConfig{
			Temperature:     0.7,
			TopP:            0.95,
			TopK:            40,
			MaxOutputTokens: 1024,
		}
	case PresetExtraction:
		return ModelConfig{
			Temperature:     0.1,
			TopP:            0.9,
			TopK:            20,
			MaxOutputTokens: 1024,
		}
	case PresetPage:
		return ModelConfig{
			Temperature:     0.3,
			TopP:            0.95,
			TopK:            40,
			MaxOutputTokens: 8192,
		}
	default:
		return GetPresetConfig(PresetChat)
	}
}
