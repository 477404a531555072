package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/imovia/imovia-go/internal/domain"
	"github.com/imovia/imovia-go/internal/prompt"
	"github.com/imovia/imovia-go/internal/util"
	apperrors "github.com/imovia/imovia-go/pkg/errors"
	"go.uber.org/zap"
)

// Raw HTML is truncated before entering a prompt to respect context-window
// and cost limits.
const (
	geminiHTMLLimit = 50000
	openaiHTMLLimit = 30000
)

// Settings is the runtime configuration lookup the gateway resolves provider,
// model and API-key choices through.
type Settings interface {
	Get(ctx context.Context, key string) string
}

// ProviderFactory builds a vendor client for a freshly resolved API key.
type ProviderFactory func(ctx context.Context, name domain.ProviderName, apiKey string, logger *zap.Logger) (Provider, error)

func defaultProviderFactory(ctx context.Context, name domain.ProviderName, apiKey string, logger *zap.Logger) (Provider, error) {
	switch name {
	case domain.ProviderOpenAI:
		return NewOpenAIClient(apiKey, "", logger)
	default:
		return NewGeminiClient(ctx, apiKey, "", logger)
	}
}

type cachedClient struct {
	apiKey string
	client Provider
}

// Gateway exposes the three provider-agnostic AI operations and dispatches
// each call to the vendor resolved for its context. A provider failure
// surfaces to the caller; there is no cross-vendor fallback.
type Gateway struct {
	settings Settings
	prompts  *prompt.Registry
	factory  ProviderFactory
	logger   *zap.Logger

	mu      sync.Mutex
	clients map[domain.ProviderName]*cachedClient
}

// GatewayOption configures a Gateway.
type GatewayOption func(*Gateway)

// WithProviderFactory replaces client construction, mainly for tests.
func WithProviderFactory(factory ProviderFactory) GatewayOption {
	return func(g *Gateway) {
		g.factory = factory
	}
}

func NewGateway(settings Settings, prompts *prompt.Registry, logger *zap.Logger, opts ...GatewayOption) *Gateway {
	g := &Gateway{
		settings: settings,
		prompts:  prompts,
		factory:  defaultProviderFactory,
		logger:   logger,
		clients:  make(map[domain.ProviderName]*cachedClient),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// ResolveProvider computes the vendor for a call context: context-specific
// override, then global default, then gemini. Deterministic for a fixed
// configuration snapshot.
func (g *Gateway) ResolveProvider(ctx context.Context, pc domain.ProviderContext) domain.ProviderName {
	value := g.settings.Get(ctx, string(pc)+"_provider")
	if value == "" {
		value = g.settings.Get(ctx, "ai_provider")
	}

	switch strings.ToLower(strings.TrimSpace(value)) {
	case "openai":
		return domain.ProviderOpenAI
	case "gemini", "":
		return domain.ProviderGemini
	default:
		g.logger.Warn("Unknown provider configured, defaulting to gemini",
			zap.String("context", string(pc)),
			zap.String("value", value),
		)
		return domain.ProviderGemini
	}
}

// GenerateStructuredPage restructures scraped HTML into the landing-page
// content schema. A JSON parse failure is a hard error for the pipeline step.
func (g *Gateway) GenerateStructuredPage(ctx context.Context, rawHTML, customInstruction string) (*domain.LandingPageContent, error) {
	name := g.ResolveProvider(ctx, domain.ContextCloner)

	client, err := g.clientFor(ctx, name)
	if err != nil {
		return nil, err
	}

	limit := geminiHTMLLimit
	if name == domain.ProviderOpenAI {
		limit = openaiHTMLLimit
	}

	var builder strings.Builder
	builder.WriteString(g.prompts.ClonerInstruction(ctx))
	if strings.TrimSpace(customInstruction) != "" {
		builder.WriteString("\n\nInstruções adicionais do solicitante:\n")
		builder.WriteString(strings.TrimSpace(customInstruction))
	}
	builder.WriteString("\n\nHTML da página original:\n")
	builder.WriteString(util.TruncateRunes(rawHTML, limit))

	raw, err := client.GenerateJSON(ctx, builder.String(), GenerateOptions{
		Model:  g.modelFor(ctx, name, domain.ContextCloner),
		Preset: PresetPage,
	})
	if err != nil {
		return nil, apperrors.NewProviderError("structured page generation failed", string(name), "generate_structured_page", err)
	}

	content, err := ParseLandingPageContent(raw)
	if err != nil {
		g.logger.Error("Provider returned unparseable page content",
			zap.String("provider", string(name)),
			zap.String("preview", util.TruncateRunes(raw, 200)),
			zap.Error(err),
		)
		return nil, apperrors.NewParseError("invalid JSON in generated page content", string(name), err)
	}

	return content, nil
}

// GenerateChatReply produces the assistant reply for a conversation in the
// given context. The system prompt comes from the registry; caller text never
// replaces it.
func (g *Gateway) GenerateChatReply(ctx context.Context, pc domain.ProviderContext, history []domain.ChatTurn, newMessage string) (string, error) {
	name := g.ResolveProvider(ctx, pc)

	client, err := g.clientFor(ctx, name)
	if err != nil {
		return "", err
	}

	reply, err := client.GenerateChat(ctx, g.prompts.SystemPrompt(ctx, pc), history, newMessage, GenerateOptions{
		Model:  g.modelFor(ctx, name, pc),
		Preset: PresetChat,
	})
	if err != nil {
		return "", apperrors.NewProviderError("chat reply generation failed", string(name), "generate_chat_reply", err)
	}

	return reply, nil
}

// ExtractFields derives a lead record from a conversation transcript.
// Extraction is best-effort: any configuration, provider or parse failure
// degrades to nil instead of propagating.
func (g *Gateway) ExtractFields(ctx context.Context, transcript string) *domain.Lead {
	name := g.ResolveProvider(ctx, domain.ContextConcierge)

	client, err := g.clientFor(ctx, name)
	if err != nil {
		g.logger.Warn("Lead extraction skipped", zap.Error(err))
		return nil
	}

	promptText := g.prompts.LeadExtractionPrompt(ctx) + "\n\nTranscrição:\n" + transcript

	raw, err := client.GenerateJSON(ctx, promptText, GenerateOptions{
		Model:  g.modelFor(ctx, name, domain.ContextConcierge),
		Preset: PresetExtraction,
	})
	if err != nil {
		g.logger.Warn("Lead extraction call failed",
			zap.String("provider", string(name)),
			zap.Error(err),
		)
		return nil
	}

	var payload struct {
		Name      *string `json:"name"`
		Phone     *string `json:"phone"`
		Email     *string `json:"email"`
		Budget    *string `json:"budget"`
		Timeframe *string `json:"timeframe"`
		Interest  *string `json:"interest"`
		Summary   *string `json:"summary"`
	}
	if err := json.Unmarshal([]byte(StripJSONFences(raw)), &payload); err != nil {
		g.logger.Warn("Lead extraction returned invalid JSON",
			zap.String("provider", string(name)),
			zap.String("preview", util.TruncateRunes(raw, 200)),
			zap.Error(err),
		)
		return nil
	}

	return &domain.Lead{
		Name:      cleanField(payload.Name),
		Phone:     cleanField(payload.Phone),
		Email:     cleanField(payload.Email),
		Budget:    cleanField(payload.Budget),
		Timeframe: cleanField(payload.Timeframe),
		Interest:  cleanField(payload.Interest),
		Summary:   cleanField(payload.Summary),
	}
}

// cleanField maps absent values to nil: models occasionally emit the literal
// string "null" or an empty string despite instructions.
func cleanField(value *string) *string {
	if value == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*value)
	if trimmed == "" || strings.EqualFold(trimmed, "null") {
		return nil
	}
	return &trimmed
}

// ParseLandingPageContent decodes provider output into the content schema.
// Missing keys default to zero values, so a model that omits optional keys
// still yields a record with every top-level section present.
func ParseLandingPageContent(raw string) (*domain.LandingPageContent, error) {
	cleaned := StripJSONFences(raw)
	if cleaned == "" {
		return nil, fmt.Errorf("empty content")
	}

	var content domain.LandingPageContent
	if err := json.Unmarshal([]byte(cleaned), &content); err != nil {
		return nil, err
	}

	return &content, nil
}

func (g *Gateway) modelFor(ctx context.Context, name domain.ProviderName, pc domain.ProviderContext) string {
	if model := g.settings.Get(ctx, fmt.Sprintf("%s_%s_model", name, pc)); model != "" {
		return model
	}
	if model := g.settings.Get(ctx, string(name)+"_model"); model != "" {
		return model
	}
	switch name {
	case domain.ProviderOpenAI:
		return DefaultOpenAIModel
	default:
		return DefaultGeminiModel
	}
}

// clientFor returns a vendor client for the currently configured API key.
// Clients are reused while the key is unchanged, so rotated credentials take
// effect on the next call without serving stale ones.
func (g *Gateway) clientFor(ctx context.Context, name domain.ProviderName) (Provider, error) {
	apiKey := g.settings.Get(ctx, string(name)+"_api_key")
	if apiKey == "" {
		integration := "Gemini"
		if name == domain.ProviderOpenAI {
			integration = "OpenAI"
		}
		return nil, apperrors.NewConfigError(
			fmt.Sprintf("%s API key not configured: set the %s_api_key setting or the %s environment variable", integration, name, strings.ToUpper(string(name))+"_API_KEY"),
			integration,
			string(name)+"_api_key",
		)
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	if cached, ok := g.clients[name]; ok && cached.apiKey == apiKey {
		return cached.client, nil
	}

	client, err := g.factory(ctx, name, apiKey, g.logger)
	if err != nil {
		return nil, apperrors.NewProviderError("failed to initialize provider client", string(name), "init", err)
	}

	g.clients[name] = &cachedClient{apiKey: apiKey, client: client}
	return client, nil
}
