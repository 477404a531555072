package ai

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/imovia/imovia-go/internal/domain"
	"go.uber.org/zap"
	"google.golang.org/genai"
)

const geminiRequestTimeout = 120 * time.Second

// DefaultGeminiModel is the ultimate fallback when no model is configured.
const DefaultGeminiModel = "gemini-2.5-flash"

// GeminiClient wraps the Gemini API. Conversations are turn-based: the vendor
// models history as ordered user/model turns and rejects invalid orderings,
// so history is sanitized before every call.
type GeminiClient struct {
	client       *genai.Client
	defaultModel string
	logger       *zap.Logger
}

func NewGeminiClient(ctx context.Context, apiKey, defaultModel string, logger *zap.Logger) (*GeminiClient, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
		HTTPClient: &http.Client{
			Timeout: geminiRequestTimeout,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	if defaultModel == "" {
		defaultModel = DefaultGeminiModel
	}

	return &GeminiClient{
		client:       client,
		defaultModel: defaultModel,
		logger:       logger,
	}, nil
}

func (g *GeminiClient) Name() domain.ProviderName {
	return domain.ProviderGemini
}

func (g *GeminiClient) GenerateJSON(ctx context.Context, prompt string, opts GenerateOptions) (string, error) {
	modelName := g.getModel(opts)
	config := GetPresetConfig(opts.Preset)

	g.logger.Debug("Generating with Gemini",
		zap.String("model", modelName),
		zap.String("preset", string(opts.Preset)),
		zap.Bool("json_mode", true),
	)

	topK := float32(config.TopK)
	maxTokens := int32(config.MaxOutputTokens)

	genConfig := &genai.GenerateContentConfig{
		Temperature:      &config.Temperature,
		TopP:             &config.TopP,
		TopK:             &topK,
		MaxOutputTokens:  maxTokens,
		ResponseMIMEType: "application/json",
	}

	resp, err := g.client.Models.GenerateContent(ctx, modelName, []*genai.Content{
		{
			Role: "user",
			Parts: []*genai.Part{
				{Text: prompt},
			},
		},
	}, genConfig)

	if err != nil {
		g.logger.Error("Gemini generation failed", zap.Error(err))
		return "", err
	}

	text := extractTextFromGeminiResponse(resp)
	if text == "" {
		return "", fmt.Errorf("empty response from Gemini")
	}

	g.logger.Debug("Gemini response received", zap.Int("length", len(text)))
	return text, nil
}

func (g *GeminiClient) GenerateChat(ctx context.Context, systemPrompt string, history []domain.ChatTurn, message string, opts GenerateOptions) (string, error) {
	modelName := g.getModel(opts)
	config := GetPresetConfig(opts.Preset)

	contents := buildGeminiContents(history, message)

	topK := float32(config.TopK)
	maxTokens := int32(config.MaxOutputTokens)

	genConfig := &genai.GenerateContentConfig{
		Temperature:     &config.Temperature,
		TopP:            &config.TopP,
		TopK:            &topK,
		MaxOutputTokens: maxTokens,
	}

	if systemPrompt != "" {
		genConfig.SystemInstruction = &genai.Content{
			Parts: []*genai.Part{
				{Text: systemPrompt},
			},
		}
	}

	g.logger.Debug("Chat generation with Gemini",
		zap.String("model", modelName),
		zap.Int("turns", len(contents)),
	)

	resp, err := g.client.Models.GenerateContent(ctx, modelName, contents, genConfig)
	if err != nil {
		g.logger.Error("Gemini chat generation failed", zap.Error(err))
		return "", err
	}

	text := extractTextFromGeminiResponse(resp)
	if text == "" {
		return "", fmt.Errorf("empty response from Gemini")
	}

	return strings.TrimSpace(text), nil
}

// buildGeminiContents maps sanitized history plus the new user message to the
// vendor's turn format. The assistant role becomes the vendor's "model" role.
func buildGeminiContents(history []domain.ChatTurn, message string) []*genai.Content {
	sanitized := SanitizeTurns(history)

	contents := make([]*genai.Content, 0, len(sanitized)+1)
	for _, turn := range sanitized {
		role := "user"
		if turn.Role == domain.RoleAssistant {
			role = "model"
		}
		contents = append(contents, &genai.Content{
			Role: role,
			Parts: []*genai.Part{
				{Text: turn.Content},
			},
		})
	}

	// History ends on an assistant turn or is empty; the new message keeps the
	// sequence alternating.
	if len(contents) > 0 && contents[len(contents)-1].Role == "user" {
		contents = contents[:len(contents)-1]
	}

	contents = append(contents, &genai.Content{
		Role: "user",
		Parts: []*genai.Part{
			{Text: message},
		},
	})

	return contents
}

func (g *GeminiClient) getModel(opts GenerateOptions) string {
	if opts.Model != "" {
		return opts.Model
	}
	return g.defaultModel
}

func extractTextFromGeminiResponse(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 {
		return ""
	}

	candidate := resp.Candidates[0]
	if candidate.Content == nil || len(candidate.Content.Parts) == 0 {
		return ""
	}

	var texts []string
	for _, part := range candidate.Content.Parts {
		if part.Text != "" {
			texts = append(texts, part.Text)
		}
	}

	return strings.Join(texts, "")
}
