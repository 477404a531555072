package ai

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/imovia/imovia-go/internal/domain"
	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"go.uber.org/zap"
)

const openaiRequestTimeout = 120 * time.Second

// DefaultOpenAIModel is the ultimate fallback when no model is configured.
const DefaultOpenAIModel = "gpt-4.1-mini"

// OpenAIClient wraps the OpenAI chat completion API. Conversations are a flat
// message list with one leading system message; no turn-order restriction.
type OpenAIClient struct {
	client       *openai.Client
	defaultModel string
	logger       *zap.Logger
}

func NewOpenAIClient(apiKey, defaultModel string, logger *zap.Logger) (*OpenAIClient, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("OpenAI API key is empty")
	}

	client := openai.NewClient(
		option.WithAPIKey(apiKey),
		option.WithHTTPClient(&http.Client{Timeout: openaiRequestTimeout}),
	)

	if defaultModel == "" {
		defaultModel = DefaultOpenAIModel
	}

	return &OpenAIClient{
		client:       &client,
		defaultModel: defaultModel,
		logger:       logger,
	}, nil
}

func (o *OpenAIClient) Name() domain.ProviderName {
	return domain.ProviderOpenAI
}

func (o *OpenAIClient) GenerateJSON(ctx context.Context, prompt string, opts GenerateOptions) (string, error) {
	modelName := o.getModel(opts)
	config := GetPresetConfig(opts.Preset)

	o.logger.Debug("Generating with OpenAI",
		zap.String("model", modelName),
		zap.String("preset", string(opts.Preset)),
		zap.Bool("json_mode", true),
	)

	messages := []openai.ChatCompletionMessageParamUnion{
		openai.SystemMessage("You must respond with valid JSON only. Do not include any text outside the JSON object."),
		openai.UserMessage(prompt),
	}

	return o.complete(ctx, modelName, messages, config)
}

func (o *OpenAIClient) GenerateChat(ctx context.Context, systemPrompt string, history []domain.ChatTurn, message string, opts GenerateOptions) (string, error) {
	modelName := o.getModel(opts)
	config := GetPresetConfig(opts.Preset)

	messages := make([]openai.ChatCompletionMessageParamUnion, 0, len(history)+2)
	if systemPrompt != "" {
		messages = append(messages, openai.SystemMessage(systemPrompt))
	}
	for _, turn := range history {
		if strings.TrimSpace(turn.Content) == "" {
			continue
		}
		if turn.Role == domain.RoleAssistant {
			messages = append(messages, openai.AssistantMessage(turn.Content))
		} else {
			messages = append(messages, openai.UserMessage(turn.Content))
		}
	}
	messages = append(messages, openai.UserMessage(message))

	o.logger.Debug("Chat generation with OpenAI",
		zap.String("model", modelName),
		zap.Int("messages", len(messages)),
	)

	reply, err := o.complete(ctx, modelName, messages, config)
	if err != nil {
		return "", err
	}

	return strings.TrimSpace(reply), nil
}

func (o *OpenAIClient) complete(ctx context.Context, modelName string, messages []openai.ChatCompletionMessageParamUnion, config ModelConfig) (string, error) {
	params := openai.ChatCompletionNewParams{
		Model:               resolveOpenAIModel(modelName),
		Messages:            messages,
		MaxCompletionTokens: openai.Int(int64(config.MaxOutputTokens)),
	}

	// GPT-5 family rejects sampling overrides.
	if !strings.HasPrefix(modelName, "gpt-5") {
		params.Temperature = openai.Float(float64(config.Temperature))
		params.TopP = openai.Float(float64(config.TopP))
	}

	resp, err := o.client.Chat.Completions.New(ctx, params)
	if err != nil {
		o.logger.Error("OpenAI generation failed", zap.Error(err))
		return "", err
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no choices in OpenAI response")
	}

	text := resp.Choices[0].Message.Content
	if text == "" {
		return "", fmt.Errorf("empty response from OpenAI")
	}

	o.logger.Debug("OpenAI response received",
		zap.Int("length", len(text)),
		zap.Int64("prompt_tokens", resp.Usage.PromptTokens),
		zap.Int64("completion_tokens", resp.Usage.CompletionTokens),
	)

	return text, nil
}

func resolveOpenAIModel(modelName string) openai.ChatModel {
	switch modelName {
	case "gpt-5":
		return openai.ChatModelGPT5
	case "gpt-5-mini":
		return openai.ChatModelGPT5Mini
	case "gpt-5-nano":
		return openai.ChatModelGPT5Nano
	case "gpt-4.1":
		return openai.ChatModelGPT4_1
	case "gpt-4.1-mini":
		return openai.ChatModelGPT4_1Mini
	case "gpt-4.1-nano":
		return openai.ChatModelGPT4_1Nano
	case "gpt-4o":
		return openai.ChatModelGPT4o
	case "gpt-4o-mini":
		return openai.ChatModelGPT4oMini
	default:
		return openai.ChatModel(modelName)
	}
}

func (o *OpenAIClient) getModel(opts GenerateOptions) string {
	if opts.Model != "" {
		return opts.Model
	}
	return o.defaultModel
}
