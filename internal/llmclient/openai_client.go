// internal/llmclient/openai_client.go
package llmclient

import (
	"context"
	"errors"
	"fmt"
	"time"

	openai "github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"github.com/openai/openai-go/v3/shared"
	"go.uber.org/zap"

	"github.com/semact-dev/semact-cli/api/schemas"
	"github.com/semact-dev/semact-cli/internal/config"
)

// OpenAIClient talks to the OpenAI API or any endpoint speaking the same
// chat-completions contract.
type OpenAIClient struct {
	client openai.Client
	model  string
	logger *zap.Logger
}

// NewOpenAIClient builds a client, pointing it at a compatible endpoint
// when one is configured.
func NewOpenAIClient(cfg config.AgentConfig, logger *zap.Logger) (*OpenAIClient, error) {
	if cfg.APIKey == "" && cfg.Endpoint == "" {
		return nil, errors.New("openai provider requires an API key or a compatible endpoint")
	}

	opts := []option.RequestOption{option.WithAPIKey(cfg.APIKey)}
	if cfg.Endpoint != "" {
		opts = append(opts, option.WithBaseURL(cfg.Endpoint))
	}

	logger.Info("OpenAI-compatible client initialized",
		zap.String("model", cfg.Model), zap.String("endpoint", cfg.Endpoint))
	return &OpenAIClient{
		client: openai.NewClient(opts...),
		model:  cfg.Model,
		logger: logger.Named("llmclient.openai"),
	}, nil
}

// GenerateResponse performs one chat-completions call.
func (c *OpenAIClient) GenerateResponse(ctx context.Context, req schemas.GenerationRequest) (string, error) {
	params := openai.ChatCompletionNewParams{
		Model: openai.ChatModel(c.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(req.SystemPrompt),
			openai.UserMessage(req.UserPrompt),
		},
	}
	if req.Options.Temperature > 0 {
		params.Temperature = openai.Float(float64(req.Options.Temperature))
	}
	if req.Options.MaxTokens > 0 {
		params.MaxCompletionTokens = openai.Int(int64(req.Options.MaxTokens))
	}
	if req.Options.ForceJSONFormat {
		params.ResponseFormat = openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONObject: &shared.ResponseFormatJSONObjectParam{},
		}
	}

	start := time.Now()
	resp, err := c.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("chat completion returned no choices")
	}

	c.logger.Debug("generation complete",
		zap.Duration("duration", time.Since(start)),
		zap.Int64("total_tokens", resp.Usage.TotalTokens))
	return resp.Choices[0].Message.Content, nil
}

// IsAvailable lists models as a liveness probe.
func (c *OpenAIClient) IsAvailable(ctx context.Context) bool {
	probeCtx, cancel := context.WithTimeout(ctx, availabilityTimeout)
	defer cancel()
	_, err := c.client.Models.List(probeCtx)
	return err == nil
}
