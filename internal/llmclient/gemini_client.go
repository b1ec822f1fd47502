// internal/llmclient/gemini_client.go
package llmclient

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"google.golang.org/genai"

	"github.com/semact-dev/semact-cli/api/schemas"
	"github.com/semact-dev/semact-cli/internal/config"
)

// GeminiClient talks to the Gemini API through the official SDK.
type GeminiClient struct {
	client *genai.Client
	model  string
	logger *zap.Logger
}

// NewGeminiClient builds a client for the configured model.
func NewGeminiClient(cfg config.AgentConfig, logger *zap.Logger) (*GeminiClient, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("gemini provider requires an API key")
	}

	client, err := genai.NewClient(context.Background(), &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}

	logger.Info("Gemini client initialized", zap.String("model", cfg.Model))
	return &GeminiClient{
		client: client,
		model:  cfg.Model,
		logger: logger.Named("llmclient.gemini"),
	}, nil
}

// GenerateResponse performs one generateContent call.
func (c *GeminiClient) GenerateResponse(ctx context.Context, req schemas.GenerationRequest) (string, error) {
	genCfg := &genai.GenerateContentConfig{
		SystemInstruction: &genai.Content{
			Parts: []*genai.Part{{Text: req.SystemPrompt}},
		},
	}
	if req.Options.Temperature > 0 {
		genCfg.Temperature = genai.Ptr(req.Options.Temperature)
	}
	if req.Options.MaxTokens > 0 {
		genCfg.MaxOutputTokens = int32(req.Options.MaxTokens)
	}
	if req.Options.ForceJSONFormat {
		genCfg.ResponseMIMEType = "application/json"
	}

	start := time.Now()
	resp, err := c.client.Models.GenerateContent(ctx, c.model, genai.Text(req.UserPrompt), genCfg)
	if err != nil {
		return "", fmt.Errorf("gemini generate: %w", err)
	}
	text := resp.Text()
	if text == "" {
		return "", errors.New("gemini returned no text content")
	}

	c.logger.Debug("generation complete", zap.Duration("duration", time.Since(start)))
	return text, nil
}

// IsAvailable reports whether the client was constructed with
// credentials. The hosted API has no cheap liveness probe; failures
// surface on the generation call itself.
func (c *GeminiClient) IsAvailable(ctx context.Context) bool {
	return c.client != nil
}
