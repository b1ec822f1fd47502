// internal/llmclient/ollama_client.go
package llmclient

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/ollama/ollama/api"
	"go.uber.org/zap"

	"github.com/semact-dev/semact-cli/api/schemas"
	"github.com/semact-dev/semact-cli/internal/config"
)

const defaultOllamaEndpoint = "http://127.0.0.1:11434"

// OllamaClient talks to a local Ollama daemon through its generate API.
type OllamaClient struct {
	client *api.Client
	model  string
	logger *zap.Logger
}

// NewOllamaClient builds a client for the configured daemon endpoint.
func NewOllamaClient(cfg config.AgentConfig, logger *zap.Logger) (*OllamaClient, error) {
	endpoint := cfg.Endpoint
	if endpoint == "" {
		endpoint = defaultOllamaEndpoint
	}
	u, err := url.Parse(endpoint)
	if err != nil {
		return nil, fmt.Errorf("invalid ollama endpoint %q: %w", endpoint, err)
	}

	// Generation has no built-in deadline; only the dial is bounded.
	httpClient := &http.Client{
		Transport: &http.Transport{
			Proxy:                 http.ProxyFromEnvironment,
			ResponseHeaderTimeout: 0,
			TLSHandshakeTimeout:   10 * time.Second,
		},
	}

	logger.Info("Ollama client initialized",
		zap.String("model", cfg.Model), zap.String("endpoint", endpoint))
	return &OllamaClient{
		client: api.NewClient(u, httpClient),
		model:  cfg.Model,
		logger: logger.Named("llmclient.ollama"),
	}, nil
}

// GenerateResponse performs one non-streaming generate call.
func (c *OllamaClient) GenerateResponse(ctx context.Context, req schemas.GenerationRequest) (string, error) {
	stream := false
	greq := &api.GenerateRequest{
		Model:  c.model,
		Prompt: req.UserPrompt,
		System: req.SystemPrompt,
		Stream: &stream,
	}
	if req.Options.ForceJSONFormat {
		greq.Format = json.RawMessage(`"json"`)
	}
	options := map[string]any{}
	if req.Options.Temperature > 0 {
		options["temperature"] = req.Options.Temperature
	}
	if req.Options.MaxTokens > 0 {
		options["num_predict"] = req.Options.MaxTokens
	}
	if len(options) > 0 {
		greq.Options = options
	}

	start := time.Now()
	var sb strings.Builder
	err := c.client.Generate(ctx, greq, func(resp api.GenerateResponse) error {
		sb.WriteString(resp.Response)
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("ollama generate: %w", err)
	}

	c.logger.Debug("generation complete",
		zap.Duration("duration", time.Since(start)),
		zap.Int("response_len", sb.Len()))
	return sb.String(), nil
}

// IsAvailable probes the daemon's version endpoint.
func (c *OllamaClient) IsAvailable(ctx context.Context) bool {
	probeCtx, cancel := context.WithTimeout(ctx, availabilityTimeout)
	defer cancel()
	_, err := c.client.Version(probeCtx)
	return err == nil
}
