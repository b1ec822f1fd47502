// internal/llmclient/interfaces.go
package llmclient

import (
	"context"
	"time"

	"github.com/semact-dev/semact-cli/api/schemas"
)

// availabilityTimeout bounds the backend liveness probe. A probe that
// does not answer in time counts as unavailable.
const availabilityTimeout = 3 * time.Second

// Client is the generation capability handed to the planner. It
// abstracts the concrete provider (local daemon, OpenAI-compatible
// endpoint, Gemini) behind a single call.
type Client interface {
	// GenerateResponse sends one structured request and returns the raw
	// generated text. The call carries no built-in deadline; callers
	// needing one wrap the context.
	GenerateResponse(ctx context.Context, req schemas.GenerationRequest) (string, error)
	// IsAvailable probes the provider within availabilityTimeout.
	IsAvailable(ctx context.Context) bool
}
