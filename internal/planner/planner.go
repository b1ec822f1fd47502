// internal/planner/planner.go
package planner

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/semact-dev/semact-cli/api/schemas"
)

// defaultMaxAttempts bounds the malformed-output retry loop.
const defaultMaxAttempts = 3

// Backend is the pluggable generation capability behind the planner. It
// abstracts the concrete provider (local daemon, OpenAI-compatible
// endpoint, Gemini) away from planning logic.
type Backend interface {
	// GenerateResponse sends one structured request and returns the raw
	// text the model produced.
	GenerateResponse(ctx context.Context, req schemas.GenerationRequest) (string, error)
	// IsAvailable probes the backend with a short bounded timeout.
	IsAvailable(ctx context.Context) bool
}

// Planner turns a natural-language utterance plus an action catalog into
// one planner result, tolerating model flakiness through a bounded retry
// loop. One Planner handles one request flow at a time; callers wanting
// parallelism run independent planners.
type Planner struct {
	logger      *zap.Logger
	backend     Backend
	maxAttempts int
	temperature float32
}

// New creates a planner over the given backend. maxAttempts values below
// one fall back to the default budget.
func New(logger *zap.Logger, backend Backend, maxAttempts int) *Planner {
	if maxAttempts < 1 {
		maxAttempts = defaultMaxAttempts
	}
	return &Planner{
		logger:      logger.Named("planner"),
		backend:     backend,
		maxAttempts: maxAttempts,
		temperature: 0.2,
	}
}

// Plan resolves one utterance against the catalog.
//
// Parse and contract failures are counted against the attempt budget and
// retried with identical prompts; a transport failure from the backend
// and a definitive "no matching action" resolution both propagate
// immediately. When the budget runs out the last rejection is wrapped in
// an ExhaustedError.
func (p *Planner) Plan(ctx context.Context, utterance string, catalog *schemas.ActionCatalog) (*schemas.PlannerResult, error) {
	req := schemas.GenerationRequest{
		SystemPrompt: buildSystemPrompt(catalog),
		UserPrompt:   buildUserPrompt(utterance),
		Options: schemas.GenerationOptions{
			Temperature:     p.temperature,
			ForceJSONFormat: true,
		},
	}

	var lastErr error
	for attempt := 1; attempt <= p.maxAttempts; attempt++ {
		raw, err := p.backend.GenerateResponse(ctx, req)
		if err != nil {
			return nil, &BackendError{Err: err}
		}

		result, err := ParseResponse(raw)
		if err == nil {
			p.logger.Debug("utterance resolved",
				zap.String("kind", string(result.Kind)),
				zap.Int("attempt", attempt))
			return result, nil
		}

		var resErr *ResolutionError
		if errors.As(err, &resErr) {
			return nil, err
		}

		lastErr = err
		p.logger.Warn("planner output rejected",
			zap.Int("attempt", attempt),
			zap.Int("max_attempts", p.maxAttempts),
			zap.Error(err))
	}

	return nil, &ExhaustedError{Attempts: p.maxAttempts, LastErr: lastErr}
}
