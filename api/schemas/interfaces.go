package schemas

import "context"

// ExecuteParams carries one validated execution request into an adapter.
type ExecuteParams struct {
	ActionName string
	Args       map[string]any
	Confirmed  bool
	Manifest   *Manifest
}

// Adapter is the runtime capability the orchestrator drives a target
// application through. Concrete implementations include the chromedp
// browser adapter and headless test doubles; the pipeline itself stays
// agnostic of how the four operations are realized.
type Adapter interface {
	// Detect reports whether the current page exposes a direct execution
	// bridge (as opposed to plain UI annotations).
	Detect(ctx context.Context) bool
	// Discover snapshots the actions annotated on the current page.
	Discover(ctx context.Context) (*ActionCatalog, error)
	// Validate checks an action's arguments against the manifest without
	// performing side effects.
	Validate(ctx context.Context, action string, args map[string]any, m *Manifest) (*ValidationResult, error)
	// Execute runs the full validate/policy/interact pipeline for one
	// request and returns the terminal response with its execution log.
	Execute(ctx context.Context, params ExecuteParams) (*RuntimeResponse, error)
}
