// internal/browser/adapter.go
package browser

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/chromedp/chromedp"
	jsoniter "github.com/json-iterator/go"
	"go.uber.org/zap"

	"github.com/semact-dev/semact-cli/api/schemas"
	"github.com/semact-dev/semact-cli/internal/config"
	"github.com/semact-dev/semact-cli/internal/executor"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Adapter drives an annotated page through a browser session. In UI mode
// it locates elements purely by semantic annotation attributes; in direct
// mode it hands requests to the page's execution bridge instead.
type Adapter struct {
	logger  *zap.Logger
	session *Session
	mode    string
	traces  *executor.TraceWriter
}

var (
	_ executor.Driver       = (*Adapter)(nil)
	_ executor.BridgeCaller = (*Adapter)(nil)
	_ schemas.Adapter       = (*Adapter)(nil)
)

// NewAdapter wires a browser session into the execution pipeline. mode is
// the configured runtime mode (auto, ui or direct); traces may be nil.
func NewAdapter(session *Session, cfg config.RuntimeConfig, logger *zap.Logger, traces *executor.TraceWriter) *Adapter {
	mode := cfg.Mode
	if mode == "" {
		mode = "auto"
	}
	return &Adapter{
		logger:  logger.Named("adapter"),
		session: session,
		mode:    mode,
		traces:  traces,
	}
}

func fieldSelector(field string) string   { return fmt.Sprintf(`[data-agent-field=%q]`, field) }
func submitSelector(action string) string { return fmt.Sprintf(`[data-agent-submit=%q]`, action) }

const statusSelector = `[data-agent-status]`

// Navigate loads url and waits for the document body to be ready.
func (a *Adapter) Navigate(ctx context.Context, url string) error {
	opCtx, cancel := a.session.opContext(ctx, a.session.navTimeout)
	defer cancel()

	a.logger.Debug("navigating", zap.String("url", url))
	return chromedp.Run(opCtx,
		chromedp.Navigate(url),
		chromedp.WaitReady("body", chromedp.ByQuery),
	)
}

// Fill writes a value into the input annotated for field. Non-string
// values are rendered the way they would appear typed by hand.
func (a *Adapter) Fill(ctx context.Context, field string, value any) error {
	opCtx, cancel := a.session.opContext(ctx, a.session.navTimeout)
	defer cancel()

	sel := fieldSelector(field)
	return chromedp.Run(opCtx,
		chromedp.WaitVisible(sel, chromedp.ByQuery),
		chromedp.Clear(sel, chromedp.ByQuery),
		chromedp.SendKeys(sel, renderValue(value), chromedp.ByQuery),
	)
}

// Click presses the submit element annotated for action.
func (a *Adapter) Click(ctx context.Context, action string) error {
	opCtx, cancel := a.session.opContext(ctx, a.session.navTimeout)
	defer cancel()

	sel := submitSelector(action)
	return chromedp.Run(opCtx,
		chromedp.WaitVisible(sel, chromedp.ByQuery),
		chromedp.Click(sel, chromedp.ByQuery),
	)
}

// ReadStatus waits for the page's status region and decodes it. A region
// holding JSON is returned as-is; plain text becomes a message object.
func (a *Adapter) ReadStatus(ctx context.Context) (map[string]any, error) {
	opCtx, cancel := a.session.opContext(ctx, a.session.navTimeout)
	defer cancel()

	var text string
	err := chromedp.Run(opCtx,
		chromedp.WaitVisible(statusSelector, chromedp.ByQuery),
		chromedp.Text(statusSelector, &text, chromedp.ByQuery),
	)
	if err != nil {
		return nil, fmt.Errorf("status region: %w", err)
	}

	text = strings.TrimSpace(text)
	var status map[string]any
	if strings.HasPrefix(text, "{") {
		if jsonErr := json.Unmarshal([]byte(text), &status); jsonErr == nil {
			return status, nil
		}
	}
	return map[string]any{"message": text}, nil
}

// Validate checks an action's arguments against the manifest without
// touching the page.
func (a *Adapter) Validate(ctx context.Context, action string, args map[string]any, m *schemas.Manifest) (*schemas.ValidationResult, error) {
	if m == nil {
		return nil, fmt.Errorf("validate %q: no manifest", action)
	}
	exec := executor.New(a.logger, m, a, schemas.ModeUI, nil)
	return exec.ValidateOnly(action, args), nil
}

// Execute runs one request through the pipeline, resolving the effective
// execution mode first. Configured auto mode probes the page for a bridge
// and falls back to UI interaction when none is exposed.
func (a *Adapter) Execute(ctx context.Context, params schemas.ExecuteParams) (*schemas.RuntimeResponse, error) {
	if params.Manifest == nil {
		return nil, fmt.Errorf("execute %q: no manifest", params.ActionName)
	}

	mode := schemas.ModeUI
	switch a.mode {
	case "direct":
		mode = schemas.ModeDirect
	case "ui":
		mode = schemas.ModeUI
	default:
		if a.Detect(ctx) {
			mode = schemas.ModeDirect
		}
	}
	a.logger.Debug("resolved execution mode",
		zap.String("action", params.ActionName), zap.String("mode", string(mode)))

	exec := executor.New(a.logger, params.Manifest, a, mode, a.traces)
	resp := exec.Execute(ctx, &schemas.PlannerRequest{
		Action:    params.ActionName,
		Args:      params.Args,
		Confirmed: params.Confirmed,
	})
	return resp, nil
}

// renderValue formats an argument for keyboard entry. JSON numbers that
// carry no fraction render without one.
func renderValue(value any) string {
	switch v := value.(type) {
	case string:
		return v
	case float64:
		if v == float64(int64(v)) {
			return strconv.FormatInt(int64(v), 10)
		}
		return strconv.FormatFloat(v, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(v)
	case nil:
		return ""
	default:
		return fmt.Sprint(v)
	}
}
