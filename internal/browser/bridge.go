// internal/browser/bridge.go
package browser

import (
	"context"
	"fmt"
	"time"

	cdpruntime "github.com/chromedp/cdproto/runtime"
	"github.com/chromedp/chromedp"
	"go.uber.org/zap"

	"github.com/semact-dev/semact-cli/api/schemas"
)

const detectBridgeJS = `(() => {
	const b = window.__agentActions;
	return !!(b && typeof b.execute === 'function');
})()`

// discoverJS walks every annotated action element on the page and
// collects its declared metadata together with the fields nested inside
// it. Unannotated attributes come back as empty strings.
const discoverJS = `(() => {
	const nodes = Array.from(document.querySelectorAll('[data-agent-action]'));
	return nodes.map(el => ({
		name: el.getAttribute('data-agent-action') || '',
		title: el.getAttribute('data-agent-title') || el.getAttribute('aria-label') || '',
		scope: el.getAttribute('data-agent-scope') || '',
		risk: el.getAttribute('data-agent-risk') || '',
		confirmation: el.getAttribute('data-agent-confirmation') || '',
		fields: Array.from(el.querySelectorAll('[data-agent-field]'))
			.map(f => f.getAttribute('data-agent-field'))
			.filter(Boolean),
	}));
})()`

// Detect probes the current page for a direct execution bridge.
func (a *Adapter) Detect(ctx context.Context) bool {
	opCtx, cancel := a.session.opContext(ctx, 5*time.Second)
	defer cancel()

	var present bool
	if err := chromedp.Run(opCtx, chromedp.Evaluate(detectBridgeJS, &present)); err != nil {
		a.logger.Debug("bridge probe failed", zap.Error(err))
		return false
	}
	return present
}

// Discover snapshots the actions annotated on the current page.
func (a *Adapter) Discover(ctx context.Context) (*schemas.ActionCatalog, error) {
	opCtx, cancel := a.session.opContext(ctx, a.session.navTimeout)
	defer cancel()

	var (
		actions []schemas.DiscoveredAction
		pageURL string
	)
	err := chromedp.Run(opCtx,
		chromedp.Location(&pageURL),
		chromedp.Evaluate(discoverJS, &actions),
	)
	if err != nil {
		return nil, fmt.Errorf("discover annotated actions: %w", err)
	}

	a.logger.Debug("discovered actions",
		zap.Int("count", len(actions)), zap.String("url", pageURL))
	return &schemas.ActionCatalog{
		Actions:    actions,
		SourceURL:  pageURL,
		CapturedAt: time.Now().UTC(),
	}, nil
}

// CallAction hands one request to the page's bridge and awaits its
// promised status object. The request is embedded as a JSON literal so
// the page sees exactly the wire shape the planner produced.
func (a *Adapter) CallAction(ctx context.Context, req *schemas.PlannerRequest) (map[string]any, error) {
	payload, err := json.Marshal(map[string]any{
		"action":    req.Action,
		"args":      req.Args,
		"confirmed": req.Confirmed,
	})
	if err != nil {
		return nil, fmt.Errorf("encode bridge request: %w", err)
	}

	opCtx, cancel := a.session.opContext(ctx, a.session.navTimeout)
	defer cancel()

	expr := fmt.Sprintf(`window.__agentActions.execute(%s)`, payload)
	var status map[string]any
	err = chromedp.Run(opCtx, chromedp.Evaluate(expr, &status,
		func(p *cdpruntime.EvaluateParams) *cdpruntime.EvaluateParams {
			return p.WithAwaitPromise(true).WithReturnByValue(true)
		}))
	if err != nil {
		return nil, fmt.Errorf("bridge execute %q: %w", req.Action, err)
	}
	return status, nil
}
