// internal/orchestrator/orchestrator.go

// Package orchestrator ties the planner, the manifest and the adapter
// into one utterance-to-response flow. It owns no page or model state of
// its own; everything it needs arrives through its collaborators.
package orchestrator

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/semact-dev/semact-cli/api/schemas"
	"github.com/semact-dev/semact-cli/internal/manifest"
	"github.com/semact-dev/semact-cli/internal/planner"
)

// Navigator is the optional page-navigation capability of an adapter.
// Adapters without one (headless test doubles) still handle action and
// answer results; only navigation directives need it.
type Navigator interface {
	Navigate(ctx context.Context, url string) error
}

// Options tune one utterance resolution.
type Options struct {
	// Confirm pre-confirms the planned request, as when the caller has
	// already consented to a previously returned confirmation prompt.
	Confirm bool
	// LiveDiscovery prefers a catalog scraped from the live page over the
	// one derived from the manifest.
	LiveDiscovery bool
}

// Orchestrator resolves utterances end to end: catalog, plan, dispatch.
type Orchestrator struct {
	logger   *zap.Logger
	planner  *planner.Planner
	adapter  schemas.Adapter
	manifest *schemas.Manifest
}

// New wires an orchestrator. The manifest must already be validated.
func New(logger *zap.Logger, p *planner.Planner, adapter schemas.Adapter, m *schemas.Manifest) *Orchestrator {
	return &Orchestrator{
		logger:   logger.Named("orchestrator"),
		planner:  p,
		adapter:  adapter,
		manifest: m,
	}
}

// HandleUtterance resolves one natural-language utterance to a terminal
// response. Planner failures surface as errors; everything the pipeline
// itself decides (confirmation prompts, validation failures, execution
// outcomes) is expressed as a response status instead.
func (o *Orchestrator) HandleUtterance(ctx context.Context, utterance string, opts Options) (*schemas.RuntimeResponse, error) {
	utterance = strings.TrimSpace(utterance)
	if utterance == "" {
		return nil, fmt.Errorf("empty utterance")
	}

	catalog := o.catalog(ctx, opts)
	result, err := o.planner.Plan(ctx, utterance, catalog)
	if err != nil {
		return nil, fmt.Errorf("plan utterance: %w", err)
	}

	switch result.Kind {
	case schemas.ResultAction:
		req := result.Request
		return o.adapter.Execute(ctx, schemas.ExecuteParams{
			ActionName: req.Action,
			Args:       req.Args,
			Confirmed:  req.Confirmed || opts.Confirm,
			Manifest:   o.manifest,
		})

	case schemas.ResultNavigate:
		return o.navigate(ctx, result.Page)

	case schemas.ResultAnswer:
		return &schemas.RuntimeResponse{
			Status: schemas.StatusCompleted,
			Action: "answer",
			Result: result.Answer,
		}, nil
	}

	return nil, fmt.Errorf("unexpected planner result kind %q", result.Kind)
}

// catalog picks the action catalog the planner sees. The manifest-derived
// catalog is the deterministic baseline; live discovery replaces it only
// when asked for and only when the page actually yields actions.
func (o *Orchestrator) catalog(ctx context.Context, opts Options) *schemas.ActionCatalog {
	origin := o.manifest.Site.Origin
	fromManifest := manifest.Catalog(o.manifest, origin)

	if !opts.LiveDiscovery {
		return fromManifest
	}

	nav, ok := o.adapter.(Navigator)
	if ok {
		if err := nav.Navigate(ctx, origin); err != nil {
			o.logger.Warn("live discovery navigation failed, using manifest catalog",
				zap.String("origin", origin), zap.Error(err))
			return fromManifest
		}
	}
	discovered, err := o.adapter.Discover(ctx)
	if err != nil || len(discovered.Actions) == 0 {
		o.logger.Warn("live discovery yielded nothing, using manifest catalog",
			zap.Error(err))
		return fromManifest
	}
	return discovered
}

// navigate executes a navigation directive against a manifest page.
func (o *Orchestrator) navigate(ctx context.Context, page string) (*schemas.RuntimeResponse, error) {
	def, ok := o.manifest.Pages[page]
	if !ok {
		return &schemas.RuntimeResponse{
			Status: schemas.StatusValidationError,
			Action: "navigate",
			Error:  fmt.Sprintf("page %q is not declared by the manifest", page),
		}, nil
	}

	nav, ok := o.adapter.(Navigator)
	if !ok {
		return &schemas.RuntimeResponse{
			Status: schemas.StatusExecutionError,
			Action: "navigate",
			Error:  "adapter does not support navigation",
		}, nil
	}

	url := strings.TrimRight(o.manifest.Site.Origin, "/") + def.Path
	if err := nav.Navigate(ctx, url); err != nil {
		return &schemas.RuntimeResponse{
			Status: schemas.StatusExecutionError,
			Action: "navigate",
			Error:  fmt.Sprintf("navigate %s: %v", url, err),
		}, nil
	}
	return &schemas.RuntimeResponse{
		Status: schemas.StatusCompleted,
		Action: "navigate",
		Result: url,
	}, nil
}
