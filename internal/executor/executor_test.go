// internal/executor/executor_test.go
package executor_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap/zaptest"

	"github.com/semact-dev/semact-cli/api/schemas"
	"github.com/semact-dev/semact-cli/internal/executor"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// fakeDriver records every interaction and replays configured outcomes.
type fakeDriver struct {
	calls       []string
	fills       map[string]any
	status      map[string]any
	navigateErr error
	fillErr     error
	clickErr    error
	statusErr   error
}

func newFakeDriver(status map[string]any) *fakeDriver {
	return &fakeDriver{fills: map[string]any{}, status: status}
}

func (d *fakeDriver) Navigate(_ context.Context, url string) error {
	d.calls = append(d.calls, "navigate:"+url)
	return d.navigateErr
}

func (d *fakeDriver) Fill(_ context.Context, field string, value any) error {
	d.calls = append(d.calls, "fill:"+field)
	if d.fillErr != nil {
		return d.fillErr
	}
	d.fills[field] = value
	return nil
}

func (d *fakeDriver) Click(_ context.Context, action string) error {
	d.calls = append(d.calls, "click:"+action)
	return d.clickErr
}

func (d *fakeDriver) ReadStatus(context.Context) (map[string]any, error) {
	d.calls = append(d.calls, "read_status")
	return d.status, d.statusErr
}

// bridgeDriver adds direct-mode support on top of the fake driver.
type bridgeDriver struct {
	fakeDriver
	bridgeReq *schemas.PlannerRequest
	bridgeErr error
}

func (d *bridgeDriver) CallAction(_ context.Context, req *schemas.PlannerRequest) (map[string]any, error) {
	d.calls = append(d.calls, "bridge:"+req.Action)
	d.bridgeReq = req
	return d.status, d.bridgeErr
}

func testManifest() *schemas.Manifest {
	return &schemas.Manifest{
		Version: "1",
		Site:    schemas.SiteInfo{Name: "Taskboard", Origin: "https://tasks.example.com"},
		Actions: map[string]schemas.AgentAction{
			"task.create": {
				Title:        "Create a task",
				Scope:        "board",
				Risk:         schemas.RiskLow,
				Confirmation: schemas.ConfirmOptional,
				Input: &schemas.ObjectSchema{
					Type: "object",
					Properties: map[string]schemas.Property{
						"title":    {Type: "string"},
						"estimate": {Type: "number"},
					},
					Required: []string{"title"},
				},
				Output: &schemas.ObjectSchema{
					Type:       "object",
					Properties: map[string]schemas.Property{"ok": {Type: "boolean"}, "message": {Type: "string"}},
					Required:   []string{"ok"},
				},
			},
			"workspace.delete": {
				Title:        "Delete a workspace",
				Scope:        "workspace",
				Risk:         schemas.RiskHigh,
				Confirmation: schemas.ConfirmRequired,
				Input: &schemas.ObjectSchema{
					Type:       "object",
					Properties: map[string]schemas.Property{"name": {Type: "string"}},
					Required:   []string{"name"},
				},
			},
			"report.submit": {
				Title:        "Submit the weekly report",
				Risk:         schemas.RiskLow,
				Confirmation: schemas.ConfirmReview,
			},
		},
		Pages: map[string]schemas.PageDef{
			"board":     {Path: "/board", Title: "Board"},
			"workspace": {Path: "/settings/workspaces"},
		},
	}
}

func stepTypes(log *schemas.ExecutionLog) []schemas.StepType {
	out := make([]schemas.StepType, 0, len(log.Steps))
	for _, s := range log.Steps {
		out = append(out, s.Type)
	}
	return out
}

func TestExecute_HappyPath(t *testing.T) {
	driver := newFakeDriver(map[string]any{"ok": true, "message": "task created"})
	exec := executor.New(zaptest.NewLogger(t), testManifest(), driver, schemas.ModeUI, nil)

	resp := exec.Execute(context.Background(), &schemas.PlannerRequest{
		Action: "task.create",
		Args:   map[string]any{"title": "write report", "estimate": 2.5},
	})

	require.Equal(t, schemas.StatusCompleted, resp.Status)
	assert.Equal(t, "task created", resp.Result)

	// The driver sees the fixed sequence with fills in field order.
	assert.Equal(t, []string{
		"navigate:https://tasks.example.com/board",
		"fill:estimate",
		"fill:title",
		"click:task.create",
		"read_status",
	}, driver.calls)

	require.NotNil(t, resp.Log)
	want := []schemas.StepType{
		schemas.StepValidate,
		schemas.StepPolicyCheck,
		schemas.StepNavigate,
		schemas.StepFill,
		schemas.StepFill,
		schemas.StepClick,
		schemas.StepReadStatus,
	}
	if diff := cmp.Diff(want, stepTypes(resp.Log)); diff != "" {
		t.Fatalf("step sequence mismatch (-want +got):\n%s", diff)
	}
}

// TestExecute_LogAlwaysStartsWithGates pins the audit invariant: whatever
// the outcome, the first recorded steps are validate and (when reached)
// policy_check, and no interaction step ever precedes them.
func TestExecute_LogAlwaysStartsWithGates(t *testing.T) {
	requests := []*schemas.PlannerRequest{
		{Action: "task.create", Args: map[string]any{"title": "ok"}},
		{Action: "task.create", Args: map[string]any{}},
		{Action: "workspace.delete", Args: map[string]any{"name": "staging"}},
		{Action: "nope.missing", Args: map[string]any{}},
	}
	for _, req := range requests {
		driver := newFakeDriver(map[string]any{"ok": true})
		exec := executor.New(zaptest.NewLogger(t), testManifest(), driver, schemas.ModeUI, nil)
		resp := exec.Execute(context.Background(), req)

		require.NotNil(t, resp.Log, "action %s", req.Action)
		require.NotEmpty(t, resp.Log.Steps)
		assert.Equal(t, schemas.StepValidate, resp.Log.Steps[0].Type)
		for i, step := range resp.Log.Steps {
			switch step.Type {
			case schemas.StepNavigate, schemas.StepFill, schemas.StepClick, schemas.StepReadStatus:
				types := stepTypes(resp.Log)
				assert.Contains(t, types[:i], schemas.StepValidate)
				assert.Contains(t, types[:i], schemas.StepPolicyCheck)
			}
		}
	}
}

func TestExecute_UnknownAction(t *testing.T) {
	driver := newFakeDriver(nil)
	exec := executor.New(zaptest.NewLogger(t), testManifest(), driver, schemas.ModeUI, nil)

	resp := exec.Execute(context.Background(), &schemas.PlannerRequest{Action: "task.explode", Args: map[string]any{}})

	assert.Equal(t, schemas.StatusValidationError, resp.Status)
	assert.Contains(t, resp.Error, "task.explode")
	assert.Empty(t, driver.calls, "no side effects on validation failure")
}

func TestExecute_MissingRequiredFields(t *testing.T) {
	driver := newFakeDriver(nil)
	exec := executor.New(zaptest.NewLogger(t), testManifest(), driver, schemas.ModeUI, nil)

	resp := exec.Execute(context.Background(), &schemas.PlannerRequest{
		Action: "task.create",
		Args:   map[string]any{"estimate": 1.0},
	})

	assert.Equal(t, schemas.StatusMissingRequiredFields, resp.Status)
	assert.Equal(t, []string{"title"}, resp.MissingFields)
	assert.Empty(t, driver.calls)
}

func TestExecute_SelectorArgumentRejected(t *testing.T) {
	driver := newFakeDriver(nil)
	exec := executor.New(zaptest.NewLogger(t), testManifest(), driver, schemas.ModeUI, nil)

	resp := exec.Execute(context.Background(), &schemas.PlannerRequest{
		Action: "task.create",
		Args:   map[string]any{"title": "#new-task-form"},
	})

	assert.Equal(t, schemas.StatusValidationError, resp.Status)
	assert.Contains(t, resp.Error, "selector-shaped")
	assert.Empty(t, driver.calls)
}

// TestExecute_ConfirmationRoundTrip drives the two-step flow for a
// high-risk action: denial with metadata first, success once confirmed.
func TestExecute_ConfirmationRoundTrip(t *testing.T) {
	driver := newFakeDriver(map[string]any{"message": "workspace deleted"})
	exec := executor.New(zaptest.NewLogger(t), testManifest(), driver, schemas.ModeUI, nil)

	resp := exec.Execute(context.Background(), &schemas.PlannerRequest{
		Action: "workspace.delete",
		Args:   map[string]any{"name": "staging"},
	})

	require.Equal(t, schemas.StatusNeedsConfirmation, resp.Status)
	require.NotNil(t, resp.Confirmation)
	assert.Equal(t, "workspace.delete", resp.Confirmation.Action)
	assert.Equal(t, schemas.RiskHigh, resp.Confirmation.Risk)
	assert.Equal(t, "Delete a workspace", resp.Confirmation.Title)
	assert.Empty(t, driver.calls, "denied executions must not touch the page")

	confirmed := exec.Execute(context.Background(), &schemas.PlannerRequest{
		Action:    "workspace.delete",
		Args:      map[string]any{"name": "staging"},
		Confirmed: true,
	})
	assert.Equal(t, schemas.StatusCompleted, confirmed.Status)
	assert.Equal(t, "workspace deleted", confirmed.Result)
	assert.NotEmpty(t, driver.calls)
}

func TestExecute_AwaitingReview(t *testing.T) {
	driver := newFakeDriver(map[string]any{"message": "submitted"})
	exec := executor.New(zaptest.NewLogger(t), testManifest(), driver, schemas.ModeUI, nil)

	resp := exec.Execute(context.Background(), &schemas.PlannerRequest{
		Action: "report.submit",
		Args:   map[string]any{},
	})

	require.Equal(t, schemas.StatusAwaitingReview, resp.Status)
	require.NotNil(t, resp.Confirmation)
	assert.Empty(t, driver.calls)

	confirmed := exec.Execute(context.Background(), &schemas.PlannerRequest{
		Action:    "report.submit",
		Args:      map[string]any{},
		Confirmed: true,
	})
	assert.Equal(t, schemas.StatusCompleted, confirmed.Status)
}

// TestExecute_CoercesStringArguments: string-typed numbers and booleans
// from the model are converted when the schema declares a primitive.
func TestExecute_CoercesStringArguments(t *testing.T) {
	driver := newFakeDriver(map[string]any{"ok": true})
	exec := executor.New(zaptest.NewLogger(t), testManifest(), driver, schemas.ModeUI, nil)

	resp := exec.Execute(context.Background(), &schemas.PlannerRequest{
		Action: "task.create",
		Args:   map[string]any{"title": "write report", "estimate": "2.5"},
	})

	require.Equal(t, schemas.StatusCompleted, resp.Status)
	assert.Equal(t, 2.5, driver.fills["estimate"])

	types := stepTypes(resp.Log)
	assert.Contains(t, types, schemas.StepCoerce)
}

func TestExecute_DriverFailure(t *testing.T) {
	driver := newFakeDriver(map[string]any{"ok": true})
	driver.clickErr = errors.New("element never became visible")
	exec := executor.New(zaptest.NewLogger(t), testManifest(), driver, schemas.ModeUI, nil)

	resp := exec.Execute(context.Background(), &schemas.PlannerRequest{
		Action: "task.create",
		Args:   map[string]any{"title": "x"},
	})

	assert.Equal(t, schemas.StatusExecutionError, resp.Status)
	assert.Contains(t, resp.Error, "never became visible")

	// The failing click is still recorded, with its error.
	last := resp.Log.Steps[len(resp.Log.Steps)-1]
	assert.Equal(t, schemas.StepClick, last.Type)
	assert.NotEmpty(t, last.Payload["error"])
}

// TestExecute_OutputMismatch: a status read-back that violates the
// declared output schema is an execution error, not a silent success.
func TestExecute_OutputMismatch(t *testing.T) {
	driver := newFakeDriver(map[string]any{"message": "done"}) // missing required "ok"
	exec := executor.New(zaptest.NewLogger(t), testManifest(), driver, schemas.ModeUI, nil)

	resp := exec.Execute(context.Background(), &schemas.PlannerRequest{
		Action: "task.create",
		Args:   map[string]any{"title": "x"},
	})

	assert.Equal(t, schemas.StatusExecutionError, resp.Status)
	assert.Contains(t, resp.Error, "output")
}

func TestExecute_DirectMode(t *testing.T) {
	driver := &bridgeDriver{fakeDriver: *newFakeDriver(map[string]any{"ok": true, "message": "created directly"})}
	exec := executor.New(zaptest.NewLogger(t), testManifest(), driver, schemas.ModeDirect, nil)

	resp := exec.Execute(context.Background(), &schemas.PlannerRequest{
		Action: "task.create",
		Args:   map[string]any{"title": "write report"},
	})

	require.Equal(t, schemas.StatusCompleted, resp.Status)
	assert.Equal(t, "created directly", resp.Result)
	assert.Equal(t, []string{"bridge:task.create"}, driver.calls)
	require.NotNil(t, driver.bridgeReq)
	assert.Equal(t, "write report", driver.bridgeReq.Args["title"])
	assert.Equal(t, schemas.ModeDirect, resp.Log.Mode)
}

func TestExecute_DirectModeWithoutBridge(t *testing.T) {
	driver := newFakeDriver(map[string]any{"ok": true})
	exec := executor.New(zaptest.NewLogger(t), testManifest(), driver, schemas.ModeDirect, nil)

	resp := exec.Execute(context.Background(), &schemas.PlannerRequest{
		Action: "task.create",
		Args:   map[string]any{"title": "x"},
	})

	assert.Equal(t, schemas.StatusExecutionError, resp.Status)
	assert.Contains(t, resp.Error, "direct execution")
}

func TestValidateOnly(t *testing.T) {
	exec := executor.New(zaptest.NewLogger(t), testManifest(), newFakeDriver(nil), schemas.ModeUI, nil)

	res := exec.ValidateOnly("task.create", map[string]any{"title": "fine"})
	assert.True(t, res.Valid)

	res = exec.ValidateOnly("task.create", map[string]any{})
	assert.False(t, res.Valid)
	assert.Equal(t, []string{"title"}, res.MissingFields)

	res = exec.ValidateOnly("ghost.action", map[string]any{})
	assert.False(t, res.Valid)
}
