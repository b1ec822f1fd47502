// internal/executor/executor.go
package executor

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/semact-dev/semact-cli/api/schemas"
	"github.com/semact-dev/semact-cli/internal/contract"
	"github.com/semact-dev/semact-cli/internal/policy"
)

// Executor runs one validated planner request through the fixed pipeline:
// contract validation, policy check, then adapter interaction. Every run
// produces an execution log whose first steps are always validate and
// policy_check, before any side effect is attempted.
//
// An Executor owns its driver for the duration of a run; concurrent
// executions need distinct driver instances.
type Executor struct {
	logger    *zap.Logger
	manifest  *schemas.Manifest
	driver    Driver
	validator *contract.Validator
	traces    *TraceWriter
	mode      schemas.ExecutionMode
}

// New creates an executor bound to one manifest and driver. traces may be
// nil to skip persistence.
func New(logger *zap.Logger, m *schemas.Manifest, d Driver, mode schemas.ExecutionMode, traces *TraceWriter) *Executor {
	if mode == "" {
		mode = schemas.ModeUI
	}
	return &Executor{
		logger:    logger.Named("executor"),
		manifest:  m,
		driver:    d,
		validator: contract.Default(),
		traces:    traces,
		mode:      mode,
	}
}

// Execute runs the request to a terminal status. It never returns an
// error: every failure mode is a distinct RuntimeResponse status so the
// caller can tell "unsafe or incomplete" from "the target rejected it".
func (e *Executor) Execute(ctx context.Context, req *schemas.PlannerRequest) *schemas.RuntimeResponse {
	rec := NewStepRecorder(req.Action, e.mode)
	resp := e.run(ctx, req, rec)
	resp.Log = rec.Snapshot()

	if e.traces != nil {
		if err := e.traces.Write(resp.Log); err != nil {
			e.logger.Warn("failed to persist execution trace",
				zap.String("session_id", rec.SessionID()), zap.Error(err))
		}
	}

	e.logger.Info("execution finished",
		zap.String("action", req.Action),
		zap.String("status", string(resp.Status)),
		zap.String("session_id", rec.SessionID()))
	return resp
}

func (e *Executor) run(ctx context.Context, req *schemas.PlannerRequest, rec *StepRecorder) *schemas.RuntimeResponse {
	action, known := e.manifest.Action(req.Action)
	if !known {
		rec.Record(schemas.StepValidate, map[string]any{
			"valid":  false,
			"errors": []string{"unknown action"},
		})
		return &schemas.RuntimeResponse{
			Status: schemas.StatusValidationError,
			Action: req.Action,
			Error:  fmt.Sprintf("action %q is not declared by the manifest", req.Action),
		}
	}

	// Validating: request shape plus selector scan, then the declared
	// input schema, with lossless string-to-primitive coercion between.
	shape := e.validator.ValidateRequest(requestObject(req))
	args, coercions := coerceArgs(req.Args, action.Input)
	schemaRes := e.validator.ValidateArgs(args, action.Input)

	allErrors := append(append([]string{}, shape.Errors...), schemaRes.Errors...)
	valid := shape.Valid && schemaRes.Valid
	rec.Record(schemas.StepValidate, map[string]any{
		"valid":          valid,
		"errors":         allErrors,
		"missing_fields": schemaRes.MissingFields,
	})
	for _, c := range coercions {
		rec.Record(schemas.StepCoerce, map[string]any{
			"field": c.field,
			"from":  c.from,
			"to":    c.to,
		})
	}

	if !valid {
		if shape.Valid && len(schemaRes.Errors) == 0 && len(schemaRes.MissingFields) > 0 {
			return &schemas.RuntimeResponse{
				Status:        schemas.StatusMissingRequiredFields,
				Action:        req.Action,
				Error:         "required fields are missing",
				MissingFields: schemaRes.MissingFields,
			}
		}
		return &schemas.RuntimeResponse{
			Status: schemas.StatusValidationError,
			Action: req.Action,
			Error:  strings.Join(allErrors, "; "),
		}
	}

	// Policy checking. The gate runs even though validation has already
	// covered required fields: policy owns the confirmation decision.
	decision := policy.CheckExecution(action, policy.CheckOptions{
		Confirmed:           req.Confirmed,
		RequiredFieldValues: args,
	})
	payload := map[string]any{"allowed": decision.Allowed}
	if decision.Reason != "" {
		payload["reason"] = decision.Reason
	}
	rec.Record(schemas.StepPolicyCheck, payload)

	if !decision.Allowed {
		if action.Risk == schemas.RiskHigh && action.Confirmation == schemas.ConfirmRequired && !req.Confirmed {
			return &schemas.RuntimeResponse{
				Status:       schemas.StatusNeedsConfirmation,
				Action:       req.Action,
				Error:        decision.Reason,
				Confirmation: confirmationFor(req.Action, action),
			}
		}
		// Validation already checked required fields, so reaching this
		// branch means the two gates disagree; report the policy view.
		return &schemas.RuntimeResponse{
			Status:        schemas.StatusMissingRequiredFields,
			Action:        req.Action,
			Error:         decision.Reason,
			MissingFields: missingRequired(action, args),
		}
	}

	if action.Confirmation == schemas.ConfirmReview && !req.Confirmed {
		return &schemas.RuntimeResponse{
			Status:       schemas.StatusAwaitingReview,
			Action:       req.Action,
			Confirmation: confirmationFor(req.Action, action),
		}
	}

	return e.interact(ctx, req.Action, action, args, req.Confirmed, rec)
}

// interact performs the side-effecting phase. It is only entered once
// both gates have passed.
func (e *Executor) interact(ctx context.Context, name string, action *schemas.AgentAction, args map[string]any, confirmed bool, rec *StepRecorder) *schemas.RuntimeResponse {
	var status map[string]any
	var err error

	if e.mode == schemas.ModeDirect {
		status, err = e.interactDirect(ctx, name, args, confirmed, rec)
	} else {
		status, err = e.interactUI(ctx, name, action, args, rec)
	}
	if err != nil {
		return &schemas.RuntimeResponse{
			Status: schemas.StatusExecutionError,
			Action: name,
			Error:  err.Error(),
		}
	}

	if res := e.validator.ValidateArgs(status, action.Output); !res.Valid {
		detail := strings.Join(append(res.Errors, missingDetail(res.MissingFields)...), "; ")
		return &schemas.RuntimeResponse{
			Status: schemas.StatusExecutionError,
			Action: name,
			Error:  "status read-back does not match the declared output: " + detail,
		}
	}

	return &schemas.RuntimeResponse{
		Status: schemas.StatusCompleted,
		Action: name,
		Result: resultText(status),
	}
}

// interactUI drives the annotated page: navigate, one fill per argument,
// click, read_status. The order is fixed; the page must be loaded before
// fields exist, and status is only meaningful after submission.
func (e *Executor) interactUI(ctx context.Context, name string, action *schemas.AgentAction, args map[string]any, rec *StepRecorder) (map[string]any, error) {
	url := e.pageURL(name, action)
	if err := e.driver.Navigate(ctx, url); err != nil {
		rec.Record(schemas.StepNavigate, map[string]any{"url": url, "error": err.Error()})
		return nil, fmt.Errorf("navigate %s: %w", url, err)
	}
	rec.Record(schemas.StepNavigate, map[string]any{"url": url})

	fields := make([]string, 0, len(args))
	for f := range args {
		fields = append(fields, f)
	}
	sort.Strings(fields)
	for _, field := range fields {
		if err := e.driver.Fill(ctx, field, args[field]); err != nil {
			rec.Record(schemas.StepFill, map[string]any{"field": field, "error": err.Error()})
			return nil, fmt.Errorf("fill %q: %w", field, err)
		}
		rec.Record(schemas.StepFill, map[string]any{"field": field, "value": args[field]})
	}

	if err := e.driver.Click(ctx, name); err != nil {
		rec.Record(schemas.StepClick, map[string]any{"action": name, "error": err.Error()})
		return nil, fmt.Errorf("submit %q: %w", name, err)
	}
	rec.Record(schemas.StepClick, map[string]any{"action": name})

	status, err := e.driver.ReadStatus(ctx)
	if err != nil {
		rec.Record(schemas.StepReadStatus, map[string]any{"error": err.Error()})
		return nil, fmt.Errorf("read status: %w", err)
	}
	rec.Record(schemas.StepReadStatus, map[string]any{"result": status})
	return status, nil
}

// interactDirect hands the request to the page's execution bridge in one
// call, recording the read-back as the sole interaction step.
func (e *Executor) interactDirect(ctx context.Context, name string, args map[string]any, confirmed bool, rec *StepRecorder) (map[string]any, error) {
	bridge, ok := e.driver.(BridgeCaller)
	if !ok {
		return nil, fmt.Errorf("driver does not support direct execution")
	}
	status, err := bridge.CallAction(ctx, &schemas.PlannerRequest{Action: name, Args: args, Confirmed: confirmed})
	if err != nil {
		rec.Record(schemas.StepReadStatus, map[string]any{"error": err.Error()})
		return nil, fmt.Errorf("bridge call %q: %w", name, err)
	}
	rec.Record(schemas.StepReadStatus, map[string]any{"result": status})
	return status, nil
}

// ValidateOnly checks an action's arguments against the manifest without
// side effects. This backs the adapter's validate capability.
func (e *Executor) ValidateOnly(name string, args map[string]any) *schemas.ValidationResult {
	action, known := e.manifest.Action(name)
	if !known {
		res := schemas.ValidationResult{Valid: false, Errors: []string{fmt.Sprintf("action %q is not declared by the manifest", name)}}
		return &res
	}
	shape := e.validator.ValidateRequest(requestObject(&schemas.PlannerRequest{Action: name, Args: args}))
	coerced, _ := coerceArgs(args, action.Input)
	schemaRes := e.validator.ValidateArgs(coerced, action.Input)

	res := schemas.ValidationResult{
		Valid:         shape.Valid && schemaRes.Valid,
		Errors:        append(append([]string{}, shape.Errors...), schemaRes.Errors...),
		MissingFields: schemaRes.MissingFields,
	}
	return &res
}

// pageURL resolves the page an action executes on, defaulting to the
// site origin when its scope maps to no declared page.
func (e *Executor) pageURL(name string, action *schemas.AgentAction) string {
	origin := strings.TrimRight(e.manifest.Site.Origin, "/")
	if page, ok := e.manifest.PageFor(name, action); ok {
		return origin + page.Path
	}
	return origin
}

// requestObject rebuilds the wire-shaped object the contract validator
// expects from a typed request.
func requestObject(req *schemas.PlannerRequest) map[string]any {
	obj := map[string]any{"action": req.Action, "args": anyMap(req.Args)}
	if req.Confirmed {
		obj["confirmed"] = true
	}
	return obj
}

func anyMap(m map[string]any) map[string]any {
	if m == nil {
		return map[string]any{}
	}
	return m
}

type coercionRecord struct {
	field string
	from  any
	to    any
}

// coerceArgs converts string argument values to the primitive type the
// input schema declares, where the conversion is lossless. The original
// map is left untouched.
func coerceArgs(args map[string]any, schema *schemas.ObjectSchema) (map[string]any, []coercionRecord) {
	out := make(map[string]any, len(args))
	for k, v := range args {
		out[k] = v
	}
	if schema == nil {
		return out, nil
	}

	fields := make([]string, 0, len(args))
	for f := range args {
		fields = append(fields, f)
	}
	sort.Strings(fields)

	var coercions []coercionRecord
	for _, field := range fields {
		prop, declared := schema.Properties[field]
		if !declared {
			continue
		}
		s, isStr := args[field].(string)
		if !isStr || s == "" {
			continue
		}
		var converted any
		switch prop.Type {
		case "number", "integer":
			if f, err := strconv.ParseFloat(s, 64); err == nil {
				converted = f
			}
		case "boolean":
			if b, err := strconv.ParseBool(s); err == nil {
				converted = b
			}
		}
		if converted != nil {
			out[field] = converted
			coercions = append(coercions, coercionRecord{field: field, from: s, to: converted})
		}
	}
	return out, coercions
}

func confirmationFor(name string, action *schemas.AgentAction) *schemas.ConfirmationMetadata {
	return &schemas.ConfirmationMetadata{
		Action: name,
		Risk:   action.Risk,
		Scope:  action.Scope,
		Title:  action.Title,
	}
}

func missingRequired(action *schemas.AgentAction, args map[string]any) []string {
	var missing []string
	for _, field := range action.RequiredFields() {
		val, ok := args[field]
		if !ok || val == nil {
			missing = append(missing, field)
			continue
		}
		if s, isStr := val.(string); isStr && s == "" {
			missing = append(missing, field)
		}
	}
	if len(missing) == 0 {
		// Keep the response contract satisfiable even when the policy
		// denial had some other cause.
		missing = action.RequiredFields()
	}
	return missing
}

func missingDetail(fields []string) []string {
	out := make([]string, 0, len(fields))
	for _, f := range fields {
		out = append(out, fmt.Sprintf("missing field %q", f))
	}
	return out
}

// resultText condenses a status read-back into the response's result
// string, preferring an explicit message field.
func resultText(status map[string]any) string {
	if msg, ok := status["message"].(string); ok && msg != "" {
		return msg
	}
	if len(status) == 0 {
		return "ok"
	}
	data, err := json.Marshal(status)
	if err != nil {
		return "ok"
	}
	return string(data)
}
