package schemas

import "time"

// PlannerRequest is a caller's intent to execute one named action with
// semantic arguments. Argument values must never be DOM selectors; the
// contract validator rejects selector-shaped values outright.
type PlannerRequest struct {
	Action    string         `json:"action"`
	Args      map[string]any `json:"args"`
	Confirmed bool           `json:"confirmed,omitempty"`
}

// ResultKind discriminates the planner result union.
type ResultKind string

const (
	ResultAction   ResultKind = "action"
	ResultNavigate ResultKind = "navigate"
	ResultAnswer   ResultKind = "answer"
)

// PlannerResult is the planner's resolution of one utterance. Exactly one
// variant is active, selected by Kind.
type PlannerResult struct {
	Kind    ResultKind      `json:"kind"`
	Request *PlannerRequest `json:"request,omitempty"`
	Page    string          `json:"page,omitempty"`
	Answer  string          `json:"answer,omitempty"`
}

// RuntimeStatus is the terminal status of one execution.
type RuntimeStatus string

const (
	StatusCompleted             RuntimeStatus = "completed"
	StatusAwaitingReview        RuntimeStatus = "awaiting_review"
	StatusNeedsConfirmation     RuntimeStatus = "needs_confirmation"
	StatusValidationError       RuntimeStatus = "validation_error"
	StatusExecutionError        RuntimeStatus = "execution_error"
	StatusMissingRequiredFields RuntimeStatus = "missing_required_fields"
)

// Valid reports whether the status is a legal RuntimeStatus value.
func (s RuntimeStatus) Valid() bool {
	switch s {
	case StatusCompleted, StatusAwaitingReview, StatusNeedsConfirmation,
		StatusValidationError, StatusExecutionError, StatusMissingRequiredFields:
		return true
	}
	return false
}

// ConfirmationMetadata tells the caller what it is being asked to confirm
// so it can re-invoke the same request with confirmed=true.
type ConfirmationMetadata struct {
	Action string    `json:"action"`
	Risk   RiskLevel `json:"risk"`
	Scope  string    `json:"scope,omitempty"`
	Title  string    `json:"title"`
}

// StepType identifies one recorded execution step.
type StepType string

const (
	StepValidate    StepType = "validate"
	StepPolicyCheck StepType = "policy_check"
	StepCoerce      StepType = "coerce"
	StepNavigate    StepType = "navigate"
	StepFill        StepType = "fill"
	StepClick       StepType = "click"
	StepReadStatus  StepType = "read_status"
)

// LogStep is one step of an execution log with its type-specific payload.
type LogStep struct {
	Type      StepType       `json:"type"`
	Payload   map[string]any `json:"payload,omitempty"`
	Timestamp time.Time      `json:"timestamp"`
}

// ExecutionMode distinguishes UI-driven execution (the runtime drives
// annotated DOM elements) from direct execution through a page bridge.
type ExecutionMode string

const (
	ModeUI     ExecutionMode = "ui"
	ModeDirect ExecutionMode = "direct"
)

// ExecutionLog is the immutable audit trail of one execution. Steps are
// appended in strict causal order and never reordered or removed.
type ExecutionLog struct {
	SessionID string        `json:"session_id"`
	Action    string        `json:"action"`
	Mode      ExecutionMode `json:"mode"`
	Steps     []LogStep     `json:"steps"`
	Timestamp time.Time     `json:"timestamp"`
}

// RuntimeResponse is the final answer to the caller. Status determines
// which optional fields are populated.
type RuntimeResponse struct {
	Status        RuntimeStatus         `json:"status"`
	Action        string                `json:"action"`
	Result        string                `json:"result,omitempty"`
	Log           *ExecutionLog         `json:"log,omitempty"`
	Confirmation  *ConfirmationMetadata `json:"confirmation_metadata,omitempty"`
	Error         string                `json:"error,omitempty"`
	MissingFields []string              `json:"missing_fields,omitempty"`
}

// PolicyCheckResult is the outcome of a policy decision. Reason is set
// iff the execution was denied.
type PolicyCheckResult struct {
	Allowed bool   `json:"allowed"`
	Reason  string `json:"reason,omitempty"`
}

// ValidationResult is the outcome of a contract or schema check.
type ValidationResult struct {
	Valid         bool     `json:"valid"`
	Errors        []string `json:"errors,omitempty"`
	MissingFields []string `json:"missing_fields,omitempty"`
}
