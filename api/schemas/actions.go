package schemas

// RiskLevel classifies an action's potential for harm. It drives the
// confirmation policy enforced before side effects run.
type RiskLevel string

const (
	RiskNone RiskLevel = "none"
	RiskLow  RiskLevel = "low"
	RiskHigh RiskLevel = "high"
)

// Valid reports whether the risk level is one of the declared tiers.
func (r RiskLevel) Valid() bool {
	switch r {
	case RiskNone, RiskLow, RiskHigh:
		return true
	}
	return false
}

// ConfirmationPolicy governs whether explicit caller confirmation is
// mandatory before an action is executed.
type ConfirmationPolicy string

const (
	ConfirmNever    ConfirmationPolicy = "never"
	ConfirmOptional ConfirmationPolicy = "optional"
	ConfirmReview   ConfirmationPolicy = "review"
	ConfirmRequired ConfirmationPolicy = "required"
)

// Valid reports whether the policy is one of the declared values.
func (c ConfirmationPolicy) Valid() bool {
	switch c {
	case ConfirmNever, ConfirmOptional, ConfirmReview, ConfirmRequired:
		return true
	}
	return false
}

// Property describes a single field of an action's input or output.
type Property struct {
	Type        string   `json:"type"`
	Description string   `json:"description,omitempty"`
	Enum        []string `json:"enum,omitempty"`
}

// ObjectSchema is the JSON-Schema-like contract attached to an action's
// input or output payload. Only the object/primitive subset the runtime
// actually enforces is modeled.
type ObjectSchema struct {
	Type       string              `json:"type,omitempty"`
	Properties map[string]Property `json:"properties,omitempty"`
	Required   []string            `json:"required,omitempty"`
}

// AgentAction is one executable capability declared by a site manifest.
type AgentAction struct {
	Title        string             `json:"title"`
	Scope        string             `json:"scope,omitempty"`
	Risk         RiskLevel          `json:"risk"`
	Confirmation ConfirmationPolicy `json:"confirmation"`
	Idempotent   bool               `json:"idempotent,omitempty"`
	Input        *ObjectSchema      `json:"input,omitempty"`
	Output       *ObjectSchema      `json:"output,omitempty"`
}

// RequiredFields returns the declared required input fields, or nil when
// the action takes no input schema.
func (a *AgentAction) RequiredFields() []string {
	if a == nil || a.Input == nil {
		return nil
	}
	return a.Input.Required
}
