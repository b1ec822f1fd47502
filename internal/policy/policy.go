// internal/policy/policy.go
package policy

import (
	"fmt"

	"github.com/semact-dev/semact-cli/api/schemas"
)

// CheckOptions carries the caller-supplied state a policy decision is
// made against.
type CheckOptions struct {
	// Confirmed is true when the caller has explicitly confirmed the
	// action after a needs_confirmation round trip.
	Confirmed bool
	// RequiredFieldValues holds the argument values the caller supplied,
	// keyed by field name.
	RequiredFieldValues map[string]any
}

// CheckExecution decides whether an action may run given its declared
// risk and confirmation metadata and the caller's state. It is a pure
// function; the first matching rule wins.
//
// The confirmation gate is evaluated strictly before the required-fields
// gate, so an unconfirmed caller never learns field requirements for an
// action it is not yet authorized to run.
func CheckExecution(action *schemas.AgentAction, opts CheckOptions) schemas.PolicyCheckResult {
	if action == nil {
		return schemas.PolicyCheckResult{Allowed: false, Reason: "no action metadata available"}
	}

	if action.Risk == schemas.RiskHigh && action.Confirmation == schemas.ConfirmRequired && !opts.Confirmed {
		return schemas.PolicyCheckResult{
			Allowed: false,
			Reason:  fmt.Sprintf("%q is a high-risk action and requires explicit confirmation before it can run", action.Title),
		}
	}

	for _, field := range action.RequiredFields() {
		val, ok := opts.RequiredFieldValues[field]
		if !ok || val == nil {
			return denyMissing(field)
		}
		if s, isStr := val.(string); isStr && s == "" {
			return denyMissing(field)
		}
	}

	return schemas.PolicyCheckResult{Allowed: true}
}

func denyMissing(field string) schemas.PolicyCheckResult {
	return schemas.PolicyCheckResult{
		Allowed: false,
		Reason:  fmt.Sprintf("required field %q is missing or empty", field),
	}
}
