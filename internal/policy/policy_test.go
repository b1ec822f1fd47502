// internal/policy/policy_test.go
package policy_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/semact-dev/semact-cli/api/schemas"
	"github.com/semact-dev/semact-cli/internal/policy"
)

func deleteWorkspaceAction() *schemas.AgentAction {
	return &schemas.AgentAction{
		Title:        "Delete a workspace",
		Scope:        "workspace",
		Risk:         schemas.RiskHigh,
		Confirmation: schemas.ConfirmRequired,
		Input: &schemas.ObjectSchema{
			Type: "object",
			Properties: map[string]schemas.Property{
				"name": {Type: "string"},
			},
			Required: []string{"name"},
		},
	}
}

// TestCheckExecution_HighRiskRequiresConfirmation covers the first gate:
// an unconfirmed high-risk action is denied even with complete arguments.
func TestCheckExecution_HighRiskRequiresConfirmation(t *testing.T) {
	res := policy.CheckExecution(deleteWorkspaceAction(), policy.CheckOptions{
		Confirmed:           false,
		RequiredFieldValues: map[string]any{"name": "staging"},
	})

	require.False(t, res.Allowed)
	assert.Contains(t, res.Reason, "Delete a workspace")
	assert.Contains(t, res.Reason, "confirmation")
}

func TestCheckExecution_ConfirmedWithFieldsAllows(t *testing.T) {
	res := policy.CheckExecution(deleteWorkspaceAction(), policy.CheckOptions{
		Confirmed:           true,
		RequiredFieldValues: map[string]any{"name": "staging"},
	})

	assert.True(t, res.Allowed)
	assert.Empty(t, res.Reason)
}

// TestCheckExecution_ConfirmationGateWinsOverMissingFields pins the gate
// order: when both confirmation and a required field are absent, the
// denial reason names the confirmation, never the field.
func TestCheckExecution_ConfirmationGateWinsOverMissingFields(t *testing.T) {
	res := policy.CheckExecution(deleteWorkspaceAction(), policy.CheckOptions{
		Confirmed:           false,
		RequiredFieldValues: map[string]any{},
	})

	require.False(t, res.Allowed)
	assert.Contains(t, res.Reason, "confirmation")
	assert.NotContains(t, res.Reason, `"name"`)
}

func TestCheckExecution_MissingRequiredField(t *testing.T) {
	cases := []struct {
		name string
		args map[string]any
	}{
		{"absent", map[string]any{}},
		{"nil value", map[string]any{"name": nil}},
		{"empty string", map[string]any{"name": ""}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			res := policy.CheckExecution(deleteWorkspaceAction(), policy.CheckOptions{
				Confirmed:           true,
				RequiredFieldValues: tc.args,
			})
			require.False(t, res.Allowed)
			assert.Contains(t, res.Reason, `"name"`)
		})
	}
}

// TestCheckExecution_LowRiskNeedsNoConfirmation verifies that the
// confirmation gate only binds high-risk actions with a required policy.
func TestCheckExecution_LowRiskNeedsNoConfirmation(t *testing.T) {
	action := &schemas.AgentAction{
		Title:        "Create a task",
		Risk:         schemas.RiskLow,
		Confirmation: schemas.ConfirmOptional,
		Input: &schemas.ObjectSchema{
			Type:       "object",
			Properties: map[string]schemas.Property{"title": {Type: "string"}},
			Required:   []string{"title"},
		},
	}

	res := policy.CheckExecution(action, policy.CheckOptions{
		Confirmed:           false,
		RequiredFieldValues: map[string]any{"title": "write report"},
	})
	assert.True(t, res.Allowed)
}

// TestCheckExecution_HighRiskWithoutRequiredPolicy covers a manifest that
// declares high risk but leaves confirmation optional: the policy engine
// takes the declaration at face value.
func TestCheckExecution_HighRiskWithoutRequiredPolicy(t *testing.T) {
	action := &schemas.AgentAction{
		Title:        "Archive everything",
		Risk:         schemas.RiskHigh,
		Confirmation: schemas.ConfirmOptional,
	}

	res := policy.CheckExecution(action, policy.CheckOptions{Confirmed: false})
	assert.True(t, res.Allowed)
}

func TestCheckExecution_NoActionsWithoutInputSchema(t *testing.T) {
	action := &schemas.AgentAction{
		Title:        "Refresh dashboard",
		Risk:         schemas.RiskNone,
		Confirmation: schemas.ConfirmNever,
	}

	res := policy.CheckExecution(action, policy.CheckOptions{})
	assert.True(t, res.Allowed)
}

func TestCheckExecution_NilAction(t *testing.T) {
	res := policy.CheckExecution(nil, policy.CheckOptions{Confirmed: true})
	require.False(t, res.Allowed)
	assert.NotEmpty(t, res.Reason)
}
