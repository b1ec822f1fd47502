// internal/planner/parser_test.go
package planner

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/semact-dev/semact-cli/api/schemas"
)

func TestParseResponse_PlainJSON(t *testing.T) {
	result, err := ParseResponse(`{"action": "task.create", "args": {"title": "write report"}}`)
	require.NoError(t, err)
	require.Equal(t, schemas.ResultAction, result.Kind)
	assert.Equal(t, "task.create", result.Request.Action)
	assert.Equal(t, "write report", result.Request.Args["title"])
	assert.False(t, result.Request.Confirmed)
}

func TestParseResponse_FencedWithPreamble(t *testing.T) {
	raw := "Sure! Here is the action to run:\n\n```json\n{\"action\": \"task.create\", \"args\": {\"title\": \"plan sprint\"}, \"confirmed\": true}\n```\nLet me know if you need anything else."

	result, err := ParseResponse(raw)
	require.NoError(t, err)
	require.Equal(t, schemas.ResultAction, result.Kind)
	assert.Equal(t, "task.create", result.Request.Action)
	assert.True(t, result.Request.Confirmed)
}

func TestParseResponse_UntaggedFence(t *testing.T) {
	raw := "```\n{\"action\": \"timer.start\", \"args\": {}}\n```"

	result, err := ParseResponse(raw)
	require.NoError(t, err)
	require.Equal(t, schemas.ResultAction, result.Kind)
	assert.Equal(t, "timer.start", result.Request.Action)
}

// TestParseResponse_BracesInsideStrings verifies the brace matcher honors
// string literals and escapes, so payload text containing "{" or "}"
// never truncates the extraction.
func TestParseResponse_BracesInsideStrings(t *testing.T) {
	raw := `The user wants a note: {"action": "note.add", "args": {"body": "use {braces} and a quote \" here"}} and done.`

	result, err := ParseResponse(raw)
	require.NoError(t, err)
	require.Equal(t, schemas.ResultAction, result.Kind)
	assert.Equal(t, `use {braces} and a quote " here`, result.Request.Args["body"])
}

func TestParseResponse_TrailingProse(t *testing.T) {
	raw := `{"action": "task.create", "args": {"title": "x"}} and that should do it`

	result, err := ParseResponse(raw)
	require.NoError(t, err)
	assert.Equal(t, schemas.ResultAction, result.Kind)
}

func TestParseResponse_NoneWithAnswer(t *testing.T) {
	result, err := ParseResponse(`{"action": "none", "answer": "You have 3 open tasks."}`)
	require.NoError(t, err)
	assert.Equal(t, schemas.ResultAnswer, result.Kind)
	assert.Equal(t, "You have 3 open tasks.", result.Answer)
	assert.Nil(t, result.Request)
}

func TestParseResponse_NoneWithoutAnswer(t *testing.T) {
	_, err := ParseResponse(`{"action": "none", "error": "no capability matches booking flights"}`)
	require.Error(t, err)

	var resErr *ResolutionError
	require.True(t, errors.As(err, &resErr))
	assert.Contains(t, resErr.Reason, "booking flights")
}

func TestParseResponse_Navigate(t *testing.T) {
	t.Run("page at top level", func(t *testing.T) {
		result, err := ParseResponse(`{"action": "navigate", "page": "reports"}`)
		require.NoError(t, err)
		assert.Equal(t, schemas.ResultNavigate, result.Kind)
		assert.Equal(t, "reports", result.Page)
	})

	t.Run("page inside args", func(t *testing.T) {
		result, err := ParseResponse(`{"action": "navigate", "args": {"page": "settings"}}`)
		require.NoError(t, err)
		assert.Equal(t, schemas.ResultNavigate, result.Kind)
		assert.Equal(t, "settings", result.Page)
	})

	t.Run("missing page", func(t *testing.T) {
		_, err := ParseResponse(`{"action": "navigate", "args": {}}`)
		var contractErr *ContractError
		require.True(t, errors.As(err, &contractErr))
	})
}

func TestParseResponse_ParseFailures(t *testing.T) {
	cases := []struct {
		name string
		raw  string
	}{
		{"empty", ""},
		{"prose only", "I cannot help with that."},
		{"unbalanced braces", `{"action": "task.create", "args": {`},
		{"invalid json", `{action: task.create}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ParseResponse(tc.raw)
			var parseErr *ParseError
			require.True(t, errors.As(err, &parseErr), "expected ParseError, got %v", err)
		})
	}
}

func TestParseResponse_ContractViolations(t *testing.T) {
	cases := []struct {
		name string
		raw  string
	}{
		{"missing args", `{"action": "task.create"}`},
		{"selector argument", `{"action": "task.create", "args": {"title": "#new-task-form"}}`},
		{"unknown top-level field", `{"action": "task.create", "args": {}, "selector": ".btn"}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ParseResponse(tc.raw)
			var contractErr *ContractError
			require.True(t, errors.As(err, &contractErr), "expected ContractError, got %v", err)
			assert.NotEmpty(t, contractErr.Violations)
		})
	}
}

func TestMatchBraces(t *testing.T) {
	extracted, ok := matchBraces(`prefix {"a": {"b": 1}} suffix`)
	require.True(t, ok)
	assert.Equal(t, `{"a": {"b": 1}}`, extracted)

	_, ok = matchBraces("no object here")
	assert.False(t, ok)

	_, ok = matchBraces(`{"open": 1`)
	assert.False(t, ok)
}
