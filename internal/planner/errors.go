// internal/planner/errors.go
package planner

import (
	"fmt"
	"strings"
)

// ParseError means the raw model output could not be interpreted as a
// structured value at all. It is the only failure class the planner
// retries: the model may simply produce valid JSON on the next attempt.
type ParseError struct {
	Msg string
	Err error
}

func (e *ParseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("unparseable planner output: %s: %v", e.Msg, e.Err)
	}
	return fmt.Sprintf("unparseable planner output: %s", e.Msg)
}

func (e *ParseError) Unwrap() error { return e.Err }

// ContractError means the model produced syntactically valid JSON whose
// shape or content violates the request contract, selector-shaped
// argument values included.
type ContractError struct {
	Violations []string
}

func (e *ContractError) Error() string {
	return "planner output violates the request contract: " + strings.Join(e.Violations, "; ")
}

// ResolutionError means the planner explicitly declined to map the
// utterance to any action (the "none" sentinel without an answer). It is
// a definitive outcome and is never retried.
type ResolutionError struct {
	Reason string
}

func (e *ResolutionError) Error() string {
	return "planner could not resolve the utterance: " + e.Reason
}

// BackendError wraps a transport or API failure from the generation
// backend. Repeating the same call will not help, so it propagates
// immediately.
type BackendError struct {
	Err error
}

func (e *BackendError) Error() string { return "generation backend failure: " + e.Err.Error() }
func (e *BackendError) Unwrap() error { return e.Err }

// ExhaustedError reports that the bounded retry budget was consumed
// without a single interpretable response.
type ExhaustedError struct {
	Attempts int
	LastErr  error
}

func (e *ExhaustedError) Error() string {
	return fmt.Sprintf("planner gave no usable response after %d attempts: %v", e.Attempts, e.LastErr)
}

func (e *ExhaustedError) Unwrap() error { return e.LastErr }
