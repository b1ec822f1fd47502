// internal/planner/parser.go
package planner

import (
	"encoding/json"
	"regexp"
	"strings"

	"github.com/semact-dev/semact-cli/api/schemas"
	"github.com/semact-dev/semact-cli/internal/contract"
)

// actionNone is the sentinel action name a planner uses when the
// utterance maps to no catalog entry. With a non-empty answer it becomes
// a direct answer; without one, resolution failed for good.
const actionNone = "none"

// actionNavigate is the sentinel for pure navigation directives.
const actionNavigate = "navigate"

// fencedBlockRegex captures the interior of the first markdown code fence,
// with or without a "json" tag.
var fencedBlockRegex = regexp.MustCompile("(?s)```(?:json)?\\s*(.*?)```")

// ParseResponse extracts a single structured planner result from raw
// model output. Markdown fencing and arbitrary preamble or trailing prose
// around the JSON object are tolerated; the object's shape is then
// checked against the request contract.
func ParseResponse(raw string) (*schemas.PlannerResult, error) {
	raw = strings.TrimSpace(raw)

	candidate := raw
	if m := fencedBlockRegex.FindStringSubmatch(raw); m != nil {
		candidate = m[1]
	}

	extracted, ok := matchBraces(candidate)
	if !ok {
		return nil, &ParseError{Msg: "no JSON object found in response"}
	}

	var obj map[string]any
	if err := json.Unmarshal([]byte(extracted), &obj); err != nil {
		return nil, &ParseError{Msg: "extracted text is not valid JSON", Err: err}
	}

	action, _ := obj["action"].(string)
	switch action {
	case actionNone:
		if answer, _ := obj["answer"].(string); answer != "" {
			return &schemas.PlannerResult{Kind: schemas.ResultAnswer, Answer: answer}, nil
		}
		reason, _ := obj["error"].(string)
		if reason == "" {
			reason = "no matching action for this request"
		}
		return nil, &ResolutionError{Reason: reason}

	case actionNavigate:
		page, _ := obj["page"].(string)
		if page == "" {
			if args, isObj := obj["args"].(map[string]any); isObj {
				page, _ = args["page"].(string)
			}
		}
		if page == "" {
			return nil, &ContractError{Violations: []string{"navigate directive is missing its page"}}
		}
		return &schemas.PlannerResult{Kind: schemas.ResultNavigate, Page: page}, nil
	}

	if res := contract.Default().ValidateRequest(obj); !res.Valid {
		return nil, &ContractError{Violations: res.Errors}
	}

	req := &schemas.PlannerRequest{Action: action, Args: map[string]any{}}
	if args, isObj := obj["args"].(map[string]any); isObj {
		req.Args = args
	}
	if confirmed, isBool := obj["confirmed"].(bool); isBool {
		req.Confirmed = confirmed
	}
	return &schemas.PlannerResult{Kind: schemas.ResultAction, Request: req}, nil
}

// matchBraces locates the first top-level JSON object in s via
// depth-tracked brace matching. Braces inside quoted strings are ignored
// and backslash escapes are honored, so payloads containing literal "{"
// or "}" characters extract cleanly.
func matchBraces(s string) (string, bool) {
	start := strings.IndexByte(s, '{')
	if start < 0 {
		return "", false
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(s); i++ {
		c := s[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return s[start : i+1], true
			}
		}
	}
	return "", false
}
