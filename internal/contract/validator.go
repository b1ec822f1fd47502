// internal/contract/validator.go
package contract

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"sync"

	"github.com/semact-dev/semact-cli/api/schemas"
)

// selectorPattern pairs a compiled CSS-selector-shaped pattern with the
// human readable reason reported on rejection.
type selectorPattern struct {
	re   *regexp.Regexp
	desc string
}

// The fixed pattern set rejected in argument values. Planners communicate
// intent by field name, never by DOM location; any value that parses as a
// plausible CSS selector is refused regardless of which action it targets.
var selectorPatterns = []selectorPattern{
	{regexp.MustCompile(`^[.#][\w-]`), "id/class selector prefix"},
	{regexp.MustCompile(`^\[[\w-]+[*^$|~]?=`), "attribute selector"},
	{regexp.MustCompile(`^[A-Za-z][\w-]*\s*>\s*\S`), "child combinator"},
	{regexp.MustCompile(`^[A-Za-z][\w-]*:(?:hover|focus|active|visited|checked|disabled|enabled|required|empty|first-child|last-child|only-child|nth-child|nth-of-type|first-of-type|last-of-type|not|has|is|where)\b`), "pseudo selector"},
	{regexp.MustCompile(`^(?:a|body|button|div|fieldset|form|input|label|li|ol|option|p|section|select|span|table|tbody|td|textarea|th|tr|ul)(?:[.#[]|\s+[.#[])`), "tag-qualified selector"},
}

// requestFields is the closed set of top-level keys a planner request may
// carry.
var requestFields = map[string]bool{
	"action":    true,
	"args":      true,
	"confirmed": true,
}

// Validator checks planner requests and runtime responses against their
// contracts. Its compiled state is read-only after construction, so one
// instance is safely shared across concurrent requests.
type Validator struct {
	patterns []selectorPattern
}

var (
	defaultValidator *Validator
	defaultOnce      sync.Once
)

// Default returns the process-wide shared validator, constructing it on
// first use.
func Default() *Validator {
	defaultOnce.Do(func() {
		defaultValidator = New()
	})
	return defaultValidator
}

// New constructs a validator with the fixed selector pattern set.
func New() *Validator {
	return &Validator{patterns: selectorPatterns}
}

// SelectorShaped reports whether a string value looks like a CSS selector,
// returning the matched pattern description.
func (v *Validator) SelectorShaped(value string) (string, bool) {
	for _, p := range v.patterns {
		if p.re.MatchString(value) {
			return p.desc, true
		}
	}
	return "", false
}

// ValidateRequest checks a decoded planner request object. The input is
// the raw structured value produced by the JSON decoder, not a typed
// struct, so malformed shapes from the model are caught here rather than
// silently zeroed by unmarshalling.
func (v *Validator) ValidateRequest(data any) schemas.ValidationResult {
	obj, ok := data.(map[string]any)
	if !ok || obj == nil {
		return invalid("request must be a non-null JSON object")
	}

	var errs []string
	for key := range obj {
		if !requestFields[key] {
			errs = append(errs, fmt.Sprintf("unexpected top-level field %q", key))
		}
	}

	action, ok := obj["action"].(string)
	if !ok || action == "" {
		errs = append(errs, "missing required string field \"action\"")
	}

	rawArgs, present := obj["args"]
	args, isObj := rawArgs.(map[string]any)
	switch {
	case !present:
		errs = append(errs, "missing required object field \"args\"")
	case !isObj:
		errs = append(errs, "field \"args\" must be an object")
	}

	if c, present := obj["confirmed"]; present {
		if _, isBool := c.(bool); !isBool {
			errs = append(errs, "field \"confirmed\" must be a boolean")
		}
	}

	errs = append(errs, v.checkArgValues("args", args)...)

	return schemas.ValidationResult{Valid: len(errs) == 0, Errors: errs}
}

// checkArgValues walks an argument tree and rejects selector-shaped
// string values wherever they appear, including inside nested objects
// and arrays.
func (v *Validator) checkArgValues(path string, value any) []string {
	switch val := value.(type) {
	case string:
		if desc, bad := v.SelectorShaped(val); bad {
			return []string{fmt.Sprintf("argument %s holds a selector-shaped value (%s): %q", path, desc, val)}
		}
	case map[string]any:
		keys := make([]string, 0, len(val))
		for k := range val {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		var errs []string
		for _, k := range keys {
			errs = append(errs, v.checkArgValues(path+"."+k, val[k])...)
		}
		return errs
	case []any:
		var errs []string
		for i, item := range val {
			errs = append(errs, v.checkArgValues(path+"["+strconv.Itoa(i)+"]", item)...)
		}
		return errs
	}
	return nil
}

// ValidateArgs checks concrete argument values against an action's
// declared input schema: required fields must be present and non-empty,
// and present fields must match their declared primitive type.
func (v *Validator) ValidateArgs(args map[string]any, schema *schemas.ObjectSchema) schemas.ValidationResult {
	res := schemas.ValidationResult{Valid: true}
	if schema == nil {
		return res
	}

	for _, field := range schema.Required {
		val, ok := args[field]
		if !ok || val == nil {
			res.MissingFields = append(res.MissingFields, field)
			continue
		}
		if s, isStr := val.(string); isStr && s == "" {
			res.MissingFields = append(res.MissingFields, field)
		}
	}

	keys := make([]string, 0, len(args))
	for k := range args {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, field := range keys {
		prop, declared := schema.Properties[field]
		if !declared {
			continue
		}
		if err := checkType(field, args[field], prop.Type); err != "" {
			res.Errors = append(res.Errors, err)
		}
	}

	res.Valid = len(res.Errors) == 0 && len(res.MissingFields) == 0
	return res
}

// checkType validates a decoded JSON value against a declared primitive
// type name. An empty declared type accepts anything.
func checkType(field string, value any, declared string) string {
	if value == nil || declared == "" {
		return ""
	}
	ok := true
	switch declared {
	case "string":
		_, ok = value.(string)
	case "number":
		_, ok = value.(float64)
	case "integer":
		f, isNum := value.(float64)
		ok = isNum && f == float64(int64(f))
	case "boolean":
		_, ok = value.(bool)
	case "object":
		_, ok = value.(map[string]any)
	case "array":
		_, ok = value.([]any)
	}
	if !ok {
		return fmt.Sprintf("argument %q must be of type %s", field, declared)
	}
	return ""
}

// ValidateResponse enforces the closed tagged union of runtime statuses:
// each status may only carry its legal optional fields.
func (v *Validator) ValidateResponse(resp *schemas.RuntimeResponse) schemas.ValidationResult {
	if resp == nil {
		return invalid("response must not be nil")
	}

	var errs []string
	if !resp.Status.Valid() {
		errs = append(errs, fmt.Sprintf("unknown runtime status %q", resp.Status))
	}
	if resp.Status == schemas.StatusNeedsConfirmation && resp.Confirmation == nil {
		errs = append(errs, "needs_confirmation requires confirmation metadata")
	}
	if resp.Status == schemas.StatusMissingRequiredFields && len(resp.MissingFields) == 0 {
		errs = append(errs, "missing_required_fields requires a non-empty field list")
	}

	return schemas.ValidationResult{Valid: len(errs) == 0, Errors: errs}
}

func invalid(msg string) schemas.ValidationResult {
	return schemas.ValidationResult{Valid: false, Errors: []string{msg}}
}
