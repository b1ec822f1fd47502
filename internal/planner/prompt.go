// internal/planner/prompt.go
package planner

import (
	"fmt"
	"strings"

	"github.com/semact-dev/semact-cli/api/schemas"
)

// buildSystemPrompt renders the action catalog and the planner's hard
// rules into the system prompt for one planning call.
func buildSystemPrompt(catalog *schemas.ActionCatalog) string {
	var b strings.Builder
	b.WriteString(`You are the planning engine of an agent that operates a web application on the user's behalf.
You translate the user's request into exactly one action from the catalog below.

Action catalog:
`)

	if catalog == nil || len(catalog.Actions) == 0 {
		b.WriteString("(no actions are available on this page)\n")
	}
	if catalog != nil {
		for _, a := range catalog.Actions {
			fmt.Fprintf(&b, "- %s", a.Name)
			if a.Title != "" {
				fmt.Fprintf(&b, ": %s", a.Title)
			}
			fmt.Fprintf(&b, " (risk: %s, confirmation: %s)", orUnknown(string(a.Risk)), orUnknown(string(a.Confirmation)))
			if len(a.Fields) > 0 {
				fmt.Fprintf(&b, " fields: %s", strings.Join(a.Fields, ", "))
			}
			b.WriteByte('\n')
		}
	}

	b.WriteString(`
Rules:
1. Respond ONLY with a single JSON object, no commentary.
2. To execute an action: {"action": "<name>", "args": {"<field>": <value>, ...}}.
   Argument values are the literal values the user asked for. They must NEVER
   be CSS selectors, element ids, or any other DOM reference.
3. For purely informational questions, respond {"action": "none", "answer": "<your answer>"}.
4. If nothing in the catalog fits, respond {"action": "none", "error": "<why>"}.
5. To move the user to another page without executing anything, respond
   {"action": "navigate", "page": "<page name>"}.
`)
	return b.String()
}

// buildUserPrompt wraps the raw utterance.
func buildUserPrompt(utterance string) string {
	return fmt.Sprintf("User request: %s\n\nRespond with a single JSON object.", utterance)
}

func orUnknown(s string) string {
	if s == "" {
		return "unknown"
	}
	return s
}
