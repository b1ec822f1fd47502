package schemas

import "time"

// DiscoveredAction is one action as seen on the current page. It carries
// just enough metadata for the planner to describe the capability to the
// model; the manifest remains the authority for execution.
type DiscoveredAction struct {
	Name         string             `json:"name"`
	Title        string             `json:"title,omitempty"`
	Scope        string             `json:"scope,omitempty"`
	Risk         RiskLevel          `json:"risk,omitempty"`
	Confirmation ConfirmationPolicy `json:"confirmation,omitempty"`
	Fields       []string           `json:"fields,omitempty"`
}

// ActionCatalog is a point-in-time snapshot of the actions discoverable
// on the current page. It is produced by the adapter (or derived from the
// manifest) and consumed read-only by the planner.
type ActionCatalog struct {
	Actions    []DiscoveredAction `json:"actions"`
	SourceURL  string             `json:"source_url,omitempty"`
	CapturedAt time.Time          `json:"captured_at"`
}

// Find returns the catalog entry with the given action name.
func (c *ActionCatalog) Find(name string) (*DiscoveredAction, bool) {
	if c == nil {
		return nil, false
	}
	for i := range c.Actions {
		if c.Actions[i].Name == name {
			return &c.Actions[i], true
		}
	}
	return nil, false
}
