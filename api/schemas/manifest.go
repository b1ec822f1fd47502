package schemas

// SiteInfo identifies the site a manifest belongs to.
type SiteInfo struct {
	Name        string `json:"name"`
	Origin      string `json:"origin"`
	Description string `json:"description,omitempty"`
}

// PageDef describes an addressable page of the site. Actions reference
// pages through their scope; the executor navigates to the page before
// interacting with annotated fields.
type PageDef struct {
	Path  string `json:"path"`
	Title string `json:"title,omitempty"`
}

// DataView is a read-only data surface the site exposes alongside its
// actions (tables, summaries). The runtime carries them through but does
// not execute against them.
type DataView struct {
	Title  string `json:"title,omitempty"`
	Scope  string `json:"scope,omitempty"`
	Source string `json:"source,omitempty"`
}

// Manifest is the declarative, site-authored capability description
// produced at build time and consumed read-only per request.
type Manifest struct {
	Version string                 `json:"version"`
	Site    SiteInfo               `json:"site"`
	Actions map[string]AgentAction `json:"actions"`
	Data    map[string]DataView    `json:"data,omitempty"`
	Pages   map[string]PageDef     `json:"pages,omitempty"`
}

// Action looks up a declared action by its dot-separated name.
func (m *Manifest) Action(name string) (*AgentAction, bool) {
	if m == nil {
		return nil, false
	}
	a, ok := m.Actions[name]
	if !ok {
		return nil, false
	}
	return &a, true
}

// PageFor resolves the page an action's scope points at, falling back to
// a page keyed by the action name itself.
func (m *Manifest) PageFor(name string, action *AgentAction) (PageDef, bool) {
	if m == nil || len(m.Pages) == 0 {
		return PageDef{}, false
	}
	if action != nil && action.Scope != "" {
		if p, ok := m.Pages[action.Scope]; ok {
			return p, true
		}
	}
	p, ok := m.Pages[name]
	return p, ok
}
