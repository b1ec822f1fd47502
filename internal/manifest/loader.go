// internal/manifest/loader.go
package manifest

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"regexp"
	"sort"
	"time"

	jsoniter "github.com/json-iterator/go"

	"github.com/semact-dev/semact-cli/api/schemas"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// actionNameRegex enforces dot-separated identifiers (domain.verb, with
// optional further segments).
var actionNameRegex = regexp.MustCompile(`^[a-z][a-z0-9_]*(\.[a-z][a-z0-9_]*)+$`)

// Load reads and validates a persisted manifest file.
func Load(path string) (*schemas.Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read manifest: %w", err)
	}
	return Parse(data)
}

// Parse decodes manifest JSON and validates its structure.
func Parse(data []byte) (*schemas.Manifest, error) {
	var m schemas.Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("decode manifest: %w", err)
	}
	if err := Validate(&m); err != nil {
		return nil, err
	}
	return &m, nil
}

// Validate checks the structural invariants of a manifest: a version, a
// parseable site origin, dot-separated action names, and a legal risk
// tier plus confirmation policy on every action.
func Validate(m *schemas.Manifest) error {
	var errs []error
	if m.Version == "" {
		errs = append(errs, errors.New("manifest version is required"))
	}
	if m.Site.Origin == "" {
		errs = append(errs, errors.New("site origin is required"))
	} else if u, err := url.Parse(m.Site.Origin); err != nil || u.Scheme == "" || u.Host == "" {
		errs = append(errs, fmt.Errorf("site origin %q is not an absolute URL", m.Site.Origin))
	}
	if len(m.Actions) == 0 {
		errs = append(errs, errors.New("manifest declares no actions"))
	}

	for _, name := range sortedNames(m.Actions) {
		action := m.Actions[name]
		if !actionNameRegex.MatchString(name) {
			errs = append(errs, fmt.Errorf("action name %q is not a dot-separated identifier", name))
		}
		if !action.Risk.Valid() {
			errs = append(errs, fmt.Errorf("action %q has unknown risk tier %q", name, action.Risk))
		}
		if !action.Confirmation.Valid() {
			errs = append(errs, fmt.Errorf("action %q has unknown confirmation policy %q", name, action.Confirmation))
		}
		// High risk without required confirmation is legal here; the
		// policy engine is what gates it at execution time.
	}

	return errors.Join(errs...)
}

// Catalog derives an action catalog from the manifest. It stands in for
// live page discovery when the adapter cannot (or should not) snapshot
// the page.
func Catalog(m *schemas.Manifest, sourceURL string) *schemas.ActionCatalog {
	catalog := &schemas.ActionCatalog{
		SourceURL:  sourceURL,
		CapturedAt: time.Now().UTC(),
	}
	for _, name := range sortedNames(m.Actions) {
		action := m.Actions[name]
		entry := schemas.DiscoveredAction{
			Name:         name,
			Title:        action.Title,
			Scope:        action.Scope,
			Risk:         action.Risk,
			Confirmation: action.Confirmation,
		}
		if action.Input != nil {
			fields := make([]string, 0, len(action.Input.Properties))
			for f := range action.Input.Properties {
				fields = append(fields, f)
			}
			sort.Strings(fields)
			entry.Fields = fields
		}
		catalog.Actions = append(catalog.Actions, entry)
	}
	return catalog
}

func sortedNames(actions map[string]schemas.AgentAction) []string {
	names := make([]string, 0, len(actions))
	for name := range actions {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
