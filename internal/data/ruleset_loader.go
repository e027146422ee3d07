package data

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"path"
	"sort"
	"sync"

	"gopkg.in/yaml.v3"
)

//go:embed rulesets/*.yaml
var rulesetFS embed.FS

var ErrUnknownRuleset = errors.New("unknown ruleset")

// Registry holds the rulesets known to the engine, keyed by ID and by name.
// It is read-only once built.
type Registry struct {
	byID   map[string]*Ruleset
	byName map[string]*Ruleset
}

// LoadRulesets parses every *.yaml file in dir of fsys.
func LoadRulesets(fsys fs.FS, dir string) (*Registry, error) {
	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return nil, fmt.Errorf("reading rulesets dir %s: %w", dir, err)
	}

	reg := &Registry{
		byID:   make(map[string]*Ruleset, len(entries)),
		byName: make(map[string]*Ruleset, len(entries)),
	}
	for _, e := range entries {
		if e.IsDir() || path.Ext(e.Name()) != ".yaml" {
			continue
		}
		p := path.Join(dir, e.Name())
		raw, err := fs.ReadFile(fsys, p)
		if err != nil {
			return nil, fmt.Errorf("reading ruleset %s: %w", p, err)
		}
		rs, err := ParseRuleset(raw)
		if err != nil {
			return nil, fmt.Errorf("parsing ruleset %s: %w", p, err)
		}
		if _, dup := reg.byID[rs.ID]; dup {
			return nil, fmt.Errorf("%w: duplicate id %q in %s", ErrInvalidRuleset, rs.ID, p)
		}
		reg.byID[rs.ID] = rs
		if rs.Name != "" {
			reg.byName[rs.Name] = rs
		}
	}

	slog.Debug("loaded rulesets", "count", len(reg.byID))
	return reg, nil
}

// ParseRuleset decodes and validates a single YAML ruleset.
func ParseRuleset(raw []byte) (*Ruleset, error) {
	var rs Ruleset
	if err := yaml.Unmarshal(raw, &rs); err != nil {
		return nil, fmt.Errorf("decoding yaml: %w", err)
	}
	if err := rs.validate(); err != nil {
		return nil, err
	}
	return &rs, nil
}

var defaultRegistry = sync.OnceValues(func() (*Registry, error) {
	return LoadRulesets(rulesetFS, "rulesets")
})

// DefaultRegistry returns the rulesets embedded in the binary.
func DefaultRegistry() (*Registry, error) {
	return defaultRegistry()
}

// GetRuleset looks up an embedded ruleset by ID ("7") or name ("blazing-sword").
func GetRuleset(key string) (*Ruleset, error) {
	reg, err := DefaultRegistry()
	if err != nil {
		return nil, err
	}
	return reg.Get(key)
}

// Get returns the ruleset with the given ID or name.
func (r *Registry) Get(key string) (*Ruleset, error) {
	if rs, ok := r.byID[key]; ok {
		return rs, nil
	}
	if rs, ok := r.byName[key]; ok {
		return rs, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownRuleset, key)
}

// IDs returns the known ruleset IDs, sorted.
func (r *Registry) IDs() []string {
	ids := make([]string, 0, len(r.byID))
	for id := range r.byID {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
