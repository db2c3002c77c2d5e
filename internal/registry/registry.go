package registry

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"taskapi/internal/unit"
)

var ErrUnknownComponent = errors.New("unknown component")

type entry struct {
	def     Definition
	unit    *unit.Unit
	builtin bool
}

// Registry holds the executable components the service exposes. Built-in
// components are registered once at construction; plugin components loaded
// from the components directory can be swapped out as a group on reload.
// It is safe for concurrent use.
type Registry struct {
	mu         sync.RWMutex
	components map[string]*entry
}

// New creates a registry pre-populated with the built-in components.
func New() (*Registry, error) {
	r := &Registry{components: make(map[string]*entry)}
	for _, def := range Builtins() {
		u, err := def.Build()
		if err != nil {
			return nil, fmt.Errorf("component: build builtin %s: %w", def.ID, err)
		}
		r.components[def.ID] = &entry{def: def.Normalized(), unit: u, builtin: true}
	}
	return r, nil
}

// Builtins returns the component definitions that ship with the service.
func Builtins() []Definition {
	return []Definition{
		{
			ID:      "data-processor",
			Name:    "Data Processor",
			Version: "1.0.0",
			Operations: []OperationSpec{
				{Name: "hash", Kind: unit.KindHash},
				{Name: "validate", Kind: unit.KindValidate, Predicate: unit.PredicateObject},
				{Name: "transform", Kind: unit.KindTransform},
				{Name: "process", Kind: unit.KindProcess},
				{Name: "echo", Kind: unit.KindEcho},
			},
		},
		{
			ID:      "analyzer",
			Name:    "Analyzer",
			Version: "1.0.0",
			Operations: []OperationSpec{
				{Name: "analyze", Kind: unit.KindAnalyze},
				{Name: "execute-analysis", Kind: unit.KindExecuteAnalysis},
				{Name: "synthesize", Kind: unit.KindSynthesize},
			},
		},
		{
			ID:      "deployer",
			Name:    "Deployer",
			Version: "1.0.0",
			Operations: []OperationSpec{
				{Name: "deploy", Kind: unit.KindDeploy},
				{Name: "validate", Kind: unit.KindValidate, Predicate: unit.PredicatePresent},
			},
		},
	}
}

// Register adds a plugin component. Registering over a built-in or an
// already-registered id is an error.
func (r *Registry) Register(def Definition) error {
	u, err := def.Build()
	if err != nil {
		return err
	}
	normalized := def.Normalized()

	r.mu.Lock()
	defer r.mu.Unlock()
	if existing, ok := r.components[normalized.ID]; ok {
		if existing.builtin {
			return fmt.Errorf("component: %s shadows a builtin", normalized.ID)
		}
		return fmt.Errorf("component: duplicate id %s", normalized.ID)
	}
	r.components[normalized.ID] = &entry{def: normalized, unit: u}
	return nil
}

// Get returns the unit and definition for a component id.
func (r *Registry) Get(id string) (*unit.Unit, Definition, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.components[id]
	if !ok {
		return nil, Definition{}, fmt.Errorf("%w: %s", ErrUnknownComponent, id)
	}
	return e.unit, e.def, nil
}

// List returns every registered component definition, sorted by id.
func (r *Registry) List() []Definition {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Definition, 0, len(r.components))
	for _, e := range r.components {
		out = append(out, e.def)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// LoadDir loads component definitions from dir and registers them alongside
// the built-ins, rejecting duplicate ids across files.
func (r *Registry) LoadDir(dir string) error {
	defs, err := LoadDefinitionDir(dir)
	if err != nil {
		return err
	}
	seen := make(map[string]string, len(defs))
	for _, file := range defs {
		if prior, ok := seen[file.Definition.ID]; ok {
			return fmt.Errorf("component: duplicate id %s (%s and %s)", file.Definition.ID, prior, file.Path)
		}
		seen[file.Definition.ID] = file.Path
		if err := r.Register(file.Definition); err != nil {
			return fmt.Errorf("component: register from %s: %w", file.Path, err)
		}
	}
	return nil
}

// Reload atomically replaces all plugin components with the definitions
// currently in dir. Built-ins are untouched. On any load or build error the
// registry keeps its previous state.
func (r *Registry) Reload(dir string) error {
	defs, err := LoadDefinitionDir(dir)
	if err != nil {
		return err
	}

	fresh := make(map[string]*entry, len(defs))
	seen := make(map[string]string, len(defs))
	for _, file := range defs {
		if prior, ok := seen[file.Definition.ID]; ok {
			return fmt.Errorf("component: duplicate id %s (%s and %s)", file.Definition.ID, prior, file.Path)
		}
		seen[file.Definition.ID] = file.Path
		u, err := file.Definition.Build()
		if err != nil {
			return fmt.Errorf("component: build from %s: %w", file.Path, err)
		}
		fresh[file.Definition.ID] = &entry{def: file.Definition.Normalized(), unit: u}
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	for id := range fresh {
		if existing, ok := r.components[id]; ok && existing.builtin {
			return fmt.Errorf("component: %s shadows a builtin", id)
		}
	}
	for id, e := range r.components {
		if !e.builtin {
			delete(r.components, id)
		}
	}
	for id, e := range fresh {
		r.components[id] = e
	}
	return nil
}
