package registry

import (
	"fmt"
	"strings"

	"taskapi/internal/unit"
)

// Definition describes a processing component loaded from YAML.
//
// The struct mirrors the on-disk schema under the components directory and is
// intentionally narrow so the registry can validate component metadata before
// exposing it over the API.
type Definition struct {
	ID          string          `json:"id" yaml:"id"`
	Name        string          `json:"name,omitempty" yaml:"name,omitempty"`
	Description string          `json:"description,omitempty" yaml:"description,omitempty"`
	Version     string          `json:"version" yaml:"version"`
	Operations  []OperationSpec `json:"operations" yaml:"operations"`
}

// OperationSpec binds an exposed operation name to a built-in operation kind.
// Predicate selects the validation variant and is only meaningful for the
// validate kind.
type OperationSpec struct {
	Name      string `json:"name" yaml:"name"`
	Kind      string `json:"kind" yaml:"kind"`
	Predicate string `json:"predicate,omitempty" yaml:"predicate,omitempty"`
}

// Normalized returns a trimmed, copy-on-write variant of the definition.
func (def Definition) Normalized() Definition {
	clone := Definition{
		ID:          strings.TrimSpace(def.ID),
		Name:        strings.TrimSpace(def.Name),
		Description: strings.TrimSpace(def.Description),
		Version:     strings.TrimSpace(def.Version),
	}
	if len(def.Operations) > 0 {
		clone.Operations = make([]OperationSpec, len(def.Operations))
		for i, op := range def.Operations {
			clone.Operations[i] = OperationSpec{
				Name:      strings.TrimSpace(op.Name),
				Kind:      strings.TrimSpace(strings.ToLower(op.Kind)),
				Predicate: strings.TrimSpace(strings.ToLower(op.Predicate)),
			}
		}
	}
	return clone
}

// Validate ensures the component definition is well-formed and references
// known operation kinds.
func (def Definition) Validate() error {
	normalized := def.Normalized()
	if normalized.ID == "" {
		return fmt.Errorf("component: id is required")
	}
	if normalized.Version == "" {
		return fmt.Errorf("component %s: version is required", normalized.ID)
	}
	if len(normalized.Operations) == 0 {
		return fmt.Errorf("component %s: at least one operation is required", normalized.ID)
	}
	seen := make(map[string]struct{}, len(normalized.Operations))
	for _, op := range normalized.Operations {
		if op.Name == "" {
			return fmt.Errorf("component %s: operation name is required", normalized.ID)
		}
		if _, ok := seen[op.Name]; ok {
			return fmt.Errorf("component %s: duplicate operation %s", normalized.ID, op.Name)
		}
		seen[op.Name] = struct{}{}
		if _, err := unit.ForKind(op.Kind, op.Predicate); err != nil {
			return fmt.Errorf("component %s: operation %s: %w", normalized.ID, op.Name, err)
		}
	}
	return nil
}

// Build materializes the definition into an executable unit.
func (def Definition) Build() (*unit.Unit, error) {
	normalized := def.Normalized()
	if err := normalized.Validate(); err != nil {
		return nil, err
	}
	u := unit.New(normalized.ID)
	for _, spec := range normalized.Operations {
		op, err := unit.ForKind(spec.Kind, spec.Predicate)
		if err != nil {
			return nil, fmt.Errorf("component %s: operation %s: %w", normalized.ID, spec.Name, err)
		}
		if err := u.Add(spec.Name, op); err != nil {
			return nil, err
		}
	}
	return u, nil
}
