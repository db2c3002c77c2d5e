package unit

import (
	"errors"
	"fmt"
)

// Package unit defines processing units: named bundles of operations that a
// component exposes. Operations are synchronous pure functions of their
// parameter; anything that touches I/O lives in the service layer.

var (
	ErrUnknownOperation = errors.New("unknown operation")
	ErrDuplicateOp      = errors.New("duplicate operation")
)

// Operation consumes an arbitrary decoded parameter and produces a result
// value to be wrapped in a response envelope.
type Operation func(param any) (any, error)

// Unit is a named, ordered set of operations.
type Unit struct {
	name  string
	ops   map[string]Operation
	order []string
}

// New creates an empty unit with the given name.
func New(name string) *Unit {
	return &Unit{name: name, ops: make(map[string]Operation)}
}

// Name returns the unit name.
func (u *Unit) Name() string { return u.name }

// Add registers an operation under the given name. Registration order is
// preserved for listings.
func (u *Unit) Add(name string, op Operation) error {
	if name == "" {
		return fmt.Errorf("unit %s: operation name is required", u.name)
	}
	if op == nil {
		return fmt.Errorf("unit %s: operation %s is nil", u.name, name)
	}
	if _, ok := u.ops[name]; ok {
		return fmt.Errorf("unit %s: %w: %s", u.name, ErrDuplicateOp, name)
	}
	u.ops[name] = op
	u.order = append(u.order, name)
	return nil
}

// Operations lists operation names in registration order.
func (u *Unit) Operations() []string {
	out := make([]string, len(u.order))
	copy(out, u.order)
	return out
}

// Has reports whether the unit exposes the named operation.
func (u *Unit) Has(name string) bool {
	_, ok := u.ops[name]
	return ok
}

// Invoke runs the named operation against param.
func (u *Unit) Invoke(name string, param any) (any, error) {
	op, ok := u.ops[name]
	if !ok {
		return nil, fmt.Errorf("unit %s: %w: %s", u.name, ErrUnknownOperation, name)
	}
	return op(param)
}
