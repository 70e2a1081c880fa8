// Package schema holds the registration table that tells the tree walker
// which named properties a composite type exposes, how each one is read,
// and how the type is rebuilt from property values. Registration replaces
// the reflection-and-annotation lookup a dynamic runtime would use: every
// composite type is declared explicitly, once, at startup.
package schema

import (
	"fmt"
	"reflect"
	"sync"
)

// Getter reads a single named property from a composite instance.
type Getter func(node any) (any, error)

// Factory builds a new composite instance from property values given in
// declaration order.
type Factory func(args []any) (any, error)

// Property pairs a property name with the getter that reads it.
type Property struct {
	Name string
	Get  Getter
}

// Definition describes one composite type: its ordered property list and
// the factory that rebuilds it.
//
// The property declaration order MUST equal the factory argument order.
// Only arity is verified; a wrong order produces silently wrong
// reconstructions.
type Definition struct {
	// Type is the runtime type the definition applies to.
	Type reflect.Type
	// Name is an optional alias for name-based lookups (e.g. rules files).
	Name string
	// Properties lists the type's properties in factory argument order.
	Properties []Property
	// Factory rebuilds an instance from property values.
	Factory Factory
}

// Registry maps runtime types to their definitions. Register everything at
// startup; lookups are safe for concurrent use afterwards.
type Registry struct {
	mu     sync.RWMutex
	byType map[reflect.Type]Definition
	byName map[string]reflect.Type
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		byType: make(map[reflect.Type]Definition),
		byName: make(map[string]reflect.Type),
	}
}

// Register adds a composite type definition. Registering the same type or
// alias twice is an error, as is a definition without a type or factory.
func (r *Registry) Register(def Definition) error {
	if def.Type == nil {
		return &SchemaError{Reason: "definition has no type"}
	}
	if def.Factory == nil {
		return &SchemaError{Type: def.Type, Reason: "definition has no factory"}
	}

	seen := make(map[string]bool, len(def.Properties))
	for _, prop := range def.Properties {
		if prop.Name == "" {
			return &SchemaError{Type: def.Type, Reason: "property with empty name"}
		}
		if seen[prop.Name] {
			return &SchemaError{Type: def.Type, Property: prop.Name, Reason: "duplicate property"}
		}
		seen[prop.Name] = true
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byType[def.Type]; exists {
		return &SchemaError{Type: def.Type, Reason: "type already registered"}
	}
	if def.Name != "" {
		if _, exists := r.byName[def.Name]; exists {
			return &SchemaError{Type: def.Type, Reason: fmt.Sprintf("alias %q already registered", def.Name)}
		}
		r.byName[def.Name] = def.Type
	}
	r.byType[def.Type] = def
	return nil
}

// Lookup returns the definition for node's runtime type, if one is
// registered.
func (r *Registry) Lookup(node any) (Definition, bool) {
	if node == nil {
		return Definition{}, false
	}
	return r.Definition(reflect.TypeOf(node))
}

// Definition returns the definition registered for t.
func (r *Registry) Definition(t reflect.Type) (Definition, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	def, ok := r.byType[t]
	return def, ok
}

// TypeNamed resolves a registered alias to its runtime type.
func (r *Registry) TypeNamed(name string) (reflect.Type, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.byName[name]
	return t, ok
}
