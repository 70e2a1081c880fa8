package schema

import (
	"fmt"
	"reflect"
)

// SchemaError indicates a composite declaration that cannot be used for
// mutation: a declared property has no getter, or a registration is invalid.
type SchemaError struct {
	Type     reflect.Type
	Property string
	Reason   string
}

func (e *SchemaError) Error() string {
	typ := "<unknown>"
	if e.Type != nil {
		typ = e.Type.String()
	}
	if e.Property != "" {
		return fmt.Sprintf("schema error: type %s, property %q: %s", typ, e.Property, e.Reason)
	}
	return fmt.Sprintf("schema error: type %s: %s", typ, e.Reason)
}

// ConstructionError indicates the factory for a composite type failed while
// rebuilding a mutated node.
type ConstructionError struct {
	Type  reflect.Type
	Cause error
}

func (e *ConstructionError) Error() string {
	return fmt.Sprintf("cannot construct %s: %v", e.Type, e.Cause)
}

func (e *ConstructionError) Unwrap() error {
	return e.Cause
}

// PropertyAccessError indicates reading a property's current value failed.
// It always names the offending property.
type PropertyAccessError struct {
	Type     reflect.Type
	Property string
	Cause    error
}

func (e *PropertyAccessError) Error() string {
	return fmt.Sprintf("cannot read property %q of %s: %v", e.Property, e.Type, e.Cause)
}

func (e *PropertyAccessError) Unwrap() error {
	return e.Cause
}
