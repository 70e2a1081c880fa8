// Package document defines the immutable document tree recast operates on:
// a Document holds named Sections, a Section holds key/value Entries and
// nested Sections. All node types carry unexported fields, copy incoming
// slices, and rebuild through factories registered with the schema package,
// so a mutation walk can share untouched subtrees safely.
package document

import (
	"fmt"
	"reflect"

	"github.com/recast-dev/recast/schema"
)

// Document is the root of a document tree.
type Document struct {
	title    string
	sections []*Section
}

// NewDocument creates a document; the section slice is copied.
func NewDocument(title string, sections []*Section) *Document {
	return &Document{title: title, sections: copySlice(sections)}
}

// Title returns the document title.
func (d *Document) Title() string { return d.title }

// Sections returns the document's top-level sections.
func (d *Document) Sections() []*Section { return d.sections }

// Section is a named group of entries and nested sections.
type Section struct {
	name     string
	entries  []*Entry
	sections []*Section
}

// NewSection creates a section; both slices are copied.
func NewSection(name string, entries []*Entry, sections []*Section) *Section {
	return &Section{name: name, entries: copySlice(entries), sections: copySlice(sections)}
}

// Name returns the section name.
func (s *Section) Name() string { return s.name }

// Entries returns the section's entries.
func (s *Section) Entries() []*Entry { return s.entries }

// Sections returns the nested sections.
func (s *Section) Sections() []*Section { return s.sections }

// Entry is a single key/value pair. The value is an opaque scalar payload
// as far as the tree walk is concerned.
type Entry struct {
	key   string
	value any
}

// NewEntry creates an entry.
func NewEntry(key string, value any) *Entry {
	return &Entry{key: key, value: value}
}

// Key returns the entry key.
func (e *Entry) Key() string { return e.key }

// Value returns the entry value.
func (e *Entry) Value() any { return e.value }

func copySlice[T any](in []T) []T {
	out := make([]T, len(in))
	copy(out, in)
	return out
}

// arg asserts the type of a factory argument, tolerating nil.
func arg[T any](args []any, i int, name string) (T, error) {
	var zero T
	if args[i] == nil {
		return zero, nil
	}
	v, ok := args[i].(T)
	if !ok {
		return zero, fmt.Errorf("%s: want %T, have %T", name, zero, args[i])
	}
	return v, nil
}

// RegisterSchemas declares every document node type in reg. Property order
// matches the constructor argument order of each type.
func RegisterSchemas(reg *schema.Registry) error {
	if err := reg.Register(schema.Definition{
		Type: reflect.TypeOf(&Document{}),
		Name: "document",
		Properties: []schema.Property{
			{Name: "title", Get: func(n any) (any, error) { return n.(*Document).title, nil }},
			{Name: "sections", Get: func(n any) (any, error) { return n.(*Document).sections, nil }},
		},
		Factory: func(args []any) (any, error) {
			if len(args) != 2 {
				return nil, fmt.Errorf("document wants 2 arguments, have %d", len(args))
			}
			title, err := arg[string](args, 0, "title")
			if err != nil {
				return nil, err
			}
			sections, err := arg[[]*Section](args, 1, "sections")
			if err != nil {
				return nil, err
			}
			return NewDocument(title, sections), nil
		},
	}); err != nil {
		return err
	}

	if err := reg.Register(schema.Definition{
		Type: reflect.TypeOf(&Section{}),
		Name: "section",
		Properties: []schema.Property{
			{Name: "name", Get: func(n any) (any, error) { return n.(*Section).name, nil }},
			{Name: "entries", Get: func(n any) (any, error) { return n.(*Section).entries, nil }},
			{Name: "sections", Get: func(n any) (any, error) { return n.(*Section).sections, nil }},
		},
		Factory: func(args []any) (any, error) {
			if len(args) != 3 {
				return nil, fmt.Errorf("section wants 3 arguments, have %d", len(args))
			}
			name, err := arg[string](args, 0, "name")
			if err != nil {
				return nil, err
			}
			entries, err := arg[[]*Entry](args, 1, "entries")
			if err != nil {
				return nil, err
			}
			sections, err := arg[[]*Section](args, 2, "sections")
			if err != nil {
				return nil, err
			}
			return NewSection(name, entries, sections), nil
		},
	}); err != nil {
		return err
	}

	return reg.Register(schema.Definition{
		Type: reflect.TypeOf(&Entry{}),
		Name: "entry",
		Properties: []schema.Property{
			{Name: "key", Get: func(n any) (any, error) { return n.(*Entry).key, nil }},
			{Name: "value", Get: func(n any) (any, error) { return n.(*Entry).value, nil }},
		},
		Factory: func(args []any) (any, error) {
			if len(args) != 2 {
				return nil, fmt.Errorf("entry wants 2 arguments, have %d", len(args))
			}
			key, err := arg[string](args, 0, "key")
			if err != nil {
				return nil, err
			}
			return NewEntry(key, args[1]), nil
		},
	})
}
