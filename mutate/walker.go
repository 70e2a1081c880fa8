// Package mutate implements structural, minimal-copy mutation of immutable
// value trees. A walk visits every declared property of a composite value,
// asks a caller-supplied Mutator what to do with it, and rebuilds only the
// nodes beneath which something actually changed; every untouched subtree is
// shared with the original by reference.
package mutate

import (
	"fmt"
	"log/slog"
	"reflect"
	"strconv"

	"github.com/recast-dev/recast/schema"
)

// Walker runs depth-first mutation walks over values whose composite types
// are registered in a schema.Registry. A Walker keeps no per-walk state, so
// a single instance may serve concurrent walks over unrelated roots.
type Walker struct {
	registry *schema.Registry
	log      *slog.Logger
}

// Option configures a Walker.
type Option func(*Walker)

// WithLogger routes the walker's diagnostics to log.
func WithLogger(log *slog.Logger) Option {
	return func(w *Walker) { w.log = log }
}

// New creates a Walker backed by reg.
func New(reg *schema.Registry, opts ...Option) *Walker {
	w := &Walker{registry: reg, log: slog.Default()}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// MutateDeep walks root depth-first under the control of m and returns
// either root itself (reference-identical) when nothing changed, or a newly
// constructed equivalent value with the changed parts replaced. A nil root
// is returned verbatim without invoking the mutator.
func (w *Walker) MutateDeep(root any, m Mutator) (any, error) {
	return w.mutateNode(nil, nil, root, m)
}

// slot tracks the fate of one property (or container element) during the
// visit of its parent node.
type slot struct {
	name        string
	current     *Accessor
	replacement any
	changed     bool
	walk        bool
}

func (s *slot) apply(res Result) {
	switch res.Kind() {
	case KindChanged:
		s.changed = true
		s.replacement = res.Replacement()
	case KindWalkChildren:
		s.walk = true
	}
}

// finalValue resolves the value the slot contributes to reconstruction.
func (s *slot) finalValue() (any, error) {
	if s.changed {
		return s.replacement, nil
	}
	return s.current.Get()
}

func (w *Walker) mutateNode(ancestry []any, names []string, node any, m Mutator) (any, error) {
	if node == nil {
		return nil, nil
	}
	// A typed nil pointer has no children to visit.
	if rv := reflect.ValueOf(node); rv.Kind() == reflect.Pointer && rv.IsNil() {
		return node, nil
	}

	def, ok := w.registry.Lookup(node)
	if !ok {
		return w.mutateUnregistered(ancestry, names, node, m)
	}

	childAncestry := pushAncestor(ancestry, node)

	// Phase one: classify every declared property, in schema order.
	slots := make([]*slot, 0, len(def.Properties))
	for _, prop := range def.Properties {
		if prop.Get == nil {
			return nil, &schema.SchemaError{Type: def.Type, Property: prop.Name, Reason: "no getter registered"}
		}

		get, name := prop.Get, prop.Name
		s := &slot{
			name: name,
			current: NewAccessor(func() (any, error) {
				v, err := get(node)
				if err != nil {
					return nil, &schema.PropertyAccessError{Type: def.Type, Property: name, Cause: err}
				}
				return v, nil
			}),
		}

		res, err := m(childAncestry, pushName(names, name), s.current)
		if err != nil {
			return nil, err
		}
		s.apply(res)
		slots = append(slots, s)
	}

	// Phase two: deferred descents, in first-visit order.
	if err := w.walkDeferred(childAncestry, names, slots, m); err != nil {
		return nil, err
	}

	return w.rebuild(node, def, slots)
}

// walkDeferred recurses into every slot marked WalkChildren and records the
// result as a change when it is reference-distinct from the current value.
func (w *Walker) walkDeferred(childAncestry []any, names []string, slots []*slot, m Mutator) error {
	for _, s := range slots {
		if !s.walk {
			continue
		}
		child, err := s.current.Get()
		if err != nil {
			return err
		}
		updated, err := w.mutateNode(childAncestry, pushName(names, s.name), child, m)
		if err != nil {
			return err
		}
		// Identity is the sole change signal: the values are immutable,
		// so the same reference means the same contents.
		if !identical(updated, child) {
			s.changed = true
			s.replacement = updated
		}
	}
	return nil
}

// rebuild constructs a new composite from the slots' final values when any
// of them changed; otherwise the original node is returned untouched. A
// reconstruction always passes every property, changed or not.
func (w *Walker) rebuild(node any, def schema.Definition, slots []*slot) (any, error) {
	changed := false
	for _, s := range slots {
		if s.changed {
			changed = true
			break
		}
	}
	if !changed {
		return node, nil
	}

	args := make([]any, len(slots))
	for i, s := range slots {
		v, err := s.finalValue()
		if err != nil {
			return nil, err
		}
		args[i] = v
	}

	rebuilt, err := def.Factory(args)
	if err != nil {
		return nil, &schema.ConstructionError{Type: def.Type, Cause: err}
	}
	return rebuilt, nil
}

// mutateUnregistered handles nodes without a schema. Ordered containers get
// the element-wise walk; everything else is an opaque leaf and passes
// through unchanged with a diagnostic.
func (w *Walker) mutateUnregistered(ancestry []any, names []string, node any, m Mutator) (any, error) {
	rt := reflect.TypeOf(node)
	if rt.Kind() == reflect.Slice && rt.Elem().Kind() != reflect.Uint8 {
		return w.MutateDeepList(ancestry, names, node, m)
	}

	w.log.Warn("no schema registered and no container support; keeping existing value",
		"type", fmt.Sprintf("%T", node))
	return node, nil
}

// MutateDeepList walks an ordered container, treating each element as a
// property named by its decimal index and applying the same three-outcome
// protocol per element. If any element changed, a fresh slice of the same
// type is built, preserving order and sharing unchanged elements; otherwise
// the original container is returned. MutateDeep routes every unregistered
// slice here; the method is exported for mutators that drive container
// walks directly.
func (w *Walker) MutateDeepList(ancestry []any, names []string, list any, m Mutator) (any, error) {
	rv := reflect.ValueOf(list)
	if rv.Kind() != reflect.Slice {
		return nil, &schema.SchemaError{Type: reflect.TypeOf(list), Reason: "not an ordered container"}
	}

	childAncestry := pushAncestor(ancestry, list)

	n := rv.Len()
	slots := make([]*slot, 0, n)
	for i := 0; i < n; i++ {
		elem := rv.Index(i).Interface()
		s := &slot{
			name:    strconv.Itoa(i),
			current: NewAccessor(func() (any, error) { return elem, nil }),
		}

		res, err := m(childAncestry, pushName(names, s.name), s.current)
		if err != nil {
			return nil, err
		}
		s.apply(res)
		slots = append(slots, s)
	}

	if err := w.walkDeferred(childAncestry, names, slots, m); err != nil {
		return nil, err
	}

	changed := false
	for _, s := range slots {
		if s.changed {
			changed = true
			break
		}
	}
	if !changed {
		return list, nil
	}

	out := reflect.MakeSlice(rv.Type(), n, n)
	elemType := rv.Type().Elem()
	for i, s := range slots {
		v, err := s.finalValue()
		if err != nil {
			return nil, err
		}
		if v == nil {
			continue // leave the zero value in place
		}
		rvv := reflect.ValueOf(v)
		if !rvv.Type().AssignableTo(elemType) {
			return nil, &schema.ConstructionError{
				Type:  rv.Type(),
				Cause: fmt.Errorf("element %d: %T is not assignable to %s", i, v, elemType),
			}
		}
		out.Index(i).Set(rvv)
	}
	return out.Interface(), nil
}

// pushAncestor and pushName return fresh slices so sibling visits never
// share backing arrays with each other or with the caller.
func pushAncestor(ancestry []any, node any) []any {
	out := make([]any, len(ancestry)+1)
	copy(out, ancestry)
	out[len(ancestry)] = node
	return out
}

func pushName(names []string, name string) []string {
	out := make([]string, len(names)+1)
	copy(out, names)
	out[len(names)] = name
	return out
}

// identical reports reference identity for the kinds the walker compares.
// Slices compare by backing array and length; values of non-comparable types
// are conservatively treated as distinct.
func identical(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	ra := reflect.ValueOf(a)
	rb := reflect.ValueOf(b)
	if ra.Type() != rb.Type() {
		return false
	}
	switch ra.Kind() {
	case reflect.Slice:
		return ra.Len() == rb.Len() && (ra.Len() == 0 || ra.Pointer() == rb.Pointer())
	case reflect.Map, reflect.Func, reflect.Chan:
		return ra.Pointer() == rb.Pointer()
	default:
		if !ra.Comparable() {
			return false
		}
		return a == b
	}
}
