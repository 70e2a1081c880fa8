package mutate

// Kind enumerates the three outcomes a Mutator can choose for a property.
type Kind int

const (
	// KindUnchanged keeps the original property value.
	KindUnchanged Kind = iota
	// KindChanged replaces the property value; the walker does not descend
	// into the replacement.
	KindChanged
	// KindWalkChildren defers the decision to a recursive walk of the
	// property's current value.
	KindWalkChildren
)

// String returns a human-readable representation of the kind.
func (k Kind) String() string {
	switch k {
	case KindUnchanged:
		return "unchanged"
	case KindChanged:
		return "changed"
	case KindWalkChildren:
		return "walk-children"
	default:
		return "unknown"
	}
}

// Result is the outcome a Mutator returns for one visited property.
// Construct with Unchanged, Changed, or WalkChildren; the zero value is
// Unchanged.
type Result struct {
	kind        Kind
	replacement any
}

// Unchanged keeps the original value.
func Unchanged() Result {
	return Result{kind: KindUnchanged}
}

// Changed replaces the property value with v.
func Changed(v any) Result {
	return Result{kind: KindChanged, replacement: v}
}

// WalkChildren asks the walker to recurse into the property's current value
// and use the recursive result as the replacement if it differs.
func WalkChildren() Result {
	return Result{kind: KindWalkChildren}
}

// Kind returns the outcome tag.
func (r Result) Kind() Kind {
	return r.kind
}

// Replacement returns the value carried by a Changed result; nil otherwise.
func (r Result) Replacement() any {
	return r.replacement
}
