package mutate

import "github.com/recast-dev/recast/pathmatch"

// Mutator decides, for every visited property, whether to keep it, replace
// it, or descend into it.
//
// ancestry runs from the root down to the property's parent, root first;
// names holds the property or index
// name followed at each depth, so names[len-1] is the property under
// decision and ancestry[len-1] is the value that owns it. Both slices are
// freshly built per visit and may be retained.
//
// A non-nil error aborts the walk; no partial result is returned.
type Mutator func(ancestry []any, names []string, value *Accessor) (Result, error)

// Transform computes a replacement leaf value. The accessor yields the
// current value when the new one depends on it.
type Transform func(value *Accessor) (any, error)

// AnchoredPathMutator composes a pattern and a leaf transform into a mutator
// that replaces exactly the values whose path matches the pattern, descends
// only while a match is still reachable, and leaves everything else alone.
// This is the canonical way to express "update the value at path P and
// nothing else".
func AnchoredPathMutator(transform Transform, pattern pathmatch.Pattern) Mutator {
	return func(ancestry []any, names []string, value *Accessor) (Result, error) {
		if pattern.MatchesSuffix(ancestry, names) {
			v, err := transform(value)
			if err != nil {
				return Result{}, err
			}
			return Changed(v), nil
		}
		if pattern.MatchesPrefix(ancestry, names) {
			return WalkChildren(), nil
		}
		return Unchanged(), nil
	}
}
