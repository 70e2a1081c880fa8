// Package pathmatch implements the ancestor-type / property-name pattern
// language used to target nodes in a value tree. A pattern is an ordered
// list of (type, name) entries; either side of an entry may be a wildcard.
//
// Patterns match in two modes. MatchesSuffix anchors the pattern to the end
// of a path ("this kind of node, however deep it sits"); MatchesPrefix
// anchors it to the root and answers whether descending further can still
// reach a suffix match, which lets a mutator prune unrelated subtrees.
package pathmatch

import (
	"fmt"
	"reflect"
)

type listMarker struct{}

// List matches any ordered container (slice) regardless of element type when
// used as the type side of a pattern entry.
var List = reflect.TypeOf(listMarker{})

// TypeOf returns the reflect.Type for T. Unlike reflect.TypeOf on a value,
// it also works for interface types.
func TypeOf[T any]() reflect.Type {
	return reflect.TypeOf((*T)(nil)).Elem()
}

// Entry is one depth level of a Pattern. A nil Type matches any ancestor;
// AnyName matches any property or index name. An Entry with AnyName unset
// matches Name exactly.
type Entry struct {
	Type    reflect.Type
	Name    string
	AnyName bool
}

func (e Entry) matchesType(ancestor any) bool {
	if e.Type == nil {
		return true
	}
	if ancestor == nil {
		return false
	}
	at := reflect.TypeOf(ancestor)
	if e.Type == List {
		return at.Kind() == reflect.Slice
	}
	return at.AssignableTo(e.Type)
}

func (e Entry) matchesName(name string) bool {
	return e.AnyName || e.Name == name
}

// Pattern is an ordered sequence of entries matched against parallel
// ancestry and property-name paths. Construct with New or Compile; the zero
// Pattern matches nothing.
type Pattern struct {
	entries []Entry
}

// New builds a Pattern from strongly typed entries.
func New(entries ...Entry) (Pattern, error) {
	if len(entries) == 0 {
		return Pattern{}, &InvalidPatternError{Position: -1, Reason: "pattern needs at least one entry"}
	}
	cp := make([]Entry, len(entries))
	copy(cp, entries)
	return Pattern{entries: cp}, nil
}

// MustNew is New for patterns known to be valid. It panics on error and is
// meant for package-level pattern constants and tests.
func MustNew(entries ...Entry) Pattern {
	p, err := New(entries...)
	if err != nil {
		panic(err)
	}
	return p
}

// Compile builds a Pattern from an alternating type, name, type, name, ...
// argument list. Type positions accept a reflect.Type or nil (wildcard);
// name positions accept a string or nil (wildcard). A trailing type without
// a name leaves that entry's name a wildcard.
//
// Malformed argument lists fail here, at construction time, so a bad
// pattern never reaches a walk.
func Compile(args ...any) (Pattern, error) {
	if len(args) == 0 {
		return Pattern{}, &InvalidPatternError{Position: -1, Reason: "pattern needs at least one type, name pair"}
	}

	entries := make([]Entry, 0, (len(args)+1)/2)
	for i := 0; i < len(args); i += 2 {
		var e Entry
		switch t := args[i].(type) {
		case nil:
			// type wildcard
		case reflect.Type:
			e.Type = t
		default:
			return Pattern{}, &InvalidPatternError{
				Position: i,
				Reason:   fmt.Sprintf("want reflect.Type or nil, have %T", args[i]),
			}
		}

		if i+1 < len(args) {
			switch n := args[i+1].(type) {
			case nil:
				e.AnyName = true
			case string:
				e.Name = n
			default:
				return Pattern{}, &InvalidPatternError{
					Position: i + 1,
					Reason:   fmt.Sprintf("want string or nil, have %T", args[i+1]),
				}
			}
		} else {
			// Odd argument count: the deepest entry keeps a name
			// wildcard.
			e.AnyName = true
		}
		entries = append(entries, e)
	}
	return Pattern{entries: entries}, nil
}

// MustCompile is Compile for argument lists known to be valid.
func MustCompile(args ...any) Pattern {
	p, err := Compile(args...)
	if err != nil {
		panic(err)
	}
	return p
}

// Len reports the pattern depth.
func (p Pattern) Len() int {
	return len(p.entries)
}

// MatchesSuffix reports whether the tail of the ancestry/property-name pair
// satisfies the pattern entrywise. A non-wildcard type entry matches iff the
// ancestor's runtime type is assignable to it; a non-wildcard name entry
// matches on exact equality. A pattern deeper than the paths never matches.
func (p Pattern) MatchesSuffix(ancestry []any, names []string) bool {
	k := len(p.entries)
	if k == 0 || len(ancestry) < k || len(names) < k {
		return false
	}
	ao := len(ancestry) - k
	no := len(names) - k
	for i, e := range p.entries {
		if !e.matchesType(ancestry[ao+i]) {
			return false
		}
		if !e.matchesName(names[no+i]) {
			return false
		}
	}
	return true
}

// MatchesPrefix reports whether every depth visited so far satisfies the
// pattern from the root, i.e. whether the target can still be reached by
// descending. Once the current depth exceeds the pattern length the answer
// is false: the target lies at or above the pattern's depth.
func (p Pattern) MatchesPrefix(ancestry []any, names []string) bool {
	if len(p.entries) == 0 || len(ancestry) > len(p.entries) {
		return false
	}
	for i, ancestor := range ancestry {
		e := p.entries[i]
		if !e.matchesType(ancestor) {
			return false
		}
		if i < len(names) && !e.matchesName(names[i]) {
			return false
		}
	}
	return true
}
