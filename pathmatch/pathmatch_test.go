package pathmatch

import (
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type chest struct {
	items []*thing
}

type thing struct {
	kind string
}

type labelled interface {
	Label() string
}

func (t *thing) Label() string { return t.kind }

func Test_Compile_Alternation(t *testing.T) {
	tests := []struct {
		name    string
		args    []any
		wantLen int
		wantErr bool
	}{
		{"single pair", []any{TypeOf[*chest](), "items"}, 1, false},
		{"two pairs", []any{TypeOf[*chest](), "items", List, nil}, 2, false},
		{"all wildcards", []any{nil, nil, nil, nil}, 2, false},
		{"trailing type keeps name wildcard", []any{TypeOf[*chest](), "items", List}, 2, false},
		{"empty", nil, 0, true},
		{"string in type position", []any{"not-a-type", "items"}, 0, true},
		{"type in name position", []any{TypeOf[*chest](), TypeOf[*thing]()}, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := Compile(tt.args...)
			if tt.wantErr {
				var patternErr *InvalidPatternError
				require.ErrorAs(t, err, &patternErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantLen, p.Len())
		})
	}
}

func Test_Compile_ErrorPosition(t *testing.T) {
	_, err := Compile(TypeOf[*chest](), nil, "oops", nil)

	var patternErr *InvalidPatternError
	require.ErrorAs(t, err, &patternErr)
	assert.Equal(t, 2, patternErr.Position)
}

func Test_New_RejectsEmptyPattern(t *testing.T) {
	_, err := New()

	var patternErr *InvalidPatternError
	assert.ErrorAs(t, err, &patternErr)
}

func testPath() ([]any, []string) {
	c := &chest{items: []*thing{{kind: "gem"}, {kind: "coin"}}}
	return []any{c, c.items}, []string{"items", "0"}
}

func Test_MatchesSuffix_Singles(t *testing.T) {
	ancestry, names := testPath()

	tests := []struct {
		name string
		args []any
		want bool
	}{
		{"matching tail", []any{List, "0"}, true},
		{"wrong name", []any{List, "no_such_thing"}, false},
		{"wrong type", []any{TypeOf[string](), "0"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := MustCompile(tt.args...)
			assert.Equal(t, tt.want, p.MatchesSuffix(ancestry, names))
		})
	}
}

func Test_MatchesSuffix_Wildcards(t *testing.T) {
	ancestry, names := testPath()

	tests := []struct {
		name string
		args []any
		want bool
	}{
		{"both wild", []any{nil, nil}, true},
		{"type only", []any{List, nil}, true},
		{"name only", []any{nil, "0"}, true},
		{"full depth all wild", []any{nil, nil, nil, nil}, true},
		{"types with wild names", []any{TypeOf[*chest](), nil, List, nil}, true},
		{"names with wild types", []any{nil, "items", nil, "0"}, true},
		{"deeper than path", []any{nil, nil, nil, nil, nil, nil}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := MustCompile(tt.args...)
			assert.Equal(t, tt.want, p.MatchesSuffix(ancestry, names))
		})
	}
}

func Test_MatchesSuffix_InterfaceAssignability(t *testing.T) {
	th := &thing{kind: "gem"}
	ancestry := []any{th}
	names := []string{"kind"}

	p := MustCompile(TypeOf[labelled](), "kind")
	assert.True(t, p.MatchesSuffix(ancestry, names), "concrete ancestor must match interface entry")

	p = MustCompile(TypeOf[interface{ NotImplemented() }](), "kind")
	assert.False(t, p.MatchesSuffix(ancestry, names))
}

func Test_MatchesPrefix(t *testing.T) {
	c := &chest{items: []*thing{{kind: "gem"}}}
	pattern := MustCompile(TypeOf[*chest](), "items", List, "0", TypeOf[*thing](), "kind")

	tests := []struct {
		name     string
		ancestry []any
		names    []string
		want     bool
	}{
		{"root property on path", []any{c}, []string{"items"}, true},
		{"root property off path", []any{c}, []string{"lid"}, false},
		{"second level on path", []any{c, c.items}, []string{"items", "0"}, true},
		{"second level off path", []any{c, c.items}, []string{"items", "1"}, false},
		{"full depth", []any{c, c.items, c.items[0]}, []string{"items", "0", "kind"}, true},
		{"beyond pattern depth", []any{c, c.items, c.items[0], c.items[0]}, []string{"items", "0", "kind", "x"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, pattern.MatchesPrefix(tt.ancestry, tt.names))
		})
	}
}

func Test_MatchesPrefix_TrailingNameWildcard(t *testing.T) {
	// An odd argument list leaves the deepest name unconstrained, so any
	// property of a matching deepest ancestor stays on the path.
	c := &chest{items: []*thing{{kind: "gem"}}}
	pattern := MustCompile(TypeOf[*chest](), "items", List)

	assert.True(t, pattern.MatchesPrefix([]any{c, c.items}, []string{"items", "0"}))
	assert.True(t, pattern.MatchesPrefix([]any{c, c.items}, []string{"items", "17"}))
	assert.False(t, pattern.MatchesPrefix([]any{c, c.items}, []string{"lid", "0"}))
}

func Test_MatchesSuffix_ZeroPattern(t *testing.T) {
	ancestry, names := testPath()

	var p Pattern
	assert.False(t, p.MatchesSuffix(ancestry, names))
	assert.False(t, p.MatchesPrefix(ancestry, names))
}

func Test_List_MatchesAnySliceType(t *testing.T) {
	tests := []struct {
		name     string
		ancestor any
		want     bool
	}{
		{"typed slice", []*thing{}, true},
		{"string slice", []string{"a"}, true},
		{"not a slice", &chest{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := Entry{Type: List}
			assert.Equal(t, tt.want, e.matchesType(tt.ancestor))
		})
	}
}

func Test_TypeOf(t *testing.T) {
	assert.Equal(t, reflect.TypeOf(&chest{}), TypeOf[*chest]())
	assert.Equal(t, reflect.Interface, TypeOf[labelled]().Kind())
}
