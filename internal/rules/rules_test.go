package rules

import (
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/recast-dev/recast/internal/config"
	"github.com/recast-dev/recast/internal/document"
	"github.com/recast-dev/recast/mutate"
	"github.com/recast-dev/recast/schema"
)

func newTestRegistry(t *testing.T) *schema.Registry {
	t.Helper()
	reg := schema.NewRegistry()
	require.NoError(t, document.RegisterSchemas(reg))
	return reg
}

func newTestWalker(t *testing.T, reg *schema.Registry) *mutate.Walker {
	t.Helper()
	return mutate.New(reg, mutate.WithLogger(slog.New(slog.DiscardHandler)))
}

// buildDoc returns a document with one "server" section holding host and
// port entries.
func buildDoc() *document.Document {
	return document.NewDocument("config", []*document.Section{
		document.NewSection("server",
			[]*document.Entry{
				document.NewEntry("host", "localhost"),
				document.NewEntry("port", 8080),
			},
			nil,
		),
	})
}

// entryValueSteps is the full path from the document root down to the value
// of every entry in a top-level section.
func entryValueSteps() []config.Step {
	return []config.Step{
		{Type: "document", Name: "sections"},
		{Type: "list"},
		{Type: "section", Name: "entries"},
		{Type: "list"},
		{Type: "entry", Name: "value"},
	}
}

func Test_CompileRule_UnknownType(t *testing.T) {
	reg := newTestRegistry(t)

	_, err := CompileRule(config.Rule{
		Name:  "bad",
		Match: []config.Step{{Type: "widget", Name: "size"}},
		Set:   "1",
	}, reg)

	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown type "widget"`)
}

func Test_CompileRule_BadSetExpression(t *testing.T) {
	reg := newTestRegistry(t)

	_, err := CompileRule(config.Rule{
		Name:  "bad",
		Match: entryValueSteps(),
		Set:   "value +",
	}, reg)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "compiling set expression")
}

func Test_CompileRule_BadWhenExpression(t *testing.T) {
	reg := newTestRegistry(t)

	_, err := CompileRule(config.Rule{
		Name:  "bad",
		Match: entryValueSteps(),
		When:  "key ==",
		Set:   "1",
	}, reg)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "compiling when expression")
}

func Test_Compile_AllRules(t *testing.T) {
	reg := newTestRegistry(t)

	rs := &config.RuleSet{
		Version: "1.0.0",
		Rules: []config.Rule{
			{Name: "first", Match: entryValueSteps(), Set: "1"},
			{Name: "second", Match: entryValueSteps(), Set: "2"},
		},
	}

	compiled, err := Compile(rs, reg)
	require.NoError(t, err)
	require.Len(t, compiled, 2)
	assert.Equal(t, "first", compiled[0].Name())
	assert.Equal(t, "second", compiled[1].Name())
}

func Test_Mutator_ReplacesMatchingValue(t *testing.T) {
	reg := newTestRegistry(t)
	walker := newTestWalker(t, reg)
	doc := buildDoc()

	rule, err := CompileRule(config.Rule{
		Name:  "bump-port",
		Match: entryValueSteps(),
		When:  `key == "port"`,
		Set:   "9090",
	}, reg)
	require.NoError(t, err)

	result, err := walker.MutateDeep(doc, rule.Mutator())
	require.NoError(t, err)

	updated, ok := result.(*document.Document)
	require.True(t, ok)
	require.NotSame(t, doc, updated)
	assert.Equal(t, "config", updated.Title())

	entries := updated.Sections()[0].Entries()
	require.Len(t, entries, 2)
	assert.Equal(t, 9090, entries[1].Value())

	// The host entry missed the when guard, so its node is shared with
	// the input tree.
	assert.Same(t, doc.Sections()[0].Entries()[0], entries[0])
}

func Test_Mutator_WhenGuardSkipsEverything(t *testing.T) {
	reg := newTestRegistry(t)
	walker := newTestWalker(t, reg)
	doc := buildDoc()

	rule, err := CompileRule(config.Rule{
		Name:  "never",
		Match: entryValueSteps(),
		When:  `key == "timeout"`,
		Set:   `"unused"`,
	}, reg)
	require.NoError(t, err)

	result, err := walker.MutateDeep(doc, rule.Mutator())
	require.NoError(t, err)
	assert.Same(t, doc, result)
}

func Test_Mutator_NoOpSetKeepsIdentity(t *testing.T) {
	reg := newTestRegistry(t)
	walker := newTestWalker(t, reg)
	doc := buildDoc()

	rule, err := CompileRule(config.Rule{
		Name:  "identity",
		Match: entryValueSteps(),
		Set:   "value",
	}, reg)
	require.NoError(t, err)

	result, err := walker.MutateDeep(doc, rule.Mutator())
	require.NoError(t, err)
	assert.Same(t, doc, result)
}

func Test_Mutator_SecondApplicationIsStable(t *testing.T) {
	reg := newTestRegistry(t)
	walker := newTestWalker(t, reg)
	doc := buildDoc()

	rule, err := CompileRule(config.Rule{
		Name:  "bump-port",
		Match: entryValueSteps(),
		When:  `key == "port"`,
		Set:   "9090",
	}, reg)
	require.NoError(t, err)

	once, err := walker.MutateDeep(doc, rule.Mutator())
	require.NoError(t, err)
	twice, err := walker.MutateDeep(once, rule.Mutator())
	require.NoError(t, err)

	assert.Same(t, once, twice)
}

func Test_Mutator_SetExpressionError(t *testing.T) {
	reg := newTestRegistry(t)
	walker := newTestWalker(t, reg)
	doc := buildDoc()

	rule, err := CompileRule(config.Rule{
		Name:  "explode",
		Match: entryValueSteps(),
		Set:   "path[99]",
	}, reg)
	require.NoError(t, err)

	_, err = walker.MutateDeep(doc, rule.Mutator())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "set expression")
}
