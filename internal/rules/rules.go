// Package rules compiles rule declarations from a rules file into mutators
// the tree walker can run. Each rule becomes a path-anchored mutator: the
// match steps resolve to a pattern, the set/when expressions compile to
// expr programs evaluated against the targeted value.
package rules

import (
	"fmt"
	"reflect"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"

	"github.com/recast-dev/recast/internal/config"
	"github.com/recast-dev/recast/mutate"
	"github.com/recast-dev/recast/pathmatch"
	"github.com/recast-dev/recast/schema"
)

// Env defines the variables available to set and when expressions.
type Env struct {
	Value any      `expr:"value"`
	Key   string   `expr:"key"`
	Path  []string `expr:"path"`
}

// CompiledRule is a rule ready to run against a document tree.
type CompiledRule struct {
	name    string
	pattern pathmatch.Pattern
	when    *vm.Program
	set     *vm.Program
}

// Name returns the rule's declared name.
func (r *CompiledRule) Name() string { return r.name }

// Compile translates every rule in the set, resolving match step type names
// through reg.
func Compile(rs *config.RuleSet, reg *schema.Registry) ([]*CompiledRule, error) {
	compiled := make([]*CompiledRule, 0, len(rs.Rules))
	for _, rule := range rs.Rules {
		c, err := CompileRule(rule, reg)
		if err != nil {
			return nil, err
		}
		compiled = append(compiled, c)
	}
	return compiled, nil
}

// CompileRule translates a single rule declaration.
func CompileRule(rule config.Rule, reg *schema.Registry) (*CompiledRule, error) {
	pattern, err := compilePattern(rule.Match, reg)
	if err != nil {
		return nil, fmt.Errorf("rule %q: %w", rule.Name, err)
	}

	set, err := expr.Compile(rule.Set, expr.Env(Env{}))
	if err != nil {
		return nil, fmt.Errorf("rule %q: compiling set expression: %w", rule.Name, err)
	}

	var when *vm.Program
	if rule.When != "" {
		when, err = expr.Compile(rule.When, expr.Env(Env{}), expr.AsBool())
		if err != nil {
			return nil, fmt.Errorf("rule %q: compiling when expression: %w", rule.Name, err)
		}
	}

	return &CompiledRule{name: rule.Name, pattern: pattern, when: when, set: set}, nil
}

// Mutator returns the rule as a walker mutator: replace on a full path
// match (subject to the when guard), descend while a match is still
// reachable, leave everything else alone.
func (r *CompiledRule) Mutator() mutate.Mutator {
	return func(ancestry []any, names []string, value *mutate.Accessor) (mutate.Result, error) {
		if r.pattern.MatchesSuffix(ancestry, names) {
			return r.replace(names, value)
		}
		if r.pattern.MatchesPrefix(ancestry, names) {
			return mutate.WalkChildren(), nil
		}
		return mutate.Unchanged(), nil
	}
}

func (r *CompiledRule) replace(names []string, value *mutate.Accessor) (mutate.Result, error) {
	current, err := value.Get()
	if err != nil {
		return mutate.Result{}, err
	}
	env := Env{Value: current, Key: names[len(names)-1], Path: names}

	if r.when != nil {
		out, err := expr.Run(r.when, env)
		if err != nil {
			return mutate.Result{}, fmt.Errorf("rule %q: when expression: %w", r.name, err)
		}
		if !out.(bool) {
			return mutate.Unchanged(), nil
		}
	}

	out, err := expr.Run(r.set, env)
	if err != nil {
		return mutate.Result{}, fmt.Errorf("rule %q: set expression: %w", r.name, err)
	}

	// An expression that reproduces the current value is a no-op; keeping
	// the outcome Unchanged preserves subtree identity.
	if equalScalars(out, current) {
		return mutate.Unchanged(), nil
	}
	return mutate.Changed(out), nil
}

func compilePattern(steps []config.Step, reg *schema.Registry) (pathmatch.Pattern, error) {
	entries := make([]pathmatch.Entry, 0, len(steps))
	for i, step := range steps {
		var e pathmatch.Entry

		switch step.Type {
		case "", "*":
			// type wildcard
		case "list":
			e.Type = pathmatch.List
		default:
			typ, ok := reg.TypeNamed(step.Type)
			if !ok {
				return pathmatch.Pattern{}, fmt.Errorf("match step %d: unknown type %q", i, step.Type)
			}
			e.Type = typ
		}

		if step.Name == "" || step.Name == "*" {
			e.AnyName = true
		} else {
			e.Name = step.Name
		}
		entries = append(entries, e)
	}
	return pathmatch.New(entries...)
}

func equalScalars(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	if reflect.TypeOf(a) != reflect.TypeOf(b) {
		return false
	}
	if !reflect.ValueOf(a).Comparable() {
		return false
	}
	return a == b
}
