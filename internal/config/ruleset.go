// Package config loads and validates recast rules files. A rules file
// declares, in YAML, which nodes of a document tree to target (a path of
// type/name match steps) and the expression that computes each replacement
// value.
package config

import (
	"fmt"
	"os"

	"github.com/goccy/go-yaml"
)

// RuleSet is the parsed form of a rules file.
type RuleSet struct {
	Version string `yaml:"version"`
	Rules   []Rule `yaml:"rules"`
}

// Rule targets the values whose path matches every step in Match and
// replaces them with the result of the Set expression. When present, the
// When expression guards the replacement.
type Rule struct {
	Name  string `yaml:"name"`
	Match []Step `yaml:"match"`
	When  string `yaml:"when,omitempty"`
	Set   string `yaml:"set"`
}

// Step is one depth level of a rule's match path. Type names a registered
// composite alias, "list" for any ordered container, or "*"/empty for any
// type; Name is a property or index name, "*"/empty for any.
type Step struct {
	Type string `yaml:"type,omitempty"`
	Name string `yaml:"name,omitempty"`
}

// LoadRuleSet reads, parses, and validates a rules file.
func LoadRuleSet(path string) (*RuleSet, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading rules file %q: %w", path, err)
	}
	return ParseRuleSet(data)
}

// ParseRuleSet parses and validates rules file contents.
func ParseRuleSet(data []byte) (*RuleSet, error) {
	if err := ValidateSchema(data); err != nil {
		return nil, err
	}

	var rs RuleSet
	if err := yaml.Unmarshal(data, &rs); err != nil {
		return nil, fmt.Errorf("parsing rules file: %w", err)
	}

	if err := Validate(&rs); err != nil {
		return nil, err
	}
	return &rs, nil
}
