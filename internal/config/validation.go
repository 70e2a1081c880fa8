package config

import (
	"fmt"
	"strings"

	"github.com/Masterminds/semver/v3"
	"github.com/goccy/go-yaml"
	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"
)

// supportedVersions bounds the rules file format this build understands.
var supportedVersions = mustConstraint(">= 1.0.0, < 2.0.0")

func mustConstraint(c string) *semver.Constraints {
	constraint, err := semver.NewConstraint(c)
	if err != nil {
		panic(err)
	}
	return constraint
}

// ruleSetSchema is the JSON Schema every rules file must satisfy before the
// field-level checks run.
const ruleSetSchema = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "type": "object",
  "required": ["version", "rules"],
  "properties": {
    "version": {"type": "string"},
    "rules": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["name", "match", "set"],
        "properties": {
          "name": {"type": "string", "minLength": 1},
          "match": {
            "type": "array",
            "minItems": 1,
            "items": {
              "type": "object",
              "properties": {
                "type": {"type": "string"},
                "name": {"type": "string"}
              },
              "additionalProperties": false
            }
          },
          "when": {"type": "string"},
          "set": {"type": "string", "minLength": 1}
        },
        "additionalProperties": false
      }
    }
  },
  "additionalProperties": false
}`

var compiledRuleSetSchema = jsonschema.MustCompileString("ruleset.schema.json", ruleSetSchema)

// ValidateSchema checks raw rules file contents against the rules file JSON
// Schema. This catches shape errors (wrong types, unknown keys) before any
// field-level validation runs.
func ValidateSchema(data []byte) error {
	var doc any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("parsing rules file: %w", err)
	}
	if err := compiledRuleSetSchema.Validate(doc); err != nil {
		return fmt.Errorf("rules file schema validation failed: %w", err)
	}
	return nil
}

// Validate performs field-level validation of a parsed rule set. All
// failures found are reported together.
func Validate(rs *RuleSet) error {
	var errs []string

	if err := validateVersion(rs.Version); err != nil {
		errs = append(errs, err.Error())
	}

	if len(rs.Rules) == 0 {
		errs = append(errs, "at least one rule is required")
	}

	seen := make(map[string]bool, len(rs.Rules))
	for i, rule := range rs.Rules {
		if err := validateRule(i, rule, seen); err != nil {
			errs = append(errs, err.Error())
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("rules validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}

func validateVersion(version string) error {
	if version == "" {
		return fmt.Errorf("version is required")
	}
	v, err := semver.NewVersion(version)
	if err != nil {
		return fmt.Errorf("version %q is not a semantic version: %w", version, err)
	}
	if !supportedVersions.Check(v) {
		return fmt.Errorf("version %q is outside the supported range %s", version, supportedVersions)
	}
	return nil
}

func validateRule(index int, rule Rule, seen map[string]bool) error {
	var errs []string

	if rule.Name == "" {
		errs = append(errs, "name is required")
	} else if seen[rule.Name] {
		errs = append(errs, fmt.Sprintf("duplicate rule name %q", rule.Name))
	}
	seen[rule.Name] = true

	if len(rule.Match) == 0 {
		errs = append(errs, "match path is required")
	}
	if rule.Set == "" {
		errs = append(errs, "set expression is required")
	}

	if len(errs) > 0 {
		return fmt.Errorf("rule %d (%s): %s", index, rule.Name, strings.Join(errs, "; "))
	}
	return nil
}
