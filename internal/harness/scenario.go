package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Scenario defines a conformance test scenario: one formula compiled
// against one table of a catalog, with either a golden clause or an
// expected failure.
type Scenario struct {
	// Name uniquely identifies this scenario. It is also the golden
	// file name.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Catalog is the path to the YAML catalog declaration, relative
	// to the scenario file location.
	Catalog string `yaml:"catalog"`

	// Table is the table the formula resolves against.
	Table string `yaml:"table"`

	// Formula is the source text to compile.
	Formula string `yaml:"formula"`

	// Expect, when set, marks the scenario as a failure case.
	// Successful scenarios compare against their golden file instead.
	Expect *ExpectClause `yaml:"expect,omitempty"`
}

// ExpectClause specifies an expected compilation failure.
type ExpectClause struct {
	// Error is the expected resolution error code
	// (UNKNOWN_FUNCTION, UNKNOWN_METRIC, UNKNOWN_FIELD) or "SYNTAX"
	// for a parse failure.
	Error string `yaml:"error"`

	// Name is the offending name the error must carry. Ignored for
	// syntax failures.
	Name string `yaml:"name,omitempty"`
}

// LoadScenario reads and parses a scenario YAML file. The catalog path
// is resolved relative to the scenario file. Returns an error if the
// file is malformed, contains unknown fields (typos), or is missing
// required fields.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	// Strict field validation catches typos like "expects:" vs "expect:"
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if scenario.Catalog != "" && !filepath.IsAbs(scenario.Catalog) {
		scenario.Catalog = filepath.Join(filepath.Dir(path), scenario.Catalog)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	return &scenario, nil
}

// LoadScenarios loads every .yaml scenario in a directory, sorted by
// file name.
func LoadScenarios(dir string) ([]*Scenario, error) {
	matches, err := filepath.Glob(filepath.Join(dir, "*.yaml"))
	if err != nil {
		return nil, err
	}
	if len(matches) == 0 {
		return nil, fmt.Errorf("no scenario files in %s", dir)
	}

	scenarios := make([]*Scenario, 0, len(matches))
	for _, path := range matches {
		s, err := LoadScenario(path)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		scenarios = append(scenarios, s)
	}
	return scenarios, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if s.Description == "" {
		return fmt.Errorf("description is required")
	}
	if s.Catalog == "" {
		return fmt.Errorf("catalog is required")
	}
	if s.Table == "" {
		return fmt.Errorf("table is required")
	}
	if s.Formula == "" {
		return fmt.Errorf("formula is required")
	}
	if s.Expect != nil && s.Expect.Error == "" {
		return fmt.Errorf("expect.error is required when expect is present")
	}
	return nil
}
