package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/roach88/tsq/internal/formula"
)

// Backend names accepted in scenario files.
const (
	BackendSQLite = "sqlite"
	BackendMemory = "memory"
)

// Scenario defines a set of formula checks against one system.
type Scenario struct {
	// Name uniquely identifies this scenario.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// System is the path of the CUE file defining the system.
	// Relative paths are resolved against the scenario file's directory.
	System string `yaml:"system"`

	// SystemName selects a system when the file defines several.
	SystemName string `yaml:"system_name,omitempty"`

	// Backend selects the store: "sqlite" (default) or "memory".
	Backend string `yaml:"backend,omitempty"`

	// Pushdown evaluates each formula as a single query when the
	// backend supports it.
	Pushdown bool `yaml:"pushdown,omitempty"`

	// Checks are evaluated in order.
	Checks []Check `yaml:"checks"`
}

// Check is one expectation about a formula.
type Check struct {
	// Name identifies the check in reports.
	Name string `yaml:"name"`

	// Formula in text form, e.g. `b("1") && !c()`.
	Formula string `yaml:"formula"`

	// State pins the formula to one state. Requires Expect.
	State *int64 `yaml:"state,omitempty"`

	// Expect is the truth value expected at State.
	Expect *bool `yaml:"expect,omitempty"`

	// ExpectStates lists, in ascending order, every stored state where
	// the formula must hold. Used when State is omitted.
	ExpectStates []int64 `yaml:"expect_states,omitempty"`
}

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
//
// The system path is resolved relative to the scenario file.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	// Parse YAML with strict field validation (catches typos like "check:" vs "checks:")
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if scenario.System != "" && !filepath.IsAbs(scenario.System) {
		scenario.System = filepath.Join(filepath.Dir(path), scenario.System)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}

	return &scenario, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}

	if s.Description == "" {
		return fmt.Errorf("description is required")
	}

	if s.System == "" {
		return fmt.Errorf("system is required")
	}
	if _, err := os.Stat(s.System); os.IsNotExist(err) {
		return fmt.Errorf("system file not found: %s", s.System)
	}

	switch s.Backend {
	case "", BackendSQLite, BackendMemory:
	default:
		return fmt.Errorf("backend %q: must be %q or %q", s.Backend, BackendSQLite, BackendMemory)
	}

	if len(s.Checks) == 0 {
		return fmt.Errorf("checks list is required and must be non-empty")
	}

	for i, c := range s.Checks {
		if err := validateCheck(c); err != nil {
			return fmt.Errorf("checks[%d]: %w", i, err)
		}
	}

	return nil
}

func validateCheck(c Check) error {
	if c.Name == "" {
		return fmt.Errorf("name is required")
	}

	if c.Formula == "" {
		return fmt.Errorf("formula is required")
	}
	if _, err := formula.Parse(c.Formula); err != nil {
		return err
	}

	if c.State != nil {
		if c.Expect == nil {
			return fmt.Errorf("expect is required with state")
		}
		if c.ExpectStates != nil {
			return fmt.Errorf("expect_states cannot be combined with state")
		}
		return nil
	}

	if c.Expect != nil {
		return fmt.Errorf("expect requires state")
	}
	if c.ExpectStates == nil {
		return fmt.Errorf("either state with expect, or expect_states, is required")
	}
	return nil
}
