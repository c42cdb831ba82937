package harness

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/patternmatch/strusmatch/internal/sessioninput"
)

// ExpectedResult is one result a scenario requires Run to reproduce.
// Bindings is optional: an omitted (nil) list means "don't check
// bindings for this result"; an explicit empty list means "expect no
// bindings".
type ExpectedResult struct {
	Pattern     string                          `yaml:"pattern"`
	StartOrdpos int64                           `yaml:"start_ordpos"`
	EndOrdpos   int64                           `yaml:"end_ordpos"`
	Bindings    []sessioninput.ProjectedBinding `yaml:"bindings,omitempty"`
}

// Scenario is one YAML-described end-to-end fixture: an inline CUE
// pattern source, the token stream to feed it, and the result set
// Run must reproduce.
type Scenario struct {
	Name        string                   `yaml:"name"`
	Description string                   `yaml:"description"`
	Source      string                   `yaml:"source"`
	Tokens      []sessioninput.TokenStep `yaml:"tokens"`
	Expect      []ExpectedResult         `yaml:"expect"`

	// ExpectError, when non-empty, names a substring Run's error (or
	// compile failure) must contain — for scenarios that exercise a
	// build or runtime error rather than a clean result set.
	ExpectError string `yaml:"expect_error,omitempty"`
}

// LoadScenario reads and parses one scenario YAML file.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read scenario: %w", err)
	}
	var s Scenario
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parse scenario %s: %w", path, err)
	}
	if err := validateScenario(&s); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return &s, nil
}

// LoadScenarioDir loads every *.yaml/*.yml scenario in dir, sorted by
// filename for deterministic "test" command output.
func LoadScenarioDir(dir string) ([]*Scenario, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read scenario dir: %w", err)
	}

	var names []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		ext := filepath.Ext(e.Name())
		if ext == ".yaml" || ext == ".yml" {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)

	scenarios := make([]*Scenario, 0, len(names))
	for _, name := range names {
		s, err := LoadScenario(filepath.Join(dir, name))
		if err != nil {
			return nil, err
		}
		scenarios = append(scenarios, s)
	}
	return scenarios, nil
}

// validateScenario checks the structural requirements a Scenario must
// meet before Run can execute it.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("scenario: name is required")
	}
	if s.Source == "" {
		return fmt.Errorf("scenario %q: source is required", s.Name)
	}
	if s.Expect == nil && s.ExpectError == "" {
		return fmt.Errorf("scenario %q: must set expect (explicitly [] for zero results) or expect_error", s.Name)
	}
	return nil
}
