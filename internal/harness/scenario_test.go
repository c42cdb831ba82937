package harness

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadScenario_Valid(t *testing.T) {
	s, err := LoadScenario("testdata/scenarios/simple_sequence.yaml")
	require.NoError(t, err)
	assert.Equal(t, "simple_sequence", s.Name)
	assert.Len(t, s.Tokens, 2)
	assert.Len(t, s.Expect, 1)
}

func TestLoadScenario_MissingFile(t *testing.T) {
	_, err := LoadScenario("testdata/scenarios/does_not_exist.yaml")
	assert.Error(t, err)
}

func TestLoadScenarioDir_SortedAndComplete(t *testing.T) {
	scenarios, err := LoadScenarioDir("testdata/scenarios")
	require.NoError(t, err)
	assert.Len(t, scenarios, 8)
	for i := 1; i < len(scenarios); i++ {
		assert.True(t, scenarios[i-1].Name <= scenarios[i].Name)
	}
}

func TestValidateScenario_RequiresName(t *testing.T) {
	err := validateScenario(&Scenario{Source: "x", Expect: []ExpectedResult{}})
	assert.Error(t, err)
}

func TestValidateScenario_RequiresSource(t *testing.T) {
	err := validateScenario(&Scenario{Name: "x", Expect: []ExpectedResult{}})
	assert.Error(t, err)
}

func TestValidateScenario_RequiresExpectOrExpectError(t *testing.T) {
	err := validateScenario(&Scenario{Name: "x", Source: "y"})
	assert.Error(t, err)
}

func TestValidateScenario_EmptyExpectIsValidWhenExplicit(t *testing.T) {
	err := validateScenario(&Scenario{Name: "x", Source: "y", Expect: []ExpectedResult{}})
	assert.NoError(t, err)
}

func TestValidateScenario_ExpectErrorAloneIsValid(t *testing.T) {
	err := validateScenario(&Scenario{Name: "x", Source: "y", ExpectError: "boom"})
	assert.NoError(t, err)
}
