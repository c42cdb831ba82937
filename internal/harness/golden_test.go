package harness

import "testing"

func TestRunWithGolden_SimpleSequence(t *testing.T) {
	s := loadScenario(t, "simple_sequence.yaml")
	if err := RunWithGolden(t, s); err != nil {
		t.Fatal(err)
	}
}

func TestRunWithGolden_VariableBinding(t *testing.T) {
	s := loadScenario(t, "variable_binding.yaml")
	if err := RunWithGolden(t, s); err != nil {
		t.Fatal(err)
	}
}
