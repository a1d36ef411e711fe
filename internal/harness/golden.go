package harness

import (
	"testing"

	"github.com/sebdah/goldie/v2"
)

// RunWithGolden executes a scenario and compares the compiled clause
// against its golden file in testdata/golden/{scenario.Name}.golden.
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
//
// Golden files hold the byte-exact canonical JSON of the clause, so a
// diff means either the compiler's output or the canonical encoding
// changed. Failure scenarios have no golden file; Run checks their
// error shape instead.
func RunWithGolden(t *testing.T, h *Harness, scenario *Scenario) error {
	t.Helper()

	result, err := h.Run(scenario)
	if err != nil {
		return err
	}
	if scenario.Expect != nil {
		return nil
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, scenario.Name, result.Canonical)

	return nil
}
