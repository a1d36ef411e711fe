// Package harness provides a conformance testing framework for the
// formula compiler. Scenarios are YAML files pairing a formula with a
// catalog and table; successful compilations are compared byte-exact
// against golden canonical JSON, and failure scenarios assert on the
// error code and offending name.
package harness

import (
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/roach88/formulac/internal/catalog"
	"github.com/roach88/formulac/internal/compiler"
	"github.com/roach88/formulac/internal/mbql"
	"github.com/roach88/formulac/internal/parser"
	"github.com/roach88/formulac/internal/query"
)

// Harness executes scenarios.
type Harness struct {
	logger *slog.Logger
}

// New creates a harness. A nil logger discards diagnostics.
func New(logger *slog.Logger) *Harness {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Harness{logger: logger}
}

// Result holds the outcome of running one scenario.
type Result struct {
	// ScenarioName echoes the scenario that produced this result.
	ScenarioName string

	// Canonical is the canonical JSON of the compiled clause. Empty
	// for failure scenarios.
	Canonical []byte
}

// Run executes a scenario: load the catalog, compile the formula, and
// check the outcome against the scenario's expectation. For success
// scenarios the caller compares Result.Canonical against the golden
// file; for failure scenarios Run itself asserts the error shape.
func (h *Harness) Run(scenario *Scenario) (*Result, error) {
	h.logger.Info("running scenario",
		"name", scenario.Name,
		"table", scenario.Table)

	cat, err := catalog.LoadYAML(scenario.Catalog)
	if err != nil {
		return nil, fmt.Errorf("loading catalog: %w", err)
	}

	expr, err := compiler.Compile(scenario.Formula, query.NewContext(cat, scenario.Table))

	if scenario.Expect != nil {
		if checkErr := checkExpectedFailure(scenario.Expect, err); checkErr != nil {
			return nil, checkErr
		}
		return &Result{ScenarioName: scenario.Name}, nil
	}

	if err != nil {
		return nil, fmt.Errorf("compiling %q: %w", scenario.Formula, err)
	}

	canonical, err := mbql.MarshalCanonical(expr)
	if err != nil {
		return nil, fmt.Errorf("encoding clause: %w", err)
	}

	h.logger.Info("scenario compiled",
		"name", scenario.Name,
		"bytes", len(canonical))

	return &Result{ScenarioName: scenario.Name, Canonical: canonical}, nil
}

// checkExpectedFailure verifies that err matches the scenario's
// expected error code and offending name.
func checkExpectedFailure(expect *ExpectClause, err error) error {
	if err == nil {
		return fmt.Errorf("expected %s error, compilation succeeded", expect.Error)
	}

	if expect.Error == "SYNTAX" {
		var synErr *parser.SyntaxError
		if !errors.As(err, &synErr) {
			return fmt.Errorf("expected syntax error, got: %w", err)
		}
		return nil
	}

	var resErr *compiler.ResolveError
	if !errors.As(err, &resErr) {
		return fmt.Errorf("expected %s error, got: %w", expect.Error, err)
	}
	if string(resErr.Code) != expect.Error {
		return fmt.Errorf("expected %s error, got %s", expect.Error, resErr.Code)
	}
	if expect.Name != "" && resErr.Name != expect.Name {
		return fmt.Errorf("expected error to name %q, got %q", expect.Name, resErr.Name)
	}
	return nil
}
