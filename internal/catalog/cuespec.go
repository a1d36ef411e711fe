package catalog

import (
	"fmt"
	"os"
	"path/filepath"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/load"
	"cuelang.org/go/cue/token"
)

// SpecError reports a problem in a CUE catalog declaration.
type SpecError struct {
	Field   string
	Message string
	Pos     token.Pos // CUE position if available
}

func (e *SpecError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s", e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(), e.Field, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// LoadCUE loads a catalog from all .cue files in a directory. The
// declaration shape is:
//
//	table: orders: {
//		field: Subtotal: {type: "number"}
//		field: Tax:      {type: "number"}
//		metric: Revenue: {definition: "sum([Subtotal])"}
//	}
//	metric: OrderCount: {definition: "count()"}
//
// Top-level metrics are visible from every table.
func LoadCUE(dir string) (*Catalog, error) {
	info, err := os.Stat(dir)
	if os.IsNotExist(err) {
		return nil, fmt.Errorf("catalog directory not found: %s", dir)
	}
	if err != nil {
		return nil, fmt.Errorf("accessing catalog directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("not a directory: %s", dir)
	}

	files, err := findCUEFiles(dir)
	if err != nil {
		return nil, fmt.Errorf("scanning catalog directory: %w", err)
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no CUE files found in %s", dir)
	}

	ctx := cuecontext.New()
	instances := load.Instances([]string{"."}, &load.Config{Dir: dir})
	if len(instances) == 0 {
		return nil, fmt.Errorf("no CUE instances loaded from %s", dir)
	}
	inst := instances[0]
	if inst.Err != nil {
		return nil, fmt.Errorf("loading CUE files: %w", inst.Err)
	}

	value := ctx.BuildInstance(inst)
	if err := value.Err(); err != nil {
		return nil, fmt.Errorf("building CUE value: %w", formatCUEError(err))
	}

	return DecodeCUE(value)
}

// DecodeCUE builds a catalog from an already-compiled CUE value.
func DecodeCUE(value cue.Value) (*Catalog, error) {
	if err := value.Err(); err != nil {
		return nil, formatCUEError(err)
	}

	c := New()

	tablesVal := value.LookupPath(cue.ParsePath("table"))
	if tablesVal.Exists() {
		iter, err := tablesVal.Fields()
		if err != nil {
			return nil, formatCUEError(err)
		}
		for iter.Next() {
			if err := decodeTable(c, iter.Label(), iter.Value()); err != nil {
				return nil, err
			}
		}
	}

	metricsVal := value.LookupPath(cue.ParsePath("metric"))
	if metricsVal.Exists() {
		if err := decodeMetrics(c, "", metricsVal); err != nil {
			return nil, err
		}
	}

	if len(c.Fields()) == 0 && len(c.Metrics()) == 0 {
		return nil, &SpecError{Field: "table", Message: "no tables or metrics declared"}
	}
	return c, nil
}

func decodeTable(c *Catalog, name string, v cue.Value) error {
	fieldsVal := v.LookupPath(cue.ParsePath("field"))
	if fieldsVal.Exists() {
		iter, err := fieldsVal.Fields()
		if err != nil {
			return formatCUEError(err)
		}
		for iter.Next() {
			if err := decodeField(c, name, iter.Label(), iter.Value()); err != nil {
				return err
			}
		}
	}

	metricsVal := v.LookupPath(cue.ParsePath("metric"))
	if metricsVal.Exists() {
		if err := decodeMetrics(c, name, metricsVal); err != nil {
			return err
		}
	}
	return nil
}

func decodeField(c *Catalog, table, name string, v cue.Value) error {
	typeVal := v.LookupPath(cue.ParsePath("type"))
	if !typeVal.Exists() {
		return &SpecError{Field: "type", Message: fmt.Sprintf("field %s.%s: type is required", table, name), Pos: v.Pos()}
	}
	baseType, err := typeVal.String()
	if err != nil {
		return formatCUEError(err)
	}
	if !ValidBaseType(baseType) {
		return &SpecError{Field: "type", Message: fmt.Sprintf("field %s.%s: invalid base type %q", table, name, baseType), Pos: typeVal.Pos()}
	}

	if _, err := c.AddField(table, name, baseType); err != nil {
		return &SpecError{Field: "field", Message: err.Error(), Pos: v.Pos()}
	}
	return nil
}

func decodeMetrics(c *Catalog, table string, v cue.Value) error {
	iter, err := v.Fields()
	if err != nil {
		return formatCUEError(err)
	}
	for iter.Next() {
		name := iter.Label()
		mv := iter.Value()

		var definition string
		defVal := mv.LookupPath(cue.ParsePath("definition"))
		if defVal.Exists() {
			definition, err = defVal.String()
			if err != nil {
				return formatCUEError(err)
			}
		}

		if _, err := c.AddMetric(table, name, definition); err != nil {
			return &SpecError{Field: "metric", Message: err.Error(), Pos: mv.Pos()}
		}
	}
	return nil
}

// findCUEFiles walks the directory and returns all .cue file paths.
func findCUEFiles(dir string) ([]string, error) {
	var files []string
	err := filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() && filepath.Ext(path) == ".cue" {
			files = append(files, path)
		}
		return nil
	})
	return files, err
}

// formatCUEError extracts the first positioned error from a CUE error
// chain.
func formatCUEError(err error) error {
	if err == nil {
		return nil
	}

	errs := cueerrors.Errors(err)
	if len(errs) == 0 {
		return err
	}

	firstErr := errs[0]
	positions := cueerrors.Positions(firstErr)
	if len(positions) > 0 {
		return &SpecError{
			Field:   "cue",
			Message: firstErr.Error(),
			Pos:     positions[0],
		}
	}

	return err
}
