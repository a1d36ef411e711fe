package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/roach88/formulac/internal/compiler"
	"github.com/roach88/formulac/internal/mbql"
	"github.com/roach88/formulac/internal/parser"
	"github.com/roach88/formulac/internal/query"
)

// CompileOptions holds flags for the compile command.
type CompileOptions struct {
	*RootOptions
	CatalogOptions
	Table     string // table whose fields the formula resolves against
	Output    string // output file path
	Canonical bool   // emit canonical JSON instead of indented
}

// CompileResult is the success payload of the compile command.
type CompileResult struct {
	Formula string          `json:"formula"`
	Table   string          `json:"table"`
	MBQL    json.RawMessage `json:"mbql"`
}

// NewCompileCommand creates the compile command.
func NewCompileCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CompileOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "compile <formula>",
		Short: "Compile a formula to canonical clause form",
		Long: `Compile a formula expression to canonical clause form.

Field and metric names resolve against the given table of the catalog.
The result is the clause as JSON; --canonical emits the byte-exact
canonical encoding used for hashing and golden comparisons.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true, // Don't print usage on errors - we handle our own error output
		SilenceErrors: true, // Don't print errors - we handle our own error output
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCompile(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Catalog, "catalog", "", "catalog source (CUE directory or YAML file)")
	cmd.Flags().StringVar(&opts.DB, "db", "", "catalog SQLite database")
	cmd.Flags().StringVarP(&opts.Table, "table", "t", "", "table to resolve names against (required)")
	cmd.Flags().StringVarP(&opts.Output, "output", "o", "", "output file path")
	cmd.Flags().BoolVar(&opts.Canonical, "canonical", false, "emit canonical JSON")
	cmd.MarkFlagRequired("table")

	return cmd
}

func runCompile(opts *CompileOptions, formula string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(), // Verbose logs go to stderr to avoid corrupting JSON
		Verbose:   opts.Verbose,
	}

	cat, err := LoadCatalog(cmd.Context(), opts.CatalogOptions)
	if err != nil {
		_ = formatter.Error(ErrCodeCatalogLoad, err.Error(), nil)
		return err
	}
	formatter.VerboseLog("Catalog loaded: %d field(s), %d metric(s)", len(cat.Fields()), len(cat.Metrics()))

	expr, err := compiler.Compile(formula, query.NewContext(cat, opts.Table))
	if err != nil {
		return outputCompileError(formatter, err)
	}

	var encoded []byte
	if opts.Canonical {
		encoded, err = mbql.MarshalCanonical(expr)
	} else {
		encoded, err = mbql.Marshal(expr)
	}
	if err != nil {
		_ = formatter.Error(ErrCodeGeneric, err.Error(), nil)
		return WrapExitError(ExitFailure, "encoding clause", err)
	}

	if opts.Output != "" {
		if err := os.WriteFile(opts.Output, encoded, 0644); err != nil {
			_ = formatter.Error(ErrCodeWriteFailed, err.Error(), nil)
			return WrapExitError(ExitCommandError, "writing output file", err)
		}
		formatter.VerboseLog("Wrote clause to %s", opts.Output)
	}

	if formatter.Format == "json" {
		return formatter.Success(CompileResult{
			Formula: formula,
			Table:   opts.Table,
			MBQL:    json.RawMessage(encoded),
		})
	}
	fmt.Fprintln(formatter.Writer, string(encoded))
	return nil
}

// outputCompileError classifies a compilation failure and reports it
// with the matching error code. Compilation failures exit 1; they are
// problems with the formula, not the command invocation.
func outputCompileError(formatter *OutputFormatter, err error) error {
	var synErr *parser.SyntaxError
	if errors.As(err, &synErr) {
		_ = formatter.Error(ErrCodeSyntax, synErr.Error(), map[string]int{"offset": synErr.Pos})
		return WrapExitError(ExitFailure, "compilation failed", err)
	}

	var resErr *compiler.ResolveError
	if errors.As(err, &resErr) {
		_ = formatter.Error(ErrCodeResolve, resErr.Error(), map[string]string{
			"code": string(resErr.Code),
			"name": resErr.Name,
		})
		return WrapExitError(ExitFailure, "compilation failed", err)
	}

	_ = formatter.Error(ErrCodeGeneric, err.Error(), nil)
	return WrapExitError(ExitFailure, "compilation failed", err)
}
