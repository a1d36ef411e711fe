package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/formulac/internal/compiler"
	"github.com/roach88/formulac/internal/query"
)

// ValidateOptions holds flags for the validate command.
type ValidateOptions struct {
	*RootOptions
	CatalogOptions
}

// ValidationResult holds validation results.
type ValidationResult struct {
	Valid   bool              `json:"valid"`
	Fields  int               `json:"fields"`
	Metrics int               `json:"metrics"`
	Errors  []ValidationIssue `json:"errors,omitempty"`
}

// ValidationIssue is one metric definition that failed to compile.
type ValidationIssue struct {
	Metric  string `json:"metric"`
	Table   string `json:"table,omitempty"`
	Message string `json:"message"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ValidateOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate a catalog and its metric definitions",
		Long: `Validate a catalog declaration.

Loads the catalog and compiles every metric definition against its own
table, reporting definitions that fail to parse or resolve. Catalog-wide
metrics are checked against every table.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true, // Don't print usage on errors
		SilenceErrors: true, // Don't print errors - we handle our own error output
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Catalog, "catalog", "", "catalog source (CUE directory or YAML file)")
	cmd.Flags().StringVar(&opts.DB, "db", "", "catalog SQLite database")

	return cmd
}

func runValidate(opts *ValidateOptions, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	cat, err := LoadCatalog(cmd.Context(), opts.CatalogOptions)
	if err != nil {
		_ = formatter.Error(ErrCodeCatalogLoad, err.Error(), nil)
		return err
	}

	result := ValidationResult{
		Valid:   true,
		Fields:  len(cat.Fields()),
		Metrics: len(cat.Metrics()),
	}

	for _, m := range cat.Metrics() {
		if m.Definition == "" {
			continue
		}

		tables := []string{m.Table}
		if m.Table == "" {
			tables = cat.Tables()
		}
		for _, table := range tables {
			formatter.VerboseLog("Checking metric %q against table %q", m.Name, table)
			if _, err := compiler.Compile(m.Definition, query.NewContext(cat, table)); err != nil {
				result.Valid = false
				result.Errors = append(result.Errors, ValidationIssue{
					Metric:  m.Name,
					Table:   table,
					Message: err.Error(),
				})
			}
		}
	}

	if formatter.Format == "json" {
		if err := formatter.Success(result); err != nil {
			return err
		}
	} else {
		outputValidateText(formatter, result)
	}

	if !result.Valid {
		return NewExitError(ExitFailure, fmt.Sprintf("validation failed with %d error(s)", len(result.Errors)))
	}
	return nil
}

func outputValidateText(formatter *OutputFormatter, result ValidationResult) {
	if result.Valid {
		fmt.Fprintf(formatter.Writer, "✓ Catalog valid: %d field(s), %d metric(s)\n", result.Fields, result.Metrics)
		return
	}

	fmt.Fprintln(formatter.Writer, "✗ Validation failed")
	fmt.Fprintln(formatter.Writer)
	for _, issue := range result.Errors {
		if issue.Table != "" {
			fmt.Fprintf(formatter.Writer, "  metric %q (table %s): %s\n", issue.Metric, issue.Table, issue.Message)
		} else {
			fmt.Fprintf(formatter.Writer, "  metric %q: %s\n", issue.Metric, issue.Message)
		}
	}
}
