package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/formulac/internal/ast"
	"github.com/roach88/formulac/internal/parser"
)

// ParseResult is the success payload of the parse command.
type ParseResult struct {
	Formula string `json:"formula"`
	Tree    string `json:"tree"`
}

// NewParseCommand creates the parse command.
func NewParseCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "parse <formula>",
		Short: "Parse a formula and print its syntax tree",
		Long: `Parse a formula expression without resolving names.

Prints the syntax tree in s-expression form. Useful for checking how
operator precedence and chaining read a formula before compiling it.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true, // Don't print usage on errors
		SilenceErrors: true, // Don't print errors - we handle our own error output
		RunE: func(cmd *cobra.Command, args []string) error {
			return runParse(rootOpts, args[0], cmd)
		},
	}

	return cmd
}

func runParse(opts *RootOptions, formula string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	root, err := parser.Parse(formula)
	if err != nil {
		var synErr *parser.SyntaxError
		if errors.As(err, &synErr) {
			_ = formatter.Error(ErrCodeSyntax, synErr.Error(), map[string]int{"offset": synErr.Pos})
		} else {
			_ = formatter.Error(ErrCodeGeneric, err.Error(), nil)
		}
		return WrapExitError(ExitFailure, "parse failed", err)
	}

	tree := ast.Sprint(root)
	if formatter.Format == "json" {
		return formatter.Success(ParseResult{Formula: formula, Tree: tree})
	}
	fmt.Fprintln(formatter.Writer, tree)
	return nil
}
