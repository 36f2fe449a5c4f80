package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

// Execute runs the root command
func Execute(ctx context.Context, version, commit, buildDate string) error {
	rootCmd := newRootCommand(version, commit, buildDate)
	return rootCmd.ExecuteContext(ctx)
}

func newRootCommand(version, commit, buildDate string) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "lazyconf",
		Short: "lazyconf - lazy, dependency-aware configuration resolution",
		Long: `lazyconf resolves configuration documents whose values may reference
each other through ${...} expressions and function calls.

Features:
  - Lazy resolution: values are computed on demand, in dependency order
  - Schema-driven type conversion (arithmetic, logic, smart dates)
  - Function calls: templates, splices, loops, let-bindings
  - Circular references detected and reported with their keypath`,
		Version: fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, buildDate),
	}

	rootCmd.AddCommand(newResolveCommand())
	rootCmd.AddCommand(newValidateCommand())

	return rootCmd
}
