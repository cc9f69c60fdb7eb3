package cli

import (
	"fmt"

	"github.com/mvp-joe/contexto/internal/output"
	"github.com/spf13/cobra"
)

// inspectCmd represents the inspect command
var inspectCmd = &cobra.Command{
	Use:   "inspect <id>",
	Short: "Show an entity's signature, docstring, calls, and callers",
	Long: `Inspect prints the details of a class, function, or method: where it
is defined, its signature and docstring, the names it calls, and the
entities that call it by name.

Example:
  contexto inspect src/main.py:main`,
	Args: cobra.ExactArgs(1),
	RunE: runInspect,
}

func init() {
	rootCmd.AddCommand(inspectCmd)
}

func runInspect(cmd *cobra.Command, args []string) error {
	return withProject(cmd.Context(), nil, func(p *project) error {
		result, err := p.explorer.Inspect(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), output.FormatInspect(result))
		return nil
	})
}
