package cli

import (
	"fmt"

	"github.com/mvp-joe/contexto/internal/output"
	"github.com/spf13/cobra"
)

// expandCmd represents the expand command
var expandCmd = &cobra.Command{
	Use:   "expand <id>",
	Short: "List the children of a directory, file, or class",
	Long: `Expand shows one level of the graph below a node. Directories list
their subdirectories and files, files list their classes and functions with
signatures, and classes list their methods.

Examples:
  contexto expand .
  contexto expand src/utils
  contexto expand src/utils/helpers.py:Calculator`,
	Args: cobra.ExactArgs(1),
	RunE: runExpand,
}

func init() {
	rootCmd.AddCommand(expandCmd)
}

func runExpand(cmd *cobra.Command, args []string) error {
	return withProject(cmd.Context(), nil, func(p *project) error {
		result, err := p.explorer.Expand(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), output.FormatExpand(result))
		return nil
	})
}
