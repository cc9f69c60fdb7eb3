package cli

import (
	"fmt"

	"github.com/mvp-joe/contexto/internal/output"
	"github.com/spf13/cobra"
)

// mapCmd represents the map command
var mapCmd = &cobra.Command{
	Use:   "map [path]",
	Short: "Show the project overview",
	Long: `Map prints the project name, its root, and every top-level directory
with counts of the files, classes, and functions beneath it.

Example:
  contexto map
  contexto map /path/to/project`,
	Args: cobra.MaximumNArgs(1),
	RunE: runMap,
}

func init() {
	rootCmd.AddCommand(mapCmd)
}

func runMap(cmd *cobra.Command, args []string) error {
	return withProject(cmd.Context(), args, func(p *project) error {
		result, err := p.explorer.Map(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), output.FormatMap(result))
		return nil
	})
}
