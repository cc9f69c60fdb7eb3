package cli

import (
	"fmt"

	"github.com/mvp-joe/contexto/internal/output"
	"github.com/spf13/cobra"
)

var (
	startFlag int
	endFlag   int
)

// readCmd represents the read command
var readCmd = &cobra.Command{
	Use:   "read <path>",
	Short: "Print source lines of a project file or entity",
	Long: `Read prints a file with line numbers. Given an entity id it prints just
that entity, unless --start or --end select another range.

Examples:
  contexto read src/main.py
  contexto read src/main.py --start 10 --end 20
  contexto read src/main.py:main`,
	Args: cobra.ExactArgs(1),
	RunE: runRead,
}

func init() {
	rootCmd.AddCommand(readCmd)
	readCmd.Flags().IntVar(&startFlag, "start", 0, "First line to print, 1-based")
	readCmd.Flags().IntVar(&endFlag, "end", 0, "Last line to print, inclusive")
}

func runRead(cmd *cobra.Command, args []string) error {
	return withProject(cmd.Context(), nil, func(p *project) error {
		result, err := p.explorer.Read(cmd.Context(), args[0], startFlag, endFlag)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), output.FormatRead(result))
		return nil
	})
}
