package cli

import (
	"fmt"
	"strings"

	"github.com/mvp-joe/contexto/internal/output"
	"github.com/spf13/cobra"
)

var limitFlag int

// searchCmd represents the search command
var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Keyword search over classes, functions, and methods",
	Long: `Search ranks classes, functions, and methods by how well their names,
signatures, and docstrings match the query terms.

Examples:
  contexto search "parse config"
  contexto search calculator --limit 3`,
	Args: cobra.MinimumNArgs(1),
	RunE: runSearch,
}

func init() {
	rootCmd.AddCommand(searchCmd)
	searchCmd.Flags().IntVarP(&limitFlag, "limit", "l", 0, "Maximum number of results (default from config)")
}

func runSearch(cmd *cobra.Command, args []string) error {
	query := strings.Join(args, " ")
	return withProject(cmd.Context(), nil, func(p *project) error {
		results, err := p.explorer.Search(cmd.Context(), query, limitFlag)
		if err != nil {
			return fmt.Errorf("search failed: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), output.FormatSearchResults(query, results))
		return nil
	})
}
