package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var projectFlag string

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "contexto",
	Short: "Contexto - navigable code graph for humans and agents",
	Long: `Contexto indexes a source tree into a graph of directories, files,
classes, functions, and methods, stored in SQLite alongside a keyword
search index.

Build the index with 'contexto index', then explore it with map, expand,
inspect, search, and read, or expose it to coding assistants over MCP
with 'contexto serve'.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&projectFlag, "project", "p", ".", "project root directory")
}
