package main

import (
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "crewforge",
	Short: "Run crews of role-prompted agents",
	Long: `Crewforge runs crews: small teams of role-prompted agents that
work through a pipeline of tasks and hand their outputs forward until
a final deliverable lands on disk.

Crews come from the built-in library (see 'crewforge crews') or from a
crew.yaml file in your project. Kick one off with:

  crewforge kickoff blog-writer --input topic="Why write tests first"

Agents call tools (web search, scraping, file reading, sentiment,
arXiv, currency rates, document export) as they work, and every run is
recorded in local history.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return cmd.Help()
	},
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(kickoffCmd)
	rootCmd.AddCommand(crewsCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(versionCmd)
}
