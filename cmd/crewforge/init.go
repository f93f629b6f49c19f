package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"crewforge/internal/crewfile"
	"crewforge/internal/library"
)

var initOutput string

var initCmd = &cobra.Command{
	Use:   "init [crew]",
	Short: "Write a crew.yaml to edit",
	Long: `Write a crew definition file into the current directory, seeded from
one of the built-in crews (blog-writer when none is named). Edit the
agents, tasks, and inputs, then run it with 'crewforge kickoff'.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := "blog-writer"
		if len(args) == 1 {
			name = args[0]
		}

		team, err := library.Get(name)
		if err != nil {
			return err
		}

		if err := crewfile.Save(team, initOutput); err != nil {
			return err
		}
		fmt.Printf("Wrote %s from the %s crew. Edit it, then run 'crewforge kickoff'.\n", initOutput, name)
		return nil
	},
}

func init() {
	initCmd.Flags().StringVarP(&initOutput, "output", "o", crewfile.DefaultName, "Where to write the crew file")
}
