package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"crewforge/internal/crewfile"
	"crewforge/internal/library"
)

var crewsCmd = &cobra.Command{
	Use:   "crews",
	Short: "List the built-in crews",
	Long: `List the crews shipped with crewforge. Each can be run directly by
name with 'crewforge kickoff <name>' or used as a starting point via
'crewforge init <name>'.`,
	Run: func(cmd *cobra.Command, args []string) {
		name := color.New(color.Bold, color.FgCyan)
		dim := color.New(color.Faint)

		for _, c := range library.List() {
			name.Println(c.Name)
			fmt.Printf("  %s\n", c.Description)
			dim.Printf("  %d agents, %d tasks, %s process\n", len(c.Agents), len(c.Tasks), c.Process)
			if len(c.Inputs) > 0 {
				dim.Print("  inputs:")
				for _, in := range c.Inputs {
					if in.Required && in.Default == "" {
						dim.Printf(" %s*", in.Name)
					} else {
						dim.Printf(" %s", in.Name)
					}
				}
				dim.Println()
			}
			fmt.Println()
		}

		if crewfile.Exists(crewfile.DefaultName) {
			if c, err := crewfile.Load(crewfile.DefaultName); err == nil {
				name.Printf("%s (./%s)\n", c.Name, crewfile.DefaultName)
				fmt.Printf("  %s\n", c.Description)
				dim.Printf("  %d agents, %d tasks, %s process\n\n", len(c.Agents), len(c.Tasks), c.Process)
			}
		}
	},
}
