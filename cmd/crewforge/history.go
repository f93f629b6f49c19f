package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"crewforge/internal/state"
	"crewforge/pkg/models"
)

var historyLimit int

var historyCmd = &cobra.Command{
	Use:   "history [run-id]",
	Short: "Show past runs",
	Long: `Show recent runs from local history, or the per-task detail of a
single run when a run ID is given.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := state.OpenGlobal()
		if err != nil {
			return fmt.Errorf("opening run history: %w", err)
		}
		defer db.Close()
		if err := db.Migrate(); err != nil {
			return fmt.Errorf("migrating run history: %w", err)
		}

		if len(args) == 1 {
			return showRun(db, args[0])
		}
		return listRuns(db)
	},
}

func init() {
	historyCmd.Flags().IntVar(&historyLimit, "limit", 20, "Maximum number of runs to show")
}

func listRuns(db *state.DB) error {
	runs, err := db.ListRuns(historyLimit)
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Println("No runs recorded yet.")
		return nil
	}

	dim := color.New(color.Faint)
	for _, r := range runs {
		fmt.Printf("%s  %-20s %s", r.ID, r.Crew, statusColor(r.Status).Sprint(r.Status))
		dim.Printf("  %s  %d in / %d out  $%.4f\n", r.StartedAt.Local().Format("2006-01-02 15:04"), r.TokensIn, r.TokensOut, r.Cost)
	}
	return nil
}

func showRun(db *state.DB, runID string) error {
	r, err := db.GetRun(runID)
	if err != nil {
		return err
	}
	tasks, err := db.TaskRunsFor(runID)
	if err != nil {
		return err
	}

	bold := color.New(color.Bold)
	dim := color.New(color.Faint)

	bold.Printf("Run %s  crew %s  %s\n", r.ID, r.Crew, statusColor(r.Status).Sprint(r.Status))
	if r.Process != "" || r.Model != "" {
		dim.Printf("process %s  model %s\n", r.Process, r.Model)
	}
	dim.Printf("started %s", r.StartedAt.Local().Format("2006-01-02 15:04:05"))
	if r.EndedAt != nil {
		dim.Printf("  ended %s", r.EndedAt.Local().Format("15:04:05"))
	}
	dim.Printf("  tokens %d in / %d out  $%.4f\n", r.TokensIn, r.TokensOut, r.Cost)
	if r.ArtifactDir != "" {
		dim.Printf("artifacts %s\n", r.ArtifactDir)
	}
	if len(r.Inputs) > 0 {
		fmt.Print("inputs:")
		for k, v := range r.Inputs {
			fmt.Printf(" %s=%q", k, v)
		}
		fmt.Println()
	}

	fmt.Println()
	for _, tr := range tasks {
		fmt.Printf("  %s %-20s %s", taskMarker(tr.Status), tr.Task, tr.Agent)
		dim.Printf("  %s  %d in / %d out", tr.Duration.Round(1e9), tr.TokensIn, tr.TokensOut)
		if tr.OutputPath != "" {
			dim.Printf("  → %s", tr.OutputPath)
		}
		dim.Println()
		if tr.Error != "" {
			color.Red("      %s", tr.Error)
		}
	}
	return nil
}

func statusColor(status string) *color.Color {
	switch status {
	case "completed":
		return color.New(color.FgGreen)
	case "failed":
		return color.New(color.FgRed)
	default:
		return color.New(color.FgYellow)
	}
}

func taskMarker(status models.TaskStatus) string {
	switch status {
	case models.TaskStatusDone:
		return color.GreenString("✓")
	case models.TaskStatusFailed:
		return color.RedString("✗")
	default:
		return "○"
	}
}
