package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"crewforge/internal/config"
	"crewforge/internal/crew"
	"crewforge/internal/crewfile"
	"crewforge/internal/exec"
	"crewforge/internal/library"
	"crewforge/internal/llm"
	"crewforge/internal/state"
	"crewforge/internal/tools"
	"crewforge/internal/tui"
	"crewforge/pkg/models"
)

var (
	kickoffFile      string
	kickoffInputs    []string
	kickoffModel     string
	kickoffOutputDir string
	kickoffBudget    int64
	kickoffPlain     bool
	kickoffNoInput   bool
)

var kickoffCmd = &cobra.Command{
	Use:   "kickoff [crew]",
	Short: "Run a crew",
	Long: `Run a crew to completion.

The crew comes from the built-in library (by name), from a file given
with -f, or from crew.yaml in the current directory when neither is
given. Inputs fill the crew's declared placeholders:

  crewforge kickoff blog-writer --input topic="Structured logging in Go"
  crewforge kickoff -f crew.yaml -i topic=observability -i style=formal

Missing required inputs are prompted for on stdin unless --no-input
is set. Artifacts land in the configured output directory under a
per-run folder.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runKickoff,
}

func init() {
	kickoffCmd.Flags().StringVarP(&kickoffFile, "file", "f", "", "Path to a crew.yaml definition")
	kickoffCmd.Flags().StringArrayVarP(&kickoffInputs, "input", "i", nil, "Crew input as key=value (repeatable)")
	kickoffCmd.Flags().StringVar(&kickoffModel, "model", "", "Override every agent's model (sonnet, haiku, opus, or a model ID)")
	kickoffCmd.Flags().StringVar(&kickoffOutputDir, "output-dir", "", "Directory for run artifacts")
	kickoffCmd.Flags().Int64Var(&kickoffBudget, "budget", 0, "Token budget for the run (0 = config default)")
	kickoffCmd.Flags().BoolVar(&kickoffPlain, "plain", false, "Print progress as plain text instead of the TUI")
	kickoffCmd.Flags().BoolVar(&kickoffNoInput, "no-input", false, "Never prompt on stdin; fail on missing inputs and skip feedback rounds")
}

func runKickoff(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	team, err := resolveCrew(args)
	if err != nil {
		return err
	}

	inputs, err := parseInputs(kickoffInputs)
	if err != nil {
		return err
	}
	if err := promptMissingInputs(team, inputs); err != nil {
		return err
	}

	workDir, err := os.Getwd()
	if err != nil {
		return err
	}

	signals, err := llm.NewSignals(workDir)
	if err != nil {
		return fmt.Errorf("setting up run signals: %w", err)
	}
	defer signals.Close()
	signals.ClearSignals()

	registry := tools.DefaultRegistry(cfg, workDir, exec.NewRunner())
	factory := llm.NewFactory(cfg, signals)

	engineOpts := []crew.EngineOption{crew.WithSignals(signals)}
	db, err := state.OpenGlobal()
	if err == nil {
		if err := db.Migrate(); err == nil {
			engineOpts = append(engineOpts, crew.WithRecorder(db))
			defer db.Close()
		} else {
			fmt.Fprintf(os.Stderr, "warning: run history disabled: %v\n", err)
			db.Close()
		}
	} else {
		fmt.Fprintf(os.Stderr, "warning: run history disabled: %v\n", err)
	}

	engine := crew.NewEngine(cfg, factory, registry, engineOpts...)

	opts := crew.KickoffOptions{
		Inputs:      inputs,
		OutputDir:   kickoffOutputDir,
		TokenBudget: kickoffBudget,
		Model:       kickoffModel,
	}
	if !kickoffNoInput {
		opts.Prompter = &stdinPrompter{}
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Reviewer prompts need exclusive stdin, so crews with human_input
	// tasks run in plain mode.
	if kickoffPlain || hasHumanInput(team) {
		return kickoffPlainMode(ctx, engine, team, opts)
	}
	return kickoffTUIMode(ctx, engine, team, opts, cfg.TUI.RefreshRate)
}

// resolveCrew picks the crew definition from flag, argument, or the
// default crew file.
func resolveCrew(args []string) (*models.Crew, error) {
	if kickoffFile != "" {
		return crewfile.Load(kickoffFile)
	}
	if len(args) == 1 {
		return library.Get(args[0])
	}
	if crewfile.Exists(crewfile.DefaultName) {
		return crewfile.Load(crewfile.DefaultName)
	}
	return nil, fmt.Errorf("no crew given: name a built-in crew, pass -f, or add a %s", crewfile.DefaultName)
}

// parseInputs converts repeated key=value flags into a map.
func parseInputs(pairs []string) (map[string]string, error) {
	inputs := make(map[string]string, len(pairs))
	for _, pair := range pairs {
		key, value, ok := strings.Cut(pair, "=")
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid --input %q, want key=value", pair)
		}
		inputs[key] = value
	}
	return inputs, nil
}

// promptMissingInputs asks on stdin for required inputs that were not
// supplied, unless --no-input forbids prompting.
func promptMissingInputs(team *models.Crew, inputs map[string]string) error {
	reader := bufio.NewReader(os.Stdin)
	for _, in := range team.Inputs {
		if !in.Required || in.Default != "" {
			continue
		}
		if _, ok := inputs[in.Name]; ok {
			continue
		}
		if kickoffNoInput {
			return fmt.Errorf("missing required input %q", in.Name)
		}

		if in.Description != "" {
			fmt.Printf("%s (%s): ", in.Name, in.Description)
		} else {
			fmt.Printf("%s: ", in.Name)
		}
		line, err := reader.ReadString('\n')
		if err != nil {
			return fmt.Errorf("reading input %q: %w", in.Name, err)
		}
		inputs[in.Name] = strings.TrimSpace(line)
	}
	return nil
}

func hasHumanInput(team *models.Crew) bool {
	for _, t := range team.Tasks {
		if t.HumanInput {
			return true
		}
	}
	return false
}

// stdinPrompter collects reviewer feedback from the terminal.
type stdinPrompter struct{}

func (p *stdinPrompter) Ask(question string) (string, error) {
	fmt.Println()
	fmt.Print(question)
	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// kickoffPlainMode prints events as colored lines while the run executes.
func kickoffPlainMode(ctx context.Context, engine *crew.Engine, team *models.Crew, opts crew.KickoffOptions) error {
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		printEvents(engine.Events())
	}()

	res, err := engine.Kickoff(ctx, team, opts)
	engine.CloseEvents()
	wg.Wait()
	warnDroppedEvents(engine)

	if err != nil {
		return err
	}
	printSummary(res)
	return nil
}

// warnDroppedEvents reports progress events lost to a slow subscriber.
func warnDroppedEvents(engine *crew.Engine) {
	if n := engine.DroppedEvents(); n > 0 {
		fmt.Fprintf(os.Stderr, "warning: %d progress events were dropped\n", n)
	}
}

// printEvents renders the event stream until it closes.
func printEvents(events <-chan crew.KickoffEvent) {
	started := color.New(color.FgCyan)
	done := color.New(color.FgGreen)
	failed := color.New(color.FgRed)
	dim := color.New(color.Faint)

	for ev := range events {
		switch ev.Type {
		case crew.EventRunStarted:
			fmt.Println(ev.Message)
		case crew.EventTaskStarted:
			started.Printf("▶ %s\n", ev.Message)
		case crew.EventTaskCompleted:
			done.Printf("✓ %s\n", ev.Message)
		case crew.EventTaskFailed:
			failed.Printf("✗ task %q failed: %v\n", ev.Task, ev.Err)
		case crew.EventDelegated, crew.EventHumanInput:
			dim.Printf("• %s\n", ev.Message)
		}
	}
}

// kickoffTUIMode runs the engine behind the live TUI.
func kickoffTUIMode(ctx context.Context, engine *crew.Engine, team *models.Crew, opts crew.KickoffOptions, refresh time.Duration) error {
	// Feedback prompts cannot share the terminal with the TUI.
	opts.Prompter = nil

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	app := tui.New(team.Name, team.Tasks, engine.Events(), refresh)
	program := tea.NewProgram(app)

	var (
		res    *crew.KickoffResult
		runErr error
		wg     sync.WaitGroup
	)
	wg.Add(1)
	go func() {
		defer wg.Done()
		res, runErr = engine.Kickoff(ctx, team, opts)
		engine.CloseEvents()
	}()

	if _, err := program.Run(); err != nil {
		return fmt.Errorf("running TUI: %w", err)
	}
	// Quitting the TUI early cancels the run.
	cancel()
	wg.Wait()
	warnDroppedEvents(engine)

	if runErr != nil {
		return runErr
	}
	printSummary(res)
	return nil
}

// printSummary reports where the run's outputs landed.
func printSummary(res *crew.KickoffResult) {
	bold := color.New(color.Bold)
	dim := color.New(color.Faint)

	fmt.Println()
	bold.Printf("Run %s finished in %s\n", res.RunID, res.Duration.Round(1e9))
	dim.Printf("tokens: %d in / %d out, est. $%.4f\n", res.TokensIn, res.TokensOut, res.Cost)
	for _, tr := range res.TaskResults {
		if tr.OutputPath != "" {
			fmt.Printf("  %s → %s\n", tr.Task, tr.OutputPath)
		}
	}
	fmt.Printf("artifacts: %s\n", res.ArtifactDir)
}
