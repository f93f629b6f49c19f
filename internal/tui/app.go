// Package tui provides the terminal user interface for crewforge runs.
package tui

import (
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"crewforge/internal/crew"
	"crewforge/pkg/models"
)

// EventMsg wraps a crew event for the bubbletea loop.
type EventMsg crew.KickoffEvent

// DoneMsg signals that the event stream has closed.
type DoneMsg struct{}

// tickMsg redraws the footer clock at the configured refresh rate.
type tickMsg time.Time

const maxOutputLines = 500

// taskRow is one line in the task checklist.
type taskRow struct {
	name     string
	agent    string
	status   models.TaskStatus
	duration time.Duration
}

// App is the bubbletea model for a live kickoff view.
type App struct {
	crewName string
	events   <-chan crew.KickoffEvent

	spinner spinner.Model
	output  viewport.Model
	ready   bool

	rows  []taskRow
	index map[string]int
	lines []string

	tokensIn  int64
	tokensOut int64
	cost      float64
	start     time.Time
	refresh   time.Duration

	width  int
	height int

	done     bool
	err      error
	quitting bool
}

// New creates a kickoff view for the given crew. Events drive all
// updates; the run itself executes in the caller's goroutine. refresh
// sets how often the elapsed clock redraws.
func New(crewName string, tasks []models.Task, events <-chan crew.KickoffEvent, refresh time.Duration) *App {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))

	rows := make([]taskRow, len(tasks))
	index := make(map[string]int, len(tasks))
	for i, t := range tasks {
		rows[i] = taskRow{name: t.Name, agent: t.Agent, status: models.TaskStatusPending}
		index[t.Name] = i
	}

	if refresh <= 0 {
		refresh = 100 * time.Millisecond
	}

	return &App{
		crewName: crewName,
		events:   events,
		spinner:  sp,
		rows:     rows,
		index:    index,
		start:    time.Now(),
		refresh:  refresh,
		width:    80,
		height:   24,
	}
}

// tick schedules the next footer redraw.
func (a *App) tick() tea.Cmd {
	return tea.Tick(a.refresh, func(t time.Time) tea.Msg { return tickMsg(t) })
}

// Err returns the run error observed in the event stream, if any.
func (a *App) Err() error {
	return a.err
}

// waitForEvent blocks on the next crew event.
func (a *App) waitForEvent() tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-a.events
		if !ok {
			return DoneMsg{}
		}
		return EventMsg(ev)
	}
}

// Init implements tea.Model.
func (a *App) Init() tea.Cmd {
	return tea.Batch(a.spinner.Tick, a.tick(), a.waitForEvent())
}

// Update implements tea.Model.
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			a.quitting = true
			return a, tea.Quit
		}

	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.sizeViewport()

	case spinner.TickMsg:
		var cmd tea.Cmd
		a.spinner, cmd = a.spinner.Update(msg)
		return a, cmd

	case tickMsg:
		if a.done {
			return a, nil
		}
		return a, a.tick()

	case EventMsg:
		a.apply(crew.KickoffEvent(msg))
		if a.done {
			return a, tea.Quit
		}
		return a, a.waitForEvent()

	case DoneMsg:
		a.done = true
		return a, tea.Quit
	}

	var cmd tea.Cmd
	a.output, cmd = a.output.Update(msg)
	return a, cmd
}

// apply folds one crew event into the view state.
func (a *App) apply(ev crew.KickoffEvent) {
	if ev.TokensIn > 0 || ev.TokensOut > 0 {
		a.tokensIn = ev.TokensIn
		a.tokensOut = ev.TokensOut
	}
	if ev.Cost > 0 {
		a.cost = ev.Cost
	}

	switch ev.Type {
	case crew.EventTaskStarted:
		a.setStatus(ev.Task, models.TaskStatusInProgress, ev.Agent, 0)
		a.appendLine(fmt.Sprintf("▶ %s started %q", ev.Agent, ev.Task))

	case crew.EventTaskCompleted:
		a.setStatus(ev.Task, models.TaskStatusDone, ev.Agent, ev.Duration)
		a.appendLine(fmt.Sprintf("✓ %s finished %q (%s)", ev.Agent, ev.Task, ev.Duration.Round(time.Second)))

	case crew.EventTaskFailed:
		a.setStatus(ev.Task, models.TaskStatusFailed, ev.Agent, ev.Duration)
		a.appendLine(fmt.Sprintf("✗ %q failed: %v", ev.Task, ev.Err))

	case crew.EventDelegated, crew.EventHumanInput:
		a.appendLine("• " + ev.Message)

	case crew.EventAgentOutput:
		if ev.Message != "" {
			a.appendLine(ev.Message)
		}

	case crew.EventRunCompleted:
		a.done = true
		a.err = ev.Err
	}
}

// setStatus updates a task row, tolerating unknown names so manager
// delegations do not panic the view.
func (a *App) setStatus(task string, status models.TaskStatus, agent string, d time.Duration) {
	i, ok := a.index[task]
	if !ok {
		return
	}
	a.rows[i].status = status
	if agent != "" {
		a.rows[i].agent = agent
	}
	if d > 0 {
		a.rows[i].duration = d
	}
}

func (a *App) appendLine(line string) {
	a.lines = append(a.lines, line)
	if len(a.lines) > maxOutputLines {
		a.lines = a.lines[len(a.lines)-maxOutputLines:]
	}
	if a.ready {
		a.output.SetContent(joinLines(a.lines))
		a.output.GotoBottom()
	}
}

func (a *App) sizeViewport() {
	// Header, checklist, and footer claim the rest of the screen.
	used := 3 + len(a.rows) + 2
	h := a.height - used
	if h < 3 {
		h = 3
	}
	if !a.ready {
		a.output = viewport.New(a.width, h)
		a.ready = true
	} else {
		a.output.Width = a.width
		a.output.Height = h
	}
	a.output.SetContent(joinLines(a.lines))
	a.output.GotoBottom()
}
