package tui

import (
	"fmt"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"crewforge/internal/crew"
	"crewforge/pkg/models"
)

func testApp() *App {
	tasks := []models.Task{
		{Name: "plan", Agent: "Content Planner"},
		{Name: "write", Agent: "Content Writer"},
	}
	events := make(chan crew.KickoffEvent)
	app := New("blog-writer", tasks, events, 100*time.Millisecond)
	app.Update(tea.WindowSizeMsg{Width: 80, Height: 24})
	return app
}

func TestApply_TaskProgression(t *testing.T) {
	app := testApp()

	app.apply(crew.KickoffEvent{Type: crew.EventTaskStarted, Task: "plan", Agent: "Content Planner"})
	if app.rows[0].status != models.TaskStatusInProgress {
		t.Errorf("status = %s", app.rows[0].status)
	}

	app.apply(crew.KickoffEvent{
		Type:      crew.EventTaskCompleted,
		Task:      "plan",
		Agent:     "Content Planner",
		Duration:  3 * time.Second,
		TokensIn:  100,
		TokensOut: 50,
		Cost:      0.0012,
	})
	if app.rows[0].status != models.TaskStatusDone {
		t.Errorf("status = %s", app.rows[0].status)
	}
	if app.tokensIn != 100 || app.tokensOut != 50 {
		t.Errorf("tokens = (%d, %d)", app.tokensIn, app.tokensOut)
	}
	if app.cost != 0.0012 {
		t.Errorf("cost = %f", app.cost)
	}
	if !strings.Contains(app.footer(), "$0.0012") {
		t.Errorf("footer missing cost: %q", app.footer())
	}
}

func TestApply_TaskFailed(t *testing.T) {
	app := testApp()

	app.apply(crew.KickoffEvent{Type: crew.EventTaskFailed, Task: "write", Err: fmt.Errorf("boom")})
	if app.rows[1].status != models.TaskStatusFailed {
		t.Errorf("status = %s", app.rows[1].status)
	}
}

func TestApply_UnknownTaskIgnored(t *testing.T) {
	app := testApp()
	// Manager delegations reference work outside the checklist.
	app.apply(crew.KickoffEvent{Type: crew.EventTaskStarted, Task: "side-quest"})
}

func TestApply_RunCompleted(t *testing.T) {
	app := testApp()

	app.apply(crew.KickoffEvent{Type: crew.EventRunCompleted, Err: fmt.Errorf("budget")})
	if !app.done {
		t.Error("done not set")
	}
	if app.Err() == nil {
		t.Error("Err() = nil")
	}
}

func TestView_RendersChecklist(t *testing.T) {
	app := testApp()
	app.apply(crew.KickoffEvent{Type: crew.EventTaskCompleted, Task: "plan", Agent: "Content Planner"})

	view := app.View()
	if !strings.Contains(view, "blog-writer") {
		t.Error("view missing crew name")
	}
	if !strings.Contains(view, "plan") || !strings.Contains(view, "write") {
		t.Error("view missing task rows")
	}
	if !strings.Contains(view, "running") {
		t.Error("view missing footer status")
	}
}

func TestUpdate_QuitKeys(t *testing.T) {
	app := testApp()

	_, cmd := app.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
	if cmd == nil {
		t.Fatal("expected quit command")
	}
}

func TestUpdate_EventStreamClosed(t *testing.T) {
	app := testApp()

	model, cmd := app.Update(DoneMsg{})
	if cmd == nil {
		t.Fatal("expected quit command")
	}
	if !model.(*App).done {
		t.Error("done not set after stream close")
	}
}
