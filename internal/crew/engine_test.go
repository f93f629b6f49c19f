package crew

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"crewforge/internal/config"
	"crewforge/internal/llm"
	"crewforge/internal/tools"
	"crewforge/pkg/models"
)

// fakeRunner replays a canned response function.
type fakeRunner struct {
	model   string
	toolset llm.ToolSet
	respond func(model, system, user string, toolset llm.ToolSet) (*llm.LoopResult, error)
}

func (f *fakeRunner) Run(ctx context.Context, system, user string) (*llm.LoopResult, error) {
	return f.respond(f.model, system, user, f.toolset)
}

// fakeFactory hands out fakeRunners and records every request.
type fakeFactory struct {
	mu      sync.Mutex
	models  []string
	respond func(model, system, user string, toolset llm.ToolSet) (*llm.LoopResult, error)
}

func (f *fakeFactory) NewRunner(model string, toolset llm.ToolSet, maxIterations int) (llm.Runner, error) {
	f.mu.Lock()
	f.models = append(f.models, model)
	f.mu.Unlock()
	return &fakeRunner{model: model, toolset: toolset, respond: f.respond}, nil
}

// echoFactory answers every prompt with a marker derived from the task
// description, so tests can assert on context chaining.
func echoFactory() *fakeFactory {
	return &fakeFactory{
		respond: func(model, system, user string, toolset llm.ToolSet) (*llm.LoopResult, error) {
			return &llm.LoopResult{
				Output:     "output for: " + firstLine(user),
				TokensIn:   100,
				TokensOut:  50,
				Iterations: 1,
			}, nil
		},
	}
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := config.Default()
	cfg.Defaults.OutputDir = t.TempDir()
	return cfg
}

func testCrew() *models.Crew {
	return &models.Crew{
		Name:        "blog-writer",
		Description: "Writes a blog post",
		Process:     models.ProcessSequential,
		Inputs: []models.InputSpec{
			{Name: "topic", Required: true},
		},
		Agents: []models.Agent{
			{Role: "Content Planner", Goal: "Plan an article about {topic}"},
			{Role: "Content Writer", Goal: "Write the article"},
		},
		Tasks: []models.Task{
			{
				Name:           "plan",
				Description:    "Plan an article about {topic}",
				ExpectedOutput: "An outline",
				Agent:          "Content Planner",
			},
			{
				Name:           "write",
				Description:    "Write the article",
				ExpectedOutput: "A finished article",
				Agent:          "Content Writer",
				Context:        []string{"plan"},
				OutputFile:     "article.md",
			},
		},
	}
}

func drainEvents(e *Engine) []KickoffEvent {
	var events []KickoffEvent
	for {
		select {
		case ev := <-e.Events():
			events = append(events, ev)
		default:
			return events
		}
	}
}

func TestKickoff_Sequential(t *testing.T) {
	factory := echoFactory()
	e := NewEngine(testConfig(t), factory, tools.NewRegistry())

	res, err := e.Kickoff(context.Background(), testCrew(), KickoffOptions{
		Inputs: map[string]string{"topic": "Go generics"},
	})
	if err != nil {
		t.Fatalf("Kickoff failed: %v", err)
	}

	if len(res.TaskResults) != 2 {
		t.Fatalf("TaskResults = %d, want 2", len(res.TaskResults))
	}
	if res.TaskResults[0].Task != "plan" || res.TaskResults[1].Task != "write" {
		t.Errorf("task order = %s, %s", res.TaskResults[0].Task, res.TaskResults[1].Task)
	}
	if !strings.Contains(res.TaskResults[0].Output, "Go generics") {
		t.Errorf("input not interpolated into prompt: %q", res.TaskResults[0].Output)
	}
	if res.FinalOutput != res.TaskResults[1].Output {
		t.Errorf("final output is not the last task's output")
	}
	if res.TokensIn != 200 || res.TokensOut != 100 {
		t.Errorf("tokens = (%d, %d)", res.TokensIn, res.TokensOut)
	}

	artifact := filepath.Join(res.ArtifactDir, "article.md")
	if _, err := os.Stat(artifact); err != nil {
		t.Errorf("artifact not written: %v", err)
	}
	if _, err := os.Stat(filepath.Join(res.ArtifactDir, "final_output.md")); err != nil {
		t.Errorf("final output not written: %v", err)
	}
}

func TestKickoff_ContextChaining(t *testing.T) {
	var writePrompt string
	factory := &fakeFactory{
		respond: func(model, system, user string, toolset llm.ToolSet) (*llm.LoopResult, error) {
			if strings.Contains(user, "Write the article") {
				writePrompt = user
			}
			return &llm.LoopResult{Output: "output for: " + firstLine(user)}, nil
		},
	}
	e := NewEngine(testConfig(t), factory, tools.NewRegistry())

	_, err := e.Kickoff(context.Background(), testCrew(), KickoffOptions{
		Inputs: map[string]string{"topic": "testing"},
	})
	if err != nil {
		t.Fatalf("Kickoff failed: %v", err)
	}

	if !strings.Contains(writePrompt, "Context from earlier tasks") {
		t.Error("writer prompt missing context section")
	}
	if !strings.Contains(writePrompt, "output for: Plan an article about testing") {
		t.Errorf("planner output not fed into writer prompt:\n%s", writePrompt)
	}
}

func TestKickoff_MissingInput(t *testing.T) {
	e := NewEngine(testConfig(t), echoFactory(), tools.NewRegistry())

	_, err := e.Kickoff(context.Background(), testCrew(), KickoffOptions{})
	if err == nil || !strings.Contains(err.Error(), "missing required input") {
		t.Fatalf("err = %v", err)
	}
}

func TestKickoff_BudgetExceeded(t *testing.T) {
	e := NewEngine(testConfig(t), echoFactory(), tools.NewRegistry())

	// First task burns 150 tokens, over the 100 budget before task two.
	_, err := e.Kickoff(context.Background(), testCrew(), KickoffOptions{
		Inputs:      map[string]string{"topic": "x"},
		TokenBudget: 100,
	})
	if !errors.Is(err, ErrBudgetExceeded) {
		t.Fatalf("err = %v, want ErrBudgetExceeded", err)
	}
}

func TestKickoff_Canceled(t *testing.T) {
	e := NewEngine(testConfig(t), echoFactory(), tools.NewRegistry())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := e.Kickoff(ctx, testCrew(), KickoffOptions{
		Inputs: map[string]string{"topic": "x"},
	})
	if !errors.Is(err, ErrCanceled) {
		t.Fatalf("err = %v, want ErrCanceled", err)
	}
}

func TestKickoff_AsyncJoinedBeforeDependent(t *testing.T) {
	c := testCrew()
	c.Tasks[0].Async = true

	e := NewEngine(testConfig(t), echoFactory(), tools.NewRegistry())

	res, err := e.Kickoff(context.Background(), c, KickoffOptions{
		Inputs: map[string]string{"topic": "x"},
	})
	if err != nil {
		t.Fatalf("Kickoff failed: %v", err)
	}
	if len(res.TaskResults) != 2 {
		t.Fatalf("TaskResults = %d, want 2", len(res.TaskResults))
	}
	// The async planner result must land before the writer runs.
	if res.TaskResults[0].Task != "plan" {
		t.Errorf("async task not joined first: %v", res.TaskResults[0].Task)
	}
}

func TestKickoff_AsyncChainWaitsForContext(t *testing.T) {
	c := testCrew()
	c.Tasks[0].Async = true
	c.Tasks[1].Async = true

	var mu sync.Mutex
	var writePrompt string
	factory := &fakeFactory{
		respond: func(model, system, user string, toolset llm.ToolSet) (*llm.LoopResult, error) {
			if strings.Contains(user, "Write the article") {
				mu.Lock()
				writePrompt = user
				mu.Unlock()
			}
			return &llm.LoopResult{Output: "output for: " + firstLine(user)}, nil
		},
	}

	e := NewEngine(testConfig(t), factory, tools.NewRegistry())
	_, err := e.Kickoff(context.Background(), c, KickoffOptions{
		Inputs: map[string]string{"topic": "x"},
	})
	if err != nil {
		t.Fatalf("Kickoff failed: %v", err)
	}

	// The async writer must not start until the async planner's output
	// is available for its context section.
	if !strings.Contains(writePrompt, "output for: Plan an article about x") {
		t.Errorf("writer started without planner output:\n%s", writePrompt)
	}
}

func TestKickoff_AsyncJoinedOnFailure(t *testing.T) {
	release := make(chan struct{})
	factory := &fakeFactory{
		respond: func(model, system, user string, toolset llm.ToolSet) (*llm.LoopResult, error) {
			if strings.Contains(user, "Plan an article") {
				<-release
				return &llm.LoopResult{Output: "late plan"}, nil
			}
			close(release)
			return nil, fmt.Errorf("api unavailable")
		},
	}

	c := testCrew()
	c.Tasks[0].Async = true
	c.Tasks[1].Context = nil

	e := NewEngine(testConfig(t), factory, tools.NewRegistry())
	_, err := e.Kickoff(context.Background(), c, KickoffOptions{
		Inputs: map[string]string{"topic": "x"},
	})
	if err == nil || !strings.Contains(err.Error(), "api unavailable") {
		t.Fatalf("err = %v", err)
	}

	// All async goroutines were joined before Kickoff returned, so
	// closing and draining the event stream must not panic.
	e.CloseEvents()
	var planDone bool
	for ev := range e.Events() {
		if ev.Type == EventTaskCompleted && ev.Task == "plan" {
			planDone = true
		}
	}
	if !planDone {
		t.Error("async task was abandoned instead of joined")
	}
}

func TestKickoff_TaskFailure(t *testing.T) {
	factory := &fakeFactory{
		respond: func(model, system, user string, toolset llm.ToolSet) (*llm.LoopResult, error) {
			return &llm.LoopResult{}, fmt.Errorf("api unavailable")
		},
	}
	e := NewEngine(testConfig(t), factory, tools.NewRegistry())

	_, err := e.Kickoff(context.Background(), testCrew(), KickoffOptions{
		Inputs: map[string]string{"topic": "x"},
	})
	if err == nil || !strings.Contains(err.Error(), "api unavailable") {
		t.Fatalf("err = %v", err)
	}

	var failed bool
	for _, ev := range drainEvents(e) {
		if ev.Type == EventTaskFailed {
			failed = true
		}
	}
	if !failed {
		t.Error("no task_failed event emitted")
	}
}

func TestKickoff_ModelOverride(t *testing.T) {
	factory := echoFactory()
	c := testCrew()
	c.Agents[0].Model = "haiku"

	e := NewEngine(testConfig(t), factory, tools.NewRegistry())
	_, err := e.Kickoff(context.Background(), c, KickoffOptions{
		Inputs: map[string]string{"topic": "x"},
		Model:  "opus",
	})
	if err != nil {
		t.Fatalf("Kickoff failed: %v", err)
	}

	for _, m := range factory.models {
		if m != "opus" {
			t.Errorf("model = %q, want run override %q", m, "opus")
		}
	}
}

func TestKickoff_Hierarchical(t *testing.T) {
	var managerTools llm.ToolSet
	factory := &fakeFactory{
		respond: func(model, system, user string, toolset llm.ToolSet) (*llm.LoopResult, error) {
			if strings.Contains(system, "Crew Manager") {
				managerTools = toolset
			}
			return &llm.LoopResult{Output: "done: " + firstLine(user), TokensIn: 10, TokensOut: 5}, nil
		},
	}

	c := testCrew()
	c.Process = models.ProcessHierarchical
	c.Tasks[0].Agent = ""
	c.Tasks[1].Agent = ""

	e := NewEngine(testConfig(t), factory, tools.NewRegistry())
	res, err := e.Kickoff(context.Background(), c, KickoffOptions{
		Inputs: map[string]string{"topic": "x"},
	})
	if err != nil {
		t.Fatalf("Kickoff failed: %v", err)
	}

	if len(res.TaskResults) != 2 {
		t.Fatalf("TaskResults = %d", len(res.TaskResults))
	}
	for _, tr := range res.TaskResults {
		if tr.Agent != "Crew Manager" {
			t.Errorf("task %q run by %q, want Crew Manager", tr.Task, tr.Agent)
		}
	}

	if managerTools == nil {
		t.Fatal("manager runner never created")
	}
	defs := managerTools.Definitions()
	var hasDelegate bool
	for _, d := range defs {
		if d.OfTool != nil && d.OfTool.Name == "delegate_work" {
			hasDelegate = true
		}
	}
	if !hasDelegate {
		t.Error("manager toolset missing delegate_work")
	}
}

func testSignals(t *testing.T) *llm.Signals {
	t.Helper()
	s, err := llm.NewSignals(t.TempDir())
	if err != nil {
		t.Fatalf("NewSignals failed: %v", err)
	}
	t.Cleanup(s.Close)
	return s
}

func TestKickoff_AgentMessageInjected(t *testing.T) {
	s := testSignals(t)
	if err := s.WriteAgentMessage("Content Planner", "focus on the beginner angle"); err != nil {
		t.Fatalf("WriteAgentMessage failed: %v", err)
	}

	var mu sync.Mutex
	var planPrompt string
	factory := &fakeFactory{
		respond: func(model, system, user string, toolset llm.ToolSet) (*llm.LoopResult, error) {
			if strings.Contains(user, "Plan an article") {
				mu.Lock()
				planPrompt = user
				mu.Unlock()
			}
			return &llm.LoopResult{Output: "ok"}, nil
		},
	}

	e := NewEngine(testConfig(t), factory, tools.NewRegistry(), WithSignals(s))
	_, err := e.Kickoff(context.Background(), testCrew(), KickoffOptions{
		Inputs: map[string]string{"topic": "x"},
	})
	if err != nil {
		t.Fatalf("Kickoff failed: %v", err)
	}

	if !strings.Contains(planPrompt, "Message from a coworker") ||
		!strings.Contains(planPrompt, "focus on the beginner angle") {
		t.Errorf("pending message not delivered with the task:\n%s", planPrompt)
	}
	if got := s.ReadAgentMessage("Content Planner"); got != "" {
		t.Errorf("message not consumed: %q", got)
	}
}

func TestDelegateWork_WritesHandoff(t *testing.T) {
	s := testSignals(t)

	var mu sync.Mutex
	var midRunMessage string
	factory := &fakeFactory{
		respond: func(model, system, user string, toolset llm.ToolSet) (*llm.LoopResult, error) {
			mu.Lock()
			midRunMessage = s.ReadAgentMessage("Content Writer")
			mu.Unlock()
			return &llm.LoopResult{Output: "the intro"}, nil
		},
	}

	e := NewEngine(testConfig(t), factory, tools.NewRegistry(), WithSignals(s))
	r := &run{
		engine:  e,
		crew:    testCrew(),
		runID:   "run1",
		start:   time.Now(),
		results: make(map[string]*models.TaskResult),
	}

	d := newDelegateWork(r, "Content Planner")
	out, err := d.Execute(context.Background(),
		[]byte(`{"coworker":"Content Writer","task":"write the intro","context":"outline is done"}`))
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}
	if out != "the intro" {
		t.Errorf("out = %q", out)
	}

	// The handoff is on file while the coworker works and cleared after.
	if !strings.Contains(midRunMessage, "Handoff from Content Planner: write the intro") ||
		!strings.Contains(midRunMessage, "outline is done") {
		t.Errorf("handoff not recorded for the coworker: %q", midRunMessage)
	}
	if got := s.ReadAgentMessage("Content Writer"); got != "" {
		t.Errorf("handoff not cleared after completion: %q", got)
	}
}

// scriptedPrompter returns feedback on the first call only.
type scriptedPrompter struct {
	feedback string
	calls    int
}

func (p *scriptedPrompter) Ask(question string) (string, error) {
	p.calls++
	if p.calls == 1 {
		return p.feedback, nil
	}
	return "", nil
}

func TestKickoff_HumanInputRevision(t *testing.T) {
	var prompts []string
	factory := &fakeFactory{
		respond: func(model, system, user string, toolset llm.ToolSet) (*llm.LoopResult, error) {
			prompts = append(prompts, user)
			return &llm.LoopResult{Output: fmt.Sprintf("draft %d", len(prompts)), TokensIn: 10, TokensOut: 5}, nil
		},
	}

	c := testCrew()
	c.Tasks[1].HumanInput = true

	prompter := &scriptedPrompter{feedback: "make it shorter"}
	e := NewEngine(testConfig(t), factory, tools.NewRegistry())
	res, err := e.Kickoff(context.Background(), c, KickoffOptions{
		Inputs:   map[string]string{"topic": "x"},
		Prompter: prompter,
	})
	if err != nil {
		t.Fatalf("Kickoff failed: %v", err)
	}

	// plan, write draft, write revision.
	if len(prompts) != 3 {
		t.Fatalf("runner calls = %d, want 3", len(prompts))
	}
	if !strings.Contains(prompts[2], "make it shorter") {
		t.Errorf("revision prompt missing feedback:\n%s", prompts[2])
	}
	if res.TaskResults[1].Output != "draft 3" {
		t.Errorf("revision did not replace output: %q", res.TaskResults[1].Output)
	}
}

// countingRecorder tracks recorder calls.
type countingRecorder struct {
	mu             sync.Mutex
	starts, tasks  int
	ends           []string
	process, model string
	artifactDir    string
}

func (c *countingRecorder) RecordRunStart(runID, crewName, process, model string, inputs map[string]string, artifactDir string, startedAt time.Time) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.starts++
	c.process = process
	c.model = model
	c.artifactDir = artifactDir
	return nil
}

func (c *countingRecorder) RecordTaskRun(runID string, result *models.TaskResult, status models.TaskStatus, errMsg string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.tasks++
	return nil
}

func (c *countingRecorder) RecordRunEnd(runID, status string, tokensIn, tokensOut int64, cost float64, finalOutput string, endedAt time.Time) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ends = append(c.ends, status)
	return nil
}

func TestKickoff_RecordsHistory(t *testing.T) {
	rec := &countingRecorder{}
	e := NewEngine(testConfig(t), echoFactory(), tools.NewRegistry(), WithRecorder(rec))

	res, err := e.Kickoff(context.Background(), testCrew(), KickoffOptions{
		Inputs: map[string]string{"topic": "x"},
	})
	if err != nil {
		t.Fatalf("Kickoff failed: %v", err)
	}

	if rec.starts != 1 {
		t.Errorf("starts = %d", rec.starts)
	}
	if rec.tasks != 2 {
		t.Errorf("tasks = %d", rec.tasks)
	}
	if len(rec.ends) != 1 || rec.ends[0] != "completed" {
		t.Errorf("ends = %v", rec.ends)
	}
	if rec.process != string(models.ProcessSequential) {
		t.Errorf("recorded process = %q", rec.process)
	}
	if rec.model == "" {
		t.Error("recorded model is empty")
	}
	if rec.artifactDir != res.ArtifactDir {
		t.Errorf("recorded artifact dir = %q, want %q", rec.artifactDir, res.ArtifactDir)
	}
}
