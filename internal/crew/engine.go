package crew

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"crewforge/internal/config"
	"crewforge/internal/graph"
	"crewforge/internal/llm"
	"crewforge/internal/tools"
	"crewforge/pkg/models"
)

var (
	// ErrBudgetExceeded indicates the run hit its token budget.
	ErrBudgetExceeded = errors.New("token budget exceeded")
	// ErrCanceled indicates the run was stopped by a signal or context.
	ErrCanceled = errors.New("run canceled")
)

// Prompter collects feedback from a human reviewer mid-run.
// A nil Prompter skips human input rounds entirely.
type Prompter interface {
	Ask(question string) (string, error)
}

// Recorder persists run history. A nil Recorder disables persistence.
type Recorder interface {
	RecordRunStart(runID, crewName, process, model string, inputs map[string]string, artifactDir string, startedAt time.Time) error
	RecordTaskRun(runID string, result *models.TaskResult, status models.TaskStatus, errMsg string) error
	RecordRunEnd(runID, status string, tokensIn, tokensOut int64, cost float64, finalOutput string, endedAt time.Time) error
}

// Engine executes crews against the configured model backend.
type Engine struct {
	cfg      *config.Config
	factory  llm.RunnerFactory
	registry *tools.Registry
	recorder Recorder
	signals  *llm.Signals
	emitter  *EventEmitter
}

// EngineOption configures an Engine.
type EngineOption func(*Engine)

// WithRecorder attaches a run history recorder.
func WithRecorder(rec Recorder) EngineOption {
	return func(e *Engine) { e.recorder = rec }
}

// WithSignals attaches a signal manager for kill/pause/notes handling.
func WithSignals(s *llm.Signals) EngineOption {
	return func(e *Engine) { e.signals = s }
}

// WithEventBuffer sets the event channel buffer size.
func WithEventBuffer(n int) EngineOption {
	return func(e *Engine) { e.emitter = NewEventEmitter(n) }
}

// NewEngine creates a crew engine.
func NewEngine(cfg *config.Config, factory llm.RunnerFactory, registry *tools.Registry, opts ...EngineOption) *Engine {
	e := &Engine{
		cfg:      cfg,
		factory:  factory,
		registry: registry,
		emitter:  NewEventEmitter(256),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Events returns the event stream for UI subscribers.
func (e *Engine) Events() <-chan KickoffEvent {
	return e.emitter.Events()
}

// CloseEvents closes the event stream once no more runs will start.
func (e *Engine) CloseEvents() {
	e.emitter.Close()
}

// DroppedEvents reports how many events were dropped because no
// subscriber kept up with the stream.
func (e *Engine) DroppedEvents() uint64 {
	return e.emitter.DroppedCount()
}

// KickoffOptions control one run.
type KickoffOptions struct {
	// Inputs fill the crew's declared placeholders.
	Inputs map[string]string
	// OutputDir overrides defaults.output_dir for artifact placement.
	OutputDir string
	// TokenBudget overrides defaults.token_budget (0 keeps the default).
	TokenBudget int64
	// Model overrides every agent's model for this run.
	Model string
	// Prompter handles human_input tasks. Nil skips feedback rounds.
	Prompter Prompter
}

// KickoffResult is the outcome of a run.
type KickoffResult struct {
	RunID       string
	CrewName    string
	FinalOutput string
	TaskResults []*models.TaskResult
	TokensIn    int64
	TokensOut   int64
	Cost        float64
	Duration    time.Duration
	ArtifactDir string
}

// run carries the mutable state of one kickoff.
type run struct {
	engine        *Engine
	crew          *models.Crew
	runID         string
	artifactDir   string
	budget        int64
	modelOverride string
	prompter      Prompter
	start         time.Time

	mu      sync.Mutex
	results map[string]*models.TaskResult
	ordered []*models.TaskResult
	cost    float64

	tokensIn  atomic.Int64
	tokensOut atomic.Int64
}

// Kickoff validates the crew, resolves inputs, and executes every task
// according to the crew's process. It always returns a result, even on
// failure, so callers can report partial progress.
func (e *Engine) Kickoff(ctx context.Context, c *models.Crew, opts KickoffOptions) (*KickoffResult, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}

	inputs, err := c.ResolveInputs(opts.Inputs)
	if err != nil {
		return nil, err
	}
	resolved := c.Interpolated(inputs)

	outputDir := opts.OutputDir
	if outputDir == "" {
		outputDir = e.cfg.Defaults.OutputDir
	}
	runID := uuid.New().String()[:8]
	artifactDir := filepath.Join(outputDir, fmt.Sprintf("%s-%s", resolved.Name, runID))
	if err := os.MkdirAll(artifactDir, 0755); err != nil {
		return nil, fmt.Errorf("creating artifact directory: %w", err)
	}

	budget := opts.TokenBudget
	if budget == 0 {
		budget = e.cfg.Defaults.TokenBudget
	}

	r := &run{
		engine:        e,
		crew:          resolved,
		runID:         runID,
		artifactDir:   artifactDir,
		budget:        budget,
		modelOverride: opts.Model,
		prompter:      opts.Prompter,
		start:         time.Now(),
		results:       make(map[string]*models.TaskResult),
	}

	process := resolved.Process
	if process == "" {
		process = models.ProcessSequential
	}
	model := opts.Model
	if model == "" {
		model = e.cfg.Defaults.Model
	}

	if e.recorder != nil {
		if err := e.recorder.RecordRunStart(runID, resolved.Name, string(process), model, inputs, artifactDir, r.start); err != nil {
			return nil, fmt.Errorf("recording run start: %w", err)
		}
	}

	r.emit(KickoffEvent{
		Type:    EventRunStarted,
		Message: fmt.Sprintf("Kicking off crew %q (%d tasks, %s process)", resolved.Name, len(resolved.Tasks), resolved.Process),
	})

	var runErr error
	switch resolved.Process {
	case models.ProcessHierarchical:
		runErr = r.runHierarchical(ctx)
	default:
		runErr = r.runSequential(ctx)
	}

	result := r.snapshot()
	if runErr == nil {
		if _, err := r.writeFinalOutput(result.FinalOutput); err != nil {
			runErr = fmt.Errorf("writing final output: %w", err)
		}
	}

	status := "completed"
	if runErr != nil {
		status = "failed"
	}
	if e.recorder != nil {
		if err := e.recorder.RecordRunEnd(runID, status, result.TokensIn, result.TokensOut, result.Cost, result.FinalOutput, time.Now()); err != nil && runErr == nil {
			runErr = fmt.Errorf("recording run end: %w", err)
		}
	}

	r.emit(KickoffEvent{
		Type:      EventRunCompleted,
		Message:   fmt.Sprintf("Run %s %s", runID, status),
		Err:       runErr,
		TokensIn:  result.TokensIn,
		TokensOut: result.TokensOut,
		Cost:      result.Cost,
		Duration:  result.Duration,
	})

	return result, runErr
}

// runSequential executes tasks in declaration order. Async tasks run
// concurrently once their context outputs have landed and are joined
// before any task that lists them as context, or at the end of the run.
func (r *run) runSequential(ctx context.Context) error {
	type asyncDone struct {
		res *models.TaskResult
		err error
	}
	pending := make(map[string]chan asyncDone)

	waitFor := func(name string) error {
		ch, ok := pending[name]
		if !ok {
			return nil
		}
		done := <-ch
		delete(pending, name)
		if done.err != nil {
			return done.err
		}
		r.storeResult(done.res)
		return nil
	}

	// drain joins every outstanding async task so no goroutine outlives
	// the run and emits after the event stream has been closed.
	drain := func() {
		for name, ch := range pending {
			done := <-ch
			delete(pending, name)
			if done.err == nil {
				r.storeResult(done.res)
			}
		}
	}

	for i := range r.crew.Tasks {
		task := &r.crew.Tasks[i]

		if err := r.checkRunnable(ctx); err != nil {
			drain()
			return err
		}

		// Context outputs must land before this task starts, async or not.
		for _, dep := range task.Context {
			if err := waitFor(dep); err != nil {
				drain()
				return err
			}
		}

		if task.Async {
			ch := make(chan asyncDone, 1)
			pending[task.Name] = ch
			go func(t *models.Task) {
				agent := r.crew.AgentByRole(t.Agent)
				res, err := r.executeTask(ctx, t, agent)
				ch <- asyncDone{res, err}
			}(task)
			continue
		}

		agent := r.crew.AgentByRole(task.Agent)
		res, err := r.executeTask(ctx, task, agent)
		if err != nil {
			drain()
			return err
		}
		r.storeResult(res)
	}

	names := make([]string, 0, len(pending))
	for name := range pending {
		names = append(names, name)
	}
	for _, name := range names {
		if err := waitFor(name); err != nil {
			drain()
			return err
		}
	}
	return nil
}

// runHierarchical routes tasks through a synthesized manager agent who
// delegates to the crew via the delegate_work tool. Tasks with an
// explicit agent still run directly. Context dependencies decide order.
func (r *run) runHierarchical(ctx context.Context) error {
	taskPtrs := make([]*models.Task, len(r.crew.Tasks))
	for i := range r.crew.Tasks {
		taskPtrs[i] = &r.crew.Tasks[i]
	}

	g := graph.New()
	if err := g.Build(taskPtrs); err != nil {
		return err
	}
	order, err := g.TopologicalSort()
	if err != nil {
		return err
	}

	manager := r.managerAgent()

	for _, name := range order {
		task := r.crew.TaskByName(name)

		if err := r.checkRunnable(ctx); err != nil {
			return err
		}

		var res *models.TaskResult
		if task.Agent != "" {
			res, err = r.executeTask(ctx, task, r.crew.AgentByRole(task.Agent))
		} else {
			res, err = r.executeTask(ctx, task, manager)
		}
		if err != nil {
			return err
		}
		r.storeResult(res)
		g.MarkComplete(name)
	}
	return nil
}

// executeTask runs one task through one agent's loop, handles the
// optional human feedback round, and writes the task artifact.
func (r *run) executeTask(ctx context.Context, task *models.Task, agent *models.Agent) (*models.TaskResult, error) {
	if agent == nil {
		return nil, fmt.Errorf("task %q has no agent to run it", task.Name)
	}

	toolset, err := r.toolsFor(agent)
	if err != nil {
		return nil, err
	}

	runner, err := r.engine.factory.NewRunner(r.modelFor(agent), toolset, agent.MaxIterations)
	if err != nil {
		return nil, err
	}
	if streamer, ok := runner.(llm.Streamer); ok {
		streamer.SetStreamHandler(func(ev llm.StreamEvent) {
			r.emitStream(task.Name, agent.Role, ev)
		})
	}

	r.emit(KickoffEvent{
		Type:    EventTaskStarted,
		Task:    task.Name,
		Agent:   agent.Role,
		Message: fmt.Sprintf("%s started %q", agent.Role, task.Name),
	})

	userPrompt := r.taskPrompt(task)
	if s := r.engine.signals; s != nil {
		// A pending handoff left for this role is delivered with the
		// task and consumed.
		if msg := s.ReadAgentMessage(agent.Role); msg != "" {
			userPrompt += "\n\n# Message from a coworker\n" + msg
			s.ClearAgentMessage(agent.Role)
		}
	}

	start := time.Now()
	lr, err := runner.Run(ctx, agent.SystemPrompt(), userPrompt)
	if lr != nil {
		r.addTokens(lr.TokensIn, lr.TokensOut)
		r.addCost(lr.Cost)
	}
	if err != nil {
		r.recordTask(&models.TaskResult{Task: task.Name, Agent: agent.Role}, models.TaskStatusFailed, err.Error())
		r.emit(KickoffEvent{
			Type:  EventTaskFailed,
			Task:  task.Name,
			Agent: agent.Role,
			Err:   err,
		})
		return nil, fmt.Errorf("task %q: %w", task.Name, err)
	}

	result := &models.TaskResult{
		Task:       task.Name,
		Agent:      agent.Role,
		Output:     lr.Output,
		TokensIn:   lr.TokensIn,
		TokensOut:  lr.TokensOut,
		ToolCalls:  lr.ToolCalls,
		Iterations: lr.Iterations,
	}

	if task.HumanInput && r.prompter != nil {
		if err := r.humanFeedbackRound(ctx, task, agent, runner, result); err != nil {
			return nil, err
		}
	}

	result.Duration = time.Since(start)

	if task.OutputFile != "" {
		path := filepath.Join(r.artifactDir, filepath.Base(task.OutputFile))
		if err := os.WriteFile(path, []byte(result.Output), 0644); err != nil {
			return nil, fmt.Errorf("writing artifact for task %q: %w", task.Name, err)
		}
		result.OutputPath = path
	}

	r.recordTask(result, models.TaskStatusDone, "")
	r.emit(KickoffEvent{
		Type:      EventTaskCompleted,
		Task:      task.Name,
		Agent:     agent.Role,
		Message:   fmt.Sprintf("%s finished %q", agent.Role, task.Name),
		TokensIn:  r.tokensIn.Load(),
		TokensOut: r.tokensOut.Load(),
		Cost:      r.costTotal(),
		Duration:  result.Duration,
	})
	return result, nil
}

// humanFeedbackRound shows the draft to the reviewer and reruns the
// task once if they provide feedback.
func (r *run) humanFeedbackRound(ctx context.Context, task *models.Task, agent *models.Agent, runner llm.Runner, result *models.TaskResult) error {
	r.emit(KickoffEvent{
		Type:    EventHumanInput,
		Task:    task.Name,
		Agent:   agent.Role,
		Message: "Waiting for reviewer feedback",
	})

	question := fmt.Sprintf("Draft for %q by %s:\n\n%s\n\nPress enter to accept, or type feedback for one revision: ",
		task.Name, agent.Role, result.Output)
	feedback, err := r.prompter.Ask(question)
	if err != nil {
		return fmt.Errorf("collecting feedback for task %q: %w", task.Name, err)
	}
	if strings.TrimSpace(feedback) == "" {
		return nil
	}

	lr, err := runner.Run(ctx, agent.SystemPrompt(), revisionPrompt(task, result.Output, feedback))
	if lr != nil {
		r.addTokens(lr.TokensIn, lr.TokensOut)
		r.addCost(lr.Cost)
		result.TokensIn += lr.TokensIn
		result.TokensOut += lr.TokensOut
		result.ToolCalls += lr.ToolCalls
		result.Iterations += lr.Iterations
	}
	if err != nil {
		return fmt.Errorf("revision for task %q: %w", task.Name, err)
	}
	result.Output = lr.Output
	return nil
}

// toolsFor resolves an agent's granted tools, adding delegation when
// the agent is allowed to hand work to coworkers.
func (r *run) toolsFor(agent *models.Agent) (*tools.Registry, error) {
	toolset, err := r.engine.registry.Subset(agent.Tools)
	if err != nil {
		return nil, fmt.Errorf("agent %q: %w", agent.Role, err)
	}
	if agent.AllowDelegation && len(r.crew.Agents) > 1 {
		toolset.Register(newDelegateWork(r, agent.Role))
	}
	return toolset, nil
}

// modelFor picks the model for an agent: run override, then the
// agent's own model, then the configured default.
func (r *run) modelFor(agent *models.Agent) string {
	if r.modelOverride != "" {
		return r.modelOverride
	}
	return agent.Model
}

// checkRunnable fails fast when the run has been canceled or the
// token budget is spent.
func (r *run) checkRunnable(ctx context.Context) error {
	if ctx.Err() != nil {
		return fmt.Errorf("%w: %v", ErrCanceled, ctx.Err())
	}
	if r.engine.signals != nil && r.engine.signals.ShouldStop() {
		return fmt.Errorf("%w: stop signal received", ErrCanceled)
	}
	if r.budget > 0 && r.tokensIn.Load()+r.tokensOut.Load() > r.budget {
		return fmt.Errorf("%w: %d tokens used, budget %d", ErrBudgetExceeded,
			r.tokensIn.Load()+r.tokensOut.Load(), r.budget)
	}
	return nil
}

func (r *run) addTokens(in, out int64) {
	r.tokensIn.Add(in)
	r.tokensOut.Add(out)
}

func (r *run) addCost(c float64) {
	r.mu.Lock()
	r.cost += c
	r.mu.Unlock()
}

func (r *run) costTotal() float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.cost
}

func (r *run) storeResult(res *models.TaskResult) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.results[res.Task] = res
	r.ordered = append(r.ordered, res)
}

func (r *run) resultFor(name string) *models.TaskResult {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.results[name]
}

// recordTask persists a task outcome when a recorder is attached.
func (r *run) recordTask(result *models.TaskResult, status models.TaskStatus, errMsg string) {
	if r.engine.recorder == nil {
		return
	}
	if err := r.engine.recorder.RecordTaskRun(r.runID, result, status, errMsg); err != nil {
		r.emit(KickoffEvent{
			Type:    EventAgentOutput,
			Task:    result.Task,
			Message: fmt.Sprintf("warning: failed to record task run: %v", err),
		})
	}
}

// snapshot builds the result view of the run so far. The final output
// is the output of the last task in declaration order that produced one.
func (r *run) snapshot() *KickoffResult {
	r.mu.Lock()
	defer r.mu.Unlock()

	var final string
	for i := len(r.crew.Tasks) - 1; i >= 0; i-- {
		if res, ok := r.results[r.crew.Tasks[i].Name]; ok {
			final = res.Output
			break
		}
	}

	return &KickoffResult{
		RunID:       r.runID,
		CrewName:    r.crew.Name,
		FinalOutput: final,
		TaskResults: append([]*models.TaskResult(nil), r.ordered...),
		TokensIn:    r.tokensIn.Load(),
		TokensOut:   r.tokensOut.Load(),
		Cost:        r.cost,
		Duration:    time.Since(r.start),
		ArtifactDir: r.artifactDir,
	}
}

// writeFinalOutput saves the run's final answer alongside task artifacts.
func (r *run) writeFinalOutput(output string) (string, error) {
	if output == "" {
		return "", nil
	}
	path := filepath.Join(r.artifactDir, "final_output.md")
	if err := os.WriteFile(path, []byte(output), 0644); err != nil {
		return "", err
	}
	return path, nil
}

func (r *run) emit(ev KickoffEvent) {
	ev.Timestamp = time.Now()
	r.engine.emitter.Emit(ev)
}

// emitStream forwards agent loop stream events onto the run event bus.
func (r *run) emitStream(task, agent string, ev llm.StreamEvent) {
	msg := ev.Content
	if ev.Type == "tool_use" {
		msg = "using " + ev.Tool
	}
	r.emit(KickoffEvent{
		Type:    EventAgentOutput,
		Task:    task,
		Agent:   agent,
		Message: msg,
	})
}
