package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
)

// ToolSet is the tool surface an AgentLoop exposes to the model.
// The tools package provides the concrete registry.
type ToolSet interface {
	// Definitions returns the SDK tool schemas.
	Definitions() []anthropic.ToolUnionParam
	// Execute runs a tool by name. A failed tool returns isError=true
	// with a message the model can act on; it never aborts the loop.
	Execute(ctx context.Context, name string, input json.RawMessage) (content string, isError bool)
}

// StreamEvent represents an event during agent execution for streaming to UI.
type StreamEvent struct {
	Type    string // "text", "tool_use", "tool_result", "done", "error"
	Content string
	Tool    string
	Input   json.RawMessage
}

// LoopResult contains the results of an agent loop execution.
type LoopResult struct {
	Output     string
	TokensIn   int64
	TokensOut  int64
	Cost       float64 // Estimated USD cost of the loop's API calls
	ToolCalls  int
	Iterations int
	Stopped    bool // True if stopped by signal
}

// Runner executes a single agent conversation. The crew engine depends
// on this interface so tests can substitute a fake.
type Runner interface {
	Run(ctx context.Context, systemPrompt, userPrompt string) (*LoopResult, error)
}

// RunnerFactory builds a Runner for one task execution.
type RunnerFactory interface {
	NewRunner(model string, tools ToolSet, maxIterations int) (Runner, error)
}

// AgentLoop manages the API call and tool execution cycle.
type AgentLoop struct {
	client        *Client
	tools         ToolSet
	signals       *Signals
	onStream      func(StreamEvent)
	maxIterations int
}

// AgentLoopConfig contains configuration for the agent loop.
type AgentLoopConfig struct {
	Client        *Client
	Tools         ToolSet
	Signals       *Signals
	MaxIterations int // Max API calls before stopping (0 = default)
}

// NewAgentLoop creates a new agent loop with the given configuration.
func NewAgentLoop(cfg AgentLoopConfig) *AgentLoop {
	maxIter := cfg.MaxIterations
	if maxIter == 0 {
		maxIter = 12
	}

	return &AgentLoop{
		client:        cfg.Client,
		tools:         cfg.Tools,
		signals:       cfg.Signals,
		maxIterations: maxIter,
	}
}

// SetStreamHandler sets a callback for streaming events during execution.
func (l *AgentLoop) SetStreamHandler(fn func(StreamEvent)) {
	l.onStream = fn
}

// emit sends a stream event if a handler is configured.
func (l *AgentLoop) emit(event StreamEvent) {
	if l.onStream != nil {
		l.onStream(event)
	}
}

// Run executes the agent loop with the given prompts.
func (l *AgentLoop) Run(ctx context.Context, systemPrompt, userPrompt string) (*LoopResult, error) {
	result := &LoopResult{}

	// Inject shared run notes and honor a pre-start stop signal.
	if l.signals != nil {
		notes := l.signals.ReadNotes()
		if notes != "" {
			systemPrompt = fmt.Sprintf("%s\n\n## Run Notes\n%s", systemPrompt, notes)
		}

		if l.signals.ShouldStop() {
			result.Stopped = true
			return result, fmt.Errorf("stop signal received before start")
		}
	}

	var toolDefs []anthropic.ToolUnionParam
	if l.tools != nil {
		toolDefs = l.tools.Definitions()
	}

	messages := []anthropic.MessageParam{
		anthropic.NewUserMessage(anthropic.NewTextBlock(userPrompt)),
	}

	for result.Iterations < l.maxIterations {
		result.Iterations++

		if l.signals != nil {
			if l.signals.ShouldStop() {
				result.Stopped = true
				return result, fmt.Errorf("stop signal received")
			}
			if err := l.waitWhilePaused(ctx); err != nil {
				result.Stopped = true
				return result, err
			}
		}

		resp, err := l.client.sdk().Messages.New(ctx, anthropic.MessageNewParams{
			Model:     l.client.Model(),
			MaxTokens: 8192,
			System: []anthropic.TextBlockParam{
				{Text: systemPrompt},
			},
			Messages: messages,
			Tools:    toolDefs,
		})
		if err != nil {
			l.emit(StreamEvent{Type: "error", Content: err.Error()})
			return result, fmt.Errorf("API call failed: %w", err)
		}

		result.TokensIn += resp.Usage.InputTokens
		result.TokensOut += resp.Usage.OutputTokens
		result.Cost += EstimateCost(l.client.Model(), resp.Usage.InputTokens, resp.Usage.OutputTokens)
		l.client.Tracker().Add(resp.Usage.InputTokens, resp.Usage.OutputTokens)

		var assistantBlocks []anthropic.ContentBlockParamUnion
		var toolResultBlocks []anthropic.ContentBlockParamUnion
		var textOutput string

		for _, block := range resp.Content {
			switch variant := block.AsAny().(type) {
			case anthropic.TextBlock:
				textOutput += variant.Text
				l.emit(StreamEvent{Type: "text", Content: variant.Text})
				assistantBlocks = append(assistantBlocks, anthropic.NewTextBlock(variant.Text))

			case anthropic.ToolUseBlock:
				result.ToolCalls++

				l.emit(StreamEvent{
					Type:  "tool_use",
					Tool:  variant.Name,
					Input: variant.Input,
				})
				assistantBlocks = append(assistantBlocks,
					anthropic.NewToolUseBlock(variant.ID, variant.Input, variant.Name))

				content, isErr := l.executeTool(ctx, variant.Name, variant.Input)
				l.emit(StreamEvent{
					Type:    "tool_result",
					Tool:    variant.Name,
					Content: truncateForDisplay(content),
				})

				toolResultBlocks = append(toolResultBlocks,
					anthropic.NewToolResultBlock(variant.ID, content, isErr))
			}
		}

		// Done when the model stops asking for tools.
		if resp.StopReason == anthropic.StopReasonEndTurn {
			result.Output = textOutput
			l.emit(StreamEvent{Type: "done"})
			return result, nil
		}

		messages = append(messages, anthropic.NewAssistantMessage(assistantBlocks...))
		if len(toolResultBlocks) > 0 {
			messages = append(messages, anthropic.NewUserMessage(toolResultBlocks...))
		}
	}

	return result, fmt.Errorf("max iterations (%d) reached", l.maxIterations)
}

// waitWhilePaused blocks while the pause signal file is present,
// returning early if the run is stopped or the context ends.
func (l *AgentLoop) waitWhilePaused(ctx context.Context) error {
	paused := false
	for l.signals.ShouldPause() {
		if !paused {
			paused = true
			l.emit(StreamEvent{Type: "text", Content: "paused, remove the pause signal to resume"})
		}
		if l.signals.ShouldStop() {
			return fmt.Errorf("stop signal received while paused")
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(500 * time.Millisecond):
		}
	}
	if paused {
		l.emit(StreamEvent{Type: "text", Content: "resumed"})
	}
	return nil
}

// executeTool dispatches a tool call to the tool set.
func (l *AgentLoop) executeTool(ctx context.Context, name string, input json.RawMessage) (string, bool) {
	if l.tools == nil {
		return fmt.Sprintf("No tools are available, cannot run %s", name), true
	}
	return l.tools.Execute(ctx, name, input)
}

func truncateForDisplay(s string) string {
	if len(s) > 500 {
		return s[:500] + "..."
	}
	return s
}
