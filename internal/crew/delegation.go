package crew

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/anthropics/anthropic-sdk-go"

	"crewforge/pkg/models"
)

// DelegateWork lets a manager or a delegating agent hand a piece of
// work to a coworker. The coworker runs a full agent loop with its own
// tools and the result comes back as the tool output.
type DelegateWork struct {
	run     *run
	delegor string
}

// newDelegateWork creates the delegate_work tool. delegor is the role
// doing the delegating; it cannot delegate to itself.
func newDelegateWork(r *run, delegor string) *DelegateWork {
	return &DelegateWork{run: r, delegor: delegor}
}

// Name returns the tool name.
func (d *DelegateWork) Name() string { return "delegate_work" }

// Definition returns the SDK tool schema.
func (d *DelegateWork) Definition() anthropic.ToolUnionParam {
	roles := make([]string, 0, len(d.run.crew.Agents))
	for _, a := range d.run.crew.Agents {
		if a.Role != d.delegor {
			roles = append(roles, a.Role)
		}
	}

	return anthropic.ToolUnionParam{
		OfTool: &anthropic.ToolParam{
			Name:        d.Name(),
			Description: anthropic.String("Delegate a piece of work to a coworker. Available coworkers: " + strings.Join(roles, ", ")),
			InputSchema: anthropic.ToolInputSchemaParam{
				Properties: map[string]interface{}{
					"coworker": map[string]interface{}{
						"type":        "string",
						"description": "The role of the coworker to delegate to",
					},
					"task": map[string]interface{}{
						"type":        "string",
						"description": "A full description of the work to do",
					},
					"context": map[string]interface{}{
						"type":        "string",
						"description": "Everything the coworker needs to know to do the work",
					},
				},
				Required: []string{"coworker", "task"},
			},
		},
	}
}

type delegateInput struct {
	Coworker string `json:"coworker"`
	Task     string `json:"task"`
	Context  string `json:"context"`
}

// Execute runs the coworker's agent loop on the delegated work.
// Delegated runs do not get the delegation tool themselves, so
// delegation cannot recurse.
func (d *DelegateWork) Execute(ctx context.Context, input json.RawMessage) (string, error) {
	var in delegateInput
	if err := json.Unmarshal(input, &in); err != nil {
		return "", fmt.Errorf("invalid input: %w", err)
	}
	if strings.TrimSpace(in.Task) == "" {
		return "", fmt.Errorf("task is required")
	}

	agent := d.findCoworker(in.Coworker)
	if agent == nil {
		return "", fmt.Errorf("no coworker with role %q", in.Coworker)
	}
	if agent.Role == d.delegor {
		return "", fmt.Errorf("cannot delegate work to yourself")
	}

	if err := d.run.checkRunnable(ctx); err != nil {
		return "", err
	}

	toolset, err := d.run.engine.registry.Subset(agent.Tools)
	if err != nil {
		return "", err
	}

	runner, err := d.run.engine.factory.NewRunner(d.run.modelFor(agent), toolset, agent.MaxIterations)
	if err != nil {
		return "", err
	}

	d.run.emit(KickoffEvent{
		Type:    EventDelegated,
		Agent:   agent.Role,
		Message: fmt.Sprintf("%s delegated work to %s", d.delegor, agent.Role),
	})

	// Record the handoff in the coworker's message file. It stays there
	// until the work completes, so an interrupted run leaves the pending
	// handoff for the coworker's next task to pick up.
	signals := d.run.engine.signals
	if signals != nil {
		handoff := fmt.Sprintf("Handoff from %s: %s", d.delegor, in.Task)
		if strings.TrimSpace(in.Context) != "" {
			handoff += "\n\n" + in.Context
		}
		if err := signals.WriteAgentMessage(agent.Role, handoff); err != nil {
			return "", fmt.Errorf("recording handoff to %s: %w", agent.Role, err)
		}
	}

	start := time.Now()
	lr, err := runner.Run(ctx, agent.SystemPrompt(), delegationPrompt(in.Task, in.Context))
	if lr != nil {
		d.run.addTokens(lr.TokensIn, lr.TokensOut)
		d.run.addCost(lr.Cost)
	}
	if err != nil {
		return "", fmt.Errorf("delegated work to %s failed: %w", agent.Role, err)
	}
	if signals != nil {
		signals.ClearAgentMessage(agent.Role)
	}

	d.run.emit(KickoffEvent{
		Type:     EventAgentOutput,
		Agent:    agent.Role,
		Message:  fmt.Sprintf("%s finished delegated work", agent.Role),
		Duration: time.Since(start),
	})
	return lr.Output, nil
}

// findCoworker matches a role case-insensitively, since models often
// vary the casing of role names.
func (d *DelegateWork) findCoworker(role string) *models.Agent {
	want := strings.ToLower(strings.TrimSpace(role))
	for i := range d.run.crew.Agents {
		if strings.ToLower(d.run.crew.Agents[i].Role) == want {
			return &d.run.crew.Agents[i]
		}
	}
	return nil
}
