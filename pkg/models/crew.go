// Package models defines the crew domain types shared across crewforge.
package models

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// ErrMissingInput is returned by ResolveInputs when a required input
// has neither a supplied value nor a default.
var ErrMissingInput = errors.New("missing required input")

// Process selects how a crew executes its tasks.
type Process string

const (
	// ProcessSequential runs tasks in declared order, chaining context.
	ProcessSequential Process = "sequential"
	// ProcessHierarchical gives a manager agent control over task assignment.
	ProcessHierarchical Process = "hierarchical"
)

// Valid returns true if the process is a known value.
func (p Process) Valid() bool {
	return p == ProcessSequential || p == ProcessHierarchical
}

// InputSpec declares a named input a crew expects at kickoff.
type InputSpec struct {
	// Name is the placeholder name, referenced as {name} in prompts.
	Name string `json:"name" yaml:"name"`
	// Description is shown when prompting the user for the value.
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
	// Required inputs must be supplied or have a Default.
	Required bool `json:"required,omitempty" yaml:"required,omitempty"`
	// Default is used when the input is not supplied.
	Default string `json:"default,omitempty" yaml:"default,omitempty"`
}

// Crew groups agents and tasks to be executed together.
type Crew struct {
	// Name identifies the crew, e.g. "blog-writer".
	Name string `json:"name" yaml:"name"`
	// Description is a one-line summary shown in listings.
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
	// Process selects sequential or hierarchical execution.
	Process Process `json:"process,omitempty" yaml:"process,omitempty"`
	// ManagerModel is the model alias for the manager agent in
	// hierarchical crews. Empty means the configured default.
	ManagerModel string `json:"manager_model,omitempty" yaml:"manager_model,omitempty"`
	// Inputs declares the kickoff inputs the crew interpolates.
	Inputs []InputSpec `json:"inputs,omitempty" yaml:"inputs,omitempty"`
	// Agents are the crew members.
	Agents []Agent `json:"agents" yaml:"agents"`
	// Tasks are executed according to Process.
	Tasks []Task `json:"tasks" yaml:"tasks"`
}

// placeholderRe matches {name} input references in prompt text.
var placeholderRe = regexp.MustCompile(`\{([a-z][a-z0-9_]*)\}`)

// Validate checks structural consistency of the crew definition.
func (c *Crew) Validate() error {
	if c.Name == "" {
		return fmt.Errorf("crew has no name")
	}
	if len(c.Agents) == 0 {
		return fmt.Errorf("crew %q has no agents", c.Name)
	}
	if len(c.Tasks) == 0 {
		return fmt.Errorf("crew %q has no tasks", c.Name)
	}

	process := c.Process
	if process == "" {
		process = ProcessSequential
	}
	if !process.Valid() {
		return fmt.Errorf("crew %q: unknown process %q", c.Name, c.Process)
	}

	roles := make(map[string]bool, len(c.Agents))
	for _, a := range c.Agents {
		if a.Role == "" {
			return fmt.Errorf("crew %q: agent with empty role", c.Name)
		}
		if a.Goal == "" {
			return fmt.Errorf("crew %q: agent %q has no goal", c.Name, a.Role)
		}
		if roles[a.Role] {
			return fmt.Errorf("crew %q: duplicate agent role %q", c.Name, a.Role)
		}
		roles[a.Role] = true
	}

	seen := make(map[string]bool, len(c.Tasks))
	for i, t := range c.Tasks {
		if t.Name == "" {
			return fmt.Errorf("crew %q: task %d has no name", c.Name, i)
		}
		if seen[t.Name] {
			return fmt.Errorf("crew %q: duplicate task name %q", c.Name, t.Name)
		}
		if t.Description == "" {
			return fmt.Errorf("crew %q: task %q has no description", c.Name, t.Name)
		}
		if t.Agent == "" {
			if process == ProcessSequential {
				return fmt.Errorf("crew %q: task %q has no agent", c.Name, t.Name)
			}
		} else if !roles[t.Agent] {
			return fmt.Errorf("crew %q: task %q references unknown agent %q", c.Name, t.Name, t.Agent)
		}
		for _, ref := range t.Context {
			if !seen[ref] {
				return fmt.Errorf("crew %q: task %q context %q must name an earlier task", c.Name, t.Name, ref)
			}
		}
		seen[t.Name] = true
	}

	// Inputs referenced in prompt text must be declared.
	declared := make(map[string]bool, len(c.Inputs))
	for _, in := range c.Inputs {
		if in.Name == "" {
			return fmt.Errorf("crew %q: input with empty name", c.Name)
		}
		declared[in.Name] = true
	}
	for _, name := range c.placeholders() {
		if !declared[name] {
			return fmt.Errorf("crew %q: prompt references undeclared input {%s}", c.Name, name)
		}
	}

	return nil
}

// placeholders returns the distinct input names referenced in prompt text.
func (c *Crew) placeholders() []string {
	seen := make(map[string]bool)
	var names []string
	collect := func(s string) {
		for _, m := range placeholderRe.FindAllStringSubmatch(s, -1) {
			if !seen[m[1]] {
				seen[m[1]] = true
				names = append(names, m[1])
			}
		}
	}
	for _, a := range c.Agents {
		collect(a.Role)
		collect(a.Goal)
		collect(a.Backstory)
	}
	for _, t := range c.Tasks {
		collect(t.Description)
		collect(t.ExpectedOutput)
	}
	return names
}

// ResolveInputs merges supplied values with declared defaults and
// reports missing required inputs.
func (c *Crew) ResolveInputs(supplied map[string]string) (map[string]string, error) {
	resolved := make(map[string]string, len(c.Inputs))
	for _, in := range c.Inputs {
		if v, ok := supplied[in.Name]; ok && v != "" {
			resolved[in.Name] = v
			continue
		}
		if in.Default != "" {
			resolved[in.Name] = in.Default
			continue
		}
		if in.Required {
			return nil, fmt.Errorf("%w: %q", ErrMissingInput, in.Name)
		}
		resolved[in.Name] = ""
	}
	for name, v := range supplied {
		if _, ok := resolved[name]; !ok {
			resolved[name] = v
		}
	}
	return resolved, nil
}

// Interpolated returns a copy of the crew with {name} placeholders in
// all prompt text replaced from the resolved inputs map.
func (c *Crew) Interpolated(inputs map[string]string) *Crew {
	sub := func(s string) string {
		return placeholderRe.ReplaceAllStringFunc(s, func(m string) string {
			name := strings.Trim(m, "{}")
			if v, ok := inputs[name]; ok {
				return v
			}
			return m
		})
	}

	out := *c
	out.Agents = make([]Agent, len(c.Agents))
	for i, a := range c.Agents {
		a.Role = sub(a.Role)
		a.Goal = sub(a.Goal)
		a.Backstory = sub(a.Backstory)
		out.Agents[i] = a
	}
	out.Tasks = make([]Task, len(c.Tasks))
	for i, t := range c.Tasks {
		// Agent references a role by name, so it substitutes the same
		// way roles do to keep the assignment link intact.
		t.Agent = sub(t.Agent)
		t.Description = sub(t.Description)
		t.ExpectedOutput = sub(t.ExpectedOutput)
		out.Tasks[i] = t
	}
	return &out
}

// AgentByRole returns the agent with the given role, or nil.
func (c *Crew) AgentByRole(role string) *Agent {
	for i := range c.Agents {
		if c.Agents[i].Role == role {
			return &c.Agents[i]
		}
	}
	return nil
}

// TaskByName returns the task with the given name, or nil.
func (c *Crew) TaskByName(name string) *Task {
	for i := range c.Tasks {
		if c.Tasks[i].Name == name {
			return &c.Tasks[i]
		}
	}
	return nil
}
