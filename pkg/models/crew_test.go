package models

import (
	"strings"
	"testing"
)

// validCrew returns a minimal crew that passes validation.
func validCrew() *Crew {
	return &Crew{
		Name:    "blog-writer",
		Process: ProcessSequential,
		Inputs: []InputSpec{
			{Name: "topic", Required: true},
			{Name: "style", Default: "plain prose"},
		},
		Agents: []Agent{
			{Role: "Content Planner", Goal: "Plan content on {topic}", Backstory: "You plan articles in {style}."},
			{Role: "Content Writer", Goal: "Write about {topic}"},
		},
		Tasks: []Task{
			{Name: "plan", Description: "Outline {topic}", ExpectedOutput: "An outline", Agent: "Content Planner"},
			{Name: "write", Description: "Write the post", ExpectedOutput: "A post", Agent: "Content Writer", Context: []string{"plan"}},
		},
	}
}

func TestCrewValidate(t *testing.T) {
	if err := validCrew().Validate(); err != nil {
		t.Fatalf("Validate() = %v, want nil", err)
	}
}

func TestCrewValidate_Errors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Crew)
		want   string
	}{
		{"no name", func(c *Crew) { c.Name = "" }, "no name"},
		{"no agents", func(c *Crew) { c.Agents = nil }, "no agents"},
		{"no tasks", func(c *Crew) { c.Tasks = nil }, "no tasks"},
		{"bad process", func(c *Crew) { c.Process = "parallel" }, "unknown process"},
		{"duplicate role", func(c *Crew) { c.Agents[1].Role = c.Agents[0].Role }, "duplicate agent role"},
		{"agent without goal", func(c *Crew) { c.Agents[0].Goal = "" }, "has no goal"},
		{"duplicate task", func(c *Crew) { c.Tasks[1].Name = "plan" }, "duplicate task name"},
		{"unknown agent", func(c *Crew) { c.Tasks[0].Agent = "Ghost" }, "unknown agent"},
		{"missing task agent", func(c *Crew) { c.Tasks[0].Agent = "" }, "has no agent"},
		{"forward context", func(c *Crew) { c.Tasks[0].Context = []string{"write"} }, "earlier task"},
		{"undeclared input", func(c *Crew) { c.Tasks[0].Description = "Outline {audience}" }, "undeclared input"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := validCrew()
			tt.mutate(c)
			err := c.Validate()
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error %q does not contain %q", err, tt.want)
			}
		})
	}
}

func TestCrewValidate_HierarchicalAllowsUnassignedTasks(t *testing.T) {
	c := validCrew()
	c.Process = ProcessHierarchical
	c.Tasks[0].Agent = ""
	if err := c.Validate(); err != nil {
		t.Fatalf("Validate() = %v, want nil", err)
	}
}

func TestResolveInputs(t *testing.T) {
	c := validCrew()

	got, err := c.ResolveInputs(map[string]string{"topic": "fly fishing"})
	if err != nil {
		t.Fatalf("ResolveInputs failed: %v", err)
	}
	if got["topic"] != "fly fishing" {
		t.Errorf("topic = %q, want %q", got["topic"], "fly fishing")
	}
	if got["style"] != "plain prose" {
		t.Errorf("style default not applied, got %q", got["style"])
	}
}

func TestResolveInputs_MissingRequired(t *testing.T) {
	c := validCrew()
	if _, err := c.ResolveInputs(nil); err == nil {
		t.Fatal("expected error for missing required input")
	}
}

func TestResolveInputs_ExtraSuppliedKept(t *testing.T) {
	c := validCrew()
	got, err := c.ResolveInputs(map[string]string{"topic": "x", "extra": "y"})
	if err != nil {
		t.Fatalf("ResolveInputs failed: %v", err)
	}
	if got["extra"] != "y" {
		t.Errorf("extra input dropped, got %q", got["extra"])
	}
}

func TestInterpolated(t *testing.T) {
	c := validCrew()
	inputs := map[string]string{"topic": "gliders", "style": "trade-press style"}

	out := c.Interpolated(inputs)

	if got := out.Agents[0].Goal; got != "Plan content on gliders" {
		t.Errorf("agent goal = %q", got)
	}
	if got := out.Agents[0].Backstory; !strings.Contains(got, "trade-press style") {
		t.Errorf("backstory not interpolated: %q", got)
	}
	if got := out.Tasks[0].Description; got != "Outline gliders" {
		t.Errorf("task description = %q", got)
	}
	// Original must be untouched.
	if c.Agents[0].Goal != "Plan content on {topic}" {
		t.Errorf("original crew mutated: %q", c.Agents[0].Goal)
	}
}

func TestInterpolated_RolesAndAssignments(t *testing.T) {
	c := validCrew()
	c.Inputs = append(c.Inputs, InputSpec{Name: "region", Required: true})
	c.Agents[1].Role = "{region} Sales Rep"
	c.Tasks[1].Agent = "{region} Sales Rep"

	out := c.Interpolated(map[string]string{"topic": "x", "region": "EMEA"})

	if got := out.Agents[1].Role; got != "EMEA Sales Rep" {
		t.Errorf("role = %q", got)
	}
	if got := out.Tasks[1].Agent; got != "EMEA Sales Rep" {
		t.Errorf("task agent = %q", got)
	}
	if out.AgentByRole(out.Tasks[1].Agent) == nil {
		t.Error("interpolated task agent no longer resolves to its agent")
	}
}

func TestAgentSystemPrompt(t *testing.T) {
	a := Agent{Role: "Editor", Goal: "Polish the post", Backstory: "You edit for a living."}
	got := a.SystemPrompt()
	for _, want := range []string{"You are Editor", "Polish the post", "You edit for a living."} {
		if !strings.Contains(got, want) {
			t.Errorf("SystemPrompt() missing %q:\n%s", want, got)
		}
	}
}

func TestLookupHelpers(t *testing.T) {
	c := validCrew()
	if c.AgentByRole("Content Writer") == nil {
		t.Error("AgentByRole returned nil for existing role")
	}
	if c.AgentByRole("nobody") != nil {
		t.Error("AgentByRole returned non-nil for unknown role")
	}
	if c.TaskByName("plan") == nil {
		t.Error("TaskByName returned nil for existing task")
	}
	if c.TaskByName("nope") != nil {
		t.Error("TaskByName returned non-nil for unknown task")
	}
}

func TestTaskStatusValid(t *testing.T) {
	for _, s := range []TaskStatus{TaskStatusPending, TaskStatusInProgress, TaskStatusDone, TaskStatusFailed, TaskStatusSkipped} {
		if !s.Valid() {
			t.Errorf("%s should be valid", s)
		}
	}
	if TaskStatus("bogus").Valid() {
		t.Error("bogus status should be invalid")
	}
}
