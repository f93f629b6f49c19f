package models

import "time"

// TaskStatus represents the current state of a task.
type TaskStatus string

const (
	// TaskStatusPending indicates the task has not started.
	TaskStatusPending TaskStatus = "pending"
	// TaskStatusInProgress indicates the task is being worked on.
	TaskStatusInProgress TaskStatus = "in_progress"
	// TaskStatusDone indicates the task completed successfully.
	TaskStatusDone TaskStatus = "done"
	// TaskStatusFailed indicates the task failed.
	TaskStatusFailed TaskStatus = "failed"
	// TaskStatusSkipped indicates the task was skipped because the run ended early.
	TaskStatusSkipped TaskStatus = "skipped"
)

// Valid returns true if the status is a known value.
func (s TaskStatus) Valid() bool {
	switch s {
	case TaskStatusPending, TaskStatusInProgress, TaskStatusDone, TaskStatusFailed, TaskStatusSkipped:
		return true
	default:
		return false
	}
}

// Task is a unit of work assigned to an agent.
type Task struct {
	// Name uniquely identifies the task within its crew.
	Name string `json:"name" yaml:"name"`
	// Description is the instruction block handed to the agent.
	Description string `json:"description" yaml:"description"`
	// ExpectedOutput describes the deliverable the agent must produce.
	ExpectedOutput string `json:"expected_output" yaml:"expected_output"`
	// Agent is the role of the agent assigned to this task.
	// Empty is allowed only in hierarchical crews, where the manager assigns work.
	Agent string `json:"agent,omitempty" yaml:"agent,omitempty"`
	// Context lists names of earlier tasks whose outputs are fed into this one.
	Context []string `json:"context,omitempty" yaml:"context,omitempty"`
	// OutputFile is the artifact filename, relative to the run's artifact dir.
	OutputFile string `json:"output_file,omitempty" yaml:"output_file,omitempty"`
	// Async runs the task concurrently with other ready tasks.
	Async bool `json:"async,omitempty" yaml:"async,omitempty"`
	// HumanInput pauses after the draft for reviewer feedback and one revision.
	HumanInput bool `json:"human_input,omitempty" yaml:"human_input,omitempty"`
}

// TaskResult holds the outcome of one executed task.
type TaskResult struct {
	// Task is the name of the task this result belongs to.
	Task string `json:"task"`
	// Agent is the role that produced the output.
	Agent string `json:"agent"`
	// Output is the agent's final text answer.
	Output string `json:"output"`
	// OutputPath is the artifact file the output was written to, if any.
	OutputPath string `json:"output_path,omitempty"`
	// TokensIn and TokensOut are the API token totals for the task.
	TokensIn  int64 `json:"tokens_in"`
	TokensOut int64 `json:"tokens_out"`
	// ToolCalls counts tool invocations made while solving the task.
	ToolCalls int `json:"tool_calls"`
	// Iterations counts API round trips in the tool-use loop.
	Iterations int `json:"iterations"`
	// Duration is wall-clock execution time.
	Duration time.Duration `json:"duration"`
}
