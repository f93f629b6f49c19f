// Package crew runs agent crews: ordered task pipelines executed by
// role-prompted agents through the Anthropic API.
package crew

import (
	"log"
	"sync/atomic"
	"time"
)

// EventType represents the type of kickoff event.
type EventType string

const (
	// EventRunStarted indicates a kickoff has begun.
	EventRunStarted EventType = "run_started"
	// EventTaskStarted indicates a task has started execution.
	EventTaskStarted EventType = "task_started"
	// EventTaskCompleted indicates a task completed successfully.
	EventTaskCompleted EventType = "task_completed"
	// EventTaskFailed indicates a task failed.
	EventTaskFailed EventType = "task_failed"
	// EventDelegated indicates the manager or an agent handed work to a coworker.
	EventDelegated EventType = "delegated"
	// EventHumanInput indicates a task is waiting on reviewer feedback.
	EventHumanInput EventType = "human_input"
	// EventAgentOutput carries streamed text and tool activity from an agent.
	EventAgentOutput EventType = "agent_output"
	// EventRunCompleted indicates the entire run is finished.
	EventRunCompleted EventType = "run_completed"
)

// KickoffEvent is emitted as a run progresses. The TUI and plain
// printer subscribe to these to show progress.
type KickoffEvent struct {
	// Type is the kind of event.
	Type EventType
	// Task is the name of the related task, if applicable.
	Task string
	// Agent is the role of the related agent, if applicable.
	Agent string
	// Message provides additional context about the event.
	Message string
	// Err contains error details for failure events.
	Err error
	// Timestamp is when the event occurred.
	Timestamp time.Time
	// TokensIn and TokensOut are the run totals so far.
	TokensIn  int64
	TokensOut int64
	// Cost is the estimated spend in USD for the run so far.
	Cost float64
	// Duration is the elapsed run time.
	Duration time.Duration
}

// EventEmitter handles event emission for the engine.
// It provides a simple, thread-safe way to emit events to subscribers.
type EventEmitter struct {
	events       chan KickoffEvent
	droppedCount atomic.Uint64
}

// NewEventEmitter creates a new EventEmitter with the given buffer size.
func NewEventEmitter(bufferSize int) *EventEmitter {
	return &EventEmitter{
		events: make(chan KickoffEvent, bufferSize),
	}
}

// Emit sends an event to the events channel.
// If the channel is full, it tries with a timeout before dropping the event.
func (e *EventEmitter) Emit(event KickoffEvent) {
	select {
	case e.events <- event:
		return
	default:
	}

	// Give the receiver a short window to drain before dropping.
	select {
	case e.events <- event:
		return
	case <-time.After(100 * time.Millisecond):
		count := e.droppedCount.Add(1)
		if count%10 == 1 {
			log.Printf("[crew] WARNING: event channel full, dropped event (total dropped: %d): type=%s", count, event.Type)
		}
	}
}

// DroppedCount returns the total number of events that have been dropped.
func (e *EventEmitter) DroppedCount() uint64 {
	return e.droppedCount.Load()
}

// Events returns a read-only channel of events for subscribers.
func (e *EventEmitter) Events() <-chan KickoffEvent {
	return e.events
}

// Close closes the events channel.
func (e *EventEmitter) Close() {
	close(e.events)
}
