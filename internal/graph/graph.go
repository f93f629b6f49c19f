// Package graph provides a dependency graph for task scheduling.
package graph

import (
	"errors"
	"fmt"
	"sync"

	"crewforge/pkg/models"
)

// ErrCycleDetected indicates a circular dependency was found in the task graph.
var ErrCycleDetected = errors.New("circular dependency detected")

// DependencyGraph is a directed acyclic graph of crew tasks.
// Tasks are nodes keyed by name; edges represent context dependencies.
type DependencyGraph struct {
	mu sync.RWMutex
	// nodes maps task name to the task itself.
	nodes map[string]*models.Task
	// edges maps task name to the names of tasks it depends on.
	edges map[string][]string
	// order preserves declaration order for deterministic scheduling.
	order []string
	// completed tracks which tasks have finished.
	completed map[string]bool
}

// New creates a new empty dependency graph.
func New() *DependencyGraph {
	return &DependencyGraph{
		nodes:     make(map[string]*models.Task),
		edges:     make(map[string][]string),
		completed: make(map[string]bool),
	}
}

// Build constructs the graph from a crew's task list. Each task's
// Context entries become edges. Returns an error on unknown references
// or cycles.
func (g *DependencyGraph) Build(tasks []*models.Task) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	for _, task := range tasks {
		if _, exists := g.nodes[task.Name]; exists {
			return fmt.Errorf("duplicate task name %q", task.Name)
		}
		g.nodes[task.Name] = task
		g.edges[task.Name] = nil
		g.order = append(g.order, task.Name)
	}

	for _, task := range tasks {
		for _, dep := range task.Context {
			if _, exists := g.nodes[dep]; !exists {
				return fmt.Errorf("task %q references unknown task %q", task.Name, dep)
			}
			g.edges[task.Name] = append(g.edges[task.Name], dep)
		}
	}

	if g.hasCycleLocked() {
		return ErrCycleDetected
	}
	return nil
}

// HasCycle returns true if the graph contains a circular dependency.
// Uses depth-first search with coloring to detect back edges.
func (g *DependencyGraph) HasCycle() bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.hasCycleLocked()
}

// hasCycleLocked assumes the lock is held.
func (g *DependencyGraph) hasCycleLocked() bool {
	// Color states: 0 = white (unvisited), 1 = gray (in progress), 2 = black (done).
	colors := make(map[string]int, len(g.nodes))

	var visit func(name string) bool
	visit = func(name string) bool {
		colors[name] = 1

		for _, dep := range g.edges[name] {
			switch colors[dep] {
			case 1:
				// Back edge.
				return true
			case 0:
				if visit(dep) {
					return true
				}
			}
		}

		colors[name] = 2
		return false
	}

	for _, name := range g.order {
		if colors[name] == 0 && visit(name) {
			return true
		}
	}
	return false
}

// TopologicalSort returns task names with every dependency before the
// tasks that depend on it. Ties keep declaration order.
func (g *DependencyGraph) TopologicalSort() ([]string, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	if g.hasCycleLocked() {
		return nil, ErrCycleDetected
	}

	visited := make(map[string]bool, len(g.nodes))
	result := make([]string, 0, len(g.nodes))

	var visit func(name string)
	visit = func(name string) {
		if visited[name] {
			return
		}
		visited[name] = true

		for _, dep := range g.edges[name] {
			visit(dep)
		}
		result = append(result, name)
	}

	for _, name := range g.order {
		visit(name)
	}
	return result, nil
}

// GetReady returns tasks whose dependencies are all complete and which
// have not yet run. These can execute in parallel.
func (g *DependencyGraph) GetReady() []string {
	g.mu.RLock()
	defer g.mu.RUnlock()

	var ready []string
	for _, name := range g.order {
		if g.completed[name] {
			continue
		}

		satisfied := true
		for _, dep := range g.edges[name] {
			if !g.completed[dep] {
				satisfied = false
				break
			}
		}
		if satisfied {
			ready = append(ready, name)
		}
	}
	return ready
}

// MarkComplete records a finished task, unblocking its dependents.
func (g *DependencyGraph) MarkComplete(name string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.completed[name] = true
}

// Task returns the task for a given name, or nil if not found.
func (g *DependencyGraph) Task(name string) *models.Task {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.nodes[name]
}

// Size returns the number of tasks in the graph.
func (g *DependencyGraph) Size() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.nodes)
}

// Dependencies returns the names of tasks the given task depends on.
func (g *DependencyGraph) Dependencies(name string) []string {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.edges[name]
}

// Dependents returns the names of tasks that depend on the given task.
func (g *DependencyGraph) Dependents(name string) []string {
	g.mu.RLock()
	defer g.mu.RUnlock()

	var dependents []string
	for _, id := range g.order {
		for _, dep := range g.edges[id] {
			if dep == name {
				dependents = append(dependents, id)
				break
			}
		}
	}
	return dependents
}
