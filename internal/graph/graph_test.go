package graph

import (
	"errors"
	"testing"

	"crewforge/pkg/models"
)

func task(name string, context ...string) *models.Task {
	return &models.Task{
		Name:        name,
		Description: name + " description",
		Context:     context,
	}
}

func TestBuild_UnknownReference(t *testing.T) {
	g := New()
	err := g.Build([]*models.Task{task("write", "research")})
	if err == nil {
		t.Fatal("expected error for unknown context reference")
	}
}

func TestBuild_DuplicateName(t *testing.T) {
	g := New()
	err := g.Build([]*models.Task{task("a"), task("a")})
	if err == nil {
		t.Fatal("expected error for duplicate task name")
	}
}

func TestBuild_CycleDetected(t *testing.T) {
	g := New()
	err := g.Build([]*models.Task{
		task("a", "b"),
		task("b", "a"),
	})
	if !errors.Is(err, ErrCycleDetected) {
		t.Fatalf("err = %v, want ErrCycleDetected", err)
	}
}

func TestTopologicalSort(t *testing.T) {
	g := New()
	err := g.Build([]*models.Task{
		task("research"),
		task("outline", "research"),
		task("write", "research", "outline"),
		task("edit", "write"),
	})
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	order, err := g.TopologicalSort()
	if err != nil {
		t.Fatalf("TopologicalSort failed: %v", err)
	}

	pos := make(map[string]int)
	for i, name := range order {
		pos[name] = i
	}
	if pos["research"] > pos["outline"] || pos["outline"] > pos["write"] || pos["write"] > pos["edit"] {
		t.Errorf("order violates dependencies: %v", order)
	}
}

func TestGetReady_Progression(t *testing.T) {
	g := New()
	err := g.Build([]*models.Task{
		task("research"),
		task("profile"),
		task("strategy", "research", "profile"),
	})
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	ready := g.GetReady()
	if len(ready) != 2 || ready[0] != "research" || ready[1] != "profile" {
		t.Fatalf("initial ready = %v", ready)
	}

	g.MarkComplete("research")
	if ready := g.GetReady(); len(ready) != 1 || ready[0] != "profile" {
		t.Fatalf("after research: ready = %v", ready)
	}

	g.MarkComplete("profile")
	if ready := g.GetReady(); len(ready) != 1 || ready[0] != "strategy" {
		t.Fatalf("after profile: ready = %v", ready)
	}

	g.MarkComplete("strategy")
	if ready := g.GetReady(); len(ready) != 0 {
		t.Fatalf("all done: ready = %v", ready)
	}
}

func TestDependents(t *testing.T) {
	g := New()
	err := g.Build([]*models.Task{
		task("research"),
		task("write", "research"),
		task("review", "research"),
	})
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	deps := g.Dependents("research")
	if len(deps) != 2 || deps[0] != "write" || deps[1] != "review" {
		t.Errorf("Dependents = %v", deps)
	}
	if g.Task("write") == nil {
		t.Error("Task lookup failed")
	}
	if g.Size() != 3 {
		t.Errorf("Size = %d", g.Size())
	}
}
