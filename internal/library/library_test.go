package library

import (
	"testing"

	"crewforge/internal/config"
	"crewforge/internal/exec"
	"crewforge/internal/tools"
)

func TestList_AllCrewsValid(t *testing.T) {
	crews := List()
	if len(crews) != 6 {
		t.Fatalf("len(crews) = %d, want 6", len(crews))
	}

	for _, c := range crews {
		if err := c.Validate(); err != nil {
			t.Errorf("crew %q invalid: %v", c.Name, err)
		}
	}
}

func TestList_SortedByName(t *testing.T) {
	crews := List()
	for i := 1; i < len(crews); i++ {
		if crews[i-1].Name >= crews[i].Name {
			t.Errorf("crews not sorted: %q before %q", crews[i-1].Name, crews[i].Name)
		}
	}
}

func TestList_ToolsExist(t *testing.T) {
	registry := tools.DefaultRegistry(config.Default(), t.TempDir(), exec.NewRunner())

	known := make(map[string]bool)
	for _, name := range registry.Names() {
		known[name] = true
	}

	for _, c := range List() {
		for _, a := range c.Agents {
			for _, tool := range a.Tools {
				if !known[tool] {
					t.Errorf("crew %q agent %q names unknown tool %q", c.Name, a.Role, tool)
				}
			}
		}
	}
}

func TestGet(t *testing.T) {
	c, err := Get("blog-writer")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if c.Name != "blog-writer" {
		t.Errorf("Name = %q", c.Name)
	}

	if _, err := Get("no-such-crew"); err == nil {
		t.Error("expected error for unknown crew")
	}
}

func TestGet_ReturnsFreshCopy(t *testing.T) {
	a, _ := Get("travel-planner")
	a.Agents[0].Role = "mutated"

	b, _ := Get("travel-planner")
	if b.Agents[0].Role == "mutated" {
		t.Error("Get returned a shared instance")
	}
}

func TestCrews_CoverEveryTool(t *testing.T) {
	registry := tools.DefaultRegistry(config.Default(), t.TempDir(), exec.NewRunner())

	used := make(map[string]bool)
	for _, c := range List() {
		for _, a := range c.Agents {
			for _, tool := range a.Tools {
				used[tool] = true
			}
		}
	}

	for _, name := range registry.Names() {
		if !used[name] {
			t.Errorf("built-in tool %q unused by every library crew", name)
		}
	}
}
