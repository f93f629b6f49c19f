// Package tools provides the built-in tool set agents can call during
// a crew run. Each tool implements the Tool interface; a Registry
// groups the tools granted to one agent and satisfies llm.ToolSet.
package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/anthropics/anthropic-sdk-go"

	"crewforge/internal/config"
	"crewforge/internal/exec"
	"crewforge/internal/llm"
)

// Tool is a single capability exposed to the model.
type Tool interface {
	// Name returns the tool name used in API calls.
	Name() string
	// Definition returns the SDK tool schema.
	Definition() anthropic.ToolUnionParam
	// Execute runs the tool with JSON input from the model.
	Execute(ctx context.Context, input json.RawMessage) (string, error)
}

// Registry holds a named set of tools and dispatches calls to them.
type Registry struct {
	tools map[string]Tool
	order []string
}

// NewRegistry creates a registry containing the given tools.
func NewRegistry(tools ...Tool) *Registry {
	r := &Registry{tools: make(map[string]Tool)}
	for _, t := range tools {
		r.Register(t)
	}
	return r
}

// Register adds a tool, replacing any existing tool with the same name.
func (r *Registry) Register(t Tool) {
	if _, exists := r.tools[t.Name()]; !exists {
		r.order = append(r.order, t.Name())
	}
	r.tools[t.Name()] = t
}

// Names returns registered tool names in registration order.
func (r *Registry) Names() []string {
	return append([]string(nil), r.order...)
}

// Subset returns a new registry holding only the named tools.
// Unknown names are an error so crew definitions fail fast.
func (r *Registry) Subset(names []string) (*Registry, error) {
	sub := &Registry{tools: make(map[string]Tool)}
	for _, name := range names {
		t, ok := r.tools[name]
		if !ok {
			return nil, fmt.Errorf("unknown tool %q (available: %v)", name, r.order)
		}
		sub.Register(t)
	}
	return sub, nil
}

// Definitions returns the SDK schemas for all registered tools.
func (r *Registry) Definitions() []anthropic.ToolUnionParam {
	defs := make([]anthropic.ToolUnionParam, 0, len(r.order))
	for _, name := range r.order {
		defs = append(defs, r.tools[name].Definition())
	}
	return defs
}

// Execute runs the named tool. Failures are reported back to the model
// as error results rather than aborting the loop.
func (r *Registry) Execute(ctx context.Context, name string, input json.RawMessage) (string, bool) {
	t, ok := r.tools[name]
	if !ok {
		return fmt.Sprintf("unknown tool: %s", name), true
	}
	out, err := t.Execute(ctx, input)
	if err != nil {
		return fmt.Sprintf("%s failed: %v", name, err), true
	}
	return out, false
}

// Verify Registry implements llm.ToolSet at compile time.
var _ llm.ToolSet = (*Registry)(nil)

// DefaultRegistry builds the full built-in tool set. workDir roots the
// file tools and the document exporter.
func DefaultRegistry(cfg *config.Config, workDir string, runner exec.CommandRunner) *Registry {
	client := &http.Client{Timeout: cfg.Tools.HTTPTimeout}

	return NewRegistry(
		NewWebSearch(cfg.Tools.SerperAPIKey, client),
		NewScrapeWebsite(client, cfg.Tools.UserAgent),
		NewReadFile(workDir),
		NewReadDirectory(workDir),
		NewSentiment(),
		NewArxivSearch(client),
		NewCurrencyExchange(client),
		NewExportDocument(workDir, runner),
	)
}
