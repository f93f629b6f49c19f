package llm

import (
	"testing"

	"github.com/anthropics/anthropic-sdk-go"
)

func TestResolveModel(t *testing.T) {
	tests := []struct {
		alias string
		want  anthropic.Model
	}{
		{"", anthropic.ModelClaudeSonnet4_5_20250929},
		{"sonnet", anthropic.ModelClaudeSonnet4_5_20250929},
		{"haiku", anthropic.ModelClaudeHaiku4_5_20251001},
		{"opus", anthropic.ModelClaudeOpus4_5_20251101},
		{"Sonnet", anthropic.ModelClaudeSonnet4_5_20250929},
		{"claude-3-5-haiku-20241022", anthropic.Model("claude-3-5-haiku-20241022")},
	}

	for _, tt := range tests {
		if got := ResolveModel(tt.alias); got != tt.want {
			t.Errorf("ResolveModel(%q) = %q, want %q", tt.alias, got, tt.want)
		}
	}
}

func TestTranslateModelForBedrock(t *testing.T) {
	got := translateModelForBedrock(anthropic.ModelClaudeSonnet4_5_20250929)
	want := anthropic.Model("us.anthropic.claude-sonnet-4-5-20250929-v1:0")
	if got != want {
		t.Errorf("translateModelForBedrock = %q, want %q", got, want)
	}

	// Unknown models pass through unchanged.
	custom := anthropic.Model("us.anthropic.custom-v1:0")
	if got := translateModelForBedrock(custom); got != custom {
		t.Errorf("custom model changed: %q", got)
	}
}

func TestNewClient_MissingAPIKey(t *testing.T) {
	t.Setenv("ANTHROPIC_API_KEY", "")
	if _, err := NewClient(ClientConfig{Model: "sonnet"}); err == nil {
		t.Fatal("expected error without API key")
	}
}

func TestNewClient_APIKey(t *testing.T) {
	c, err := NewClient(ClientConfig{Model: "haiku", APIKey: "test-key"})
	if err != nil {
		t.Fatalf("NewClient failed: %v", err)
	}
	if c.Model() != anthropic.ModelClaudeHaiku4_5_20251001 {
		t.Errorf("Model() = %q", c.Model())
	}
	if c.IsBedrock() {
		t.Error("IsBedrock() = true for direct API client")
	}
}

func TestTokenTracker(t *testing.T) {
	tr := NewTokenTracker(anthropic.ModelClaudeSonnet4_5_20250929)
	tr.Add(1000, 500)
	tr.Add(2000, 1500)

	in, out := tr.Total()
	if in != 3000 || out != 2000 {
		t.Errorf("Total() = (%d, %d), want (3000, 2000)", in, out)
	}
	if tr.Calls() != 2 {
		t.Errorf("Calls() = %d, want 2", tr.Calls())
	}
	if tr.Cost() <= 0 {
		t.Errorf("Cost() = %f, want > 0", tr.Cost())
	}

	tr.Reset()
	in, out = tr.Total()
	if in != 0 || out != 0 || tr.Calls() != 0 {
		t.Error("Reset() did not clear tracker")
	}
}

func TestEstimateCost(t *testing.T) {
	// 1M in + 1M out at sonnet pricing.
	if got := EstimateCost(anthropic.ModelClaudeSonnet4_5_20250929, 1_000_000, 1_000_000); got != 18.0 {
		t.Errorf("sonnet cost = %f, want 18.0", got)
	}
	if got := EstimateCost(anthropic.ModelClaudeHaiku4_5_20251001, 1_000_000, 0); got != 1.0 {
		t.Errorf("haiku cost = %f, want 1.0", got)
	}
	// Bedrock inference profiles match their model family.
	if got := EstimateCost(anthropic.Model("us.anthropic.claude-opus-4-5-20251101-v1:0"), 0, 1_000_000); got != 25.0 {
		t.Errorf("bedrock opus cost = %f, want 25.0", got)
	}
	// Unknown models fall back to sonnet pricing.
	if got := EstimateCost(anthropic.Model("experimental"), 1_000_000, 0); got != 3.0 {
		t.Errorf("unknown model cost = %f, want 3.0", got)
	}
}
