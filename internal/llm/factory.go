package llm

import (
	"fmt"

	"crewforge/internal/config"
)

// Streamer is implemented by runners that can report progress events.
type Streamer interface {
	SetStreamHandler(fn func(StreamEvent))
}

// Factory builds AgentLoop runners from the loaded configuration.
type Factory struct {
	cfg     *config.Config
	signals *Signals
}

// NewFactory creates a runner factory. Signals may be nil.
func NewFactory(cfg *config.Config, signals *Signals) *Factory {
	return &Factory{cfg: cfg, signals: signals}
}

// NewRunner creates an AgentLoop bound to the given model and tool set.
func (f *Factory) NewRunner(model string, tools ToolSet, maxIterations int) (Runner, error) {
	if model == "" {
		model = f.cfg.Defaults.Model
	}
	if maxIterations == 0 {
		maxIterations = f.cfg.Defaults.MaxIterations
	}

	client, err := NewClient(ClientConfig{
		Model:         model,
		APIKey:        f.cfg.Anthropic.APIKey,
		UseAWSBedrock: f.cfg.Bedrock.Enabled,
		AWSRegion:     f.cfg.Bedrock.Region,
		AWSProfile:    f.cfg.Bedrock.Profile,
	})
	if err != nil {
		return nil, fmt.Errorf("create client for model %s: %w", model, err)
	}

	return NewAgentLoop(AgentLoopConfig{
		Client:        client,
		Tools:         tools,
		Signals:       f.signals,
		MaxIterations: maxIterations,
	}), nil
}

// Verify Factory implements RunnerFactory at compile time.
var _ RunnerFactory = (*Factory)(nil)
