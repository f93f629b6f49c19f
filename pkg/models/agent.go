package models

// Agent describes a role-playing LLM worker in a crew.
// Role is the agent's identity and also its address for delegation.
type Agent struct {
	// Role is the short persona name, e.g. "Content Planner".
	Role string `json:"role" yaml:"role"`
	// Goal is the single-sentence objective the agent optimizes for.
	Goal string `json:"goal" yaml:"goal"`
	// Backstory gives the agent its working context and voice.
	Backstory string `json:"backstory" yaml:"backstory"`
	// Tools lists the names of tools the agent may call.
	Tools []string `json:"tools,omitempty" yaml:"tools,omitempty"`
	// AllowDelegation permits this agent to hand work to crew mates.
	AllowDelegation bool `json:"allow_delegation,omitempty" yaml:"allow_delegation,omitempty"`
	// Model is an alias (haiku, sonnet, opus) or a full model ID.
	// Empty means the configured default.
	Model string `json:"model,omitempty" yaml:"model,omitempty"`
	// MaxIterations caps the tool-use loop for a single task.
	// Zero means the configured default.
	MaxIterations int `json:"max_iterations,omitempty" yaml:"max_iterations,omitempty"`
}

// SystemPrompt renders the agent's persona as a system prompt.
func (a *Agent) SystemPrompt() string {
	prompt := "You are " + a.Role + ".\n\nYour goal: " + a.Goal
	if a.Backstory != "" {
		prompt += "\n\nBackstory: " + a.Backstory
	}
	prompt += "\n\nProduce your final answer as well-formatted markdown. " +
		"Use your tools when they help; do not invent facts a tool could verify."
	return prompt
}
