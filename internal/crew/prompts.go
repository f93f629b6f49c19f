package crew

import (
	"fmt"
	"strings"

	"crewforge/pkg/models"
)

// taskPrompt builds the user prompt for a task: description, outputs
// of context tasks, and the expected deliverable.
func (r *run) taskPrompt(t *models.Task) string {
	var b strings.Builder
	b.WriteString(t.Description)

	if len(t.Context) > 0 {
		b.WriteString("\n\n# Context from earlier tasks\n")
		for _, name := range t.Context {
			if res := r.resultFor(name); res != nil {
				fmt.Fprintf(&b, "\n## %s\n%s\n", name, res.Output)
			}
		}
	}

	if t.ExpectedOutput != "" {
		b.WriteString("\n\n# Expected output\n")
		b.WriteString(t.ExpectedOutput)
	}
	return b.String()
}

// revisionPrompt asks the agent to rework its draft using reviewer feedback.
func revisionPrompt(t *models.Task, draft, feedback string) string {
	var b strings.Builder
	b.WriteString("You previously produced this draft:\n\n")
	b.WriteString(draft)
	b.WriteString("\n\nA reviewer gave this feedback:\n\n")
	b.WriteString(feedback)
	b.WriteString("\n\nRevise the draft to address the feedback.")
	if t.ExpectedOutput != "" {
		b.WriteString(" The deliverable must still satisfy:\n")
		b.WriteString(t.ExpectedOutput)
	}
	return b.String()
}

// delegationPrompt is the user prompt handed to a coworker when work
// is delegated to them.
func delegationPrompt(task, context string) string {
	var b strings.Builder
	b.WriteString(task)
	if strings.TrimSpace(context) != "" {
		b.WriteString("\n\n# Context from your manager\n")
		b.WriteString(context)
	}
	b.WriteString("\n\nComplete this work and reply with your full result.")
	return b.String()
}

// managerAgent synthesizes the coordinating agent for hierarchical crews.
func (r *run) managerAgent() *models.Agent {
	var team strings.Builder
	for _, a := range r.crew.Agents {
		fmt.Fprintf(&team, "- %s: %s\n", a.Role, a.Goal)
	}

	return &models.Agent{
		Role: "Crew Manager",
		Goal: "Coordinate the crew and deliver each task's expected output on time and to standard",
		Backstory: fmt.Sprintf(
			"You manage a crew working on: %s\n\nYour team:\n%s\nUse the delegate_work tool to hand focused pieces of work to the right coworker, then review what comes back and assemble the final deliverable yourself. Delegate to the coworker whose role best matches the work.",
			r.crew.Description, team.String()),
		Model:           r.crew.ManagerModel,
		AllowDelegation: true,
	}
}
