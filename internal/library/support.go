package library

import "crewforge/pkg/models"

// customerSupport answers a support inquiry and QA-reviews the answer.
// The support rep may delegate follow-up questions back to the crew.
func customerSupport() *models.Crew {
	return &models.Crew{
		Name:        "customer-support",
		Description: "Answers a customer inquiry with a documentation-backed, QA-reviewed response",
		Process:     models.ProcessSequential,
		Inputs: []models.InputSpec{
			{Name: "customer", Description: "Name of the customer company", Required: true},
			{Name: "person", Description: "Name of the person asking", Required: true},
			{Name: "inquiry", Description: "The customer's question", Required: true},
			{Name: "docs_url", Description: "Documentation page to ground the answer in", Required: true},
		},
		Agents: []models.Agent{
			{
				Role:            "Senior Support Representative",
				Goal:            "Be the most friendly and helpful support representative on the team",
				Backstory:       "You work at crewforge and are now providing support to {customer}, a super important customer for the company. You need to provide the best support: give complete answers and make no assumptions.",
				Tools:           []string{"scrape_website"},
				AllowDelegation: false,
			},
			{
				Role:            "Support Quality Assurance Specialist",
				Goal:            "Get recognition for providing the best support quality assurance on the team",
				Backstory:       "You work at crewforge and review the responses the Senior Support Representative drafts for {customer}, ensuring they are complete, accurate, and friendly.",
				AllowDelegation: true,
			},
		},
		Tasks: []models.Task{
			{
				Name:           "inquiry_resolution",
				Description:    "{person} from {customer} just reached out with a super important ask:\n{inquiry}\n\nUse the documentation at {docs_url} to ground your answer. Make sure to provide the best support possible and answer everything the customer asked.",
				ExpectedOutput: "A detailed, informative response that addresses all aspects of the question, citing where in the documentation each part of the answer came from. The tone should be friendly and helpful.",
				Agent:          "Senior Support Representative",
			},
			{
				Name:           "quality_assurance_review",
				Description:    "Review the response drafted by the Senior Support Representative for {customer}'s inquiry. Ensure the answer is comprehensive, accurate, and meets the high-quality standards expected. Verify that all parts of the inquiry are addressed in a friendly, helpful tone, with references to the documentation. If something is missing, delegate the follow-up back to the Senior Support Representative.",
				ExpectedOutput: "A final, detailed, and polished response ready to send to the customer. Keep a helpful tone throughout but stay professional.",
				Agent:          "Support Quality Assurance Specialist",
				Context:        []string{"inquiry_resolution"},
				OutputFile:     "support_response.md",
			},
		},
	}
}
