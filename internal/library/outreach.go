package library

import "crewforge/pkg/models"

// customerOutreach profiles a lead and drafts a personalized campaign.
func customerOutreach() *models.Crew {
	return &models.Crew{
		Name:        "customer-outreach",
		Description: "Profiles a high-value lead and drafts a personalized outreach campaign",
		Process:     models.ProcessSequential,
		Inputs: []models.InputSpec{
			{Name: "lead_name", Description: "Company name of the lead", Required: true},
			{Name: "industry", Description: "Industry the lead operates in", Required: true},
			{Name: "key_decision_maker", Description: "Name of the decision maker", Required: true},
			{Name: "position", Description: "Decision maker's role", Required: true},
			{Name: "milestone", Description: "Recent milestone to reference", Required: true},
		},
		Agents: []models.Agent{
			{
				Role:      "Sales Representative",
				Goal:      "Identify high-value leads that match our ideal customer profile",
				Backstory: "As a part of the dynamic sales team, your mission is to scour the digital landscape for potential leads. Armed with cutting-edge tools and a strategic mindset, you analyze data, trends, and interactions to unearth opportunities that others might overlook.",
				Tools:     []string{"web_search", "scrape_website", "read_directory", "read_file"},
			},
			{
				Role:      "Lead Sales Representative",
				Goal:      "Nurture leads with personalized, compelling communications",
				Backstory: "Within the vibrant ecosystem of the sales department, you stand out as the bridge between potential clients and the solutions they need. You create engaging messages that resonate with leads, aiming to convert them into loyal customers.",
				Tools:     []string{"analyze_sentiment", "web_search"},
			},
		},
		Tasks: []models.Task{
			{
				Name:           "lead_profiling",
				Description:    "Conduct an in-depth analysis of {lead_name}, a company in the {industry} sector. Gather information about key personnel, recent business developments, and potential needs. Check the working directory for any instruction documents on how to write good profiles. This analysis lays the groundwork for personalized engagement.",
				ExpectedOutput: "A comprehensive report on {lead_name}, including company background, key personnel, recent milestones, and identified needs, plus a strategy for engagement.",
				Agent:          "Sales Representative",
			},
			{
				Name:           "personalized_outreach",
				Description:    "Using the insights from the lead profiling report on {lead_name}, craft a personalized outreach campaign aimed at {key_decision_maker}, the {position}. The campaign should address their recent {milestone} and how our solutions can support their goals. Check the tone of every draft with the sentiment analysis tool to ensure it stays positive and on-brand.",
				ExpectedOutput: "A series of personalized email drafts tailored to {lead_name}, addressing {key_decision_maker}. Each draft should include a sentiment check result confirming a positive, engaging tone.",
				Agent:          "Lead Sales Representative",
				Context:        []string{"lead_profiling"},
				OutputFile:     "outreach_campaign.md",
			},
		},
	}
}
