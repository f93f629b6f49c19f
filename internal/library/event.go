package library

import "crewforge/pkg/models"

// eventPlanner books a venue, handles logistics, and drafts marketing.
// The venue choice pauses for reviewer approval; logistics and
// marketing then run concurrently.
func eventPlanner() *models.Crew {
	return &models.Crew{
		Name:        "event-planner",
		Description: "Finds a venue, plans logistics, and drafts marketing for an event",
		Process:     models.ProcessSequential,
		Inputs: []models.InputSpec{
			{Name: "event_topic", Description: "What the event is about", Required: true},
			{Name: "event_city", Description: "City where the event takes place", Required: true},
			{Name: "tentative_date", Description: "Planned event date", Required: true},
			{Name: "expected_participants", Description: "Expected attendee count", Required: true},
			{Name: "budget", Description: "Overall event budget", Required: true},
			{Name: "venue_type", Description: "Kind of venue wanted", Default: "conference hall"},
		},
		Agents: []models.Agent{
			{
				Role:      "Venue Coordinator",
				Goal:      "Identify and book an appropriate venue based on event requirements",
				Backstory: "With a keen sense of space and logistics, you excel at finding and securing the perfect venue that fits the event's theme, size, and budget constraints.",
				Tools:     []string{"web_search", "scrape_website"},
			},
			{
				Role:      "Logistics Manager",
				Goal:      "Manage all logistics for the event including catering and equipment",
				Backstory: "Organized and detail-oriented, you ensure that every logistical aspect of the event, from catering to equipment setup, is flawlessly executed.",
				Tools:     []string{"web_search", "scrape_website"},
			},
			{
				Role:      "Marketing and Communications Agent",
				Goal:      "Effectively market the event and communicate with participants",
				Backstory: "Creative and communicative, you craft messages that resonate with potential attendees, maximizing event exposure and participation.",
				Tools:     []string{"web_search", "analyze_sentiment"},
			},
		},
		Tasks: []models.Task{
			{
				Name:           "find_venue",
				Description:    "Find a venue in {event_city} that meets the criteria for an event about {event_topic} on {tentative_date} with {expected_participants} participants and a budget of {budget}. Preferred venue type: {venue_type}.",
				ExpectedOutput: "Details of a specific venue you found to accommodate the event, including name, address, capacity, and booking status.",
				Agent:          "Venue Coordinator",
				HumanInput:     true,
				OutputFile:     "venue_details.md",
			},
			{
				Name:           "plan_logistics",
				Description:    "Coordinate catering and equipment for the event on {tentative_date} with {expected_participants} participants, at the venue chosen in the earlier task.",
				ExpectedOutput: "Confirmation of all logistics arrangements including catering and equipment setup.",
				Agent:          "Logistics Manager",
				Context:        []string{"find_venue"},
				Async:          true,
			},
			{
				Name:           "promote_event",
				Description:    "Promote the event about {event_topic} aiming to engage at least {expected_participants} potential attendees. Draft announcement copy and check its tone with the sentiment tool, keeping it positive and professional.",
				ExpectedOutput: "A report on marketing activities and attendee engagement in markdown, including the checked announcement copy.",
				Agent:          "Marketing and Communications Agent",
				Context:        []string{"find_venue"},
				OutputFile:     "marketing_report.md",
			},
		},
	}
}
