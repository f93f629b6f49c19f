package library

import "crewforge/pkg/models"

// travelPlanner picks a destination, gathers local insight, and
// produces a full itinerary with a budget breakdown.
func travelPlanner() *models.Crew {
	return &models.Crew{
		Name:        "travel-planner",
		Description: "Plans a trip: destination analysis, local insight, itinerary, and budget",
		Process:     models.ProcessSequential,
		Inputs: []models.InputSpec{
			{Name: "origin", Description: "Where the traveler is departing from", Required: true},
			{Name: "cities", Description: "Candidate destination cities", Required: true},
			{Name: "date_range", Description: "Travel dates", Required: true},
			{Name: "interests", Description: "Traveler interests and trip preferences", Required: true},
			{Name: "currency", Description: "Currency to report costs in", Default: "USD"},
		},
		Agents: []models.Agent{
			{
				Role:      "City Selection Expert",
				Goal:      "Select the best city based on weather, season, prices, and traveler interests",
				Backstory: "An expert in analyzing travel data to pick ideal destinations. You compare candidate cities on concrete criteria and commit to a single recommendation.",
				Tools:     []string{"web_search", "scrape_website"},
			},
			{
				Role:      "Local City Expert",
				Goal:      "Provide the best insights about the selected city",
				Backstory: "A knowledgeable local guide with extensive information about the city, its attractions, customs, and hidden gems that most tourists miss.",
				Tools:     []string{"web_search", "scrape_website"},
			},
			{
				Role:      "Amazing Travel Concierge",
				Goal:      "Create the most amazing travel itineraries with budget and packing suggestions for the city",
				Backstory: "A specialist in travel planning and logistics with decades of experience. You turn research into day-by-day plans with realistic costs, converted to the traveler's currency.",
				Tools:     []string{"web_search", "currency_exchange"},
			},
		},
		Tasks: []models.Task{
			{
				Name:           "select_city",
				Description:    "Analyze and select the best city for the trip based on weather patterns, seasonal events, and travel costs. Compare these options: {cities}. The traveler departs from {origin} during {date_range} and has these interests: {interests}. Your final answer must be a detailed report on the chosen city including actual flight costs, weather forecast, and attractions.",
				ExpectedOutput: "A detailed report on the chosen city with flight costs, weather forecast, and attractions.",
				Agent:          "City Selection Expert",
			},
			{
				Name:           "gather_insights",
				Description:    "As a local expert on the chosen city, compile an in-depth guide for someone traveling there who wants the best trip ever. Gather information about key attractions, local customs, special events, and daily activity recommendations. Find the kind of places only a local would know.",
				ExpectedOutput: "A comprehensive city guide with cultural insights, hidden gems, weather forecasts, and costs.",
				Agent:          "Local City Expert",
				Context:        []string{"select_city"},
			},
			{
				Name:           "plan_itinerary",
				Description:    "Expand the city guide into a full travel itinerary for {date_range} with detailed per-day plans, including weather forecasts, places to eat, packing suggestions, and a budget breakdown. List actual places to visit, actual hotels, and actual restaurants. Convert all costs to {currency} using current exchange rates.",
				ExpectedOutput: "A complete itinerary in markdown covering each day of the trip, with a per-day budget in the requested currency and packing suggestions.",
				Agent:          "Amazing Travel Concierge",
				Context:        []string{"select_city", "gather_insights"},
				OutputFile:     "itinerary.md",
			},
		},
	}
}
