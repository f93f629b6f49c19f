package library

import "crewforge/pkg/models"

// blogWriter plans, writes, and edits a blog post on a given topic.
func blogWriter() *models.Crew {
	return &models.Crew{
		Name:        "blog-writer",
		Description: "Plans, writes, and edits a blog post on a given topic",
		Process:     models.ProcessSequential,
		Inputs: []models.InputSpec{
			{Name: "topic", Description: "The subject of the blog post", Required: true},
			{Name: "style", Description: "Writing style for the post", Default: "clear and conversational"},
		},
		Agents: []models.Agent{
			{
				Role:      "Content Planner",
				Goal:      "Plan engaging and factually accurate content on {topic}",
				Backstory: "You're planning a blog article about the topic: {topic}. You collect information that helps the audience learn something and make informed decisions. Your work is the basis for the Content Writer to write the article.",
				Tools:     []string{"web_search", "arxiv_search"},
			},
			{
				Role:      "Content Writer",
				Goal:      "Write an insightful and factually accurate opinion piece about the topic: {topic}",
				Backstory: "You write a new opinion piece about the topic: {topic}. You base your writing on the work of the Content Planner, who provides an outline and relevant context. You follow the main objectives of the outline and acknowledge when statements are opinions rather than facts. The requested style is: {style}.",
			},
			{
				Role:      "Editor",
				Goal:      "Edit the blog post to align with the publication's voice",
				Backstory: "You receive a blog post from the Content Writer. Your goal is to review it for journalistic best practices, balanced viewpoints, and to avoid major controversial topics or opinions when possible.",
				Tools:     []string{"export_document"},
			},
		},
		Tasks: []models.Task{
			{
				Name:           "plan",
				Description:    "Prioritize the latest trends, key players, and noteworthy news on {topic}. Identify the target audience, their interests, and pain points. Develop a detailed content outline including introduction, key points, and a call to action. Include SEO keywords and relevant sources.",
				ExpectedOutput: "A comprehensive content plan document with an outline, audience analysis, SEO keywords, and resources.",
				Agent:          "Content Planner",
			},
			{
				Name:           "write",
				Description:    "Use the content plan to craft a compelling blog post on {topic}. Incorporate SEO keywords naturally. Name sections and subtitles in an engaging manner. Structure the post with an engaging introduction, insightful body, and a summarizing conclusion. Proofread for grammatical errors.",
				ExpectedOutput: "A well-written blog post in markdown format, ready for publication. Each section has 2 or 3 paragraphs.",
				Agent:          "Content Writer",
				Context:        []string{"plan"},
			},
			{
				Name:           "edit",
				Description:    "Proofread the given blog post for grammatical errors and alignment with the publication's voice.",
				ExpectedOutput: "A polished blog post in markdown format, ready for publication.",
				Agent:          "Editor",
				Context:        []string{"write"},
				OutputFile:     "blog_post.md",
			},
		},
	}
}
