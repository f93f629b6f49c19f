package library

import "crewforge/pkg/models"

// resumeTailor researches a job posting and tailors a resume to it.
// Research and profiling run concurrently; the strategist joins both.
func resumeTailor() *models.Crew {
	return &models.Crew{
		Name:        "resume-tailor",
		Description: "Researches a job posting and tailors a resume and interview prep to it",
		Process:     models.ProcessSequential,
		Inputs: []models.InputSpec{
			{Name: "job_posting_url", Description: "URL of the job posting to target", Required: true},
			{Name: "github_url", Description: "URL of the candidate's GitHub profile", Required: true},
			{Name: "personal_writeup", Description: "A short summary of the candidate", Required: true},
			{Name: "resume_file", Description: "Path to the current resume in the working directory", Default: "resume.md"},
		},
		Agents: []models.Agent{
			{
				Role:      "Tech Job Researcher",
				Goal:      "Do amazing analysis on job postings to help job applicants",
				Backstory: "As a job researcher, your prowess in navigating and extracting critical information from job postings is unmatched. Your skills help pinpoint the necessary qualifications and skills sought by employers, forming the foundation for effective application tailoring.",
				Tools:     []string{"web_search", "scrape_website"},
			},
			{
				Role:      "Personal Profiler for Engineers",
				Goal:      "Do incredible research on job applicants to help them stand out in the job market",
				Backstory: "Equipped with analytical prowess, you dissect and synthesize information from diverse sources to craft comprehensive personal and professional profiles, laying the groundwork for personalized resume enhancements.",
				Tools:     []string{"web_search", "scrape_website", "read_file"},
			},
			{
				Role:      "Resume Strategist for Engineers",
				Goal:      "Find all the best ways to make a resume stand out in the job market",
				Backstory: "With a strategic mind and an eye for detail, you excel at refining resumes to highlight the most relevant skills and experiences, ensuring they resonate perfectly with the job's requirements.",
				Tools:     []string{"read_file", "read_directory"},
			},
			{
				Role:      "Engineering Interview Preparer",
				Goal:      "Create interview questions and talking points based on the resume and job requirements",
				Backstory: "Your role is crucial in anticipating the dynamics of interviews. With your ability to formulate key questions and talking points, you prepare candidates for success, ensuring they can confidently address all aspects of the job they are applying for.",
			},
		},
		Tasks: []models.Task{
			{
				Name:           "research",
				Description:    "Analyze the job posting at {job_posting_url} to extract key skills, experiences, and qualifications required. Use the tools to gather content and identify and categorize the requirements.",
				ExpectedOutput: "A structured list of job requirements, including necessary skills, qualifications, and experiences.",
				Agent:          "Tech Job Researcher",
				Async:          true,
			},
			{
				Name:           "profile",
				Description:    "Compile a detailed personal and professional profile using the GitHub profile at {github_url} and this writeup: {personal_writeup}. The current resume is at {resume_file} in the working directory. Utilize tools to extract and synthesize information from these sources.",
				ExpectedOutput: "A comprehensive profile document that includes skills, project experiences, contributions, interests, and communication style.",
				Agent:          "Personal Profiler for Engineers",
				Async:          true,
			},
			{
				Name:           "strategy",
				Description:    "Using the profile and job requirements obtained from previous tasks, tailor the resume at {resume_file} to highlight the most relevant areas. Employ tools to adjust and enhance the resume content. Update every section, including the initial summary, work experience, skills, and education, to better reflect the candidate's abilities and how they match the job posting. Do not make up any information.",
				ExpectedOutput: "An updated resume in markdown format that effectively highlights the candidate's qualifications and experiences relevant to the job.",
				Agent:          "Resume Strategist for Engineers",
				Context:        []string{"research", "profile"},
				OutputFile:     "tailored_resume.md",
			},
			{
				Name:           "interview_prep",
				Description:    "Create a set of potential interview questions and talking points based on the tailored resume and job requirements. Utilize the outputs of the earlier tasks to generate relevant questions and discussion points.",
				ExpectedOutput: "A document containing key questions and talking points that the candidate should prepare for the initial interview.",
				Agent:          "Engineering Interview Preparer",
				Context:        []string{"research", "profile", "strategy"},
				OutputFile:     "interview_materials.md",
			},
		},
	}
}
