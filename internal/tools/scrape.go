package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"html"
	"io"
	"net/http"
	"regexp"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
)

const (
	maxScrapeBody  = 512 * 1024
	maxScrapeChars = 8000
)

var (
	scriptRe     = regexp.MustCompile(`(?is)<script.*?</script>`)
	styleRe      = regexp.MustCompile(`(?is)<style.*?</style>`)
	tagRe        = regexp.MustCompile(`(?s)<[^>]*>`)
	whitespaceRe = regexp.MustCompile(`[ \t]+`)
	blankLinesRe = regexp.MustCompile(`\n{3,}`)
)

// ScrapeWebsite fetches a URL and returns its visible text content.
type ScrapeWebsite struct {
	client    *http.Client
	userAgent string
}

// NewScrapeWebsite creates the scrape_website tool.
func NewScrapeWebsite(client *http.Client, userAgent string) *ScrapeWebsite {
	return &ScrapeWebsite{client: client, userAgent: userAgent}
}

// Name returns the tool name.
func (s *ScrapeWebsite) Name() string { return "scrape_website" }

// Definition returns the SDK tool schema.
func (s *ScrapeWebsite) Definition() anthropic.ToolUnionParam {
	return anthropic.ToolUnionParam{
		OfTool: &anthropic.ToolParam{
			Name:        s.Name(),
			Description: anthropic.String("Fetch a web page and return its readable text content with markup stripped."),
			InputSchema: anthropic.ToolInputSchemaParam{
				Properties: map[string]interface{}{
					"url": map[string]interface{}{
						"type":        "string",
						"description": "The URL to fetch (http or https)",
					},
				},
				Required: []string{"url"},
			},
		},
	}
}

type scrapeInput struct {
	URL string `json:"url"`
}

// Execute fetches the page and strips it down to readable text.
func (s *ScrapeWebsite) Execute(ctx context.Context, input json.RawMessage) (string, error) {
	var in scrapeInput
	if err := json.Unmarshal(input, &in); err != nil {
		return "", fmt.Errorf("invalid input: %w", err)
	}
	if !strings.HasPrefix(in.URL, "http://") && !strings.HasPrefix(in.URL, "https://") {
		return "", fmt.Errorf("url must start with http:// or https://")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, in.URL, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("User-Agent", s.userAgent)

	resp, err := s.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetching %s: %w", in.URL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%s returned status %d", in.URL, resp.StatusCode)
	}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxScrapeBody))
	if err != nil {
		return "", fmt.Errorf("reading %s: %w", in.URL, err)
	}

	text := stripHTML(string(raw))
	if text == "" {
		return "Page contained no readable text.", nil
	}
	if len(text) > maxScrapeChars {
		text = text[:maxScrapeChars] + "\n\n[content truncated]"
	}
	return text, nil
}

// stripHTML reduces an HTML document to its visible text.
func stripHTML(doc string) string {
	doc = scriptRe.ReplaceAllString(doc, " ")
	doc = styleRe.ReplaceAllString(doc, " ")
	doc = tagRe.ReplaceAllString(doc, "\n")
	doc = html.UnescapeString(doc)
	doc = whitespaceRe.ReplaceAllString(doc, " ")

	var lines []string
	for _, line := range strings.Split(doc, "\n") {
		line = strings.TrimSpace(line)
		if line != "" {
			lines = append(lines, line)
		}
	}
	out := strings.Join(lines, "\n")
	return blankLinesRe.ReplaceAllString(out, "\n\n")
}
