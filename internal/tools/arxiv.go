package tools

import (
	"context"
	"encoding/json"
	"encoding/xml"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
)

const arxivEndpoint = "https://export.arxiv.org/api/query"

// ArxivSearch queries the arXiv Atom API for papers.
type ArxivSearch struct {
	client  *http.Client
	baseURL string
}

// NewArxivSearch creates the arxiv_search tool.
func NewArxivSearch(client *http.Client) *ArxivSearch {
	return &ArxivSearch{client: client, baseURL: arxivEndpoint}
}

// Name returns the tool name.
func (a *ArxivSearch) Name() string { return "arxiv_search" }

// Definition returns the SDK tool schema.
func (a *ArxivSearch) Definition() anthropic.ToolUnionParam {
	return anthropic.ToolUnionParam{
		OfTool: &anthropic.ToolParam{
			Name:        a.Name(),
			Description: anthropic.String("Search arXiv for academic papers. Returns titles, authors, abstracts, and links."),
			InputSchema: anthropic.ToolInputSchemaParam{
				Properties: map[string]interface{}{
					"query": map[string]interface{}{
						"type":        "string",
						"description": "The search query",
					},
					"max_results": map[string]interface{}{
						"type":        "integer",
						"description": "Number of papers to return (default 5, max 10)",
					},
				},
				Required: []string{"query"},
			},
		},
	}
}

type arxivInput struct {
	Query      string `json:"query"`
	MaxResults int    `json:"max_results"`
}

type atomFeed struct {
	Entries []atomEntry `xml:"entry"`
}

type atomEntry struct {
	ID        string   `xml:"id"`
	Title     string   `xml:"title"`
	Summary   string   `xml:"summary"`
	Published string   `xml:"published"`
	Authors   []author `xml:"author"`
}

type author struct {
	Name string `xml:"name"`
}

// Execute queries the Atom API and formats the entries.
func (a *ArxivSearch) Execute(ctx context.Context, input json.RawMessage) (string, error) {
	var in arxivInput
	if err := json.Unmarshal(input, &in); err != nil {
		return "", fmt.Errorf("invalid input: %w", err)
	}
	if in.Query == "" {
		return "", fmt.Errorf("query is required")
	}
	if in.MaxResults <= 0 {
		in.MaxResults = 5
	}
	if in.MaxResults > 10 {
		in.MaxResults = 10
	}

	params := url.Values{}
	params.Set("search_query", "all:"+in.Query)
	params.Set("start", "0")
	params.Set("max_results", fmt.Sprintf("%d", in.MaxResults))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, a.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return "", err
	}

	resp, err := a.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("arxiv request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("arxiv returned status %d", resp.StatusCode)
	}

	var feed atomFeed
	if err := xml.NewDecoder(resp.Body).Decode(&feed); err != nil {
		return "", fmt.Errorf("decoding arxiv response: %w", err)
	}

	if len(feed.Entries) == 0 {
		return "No papers found.", nil
	}

	var b strings.Builder
	for i, e := range feed.Entries {
		names := make([]string, 0, len(e.Authors))
		for _, au := range e.Authors {
			names = append(names, au.Name)
		}
		fmt.Fprintf(&b, "%d. %s\n   Authors: %s\n   Published: %s\n   Link: %s\n   %s\n\n",
			i+1,
			strings.TrimSpace(e.Title),
			strings.Join(names, ", "),
			e.Published,
			e.ID,
			collapseSpace(e.Summary))
	}
	return strings.TrimRight(b.String(), "\n"), nil
}

// collapseSpace joins a multi-line abstract into one line.
func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
