package tools

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
)

const serperEndpoint = "https://google.serper.dev/search"

// WebSearch queries the Serper search API for current web results.
type WebSearch struct {
	apiKey  string
	client  *http.Client
	baseURL string
}

// NewWebSearch creates the web_search tool.
func NewWebSearch(apiKey string, client *http.Client) *WebSearch {
	return &WebSearch{apiKey: apiKey, client: client, baseURL: serperEndpoint}
}

// Name returns the tool name.
func (w *WebSearch) Name() string { return "web_search" }

// Definition returns the SDK tool schema.
func (w *WebSearch) Definition() anthropic.ToolUnionParam {
	return anthropic.ToolUnionParam{
		OfTool: &anthropic.ToolParam{
			Name:        w.Name(),
			Description: anthropic.String("Search the web for current information. Returns result titles, links, and snippets."),
			InputSchema: anthropic.ToolInputSchemaParam{
				Properties: map[string]interface{}{
					"query": map[string]interface{}{
						"type":        "string",
						"description": "The search query",
					},
					"num_results": map[string]interface{}{
						"type":        "integer",
						"description": "Number of results to return (default 5, max 10)",
					},
				},
				Required: []string{"query"},
			},
		},
	}
}

type webSearchInput struct {
	Query      string `json:"query"`
	NumResults int    `json:"num_results"`
}

type serperResponse struct {
	Organic []struct {
		Title   string `json:"title"`
		Link    string `json:"link"`
		Snippet string `json:"snippet"`
	} `json:"organic"`
}

// Execute runs the search and formats the organic results.
func (w *WebSearch) Execute(ctx context.Context, input json.RawMessage) (string, error) {
	var in webSearchInput
	if err := json.Unmarshal(input, &in); err != nil {
		return "", fmt.Errorf("invalid input: %w", err)
	}
	if in.Query == "" {
		return "", fmt.Errorf("query is required")
	}
	if w.apiKey == "" {
		return "", fmt.Errorf("web search needs a Serper API key (set SERPER_API_KEY or tools.serper_api_key)")
	}
	if in.NumResults <= 0 {
		in.NumResults = 5
	}
	if in.NumResults > 10 {
		in.NumResults = 10
	}

	body, err := json.Marshal(map[string]interface{}{
		"q":   in.Query,
		"num": in.NumResults,
	})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.baseURL, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("X-API-KEY", w.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := w.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("search request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("search returned status %d", resp.StatusCode)
	}

	var parsed serperResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", fmt.Errorf("decoding search response: %w", err)
	}

	if len(parsed.Organic) == 0 {
		return "No results found.", nil
	}

	var b strings.Builder
	for i, r := range parsed.Organic {
		if i >= in.NumResults {
			break
		}
		fmt.Fprintf(&b, "%d. %s\n   %s\n   %s\n\n", i+1, r.Title, r.Link, r.Snippet)
	}
	return strings.TrimRight(b.String(), "\n"), nil
}
