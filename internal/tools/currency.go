package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
)

const frankfurterEndpoint = "https://api.frankfurter.app"

// CurrencyExchange converts amounts between currencies using the
// Frankfurter exchange rate API.
type CurrencyExchange struct {
	client  *http.Client
	baseURL string
}

// NewCurrencyExchange creates the currency_exchange tool.
func NewCurrencyExchange(client *http.Client) *CurrencyExchange {
	return &CurrencyExchange{client: client, baseURL: frankfurterEndpoint}
}

// Name returns the tool name.
func (c *CurrencyExchange) Name() string { return "currency_exchange" }

// Definition returns the SDK tool schema.
func (c *CurrencyExchange) Definition() anthropic.ToolUnionParam {
	return anthropic.ToolUnionParam{
		OfTool: &anthropic.ToolParam{
			Name:        c.Name(),
			Description: anthropic.String("Convert an amount between two currencies using current exchange rates."),
			InputSchema: anthropic.ToolInputSchemaParam{
				Properties: map[string]interface{}{
					"amount": map[string]interface{}{
						"type":        "number",
						"description": "The amount to convert (default 1)",
					},
					"from": map[string]interface{}{
						"type":        "string",
						"description": "Source currency code (e.g. USD)",
					},
					"to": map[string]interface{}{
						"type":        "string",
						"description": "Target currency code (e.g. EUR)",
					},
				},
				Required: []string{"from", "to"},
			},
		},
	}
}

type currencyInput struct {
	Amount float64 `json:"amount"`
	From   string  `json:"from"`
	To     string  `json:"to"`
}

type frankfurterResponse struct {
	Amount float64            `json:"amount"`
	Base   string             `json:"base"`
	Date   string             `json:"date"`
	Rates  map[string]float64 `json:"rates"`
}

// Execute fetches the rate and reports the converted amount.
func (c *CurrencyExchange) Execute(ctx context.Context, input json.RawMessage) (string, error) {
	var in currencyInput
	if err := json.Unmarshal(input, &in); err != nil {
		return "", fmt.Errorf("invalid input: %w", err)
	}
	in.From = strings.ToUpper(strings.TrimSpace(in.From))
	in.To = strings.ToUpper(strings.TrimSpace(in.To))
	if in.From == "" || in.To == "" {
		return "", fmt.Errorf("from and to currency codes are required")
	}
	if in.Amount <= 0 {
		in.Amount = 1
	}
	if in.From == in.To {
		return fmt.Sprintf("%.2f %s = %.2f %s", in.Amount, in.From, in.Amount, in.To), nil
	}

	params := url.Values{}
	params.Set("amount", fmt.Sprintf("%g", in.Amount))
	params.Set("from", in.From)
	params.Set("to", in.To)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/latest?"+params.Encode(), nil)
	if err != nil {
		return "", err
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("exchange rate request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("exchange rate API returned status %d (check currency codes)", resp.StatusCode)
	}

	var parsed frankfurterResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", fmt.Errorf("decoding exchange rate response: %w", err)
	}

	rate, ok := parsed.Rates[in.To]
	if !ok {
		return "", fmt.Errorf("no rate returned for %s", in.To)
	}

	return fmt.Sprintf("%.2f %s = %.2f %s (rate date %s)", in.Amount, in.From, rate, in.To, parsed.Date), nil
}
