package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"unicode"

	"github.com/anthropics/anthropic-sdk-go"
)

// positiveTerms and negativeTerms form a small lexicon for tone scoring.
// Good enough for drafted outreach copy; not a substitute for review.
var positiveTerms = map[string]bool{
	"good": true, "great": true, "excellent": true, "amazing": true,
	"wonderful": true, "fantastic": true, "positive": true, "love": true,
	"best": true, "happy": true, "delighted": true, "impressive": true,
	"innovative": true, "success": true, "successful": true, "growth": true,
	"excited": true, "exciting": true, "valuable": true, "helpful": true,
	"strong": true, "leading": true, "trusted": true, "reliable": true,
	"benefit": true, "opportunity": true, "win": true, "thrive": true,
	"recommend": true, "outstanding": true, "superb": true, "glad": true,
}

var negativeTerms = map[string]bool{
	"bad": true, "poor": true, "terrible": true, "awful": true,
	"horrible": true, "negative": true, "hate": true, "worst": true,
	"sad": true, "angry": true, "disappointed": true, "disappointing": true,
	"failure": true, "fail": true, "failed": true, "problem": true,
	"issue": true, "concern": true, "risk": true, "weak": true,
	"decline": true, "loss": true, "broken": true, "frustrating": true,
	"frustrated": true, "complaint": true, "churn": true, "cancel": true,
	"slow": true, "expensive": true, "confusing": true, "unhappy": true,
}

var negators = map[string]bool{
	"not": true, "no": true, "never": true, "nor": true,
	"dont": true, "doesnt": true, "isnt": true, "wasnt": true,
	"wont": true, "cant": true, "couldnt": true, "shouldnt": true,
}

// Sentiment scores the overall tone of a piece of text using a
// word lexicon with simple negation handling.
type Sentiment struct{}

// NewSentiment creates the analyze_sentiment tool.
func NewSentiment() *Sentiment {
	return &Sentiment{}
}

// Name returns the tool name.
func (s *Sentiment) Name() string { return "analyze_sentiment" }

// Definition returns the SDK tool schema.
func (s *Sentiment) Definition() anthropic.ToolUnionParam {
	return anthropic.ToolUnionParam{
		OfTool: &anthropic.ToolParam{
			Name:        s.Name(),
			Description: anthropic.String("Score the overall sentiment of a piece of text as positive, negative, or neutral."),
			InputSchema: anthropic.ToolInputSchemaParam{
				Properties: map[string]interface{}{
					"text": map[string]interface{}{
						"type":        "string",
						"description": "The text to analyze",
					},
				},
				Required: []string{"text"},
			},
		},
	}
}

type sentimentInput struct {
	Text string `json:"text"`
}

// Execute tokenizes the text and reports a score in [-1, 1].
func (s *Sentiment) Execute(ctx context.Context, input json.RawMessage) (string, error) {
	var in sentimentInput
	if err := json.Unmarshal(input, &in); err != nil {
		return "", fmt.Errorf("invalid input: %w", err)
	}
	if strings.TrimSpace(in.Text) == "" {
		return "", fmt.Errorf("text is required")
	}

	label, score, pos, neg, total := scoreSentiment(in.Text)
	return fmt.Sprintf("Sentiment: %s (score %.2f; %d positive and %d negative terms across %d words)",
		label, score, pos, neg, total), nil
}

// scoreSentiment counts lexicon hits, flipping a term's polarity when
// the previous word negates it.
func scoreSentiment(text string) (label string, score float64, pos, neg, total int) {
	words := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	total = len(words)

	prevNegated := false
	for _, w := range words {
		switch {
		case positiveTerms[w]:
			if prevNegated {
				neg++
			} else {
				pos++
			}
		case negativeTerms[w]:
			if prevNegated {
				pos++
			} else {
				neg++
			}
		}
		prevNegated = negators[w]
	}

	if pos+neg > 0 {
		score = float64(pos-neg) / float64(pos+neg)
	}
	switch {
	case score > 0.2:
		label = "positive"
	case score < -0.2:
		label = "negative"
	default:
		label = "neutral"
	}
	return label, score, pos, neg, total
}
