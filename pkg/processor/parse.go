package processor

import (
	"encoding/json"
	"regexp"
	"sync"

	"github.com/pkoukk/tiktoken-go"

	"github.com/entrhq/grocer/pkg/models"
)

// jsonArrayPattern pulls the outermost JSON array out of a response that
// may wrap it in prose, despite instructions not to.
var jsonArrayPattern = regexp.MustCompile(`(?s)\[.*\]`)

// parseResponse decodes the model's reply into processed ingredients,
// rejecting anything that does not match the contracted shape.
func parseResponse(raw string) ([]models.ProcessedIngredient, error) {
	payload := raw
	if match := jsonArrayPattern.FindString(raw); match != "" {
		payload = match
	}

	var items []models.ProcessedIngredient
	if err := json.Unmarshal([]byte(payload), &items); err != nil {
		return nil, &Error{
			Reason: "failed to parse the model response as a JSON ingredient array: " + err.Error(),
			Raw:    raw,
		}
	}

	for i := range items {
		if items[i].Name == "" {
			return nil, &Error{
				Reason: "the model returned an ingredient without a name",
				Raw:    raw,
			}
		}
		if items[i].Quantity == "" {
			items[i].Quantity = "as needed"
		}
	}
	return items, nil
}

var (
	encodingOnce sync.Once
	encoding     *tiktoken.Tiktoken
)

// estimateTokens approximates the prompt's token count for logging. The
// cl100k encoding is close enough across the OpenAI-compatible models this
// tool targets; when the encoding is unavailable the estimate degrades to a
// bytes/4 heuristic rather than failing the call.
func estimateTokens(text string) int {
	encodingOnce.Do(func() {
		encoding, _ = tiktoken.GetEncoding("cl100k_base")
	})
	if encoding == nil {
		return len(text) / 4
	}
	return len(encoding.Encode(text, nil, nil))
}
