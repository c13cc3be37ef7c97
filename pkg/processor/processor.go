// Package processor implements the external normalization/consolidation
// contract: it submits the full raw ingredient sequence plus the configured
// store sections to an OpenAI-compatible chat model and parses the response
// back into processed ingredients.
//
// The processor is stateless between calls; the aggregator decides when a
// call happens and what to do with the result.
package processor

import (
	"context"
	"fmt"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/entrhq/grocer/pkg/config"
	"github.com/entrhq/grocer/pkg/logging"
	"github.com/entrhq/grocer/pkg/models"
)

// maxResponseTokens bounds the completion, not the prompt.
const maxResponseTokens = 4096

// Error is a processor failure: the endpoint was unreachable or its
// response could not be parsed into the expected shape. It carries the raw
// response text when one was received, so the user can see what came back.
type Error struct {
	Reason string
	Raw    string
}

func (e *Error) Error() string {
	if e.Raw == "" {
		return e.Reason
	}
	return fmt.Sprintf("%s\n\nRaw response:\n%s", e.Reason, e.Raw)
}

// Client talks to one configured model endpoint.
type Client struct {
	api          openai.Client
	model        string
	systemPrompt string
	log          *logging.Logger
}

// NewClient creates a processor client from the configuration. The logger
// may be nil.
func NewClient(cfg config.Config, log *logging.Logger) *Client {
	opts := []option.RequestOption{option.WithAPIKey(cfg.APIKey)}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	return &Client{
		api:          openai.NewClient(opts...),
		model:        cfg.Model,
		systemPrompt: cfg.SystemPrompt,
		log:          log,
	}
}

// Consolidate submits the raw entries and section enumeration in a single
// chat completion and returns the normalized, merged, categorized result.
// Callers must not invoke it with zero entries.
func (c *Client) Consolidate(ctx context.Context, entries []models.RawIngredient, sections []string) ([]models.ProcessedIngredient, error) {
	if len(entries) == 0 {
		return nil, &Error{Reason: "consolidation invoked with no ingredients"}
	}

	userContent := buildUserContent(entries, sections)
	if c.log != nil {
		c.log.Infof("consolidating %d raw entries (~%d prompt tokens) with model %s",
			len(entries), estimateTokens(c.systemPrompt+userContent), c.model)
	}

	resp, err := c.api.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(c.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(c.systemPrompt),
			openai.UserMessage(userContent),
		},
		MaxTokens: openai.Int(maxResponseTokens),
	})
	if err != nil {
		return nil, &Error{Reason: fmt.Sprintf("consolidation request failed: %v", err)}
	}
	if len(resp.Choices) == 0 {
		return nil, &Error{Reason: "consolidation response contained no choices"}
	}

	return parseResponse(resp.Choices[0].Message.Content)
}

// buildUserContent lists the section enumeration, then one line per raw
// entry with its provenance label as context for merging.
func buildUserContent(entries []models.RawIngredient, sections []string) string {
	var b []byte
	b = append(b, "Store sections to use:\n"...)
	for _, s := range sections {
		b = append(b, fmt.Sprintf("  - %s\n", s)...)
	}
	b = append(b, "\nIngredients to process:\n"...)
	for _, e := range entries {
		b = append(b, fmt.Sprintf("- %s (from: %s)\n", e.Text, e.SourceLabel)...)
	}
	return string(b)
}
