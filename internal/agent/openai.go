package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	openai "github.com/sashabaranov/go-openai"
)

// DefaultModel is used when the config names none.
const DefaultModel = "gpt-4o-mini"

// Client wraps the OpenAI chat-completions API for the three agents. All of
// them ask for a JSON-object response and decode it into their own shape.
type Client struct {
	api   *openai.Client
	model string
}

// NewClient creates the shared OpenAI client.
func NewClient(apiKey, model string) (*Client, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("openai api key is not set")
	}
	if model == "" {
		model = DefaultModel
		log.Printf("WARN: openai model not configured, defaulting to %s", model)
	}
	return &Client{
		api:   openai.NewClient(apiKey),
		model: model,
	}, nil
}

// completeJSON runs one chat completion with a JSON response format and
// decodes the result into out. A transport error propagates as-is, an empty
// result maps to ErrEmptyAgentOutput, and a body that does not decode into
// out maps to ErrSchemaValidation.
func (c *Client) completeJSON(ctx context.Context, instructions, prompt string, out any) error {
	resp, err := c.api.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: instructions},
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
	})
	if err != nil {
		return fmt.Errorf("chat completion failed: %w", err)
	}
	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		return ErrEmptyAgentOutput
	}
	content := resp.Choices[0].Message.Content
	if err := json.Unmarshal([]byte(content), out); err != nil {
		return fmt.Errorf("decoding agent response: %v: %w", err, ErrSchemaValidation)
	}
	return nil
}
