// Package enhance generates example sentences for flashcards by calling an
// LLM with a structured-output schema. The Enhancer interface is the
// per-card operation fed to the batch executor; production code uses the
// OpenAI-backed client, tests use deterministic fakes.
package enhance

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v6"
	openai "github.com/sashabaranov/go-openai"

	"github.com/rshade/cardforge/internal/cards"
)

// DefaultModel is the model used when none is configured.
const DefaultModel = "gpt-4o"

// Errors returned by the client.
var (
	ErrMissingAPIKey = errors.New("API key is empty")
	ErrEmptyResponse = errors.New("model returned no choices")
)

// Enhancer generates the example sentence pair for one card. It may fail
// with any error; the executor retries transient failures.
type Enhancer interface {
	Enhance(ctx context.Context, card cards.RawCard) (cards.Example, error)
}

// chatCompleter is the slice of the OpenAI client the Enhancer needs.
type chatCompleter interface {
	CreateChatCompletion(
		ctx context.Context,
		req openai.ChatCompletionRequest,
	) (openai.ChatCompletionResponse, error)
}

// Client is an OpenAI-backed Enhancer using JSON-schema structured output.
type Client struct {
	api    chatCompleter
	model  string
	schema *jsonschema.Schema
}

// NewClient creates an Enhancer calling the OpenAI API with the given key
// and model.
func NewClient(apiKey, model string) (*Client, error) {
	if apiKey == "" {
		return nil, ErrMissingAPIKey
	}
	if model == "" {
		model = DefaultModel
	}

	schema, err := compileSchema()
	if err != nil {
		return nil, err
	}

	return &Client{
		api:    openai.NewClient(apiKey),
		model:  model,
		schema: schema,
	}, nil
}

// Enhance requests an example sentence pair for the card and validates the
// structured response.
func (c *Client) Enhance(ctx context.Context, card cards.RawCard) (cards.Example, error) {
	req := openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: Instructions},
			{Role: openai.ChatMessageRoleUser, Content: BuildPrompt(card)},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONSchema,
			JSONSchema: &openai.ChatCompletionResponseFormatJSONSchema{
				Name:   "additional_fields",
				Schema: json.RawMessage(additionalFieldsSchema),
				Strict: true,
			},
		},
	}

	resp, err := c.api.CreateChatCompletion(ctx, req)
	if err != nil {
		return cards.Example{}, fmt.Errorf("chat completion for %q: %w", card.Front, err)
	}
	if len(resp.Choices) == 0 {
		return cards.Example{}, fmt.Errorf("%w for %q", ErrEmptyResponse, card.Front)
	}

	fields, err := parseResponse(c.schema, []byte(resp.Choices[0].Message.Content))
	if err != nil {
		return cards.Example{}, err
	}

	return cards.Example{
		SentenceFront: fields.ExampleSentenceFront,
		SentenceBack:  fields.ExampleSentenceBack,
	}, nil
}
