// Package selector resolves prose descriptions of text patterns into
// regular expressions through an OpenAI-compatible chat completion API. The
// flow language's `{prompt}` selectors are backed by a Client.
package selector

import (
	"context"
	"strings"
	"sync"

	"github.com/rotisserie/eris"
	openai "github.com/sashabaranov/go-openai"
)

// systemPrompt pins the model down to emitting either a raw regular
// expression or the literal word Error.
const systemPrompt = `You are the "Selector," a specialized engine dedicated solely to generating Regular Expressions.

YOUR INSTRUCTIONS:
1. Analyze the user's request to identify the specific text pattern, validation rule, or extraction logic required.
2. If the request is valid, output ONLY the raw Regular Expression string.
   - Do NOT use Markdown formatting (no backticks or code blocks).
   - Do NOT provide explanations, introductions, or conclusions.
3. If the request is unrelated to pattern matching (e.g., general knowledge questions, creative writing, or casual conversation), you must return exactly: "Error".

EXAMPLES:
User: "All the Bs at the end of a sequence, but only if there are more than 3."
You: B{4,}$

User: "Find any pattern that matches ABB where A stands for any character and BB stands the sequence of two of the same characters."
You: .(.)\1

User: "What is the capital of France?"
You: Error`

const defaultModel = openai.GPT4oMini

// ErrUnrelatedPrompt is returned when the model judges the prompt to be
// about something other than pattern matching.
var ErrUnrelatedPrompt = eris.New("prompt is not about pattern matching")

// completionAPI is the slice of the OpenAI client the selector needs.
// *openai.Client satisfies it.
type completionAPI interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// Client turns prompts into regular expressions. Results are cached per
// prompt for the life of the client, so a source file full of identical
// selectors costs one completion.
type Client struct {
	api         completionAPI
	model       string
	temperature *float32
	seed        *int

	mu    sync.Mutex
	cache map[string]string
}

// Option configures a Client.
type Option func(*Client)

// WithModel overrides the completion model.
func WithModel(model string) Option {
	return func(c *Client) {
		c.model = model
	}
}

// WithTemperature fixes the sampling temperature. Zero makes resolution
// reproducible across runs.
func WithTemperature(t float32) Option {
	return func(c *Client) {
		c.temperature = &t
	}
}

// WithSeed fixes the sampling seed.
func WithSeed(seed int) Option {
	return func(c *Client) {
		c.seed = &seed
	}
}

// WithCompletionAPI swaps the backing API implementation.
func WithCompletionAPI(api completionAPI) Option {
	return func(c *Client) {
		c.api = api
	}
}

// New builds a selector client against the OpenAI API.
func New(apiKey string, opts ...Option) *Client {
	c := &Client{
		model: defaultModel,
		cache: map[string]string{},
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.api == nil {
		c.api = openai.NewClient(apiKey)
	}
	return c
}

// Resolve turns a prompt into a regular expression.
func (c *Client) Resolve(ctx context.Context, prompt string) (string, error) {
	c.mu.Lock()
	cached, ok := c.cache[prompt]
	c.mu.Unlock()
	if ok {
		return cached, nil
	}

	req := openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
	}
	if c.temperature != nil {
		req.Temperature = *c.temperature
	}
	if c.seed != nil {
		req.Seed = c.seed
	}

	resp, err := c.api.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", eris.Wrap(err, "completing selector prompt")
	}
	if len(resp.Choices) == 0 {
		return "", eris.New("completion returned no choices")
	}
	expr := strings.TrimSpace(resp.Choices[0].Message.Content)
	if expr == "Error" {
		return "", eris.Wrapf(ErrUnrelatedPrompt, "prompt %q", prompt)
	}

	c.mu.Lock()
	c.cache[prompt] = expr
	c.mu.Unlock()
	return expr, nil
}

// Resolver adapts the client to the flow-language compiler's resolver
// signature.
func (c *Client) Resolver(ctx context.Context) func(prompt string) (string, error) {
	return func(prompt string) (string, error) {
		return c.Resolve(ctx, prompt)
	}
}
