package openai

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"

	"github.com/sashabaranov/go-openai"

	domai "github.com/bryanwahyu/automaton-poc/internal/domain/ai"
	"github.com/bryanwahyu/automaton-poc/internal/domain/analysis"
)

const defaultMaxTokens = 300

type Client struct {
	*openai.Client
	Model string
}

func NewClient(apiKey, model string) *Client {
	return &Client{Client: openai.NewClient(apiKey), Model: model}
}

// Complete sends one user prompt and returns the reply text plus reported
// token usage. Rate-limit and server-side failures are classified so the
// stage retry policy can tell transient errors from fatal ones.
func (c *Client) Complete(ctx context.Context, prompt string, maxTokens int) (string, analysis.TokenUsage, error) {
	model := c.Model
	if model == "" {
		model = "gpt-4o-mini"
	}
	if maxTokens <= 0 {
		maxTokens = defaultMaxTokens
	}

	req := openai.ChatCompletionRequest{
		Model:       model,
		Temperature: 0.3,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
	}
	// For reasoning models (o1/o3/o4/gpt-5*) use MaxCompletionTokens instead of MaxTokens
	if strings.HasPrefix(model, "o1") || strings.HasPrefix(model, "o3") || strings.HasPrefix(model, "o4") || strings.HasPrefix(model, "gpt-5") {
		req.MaxCompletionTokens = maxTokens
	} else {
		req.MaxTokens = maxTokens
	}

	resp, err := c.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", analysis.TokenUsage{}, classify(err)
	}
	if len(resp.Choices) == 0 {
		return "", analysis.TokenUsage{}, fmt.Errorf("%w: response missing choices", domai.ErrTransient)
	}

	usage := analysis.TokenUsage{
		Prompt:     resp.Usage.PromptTokens,
		Completion: resp.Usage.CompletionTokens,
	}
	return resp.Choices[0].Message.Content, usage, nil
}

func classify(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		switch {
		case apiErr.HTTPStatusCode == 429:
			return fmt.Errorf("%w: %v", domai.ErrQuotaExceeded, err)
		case apiErr.HTTPStatusCode >= 500:
			return fmt.Errorf("%w: %v", domai.ErrTransient, err)
		}
		return fmt.Errorf("failed to create chat completion: %w", err)
	}
	var netErr net.Error
	if errors.As(err, &netErr) || errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %v", domai.ErrTransient, err)
	}
	return fmt.Errorf("failed to create chat completion: %w", err)
}

var _ domai.Client = (*Client)(nil)
