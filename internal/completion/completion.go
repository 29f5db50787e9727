// Package completion talks to the hosted chat-completion service used to
// adjudicate battles. The Anthropic Messages API is the production backend.
package completion

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"go.uber.org/zap"

	"github.com/cory-johannsen/pokebattle/internal/config"
)

// Request is a single-turn completion request.
type Request struct {
	// System is the system instruction.
	System string
	// Prompt is the one user message.
	Prompt string
	// Temperature is the sampling temperature in [0, 1].
	Temperature float64
	// MaxTokens caps the length of the reply.
	MaxTokens int
}

// ErrEmptyCompletion is returned when the service answers without any text.
var ErrEmptyCompletion = errors.New("completion contained no text")

// StatusError reports a non-2xx answer from the completion service.
type StatusError struct {
	StatusCode int
	Err        error
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("completion service returned status %d: %v", e.StatusCode, e.Err)
}

func (e *StatusError) Unwrap() error { return e.Err }

// AnthropicCompleter sends requests to the Anthropic Messages API.
//
// It performs exactly one HTTP attempt per call; the SDK's automatic retries
// are disabled.
type AnthropicCompleter struct {
	client anthropic.Client
	model  anthropic.Model
	logger *zap.Logger
}

// NewAnthropicCompleter builds a completer from cfg.
//
// Precondition: cfg.APIKey and cfg.Model must be non-empty; logger must be non-nil.
// Postcondition: Returns a ready completer; no network traffic happens here.
func NewAnthropicCompleter(cfg config.CompletionConfig, logger *zap.Logger) *AnthropicCompleter {
	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithMaxRetries(0),
		option.WithHTTPClient(&http.Client{Timeout: cfg.Timeout}),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	return &AnthropicCompleter{
		client: anthropic.NewClient(opts...),
		model:  anthropic.Model(cfg.Model),
		logger: logger,
	}
}

// Complete sends req and returns the concatenated text of the reply.
//
// Postcondition: Returns non-empty text, or an error. A non-2xx answer is
// reported as *StatusError; a reply without text as ErrEmptyCompletion.
func (c *AnthropicCompleter) Complete(ctx context.Context, req Request) (string, error) {
	start := time.Now()
	params := anthropic.MessageNewParams{
		Model:     c.model,
		MaxTokens: int64(req.MaxTokens),
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(req.Prompt)),
		},
		Temperature: anthropic.Float(req.Temperature),
	}
	if req.System != "" {
		params.System = []anthropic.TextBlockParam{{Text: req.System}}
	}

	msg, err := c.client.Messages.New(ctx, params)
	if err != nil {
		var apiErr *anthropic.Error
		if errors.As(err, &apiErr) {
			return "", &StatusError{StatusCode: apiErr.StatusCode, Err: err}
		}
		return "", fmt.Errorf("calling completion service: %w", err)
	}

	var sb strings.Builder
	for _, block := range msg.Content {
		if block.Type == "text" {
			sb.WriteString(block.Text)
		}
	}
	text := sb.String()

	c.logger.Debug("completion received",
		zap.String("model", string(c.model)),
		zap.String("stop_reason", string(msg.StopReason)),
		zap.Int64("output_tokens", msg.Usage.OutputTokens),
		zap.Duration("elapsed", time.Since(start)),
	)

	if strings.TrimSpace(text) == "" {
		return "", ErrEmptyCompletion
	}
	return text, nil
}
