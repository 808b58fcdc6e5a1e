package llm

import (
	"context"
	"fmt"
)

// Message represents a chat message in a provider-agnostic format
type Message struct {
	Role    string // "user", "assistant", "system"
	Content string
}

// Option allows for optional parameters like Temperature, MaxTokens, etc.
type Option func(*Options)

type Options struct {
	Temperature float64
	TopP        float64
	MaxTokens   int
	Model       string // Override default model
}

func WithTemperature(temp float64) Option {
	return func(o *Options) {
		o.Temperature = temp
	}
}

func WithTopP(topP float64) Option {
	return func(o *Options) {
		o.TopP = topP
	}
}

func WithMaxTokens(n int) Option {
	return func(o *Options) {
		o.MaxTokens = n
	}
}

func WithModel(model string) Option {
	return func(o *Options) {
		o.Model = model
	}
}

// LLMProvider defines the contract for any LLM backend
type LLMProvider interface {
	// Chat sends a chat history to the model and returns the response
	Chat(ctx context.Context, history []Message, options ...Option) (string, error)

	// Generate sends a single prompt to the model (convenience method)
	Generate(ctx context.Context, prompt string, options ...Option) (string, error)

	// ChatStream sends a chat history with streaming enabled and returns a
	// channel of incremental text deltas plus a single-buffered error
	// channel. The delta channel is closed when the stream ends; the error
	// channel carries at most one *UpstreamError (or the context error on
	// cancellation). Fragment boundaries carry no meaning: a word or a
	// marker may be split across two deltas. The stream is not restartable
	// and callers must treat the first failure as terminal.
	ChatStream(ctx context.Context, history []Message, options ...Option) (<-chan string, <-chan error)

	// ModelName reports the model identifier used for tagging transcripts.
	ModelName() string
}

// UpstreamError marks a provider connection or protocol failure, distinct
// from normal end-of-stream and from cancellation.
type UpstreamError struct {
	Provider string
	Err      error
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("%s upstream failure: %v", e.Provider, e.Err)
}

func (e *UpstreamError) Unwrap() error {
	return e.Err
}
