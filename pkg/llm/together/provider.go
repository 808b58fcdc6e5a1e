package together

import (
	"ai-assistant-be/pkg/llm"
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const DefaultBaseURL = "https://api.together.xyz"

const chatCompletionsEndpoint = "/v1/chat/completions"

// doneSentinel terminates the provider's SSE data stream.
const doneSentinel = "[DONE]"

type TogetherProvider struct {
	BaseURL string
	APIKey  string
	Model   string
	Client  *http.Client
}

// Ensure TogetherProvider implements LLMProvider
var _ llm.LLMProvider = &TogetherProvider{}

func NewTogetherProvider(baseURL, apiKey, modelName string) *TogetherProvider {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &TogetherProvider{
		BaseURL: baseURL,
		APIKey:  apiKey,
		Model:   modelName,
		Client: &http.Client{
			Timeout: 120 * time.Second,
		},
	}
}

// --- Request/Response structs (Internal to this package) ---

type togetherChatRequest struct {
	Model       string            `json:"model"`
	Messages    []togetherMessage `json:"messages"`
	Temperature float64           `json:"temperature"`
	TopP        float64           `json:"top_p"`
	MaxTokens   int               `json:"max_tokens"`
	Stream      bool              `json:"stream"`
}

type togetherMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type togetherChatResponse struct {
	Choices []struct {
		Message togetherMessage `json:"message"`
	} `json:"choices"`
}

// togetherStreamChunk is the narrow schema of one streamed SSE payload.
// Missing fields fall back to the zero value rather than failing the stream.
type togetherStreamChunk struct {
	Choices []struct {
		Delta struct {
			Content string `json:"content"`
		} `json:"delta"`
	} `json:"choices"`
}

func (t *TogetherProvider) ModelName() string {
	return t.Model
}

func (t *TogetherProvider) buildRequest(history []llm.Message, options *llm.Options, stream bool) togetherChatRequest {
	messages := make([]togetherMessage, len(history))
	for i, msg := range history {
		role := msg.Role
		if role == "model" {
			role = "assistant"
		}
		messages[i] = togetherMessage{
			Role:    role,
			Content: msg.Content,
		}
	}

	model := t.Model
	if options.Model != "" {
		model = options.Model
	}

	return togetherChatRequest{
		Model:       model,
		Messages:    messages,
		Temperature: options.Temperature,
		TopP:        options.TopP,
		MaxTokens:   options.MaxTokens,
		Stream:      stream,
	}
}

func defaultOptions(opts []llm.Option) *llm.Options {
	options := &llm.Options{
		Temperature: 0.3,
		TopP:        0.9,
		MaxTokens:   4096,
	}
	for _, opt := range opts {
		opt(options)
	}
	return options
}

// Chat sends a non-streaming chat completion request.
func (t *TogetherProvider) Chat(ctx context.Context, history []llm.Message, opts ...llm.Option) (string, error) {
	reqPayload := t.buildRequest(history, defaultOptions(opts), false)

	payloadBytes, err := json.Marshal(reqPayload)
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	url := t.BaseURL + chatCompletionsEndpoint
	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewBuffer(payloadBytes))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+t.APIKey)

	resp, err := t.Client.Do(req)
	if err != nil {
		return "", fmt.Errorf("together request failed: %w", err)
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("together error: status %d, body: %s", resp.StatusCode, string(bodyBytes))
	}

	var chatResp togetherChatResponse
	if err := json.Unmarshal(bodyBytes, &chatResp); err != nil {
		return "", fmt.Errorf("unmarshal response: %w", err)
	}

	if len(chatResp.Choices) == 0 {
		return "", nil
	}
	return chatResp.Choices[0].Message.Content, nil
}

func (t *TogetherProvider) Generate(ctx context.Context, prompt string, opts ...llm.Option) (string, error) {
	return t.Chat(ctx, []llm.Message{{Role: "user", Content: prompt}}, opts...)
}

// ChatStream opens a streaming chat completion request and yields raw text
// deltas as they arrive. The delta channel is closed on normal completion
// (the provider's [DONE] sentinel), cancellation, or failure; failures are
// surfaced once on the error channel as *llm.UpstreamError. There is no
// retry here: one HTTP-level conversation turn, one attempt.
func (t *TogetherProvider) ChatStream(ctx context.Context, history []llm.Message, opts ...llm.Option) (<-chan string, <-chan error) {
	deltaChan := make(chan string, 64)
	errChan := make(chan error, 1)

	reqPayload := t.buildRequest(history, defaultOptions(opts), true)

	go func() {
		defer close(deltaChan)
		defer close(errChan)

		payloadBytes, err := json.Marshal(reqPayload)
		if err != nil {
			errChan <- &llm.UpstreamError{Provider: "together", Err: fmt.Errorf("marshal request: %w", err)}
			return
		}

		url := t.BaseURL + chatCompletionsEndpoint
		req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewReader(payloadBytes))
		if err != nil {
			errChan <- &llm.UpstreamError{Provider: "together", Err: fmt.Errorf("create request: %w", err)}
			return
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Authorization", "Bearer "+t.APIKey)
		req.Header.Set("Accept", "text/event-stream")

		resp, err := t.Client.Do(req)
		if err != nil {
			// Aborts driven by the caller's token are cancellation, not failure.
			if ctx.Err() != nil {
				errChan <- ctx.Err()
				return
			}
			errChan <- &llm.UpstreamError{Provider: "together", Err: err}
			return
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			body, _ := io.ReadAll(resp.Body)
			errChan <- &llm.UpstreamError{
				Provider: "together",
				Err:      fmt.Errorf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(body))),
			}
			return
		}

		scanner := bufio.NewScanner(resp.Body)
		scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

		for scanner.Scan() {
			line := scanner.Text()
			if !strings.HasPrefix(line, "data:") {
				continue
			}
			data := strings.TrimSpace(strings.TrimPrefix(line, "data:"))
			if data == "" {
				continue
			}
			if data == doneSentinel {
				return
			}

			var chunk togetherStreamChunk
			if err := json.Unmarshal([]byte(data), &chunk); err != nil {
				// Malformed lines are skipped, matching the provider's
				// best-effort wire contract.
				continue
			}
			if len(chunk.Choices) == 0 {
				continue
			}
			delta := chunk.Choices[0].Delta.Content
			if delta == "" {
				continue
			}
			select {
			case deltaChan <- delta:
			case <-ctx.Done():
				errChan <- ctx.Err()
				return
			}
		}

		if err := scanner.Err(); err != nil {
			if ctx.Err() != nil || errors.Is(err, context.Canceled) {
				errChan <- ctx.Err()
				return
			}
			errChan <- &llm.UpstreamError{Provider: "together", Err: err}
		}
	}()

	return deltaChan, errChan
}
