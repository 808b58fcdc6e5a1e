package uitest

import (
	"context"
	"encoding/json"
	"fmt"

	"ai-assistant-be/pkg/llm"
)

// UiMap is the compressed form of a DOM snapshot.
type UiMap struct {
	Pages      []json.RawMessage `json:"pages"`
	Components []json.RawMessage `json:"components"`
	Actions    []json.RawMessage `json:"actions"`
}

type GeneratedStep struct {
	Index    int             `json:"index"`
	Action   string          `json:"action"`
	Selector string          `json:"selector"`
	Details  json.RawMessage `json:"details"`
	Expected string          `json:"expected"`
}

type GeneratedTest struct {
	Title          string          `json:"title"`
	Description    string          `json:"description"`
	Priority       string          `json:"priority"`
	Tags           []string        `json:"tags"`
	Preconditions  string          `json:"preconditions"`
	Steps          []GeneratedStep `json:"steps"`
	Postconditions string          `json:"postconditions"`
	Negative       bool            `json:"negative"`
}

type testSuitePayload struct {
	Tests []GeneratedTest `json:"tests"`
}

// Generator turns DOM snapshots into UI maps and test suites through the
// model provider.
type Generator struct {
	provider llm.LLMProvider
}

func NewGenerator(provider llm.LLMProvider) *Generator {
	return &Generator{provider: provider}
}

// SummarizeUi compresses raw element records into a UI map. A response the
// model did not shape as JSON degrades to an empty map rather than an
// error, snapshot creation should not fail on a summarization hiccup.
func (g *Generator) SummarizeUi(ctx context.Context, elements json.RawMessage) (json.RawMessage, error) {
	content, err := g.provider.Chat(ctx, buildCompressionMessages(elements))
	if err != nil {
		return nil, fmt.Errorf("ui summarization failed: %w", err)
	}

	empty := json.RawMessage(`{"pages":[],"components":[],"actions":[]}`)
	payload, ok := extractJSON(content)
	if !ok {
		return empty, nil
	}
	var m UiMap
	if err := json.Unmarshal([]byte(payload), &m); err != nil {
		return empty, nil
	}
	normalized, err := json.Marshal(m)
	if err != nil {
		return empty, nil
	}
	return normalized, nil
}

// GenerateTestCases asks the model for a test suite over the UI map.
func (g *Generator) GenerateTestCases(ctx context.Context, url, title string, uiMap json.RawMessage, goals []string) ([]GeneratedTest, error) {
	content, err := g.provider.Chat(ctx, buildTestCaseMessages(url, title, uiMap, goals))
	if err != nil {
		return nil, fmt.Errorf("test generation failed: %w", err)
	}

	payload, ok := extractJSON(content)
	if !ok {
		return nil, nil
	}
	var suite testSuitePayload
	if err := json.Unmarshal([]byte(payload), &suite); err != nil {
		return nil, nil
	}
	return suite.Tests, nil
}
