package uitest

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"ai-assistant-be/pkg/llm"
)

type fakeProvider struct {
	response string
	err      error
}

func (f *fakeProvider) Chat(_ context.Context, _ []llm.Message, _ ...llm.Option) (string, error) {
	return f.response, f.err
}

func (f *fakeProvider) Generate(_ context.Context, _ string, _ ...llm.Option) (string, error) {
	return f.response, f.err
}

func (f *fakeProvider) ChatStream(_ context.Context, _ []llm.Message, _ ...llm.Option) (<-chan string, <-chan error) {
	deltas := make(chan string)
	errs := make(chan error, 1)
	close(deltas)
	close(errs)
	return deltas, errs
}

func (f *fakeProvider) ModelName() string { return "fake-model" }

func TestExtractJSON(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
		ok      bool
	}{
		{"clean object", `{"a":1}`, `{"a":1}`, true},
		{"prose prefix", `Sure, here you go: {"a":1}`, `{"a":1}`, true},
		{"array first", `[1,2] {"a":1}`, `[1,2] {"a":1}`, true},
		{"object before array", `{"a":[1]}`, `{"a":[1]}`, true},
		{"no json", `I cannot help with that.`, "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := extractJSON(tt.content)
			if ok != tt.ok || got != tt.want {
				t.Errorf("extractJSON(%q) = (%q, %v), want (%q, %v)", tt.content, got, ok, tt.want, tt.ok)
			}
		})
	}
}

func TestSummarizeUi(t *testing.T) {
	provider := &fakeProvider{response: `Here is the map: {"pages":[{"name":"home"}],"components":[],"actions":[{"label":"login"}]}`}
	g := NewGenerator(provider)

	uiMap, err := g.SummarizeUi(context.Background(), json.RawMessage(`[]`))
	if err != nil {
		t.Fatal(err)
	}

	var parsed UiMap
	if err := json.Unmarshal(uiMap, &parsed); err != nil {
		t.Fatalf("result is not valid JSON: %v", err)
	}
	if len(parsed.Pages) != 1 || len(parsed.Actions) != 1 {
		t.Errorf("parsed map = %+v, want one page and one action", parsed)
	}
}

func TestSummarizeUiDegradesToEmptyMap(t *testing.T) {
	provider := &fakeProvider{response: "no structured output here"}
	g := NewGenerator(provider)

	uiMap, err := g.SummarizeUi(context.Background(), json.RawMessage(`[]`))
	if err != nil {
		t.Fatal(err)
	}
	var parsed UiMap
	if err := json.Unmarshal(uiMap, &parsed); err != nil {
		t.Fatalf("fallback is not valid JSON: %v", err)
	}
	if len(parsed.Pages) != 0 || len(parsed.Components) != 0 || len(parsed.Actions) != 0 {
		t.Errorf("fallback map = %+v, want empty", parsed)
	}
}

func TestSummarizeUiProviderError(t *testing.T) {
	provider := &fakeProvider{err: errors.New("boom")}
	g := NewGenerator(provider)

	if _, err := g.SummarizeUi(context.Background(), json.RawMessage(`[]`)); err == nil {
		t.Fatal("expected error")
	}
}

func TestGenerateTestCases(t *testing.T) {
	provider := &fakeProvider{response: `{"tests":[{"title":"login works","priority":"P1","tags":["auth"],"steps":[{"index":1,"action":"click","selector":"#login","expected":"form shown"}]}]}`}
	g := NewGenerator(provider)

	tests, err := g.GenerateTestCases(context.Background(), "https://example.com", "Example", json.RawMessage(`{}`), []string{"login"})
	if err != nil {
		t.Fatal(err)
	}
	if len(tests) != 1 {
		t.Fatalf("got %d tests, want 1", len(tests))
	}
	if tests[0].Title != "login works" || tests[0].Priority != "P1" {
		t.Errorf("test = %+v", tests[0])
	}
	if len(tests[0].Steps) != 1 || tests[0].Steps[0].Selector != "#login" {
		t.Errorf("steps = %+v", tests[0].Steps)
	}
}

func TestGenerateTestCasesMalformedOutput(t *testing.T) {
	provider := &fakeProvider{response: "sorry, no tests"}
	g := NewGenerator(provider)

	tests, err := g.GenerateTestCases(context.Background(), "https://example.com", "", json.RawMessage(`{}`), nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(tests) != 0 {
		t.Errorf("got %d tests, want none", len(tests))
	}
}

func TestTruncatePayload(t *testing.T) {
	if got := truncatePayload([]byte("abcdef"), 4); got != "abcd" {
		t.Errorf("got %q, want %q", got, "abcd")
	}
	if got := truncatePayload([]byte("abc"), 4); got != "abc" {
		t.Errorf("got %q, want %q", got, "abc")
	}
}
