package utils

import "testing"

func TestDeriveTitle(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		maxRunes int
		want     string
	}{
		{
			name:     "plain text",
			text:     "How do goroutines work?",
			maxRunes: 80,
			want:     "How do goroutines work?",
		},
		{
			name:     "collapses whitespace",
			text:     "  multiple\n\n  lines\tand   spaces  ",
			maxRunes: 80,
			want:     "multiple lines and spaces",
		},
		{
			name:     "removes fenced code block",
			text:     "Fix this\n```go\nfunc main() {}\n```\nplease",
			maxRunes: 80,
			want:     "Fix this please",
		},
		{
			name:     "removes unterminated fence",
			text:     "Check ```py\nprint(1)",
			maxRunes: 80,
			want:     "Check",
		},
		{
			name:     "keeps inline code text",
			text:     "What does `context.Done` return?",
			maxRunes: 80,
			want:     "What does context.Done return?",
		},
		{
			name:     "drops think region",
			text:     "<think>internal</think>actual question",
			maxRunes: 80,
			want:     "actual question",
		},
		{
			name:     "truncates at rune boundary",
			text:     "ééééé",
			maxRunes: 3,
			want:     "ééé",
		},
		{
			name:     "truncation trims trailing space",
			text:     "one two three",
			maxRunes: 8,
			want:     "one two",
		},
		{
			name:     "empty result falls back",
			text:     "```\nonly code\n```",
			maxRunes: 80,
			want:     "New chat",
		},
		{
			name:     "whitespace only falls back",
			text:     "   \n\t ",
			maxRunes: 80,
			want:     "New chat",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DeriveTitle(tt.text, "New chat", tt.maxRunes)
			if got != tt.want {
				t.Errorf("DeriveTitle(%q) = %q, want %q", tt.text, got, tt.want)
			}
		})
	}
}
