package utils

import (
	"regexp"
	"strings"
)

// DeriveTitle builds a conversation title from the first user message.
// Markup that reads badly in a one-line title is removed: fenced code
// blocks disappear entirely, inline code markers keep their inner text,
// hidden-reasoning regions are dropped with their markers, and all
// whitespace collapses to single spaces. The result is truncated to
// maxRunes; an empty result falls back to the provided default.
func DeriveTitle(text, fallback string, maxRunes int) string {
	title := fencedCodeRe.ReplaceAllString(text, " ")
	title = thinkRegionRe.ReplaceAllString(title, " ")
	title = strings.ReplaceAll(title, "`", "")
	title = whitespaceRe.ReplaceAllString(title, " ")
	title = strings.TrimSpace(title)

	if runes := []rune(title); len(runes) > maxRunes {
		title = strings.TrimSpace(string(runes[:maxRunes]))
	}
	if title == "" {
		return fallback
	}
	return title
}

var (
	fencedCodeRe  = regexp.MustCompile("(?s)```.*?(```|$)")
	thinkRegionRe = regexp.MustCompile(`(?s)<think>.*?(</think>|$)`)
	whitespaceRe  = regexp.MustCompile(`\s+`)
)
