package uitest

import (
	"encoding/json"
	"strings"

	"ai-assistant-be/internal/constant"
	"ai-assistant-be/pkg/llm"
)

// truncatePayload bounds a serialized JSON payload before it goes into a
// prompt. Truncation at a byte boundary is fine here, the model sees the
// payload as text.
func truncatePayload(payload []byte, limit int) string {
	if len(payload) <= limit {
		return string(payload)
	}
	return string(payload[:limit])
}

func buildCompressionMessages(elements json.RawMessage) []llm.Message {
	return []llm.Message{
		{Role: constant.ChatMessageRoleSystem, Content: constant.UiCompressionSystemPrompt},
		{
			Role:    constant.ChatMessageRoleUser,
			Content: constant.UiCompressionUserPromptPrefix + truncatePayload(elements, constant.UiPromptPayloadLimit),
		},
	}
}

func buildTestCaseMessages(url, title string, uiMap json.RawMessage, goals []string) []llm.Message {
	goalsJSON := "[]"
	if len(goals) > 0 {
		if encoded, err := json.Marshal(goals); err == nil {
			goalsJSON = string(encoded)
		}
	}

	var user strings.Builder
	user.WriteString("URL: ")
	user.WriteString(url)
	user.WriteString("\nTITLE: ")
	user.WriteString(title)
	user.WriteString("\nUI MAP: ")
	user.WriteString(truncatePayload(uiMap, constant.UiPromptPayloadLimit))
	user.WriteString("\nOPTIONAL GOALS: ")
	user.WriteString(goalsJSON)
	user.WriteString("\nOutput: JSON with array tests.")

	return []llm.Message{
		{Role: constant.ChatMessageRoleSystem, Content: constant.TestCaseSystemPrompt},
		{Role: constant.ChatMessageRoleUser, Content: user.String()},
	}
}
