package factory

import (
	"ai-assistant-be/pkg/llm"
	"ai-assistant-be/pkg/llm/ollama"
	"ai-assistant-be/pkg/llm/together"
	"fmt"
)

func NewLLMProvider(providerType, modelName, ollamaBaseURL, togetherBaseURL, togetherAPIKey string) (llm.LLMProvider, error) {
	switch providerType {
	case "together":
		if togetherAPIKey == "" {
			return nil, fmt.Errorf("together provider requires an API key")
		}
		return together.NewTogetherProvider(togetherBaseURL, togetherAPIKey, modelName), nil
	case "ollama":
		if ollamaBaseURL == "" {
			ollamaBaseURL = "http://localhost:11434" // Default
		}
		return ollama.NewOllamaProvider(ollamaBaseURL, modelName), nil
	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", providerType)
	}
}
