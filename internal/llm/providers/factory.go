package providers

import (
	"fmt"
	"strings"

	"github.com/entrepeneur4lyf/buildpilot/internal/llm"
)

// BuildApiHandler creates an API handler based on the provider type
func BuildApiHandler(options llm.ApiHandlerOptions) (llm.ApiHandler, error) {
	providerType, err := DetermineProviderType(options)
	if err != nil {
		return nil, fmt.Errorf("failed to determine provider type: %w", err)
	}

	switch providerType {
	case llm.ProviderAnthropic:
		return NewAnthropicSDKHandler(options), nil
	case llm.ProviderOpenAI:
		return NewOpenAISDKHandler(options), nil
	case llm.ProviderGemini:
		return NewGeminiSDKHandler(options), nil
	case llm.ProviderOpenRouter:
		return NewOpenRouterSDKHandler(options), nil
	case llm.ProviderBedrock:
		return NewBedrockSDKHandler(options), nil
	case llm.ProviderOllama:
		return NewOllamaHandler(options), nil
	default:
		return nil, fmt.Errorf("unsupported provider type: %s", providerType)
	}
}

// DetermineProviderType returns the explicit provider when set, otherwise infers it from the model ID
func DetermineProviderType(options llm.ApiHandlerOptions) (llm.ProviderType, error) {
	if options.Provider != "" {
		if p, ok := llm.ParseProviderType(string(options.Provider)); ok {
			return p, nil
		}
		return "", fmt.Errorf("unknown provider %q", options.Provider)
	}

	modelID := strings.ToLower(strings.TrimSpace(options.ModelID))
	if modelID == "" {
		return "", fmt.Errorf("could not determine provider type: no model configured")
	}

	switch {
	case isBedrockModel(modelID):
		return llm.ProviderBedrock, nil
	case strings.Contains(modelID, "/"):
		// Vendor-prefixed ids ("openai/o3-mini") are OpenRouter routes
		return llm.ProviderOpenRouter, nil
	case strings.HasPrefix(modelID, "claude-"):
		return llm.ProviderAnthropic, nil
	case isOpenAIModel(modelID):
		return llm.ProviderOpenAI, nil
	case strings.HasPrefix(modelID, "gemini-"):
		return llm.ProviderGemini, nil
	case strings.Contains(modelID, ":"):
		// Ollama tags look like "llama3.1:8b"
		return llm.ProviderOllama, nil
	}

	return "", fmt.Errorf("could not determine provider type for model %q", options.ModelID)
}

// isBedrockModel checks for Bedrock's vendor-dotted model IDs
func isBedrockModel(modelID string) bool {
	for _, prefix := range []string{"anthropic.", "amazon.", "meta.", "us.anthropic.", "eu.anthropic."} {
		if strings.HasPrefix(modelID, prefix) {
			return true
		}
	}
	return false
}

// isOpenAIModel checks if a model ID belongs to OpenAI
func isOpenAIModel(modelID string) bool {
	if strings.HasPrefix(modelID, "gpt-") || strings.HasPrefix(modelID, "chatgpt-") {
		return true
	}
	return isReasoningModel(modelID)
}

// stripProviderPrefix removes a "provider/" prefix so "openai/o3-mini" can be sent to the native API
func stripProviderPrefix(modelID string) string {
	parts := strings.Split(modelID, "/")
	if len(parts) == 2 {
		return parts[1]
	}
	return modelID
}
