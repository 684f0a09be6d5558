package llm

import (
	"context"
	"errors"
	"strings"
	"time"
)

// ErrEmptyResponse is returned by handlers when the model produced no text.
var ErrEmptyResponse = errors.New("empty response from model")

// ModelInfo represents model capabilities relevant to plan generation
type ModelInfo struct {
	MaxTokens     int    `json:"maxTokens"`
	ContextWindow int    `json:"contextWindow"`
	Description   string `json:"description,omitempty"`

	Temperature *float64 `json:"temperature,omitempty"`

	// SupportsTemperature is false for reasoning models that reject the parameter
	SupportsTemperature bool `json:"supportsTemperature"`
}

// ModelResponse represents a model ID and its information
type ModelResponse struct {
	ID       string       `json:"id"`
	Provider ProviderType `json:"provider"`
	Info     ModelInfo    `json:"info"`
}

// ApiHandler represents the core interface for LLM providers.
// Every call is a single non-streaming completion.
type ApiHandler interface {
	// CompletePrompt sends one system + user exchange and returns the full completion
	CompletePrompt(ctx context.Context, req CompletionRequest) (*CompletionResponse, error)

	// GetModel returns the model ID and info for the current configuration
	GetModel() ModelResponse
}

// ApiHandlerOptions represents configuration options for API handlers
type ApiHandlerOptions struct {
	// Core configuration
	Provider ProviderType `json:"provider,omitempty"`
	APIKey   string       `json:"apiKey"`
	ModelID  string       `json:"modelId"`

	// BaseURL overrides the provider endpoint (OpenAI-compatible gateways, remote Ollama)
	BaseURL string `json:"baseUrl,omitempty"`

	MaxTokens        int `json:"maxTokens,omitempty"`
	RequestTimeoutMs int `json:"requestTimeoutMs,omitempty"`

	// AWS Bedrock-specific
	AWSAccessKey    string `json:"awsAccessKey,omitempty"`
	AWSSecretKey    string `json:"awsSecretKey,omitempty"`
	AWSSessionToken string `json:"awsSessionToken,omitempty"`
	AWSRegion       string `json:"awsRegion,omitempty"`
}

// RequestTimeout returns the configured per-request timeout, zero when unset
func (o ApiHandlerOptions) RequestTimeout() time.Duration {
	if o.RequestTimeoutMs <= 0 {
		return 0
	}
	return time.Duration(o.RequestTimeoutMs) * time.Millisecond
}

// ProviderType represents different LLM provider types
type ProviderType string

const (
	ProviderAnthropic  ProviderType = "anthropic"
	ProviderOpenAI     ProviderType = "openai"
	ProviderGemini     ProviderType = "gemini"
	ProviderOpenRouter ProviderType = "openrouter"
	ProviderBedrock    ProviderType = "bedrock"
	ProviderOllama     ProviderType = "ollama"
)

// AllProviders lists the supported providers in preference order
var AllProviders = []ProviderType{
	ProviderOpenAI,
	ProviderAnthropic,
	ProviderGemini,
	ProviderOpenRouter,
	ProviderBedrock,
	ProviderOllama,
}

// ParseProviderType normalizes a provider name from configuration
func ParseProviderType(name string) (ProviderType, bool) {
	p := ProviderType(strings.ToLower(strings.TrimSpace(name)))
	for _, known := range AllProviders {
		if p == known {
			return p, true
		}
	}
	return "", false
}

// CompletionRequest represents a single completion request
type CompletionRequest struct {
	SystemPrompt string   `json:"system_prompt,omitempty"`
	Prompt       string   `json:"prompt"`
	MaxTokens    int      `json:"max_tokens,omitempty"`
	Temperature  *float64 `json:"temperature,omitempty"`
}

// CompletionResponse represents a completion response
type CompletionResponse struct {
	Content string `json:"content"`
	Usage   *Usage `json:"usage,omitempty"`
}

// Usage represents token usage information
type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// DefaultMaxTokens is used when neither the request nor the options set a limit
const DefaultMaxTokens = 8192

// ResolveMaxTokens picks the request limit, then the handler default, then DefaultMaxTokens
func ResolveMaxTokens(req CompletionRequest, options ApiHandlerOptions) int {
	if req.MaxTokens > 0 {
		return req.MaxTokens
	}
	if options.MaxTokens > 0 {
		return options.MaxTokens
	}
	return DefaultMaxTokens
}

// Float returns a pointer to v, for optional temperatures
func Float(v float64) *float64 {
	return &v
}
