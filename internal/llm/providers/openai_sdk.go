package providers

import (
	"context"
	"fmt"
	"strings"

	"github.com/entrepeneur4lyf/buildpilot/internal/llm"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// OpenAISDKHandler implements the ApiHandler interface using the official OpenAI Go SDK
type OpenAISDKHandler struct {
	options llm.ApiHandlerOptions
	client  *openai.Client
}

// NewOpenAISDKHandler creates a new OpenAI handler using the official SDK
func NewOpenAISDKHandler(options llm.ApiHandlerOptions) *OpenAISDKHandler {
	opts := []option.RequestOption{
		option.WithAPIKey(options.APIKey),
	}
	if options.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(options.BaseURL))
	}
	if timeout := options.RequestTimeout(); timeout > 0 {
		opts = append(opts, option.WithRequestTimeout(timeout))
	}

	client := openai.NewClient(opts...)

	return &OpenAISDKHandler{
		options: options,
		client:  &client,
	}
}

func (h *OpenAISDKHandler) GetModel() llm.ModelResponse {
	return llm.ModelResponse{
		ID:       h.options.ModelID,
		Provider: llm.ProviderOpenAI,
		Info:     h.getDefaultModelInfo(h.options.ModelID),
	}
}

// CompletePrompt sends a chat completion request and returns the assistant text
func (h *OpenAISDKHandler) CompletePrompt(ctx context.Context, req llm.CompletionRequest) (*llm.CompletionResponse, error) {
	messages := make([]openai.ChatCompletionMessageParamUnion, 0, 2)
	if req.SystemPrompt != "" {
		messages = append(messages, openai.SystemMessage(req.SystemPrompt))
	}
	messages = append(messages, openai.UserMessage(req.Prompt))

	params := openai.ChatCompletionNewParams{
		Messages:            messages,
		Model:               openai.ChatModel(stripProviderPrefix(h.options.ModelID)),
		MaxCompletionTokens: openai.Int(int64(llm.ResolveMaxTokens(req, h.options))),
	}

	// Reasoning models reject sampling parameters
	if req.Temperature != nil && !isReasoningModel(h.options.ModelID) {
		params.Temperature = openai.Float(*req.Temperature)
	}

	resp, err := h.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("openai chat completion failed: %w", err)
	}

	if resp == nil || len(resp.Choices) == 0 {
		return nil, llm.ErrEmptyResponse
	}

	content := resp.Choices[0].Message.Content
	if strings.TrimSpace(content) == "" {
		return nil, llm.ErrEmptyResponse
	}

	return &llm.CompletionResponse{
		Content: content,
		Usage: &llm.Usage{
			PromptTokens:     int(resp.Usage.PromptTokens),
			CompletionTokens: int(resp.Usage.CompletionTokens),
			TotalTokens:      int(resp.Usage.TotalTokens),
		},
	}, nil
}

// isReasoningModel reports whether the model belongs to the o-series
func isReasoningModel(modelID string) bool {
	id := strings.ToLower(stripProviderPrefix(modelID))
	for _, prefix := range []string{"o1", "o3", "o4"} {
		if id == prefix || strings.HasPrefix(id, prefix+"-") {
			return true
		}
	}
	return false
}

// getDefaultModelInfo returns default model information for OpenAI models
func (h *OpenAISDKHandler) getDefaultModelInfo(modelID string) llm.ModelInfo {
	info := llm.ModelInfo{
		MaxTokens:           llm.DefaultMaxTokens,
		ContextWindow:       128000,
		SupportsTemperature: true,
		Description:         "OpenAI model",
	}
	if isReasoningModel(modelID) {
		info.ContextWindow = 200000
		info.SupportsTemperature = false
		info.Description = "OpenAI reasoning model"
	}
	return info
}
