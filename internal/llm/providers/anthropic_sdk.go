package providers

import (
	"context"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/entrepeneur4lyf/buildpilot/internal/llm"
)

// AnthropicSDKHandler implements the ApiHandler interface using the official Anthropic SDK
type AnthropicSDKHandler struct {
	options llm.ApiHandlerOptions
	client  *anthropic.Client
}

// NewAnthropicSDKHandler creates a new Anthropic handler using the official SDK
func NewAnthropicSDKHandler(options llm.ApiHandlerOptions) *AnthropicSDKHandler {
	opts := []option.RequestOption{
		option.WithAPIKey(options.APIKey),
	}
	if options.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(options.BaseURL))
	}
	if timeout := options.RequestTimeout(); timeout > 0 {
		opts = append(opts, option.WithRequestTimeout(timeout))
	}

	client := anthropic.NewClient(opts...)

	return &AnthropicSDKHandler{
		options: options,
		client:  &client,
	}
}

// CompletePrompt sends a single message to Anthropic and collects the text blocks
func (h *AnthropicSDKHandler) CompletePrompt(ctx context.Context, req llm.CompletionRequest) (*llm.CompletionResponse, error) {
	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(stripProviderPrefix(h.options.ModelID)),
		MaxTokens: int64(llm.ResolveMaxTokens(req, h.options)),
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(req.Prompt)),
		},
	}

	if req.SystemPrompt != "" {
		params.System = []anthropic.TextBlockParam{{
			Text: req.SystemPrompt,
		}}
	}
	if req.Temperature != nil {
		params.Temperature = anthropic.Float(*req.Temperature)
	}

	resp, err := h.client.Messages.New(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("anthropic message request failed: %w", err)
	}
	if resp == nil || len(resp.Content) == 0 {
		return nil, llm.ErrEmptyResponse
	}

	var sb strings.Builder
	for i := range resp.Content {
		block := &resp.Content[i]
		if block.Type == "text" {
			sb.WriteString(block.AsText().Text)
		}
	}

	content := sb.String()
	if strings.TrimSpace(content) == "" {
		return nil, llm.ErrEmptyResponse
	}

	input := int(resp.Usage.InputTokens)
	output := int(resp.Usage.OutputTokens)
	return &llm.CompletionResponse{
		Content: content,
		Usage: &llm.Usage{
			PromptTokens:     input,
			CompletionTokens: output,
			TotalTokens:      input + output,
		},
	}, nil
}

// GetModel returns the model ID and info for the current configuration
func (h *AnthropicSDKHandler) GetModel() llm.ModelResponse {
	return llm.ModelResponse{
		ID:       h.options.ModelID,
		Provider: llm.ProviderAnthropic,
		Info: llm.ModelInfo{
			MaxTokens:           llm.DefaultMaxTokens,
			ContextWindow:       200000, // Most Claude models support 200k context
			SupportsTemperature: true,
			Description:         "Anthropic Claude model",
		},
	}
}
