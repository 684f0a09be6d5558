package providers

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/entrepeneur4lyf/buildpilot/internal/llm"
	"google.golang.org/genai"
)

// GeminiSDKHandler implements the ApiHandler interface using the official Google Generative AI SDK
type GeminiSDKHandler struct {
	options llm.ApiHandlerOptions

	clientOnce sync.Once
	client     *genai.Client
	clientErr  error
}

// NewGeminiSDKHandler creates a new Gemini handler using the official Google SDK
func NewGeminiSDKHandler(options llm.ApiHandlerOptions) *GeminiSDKHandler {
	return &GeminiSDKHandler{
		options: options,
		// Client will be created on first use
	}
}

func (h *GeminiSDKHandler) GetModel() llm.ModelResponse {
	return llm.ModelResponse{
		ID:       h.options.ModelID,
		Provider: llm.ProviderGemini,
		Info: llm.ModelInfo{
			MaxTokens:           llm.DefaultMaxTokens,
			ContextWindow:       1048576,
			SupportsTemperature: true,
			Description:         "Google Gemini model",
		},
	}
}

func (h *GeminiSDKHandler) getClient(ctx context.Context) (*genai.Client, error) {
	h.clientOnce.Do(func() {
		config := &genai.ClientConfig{
			APIKey:  h.options.APIKey,
			Backend: genai.BackendGeminiAPI,
		}
		if h.options.BaseURL != "" {
			config.HTTPOptions = genai.HTTPOptions{BaseURL: h.options.BaseURL}
		}
		h.client, h.clientErr = genai.NewClient(ctx, config)
	})
	if h.clientErr != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", h.clientErr)
	}
	return h.client, nil
}

// CompletePrompt generates content for a single user turn
func (h *GeminiSDKHandler) CompletePrompt(ctx context.Context, req llm.CompletionRequest) (*llm.CompletionResponse, error) {
	client, err := h.getClient(ctx)
	if err != nil {
		return nil, err
	}

	contents := []*genai.Content{{
		Role:  "user",
		Parts: []*genai.Part{{Text: req.Prompt}},
	}}

	config := &genai.GenerateContentConfig{
		MaxOutputTokens: int32(llm.ResolveMaxTokens(req, h.options)),
	}
	if req.Temperature != nil {
		config.Temperature = genai.Ptr(float32(*req.Temperature))
	}
	if req.SystemPrompt != "" {
		config.SystemInstruction = &genai.Content{
			Parts: []*genai.Part{{Text: req.SystemPrompt}},
		}
	}

	result, err := client.Models.GenerateContent(ctx, stripProviderPrefix(h.options.ModelID), contents, config)
	if err != nil {
		return nil, fmt.Errorf("gemini generate content failed: %w", err)
	}
	if result == nil || len(result.Candidates) == 0 || result.Candidates[0].Content == nil {
		return nil, llm.ErrEmptyResponse
	}

	var sb strings.Builder
	for _, part := range result.Candidates[0].Content.Parts {
		if part != nil && part.Text != "" && !part.Thought {
			sb.WriteString(part.Text)
		}
	}

	content := sb.String()
	if strings.TrimSpace(content) == "" {
		return nil, llm.ErrEmptyResponse
	}

	resp := &llm.CompletionResponse{Content: content}
	if usage := result.UsageMetadata; usage != nil {
		resp.Usage = &llm.Usage{
			PromptTokens:     int(usage.PromptTokenCount),
			CompletionTokens: int(usage.CandidatesTokenCount),
			TotalTokens:      int(usage.TotalTokenCount),
		}
	}
	return resp, nil
}
