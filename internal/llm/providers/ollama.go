package providers

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/entrepeneur4lyf/buildpilot/internal/llm"
	"github.com/ollama/ollama/api"
)

const defaultOllamaURL = "http://localhost:11434"

// OllamaHandler implements the ApiHandler interface for a local or remote Ollama server
type OllamaHandler struct {
	options llm.ApiHandlerOptions
	client  *api.Client
}

// NewOllamaHandler creates a new Ollama handler. An unparsable BaseURL falls back to the local default.
func NewOllamaHandler(options llm.ApiHandlerOptions) *OllamaHandler {
	hostURL := options.BaseURL
	if hostURL == "" {
		hostURL = defaultOllamaURL
	}

	parsedURL, err := url.Parse(hostURL)
	if err != nil || parsedURL.Host == "" {
		parsedURL, _ = url.Parse(defaultOllamaURL)
	}

	httpClient := http.DefaultClient
	if timeout := options.RequestTimeout(); timeout > 0 {
		httpClient = &http.Client{Timeout: timeout}
	}

	return &OllamaHandler{
		options: options,
		client:  api.NewClient(parsedURL, httpClient),
	}
}

func (h *OllamaHandler) GetModel() llm.ModelResponse {
	return llm.ModelResponse{
		ID:       h.options.ModelID,
		Provider: llm.ProviderOllama,
		Info: llm.ModelInfo{
			MaxTokens:           llm.DefaultMaxTokens,
			ContextWindow:       32768,
			SupportsTemperature: true,
			Description:         "Ollama local model",
		},
	}
}

// CompletePrompt runs a single non-streaming chat
func (h *OllamaHandler) CompletePrompt(ctx context.Context, req llm.CompletionRequest) (*llm.CompletionResponse, error) {
	messages := make([]api.Message, 0, 2)
	if req.SystemPrompt != "" {
		messages = append(messages, api.Message{Role: "system", Content: req.SystemPrompt})
	}
	messages = append(messages, api.Message{Role: "user", Content: req.Prompt})

	options := map[string]any{
		"num_predict": llm.ResolveMaxTokens(req, h.options),
	}
	if req.Temperature != nil {
		options["temperature"] = *req.Temperature
	}

	stream := false
	chatReq := &api.ChatRequest{
		Model:    stripProviderPrefix(h.options.ModelID),
		Messages: messages,
		Stream:   &stream,
		Options:  options,
	}

	var response api.ChatResponse
	err := h.client.Chat(ctx, chatReq, func(resp api.ChatResponse) error {
		response = resp
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("ollama chat failed: %w", err)
	}

	content := response.Message.Content
	if strings.TrimSpace(content) == "" {
		return nil, llm.ErrEmptyResponse
	}

	return &llm.CompletionResponse{
		Content: content,
		Usage: &llm.Usage{
			PromptTokens:     response.PromptEvalCount,
			CompletionTokens: response.EvalCount,
			TotalTokens:      response.PromptEvalCount + response.EvalCount,
		},
	}, nil
}
