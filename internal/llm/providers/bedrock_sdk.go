package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/entrepeneur4lyf/buildpilot/internal/llm"
)

const defaultBedrockRegion = "us-east-1"

// BedrockSDKHandler implements the ApiHandler interface using the official AWS SDK v2.
// Only Anthropic models hosted on Bedrock are supported.
type BedrockSDKHandler struct {
	options llm.ApiHandlerOptions
	region  string

	clientOnce sync.Once
	client     *bedrockruntime.Client
	clientErr  error
}

// NewBedrockSDKHandler creates a new Bedrock handler using the official AWS SDK v2
func NewBedrockSDKHandler(options llm.ApiHandlerOptions) *BedrockSDKHandler {
	region := options.AWSRegion
	if region == "" {
		region = defaultBedrockRegion
	}

	return &BedrockSDKHandler{
		options: options,
		region:  region,
	}
}

func (h *BedrockSDKHandler) GetModel() llm.ModelResponse {
	return llm.ModelResponse{
		ID:       h.options.ModelID,
		Provider: llm.ProviderBedrock,
		Info: llm.ModelInfo{
			MaxTokens:           llm.DefaultMaxTokens,
			ContextWindow:       200000,
			SupportsTemperature: true,
			Description:         "Anthropic Claude model on AWS Bedrock",
		},
	}
}

func (h *BedrockSDKHandler) getClient(ctx context.Context) (*bedrockruntime.Client, error) {
	h.clientOnce.Do(func() {
		cfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(h.region))
		if err != nil {
			h.clientErr = err
			return
		}

		// Static credentials override the default chain
		if h.options.AWSAccessKey != "" && h.options.AWSSecretKey != "" {
			cfg.Credentials = aws.NewCredentialsCache(aws.CredentialsProviderFunc(func(ctx context.Context) (aws.Credentials, error) {
				return aws.Credentials{
					AccessKeyID:     h.options.AWSAccessKey,
					SecretAccessKey: h.options.AWSSecretKey,
					SessionToken:    h.options.AWSSessionToken,
				}, nil
			}))
		}

		h.client = bedrockruntime.NewFromConfig(cfg)
	})
	if h.clientErr != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", h.clientErr)
	}
	return h.client, nil
}

type bedrockMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type bedrockRequest struct {
	AnthropicVersion string           `json:"anthropic_version"`
	MaxTokens        int              `json:"max_tokens"`
	Messages         []bedrockMessage `json:"messages"`
	System           string           `json:"system,omitempty"`
	Temperature      *float64         `json:"temperature,omitempty"`
}

type bedrockResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	Usage struct {
		InputTokens  int `json:"input_tokens"`
		OutputTokens int `json:"output_tokens"`
	} `json:"usage"`
}

// buildRequestBody encodes the Anthropic messages format Bedrock expects
func (h *BedrockSDKHandler) buildRequestBody(req llm.CompletionRequest) ([]byte, error) {
	return json.Marshal(bedrockRequest{
		AnthropicVersion: "bedrock-2023-05-31",
		MaxTokens:        llm.ResolveMaxTokens(req, h.options),
		Messages:         []bedrockMessage{{Role: "user", Content: req.Prompt}},
		System:           req.SystemPrompt,
		Temperature:      req.Temperature,
	})
}

// CompletePrompt invokes the model once and parses the text blocks
func (h *BedrockSDKHandler) CompletePrompt(ctx context.Context, req llm.CompletionRequest) (*llm.CompletionResponse, error) {
	client, err := h.getClient(ctx)
	if err != nil {
		return nil, err
	}

	body, err := h.buildRequestBody(req)
	if err != nil {
		return nil, fmt.Errorf("failed to encode bedrock request: %w", err)
	}

	output, err := client.InvokeModel(ctx, &bedrockruntime.InvokeModelInput{
		ModelId:     aws.String(h.options.ModelID),
		Body:        body,
		ContentType: aws.String("application/json"),
		Accept:      aws.String("application/json"),
	})
	if err != nil {
		return nil, fmt.Errorf("bedrock invoke model failed: %w", err)
	}

	return parseBedrockResponse(output.Body)
}

func parseBedrockResponse(body []byte) (*llm.CompletionResponse, error) {
	var resp bedrockResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("failed to decode bedrock response: %w", err)
	}

	var sb strings.Builder
	for _, block := range resp.Content {
		if block.Type == "text" {
			sb.WriteString(block.Text)
		}
	}

	content := sb.String()
	if strings.TrimSpace(content) == "" {
		return nil, llm.ErrEmptyResponse
	}

	return &llm.CompletionResponse{
		Content: content,
		Usage: &llm.Usage{
			PromptTokens:     resp.Usage.InputTokens,
			CompletionTokens: resp.Usage.OutputTokens,
			TotalTokens:      resp.Usage.InputTokens + resp.Usage.OutputTokens,
		},
	}, nil
}
