package llm

import (
	"context"
	"errors"

	"github.com/bravo6co-debug/ai-riview/core/port/out"
	"github.com/bravo6co-debug/ai-riview/pkg/apperr"

	openai "github.com/sashabaranov/go-openai"
)

// Client is the OpenAI chat completion client.
type Client struct {
	client *openai.Client
	model  string
}

type ClientConfig struct {
	APIKey  string
	Model   string
	BaseURL string // optional, for OpenAI compatible gateways
}

const DefaultModel = "gpt-4o-mini"

var errEmptyResponse = errors.New("empty model response")

func NewClient(apiKey string) *Client {
	return NewClientWithConfig(ClientConfig{APIKey: apiKey})
}

func NewClientWithConfig(cfg ClientConfig) *Client {
	model := cfg.Model
	if model == "" {
		model = DefaultModel
	}
	oc := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		oc.BaseURL = cfg.BaseURL
	}
	return &Client{
		client: openai.NewClientWithConfig(oc),
		model:  model,
	}
}

// Model returns the configured model name.
func (c *Client) Model() string {
	return c.model
}

// Complete sends one system+user exchange.
func (c *Client) Complete(ctx context.Context, req *out.CompletionRequest) (*out.Completion, error) {
	chatReq := openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: req.System,
			},
			{
				Role:    openai.ChatMessageRoleUser,
				Content: req.User,
			},
		},
		Temperature:      req.Temperature,
		MaxTokens:        req.MaxTokens,
		PresencePenalty:  req.PresencePenalty,
		FrequencyPenalty: req.FrequencyPenalty,
	}
	if req.JSON {
		chatReq.ResponseFormat = &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		}
	}

	resp, err := c.client.CreateChatCompletion(ctx, chatReq)
	if err != nil {
		return nil, apperr.ExternalError("openai", err)
	}
	if len(resp.Choices) == 0 {
		return nil, errEmptyResponse
	}

	model := resp.Model
	if model == "" {
		model = c.model
	}
	return &out.Completion{
		Content:          resp.Choices[0].Message.Content,
		Model:            model,
		PromptTokens:     resp.Usage.PromptTokens,
		CompletionTokens: resp.Usage.CompletionTokens,
	}, nil
}
