package llm

import (
	"context"

	anthropic "github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/bravo6co-debug/ai-riview/core/port/out"
	"github.com/bravo6co-debug/ai-riview/pkg/apperr"
)

const DefaultClaudeModel = "claude-3-5-haiku-latest"

// ClaudeClient is the Anthropic messages client.
type ClaudeClient struct {
	client anthropic.Client
	model  string
}

func NewClaudeClient(apiKey, model string) *ClaudeClient {
	if model == "" {
		model = DefaultClaudeModel
	}
	return &ClaudeClient{
		client: anthropic.NewClient(option.WithAPIKey(apiKey)),
		model:  model,
	}
}

func (c *ClaudeClient) Model() string {
	return c.model
}

// Complete sends one exchange. Anthropic has no JSON response mode, so
// JSON requests get an instruction appended and the reply is trimmed to
// the outermost object.
func (c *ClaudeClient) Complete(ctx context.Context, req *out.CompletionRequest) (*out.Completion, error) {
	user := req.User
	if req.JSON {
		user += "\n\nRespond with a single JSON object and nothing else."
	}

	params := anthropic.MessageNewParams{
		Model:       anthropic.Model(c.model),
		MaxTokens:   int64(req.MaxTokens),
		Temperature: anthropic.Float(float64(req.Temperature)),
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(user)),
		},
	}
	if req.System != "" {
		params.System = []anthropic.TextBlockParam{{Text: req.System}}
	}

	resp, err := c.client.Messages.New(ctx, params)
	if err != nil {
		return nil, apperr.ExternalError("anthropic", err)
	}
	if resp == nil || len(resp.Content) == 0 {
		return nil, errEmptyResponse
	}

	content := resp.Content[0].Text
	if req.JSON {
		content = ExtractJSON(content)
	}
	return &out.Completion{
		Content:          content,
		Model:            string(resp.Model),
		PromptTokens:     int(resp.Usage.InputTokens),
		CompletionTokens: int(resp.Usage.OutputTokens),
	}, nil
}
