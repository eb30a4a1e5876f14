package advisor

import (
	"context"
	"errors"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/responses"
	"github.com/openai/openai-go/shared"
)

// DefaultOpenAIModel is used when no model is configured.
const DefaultOpenAIModel = "gpt-4o-mini"

// OpenAIConfig configures the OpenAI completer. BaseURL also serves
// OpenAI-compatible endpoints.
type OpenAIConfig struct {
	APIKey    string
	Model     string
	MaxTokens int
	BaseURL   string
}

// OpenAI completes prompts with the Responses API.
type OpenAI struct {
	client    *openai.Client
	model     string
	maxTokens int64
}

// NewOpenAI creates an OpenAI completer.
func NewOpenAI(cfg OpenAIConfig, opts ...option.RequestOption) (*OpenAI, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("openai: api key is required")
	}
	if cfg.Model == "" {
		cfg.Model = DefaultOpenAIModel
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = DefaultMaxTokens
	}
	reqOpts := []option.RequestOption{option.WithAPIKey(cfg.APIKey)}
	if cfg.BaseURL != "" {
		reqOpts = append(reqOpts, option.WithBaseURL(cfg.BaseURL))
	}
	client := openai.NewClient(append(reqOpts, opts...)...)
	return &OpenAI{client: &client, model: cfg.Model, maxTokens: int64(cfg.MaxTokens)}, nil
}

func (o *OpenAI) Complete(ctx context.Context, p Prompt) (string, error) {
	input := make(responses.ResponseInputParam, 0, 2)
	if p.System != "" {
		input = append(input, responses.ResponseInputItemParamOfMessage(p.System, responses.EasyInputMessageRoleSystem))
	}
	input = append(input, responses.ResponseInputItemParamOfMessage(p.User, responses.EasyInputMessageRoleUser))

	res, err := o.client.Responses.New(ctx, responses.ResponseNewParams{
		Model:           shared.ResponsesModel(o.model),
		Input:           responses.ResponseNewParamsInputUnion{OfInputItemList: input},
		MaxOutputTokens: openai.Int(o.maxTokens),
	})
	if err != nil {
		return "", err
	}
	text := res.OutputText()
	if text == "" {
		return "", errors.New("openai: empty response")
	}
	return text, nil
}
