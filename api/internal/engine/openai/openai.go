package openai

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	openai "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"writing-guru/api/internal/logger"
	"writing-guru/api/internal/writing"
)

// Engine: chat completions через официальный SDK, structured output по JSON Schema.
type Engine struct {
	APIKey  string
	Model   string
	BaseURL string
	Timeout time.Duration
}

func New(apiKey, model, baseURL string, timeout time.Duration) *Engine {
	return &Engine{
		APIKey:  strings.TrimSpace(apiKey),
		Model:   strings.TrimSpace(model),
		BaseURL: strings.TrimSpace(baseURL),
		Timeout: timeout,
	}
}

func (e *Engine) Name() string          { return "openai" }
func (e *Engine) GetModel() string      { return e.Model }
func (e *Engine) SetModel(model string) { e.Model = strings.TrimSpace(model) }

func (e *Engine) Generate(ctx context.Context, req writing.Request) (writing.Response, error) {
	if e.APIKey == "" {
		return writing.Response{}, writing.NewError(writing.CodeConfiguration, "OPENAI_API_KEY is empty")
	}

	// SDK по умолчанию ретраит, здесь ровно одна попытка
	opts := []option.RequestOption{
		option.WithAPIKey(e.APIKey),
		option.WithMaxRetries(0),
	}
	if e.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(e.BaseURL))
	}
	if e.Timeout > 0 {
		opts = append(opts, option.WithRequestTimeout(e.Timeout))
	}
	client := openai.NewClient(opts...)

	params := openai.ChatCompletionNewParams{
		Model: openai.ChatModel(e.Model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(writing.SystemInstruction),
			openai.UserMessage(writing.Prompt(req)),
		},
		ResponseFormat: openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONSchema: &openai.ResponseFormatJSONSchemaParam{
				JSONSchema: openai.ResponseFormatJSONSchemaJSONSchemaParam{
					Name:        "writing_response",
					Description: openai.String(writing.ResponseDescription()),
					Schema:      writing.ResponseSchema(),
					Strict:      openai.Bool(true),
				},
			},
		},
	}

	start := time.Now()
	resp, err := client.Chat.Completions.New(ctx, params)
	if err != nil {
		return writing.Response{}, classify(err)
	}
	logger.Debug(ctx, "openai: generated", "model", e.Model, "elapsed", time.Since(start).String())

	if len(resp.Choices) == 0 {
		return writing.Response{}, writing.NewError(writing.CodeMalformedResponse, "openai: empty choices")
	}
	if refusal := strings.TrimSpace(resp.Choices[0].Message.Refusal); refusal != "" {
		return writing.Response{}, writing.NewError(writing.CodeMalformedResponse, "openai: refused: "+refusal)
	}
	return writing.DecodeResponse(resp.Choices[0].Message.Content)
}

func classify(err error) error {
	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		return writing.WrapError(err, writing.CodeTransport, fmt.Sprintf("openai: status %d", apiErr.StatusCode))
	}
	return writing.WrapError(err, writing.CodeTransport, "openai: request failed")
}
