package gemini

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"writing-guru/api/internal/logger"
	"writing-guru/api/internal/writing"
)

type Engine struct {
	APIKey  string
	Model   string
	Timeout time.Duration
	// Endpoint переопределяет REST-адрес API (прокси, тесты); пусто = по умолчанию.
	Endpoint string
}

func New(apiKey, model string, timeout time.Duration) *Engine {
	return &Engine{
		APIKey:  strings.TrimSpace(apiKey),
		Model:   strings.TrimSpace(model),
		Timeout: timeout,
	}
}

func (e *Engine) Name() string          { return "gemini" }
func (e *Engine) GetModel() string      { return e.Model }
func (e *Engine) SetModel(model string) { e.Model = strings.TrimSpace(model) }

// Generate: один вызов generateContent, без ретраев. Ответ проверяется
// writing.DecodeResponse независимо от переданной схемы.
func (e *Engine) Generate(ctx context.Context, req writing.Request) (writing.Response, error) {
	if e.APIKey == "" {
		return writing.Response{}, writing.NewError(writing.CodeConfiguration, "GEMINI_API_KEY is empty")
	}
	if e.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.Timeout)
		defer cancel()
	}

	opts := []option.ClientOption{option.WithAPIKey(e.APIKey)}
	if e.Endpoint != "" {
		opts = append(opts, option.WithEndpoint(e.Endpoint))
	}
	cl, err := genai.NewClient(ctx, opts...)
	if err != nil {
		return writing.Response{}, writing.WrapError(err, writing.CodeTransport, "gemini: client")
	}
	defer cl.Close()

	m := cl.GenerativeModel(e.Model)
	if m == nil {
		return writing.Response{}, writing.NewError(writing.CodeTransport, "gemini: model is nil")
	}
	m.GenerationConfig = genai.GenerationConfig{
		ResponseMIMEType: "application/json",
		ResponseSchema:   ResponseSchema(),
	}
	m.SystemInstruction = &genai.Content{
		Parts: []genai.Part{genai.Text(writing.SystemInstruction)},
	}

	start := time.Now()
	resp, err := m.GenerateContent(ctx, genai.Text(writing.Prompt(req)))
	if err != nil {
		return writing.Response{}, classify(err)
	}
	logger.Debug(ctx, "gemini: generated", "model", e.Model, "elapsed", time.Since(start).String())

	txt := firstText(resp)
	if txt == "" {
		return writing.Response{}, writing.NewError(writing.CodeMalformedResponse, "gemini: empty response")
	}
	return writing.DecodeResponse(txt)
}

// ResponseSchema: схема ответа в терминах genai.
func ResponseSchema() *genai.Schema {
	return &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"content": {
				Type:        genai.TypeString,
				Description: writing.ContentDescription(),
			},
			"teacherTips": {
				Type:        genai.TypeArray,
				Items:       &genai.Schema{Type: genai.TypeString},
				Description: writing.TipsDescription(),
			},
		},
		Required: []string{"content", "teacherTips"},
	}
}

// заблокированный ответ это ответ сервиса не по схеме, а не сбой сети
func classify(err error) error {
	var blocked *genai.BlockedError
	if errors.As(err, &blocked) {
		return writing.WrapError(err, writing.CodeMalformedResponse, "gemini: response blocked")
	}
	return writing.WrapError(err, writing.CodeTransport, "gemini: generateContent failed")
}

func firstText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return ""
	}
	var b strings.Builder
	for _, p := range resp.Candidates[0].Content.Parts {
		if t, ok := p.(genai.Text); ok {
			b.WriteString(string(t))
		}
	}
	return strings.TrimSpace(b.String())
}
