package engine

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"writing-guru/api/internal/config"
	"writing-guru/api/internal/engine/gemini"
	"writing-guru/api/internal/engine/openai"
	"writing-guru/api/internal/writing"
)

// Engine: клиент генерации: один запрос, один ответ, без кэша и ретраев.
type Engine interface {
	Name() string
	GetModel() string
	Generate(ctx context.Context, req writing.Request) (writing.Response, error)
}

// Engines: все настроенные провайдеры.
type Engines struct {
	Gemini Engine
	OpenAI Engine
}

// FromConfig создаёт движки. Ключи не проверяются: пустой ключ
// превратится в ConfigurationError при первом Generate.
func FromConfig(cfg *config.Config) Engines {
	return Engines{
		Gemini: gemini.New(cfg.GeminiAPIKey, cfg.GeminiModel, cfg.RequestTimeout),
		OpenAI: openai.New(cfg.OpenAIAPIKey, cfg.OpenAIModel, cfg.OpenAIBaseURL, cfg.RequestTimeout),
	}
}

func (e Engines) ByName(name string) (Engine, error) {
	switch name {
	case "", "gemini":
		return e.Gemini, nil
	case "openai", "gpt":
		return e.OpenAI, nil
	}
	return nil, fmt.Errorf("unknown llm provider %q", name)
}

// WithModel returns a copy of the named engine bound to model, so one chat's
// /engine switch does not change the model other chats use.
func (e Engines) WithModel(name, model string) (Engine, error) {
	eng, err := e.ByName(name)
	if err != nil || strings.TrimSpace(model) == "" {
		return eng, err
	}
	switch v := eng.(type) {
	case *gemini.Engine:
		c := *v
		c.SetModel(model)
		return &c, nil
	case *openai.Engine:
		c := *v
		c.SetModel(model)
		return &c, nil
	}
	return eng, nil
}

// Default: движок из LLM_PROVIDER.
func Default(cfg *config.Config) (Engine, error) {
	return FromConfig(cfg).ByName(cfg.LLMProvider)
}

// Manager хранит выбранный движок на чат, по умолчанию def.
type Manager struct {
	def Engine
	m   sync.Map // chatID -> Engine
}

func NewManager(defaultEngine Engine) *Manager {
	return &Manager{def: defaultEngine}
}

func (m *Manager) Get(chatID int64) Engine {
	if v, ok := m.m.Load(chatID); ok {
		return v.(Engine)
	}
	return m.def
}

func (m *Manager) Set(chatID int64, e Engine) {
	m.m.Store(chatID, e)
}

// ForChat adapts the manager to a single chat so a controller always calls
// whatever engine that chat has selected at the moment.
func (m *Manager) ForChat(chatID int64) Engine {
	return chatEngine{m: m, chatID: chatID}
}

type chatEngine struct {
	m      *Manager
	chatID int64
}

func (c chatEngine) Name() string     { return c.m.Get(c.chatID).Name() }
func (c chatEngine) GetModel() string { return c.m.Get(c.chatID).GetModel() }
func (c chatEngine) Generate(ctx context.Context, req writing.Request) (writing.Response, error) {
	return c.m.Get(c.chatID).Generate(ctx, req)
}
