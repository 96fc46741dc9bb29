package engine

import (
	"context"
	"errors"
	"testing"
	"time"

	"writing-guru/api/internal/config"
	"writing-guru/api/internal/writing"
)

type stubEngine struct{ name string }

func (s stubEngine) Name() string     { return s.name }
func (s stubEngine) GetModel() string { return s.name + "-model" }
func (s stubEngine) Generate(context.Context, writing.Request) (writing.Response, error) {
	return writing.Response{Content: s.name, TeacherTips: []string{"a", "b", "c"}}, nil
}

func TestManagerPerChat(t *testing.T) {
	m := NewManager(stubEngine{name: "gemini"})
	m.Set(42, stubEngine{name: "openai"})

	if got := m.Get(1).Name(); got != "gemini" {
		t.Errorf("Get(1) = %s", got)
	}
	if got := m.Get(42).Name(); got != "openai" {
		t.Errorf("Get(42) = %s", got)
	}

	e := m.ForChat(7)
	if e.Name() != "gemini" {
		t.Errorf("ForChat(7) before switch = %s", e.Name())
	}
	m.Set(7, stubEngine{name: "openai"})
	resp, err := e.Generate(context.Background(), writing.Request{})
	if err != nil || resp.Content != "openai" {
		t.Errorf("ForChat follows switch: %+v, %v", resp, err)
	}
}

func TestFromConfigDefersKeyCheck(t *testing.T) {
	cfg := &config.Config{GeminiModel: "gemini-2.5-flash", OpenAIModel: "gpt-4o-mini", RequestTimeout: time.Second}
	engs := FromConfig(cfg)

	e, err := engs.ByName("gemini")
	if err != nil {
		t.Fatal(err)
	}
	req, _ := writing.Build("Water Crisis", writing.FormatEssay, writing.GradeSecondary, 300)
	if _, err := e.Generate(context.Background(), req); !errors.Is(err, writing.ErrConfiguration) {
		t.Errorf("Generate() error = %v, want configuration error", err)
	}

	if e, _ := engs.ByName("gpt"); e.Name() != "openai" {
		t.Errorf("ByName(gpt) = %s", e.Name())
	}
	if _, err := engs.ByName("yandex"); err == nil {
		t.Error("ByName(yandex) error = nil")
	}
}

func TestWithModelDoesNotShareState(t *testing.T) {
	cfg := &config.Config{GeminiModel: "gemini-2.5-flash", OpenAIModel: "gpt-4o-mini"}
	engs := FromConfig(cfg)

	e, err := engs.WithModel("openai", "gpt-4.1")
	if err != nil {
		t.Fatal(err)
	}
	if e.GetModel() != "gpt-4.1" {
		t.Errorf("WithModel model = %s", e.GetModel())
	}
	if engs.OpenAI.GetModel() != "gpt-4o-mini" {
		t.Errorf("shared engine changed to %s", engs.OpenAI.GetModel())
	}

	cfg.LLMProvider = "openai"
	if d, err := Default(cfg); err != nil || d.Name() != "openai" {
		t.Errorf("Default() = %v, %v", d, err)
	}
}
