package gemini

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/generative-ai-go/genai"

	"writing-guru/api/internal/writing"
)

func TestGenerateWithoutKey(t *testing.T) {
	e := New("  ", "gemini-2.5-flash", time.Second)
	req, _ := writing.Build("Water Crisis", writing.FormatEssay, writing.GradeSecondary, 300)

	_, err := e.Generate(context.Background(), req)
	if !errors.Is(err, writing.ErrConfiguration) {
		t.Fatalf("Generate() error = %v, want configuration error", err)
	}
}

func TestResponseSchema(t *testing.T) {
	s := ResponseSchema()
	if s.Type != genai.TypeObject {
		t.Fatalf("Type = %v", s.Type)
	}
	tips, ok := s.Properties["teacherTips"]
	if !ok || tips.Type != genai.TypeArray || tips.Items == nil || tips.Items.Type != genai.TypeString {
		t.Errorf("teacherTips schema = %+v", tips)
	}
	if len(s.Required) != 2 {
		t.Errorf("Required = %v", s.Required)
	}
}

func TestFirstText(t *testing.T) {
	resp := &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{
			Content: &genai.Content{Parts: []genai.Part{
				genai.Text(`{"content":"x",`),
				genai.Text(`"teacherTips":["a","b","c"]}`),
			}},
		}},
	}
	got := firstText(resp)
	if _, err := writing.DecodeResponse(got); err != nil {
		t.Errorf("firstText() = %q, decode error = %v", got, err)
	}
	if firstText(&genai.GenerateContentResponse{}) != "" {
		t.Error("firstText(no candidates) not empty")
	}
}

func TestClassify(t *testing.T) {
	if err := classify(errors.New("rpc error: code = Unavailable")); !errors.Is(err, writing.ErrTransport) {
		t.Errorf("network error classified as %v", err)
	}
	if err := classify(&genai.BlockedError{}); !errors.Is(err, writing.ErrMalformedResponse) {
		t.Errorf("blocked error classified as %v", err)
	}
}

func TestSetModel(t *testing.T) {
	e := New("k", "a", 0)
	e.SetModel(" gemini-2.0-flash ")
	if e.GetModel() != "gemini-2.0-flash" || e.Name() != "gemini" {
		t.Errorf("model = %q", e.GetModel())
	}
}

func TestGenerateErrorsAreClassified(t *testing.T) {
	const draft = `{"content":"Water is precious.","teacherTips":["a","b","c"]}`
	tests := []struct {
		name   string
		status int
		body   string
		want   error
	}{
		{"server error", http.StatusInternalServerError, `{"error":{"code":500,"message":"boom","status":"INTERNAL"}}`, writing.ErrTransport},
		{"blocked prompt", http.StatusOK, `{"promptFeedback":{"blockReason":"SAFETY"}}`, writing.ErrMalformedResponse},
		{"no candidates", http.StatusOK, `{"candidates":[]}`, writing.ErrMalformedResponse},
		{"two tips", http.StatusOK, candidate(`{"content":"x","teacherTips":["a","b"]}`), writing.ErrMalformedResponse},
		{"ok", http.StatusOK, candidate(draft), nil},
	}
	req, _ := writing.Build("Water Crisis", writing.FormatEssay, writing.GradeSecondary, 300)

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var calls int32
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				atomic.AddInt32(&calls, 1)
				if !strings.HasSuffix(r.URL.Path, ":generateContent") {
					t.Errorf("unexpected path %s", r.URL.Path)
				}
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			e := New("test-key", "gemini-2.5-flash", 5*time.Second)
			e.Endpoint = srv.URL
			got, err := e.Generate(context.Background(), req)
			if tt.want == nil {
				if err != nil || got.Content != "Water is precious." {
					t.Fatalf("Generate() = %+v, %v", got, err)
				}
			} else {
				if !errors.Is(err, tt.want) {
					t.Fatalf("Generate() error = %v, want %v", err, tt.want)
				}
				if writing.CodeOf(err) == "" {
					t.Errorf("error %v carries no code", err)
				}
			}
			if n := atomic.LoadInt32(&calls); n != 1 {
				t.Errorf("calls = %d, want 1", n)
			}
		})
	}
}

func candidate(text string) string {
	return `{"candidates":[{"content":{"role":"model","parts":[{"text":` + strconv.Quote(text) + `}]},"finishReason":"STOP"}]}`
}
