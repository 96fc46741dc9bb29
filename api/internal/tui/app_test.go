package tui

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"writing-guru/api/internal/controller"
	"writing-guru/api/internal/history"
	"writing-guru/api/internal/store"
	"writing-guru/api/internal/writing"
)

type fakeGen struct {
	mu   sync.Mutex
	reqs []writing.Request
}

func (f *fakeGen) Generate(_ context.Context, req writing.Request) (writing.Response, error) {
	f.mu.Lock()
	f.reqs = append(f.reqs, req)
	f.mu.Unlock()
	return writing.Response{Content: "Draft on " + req.Topic, TeacherTips: []string{"one", "two", "three"}}, nil
}

func newApp(t *testing.T) (*App, *fakeGen) {
	t.Helper()
	gen := &fakeGen{}
	ctx := context.Background()
	ctl := controller.New(ctx, gen, history.New(store.NewMemoryBlob(), history.DefaultKey))
	a := New(ctx, ctl, "gemini · test")
	a.Update(tea.WindowSizeMsg{Width: 100, Height: 40})
	return a, gen
}

func typeText(a *App, s string) {
	a.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)})
}

func press(a *App, k tea.KeyType) tea.Cmd {
	_, cmd := a.Update(tea.KeyMsg{Type: k})
	return cmd
}

// runUntilGenerated executes cmd (and nested batches) and feeds the
// generatedMsg back into the app.
func runUntilGenerated(t *testing.T, a *App, cmd tea.Cmd) {
	t.Helper()
	if cmd == nil {
		t.Fatal("no command returned")
	}
	var walk func(tea.Cmd) bool
	walk = func(c tea.Cmd) bool {
		if c == nil {
			return false
		}
		switch m := c().(type) {
		case tea.BatchMsg:
			for _, sub := range m {
				if walk(sub) {
					return true
				}
			}
		case generatedMsg:
			a.Update(m)
			return true
		}
		return false
	}
	if !walk(cmd) {
		t.Fatal("generation command not found")
	}
}

func TestSubmitFromForm(t *testing.T) {
	a, gen := newApp(t)

	typeText(a, "Water Crisis")
	press(a, tea.KeyTab) // format
	press(a, tea.KeyRight)
	press(a, tea.KeyTab) // grade
	press(a, tea.KeyLeft)
	press(a, tea.KeyTab) // words
	press(a, tea.KeyRight)
	press(a, tea.KeyRight)

	cmd := press(a, tea.KeyEnter)
	if !a.pending {
		t.Error("pending not set after enter")
	}
	if !strings.Contains(a.View(), "Writing your") {
		t.Error("spinner line missing while pending")
	}
	runUntilGenerated(t, a, cmd)

	if len(gen.reqs) != 1 {
		t.Fatalf("requests = %d", len(gen.reqs))
	}
	want := writing.Request{Topic: "Water Crisis", Format: writing.FormatParagraph, Grade: writing.GradeMiddle, WordCount: 300}
	if gen.reqs[0] != want {
		t.Errorf("request = %+v, want %+v", gen.reqs[0], want)
	}
	if a.pending || a.draft == nil {
		t.Fatalf("pending=%v draft=%v", a.pending, a.draft)
	}
	if v := a.View(); !strings.Contains(v, "Draft on Water Crisis") || !strings.Contains(v, "Teacher Tips") {
		t.Errorf("view missing draft:\n%s", v)
	}
}

func TestBlankTopicDoesNothing(t *testing.T) {
	a, gen := newApp(t)
	typeText(a, "   ")
	if cmd := press(a, tea.KeyEnter); cmd != nil {
		t.Error("enter with blank topic returned a command")
	}
	if a.pending || len(gen.reqs) != 0 {
		t.Error("blank topic submitted")
	}
}

func TestCopyDraft(t *testing.T) {
	a, _ := newApp(t)
	var copied []string
	a.copyText = func(s string) error {
		copied = append(copied, s)
		return nil
	}

	press(a, tea.KeyCtrlY)
	if len(copied) != 0 || a.notice != "Nothing to copy yet." {
		t.Fatalf("copy without draft: copied=%v notice=%q", copied, a.notice)
	}

	typeText(a, "Water Crisis")
	runUntilGenerated(t, a, press(a, tea.KeyEnter))
	press(a, tea.KeyCtrlY)
	if len(copied) != 1 || copied[0] != "Draft on Water Crisis" {
		t.Errorf("copied = %v", copied)
	}
	if !strings.Contains(a.View(), "Copied to clipboard.") {
		t.Error("copy confirmation missing")
	}

	a.copyText = func(string) error { return errors.New("no clipboard utility") }
	press(a, tea.KeyCtrlY)
	if !strings.Contains(a.notice, "clipboard unavailable") {
		t.Errorf("notice = %q", a.notice)
	}
}

func TestHistoryRecall(t *testing.T) {
	a, _ := newApp(t)
	for _, topic := range []string{"First", "Second"} {
		a.input.SetValue(topic)
		runUntilGenerated(t, a, press(a, tea.KeyEnter))
	}

	press(a, tea.KeyCtrlH)
	if a.view != viewHistory {
		t.Fatal("ctrl+h did not open history")
	}
	v := a.View()
	if !strings.Contains(v, "1. Second") || !strings.Contains(v, "2. First") {
		t.Errorf("history view:\n%s", v)
	}

	typeText(a, "4")
	if a.notice == "" || a.view != viewHistory {
		t.Error("out-of-range number should keep history open with a notice")
	}

	typeText(a, "2")
	if a.view != viewForm || a.draft == nil || a.draft.topic != "First" {
		t.Errorf("recall: view=%v draft=%+v", a.view, a.draft)
	}
}

func TestEscLeavesHistoryThenQuits(t *testing.T) {
	a, _ := newApp(t)
	press(a, tea.KeyCtrlH)
	if cmd := press(a, tea.KeyEsc); cmd != nil || a.view != viewForm {
		t.Error("esc in history should go back to the form")
	}
	if cmd := press(a, tea.KeyEsc); cmd == nil || !a.quitting {
		t.Error("esc on the form should quit")
	}
}

func TestCycle(t *testing.T) {
	if got := cycle(writing.WordCounts, 500, 1); got != 100 {
		t.Errorf("cycle wrap forward = %d", got)
	}
	if got := cycle(writing.Formats, writing.FormatEssay, -1); got != writing.FormatNotice {
		t.Errorf("cycle wrap back = %s", got)
	}
}
