// Package tui is the terminal front-end: one form, one session, history
// persisted through the controller.
package tui

import (
	"context"
	"errors"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"writing-guru/api/internal/controller"
	"writing-guru/api/internal/history"
	"writing-guru/api/internal/writing"
)

type field int

const (
	fieldTopic field = iota
	fieldFormat
	fieldGrade
	fieldWords
	fieldCount
)

type view int

const (
	viewForm view = iota
	viewHistory
)

// generatedMsg carries the controller state after a Submit finished.
type generatedMsg struct{ state controller.State }

// shown: черновик на экране: свежий результат или запись из истории.
type shown struct {
	topic  string
	format writing.Format
	resp   writing.Response
}

type App struct {
	ctx    context.Context
	ctl    *controller.Controller
	engine string

	width  int
	height int
	view   view
	focus  field

	input    textinput.Model
	spin     spinner.Model
	viewport viewport.Model

	pending  bool
	draft    *shown
	notice   string
	info     string
	quitting bool

	copyText func(string) error
}

func New(ctx context.Context, ctl *controller.Controller, engineLabel string) *App {
	input := textinput.New()
	input.Placeholder = "e.g. Water Crisis in Indian Cities"
	input.CharLimit = 200
	input.Width = 50
	input.SetValue(ctl.State().Form.Topic)
	input.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = styleFocused

	vp := viewport.New(80, 12)
	// только стрелки и pgup/pgdn: буквы уходят в поле темы
	vp.KeyMap = viewport.KeyMap{
		PageDown: key.NewBinding(key.WithKeys("pgdown")),
		PageUp:   key.NewBinding(key.WithKeys("pgup")),
		Up:       key.NewBinding(key.WithKeys("up")),
		Down:     key.NewBinding(key.WithKeys("down")),
	}

	return &App{
		ctx:      ctx,
		ctl:      ctl,
		engine:   engineLabel,
		input:    input,
		spin:     sp,
		viewport: vp,
		copyText: clipboard.WriteAll,
	}
}

func (a *App) Init() tea.Cmd {
	return tea.Batch(tea.WindowSize(), textinput.Blink)
}

func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		cmd, handled := a.handleKey(msg)
		if handled {
			return a, cmd
		}

	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.resizeViewport()

	case spinner.TickMsg:
		if !a.pending {
			return a, nil
		}
		var cmd tea.Cmd
		a.spin, cmd = a.spin.Update(msg)
		return a, cmd

	case generatedMsg:
		a.pending = false
		if msg.state.Status == controller.Success && msg.state.Result != nil {
			a.draft = &shown{topic: msg.state.Form.Topic, format: msg.state.Form.Format, resp: *msg.state.Result}
			a.refreshDraft()
		}
		return a, nil
	}

	if a.view == viewForm && a.focus == fieldTopic {
		var cmd tea.Cmd
		a.input, cmd = a.input.Update(msg)
		cmds = append(cmds, cmd)
	}
	var cmd tea.Cmd
	a.viewport, cmd = a.viewport.Update(msg)
	cmds = append(cmds, cmd)

	return a, tea.Batch(cmds...)
}

// handleKey returns handled=false for keys that should reach the text input.
func (a *App) handleKey(msg tea.KeyMsg) (tea.Cmd, bool) {
	a.info = ""
	switch {
	case key.Matches(msg, keys.Quit):
		a.quitting = true
		return tea.Quit, true
	case key.Matches(msg, keys.Back):
		if a.view == viewHistory {
			a.view = viewForm
			return nil, true
		}
		a.quitting = true
		return tea.Quit, true
	case key.Matches(msg, keys.History):
		a.notice = ""
		if a.view == viewHistory {
			a.view = viewForm
		} else {
			a.view = viewHistory
		}
		return nil, true
	}

	if a.view == viewHistory {
		return a.handleHistoryKey(msg), true
	}

	switch {
	case key.Matches(msg, keys.Submit):
		return a.submit(), true
	case key.Matches(msg, keys.Copy):
		a.copyDraft()
		return nil, true
	case key.Matches(msg, keys.Next):
		a.setFocus((a.focus + 1) % fieldCount)
		return nil, true
	case key.Matches(msg, keys.Prev):
		a.setFocus((a.focus + fieldCount - 1) % fieldCount)
		return nil, true
	case a.focus != fieldTopic && key.Matches(msg, keys.Left):
		a.step(-1)
		return nil, true
	case a.focus != fieldTopic && key.Matches(msg, keys.Right):
		a.step(1)
		return nil, true
	}
	return nil, false
}

// copyDraft puts the shown draft's text on the system clipboard.
func (a *App) copyDraft() {
	if a.draft == nil {
		a.notice = "Nothing to copy yet."
		return
	}
	if err := a.copyText(a.draft.resp.Content); err != nil {
		a.notice = "Could not copy: clipboard unavailable."
		return
	}
	a.notice = ""
	a.info = "Copied to clipboard."
}

func (a *App) handleHistoryKey(msg tea.KeyMsg) tea.Cmd {
	s := msg.String()
	if len(s) != 1 || s[0] < '1' || s[0] > '0'+byte(history.Limit) {
		return nil
	}
	entries := a.ctl.State().History
	i := int(s[0] - '1')
	if i >= len(entries) {
		a.notice = "No draft with that number."
		return nil
	}
	e := entries[i]
	resp, err := a.ctl.Select(e.ID)
	if err != nil {
		if errors.Is(err, writing.ErrNotFound) {
			a.notice = "That draft is no longer in your history."
		} else {
			a.notice = "Could not open this draft."
		}
		return nil
	}
	a.draft = &shown{topic: e.Topic, format: e.Format, resp: resp}
	a.refreshDraft()
	a.notice = ""
	a.view = viewForm
	return nil
}

func (a *App) setFocus(f field) {
	a.focus = f
	if f == fieldTopic {
		a.input.Focus()
	} else {
		a.input.Blur()
	}
}

// step moves the focused picker by delta, wrapping around.
func (a *App) step(delta int) {
	f := a.ctl.State().Form
	f.Topic = a.input.Value()
	switch a.focus {
	case fieldFormat:
		f.Format = cycle(writing.Formats, f.Format, delta)
	case fieldGrade:
		f.Grade = cycle(writing.Grades, f.Grade, delta)
	case fieldWords:
		f.WordCount = cycle(writing.WordCounts, f.WordCount, delta)
	}
	a.ctl.SetForm(f)
}

func cycle[T comparable](list []T, cur T, delta int) T {
	idx := 0
	for i, v := range list {
		if v == cur {
			idx = i
			break
		}
	}
	n := len(list)
	return list[((idx+delta)%n+n)%n]
}

// submit dispatches the generation off the UI goroutine. A blank topic or a
// submit while one is pending does nothing.
func (a *App) submit() tea.Cmd {
	f := a.ctl.State().Form
	f.Topic = a.input.Value()
	if a.pending || f.Blank() {
		return nil
	}
	a.pending = true
	a.notice = ""
	ctx, ctl := a.ctx, a.ctl
	run := func() tea.Msg {
		return generatedMsg{state: ctl.Submit(ctx, f)}
	}
	return tea.Batch(a.spin.Tick, run)
}

func (a *App) resizeViewport() {
	w := min(100, a.width-4)
	if w < 20 {
		w = 20
	}
	h := a.height - 16
	if h < 5 {
		h = 5
	}
	a.viewport.Width = w
	a.viewport.Height = h
	a.refreshDraft()
}

func (a *App) refreshDraft() {
	if a.draft == nil {
		a.viewport.SetContent("")
		return
	}
	a.viewport.SetContent(renderDraft(*a.draft, a.viewport.Width))
	a.viewport.GotoTop()
}
