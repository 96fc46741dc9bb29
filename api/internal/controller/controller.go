// Package controller orchestrates one writing session: form values, the
// Idle/Submitting/Success/Failed state, the generation call and history.
package controller

import (
	"context"
	"errors"
	"sync"

	"writing-guru/api/internal/logger"
	"writing-guru/api/internal/writing"
)

type Status int

const (
	Idle Status = iota
	Submitting
	Success
	Failed
)

func (s Status) String() string {
	switch s {
	case Idle:
		return "idle"
	case Submitting:
		return "submitting"
	case Success:
		return "success"
	case Failed:
		return "failed"
	}
	return "unknown"
}

const (
	MsgGeneric       = "Something went wrong. Please check your connection and try again."
	MsgConfiguration = "Writing generation is not configured: the API key is missing. Set GEMINI_API_KEY (or OPENAI_API_KEY for the OpenAI engine) and try again."
)

// State is a snapshot; Result is kept across failures.
type State struct {
	Status  Status
	Form    writing.Form
	Result  *writing.Response
	Message string
	History []writing.HistoryEntry
}

// Generator: клиент генерации (engine.Engine удовлетворяет).
type Generator interface {
	Generate(ctx context.Context, req writing.Request) (writing.Response, error)
}

// HistoryStore: то, что контроллеру нужно от history.Store.
type HistoryStore interface {
	Load(ctx context.Context) []writing.HistoryEntry
	Record(ctx context.Context, resp writing.Response, topic string, format writing.Format) ([]writing.HistoryEntry, error)
	Select(id string) (writing.Response, error)
	Entries() []writing.HistoryEntry
}

type Controller struct {
	gen     Generator
	history HistoryStore

	mu       sync.Mutex
	status   Status
	form     writing.Form
	result   *writing.Response
	message  string
	onChange func(State)
}

// New loads history once; the controller then owns the session until the process exits.
func New(ctx context.Context, gen Generator, history HistoryStore) *Controller {
	history.Load(ctx)
	return &Controller{
		gen:     gen,
		history: history,
		form:    writing.DefaultForm(),
	}
}

// OnChange registers an observer called after every transition, outside the lock.
func (c *Controller) OnChange(f func(State)) {
	c.mu.Lock()
	c.onChange = f
	c.mu.Unlock()
}

func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshot()
}

func (c *Controller) snapshot() State {
	var res *writing.Response
	if c.result != nil {
		r := *c.result
		r.TeacherTips = append([]string(nil), c.result.TeacherTips...)
		res = &r
	}
	return State{
		Status:  c.status,
		Form:    c.form,
		Result:  res,
		Message: c.message,
		History: c.history.Entries(),
	}
}

// SetForm updates the form values without submitting (format/grade/words pickers).
// Reports false while a generation is in flight; the form is left as is.
func (c *Controller) SetForm(f writing.Form) bool {
	return c.UpdateForm(func(cur *writing.Form) { *cur = f })
}

// UpdateForm applies fn to the current form under the lock, so concurrent
// pickers changing different fields don't overwrite each other.
func (c *Controller) UpdateForm(fn func(*writing.Form)) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.status == Submitting {
		return false
	}
	f := c.form
	fn(&f)
	c.form = f
	return true
}

// Submit runs one generation. A blank topic, or a submit while another one is
// in flight, changes nothing and returns the current state.
func (c *Controller) Submit(ctx context.Context, f writing.Form) State {
	c.mu.Lock()
	if f.Blank() || c.status == Submitting {
		st := c.snapshot()
		c.mu.Unlock()
		return st
	}

	req, err := f.Build()
	if err != nil {
		logger.Warn(ctx, "controller: invalid form", "code", string(writing.CodeOf(err)), "error", err.Error())
		c.status = Failed
		c.message = formMessage(err)
		return c.unlockAndNotify()
	}
	c.form = f
	c.status = Submitting
	c.message = ""
	c.unlockAndNotify()

	resp, err := c.gen.Generate(ctx, req)
	if err != nil {
		c.mu.Lock()
		c.fail(ctx, err, "generation failed")
		return c.unlockAndNotify()
	}

	if _, err := c.history.Record(ctx, resp, req.Topic, req.Format); err != nil {
		c.mu.Lock()
		c.fail(ctx, err, "history record failed")
		return c.unlockAndNotify()
	}

	c.mu.Lock()
	c.status = Success
	c.result = &resp
	c.message = ""
	logger.Info(ctx, "controller: generated", "format", string(req.Format), "grade", string(req.Grade), "words", req.WordCount)
	return c.unlockAndNotify()
}

// Select returns a history entry for display. NotFoundError goes to the
// caller only; state is not touched.
func (c *Controller) Select(id string) (writing.Response, error) {
	return c.history.Select(id)
}

// fail is called with c.mu held.
func (c *Controller) fail(ctx context.Context, err error, what string) {
	logger.Error(ctx, "controller: "+what, err, "code", string(writing.CodeOf(err)))
	c.status = Failed
	if errors.Is(err, writing.ErrConfiguration) {
		c.message = MsgConfiguration
	} else {
		c.message = MsgGeneric
	}
}

// unlockAndNotify must be called with c.mu held; it releases it before
// calling the observer.
func (c *Controller) unlockAndNotify() State {
	st := c.snapshot()
	cb := c.onChange
	c.mu.Unlock()
	if cb != nil {
		cb(st)
	}
	return st
}

func formMessage(err error) string {
	var e *writing.Error
	if errors.As(err, &e) && e.Message != "" {
		return "Please check the form: " + e.Message + "."
	}
	return "Please check the form and try again."
}
