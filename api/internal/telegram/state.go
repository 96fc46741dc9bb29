package telegram

import (
	"context"
	"strconv"
	"sync"

	"writing-guru/api/internal/controller"
	"writing-guru/api/internal/engine"
	"writing-guru/api/internal/history"
	"writing-guru/api/internal/logger"
)

// Sessions: один controller на чат. Чаты делят движки и backend,
// но история у каждого чата своя (ключ writing_history:<chatID>).
type Sessions struct {
	Backend    history.Backend
	EngManager *engine.Manager

	m sync.Map // chatID -> *controller.Controller
}

func NewSessions(backend history.Backend, mgr *engine.Manager) *Sessions {
	return &Sessions{Backend: backend, EngManager: mgr}
}

func HistoryKey(chatID int64) string {
	return history.DefaultKey + ":" + strconv.FormatInt(chatID, 10)
}

// Get returns the chat's controller, creating it (and loading its history)
// on first use. init runs only for a newly created controller.
func (s *Sessions) Get(ctx context.Context, chatID int64, init func(*controller.Controller)) *controller.Controller {
	if v, ok := s.m.Load(chatID); ok {
		return v.(*controller.Controller)
	}
	ctx = logger.WithContext(ctx, logger.ChatIDKey, chatID)
	c := controller.New(ctx, s.EngManager.ForChat(chatID), history.New(s.Backend, HistoryKey(chatID)))
	v, loaded := s.m.LoadOrStore(chatID, c)
	if !loaded && init != nil {
		init(c)
	}
	return v.(*controller.Controller)
}
