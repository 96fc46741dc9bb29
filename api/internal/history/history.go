// Package history keeps the five most recent successful generations and
// persists them as one JSON blob through an injected Backend.
package history

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"writing-guru/api/internal/logger"
	"writing-guru/api/internal/store"
	"writing-guru/api/internal/writing"
)

// Limit: сколько записей хранится.
const Limit = 5

// DefaultKey: ключ блоба для однопользовательского клиента.
const DefaultKey = "writing_history"

// Backend хранит блоб целиком; для отсутствующего ключа возвращает store.ErrNotFound.
type Backend interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, key string, value []byte) error
}

type Store struct {
	backend Backend
	key     string
	now     func() time.Time
	newID   func() string

	mu      sync.RWMutex
	entries []writing.HistoryEntry
}

type Option func(*Store)

func WithClock(now func() time.Time) Option { return func(s *Store) { s.now = now } }
func WithIDFunc(f func() string) Option    { return func(s *Store) { s.newID = f } }

func New(backend Backend, key string, opts ...Option) *Store {
	if key == "" {
		key = DefaultKey
	}
	s := &Store{
		backend: backend,
		key:     key,
		now:     time.Now,
		newID:   func() string { return uuid.NewString() },
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Load reads persisted state. Absent or corrupt state gives an empty history.
func (s *Store) Load(ctx context.Context) []writing.HistoryEntry {
	var entries []writing.HistoryEntry

	b, err := s.backend.Get(ctx, s.key)
	switch {
	case errors.Is(err, store.ErrNotFound):
	case err != nil:
		logger.Warn(ctx, "history: load failed, starting empty", "key", s.key, "error", err.Error())
	default:
		if entries, err = Unmarshal(b); err != nil {
			logger.Warn(ctx, "history: corrupt state ignored", "key", s.key, "error", err.Error())
			entries = nil
		}
	}
	if len(entries) > Limit {
		entries = entries[:Limit]
	}

	s.mu.Lock()
	s.entries = entries
	s.mu.Unlock()
	return cloneEntries(entries)
}

// Record prepends a new entry, keeps the newest Limit, persists the whole
// list and returns it. On a persistence error nothing changes.
func (s *Store) Record(ctx context.Context, resp writing.Response, topic string, format writing.Format) ([]writing.HistoryEntry, error) {
	e := writing.HistoryEntry{
		Response: writing.Response{
			Content:     resp.Content,
			TeacherTips: append([]string(nil), resp.TeacherTips...),
		},
		Topic:     topic,
		Format:    format,
		ID:        s.newID(),
		CreatedAt: s.now().UTC(),
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	next := make([]writing.HistoryEntry, 0, Limit)
	next = append(next, e)
	next = append(next, s.entries...)
	if len(next) > Limit {
		next = next[:Limit]
	}

	b, err := Marshal(next)
	if err != nil {
		return nil, err
	}
	if err := s.backend.Put(ctx, s.key, b); err != nil {
		return nil, fmt.Errorf("history: persist %s: %w", s.key, err)
	}
	s.entries = next
	return cloneEntries(next), nil
}

// Select returns a stored response for re-display.
func (s *Store) Select(id string) (writing.Response, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, e := range s.entries {
		if e.ID == id {
			return writing.Response{
				Content:     e.Content,
				TeacherTips: append([]string(nil), e.TeacherTips...),
			}, nil
		}
	}
	return writing.Response{}, writing.NewError(writing.CodeNotFound, fmt.Sprintf("history entry %q not found", id))
}

// Entries returns a copy, newest first.
func (s *Store) Entries() []writing.HistoryEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneEntries(s.entries)
}

func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

func Marshal(entries []writing.HistoryEntry) ([]byte, error) {
	if entries == nil {
		entries = []writing.HistoryEntry{}
	}
	return json.Marshal(entries)
}

func Unmarshal(b []byte) ([]writing.HistoryEntry, error) {
	var entries []writing.HistoryEntry
	if err := json.Unmarshal(b, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

func cloneEntries(in []writing.HistoryEntry) []writing.HistoryEntry {
	out := make([]writing.HistoryEntry, len(in))
	for i, e := range in {
		e.TeacherTips = append([]string(nil), e.TeacherTips...)
		out[i] = e
	}
	return out
}
