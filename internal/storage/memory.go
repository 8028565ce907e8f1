package storage

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/avdeev/planner-bot/internal/model"
)

// MemoryNoteStore is an in-memory NoteStore for tests and Mongo-less runs.
type MemoryNoteStore struct {
	mu    sync.RWMutex
	notes []model.Note
}

func NewMemoryNoteStore() *MemoryNoteStore {
	return &MemoryNoteStore{}
}

func (s *MemoryNoteStore) Add(_ context.Context, date, text string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.notes = append(s.notes, model.Note{Date: date, Text: text})
	return nil
}

func (s *MemoryNoteStore) ListByDate(_ context.Context, date string) ([]model.Note, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []model.Note
	for _, n := range s.notes {
		if n.Date == date {
			out = append(out, n)
		}
	}
	return out, nil
}

func (s *MemoryNoteStore) ListAll(_ context.Context) ([]model.Note, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]model.Note, len(s.notes))
	copy(out, s.notes)
	return out, nil
}

func (s *MemoryNoteStore) DeleteAll(_ context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := int64(len(s.notes))
	s.notes = nil
	return n, nil
}

// MemoryTaskStore is an in-memory TaskStore. Ids are random UUIDs; insertion
// order is preserved for listings.
type MemoryTaskStore struct {
	mu    sync.RWMutex
	order []string
	tasks map[string]model.Task
	now   func() time.Time
}

func NewMemoryTaskStore() *MemoryTaskStore {
	return &MemoryTaskStore{
		tasks: make(map[string]model.Task),
		now:   time.Now,
	}
}

// SetNow overrides the clock used for created dates. Test hook.
func (s *MemoryTaskStore) SetNow(now func() time.Time) {
	s.now = now
}

func (s *MemoryTaskStore) Add(_ context.Context, text, deadline string, chatID int64) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := uuid.NewString()
	s.tasks[id] = model.Task{
		ID:          id,
		Text:        text,
		Deadline:    deadline,
		Status:      model.StatusNotDone,
		DateCreated: s.now().Format(model.DateLayout),
		ChatID:      chatID,
	}
	s.order = append(s.order, id)
	return id, nil
}

func (s *MemoryTaskStore) ListByDate(_ context.Context, date string, chatID int64) ([]model.Task, error) {
	return s.list(func(t model.Task) bool {
		return t.DateCreated == date && t.ChatID == chatID
	}), nil
}

func (s *MemoryTaskStore) ListByChat(_ context.Context, chatID int64) ([]model.Task, error) {
	return s.list(func(t model.Task) bool { return t.ChatID == chatID }), nil
}

func (s *MemoryTaskStore) ListAll(_ context.Context) ([]model.Task, error) {
	return s.list(func(model.Task) bool { return true }), nil
}

func (s *MemoryTaskStore) list(match func(model.Task) bool) []model.Task {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []model.Task
	for _, id := range s.order {
		if t, ok := s.tasks[id]; ok && match(t) {
			out = append(out, t)
		}
	}
	return out
}

func (s *MemoryTaskStore) Update(_ context.Context, id string, upd TaskUpdate) error {
	if upd.Text == nil && upd.Status == nil {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.tasks[id]
	if !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if upd.Text != nil {
		t.Text = *upd.Text
	}
	if upd.Status != nil {
		t.Status = *upd.Status
	}
	s.tasks[id] = t
	return nil
}

func (s *MemoryTaskStore) UpdateReminders(_ context.Context, id string, r model.Reminders) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.tasks[id]
	if !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	t.Reminders = r
	s.tasks[id] = t
	return nil
}

func (s *MemoryTaskStore) DeleteByDate(_ context.Context, date string, chatID int64) (int64, error) {
	return s.delete(func(t model.Task) bool {
		return t.DateCreated == date && t.ChatID == chatID
	}), nil
}

func (s *MemoryTaskStore) DeleteAll(_ context.Context) (int64, error) {
	return s.delete(func(model.Task) bool { return true }), nil
}

func (s *MemoryTaskStore) delete(match func(model.Task) bool) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	var deleted int64
	kept := s.order[:0]
	for _, id := range s.order {
		t := s.tasks[id]
		if match(t) {
			delete(s.tasks, id)
			deleted++
			continue
		}
		kept = append(kept, id)
	}
	s.order = kept
	return deleted
}
