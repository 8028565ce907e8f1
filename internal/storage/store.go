package storage

import (
	"context"
	"errors"

	"github.com/avdeev/planner-bot/internal/model"
)

// Errors returned by task lookups. Flow code reports them to the user
// instead of letting them escape an interaction.
var (
	ErrNotFound  = errors.New("task not found")
	ErrInvalidID = errors.New("invalid task id")
)

// TaskUpdate holds the optional fields of a partial task update. Nil fields
// are left unchanged; an update with both fields nil is a no-op.
type TaskUpdate struct {
	Text   *string
	Status *string
}

// NoteStore provides access to dated free-text notes. There is deliberately
// no per-note update or delete.
type NoteStore interface {
	Add(ctx context.Context, date, text string) error
	ListByDate(ctx context.Context, date string) ([]model.Note, error)
	ListAll(ctx context.Context) ([]model.Note, error)
	DeleteAll(ctx context.Context) (int64, error)
}

// TaskStore provides access to deadline-bound tasks. Listing and per-date
// deletion are scoped to the owning chat; ListAll and DeleteAll cross all
// owners (the scheduler and the wipe flow need the global view).
type TaskStore interface {
	Add(ctx context.Context, text, deadline string, chatID int64) (string, error)
	ListByDate(ctx context.Context, date string, chatID int64) ([]model.Task, error)
	ListByChat(ctx context.Context, chatID int64) ([]model.Task, error)
	ListAll(ctx context.Context) ([]model.Task, error)
	Update(ctx context.Context, id string, upd TaskUpdate) error
	UpdateReminders(ctx context.Context, id string, r model.Reminders) error
	DeleteByDate(ctx context.Context, date string, chatID int64) (int64, error)
	DeleteAll(ctx context.Context) (int64, error)
}
