package model

import "time"

// Status values for tasks. Kept in Russian because they double as the
// user-visible status column and as callback tokens.
const (
	StatusDone    = "выполнено"
	StatusNotDone = "не выполнено"
)

// DateLayout is the day-level format used for created dates and note dates.
const DateLayout = "2006-01-02"

// DeadlineLayout is the ISO-8601 layout deadlines are stored in.
const DeadlineLayout = "2006-01-02T15:04:05"

// Reminders tracks which deadline thresholds have already been announced.
// Flags are monotonic: once set they are never cleared.
type Reminders struct {
	Day    bool `bson:"day"`
	Hour   bool `bson:"hour"`
	OnTime bool `bson:"on_time"`
}

// Task is a deadline-bound item owned by a single chat.
type Task struct {
	ID          string    `bson:"-"`
	Text        string    `bson:"text"`
	Deadline    string    `bson:"deadline"`
	Status      string    `bson:"status"`
	DateCreated string    `bson:"date_created"`
	ChatID      int64     `bson:"chat_id"`
	Reminders   Reminders `bson:"reminders"`
}

// DeadlineTime parses the stored deadline string. Tasks whose deadline does
// not parse are skipped by the scheduler and by date-scoped listings.
func (t Task) DeadlineTime() (time.Time, error) {
	return ParseDeadline(t.Deadline)
}

// Note is a free-text entry attached to a date. Notes are immutable and can
// only be removed by the delete-all operation.
type Note struct {
	Date string `bson:"date"`
	Text string `bson:"text"`
}

// ParseDeadline accepts the stored ISO-8601 layout, falling back to RFC 3339
// for deadlines written by other tools.
func ParseDeadline(s string) (time.Time, error) {
	if t, err := time.Parse(DeadlineLayout, s); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, s)
}
