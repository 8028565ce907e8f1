// Package scheduler runs the background deadline-reminder loop. Each cycle
// scans every task and announces each crossed threshold (1 day, 1 hour, on
// time) at most once, tracked by per-task reminder flags.
package scheduler

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/avdeev/planner-bot/internal/model"
	"github.com/avdeev/planner-bot/internal/storage"
)

// Notifier is the outbound side used for reminder delivery. Satisfied by
// *telegram.Client.
type Notifier interface {
	SendMessage(ctx context.Context, chatID int64, text string, replyMarkup any) error
}

// Scheduler polls the task store on a fixed interval and pushes threshold
// notifications.
type Scheduler struct {
	tasks    storage.TaskStore
	notifier Notifier
	interval time.Duration
	now      func() time.Time
}

// New creates a scheduler over the given store and notifier.
func New(tasks storage.TaskStore, notifier Notifier, interval time.Duration) *Scheduler {
	return &Scheduler{
		tasks:    tasks,
		notifier: notifier,
		interval: interval,
		now:      time.Now,
	}
}

// SetNow overrides the scheduler clock. Test hook.
func (s *Scheduler) SetNow(now func() time.Time) {
	s.now = now
}

// Run blocks and runs Tick on interval + immediately on start. It exits
// only when ctx is cancelled.
func (s *Scheduler) Run(ctx context.Context) error {
	if s.interval <= 0 {
		return fmt.Errorf("scheduler interval must be positive, got %s", s.interval)
	}

	log.Printf("[scheduler] Started. Interval: %s", s.interval)

	s.Tick(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Println("[scheduler] Shutting down...")
			return nil
		case <-ticker.C:
			s.Tick(ctx)
		}
	}
}

// Tick runs one reminder cycle. A failure on one task never aborts the
// cycle for the rest.
func (s *Scheduler) Tick(ctx context.Context) {
	tasks, err := s.tasks.ListAll(ctx)
	if err != nil {
		log.Printf("[scheduler] Error: failed to load tasks: %v", err)
		return
	}

	now := s.now()
	for _, task := range tasks {
		s.checkTask(ctx, task, now)
	}
}

// checkTask evaluates the thresholds for one task in fixed order (day,
// hour, on time). A flag is set only after its notification was delivered;
// a failed send stops further thresholds for this task this cycle, but
// flags already earned are still persisted in a single write.
func (s *Scheduler) checkTask(ctx context.Context, task model.Task, now time.Time) {
	if task.ChatID == 0 {
		return
	}
	deadline, err := task.DeadlineTime()
	if err != nil {
		return
	}

	remaining := deadline.Sub(now)
	flags := task.Reminders
	changed := false

	type threshold struct {
		due  bool
		sent *bool
		text string
	}
	thresholds := []threshold{
		{
			due:  remaining <= 24*time.Hour && remaining > 0,
			sent: &flags.Day,
			text: dayReminderText(task.Text, deadline),
		},
		{
			due:  remaining <= time.Hour && remaining > 0,
			sent: &flags.Hour,
			text: hourReminderText(task.Text, deadline),
		},
		{
			due:  !now.Before(deadline),
			sent: &flags.OnTime,
			text: onTimeReminderText(task.Text),
		},
	}

	for _, th := range thresholds {
		if !th.due || *th.sent {
			continue
		}
		if err := s.notifier.SendMessage(ctx, task.ChatID, th.text, nil); err != nil {
			log.Printf("[scheduler] Error: send to chat %d failed: %v", task.ChatID, err)
			break
		}
		*th.sent = true
		changed = true
	}

	if !changed {
		return
	}
	if err := s.tasks.UpdateReminders(ctx, task.ID, flags); err != nil {
		log.Printf("[scheduler] Error: persist flags for task %s failed: %v", task.ID, err)
	}
}

const reminderTimeLayout = "02.01.2006 15:04"

func dayReminderText(taskText string, deadline time.Time) string {
	return fmt.Sprintf("⏰ <b>Напоминание!</b>\n"+
		"До дедлайна задачи <b>%s</b> осталось <b>1 день</b>.\n"+
		"📅 Дедлайн: %s", taskText, deadline.Format(reminderTimeLayout))
}

func hourReminderText(taskText string, deadline time.Time) string {
	return fmt.Sprintf("⏰ <b>Напоминание!</b>\n"+
		"До дедлайна задачи <b>%s</b> остался <b>1 час</b>.\n"+
		"📅 Дедлайн: %s", taskText, deadline.Format(reminderTimeLayout))
}

func onTimeReminderText(taskText string) string {
	return fmt.Sprintf("🚨 <b>Внимание!</b>\n"+
		"Сейчас наступил дедлайн задачи: <b>%s</b>.\n"+
		"Проверьте выполнение задачи!", taskText)
}
