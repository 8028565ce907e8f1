package bot

import (
	"fmt"
	"strings"
	"time"

	"github.com/avdeev/planner-bot/internal/model"
)

// deadlineErrPlaceholder replaces any field derived from a deadline that
// does not parse.
const deadlineErrPlaceholder = "Ошибка в дедлайне"

const deadlineDisplayLayout = "02.01.2006 15:04"

// formatDeadline renders the deadline for display, with the error
// placeholder when the stored string does not parse.
func formatDeadline(t model.Task) string {
	dl, err := t.DeadlineTime()
	if err != nil {
		return deadlineErrPlaceholder
	}
	return dl.Format(deadlineDisplayLayout)
}

// formatRemaining renders time-to-deadline as Nд HH:MM:SS, or "Время
// истекло" once the deadline has passed.
func formatRemaining(d time.Duration) string {
	if d < 0 {
		return "Время истекло"
	}

	total := int(d / time.Second)
	days := total / 86400
	hours := (total % 86400) / 3600
	minutes := (total % 3600) / 60
	seconds := total % 60

	if days > 0 {
		return fmt.Sprintf("%dд %d:%02d:%02d", days, hours, minutes, seconds)
	}
	return fmt.Sprintf("%d:%02d:%02d", hours, minutes, seconds)
}

// taskLine renders one task listing row. ok is false when the deadline does
// not parse; date-scoped listings drop such tasks, aggregated listings use
// taskLineWithPlaceholder instead.
func taskLine(t model.Task, now time.Time) (string, bool) {
	dl, err := t.DeadlineTime()
	if err != nil {
		return "", false
	}
	return fmt.Sprintf("🆔 <b>%s</b> | 📝 %s | 📅 %s | 🔄 %s | ⏳ %s",
		t.ID, t.Text, dl.Format(deadlineDisplayLayout), t.Status, formatRemaining(dl.Sub(now))), true
}

// taskLineWithPlaceholder renders a task row even when the deadline is
// broken, substituting the error placeholder.
func taskLineWithPlaceholder(t model.Task, now time.Time) string {
	if line, ok := taskLine(t, now); ok {
		return line
	}
	return fmt.Sprintf("🆔 <b>%s</b> | 📝 %s | 📅 %s | 🔄 %s | ⏳ %s",
		t.ID, t.Text, deadlineErrPlaceholder, t.Status, deadlineErrPlaceholder)
}

func noteLine(n model.Note) string {
	return fmt.Sprintf("📅 <b>%s</b> — ✏️ %s", n.Date, n.Text)
}

// renderAllData builds the aggregated notes-and-tasks view.
func renderAllData(notes []model.Note, tasks []model.Task, now time.Time) string {
	var parts []string
	parts = append(parts, "<b>ВСЕ ДАННЫЕ:</b>")

	parts = append(parts, "\n<b>Записи:</b>")
	if len(notes) == 0 {
		parts = append(parts, "  Нет записей.")
	} else {
		for _, n := range notes {
			parts = append(parts, "  "+noteLine(n))
		}
	}

	parts = append(parts, "\n<b>Задачи:</b>")
	if len(tasks) == 0 {
		parts = append(parts, "  Нет задач.")
	} else {
		for _, t := range tasks {
			parts = append(parts, "  "+taskLineWithPlaceholder(t, now))
		}
	}

	return strings.Join(parts, "\n")
}
