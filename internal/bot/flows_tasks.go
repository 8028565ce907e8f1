package bot

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/avdeev/planner-bot/internal/model"
	"github.com/avdeev/planner-bot/internal/telegram"
)

// Добавить задачу: Text → Year → Month → Day → Time. Year and time are
// validated in place (re-prompt without advancing); month and day come from
// inline keyboards so they cannot be malformed.

func (b *Bot) startAddTask(ctx context.Context, chatID int64) error {
	b.session(chatID).state = stateAddTaskText
	return b.tg.SendMessage(ctx, chatID, "📝 Введите текст задачи:", nil)
}

func (b *Bot) addTaskReceiveText(ctx context.Context, chatID int64, sess *session, text string) error {
	sess.taskText = text
	sess.state = stateAddTaskYear
	return b.tg.SendMessage(ctx, chatID, "📅 Введите год дедлайна (например, 2025):", nil)
}

func (b *Bot) addTaskReceiveYear(ctx context.Context, chatID int64, sess *session, text string) error {
	year, err := strconv.Atoi(strings.TrimSpace(text))
	if err != nil || year < 1900 || year > 3000 {
		return b.tg.SendMessage(ctx, chatID, "❌ Неверный год. Введите год числом (например, 2025):", nil)
	}

	sess.year = year
	sess.state = stateAddTaskMonth
	return b.tg.SendMessage(ctx, chatID, "📅 Выберите месяц:", monthKeyboard())
}

func (b *Bot) addTaskMonthSelected(ctx context.Context, chatID int64, cq *telegram.CallbackQuery, sess *session) error {
	month, ok := parseToken(cq.Data, "month_")
	if !ok || month < 1 || month > 12 {
		return b.tg.EditMessageText(ctx, chatID, cq.Message.MessageID, "❌ Неверный выбор. Попробуйте снова.", nil)
	}

	sess.month = month
	sess.state = stateAddTaskDay
	numDays := daysInMonth(sess.year, month)
	return b.tg.EditMessageText(ctx, chatID, cq.Message.MessageID, "📅 Выберите число:", dayKeyboard(numDays))
}

func (b *Bot) addTaskDaySelected(ctx context.Context, chatID int64, cq *telegram.CallbackQuery, sess *session) error {
	day, ok := parseToken(cq.Data, "day_")
	if !ok {
		return b.tg.EditMessageText(ctx, chatID, cq.Message.MessageID, "❌ Неверный выбор. Попробуйте снова.", nil)
	}

	sess.day = day
	sess.state = stateAddTaskTime
	return b.tg.EditMessageText(ctx, chatID, cq.Message.MessageID,
		"⏰ Введите время дедлайна в формате <code>HH:MM</code> (например, 18:00):", nil)
}

func (b *Bot) addTaskReceiveTime(ctx context.Context, chatID int64, sess *session, text string) error {
	t, err := time.Parse("15:04", strings.TrimSpace(text))
	if err != nil {
		return b.tg.SendMessage(ctx, chatID,
			"❌ Неверный формат времени. Введите время в формате <code>HH:MM</code> (например, 18:00):", nil)
	}

	// Defensive: the keyboard only offers valid days for the chosen
	// year/month, so an out-of-range day here means the session is corrupt.
	if sess.day < 1 || sess.day > daysInMonth(sess.year, sess.month) {
		b.clearSession(chatID)
		return b.tg.SendMessage(ctx, chatID, "❌ Ошибка формирования даты. Попробуйте снова.", mainKeyboard())
	}

	deadline := time.Date(sess.year, time.Month(sess.month), sess.day,
		t.Hour(), t.Minute(), 0, 0, time.UTC).Format(model.DeadlineLayout)

	if _, err := b.tasks.Add(ctx, sess.taskText, deadline, chatID); err != nil {
		return b.reportError(ctx, chatID, fmt.Errorf("add task: %w", err))
	}

	b.clearSession(chatID)
	return b.tg.SendMessage(ctx, chatID, "✅ Задача успешно добавлена!", mainKeyboard())
}

// Просмотреть задачи: one date step; tasks with unparseable deadlines are
// left out of the listing.

func (b *Bot) startViewTasks(ctx context.Context, chatID int64) error {
	b.session(chatID).state = stateViewTasksDate
	return b.tg.SendMessage(ctx, chatID,
		"📅 Введите дату (в формате ГГГГ-ММ-ДД), для которой хотите посмотреть задачи:", nil)
}

func (b *Bot) viewTasksReceiveDate(ctx context.Context, chatID int64, date string) error {
	tasks, err := b.tasks.ListByDate(ctx, date, chatID)
	if err != nil {
		return b.reportError(ctx, chatID, fmt.Errorf("list tasks: %w", err))
	}

	now := b.now()
	var lines []string
	for _, t := range tasks {
		if line, ok := taskLine(t, now); ok {
			lines = append(lines, line)
		}
	}

	response := "❌ <b>Задач за указанную дату не найдено.</b>"
	if len(lines) > 0 {
		response = strings.Join(lines, "\n")
	}

	b.clearSession(chatID)
	return b.tg.SendMessage(ctx, chatID, response, mainKeyboard())
}

// Удалить задачи за дату: one date step, scoped to the chat.

func (b *Bot) startDeleteTasksByDate(ctx context.Context, chatID int64) error {
	b.session(chatID).state = stateDeleteTasksDate
	return b.tg.SendMessage(ctx, chatID,
		"📅 Введите дату (ГГГГ-ММ-ДД), для которой хотите удалить задачи:", nil)
}

func (b *Bot) deleteTasksReceiveDate(ctx context.Context, chatID int64, date string) error {
	count, err := b.tasks.DeleteByDate(ctx, date, chatID)
	if err != nil {
		return b.reportError(ctx, chatID, fmt.Errorf("delete tasks by date: %w", err))
	}

	b.clearSession(chatID)
	return b.tg.SendMessage(ctx, chatID,
		fmt.Sprintf("✅ Все задачи за указанную дату удалены (%d).", count), mainKeyboard())
}

// Удалить все задачи: literal confirmation, crosses all chats.

func (b *Bot) startWipeTasks(ctx context.Context, chatID int64) error {
	b.session(chatID).state = stateConfirmWipeTasks
	return b.tg.SendMessage(ctx, chatID,
		"⚠️ Вы уверены, что хотите удалить <b>ВСЕ</b> задачи? Напишите <i>да</i> для подтверждения:", nil)
}

func (b *Bot) wipeTasksConfirm(ctx context.Context, chatID int64, text string) error {
	b.clearSession(chatID)

	if !strings.EqualFold(strings.TrimSpace(text), confirmToken) {
		return b.tg.SendMessage(ctx, chatID, "❌ Операция отменена.", mainKeyboard())
	}

	count, err := b.tasks.DeleteAll(ctx)
	if err != nil {
		return b.reportError(ctx, chatID, fmt.Errorf("delete all tasks: %w", err))
	}
	return b.tg.SendMessage(ctx, chatID, fmt.Sprintf("✅ Удалено задач: %d.", count), mainKeyboard())
}

// parseToken extracts the integer suffix of a callback token like month_7.
func parseToken(data, prefix string) (int, bool) {
	if !strings.HasPrefix(data, prefix) {
		return 0, false
	}
	n, err := strconv.Atoi(strings.TrimPrefix(data, prefix))
	if err != nil {
		return 0, false
	}
	return n, true
}
