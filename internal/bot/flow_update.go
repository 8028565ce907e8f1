package bot

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/avdeev/planner-bot/internal/model"
	"github.com/avdeev/planner-bot/internal/storage"
	"github.com/avdeev/planner-bot/internal/telegram"
)

// Обновить задачу: Select → TextOption → [TextInput] → Status. The select
// step lists the chat's tasks as inline buttons; an empty list ends the
// flow immediately.

func (b *Bot) startUpdateTask(ctx context.Context, chatID int64) error {
	tasks, err := b.tasks.ListByChat(ctx, chatID)
	if err != nil {
		return b.reportError(ctx, chatID, fmt.Errorf("list tasks for update: %w", err))
	}
	if len(tasks) == 0 {
		return b.tg.SendMessage(ctx, chatID, "❌ Нет задач для обновления.", mainKeyboard())
	}

	var markup telegram.InlineKeyboardMarkup
	for _, t := range tasks {
		markup.InlineKeyboard = append(markup.InlineKeyboard, []telegram.InlineKeyboardButton{{
			Text:         fmt.Sprintf("📝 %s (📅 %s)", t.Text, formatDeadline(t)),
			CallbackData: "upd_" + t.ID,
		}})
	}

	b.session(chatID).state = stateUpdateSelect
	return b.tg.SendMessage(ctx, chatID, "Выберите задачу для обновления:", &markup)
}

func (b *Bot) updateTaskSelected(ctx context.Context, chatID int64, cq *telegram.CallbackQuery, sess *session) error {
	id, ok := strings.CutPrefix(cq.Data, "upd_")
	if !ok {
		b.clearSession(chatID)
		return nil
	}

	sess.updateTaskID = id
	sess.state = stateUpdateTextOption

	markup := &telegram.InlineKeyboardMarkup{InlineKeyboard: [][]telegram.InlineKeyboardButton{{
		{Text: "✏️ Изменить текст", CallbackData: "text_change"},
		{Text: "🔒 Не изменять текст", CallbackData: "text_keep"},
	}}}
	return b.tg.EditMessageText(ctx, chatID, cq.Message.MessageID, "Хотите изменить текст задачи?", markup)
}

func (b *Bot) updateTaskTextOption(ctx context.Context, chatID int64, cq *telegram.CallbackQuery, sess *session) error {
	switch cq.Data {
	case "text_change":
		sess.state = stateUpdateTextInput
		return b.tg.EditMessageText(ctx, chatID, cq.Message.MessageID, "✏️ Введите новый текст задачи:", nil)
	case "text_keep":
		sess.updateText = nil
		sess.state = stateUpdateStatus
		return b.tg.EditMessageText(ctx, chatID, cq.Message.MessageID,
			"Выберите новый статус задачи:", statusKeyboard())
	default:
		return b.tg.EditMessageText(ctx, chatID, cq.Message.MessageID, "❌ Неверный выбор. Попробуйте снова.", nil)
	}
}

func (b *Bot) updateTaskReceiveText(ctx context.Context, chatID int64, sess *session, text string) error {
	newText := strings.TrimSpace(text)
	sess.updateText = &newText
	sess.state = stateUpdateStatus
	return b.tg.SendMessage(ctx, chatID, "Выберите новый статус задачи:", statusKeyboard())
}

func (b *Bot) updateTaskStatusSelected(ctx context.Context, chatID int64, cq *telegram.CallbackQuery, sess *session) error {
	status, ok := strings.CutPrefix(cq.Data, "status_")
	if !ok {
		b.clearSession(chatID)
		return nil
	}

	upd := storage.TaskUpdate{Text: sess.updateText, Status: &status}
	id := sess.updateTaskID
	b.clearSession(chatID)

	if err := b.tasks.Update(ctx, id, upd); err != nil {
		log.Printf("[bot] update task %s failed: %v", id, err)
		return b.tg.EditMessageText(ctx, chatID, cq.Message.MessageID, "❌ Ошибка при обновлении задачи.", nil)
	}
	return b.tg.EditMessageText(ctx, chatID, cq.Message.MessageID, "✅ Задача успешно обновлена!", nil)
}

func statusKeyboard() *telegram.InlineKeyboardMarkup {
	return &telegram.InlineKeyboardMarkup{InlineKeyboard: [][]telegram.InlineKeyboardButton{{
		{Text: "✅ " + model.StatusDone, CallbackData: "status_" + model.StatusDone},
		{Text: "❌ " + model.StatusNotDone, CallbackData: "status_" + model.StatusNotDone},
	}}}
}
