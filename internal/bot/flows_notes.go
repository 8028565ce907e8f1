package bot

import (
	"context"
	"fmt"
	"strings"

	"github.com/avdeev/planner-bot/internal/model"
)

// Добавить запись: one text step, committed for today's date.

func (b *Bot) startAddNote(ctx context.Context, chatID int64) error {
	b.session(chatID).state = stateAddNoteText
	return b.tg.SendMessage(ctx, chatID, "✏️ Введите текст записи для сегодняшнего дня:", nil)
}

func (b *Bot) addNoteReceiveText(ctx context.Context, chatID int64, text string) error {
	today := b.now().Format(model.DateLayout)
	if err := b.notes.Add(ctx, today, text); err != nil {
		return b.reportError(ctx, chatID, fmt.Errorf("add note: %w", err))
	}
	b.clearSession(chatID)
	return b.tg.SendMessage(ctx, chatID, "✅ Запись успешно добавлена!", mainKeyboard())
}

// Просмотреть записи: one date step, renders matching notes.

func (b *Bot) startViewNotes(ctx context.Context, chatID int64) error {
	b.session(chatID).state = stateViewNotesDate
	return b.tg.SendMessage(ctx, chatID,
		"📅 Введите дату (в формате ГГГГ-ММ-ДД), для которой хотите посмотреть записи:", nil)
}

func (b *Bot) viewNotesReceiveDate(ctx context.Context, chatID int64, date string) error {
	notes, err := b.notes.ListByDate(ctx, date)
	if err != nil {
		return b.reportError(ctx, chatID, fmt.Errorf("list notes: %w", err))
	}

	response := "❌ <b>Записей за указанную дату не найдено.</b>"
	if len(notes) > 0 {
		lines := make([]string, 0, len(notes))
		for _, n := range notes {
			lines = append(lines, noteLine(n))
		}
		response = strings.Join(lines, "\n")
	}

	b.clearSession(chatID)
	return b.tg.SendMessage(ctx, chatID, response, mainKeyboard())
}

// Удалить все записи: literal confirmation, anything else declines.

func (b *Bot) startWipeNotes(ctx context.Context, chatID int64) error {
	b.session(chatID).state = stateConfirmWipeNotes
	return b.tg.SendMessage(ctx, chatID,
		"⚠️ Вы уверены, что хотите удалить <b>ВСЕ</b> записи? Напишите <i>да</i> для подтверждения:", nil)
}

func (b *Bot) wipeNotesConfirm(ctx context.Context, chatID int64, text string) error {
	b.clearSession(chatID)

	if !strings.EqualFold(strings.TrimSpace(text), confirmToken) {
		return b.tg.SendMessage(ctx, chatID, "❌ Операция отменена.", mainKeyboard())
	}

	count, err := b.notes.DeleteAll(ctx)
	if err != nil {
		return b.reportError(ctx, chatID, fmt.Errorf("delete all notes: %w", err))
	}
	return b.tg.SendMessage(ctx, chatID, fmt.Sprintf("✅ Удалено записей: %d.", count), mainKeyboard())
}

// Просмотреть все данные: single-shot aggregated listing, no flow state.

func (b *Bot) viewAllData(ctx context.Context, chatID int64) error {
	notes, err := b.notes.ListAll(ctx)
	if err != nil {
		return b.reportError(ctx, chatID, fmt.Errorf("list all notes: %w", err))
	}
	tasks, err := b.tasks.ListAll(ctx)
	if err != nil {
		return b.reportError(ctx, chatID, fmt.Errorf("list all tasks: %w", err))
	}
	return b.tg.SendMessage(ctx, chatID, renderAllData(notes, tasks, b.now()), mainKeyboard())
}
