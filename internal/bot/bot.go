// Package bot implements the conversation dispatcher and the guided-input
// flows of the task planner. Each chat has at most one flow in progress,
// tracked by a per-chat session; flow entry points are exact-match main
// menu labels.
package bot

import (
	"context"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/avdeev/planner-bot/internal/storage"
	"github.com/avdeev/planner-bot/internal/telegram"
)

// Main menu labels. They are matched verbatim against inbound messages and
// rendered on the reply keyboard.
const (
	menuAddNote           = "Добавить запись"
	menuViewNotes         = "Просмотреть записи"
	menuAddTask           = "Добавить задачу"
	menuViewTasks         = "Просмотреть задачи"
	menuUpdateTask        = "Обновить задачу"
	menuDeleteTasksByDate = "Удалить задачи за дату"
	menuViewAll           = "Просмотреть все данные"
	menuWipeNotes         = "Удалить все записи"
	menuWipeTasks         = "Удалить все задачи"
	menuCancel            = "Отмена"
)

// confirmToken is the literal a user must type to confirm a wipe. Compared
// case-insensitively; anything else declines.
const confirmToken = "да"

// Transport is the outbound side of the chat collaborator. Satisfied by
// *telegram.Client; tests inject a recorder.
type Transport interface {
	SendMessage(ctx context.Context, chatID int64, text string, replyMarkup any) error
	EditMessageText(ctx context.Context, chatID, messageID int64, text string, replyMarkup *telegram.InlineKeyboardMarkup) error
	AnswerCallbackQuery(ctx context.Context, callbackQueryID string) error
}

// Bot routes inbound updates to the active flow state of the chat, or to a
// flow entry point when the chat is idle.
type Bot struct {
	tg    Transport
	notes storage.NoteStore
	tasks storage.TaskStore
	now   func() time.Time

	mu       sync.Mutex
	sessions map[int64]*session

	entries map[string]func(ctx context.Context, chatID int64) error
}

// New creates a dispatcher over the given transport and stores.
func New(tg Transport, notes storage.NoteStore, tasks storage.TaskStore) *Bot {
	b := &Bot{
		tg:       tg,
		notes:    notes,
		tasks:    tasks,
		now:      time.Now,
		sessions: make(map[int64]*session),
	}
	b.entries = map[string]func(ctx context.Context, chatID int64) error{
		menuAddNote:           b.startAddNote,
		menuViewNotes:         b.startViewNotes,
		menuAddTask:           b.startAddTask,
		menuViewTasks:         b.startViewTasks,
		menuUpdateTask:        b.startUpdateTask,
		menuDeleteTasksByDate: b.startDeleteTasksByDate,
		menuViewAll:           b.viewAllData,
		menuWipeNotes:         b.startWipeNotes,
		menuWipeTasks:         b.startWipeTasks,
	}
	return b
}

// SetNow overrides the clock used for "today" and remaining-time rendering.
// Test hook.
func (b *Bot) SetNow(now func() time.Time) {
	b.now = now
}

// HandleUpdate processes a single inbound update. Errors are returned for
// logging only; the caller keeps polling regardless.
func (b *Bot) HandleUpdate(ctx context.Context, upd telegram.Update) error {
	switch {
	case upd.CallbackQuery != nil:
		return b.handleCallback(ctx, upd.CallbackQuery)
	case upd.Message != nil && upd.Message.Text != "":
		return b.handleMessage(ctx, upd.Message)
	}
	return nil
}

func (b *Bot) handleMessage(ctx context.Context, msg *telegram.Message) error {
	chatID := msg.Chat.ID
	text := strings.TrimSpace(msg.Text)

	switch text {
	case "/start":
		b.clearSession(chatID)
		return b.tg.SendMessage(ctx, chatID, greetingText, mainKeyboard())
	case "/cancel", menuCancel:
		b.clearSession(chatID)
		return b.tg.SendMessage(ctx, chatID, "❌ Операция отменена.", mainKeyboard())
	}

	if sess := b.session(chatID); sess.state != stateIdle {
		return b.handleFlowText(ctx, chatID, sess, text)
	}

	if entry, ok := b.entries[text]; ok {
		return entry(ctx, chatID)
	}

	// Free text outside any flow is ignored, as the original menu did.
	return nil
}

func (b *Bot) handleCallback(ctx context.Context, cq *telegram.CallbackQuery) error {
	if err := b.tg.AnswerCallbackQuery(ctx, cq.ID); err != nil {
		log.Printf("[bot] answer callback failed: %v", err)
	}
	if cq.Message == nil {
		return nil
	}

	chatID := cq.Message.Chat.ID
	sess := b.session(chatID)

	switch sess.state {
	case stateAddTaskMonth:
		return b.addTaskMonthSelected(ctx, chatID, cq, sess)
	case stateAddTaskDay:
		return b.addTaskDaySelected(ctx, chatID, cq, sess)
	case stateUpdateSelect:
		return b.updateTaskSelected(ctx, chatID, cq, sess)
	case stateUpdateTextOption:
		return b.updateTaskTextOption(ctx, chatID, cq, sess)
	case stateUpdateStatus:
		return b.updateTaskStatusSelected(ctx, chatID, cq, sess)
	}
	return nil
}

// handleFlowText routes a text message to the flow state expecting it.
// States that expect a button press ignore stray text.
func (b *Bot) handleFlowText(ctx context.Context, chatID int64, sess *session, text string) error {
	switch sess.state {
	case stateAddNoteText:
		return b.addNoteReceiveText(ctx, chatID, text)
	case stateViewNotesDate:
		return b.viewNotesReceiveDate(ctx, chatID, text)
	case stateAddTaskText:
		return b.addTaskReceiveText(ctx, chatID, sess, text)
	case stateAddTaskYear:
		return b.addTaskReceiveYear(ctx, chatID, sess, text)
	case stateAddTaskTime:
		return b.addTaskReceiveTime(ctx, chatID, sess, text)
	case stateViewTasksDate:
		return b.viewTasksReceiveDate(ctx, chatID, text)
	case stateUpdateTextInput:
		return b.updateTaskReceiveText(ctx, chatID, sess, text)
	case stateDeleteTasksDate:
		return b.deleteTasksReceiveDate(ctx, chatID, text)
	case stateConfirmWipeNotes:
		return b.wipeNotesConfirm(ctx, chatID, text)
	case stateConfirmWipeTasks:
		return b.wipeTasksConfirm(ctx, chatID, text)
	}
	return nil
}

const greetingText = "👋 <b>Привет!</b>\n\n" +
	"Я бот-планировщик задач. Выберите нужное действие, нажав на кнопку ниже.\n" +
	"Если захотите отменить текущую операцию, нажмите <i>Отмена</i>."

// reportError tells the user something went wrong and ends the flow.
func (b *Bot) reportError(ctx context.Context, chatID int64, err error) error {
	log.Printf("[bot] chat %d: %v", chatID, err)
	b.clearSession(chatID)
	return b.tg.SendMessage(ctx, chatID, "❌ Произошла ошибка. Попробуйте позже.", mainKeyboard())
}
