package bot

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avdeev/planner-bot/internal/model"
	"github.com/avdeev/planner-bot/internal/storage"
	"github.com/avdeev/planner-bot/internal/telegram"
)

// fakeTransport records outbound messages and edits.
type fakeTransport struct {
	mu    sync.Mutex
	sent  []outbound
	edits []outbound
}

type outbound struct {
	ChatID int64
	Text   string
	Markup any
}

func (f *fakeTransport) SendMessage(_ context.Context, chatID int64, text string, replyMarkup any) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, outbound{ChatID: chatID, Text: text, Markup: replyMarkup})
	return nil
}

func (f *fakeTransport) EditMessageText(_ context.Context, chatID, _ int64, text string, replyMarkup *telegram.InlineKeyboardMarkup) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.edits = append(f.edits, outbound{ChatID: chatID, Text: text, Markup: replyMarkup})
	return nil
}

func (f *fakeTransport) AnswerCallbackQuery(context.Context, string) error { return nil }

func (f *fakeTransport) lastSent() outbound {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.sent[len(f.sent)-1]
}

func (f *fakeTransport) lastEdit() outbound {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.edits[len(f.edits)-1]
}

func (f *fakeTransport) sentCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.sent)
}

func msgUpdate(chatID int64, text string) telegram.Update {
	return telegram.Update{Message: &telegram.Message{Chat: telegram.Chat{ID: chatID}, Text: text}}
}

func cbUpdate(chatID int64, data string) telegram.Update {
	return telegram.Update{CallbackQuery: &telegram.CallbackQuery{
		ID:      "cb",
		Data:    data,
		Message: &telegram.Message{MessageID: 7, Chat: telegram.Chat{ID: chatID}},
	}}
}

func testNow() time.Time {
	return time.Date(2024, 2, 1, 10, 0, 0, 0, time.UTC)
}

func newTestBot(t *testing.T) (*Bot, *fakeTransport, *storage.MemoryNoteStore, *storage.MemoryTaskStore) {
	t.Helper()

	ft := &fakeTransport{}
	notes := storage.NewMemoryNoteStore()
	tasks := storage.NewMemoryTaskStore()
	tasks.SetNow(testNow)

	b := New(ft, notes, tasks)
	b.SetNow(testNow)
	return b, ft, notes, tasks
}

func handle(t *testing.T, b *Bot, upd telegram.Update) {
	t.Helper()
	require.NoError(t, b.HandleUpdate(context.Background(), upd))
}

func TestAddTaskFlow(t *testing.T) {
	b, ft, _, tasks := newTestBot(t)
	const chatID int64 = 42

	handle(t, b, msgUpdate(chatID, "Добавить задачу"))
	assert.Contains(t, ft.lastSent().Text, "Введите текст задачи")

	handle(t, b, msgUpdate(chatID, "сдать отчёт"))
	assert.Contains(t, ft.lastSent().Text, "Введите год")

	// Out-of-range year re-prompts without advancing.
	handle(t, b, msgUpdate(chatID, "1850"))
	assert.Contains(t, ft.lastSent().Text, "Неверный год")
	handle(t, b, msgUpdate(chatID, "лошадь"))
	assert.Contains(t, ft.lastSent().Text, "Неверный год")

	handle(t, b, msgUpdate(chatID, "2024"))
	last := ft.lastSent()
	assert.Contains(t, last.Text, "Выберите месяц")
	months, ok := last.Markup.(*telegram.InlineKeyboardMarkup)
	require.True(t, ok)
	require.Len(t, months.InlineKeyboard, 4)

	handle(t, b, cbUpdate(chatID, "month_2"))
	edit := ft.lastEdit()
	assert.Contains(t, edit.Text, "Выберите число")
	days := edit.Markup.(*telegram.InlineKeyboardMarkup)
	total := 0
	for _, row := range days.InlineKeyboard {
		total += len(row)
	}
	assert.Equal(t, 29, total, "February 2024 is a leap month")

	handle(t, b, cbUpdate(chatID, "day_29"))
	assert.Contains(t, ft.lastEdit().Text, "Введите время")

	// Bad time re-prompts without advancing.
	handle(t, b, msgUpdate(chatID, "25:99"))
	assert.Contains(t, ft.lastSent().Text, "Неверный формат времени")

	handle(t, b, msgUpdate(chatID, "18:00"))
	assert.Contains(t, ft.lastSent().Text, "Задача успешно добавлена")

	all, err := tasks.ListByChat(context.Background(), chatID)
	require.NoError(t, err)
	require.Len(t, all, 1)

	task := all[0]
	assert.Equal(t, "сдать отчёт", task.Text)
	assert.Equal(t, "2024-02-29T18:00:00", task.Deadline)
	assert.Equal(t, model.StatusNotDone, task.Status)
	assert.Equal(t, model.Reminders{}, task.Reminders)
	assert.Equal(t, "2024-02-01", task.DateCreated)
}

func TestAddNoteFlow(t *testing.T) {
	b, ft, notes, _ := newTestBot(t)
	const chatID int64 = 5

	handle(t, b, msgUpdate(chatID, "Добавить запись"))
	handle(t, b, msgUpdate(chatID, "не забыть про хлеб"))
	assert.Contains(t, ft.lastSent().Text, "Запись успешно добавлена")

	got, err := notes.ListByDate(context.Background(), "2024-02-01")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "не забыть про хлеб", got[0].Text)
}

func TestUpdateTaskKeepTextChangesOnlyStatus(t *testing.T) {
	b, ft, _, tasks := newTestBot(t)
	const chatID int64 = 9
	ctx := context.Background()

	id, err := tasks.Add(ctx, "прежний текст", "2024-02-02T10:00:00", chatID)
	require.NoError(t, err)

	handle(t, b, msgUpdate(chatID, "Обновить задачу"))
	sel := ft.lastSent()
	assert.Contains(t, sel.Text, "Выберите задачу")
	markup := sel.Markup.(*telegram.InlineKeyboardMarkup)
	require.Len(t, markup.InlineKeyboard, 1)
	assert.Equal(t, "upd_"+id, markup.InlineKeyboard[0][0].CallbackData)

	handle(t, b, cbUpdate(chatID, "upd_"+id))
	assert.Contains(t, ft.lastEdit().Text, "изменить текст задачи")

	handle(t, b, cbUpdate(chatID, "text_keep"))
	assert.Contains(t, ft.lastEdit().Text, "новый статус")

	handle(t, b, cbUpdate(chatID, "status_"+model.StatusDone))
	assert.Contains(t, ft.lastEdit().Text, "Задача успешно обновлена")

	got, _ := tasks.ListByChat(ctx, chatID)
	require.Len(t, got, 1)
	assert.Equal(t, "прежний текст", got[0].Text)
	assert.Equal(t, model.StatusDone, got[0].Status)
}

func TestUpdateTaskChangeText(t *testing.T) {
	b, ft, _, tasks := newTestBot(t)
	const chatID int64 = 9
	ctx := context.Background()

	id, err := tasks.Add(ctx, "старый", "2024-02-02T10:00:00", chatID)
	require.NoError(t, err)

	handle(t, b, msgUpdate(chatID, "Обновить задачу"))
	handle(t, b, cbUpdate(chatID, "upd_"+id))
	handle(t, b, cbUpdate(chatID, "text_change"))
	assert.Contains(t, ft.lastEdit().Text, "Введите новый текст")

	handle(t, b, msgUpdate(chatID, "новый"))
	handle(t, b, cbUpdate(chatID, "status_"+model.StatusNotDone))

	got, _ := tasks.ListByChat(ctx, chatID)
	assert.Equal(t, "новый", got[0].Text)
	assert.Equal(t, model.StatusNotDone, got[0].Status)
}

func TestUpdateTaskMissingTargetReportsFailure(t *testing.T) {
	b, ft, _, tasks := newTestBot(t)
	const chatID int64 = 9
	ctx := context.Background()

	id, err := tasks.Add(ctx, "задача", "2024-02-02T10:00:00", chatID)
	require.NoError(t, err)

	handle(t, b, msgUpdate(chatID, "Обновить задачу"))
	handle(t, b, cbUpdate(chatID, "upd_"+id))
	handle(t, b, cbUpdate(chatID, "text_keep"))

	// The task disappears between selection and commit.
	_, err = tasks.DeleteAll(ctx)
	require.NoError(t, err)

	handle(t, b, cbUpdate(chatID, "status_"+model.StatusDone))
	assert.Contains(t, ft.lastEdit().Text, "Ошибка при обновлении задачи")

	// The flow terminated: the chat is idle again and menu entries work.
	handle(t, b, msgUpdate(chatID, "Добавить запись"))
	assert.Contains(t, ft.lastSent().Text, "Введите текст записи")
}

func TestUpdateTaskEmptyListShortCircuits(t *testing.T) {
	b, ft, _, _ := newTestBot(t)

	handle(t, b, msgUpdate(3, "Обновить задачу"))
	assert.Contains(t, ft.lastSent().Text, "Нет задач для обновления")

	// No flow was started.
	before := ft.sentCount()
	handle(t, b, msgUpdate(3, "какой-то текст"))
	assert.Equal(t, before, ft.sentCount())
}

func TestWipeTasksConfirmation(t *testing.T) {
	b, ft, _, tasks := newTestBot(t)
	ctx := context.Background()

	_, err := tasks.Add(ctx, "a", "2024-02-02T10:00:00", 1)
	require.NoError(t, err)
	_, err = tasks.Add(ctx, "b", "2024-02-02T10:00:00", 2)
	require.NoError(t, err)

	// Any input other than the literal token declines.
	handle(t, b, msgUpdate(1, "Удалить все задачи"))
	assert.Contains(t, ft.lastSent().Text, "Вы уверены")
	handle(t, b, msgUpdate(1, "может быть"))
	assert.Contains(t, ft.lastSent().Text, "Операция отменена")

	remaining, _ := tasks.ListAll(ctx)
	assert.Len(t, remaining, 2)

	// Case-insensitive confirmation removes everything, across all chats.
	handle(t, b, msgUpdate(1, "Удалить все задачи"))
	handle(t, b, msgUpdate(1, "ДА"))
	assert.Contains(t, ft.lastSent().Text, "Удалено задач: 2")

	remaining, _ = tasks.ListAll(ctx)
	assert.Empty(t, remaining)
}

func TestWipeNotesConfirmation(t *testing.T) {
	b, ft, notes, _ := newTestBot(t)
	ctx := context.Background()

	require.NoError(t, notes.Add(ctx, "2024-02-01", "x"))

	handle(t, b, msgUpdate(1, "Удалить все записи"))
	handle(t, b, msgUpdate(1, "да"))
	assert.Contains(t, ft.lastSent().Text, "Удалено записей: 1")

	all, _ := notes.ListAll(ctx)
	assert.Empty(t, all)
}

func TestViewTasksExcludesBrokenDeadlines(t *testing.T) {
	b, ft, _, tasks := newTestBot(t)
	const chatID int64 = 4
	ctx := context.Background()

	_, err := tasks.Add(ctx, "нормальная", "2024-02-02T10:00:00", chatID)
	require.NoError(t, err)
	_, err = tasks.Add(ctx, "битая", "вчера вечером", chatID)
	require.NoError(t, err)

	handle(t, b, msgUpdate(chatID, "Просмотреть задачи"))
	handle(t, b, msgUpdate(chatID, "2024-02-01"))

	resp := ft.lastSent().Text
	assert.Contains(t, resp, "нормальная")
	assert.NotContains(t, resp, "битая")
}

func TestViewAllRendersBrokenDeadlinePlaceholder(t *testing.T) {
	b, ft, notes, tasks := newTestBot(t)
	ctx := context.Background()

	require.NoError(t, notes.Add(ctx, "2024-02-01", "заметка"))
	_, err := tasks.Add(ctx, "битая", "вчера вечером", 4)
	require.NoError(t, err)

	handle(t, b, msgUpdate(4, "Просмотреть все данные"))

	resp := ft.lastSent().Text
	assert.Contains(t, resp, "ВСЕ ДАННЫЕ")
	assert.Contains(t, resp, "заметка")
	assert.Contains(t, resp, "битая")
	assert.Contains(t, resp, "Ошибка в дедлайне")
}

func TestViewNotesByDate(t *testing.T) {
	b, ft, notes, _ := newTestBot(t)
	ctx := context.Background()

	require.NoError(t, notes.Add(ctx, "2024-02-01", "первая"))
	require.NoError(t, notes.Add(ctx, "2024-02-01", "вторая"))
	require.NoError(t, notes.Add(ctx, "2024-02-02", "чужая дата"))

	handle(t, b, msgUpdate(8, "Просмотреть записи"))
	handle(t, b, msgUpdate(8, "2024-02-01"))

	resp := ft.lastSent().Text
	assert.Contains(t, resp, "первая")
	assert.Contains(t, resp, "вторая")
	assert.NotContains(t, resp, "чужая дата")
	// Both notes survive for the same date, in insertion order.
	assert.Less(t, strings.Index(resp, "первая"), strings.Index(resp, "вторая"))

	handle(t, b, msgUpdate(8, "Просмотреть записи"))
	handle(t, b, msgUpdate(8, "1999-01-01"))
	assert.Contains(t, ft.lastSent().Text, "Записей за указанную дату не найдено")
}

func TestDeleteTasksByDateScopedToChat(t *testing.T) {
	b, ft, _, tasks := newTestBot(t)
	ctx := context.Background()

	_, err := tasks.Add(ctx, "моя", "2024-02-02T10:00:00", 1)
	require.NoError(t, err)
	_, err = tasks.Add(ctx, "чужая", "2024-02-02T10:00:00", 2)
	require.NoError(t, err)

	handle(t, b, msgUpdate(1, "Удалить задачи за дату"))
	handle(t, b, msgUpdate(1, "2024-02-01"))
	assert.Contains(t, ft.lastSent().Text, "задачи за указанную дату удалены (1)")

	remaining, _ := tasks.ListAll(ctx)
	require.Len(t, remaining, 1)
	assert.Equal(t, int64(2), remaining[0].ChatID)
}

func TestCancelDiscardsSession(t *testing.T) {
	b, ft, _, tasks := newTestBot(t)
	const chatID int64 = 2

	handle(t, b, msgUpdate(chatID, "Добавить задачу"))
	handle(t, b, msgUpdate(chatID, "текст"))
	handle(t, b, msgUpdate(chatID, "Отмена"))
	assert.Contains(t, ft.lastSent().Text, "Операция отменена")

	// After cancellation the year input is no longer interpreted.
	before := ft.sentCount()
	handle(t, b, msgUpdate(chatID, "2024"))
	assert.Equal(t, before, ft.sentCount())

	all, _ := tasks.ListAll(context.Background())
	assert.Empty(t, all)
}

func TestStartShowsMenuAndResetsFlow(t *testing.T) {
	b, ft, _, _ := newTestBot(t)

	handle(t, b, msgUpdate(1, "Добавить задачу"))
	handle(t, b, msgUpdate(1, "/start"))

	last := ft.lastSent()
	assert.Contains(t, last.Text, "бот-планировщик")
	_, ok := last.Markup.(telegram.ReplyKeyboardMarkup)
	assert.True(t, ok)

	// Session was reset: entry labels work again.
	handle(t, b, msgUpdate(1, "Добавить запись"))
	assert.Contains(t, ft.lastSent().Text, "Введите текст записи")
}

func TestSessionsAreIndependentPerChat(t *testing.T) {
	b, ft, _, tasks := newTestBot(t)

	handle(t, b, msgUpdate(1, "Добавить задачу"))
	handle(t, b, msgUpdate(2, "Добавить запись"))

	handle(t, b, msgUpdate(1, "задача первого"))
	assert.Contains(t, ft.lastSent().Text, "Введите год")

	handle(t, b, msgUpdate(2, "запись второго"))
	assert.Contains(t, ft.lastSent().Text, "Запись успешно добавлена")

	all, _ := tasks.ListAll(context.Background())
	assert.Empty(t, all, "chat 1 has not finished its flow")
}
