package bot

import (
	"fmt"
	"time"

	"github.com/avdeev/planner-bot/internal/telegram"
)

// mainKeyboard is the persistent reply keyboard with the flow entry points.
func mainKeyboard() telegram.ReplyKeyboardMarkup {
	rows := [][]string{
		{menuAddNote, menuViewNotes},
		{menuAddTask, menuViewTasks},
		{menuUpdateTask, menuDeleteTasksByDate},
		{menuViewAll},
		{menuWipeNotes, menuWipeTasks},
		{menuCancel},
	}

	keyboard := make([][]telegram.KeyboardButton, 0, len(rows))
	for _, labels := range rows {
		row := make([]telegram.KeyboardButton, 0, len(labels))
		for _, label := range labels {
			row = append(row, telegram.KeyboardButton{Text: label})
		}
		keyboard = append(keyboard, row)
	}
	return telegram.ReplyKeyboardMarkup{Keyboard: keyboard, ResizeKeyboard: true}
}

var monthNames = []string{
	"Январь", "Февраль", "Март",
	"Апрель", "Май", "Июнь",
	"Июль", "Август", "Сентябрь",
	"Октябрь", "Ноябрь", "Декабрь",
}

// monthKeyboard is the fixed 12-button month grid, three per row. Buttons
// carry month_1..month_12 tokens.
func monthKeyboard() *telegram.InlineKeyboardMarkup {
	var markup telegram.InlineKeyboardMarkup
	var row []telegram.InlineKeyboardButton
	for i, name := range monthNames {
		row = append(row, telegram.InlineKeyboardButton{
			Text:         name,
			CallbackData: fmt.Sprintf("month_%d", i+1),
		})
		if len(row) == 3 {
			markup.InlineKeyboard = append(markup.InlineKeyboard, row)
			row = nil
		}
	}
	if len(row) > 0 {
		markup.InlineKeyboard = append(markup.InlineKeyboard, row)
	}
	return &markup
}

// dayKeyboard renders buttons 1..numDays, seven per row, with day_N tokens.
func dayKeyboard(numDays int) *telegram.InlineKeyboardMarkup {
	var markup telegram.InlineKeyboardMarkup
	var row []telegram.InlineKeyboardButton
	for day := 1; day <= numDays; day++ {
		row = append(row, telegram.InlineKeyboardButton{
			Text:         fmt.Sprintf("%d", day),
			CallbackData: fmt.Sprintf("day_%d", day),
		})
		if len(row) == 7 {
			markup.InlineKeyboard = append(markup.InlineKeyboard, row)
			row = nil
		}
	}
	if len(row) > 0 {
		markup.InlineKeyboard = append(markup.InlineKeyboard, row)
	}
	return &markup
}

// daysInMonth applies calendar leap-year rules via date normalization: day
// zero of the next month is the last day of this one.
func daysInMonth(year, month int) int {
	return time.Date(year, time.Month(month)+1, 0, 0, 0, 0, 0, time.UTC).Day()
}
