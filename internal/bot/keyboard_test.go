package bot

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDaysInMonth(t *testing.T) {
	tests := []struct {
		year  int
		month int
		want  int
	}{
		{2024, 2, 29}, // leap year
		{2023, 2, 28},
		{2000, 2, 29}, // divisible by 400
		{1900, 2, 28}, // divisible by 100 but not 400
		{2025, 1, 31},
		{2025, 4, 30},
		{2025, 12, 31},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, daysInMonth(tt.year, tt.month), "year=%d month=%d", tt.year, tt.month)
	}
}

func TestDayKeyboardLeapFebruary(t *testing.T) {
	markup := dayKeyboard(daysInMonth(2024, 2))

	total := 0
	for _, row := range markup.InlineKeyboard {
		assert.LessOrEqual(t, len(row), 7)
		total += len(row)
	}
	assert.Equal(t, 29, total)

	// 29 buttons, 7 per row: 4 full rows plus one row of a single button.
	require.Len(t, markup.InlineKeyboard, 5)
	assert.Len(t, markup.InlineKeyboard[4], 1)
	assert.Equal(t, "day_29", markup.InlineKeyboard[4][0].CallbackData)
}

func TestDayKeyboardPlainFebruary(t *testing.T) {
	markup := dayKeyboard(daysInMonth(2023, 2))

	total := 0
	for _, row := range markup.InlineKeyboard {
		total += len(row)
	}
	assert.Equal(t, 28, total)
	assert.Len(t, markup.InlineKeyboard, 4)
}

func TestMonthKeyboardGrid(t *testing.T) {
	markup := monthKeyboard()

	require.Len(t, markup.InlineKeyboard, 4)
	for _, row := range markup.InlineKeyboard {
		assert.Len(t, row, 3)
	}
	assert.Equal(t, "month_1", markup.InlineKeyboard[0][0].CallbackData)
	assert.Equal(t, "Январь", markup.InlineKeyboard[0][0].Text)
	assert.Equal(t, "month_12", markup.InlineKeyboard[3][2].CallbackData)
}
