package bot

// flowState identifies the step of the guided-input flow a chat is in.
type flowState int

const (
	stateIdle flowState = iota

	stateAddNoteText
	stateViewNotesDate

	stateAddTaskText
	stateAddTaskYear
	stateAddTaskMonth
	stateAddTaskDay
	stateAddTaskTime

	stateViewTasksDate

	stateUpdateSelect
	stateUpdateTextOption
	stateUpdateTextInput
	stateUpdateStatus

	stateDeleteTasksDate
	stateConfirmWipeNotes
	stateConfirmWipeTasks
)

// session accumulates the partially-collected fields of the flow in
// progress. It lives only in memory and is discarded on completion or
// cancellation.
type session struct {
	state flowState

	// add-task fields
	taskText string
	year     int
	month    int
	day      int

	// update-task fields; updateText nil means "keep current text"
	updateTaskID string
	updateText   *string
}

// session returns the chat's session, creating an idle one if needed.
func (b *Bot) session(chatID int64) *session {
	b.mu.Lock()
	defer b.mu.Unlock()

	sess, ok := b.sessions[chatID]
	if !ok {
		sess = &session{}
		b.sessions[chatID] = sess
	}
	return sess
}

// clearSession discards the chat's in-progress flow.
func (b *Bot) clearSession(chatID int64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.sessions, chatID)
}
