package dialog

import (
	"strings"
	"time"

	"taskdesk/app/core/dates"
)

const (
	StepTitle       = "title"
	StepDescription = "description"
	StepAssignee    = "assignee"
	StepDeadline    = "deadline"
	StepDone        = "done"
)

const (
	// PromptTaskTitle opens the dialog; sent by the caller on start.
	PromptTaskTitle = "Название задачи?"

	promptTaskDescription = "Описание задачи?"
	promptTaskAssignee    = "Назначить (username или Telegram ID)?"
	promptTaskDeadline    = "Когда нужно сделать?\n\nВыберите быстро или введите дату:"
	promptDeadlineRetry   = "Не удалось распознать дату. Попробуйте еще раз или используйте формат \"завтра в 15:00\", или выберите из кнопок:"
	promptDeadlinePast    = "Дата не может быть в прошлом. Попробуйте другую дату:"
)

// NewTaskState starts the task creation dialog at the title step.
func NewTaskState() State {
	return newState(ActionCreatingTask, StepTitle)
}

// AdvanceTask consumes one text input of the task creation flow:
// title → description → assignee → deadline → commit. On the deadline
// step the text goes through the date resolver; unparseable or past
// dates reprompt with the quick-pick keyboard.
func AdvanceTask(st State, text string, now time.Time) Result {
	if st.Action != ActionCreatingTask {
		return pass(st)
	}

	switch st.Step {
	case StepTitle:
		return prompt(st.with(StepDescription, "title", text), promptTaskDescription, KeyboardForceReply)
	case StepDescription:
		return prompt(st.with(StepAssignee, "description", text), promptTaskAssignee, KeyboardForceReply)
	case StepAssignee:
		assignee := strings.TrimPrefix(strings.TrimSpace(text), "@")
		return prompt(st.with(StepDeadline, "assignee", assignee), promptTaskDeadline, KeyboardDeadlineQuick)
	case StepDeadline:
		deadline, ok := dates.Resolve(text, now)
		if !ok {
			return reprompt(st, promptDeadlineRetry, KeyboardDeadlineQuick)
		}
		if dates.IsPast(deadline, now) {
			return reprompt(st, promptDeadlinePast, KeyboardDeadlineQuick)
		}
		return commit(st.with(StepDone, "deadline", deadline.Format(time.RFC3339)))
	default:
		return pass(st)
	}
}

// ApplyQuickDeadline sets a button-selected deadline on the dialog.
// It fails when the state is not waiting for a deadline or the chosen
// moment is already past.
func ApplyQuickDeadline(st State, deadline time.Time, now time.Time) (State, bool) {
	if st.Action != ActionCreatingTask || st.Step != StepDeadline {
		return st, false
	}
	if dates.IsPast(deadline, now) {
		return st, false
	}
	return st.with(StepDone, "deadline", deadline.Format(time.RFC3339)), true
}

// TaskDeadline reads back the collected deadline.
func TaskDeadline(st State) (time.Time, bool) {
	raw, ok := st.Data["deadline"]
	if !ok {
		return time.Time{}, false
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}
