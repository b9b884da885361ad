package dialog

const (
	StepCategory = "category"
	StepPhoto    = "photo"
)

const (
	PromptIssueCategory = "Выберите категорию проблемы:"

	promptIssuePhoto = "Отправьте фото (опционально) или отправьте /skip чтобы пропустить."
)

// IssueCategories is the fixed button set for the category step.
var IssueCategories = []string{"Оборудование", "Уборка", "Инвентарь", "Другое"}

// NewIssueState starts an issue report at the category step; taskID is
// optional and links the report to the task it was raised from.
func NewIssueState(taskID string) State {
	st := newState(ActionReportingIssue, StepCategory)
	if taskID != "" {
		st.Data["task_id"] = taskID
	}
	return st
}

// SetIssueCategory applies the button-selected category and moves the
// dialog to the free-text description step.
func SetIssueCategory(st State, category string) (State, bool) {
	if st.Action != ActionReportingIssue || st.Step != StepCategory {
		return st, false
	}
	return st.with(StepDescription, "category", category), true
}

// AdvanceIssueText consumes the description and moves to the photo
// step; the photo itself (or a /skip) is applied by the caller because
// it arrives as a different event kind.
func AdvanceIssueText(st State, text string) Result {
	if st.Action != ActionReportingIssue || st.Step != StepDescription {
		return pass(st)
	}
	return prompt(st.with(StepPhoto, "description", text), promptIssuePhoto, KeyboardNone)
}

// FinishIssue attaches the optional photo reference and completes the
// dialog. An empty photoURL means the user skipped.
func FinishIssue(st State, photoURL string) (State, bool) {
	if st.Action != ActionReportingIssue || st.Step != StepPhoto {
		return st, false
	}
	return st.with(StepDone, "photo_url", photoURL), true
}
