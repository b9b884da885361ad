package dialog

import (
	"strconv"
	"strings"
)

const StepDeadlineHours = "deadline_hours"

const (
	PromptTemplateName = "Введите название шаблона:"

	promptTemplateTitle    = "Введите название задачи (например: \"Подать заявку на площадку\"):"
	promptTemplateDesc     = "Введите описание задачи:"
	promptTemplateHours    = "Через сколько часов по умолчанию должен быть дедлайн? (например: 24 для \"через сутки\"):"
	promptTemplateBadHours = "Введите число часов (минимум 1):"
)

func NewTemplateState() State {
	return newState(ActionCreatingTemplate, StepName)
}

// AdvanceTemplate walks name → title → description → deadline_hours.
// The hours step demands a positive integer.
func AdvanceTemplate(st State, text string) Result {
	if st.Action != ActionCreatingTemplate {
		return pass(st)
	}
	text = strings.TrimSpace(text)

	switch st.Step {
	case StepName:
		return prompt(st.with(StepTitle, "name", text), promptTemplateTitle, KeyboardForceReply)
	case StepTitle:
		return prompt(st.with(StepDescription, "title", text), promptTemplateDesc, KeyboardForceReply)
	case StepDescription:
		return prompt(st.with(StepDeadlineHours, "description", text), promptTemplateHours, KeyboardForceReply)
	case StepDeadlineHours:
		hours, err := strconv.Atoi(text)
		if err != nil || hours < 1 {
			return reprompt(st, promptTemplateBadHours, KeyboardForceReply)
		}
		return commit(st.with(StepDone, "deadline_hours", strconv.Itoa(hours)))
	default:
		return pass(st)
	}
}
