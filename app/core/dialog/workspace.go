package dialog

import "strings"

const (
	StepName = "name"
	StepCode = "code"

	maxWorkspaceName = 80
	inviteCodeLength = 6
)

const (
	PromptWorkspaceName = "Введите название рабочего пространства:"
	PromptJoinCode      = "Введите invite-код рабочего пространства (6 символов):"

	promptNameEmpty     = "Название не может быть пустым. Попробуйте еще раз:"
	promptCodeBadLength = "Код должен содержать 6 символов. Попробуйте еще раз:"
)

func NewWorkspaceState() State {
	return newState(ActionCreatingWorkspace, StepName)
}

// AdvanceWorkspaceName validates the single name step: trimmed,
// capped at 80 characters, never empty.
func AdvanceWorkspaceName(st State, text string) Result {
	if st.Action != ActionCreatingWorkspace || st.Step != StepName {
		return pass(st)
	}
	name := strings.TrimSpace(text)
	if len([]rune(name)) > maxWorkspaceName {
		name = string([]rune(name)[:maxWorkspaceName])
	}
	if name == "" {
		return reprompt(st, promptNameEmpty, KeyboardForceReply)
	}
	return commit(st.with(StepDone, "name", name))
}

func NewJoinState() State {
	return newState(ActionJoiningWorkspace, StepCode)
}

// AdvanceJoinCode upper-cases the invite code and rejects anything that
// is not exactly six characters. A well-formed code still has to
// resolve at commit time; an unknown code clears the dialog instead of
// reprompting, since retyping the same code would not help.
func AdvanceJoinCode(st State, text string) Result {
	if st.Action != ActionJoiningWorkspace || st.Step != StepCode {
		return pass(st)
	}
	code := strings.ToUpper(strings.TrimSpace(text))
	if len(code) != inviteCodeLength {
		return reprompt(st, promptCodeBadLength, KeyboardForceReply)
	}
	return commit(st.with(StepDone, "code", code))
}
