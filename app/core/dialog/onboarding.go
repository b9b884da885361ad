package dialog

import (
	"strconv"
	"strings"
)

const (
	OnboardingFirst = 1
	OnboardingLast  = 4
)

// Onboarding out-of-band actions; next/prev move the cursor, the rest
// show auxiliary content, branch into the name editor or terminate.
const (
	OnboardingNext            = "next"
	OnboardingPrev            = "prev"
	OnboardingHelp            = "help"
	OnboardingBack            = "back"
	OnboardingEditName        = "edit_name"
	OnboardingChangeWorkspace = "change_workspace"
	OnboardingComplete        = "complete"
)

type OnboardingShow int

const (
	ShowStep OnboardingShow = iota
	ShowHelp
	ShowNote
	ShowEditPrompt
	ShowComplete
	ShowNothing
)

type OnboardingResult struct {
	Next State
	Show OnboardingShow
	Note string
}

const (
	notePromptName      = "Введите новое имя:"
	noteNameTooShort    = "Имя должно быть длиннее 2 символов. Попробуйте еще раз:"
	noteChangeWorkspace = "Для смены рабочего пространства обратитесь к админу."
)

// NewOnboardingState starts the tour at step 1 with the display data
// substituted into the step texts.
func NewOnboardingState(username, telegramID, workspace string) State {
	st := newState(ActionOnboarding, "")
	st.Cursor = OnboardingFirst
	st.Data["username"] = username
	st.Data["telegram_id"] = telegramID
	st.Data["workspace"] = workspace
	return st
}

// AdvanceOnboarding applies one tour action. The cursor clamps at both
// ends: prev on step 1 and next on step 4 stay put instead of wrapping.
func AdvanceOnboarding(st State, action string) OnboardingResult {
	if st.Action != ActionOnboarding {
		return OnboardingResult{Next: st, Show: ShowNothing}
	}

	switch action {
	case OnboardingNext:
		next := st.with(st.Step, "", "")
		if next.Cursor < OnboardingLast {
			next.Cursor++
		}
		return OnboardingResult{Next: next, Show: ShowStep}
	case OnboardingPrev:
		next := st.with(st.Step, "", "")
		if next.Cursor > OnboardingFirst {
			next.Cursor--
		}
		return OnboardingResult{Next: next, Show: ShowStep}
	case OnboardingHelp:
		return OnboardingResult{Next: st, Show: ShowHelp}
	case OnboardingBack:
		return OnboardingResult{Next: st, Show: ShowStep}
	case OnboardingEditName:
		next := st.with(st.Step, "", "")
		next.Action = ActionEditingName
		return OnboardingResult{Next: next, Show: ShowEditPrompt, Note: notePromptName}
	case OnboardingChangeWorkspace:
		return OnboardingResult{Next: st, Show: ShowNote, Note: noteChangeWorkspace}
	case OnboardingComplete:
		return OnboardingResult{Next: st, Show: ShowComplete}
	default:
		return OnboardingResult{Next: st, Show: ShowNothing}
	}
}

// AdvanceEditingName handles the nested one-field name editor. A valid
// name commits (the caller persists it) and drops back to tour step 2.
func AdvanceEditingName(st State, text string) Result {
	if st.Action != ActionEditingName {
		return pass(st)
	}
	name := strings.TrimSpace(text)
	if len([]rune(name)) < 2 {
		return reprompt(st, noteNameTooShort, KeyboardNone)
	}
	next := st.with(st.Step, "username", name)
	next.Action = ActionOnboarding
	next.Cursor = 2
	return commit(next)
}

var onboardingSteps = map[int]string{
	1: "👋 Добро пожаловать в систему управления задачами!\n\n" +
		"Этот бот помогает команде вести задачи, чек-листы и проблемы в одном месте.\n\n" +
		"Нажмите «Далее», чтобы продолжить.",
	2: "👤 Ваш профиль\n\n" +
		"Имя: {username}\nTelegram ID: {telegramId}\nРабочее пространство: {workspace}\n\n" +
		"Имя можно поменять прямо сейчас.",
	3: "📋 Задачи\n\n" +
		"Руководитель назначает задачи с дедлайном. Выполненная задача уходит на проверку, " +
		"после одобрения она закрывается.\n\n«📋 Мои задачи» показывает всё, что назначено вам.",
	4: "🚀 Готово!\n\n" +
		"Если что-то сломалось — «🛠 Сообщить о проблеме». Вопросы — /help.\n\n" +
		"Нажмите «Завершить», чтобы начать работу.",
}

// OnboardingStepText renders a tour step with the user's display data
// substituted for the {username}/{telegramId}/{workspace} placeholders.
func OnboardingStepText(step int, data map[string]string) string {
	text, ok := onboardingSteps[step]
	if !ok {
		return "Шаг " + strconv.Itoa(step)
	}
	r := strings.NewReplacer(
		"{username}", data["username"],
		"{telegramId}", data["telegram_id"],
		"{workspace}", data["workspace"],
	)
	return r.Replace(text)
}

// HelpText is shared between /help and the tour's help screen.
func HelpText() string {
	return "ℹ️ Справка\n\n" +
		"/start — главное меню\n" +
		"/profile — ваш профиль\n" +
		"/help — эта справка\n\n" +
		"«📋 Мои задачи» — назначенные вам задачи\n" +
		"«🛠 Сообщить о проблеме» — зарегистрировать проблему\n" +
		"«🏢 Присоединиться к workspace» — вход по invite-коду"
}
