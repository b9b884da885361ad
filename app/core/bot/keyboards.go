package bot

import (
	"fmt"

	"taskdesk/app/core/dates"
	"taskdesk/app/core/dialog"
	"taskdesk/app/core/format"
	"taskdesk/app/core/store"
	"taskdesk/app/pkg/types"
)

// Main menu labels double as the text triggers for menu actions.
const (
	btnProfile       = "👤 Профиль"
	btnCreateTask    = "📝 Создать задачу"
	btnAdminTasks    = "📊 Мои задачи"
	btnMemberTasks   = "📋 Мои задачи"
	btnStats         = "📈 Статистика"
	btnJoinWorkspace = "🏢 Присоединиться к workspace"
	btnReportIssue   = "🛠 Сообщить о проблеме"
	btnAddChecklist  = "📋 Добавить чек-лист"
	btnManageUsers   = "👥 Управление"
	btnIssues        = "🚨 Проблемы"
)

func mainMenu() *types.Keyboard {
	return &types.Keyboard{Reply: [][]string{
		{btnProfile, btnMemberTasks},
		{btnJoinWorkspace},
		{btnReportIssue},
	}}
}

func adminMainMenu() *types.Keyboard {
	return &types.Keyboard{Reply: [][]string{
		{btnProfile, btnCreateTask},
		{btnAdminTasks, btnStats},
		{btnAddChecklist, btnManageUsers},
		{btnIssues, btnReportIssue},
		{btnJoinWorkspace},
	}}
}

func adminMenuKeyboard() *types.Keyboard {
	return types.InlineKeyboard(
		[]types.Button{{Label: "📝 Создать задачу", Data: "admin:create_task"}},
		[]types.Button{{Label: "📋 Типовые задачи", Data: "admin:templates"}},
		[]types.Button{{Label: "📊 Мои задачи", Data: "admin:my_tasks"}},
		[]types.Button{{Label: "🏢 Панель управления", Data: "workspace:management"}},
		[]types.Button{{Label: "➕ Создать workspace", Data: "admin:create_workspace"}},
		[]types.Button{{Label: "👥 Управление пользователями", Data: "admin:manage_users"}},
		[]types.Button{{Label: "🚨 Проблемы", Data: "admin:issues"}},
		[]types.Button{{Label: "📈 Статистика", Data: "admin:stats"}},
	)
}

// quickDeadlineData pairs positionally with dates.QuickOptions; each
// entry is re-resolved against a fresh clock when pressed.
var quickDeadlineData = [...]string{
	"deadline:today:18:00",
	"deadline:today:21:00",
	"deadline:tomorrow:12:00",
	"deadline:tomorrow:18:00",
	"deadline:relative:3h",
	"deadline:relative:1d",
}

func (b *Bot) deadlineQuickKeyboard() *types.Keyboard {
	opts := dates.QuickOptions(b.now())
	var rows [][]types.Button
	for i := 0; i+1 < len(opts) && i+1 < len(quickDeadlineData); i += 2 {
		rows = append(rows, []types.Button{
			{Label: opts[i].Label, Data: quickDeadlineData[i]},
			{Label: opts[i+1].Label, Data: quickDeadlineData[i+1]},
		})
	}
	rows = append(rows, []types.Button{{Label: "📅 Выбрать дату", Data: "deadline:custom"}})
	return types.InlineKeyboard(rows...)
}

func deadlineCustomKeyboard() *types.Keyboard {
	return types.InlineKeyboard(
		[]types.Button{{Label: "« Назад к быстрому выбору", Data: "deadline:quick"}},
	)
}

func issueCategoriesKeyboard() *types.Keyboard {
	rows := make([][]types.Button, 0, len(dialog.IssueCategories))
	for _, cat := range dialog.IssueCategories {
		rows = append(rows, []types.Button{{Label: cat, Data: "issue:cat:" + cat}})
	}
	return types.InlineKeyboard(rows...)
}

func issueActionsKeyboard(issueID string) *types.Keyboard {
	return types.InlineKeyboard([]types.Button{
		{Label: "В работу", Data: "issue:status:" + issueID + ":" + store.IssueInProgress},
		{Label: "Решено", Data: "issue:status:" + issueID + ":" + store.IssueResolved},
	})
}

func joinWorkspaceKeyboard(inviteCode string) *types.Keyboard {
	return types.InlineKeyboard(
		[]types.Button{{Label: "Присоединиться", Data: "ws:join:" + inviteCode}},
	)
}

func simpleTaskKeyboard(taskID string) *types.Keyboard {
	return types.InlineKeyboard(
		[]types.Button{{Label: "✅ Выполнено", Data: "task:complete:" + taskID}},
		[]types.Button{{Label: "⚠️ Проблема", Data: "task:issue:" + taskID}},
	)
}

func reviewActionsKeyboard(taskID string) *types.Keyboard {
	return types.InlineKeyboard([]types.Button{
		{Label: "✅ Одобрить", Data: "task:approve:" + taskID},
		{Label: "❌ Отклонить", Data: "task:reject:" + taskID},
	})
}

func taskDetailsKeyboard(taskID string) *types.Keyboard {
	return types.InlineKeyboard(
		[]types.Button{{Label: "🔔 Напомнить", Data: "task:remind:" + taskID}},
		[]types.Button{{Label: "« Назад к списку", Data: "tasks:list"}},
	)
}

func backToAdminMenuKeyboard() *types.Keyboard {
	return types.InlineKeyboard(
		[]types.Button{{Label: "« Назад", Data: "admin:menu"}},
	)
}

func marked(label string, selected bool) string {
	if selected {
		return "✅ " + label
	}
	return label
}

// taskListKeyboard lays out one button block per task, then filter,
// sort and action rows. The active filter and sort carry a check mark.
func taskListKeyboard(tasks []store.Task, currentFilter, currentSort string, b *Bot) *types.Keyboard {
	now := b.now()
	var rows [][]types.Button
	for _, t := range tasks {
		rows = append(rows, []types.Button{{
			Label: format.StatusIcon(t, now) + " " + t.Title,
			Data:  "task:view:" + t.ID,
		}})
		deadlineCell := format.ShortDeadline(t.Deadline, now)
		if format.IsOverdue(t, now) {
			deadlineCell += " ⚠️"
		}
		assignee := t.AssignedTo.Username
		if assignee == "" {
			assignee = "unknown"
		}
		rows = append(rows, []types.Button{{
			Label: fmt.Sprintf("@%s | %s", assignee, deadlineCell),
			Data:  "task:view:" + t.ID,
		}})
		rows = append(rows, []types.Button{
			{Label: "👁 Детали", Data: "task:details:" + t.ID},
			{Label: "🔔 Напомнить", Data: "task:remind:" + t.ID},
		})
	}

	rows = append(rows, []types.Button{
		{Label: marked("Все", currentFilter == "all"), Data: "tasks:filter:all"},
		{Label: marked("Активные", currentFilter == "active"), Data: "tasks:filter:active"},
		{Label: marked("Просроченные", currentFilter == "overdue"), Data: "tasks:filter:overdue"},
		{Label: marked("На проверке", currentFilter == "pending_review"), Data: "tasks:filter:pending_review"},
	})
	rows = append(rows, []types.Button{
		{Label: markedIcon("📅 ", "По дедлайну", currentSort == "deadline"), Data: "tasks:sort:deadline"},
		{Label: markedIcon("📊 ", "По статусу", currentSort == "status"), Data: "tasks:sort:status"},
		{Label: markedIcon("👤 ", "По исполнителю", currentSort == "assignee"), Data: "tasks:sort:assignee"},
	})
	rows = append(rows, []types.Button{
		{Label: "📝 Создать задачу", Data: "admin:create_task"},
		{Label: "📁 Архив", Data: "tasks:archive"},
	})
	return types.InlineKeyboard(rows...)
}

func markedIcon(icon, label string, selected bool) string {
	if selected {
		return icon + label
	}
	return label
}

func templatesListKeyboard(templates []store.TaskTemplate) *types.Keyboard {
	var rows [][]types.Button
	for _, t := range templates {
		rows = append(rows, []types.Button{{Label: "📋 " + t.Name, Data: "template:use:" + t.ID}})
	}
	rows = append(rows, []types.Button{
		{Label: "➕ Создать шаблон", Data: "template:create"},
		{Label: "🗑 Удалить шаблон", Data: "template:delete"},
	})
	rows = append(rows, []types.Button{{Label: "« Назад", Data: "admin:menu"}})
	return types.InlineKeyboard(rows...)
}

func templatesDeleteKeyboard(templates []store.TaskTemplate) *types.Keyboard {
	var rows [][]types.Button
	for _, t := range templates {
		rows = append(rows, []types.Button{{Label: "🗑 " + t.Name, Data: "template:delete_confirm:" + t.ID}})
	}
	rows = append(rows, []types.Button{{Label: "« Назад", Data: "admin:templates"}})
	return types.InlineKeyboard(rows...)
}

func workspaceManagementKeyboard() *types.Keyboard {
	return types.InlineKeyboard(
		[]types.Button{{Label: "📊 Информация о воркспейсе", Data: "workspace:info"}},
		[]types.Button{{Label: "🔗 Ссылка для приглашения", Data: "workspace:invite"}},
		[]types.Button{{Label: "👥 Управление пользователями", Data: "workspace:users"}},
		[]types.Button{{Label: "📈 Статистика", Data: "workspace:stats"}},
		[]types.Button{{Label: "🏠 Главное меню", Data: "main_menu"}},
	)
}

func onboardingKeyboard(step int) *types.Keyboard {
	switch step {
	case dialog.OnboardingFirst:
		return types.InlineKeyboard(
			[]types.Button{{Label: "Далее ➡️", Data: "onboarding:next"}},
			[]types.Button{{Label: "❓ Помощь", Data: "onboarding:help"}},
		)
	case 2:
		return types.InlineKeyboard(
			[]types.Button{{Label: "✏️ Изменить имя", Data: "onboarding:edit_name"}},
			[]types.Button{{Label: "🏢 Сменить workspace", Data: "onboarding:change_workspace"}},
			[]types.Button{
				{Label: "⬅️ Назад", Data: "onboarding:prev"},
				{Label: "Далее ➡️", Data: "onboarding:next"},
			},
		)
	case dialog.OnboardingLast:
		return types.InlineKeyboard(
			[]types.Button{{Label: "⬅️ Назад", Data: "onboarding:prev"}},
			[]types.Button{{Label: "🎉 Завершить", Data: "onboarding:complete"}},
		)
	default:
		return types.InlineKeyboard(
			[]types.Button{
				{Label: "⬅️ Назад", Data: "onboarding:prev"},
				{Label: "Далее ➡️", Data: "onboarding:next"},
			},
			[]types.Button{{Label: "❓ Помощь", Data: "onboarding:help"}},
		)
	}
}

// dialogKeyboard maps a transition's hint to the concrete keyboard.
func (b *Bot) dialogKeyboard(hint dialog.KeyboardHint) *types.Keyboard {
	switch hint {
	case dialog.KeyboardForceReply:
		return types.ForceReply()
	case dialog.KeyboardDeadlineQuick:
		return b.deadlineQuickKeyboard()
	default:
		return nil
	}
}
