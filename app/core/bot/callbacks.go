package bot

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"taskdesk/app/core/dates"
	"taskdesk/app/core/dialog"
	"taskdesk/app/core/format"
	"taskdesk/app/core/store"
	"taskdesk/app/pkg/logger"
	"taskdesk/app/pkg/types"
)

func (b *Bot) handleCallback(ctx context.Context, u types.Update) {
	data := u.Data
	switch {
	case strings.HasPrefix(data, "deadline:"):
		b.handleDeadlineCallback(ctx, u, strings.TrimPrefix(data, "deadline:"))
	case strings.HasPrefix(data, "task:"):
		b.handleTaskCallback(ctx, u, strings.TrimPrefix(data, "task:"))
	case strings.HasPrefix(data, "tasks:"):
		b.handleTaskListCallback(ctx, u, strings.TrimPrefix(data, "tasks:"))
	case strings.HasPrefix(data, "ws:join:"):
		b.handleJoinCallback(ctx, u, strings.TrimPrefix(data, "ws:join:"))
	case strings.HasPrefix(data, "role:set:"):
		b.handleRoleSet(ctx, u, strings.TrimPrefix(data, "role:set:"))
	case strings.HasPrefix(data, "issue:cat:"):
		b.handleIssueCategory(ctx, u, strings.TrimPrefix(data, "issue:cat:"))
	case strings.HasPrefix(data, "issue:status:"):
		b.handleIssueStatus(ctx, u, strings.TrimPrefix(data, "issue:status:"))
	case strings.HasPrefix(data, "onboarding:"):
		b.handleOnboarding(ctx, u, strings.TrimPrefix(data, "onboarding:"))
	case strings.HasPrefix(data, "admin:"):
		b.handleAdminCallback(ctx, u, strings.TrimPrefix(data, "admin:"))
	case strings.HasPrefix(data, "template:"):
		b.handleTemplateCallback(ctx, u, strings.TrimPrefix(data, "template:"))
	case strings.HasPrefix(data, "workspace:"):
		b.handleWorkspaceCallback(ctx, u, strings.TrimPrefix(data, "workspace:"))
	case data == "main_menu":
		b.edit(ctx, u.ChatID, u.MessageID, welcomeText, nil)
		b.answer(ctx, u.CallbackID, "")
	}
}

// taskDialogState fetches the caller's dialog when it is waiting on a
// deadline; quick-pick buttons are dead outside that step.
func (b *Bot) taskDialogState(ctx context.Context, u types.Update) (dialog.State, bool) {
	st, ok := b.dialogs.Get(u.UserID)
	if !ok || st.Action != dialog.ActionCreatingTask || st.Step != dialog.StepDeadline {
		b.answer(ctx, u.CallbackID, "Session expired")
		return dialog.State{}, false
	}
	return st, true
}

func (b *Bot) handleDeadlineCallback(ctx context.Context, u types.Update, data string) {
	st, ok := b.taskDialogState(ctx, u)
	if !ok {
		return
	}
	now := b.now()

	var deadline time.Time
	switch {
	case data == "custom":
		b.edit(ctx, u.ChatID, u.MessageID,
			"Введите дату и время:\n\nПримеры:\n• \"завтра в 15:00\"\n• \"2 октября в 18:00\"\n• \"через 5 часов\"\n• \"в пятницу в 12:00\"",
			deadlineCustomKeyboard())
		b.answer(ctx, u.CallbackID, "")
		return
	case data == "quick":
		b.edit(ctx, u.ChatID, u.MessageID, "Когда нужно сделать?", b.deadlineQuickKeyboard())
		b.answer(ctx, u.CallbackID, "")
		return
	case data == "relative:3h":
		deadline = now.Add(3 * time.Hour)
	case data == "relative:1d":
		tomorrow := now.AddDate(0, 0, 1)
		deadline = time.Date(tomorrow.Year(), tomorrow.Month(), tomorrow.Day(), 18, 0, 0, 0, now.Location())
	default:
		// today:HH:MM or tomorrow:HH:MM
		parts := strings.Split(data, ":")
		if len(parts) != 3 {
			b.answer(ctx, u.CallbackID, "Ошибка")
			return
		}
		hour, errH := strconv.Atoi(parts[1])
		minute, errM := strconv.Atoi(parts[2])
		if errH != nil || errM != nil {
			b.answer(ctx, u.CallbackID, "Ошибка")
			return
		}
		day := now
		if parts[0] == "tomorrow" {
			day = now.AddDate(0, 0, 1)
		}
		deadline = time.Date(day.Year(), day.Month(), day.Day(), hour, minute, 0, 0, now.Location())
	}

	next, ok := dialog.ApplyQuickDeadline(st, deadline, now)
	if !ok {
		b.answer(ctx, u.CallbackID, "Дата в прошлом")
		return
	}
	b.edit(ctx, u.ChatID, u.MessageID, fmt.Sprintf("Дедлайн установлен: %s\n\nЗадача будет создана.", dates.FormatDeadline(deadline)), nil)
	b.answer(ctx, u.CallbackID, "")
	b.finishTask(ctx, u, next)
}

func (b *Bot) handleTaskCallback(ctx context.Context, u types.Update, data string) {
	action, taskID, ok := strings.Cut(data, ":")
	if !ok {
		return
	}

	switch action {
	case "view":
		task, err := b.records.TaskByID(ctx, taskID)
		if err != nil {
			b.answer(ctx, u.CallbackID, "Не удалось загрузить задачу")
			return
		}
		b.edit(ctx, u.ChatID, u.MessageID, format.SimpleTaskCard(task), simpleTaskKeyboard(taskID))
		b.answer(ctx, u.CallbackID, "")

	case "complete":
		b.completeTask(ctx, u, taskID)

	case "issue":
		task, err := b.records.TaskByID(ctx, taskID)
		if err != nil {
			b.answer(ctx, u.CallbackID, "Не удалось сообщить о проблеме")
			return
		}
		if err := b.records.SetTaskStatus(ctx, task.ID, store.TaskPendingReview); err != nil {
			logger.Error("mark task %s pending failed: %v", task.ID, err)
		}
		b.dialogs.Set(u.UserID, dialog.NewIssueState(taskID))
		b.edit(ctx, u.ChatID, u.MessageID, "Задача отмечена с проблемами. Опишите проблему:", nil)
		b.send(ctx, u.ChatID, dialog.PromptIssueCategory, issueCategoriesKeyboard())
		b.answer(ctx, u.CallbackID, "")

	case "approve":
		b.reviewTask(ctx, u, taskID, true)

	case "reject":
		b.reviewTask(ctx, u, taskID, false)

	case "details":
		task, err := b.records.TaskByID(ctx, taskID)
		if err != nil {
			b.answer(ctx, u.CallbackID, "Не удалось загрузить детали")
			return
		}
		text := format.TaskDetails(task, b.now())
		if isMobileName(u.Username) {
			text = format.ShortenMessage(text, 0)
		}
		b.edit(ctx, u.ChatID, u.MessageID, text, taskDetailsKeyboard(taskID))
		b.answer(ctx, u.CallbackID, "")

	case "remind":
		b.remindTask(ctx, u, taskID)
	}
}

// completeTask moves the task to review and pings the admin with the
// approve and reject buttons.
func (b *Bot) completeTask(ctx context.Context, u types.Update, taskID string) {
	task, err := b.records.TaskByID(ctx, taskID)
	if err != nil {
		b.answer(ctx, u.CallbackID, "Не удалось завершить задачу")
		return
	}
	if err := b.records.SetTaskStatus(ctx, taskID, store.TaskPendingReview); err != nil {
		logger.Error("mark task %s pending failed: %v", taskID, err)
		b.answer(ctx, u.CallbackID, "Не удалось завершить задачу")
		return
	}

	if adminChat := b.adminChatID(ctx); adminChat != "" {
		assignee := task.AssignedTo.Username
		if assignee == "" {
			assignee = "unknown"
		}
		b.send(ctx, adminChat, fmt.Sprintf("📝 Задача выполнена, ожидает проверки\n\nНазвание: %s\nИсполнитель: @%s\n\nГотова для проверки администратором.",
			task.Title, assignee), reviewActionsKeyboard(taskID))
	}
	b.edit(ctx, u.ChatID, u.MessageID, "✅ Задача выполнена! Отправлена на проверку администратору.", nil)
	b.answer(ctx, u.CallbackID, "")
}

// reviewTask applies the admin's verdict and tells the assignee.
func (b *Bot) reviewTask(ctx context.Context, u types.Update, taskID string, approve bool) {
	if !b.isAdmin(ctx, u) {
		b.answer(ctx, u.CallbackID, "Недостаточно прав")
		return
	}
	status := store.TaskApproved
	if !approve {
		status = store.TaskRejected
	}
	if err := b.records.SetTaskStatus(ctx, taskID, status); err != nil {
		logger.Error("set task %s status %s failed: %v", taskID, status, err)
		b.answer(ctx, u.CallbackID, "Не удалось обновить задачу")
		return
	}
	task, err := b.records.TaskByID(ctx, taskID)
	if err != nil {
		b.answer(ctx, u.CallbackID, "Не удалось загрузить задачу")
		return
	}

	assignee := task.AssignedTo.Username
	if assignee == "" {
		assignee = "unknown"
	}
	if task.AssignedTo.TelegramID != "" {
		if approve {
			b.send(ctx, task.AssignedTo.TelegramID, fmt.Sprintf("✅ Задача одобрена!\n\n\"%s\"\n\nЗадача выполнена успешно.", task.Title), nil)
		} else {
			b.send(ctx, task.AssignedTo.TelegramID, fmt.Sprintf("❌ Требуются изменения по задаче\n\n\"%s\"\n\nПожалуйста, пересмотрите и отправьте заново.", task.Title), nil)
		}
	}

	verdict := "✅ Одобрено"
	if !approve {
		verdict = "❌ Требуются изменения"
	}
	b.edit(ctx, u.ChatID, u.MessageID, fmt.Sprintf("%s @%s\n\nЗадача: %s\nИсполнитель: @%s",
		verdict, displayName(u), task.Title, assignee), nil)
	b.answer(ctx, u.CallbackID, "")
}

// remindTask sends the nudge and bumps a not-started task into
// progress. The status write is best effort.
func (b *Bot) remindTask(ctx context.Context, u types.Update, taskID string) {
	task, err := b.records.TaskByID(ctx, taskID)
	if err != nil {
		b.answer(ctx, u.CallbackID, "Не удалось отправить напоминание")
		return
	}
	if task.AssignedTo.TelegramID == "" {
		b.answer(ctx, u.CallbackID, "Пользователь не найден")
		return
	}

	b.send(ctx, task.AssignedTo.TelegramID, format.ReminderMessage(task, displayName(u), b.now(), isMobileName(task.AssignedTo.Username)), nil)
	b.answer(ctx, u.CallbackID, "Напоминание отправлено!")

	if task.Status == store.TaskAssigned {
		if err := b.records.SetTaskStatus(ctx, taskID, store.TaskInProgress); err != nil {
			logger.Error("bump task %s to in_progress failed: %v", taskID, err)
		}
	}
}

// workspaceOfCallback is workspaceOf for button presses: failures go
// to the callback toast, not the chat.
func (b *Bot) workspaceOfCallback(ctx context.Context, u types.Update) (store.User, bool) {
	me, err := b.records.UserByTelegramID(ctx, u.UserID)
	if err != nil || me.WorkspaceID == "" {
		b.answer(ctx, u.CallbackID, "Нет рабочего пространства")
		return store.User{}, false
	}
	return me, true
}

func (b *Bot) handleTaskListCallback(ctx context.Context, u types.Update, data string) {
	if data == "archive" {
		b.answer(ctx, u.CallbackID, "Архив пока не реализован")
		return
	}
	if !b.isAdmin(ctx, u) {
		b.answer(ctx, u.CallbackID, "Недостаточно прав")
		return
	}
	me, ok := b.workspaceOfCallback(ctx, u)
	if !ok {
		return
	}

	switch {
	case data == "list":
		b.renderTaskList(ctx, u, me.WorkspaceID, "all", "deadline")
	case strings.HasPrefix(data, "filter:"):
		b.renderTaskList(ctx, u, me.WorkspaceID, strings.TrimPrefix(data, "filter:"), "deadline")
	case strings.HasPrefix(data, "sort:"):
		b.renderTaskList(ctx, u, me.WorkspaceID, "all", strings.TrimPrefix(data, "sort:"))
	}
}

func (b *Bot) renderTaskList(ctx context.Context, u types.Update, workspaceID, filter, sortKey string) {
	storeFilter := store.TaskFilter{Now: b.now()}
	if filter != "all" {
		storeFilter.Status = filter
	}
	tasks, err := b.records.WorkspaceTasks(ctx, workspaceID, storeFilter)
	if err != nil {
		logger.Error("load workspace tasks failed: %v", err)
		b.answer(ctx, u.CallbackID, "Ошибка загрузки")
		return
	}
	sortTasks(tasks, sortKey)
	b.edit(ctx, u.ChatID, u.MessageID, format.TaskList(tasks, b.now(), isMobileName(u.Username)), taskListKeyboard(tasks, filter, sortKey, b))
	b.answer(ctx, u.CallbackID, "")
}

var statusOrder = map[string]int{
	store.TaskAssigned:      1,
	store.TaskInProgress:    2,
	store.TaskPendingReview: 3,
	store.TaskApproved:      4,
	store.TaskRejected:      5,
}

// sortTasks orders in place; tasks without deadlines sink to the end
// of the deadline sort.
func sortTasks(tasks []store.Task, key string) {
	switch key {
	case "deadline":
		sort.SliceStable(tasks, func(i, j int) bool {
			a, b := tasks[i].Deadline, tasks[j].Deadline
			if a.IsZero() {
				return false
			}
			if b.IsZero() {
				return true
			}
			return a.Before(b)
		})
	case "status":
		sort.SliceStable(tasks, func(i, j int) bool {
			return orderOf(tasks[i].Status) < orderOf(tasks[j].Status)
		})
	case "assignee":
		sort.SliceStable(tasks, func(i, j int) bool {
			return tasks[i].AssignedTo.Username < tasks[j].AssignedTo.Username
		})
	}
}

func orderOf(status string) int {
	if n, ok := statusOrder[status]; ok {
		return n
	}
	return 999
}

func (b *Bot) handleJoinCallback(ctx context.Context, u types.Update, code string) {
	ws, err := b.records.WorkspaceByInviteCode(ctx, code)
	if err != nil {
		b.answer(ctx, u.CallbackID, "Ссылка недействительна")
		return
	}
	if err := b.joinWorkspace(ctx, u, ws); err != nil {
		logger.Error("join workspace failed: %v", err)
		b.answer(ctx, u.CallbackID, "Не удалось присоединиться")
		return
	}
	b.edit(ctx, u.ChatID, u.MessageID, fmt.Sprintf("✅ Присоединились к рабочему пространству: %s", ws.Name), nil)
	b.send(ctx, u.ChatID, "Теперь вы можете видеть и выполнять задачи!", mainMenu())
	b.answer(ctx, u.CallbackID, "")
}

func (b *Bot) handleRoleSet(ctx context.Context, u types.Update, data string) {
	if !b.isAdmin(ctx, u) {
		b.answer(ctx, u.CallbackID, "Not allowed")
		return
	}
	userID, roleStr, ok := strings.Cut(data, ":")
	if !ok {
		b.answer(ctx, u.CallbackID, "Failed")
		return
	}
	roleID, err := strconv.ParseInt(roleStr, 10, 64)
	if err != nil {
		b.answer(ctx, u.CallbackID, "Failed")
		return
	}
	if err := b.records.AssignRole(ctx, userID, roleID); err != nil {
		logger.Error("assign role failed: %v", err)
		b.answer(ctx, u.CallbackID, "Failed")
		return
	}
	b.answer(ctx, u.CallbackID, "Role assigned")
}

func (b *Bot) handleIssueCategory(ctx context.Context, u types.Update, category string) {
	st, ok := b.dialogs.Get(u.UserID)
	if !ok {
		b.answer(ctx, u.CallbackID, "Сессия истекла")
		return
	}
	next, ok := dialog.SetIssueCategory(st, category)
	if !ok {
		b.answer(ctx, u.CallbackID, "Сессия истекла")
		return
	}
	b.dialogs.Set(u.UserID, next)
	b.edit(ctx, u.ChatID, u.MessageID, fmt.Sprintf("Категория: %s\nОпишите проблему (текст):", category), nil)
	b.answer(ctx, u.CallbackID, "")
}

func (b *Bot) handleIssueStatus(ctx context.Context, u types.Update, data string) {
	if !b.isAdmin(ctx, u) {
		b.answer(ctx, u.CallbackID, "Not allowed")
		return
	}
	issueID, status, ok := strings.Cut(data, ":")
	if !ok {
		b.answer(ctx, u.CallbackID, "Failed")
		return
	}
	switch status {
	case store.IssueNew, store.IssueInProgress, store.IssueResolved:
	default:
		b.answer(ctx, u.CallbackID, "Failed")
		return
	}
	if err := b.records.SetIssueStatus(ctx, issueID, status); err != nil {
		logger.Error("set issue %s status failed: %v", issueID, err)
		b.answer(ctx, u.CallbackID, "Failed")
		return
	}
	b.answer(ctx, u.CallbackID, "Updated")
}

func (b *Bot) handleOnboarding(ctx context.Context, u types.Update, action string) {
	st, ok := b.dialogs.Get(u.UserID)
	if !ok || st.Action != dialog.ActionOnboarding {
		b.answer(ctx, u.CallbackID, "Сессия истекла. Отправьте /start снова.")
		return
	}

	r := dialog.AdvanceOnboarding(st, action)
	switch r.Show {
	case dialog.ShowStep:
		b.dialogs.Set(u.UserID, r.Next)
		b.edit(ctx, u.ChatID, u.MessageID, dialog.OnboardingStepText(r.Next.Cursor, r.Next.Data), onboardingKeyboard(r.Next.Cursor))
	case dialog.ShowHelp:
		b.edit(ctx, u.ChatID, u.MessageID, dialog.HelpText(), types.InlineKeyboard(
			[]types.Button{{Label: "🔙 Назад к онбордингу", Data: "onboarding:back"}},
		))
	case dialog.ShowNote:
		b.edit(ctx, u.ChatID, u.MessageID, r.Note, nil)
	case dialog.ShowEditPrompt:
		b.dialogs.Set(u.UserID, r.Next)
		b.edit(ctx, u.ChatID, u.MessageID, r.Note, nil)
	case dialog.ShowComplete:
		b.dialogs.Delete(u.UserID)
		b.edit(ctx, u.ChatID, u.MessageID, "🎉 Онбординг завершен!\n\n"+welcomeText, types.InlineKeyboard(
			[]types.Button{{Label: "🏠 Главное меню", Data: "main_menu"}},
		))
	}
	b.answer(ctx, u.CallbackID, "")
}

func (b *Bot) handleAdminCallback(ctx context.Context, u types.Update, action string) {
	if !b.isAdmin(ctx, u) {
		b.answer(ctx, u.CallbackID, "Недостаточно прав")
		return
	}

	switch action {
	case "create_task":
		b.startTaskDialog(ctx, u, true)
		b.answer(ctx, u.CallbackID, "")

	case "menu":
		b.edit(ctx, u.ChatID, u.MessageID, "🏢 **Админ-панель**\n\nВыберите действие:", adminMenuKeyboard())
		b.answer(ctx, u.CallbackID, "")

	case "create_workspace":
		b.dialogs.Set(u.UserID, dialog.NewWorkspaceState())
		b.edit(ctx, u.ChatID, u.MessageID, dialog.PromptWorkspaceName, nil)
		b.answer(ctx, u.CallbackID, "")

	case "my_tasks":
		me, ok := b.workspaceOfCallback(ctx, u)
		if !ok {
			return
		}
		b.renderTaskList(ctx, u, me.WorkspaceID, "all", "deadline")

	case "stats":
		b.renderWorkspaceInfo(ctx, u, backToAdminMenuKeyboard())

	case "issues":
		b.renderIssueSummary(ctx, u)

	case "manage_users":
		me, ok := b.workspaceOfCallback(ctx, u)
		if !ok {
			return
		}
		b.renderUserSummary(ctx, u, me.WorkspaceID)

	case "templates":
		b.renderTemplates(ctx, u)
	}
}

func (b *Bot) renderWorkspaceInfo(ctx context.Context, u types.Update, kb *types.Keyboard) {
	me, ok := b.workspaceOfCallback(ctx, u)
	if !ok {
		return
	}
	ws, err := b.records.WorkspaceByID(ctx, me.WorkspaceID)
	if err != nil {
		b.answer(ctx, u.CallbackID, "Не удалось загрузить статистику")
		return
	}
	stats, err := b.records.TaskStats(ctx, me.WorkspaceID, b.now())
	if err != nil {
		b.answer(ctx, u.CallbackID, "Не удалось загрузить статистику")
		return
	}
	members, err := b.records.UsersByWorkspace(ctx, me.WorkspaceID)
	if err != nil {
		b.answer(ctx, u.CallbackID, "Не удалось загрузить статистику")
		return
	}
	b.edit(ctx, u.ChatID, u.MessageID, format.WorkspaceInfo(ws, stats, members), kb)
	b.answer(ctx, u.CallbackID, "")
}

func (b *Bot) renderIssueSummary(ctx context.Context, u types.Update) {
	me, ok := b.workspaceOfCallback(ctx, u)
	if !ok {
		return
	}
	issues, err := b.records.WorkspaceIssues(ctx, me.WorkspaceID)
	if err != nil {
		b.answer(ctx, u.CallbackID, "Не удалось загрузить проблемы")
		return
	}
	if len(issues) == 0 {
		b.edit(ctx, u.ChatID, u.MessageID, "🚨 **Проблемы**\n\nНет активных проблем.", backToAdminMenuKeyboard())
		b.answer(ctx, u.CallbackID, "")
		return
	}

	var sb strings.Builder
	sb.WriteString("🚨 **Проблемы**\n\n")
	for _, issue := range issues {
		icon := "🔴"
		switch issue.Status {
		case store.IssueResolved:
			icon = "✅"
		case store.IssueInProgress:
			icon = "🟡"
		}
		fmt.Fprintf(&sb, "%s **%s**\nСтатус: %s\n", icon, issue.Category, issue.Status)
		if issue.Description != "" {
			fmt.Fprintf(&sb, "Описание: %s\n", format.ShortenMessage(issue.Description, 100))
		}
		sb.WriteString("\n")
	}
	b.edit(ctx, u.ChatID, u.MessageID, sb.String(), backToAdminMenuKeyboard())
	b.answer(ctx, u.CallbackID, "")
}

func (b *Bot) renderUserSummary(ctx context.Context, u types.Update, workspaceID string) {
	members, err := b.records.UsersByWorkspace(ctx, workspaceID)
	if err != nil {
		b.answer(ctx, u.CallbackID, "Не удалось загрузить пользователей")
		return
	}
	if len(members) == 0 {
		b.edit(ctx, u.ChatID, u.MessageID, "👥 **Управление пользователями**\n\nВ workspace пока нет пользователей.", backToAdminMenuKeyboard())
		b.answer(ctx, u.CallbackID, "")
		return
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "👥 **Управление пользователями**\n\nВсего пользователей: %d\n\n", len(members))
	for i, member := range members {
		name := member.Username
		if name == "" {
			name = "user"
		}
		role, err := b.records.UserRoleName(ctx, member.ID)
		if err != nil || role == "" {
			role = "Без роли"
		}
		fmt.Fprintf(&sb, "%d. @%s\n   Роль: %s\n   ID: %s\n\n", i+1, name, role, member.TelegramID)
	}
	b.edit(ctx, u.ChatID, u.MessageID, sb.String(), backToAdminMenuKeyboard())
	b.answer(ctx, u.CallbackID, "")
}

func (b *Bot) renderTemplates(ctx context.Context, u types.Update) {
	me, ok := b.workspaceOfCallback(ctx, u)
	if !ok {
		return
	}
	templates, err := b.records.TaskTemplates(ctx, me.WorkspaceID)
	if err != nil {
		b.answer(ctx, u.CallbackID, "Не удалось загрузить шаблоны")
		return
	}
	b.edit(ctx, u.ChatID, u.MessageID, "📋 **Типовые задачи**\n\nВыберите шаблон или создайте новый:", templatesListKeyboard(templates))
	b.answer(ctx, u.CallbackID, "")
}

func (b *Bot) handleTemplateCallback(ctx context.Context, u types.Update, data string) {
	if !b.isAdmin(ctx, u) {
		b.answer(ctx, u.CallbackID, "Недостаточно прав")
		return
	}

	switch {
	case data == "create":
		b.dialogs.Set(u.UserID, dialog.NewTemplateState())
		b.edit(ctx, u.ChatID, u.MessageID, dialog.PromptTemplateName, nil)
		b.answer(ctx, u.CallbackID, "")

	case data == "delete":
		me, ok := b.workspaceOfCallback(ctx, u)
		if !ok {
			return
		}
		templates, err := b.records.TaskTemplates(ctx, me.WorkspaceID)
		if err != nil {
			b.answer(ctx, u.CallbackID, "Не удалось загрузить шаблоны")
			return
		}
		b.edit(ctx, u.ChatID, u.MessageID, "🗑 Какой шаблон удалить?", templatesDeleteKeyboard(templates))
		b.answer(ctx, u.CallbackID, "")

	case strings.HasPrefix(data, "delete_confirm:"):
		templateID := strings.TrimPrefix(data, "delete_confirm:")
		if err := b.records.DeleteTaskTemplate(ctx, templateID); err != nil {
			logger.Error("delete template %s failed: %v", templateID, err)
			b.answer(ctx, u.CallbackID, "Не удалось удалить шаблон")
			return
		}
		b.answer(ctx, u.CallbackID, "Шаблон удален")
		b.renderTemplates(ctx, u)

	case strings.HasPrefix(data, "use:"):
		b.useTemplate(ctx, u, strings.TrimPrefix(data, "use:"))
	}
}

// useTemplate starts a task dialog with the template's title and
// description already filled, so the admin only picks the assignee and
// deadline.
func (b *Bot) useTemplate(ctx context.Context, u types.Update, templateID string) {
	tpl, err := b.records.TaskTemplateByID(ctx, templateID)
	if err != nil {
		b.answer(ctx, u.CallbackID, "Шаблон не найден")
		return
	}

	now := b.now()
	st := dialog.NewTaskState()
	r := dialog.AdvanceTask(st, tpl.Title, now)
	r = dialog.AdvanceTask(r.Next, tpl.Description, now)
	b.dialogs.Set(u.UserID, r.Next)
	b.edit(ctx, u.ChatID, u.MessageID, fmt.Sprintf("📋 Шаблон: %s\n\n%s", tpl.Name, r.Prompt), nil)
	b.answer(ctx, u.CallbackID, "")
}

func (b *Bot) handleWorkspaceCallback(ctx context.Context, u types.Update, action string) {
	if !b.isAdmin(ctx, u) {
		b.answer(ctx, u.CallbackID, "Недостаточно прав")
		return
	}

	switch action {
	case "management":
		b.edit(ctx, u.ChatID, u.MessageID, "🏢 **Панель управления**\n\nВыберите раздел:", workspaceManagementKeyboard())
		b.answer(ctx, u.CallbackID, "")

	case "info":
		b.renderWorkspaceInfo(ctx, u, workspaceManagementKeyboard())

	case "invite":
		me, ok := b.workspaceOfCallback(ctx, u)
		if !ok {
			return
		}
		ws, err := b.records.WorkspaceByID(ctx, me.WorkspaceID)
		if err != nil {
			b.answer(ctx, u.CallbackID, "Ошибка генерации ссылки")
			return
		}
		b.edit(ctx, u.ChatID, u.MessageID, format.InviteInfo(ws.Name, ws.InviteCode, b.cfg.BotUsername), workspaceManagementKeyboard())
		b.answer(ctx, u.CallbackID, "")

	case "users":
		me, ok := b.workspaceOfCallback(ctx, u)
		if !ok {
			return
		}
		b.renderUserSummary(ctx, u, me.WorkspaceID)

	case "stats":
		me, ok := b.workspaceOfCallback(ctx, u)
		if !ok {
			return
		}
		stats, err := b.records.TaskStats(ctx, me.WorkspaceID, b.now())
		if err != nil {
			b.answer(ctx, u.CallbackID, "Не удалось загрузить статистику")
			return
		}
		b.edit(ctx, u.ChatID, u.MessageID, format.StatsBox(stats), workspaceManagementKeyboard())
		b.answer(ctx, u.CallbackID, "")
	}
}
