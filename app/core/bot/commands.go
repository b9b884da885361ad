package bot

import (
	"context"
	"fmt"
	"strings"

	"taskdesk/app/core/dialog"
	"taskdesk/app/core/format"
	"taskdesk/app/core/store"
	"taskdesk/app/pkg/logger"
	"taskdesk/app/pkg/types"
)

const welcomeText = "Добро пожаловать в систему управления задачами!\n\nИспользуйте меню для управления задачами и другими функциями."

// menuLabels lists the reply-keyboard captions that act as commands
// even while a dialog is collecting input.
var menuLabels = map[string]bool{
	btnProfile:       true,
	btnCreateTask:    true,
	btnAdminTasks:    true,
	btnMemberTasks:   true,
	btnStats:         true,
	btnJoinWorkspace: true,
	btnReportIssue:   true,
	btnAddChecklist:  true,
	btnManageUsers:   true,
	btnIssues:        true,
}

// isMenuInput reports whether text must bypass an active dialog.
// /skip stays with the dialog: it belongs to the issue photo step.
func isMenuInput(text string) bool {
	if text == "/skip" {
		return false
	}
	return strings.HasPrefix(text, "/") || menuLabels[text]
}

func (b *Bot) handleText(ctx context.Context, u types.Update) {
	text := strings.TrimSpace(u.Text)
	if text == "" {
		return
	}

	// Slash commands and menu buttons take precedence over an active
	// dialog, so a half-finished flow can be abandoned by picking
	// another action. Everything else feeds the dialog first.
	if !isMenuInput(text) {
		if st, ok := b.dialogs.Get(u.UserID); ok {
			if b.advanceDialog(ctx, u, st, text) {
				return
			}
		}
	}

	if strings.HasPrefix(text, "/start") {
		b.handleStart(ctx, u, strings.TrimSpace(strings.TrimPrefix(text, "/start")))
		return
	}

	switch text {
	case "/help":
		b.send(ctx, u.ChatID, dialog.HelpText(), nil)
	case "/admin":
		b.handleAdminPanel(ctx, u)
	case "/profile", btnProfile:
		b.handleProfile(ctx, u)
	case btnCreateTask:
		b.startTaskDialog(ctx, u, false)
	case btnAdminTasks:
		b.handleAdminTasks(ctx, u)
	case btnMemberTasks:
		b.handleMemberTasks(ctx, u)
	case btnStats:
		b.handleStats(ctx, u)
	case btnJoinWorkspace:
		b.dialogs.Set(u.UserID, dialog.NewJoinState())
		b.send(ctx, u.ChatID, dialog.PromptJoinCode, types.ForceReply())
	case btnReportIssue:
		b.dialogs.Set(u.UserID, dialog.NewIssueState(""))
		b.send(ctx, u.ChatID, dialog.PromptIssueCategory, issueCategoriesKeyboard())
	case btnAddChecklist:
		if !b.isAdmin(ctx, u) {
			return
		}
		b.dialogs.Set(u.UserID, dialog.NewChecklistState())
		b.send(ctx, u.ChatID, dialog.PromptChecklistName, types.ForceReply())
	case "/issues", btnIssues:
		b.handleIssueList(ctx, u)
	case btnManageUsers:
		b.handleManageUsers(ctx, u)
	case "/create_workspace":
		if !b.isAdmin(ctx, u) {
			return
		}
		b.dialogs.Set(u.UserID, dialog.NewWorkspaceState())
		b.send(ctx, u.ChatID, dialog.PromptWorkspaceName, types.ForceReply())
	}
}

// handleStart registers the user, honors invite deep links and either
// starts the onboarding tour for newcomers or shows the main menu.
func (b *Bot) handleStart(ctx context.Context, u types.Update, payload string) {
	me, isNew, err := b.records.EnsureUser(ctx, u.UserID, displayName(u))
	if err != nil {
		logger.Error("register user %s failed: %v", u.UserID, err)
		b.send(ctx, u.ChatID, "Что-то пошло не так. Попробуйте позже.", nil)
		return
	}

	if code, ok := strings.CutPrefix(payload, "invite_"); ok {
		code = strings.ToUpper(strings.TrimSpace(code))
		ws, err := b.records.WorkspaceByInviteCode(ctx, code)
		if err != nil {
			b.send(ctx, u.ChatID, "Ссылка-приглашение недействительна или истекла.", nil)
			return
		}
		b.send(ctx, u.ChatID, fmt.Sprintf("Рабочее пространство: %s\nЧасовой пояс: %s", ws.Name, ws.Timezone), joinWorkspaceKeyboard(code))
		return
	}

	if isNew || payload == "onboarding" {
		b.startOnboarding(ctx, u, me)
		return
	}

	menu := mainMenu()
	if b.isAdmin(ctx, u) {
		menu = adminMainMenu()
	}
	b.send(ctx, u.ChatID, welcomeText, menu)
}

func (b *Bot) startOnboarding(ctx context.Context, u types.Update, me store.User) {
	workspace := "Не выбрано"
	if me.WorkspaceID != "" {
		workspace = "Подключено"
	}
	st := dialog.NewOnboardingState(displayName(u), u.UserID, workspace)
	b.dialogs.Set(u.UserID, st)
	logger.Info("onboarding started for user %s", u.UserID)
	b.send(ctx, u.ChatID, dialog.OnboardingStepText(st.Cursor, st.Data), onboardingKeyboard(st.Cursor))
}

func (b *Bot) startTaskDialog(ctx context.Context, u types.Update, edit bool) {
	if !b.isAdmin(ctx, u) {
		b.answer(ctx, u.CallbackID, "Недостаточно прав")
		return
	}
	b.dialogs.Set(u.UserID, dialog.NewTaskState())
	if edit {
		b.edit(ctx, u.ChatID, u.MessageID, dialog.PromptTaskTitle, nil)
		return
	}
	b.send(ctx, u.ChatID, dialog.PromptTaskTitle, types.ForceReply())
}

func (b *Bot) handleAdminPanel(ctx context.Context, u types.Update) {
	if !b.isAdmin(ctx, u) {
		b.send(ctx, u.ChatID, "❌ У вас нет доступа к админ-панели.", nil)
		return
	}
	b.send(ctx, u.ChatID, "🏢 **Админ-панель**\n\nВыберите действие:", adminMenuKeyboard())
}

func (b *Bot) handleProfile(ctx context.Context, u types.Update) {
	me, _, err := b.records.EnsureUser(ctx, u.UserID, displayName(u))
	if err != nil {
		logger.Error("profile lookup failed: %v", err)
		b.send(ctx, u.ChatID, "Не удалось загрузить профиль.", nil)
		return
	}

	workspaceName := ""
	if me.WorkspaceID != "" {
		if ws, err := b.records.WorkspaceByID(ctx, me.WorkspaceID); err == nil {
			workspaceName = ws.Name
		}
	}
	roleName, err := b.records.UserRoleName(ctx, me.ID)
	if err != nil {
		logger.Error("role lookup failed: %v", err)
	}
	b.send(ctx, u.ChatID, format.Profile(me.Username, roleName, workspaceName), nil)
}

// workspaceOf returns the caller's record when it has a workspace, or
// sends the join-first nudge and reports false.
func (b *Bot) workspaceOf(ctx context.Context, u types.Update) (store.User, bool) {
	me, err := b.records.UserByTelegramID(ctx, u.UserID)
	if err != nil || me.WorkspaceID == "" {
		b.send(ctx, u.ChatID, "Сначала присоединитесь к рабочему пространству.", nil)
		return store.User{}, false
	}
	return me, true
}

func (b *Bot) handleAdminTasks(ctx context.Context, u types.Update) {
	if !b.isAdmin(ctx, u) {
		return
	}
	me, ok := b.workspaceOf(ctx, u)
	if !ok {
		return
	}
	tasks, err := b.records.WorkspaceTasks(ctx, me.WorkspaceID, store.TaskFilter{})
	if err != nil {
		logger.Error("load workspace tasks failed: %v", err)
		b.send(ctx, u.ChatID, "Не удалось загрузить задачи.", nil)
		return
	}
	b.send(ctx, u.ChatID, format.TaskList(tasks, b.now(), isMobileName(u.Username)), taskListKeyboard(tasks, "all", "deadline", b))
}

func (b *Bot) handleMemberTasks(ctx context.Context, u types.Update) {
	me, err := b.records.UserByTelegramID(ctx, u.UserID)
	if err != nil || me.WorkspaceID == "" {
		b.send(ctx, u.ChatID, "Присоединитесь к рабочему пространству чтобы видеть задачи.", nil)
		return
	}
	tasks, err := b.records.UserTasks(ctx, me.ID)
	if err != nil {
		logger.Error("load user tasks failed: %v", err)
		b.send(ctx, u.ChatID, "Не удалось загрузить задачи.", nil)
		return
	}
	if len(tasks) == 0 {
		b.send(ctx, u.ChatID, "У вас пока нет назначенных задач.", nil)
		return
	}
	b.send(ctx, u.ChatID, format.TaskList(tasks, b.now(), isMobileName(u.Username)), taskListKeyboard(tasks, "all", "deadline", b))
}

func (b *Bot) handleStats(ctx context.Context, u types.Update) {
	if !b.isAdmin(ctx, u) {
		return
	}
	me, ok := b.workspaceOf(ctx, u)
	if !ok {
		return
	}
	stats, err := b.records.TaskStats(ctx, me.WorkspaceID, b.now())
	if err != nil {
		logger.Error("load stats failed: %v", err)
		b.send(ctx, u.ChatID, "Не удалось загрузить статистику.", nil)
		return
	}
	b.send(ctx, u.ChatID, format.StatsBox(stats), nil)
}

// handleIssueList replies with one message per issue so each carries
// its own action buttons.
func (b *Bot) handleIssueList(ctx context.Context, u types.Update) {
	if !b.isAdmin(ctx, u) {
		return
	}
	me, ok := b.workspaceOf(ctx, u)
	if !ok {
		return
	}
	issues, err := b.records.WorkspaceIssues(ctx, me.WorkspaceID)
	if err != nil {
		logger.Error("load issues failed: %v", err)
		b.send(ctx, u.ChatID, "Не удалось загрузить проблемы.", nil)
		return
	}
	if len(issues) == 0 {
		b.send(ctx, u.ChatID, "Нет проблем.", nil)
		return
	}
	for _, issue := range issues {
		b.send(ctx, u.ChatID, format.IssueLine(issue), issueActionsKeyboard(issue.ID))
	}
}

// handleManageUsers lists workspace members, each with role buttons.
func (b *Bot) handleManageUsers(ctx context.Context, u types.Update) {
	if !b.isAdmin(ctx, u) {
		return
	}
	me, ok := b.workspaceOf(ctx, u)
	if !ok {
		return
	}
	members, err := b.records.UsersByWorkspace(ctx, me.WorkspaceID)
	if err != nil {
		logger.Error("load members failed: %v", err)
		b.send(ctx, u.ChatID, "Не удалось загрузить пользователей.", nil)
		return
	}
	roles, err := b.records.ListRoles(ctx)
	if err != nil {
		logger.Error("load roles failed: %v", err)
		b.send(ctx, u.ChatID, "Не удалось загрузить роли.", nil)
		return
	}
	if len(roles) > 5 {
		roles = roles[:5]
	}
	for _, member := range members {
		buttons := make([]types.Button, 0, len(roles))
		for _, role := range roles {
			buttons = append(buttons, types.Button{
				Label: role.Name,
				Data:  fmt.Sprintf("role:set:%s:%d", member.ID, role.ID),
			})
		}
		b.send(ctx, u.ChatID, format.MemberLine(member), types.InlineKeyboard(format.ChunkButtons(buttons, 0)...))
	}
}

// handlePhoto is only meaningful while an issue report waits for its
// photo; other photos are dropped.
func (b *Bot) handlePhoto(ctx context.Context, u types.Update) {
	st, ok := b.dialogs.Get(u.UserID)
	if !ok || st.Action != dialog.ActionReportingIssue || st.Step != dialog.StepPhoto {
		return
	}
	photoURL, err := b.chat.FileURL(ctx, u.PhotoID)
	if err != nil {
		logger.Error("resolve photo url failed: %v", err)
		photoURL = ""
	}
	next, ok := dialog.FinishIssue(st, photoURL)
	if !ok {
		return
	}
	b.finishIssue(ctx, u, next)
}
