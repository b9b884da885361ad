package bot

import (
	"context"
	"fmt"
	"strconv"

	"taskdesk/app/core/dates"
	"taskdesk/app/core/dialog"
	"taskdesk/app/core/format"
	"taskdesk/app/core/store"
	"taskdesk/app/pkg/logger"
	"taskdesk/app/pkg/types"
)

// advanceDialog feeds one text input into the user's active dialog.
// Returns false when the input does not belong to the dialog and
// should fall through to command handling.
func (b *Bot) advanceDialog(ctx context.Context, u types.Update, st dialog.State, text string) bool {
	switch st.Action {
	case dialog.ActionCreatingTask:
		r := dialog.AdvanceTask(st, text, b.now())
		return b.applyResult(ctx, u, r, b.finishTask)
	case dialog.ActionJoiningWorkspace:
		r := dialog.AdvanceJoinCode(st, text)
		return b.applyResult(ctx, u, r, b.finishJoin)
	case dialog.ActionCreatingWorkspace:
		r := dialog.AdvanceWorkspaceName(st, text)
		return b.applyResult(ctx, u, r, b.finishWorkspace)
	case dialog.ActionCreatingTemplate:
		r := dialog.AdvanceTemplate(st, text)
		return b.applyResult(ctx, u, r, b.finishTemplate)
	case dialog.ActionCreatingChecklist:
		r := dialog.AdvanceChecklist(st, text)
		return b.applyResult(ctx, u, r, b.finishChecklist)
	case dialog.ActionReportingIssue:
		return b.advanceIssueDialog(ctx, u, st, text)
	case dialog.ActionEditingName:
		return b.advanceEditingName(ctx, u, st, text)
	default:
		return false
	}
}

// applyResult executes a transition outcome: prompts store the next
// state and ask for the next field, commits run the finisher with the
// completed state.
func (b *Bot) applyResult(ctx context.Context, u types.Update, r dialog.Result, finish func(context.Context, types.Update, dialog.State)) bool {
	switch r.Outcome {
	case dialog.OutcomePrompt:
		b.dialogs.Set(u.UserID, r.Next)
		b.send(ctx, u.ChatID, r.Prompt, b.dialogKeyboard(r.Keyboard))
		return true
	case dialog.OutcomeReprompt:
		b.send(ctx, u.ChatID, r.Prompt, b.dialogKeyboard(r.Keyboard))
		return true
	case dialog.OutcomeCommit:
		finish(ctx, u, r.Next)
		return true
	default:
		return false
	}
}

// finishTask persists a fully collected task dialog. Any failure ends
// the dialog; the admin restarts from the menu rather than resuming a
// broken state.
func (b *Bot) finishTask(ctx context.Context, u types.Update, st dialog.State) {
	defer b.dialogs.Delete(u.UserID)

	me, err := b.records.UserByTelegramID(ctx, u.UserID)
	if err != nil || me.WorkspaceID == "" {
		b.send(ctx, u.ChatID, "Сначала присоединитесь к рабочему пространству.", nil)
		return
	}

	assignee := st.Data["assignee"]
	var assigneeUser store.User
	if isDigits(assignee) {
		assigneeUser, err = b.records.UserByTelegramID(ctx, assignee)
	} else {
		assigneeUser, err = b.records.UserByUsername(ctx, assignee)
	}
	if err != nil {
		b.send(ctx, u.ChatID, "Пользователь не найден в рабочем пространстве.", nil)
		return
	}

	deadline, _ := dialog.TaskDeadline(st)
	taskID, err := b.records.CreateTask(ctx, me.WorkspaceID, me.ID, assigneeUser.ID, st.Data["title"], st.Data["description"], deadline)
	if err != nil {
		logger.Error("create task failed: %v", err)
		b.send(ctx, u.ChatID, "Не удалось создать задачу.", nil)
		return
	}
	logger.Info("task %s created by %s for %s", taskID, me.ID, assigneeUser.ID)

	b.send(ctx, u.ChatID, fmt.Sprintf("✅ Задача создана и назначена.\n\n📋 %s\n%s\n\nДедлайн: %s",
		st.Data["title"], st.Data["description"], dates.FormatDeadline(deadline)), nil)

	// Notify the assignee so the task is actionable right away.
	if assigneeUser.TelegramID != "" && assigneeUser.TelegramID != u.UserID {
		b.send(ctx, assigneeUser.TelegramID, fmt.Sprintf("📋 Новая задача: %s\n\n%s\n\nДедлайн: %s",
			st.Data["title"], st.Data["description"], dates.FormatDeadline(deadline)), simpleTaskKeyboard(taskID))
	}
}

// finishJoin resolves the collected invite code. An unknown code ends
// the dialog instead of reprompting; a fresh attempt needs a fresh
// code anyway.
func (b *Bot) finishJoin(ctx context.Context, u types.Update, st dialog.State) {
	ws, err := b.records.WorkspaceByInviteCode(ctx, st.Data["code"])
	if err == store.ErrNotFound {
		b.dialogs.Delete(u.UserID)
		b.send(ctx, u.ChatID, "Ссылка-приглашение недействительна. Проверьте код и попробуйте еще раз.", nil)
		return
	}
	if err == nil {
		err = b.joinWorkspace(ctx, u, ws)
	}
	b.dialogs.Delete(u.UserID)
	if err != nil {
		logger.Error("join workspace failed: %v", err)
		b.send(ctx, u.ChatID, "Не удалось присоединиться к рабочему пространству.", nil)
		return
	}
	b.send(ctx, u.ChatID, fmt.Sprintf("✅ Присоединились к рабочему пространству: %s\n\nТеперь вы можете видеть и выполнять задачи!", ws.Name), mainMenu())
}

func (b *Bot) joinWorkspace(ctx context.Context, u types.Update, ws store.Workspace) error {
	me, _, err := b.records.EnsureUser(ctx, u.UserID, displayName(u))
	if err != nil {
		return err
	}
	return b.records.SetUserWorkspace(ctx, me.ID, ws.ID)
}

// finishWorkspace creates the workspace, attaches the creator and
// grants the owner role best effort: a missing role record does not
// fail the creation.
func (b *Bot) finishWorkspace(ctx context.Context, u types.Update, st dialog.State) {
	defer b.dialogs.Delete(u.UserID)

	ws, err := b.records.CreateWorkspace(ctx, st.Data["name"], b.cfg.Location.String())
	if err != nil {
		logger.Error("create workspace failed: %v", err)
		b.send(ctx, u.ChatID, "Не удалось создать рабочее пространство.", nil)
		return
	}

	me, _, err := b.records.EnsureUser(ctx, u.UserID, displayName(u))
	if err == nil {
		err = b.records.SetUserWorkspace(ctx, me.ID, ws.ID)
	}
	if err != nil {
		logger.Error("attach creator to workspace %s failed: %v", ws.ID, err)
	} else if owner, roleErr := b.ownerRole(ctx); roleErr == nil {
		if assignErr := b.records.AssignRole(ctx, me.ID, owner.ID); assignErr != nil {
			logger.Error("assign owner role failed: %v", assignErr)
		}
	} else {
		logger.Warn("owner role not found, skipping assignment")
	}

	b.send(ctx, u.ChatID, fmt.Sprintf("✅ Рабочее пространство \"%s\" создано!\n\n%s",
		ws.Name, format.InviteInfo(ws.Name, ws.InviteCode, b.cfg.BotUsername)), adminMenuKeyboard())
}

// ownerRole accepts either the localized or the legacy role name.
func (b *Bot) ownerRole(ctx context.Context) (store.Role, error) {
	role, err := b.records.RoleByName(ctx, "Владелец")
	if err == nil {
		return role, nil
	}
	return b.records.RoleByName(ctx, "Owner")
}

func (b *Bot) finishTemplate(ctx context.Context, u types.Update, st dialog.State) {
	defer b.dialogs.Delete(u.UserID)

	me, err := b.records.UserByTelegramID(ctx, u.UserID)
	if err != nil || me.WorkspaceID == "" {
		b.send(ctx, u.ChatID, "Сначала присоединитесь к рабочему пространству.", nil)
		return
	}

	hours := atoiOr(st.Data["deadline_hours"], 24)
	tpl, err := b.records.CreateTaskTemplate(ctx, me.WorkspaceID, st.Data["name"], st.Data["title"], st.Data["description"], hours)
	if err != nil {
		logger.Error("create template failed: %v", err)
		b.send(ctx, u.ChatID, "Не удалось создать шаблон.", nil)
		return
	}

	b.send(ctx, u.ChatID, fmt.Sprintf("✅ Шаблон \"%s\" создан!\n\n**Название задачи:** %s\n**Описание:** %s\n**Дедлайн по умолчанию:** через %d часов\n\nТеперь вы можете использовать этот шаблон для быстрого создания задач.",
		tpl.Name, tpl.Title, tpl.Description, tpl.DefaultDeadlineHours), adminMenuKeyboard())
}

func (b *Bot) finishChecklist(ctx context.Context, u types.Update, st dialog.State) {
	defer b.dialogs.Delete(u.UserID)

	me, err := b.records.UserByTelegramID(ctx, u.UserID)
	if err != nil || me.WorkspaceID == "" {
		b.send(ctx, u.ChatID, "Сначала присоединитесь к рабочему пространству.", nil)
		return
	}

	parsed := dialog.ParseChecklistItems(st.Data["items_raw"])
	items := make([]store.ChecklistItemSpec, 0, len(parsed))
	for _, it := range parsed {
		items = append(items, store.ChecklistItemSpec{Title: it.Title, XPReward: it.XPReward, RequiresPhoto: it.RequiresPhoto})
	}

	if _, err := b.records.CreateChecklistTemplate(ctx, me.WorkspaceID, st.Data["name"], st.Data["type"], items); err != nil {
		logger.Error("create checklist failed: %v", err)
		b.send(ctx, u.ChatID, "Не удалось сохранить чек-лист.", nil)
		return
	}
	b.send(ctx, u.ChatID, "Checklist saved.", nil)
}

// advanceIssueDialog handles the text-borne steps of an issue report.
// The category arrives as a callback and the photo as a photo update,
// so only the description and the /skip shortcut land here.
func (b *Bot) advanceIssueDialog(ctx context.Context, u types.Update, st dialog.State, text string) bool {
	if st.Step == dialog.StepPhoto && text == "/skip" {
		next, ok := dialog.FinishIssue(st, "")
		if !ok {
			return false
		}
		b.finishIssue(ctx, u, next)
		return true
	}
	r := dialog.AdvanceIssueText(st, text)
	return b.applyResult(ctx, u, r, func(context.Context, types.Update, dialog.State) {})
}

func (b *Bot) finishIssue(ctx context.Context, u types.Update, st dialog.State) {
	defer b.dialogs.Delete(u.UserID)

	me, _, err := b.records.EnsureUser(ctx, u.UserID, displayName(u))
	if err != nil {
		logger.Error("resolve reporter failed: %v", err)
		b.send(ctx, u.ChatID, "Не удалось отправить проблему.", nil)
		return
	}

	_, err = b.records.CreateIssue(ctx, me.ID, me.WorkspaceID, st.Data["category"], st.Data["description"], st.Data["photo_url"])
	if err != nil {
		logger.Error("create issue failed: %v", err)
		b.send(ctx, u.ChatID, "Не удалось отправить проблему.", nil)
		return
	}
	b.send(ctx, u.ChatID, "Проблема зарегистрирована. Спасибо!", nil)

	if adminChat := b.adminChatID(ctx); adminChat != "" && adminChat != u.UserID {
		b.send(ctx, adminChat, fmt.Sprintf("🚨 Новая проблема от @%s\nКатегория: %s\n%s",
			displayName(u), st.Data["category"], st.Data["description"]), nil)
	}
}

// advanceEditingName runs the nested name editor of the onboarding
// tour. On success the new name is persisted and the tour resumes at
// the profile step.
func (b *Bot) advanceEditingName(ctx context.Context, u types.Update, st dialog.State, text string) bool {
	r := dialog.AdvanceEditingName(st, text)
	switch r.Outcome {
	case dialog.OutcomeReprompt:
		b.send(ctx, u.ChatID, r.Prompt, nil)
		return true
	case dialog.OutcomeCommit:
		if me, err := b.records.UserByTelegramID(ctx, u.UserID); err == nil {
			if err := b.records.SetUsername(ctx, me.ID, r.Next.Data["username"]); err != nil {
				logger.Error("update username failed: %v", err)
			}
		}
		b.dialogs.Set(u.UserID, r.Next)
		b.send(ctx, u.ChatID, "Имя обновлено!", &types.Keyboard{Remove: true})
		b.send(ctx, u.ChatID, dialog.OnboardingStepText(r.Next.Cursor, r.Next.Data), onboardingKeyboard(r.Next.Cursor))
		return true
	default:
		return false
	}
}

func atoiOr(s string, fallback int) int {
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 {
		return fallback
	}
	return n
}
