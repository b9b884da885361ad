// Package bot turns incoming chat updates into record-store calls and
// reply messages. It holds no record state of its own; per-user dialog
// progress lives in the injected dialog store and everything else in
// the record backend.
package bot

import (
	"context"
	"strings"
	"time"

	"taskdesk/app/core/dialog"
	"taskdesk/app/core/store"
	"taskdesk/app/pkg/logger"
	"taskdesk/app/pkg/types"
)

// Directory is the user slice of the record store.
type Directory interface {
	UserByTelegramID(ctx context.Context, telegramID string) (store.User, error)
	EnsureUser(ctx context.Context, telegramID, username string) (store.User, bool, error)
	UserByUsername(ctx context.Context, username string) (store.User, error)
	UsersByWorkspace(ctx context.Context, workspaceID string) ([]store.User, error)
	SetUserWorkspace(ctx context.Context, userID, workspaceID string) error
	SetUsername(ctx context.Context, userID, username string) error
}

// Workspaces covers workspace records and invite codes.
type Workspaces interface {
	CreateWorkspace(ctx context.Context, name, timezone string) (store.Workspace, error)
	WorkspaceByID(ctx context.Context, id string) (store.Workspace, error)
	WorkspaceByInviteCode(ctx context.Context, code string) (store.Workspace, error)
}

// Roles covers role lookup and assignment.
type Roles interface {
	ListRoles(ctx context.Context) ([]store.Role, error)
	RoleByName(ctx context.Context, name string) (store.Role, error)
	AssignRole(ctx context.Context, userID string, roleID int64) error
	UserAccessLevel(ctx context.Context, userID string) (int, error)
	UserRoleName(ctx context.Context, userID string) (string, error)
}

// Tasks covers task records and aggregates.
type Tasks interface {
	CreateTask(ctx context.Context, workspaceID, creatorID, assigneeID, title, description string, deadline time.Time) (string, error)
	TaskByID(ctx context.Context, taskID string) (store.Task, error)
	SetTaskStatus(ctx context.Context, taskID, status string) error
	WorkspaceTasks(ctx context.Context, workspaceID string, filter store.TaskFilter) ([]store.Task, error)
	UserTasks(ctx context.Context, userID string) ([]store.Task, error)
	OpenTasksWithDeadlines(ctx context.Context) ([]store.Task, error)
	TaskStats(ctx context.Context, workspaceID string, now time.Time) (store.WorkspaceTaskStats, error)
}

// Issues covers problem reports.
type Issues interface {
	CreateIssue(ctx context.Context, reporterID, workspaceID, category, description, photoURL string) (string, error)
	WorkspaceIssues(ctx context.Context, workspaceID string) ([]store.Issue, error)
	SetIssueStatus(ctx context.Context, issueID, status string) error
}

// Templates covers reusable task templates.
type Templates interface {
	CreateTaskTemplate(ctx context.Context, workspaceID, name, title, description string, defaultDeadlineHours int) (store.TaskTemplate, error)
	TaskTemplates(ctx context.Context, workspaceID string) ([]store.TaskTemplate, error)
	TaskTemplateByID(ctx context.Context, templateID string) (store.TaskTemplate, error)
	DeleteTaskTemplate(ctx context.Context, templateID string) error
}

// Checklists covers checklist templates.
type Checklists interface {
	CreateChecklistTemplate(ctx context.Context, workspaceID, name, checklistType string, items []store.ChecklistItemSpec) (string, error)
}

// Records is the full record-store surface the bot consumes.
type Records interface {
	Directory
	Workspaces
	Roles
	Tasks
	Issues
	Templates
	Checklists
}

// Config carries the identity knobs the bot needs at runtime.
type Config struct {
	// AdminID is a numeric Telegram id or a username; either grants
	// full access.
	AdminID string
	// BotUsername builds invite deep links.
	BotUsername string
	Location    *time.Location
}

// Bot routes updates. All collaborators are injected; Now is
// overridable so deadline logic is testable.
type Bot struct {
	records Records
	dialogs dialog.Store
	chat    types.Transport
	cfg     Config
	Now     func() time.Time
}

func New(records Records, dialogs dialog.Store, chat types.Transport, cfg Config) *Bot {
	if cfg.Location == nil {
		cfg.Location = time.Local
	}
	return &Bot{
		records: records,
		dialogs: dialogs,
		chat:    chat,
		cfg:     cfg,
		Now:     time.Now,
	}
}

func (b *Bot) now() time.Time {
	return b.Now().In(b.cfg.Location)
}

// Handle processes one update end to end. Errors are logged and turned
// into chat-visible failure text; they never propagate to the caller.
func (b *Bot) Handle(ctx context.Context, u types.Update) {
	logger.Info("update %s: %s from user %s", u.RequestID, u.Kind, u.UserID)
	switch u.Kind {
	case types.UpdateText:
		b.handleText(ctx, u)
	case types.UpdateCallback:
		b.handleCallback(ctx, u)
	case types.UpdatePhoto:
		b.handlePhoto(ctx, u)
	}
}

// isAdmin checks the configured admin identity first, then falls back
// to role access level 60 and above.
func (b *Bot) isAdmin(ctx context.Context, u types.Update) bool {
	admin := strings.TrimSpace(b.cfg.AdminID)
	if admin == "" {
		return false
	}
	if u.UserID == admin {
		return true
	}
	if u.Username != "" && strings.EqualFold(u.Username, strings.TrimPrefix(admin, "@")) {
		return true
	}
	user, err := b.records.UserByTelegramID(ctx, u.UserID)
	if err != nil {
		return false
	}
	level, err := b.records.UserAccessLevel(ctx, user.ID)
	if err != nil {
		return false
	}
	return level >= managerAccessLevel
}

// managerAccessLevel is the threshold for the extended menu.
const managerAccessLevel = 60

// adminChatID resolves where admin notifications go. A numeric
// AdminID is used directly; a username is resolved through the user
// table. Empty means no admin is reachable.
func (b *Bot) adminChatID(ctx context.Context) string {
	admin := strings.TrimPrefix(strings.TrimSpace(b.cfg.AdminID), "@")
	if admin == "" {
		return ""
	}
	if isDigits(admin) {
		return admin
	}
	user, err := b.records.UserByUsername(ctx, admin)
	if err != nil {
		return ""
	}
	return user.TelegramID
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func (b *Bot) send(ctx context.Context, chatID, text string, kb *types.Keyboard) {
	if err := b.chat.SendText(ctx, chatID, text, kb); err != nil {
		logger.Error("send to chat %s failed: %v", chatID, err)
	}
}

func (b *Bot) edit(ctx context.Context, chatID, messageID, text string, kb *types.Keyboard) {
	if err := b.chat.EditMessage(ctx, chatID, messageID, text, kb); err != nil {
		logger.Error("edit message %s in chat %s failed: %v", messageID, chatID, err)
	}
}

func (b *Bot) answer(ctx context.Context, callbackID, text string) {
	if callbackID == "" {
		return
	}
	if err := b.chat.AnswerCallback(ctx, callbackID, text); err != nil {
		logger.Error("answer callback failed: %v", err)
	}
}

// mobileUsernameHints drive the compact-rendering heuristic: a
// username that mentions a device gets the mobile variants.
var mobileUsernameHints = []string{"mobile", "android", "iphone", "ipad"}

func isMobileName(username string) bool {
	name := strings.ToLower(username)
	for _, hint := range mobileUsernameHints {
		if strings.Contains(name, hint) {
			return true
		}
	}
	return false
}

// displayName prefers the chat username and falls back to a stub.
func displayName(u types.Update) string {
	if u.Username != "" {
		return u.Username
	}
	return "Unknown"
}
