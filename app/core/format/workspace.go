package format

import (
	"fmt"

	"taskdesk/app/core/store"
)

// StatsBox is the compact statistics card for the 📈 button.
func StatsBox(stats store.WorkspaceTaskStats) string {
	return fmt.Sprintf("📊 **Статистика**\n┌─────────────┐\n│ Задачи: %d      │\n│ ✅ Выполнено: %d │\n│ 🔄 Активных: %d   │\n│ ⚠️ Просрочено: %d │\n└─────────────┘",
		stats.Total, stats.Completed, stats.Active, stats.Overdue)
}

// WorkspaceInfo is the admin panel header: headline numbers for the
// workspace plus its settings.
func WorkspaceInfo(ws store.Workspace, stats store.WorkspaceTaskStats, members []store.User) string {
	completionRate := 0
	if stats.Total > 0 {
		completionRate = int(float64(stats.Completed)/float64(stats.Total)*100 + 0.5)
	}
	averageXP := 0
	if len(members) > 0 {
		total := 0
		for _, m := range members {
			total += m.TotalXP
		}
		averageXP = int(float64(total)/float64(len(members)) + 0.5)
	}

	created := "—"
	if !ws.CreatedAt.IsZero() {
		created = ws.CreatedAt.Format("02.01.2006")
	}
	timezone := ws.Timezone
	if timezone == "" {
		timezone = "—"
	}

	return fmt.Sprintf("🏢 **%s**\n\n📊 **Статистика:**\n• Пользователей: %d\n• Задач: %d (%d%% выполнено)\n• Активных: %d\n• Просроченных: %d\n\n💎 **XP:**\n• Средний XP пользователя: %d\n\n⏰ **Часовой пояс:** %s\n📅 **Создан:** %s",
		ws.Name, len(members), stats.Total, completionRate, stats.Active, stats.Overdue, averageXP, timezone, created)
}

// InviteInfo explains how to join with the workspace's standing code.
func InviteInfo(workspaceName, code, botUsername string) string {
	link := fmt.Sprintf("https://t.me/%s?start=invite_%s", botUsername, code)
	return fmt.Sprintf("🔗 **Приглашение в %s**\n\n**Код:** `%s`\n\n**Ссылка:**\n`%s`\n\n📋 **Как пригласить:**\n1. Отправь ссылку пользователю\n2. Или попроси его ввести команду:\n   `/start %s`\n\n⚠️ **Код действителен всегда** (пока не изменишь)",
		workspaceName, code, link, code)
}

// Profile is the 👤 card. Empty fields render as a dash.
func Profile(username, roleName, workspaceName string) string {
	if username == "" {
		username = "Неизвестно"
	}
	if roleName == "" {
		roleName = "—"
	}
	if workspaceName == "" {
		workspaceName = "—"
	}
	return fmt.Sprintf("👤 %s\nРоль: %s\nРабочее пространство: %s", username, roleName, workspaceName)
}

// IssueLine is one row of the admin's issue list.
func IssueLine(issue store.Issue) string {
	id := issue.ID
	if len(id) > 8 {
		id = id[:8]
	}
	line := fmt.Sprintf("#%s [%s] %s\n%s", id, issue.Status, issue.Category, issue.Description)
	if issue.PhotoURL != "" {
		line += "\n" + issue.PhotoURL
	}
	return line
}

// MemberLine is one row of the role-assignment list.
func MemberLine(u store.User) string {
	name := u.Username
	if name == "" {
		name = "user"
	}
	return fmt.Sprintf("@%s (XP: %d)", name, u.TotalXP)
}
