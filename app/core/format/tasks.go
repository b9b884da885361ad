package format

import (
	"fmt"
	"strings"
	"time"

	"taskdesk/app/core/dates"
	"taskdesk/app/core/store"
)

const (
	boxTop       = "┌─────────────────────────────┐"
	boxSeparator = "├─────────────────────────────┤"
	boxBottom    = "└─────────────────────────────┘"

	progressBarLength = 10
)

// ProgressBar renders elapsed time between creation and deadline as a
// ten-segment bar. Terminal statuses always show a full bar with their
// verdict mark.
func ProgressBar(task store.Task, now time.Time) string {
	if task.Status == store.TaskApproved {
		return "Прогресс: " + strings.Repeat("█", progressBarLength) + " 100% ✅"
	}
	if task.Status == store.TaskRejected {
		return "Прогресс: " + strings.Repeat("█", progressBarLength) + " 100% ❌"
	}
	if task.Deadline.IsZero() {
		return "Прогресс: " + strings.Repeat("░", progressBarLength) + " 0%"
	}

	total := task.Deadline.Sub(task.CreatedAt)
	elapsed := now.Sub(task.CreatedAt)
	progress := 1.0
	if total > 0 {
		progress = float64(elapsed) / float64(total)
	}
	if progress < 0 {
		progress = 0
	}
	if progress > 1 {
		progress = 1
	}

	filled := int(progress*progressBarLength + 0.5)
	bar := strings.Repeat("█", filled) + strings.Repeat("░", progressBarLength-filled)
	line := fmt.Sprintf("Прогресс: %s %d%%", bar, int(progress*100+0.5))
	if IsOverdue(task, now) {
		line += " 🔴"
	}
	return line
}

func username(u store.TaskUser) string {
	if u.Username == "" {
		return "unknown"
	}
	return u.Username
}

// TaskList renders the admin's task overview. The desktop variant is a
// pseudo-table drawn with box characters; mobile drops the frame.
func TaskList(tasks []store.Task, now time.Time, mobile bool) string {
	if len(tasks) == 0 {
		if mobile {
			return "📊 **Мои задачи (0 активных)**\n\nНет активных задач"
		}
		return boxTop + "\n│ 📊 Мои задачи (0 активных)    │\n" + boxSeparator + "\n│ Нет активных задач         │\n" + boxBottom
	}

	active := 0
	overdue := 0
	for _, t := range tasks {
		if t.Status == store.TaskAssigned || t.Status == store.TaskInProgress {
			active++
		}
		if IsOverdue(t, now) {
			overdue++
		}
	}
	header := fmt.Sprintf("📊 Мои задачи (%d активных)", active)
	if overdue > 0 {
		header += fmt.Sprintf(", %d просроченных", overdue)
	}

	if mobile {
		var b strings.Builder
		fmt.Fprintf(&b, "**%s**\n\n", header)
		for i, t := range tasks {
			b.WriteString(mobileTask(t, now))
			if i < len(tasks)-1 {
				b.WriteString("\n\n")
			}
		}
		return b.String()
	}

	var b strings.Builder
	b.WriteString(boxTop + "\n│ " + header + " │\n" + boxSeparator)
	for _, t := range tasks {
		fmt.Fprintf(&b, "\n│ %s %s", StatusIcon(t, now), t.Title)
		fmt.Fprintf(&b, "\n│ @%s", username(t.AssignedTo))
		deadlineCell := ShortDeadline(t.Deadline, now)
		if IsOverdue(t, now) {
			deadlineCell += " ⚠️"
		}
		fmt.Fprintf(&b, "\n│ Deadline: %s", deadlineCell)
		fmt.Fprintf(&b, "\n│ Status: %s", StatusText(t, now))
		fmt.Fprintf(&b, "\n│ %s", ProgressBar(t, now))
		b.WriteString("\n│ [👁 Детали] [🔔 Напомнить]")
		b.WriteString("\n" + boxSeparator)
	}
	out := b.String()
	return out[:len(out)-len(boxSeparator)] + boxBottom
}

func mobileTask(t store.Task, now time.Time) string {
	return fmt.Sprintf("%s **%s**\n👤 @%s\n⏰ %s\n\n[👁 Детали] [🔔 Напомнить]",
		StatusIcon(t, now), t.Title, username(t.AssignedTo), MobileShortDeadline(t.Deadline, now))
}

// createdAgo describes how long ago the task appeared, in coarse
// steps.
func createdAgo(created time.Time, now time.Time) string {
	hours := roundHours(now.Sub(created))
	switch {
	case hours < 1:
		return "Только что"
	case hours < 24:
		return fmt.Sprintf("%dч назад", hours)
	default:
		return fmt.Sprintf("%dд назад", roundDays(now.Sub(created)))
	}
}

// TaskDetails is the full card shown from the 👁 button.
func TaskDetails(task store.Task, now time.Time) string {
	description := task.Description
	if description == "" {
		description = "Нет описания"
	}
	return boxTop +
		"\n│ 📋 " + task.Title + "              │" +
		"\n" + boxSeparator +
		"\n│ Описание:                   │" +
		"\n│ " + description + "         │" +
		"\n" + boxSeparator +
		"\n│ Исполнитель: @" + username(task.AssignedTo) + "        │" +
		"\n│ Создал: @" + username(task.CreatedBy) + "              │" +
		"\n│ Создан: " + createdAgo(task.CreatedAt, now) + "              │" +
		"\n" + boxSeparator +
		"\n│ Дедлайн: " + dates.FormatDeadline(task.Deadline) + relativeDeadline(task.Deadline, now) + "     │" +
		"\n│ Статус: " + StatusText(task, now) + "              │" +
		"\n" + boxBottom
}

// SimpleTaskCard is the assignee's view of one task, with the action
// hints drawn into the frame.
func SimpleTaskCard(task store.Task) string {
	return boxTop +
		"\n│ 📋 " + task.Title + "              │" +
		"\n│                             │" +
		"\n│ " + task.Description + "         │" +
		"\n│                             │" +
		"\n│ Deadline: " + dates.FormatDeadline(task.Deadline) + "     │" +
		"\n│                             │" +
		"\n│ [✅ Выполнено] [⚠️ Проблема] │" +
		"\n" + boxBottom
}

// ReminderMessage is the nudge sent to an assignee on the 🔔 button or
// by the periodic sweep escalation.
func ReminderMessage(task store.Task, adminUsername string, now time.Time, mobile bool) string {
	suffix := relativeDeadline(task.Deadline, now)
	if mobile {
		deadline := dates.NoDeadline
		if !task.Deadline.IsZero() {
			deadline = MobileShortDeadline(task.Deadline, now)
		}
		return fmt.Sprintf("⏰ **Напоминание от @%s**\n\n🎯 **%s**\n⏰ %s%s\n\n💪 Не забудь выполнить!",
			adminUsername, task.Title, deadline, suffix)
	}
	return fmt.Sprintf("⏰ Напоминание от @%s\n\nЗадача: %s\nDeadline: %s%s\n\nНе забудь выполнить! 💪",
		adminUsername, task.Title, dates.FormatDeadline(task.Deadline), suffix)
}
