// Package format renders records into the Russian-language chat
// strings the bot sends. Everything here is pure text assembly; a
// record that cannot be rendered gets a placeholder string, never an
// error.
package format

import (
	"fmt"
	"math"
	"time"

	"taskdesk/app/core/store"
)

var ruShortMonths = [...]string{
	"янв.", "февр.", "мар.", "апр.", "мая", "июн.",
	"июл.", "авг.", "сент.", "окт.", "нояб.", "дек.",
}

// IsOverdue reports whether the task's deadline has passed while the
// task is still open. Review and terminal statuses are never overdue.
func IsOverdue(task store.Task, now time.Time) bool {
	if task.Deadline.IsZero() {
		return false
	}
	if task.Status != store.TaskAssigned && task.Status != store.TaskInProgress {
		return false
	}
	return task.Deadline.Before(now)
}

// StatusIcon picks the list-view marker. Overdue wins over the stored
// status.
func StatusIcon(task store.Task, now time.Time) string {
	if IsOverdue(task, now) {
		return "🔴"
	}
	switch task.Status {
	case store.TaskInProgress:
		return "🟢"
	case store.TaskAssigned:
		return "🟡"
	case store.TaskPendingReview:
		return "⏳"
	case store.TaskApproved:
		return "✅"
	case store.TaskRejected:
		return "❌"
	}
	return "⚪"
}

// StatusText is the icon plus its Russian label.
func StatusText(task store.Task, now time.Time) string {
	if IsOverdue(task, now) {
		return "🔴 Просрочен"
	}
	switch task.Status {
	case store.TaskAssigned:
		return "🟡 Не начат"
	case store.TaskInProgress:
		return "🟢 В процессе"
	case store.TaskPendingReview:
		return "⏳ На проверке"
	case store.TaskApproved:
		return "✅ Выполнен"
	case store.TaskRejected:
		return "❌ Отклонен"
	}
	return "⚪ Неизвестно"
}

// roundHours rounds to the nearest whole hour, halves away from zero.
func roundHours(d time.Duration) int {
	return int(math.Round(d.Hours()))
}

func roundDays(d time.Duration) int {
	return int(math.Round(d.Hours() / 24))
}

// ShortDeadline is the compact deadline cell of the desktop task list.
func ShortDeadline(deadline time.Time, now time.Time) string {
	if deadline.IsZero() {
		return "Без дедлайна"
	}
	diff := deadline.Sub(now)
	hours := roundHours(diff)
	switch {
	case hours < 0:
		return "Просрочен"
	case hours < 1:
		return "Сейчас"
	case hours < 24:
		return fmt.Sprintf("Через %dч", hours)
	}
	days := roundDays(diff)
	if days == 1 {
		return "Завтра"
	}
	if days < 7 {
		return fmt.Sprintf("Через %dд", days)
	}
	return ruShortDate(deadline)
}

// MobileShortDeadline is the compact variant of the mobile list. It
// counts minutes inside the first hour and flags overdue louder.
func MobileShortDeadline(deadline time.Time, now time.Time) string {
	if deadline.IsZero() {
		return "Без дедлайна"
	}
	diff := deadline.Sub(now)
	if diff < 0 {
		return "Просрочен ⚠️"
	}
	hours := roundHours(diff)
	if hours < 1 {
		return fmt.Sprintf("Через %dм", int(math.Round(diff.Minutes())))
	}
	if hours < 24 {
		return fmt.Sprintf("Через %dч", hours)
	}
	if days := roundDays(diff); days < 7 {
		return fmt.Sprintf("Через %dд", days)
	}
	return ruShortDate(deadline)
}

func ruShortDate(t time.Time) string {
	return fmt.Sprintf("%d %s", t.Day(), ruShortMonths[t.Month()-1])
}

// relativeDeadline is the parenthesized suffix of details and
// reminders, empty when there is no deadline.
func relativeDeadline(deadline time.Time, now time.Time) string {
	if deadline.IsZero() {
		return ""
	}
	hours := roundHours(deadline.Sub(now))
	switch {
	case hours < 0:
		return fmt.Sprintf(" (просрочен на %dч)", -hours)
	case hours < 1:
		return " (сейчас)"
	case hours < 24:
		return fmt.Sprintf(" (через %dч)", hours)
	}
	return fmt.Sprintf(" (через %dд)", roundDays(deadline.Sub(now)))
}
