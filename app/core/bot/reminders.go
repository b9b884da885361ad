package bot

import (
	"context"
	"fmt"
	"math"

	"taskdesk/app/core/dates"
	"taskdesk/app/core/store"
	"taskdesk/app/pkg/logger"
)

// reminderText picks the escalation message for a task, or "" when the
// deadline is still far enough away. Buckets, nearest first: overdue,
// within an hour, within three, within a day.
func reminderText(task store.Task, hoursLeft int) string {
	deadline := dates.FormatDeadline(task.Deadline)
	switch {
	case hoursLeft <= 0:
		return fmt.Sprintf("🔴 ЗАДАЧА ПРОСРОЧЕНА!\n\n\"%s\"\nДедлайн: %s\n\nСрочно выполни! ⚡", task.Title, deadline)
	case hoursLeft <= 1:
		return fmt.Sprintf("⏰ СРОЧНО! Через %dч\n\n\"%s\"\nДедлайн: %s\n\nПоторопись! 🏃‍♂️", hoursLeft, task.Title, deadline)
	case hoursLeft <= 3:
		return fmt.Sprintf("⚠️ Напоминание: через %dч\n\n\"%s\"\nДедлайн: %s\n\nНе забудь! 💪", hoursLeft, task.Title, deadline)
	case hoursLeft <= 24:
		return fmt.Sprintf("📅 Завтра дедлайн!\n\n\"%s\"\nДедлайн: %s\n\nПодготовься! 🎯", task.Title, deadline)
	default:
		return ""
	}
}

// SweepReminders walks every open task and nudges assignees whose
// deadlines are near or past. Send failures are logged per task; the
// sweep keeps going.
func (b *Bot) SweepReminders(ctx context.Context) error {
	tasks, err := b.records.OpenTasksWithDeadlines(ctx)
	if err != nil {
		return fmt.Errorf("load open tasks: %w", err)
	}

	now := b.now()
	sent := 0
	for _, task := range tasks {
		if task.Deadline.IsZero() || task.AssignedTo.TelegramID == "" {
			continue
		}
		hoursLeft := int(math.Round(task.Deadline.Sub(now).Hours()))
		text := reminderText(task, hoursLeft)
		if text == "" {
			continue
		}
		if err := b.chat.SendText(ctx, task.AssignedTo.TelegramID, text, nil); err != nil {
			logger.Error("reminder for task %s to %s failed: %v", task.ID, task.AssignedTo.TelegramID, err)
			continue
		}
		sent++
		logger.Info("sent reminder for task %s to %s", task.ID, task.AssignedTo.Username)
	}
	logger.Info("reminder sweep done, %d of %d open tasks nudged", sent, len(tasks))
	return nil
}
