package format

import (
	"strings"
	"testing"
	"time"

	"taskdesk/app/core/store"
)

func TestProgressBar(t *testing.T) {
	created := now.Add(-10 * time.Hour)

	halfway := store.Task{
		Status:    store.TaskInProgress,
		CreatedAt: created,
		Deadline:  now.Add(10 * time.Hour),
	}
	if got := ProgressBar(halfway, now); got != "Прогресс: █████░░░░░ 50%" {
		t.Fatalf("halfway bar = %q", got)
	}

	approved := store.Task{Status: store.TaskApproved, CreatedAt: created, Deadline: now.Add(time.Hour)}
	if got := ProgressBar(approved, now); got != "Прогресс: ██████████ 100% ✅" {
		t.Fatalf("approved bar = %q", got)
	}

	rejected := store.Task{Status: store.TaskRejected}
	if got := ProgressBar(rejected, now); !strings.HasSuffix(got, "100% ❌") {
		t.Fatalf("rejected bar = %q", got)
	}

	noDeadline := store.Task{Status: store.TaskAssigned, CreatedAt: created}
	if got := ProgressBar(noDeadline, now); got != "Прогресс: ░░░░░░░░░░ 0%" {
		t.Fatalf("no deadline bar = %q", got)
	}

	overdue := store.Task{
		Status:    store.TaskAssigned,
		CreatedAt: created,
		Deadline:  now.Add(-time.Hour),
	}
	if got := ProgressBar(overdue, now); !strings.HasSuffix(got, "100% 🔴") {
		t.Fatalf("overdue bar = %q", got)
	}
}

func TestTaskListEmpty(t *testing.T) {
	desktop := TaskList(nil, now, false)
	if !strings.Contains(desktop, "Мои задачи (0 активных)") || !strings.Contains(desktop, "Нет активных задач") {
		t.Fatalf("empty desktop list:\n%s", desktop)
	}
	if !strings.HasPrefix(desktop, "┌") || !strings.HasSuffix(desktop, "┘") {
		t.Fatalf("desktop list lost its frame:\n%s", desktop)
	}

	mobile := TaskList(nil, now, true)
	if strings.ContainsAny(mobile, "┌└│") {
		t.Fatalf("mobile list should not be framed:\n%s", mobile)
	}
}

func TestTaskListHeaderCounts(t *testing.T) {
	tasks := []store.Task{
		{Title: "A", Status: store.TaskAssigned, Deadline: now.Add(time.Hour), AssignedTo: store.TaskUser{Username: "ivan"}},
		{Title: "B", Status: store.TaskInProgress, Deadline: now.Add(-time.Hour), AssignedTo: store.TaskUser{Username: "olga"}},
		{Title: "C", Status: store.TaskApproved, AssignedTo: store.TaskUser{Username: "ivan"}},
	}
	out := TaskList(tasks, now, false)
	if !strings.Contains(out, "📊 Мои задачи (2 активных), 1 просроченных") {
		t.Fatalf("header wrong:\n%s", out)
	}
	if !strings.Contains(out, "@ivan") || !strings.Contains(out, "@olga") {
		t.Fatalf("assignees missing:\n%s", out)
	}
	if !strings.HasSuffix(out, "└─────────────────────────────┘") {
		t.Fatalf("list not closed:\n%s", out)
	}
	if strings.Count(out, "├") != len(tasks) {
		t.Fatalf("separator count = %d, want %d:\n%s", strings.Count(out, "├"), len(tasks), out)
	}
}

func TestTaskDetailsPlaceholders(t *testing.T) {
	task := store.Task{
		Title:      "Помыть витрину",
		Status:     store.TaskAssigned,
		CreatedAt:  now.Add(-20 * time.Minute),
		AssignedTo: store.TaskUser{Username: "ivan"},
		CreatedBy:  store.TaskUser{},
	}
	out := TaskDetails(task, now)
	if !strings.Contains(out, "Нет описания") {
		t.Fatalf("empty description placeholder missing:\n%s", out)
	}
	if !strings.Contains(out, "@unknown") {
		t.Fatalf("missing username fallback:\n%s", out)
	}
	if !strings.Contains(out, "Только что") {
		t.Fatalf("fresh creation age missing:\n%s", out)
	}
	if !strings.Contains(out, "Не указан") {
		t.Fatalf("missing deadline placeholder:\n%s", out)
	}
}

func TestReminderMessage(t *testing.T) {
	task := store.Task{Title: "Сдать отчет", Deadline: now.Add(2 * time.Hour)}

	desktop := ReminderMessage(task, "boss", now, false)
	if !strings.Contains(desktop, "Напоминание от @boss") || !strings.Contains(desktop, "(через 2ч)") {
		t.Fatalf("desktop reminder:\n%s", desktop)
	}

	mobile := ReminderMessage(store.Task{Title: "Сдать отчет"}, "boss", now, true)
	if !strings.Contains(mobile, "Не указан") {
		t.Fatalf("mobile reminder without deadline:\n%s", mobile)
	}
}
