package store

import (
	"context"
	"net/url"
	"time"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

// taskSelect embeds the assignee and creator user rows so callers get
// usernames without extra round trips.
const taskSelect = "id,title,description,status,deadline,created_at," +
	"assigned_to:users!assigned_to(id,username,telegram_id)," +
	"created_by:users!created_by(id,username,telegram_id)"

func taskFromRow(row gjson.Result) Task {
	return Task{
		ID:          row.Get("id").String(),
		Title:       row.Get("title").String(),
		Description: row.Get("description").String(),
		Status:      row.Get("status").String(),
		Deadline:    parseTime(row.Get("deadline")),
		CreatedAt:   parseTime(row.Get("created_at")),
		AssignedTo:  taskUserFromRow(row.Get("assigned_to")),
		CreatedBy:   taskUserFromRow(row.Get("created_by")),
	}
}

func taskUserFromRow(row gjson.Result) TaskUser {
	return TaskUser{
		ID:         row.Get("id").String(),
		Username:   row.Get("username").String(),
		TelegramID: row.Get("telegram_id").String(),
	}
}

// CreateTask inserts an assigned task and returns its id. A zero
// deadline is stored as null.
func (c *Client) CreateTask(ctx context.Context, workspaceID, creatorID, assigneeID, title, description string, deadline time.Time) (string, error) {
	body, _ := sjson.SetBytes(nil, "title", title)
	body, _ = sjson.SetBytes(body, "description", description)
	body, _ = sjson.SetBytes(body, "assigned_to", assigneeID)
	body, _ = sjson.SetBytes(body, "created_by", creatorID)
	body, _ = sjson.SetBytes(body, "workspace_id", workspaceID)
	body, _ = sjson.SetBytes(body, "status", TaskAssigned)
	if deadline.IsZero() {
		body, _ = sjson.SetBytes(body, "deadline", nil)
	} else {
		body, _ = sjson.SetBytes(body, "deadline", deadline.UTC().Format(time.RFC3339))
	}
	row, err := c.insert(ctx, "tasks", body)
	if err != nil {
		return "", err
	}
	return row.Get("id").String(), nil
}

func (c *Client) TaskByID(ctx context.Context, taskID string) (Task, error) {
	q := url.Values{}
	q.Set("select", taskSelect)
	q.Set("id", eq(taskID))
	row, err := c.selectOne(ctx, "tasks", q)
	if err != nil {
		return Task{}, err
	}
	return taskFromRow(row), nil
}

func (c *Client) SetTaskStatus(ctx context.Context, taskID, status string) error {
	q := url.Values{}
	q.Set("id", eq(taskID))
	body, _ := sjson.SetBytes(nil, "status", status)
	return c.update(ctx, "tasks", q, body)
}

// TaskFilter narrows WorkspaceTasks. The Status values mirror the list
// menu: "active", "overdue", "pending_review" or a literal status.
type TaskFilter struct {
	Status string
	Now    time.Time
}

// WorkspaceTasks lists a workspace's tasks newest first, optionally
// filtered. The "overdue" filter compares deadlines server-side.
func (c *Client) WorkspaceTasks(ctx context.Context, workspaceID string, filter TaskFilter) ([]Task, error) {
	q := url.Values{}
	q.Set("select", taskSelect)
	q.Set("workspace_id", eq(workspaceID))
	q.Set("order", "created_at.desc")

	switch filter.Status {
	case "":
	case "active":
		q.Set("status", in(TaskAssigned, TaskInProgress))
	case "overdue":
		q.Set("status", in(TaskAssigned, TaskInProgress))
		q.Set("deadline", "lt."+filter.Now.UTC().Format(time.RFC3339))
	default:
		q.Set("status", eq(filter.Status))
	}

	rows, err := c.selectRows(ctx, "tasks", q)
	if err != nil {
		return nil, err
	}
	var tasks []Task
	for _, row := range rows.Array() {
		tasks = append(tasks, taskFromRow(row))
	}
	return tasks, nil
}

// UserTasks lists the open tasks assigned to one user, newest first.
func (c *Client) UserTasks(ctx context.Context, userID string) ([]Task, error) {
	q := url.Values{}
	q.Set("select", taskSelect)
	q.Set("assigned_to", eq(userID))
	q.Set("status", in(TaskAssigned, TaskInProgress, TaskPendingReview))
	q.Set("order", "created_at.desc")
	rows, err := c.selectRows(ctx, "tasks", q)
	if err != nil {
		return nil, err
	}
	var tasks []Task
	for _, row := range rows.Array() {
		tasks = append(tasks, taskFromRow(row))
	}
	return tasks, nil
}

// OpenTasksWithDeadlines returns every assigned or in-progress task
// across workspaces; the reminder sweep walks this set.
func (c *Client) OpenTasksWithDeadlines(ctx context.Context) ([]Task, error) {
	q := url.Values{}
	q.Set("select", taskSelect)
	q.Set("status", in(TaskAssigned, TaskInProgress))
	rows, err := c.selectRows(ctx, "tasks", q)
	if err != nil {
		return nil, err
	}
	var tasks []Task
	for _, row := range rows.Array() {
		tasks = append(tasks, taskFromRow(row))
	}
	return tasks, nil
}

// WorkspaceTaskStats is the aggregate the statistics screen shows.
type WorkspaceTaskStats struct {
	Total     int
	Completed int
	Active    int
	Overdue   int
}

// TaskStats counts a workspace's tasks by bucket. Overdue counts only
// open tasks whose deadline has passed.
func (c *Client) TaskStats(ctx context.Context, workspaceID string, now time.Time) (WorkspaceTaskStats, error) {
	q := url.Values{}
	q.Set("select", "status,deadline")
	q.Set("workspace_id", eq(workspaceID))
	rows, err := c.selectRows(ctx, "tasks", q)
	if err != nil {
		return WorkspaceTaskStats{}, err
	}

	var stats WorkspaceTaskStats
	for _, row := range rows.Array() {
		stats.Total++
		status := row.Get("status").String()
		switch status {
		case TaskApproved:
			stats.Completed++
		case TaskAssigned, TaskInProgress:
			stats.Active++
			deadline := parseTime(row.Get("deadline"))
			if !deadline.IsZero() && deadline.Before(now) {
				stats.Overdue++
			}
		}
	}
	return stats, nil
}
