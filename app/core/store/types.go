// Package store reaches the remote record backend over its REST
// interface. It owns no invariants beyond passing identifiers through;
// multi-step writes are independent calls with no rollback.
package store

import "time"

// Task statuses as the backend stores them.
const (
	TaskAssigned      = "assigned"
	TaskInProgress    = "in_progress"
	TaskPendingReview = "pending_review"
	TaskApproved      = "approved"
	TaskRejected      = "rejected"
)

// Issue statuses.
const (
	IssueNew        = "new"
	IssueInProgress = "in_progress"
	IssueResolved   = "resolved"
)

type User struct {
	ID          string
	TelegramID  string
	Username    string
	TotalXP     int
	WorkspaceID string
}

type Workspace struct {
	ID         string
	Name       string
	InviteCode string
	Timezone   string
	CreatedAt  time.Time
}

type Role struct {
	ID          int64
	Name        string
	AccessLevel int
}

// TaskUser is the embedded user view a task row carries for its
// assignee and creator.
type TaskUser struct {
	ID         string
	Username   string
	TelegramID string
}

type Task struct {
	ID          string
	Title       string
	Description string
	Status      string
	Deadline    time.Time // zero = no deadline
	CreatedAt   time.Time
	AssignedTo  TaskUser
	CreatedBy   TaskUser
}

type Issue struct {
	ID          string
	Category    string
	Description string
	PhotoURL    string
	Status      string
	ReportedBy  string
	CreatedAt   time.Time
}

type TaskTemplate struct {
	ID                   string
	WorkspaceID          string
	Name                 string
	Title                string
	Description          string
	DefaultDeadlineHours int
}
