package store

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/tidwall/gjson"
)

func TestUserByTelegramIDNotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/rest/v1/users" {
			t.Fatalf("unexpected path: %s", r.URL.Path)
		}
		if r.URL.Query().Get("telegram_id") != "eq.11" {
			t.Fatalf("unexpected filter: %s", r.URL.RawQuery)
		}
		if r.URL.Query().Get("limit") != "1" {
			t.Fatalf("single-row lookup without limit: %s", r.URL.RawQuery)
		}
		io.WriteString(w, "[]")
	}))
	defer server.Close()

	c := NewClient(server.URL, "key")
	if _, err := c.UserByTelegramID(context.Background(), "11"); err != ErrNotFound {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestEnsureUserCreatesOnMiss(t *testing.T) {
	var inserted gjson.Result
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("apikey") != "key" || r.Header.Get("Authorization") != "Bearer key" {
			t.Fatalf("auth headers missing: %v", r.Header)
		}
		switch r.Method {
		case http.MethodGet:
			io.WriteString(w, "[]")
		case http.MethodPost:
			if r.Header.Get("Prefer") != "return=representation" {
				t.Fatalf("insert without representation: %q", r.Header.Get("Prefer"))
			}
			body, _ := io.ReadAll(r.Body)
			inserted = gjson.ParseBytes(body)
			io.WriteString(w, `[{"id":"u-1","telegram_id":"11","username":"mira","total_xp":0}]`)
		default:
			t.Fatalf("unexpected method: %s", r.Method)
		}
	}))
	defer server.Close()

	c := NewClient(server.URL, "key")
	u, created, err := c.EnsureUser(context.Background(), "11", "mira")
	if err != nil {
		t.Fatalf("ensure failed: %v", err)
	}
	if !created {
		t.Fatal("expected created=true for a first-time user")
	}
	if u.ID != "u-1" || u.Username != "mira" {
		t.Fatalf("unexpected user: %+v", u)
	}
	if inserted.Get("telegram_id").String() != "11" || inserted.Get("username").String() != "mira" {
		t.Fatalf("unexpected insert body: %s", inserted.Raw)
	}
}

func TestEnsureUserReturnsExisting(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			t.Fatalf("unexpected write for an existing user: %s", r.Method)
		}
		io.WriteString(w, `[{"id":"u-1","telegram_id":"11","username":"mira","workspace_id":"ws-1"}]`)
	}))
	defer server.Close()

	c := NewClient(server.URL, "key")
	u, created, err := c.EnsureUser(context.Background(), "11", "mira")
	if err != nil || created {
		t.Fatalf("ensure: %+v created=%v err=%v", u, created, err)
	}
	if u.WorkspaceID != "ws-1" {
		t.Fatalf("workspace lost: %+v", u)
	}
}

func TestCreateTaskBody(t *testing.T) {
	var body gjson.Result
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, _ := io.ReadAll(r.Body)
		body = gjson.ParseBytes(raw)
		io.WriteString(w, `[{"id":"task-1"}]`)
	}))
	defer server.Close()

	c := NewClient(server.URL, "key")
	deadline := time.Date(2025, 10, 2, 15, 0, 0, 0, time.UTC)
	id, err := c.CreateTask(context.Background(), "ws-1", "admin-id", "ivan-id", "Помыть витрину", "До открытия", deadline)
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if id != "task-1" {
		t.Fatalf("unexpected id: %s", id)
	}
	if body.Get("status").String() != TaskAssigned {
		t.Fatalf("new task status = %q", body.Get("status").String())
	}
	if body.Get("deadline").String() != "2025-10-02T15:00:00Z" {
		t.Fatalf("deadline = %q", body.Get("deadline").String())
	}
}

func TestCreateTaskNullDeadline(t *testing.T) {
	var body gjson.Result
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, _ := io.ReadAll(r.Body)
		body = gjson.ParseBytes(raw)
		io.WriteString(w, `[{"id":"task-1"}]`)
	}))
	defer server.Close()

	c := NewClient(server.URL, "key")
	if _, err := c.CreateTask(context.Background(), "ws-1", "a", "b", "t", "d", time.Time{}); err != nil {
		t.Fatalf("create failed: %v", err)
	}
	d := body.Get("deadline")
	if !d.Exists() || d.Type != gjson.Null {
		t.Fatalf("zero deadline should be stored as null, got %s", d.Raw)
	}
}

func TestCreateIssueNullWorkspace(t *testing.T) {
	var body gjson.Result
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, _ := io.ReadAll(r.Body)
		body = gjson.ParseBytes(raw)
		io.WriteString(w, `[{"id":"issue-1"}]`)
	}))
	defer server.Close()

	c := NewClient(server.URL, "key")
	id, err := c.CreateIssue(context.Background(), "u-1", "", "Оборудование", "Сломалась кофемолка", "")
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if id != "issue-1" {
		t.Fatalf("unexpected id: %s", id)
	}
	ws := body.Get("workspace_id")
	if !ws.Exists() || ws.Type != gjson.Null {
		t.Fatalf("empty workspace should be stored as null, got %s", ws.Raw)
	}
	photo := body.Get("photo_url")
	if !photo.Exists() || photo.Type != gjson.Null {
		t.Fatalf("empty photo should be stored as null, got %s", photo.Raw)
	}
}

func TestCreateIssueKeepsWorkspace(t *testing.T) {
	var body gjson.Result
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, _ := io.ReadAll(r.Body)
		body = gjson.ParseBytes(raw)
		io.WriteString(w, `[{"id":"issue-2"}]`)
	}))
	defer server.Close()

	c := NewClient(server.URL, "key")
	if _, err := c.CreateIssue(context.Background(), "u-1", "ws-1", "Уборка", "d", "https://files/p.jpg"); err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if body.Get("workspace_id").String() != "ws-1" {
		t.Fatalf("workspace lost: %s", body.Raw)
	}
}

func TestWorkspaceTasksFilters(t *testing.T) {
	now := time.Date(2025, 10, 1, 12, 0, 0, 0, time.UTC)
	var lastQuery string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		lastQuery = r.URL.RawQuery
		io.WriteString(w, "[]")
	}))
	defer server.Close()

	c := NewClient(server.URL, "key")
	ctx := context.Background()

	if _, err := c.WorkspaceTasks(ctx, "ws-1", TaskFilter{Status: "active"}); err != nil {
		t.Fatalf("active: %v", err)
	}
	q, _ := url.ParseQuery(lastQuery)
	if q.Get("status") != "in.(assigned,in_progress)" {
		t.Fatalf("active filter: %s", lastQuery)
	}

	if _, err := c.WorkspaceTasks(ctx, "ws-1", TaskFilter{Status: "overdue", Now: now}); err != nil {
		t.Fatalf("overdue: %v", err)
	}
	q, _ = url.ParseQuery(lastQuery)
	if q.Get("deadline") != "lt.2025-10-01T12:00:00Z" {
		t.Fatalf("overdue filter: %s", lastQuery)
	}

	if _, err := c.WorkspaceTasks(ctx, "ws-1", TaskFilter{Status: "pending_review"}); err != nil {
		t.Fatalf("pending: %v", err)
	}
	q, _ = url.ParseQuery(lastQuery)
	if q.Get("status") != "eq.pending_review" {
		t.Fatalf("literal filter: %s", lastQuery)
	}
	if q.Get("order") != "created_at.desc" {
		t.Fatalf("order missing: %s", lastQuery)
	}
}

func TestTaskStatsBuckets(t *testing.T) {
	now := time.Date(2025, 10, 1, 12, 0, 0, 0, time.UTC)
	rows := []map[string]interface{}{
		{"status": TaskApproved},
		{"status": TaskApproved},
		{"status": TaskAssigned, "deadline": "2025-09-30T10:00:00Z"},
		{"status": TaskInProgress, "deadline": "2025-10-05T10:00:00Z"},
		{"status": TaskPendingReview},
	}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(rows)
	}))
	defer server.Close()

	c := NewClient(server.URL, "key")
	stats, err := c.TaskStats(context.Background(), "ws-1", now)
	if err != nil {
		t.Fatalf("stats failed: %v", err)
	}
	want := WorkspaceTaskStats{Total: 5, Completed: 2, Active: 2, Overdue: 1}
	if stats != want {
		t.Fatalf("stats = %+v, want %+v", stats, want)
	}
}

func TestCallReportsErrorBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		io.WriteString(w, `{"message":"bad key"}`)
	}))
	defer server.Close()

	c := NewClient(server.URL, "wrong")
	_, err := c.UserByTelegramID(context.Background(), "11")
	if err == nil || err == ErrNotFound {
		t.Fatalf("expected transport error, got %v", err)
	}
}
