package bot

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"taskdesk/app/core/dates"
	"taskdesk/app/core/dialog"
	"taskdesk/app/core/store"
	"taskdesk/app/pkg/logger"
	"taskdesk/app/pkg/types"
)

var testNow = time.Date(2025, 10, 1, 12, 0, 0, 0, time.UTC)

type createdTask struct {
	workspaceID string
	creatorID   string
	assigneeID  string
	title       string
	description string
	deadline    time.Time
}

type fakeRecords struct {
	usersByTG   map[string]store.User
	usersByName map[string]store.User
	wsByCode    map[string]store.Workspace

	createdTasks      []createdTask
	openTasks         []store.Task
	userTasks         []store.Task
	setWorkspaceCalls [][2]string
	statusCalls       [][2]string
	issues            int
}

func newFakeRecords() *fakeRecords {
	return &fakeRecords{
		usersByTG:   map[string]store.User{},
		usersByName: map[string]store.User{},
		wsByCode:    map[string]store.Workspace{},
	}
}

func (f *fakeRecords) UserByTelegramID(_ context.Context, telegramID string) (store.User, error) {
	u, ok := f.usersByTG[telegramID]
	if !ok {
		return store.User{}, store.ErrNotFound
	}
	return u, nil
}

func (f *fakeRecords) EnsureUser(_ context.Context, telegramID, username string) (store.User, bool, error) {
	if u, ok := f.usersByTG[telegramID]; ok {
		return u, false, nil
	}
	u := store.User{ID: "u-" + telegramID, TelegramID: telegramID, Username: username}
	f.usersByTG[telegramID] = u
	return u, true, nil
}

func (f *fakeRecords) UserByUsername(_ context.Context, username string) (store.User, error) {
	u, ok := f.usersByName[username]
	if !ok {
		return store.User{}, store.ErrNotFound
	}
	return u, nil
}

func (f *fakeRecords) UsersByWorkspace(context.Context, string) ([]store.User, error) {
	return nil, nil
}

func (f *fakeRecords) SetUserWorkspace(_ context.Context, userID, workspaceID string) error {
	f.setWorkspaceCalls = append(f.setWorkspaceCalls, [2]string{userID, workspaceID})
	return nil
}

func (f *fakeRecords) SetUsername(context.Context, string, string) error { return nil }

func (f *fakeRecords) CreateWorkspace(_ context.Context, name, timezone string) (store.Workspace, error) {
	return store.Workspace{ID: "ws-new", Name: name, InviteCode: "AB3X9K", Timezone: timezone}, nil
}

func (f *fakeRecords) WorkspaceByID(_ context.Context, id string) (store.Workspace, error) {
	return store.Workspace{ID: id, Name: "Кофейня"}, nil
}

func (f *fakeRecords) WorkspaceByInviteCode(_ context.Context, code string) (store.Workspace, error) {
	ws, ok := f.wsByCode[code]
	if !ok {
		return store.Workspace{}, store.ErrNotFound
	}
	return ws, nil
}

func (f *fakeRecords) ListRoles(context.Context) ([]store.Role, error)    { return nil, nil }
func (f *fakeRecords) RoleByName(context.Context, string) (store.Role, error) {
	return store.Role{}, store.ErrNotFound
}
func (f *fakeRecords) AssignRole(context.Context, string, int64) error  { return nil }
func (f *fakeRecords) UserAccessLevel(context.Context, string) (int, error) { return 0, nil }
func (f *fakeRecords) UserRoleName(context.Context, string) (string, error) { return "", nil }

func (f *fakeRecords) CreateTask(_ context.Context, workspaceID, creatorID, assigneeID, title, description string, deadline time.Time) (string, error) {
	f.createdTasks = append(f.createdTasks, createdTask{workspaceID, creatorID, assigneeID, title, description, deadline})
	return "task-1", nil
}

func (f *fakeRecords) TaskByID(context.Context, string) (store.Task, error) {
	return store.Task{}, store.ErrNotFound
}

func (f *fakeRecords) SetTaskStatus(_ context.Context, taskID, status string) error {
	f.statusCalls = append(f.statusCalls, [2]string{taskID, status})
	return nil
}

func (f *fakeRecords) WorkspaceTasks(context.Context, string, store.TaskFilter) ([]store.Task, error) {
	return nil, nil
}
func (f *fakeRecords) UserTasks(context.Context, string) ([]store.Task, error) {
	return f.userTasks, nil
}
func (f *fakeRecords) OpenTasksWithDeadlines(context.Context) ([]store.Task, error) {
	return f.openTasks, nil
}
func (f *fakeRecords) TaskStats(context.Context, string, time.Time) (store.WorkspaceTaskStats, error) {
	return store.WorkspaceTaskStats{}, nil
}

func (f *fakeRecords) CreateIssue(context.Context, string, string, string, string, string) (string, error) {
	f.issues++
	return "issue-1", nil
}
func (f *fakeRecords) WorkspaceIssues(context.Context, string) ([]store.Issue, error) {
	return nil, nil
}
func (f *fakeRecords) SetIssueStatus(context.Context, string, string) error { return nil }

func (f *fakeRecords) CreateTaskTemplate(context.Context, string, string, string, string, int) (store.TaskTemplate, error) {
	return store.TaskTemplate{}, nil
}
func (f *fakeRecords) TaskTemplates(context.Context, string) ([]store.TaskTemplate, error) {
	return nil, nil
}
func (f *fakeRecords) TaskTemplateByID(context.Context, string) (store.TaskTemplate, error) {
	return store.TaskTemplate{}, store.ErrNotFound
}
func (f *fakeRecords) DeleteTaskTemplate(context.Context, string) error { return nil }

func (f *fakeRecords) CreateChecklistTemplate(context.Context, string, string, string, []store.ChecklistItemSpec) (string, error) {
	return "cl-1", nil
}

type sentMsg struct {
	chatID string
	text   string
	kb     *types.Keyboard
}

type fakeChat struct {
	sent    []sentMsg
	edits   []sentMsg
	answers []string
}

func (f *fakeChat) SendText(_ context.Context, chatID, text string, kb *types.Keyboard) error {
	f.sent = append(f.sent, sentMsg{chatID, text, kb})
	return nil
}

func (f *fakeChat) EditMessage(_ context.Context, chatID, _ string, text string, kb *types.Keyboard) error {
	f.edits = append(f.edits, sentMsg{chatID, text, kb})
	return nil
}

func (f *fakeChat) AnswerCallback(_ context.Context, _, text string) error {
	f.answers = append(f.answers, text)
	return nil
}

func (f *fakeChat) FileURL(_ context.Context, fileID string) (string, error) {
	return "https://files.example/" + fileID, nil
}

func (f *fakeChat) sentTo(chatID string) []string {
	var texts []string
	for _, m := range f.sent {
		if m.chatID == chatID {
			texts = append(texts, m.text)
		}
	}
	return texts
}

func newTestBot(records *fakeRecords) (*Bot, *fakeChat) {
	chat := &fakeChat{}
	b := New(records, dialog.NewMemoryStore(), chat, Config{
		AdminID:     "1",
		BotUsername: "taskdesk_bot",
		Location:    time.UTC,
	})
	b.Now = func() time.Time { return testNow }
	return b, chat
}

func textUpdate(userID, text string) types.Update {
	return types.Update{Kind: types.UpdateText, ChatID: userID, UserID: userID, Username: "user" + userID, Text: text}
}

func TestTaskCreationDialog(t *testing.T) {
	records := newFakeRecords()
	records.usersByTG["1"] = store.User{ID: "admin-id", TelegramID: "1", Username: "boss", WorkspaceID: "ws-1"}
	records.usersByName["ivan"] = store.User{ID: "ivan-id", TelegramID: "22", Username: "ivan"}
	b, chat := newTestBot(records)
	ctx := context.Background()

	b.Handle(ctx, textUpdate("1", btnCreateTask))
	if st, ok := b.dialogs.Get("1"); !ok || st.Action != dialog.ActionCreatingTask {
		t.Fatalf("dialog not started: %+v ok=%v", st, ok)
	}

	b.Handle(ctx, textUpdate("1", "Помыть витрину"))
	b.Handle(ctx, textUpdate("1", "До открытия"))
	b.Handle(ctx, textUpdate("1", "@ivan"))
	b.Handle(ctx, textUpdate("1", "завтра в 15:00"))

	if len(records.createdTasks) != 1 {
		t.Fatalf("created %d tasks", len(records.createdTasks))
	}
	got := records.createdTasks[0]
	if got.workspaceID != "ws-1" || got.creatorID != "admin-id" || got.assigneeID != "ivan-id" {
		t.Fatalf("wrong identities: %+v", got)
	}
	if got.title != "Помыть витрину" || got.description != "До открытия" {
		t.Fatalf("wrong content: %+v", got)
	}
	want := time.Date(2025, 10, 2, 15, 0, 0, 0, time.UTC)
	if !got.deadline.Equal(want) {
		t.Fatalf("deadline = %v, want %v", got.deadline, want)
	}

	if _, ok := b.dialogs.Get("1"); ok {
		t.Fatal("dialog not cleared after commit")
	}

	adminTexts := chat.sentTo("1")
	if len(adminTexts) == 0 || !strings.Contains(adminTexts[len(adminTexts)-1], "✅ Задача создана") {
		t.Fatalf("confirmation missing: %v", adminTexts)
	}
	assigneeTexts := chat.sentTo("22")
	if len(assigneeTexts) != 1 || !strings.Contains(assigneeTexts[0], "Новая задача") {
		t.Fatalf("assignee not notified: %v", assigneeTexts)
	}
}

func TestQuickDeadlineButtonCreatesTask(t *testing.T) {
	records := newFakeRecords()
	records.usersByTG["1"] = store.User{ID: "admin-id", TelegramID: "1", Username: "boss", WorkspaceID: "ws-1"}
	records.usersByTG["22"] = store.User{ID: "ivan-id", TelegramID: "22", Username: "ivan"}
	b, _ := newTestBot(records)
	ctx := context.Background()

	st := dialog.NewTaskState()
	for _, input := range []string{"Задача", "Описание", "22"} {
		r := dialog.AdvanceTask(st, input, testNow)
		st = r.Next
	}
	b.dialogs.Set("1", st)

	b.Handle(ctx, types.Update{
		Kind:       types.UpdateCallback,
		ChatID:     "1",
		UserID:     "1",
		MessageID:  "5",
		CallbackID: "cb-1",
		Data:       "deadline:relative:3h",
	})

	if len(records.createdTasks) != 1 {
		t.Fatalf("button did not create the task: %d", len(records.createdTasks))
	}
	if !records.createdTasks[0].deadline.Equal(testNow.Add(3 * time.Hour)) {
		t.Fatalf("deadline = %v", records.createdTasks[0].deadline)
	}
	if _, ok := b.dialogs.Get("1"); ok {
		t.Fatal("dialog not cleared")
	}
}

func TestJoinCodeLengthRepromptsButUnknownCodeClears(t *testing.T) {
	records := newFakeRecords()
	records.usersByTG["33"] = store.User{ID: "u-33", TelegramID: "33", Username: "guest"}
	b, chat := newTestBot(records)
	ctx := context.Background()

	b.Handle(ctx, textUpdate("33", btnJoinWorkspace))

	// Wrong length keeps the dialog alive.
	b.Handle(ctx, textUpdate("33", "AB"))
	if st, ok := b.dialogs.Get("33"); !ok || st.Action != dialog.ActionJoiningWorkspace {
		t.Fatalf("dialog gone after length reprompt: %+v ok=%v", st, ok)
	}

	// A well-formed but unknown code ends the dialog.
	b.Handle(ctx, textUpdate("33", "ZZZZZZ"))
	if _, ok := b.dialogs.Get("33"); ok {
		t.Fatal("dialog survived unknown code")
	}
	texts := chat.sentTo("33")
	if !strings.Contains(texts[len(texts)-1], "Ссылка-приглашение недействительна") {
		t.Fatalf("rejection message missing: %v", texts)
	}
	if len(records.setWorkspaceCalls) != 0 {
		t.Fatalf("workspace attached on unknown code: %v", records.setWorkspaceCalls)
	}
}

func TestJoinCodeSuccess(t *testing.T) {
	records := newFakeRecords()
	records.usersByTG["33"] = store.User{ID: "u-33", TelegramID: "33", Username: "guest"}
	records.wsByCode["AB3X9K"] = store.Workspace{ID: "ws-1", Name: "Кофейня", InviteCode: "AB3X9K"}
	b, chat := newTestBot(records)
	ctx := context.Background()

	b.Handle(ctx, textUpdate("33", btnJoinWorkspace))
	b.Handle(ctx, textUpdate("33", "ab3x9k"))

	if len(records.setWorkspaceCalls) != 1 || records.setWorkspaceCalls[0] != [2]string{"u-33", "ws-1"} {
		t.Fatalf("workspace not attached: %v", records.setWorkspaceCalls)
	}
	texts := chat.sentTo("33")
	if !strings.Contains(texts[len(texts)-1], "Присоединились к рабочему пространству: Кофейня") {
		t.Fatalf("success message missing: %v", texts)
	}
}

func TestStartNewUserBeginsOnboarding(t *testing.T) {
	records := newFakeRecords()
	b, chat := newTestBot(records)
	ctx := context.Background()

	b.Handle(ctx, textUpdate("44", "/start"))

	st, ok := b.dialogs.Get("44")
	if !ok || st.Action != dialog.ActionOnboarding || st.Cursor != dialog.OnboardingFirst {
		t.Fatalf("onboarding not started: %+v ok=%v", st, ok)
	}
	texts := chat.sentTo("44")
	if len(texts) != 1 || !strings.Contains(texts[0], "Добро пожаловать") {
		t.Fatalf("first step not sent: %v", texts)
	}
}

func TestAdminPanelDeniedForMembers(t *testing.T) {
	records := newFakeRecords()
	records.usersByTG["55"] = store.User{ID: "u-55", TelegramID: "55"}
	b, chat := newTestBot(records)

	b.Handle(context.Background(), textUpdate("55", "/admin"))

	texts := chat.sentTo("55")
	if len(texts) != 1 || !strings.Contains(texts[0], "нет доступа") {
		t.Fatalf("denial missing: %v", texts)
	}
}

func TestReminderTextBuckets(t *testing.T) {
	task := store.Task{Title: "Сдать отчет"}
	cases := []struct {
		hoursLeft int
		want      string
	}{
		{-2, "ЗАДАЧА ПРОСРОЧЕНА"},
		{0, "ЗАДАЧА ПРОСРОЧЕНА"},
		{1, "СРОЧНО! Через 1ч"},
		{3, "Напоминание: через 3ч"},
		{24, "Завтра дедлайн"},
	}
	for _, tc := range cases {
		got := reminderText(task, tc.hoursLeft)
		if !strings.Contains(got, tc.want) {
			t.Fatalf("hoursLeft=%d: %q does not contain %q", tc.hoursLeft, got, tc.want)
		}
	}
	if got := reminderText(task, 48); got != "" {
		t.Fatalf("distant deadline should be silent, got %q", got)
	}
}

func TestCommandsBypassActiveDialog(t *testing.T) {
	records := newFakeRecords()
	records.usersByTG["1"] = store.User{ID: "admin-id", TelegramID: "1", Username: "boss", WorkspaceID: "ws-1"}
	b, chat := newTestBot(records)
	ctx := context.Background()

	b.Handle(ctx, textUpdate("1", btnCreateTask))
	b.Handle(ctx, textUpdate("1", "/help"))

	st, ok := b.dialogs.Get("1")
	if !ok || st.Action != dialog.ActionCreatingTask {
		t.Fatalf("dialog lost: %+v ok=%v", st, ok)
	}
	if st.Data["title"] != "" {
		t.Fatalf("command captured as the task title: %q", st.Data["title"])
	}
	texts := chat.sentTo("1")
	if texts[len(texts)-1] != dialog.HelpText() {
		t.Fatalf("help not sent: %v", texts)
	}

	// A menu button also cuts through and replaces the dialog.
	b.Handle(ctx, textUpdate("1", btnJoinWorkspace))
	if st, _ := b.dialogs.Get("1"); st.Action != dialog.ActionJoiningWorkspace {
		t.Fatalf("menu label swallowed by dialog: %+v", st)
	}
}

func TestSkipStaysWithIssueDialog(t *testing.T) {
	records := newFakeRecords()
	records.usersByTG["33"] = store.User{ID: "u-33", TelegramID: "33", Username: "guest"}
	b, chat := newTestBot(records)
	ctx := context.Background()

	st := dialog.NewIssueState("")
	st, _ = dialog.SetIssueCategory(st, "Оборудование")
	r := dialog.AdvanceIssueText(st, "Сломалась кофемолка")
	b.dialogs.Set("33", r.Next)

	b.Handle(ctx, textUpdate("33", "/skip"))

	if records.issues != 1 {
		t.Fatalf("issue not created on /skip: %d", records.issues)
	}
	texts := chat.sentTo("33")
	if !strings.Contains(texts[len(texts)-1], "Проблема зарегистрирована") {
		t.Fatalf("confirmation missing: %v", texts)
	}
}

func TestMobileUsernameGetsCompactTaskList(t *testing.T) {
	records := newFakeRecords()
	records.usersByTG["66"] = store.User{ID: "u-66", TelegramID: "66", Username: "olga_iphone", WorkspaceID: "ws-1"}
	records.userTasks = []store.Task{{
		ID: "t1", Title: "Открыть кафе", Status: store.TaskAssigned,
		AssignedTo: store.TaskUser{Username: "olga_iphone"},
	}}
	b, chat := newTestBot(records)
	ctx := context.Background()

	mobile := types.Update{Kind: types.UpdateText, ChatID: "66", UserID: "66", Username: "olga_iphone", Text: btnMemberTasks}
	b.Handle(ctx, mobile)
	texts := chat.sentTo("66")
	if len(texts) == 0 || strings.Contains(texts[len(texts)-1], "┌") {
		t.Fatalf("device-hinted username got the framed list: %v", texts)
	}

	records.usersByTG["67"] = store.User{ID: "u-67", TelegramID: "67", Username: "olga", WorkspaceID: "ws-1"}
	desktop := types.Update{Kind: types.UpdateText, ChatID: "67", UserID: "67", Username: "olga", Text: btnMemberTasks}
	b.Handle(ctx, desktop)
	texts = chat.sentTo("67")
	if len(texts) == 0 || !strings.Contains(texts[len(texts)-1], "┌") {
		t.Fatalf("plain username lost the framed list: %v", texts)
	}
}

func TestHandleLogsRequestID(t *testing.T) {
	dir := t.TempDir()
	if err := logger.Init(dir); err != nil {
		t.Fatalf("logger init failed: %v", err)
	}
	b, _ := newTestBot(newFakeRecords())

	u := textUpdate("77", "/help")
	u.RequestID = "req-abc123"
	b.Handle(context.Background(), u)

	entries, err := os.ReadDir(dir)
	if err != nil || len(entries) != 1 {
		t.Fatalf("log file missing: %v err=%v", entries, err)
	}
	data, err := os.ReadFile(filepath.Join(dir, entries[0].Name()))
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	if !strings.Contains(string(data), "req-abc123") {
		t.Fatalf("request id not logged:\n%s", data)
	}
}

func TestQuickDeadlineKeyboardMirrorsQuickOptions(t *testing.T) {
	b, _ := newTestBot(newFakeRecords())

	kb := b.deadlineQuickKeyboard()
	var labels []string
	for _, row := range kb.Inline {
		for _, btn := range row {
			labels = append(labels, btn.Label)
		}
	}
	if labels[len(labels)-1] != "📅 Выбрать дату" {
		t.Fatalf("custom-date button missing: %v", labels)
	}
	labels = labels[:len(labels)-1]

	opts := dates.QuickOptions(testNow)
	if len(labels) != len(opts) {
		t.Fatalf("keyboard has %d quick buttons, want %d", len(labels), len(opts))
	}
	for i, opt := range opts {
		if labels[i] != opt.Label {
			t.Fatalf("button %d = %q, want %q", i, labels[i], opt.Label)
		}
	}
}

func TestSweepReminders(t *testing.T) {
	records := newFakeRecords()
	records.openTasks = []store.Task{
		{ID: "t1", Title: "Просроченная", Status: store.TaskAssigned, Deadline: testNow.Add(-time.Hour), AssignedTo: store.TaskUser{TelegramID: "22", Username: "ivan"}},
		{ID: "t2", Title: "Скоро", Status: store.TaskInProgress, Deadline: testNow.Add(2 * time.Hour), AssignedTo: store.TaskUser{TelegramID: "23", Username: "olga"}},
		{ID: "t3", Title: "Далекая", Status: store.TaskAssigned, Deadline: testNow.Add(48 * time.Hour), AssignedTo: store.TaskUser{TelegramID: "24"}},
		{ID: "t4", Title: "Без дедлайна", Status: store.TaskAssigned, AssignedTo: store.TaskUser{TelegramID: "25"}},
		{ID: "t5", Title: "Без телеграма", Status: store.TaskAssigned, Deadline: testNow.Add(time.Hour)},
	}
	b, chat := newTestBot(records)

	if err := b.SweepReminders(context.Background()); err != nil {
		t.Fatalf("sweep failed: %v", err)
	}

	if len(chat.sent) != 2 {
		t.Fatalf("sent %d reminders, want 2: %+v", len(chat.sent), chat.sent)
	}
	overdue := chat.sentTo("22")
	if len(overdue) != 1 || !strings.Contains(overdue[0], "ПРОСРОЧЕНА") {
		t.Fatalf("overdue reminder: %v", overdue)
	}
	soon := chat.sentTo("23")
	if len(soon) != 1 || !strings.Contains(soon[0], "через 2ч") {
		t.Fatalf("near reminder: %v", soon)
	}
}
