package dialog

import "testing"

func TestIssueFlow(t *testing.T) {
	st := NewIssueState("task-1")
	if st.Data["task_id"] != "task-1" {
		t.Fatalf("task link not stored: %v", st.Data)
	}

	next, ok := SetIssueCategory(st, "Оборудование")
	if !ok || next.Step != StepDescription {
		t.Fatalf("category: %+v ok=%v", next, ok)
	}

	r := AdvanceIssueText(next, "Сломалась кофемашина")
	if r.Outcome != OutcomePrompt || r.Next.Step != StepPhoto {
		t.Fatalf("description: %+v", r)
	}

	done, ok := FinishIssue(r.Next, "https://files.example/photo.jpg")
	if !ok || done.Step != StepDone {
		t.Fatalf("finish: %+v ok=%v", done, ok)
	}
	if done.Data["photo_url"] != "https://files.example/photo.jpg" {
		t.Fatalf("photo not stored: %v", done.Data)
	}
}

func TestIssueSkippedPhoto(t *testing.T) {
	st := NewIssueState("")
	st, _ = SetIssueCategory(st, "Другое")
	r := AdvanceIssueText(st, "Нет салфеток")

	done, ok := FinishIssue(r.Next, "")
	if !ok {
		t.Fatal("skip rejected")
	}
	if done.Data["photo_url"] != "" {
		t.Fatalf("expected empty photo, got %q", done.Data["photo_url"])
	}
}

func TestIssueStepGuards(t *testing.T) {
	st := NewIssueState("")
	if _, ok := FinishIssue(st, ""); ok {
		t.Fatal("finished before the photo step")
	}
	if _, ok := SetIssueCategory(NewTaskState(), "Уборка"); ok {
		t.Fatal("category applied to a foreign dialog")
	}
}
