package engine

import (
	"errors"
	"testing"
	"time"

	"github.com/evertsen/kidschores/internal/model"
)

func TestTaskLifecycleEarnsPoints(t *testing.T) {
	e, _ := newTestEngine(t)

	child, err := e.AddChild("Emma")
	if err != nil {
		t.Fatalf("add child: %v", err)
	}

	task, err := e.AddTask(TaskParams{Title: "Clean room", Points: 5, ChildID: &child.ID})
	if err != nil {
		t.Fatalf("add task: %v", err)
	}

	if _, err := e.SetTaskStatus(task.ID, model.StatusInProgress); err != nil {
		t.Fatalf("set in_progress: %v", err)
	}
	if _, err := e.SetTaskStatus(task.ID, model.StatusAwaitingApproval); err != nil {
		t.Fatalf("set awaiting_approval: %v", err)
	}

	approved, err := e.ApproveTask(task.ID)
	if err != nil {
		t.Fatalf("approve task: %v", err)
	}
	if approved.Status != model.StatusApproved {
		t.Errorf("status = %s, want approved", approved.Status)
	}
	if approved.ApprovedAt == nil {
		t.Error("expected approved_at set")
	}

	got, _ := e.GetChild(child.ID)
	if got.Points != 5 {
		t.Errorf("points = %d, want 5", got.Points)
	}
}

func TestAddTaskValidation(t *testing.T) {
	e, _ := newTestEngine(t)

	if _, err := e.AddTask(TaskParams{Title: ""}); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("expected ErrInvalidArgument for empty title, got %v", err)
	}
	if _, err := e.AddTask(TaskParams{Title: "x", Points: -1}); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("expected ErrInvalidArgument for negative points, got %v", err)
	}

	unknown := "nope"
	if _, err := e.AddTask(TaskParams{Title: "x", ChildID: &unknown}); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound for unknown assignee, got %v", err)
	}
	if _, err := e.AddTask(TaskParams{Title: "x", RepeatDays: []any{"mon"}, RepeatChildID: &unknown}); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound for unknown repeat target, got %v", err)
	}
}

func TestSetTaskStatusRejectsUnknown(t *testing.T) {
	e, _ := newTestEngine(t)

	task, _ := e.AddTask(TaskParams{Title: "Dishes"})
	if _, err := e.SetTaskStatus(task.ID, "done"); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("expected ErrInvalidArgument, got %v", err)
	}

	got, _ := e.GetTask(task.ID)
	if got.Status != model.StatusAssigned {
		t.Errorf("status = %s, want unchanged assigned", got.Status)
	}
}

func TestSetTaskStatusAnyDirection(t *testing.T) {
	e, _ := newTestEngine(t)

	task, _ := e.AddTask(TaskParams{Title: "Dishes"})

	// No transition table: rejected back to assigned is fine
	for _, status := range []string{
		model.StatusRejected, model.StatusAssigned,
		model.StatusApproved, model.StatusInProgress,
	} {
		got, err := e.SetTaskStatus(task.ID, status)
		if err != nil {
			t.Fatalf("set %s: %v", status, err)
		}
		if got.Status != status {
			t.Errorf("status = %s, want %s", got.Status, status)
		}
	}
}

func TestAssignTaskDoesNotTouchStatus(t *testing.T) {
	e, _ := newTestEngine(t)

	child, _ := e.AddChild("Emma")
	task, _ := e.AddTask(TaskParams{Title: "Dishes"})
	e.SetTaskStatus(task.ID, model.StatusInProgress)

	got, err := e.AssignTask(task.ID, &child.ID)
	if err != nil {
		t.Fatalf("assign task: %v", err)
	}
	if got.AssignedTo == nil || *got.AssignedTo != child.ID {
		t.Error("expected task assigned")
	}
	if got.Status != model.StatusInProgress {
		t.Errorf("status = %s, want in_progress untouched", got.Status)
	}

	// Clearing works too
	got, err = e.AssignTask(task.ID, nil)
	if err != nil {
		t.Fatalf("unassign task: %v", err)
	}
	if got.AssignedTo != nil {
		t.Error("expected assignment cleared")
	}
}

func TestApproveUnassignedOnlyChangesStatus(t *testing.T) {
	e, _ := newTestEngine(t)

	child, _ := e.AddChild("Emma")
	task, _ := e.AddTask(TaskParams{Title: "Dishes", Points: 5})

	approved, err := e.ApproveTask(task.ID)
	if err != nil {
		t.Fatalf("approve task: %v", err)
	}
	if approved.Status != model.StatusApproved {
		t.Errorf("status = %s, want approved", approved.Status)
	}

	got, _ := e.GetChild(child.ID)
	if got.Points != 0 {
		t.Errorf("points = %d, want 0 (nobody credited)", got.Points)
	}
}

func TestApproveOrphanedAssigneeFails(t *testing.T) {
	e, _ := newTestEngine(t)

	child, _ := e.AddChild("Emma")
	task, _ := e.AddTask(TaskParams{Title: "Dishes", Points: 5, ChildID: &child.ID})

	// Delete the child behind the engine's back so the reference dangles
	if err := e.children.Delete(child.ID); err != nil {
		t.Fatalf("delete child: %v", err)
	}

	if _, err := e.ApproveTask(task.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}

	got, _ := e.GetTask(task.ID)
	if got.Status == model.StatusApproved {
		t.Error("expected status unchanged after failed approval")
	}
}

func TestSetTaskRepeatNoPartialInstall(t *testing.T) {
	e, _ := newTestEngine(t)

	child, _ := e.AddChild("Emma")
	task, _ := e.AddTask(TaskParams{Title: "Sweep"})

	got, err := e.SetTaskRepeat(task.ID, []any{"mon", "thu"}, &child.ID)
	if err != nil {
		t.Fatalf("set repeat: %v", err)
	}
	if len(got.RepeatDays) != 2 || got.RepeatChildID == nil {
		t.Errorf("repeat rule not installed: %+v", got)
	}

	// An invalid token leaves the old rule intact
	if _, err := e.SetTaskRepeat(task.ID, []any{"mon", "bogus"}, nil); !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("expected ErrInvalidArgument, got %v", err)
	}
	got, _ = e.GetTask(task.ID)
	if len(got.RepeatDays) != 2 || got.RepeatChildID == nil {
		t.Errorf("failed call mutated the rule: %+v", got)
	}

	// Empty set clears the rule
	got, err = e.SetTaskRepeat(task.ID, nil, nil)
	if err != nil {
		t.Fatalf("clear repeat: %v", err)
	}
	if got.IsTemplate() || got.RepeatChildID != nil {
		t.Errorf("rule not cleared: %+v", got)
	}
}

func TestSpawnTaskInstance(t *testing.T) {
	e, _ := newTestEngine(t)

	child, _ := e.AddChild("Emma")
	dueAt := time.Date(2026, 8, 20, 17, 30, 0, 0, time.Local)
	tpl, err := e.AddTask(TaskParams{
		Title:         "Water plants",
		Points:        2,
		Due:           &dueAt,
		RepeatDays:    []any{"sun"},
		RepeatChildID: &child.ID,
	})
	if err != nil {
		t.Fatalf("add template: %v", err)
	}

	now := time.Date(2026, 8, 23, 0, 5, 0, 0, time.Local)
	instance, err := e.SpawnTaskInstance(tpl.ID, now)
	if err != nil {
		t.Fatalf("spawn instance: %v", err)
	}
	if instance == nil {
		t.Fatal("expected instance, got nil")
	}
	if instance.IsTemplate() {
		t.Error("instance must not carry the repeat rule")
	}
	if instance.TemplateID == nil || *instance.TemplateID != tpl.ID {
		t.Error("instance must reference the template")
	}
	if instance.AssignedTo == nil || *instance.AssignedTo != child.ID {
		t.Error("instance must go to the repeat target")
	}
	if instance.Status != model.StatusAssigned {
		t.Errorf("status = %s, want assigned", instance.Status)
	}
	// Due carries the template's time of day onto today's date
	if instance.Due == nil || instance.Due.Hour() != 17 || instance.Due.Minute() != 30 {
		t.Errorf("due = %v, want today 17:30", instance.Due)
	}
	if instance.Due.Day() != 23 {
		t.Errorf("due day = %d, want 23", instance.Due.Day())
	}

	// Same day again is a no-op
	again, err := e.SpawnTaskInstance(tpl.ID, now.Add(2*time.Hour))
	if err != nil {
		t.Fatalf("respawn: %v", err)
	}
	if again != nil {
		t.Errorf("expected idempotent no-op, got %+v", again)
	}
}

func TestSpawnTaskInstanceMissingTarget(t *testing.T) {
	e, _ := newTestEngine(t)

	child, _ := e.AddChild("Emma")
	tpl, _ := e.AddTask(TaskParams{
		Title:         "Water plants",
		RepeatDays:    []any{"sun"},
		RepeatChildID: &child.ID,
	})
	e.children.Delete(child.ID)

	if _, err := e.SpawnTaskInstance(tpl.ID, time.Now()); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound for deleted repeat target, got %v", err)
	}
}

func TestAwaitingApprovalNotifies(t *testing.T) {
	e, _ := newTestEngine(t)
	n := &fakeNotifier{notified: make(chan string, 1)}
	e.notifier = n

	child, _ := e.AddChild("Emma")
	task, _ := e.AddTask(TaskParams{Title: "Dishes", ChildID: &child.ID})

	if _, err := e.SetTaskStatus(task.ID, model.StatusAwaitingApproval); err != nil {
		t.Fatalf("set status: %v", err)
	}

	select {
	case id := <-n.notified:
		if id != task.ID {
			t.Errorf("notified for %s, want %s", id, task.ID)
		}
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for notification")
	}
}
