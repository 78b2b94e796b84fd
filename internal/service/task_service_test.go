package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"daylist/internal/apperr"
	"daylist/internal/model"
	"daylist/internal/repository"
)

func newTestTaskService(t *testing.T) *TaskService {
	t.Helper()
	db, err := repository.NewDB(":memory:")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	return NewTaskService(repository.NewTaskRepository(db))
}

func TestCreateDefaultsDateToToday(t *testing.T) {
	svc := newTestTaskService(t)
	now := time.Date(2024, 3, 15, 17, 30, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }

	task, err := svc.Create(context.Background(), "u1", CreateInput{Title: "buy milk"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	want := time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)
	if !task.Date.Equal(want) {
		t.Errorf("date = %v, want %v", task.Date, want)
	}
	if task.Completed {
		t.Error("new task must start incomplete")
	}
	if task.Priority != model.PriorityMedium {
		t.Errorf("priority = %q, want default Medium", task.Priority)
	}
}

func TestCreateRejectsEmptyTitle(t *testing.T) {
	svc := newTestTaskService(t)

	if _, err := svc.Create(context.Background(), "u1", CreateInput{Title: "   "}); !errors.Is(err, apperr.ErrValidation) {
		t.Fatalf("err = %v, want ErrValidation", err)
	}
}

func TestCreateRejectsUnknownPriority(t *testing.T) {
	svc := newTestTaskService(t)

	_, err := svc.Create(context.Background(), "u1", CreateInput{Title: "x", Priority: "Urgent"})
	if !errors.Is(err, apperr.ErrValidation) {
		t.Fatalf("err = %v, want ErrValidation", err)
	}
}

func TestCompletedAtFollowsCompletedFlag(t *testing.T) {
	svc := newTestTaskService(t)
	ctx := context.Background()

	task, err := svc.Create(ctx, "u1", CreateInput{Title: "write report"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if task.CompletedAt != nil {
		t.Fatal("completed_at must be nil on a fresh task")
	}

	done, err := svc.SetCompleted(ctx, "u1", task.ID, true)
	if err != nil {
		t.Fatalf("complete: %v", err)
	}
	if !done.Completed || done.CompletedAt == nil {
		t.Fatalf("after completion: completed=%v completed_at=%v", done.Completed, done.CompletedAt)
	}

	undone, err := svc.SetCompleted(ctx, "u1", task.ID, false)
	if err != nil {
		t.Fatalf("uncomplete: %v", err)
	}
	if undone.Completed || undone.CompletedAt != nil {
		t.Fatalf("after uncompletion: completed=%v completed_at=%v", undone.Completed, undone.CompletedAt)
	}
}

func TestToggleTwiceRoundTrips(t *testing.T) {
	svc := newTestTaskService(t)
	ctx := context.Background()

	task, err := svc.Create(ctx, "u1", CreateInput{Title: "water plants"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if _, err := svc.SetCompleted(ctx, "u1", task.ID, true); err != nil {
		t.Fatalf("toggle on: %v", err)
	}
	back, err := svc.SetCompleted(ctx, "u1", task.ID, false)
	if err != nil {
		t.Fatalf("toggle off: %v", err)
	}

	if back.Completed != task.Completed {
		t.Errorf("completed = %v, want %v", back.Completed, task.Completed)
	}
	if back.CompletedAt != nil {
		t.Errorf("completed_at = %v, want nil", back.CompletedAt)
	}
}

func TestListIncompleteNeverContainsCompleted(t *testing.T) {
	svc := newTestTaskService(t)
	ctx := context.Background()

	a, _ := svc.Create(ctx, "u1", CreateInput{Title: "a"})
	b, _ := svc.Create(ctx, "u1", CreateInput{Title: "b"})
	if _, err := svc.Create(ctx, "u1", CreateInput{Title: "c"}); err != nil {
		t.Fatalf("create: %v", err)
	}

	if _, err := svc.SetCompleted(ctx, "u1", a.ID, true); err != nil {
		t.Fatalf("complete a: %v", err)
	}
	if err := svc.Delete(ctx, "u1", b.ID); err != nil {
		t.Fatalf("delete b: %v", err)
	}

	tasks, err := svc.List(ctx, "u1", FilterIncomplete, nil)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	for _, task := range tasks {
		if task.Completed {
			t.Errorf("incomplete list contains completed task %q", task.Title)
		}
	}
	if len(tasks) != 1 || tasks[0].Title != "c" {
		t.Errorf("incomplete list = %v, want just c", titles(tasks))
	}
}

func TestIncompleteOrderIsDateThenCreation(t *testing.T) {
	svc := newTestTaskService(t)
	ctx := context.Background()

	jan1 := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	jan2 := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)

	// A is on the later date; B and C share a date, C created after B.
	if _, err := svc.Create(ctx, "u1", CreateInput{Title: "A", Date: &jan2}); err != nil {
		t.Fatalf("create A: %v", err)
	}
	time.Sleep(2 * time.Millisecond)
	if _, err := svc.Create(ctx, "u1", CreateInput{Title: "B", Date: &jan1}); err != nil {
		t.Fatalf("create B: %v", err)
	}
	time.Sleep(2 * time.Millisecond)
	if _, err := svc.Create(ctx, "u1", CreateInput{Title: "C", Date: &jan1}); err != nil {
		t.Fatalf("create C: %v", err)
	}

	tasks, err := svc.List(ctx, "u1", FilterIncomplete, nil)
	if err != nil {
		t.Fatalf("list: %v", err)
	}

	got := titles(tasks)
	want := []string{"B", "C", "A"}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got %v, want %v", got, want)
		}
	}
}

func TestCompletedListOrderedByCompletionDesc(t *testing.T) {
	svc := newTestTaskService(t)
	ctx := context.Background()

	first, _ := svc.Create(ctx, "u1", CreateInput{Title: "first"})
	second, _ := svc.Create(ctx, "u1", CreateInput{Title: "second"})

	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return base }
	if _, err := svc.SetCompleted(ctx, "u1", first.ID, true); err != nil {
		t.Fatalf("complete first: %v", err)
	}
	svc.now = func() time.Time { return base.Add(time.Hour) }
	if _, err := svc.SetCompleted(ctx, "u1", second.ID, true); err != nil {
		t.Fatalf("complete second: %v", err)
	}

	tasks, err := svc.List(ctx, "u1", FilterCompleted, nil)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(tasks) != 2 || tasks[0].Title != "second" {
		t.Errorf("completed order = %v, want most recently finished first", titles(tasks))
	}
}

func TestTasksAreScopedToOwner(t *testing.T) {
	svc := newTestTaskService(t)
	ctx := context.Background()

	task, err := svc.Create(ctx, "owner", CreateInput{Title: "mine"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	// Another user addressing the row sees the same thing as a missing row.
	if _, err := svc.SetCompleted(ctx, "intruder", task.ID, true); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("foreign update err = %v, want ErrNotFound", err)
	}
	if err := svc.Delete(ctx, "intruder", task.ID); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("foreign delete err = %v, want ErrNotFound", err)
	}

	tasks, err := svc.List(ctx, "intruder", FilterAll, nil)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(tasks) != 0 {
		t.Errorf("intruder sees %d tasks, want 0", len(tasks))
	}
}

func titles(tasks []model.Task) []string {
	out := make([]string, len(tasks))
	for i, task := range tasks {
		out[i] = task.Title
	}
	return out
}
