package database_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/ARUNKUMAR2906/telegram-daily-tasks-bot/internal/database"
)

func newTestStore(t *testing.T) database.Store {
	t.Helper()

	db, err := database.NewDB(":memory:")
	if err != nil {
		t.Fatalf("failed to open in-memory database: %v", err)
	}

	store := database.NewSQLiteStore(db, nil)
	t.Cleanup(func() {
		if err := store.Close(); err != nil {
			t.Errorf("failed to close store: %v", err)
		}
	})
	return store
}

func reminder(id, text string, due time.Time) database.Reminder {
	return database.Reminder{ID: id, Text: text, DueAt: due}
}

func TestAppendReminderPreservesOrder(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	ctx := context.Background()
	due := time.Date(2025, 6, 10, 15, 0, 0, 0, time.UTC)

	for i, id := range []string{"first", "second", "third"} {
		r := reminder(id, "reminder "+id, due.Add(time.Duration(i)*time.Minute))
		if err := store.AppendReminder(ctx, 42, r); err != nil {
			t.Fatalf("AppendReminder(%s) returned error: %v", id, err)
		}
	}

	set, err := store.GetReminderSet(ctx, 42)
	if err != nil {
		t.Fatalf("GetReminderSet returned error: %v", err)
	}
	if set == nil {
		t.Fatal("GetReminderSet returned nil for existing user")
	}

	want := []string{"first", "second", "third"}
	if len(set.Reminders) != len(want) {
		t.Fatalf("got %d reminders, want %d", len(set.Reminders), len(want))
	}
	for i, id := range want {
		if set.Reminders[i].ID != id {
			t.Errorf("reminder[%d].ID = %q, want %q", i, set.Reminders[i].ID, id)
		}
	}
}

func TestGetReminderSetAbsentUser(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)

	set, err := store.GetReminderSet(context.Background(), 999)
	if err != nil {
		t.Fatalf("GetReminderSet returned error: %v", err)
	}
	if set != nil {
		t.Errorf("GetReminderSet = %v, want nil for absent user", set)
	}
}

func TestReminderInstantRoundTrip(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	ctx := context.Background()

	loc, err := time.LoadLocation("Asia/Kolkata")
	if err != nil {
		t.Fatalf("failed to load location: %v", err)
	}
	due := time.Date(2025, 6, 10, 15, 0, 0, 0, loc)

	if err := store.AppendReminder(ctx, 1, reminder("r1", "Call mom", due)); err != nil {
		t.Fatalf("AppendReminder returned error: %v", err)
	}

	set, err := store.GetReminderSet(ctx, 1)
	if err != nil {
		t.Fatalf("GetReminderSet returned error: %v", err)
	}
	if !set.Reminders[0].DueAt.Equal(due) {
		t.Errorf("DueAt = %v, want the same absolute instant %v", set.Reminders[0].DueAt, due)
	}
}

func TestReplaceRemindersVersionCheck(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	ctx := context.Background()
	due := time.Date(2025, 6, 10, 15, 0, 0, 0, time.UTC)

	if err := store.AppendReminder(ctx, 5, reminder("a", "one", due)); err != nil {
		t.Fatalf("AppendReminder returned error: %v", err)
	}

	set, err := store.GetReminderSet(ctx, 5)
	if err != nil {
		t.Fatalf("GetReminderSet returned error: %v", err)
	}

	// A concurrent append moves the version past the one we read.
	if err := store.AppendReminder(ctx, 5, reminder("b", "two", due.Add(time.Minute))); err != nil {
		t.Fatalf("AppendReminder returned error: %v", err)
	}

	err = store.ReplaceReminders(ctx, 5, nil, set.Version)
	if !errors.Is(err, database.ErrConflict) {
		t.Fatalf("ReplaceReminders with stale version = %v, want ErrConflict", err)
	}

	// A replace with the current version succeeds and empties the set.
	current, err := store.GetReminderSet(ctx, 5)
	if err != nil {
		t.Fatalf("GetReminderSet returned error: %v", err)
	}
	if err := store.ReplaceReminders(ctx, 5, nil, current.Version); err != nil {
		t.Fatalf("ReplaceReminders returned error: %v", err)
	}

	after, err := store.GetReminderSet(ctx, 5)
	if err != nil {
		t.Fatalf("GetReminderSet returned error: %v", err)
	}
	if after == nil {
		t.Fatal("record should persist after being emptied")
	}
	if len(after.Reminders) != 0 {
		t.Errorf("reminders = %v, want empty", after.Reminders)
	}
}

func TestLoadAllReminderSetsSkipsEmpty(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	ctx := context.Background()
	due := time.Date(2025, 6, 10, 15, 0, 0, 0, time.UTC)

	if err := store.AppendReminder(ctx, 1, reminder("a", "keep", due)); err != nil {
		t.Fatalf("AppendReminder returned error: %v", err)
	}
	if err := store.AppendReminder(ctx, 2, reminder("b", "emptied", due)); err != nil {
		t.Fatalf("AppendReminder returned error: %v", err)
	}

	set2, err := store.GetReminderSet(ctx, 2)
	if err != nil {
		t.Fatalf("GetReminderSet returned error: %v", err)
	}
	if err := store.ReplaceReminders(ctx, 2, nil, set2.Version); err != nil {
		t.Fatalf("ReplaceReminders returned error: %v", err)
	}

	sets, err := store.LoadAllReminderSets(ctx)
	if err != nil {
		t.Fatalf("LoadAllReminderSets returned error: %v", err)
	}
	if len(sets) != 1 || sets[0].ChatID != 1 {
		t.Errorf("LoadAllReminderSets = %v, want only chat 1", sets)
	}
}

func TestTaskLifecycle(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	ctx := context.Background()

	tasks, err := store.ListTasks(ctx, 10)
	if err != nil {
		t.Fatalf("ListTasks returned error: %v", err)
	}
	if len(tasks) != 0 {
		t.Errorf("ListTasks for absent user = %v, want empty", tasks)
	}

	for _, task := range []string{"buy milk", "walk dog", "write report"} {
		if err := store.AppendTask(ctx, 10, task); err != nil {
			t.Fatalf("AppendTask(%q) returned error: %v", task, err)
		}
	}

	removed, err := store.RemoveTask(ctx, 10, 2)
	if err != nil {
		t.Fatalf("RemoveTask returned error: %v", err)
	}
	if removed != "walk dog" {
		t.Errorf("RemoveTask removed %q, want %q", removed, "walk dog")
	}

	tasks, err = store.ListTasks(ctx, 10)
	if err != nil {
		t.Fatalf("ListTasks returned error: %v", err)
	}
	want := []string{"buy milk", "write report"}
	if len(tasks) != len(want) || tasks[0] != want[0] || tasks[1] != want[1] {
		t.Errorf("ListTasks = %v, want %v (re-indexed)", tasks, want)
	}
}

func TestRemoveTaskInvalidIndex(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	ctx := context.Background()

	if _, err := store.RemoveTask(ctx, 20, 1); !errors.Is(err, database.ErrNotFound) {
		t.Errorf("RemoveTask for absent user = %v, want ErrNotFound", err)
	}

	if err := store.AppendTask(ctx, 20, "only task"); err != nil {
		t.Fatalf("AppendTask returned error: %v", err)
	}

	for _, index := range []int{0, 2, -1} {
		if _, err := store.RemoveTask(ctx, 20, index); !errors.Is(err, database.ErrNotFound) {
			t.Errorf("RemoveTask(index=%d) = %v, want ErrNotFound", index, err)
		}
	}
}

func TestClearTasks(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	ctx := context.Background()

	if err := store.AppendTask(ctx, 30, "something"); err != nil {
		t.Fatalf("AppendTask returned error: %v", err)
	}
	if err := store.ClearTasks(ctx, 30); err != nil {
		t.Fatalf("ClearTasks returned error: %v", err)
	}

	tasks, err := store.ListTasks(ctx, 30)
	if err != nil {
		t.Fatalf("ListTasks returned error: %v", err)
	}
	if len(tasks) != 0 {
		t.Errorf("ListTasks after clear = %v, want empty", tasks)
	}

	// Clearing an absent record creates it empty.
	if err := store.ClearTasks(ctx, 31); err != nil {
		t.Fatalf("ClearTasks for absent user returned error: %v", err)
	}
}
