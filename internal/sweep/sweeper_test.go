package sweep_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/ARUNKUMAR2906/telegram-daily-tasks-bot/internal/database"
	"github.com/ARUNKUMAR2906/telegram-daily-tasks-bot/internal/sweep"
)

// fakeStore is an in-memory Store with version-checked replace, mirroring
// the real backends. afterLoad runs once after the next LoadAllReminderSets,
// simulating a command interleaved with the sweep.
type fakeStore struct {
	mu        sync.Mutex
	sets      map[int64]*database.ReminderSet
	loadErr   error
	afterLoad func(s *fakeStore)
}

func newFakeStore() *fakeStore {
	return &fakeStore{sets: make(map[int64]*database.ReminderSet)}
}

func (s *fakeStore) append(chatID int64, r database.Reminder) {
	s.mu.Lock()
	defer s.mu.Unlock()
	set, ok := s.sets[chatID]
	if !ok {
		set = &database.ReminderSet{ChatID: chatID}
		s.sets[chatID] = set
	}
	set.Reminders = append(set.Reminders, r)
	set.Version++
}

func (s *fakeStore) LoadAllReminderSets(_ context.Context) ([]database.ReminderSet, error) {
	s.mu.Lock()
	if s.loadErr != nil {
		s.mu.Unlock()
		return nil, s.loadErr
	}
	var out []database.ReminderSet
	for _, set := range s.sets {
		if len(set.Reminders) == 0 {
			continue
		}
		out = append(out, database.ReminderSet{
			ChatID:    set.ChatID,
			Reminders: append([]database.Reminder{}, set.Reminders...),
			Version:   set.Version,
		})
	}
	hook := s.afterLoad
	s.afterLoad = nil
	s.mu.Unlock()

	if hook != nil {
		hook(s)
	}
	return out, nil
}

func (s *fakeStore) GetReminderSet(_ context.Context, chatID int64) (*database.ReminderSet, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	set, ok := s.sets[chatID]
	if !ok {
		return nil, nil
	}
	return &database.ReminderSet{
		ChatID:    set.ChatID,
		Reminders: append([]database.Reminder{}, set.Reminders...),
		Version:   set.Version,
	}, nil
}

func (s *fakeStore) ReplaceReminders(_ context.Context, chatID int64, reminders []database.Reminder, version int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	set, ok := s.sets[chatID]
	if !ok || set.Version != version {
		return fmt.Errorf("replace reminders for chat %d: %w", chatID, database.ErrConflict)
	}
	set.Reminders = append([]database.Reminder{}, reminders...)
	set.Version++
	return nil
}

func (s *fakeStore) reminders(chatID int64) []database.Reminder {
	s.mu.Lock()
	defer s.mu.Unlock()
	set, ok := s.sets[chatID]
	if !ok {
		return nil
	}
	return append([]database.Reminder{}, set.Reminders...)
}

// fakeNotifier records deliveries and can fail for selected texts.
type fakeNotifier struct {
	mu      sync.Mutex
	sent    []string
	failFor map[string]bool
}

func newFakeNotifier() *fakeNotifier {
	return &fakeNotifier{failFor: make(map[string]bool)}
}

func (n *fakeNotifier) Send(_ context.Context, chatID int64, text string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.failFor[text] {
		return errors.New("delivery failed")
	}
	n.sent = append(n.sent, fmt.Sprintf("%d:%s", chatID, text))
	return nil
}

func (n *fakeNotifier) delivered() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]string{}, n.sent...)
}

func reminderAt(id, text string, due time.Time) database.Reminder {
	return database.Reminder{ID: id, Text: text, DueAt: due}
}

func newSweeper(store *fakeStore, notifier *fakeNotifier, now time.Time) *sweep.Sweeper {
	return sweep.New(store, notifier, time.UTC, nil, sweep.WithClock(func() time.Time { return now }))
}

func TestSweepPartition(t *testing.T) {
	t.Parallel()

	day := time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC)
	store := newFakeStore()
	store.append(1, reminderAt("a", "first", day.Add(10*time.Hour)))
	store.append(1, reminderAt("b", "second", day.Add(10*time.Hour+5*time.Minute)))
	store.append(1, reminderAt("c", "third", day.Add(10*time.Hour+10*time.Minute)))

	notifier := newFakeNotifier()
	s := newSweeper(store, notifier, day.Add(10*time.Hour+6*time.Minute))

	if err := s.Sweep(context.Background()); err != nil {
		t.Fatalf("Sweep returned error: %v", err)
	}

	wantSent := []string{"1:first", "1:second"}
	got := notifier.delivered()
	if len(got) != len(wantSent) || got[0] != wantSent[0] || got[1] != wantSent[1] {
		t.Errorf("delivered = %v, want %v", got, wantSent)
	}

	remaining := store.reminders(1)
	if len(remaining) != 1 || remaining[0].ID != "c" {
		t.Errorf("remaining = %v, want only reminder c", remaining)
	}
}

func TestSweepMinuteGranularity(t *testing.T) {
	t.Parallel()

	due := time.Date(2025, 6, 10, 15, 0, 30, 0, time.UTC)

	tests := []struct {
		name      string
		now       time.Time
		delivered bool
	}{
		{"one minute before", time.Date(2025, 6, 10, 14, 59, 0, 0, time.UTC), false},
		{"last second before the minute", time.Date(2025, 6, 10, 14, 59, 59, 0, time.UTC), false},
		{"start of due minute", time.Date(2025, 6, 10, 15, 0, 0, 0, time.UTC), true},
		{"mid due minute before due second", time.Date(2025, 6, 10, 15, 0, 10, 0, time.UTC), true},
		{"end of due minute", time.Date(2025, 6, 10, 15, 0, 59, 0, time.UTC), true},
		{"well past due", time.Date(2025, 6, 10, 15, 7, 0, 0, time.UTC), true},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			store := newFakeStore()
			store.append(7, reminderAt("r1", "Call mom", due))
			notifier := newFakeNotifier()
			s := newSweeper(store, notifier, tc.now)

			if err := s.Sweep(context.Background()); err != nil {
				t.Fatalf("Sweep returned error: %v", err)
			}

			if gotDelivered := len(notifier.delivered()) == 1; gotDelivered != tc.delivered {
				t.Errorf("delivered = %v, want %v", gotDelivered, tc.delivered)
			}
			wantRemaining := 1
			if tc.delivered {
				wantRemaining = 0
			}
			if got := len(store.reminders(7)); got != wantRemaining {
				t.Errorf("remaining = %d, want %d", got, wantRemaining)
			}
		})
	}
}

func TestSweepIdempotent(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 6, 10, 15, 0, 0, 0, time.UTC)
	store := newFakeStore()
	store.append(1, reminderAt("past", "done", now.Add(-time.Hour)))
	store.append(1, reminderAt("future", "later", now.Add(time.Hour)))

	notifier := newFakeNotifier()
	s := newSweeper(store, notifier, now)

	if err := s.Sweep(context.Background()); err != nil {
		t.Fatalf("first Sweep returned error: %v", err)
	}
	firstState := store.reminders(1)
	firstSent := len(notifier.delivered())

	if err := s.Sweep(context.Background()); err != nil {
		t.Fatalf("second Sweep returned error: %v", err)
	}

	if got := len(notifier.delivered()); got != firstSent {
		t.Errorf("second sweep delivered %d extra reminders", got-firstSent)
	}
	secondState := store.reminders(1)
	if len(secondState) != len(firstState) || secondState[0].ID != firstState[0].ID {
		t.Errorf("second sweep changed store: %v -> %v", firstState, secondState)
	}
}

func TestSweepDeliveryFailureContinues(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 6, 10, 15, 0, 0, 0, time.UTC)
	store := newFakeStore()
	store.append(1, reminderAt("x", "failing", now.Add(-2*time.Minute)))
	store.append(1, reminderAt("y", "working", now.Add(-time.Minute)))

	notifier := newFakeNotifier()
	notifier.failFor["failing"] = true
	s := newSweeper(store, notifier, now)

	if err := s.Sweep(context.Background()); err != nil {
		t.Fatalf("Sweep returned error: %v", err)
	}

	got := notifier.delivered()
	if len(got) != 1 || got[0] != "1:working" {
		t.Errorf("delivered = %v, want [1:working]", got)
	}
	// At-most-once: the failed reminder is still removed.
	if remaining := store.reminders(1); len(remaining) != 0 {
		t.Errorf("remaining = %v, want empty", remaining)
	}
}

func TestSweepPreservesConcurrentAppend(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 6, 10, 15, 0, 0, 0, time.UTC)
	store := newFakeStore()
	store.append(1, reminderAt("due", "old", now.Add(-time.Minute)))

	// A /remind lands between the sweep's read and its rewrite.
	store.afterLoad = func(s *fakeStore) {
		s.append(1, reminderAt("new", "just added", now.Add(time.Hour)))
	}

	notifier := newFakeNotifier()
	s := newSweeper(store, notifier, now)

	if err := s.Sweep(context.Background()); err != nil {
		t.Fatalf("Sweep returned error: %v", err)
	}

	remaining := store.reminders(1)
	if len(remaining) != 1 || remaining[0].ID != "new" {
		t.Errorf("remaining = %v, want only the concurrently appended reminder", remaining)
	}
	if got := notifier.delivered(); len(got) != 1 || got[0] != "1:old" {
		t.Errorf("delivered = %v, want [1:old]", got)
	}
}

func TestSweepLoadFailureAbortsTick(t *testing.T) {
	t.Parallel()

	store := newFakeStore()
	store.append(1, reminderAt("r", "text", time.Date(2025, 6, 10, 14, 0, 0, 0, time.UTC)))
	store.loadErr = errors.New("store unavailable")

	notifier := newFakeNotifier()
	s := newSweeper(store, notifier, time.Date(2025, 6, 10, 15, 0, 0, 0, time.UTC))

	if err := s.Sweep(context.Background()); err == nil {
		t.Fatal("Sweep should return the load error")
	}
	if got := notifier.delivered(); len(got) != 0 {
		t.Errorf("delivered = %v, want none", got)
	}
	// Nothing was rewritten, the next tick retries.
	if remaining := store.reminders(1); len(remaining) != 1 {
		t.Errorf("remaining = %v, want untouched set", remaining)
	}
}

func TestSweepMultipleUsersIndependent(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 6, 10, 15, 0, 0, 0, time.UTC)
	store := newFakeStore()
	store.append(1, reminderAt("a", "user one due", now.Add(-time.Minute)))
	store.append(2, reminderAt("b", "user two later", now.Add(time.Hour)))

	notifier := newFakeNotifier()
	s := newSweeper(store, notifier, now)

	if err := s.Sweep(context.Background()); err != nil {
		t.Fatalf("Sweep returned error: %v", err)
	}

	if got := notifier.delivered(); len(got) != 1 || got[0] != "1:user one due" {
		t.Errorf("delivered = %v, want [1:user one due]", got)
	}
	if remaining := store.reminders(2); len(remaining) != 1 {
		t.Errorf("user two reminders = %v, want untouched", remaining)
	}
}

func TestPartitionOrder(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 6, 10, 12, 0, 0, 0, time.UTC)
	reminders := []database.Reminder{
		reminderAt("1", "late addition due", now.Add(-time.Minute)),
		reminderAt("2", "future", now.Add(time.Minute)),
		reminderAt("3", "also due", now.Add(-2*time.Hour)),
	}

	due, remaining := sweep.Partition(reminders, now)

	if len(due) != 2 || due[0].ID != "1" || due[1].ID != "3" {
		t.Errorf("due = %v, want insertion order [1 3]", due)
	}
	if len(remaining) != 1 || remaining[0].ID != "2" {
		t.Errorf("remaining = %v, want [2]", remaining)
	}
}
