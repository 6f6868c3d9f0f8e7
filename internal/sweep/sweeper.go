// Package sweep implements the periodic due-reminder check: it partitions
// every user's reminders into due and remaining at minute granularity,
// delivers the due ones, and rewrites the stored collection.
package sweep

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/ARUNKUMAR2906/telegram-daily-tasks-bot/internal/database"
	"github.com/ARUNKUMAR2906/telegram-daily-tasks-bot/internal/notify"
)

// Store is the narrow persistence surface the sweeper needs.
type Store interface {
	LoadAllReminderSets(ctx context.Context) ([]database.ReminderSet, error)
	GetReminderSet(ctx context.Context, chatID int64) (*database.ReminderSet, error)
	ReplaceReminders(ctx context.Context, chatID int64, reminders []database.Reminder, version int64) error
}

// replaceAttempts bounds the optimistic rewrite retry when a command appends
// a reminder between the sweep's read and write.
const replaceAttempts = 5

// Sweeper runs the due-reminder check. The clock is injectable so ticks can
// be simulated in tests.
type Sweeper struct {
	store    Store
	notifier notify.Notifier
	logger   *slog.Logger
	loc      *time.Location
	now      func() time.Time
}

// Option customizes a Sweeper.
type Option func(*Sweeper)

// WithClock overrides the wall clock.
func WithClock(now func() time.Time) Option {
	return func(s *Sweeper) { s.now = now }
}

// New creates a Sweeper delivering through the given notifier, evaluating
// due times in loc.
func New(store Store, notifier notify.Notifier, loc *time.Location, logger *slog.Logger, opts ...Option) *Sweeper {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	s := &Sweeper{
		store:    store,
		notifier: notifier,
		logger:   logger.With("component", "sweeper"),
		loc:      loc,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Sweep performs one tick: load every non-empty reminder set, deliver due
// reminders, and persist the remaining ones. A store failure while loading
// aborts the tick; the reminders were not rewritten, so nothing is lost and
// the next tick retries. Per-user failures are logged and the sweep moves on.
func (s *Sweeper) Sweep(ctx context.Context) error {
	now := s.now().In(s.loc).Truncate(time.Minute)

	sets, err := s.store.LoadAllReminderSets(ctx)
	if err != nil {
		return fmt.Errorf("failed to load reminder sets: %w", err)
	}

	s.logger.DebugContext(ctx, "Sweep tick", "now", now, "users", len(sets))

	for _, set := range sets {
		if err := s.sweepUser(ctx, set, now); err != nil {
			s.logger.ErrorContext(ctx, "Sweep failed for user, will retry next tick",
				"chat_id", set.ChatID, "error", err)
		}
	}

	return nil
}

func (s *Sweeper) sweepUser(ctx context.Context, set database.ReminderSet, now time.Time) error {
	due, remaining := Partition(set.Reminders, now)

	for _, r := range due {
		if err := s.notifier.Send(ctx, set.ChatID, r.Text); err != nil {
			// At-most-once: a failed delivery is logged and the reminder is
			// still removed from the store.
			s.logger.ErrorContext(ctx, "Reminder delivery failed",
				"chat_id", set.ChatID, "reminder_id", r.ID, "due_at", r.DueAt, "error", err)
			continue
		}
		s.logger.InfoContext(ctx, "Reminder delivered",
			"chat_id", set.ChatID, "reminder_id", r.ID, "due_at", r.DueAt)
	}

	return s.replaceDelivered(ctx, set.ChatID, remaining, set.Version, due)
}

// replaceDelivered rewrites the user's collection to the remaining reminders.
// The rewrite happens even when nothing was delivered, keeping every tick an
// idempotent full replace. On a version conflict (a reminder was appended
// between our read and write) the current state is re-read and only the
// reminders actually delivered this tick are subtracted from it.
func (s *Sweeper) replaceDelivered(ctx context.Context, chatID int64, remaining []database.Reminder, version int64, delivered []database.Reminder) error {
	for attempt := 0; ; attempt++ {
		err := s.store.ReplaceReminders(ctx, chatID, remaining, version)
		if err == nil {
			return nil
		}
		if !errors.Is(err, database.ErrConflict) || attempt >= replaceAttempts {
			return err
		}

		s.logger.DebugContext(ctx, "Rewrite conflict, re-reading reminder set",
			"chat_id", chatID, "attempt", attempt+1)

		current, getErr := s.store.GetReminderSet(ctx, chatID)
		if getErr != nil {
			return getErr
		}
		if current == nil {
			// The record vanished under us; nothing left to rewrite.
			return nil
		}

		remaining = subtract(current.Reminders, delivered)
		version = current.Version
	}
}

// Partition splits reminders into due (due at or before now, compared at
// minute granularity) and remaining, preserving insertion order in both.
func Partition(reminders []database.Reminder, now time.Time) (due, remaining []database.Reminder) {
	nowMinute := now.Truncate(time.Minute)
	for _, r := range reminders {
		if r.DueAt.Truncate(time.Minute).After(nowMinute) {
			remaining = append(remaining, r)
		} else {
			due = append(due, r)
		}
	}
	return due, remaining
}

// subtract removes the delivered reminders from current by ID, keeping the
// stored order of everything else, including concurrently appended entries.
func subtract(current, delivered []database.Reminder) []database.Reminder {
	if len(delivered) == 0 {
		return current
	}
	deliveredIDs := make(map[string]struct{}, len(delivered))
	for _, r := range delivered {
		deliveredIDs[r.ID] = struct{}{}
	}

	kept := make([]database.Reminder, 0, len(current))
	for _, r := range current {
		if _, ok := deliveredIDs[r.ID]; ok {
			continue
		}
		kept = append(kept, r)
	}
	return kept
}
