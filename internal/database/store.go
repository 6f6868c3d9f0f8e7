// Package database provides persistence for tasks and reminders. State is
// stored as one document per user keyed by chat ID, with interchangeable
// SQLite and MongoDB backends behind the Store interface.
package database

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
)

// ErrNotFound indicates an operation referenced a user or index with no
// corresponding record.
var ErrNotFound = errors.New("record not found")

// ErrConflict indicates an optimistic replace lost a race with a concurrent
// write; the caller should re-read and retry.
var ErrConflict = errors.New("version conflict")

// Store defines the persistence operations used by the command handlers and
// the reminder sweep. All methods accept a context for cancellation.
type Store interface {
	// Ping checks the backend connection.
	Ping(ctx context.Context) error

	// AppendReminder appends a reminder to the user's collection, creating
	// the record if absent. No duplicate detection is performed.
	AppendReminder(ctx context.Context, chatID int64, reminder Reminder) error

	// GetReminderSet retrieves one user's reminder set. Returns nil, nil
	// when the user has no record.
	GetReminderSet(ctx context.Context, chatID int64) (*ReminderSet, error)

	// LoadAllReminderSets returns every set with at least one reminder.
	LoadAllReminderSets(ctx context.Context) ([]ReminderSet, error)

	// ReplaceReminders overwrites the user's full collection if its version
	// still matches the one previously read. Returns ErrConflict otherwise.
	ReplaceReminders(ctx context.Context, chatID int64, reminders []Reminder, version int64) error

	// AppendTask appends a task to the user's list, creating it if absent.
	AppendTask(ctx context.Context, chatID int64, task string) error

	// ListTasks returns the user's tasks in insertion order. An absent
	// record yields an empty list.
	ListTasks(ctx context.Context, chatID int64) ([]string, error)

	// RemoveTask deletes the task at the given 1-based index and returns its
	// text. Returns ErrNotFound when the index is out of range.
	RemoveTask(ctx context.Context, chatID int64, index int) (string, error)

	// ClearTasks removes every task for the user. The record persists empty.
	ClearTasks(ctx context.Context, chatID int64) error

	// Close releases the backend connection.
	Close() error
}

// New builds a Store for the configured driver.
func New(ctx context.Context, driver, sqlitePath, mongoURI, mongoDB string, logger *slog.Logger) (Store, error) {
	switch driver {
	case "sqlite":
		db, err := NewDB(sqlitePath)
		if err != nil {
			return nil, err
		}
		return NewSQLiteStore(db, logger), nil
	case "mongo":
		return NewMongoStore(ctx, mongoURI, mongoDB, logger)
	default:
		return nil, fmt.Errorf("unknown database driver %q", driver)
	}
}
