package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/jmoiron/sqlx"
)

// sqliteStore implements Store on SQLite. Each user's collection is held as
// a single JSON document row, mirroring the document-store access pattern.
type sqliteStore struct {
	db     *sqlx.DB
	logger *slog.Logger
}

// NewSQLiteStore creates a Store backed by the given SQLite connection pool.
func NewSQLiteStore(db *sqlx.DB, logger *slog.Logger) Store {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &sqliteStore{
		db:     db,
		logger: logger.With("component", "store", "driver", "sqlite"),
	}
}

func (s *sqliteStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *sqliteStore) Close() error {
	return s.db.Close()
}

// documentRow is the shape shared by the reminder_sets and task_lists tables.
type documentRow struct {
	ChatID   int64  `db:"chat_id"`
	Document string `db:"document"`
	Version  int64  `db:"version"`
}

func (s *sqliteStore) AppendReminder(ctx context.Context, chatID int64, reminder Reminder) error {
	return s.appendToDocument(ctx, "reminder_sets", chatID, func(doc string) (string, error) {
		var reminders []Reminder
		if doc != "" {
			if err := json.Unmarshal([]byte(doc), &reminders); err != nil {
				return "", fmt.Errorf("corrupt reminder document for chat %d: %w", chatID, err)
			}
		}
		reminders = append(reminders, reminder)
		out, err := json.Marshal(reminders)
		if err != nil {
			return "", err
		}
		return string(out), nil
	})
}

func (s *sqliteStore) AppendTask(ctx context.Context, chatID int64, task string) error {
	return s.appendToDocument(ctx, "task_lists", chatID, func(doc string) (string, error) {
		var tasks []string
		if doc != "" {
			if err := json.Unmarshal([]byte(doc), &tasks); err != nil {
				return "", fmt.Errorf("corrupt task document for chat %d: %w", chatID, err)
			}
		}
		tasks = append(tasks, task)
		out, err := json.Marshal(tasks)
		if err != nil {
			return "", err
		}
		return string(out), nil
	})
}

// appendToDocument runs an upsert-append as a read-modify-write inside a
// transaction. The single SQLite connection serializes writers, so appends
// never interleave with the sweep's replace.
func (s *sqliteStore) appendToDocument(ctx context.Context, table string, chatID int64, grow func(string) (string, error)) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var row documentRow
	err = tx.GetContext(ctx, &row,
		fmt.Sprintf("SELECT chat_id, document, version FROM %s WHERE chat_id = ?", table), chatID)

	now := time.Now().UTC()
	switch {
	case errors.Is(err, sql.ErrNoRows):
		doc, growErr := grow("")
		if growErr != nil {
			return growErr
		}
		_, err = tx.ExecContext(ctx,
			fmt.Sprintf("INSERT INTO %s (chat_id, document, version, updated_at) VALUES (?, ?, 1, ?)", table),
			chatID, doc, now)
	case err != nil:
		return fmt.Errorf("failed to read document: %w", err)
	default:
		doc, growErr := grow(row.Document)
		if growErr != nil {
			return growErr
		}
		_, err = tx.ExecContext(ctx,
			fmt.Sprintf("UPDATE %s SET document = ?, version = version + 1, updated_at = ? WHERE chat_id = ?", table),
			doc, now, chatID)
	}
	if err != nil {
		return fmt.Errorf("failed to write document: %w", err)
	}

	return tx.Commit()
}

func (s *sqliteStore) GetReminderSet(ctx context.Context, chatID int64) (*ReminderSet, error) {
	var row documentRow
	err := s.db.GetContext(ctx, &row,
		"SELECT chat_id, document, version FROM reminder_sets WHERE chat_id = ?", chatID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read reminder set: %w", err)
	}

	set, err := rowToReminderSet(row)
	if err != nil {
		return nil, err
	}
	return &set, nil
}

func (s *sqliteStore) LoadAllReminderSets(ctx context.Context) ([]ReminderSet, error) {
	var rows []documentRow
	err := s.db.SelectContext(ctx, &rows,
		"SELECT chat_id, document, version FROM reminder_sets ORDER BY chat_id")
	if err != nil {
		return nil, fmt.Errorf("failed to scan reminder sets: %w", err)
	}

	sets := make([]ReminderSet, 0, len(rows))
	for _, row := range rows {
		set, err := rowToReminderSet(row)
		if err != nil {
			return nil, err
		}
		if len(set.Reminders) == 0 {
			continue
		}
		sets = append(sets, set)
	}
	return sets, nil
}

func rowToReminderSet(row documentRow) (ReminderSet, error) {
	set := ReminderSet{ChatID: row.ChatID, Version: row.Version}
	if err := json.Unmarshal([]byte(row.Document), &set.Reminders); err != nil {
		return ReminderSet{}, fmt.Errorf("corrupt reminder document for chat %d: %w", row.ChatID, err)
	}
	return set, nil
}

func (s *sqliteStore) ReplaceReminders(ctx context.Context, chatID int64, reminders []Reminder, version int64) error {
	if reminders == nil {
		reminders = []Reminder{}
	}
	doc, err := json.Marshal(reminders)
	if err != nil {
		return err
	}

	res, err := s.db.ExecContext(ctx,
		"UPDATE reminder_sets SET document = ?, version = version + 1, updated_at = ? WHERE chat_id = ? AND version = ?",
		string(doc), time.Now().UTC(), chatID, version)
	if err != nil {
		return fmt.Errorf("failed to replace reminders: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check replace result: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("replace reminders for chat %d: %w", chatID, ErrConflict)
	}
	return nil
}

func (s *sqliteStore) ListTasks(ctx context.Context, chatID int64) ([]string, error) {
	var row documentRow
	err := s.db.GetContext(ctx, &row,
		"SELECT chat_id, document, version FROM task_lists WHERE chat_id = ?", chatID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read task list: %w", err)
	}

	var tasks []string
	if err := json.Unmarshal([]byte(row.Document), &tasks); err != nil {
		return nil, fmt.Errorf("corrupt task document for chat %d: %w", chatID, err)
	}
	return tasks, nil
}

func (s *sqliteStore) RemoveTask(ctx context.Context, chatID int64, index int) (string, error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var row documentRow
	err = tx.GetContext(ctx, &row,
		"SELECT chat_id, document, version FROM task_lists WHERE chat_id = ?", chatID)
	if errors.Is(err, sql.ErrNoRows) {
		return "", fmt.Errorf("no tasks for chat %d: %w", chatID, ErrNotFound)
	}
	if err != nil {
		return "", fmt.Errorf("failed to read task list: %w", err)
	}

	var tasks []string
	if err := json.Unmarshal([]byte(row.Document), &tasks); err != nil {
		return "", fmt.Errorf("corrupt task document for chat %d: %w", chatID, err)
	}
	if index < 1 || index > len(tasks) {
		return "", fmt.Errorf("task %d of %d: %w", index, len(tasks), ErrNotFound)
	}

	removed := tasks[index-1]
	tasks = append(tasks[:index-1], tasks[index:]...)

	doc, err := json.Marshal(tasks)
	if err != nil {
		return "", err
	}
	_, err = tx.ExecContext(ctx,
		"UPDATE task_lists SET document = ?, version = version + 1, updated_at = ? WHERE chat_id = ?",
		string(doc), time.Now().UTC(), chatID)
	if err != nil {
		return "", fmt.Errorf("failed to write task list: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return "", err
	}
	return removed, nil
}

func (s *sqliteStore) ClearTasks(ctx context.Context, chatID int64) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	now := time.Now().UTC()
	res, err := tx.ExecContext(ctx,
		"UPDATE task_lists SET document = '[]', version = version + 1, updated_at = ? WHERE chat_id = ?",
		now, chatID)
	if err != nil {
		return fmt.Errorf("failed to clear task list: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check clear result: %w", err)
	}
	if affected == 0 {
		// Record persists empty even when created by a clear.
		_, err = tx.ExecContext(ctx,
			"INSERT INTO task_lists (chat_id, document, version, updated_at) VALUES (?, '[]', 1, ?)",
			chatID, now)
		if err != nil {
			return fmt.Errorf("failed to create empty task list: %w", err)
		}
	}

	return tx.Commit()
}
