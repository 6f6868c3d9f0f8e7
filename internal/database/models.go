package database

import "time"

// Reminder is a single scheduled reminder. It is immutable once created and
// is removed only by the sweep after delivery. DueAt is always a fully
// resolved absolute instant; relative or ambiguous times never persist.
type Reminder struct {
	ID    string    `json:"id"     bson:"id"`
	Text  string    `json:"text"   bson:"text"`
	DueAt time.Time `json:"due_at" bson:"due_at"`
}

// ReminderSet is one user's ordered reminder collection. Version increments
// on every write and backs the optimistic replace used by the sweep.
type ReminderSet struct {
	ChatID    int64      `bson:"chat_id"`
	Reminders []Reminder `bson:"reminders"`
	Version   int64      `bson:"version"`
}

// TaskList is one user's ordered task list. Tasks are addressed by their
// 1-based position as shown by /listtasks.
type TaskList struct {
	ChatID  int64    `bson:"chat_id"`
	Tasks   []string `bson:"tasks"`
	Version int64    `bson:"version"`
}
