package database

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// mongoStore implements Store on MongoDB with one document per user, using
// $push for upsert-append and a version-guarded $set for replace.
type mongoStore struct {
	client    *mongo.Client
	reminders *mongo.Collection
	tasks     *mongo.Collection
	logger    *slog.Logger
}

// NewMongoStore connects to MongoDB and returns a Store using the given
// database name.
func NewMongoStore(ctx context.Context, uri, dbName string, logger *slog.Logger) (Store, error) {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	log := logger.With("component", "store", "driver", "mongo")

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongodb: %w", err)
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		return nil, fmt.Errorf("failed to ping mongodb: %w", err)
	}

	db := client.Database(dbName)
	log.Info("Connected to MongoDB", "database", dbName)

	return &mongoStore{
		client:    client,
		reminders: db.Collection("reminders"),
		tasks:     db.Collection("tasks"),
		logger:    log,
	}, nil
}

func (s *mongoStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx, readpref.Primary())
}

func (s *mongoStore) Close() error {
	return s.client.Disconnect(context.Background())
}

func (s *mongoStore) AppendReminder(ctx context.Context, chatID int64, reminder Reminder) error {
	_, err := s.reminders.UpdateOne(ctx,
		bson.M{"chat_id": chatID},
		bson.M{
			"$push": bson.M{"reminders": reminder},
			"$inc":  bson.M{"version": 1},
		},
		options.Update().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("failed to append reminder: %w", err)
	}
	return nil
}

func (s *mongoStore) GetReminderSet(ctx context.Context, chatID int64) (*ReminderSet, error) {
	var set ReminderSet
	err := s.reminders.FindOne(ctx, bson.M{"chat_id": chatID}).Decode(&set)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read reminder set: %w", err)
	}
	return &set, nil
}

func (s *mongoStore) LoadAllReminderSets(ctx context.Context) ([]ReminderSet, error) {
	cursor, err := s.reminders.Find(ctx, bson.M{"reminders.0": bson.M{"$exists": true}})
	if err != nil {
		return nil, fmt.Errorf("failed to scan reminder sets: %w", err)
	}

	var sets []ReminderSet
	if err := cursor.All(ctx, &sets); err != nil {
		return nil, fmt.Errorf("failed to decode reminder sets: %w", err)
	}
	return sets, nil
}

func (s *mongoStore) ReplaceReminders(ctx context.Context, chatID int64, reminders []Reminder, version int64) error {
	if reminders == nil {
		reminders = []Reminder{}
	}

	res, err := s.reminders.UpdateOne(ctx,
		bson.M{"chat_id": chatID, "version": version},
		bson.M{
			"$set": bson.M{"reminders": reminders},
			"$inc": bson.M{"version": 1},
		})
	if err != nil {
		return fmt.Errorf("failed to replace reminders: %w", err)
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("replace reminders for chat %d: %w", chatID, ErrConflict)
	}
	return nil
}

func (s *mongoStore) AppendTask(ctx context.Context, chatID int64, task string) error {
	_, err := s.tasks.UpdateOne(ctx,
		bson.M{"chat_id": chatID},
		bson.M{
			"$push": bson.M{"tasks": task},
			"$inc":  bson.M{"version": 1},
		},
		options.Update().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("failed to append task: %w", err)
	}
	return nil
}

func (s *mongoStore) ListTasks(ctx context.Context, chatID int64) ([]string, error) {
	var list TaskList
	err := s.tasks.FindOne(ctx, bson.M{"chat_id": chatID}).Decode(&list)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read task list: %w", err)
	}
	return list.Tasks, nil
}

// removeTaskAttempts bounds the optimistic retry when a concurrent write
// moves the version between our read and update.
const removeTaskAttempts = 3

func (s *mongoStore) RemoveTask(ctx context.Context, chatID int64, index int) (string, error) {
	for attempt := 0; attempt < removeTaskAttempts; attempt++ {
		var list TaskList
		err := s.tasks.FindOne(ctx, bson.M{"chat_id": chatID}).Decode(&list)
		if errors.Is(err, mongo.ErrNoDocuments) {
			return "", fmt.Errorf("no tasks for chat %d: %w", chatID, ErrNotFound)
		}
		if err != nil {
			return "", fmt.Errorf("failed to read task list: %w", err)
		}

		if index < 1 || index > len(list.Tasks) {
			return "", fmt.Errorf("task %d of %d: %w", index, len(list.Tasks), ErrNotFound)
		}

		removed := list.Tasks[index-1]
		remaining := append(append([]string{}, list.Tasks[:index-1]...), list.Tasks[index:]...)

		res, err := s.tasks.UpdateOne(ctx,
			bson.M{"chat_id": chatID, "version": list.Version},
			bson.M{
				"$set": bson.M{"tasks": remaining},
				"$inc": bson.M{"version": 1},
			})
		if err != nil {
			return "", fmt.Errorf("failed to write task list: %w", err)
		}
		if res.MatchedCount > 0 {
			return removed, nil
		}

		s.logger.DebugContext(ctx, "Retrying task removal after version conflict",
			"chat_id", chatID, "attempt", attempt+1)
	}

	return "", fmt.Errorf("remove task for chat %d: %w", chatID, ErrConflict)
}

func (s *mongoStore) ClearTasks(ctx context.Context, chatID int64) error {
	_, err := s.tasks.UpdateOne(ctx,
		bson.M{"chat_id": chatID},
		bson.M{
			"$set": bson.M{"tasks": []string{}},
			"$inc": bson.M{"version": 1},
		},
		options.Update().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("failed to clear task list: %w", err)
	}
	return nil
}
