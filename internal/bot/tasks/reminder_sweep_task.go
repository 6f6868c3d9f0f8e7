package tasks

import (
	"context"
	"fmt"
	"time"
)

// newReminderSweepTask creates the scheduled task that runs one sweep tick.
func newReminderSweepTask(deps TaskDeps) ScheduledTaskFunc {
	log := deps.Logger.With("task", "reminder_sweep")

	return func(ctx context.Context) error {
		start := time.Now()

		if err := deps.Sweeper.Sweep(ctx); err != nil {
			log.ErrorContext(ctx, "Reminder sweep tick failed", "error", err, "duration", time.Since(start))
			return fmt.Errorf("reminder sweep failed: %w", err)
		}

		log.DebugContext(ctx, "Reminder sweep tick completed", "duration", time.Since(start))
		return nil
	}
}
