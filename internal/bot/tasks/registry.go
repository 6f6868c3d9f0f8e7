package tasks

import "context"

// ScheduledTaskFunc is the signature for all scheduled tasks. The context
// provided by the scheduler must be respected for cancellation; a returned
// error is logged by the scheduler, never fatal.
type ScheduledTaskFunc func(ctx context.Context) error

// RegisterAllTasks returns the map of scheduled tasks keyed by task name.
func RegisterAllTasks(deps TaskDeps) map[string]ScheduledTaskFunc {
	tasks := make(map[string]ScheduledTaskFunc)

	tasks["reminder_sweep"] = newReminderSweepTask(deps)

	deps.Logger.Info("Initialized scheduled tasks", "count", len(tasks))
	return tasks
}
