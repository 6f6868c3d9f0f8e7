// Package config provides configuration loading and validation for the bot.
// Values come from defaults, an optional config.yaml, and BOT_* environment
// variables, in that order of precedence.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// Config defines the full application configuration.
type Config struct {
	Log       LogConfig       `mapstructure:"log"`
	Telegram  TelegramConfig  `mapstructure:"telegram"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Scheduler SchedulerConfig `mapstructure:"scheduler"`
}

// LogConfig controls structured logging output.
type LogConfig struct {
	Level string `mapstructure:"level" validate:"required,oneof=debug info warn error"`
	JSON  bool   `mapstructure:"json"`
}

// TelegramConfig holds the bot token, delivery mode, and user-visible texts.
type TelegramConfig struct {
	Token string `mapstructure:"token" validate:"required"`

	// WebhookURL enables webhook mode when set; otherwise the bot long-polls.
	WebhookURL string `mapstructure:"webhook_url" validate:"omitempty,url"`
	ListenAddr string `mapstructure:"listen_addr" validate:"required"`

	Messages MessagesConfig `mapstructure:"messages"`
}

// MessagesConfig holds every user-visible message template.
type MessagesConfig struct {
	Welcome           string `mapstructure:"welcome"            validate:"required"`
	UnknownCommand    string `mapstructure:"unknown_command"    validate:"required"`
	GeneralError      string `mapstructure:"general_error"      validate:"required"`
	TaskAdded         string `mapstructure:"task_added"         validate:"required"`
	TaskUsage         string `mapstructure:"task_usage"         validate:"required"`
	NoTasks           string `mapstructure:"no_tasks"           validate:"required"`
	TaskListHeader    string `mapstructure:"task_list_header"   validate:"required"`
	TaskDeleted       string `mapstructure:"task_deleted"       validate:"required"`
	InvalidTaskNumber string `mapstructure:"invalid_task_number" validate:"required"`
	AllTasksDeleted   string `mapstructure:"all_tasks_deleted"  validate:"required"`
	ReminderSet       string `mapstructure:"reminder_set"       validate:"required"`
	RemindUsage       string `mapstructure:"remind_usage"       validate:"required"`
	InvalidTime       string `mapstructure:"invalid_time"       validate:"required"`
	NoReminders       string `mapstructure:"no_reminders"       validate:"required"`
	ReminderHeader    string `mapstructure:"reminder_header"    validate:"required"`
	ReminderPrefix    string `mapstructure:"reminder_prefix"    validate:"required"`
}

// DatabaseConfig selects and configures the persistence backend.
type DatabaseConfig struct {
	Driver string `mapstructure:"driver" validate:"required,oneof=sqlite mongo"`

	// Path is the SQLite database file (sqlite driver).
	Path string `mapstructure:"path"`

	// URI and Name configure the MongoDB connection (mongo driver).
	URI  string `mapstructure:"uri"`
	Name string `mapstructure:"name"`
}

// SchedulerConfig controls the reminder sweep loop.
type SchedulerConfig struct {
	Enabled bool `mapstructure:"enabled"`

	// Timezone is the single IANA zone all reminder times resolve in.
	Timezone string `mapstructure:"timezone" validate:"required"`

	SweepInterval time.Duration `mapstructure:"sweep_interval" validate:"required,min=1s"`

	// TimeFormat is the Go reference layout accepted in /remind commands.
	TimeFormat string `mapstructure:"time_format" validate:"required"`

	// RollForward moves an already-passed time-of-day to tomorrow instead of
	// anchoring it to today.
	RollForward bool `mapstructure:"roll_forward"`
}

// Location resolves the configured timezone.
func (c *SchedulerConfig) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid scheduler timezone %q: %w", c.Timezone, err)
	}
	return loc, nil
}

// Load reads configuration from defaults, a YAML config file, and BOT_*
// environment variables, then validates the result. An empty path falls back
// to config.yaml in the working directory; an explicit path must exist.
func Load(path string) (*Config, error) {
	// Load owns the global viper state; start from a clean slate so repeated
	// calls don't inherit a previously set config file.
	viper.Reset()
	setDefaults()

	if path != "" {
		viper.SetConfigFile(path)
	} else {
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")
	}

	viper.SetEnvPrefix("BOT")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		// Missing default config.yaml is fine, defaults and env vars apply.
	}

	cfg := &Config{}
	if err := viper.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks struct tags plus the constraints tags cannot express.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("configuration validation failed: %w", err)
	}

	if _, err := c.Scheduler.Location(); err != nil {
		return err
	}

	switch c.Database.Driver {
	case "sqlite":
		if c.Database.Path == "" {
			return fmt.Errorf("database.path is required for the sqlite driver")
		}
	case "mongo":
		if c.Database.URI == "" || c.Database.Name == "" {
			return fmt.Errorf("database.uri and database.name are required for the mongo driver")
		}
	}

	return nil
}

func setDefaults() {
	viper.SetDefault("log.level", "info")
	viper.SetDefault("log.json", true)

	// Empty defaults so environment-only values survive viper.Unmarshal.
	viper.SetDefault("telegram.token", "")
	viper.SetDefault("telegram.webhook_url", "")
	viper.SetDefault("telegram.listen_addr", ":3000")
	viper.SetDefault("database.uri", "")

	viper.SetDefault("database.driver", "sqlite")
	viper.SetDefault("database.path", "storage.db")
	viper.SetDefault("database.name", "telegram_bot")

	viper.SetDefault("scheduler.enabled", true)
	viper.SetDefault("scheduler.timezone", "Asia/Kolkata")
	viper.SetDefault("scheduler.sweep_interval", time.Minute)
	viper.SetDefault("scheduler.time_format", "3:04 PM")
	viper.SetDefault("scheduler.roll_forward", false)

	viper.SetDefault("telegram.messages.welcome", defaultWelcome)
	viper.SetDefault("telegram.messages.unknown_command", "Sorry, I didn't understand that command.")
	viper.SetDefault("telegram.messages.general_error", "An error occurred. Please try again later.")
	viper.SetDefault("telegram.messages.task_added", "Task added: %s")
	viper.SetDefault("telegram.messages.task_usage", "Please provide a task. Example: /addtask Buy groceries")
	viper.SetDefault("telegram.messages.no_tasks", "You have no tasks.")
	viper.SetDefault("telegram.messages.task_list_header", "Here are your tasks:\n")
	viper.SetDefault("telegram.messages.task_deleted", "Task deleted: %s")
	viper.SetDefault("telegram.messages.invalid_task_number", "Invalid task number.")
	viper.SetDefault("telegram.messages.all_tasks_deleted", "All tasks deleted.")
	viper.SetDefault("telegram.messages.reminder_set", "Reminder set: %s at %s")
	viper.SetDefault("telegram.messages.remind_usage", "Please provide a reminder and a time. Example: /remind Meeting with team at 3:00 PM")
	viper.SetDefault("telegram.messages.invalid_time", "I couldn't understand that time. Try something like 3:00 PM.")
	viper.SetDefault("telegram.messages.no_reminders", "You have no reminders.")
	viper.SetDefault("telegram.messages.reminder_header", "Here are your reminders:\n")
	viper.SetDefault("telegram.messages.reminder_prefix", "Reminder: %s")
}

const defaultWelcome = `Hello %s! Welcome to your Daily Activities Manager Bot! Here are the available commands:

1. /start - Welcome message and instructions on how to use the bot.
2. /addtask [task] - Add a new task to your list. Example: /addtask Buy groceries
3. /listtasks - List all your tasks.
4. /remind [reminder text] at [time] - Set a new reminder. Example: /remind Meeting with team at 3:00 PM
5. /listreminders - List all your reminders.
6. /deletetask [task number] - Delete a specific task from your list. Example: /deletetask 2
7. /deletealltasks - Delete all tasks from your list.

Feel free to use these commands to manage your tasks and reminders. If you have any questions or need help, just ask!`
