package handlers

import (
	"strconv"
	"strings"
)

// CommandArgs strips the leading /command (and optional @botname suffix)
// from a message and returns the remaining argument text.
func CommandArgs(text string) string {
	if !strings.HasPrefix(text, "/") {
		return strings.TrimSpace(text)
	}
	_, args, _ := strings.Cut(text, " ")
	return strings.TrimSpace(args)
}

// SplitRemindArgs splits "/remind" arguments of the form
// "<reminder text> at <time>". The split happens on the last " at " so the
// reminder text itself may contain the word.
func SplitRemindArgs(args string) (text, timeStr string, ok bool) {
	idx := strings.LastIndex(args, " at ")
	if idx < 0 {
		return "", "", false
	}

	text = strings.TrimSpace(args[:idx])
	timeStr = strings.TrimSpace(args[idx+len(" at "):])
	if text == "" || timeStr == "" {
		return "", "", false
	}
	return text, timeStr, true
}

// ParseTaskIndex parses a user-visible 1-based task number.
func ParseTaskIndex(s string) (int, bool) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < 1 {
		return 0, false
	}
	return n, true
}
