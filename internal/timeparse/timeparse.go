// Package timeparse resolves free-text time-of-day expressions into absolute
// instants in a single configured timezone.
package timeparse

import (
	"fmt"
	"strings"
	"time"
)

// ParseError indicates the input text could not be resolved to an instant.
type ParseError struct {
	Input string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("cannot parse %q as a time of day", e.Input)
}

// Normalizer converts time-of-day text into absolute instants. The date
// component defaults to "today" in the configured zone at normalization time.
type Normalizer struct {
	loc    *time.Location
	layout string

	// rollForward anchors an already-passed time-of-day to tomorrow instead
	// of today.
	rollForward bool
}

// New creates a Normalizer for the given zone and primary layout
// (e.g. "3:04 PM").
func New(loc *time.Location, layout string, rollForward bool) *Normalizer {
	return &Normalizer{loc: loc, layout: layout, rollForward: rollForward}
}

// fallbackLayouts are tried after the configured layout so common variants
// like a leading zero or 24-hour input still resolve.
var fallbackLayouts = []string{"3:04 PM", "03:04 PM", "15:04"}

// Normalize resolves text into an absolute instant anchored to now's date in
// the configured zone. Returns a *ParseError for malformed input.
func (n *Normalizer) Normalize(text string, now time.Time) (time.Time, error) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return time.Time{}, &ParseError{Input: text}
	}

	parsed, err := n.parseTimeOfDay(trimmed)
	if err != nil {
		return time.Time{}, err
	}

	local := now.In(n.loc)
	instant := time.Date(local.Year(), local.Month(), local.Day(),
		parsed.Hour(), parsed.Minute(), 0, 0, n.loc)

	if n.rollForward && instant.Before(local.Truncate(time.Minute)) {
		instant = instant.AddDate(0, 0, 1)
	}

	return instant, nil
}

func (n *Normalizer) parseTimeOfDay(text string) (time.Time, error) {
	upper := strings.ToUpper(text)

	if t, err := time.Parse(n.layout, upper); err == nil {
		return t, nil
	}
	for _, layout := range fallbackLayouts {
		if layout == n.layout {
			continue
		}
		if t, err := time.Parse(layout, upper); err == nil {
			return t, nil
		}
	}

	return time.Time{}, &ParseError{Input: text}
}
