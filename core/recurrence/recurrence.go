package recurrence

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Frequency names the supported repetition intervals.
type Frequency string

const (
	FrequencyDaily   Frequency = "daily"
	FrequencyWeekly  Frequency = "weekly"
	FrequencyMonthly Frequency = "monthly"
)

var (
	// ErrAmbiguousRule marks a rule with both day-of-month and day-of-week
	// concrete. The compiler never produces one; reject it on sight.
	ErrAmbiguousRule = errors.New("recurrence rule sets both day-of-month and day-of-week")

	// ErrNotInFuture marks a one-shot time at or before the current instant.
	ErrNotInFuture = errors.New("scheduled time must be in the future")
)

// Selection is the decompiled form of a rule, mirroring the editor's
// date/time/frequency inputs. DayOfWeek is set only for weekly rules,
// DayOfMonth only for monthly ones.
type Selection struct {
	Hour       int
	Minute     int
	Frequency  Frequency
	DayOfWeek  *int
	DayOfMonth *int
}

// Compile translates a schedule selection into a canonical rule string. The
// anchor date contributes the day-of-week (weekly) or day-of-month
// (monthly) in UTC; daily rules ignore it. Pure and total for valid inputs.
func Compile(date time.Time, hour, minute int, freq Frequency) (string, error) {
	if hour < 0 || hour > 23 {
		return "", fmt.Errorf("hour %d out of range 0-23", hour)
	}
	if minute < 0 || minute > 59 {
		return "", fmt.Errorf("minute %d out of range 0-59", minute)
	}
	d := date.UTC()
	switch freq {
	case FrequencyDaily:
		return fmt.Sprintf("%d %d * * *", minute, hour), nil
	case FrequencyWeekly:
		return fmt.Sprintf("%d %d * * %d", minute, hour, int(d.Weekday())), nil
	case FrequencyMonthly:
		return fmt.Sprintf("%d %d %d * *", minute, hour, d.Day()), nil
	default:
		return "", fmt.Errorf("unknown frequency %q", freq)
	}
}

// Decompile recovers the editor selection from a rule string. The frequency
// is derived from which day field is concrete. Exact inverse of Compile for
// every rule Compile produces.
func Decompile(rule string) (Selection, error) {
	fields := strings.Fields(rule)
	if len(fields) != 5 {
		return Selection{}, fmt.Errorf("rule %q: expected 5 fields, got %d", rule, len(fields))
	}

	minute, err := parseField(fields[0], 0, 59, "minute")
	if err != nil {
		return Selection{}, fmt.Errorf("rule %q: %w", rule, err)
	}
	hour, err := parseField(fields[1], 0, 23, "hour")
	if err != nil {
		return Selection{}, fmt.Errorf("rule %q: %w", rule, err)
	}
	if fields[3] != "*" {
		return Selection{}, fmt.Errorf("rule %q: month must be a wildcard", rule)
	}

	sel := Selection{Hour: hour, Minute: minute}
	domWild := fields[2] == "*"
	dowWild := fields[4] == "*"

	switch {
	case !domWild && !dowWild:
		return Selection{}, fmt.Errorf("rule %q: %w", rule, ErrAmbiguousRule)
	case domWild && dowWild:
		sel.Frequency = FrequencyDaily
	case dowWild:
		dom, err := parseField(fields[2], 1, 31, "day-of-month")
		if err != nil {
			return Selection{}, fmt.Errorf("rule %q: %w", rule, err)
		}
		sel.Frequency = FrequencyMonthly
		sel.DayOfMonth = &dom
	default:
		dow, err := parseField(fields[4], 0, 6, "day-of-week")
		if err != nil {
			return Selection{}, fmt.Errorf("rule %q: %w", rule, err)
		}
		sel.Frequency = FrequencyWeekly
		sel.DayOfWeek = &dow
	}
	return sel, nil
}

// ValidateOneShot rejects a one-shot schedule time that is not strictly in
// the future. Recurring schedules are exempt: they repeat, so "now" is not
// a meaningful lower bound for them.
func ValidateOneShot(at, now time.Time) error {
	if !at.After(now) {
		return ErrNotInFuture
	}
	return nil
}

func parseField(s string, min, max int, name string) (int, error) {
	v, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q", name, s)
	}
	if v < min || v > max {
		return 0, fmt.Errorf("%s %d out of range %d-%d", name, v, min, max)
	}
	return v, nil
}
