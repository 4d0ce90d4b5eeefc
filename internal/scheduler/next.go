package scheduler

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ErrInvalidReminder is returned when the stored reminder day or time cannot be parsed.
var ErrInvalidReminder = errors.New("invalid reminder setting")

// Reminder is the parsed weekday and time of day of the weekly reminder.
type Reminder struct {
	Weekday time.Weekday
	Hour    int
	Minute  int
}

// ParseReminder parses a weekday index ("0".."6", Sunday=0) and an "HH:MM" time.
func ParseReminder(day, hhmm string) (Reminder, error) {
	weekday, err := strconv.Atoi(strings.TrimSpace(day))
	if err != nil || weekday < 0 || weekday > 6 {
		return Reminder{}, fmt.Errorf("%w: day %q", ErrInvalidReminder, day)
	}

	hourStr, minuteStr, ok := strings.Cut(strings.TrimSpace(hhmm), ":")
	if !ok {
		return Reminder{}, fmt.Errorf("%w: time %q", ErrInvalidReminder, hhmm)
	}
	hour, err := strconv.Atoi(hourStr)
	if err != nil || hour < 0 || hour > 23 {
		return Reminder{}, fmt.Errorf("%w: time %q", ErrInvalidReminder, hhmm)
	}
	minute, err := strconv.Atoi(minuteStr)
	if err != nil || minute < 0 || minute > 59 {
		return Reminder{}, fmt.Errorf("%w: time %q", ErrInvalidReminder, hhmm)
	}

	return Reminder{Weekday: time.Weekday(weekday), Hour: hour, Minute: minute}, nil
}

// NextFireTime returns the next occurrence of r at or after now, in now's
// location. A reminder later today fires today; one that already passed today
// moves to the same weekday next week.
func NextFireTime(now time.Time, r Reminder) time.Time {
	daysUntil := (int(r.Weekday) - int(now.Weekday()) + 7) % 7
	next := time.Date(now.Year(), now.Month(), now.Day()+daysUntil, r.Hour, r.Minute, 0, 0, now.Location())
	if daysUntil == 0 && next.Before(now) {
		next = time.Date(now.Year(), now.Month(), now.Day()+7, r.Hour, r.Minute, 0, 0, now.Location())
	}
	return next
}
