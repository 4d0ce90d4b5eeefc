package alarm

import "time"

// periodicSchedule fires once at first and then every period after it.
// A zero period makes it a one-shot schedule.
type periodicSchedule struct {
	first  time.Time
	period time.Duration
}

// Next implements cron.Schedule. It returns the first boundary strictly after t,
// or the zero time when a one-shot schedule has already fired.
func (s periodicSchedule) Next(t time.Time) time.Time {
	if t.Before(s.first) {
		return s.first
	}
	if s.period <= 0 {
		return time.Time{}
	}
	n := t.Sub(s.first)/s.period + 1
	return s.first.Add(n * s.period)
}

// Prev returns the latest boundary at or before t, or the zero time if the
// schedule has not fired yet.
func (s periodicSchedule) Prev(t time.Time) time.Time {
	if t.Before(s.first) {
		return time.Time{}
	}
	if s.period <= 0 {
		return s.first
	}
	n := t.Sub(s.first) / s.period
	return s.first.Add(n * s.period)
}
