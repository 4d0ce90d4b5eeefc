package model

import "time"

// Alarm is a named timer that fires at ScheduledTime and then every PeriodInMinutes.
type Alarm struct {
	Name            string    `gorm:"primaryKey;size:64" json:"name"`
	ScheduledTime   time.Time `gorm:"not null" json:"scheduledTime"`
	PeriodInMinutes int       `gorm:"not null" json:"periodInMinutes"`
	UpdatedAt       time.Time `gorm:"autoUpdateTime" json:"-"`
}

// Period returns the repeat interval as a duration.
func (a Alarm) Period() time.Duration {
	return time.Duration(a.PeriodInMinutes) * time.Minute
}
