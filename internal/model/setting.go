package model

import "time"

// Scope identifies which settings area a key lives in.
type Scope string

const (
	// ScopeSync holds settings shared across devices.
	ScopeSync Scope = "sync"
	// ScopeLocal holds per-device settings such as the legacy profile cache.
	ScopeLocal Scope = "local"
)

// Setting keys.
const (
	KeyReminderDay  = "reminderDay"
	KeyReminderTime = "reminderTime"
	KeyLocale       = "locale"
	KeyLastname     = "lastname"
	KeyEmail        = "email"
	KeySlackID      = "slackId"
	KeyStaffID      = "staffId"

	// KeyInstalledVersion records, per device, the last version that ran.
	KeyInstalledVersion = "installedVersion"
)

// Default reminder values: Wednesday at noon.
const (
	DefaultReminderDay  = "3"
	DefaultReminderTime = "12:00"
)

// ProfileKeys lists the free-form profile fields in display order.
var ProfileKeys = []string{KeyLastname, KeyEmail, KeySlackID, KeyStaffID}

// Setting is a single persisted key-value pair.
type Setting struct {
	Scope     Scope     `gorm:"primaryKey;size:16"`
	Name      string    `gorm:"primaryKey;size:64"`
	Value     string    `gorm:"type:text;not null"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`
}

// Profile holds the personal identifiers used to fill the order form.
type Profile struct {
	Lastname string `json:"lastname"`
	Email    string `json:"email"`
	SlackID  string `json:"slackId"`
	StaffID  string `json:"staffId"`
}

// Settings is the typed view of the shared settings scope.
type Settings struct {
	ReminderDay  string  `json:"reminderDay"`
	ReminderTime string  `json:"reminderTime"`
	Locale       string  `json:"locale"`
	Profile      Profile `json:"profile"`
}

// ProfileFromMap builds a Profile from raw key-value settings.
func ProfileFromMap(values map[string]string) Profile {
	return Profile{
		Lastname: values[KeyLastname],
		Email:    values[KeyEmail],
		SlackID:  values[KeySlackID],
		StaffID:  values[KeyStaffID],
	}
}

// Map flattens the profile into setting keys.
func (p Profile) Map() map[string]string {
	return map[string]string{
		KeyLastname: p.Lastname,
		KeyEmail:    p.Email,
		KeySlackID:  p.SlackID,
		KeyStaffID:  p.StaffID,
	}
}
