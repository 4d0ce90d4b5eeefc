// Package scheduler keeps the weekly lunch reminder alarm in line with the
// user's settings and turns alarm firings into notifications.
package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/pathakanu/bendonHelper/internal/i18n"
	"github.com/pathakanu/bendonHelper/internal/messenger"
	"github.com/pathakanu/bendonHelper/internal/model"
	"github.com/pathakanu/bendonHelper/internal/notify"
	"github.com/pathakanu/bendonHelper/internal/settings"
)

// AlarmName is the reserved name of the weekly reminder alarm.
const AlarmName = "buyLunchReminder"

// PeriodInMinutes is one week.
const PeriodInMinutes = 7 * 24 * 60

// SettingsReader reads the shared settings with defaults applied.
type SettingsReader interface {
	Settings(ctx context.Context) (model.Settings, error)
	MigrateLocalProfile(ctx context.Context) ([]string, error)
}

// Timers creates and reads named alarms.
type Timers interface {
	Create(ctx context.Context, name string, when time.Time, periodInMinutes int) error
	Get(ctx context.Context, name string) (*model.Alarm, error)
}

// State is the reminder state machine's current state.
type State string

const (
	StateArmed  State = "armed"
	StateFiring State = "firing"
)

// Scheduler reconciles the alarm with settings and dispatches notifications.
type Scheduler struct {
	settings SettingsReader
	timers   Timers
	notifier notify.Notifier
	iconURL  string
	loc      *time.Location
	logger   *log.Logger
	now      func() time.Time

	mu    sync.Mutex
	state State
}

// New creates a Scheduler. Times are computed in loc.
func New(settings SettingsReader, timers Timers, notifier notify.Notifier, iconURL string, loc *time.Location, logger *log.Logger) *Scheduler {
	if loc == nil {
		loc = time.Local
	}
	return &Scheduler{
		settings: settings,
		timers:   timers,
		notifier: notifier,
		iconURL:  iconURL,
		loc:      loc,
		logger:   logger,
		now:      time.Now,
		state:    StateArmed,
	}
}

// Reconcile recomputes the next reminder instant from the current settings and
// replaces the alarm. On failure the previously installed alarm is left as is.
func (s *Scheduler) Reconcile(ctx context.Context) error {
	cfg, err := s.settings.Settings(ctx)
	if err != nil {
		s.logger.Error("reconcile: read settings", "err", err)
		return err
	}

	reminder, err := ParseReminder(cfg.ReminderDay, cfg.ReminderTime)
	if err != nil {
		s.logger.Error("reconcile: parse reminder", "day", cfg.ReminderDay, "time", cfg.ReminderTime, "err", err)
		return err
	}

	next := NextFireTime(s.now().In(s.loc), reminder)
	if err := s.timers.Create(ctx, AlarmName, next, PeriodInMinutes); err != nil {
		s.logger.Error("reconcile: install alarm", "err", err)
		return err
	}

	s.logger.Info("reminder updated", "next", next.Format(time.DateTime), "weekday", next.Weekday())
	return nil
}

// HandleInstalled runs on first install or upgrade.
func (s *Scheduler) HandleInstalled(ctx context.Context) {
	s.logger.Info("extension installed or updated")
	copied, err := s.settings.MigrateLocalProfile(ctx)
	if err != nil {
		s.logger.Error("migrate local profile", "err", err)
	} else if len(copied) > 0 {
		s.logger.Info("migrated local profile fields", "keys", copied)
	}
	_ = s.Reconcile(ctx)
}

// HandleStartup runs every time the process starts.
func (s *Scheduler) HandleStartup(ctx context.Context) {
	s.logger.Info("startup, setting up reminder")
	_ = s.Reconcile(ctx)
}

// HandleSettingsChanged reconciles when a shared reminder or locale key changed.
func (s *Scheduler) HandleSettingsChanged(changes map[string]settings.Change, scope model.Scope) {
	if scope != model.ScopeSync {
		return
	}
	_, day := changes[model.KeyReminderDay]
	_, tod := changes[model.KeyReminderTime]
	_, locale := changes[model.KeyLocale]
	if !day && !tod && !locale {
		return
	}
	s.logger.Info("settings changed, updating reminder")
	_ = s.Reconcile(context.Background())
}

// HandleAlarm shows the reminder when the reserved alarm fires.
func (s *Scheduler) HandleAlarm(a model.Alarm) {
	if a.Name != AlarmName {
		return
	}
	s.setState(StateFiring)
	defer s.setState(StateArmed)

	ctx := context.Background()
	bundle := s.bundle(ctx)
	if err := s.notifier.Notify(ctx, notify.Basic(s.iconURL, bundle.ReminderTitle, bundle.ReminderMessage)); err != nil {
		s.logger.Error("show reminder", "err", err)
		return
	}
	s.logger.Info("lunch reminder shown", "scheduled", a.ScheduledTime)
}

// State reports whether a reminder is currently being dispatched.
func (s *Scheduler) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *Scheduler) setState(st State) {
	s.mu.Lock()
	s.state = st
	s.mu.Unlock()
}

// TestNotification shows the test variant of the reminder. The alarm is not touched.
func (s *Scheduler) TestNotification(ctx context.Context) error {
	bundle := s.bundle(ctx)
	if err := s.notifier.Notify(ctx, notify.Basic(s.iconURL, bundle.TestTitle, bundle.TestMessage)); err != nil {
		return fmt.Errorf("show test notification: %w", err)
	}
	return nil
}

// Status returns the installed alarm for display.
func (s *Scheduler) Status(ctx context.Context) (*model.Alarm, error) {
	return s.timers.Get(ctx, AlarmName)
}

// HandleMessage is the background messenger listener.
func (s *Scheduler) HandleMessage(ctx context.Context, msg messenger.Message) (any, bool, error) {
	if msg.Action != messenger.ActionTestNotification {
		return nil, false, nil
	}
	if err := s.TestNotification(ctx); err != nil {
		s.logger.Error("test notification", "err", err)
	}
	return nil, true, nil
}

// bundle resolves the locale, falling back to English when settings are unreadable.
func (s *Scheduler) bundle(ctx context.Context) i18n.Bundle {
	cfg, err := s.settings.Settings(ctx)
	if err != nil {
		s.logger.Warn("read locale, using default", "err", err)
		return i18n.Resolve("")
	}
	return i18n.Resolve(cfg.Locale)
}
