package scheduler

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/pathakanu/bendonHelper/internal/messenger"
	"github.com/pathakanu/bendonHelper/internal/model"
	"github.com/pathakanu/bendonHelper/internal/notify"
	"github.com/pathakanu/bendonHelper/internal/settings"
)

type fakeSettings struct {
	cfg      model.Settings
	err      error
	migrated int
}

func (f *fakeSettings) Settings(context.Context) (model.Settings, error) {
	return f.cfg, f.err
}

func (f *fakeSettings) MigrateLocalProfile(context.Context) ([]string, error) {
	f.migrated++
	return nil, nil
}

type fakeTimers struct {
	alarms  map[string]model.Alarm
	creates int
	err     error
}

func (f *fakeTimers) Create(_ context.Context, name string, when time.Time, period int) error {
	if f.err != nil {
		return f.err
	}
	f.creates++
	f.alarms[name] = model.Alarm{Name: name, ScheduledTime: when, PeriodInMinutes: period}
	return nil
}

func (f *fakeTimers) Get(_ context.Context, name string) (*model.Alarm, error) {
	a, ok := f.alarms[name]
	if !ok {
		return nil, errors.New("not found")
	}
	return &a, nil
}

type recordingNotifier struct {
	got []notify.Notification
}

func (r *recordingNotifier) Notify(_ context.Context, n notify.Notification) error {
	r.got = append(r.got, n)
	return nil
}

// monday0900 is Monday 2026-10-12 09:00 UTC.
var monday0900 = time.Date(2026, 10, 12, 9, 0, 0, 0, time.UTC)

func newTestScheduler(cfg model.Settings) (*Scheduler, *fakeSettings, *fakeTimers, *recordingNotifier) {
	fs := &fakeSettings{cfg: cfg}
	ft := &fakeTimers{alarms: make(map[string]model.Alarm)}
	rn := &recordingNotifier{}
	s := New(fs, ft, rn, "/assets/icons/favicon-48.png", time.UTC, log.New(io.Discard))
	s.now = func() time.Time { return monday0900 }
	return s, fs, ft, rn
}

func TestReconcileInstallsWeeklyAlarm(t *testing.T) {
	t.Parallel()
	s, _, ft, _ := newTestScheduler(model.Settings{ReminderDay: "3", ReminderTime: "12:00"})

	if err := s.Reconcile(context.Background()); err != nil {
		t.Fatalf("Reconcile: %v", err)
	}

	got := ft.alarms[AlarmName]
	want := time.Date(2026, 10, 14, 12, 0, 0, 0, time.UTC)
	if !got.ScheduledTime.Equal(want) {
		t.Fatalf("ScheduledTime = %v, want %v", got.ScheduledTime, want)
	}
	if got.PeriodInMinutes != 10080 {
		t.Fatalf("PeriodInMinutes = %d, want 10080", got.PeriodInMinutes)
	}
}

func TestReconcileIsIdempotent(t *testing.T) {
	t.Parallel()
	s, _, ft, _ := newTestScheduler(model.Settings{ReminderDay: "5", ReminderTime: "11:45"})
	ctx := context.Background()

	if err := s.Reconcile(ctx); err != nil {
		t.Fatalf("first Reconcile: %v", err)
	}
	first := ft.alarms[AlarmName]
	if err := s.Reconcile(ctx); err != nil {
		t.Fatalf("second Reconcile: %v", err)
	}
	second := ft.alarms[AlarmName]

	if !first.ScheduledTime.Equal(second.ScheduledTime) || first.PeriodInMinutes != second.PeriodInMinutes {
		t.Fatalf("alarm drifted: %+v then %+v", first, second)
	}
	if len(ft.alarms) != 1 {
		t.Fatalf("expected a single alarm, got %d", len(ft.alarms))
	}
}

func TestReconcileFailuresKeepPreviousAlarm(t *testing.T) {
	t.Parallel()
	s, fs, ft, _ := newTestScheduler(model.Settings{ReminderDay: "3", ReminderTime: "12:00"})
	ctx := context.Background()

	if err := s.Reconcile(ctx); err != nil {
		t.Fatalf("Reconcile: %v", err)
	}
	previous := ft.alarms[AlarmName]

	fs.cfg.ReminderTime = "25:00"
	if err := s.Reconcile(ctx); !errors.Is(err, ErrInvalidReminder) {
		t.Fatalf("expected ErrInvalidReminder, got %v", err)
	}

	fs.cfg.ReminderTime = "13:00"
	fs.err = errors.New("store unavailable")
	if err := s.Reconcile(ctx); err == nil {
		t.Fatalf("expected settings error")
	}

	fs.err = nil
	ft.err = errors.New("timer unavailable")
	if err := s.Reconcile(ctx); err == nil {
		t.Fatalf("expected timer error")
	}

	if got := ft.alarms[AlarmName]; !got.ScheduledTime.Equal(previous.ScheduledTime) {
		t.Fatalf("alarm changed after failures: %+v", got)
	}
	if ft.creates != 1 {
		t.Fatalf("expected one successful create, got %d", ft.creates)
	}
}

func TestHandleSettingsChanged(t *testing.T) {
	t.Parallel()
	s, _, ft, _ := newTestScheduler(model.Settings{ReminderDay: "3", ReminderTime: "12:00"})

	cases := []struct {
		name    string
		changes map[string]settings.Change
		scope   model.Scope
		want    int
	}{
		{"profile only", map[string]settings.Change{model.KeyEmail: {NewValue: "a@b.com"}}, model.ScopeSync, 0},
		{"local scope", map[string]settings.Change{model.KeyReminderDay: {NewValue: "1"}}, model.ScopeLocal, 0},
		{"day", map[string]settings.Change{model.KeyReminderDay: {NewValue: "1"}}, model.ScopeSync, 1},
		{"time", map[string]settings.Change{model.KeyReminderTime: {NewValue: "13:00"}}, model.ScopeSync, 2},
		{"locale", map[string]settings.Change{model.KeyLocale: {NewValue: "zh-TW"}}, model.ScopeSync, 3},
	}
	for _, tc := range cases {
		s.HandleSettingsChanged(tc.changes, tc.scope)
		if ft.creates != tc.want {
			t.Fatalf("%s: creates = %d, want %d", tc.name, ft.creates, tc.want)
		}
	}
}

func TestHandleInstalledAndStartup(t *testing.T) {
	t.Parallel()
	s, fs, ft, _ := newTestScheduler(model.Settings{ReminderDay: "3", ReminderTime: "12:00"})
	ctx := context.Background()

	s.HandleInstalled(ctx)
	if fs.migrated != 1 || ft.creates != 1 {
		t.Fatalf("install: migrated=%d creates=%d", fs.migrated, ft.creates)
	}
	s.HandleStartup(ctx)
	if ft.creates != 2 {
		t.Fatalf("startup: creates=%d", ft.creates)
	}
}

func TestHandleAlarmShowsLocalizedReminder(t *testing.T) {
	t.Parallel()
	s, _, _, rn := newTestScheduler(model.Settings{Locale: "zh-TW"})

	s.HandleAlarm(model.Alarm{Name: "somethingElse"})
	if len(rn.got) != 0 {
		t.Fatalf("unrelated alarm produced a notification")
	}

	s.HandleAlarm(model.Alarm{Name: AlarmName})
	if len(rn.got) != 1 {
		t.Fatalf("expected one notification, got %d", len(rn.got))
	}
	n := rn.got[0]
	if n.Title != "午餐提醒" || n.Type != "basic" || n.Priority != 2 || n.IconURL != "/assets/icons/favicon-48.png" {
		t.Fatalf("unexpected notification %+v", n)
	}
	if s.State() != StateArmed {
		t.Fatalf("state = %s, want armed", s.State())
	}
}

func TestTestNotificationMessage(t *testing.T) {
	t.Parallel()

	cases := map[string]string{
		"zh-TW": "測試提醒",
		"en":    "Test Reminder",
		"":      "Test Reminder",
	}
	for locale, want := range cases {
		s, _, ft, rn := newTestScheduler(model.Settings{Locale: locale})

		resp, handled, err := s.HandleMessage(context.Background(), messenger.Message{Action: messenger.ActionTestNotification})
		if err != nil || !handled || resp != nil {
			t.Fatalf("%q: resp=%v handled=%v err=%v", locale, resp, handled, err)
		}
		if len(rn.got) != 1 || rn.got[0].Title != want {
			t.Fatalf("%q: notifications = %+v, want title %q", locale, rn.got, want)
		}
		if ft.creates != 0 {
			t.Fatalf("%q: test notification touched the alarm", locale)
		}
	}
}

func TestHandleMessageIgnoresOtherActions(t *testing.T) {
	t.Parallel()
	s, _, _, _ := newTestScheduler(model.Settings{})

	if _, handled, _ := s.HandleMessage(context.Background(), messenger.Message{Action: messenger.ActionFillForm}); handled {
		t.Fatalf("fill_form must be left to content scripts")
	}
}
