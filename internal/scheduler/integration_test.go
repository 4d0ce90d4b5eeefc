package scheduler

import (
	"context"
	"fmt"
	"io"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/pathakanu/bendonHelper/internal/alarm"
	"github.com/pathakanu/bendonHelper/internal/database"
	"github.com/pathakanu/bendonHelper/internal/model"
	"github.com/pathakanu/bendonHelper/internal/settings"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func TestSavingSettingsReschedulesAlarm(t *testing.T) {
	dsn := fmt.Sprintf("file:integration_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite memory: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	logger := log.New(io.Discard)
	store := settings.New(db, "en", logger)
	timers := alarm.New(db, time.UTC, logger)
	rn := &recordingNotifier{}
	s := New(store, timers, rn, "", time.UTC, logger)
	// A Monday far enough ahead that the first fire is still upcoming.
	s.now = func() time.Time { return time.Date(2099, 6, 1, 9, 0, 0, 0, time.UTC) }

	store.OnChanged(s.HandleSettingsChanged)
	timers.OnAlarm(s.HandleAlarm)
	ctx := context.Background()

	s.HandleInstalled(ctx)
	if err := store.Set(ctx, model.ScopeSync, map[string]string{
		model.KeyReminderDay:  "3",
		model.KeyReminderTime: "12:00",
	}); err != nil {
		t.Fatalf("save settings: %v", err)
	}

	got, err := s.Status(ctx)
	if err != nil {
		t.Fatalf("Status: %v", err)
	}
	want := time.Date(2099, 6, 3, 12, 0, 0, 0, time.UTC)
	if !got.ScheduledTime.Equal(want) || got.PeriodInMinutes != PeriodInMinutes {
		t.Fatalf("alarm = %+v, want %v weekly", got, want)
	}

	if err := store.Set(ctx, model.ScopeSync, map[string]string{model.KeyReminderDay: "1", model.KeyReminderTime: "08:30"}); err != nil {
		t.Fatalf("save settings: %v", err)
	}
	got, err = s.Status(ctx)
	if err != nil {
		t.Fatalf("Status: %v", err)
	}
	if want := time.Date(2099, 6, 8, 8, 30, 0, 0, time.UTC); !got.ScheduledTime.Equal(want) {
		t.Fatalf("after change alarm = %v, want %v", got.ScheduledTime, want)
	}
}
