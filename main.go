package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/charmbracelet/log"
	"github.com/pathakanu/bendonHelper/internal/alarm"
	"github.com/pathakanu/bendonHelper/internal/config"
	"github.com/pathakanu/bendonHelper/internal/database"
	"github.com/pathakanu/bendonHelper/internal/logger"
	"github.com/pathakanu/bendonHelper/internal/messenger"
	"github.com/pathakanu/bendonHelper/internal/model"
	"github.com/pathakanu/bendonHelper/internal/notify"
	"github.com/pathakanu/bendonHelper/internal/scheduler"
	"github.com/pathakanu/bendonHelper/internal/server"
	"github.com/pathakanu/bendonHelper/internal/settings"
	"github.com/pathakanu/bendonHelper/internal/twilio"
)

// version is overridden at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	cfg := config.Load()
	l, err := logger.New(logger.Config{Debug: cfg.Debug, LogFile: cfg.LogFile, Prefix: "bendon"})
	if err != nil {
		log.Fatal("logger init failed", "err", err)
	}

	db, err := database.New(cfg.DatabaseURL, cfg.SQLitePath, l)
	if err != nil {
		l.Fatal("database init failed", "err", err)
	}

	store := settings.New(db, cfg.PlatformLocale, l)
	timers := alarm.New(db, cfg.LocalTimezone, l)

	var notifier notify.Notifier = notify.NewLogNotifier(l)
	if cfg.TwilioEnabled() {
		twilioClient := twilio.New(cfg.TwilioAccountSID, cfg.TwilioAuthToken, cfg.TwilioWhatsAppNumber, l)
		notifier = notify.Multi{notifier, notify.NewWhatsAppNotifier(twilioClient, cfg.NotifyWhatsAppTo)}
		l.Info("whatsapp notifications enabled", "to", cfg.NotifyWhatsAppTo)
	}

	reminder := scheduler.New(store, timers, notifier, cfg.IconURL, cfg.LocalTimezone, l)
	bus := messenger.NewBus(l)
	bus.Listen(messenger.Background, reminder.HandleMessage)
	store.OnChanged(reminder.HandleSettingsChanged)
	timers.OnAlarm(reminder.HandleAlarm)

	ctx := context.Background()
	if err := timers.Start(ctx); err != nil {
		l.Fatal("alarm service start failed", "err", err)
	}

	installed, err := recordVersion(ctx, store)
	if err != nil {
		l.Error("record installed version", "err", err)
	}
	if installed {
		reminder.HandleInstalled(ctx)
	} else {
		reminder.HandleStartup(ctx)
	}

	httpServer := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           server.New(store, reminder, bus, l),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		l.Info("server starting", "addr", httpServer.Addr, "version", version)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			l.Fatal("server error", "err", err)
		}
	}()

	waitForShutdown(httpServer, timers, l)
}

// recordVersion reports whether this is the first run of the current version.
func recordVersion(ctx context.Context, store *settings.Store) (bool, error) {
	values, err := store.Get(ctx, model.ScopeLocal, map[string]string{model.KeyInstalledVersion: ""})
	if err != nil {
		return false, err
	}
	if values[model.KeyInstalledVersion] == version {
		return false, nil
	}
	if err := store.Set(ctx, model.ScopeLocal, map[string]string{model.KeyInstalledVersion: version}); err != nil {
		return false, err
	}
	return true, nil
}

func waitForShutdown(server *http.Server, timers *alarm.Service, l *log.Logger) {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop
	l.Info("shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		l.Error("server shutdown error", "err", err)
	}
	timers.Stop()
}
