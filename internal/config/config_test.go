package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{"PORT", "DATABASE_URL", "SQLITE_PATH", "LOCAL_TIMEZONE", "ICON_URL", "DEBUG",
		"TWILIO_ACCOUNT_SID", "TWILIO_AUTH_TOKEN", "TWILIO_WHATSAPP_NUMBER", "NOTIFY_WHATSAPP_TO"} {
		t.Setenv(key, "")
	}
	t.Setenv("LANG", "zh_TW.UTF-8")

	cfg := Load()
	if cfg.Port != "8080" {
		t.Fatalf("Port = %q, want 8080", cfg.Port)
	}
	if cfg.SQLitePath != "bendon.db" {
		t.Fatalf("SQLitePath = %q, want bendon.db", cfg.SQLitePath)
	}
	if cfg.LocalTimezone != time.Local {
		t.Fatalf("expected local timezone, got %v", cfg.LocalTimezone)
	}
	if cfg.PlatformLocale != "zh-TW" {
		t.Fatalf("PlatformLocale = %q, want zh-TW", cfg.PlatformLocale)
	}
	if cfg.TwilioEnabled() {
		t.Fatalf("expected twilio to be disabled without credentials")
	}
}

func TestLoadInvalidValuesFallBack(t *testing.T) {
	t.Setenv("LOCAL_TIMEZONE", "Mars/Olympus")
	t.Setenv("DEBUG", "maybe")

	cfg := Load()
	if cfg.LocalTimezone != time.Local {
		t.Fatalf("expected fallback to local timezone, got %v", cfg.LocalTimezone)
	}
	if cfg.Debug {
		t.Fatalf("expected Debug to default to false")
	}
}

func TestLoadTimezone(t *testing.T) {
	t.Setenv("LOCAL_TIMEZONE", "Asia/Taipei")

	cfg := Load()
	if cfg.LocalTimezone.String() != "Asia/Taipei" {
		t.Fatalf("LocalTimezone = %v, want Asia/Taipei", cfg.LocalTimezone)
	}
}
