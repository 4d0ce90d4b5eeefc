package logger

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
)

func TestNewWritesToRotatingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "bendon.log")

	l, err := New(Config{LogFile: path, Prefix: "bendon"})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	l.Info("reminder updated", "day", 3)

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	if !strings.Contains(string(data), "reminder updated") {
		t.Fatalf("log file missing entry: %q", data)
	}
}

func TestNewDebugLevel(t *testing.T) {
	l, err := New(Config{Debug: true})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	if l.GetLevel() != log.DebugLevel {
		t.Fatalf("level = %v, want debug", l.GetLevel())
	}
}
