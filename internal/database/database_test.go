package database

import (
	"fmt"
	"io"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/pathakanu/bendonHelper/internal/model"
)

func TestNewSQLiteMigratesTables(t *testing.T) {
	dsn := fmt.Sprintf("file:dbtest_%d?mode=memory&cache=shared", time.Now().UnixNano())

	db, err := New("", dsn, log.New(io.Discard))
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	if !db.Migrator().HasTable(&model.Setting{}) {
		t.Fatalf("expected settings table to exist")
	}
	if !db.Migrator().HasTable(&model.Alarm{}) {
		t.Fatalf("expected alarms table to exist")
	}
}
