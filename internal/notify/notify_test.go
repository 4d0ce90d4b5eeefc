package notify

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
)

type fakeSender struct {
	to, body string
	err      error
}

func (f *fakeSender) SendWhatsAppMessage(to, body string) (string, error) {
	f.to, f.body = to, body
	return "SM1", f.err
}

type recordingNotifier struct {
	got []Notification
	err error
}

func (r *recordingNotifier) Notify(_ context.Context, n Notification) error {
	r.got = append(r.got, n)
	return r.err
}

func TestBasic(t *testing.T) {
	t.Parallel()

	n := Basic("/icon.png", "Lunch Reminder", "order now")
	if n.Type != "basic" || n.Priority != 2 || n.IconURL != "/icon.png" {
		t.Fatalf("unexpected notification: %+v", n)
	}
}

func TestLogNotifier(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer

	if err := NewLogNotifier(log.New(&buf)).Notify(context.Background(), Basic("", "Test Reminder", "hello")); err != nil {
		t.Fatalf("Notify: %v", err)
	}
	if !strings.Contains(buf.String(), "Test Reminder") {
		t.Fatalf("log output missing title: %q", buf.String())
	}
}

func TestWhatsAppNotifier(t *testing.T) {
	t.Parallel()
	sender := &fakeSender{}

	if err := NewWhatsAppNotifier(sender, "+886").Notify(context.Background(), Basic("", "午餐提醒", "該買便當囉！")); err != nil {
		t.Fatalf("Notify: %v", err)
	}
	if sender.to != "+886" || sender.body != "*午餐提醒*\n該買便當囉！" {
		t.Fatalf("unexpected send: to=%q body=%q", sender.to, sender.body)
	}

	sender.err = errors.New("down")
	if err := NewWhatsAppNotifier(sender, "+886").Notify(context.Background(), Basic("", "a", "b")); err == nil {
		t.Fatalf("expected error from failing sender")
	}
}

func TestMultiAttemptsEveryNotifier(t *testing.T) {
	t.Parallel()
	failing := &recordingNotifier{err: errors.New("nope")}
	ok := &recordingNotifier{}

	err := Multi{failing, ok}.Notify(context.Background(), Basic("", "t", "m"))
	if err == nil {
		t.Fatalf("expected error from failing notifier")
	}
	if len(ok.got) != 1 {
		t.Fatalf("second notifier was not called")
	}
}
