// Package notify displays user-facing notifications.
package notify

import (
	"context"
	"fmt"

	"github.com/charmbracelet/log"
)

// TypeBasic is the only notification template in use.
const TypeBasic = "basic"

// PriorityHigh keeps the notification visible until dismissed on hosts that honour priority.
const PriorityHigh = 2

// Notification is a transient message shown to the user.
type Notification struct {
	Type     string `json:"type"`
	IconURL  string `json:"iconUrl"`
	Title    string `json:"title"`
	Message  string `json:"message"`
	Priority int    `json:"priority"`
}

// Basic builds a high-priority basic notification.
func Basic(iconURL, title, message string) Notification {
	return Notification{
		Type:     TypeBasic,
		IconURL:  iconURL,
		Title:    title,
		Message:  message,
		Priority: PriorityHigh,
	}
}

// Notifier displays notifications.
type Notifier interface {
	Notify(ctx context.Context, n Notification) error
}

// LogNotifier writes notifications to the log.
type LogNotifier struct {
	logger *log.Logger
}

// NewLogNotifier returns a Notifier that logs each notification.
func NewLogNotifier(logger *log.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

// Notify implements Notifier.
func (l *LogNotifier) Notify(_ context.Context, n Notification) error {
	l.logger.Info(n.Title, "message", n.Message, "priority", n.Priority)
	return nil
}

// WhatsAppSender sends a text message to a phone number.
type WhatsAppSender interface {
	SendWhatsAppMessage(to, body string) (string, error)
}

// WhatsAppNotifier delivers notifications as WhatsApp messages.
type WhatsAppNotifier struct {
	sender WhatsAppSender
	to     string
}

// NewWhatsAppNotifier returns a Notifier that messages the given recipient.
func NewWhatsAppNotifier(sender WhatsAppSender, to string) *WhatsAppNotifier {
	return &WhatsAppNotifier{sender: sender, to: to}
}

// Notify implements Notifier.
func (w *WhatsAppNotifier) Notify(_ context.Context, n Notification) error {
	body := fmt.Sprintf("*%s*\n%s", n.Title, n.Message)
	if _, err := w.sender.SendWhatsAppMessage(w.to, body); err != nil {
		return fmt.Errorf("whatsapp notification: %w", err)
	}
	return nil
}

// Multi fans a notification out to several notifiers. Every notifier is
// attempted; the first error is returned.
type Multi []Notifier

// Notify implements Notifier.
func (m Multi) Notify(ctx context.Context, n Notification) error {
	var first error
	for _, notifier := range m {
		if err := notifier.Notify(ctx, n); err != nil && first == nil {
			first = err
		}
	}
	return first
}
