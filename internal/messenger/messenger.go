// Package messenger passes messages between execution contexts: the
// background scheduler, the command line UIs and page content scripts.
package messenger

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
)

// Background is the context name of the long-running scheduler.
const Background = "background"

// Actions understood by the listeners in this module.
const (
	ActionFillForm         = "fill_form"
	ActionTestNotification = "testNotification"
)

// ErrNoReceiver is returned when no listener in the target context handles a message.
var ErrNoReceiver = errors.New("could not establish connection: receiving end does not exist")

// Message is the envelope exchanged between contexts.
type Message struct {
	Action string          `json:"action"`
	Data   json.RawMessage `json:"data,omitempty"`
}

// NewMessage builds a message, encoding data as its payload when non-nil.
func NewMessage(action string, data any) (Message, error) {
	msg := Message{Action: action}
	if data == nil {
		return msg, nil
	}
	raw, err := json.Marshal(data)
	if err != nil {
		return Message{}, fmt.Errorf("encode %s payload: %w", action, err)
	}
	msg.Data = raw
	return msg, nil
}

// Listener handles a message. It reports handled=false for actions it does
// not own so other listeners get a chance. A nil response means the sender
// gets no payload back.
type Listener func(ctx context.Context, msg Message) (resp any, handled bool, err error)

// Bus routes messages to the listeners registered for a context.
type Bus struct {
	logger *log.Logger

	mu        sync.RWMutex
	listeners map[string][]Listener
}

// NewBus creates an empty Bus.
func NewBus(logger *log.Logger) *Bus {
	return &Bus{
		logger:    logger,
		listeners: make(map[string][]Listener),
	}
}

// Listen registers l for messages sent to target.
func (b *Bus) Listen(target string, l Listener) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.listeners[target] = append(b.listeners[target], l)
}

// Forget removes every listener of target, e.g. when a page goes away.
func (b *Bus) Forget(target string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.listeners, target)
}

// Send delivers msg to target and returns the first handling listener's response.
func (b *Bus) Send(ctx context.Context, target string, msg Message) (any, error) {
	b.mu.RLock()
	listeners := append([]Listener(nil), b.listeners[target]...)
	b.mu.RUnlock()

	id := uuid.NewString()
	b.logger.Debug("message delivered", "id", id, "target", target, "action", msg.Action)

	for _, l := range listeners {
		resp, handled, err := l(ctx, msg)
		if !handled {
			continue
		}
		if err != nil {
			b.logger.Error("message handler failed", "id", id, "action", msg.Action, "err", err)
			return nil, err
		}
		return resp, nil
	}
	return nil, fmt.Errorf("%s to %s: %w", msg.Action, target, ErrNoReceiver)
}
