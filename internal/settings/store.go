// Package settings persists user settings as scoped key-value pairs and
// notifies subscribers when values change.
package settings

import (
	"context"
	"fmt"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/pathakanu/bendonHelper/internal/model"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Change describes the transition of a single key.
type Change struct {
	OldValue string `json:"oldValue"`
	NewValue string `json:"newValue"`
}

// Listener receives the keys that changed in one Set call and their scope.
type Listener func(changes map[string]Change, scope model.Scope)

// Store is a scoped key-value store backed by the database.
type Store struct {
	db            *gorm.DB
	logger        *log.Logger
	defaultLocale string

	mu        sync.RWMutex
	listeners []Listener

	// dispatch serialises change delivery so one event finishes before the next starts.
	dispatch sync.Mutex
}

// New creates a Store. defaultLocale is used when no locale has been saved.
func New(db *gorm.DB, defaultLocale string, logger *log.Logger) *Store {
	return &Store{
		db:            db,
		logger:        logger,
		defaultLocale: defaultLocale,
	}
}

// OnChanged registers a listener for change events. Listeners run while the
// dispatch lock is held and must not call Set.
func (s *Store) OnChanged(l Listener) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = append(s.listeners, l)
}

// Get returns the values for the keys in defaults. Keys without a stored value
// take their default.
func (s *Store) Get(ctx context.Context, scope model.Scope, defaults map[string]string) (map[string]string, error) {
	keys := make([]string, 0, len(defaults))
	result := make(map[string]string, len(defaults))
	for k, v := range defaults {
		keys = append(keys, k)
		result[k] = v
	}
	if len(keys) == 0 {
		return result, nil
	}

	var rows []model.Setting
	if err := s.db.WithContext(ctx).
		Where("scope = ? AND name IN ?", scope, keys).
		Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("read %s settings: %w", scope, err)
	}
	for _, row := range rows {
		result[row.Name] = row.Value
	}
	return result, nil
}

// Set stores values in scope and notifies listeners about the keys whose value changed.
func (s *Store) Set(ctx context.Context, scope model.Scope, values map[string]string) error {
	if len(values) == 0 {
		return nil
	}

	changes := make(map[string]Change)
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		keys := make([]string, 0, len(values))
		for k := range values {
			keys = append(keys, k)
		}

		var existing []model.Setting
		if err := tx.Where("scope = ? AND name IN ?", scope, keys).Find(&existing).Error; err != nil {
			return err
		}
		previous := make(map[string]string, len(existing))
		for _, row := range existing {
			previous[row.Name] = row.Value
		}

		rows := make([]model.Setting, 0, len(values))
		for k, v := range values {
			rows = append(rows, model.Setting{Scope: scope, Name: k, Value: v})
			if old, ok := previous[k]; !ok || old != v {
				changes[k] = Change{OldValue: old, NewValue: v}
			}
		}

		return tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "scope"}, {Name: "name"}},
			DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
		}).Create(&rows).Error
	})
	if err != nil {
		return fmt.Errorf("write %s settings: %w", scope, err)
	}

	if len(changes) > 0 {
		s.notify(changes, scope)
	}
	return nil
}

func (s *Store) notify(changes map[string]Change, scope model.Scope) {
	s.dispatch.Lock()
	defer s.dispatch.Unlock()

	s.mu.RLock()
	listeners := make([]Listener, len(s.listeners))
	copy(listeners, s.listeners)
	s.mu.RUnlock()

	s.logger.Debug("settings changed", "scope", scope, "keys", len(changes))
	for _, l := range listeners {
		l(changes, scope)
	}
}

// Settings reads the shared scope with defaults applied.
func (s *Store) Settings(ctx context.Context) (model.Settings, error) {
	values, err := s.Get(ctx, model.ScopeSync, s.Defaults())
	if err != nil {
		return model.Settings{}, err
	}
	return model.Settings{
		ReminderDay:  values[model.KeyReminderDay],
		ReminderTime: values[model.KeyReminderTime],
		Locale:       values[model.KeyLocale],
		Profile:      model.ProfileFromMap(values),
	}, nil
}

// Defaults returns the default value for every shared key.
func (s *Store) Defaults() map[string]string {
	defaults := map[string]string{
		model.KeyReminderDay:  model.DefaultReminderDay,
		model.KeyReminderTime: model.DefaultReminderTime,
		model.KeyLocale:       s.defaultLocale,
	}
	for _, k := range model.ProfileKeys {
		defaults[k] = ""
	}
	return defaults
}
