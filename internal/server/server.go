// Package server exposes settings, alarm status and the background message
// endpoint to the companion UIs.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"slices"

	"github.com/charmbracelet/log"
	"github.com/pathakanu/bendonHelper/internal/alarm"
	"github.com/pathakanu/bendonHelper/internal/messenger"
	"github.com/pathakanu/bendonHelper/internal/model"
	"github.com/pathakanu/bendonHelper/internal/scheduler"
)

// SettingsStore is the subset of the settings store used by the HTTP API.
type SettingsStore interface {
	Settings(ctx context.Context) (model.Settings, error)
	Profile(ctx context.Context) (model.Profile, error)
	Set(ctx context.Context, scope model.Scope, values map[string]string) error
}

// AlarmStatus reads the installed reminder alarm.
type AlarmStatus interface {
	Status(ctx context.Context) (*model.Alarm, error)
}

// Server routes API requests.
type Server struct {
	store  SettingsStore
	alarms AlarmStatus
	bus    *messenger.Bus
	logger *log.Logger
	router *http.ServeMux
}

// New creates the API server.
func New(store SettingsStore, alarms AlarmStatus, bus *messenger.Bus, logger *log.Logger) *Server {
	s := &Server{
		store:  store,
		alarms: alarms,
		bus:    bus,
		logger: logger,
		router: http.NewServeMux(),
	}
	s.routes()
	return s
}

func (s *Server) routes() {
	s.router.HandleFunc("GET /settings", s.handleGetSettings)
	s.router.HandleFunc("PUT /settings", s.handlePutSettings)
	s.router.HandleFunc("GET /profile", s.handleGetProfile)
	s.router.HandleFunc("GET /alarms/{name}", s.handleGetAlarm)
	s.router.Handle("POST /runtime/message", s.bus.Handler())
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) handleGetSettings(w http.ResponseWriter, r *http.Request) {
	cfg, err := s.store.Settings(r.Context())
	if err != nil {
		s.logger.Error("read settings", "err", err)
		writeError(w, http.StatusInternalServerError, "failed to read settings")
		return
	}
	writeJSON(w, http.StatusOK, cfg)
}

func (s *Server) handleGetProfile(w http.ResponseWriter, r *http.Request) {
	profile, err := s.store.Profile(r.Context())
	if err != nil {
		s.logger.Error("read profile", "err", err)
		writeError(w, http.StatusInternalServerError, "failed to read profile")
		return
	}
	writeJSON(w, http.StatusOK, profile)
}

// handlePutSettings accepts a partial key-value object. ?scope=local writes the
// device-local profile cache instead of the shared settings.
func (s *Server) handlePutSettings(w http.ResponseWriter, r *http.Request) {
	scope := model.ScopeSync
	if r.URL.Query().Get("scope") == string(model.ScopeLocal) {
		scope = model.ScopeLocal
	}

	var values map[string]string
	if err := json.NewDecoder(io.LimitReader(r.Body, 1<<16)).Decode(&values); err != nil {
		writeError(w, http.StatusBadRequest, "body must be a JSON object of strings")
		return
	}
	if err := s.validate(r.Context(), scope, values); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := s.store.Set(r.Context(), scope, values); err != nil {
		s.logger.Error("write settings", "scope", scope, "err", err)
		writeError(w, http.StatusInternalServerError, "failed to save settings")
		return
	}
	s.handleGetSettings(w, r)
}

func (s *Server) validate(ctx context.Context, scope model.Scope, values map[string]string) error {
	allowed := slices.Clone(model.ProfileKeys)
	if scope == model.ScopeSync {
		allowed = append(allowed, model.KeyReminderDay, model.KeyReminderTime, model.KeyLocale)
	}
	for k := range values {
		if !slices.Contains(allowed, k) {
			return fmt.Errorf("unknown %s setting %q", scope, k)
		}
	}

	day, dayOK := values[model.KeyReminderDay]
	tod, todOK := values[model.KeyReminderTime]
	if !dayOK && !todOK {
		return nil
	}
	current, err := s.store.Settings(ctx)
	if err != nil {
		return err
	}
	if !dayOK {
		day = current.ReminderDay
	}
	if !todOK {
		tod = current.ReminderTime
	}
	_, err = scheduler.ParseReminder(day, tod)
	return err
}

func (s *Server) handleGetAlarm(w http.ResponseWriter, r *http.Request) {
	if r.PathValue("name") != scheduler.AlarmName {
		writeError(w, http.StatusNotFound, "unknown alarm")
		return
	}
	a, err := s.alarms.Status(r.Context())
	if errors.Is(err, alarm.ErrNotFound) {
		writeError(w, http.StatusNotFound, "alarm not installed")
		return
	}
	if err != nil {
		s.logger.Error("read alarm", "err", err)
		writeError(w, http.StatusInternalServerError, "failed to read alarm")
		return
	}
	writeJSON(w, http.StatusOK, a)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
