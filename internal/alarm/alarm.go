// Package alarm provides named timers that fire at an absolute instant and
// then repeat at a fixed period. Creating a timer under an existing name
// replaces it.
package alarm

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/pathakanu/bendonHelper/internal/model"
	"github.com/robfig/cron/v3"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ErrNotFound is returned when no alarm exists under the requested name.
var ErrNotFound = errors.New("alarm not found")

// Handler is invoked every time an alarm fires.
type Handler func(model.Alarm)

// Service owns the persisted alarms and the cron loop that fires them.
type Service struct {
	db     *gorm.DB
	cron   *cron.Cron
	logger *log.Logger
	now    func() time.Time

	mu       sync.Mutex
	entries  map[string]cron.EntryID
	handlers []Handler
}

// New creates a Service whose cron loop runs in loc.
func New(db *gorm.DB, loc *time.Location, logger *log.Logger) *Service {
	cl := cronLogger{logger}
	return &Service{
		db:      db,
		cron:    cron.New(cron.WithLocation(loc), cron.WithLogger(cl), cron.WithChain(cron.Recover(cl))),
		logger:  logger,
		now:     time.Now,
		entries: make(map[string]cron.EntryID),
	}
}

// OnAlarm registers a handler for fired alarms.
func (s *Service) OnAlarm(h Handler) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.handlers = append(s.handlers, h)
}

// Start restores persisted alarms and starts the cron loop.
func (s *Service) Start(ctx context.Context) error {
	var alarms []model.Alarm
	if err := s.db.WithContext(ctx).Find(&alarms).Error; err != nil {
		return fmt.Errorf("restore alarms: %w", err)
	}
	for _, a := range alarms {
		s.schedule(a)
		s.logger.Info("alarm restored", "name", a.Name, "next", s.next(a))
	}
	s.cron.Start()
	return nil
}

// Stop halts the cron loop and waits for running handlers to finish.
func (s *Service) Stop() {
	<-s.cron.Stop().Done()
}

// Create installs an alarm that first fires at when and then every
// periodInMinutes. An existing alarm with the same name is replaced. If the
// alarm cannot be persisted the previous one stays in place.
func (s *Service) Create(ctx context.Context, name string, when time.Time, periodInMinutes int) error {
	if name == "" {
		return fmt.Errorf("alarm name is required")
	}
	if periodInMinutes < 0 {
		return fmt.Errorf("alarm %s: negative period %d", name, periodInMinutes)
	}

	a := model.Alarm{Name: name, ScheduledTime: when, PeriodInMinutes: periodInMinutes}
	if err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "name"}},
		DoUpdates: clause.AssignmentColumns([]string{"scheduled_time", "period_in_minutes", "updated_at"}),
	}).Create(&a).Error; err != nil {
		return fmt.Errorf("save alarm %s: %w", name, err)
	}

	s.schedule(a)
	return nil
}

// Get returns the named alarm with ScheduledTime set to its next fire instant.
func (s *Service) Get(ctx context.Context, name string) (*model.Alarm, error) {
	var a model.Alarm
	err := s.db.WithContext(ctx).Where("name = ?", name).First(&a).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("read alarm %s: %w", name, err)
	}
	a.ScheduledTime = s.next(a)
	return &a, nil
}

// Clear removes the named alarm. Clearing a missing alarm is not an error.
func (s *Service) Clear(ctx context.Context, name string) error {
	if err := s.db.WithContext(ctx).Where("name = ?", name).Delete(&model.Alarm{}).Error; err != nil {
		return fmt.Errorf("delete alarm %s: %w", name, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if id, ok := s.entries[name]; ok {
		s.cron.Remove(id)
		delete(s.entries, name)
	}
	return nil
}

func (s *Service) schedule(a model.Alarm) {
	sched := periodicSchedule{first: a.ScheduledTime, period: a.Period()}

	s.mu.Lock()
	defer s.mu.Unlock()
	if id, ok := s.entries[a.Name]; ok {
		s.cron.Remove(id)
	}
	s.entries[a.Name] = s.cron.Schedule(sched, cron.FuncJob(func() {
		s.fire(a, sched)
	}))
}

func (s *Service) fire(a model.Alarm, sched periodicSchedule) {
	fired := a
	fired.ScheduledTime = sched.Prev(s.now())

	s.mu.Lock()
	handlers := make([]Handler, len(s.handlers))
	copy(handlers, s.handlers)
	s.mu.Unlock()

	s.logger.Debug("alarm fired", "name", a.Name, "scheduled", fired.ScheduledTime)
	for _, h := range handlers {
		h(fired)
	}

	if a.PeriodInMinutes == 0 {
		if err := s.Clear(context.Background(), a.Name); err != nil {
			s.logger.Error("clear one-shot alarm", "name", a.Name, "err", err)
		}
	}
}

// next returns the upcoming fire instant. Missed boundaries are skipped, not replayed.
func (s *Service) next(a model.Alarm) time.Time {
	return periodicSchedule{first: a.ScheduledTime, period: a.Period()}.Next(s.now())
}

// cronLogger adapts the application logger to cron.Logger.
type cronLogger struct {
	l *log.Logger
}

func (c cronLogger) Info(msg string, keysAndValues ...interface{}) {
	c.l.Debug("cron: "+msg, keysAndValues...)
}

func (c cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	c.l.Error("cron: "+msg, append(keysAndValues, "err", err)...)
}
