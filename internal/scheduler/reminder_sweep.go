package scheduler

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/bookclubhq/clubhouse/internal/config"
	"github.com/bookclubhq/clubhouse/internal/reminders"
)

// Auditor records the outcome of scheduled sweeps.
type Auditor interface {
	LogSweep(description string, err error)
}

// ReminderSweepScheduler runs the due-date sweep on a cron schedule.
type ReminderSweepScheduler struct {
	sweeper *reminders.Sweeper
	auditor Auditor
	cfg     config.Reminders

	cron       *cron.Cron
	entryID    cron.EntryID
	mu         sync.RWMutex
	isRunning  bool
	cancelFunc context.CancelFunc
}

// NewReminderSweepScheduler creates a new scheduler instance
func NewReminderSweepScheduler(sweeper *reminders.Sweeper, auditor Auditor, cfg config.Reminders) *ReminderSweepScheduler {
	return &ReminderSweepScheduler{
		sweeper: sweeper,
		auditor: auditor,
		cfg:     cfg,
		cron:    cron.New(cron.WithParser(cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow))),
	}
}

// Start begins the scheduler if reminders are enabled
func (s *ReminderSweepScheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return nil
	}

	if !s.cfg.Enabled {
		log.Printf("Reminder sweep scheduler: disabled")
		return nil
	}

	entryID, err := s.cron.AddFunc(s.cfg.Schedule, func() {
		s.runSweep()
	})
	if err != nil {
		return fmt.Errorf("invalid cron schedule '%s': %w", s.cfg.Schedule, err)
	}
	s.entryID = entryID

	var cancelCtx context.Context
	cancelCtx, s.cancelFunc = context.WithCancel(ctx)

	s.cron.Start()
	s.isRunning = true

	log.Printf("Reminder sweep scheduler: started with schedule '%s'. Next run: %v",
		s.cfg.Schedule, s.nextRunLocked())

	go func() {
		<-cancelCtx.Done()
		s.Stop()
	}()

	return nil
}

// Stop gracefully stops the scheduler
func (s *ReminderSweepScheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.isRunning {
		return
	}

	// Stop accepting new jobs and wait for running jobs to complete
	ctx := s.cron.Stop()
	<-ctx.Done()

	s.isRunning = false
	s.cancelFunc = nil

	log.Printf("Reminder sweep scheduler: stopped")
}

// RunNow triggers an immediate sweep outside the schedule
func (s *ReminderSweepScheduler) RunNow() {
	go s.runSweep()
}

// IsRunning returns whether the scheduler is active
func (s *ReminderSweepScheduler) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

// GetNextRunTime returns when the next sweep will occur
func (s *ReminderSweepScheduler) GetNextRunTime() *time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.isRunning {
		return nil
	}
	return s.nextRunLocked()
}

func (s *ReminderSweepScheduler) nextRunLocked() *time.Time {
	for _, entry := range s.cron.Entries() {
		if entry.ID == s.entryID {
			t := entry.Next
			return &t
		}
	}
	return nil
}

func (s *ReminderSweepScheduler) runSweep() {
	log.Printf("Reminder sweep: starting")
	startTime := time.Now()

	result, err := s.sweeper.Run()
	if err != nil {
		errMsg := fmt.Sprintf("Sweep failed: %v", err)
		log.Printf("Reminder sweep: %s", errMsg)
		s.logAudit(errMsg, err)
		return
	}

	duration := time.Since(startTime)
	successMsg := fmt.Sprintf("Scanned %d borrowed books: %d due soon, %d due today, %d overdue, %d skipped in %v",
		result.Scanned, result.DueSoon, result.DueToday, result.Overdue, result.Skipped,
		duration.Round(time.Millisecond))
	log.Printf("Reminder sweep: %s", successMsg)
	s.logAudit(successMsg, nil)
}

func (s *ReminderSweepScheduler) logAudit(description string, err error) {
	if s.auditor == nil {
		return
	}
	s.auditor.LogSweep(description, err)
}
