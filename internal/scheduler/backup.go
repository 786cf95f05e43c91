package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"github.com/mrlokans/kotoba/internal/exporters"
)

// Backuper writes one deck snapshot.
type Backuper interface {
	Export(ctx context.Context) (exporters.BackupResult, error)
}

// BackupStatus describes the most recent backup run.
type BackupStatus struct {
	Running  bool                    `json:"running"`
	Schedule string                  `json:"schedule"`
	NextRun  *time.Time              `json:"next_run,omitempty"`
	LastRun  *time.Time              `json:"last_run,omitempty"`
	LastErr  string                  `json:"last_error,omitempty"`
	Last     *exporters.BackupResult `json:"last_result,omitempty"`
}

// BackupScheduler manages periodic deck exports
type BackupScheduler struct {
	backuper Backuper
	schedule string
	timeout  time.Duration

	cron       *cron.Cron
	entryID    cron.EntryID
	mu         sync.RWMutex
	isRunning  bool
	cancelFunc context.CancelFunc

	runMu      sync.Mutex
	lastRun    *time.Time
	lastErr    error
	lastResult *exporters.BackupResult
}

// NewBackupScheduler creates a new scheduler instance
func NewBackupScheduler(backuper Backuper, schedule string) *BackupScheduler {
	return &BackupScheduler{
		backuper: backuper,
		schedule: schedule,
		timeout:  time.Minute,
		cron:     cron.New(cron.WithParser(cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow))),
	}
}

// ValidateCronSchedule checks a standard five-field cron expression.
func ValidateCronSchedule(schedule string) error {
	_, err := cron.ParseStandard(schedule)
	return err
}

// Start begins the scheduler. It stops on its own when ctx is cancelled.
func (s *BackupScheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return nil
	}

	if err := ValidateCronSchedule(s.schedule); err != nil {
		return fmt.Errorf("invalid cron schedule '%s': %w", s.schedule, err)
	}

	entryID, err := s.cron.AddFunc(s.schedule, func() {
		_, _ = s.RunNow(context.Background())
	})
	if err != nil {
		return fmt.Errorf("failed to schedule backup job: %w", err)
	}
	s.entryID = entryID

	var cancelCtx context.Context
	cancelCtx, s.cancelFunc = context.WithCancel(ctx)

	s.cron.Start()
	s.isRunning = true

	logrus.WithFields(logrus.Fields{
		"schedule": s.schedule,
		"next_run": s.cron.Entry(entryID).Next,
	}).Info("Backup scheduler started")

	go func() {
		<-cancelCtx.Done()
		s.Stop()
	}()

	return nil
}

// Stop gracefully stops the scheduler
func (s *BackupScheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.isRunning {
		return
	}

	ctx := s.cron.Stop()
	<-ctx.Done()

	s.cron.Remove(s.entryID)
	if s.cancelFunc != nil {
		s.cancelFunc()
	}
	s.isRunning = false
	s.cancelFunc = nil

	logrus.Info("Backup scheduler stopped")
}

// RunNow performs a backup immediately and records the outcome.
func (s *BackupScheduler) RunNow(ctx context.Context) (exporters.BackupResult, error) {
	s.runMu.Lock()
	defer s.runMu.Unlock()

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	started := time.Now()
	result, err := s.backuper.Export(ctx)
	s.lastRun = &started
	s.lastErr = err
	if err != nil {
		logrus.WithError(err).Error("Deck backup failed")
		return result, err
	}
	s.lastResult = &result
	return result, nil
}

// IsRunning returns whether the scheduler is active
func (s *BackupScheduler) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

// GetNextRunTime returns when the next backup will occur
func (s *BackupScheduler) GetNextRunTime() *time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.isRunning {
		return nil
	}
	next := s.cron.Entry(s.entryID).Next
	if next.IsZero() {
		return nil
	}
	return &next
}

func (s *BackupScheduler) Status() BackupStatus {
	status := BackupStatus{
		Running:  s.IsRunning(),
		Schedule: s.schedule,
		NextRun:  s.GetNextRunTime(),
	}

	s.runMu.Lock()
	defer s.runMu.Unlock()
	status.LastRun = s.lastRun
	status.Last = s.lastResult
	if s.lastErr != nil {
		status.LastErr = s.lastErr.Error()
	}
	return status
}
