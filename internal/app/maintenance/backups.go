package maintenance

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/carehub/storefront/internal/models"
	"github.com/carehub/storefront/internal/services"
	"github.com/carehub/storefront/pkg/logger"
)

// BackupService is the subset of the settings service the scheduler drives.
type BackupService interface {
	GetBackupSchedule(ctx context.Context) (services.BackupSchedule, error)
	CreateBackup(ctx context.Context, input services.CreateBackupInput, trigger string) (*models.Backup, error)
	PruneBackups(ctx context.Context, keep int) (int64, error)
	RecordBackupRun(ctx context.Context, at time.Time) error
}

// Option customises the BackupScheduler.
type Option func(*BackupScheduler)

// WithCron injects a preconfigured cron instance, primarily for testing.
func WithCron(c *cron.Cron) Option {
	return func(s *BackupScheduler) {
		if c != nil {
			s.cron = c
		}
	}
}

// WithNow overrides the clock recorded as the run time.
func WithNow(now func() time.Time) Option {
	return func(s *BackupScheduler) {
		if now != nil {
			s.now = now
		}
	}
}

// WithRunTimeout bounds a single backup run.
func WithRunTimeout(d time.Duration) Option {
	return func(s *BackupScheduler) {
		if d > 0 {
			s.timeout = d
		}
	}
}

// RunStatus describes the most recent scheduled run.
type RunStatus struct {
	LastRunAt           time.Time `json:"last_run_at"`
	LastError           string    `json:"last_error,omitempty"`
	TotalRuns           int       `json:"total_runs"`
	ConsecutiveFailures int       `json:"consecutive_failures"`
}

// BackupScheduler takes scheduled settings backups and prunes old ones
// according to the stored backup schedule.
type BackupScheduler struct {
	backups BackupService
	cron    *cron.Cron
	now     func() time.Time
	timeout time.Duration
	log     *zap.Logger

	mu      sync.Mutex
	entry   cron.EntryID
	spec    string
	started bool
	status  RunStatus
}

// NewBackupScheduler constructs a scheduler.
func NewBackupScheduler(backups BackupService, opts ...Option) *BackupScheduler {
	s := &BackupScheduler{
		backups: backups,
		now:     time.Now,
		timeout: 5 * time.Minute,
		log:     logger.WithModule("maintenance"),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.cron == nil {
		s.cron = cron.New(cron.WithLogger(cron.DiscardLogger))
	}
	return s
}

// Start loads the stored schedule, registers the job and launches cron.
func (s *BackupScheduler) Start(ctx context.Context) error {
	if s.backups == nil {
		return errors.New("maintenance: backup service is required")
	}

	schedule, err := s.backups.GetBackupSchedule(ctx)
	if err != nil {
		return err
	}
	if err := s.Reschedule(schedule); err != nil {
		return err
	}

	s.mu.Lock()
	s.started = true
	s.mu.Unlock()

	s.cron.Start()
	return nil
}

// Reschedule replaces the registered job. A disabled schedule removes it.
func (s *BackupScheduler) Reschedule(schedule services.BackupSchedule) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.entry != 0 {
		s.cron.Remove(s.entry)
		s.entry = 0
		s.spec = ""
	}
	if !schedule.Enabled {
		s.log.Info("scheduled backups disabled")
		return nil
	}

	id, err := s.cron.AddFunc(schedule.Spec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
		defer cancel()
		if err := s.RunOnce(ctx); err != nil {
			s.log.Warn("scheduled backup failed", zap.Error(err))
		}
	})
	if err != nil {
		return err
	}
	s.entry = id
	s.spec = schedule.Spec
	s.log.Info("scheduled backups enabled", zap.String("spec", schedule.Spec))
	return nil
}

// Stop halts the underlying scheduler, waiting for any running job to complete.
func (s *BackupScheduler) Stop() context.Context {
	s.mu.Lock()
	started := s.started
	s.started = false
	s.mu.Unlock()

	if !started {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		return ctx
	}
	return s.cron.Stop()
}

// RunOnce takes a scheduled backup, prunes beyond the retention count and
// records the run. Every step is attempted; failures are combined.
func (s *BackupScheduler) RunOnce(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}

	schedule, err := s.backups.GetBackupSchedule(ctx)
	if err != nil {
		s.recordRun(err)
		return err
	}

	var errs error
	if _, err := s.backups.CreateBackup(ctx, services.CreateBackupInput{}, models.BackupTriggerScheduled); err != nil {
		errs = multierr.Append(errs, err)
	}
	if _, err := s.backups.PruneBackups(ctx, schedule.Retention); err != nil {
		errs = multierr.Append(errs, err)
	}
	if err := s.backups.RecordBackupRun(ctx, s.now()); err != nil {
		errs = multierr.Append(errs, err)
	}

	s.recordRun(errs)
	return errs
}

// Spec returns the registered cron spec, empty when disabled.
func (s *BackupScheduler) Spec() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.spec
}

// Status reports the outcome of the latest run.
func (s *BackupScheduler) Status() RunStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

func (s *BackupScheduler) recordRun(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.status.LastRunAt = s.now()
	s.status.TotalRuns++
	if err != nil {
		s.status.LastError = err.Error()
		s.status.ConsecutiveFailures++
		return
	}
	s.status.LastError = ""
	s.status.ConsecutiveFailures = 0
}
