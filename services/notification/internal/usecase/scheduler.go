package usecase

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"task-notify/pkg/logger"
	"task-notify/services/notification/internal/entity"
	"task-notify/services/notification/internal/repo/persistent"

	"github.com/robfig/cron/v3"
)

const sweepLockTTL = 30 * time.Minute

// ReminderScheduler runs the daily reminder sweep. At most one sweep runs
// per process at a time; the SweepLock extends that across processes.
type ReminderScheduler struct {
	taskRepo persistent.TaskRepository
	policy   ReminderPolicy
	calendar *ReminderCalendar
	lock     SweepLock
	archiver SweepArchiver
	logger   *logger.Logger

	cron    *cron.Cron
	running atomic.Bool
	now     func() time.Time
}

// NewReminderScheduler builds a scheduler. lock and archiver may be nil.
func NewReminderScheduler(
	taskRepo persistent.TaskRepository,
	policy ReminderPolicy,
	calendar *ReminderCalendar,
	lock SweepLock,
	archiver SweepArchiver,
	logger *logger.Logger,
) *ReminderScheduler {
	if lock == nil {
		lock = NewLocalSweepLock()
	}
	return &ReminderScheduler{
		taskRepo: taskRepo,
		policy:   policy,
		calendar: calendar,
		lock:     lock,
		archiver: archiver,
		logger:   logger,
		cron:     cron.New(cron.WithLocation(calendar.Location())),
		now:      time.Now,
	}
}

// Start registers the daily sweep under a standard five-field cron spec and
// starts the cron runner.
func (s *ReminderScheduler) Start(spec string) error {
	_, err := s.cron.AddFunc(spec, func() {
		if _, err := s.RunSweep(context.Background()); err != nil {
			s.logger.Error("[SCHEDULER] Scheduled sweep failed: %v", err)
		}
	})
	if err != nil {
		return fmt.Errorf("invalid sweep schedule %q: %w", spec, err)
	}
	s.cron.Start()
	s.logger.Info("[SCHEDULER] Daily sweep scheduled at %q (%s)", spec, s.calendar.Location())
	return nil
}

// Stop stops the cron runner and waits for a running sweep to finish or
// ctx to expire.
func (s *ReminderScheduler) Stop(ctx context.Context) {
	done := s.cron.Stop()
	select {
	case <-done.Done():
	case <-ctx.Done():
		s.logger.Warn("[SCHEDULER] Shutdown timed out while a sweep was running")
	}
}

func (s *ReminderScheduler) Running() bool {
	return s.running.Load()
}

// RunSweep scans every threshold window once. It returns
// entity.ErrSweepInProgress if a sweep is already running here or holds the
// shared lock elsewhere.
func (s *ReminderScheduler) RunSweep(ctx context.Context) (*entity.SweepReport, error) {
	if !s.running.CompareAndSwap(false, true) {
		return nil, entity.ErrSweepInProgress
	}
	defer s.running.Store(false)

	started := s.now()
	report := &entity.SweepReport{
		Date:      s.calendar.Today(started),
		StartedAt: started.UTC(),
	}

	release, ok, err := s.lock.Acquire(ctx, "reminder:sweep:"+report.Date, sweepLockTTL)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, entity.ErrSweepInProgress
	}
	defer release()

	s.logger.Info("[SCHEDULER] Sweep started for %s", report.Date)
	for _, threshold := range s.calendar.Thresholds() {
		tr := s.sweepThreshold(ctx, started, threshold)
		report.Thresholds = append(report.Thresholds, tr)
		report.Tasks += tr.Tasks
		report.Created += tr.Created
		report.Failed += tr.Failed
	}
	report.FinishedAt = s.now().UTC()

	s.logger.Info("[SCHEDULER] Sweep finished for %s: tasks=%d created=%d failed=%d duration=%s",
		report.Date, report.Tasks, report.Created, report.Failed, report.FinishedAt.Sub(report.StartedAt))

	if s.archiver != nil {
		if location, err := s.archiver.Archive(ctx, report); err != nil {
			s.logger.Warn("[SCHEDULER] Failed to archive sweep report: %v", err)
		} else {
			s.logger.Info("[SCHEDULER] Sweep report archived to %s", location)
		}
	}
	return report, nil
}

func (s *ReminderScheduler) sweepThreshold(ctx context.Context, now time.Time, threshold int) entity.ThresholdReport {
	from, to := s.calendar.DueWindow(now, threshold)
	tr := entity.ThresholdReport{Threshold: threshold, From: from, To: to}

	tasks, err := s.taskRepo.ListTasksDueBetween(ctx, from, to)
	if err != nil {
		s.logger.Error("[SCHEDULER] Failed to list tasks for threshold %d: %v", threshold, err)
		tr.Failed++
		return tr
	}

	tr.Tasks = len(tasks)
	for i := range tasks {
		if ctx.Err() != nil {
			s.logger.Warn("[SCHEDULER] Sweep cancelled during threshold %d", threshold)
			break
		}
		created, err := s.sweepTask(ctx, &tasks[i], threshold)
		tr.Created += created
		if err != nil {
			s.logger.Error("[SCHEDULER] Task %s failed at threshold %d: %v", tasks[i].ID, threshold, err)
			tr.Failed++
		}
	}
	return tr
}

// sweepTask isolates one task so that neither an error nor a panic stops
// the sweep.
func (s *ReminderScheduler) sweepTask(ctx context.Context, task *entity.Task, threshold int) (created int, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return s.policy.RemindForThreshold(ctx, task, threshold, "")
}
