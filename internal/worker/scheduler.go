package worker

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/civicdesk/petition-service/internal/service"
)

// Scheduler runs the periodic background scans: deadline reminders
// every hour, daily summaries once a day, weekly reports once a week.
type Scheduler struct {
	petitions *service.PetitionService
	reports   *service.ReportService
	logger    *zap.Logger

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewScheduler constructs the scheduler.
func NewScheduler(petitions *service.PetitionService, reports *service.ReportService, logger *zap.Logger) *Scheduler {
	return &Scheduler{
		petitions: petitions,
		reports:   reports,
		logger:    logger,
	}
}

// Start launches the background loops. Call Stop to drain them.
func (s *Scheduler) Start() {
	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel

	s.loop(ctx, time.Hour, "deadline reminders", func(ctx context.Context) (int, error) {
		return s.petitions.SendDeadlineReminders(ctx)
	})
	s.loop(ctx, 24*time.Hour, "daily summaries", func(ctx context.Context) (int, error) {
		return s.reports.SendDailySummaries(ctx)
	})
	s.loop(ctx, 7*24*time.Hour, "weekly reports", func(ctx context.Context) (int, error) {
		return s.reports.SendWeeklyReports(ctx)
	})
}

// Stop cancels the loops and waits for them to exit.
func (s *Scheduler) Stop() {
	if s.cancel != nil {
		s.cancel()
	}
	s.wg.Wait()
}

func (s *Scheduler) loop(ctx context.Context, interval time.Duration, name string, run func(context.Context) (int, error)) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				count, err := run(ctx)
				if err != nil {
					s.logger.Warn("scheduled scan failed", zap.String("scan", name), zap.Error(err))
					continue
				}
				s.logger.Info("scheduled scan complete", zap.String("scan", name), zap.Int("dispatched", count))
			}
		}
	}()
}
