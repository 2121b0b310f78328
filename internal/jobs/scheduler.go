// File: internal/jobs/scheduler.go
package jobs

import (
	"context"
	"fmt"
	"time"

	"flipradar_backend/internal/config"
	"flipradar_backend/internal/digest"
	"flipradar_backend/internal/ingest"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Scheduler owns the two recurring pipeline jobs: the scrape cycle that
// refreshes listings and the digest cycle that notifies users.
type Scheduler struct {
	ingestService ingest.Service
	digestService digest.Service
	logger        *zap.Logger
	cfg           *config.Config
	cronScheduler *cron.Cron
}

// NewScheduler creates a new Scheduler.
func NewScheduler(
	ingestService ingest.Service,
	digestService digest.Service,
	logger *zap.Logger,
	cfg *config.Config,
) *Scheduler {
	scheduler := cron.New(cron.WithLogger(NewCronLogger(logger.Named("cron"))))

	return &Scheduler{
		ingestService: ingestService,
		digestService: digestService,
		logger:        logger.Named("Scheduler"),
		cfg:           cfg,
		cronScheduler: scheduler,
	}
}

// SetupAndStart registers both jobs and starts the scheduler in the
// background. An empty schedule disables that job without failing startup.
func (s *Scheduler) SetupAndStart() error {
	if spec := s.cfg.ScrapeJobSchedule; spec != "" {
		jobID, err := s.cronScheduler.AddFunc(spec, s.runScrapeJob)
		if err != nil {
			s.logger.Error("Failed to schedule scrape job", zap.String("spec", spec), zap.Error(err))
			return err
		}
		s.logger.Info("Scrape job scheduled", zap.String("spec", spec), zap.Any("jobID", jobID))
	} else {
		s.logger.Warn("Scrape job schedule not defined (SCRAPE_JOB_SCHEDULE). Job will not run.")
	}

	if spec := s.cfg.DigestJobSchedule; spec != "" {
		jobID, err := s.cronScheduler.AddFunc(spec, s.runDigestJob)
		if err != nil {
			s.logger.Error("Failed to schedule digest job", zap.String("spec", spec), zap.Error(err))
			return err
		}
		s.logger.Info("Digest job scheduled", zap.String("spec", spec), zap.Any("jobID", jobID))
	} else {
		s.logger.Warn("Digest job schedule not defined (DIGEST_JOB_SCHEDULE). Job will not run.")
	}

	s.cronScheduler.Start()
	return nil
}

func (s *Scheduler) runScrapeJob() {
	s.logger.Info("Starting scrape job run...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	if err := s.ingestService.RunScrapeCycle(ctx); err != nil {
		s.logger.Error("Scrape job run failed", zap.Error(err))
		return
	}
	s.logger.Info("Scrape job run completed")
}

func (s *Scheduler) runDigestJob() {
	s.logger.Info("Starting digest job run...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	if err := s.digestService.RunDigestCycle(ctx); err != nil {
		s.logger.Error("Digest job run failed", zap.Error(err))
		return
	}
	s.logger.Info("Digest job run completed")
}

// Stop gracefully stops the cron scheduler, waiting for in-flight runs.
func (s *Scheduler) Stop() {
	if s.cronScheduler != nil {
		s.logger.Info("Stopping job scheduler...")
		stopCtx := s.cronScheduler.Stop()
		select {
		case <-stopCtx.Done():
			s.logger.Info("Job scheduler stopped gracefully.")
		case <-time.After(10 * time.Second):
			s.logger.Warn("Job scheduler stop timed out.")
		}
	}
}

// --- Cron Logger Adapter ---

// cronLogger adapts zap.Logger to cron.Logger interface.
type cronLogger struct {
	zl *zap.Logger
}

// NewCronLogger creates a new cronLogger.
func NewCronLogger(zl *zap.Logger) cron.Logger {
	return &cronLogger{zl: zl}
}

// Info logs routine messages from cron.
func (cl *cronLogger) Info(msg string, keysAndValues ...interface{}) {
	fields := cl.parseKeysAndValues(keysAndValues...)
	cl.zl.Info(msg, fields...)
}

// Error logs error messages from cron.
func (cl *cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	fields := cl.parseKeysAndValues(keysAndValues...)
	fields = append(fields, zap.Error(err))
	cl.zl.Error(msg, fields...)
}

func (cl *cronLogger) parseKeysAndValues(keysAndValues ...interface{}) []zap.Field {
	var fields []zap.Field
	for i := 0; i < len(keysAndValues); i += 2 {
		if i+1 < len(keysAndValues) {
			fields = append(fields, zap.Any(fmt.Sprintf("%v", keysAndValues[i]), keysAndValues[i+1]))
		} else {
			fields = append(fields, zap.Any(fmt.Sprintf("%v", keysAndValues[i]), "MISSING_VALUE"))
		}
	}
	return fields
}
