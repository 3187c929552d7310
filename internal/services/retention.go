package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
	"golang.org/x/sync/errgroup"
)

// SweepReport counts what one sweep removed.
type SweepReport struct {
	Files     int
	Links     int64
	Chunks    int
	AuditLogs int64
}

// RetentionSweeper periodically deletes expired files, expired links,
// abandoned chunked uploads and old audit records. A failed run is logged and
// the schedule goes on.
type RetentionSweeper struct {
	storage  *StorageService
	links    *LinkService
	audit    *AuditService
	interval time.Duration
	logger   *slog.Logger
	cron     *cron.Cron
}

// NewRetentionSweeper builds a sweeper. A nil audit service skips the audit phase.
func NewRetentionSweeper(storage *StorageService, links *LinkService, audit *AuditService, interval time.Duration, logger *slog.Logger) *RetentionSweeper {
	logger = logger.With("component", "retention")
	cl := cron.PrintfLogger(slog.NewLogLogger(logger.Handler(), slog.LevelDebug))
	return &RetentionSweeper{
		storage:  storage,
		links:    links,
		audit:    audit,
		interval: interval,
		logger:   logger,
		cron: cron.New(cron.WithLogger(cl), cron.WithChain(
			cron.Recover(cl),
			cron.SkipIfStillRunning(cl),
		)),
	}
}

// RunOnce performs a single sweep. The phases run concurrently on a context
// that no phase can cancel, so a failure in one does not stop the others.
func (s *RetentionSweeper) RunOnce(ctx context.Context) (SweepReport, error) {
	ctx = context.WithoutCancel(ctx)
	var (
		rep SweepReport
		g   errgroup.Group
	)
	g.Go(func() error {
		n, err := s.storage.CleanupExpiredFiles(ctx)
		rep.Files = n
		if err != nil {
			return fmt.Errorf("expired files: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		n, err := s.links.CleanupExpiredLinks(ctx)
		rep.Links = n
		if err != nil {
			return fmt.Errorf("expired links: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		n, err := s.storage.CleanupAbandonedChunks(ctx)
		rep.Chunks = n
		if err != nil {
			return fmt.Errorf("abandoned chunks: %w", err)
		}
		return nil
	})
	if s.audit != nil {
		g.Go(func() error {
			n, err := s.audit.CleanupOldLogs(ctx)
			rep.AuditLogs = n
			if err != nil {
				return fmt.Errorf("old audit logs: %w", err)
			}
			return nil
		})
	}
	err := g.Wait()
	if err != nil {
		s.logger.Error("retention sweep failed", "error", err)
	}
	if rep != (SweepReport{}) {
		s.logger.Info("retention sweep",
			"files", rep.Files,
			"links", rep.Links,
			"chunks", rep.Chunks,
			"audit_logs", rep.AuditLogs,
		)
	}
	return rep, err
}

// Start schedules RunOnce every interval, beginning with an immediate run.
func (s *RetentionSweeper) Start(ctx context.Context) error {
	if s.interval <= 0 {
		return fmt.Errorf("retention interval must be positive, got %s", s.interval)
	}
	if _, err := s.cron.AddFunc(fmt.Sprintf("@every %s", s.interval), func() {
		_, _ = s.RunOnce(ctx)
	}); err != nil {
		return fmt.Errorf("schedule retention sweep: %w", err)
	}
	_, _ = s.RunOnce(ctx)
	s.cron.Start()
	return nil
}

// Stop halts the schedule and waits for a running sweep to finish.
func (s *RetentionSweeper) Stop() {
	<-s.cron.Stop().Done()
}

// Run starts the schedule and blocks until ctx is done.
func (s *RetentionSweeper) Run(ctx context.Context) error {
	if err := s.Start(ctx); err != nil {
		return err
	}
	<-ctx.Done()
	s.Stop()
	return nil
}
