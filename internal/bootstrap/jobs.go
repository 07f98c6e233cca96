package bootstrap

import (
	"context"

	"notevault-be/internal/config"
	"notevault-be/internal/pkg/logger"
	"notevault-be/internal/pkg/metrics"
	"notevault-be/internal/scheduler"
	"notevault-be/internal/service"
)

type orphanSweeper interface {
	Sweep(ctx context.Context) (int, error)
}

func newScheduler(cfg config.JobsConfig, reports service.IReportService, sweeper orphanSweeper, m *metrics.Metrics, log logger.ILogger) *scheduler.Scheduler {
	return scheduler.New(log, m,
		scheduler.Job{
			Name: "weekly_report",
			Next: scheduler.Weekly(cfg.WeeklyReportDay, cfg.WeeklyReportHour),
			Run: func(ctx context.Context) error {
				_, err := reports.SendWeeklyToAll(ctx)
				return err
			},
		},
		scheduler.Job{
			Name: "upload_cleanup",
			Next: scheduler.Daily(cfg.UploadCleanupHour),
			Run: func(ctx context.Context) error {
				_, err := sweeper.Sweep(ctx)
				return err
			},
		},
	)
}
