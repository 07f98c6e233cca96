package service

import (
	"context"

	"notevault-be/internal/dto"
	"notevault-be/internal/pkg/logger"
	"notevault-be/internal/pkg/metrics"
	"notevault-be/internal/pkg/storage"
)

// FileJanitor removes stored files on a best-effort basis. Failures are
// logged and counted, never returned.
type FileJanitor struct {
	storage storage.FileStorage
	metrics *metrics.Metrics
	logger  logger.ILogger
}

func NewFileJanitor(fileStorage storage.FileStorage, m *metrics.Metrics, log logger.ILogger) FileJanitor {
	return FileJanitor{storage: fileStorage, metrics: m, logger: log}
}

func (j FileJanitor) remove(ctx context.Context, reason string, paths ...string) {
	if j.storage == nil {
		return
	}
	for _, path := range paths {
		if err := j.storage.Delete(ctx, path); err != nil {
			if j.metrics != nil {
				j.metrics.FileCleanupFailures.WithLabelValues(reason).Inc()
			}
			j.logger.Warn("FileCleanup", "Failed to remove stored file", map[string]interface{}{
				"path":   path,
				"reason": reason,
				"error":  err.Error(),
			})
		}
	}
}

func (j FileJanitor) discard(ctx context.Context, files []dto.UploadedFile) {
	paths := make([]string, 0, len(files))
	for _, f := range files {
		paths = append(paths, f.Path)
	}
	j.remove(ctx, "rollback", paths...)
}
