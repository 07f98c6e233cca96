package service

import (
	"context"
	"time"

	"notevault-be/internal/pkg/logger"
	"notevault-be/internal/pkg/storage"
	"notevault-be/internal/repository/unitofwork"
)

const sweepBatchSize = 500

// UploadSweeper removes stored files that no attachment row references,
// such as uploads left behind by a crash between save and commit.
type UploadSweeper struct {
	uowFactory unitofwork.RepositoryFactory
	inventory  storage.Inventory
	janitor    FileJanitor
	maxAge     time.Duration
	logger     logger.ILogger
	now        func() time.Time
}

func NewUploadSweeper(uowFactory unitofwork.RepositoryFactory, inventory storage.Inventory, janitor FileJanitor, maxAge time.Duration, log logger.ILogger) *UploadSweeper {
	return &UploadSweeper{
		uowFactory: uowFactory,
		inventory:  inventory,
		janitor:    janitor,
		maxAge:     maxAge,
		logger:     log,
		now:        time.Now,
	}
}

// Sweep only considers files older than maxAge so uploads of requests still
// in flight are left alone. It returns the number of orphans it tried to remove.
func (s *UploadSweeper) Sweep(ctx context.Context) (int, error) {
	names, err := s.inventory.ListOlderThan(ctx, s.now().Add(-s.maxAge))
	if err != nil {
		return 0, err
	}

	repo := s.uowFactory.NewUnitOfWork(ctx).AttachmentRepository()
	removed := 0
	for start := 0; start < len(names); start += sweepBatchSize {
		end := min(start+sweepBatchSize, len(names))
		batch := names[start:end]

		known, err := repo.KnownStoredNames(ctx, batch)
		if err != nil {
			return removed, storageError(err)
		}
		for _, name := range batch {
			if _, ok := known[name]; ok {
				continue
			}
			path, err := s.inventory.Resolve(name)
			if err != nil {
				continue
			}
			s.janitor.remove(ctx, "orphan", path)
			removed++
		}
	}

	s.logger.Info("UploadSweeper", "Orphaned uploads swept", map[string]interface{}{
		"scanned": len(names),
		"removed": removed,
	})
	return removed, nil
}
