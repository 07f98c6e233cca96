package contract

import (
	"context"
	"time"

	"notevault-be/internal/entity"

	"github.com/google/uuid"
)

type ReportRepository interface {
	Summary(ctx context.Context, userId uuid.UUID, from, to time.Time) (*entity.SummaryStatistics, error)
	TopCategories(ctx context.Context, userId uuid.UUID, limit int) ([]entity.NamedCount, error)
	TopTags(ctx context.Context, userId uuid.UUID, limit int) ([]entity.NamedCount, error)
	Monthly(ctx context.Context, userId uuid.UUID, since time.Time) (*entity.MonthlyStatistics, error)
	DailyTrend(ctx context.Context, userId uuid.UUID, since time.Time) ([]entity.DailyCount, error)
}
