package implementation

import (
	"context"
	"time"

	"notevault-be/internal/entity"
	"notevault-be/internal/repository/contract"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ReportRepositoryImpl struct {
	db *gorm.DB
}

func NewReportRepository(db *gorm.DB) contract.ReportRepository {
	return &ReportRepositoryImpl{db: db}
}

const summarySQL = `SELECT
	(SELECT COUNT(*) FROM notes WHERE user_id = @user AND created_at >= @from AND created_at <= @to) AS notes_created,
	(SELECT COUNT(*) FROM notes WHERE user_id = @user AND deleted_at IS NULL) AS active_notes,
	(SELECT COUNT(*) FROM notes WHERE user_id = @user AND deleted_at IS NOT NULL) AS notes_in_trash,
	(SELECT COUNT(*) FROM categories WHERE user_id = @user AND deleted_at IS NULL) AS total_categories,
	(SELECT COUNT(*) FROM tags WHERE user_id = @user) AS total_tags,
	(SELECT COUNT(*) FROM attachments a JOIN notes n ON n.id = a.note_id WHERE n.user_id = @user) AS total_attachments,
	(SELECT COUNT(DISTINCT s.shared_with) FROM shared_notes s JOIN notes n ON n.id = s.note_id WHERE n.user_id = @user) AS users_shared_with`

func (r *ReportRepositoryImpl) Summary(ctx context.Context, userId uuid.UUID, from, to time.Time) (*entity.SummaryStatistics, error) {
	var stats entity.SummaryStatistics
	err := r.db.WithContext(ctx).
		Raw(summarySQL, map[string]interface{}{"user": userId, "from": from, "to": to}).
		Scan(&stats).Error
	if err != nil {
		return nil, err
	}
	return &stats, nil
}

func (r *ReportRepositoryImpl) TopCategories(ctx context.Context, userId uuid.UUID, limit int) ([]entity.NamedCount, error) {
	var rows []entity.NamedCount
	err := r.db.WithContext(ctx).
		Table("categories").
		Select("categories.name, categories.color, COUNT(notes.id) AS count").
		Joins("LEFT JOIN notes ON notes.category_id = categories.id AND notes.deleted_at IS NULL").
		Where("categories.user_id = ? AND categories.deleted_at IS NULL", userId).
		Group("categories.id").
		Order("count DESC, categories.name ASC").
		Limit(limit).
		Scan(&rows).Error
	return rows, err
}

func (r *ReportRepositoryImpl) TopTags(ctx context.Context, userId uuid.UUID, limit int) ([]entity.NamedCount, error) {
	var rows []entity.NamedCount
	err := r.db.WithContext(ctx).
		Table("tags").
		Select("tags.name, COUNT(note_tags.note_id) AS count").
		Joins("LEFT JOIN note_tags ON note_tags.tag_id = tags.id").
		Where("tags.user_id = ?", userId).
		Group("tags.id").
		Order("count DESC, tags.name ASC").
		Limit(limit).
		Scan(&rows).Error
	return rows, err
}

const monthlySQL = `SELECT
	COUNT(*) AS notes_created,
	COALESCE(AVG(LENGTH(content)), 0) AS avg_note_length,
	COALESCE(SUM(CASE WHEN is_pinned THEN 1 ELSE 0 END), 0) AS pinned_notes,
	(SELECT COUNT(*) FROM audit_logs WHERE user_id = @user AND created_at >= @since) AS total_actions
FROM notes
WHERE user_id = @user AND created_at >= @since AND deleted_at IS NULL`

func (r *ReportRepositoryImpl) Monthly(ctx context.Context, userId uuid.UUID, since time.Time) (*entity.MonthlyStatistics, error) {
	var stats entity.MonthlyStatistics
	err := r.db.WithContext(ctx).
		Raw(monthlySQL, map[string]interface{}{"user": userId, "since": since}).
		Scan(&stats).Error
	if err != nil {
		return nil, err
	}
	return &stats, nil
}

func (r *ReportRepositoryImpl) DailyTrend(ctx context.Context, userId uuid.UUID, since time.Time) ([]entity.DailyCount, error) {
	var rows []entity.DailyCount
	err := r.db.WithContext(ctx).
		Table("notes").
		Select("TO_CHAR(created_at, 'YYYY-MM-DD') AS date, COUNT(*) AS count").
		Where("user_id = ? AND created_at >= ? AND deleted_at IS NULL", userId, since).
		Group("date").
		Order("date ASC").
		Scan(&rows).Error
	return rows, err
}
