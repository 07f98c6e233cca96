package service

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"notevault-be/internal/dto"
	"notevault-be/internal/entity"
	"notevault-be/internal/pkg/apperror"
	"notevault-be/internal/pkg/logger"
	"notevault-be/internal/pkg/mailer"
	"notevault-be/internal/repository/specification"
	"notevault-be/internal/repository/unitofwork"

	"github.com/google/uuid"
)

const (
	reportTopN    = 5
	weekPeriod    = 7 * 24 * time.Hour
	monthPeriod   = 30 * 24 * time.Hour
	reportDateFmt = "2006-01-02"
)

var auditCSVHeader = []string{"Log ID", "User", "Email", "Action", "Entity Type", "Entity ID", "IP Address", "User Agent", "New Values", "Timestamp"}

type IReportService interface {
	Weekly(ctx context.Context, userId uuid.UUID) (*dto.WeeklyReportResponse, error)
	Monthly(ctx context.Context, userId uuid.UUID) (*dto.MonthlyReportResponse, error)
	SendWeekly(ctx context.Context, userId uuid.UUID) error
	SendWeeklyToAll(ctx context.Context) (int, error)
	AuditCSV(ctx context.Context, startDate, endDate string, w io.Writer) error
}

type reportService struct {
	uowFactory unitofwork.RepositoryFactory
	mailer     mailer.IEmailService
	logger     logger.ILogger
	now        func() time.Time
}

func NewReportService(uowFactory unitofwork.RepositoryFactory, mail mailer.IEmailService, log logger.ILogger) IReportService {
	return &reportService{
		uowFactory: uowFactory,
		mailer:     mail,
		logger:     log,
		now:        time.Now,
	}
}

func (s *reportService) reportUser(ctx context.Context, uow unitofwork.UnitOfWork, userId uuid.UUID) (*entity.User, error) {
	user, err := uow.UserRepository().FindOne(ctx, specification.ByID{ID: userId})
	if err != nil {
		return nil, storageError(err)
	}
	if user == nil {
		return nil, apperror.NotFound("User not found")
	}
	return user, nil
}

func (s *reportService) Weekly(ctx context.Context, userId uuid.UUID) (*dto.WeeklyReportResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	user, err := s.reportUser(ctx, uow, userId)
	if err != nil {
		return nil, err
	}

	to := s.now()
	from := to.Add(-weekPeriod)

	stats, err := uow.ReportRepository().Summary(ctx, userId, from, to)
	if err != nil {
		return nil, storageError(err)
	}
	topCategories, topTags, err := s.topLists(ctx, uow, userId)
	if err != nil {
		return nil, err
	}

	return &dto.WeeklyReportResponse{
		User:   toReportUser(user),
		Period: dto.ReportPeriod{From: from, To: to},
		Statistics: dto.SummaryStatistics{
			NotesCreated:     stats.NotesCreated,
			ActiveNotes:      stats.ActiveNotes,
			NotesInTrash:     stats.NotesInTrash,
			TotalCategories:  stats.TotalCategories,
			TotalTags:        stats.TotalTags,
			TotalAttachments: stats.TotalAttachments,
			UsersSharedWith:  stats.UsersSharedWith,
		},
		TopCategories: topCategories,
		TopTags:       topTags,
	}, nil
}

func (s *reportService) Monthly(ctx context.Context, userId uuid.UUID) (*dto.MonthlyReportResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	user, err := s.reportUser(ctx, uow, userId)
	if err != nil {
		return nil, err
	}

	to := s.now()
	since := to.Add(-monthPeriod)

	stats, err := uow.ReportRepository().Monthly(ctx, userId, since)
	if err != nil {
		return nil, storageError(err)
	}
	trend, err := uow.ReportRepository().DailyTrend(ctx, userId, since)
	if err != nil {
		return nil, storageError(err)
	}
	topCategories, topTags, err := s.topLists(ctx, uow, userId)
	if err != nil {
		return nil, err
	}

	res := &dto.MonthlyReportResponse{
		User:   toReportUser(user),
		Period: dto.ReportPeriod{From: since, To: to},
		Statistics: dto.MonthlyStatistics{
			NotesCreated:  stats.NotesCreated,
			AvgNoteLength: stats.AvgNoteLength,
			PinnedNotes:   stats.PinnedNotes,
			TotalActions:  stats.TotalActions,
		},
		TopCategories: topCategories,
		TopTags:       topTags,
		Trend:         make([]dto.DailyCount, 0, len(trend)),
	}
	for _, d := range trend {
		res.Trend = append(res.Trend, dto.DailyCount{Date: d.Date, Count: d.Count})
	}
	return res, nil
}

func (s *reportService) topLists(ctx context.Context, uow unitofwork.UnitOfWork, userId uuid.UUID) ([]dto.NamedCount, []dto.NamedCount, error) {
	categories, err := uow.ReportRepository().TopCategories(ctx, userId, reportTopN)
	if err != nil {
		return nil, nil, storageError(err)
	}
	tags, err := uow.ReportRepository().TopTags(ctx, userId, reportTopN)
	if err != nil {
		return nil, nil, storageError(err)
	}
	return toNamedCounts(categories), toNamedCounts(tags), nil
}

// SendWeekly mails the weekly summary to the user it describes.
func (s *reportService) SendWeekly(ctx context.Context, userId uuid.UUID) error {
	report, err := s.Weekly(ctx, userId)
	if err != nil {
		return err
	}

	weekly := mailer.WeeklyReport{
		Username:        report.User.Username,
		PeriodFrom:      report.Period.From.Format(reportDateFmt),
		PeriodTo:        report.Period.To.Format(reportDateFmt),
		NotesCreated:    report.Statistics.NotesCreated,
		ActiveNotes:     report.Statistics.ActiveNotes,
		NotesInTrash:    report.Statistics.NotesInTrash,
		TotalCategories: report.Statistics.TotalCategories,
		TotalTags:       report.Statistics.TotalTags,
	}
	for _, c := range report.TopCategories {
		weekly.TopCategories = append(weekly.TopCategories, c.Name)
	}
	for _, t := range report.TopTags {
		weekly.TopTags = append(weekly.TopTags, t.Name)
	}

	if err := s.mailer.SendWeeklyReport(report.User.Email, weekly); err != nil {
		return apperror.Storage(err)
	}
	s.logger.Info("ReportService", "Weekly report sent", map[string]interface{}{"user_id": userId})
	return nil
}

// SendWeeklyToAll mails every user their weekly summary and returns how many
// were sent. A failure for one user is logged and does not stop the rest.
func (s *reportService) SendWeeklyToAll(ctx context.Context) (int, error) {
	users, err := s.uowFactory.NewUnitOfWork(ctx).UserRepository().FindAll(ctx)
	if err != nil {
		return 0, storageError(err)
	}

	sent, failed := 0, 0
	for _, u := range users {
		if err := ctx.Err(); err != nil {
			return sent, err
		}
		if err := s.SendWeekly(ctx, u.Id); err != nil {
			failed++
			s.logger.Warn("ReportService", "Weekly report not sent", map[string]interface{}{
				"user_id": u.Id,
				"error":   err.Error(),
			})
			continue
		}
		sent++
	}

	s.logger.Info("ReportService", "Weekly reports dispatched", map[string]interface{}{
		"sent":   sent,
		"failed": failed,
	})
	if sent == 0 && failed > 0 {
		return 0, fmt.Errorf("weekly report failed for all %d users", failed)
	}
	return sent, nil
}

// AuditCSV writes audit entries between two dates (inclusive, YYYY-MM-DD)
// as CSV, newest first.
func (s *reportService) AuditCSV(ctx context.Context, startDate, endDate string, w io.Writer) error {
	from, err := time.Parse(reportDateFmt, startDate)
	if err != nil {
		return apperror.Validation("Validation failed", apperror.FieldError{Field: "start_date", Message: "start_date must be a date (YYYY-MM-DD)"})
	}
	to, err := time.Parse(reportDateFmt, endDate)
	if err != nil {
		return apperror.Validation("Validation failed", apperror.FieldError{Field: "end_date", Message: "end_date must be a date (YYYY-MM-DD)"})
	}
	if to.Before(from) {
		return apperror.Validation("Validation failed", apperror.FieldError{Field: "end_date", Message: "end_date must not be before start_date"})
	}
	to = to.Add(24*time.Hour - time.Nanosecond)

	uow := s.uowFactory.NewUnitOfWork(ctx)
	logs, err := uow.AuditRepository().FindBetween(ctx, from, to)
	if err != nil {
		return storageError(err)
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(auditCSVHeader); err != nil {
		return err
	}
	for _, l := range logs {
		values := ""
		if len(l.NewValues) > 0 {
			if raw, err := json.Marshal(l.NewValues); err == nil {
				values = string(raw)
			}
		}
		record := []string{
			l.Id.String(),
			l.Username,
			l.Email,
			l.Action,
			l.EntityType,
			l.EntityId,
			l.IpAddress,
			l.UserAgent,
			values,
			l.CreatedAt.UTC().Format(time.RFC3339),
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func toReportUser(u *entity.User) dto.ReportUser {
	return dto.ReportUser{Id: u.Id, Username: u.Username, Email: u.Email}
}

func toNamedCounts(in []entity.NamedCount) []dto.NamedCount {
	out := make([]dto.NamedCount, 0, len(in))
	for _, c := range in {
		out = append(out, dto.NamedCount{Name: c.Name, Color: c.Color, Count: c.Count})
	}
	return out
}
