package dto

import (
	"time"

	"github.com/google/uuid"
)

type ReportUser struct {
	Id       uuid.UUID `json:"id"`
	Username string    `json:"username"`
	Email    string    `json:"email"`
}

type ReportPeriod struct {
	From time.Time `json:"from"`
	To   time.Time `json:"to"`
}

type SummaryStatistics struct {
	NotesCreated     int64 `json:"notes_created"`
	ActiveNotes      int64 `json:"total_active_notes"`
	NotesInTrash     int64 `json:"notes_in_trash"`
	TotalCategories  int64 `json:"total_categories"`
	TotalTags        int64 `json:"total_tags"`
	TotalAttachments int64 `json:"total_attachments"`
	UsersSharedWith  int64 `json:"users_shared_with"`
}

type NamedCount struct {
	Name  string `json:"name"`
	Color string `json:"color,omitempty"`
	Count int64  `json:"count"`
}

type WeeklyReportResponse struct {
	User          ReportUser        `json:"user"`
	Period        ReportPeriod      `json:"period"`
	Statistics    SummaryStatistics `json:"statistics"`
	TopCategories []NamedCount      `json:"top_categories"`
	TopTags       []NamedCount      `json:"top_tags"`
}

type MonthlyStatistics struct {
	NotesCreated  int64   `json:"notes_created"`
	AvgNoteLength float64 `json:"avg_note_length"`
	PinnedNotes   int64   `json:"pinned_notes"`
	TotalActions  int64   `json:"total_actions"`
}

type DailyCount struct {
	Date  string `json:"date"`
	Count int64  `json:"notes_created"`
}

type MonthlyReportResponse struct {
	User          ReportUser        `json:"user"`
	Period        ReportPeriod      `json:"period"`
	Statistics    MonthlyStatistics `json:"statistics"`
	TopCategories []NamedCount      `json:"top_categories"`
	TopTags       []NamedCount      `json:"top_tags"`
	Trend         []DailyCount      `json:"trend"`
}
