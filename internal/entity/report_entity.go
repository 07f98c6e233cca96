package entity

type SummaryStatistics struct {
	NotesCreated     int64
	ActiveNotes      int64
	NotesInTrash     int64
	TotalCategories  int64
	TotalTags        int64
	TotalAttachments int64
	UsersSharedWith  int64
}

type NamedCount struct {
	Name  string
	Color string
	Count int64
}

type MonthlyStatistics struct {
	NotesCreated  int64
	AvgNoteLength float64
	PinnedNotes   int64
	TotalActions  int64
}

type DailyCount struct {
	Date  string
	Count int64
}
