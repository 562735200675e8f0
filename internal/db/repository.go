package db

import (
	"context"

	"eraport-ingestion/internal/model"
)

// ReferenceReader looks up master data by natural key. Lookups that find
// nothing return an error wrapping errors.ErrNotFound.
type ReferenceReader interface {
	GetStudentByNIS(ctx context.Context, nis string) (*model.Student, error)
	GetStudentByID(ctx context.Context, id int64) (*model.Student, error)
	GetClass(ctx context.Context, id int64) (*model.Class, error)
	// ListCurriculumSubjects returns the subjects linked to a grade level through its curriculum.
	ListCurriculumSubjects(ctx context.Context, tingkatanID int64) ([]model.Subject, error)
	// FindSubjectByName matches case-insensitively on the trimmed name.
	FindSubjectByName(ctx context.Context, name string) (*model.Subject, error)
	GetMasterAcademicYearByName(ctx context.Context, name string) (*model.MasterAcademicYear, error)
	GetActivePeriod(ctx context.Context, masterID int64, semester string) (*model.AcademicPeriod, error)
	GetPeriod(ctx context.Context, id int64) (*model.AcademicPeriod, error)
	// ListClassHistories returns the student's history rows, newest first.
	ListClassHistories(ctx context.Context, siswaID int64) ([]model.ClassHistory, error)
	FindAttendanceIndicator(ctx context.Context, name string) (*model.AttendanceIndicator, error)
	FindAttitudeIndicator(ctx context.Context, jenisSikap, indikator string) (*model.AttitudeIndicator, error)
}

type ReferenceWriter interface {
	CreateSubject(ctx context.Context, subject *model.Subject) error
	LinkCurriculumSubject(ctx context.Context, tingkatanID, mapelID int64) error
	UpdateClassHistoryNote(ctx context.Context, historyID int64, kind model.NoteKind, note string) error
}

// GradeWriter upserts final records on their natural keys.
type GradeWriter interface {
	UpsertExamGrade(ctx context.Context, grade *model.ExamGrade) error
	UpsertMemorizationGrade(ctx context.Context, grade *model.MemorizationGrade) error
	UpsertAttendance(ctx context.Context, record *model.AttendanceRecord) error
	UpsertAttitude(ctx context.Context, record *model.AttitudeRecord) error
}

type DraftStore interface {
	InsertDrafts(ctx context.Context, rows []model.DraftRow) error
	GetDraftsByBatch(ctx context.Context, batchID string) ([]model.DraftRow, error)
	ListDraftBatches(ctx context.Context) ([]model.DraftBatchSummary, error)
}

type Repository interface {
	ReferenceReader
	ReferenceWriter
	GradeWriter
	DraftStore
}

// Store is a Repository that can run a function inside one transaction.
// fn's repository sees and writes through the transaction; a returned error
// rolls everything back.
type Store interface {
	Repository
	WithTx(ctx context.Context, fn func(repo Repository) error) error
}
