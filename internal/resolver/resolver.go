// Package resolver turns the natural keys found in a workbook (NIS, subject
// name, academic year text, indicator names) into database ids.
//
// A Resolver memoizes every lookup and belongs to exactly one batch. Create a
// new one per request, or per transaction when it must see uncommitted writes.
package resolver

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"eraport-ingestion/internal/db"
	"eraport-ingestion/internal/logger"
	"eraport-ingestion/internal/model"
	pkgerrors "eraport-ingestion/pkg/errors"

	"github.com/rs/zerolog"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Repository is the part of db.Repository the resolver needs.
type Repository interface {
	db.ReferenceReader
	db.ReferenceWriter
}

type periodKey struct {
	masterID int64
	semester string
}

type cache struct {
	students     map[string]*model.Student
	studentsByID map[int64]*model.Student
	classes      map[int64]*model.Class
	curriculum   map[int64][]model.Subject
	subjects     map[string]*model.Subject
	masters      map[string]*model.MasterAcademicYear
	periods      map[periodKey]*model.AcademicPeriod
	histories    map[int64][]model.ClassHistory
	attendance   map[string]*model.AttendanceIndicator
	attitude     map[string]*model.AttitudeIndicator
}

// A nil value stored in a cache map records a confirmed miss.
func newCache() *cache {
	return &cache{
		students:     make(map[string]*model.Student),
		studentsByID: make(map[int64]*model.Student),
		classes:      make(map[int64]*model.Class),
		curriculum:   make(map[int64][]model.Subject),
		subjects:     make(map[string]*model.Subject),
		masters:      make(map[string]*model.MasterAcademicYear),
		periods:      make(map[periodKey]*model.AcademicPeriod),
		histories:    make(map[int64][]model.ClassHistory),
		attendance:   make(map[string]*model.AttendanceIndicator),
		attitude:     make(map[string]*model.AttitudeIndicator),
	}
}

type Resolver struct {
	repo  Repository
	cache *cache
	log   zerolog.Logger
}

func New(repo Repository) *Resolver {
	return &Resolver{
		repo:  repo,
		cache: newCache(),
		log:   logger.For("resolver"),
	}
}

// normalize is the comparison key for names typed by hand: trimmed,
// inner whitespace collapsed, lower case.
func normalize(name string) string {
	return strings.ToLower(strings.Join(strings.Fields(name), " "))
}

var titleCaser = cases.Title(language.Indonesian)

// DisplayName is the name given to a subject created from sheet text.
func DisplayName(name string) string {
	return titleCaser.String(strings.Join(strings.Fields(name), " "))
}

// lookup separates a confirmed miss from a real failure.
func lookup[T any](v *T, err error) (*T, bool, error) {
	if err != nil {
		if errors.Is(err, pkgerrors.ErrNotFound) {
			return nil, true, nil
		}
		return nil, false, err
	}
	return v, true, nil
}

func (r *Resolver) Student(ctx context.Context, nis string) (*model.Student, error) {
	key := strings.TrimSpace(nis)
	s, cached := r.cache.students[key]
	if !cached {
		var ok bool
		var err error
		s, ok, err = lookup(r.repo.GetStudentByNIS(ctx, key))
		if !ok {
			return nil, err
		}
		r.cache.students[key] = s
		if s != nil {
			r.cache.studentsByID[s.ID] = s
		}
	}
	if s == nil {
		return nil, fmt.Errorf("%w: NIS %q", pkgerrors.ErrStudentNotFound, key)
	}
	return s, nil
}

func (r *Resolver) StudentByID(ctx context.Context, id int64) (*model.Student, error) {
	s, cached := r.cache.studentsByID[id]
	if !cached {
		var ok bool
		var err error
		s, ok, err = lookup(r.repo.GetStudentByID(ctx, id))
		if !ok {
			return nil, err
		}
		r.cache.studentsByID[id] = s
	}
	if s == nil {
		return nil, fmt.Errorf("%w: id %d", pkgerrors.ErrStudentNotFound, id)
	}
	return s, nil
}

// Class returns the student's current class, nil when the student has none
// or the class row is gone.
func (r *Resolver) Class(ctx context.Context, student *model.Student) (*model.Class, error) {
	if student == nil || student.KelasID == nil {
		return nil, nil
	}
	id := *student.KelasID
	c, cached := r.cache.classes[id]
	if !cached {
		var ok bool
		var err error
		c, ok, err = lookup(r.repo.GetClass(ctx, id))
		if !ok {
			return nil, err
		}
		r.cache.classes[id] = c
	}
	return c, nil
}

// GradeLevel returns the tingkatan of the student's class, nil when unknown.
func (r *Resolver) GradeLevel(ctx context.Context, student *model.Student) (*int64, error) {
	c, err := r.Class(ctx, student)
	if err != nil || c == nil {
		return nil, err
	}
	return c.TingkatanID, nil
}

func (r *Resolver) curriculum(ctx context.Context, tingkatanID int64) ([]model.Subject, error) {
	if subjects, ok := r.cache.curriculum[tingkatanID]; ok {
		return subjects, nil
	}
	subjects, err := r.repo.ListCurriculumSubjects(ctx, tingkatanID)
	if err != nil {
		return nil, err
	}
	if subjects == nil {
		subjects = []model.Subject{}
	}
	r.cache.curriculum[tingkatanID] = subjects
	return subjects, nil
}

func subjectKey(name string, tingkatanID *int64) string {
	if tingkatanID == nil {
		return "*|" + normalize(name)
	}
	return fmt.Sprintf("%d|%s", *tingkatanID, normalize(name))
}

// Subject matches name against the curriculum of tingkatanID when it is known,
// otherwise against every subject.
func (r *Resolver) Subject(ctx context.Context, name string, tingkatanID *int64) (*model.Subject, error) {
	key := subjectKey(name, tingkatanID)
	s, cached := r.cache.subjects[key]
	if !cached {
		var err error
		s, err = r.findSubject(ctx, name, tingkatanID)
		if err != nil {
			return nil, err
		}
		r.cache.subjects[key] = s
	}
	if s == nil {
		return nil, fmt.Errorf("%w: %q", pkgerrors.ErrSubjectNotFound, strings.TrimSpace(name))
	}
	return s, nil
}

func (r *Resolver) findSubject(ctx context.Context, name string, tingkatanID *int64) (*model.Subject, error) {
	if tingkatanID != nil {
		subjects, err := r.curriculum(ctx, *tingkatanID)
		if err != nil {
			return nil, err
		}
		want := normalize(name)
		for i := range subjects {
			if normalize(subjects[i].Nama) == want {
				s := subjects[i]
				return &s, nil
			}
		}
		return nil, nil
	}

	s, ok, err := lookup(r.repo.FindSubjectByName(ctx, strings.TrimSpace(name)))
	if !ok {
		return nil, err
	}
	return s, nil
}

// ExamSubject resolves like Subject but creates the subject when it is
// missing. An existing subject of the same name outside the curriculum is
// linked to it rather than duplicated. created reports whether anything was written.
func (r *Resolver) ExamSubject(ctx context.Context, name string, tingkatanID *int64) (subject *model.Subject, created bool, err error) {
	subject, err = r.Subject(ctx, name, tingkatanID)
	if err == nil {
		return subject, false, nil
	}
	if !errors.Is(err, pkgerrors.ErrSubjectNotFound) {
		return nil, false, err
	}

	if tingkatanID != nil {
		global, ok, err := lookup(r.repo.FindSubjectByName(ctx, strings.TrimSpace(name)))
		if !ok {
			return nil, false, err
		}
		subject = global
	}

	if subject == nil {
		subject = &model.Subject{Nama: DisplayName(name)}
		if err := r.repo.CreateSubject(ctx, subject); err != nil {
			return nil, false, fmt.Errorf("failed to create subject %q: %w", subject.Nama, err)
		}
		r.log.Info().Int64("mapel_id", subject.ID).Str("nama", subject.Nama).Msg("Subject created from exam sheet")
		r.cache.subjects[subjectKey(name, nil)] = subject
	}

	if tingkatanID != nil {
		if err := r.repo.LinkCurriculumSubject(ctx, *tingkatanID, subject.ID); err != nil {
			return nil, false, fmt.Errorf("failed to link subject %d to tingkatan %d: %w", subject.ID, *tingkatanID, err)
		}
		r.log.Info().Int64("mapel_id", subject.ID).Int64("tingkatan_id", *tingkatanID).Msg("Subject linked to curriculum")
		r.cache.curriculum[*tingkatanID] = append(r.cache.curriculum[*tingkatanID], *subject)
	}

	r.cache.subjects[subjectKey(name, tingkatanID)] = subject
	return subject, true, nil
}

// MasterYear resolves "2025/2026" to its master academic year. Years are never created.
func (r *Resolver) MasterYear(ctx context.Context, name string) (*model.MasterAcademicYear, error) {
	key := strings.TrimSpace(name)
	m, cached := r.cache.masters[key]
	if !cached {
		var ok bool
		var err error
		m, ok, err = lookup(r.repo.GetMasterAcademicYearByName(ctx, key))
		if !ok {
			return nil, err
		}
		r.cache.masters[key] = m
	}
	if m == nil {
		return nil, fmt.Errorf("%w: %q", pkgerrors.ErrMasterYearNotFound, key)
	}
	return m, nil
}

func (r *Resolver) ActivePeriod(ctx context.Context, masterID int64, semester string) (*model.AcademicPeriod, error) {
	key := periodKey{masterID: masterID, semester: strings.TrimSpace(semester)}
	p, cached := r.cache.periods[key]
	if !cached {
		var ok bool
		var err error
		p, ok, err = lookup(r.repo.GetActivePeriod(ctx, key.masterID, key.semester))
		if !ok {
			return nil, err
		}
		r.cache.periods[key] = p
	}
	if p == nil {
		return nil, fmt.Errorf("%w: master %d semester %q", pkgerrors.ErrPeriodNotFound, masterID, key.semester)
	}
	return p, nil
}

// Period resolves an academic year name and semester to the active period.
func (r *Resolver) Period(ctx context.Context, yearName, semester string) (*model.AcademicPeriod, error) {
	master, err := r.MasterYear(ctx, yearName)
	if err != nil {
		return nil, err
	}
	return r.ActivePeriod(ctx, master.ID, semester)
}

func (r *Resolver) histories(ctx context.Context, siswaID int64) ([]model.ClassHistory, error) {
	if h, ok := r.cache.histories[siswaID]; ok {
		return h, nil
	}
	h, err := r.repo.ListClassHistories(ctx, siswaID)
	if err != nil {
		return nil, err
	}
	if h == nil {
		h = []model.ClassHistory{}
	}
	r.cache.histories[siswaID] = h
	return h, nil
}

// ClassHistory picks the history row that governs an import for the student:
// the newest row matching masterID and semester, then the newest matching
// masterID, then the newest row of any year. masterID 0 means unknown; the
// year of the newest row is used instead, so the semester still decides.
func (r *Resolver) ClassHistory(ctx context.Context, siswaID, masterID int64, semester string) (*model.ClassHistory, error) {
	histories, err := r.histories(ctx, siswaID)
	if err != nil {
		return nil, err
	}
	if len(histories) == 0 {
		return nil, fmt.Errorf("%w: siswa %d", pkgerrors.ErrClassHistoryNotFound, siswaID)
	}

	if masterID == 0 {
		masterID = histories[0].MasterTahunAjaranID
	}
	semester = strings.TrimSpace(semester)
	if semester != "" {
		for i := range histories {
			if histories[i].MasterTahunAjaranID == masterID && histories[i].Semester == semester {
				return &histories[i], nil
			}
		}
	}
	for i := range histories {
		if histories[i].MasterTahunAjaranID == masterID {
			return &histories[i], nil
		}
	}
	return &histories[0], nil
}

func (r *Resolver) AttendanceIndicator(ctx context.Context, name string) (*model.AttendanceIndicator, error) {
	key := normalize(name)
	ind, cached := r.cache.attendance[key]
	if !cached {
		var ok bool
		var err error
		ind, ok, err = lookup(r.repo.FindAttendanceIndicator(ctx, strings.TrimSpace(name)))
		if !ok {
			return nil, err
		}
		r.cache.attendance[key] = ind
	}
	if ind == nil {
		return nil, fmt.Errorf("%w: kegiatan %q", pkgerrors.ErrIndicatorNotFound, strings.TrimSpace(name))
	}
	return ind, nil
}

func (r *Resolver) AttitudeIndicator(ctx context.Context, jenisSikap, indikator string) (*model.AttitudeIndicator, error) {
	key := normalize(jenisSikap) + "|" + normalize(indikator)
	ind, cached := r.cache.attitude[key]
	if !cached {
		var ok bool
		var err error
		ind, ok, err = lookup(r.repo.FindAttitudeIndicator(ctx, strings.TrimSpace(jenisSikap), strings.TrimSpace(indikator)))
		if !ok {
			return nil, err
		}
		r.cache.attitude[key] = ind
	}
	if ind == nil {
		return nil, fmt.Errorf("%w: sikap %q / %q", pkgerrors.ErrIndicatorNotFound, strings.TrimSpace(jenisSikap), strings.TrimSpace(indikator))
	}
	return ind, nil
}
