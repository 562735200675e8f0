package memdb

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"eraport-ingestion/internal/model"
	"eraport-ingestion/pkg/errors"
)

func sameName(a, b string) bool {
	return strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b))
}

func notFound(format string, args ...interface{}) error {
	return fmt.Errorf(format+": %w", append(args, errors.ErrNotFound)...)
}

func (r *repo) GetStudentByNIS(_ context.Context, nis string) (*model.Student, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	nis = strings.TrimSpace(nis)
	for _, s := range r.t.students {
		if s.NIS == nis {
			return &s, nil
		}
	}
	return nil, notFound("siswa %s", nis)
}

func (r *repo) GetStudentByID(_ context.Context, id int64) (*model.Student, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if s, ok := r.t.students[id]; ok {
		return &s, nil
	}
	return nil, notFound("siswa id %d", id)
}

func (r *repo) GetClass(_ context.Context, id int64) (*model.Class, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if c, ok := r.t.classes[id]; ok {
		return &c, nil
	}
	return nil, notFound("kelas %d", id)
}

func (r *repo) ListCurriculumSubjects(_ context.Context, tingkatanID int64) ([]model.Subject, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var subjects []model.Subject
	for mapelID := range r.t.curriculum[tingkatanID] {
		if s, ok := r.t.subjects[mapelID]; ok {
			subjects = append(subjects, s)
		}
	}
	sort.Slice(subjects, func(i, j int) bool { return subjects[i].ID < subjects[j].ID })
	return subjects, nil
}

func (r *repo) FindSubjectByName(_ context.Context, name string) (*model.Subject, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var found *model.Subject
	for _, s := range r.t.subjects {
		if sameName(s.Nama, name) && (found == nil || s.ID < found.ID) {
			s := s
			found = &s
		}
	}
	if found == nil {
		return nil, notFound("mata pelajaran %s", name)
	}
	return found, nil
}

func (r *repo) GetMasterAcademicYearByName(_ context.Context, name string) (*model.MasterAcademicYear, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, m := range r.t.masters {
		if m.Nama == name {
			return &m, nil
		}
	}
	return nil, notFound("master tahun ajaran %s", name)
}

func (r *repo) GetActivePeriod(_ context.Context, masterID int64, semester string) (*model.AcademicPeriod, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var found *model.AcademicPeriod
	for _, p := range r.t.periods {
		if p.MasterTahunAjaranID == masterID && p.Semester == semester && p.IsActive && (found == nil || p.ID > found.ID) {
			p := p
			found = &p
		}
	}
	if found == nil {
		return nil, notFound("tahun ajaran %d semester %s", masterID, semester)
	}
	return found, nil
}

func (r *repo) GetPeriod(_ context.Context, id int64) (*model.AcademicPeriod, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if p, ok := r.t.periods[id]; ok {
		return &p, nil
	}
	return nil, notFound("tahun ajaran %d", id)
}

func (r *repo) ListClassHistories(_ context.Context, siswaID int64) ([]model.ClassHistory, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var histories []model.ClassHistory
	for _, h := range r.t.histories {
		if h.SiswaID == siswaID {
			histories = append(histories, h)
		}
	}
	sort.Slice(histories, func(i, j int) bool {
		if !histories[i].CreatedAt.Equal(histories[j].CreatedAt) {
			return histories[i].CreatedAt.After(histories[j].CreatedAt)
		}
		return histories[i].ID > histories[j].ID
	})
	return histories, nil
}

func (r *repo) FindAttendanceIndicator(_ context.Context, name string) (*model.AttendanceIndicator, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, i := range r.t.attendanceIndicators {
		if sameName(i.Nama, name) {
			return &i, nil
		}
	}
	return nil, notFound("indikator kehadiran %s", name)
}

func (r *repo) FindAttitudeIndicator(_ context.Context, jenisSikap, indikator string) (*model.AttitudeIndicator, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, i := range r.t.attitudeIndicators {
		if sameName(i.JenisSikap, jenisSikap) && sameName(i.Indikator, indikator) {
			return &i, nil
		}
	}
	return nil, notFound("indikator sikap %s", indikator)
}

func (r *repo) CreateSubject(_ context.Context, subject *model.Subject) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	subject.ID = r.t.id()
	r.t.subjects[subject.ID] = *subject
	return nil
}

func (r *repo) LinkCurriculumSubject(_ context.Context, tingkatanID, mapelID int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	set, ok := r.t.curriculum[tingkatanID]
	if !ok {
		set = make(map[int64]bool)
		r.t.curriculum[tingkatanID] = set
	}
	set[mapelID] = true
	return nil
}

func (r *repo) UpdateClassHistoryNote(_ context.Context, historyID int64, kind model.NoteKind, note string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	h, ok := r.t.histories[historyID]
	if !ok {
		return notFound("riwayat kelas %d", historyID)
	}
	switch kind {
	case model.NoteAkademik:
		h.CatatanAkademik = &note
	case model.NoteSikap:
		h.CatatanSikap = &note
	default:
		return fmt.Errorf("unknown note kind %q", kind)
	}
	r.t.histories[historyID] = h
	return nil
}
