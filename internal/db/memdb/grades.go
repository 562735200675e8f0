package memdb

import (
	"context"

	"eraport-ingestion/internal/model"
)

func sameID(a, b *int64) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

func (r *repo) UpsertExamGrade(_ context.Context, g *model.ExamGrade) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	g.ID = 0
	for id, e := range r.t.exams {
		if e.SiswaID == g.SiswaID && e.MapelID == g.MapelID && e.Semester == g.Semester && e.TahunAjaranID == g.TahunAjaranID {
			g.ID = id
			break
		}
	}
	if g.ID == 0 {
		g.ID = r.t.id()
	}
	g.UpdatedAt = r.now()
	r.t.exams[g.ID] = *g
	return nil
}

func (r *repo) UpsertMemorizationGrade(_ context.Context, g *model.MemorizationGrade) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	g.ID = 0
	for id, e := range r.t.memorizations {
		if e.SiswaID == g.SiswaID && e.MapelID == g.MapelID && e.Semester == g.Semester && e.TahunAjaranID == g.TahunAjaranID {
			g.ID = id
			break
		}
	}
	if g.ID == 0 {
		g.ID = r.t.id()
	}
	g.UpdatedAt = r.now()
	r.t.memorizations[g.ID] = *g
	return nil
}

func (r *repo) UpsertAttendance(_ context.Context, rec *model.AttendanceRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	rec.ID = 0
	for id, e := range r.t.attendances {
		if e.SiswaID != rec.SiswaID || e.Semester != rec.Semester || e.TahunAjaranID != rec.TahunAjaranID {
			continue
		}
		if !sameID(e.IndikatorID, rec.IndikatorID) {
			continue
		}
		if rec.IndikatorID == nil && e.Kegiatan != rec.Kegiatan {
			continue
		}
		rec.ID = id
		break
	}
	if rec.ID == 0 {
		rec.ID = r.t.id()
	}
	rec.UpdatedAt = r.now()
	r.t.attendances[rec.ID] = *rec
	return nil
}

func (r *repo) UpsertAttitude(_ context.Context, rec *model.AttitudeRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	rec.ID = 0
	for id, e := range r.t.attitudes {
		if e.SiswaID != rec.SiswaID || e.Semester != rec.Semester || e.TahunAjaranID != rec.TahunAjaranID {
			continue
		}
		if !sameID(e.IndikatorID, rec.IndikatorID) {
			continue
		}
		if rec.IndikatorID == nil && (e.JenisSikap != rec.JenisSikap || e.Indikator != rec.Indikator) {
			continue
		}
		rec.ID = id
		break
	}
	if rec.ID == 0 {
		rec.ID = r.t.id()
	}
	rec.UpdatedAt = r.now()
	r.t.attitudes[rec.ID] = *rec
	return nil
}
