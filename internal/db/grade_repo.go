package db

import (
	"context"
	"database/sql"
	"errors"

	"eraport-ingestion/internal/model"
)

// Each upsert looks the natural key up first and then updates or inserts, so
// nullable key parts (indicator ids) are matched the same way as the rest.

func (r *repository) existingID(ctx context.Context, query string, args ...interface{}) (int64, bool, error) {
	var id int64
	err := r.q.QueryRowContext(ctx, query, args...).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	return id, true, nil
}

func (r *repository) insert(ctx context.Context, query string, args ...interface{}) (int64, error) {
	res, err := r.q.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

func (r *repository) UpsertExamGrade(ctx context.Context, g *model.ExamGrade) error {
	id, found, err := r.existingID(ctx,
		`SELECT id FROM nilai_ujian WHERE siswa_id = ? AND mapel_id = ? AND semester = ? AND tahun_ajaran_id = ? FOR UPDATE`,
		g.SiswaID, g.MapelID, g.Semester, g.TahunAjaranID)
	if err != nil {
		return err
	}

	if found {
		g.ID = id
		_, err = r.q.ExecContext(ctx,
			`UPDATE nilai_ujian SET kitab = ?, nilai = ?, updated_at = NOW() WHERE id = ?`,
			g.Kitab, g.Nilai, id)
		return err
	}

	g.ID, err = r.insert(ctx,
		`INSERT INTO nilai_ujian (siswa_id, mapel_id, kitab, nilai, semester, tahun_ajaran_id) VALUES (?, ?, ?, ?, ?, ?)`,
		g.SiswaID, g.MapelID, g.Kitab, g.Nilai, g.Semester, g.TahunAjaranID)
	return err
}

func (r *repository) UpsertMemorizationGrade(ctx context.Context, g *model.MemorizationGrade) error {
	id, found, err := r.existingID(ctx,
		`SELECT id FROM nilai_hafalan WHERE siswa_id = ? AND mapel_id = ? AND semester = ? AND tahun_ajaran_id = ? FOR UPDATE`,
		g.SiswaID, g.MapelID, g.Semester, g.TahunAjaranID)
	if err != nil {
		return err
	}

	if found {
		g.ID = id
		_, err = r.q.ExecContext(ctx,
			`UPDATE nilai_hafalan SET kitab = ?, nilai = ?, predikat = ?, updated_at = NOW() WHERE id = ?`,
			g.Kitab, g.Nilai, g.Predikat, id)
		return err
	}

	g.ID, err = r.insert(ctx,
		`INSERT INTO nilai_hafalan (siswa_id, mapel_id, kitab, nilai, predikat, semester, tahun_ajaran_id) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		g.SiswaID, g.MapelID, g.Kitab, g.Nilai, g.Predikat, g.Semester, g.TahunAjaranID)
	return err
}

func (r *repository) UpsertAttendance(ctx context.Context, rec *model.AttendanceRecord) error {
	var (
		id    int64
		found bool
		err   error
	)
	if rec.IndikatorID != nil {
		id, found, err = r.existingID(ctx,
			`SELECT id FROM kehadiran WHERE siswa_id = ? AND indikator_kehadiran_id = ? AND semester = ? AND tahun_ajaran_id = ? FOR UPDATE`,
			rec.SiswaID, *rec.IndikatorID, rec.Semester, rec.TahunAjaranID)
	} else {
		id, found, err = r.existingID(ctx,
			`SELECT id FROM kehadiran WHERE siswa_id = ? AND indikator_kehadiran_id IS NULL AND kegiatan = ? AND semester = ? AND tahun_ajaran_id = ? FOR UPDATE`,
			rec.SiswaID, rec.Kegiatan, rec.Semester, rec.TahunAjaranID)
	}
	if err != nil {
		return err
	}

	if found {
		rec.ID = id
		_, err = r.q.ExecContext(ctx,
			`UPDATE kehadiran SET kegiatan = ?, izin = ?, sakit = ?, alpha = ?, updated_at = NOW() WHERE id = ?`,
			rec.Kegiatan, rec.Izin, rec.Sakit, rec.Alpha, id)
		return err
	}

	rec.ID, err = r.insert(ctx,
		`INSERT INTO kehadiran (siswa_id, indikator_kehadiran_id, kegiatan, izin, sakit, alpha, semester, tahun_ajaran_id) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.SiswaID, rec.IndikatorID, rec.Kegiatan, rec.Izin, rec.Sakit, rec.Alpha, rec.Semester, rec.TahunAjaranID)
	return err
}

func (r *repository) UpsertAttitude(ctx context.Context, rec *model.AttitudeRecord) error {
	var (
		id    int64
		found bool
		err   error
	)
	if rec.IndikatorID != nil {
		id, found, err = r.existingID(ctx,
			`SELECT id FROM penilaian_sikap WHERE siswa_id = ? AND indikator_sikap_id = ? AND semester = ? AND tahun_ajaran_id = ? FOR UPDATE`,
			rec.SiswaID, *rec.IndikatorID, rec.Semester, rec.TahunAjaranID)
	} else {
		id, found, err = r.existingID(ctx,
			`SELECT id FROM penilaian_sikap WHERE siswa_id = ? AND indikator_sikap_id IS NULL AND jenis_sikap = ? AND indikator = ? AND semester = ? AND tahun_ajaran_id = ? FOR UPDATE`,
			rec.SiswaID, rec.JenisSikap, rec.Indikator, rec.Semester, rec.TahunAjaranID)
	}
	if err != nil {
		return err
	}

	if found {
		rec.ID = id
		_, err = r.q.ExecContext(ctx,
			`UPDATE penilaian_sikap SET jenis_sikap = ?, indikator = ?, nilai = ?, deskripsi = ?, updated_at = NOW() WHERE id = ?`,
			rec.JenisSikap, rec.Indikator, rec.Nilai, rec.Deskripsi, id)
		return err
	}

	rec.ID, err = r.insert(ctx,
		`INSERT INTO penilaian_sikap (siswa_id, indikator_sikap_id, jenis_sikap, indikator, nilai, deskripsi, semester, tahun_ajaran_id) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.SiswaID, rec.IndikatorID, rec.JenisSikap, rec.Indikator, rec.Nilai, rec.Deskripsi, rec.Semester, rec.TahunAjaranID)
	return err
}
