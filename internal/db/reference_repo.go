package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"eraport-ingestion/internal/model"
	pkgerrors "eraport-ingestion/pkg/errors"
)

func notFound(err error, what string) error {
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%s: %w", what, pkgerrors.ErrNotFound)
	}
	return err
}

func (r *repository) GetStudentByNIS(ctx context.Context, nis string) (*model.Student, error) {
	query := `SELECT id, nis, nama, kelas_id FROM siswa WHERE nis = ?`

	var s model.Student
	err := r.q.QueryRowContext(ctx, query, strings.TrimSpace(nis)).Scan(&s.ID, &s.NIS, &s.Nama, &s.KelasID)
	if err != nil {
		return nil, notFound(err, "siswa "+nis)
	}
	return &s, nil
}

func (r *repository) GetStudentByID(ctx context.Context, id int64) (*model.Student, error) {
	query := `SELECT id, nis, nama, kelas_id FROM siswa WHERE id = ?`

	var s model.Student
	err := r.q.QueryRowContext(ctx, query, id).Scan(&s.ID, &s.NIS, &s.Nama, &s.KelasID)
	if err != nil {
		return nil, notFound(err, fmt.Sprintf("siswa id %d", id))
	}
	return &s, nil
}

func (r *repository) GetClass(ctx context.Context, id int64) (*model.Class, error) {
	query := `SELECT id, nama, tingkatan_id, wali_kelas_id FROM kelas WHERE id = ?`

	var c model.Class
	err := r.q.QueryRowContext(ctx, query, id).Scan(&c.ID, &c.Nama, &c.TingkatanID, &c.WaliKelasID)
	if err != nil {
		return nil, notFound(err, fmt.Sprintf("kelas %d", id))
	}
	return &c, nil
}

func (r *repository) ListCurriculumSubjects(ctx context.Context, tingkatanID int64) ([]model.Subject, error) {
	query := `SELECT m.id, m.nama FROM mata_pelajaran m
			  JOIN kurikulum k ON k.mapel_id = m.id
			  WHERE k.tingkatan_id = ?
			  ORDER BY m.id`

	rows, err := r.q.QueryContext(ctx, query, tingkatanID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var subjects []model.Subject
	for rows.Next() {
		var s model.Subject
		if err := rows.Scan(&s.ID, &s.Nama); err != nil {
			return nil, err
		}
		subjects = append(subjects, s)
	}
	return subjects, rows.Err()
}

func (r *repository) FindSubjectByName(ctx context.Context, name string) (*model.Subject, error) {
	query := `SELECT id, nama FROM mata_pelajaran WHERE LOWER(TRIM(nama)) = LOWER(TRIM(?)) ORDER BY id LIMIT 1`

	var s model.Subject
	if err := r.q.QueryRowContext(ctx, query, name).Scan(&s.ID, &s.Nama); err != nil {
		return nil, notFound(err, "mata pelajaran "+name)
	}
	return &s, nil
}

func (r *repository) GetMasterAcademicYearByName(ctx context.Context, name string) (*model.MasterAcademicYear, error) {
	query := `SELECT id, nama FROM master_tahun_ajaran WHERE nama = ?`

	var m model.MasterAcademicYear
	if err := r.q.QueryRowContext(ctx, query, name).Scan(&m.ID, &m.Nama); err != nil {
		return nil, notFound(err, "master tahun ajaran "+name)
	}
	return &m, nil
}

func (r *repository) GetActivePeriod(ctx context.Context, masterID int64, semester string) (*model.AcademicPeriod, error) {
	query := `SELECT id, master_tahun_ajaran_id, semester, status = 'aktif' FROM tahun_ajaran
			  WHERE master_tahun_ajaran_id = ? AND semester = ? AND status = 'aktif'
			  ORDER BY id DESC LIMIT 1`

	var p model.AcademicPeriod
	err := r.q.QueryRowContext(ctx, query, masterID, semester).Scan(&p.ID, &p.MasterTahunAjaranID, &p.Semester, &p.IsActive)
	if err != nil {
		return nil, notFound(err, fmt.Sprintf("tahun ajaran %d semester %s", masterID, semester))
	}
	return &p, nil
}

func (r *repository) GetPeriod(ctx context.Context, id int64) (*model.AcademicPeriod, error) {
	query := `SELECT id, master_tahun_ajaran_id, semester, status = 'aktif' FROM tahun_ajaran WHERE id = ?`

	var p model.AcademicPeriod
	err := r.q.QueryRowContext(ctx, query, id).Scan(&p.ID, &p.MasterTahunAjaranID, &p.Semester, &p.IsActive)
	if err != nil {
		return nil, notFound(err, fmt.Sprintf("tahun ajaran %d", id))
	}
	return &p, nil
}

func (r *repository) ListClassHistories(ctx context.Context, siswaID int64) ([]model.ClassHistory, error) {
	query := `SELECT id, siswa_id, kelas_id, master_tahun_ajaran_id, semester, catatan_akademik, catatan_sikap, created_at
			  FROM riwayat_kelas_siswa WHERE siswa_id = ?
			  ORDER BY created_at DESC, id DESC`

	rows, err := r.q.QueryContext(ctx, query, siswaID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var histories []model.ClassHistory
	for rows.Next() {
		var h model.ClassHistory
		err := rows.Scan(&h.ID, &h.SiswaID, &h.KelasID, &h.MasterTahunAjaranID, &h.Semester,
			&h.CatatanAkademik, &h.CatatanSikap, &h.CreatedAt)
		if err != nil {
			return nil, err
		}
		histories = append(histories, h)
	}
	return histories, rows.Err()
}

func (r *repository) FindAttendanceIndicator(ctx context.Context, name string) (*model.AttendanceIndicator, error) {
	query := `SELECT id, nama FROM indikator_kehadiran WHERE LOWER(TRIM(nama)) = LOWER(TRIM(?)) ORDER BY id LIMIT 1`

	var i model.AttendanceIndicator
	if err := r.q.QueryRowContext(ctx, query, name).Scan(&i.ID, &i.Nama); err != nil {
		return nil, notFound(err, "indikator kehadiran "+name)
	}
	return &i, nil
}

func (r *repository) FindAttitudeIndicator(ctx context.Context, jenisSikap, indikator string) (*model.AttitudeIndicator, error) {
	query := `SELECT id, jenis_sikap, indikator FROM indikator_sikap
			  WHERE LOWER(TRIM(jenis_sikap)) = LOWER(TRIM(?)) AND LOWER(TRIM(indikator)) = LOWER(TRIM(?))
			  ORDER BY id LIMIT 1`

	var i model.AttitudeIndicator
	if err := r.q.QueryRowContext(ctx, query, jenisSikap, indikator).Scan(&i.ID, &i.JenisSikap, &i.Indikator); err != nil {
		return nil, notFound(err, "indikator sikap "+indikator)
	}
	return &i, nil
}

func (r *repository) CreateSubject(ctx context.Context, subject *model.Subject) error {
	res, err := r.q.ExecContext(ctx, `INSERT INTO mata_pelajaran (nama) VALUES (?)`, subject.Nama)
	if err != nil {
		return err
	}
	subject.ID, err = res.LastInsertId()
	return err
}

func (r *repository) LinkCurriculumSubject(ctx context.Context, tingkatanID, mapelID int64) error {
	query := `INSERT IGNORE INTO kurikulum (tingkatan_id, mapel_id) VALUES (?, ?)`
	_, err := r.q.ExecContext(ctx, query, tingkatanID, mapelID)
	return err
}

func (r *repository) UpdateClassHistoryNote(ctx context.Context, historyID int64, kind model.NoteKind, note string) error {
	var column string
	switch kind {
	case model.NoteAkademik:
		column = "catatan_akademik"
	case model.NoteSikap:
		column = "catatan_sikap"
	default:
		return fmt.Errorf("unknown note kind %q", kind)
	}

	res, err := r.q.ExecContext(ctx, `UPDATE riwayat_kelas_siswa SET `+column+` = ? WHERE id = ?`, note, historyID)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("riwayat kelas %d: %w", historyID, pkgerrors.ErrNotFound)
	}
	return nil
}
