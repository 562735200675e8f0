package model

import "time"

// HomeroomNoteCategory labels the synthetic attitude row that carries the homeroom teacher's note.
const HomeroomNoteCategory = "Catatan Wali Kelas"

type ExamGrade struct {
	ID            int64     `json:"id" db:"id"`
	SiswaID       int64     `json:"siswa_id" db:"siswa_id"`
	MapelID       int64     `json:"mapel_id" db:"mapel_id"`
	Kitab         *string   `json:"kitab,omitempty" db:"kitab"`
	Nilai         *float64  `json:"nilai" db:"nilai"`
	Semester      string    `json:"semester" db:"semester"`
	TahunAjaranID int64     `json:"tahun_ajaran_id" db:"tahun_ajaran_id"`
	UpdatedAt     time.Time `json:"updated_at" db:"updated_at"`
}

type MemorizationGrade struct {
	ID            int64     `json:"id" db:"id"`
	SiswaID       int64     `json:"siswa_id" db:"siswa_id"`
	MapelID       int64     `json:"mapel_id" db:"mapel_id"`
	Kitab         *string   `json:"kitab,omitempty" db:"kitab"`
	Nilai         *float64  `json:"nilai" db:"nilai"`
	Predikat      *string   `json:"predikat,omitempty" db:"predikat"`
	Semester      string    `json:"semester" db:"semester"`
	TahunAjaranID int64     `json:"tahun_ajaran_id" db:"tahun_ajaran_id"`
	UpdatedAt     time.Time `json:"updated_at" db:"updated_at"`
}

// AttendanceRecord keeps the raw activity text so rows without a known indicator stay identifiable.
type AttendanceRecord struct {
	ID            int64     `json:"id" db:"id"`
	SiswaID       int64     `json:"siswa_id" db:"siswa_id"`
	IndikatorID   *int64    `json:"indikator_kehadiran_id,omitempty" db:"indikator_kehadiran_id"`
	Kegiatan      string    `json:"kegiatan" db:"kegiatan"`
	Izin          int       `json:"izin" db:"izin"`
	Sakit         int       `json:"sakit" db:"sakit"`
	Alpha         int       `json:"alpha" db:"alpha"`
	Semester      string    `json:"semester" db:"semester"`
	TahunAjaranID int64     `json:"tahun_ajaran_id" db:"tahun_ajaran_id"`
	UpdatedAt     time.Time `json:"updated_at" db:"updated_at"`
}

type AttitudeRecord struct {
	ID            int64     `json:"id" db:"id"`
	SiswaID       int64     `json:"siswa_id" db:"siswa_id"`
	IndikatorID   *int64    `json:"indikator_sikap_id,omitempty" db:"indikator_sikap_id"`
	JenisSikap    string    `json:"jenis_sikap" db:"jenis_sikap"`
	Indikator     string    `json:"indikator" db:"indikator"`
	Nilai         *float64  `json:"nilai,omitempty" db:"nilai"`
	Deskripsi     *string   `json:"deskripsi,omitempty" db:"deskripsi"`
	Semester      string    `json:"semester" db:"semester"`
	TahunAjaranID int64     `json:"tahun_ajaran_id" db:"tahun_ajaran_id"`
	UpdatedAt     time.Time `json:"updated_at" db:"updated_at"`
}

type NoteKind string

const (
	NoteAkademik NoteKind = "akademik"
	NoteSikap    NoteKind = "sikap"
)
