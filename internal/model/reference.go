package model

import "time"

type Student struct {
	ID      int64  `json:"id" db:"id"`
	NIS     string `json:"nis" db:"nis"`
	Nama    string `json:"nama" db:"nama"`
	KelasID *int64 `json:"kelas_id,omitempty" db:"kelas_id"`
}

type Class struct {
	ID          int64  `json:"id" db:"id"`
	Nama        string `json:"nama" db:"nama"`
	TingkatanID *int64 `json:"tingkatan_id,omitempty" db:"tingkatan_id"`
	WaliKelasID *int64 `json:"wali_kelas_id,omitempty" db:"wali_kelas_id"`
}

type Subject struct {
	ID   int64  `json:"id" db:"id"`
	Nama string `json:"nama" db:"nama"`
}

// MasterAcademicYear is the "2024/2025" record; grades point at an AcademicPeriod instead.
type MasterAcademicYear struct {
	ID   int64  `json:"id" db:"id"`
	Nama string `json:"nama" db:"nama"`
}

type AcademicPeriod struct {
	ID                  int64  `json:"id" db:"id"`
	MasterTahunAjaranID int64  `json:"master_tahun_ajaran_id" db:"master_tahun_ajaran_id"`
	Semester            string `json:"semester" db:"semester"`
	IsActive            bool   `json:"is_active" db:"is_active"`
}

type ClassHistory struct {
	ID                  int64     `json:"id" db:"id"`
	SiswaID             int64     `json:"siswa_id" db:"siswa_id"`
	KelasID             int64     `json:"kelas_id" db:"kelas_id"`
	MasterTahunAjaranID int64     `json:"master_tahun_ajaran_id" db:"master_tahun_ajaran_id"`
	Semester            string    `json:"semester" db:"semester"`
	CatatanAkademik     *string   `json:"catatan_akademik,omitempty" db:"catatan_akademik"`
	CatatanSikap        *string   `json:"catatan_sikap,omitempty" db:"catatan_sikap"`
	CreatedAt           time.Time `json:"created_at" db:"created_at"`
}

type AttendanceIndicator struct {
	ID   int64  `json:"id" db:"id"`
	Nama string `json:"nama" db:"nama"`
}

type AttitudeIndicator struct {
	ID         int64  `json:"id" db:"id"`
	JenisSikap string `json:"jenis_sikap" db:"jenis_sikap"`
	Indikator  string `json:"indikator" db:"indikator"`
}
