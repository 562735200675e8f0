package model

// StudentAggregate collects every row that belongs to one student (by NIS) in a single upload.
type StudentAggregate struct {
	NIS          string              `json:"nis" validate:"required"`
	Nama         string              `json:"nama"`
	RowNumber    int                 `json:"row_number"`
	Semester     string              `json:"semester"`
	TahunAjaran  string              `json:"tahun_ajaran"`
	NilaiUjian   []ExamEntry         `json:"nilai_ujian"`
	NilaiHafalan []MemorizationEntry `json:"nilai_hafalan"`
	Kehadiran    []AttendanceEntry   `json:"kehadiran"`
	Rekap        AttendanceSummary   `json:"rekap_kehadiran"`
	Sikap        []AttitudeEntry     `json:"sikap"`
	CatatanWali  string              `json:"catatan_wali_kelas,omitempty"`
}

// Scores and counts are kept as the raw cell text so validation can report
// values that do not parse.

type ExamEntry struct {
	MataPelajaran string `json:"mata_pelajaran"`
	Kitab         string `json:"kitab,omitempty"`
	Nilai         string `json:"nilai"`
	Semester      string `json:"semester"`
	TahunAjaran   string `json:"tahun_ajaran"`
}

type MemorizationEntry struct {
	MataPelajaran string `json:"mata_pelajaran"`
	Kitab         string `json:"kitab,omitempty"`
	Nilai         string `json:"nilai"`
	Predikat      string `json:"predikat,omitempty"`
	Semester      string `json:"semester"`
	TahunAjaran   string `json:"tahun_ajaran"`
}

type AttendanceEntry struct {
	Kegiatan string `json:"kegiatan"`
	Izin     string `json:"izin"`
	Sakit    string `json:"sakit"`
	Alpha    string `json:"alpha"`
}

type AttendanceSummary struct {
	Sakit int `json:"sakit"`
	Izin  int `json:"izin"`
	Alpha int `json:"alpha"`
}

type AttitudeEntry struct {
	JenisSikap string `json:"jenis_sikap"`
	Indikator  string `json:"indikator"`
	Nilai      string `json:"nilai,omitempty"`
}

// SetPeriod fills semester and academic year only while they are still unset.
// The first sheet that supplies a value wins.
func (a *StudentAggregate) SetPeriod(semester, tahunAjaran string) {
	if a.Semester == "" && semester != "" {
		a.Semester = semester
	}
	if a.TahunAjaran == "" && tahunAjaran != "" {
		a.TahunAjaran = tahunAjaran
	}
}
