package excel

// Sheet names of the report-card workbook.
const (
	SheetNilaiUjian      = "Template Nilai Ujian"
	SheetHafalan         = "Template Hafalan"
	SheetKehadiran       = "Template Kehadiran"
	SheetSikap           = "Template Sikap"
	SheetCatatanAkademik = "Catatan Akademik"
	SheetCatatanSikap    = "Catatan Sikap"
)

// Column letters are part of the upload contract. Do not reorder.

var ExamColumns = struct {
	NIS, Nama, MataPelajaran, Kitab, Nilai, Semester, TahunAjaran string
}{"A", "B", "C", "D", "E", "F", "G"}

var MemorizationColumns = struct {
	NIS, Nama, MataPelajaran, Kitab, Nilai, Predikat, Semester, TahunAjaran string
}{"A", "B", "C", "D", "E", "F", "G", "H"}

var AttendanceColumns = struct {
	NIS, Nama, Kegiatan, Izin, Sakit, Alpha, Semester, TahunAjaran string
}{"A", "B", "C", "D", "E", "F", "G", "H"}

var AttitudeColumns = struct {
	NIS, Nama, JenisSikap, Indikator, Nilai, Semester, TahunAjaran, CatatanWali string
}{"A", "B", "C", "D", "E", "F", "G", "H"}

// NoteColumns is shared by "Catatan Akademik" and "Catatan Sikap".
var NoteColumns = struct {
	SiswaID, Nama, Semester, Catatan string
}{"A", "B", "C", "D"}
