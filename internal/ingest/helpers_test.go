package ingest

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"eraport-ingestion/internal/db"
	"eraport-ingestion/internal/db/memdb"
	"eraport-ingestion/internal/excel"
	"eraport-ingestion/internal/model"

	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

type sheetRows map[string][][]interface{}

func buildFile(t *testing.T, sheets sheetRows) *excelize.File {
	t.Helper()
	f := excelize.NewFile()
	t.Cleanup(func() { _ = f.Close() })

	for name, rows := range sheets {
		_, err := f.NewSheet(name)
		require.NoError(t, err)
		for i, row := range rows {
			r := row
			require.NoError(t, f.SetSheetRow(name, fmt.Sprintf("A%d", i+1), &r))
		}
	}
	return f
}

func saveFile(t *testing.T, f *excelize.File) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "nilai.xlsx")
	require.NoError(t, f.SaveAs(path))
	return path
}

var (
	examHeader       = []interface{}{"NIS", "Nama", "Mata Pelajaran", "Kitab", "Nilai", "Semester", "Tahun Ajaran"}
	memorizeHeader   = []interface{}{"NIS", "Nama", "Mata Pelajaran", "Kitab", "Nilai", "Predikat", "Semester", "Tahun Ajaran"}
	attendanceHeader = []interface{}{"NIS", "Nama", "Kegiatan", "Izin", "Sakit", "Alpha", "Semester", "Tahun Ajaran"}
	attitudeHeader   = []interface{}{"NIS", "Nama", "Jenis Sikap", "Indikator", "Nilai", "Semester", "Tahun Ajaran", "Catatan Wali Kelas"}
	noteHeader       = []interface{}{"Siswa ID", "Nama", "Semester", "Catatan"}
)

type fixture struct {
	store      *memdb.DB
	level      int64
	classID    int64
	waliID     int64
	studentID  int64
	mathID     int64
	tahfidzID  int64
	masterID   int64
	periodID   int64
	sholatID   int64
	khusyukID  int64
	prevMaster int64
	prevPeriod int64
}

// newFixture seeds student 1234 in class 1A with an active period for
// 2025/2026 semester 1 and an inactive one for semester 2.
func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := memdb.New()
	f := &fixture{store: store, waliID: 77}

	f.level = store.AddGradeLevel()
	level, wali := f.level, f.waliID
	f.classID = store.AddClass(model.Class{Nama: "1A", TingkatanID: &level, WaliKelasID: &wali})
	f.studentID = f.addStudent("1234", "Ahmad")
	f.mathID = store.AddSubject("Matematika", f.level)
	f.tahfidzID = store.AddSubject("Tahfidz", f.level)
	f.masterID = store.AddMasterYear("2025/2026")
	f.periodID = store.AddPeriod(f.masterID, "1", true)
	store.AddPeriod(f.masterID, "2", false)
	f.prevMaster = store.AddMasterYear("2024/2025")
	f.prevPeriod = store.AddPeriod(f.prevMaster, "2", true)
	f.sholatID = store.AddAttendanceIndicator("Sholat Berjamaah")
	f.khusyukID = store.AddAttitudeIndicator("Spiritual", "Khusyuk")
	return f
}

func (f *fixture) addStudent(nis, name string) int64 {
	classID := f.classID
	return f.store.AddStudent(model.Student{NIS: nis, Nama: name, KelasID: &classID})
}

func (f *fixture) addHistory(siswaID, masterID int64, semester string, createdAt time.Time) int64 {
	return f.store.AddClassHistory(model.ClassHistory{
		SiswaID: siswaID, KelasID: f.classID, MasterTahunAjaranID: masterID,
		Semester: semester, CreatedAt: createdAt,
	})
}

func validAggregate(nis, score string) model.StudentAggregate {
	return model.StudentAggregate{
		NIS:         nis,
		Nama:        "Siswa " + nis,
		RowNumber:   2,
		Semester:    "1",
		TahunAjaran: "2025/2026",
		NilaiUjian: []model.ExamEntry{
			{MataPelajaran: "Matematika", Nilai: score, Semester: "1", TahunAjaran: "2025/2026"},
		},
	}
}

func openWorkbook(t *testing.T, f *excelize.File) *excel.Workbook {
	t.Helper()
	return excel.FromFile(f)
}

var errConstraint = errors.New("Error 1062: Duplicate entry for key 'uniq_nilai_ujian'")

// failingStore makes the n-th exam grade upsert fail, like a constraint violation would.
type failingStore struct {
	*memdb.DB
	failAt int
	calls  int
}

func (s *failingStore) WithTx(ctx context.Context, fn func(repo db.Repository) error) error {
	return s.DB.WithTx(ctx, func(repo db.Repository) error {
		return fn(&failingRepo{Repository: repo, store: s})
	})
}

type failingRepo struct {
	db.Repository
	store *failingStore
}

func (r *failingRepo) UpsertExamGrade(ctx context.Context, g *model.ExamGrade) error {
	r.store.calls++
	if r.store.calls == r.store.failAt {
		return errConstraint
	}
	return r.Repository.UpsertExamGrade(ctx, g)
}
