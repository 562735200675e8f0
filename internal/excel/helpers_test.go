package excel

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

type sheetRows map[string][][]interface{}

// buildFile writes each sheet starting at A1; the first row is the header.
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

var (
	examHeader       = []interface{}{"NIS", "Nama", "Mata Pelajaran", "Kitab", "Nilai", "Semester", "Tahun Ajaran"}
	memorizeHeader   = []interface{}{"NIS", "Nama", "Mata Pelajaran", "Kitab", "Nilai", "Predikat", "Semester", "Tahun Ajaran"}
	attendanceHeader = []interface{}{"NIS", "Nama", "Kegiatan", "Izin", "Sakit", "Alpha", "Semester", "Tahun Ajaran"}
	attitudeHeader   = []interface{}{"NIS", "Nama", "Jenis Sikap", "Indikator", "Nilai", "Semester", "Tahun Ajaran", "Catatan Wali Kelas"}
)
