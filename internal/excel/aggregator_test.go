package excel

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAggregator_MergesSheetsByNIS(t *testing.T) {
	f := buildFile(t, sheetRows{
		SheetNilaiUjian: {
			examHeader,
			{"1234", "Ahmad", "Matematika", "", 85, "1", "2025/2026"},
			{"1234", "Ahmad", "Fiqih", "Safinah", 90, "1", "2025/2026"},
			{"5678", "Budi", "Matematika", "", 70, "1", "2025/2026"},
		},
		SheetHafalan: {
			memorizeHeader,
			{"1234", "Ahmad", "Tahfidz", "Juz 30", 88, "A", "1", "2025/2026"},
		},
		SheetKehadiran: {
			attendanceHeader,
			{"1234", "Ahmad", "Sholat Berjamaah", 1, 2, 0, "1", "2025/2026"},
			{"1234", "Ahmad", "Mengaji", 0, 1, 3, "1", "2025/2026"},
		},
		SheetSikap: {
			attitudeHeader,
			{"1234", "Ahmad", "Spiritual", "Khusyuk", 4, "1", "2025/2026", "Ananda rajin"},
			{"1234", "Ahmad", "Sosial", "Santun", 3, "1", "2025/2026"},
		},
	})
	require.NoError(t, f.MergeCell(SheetSikap, "H2", "H3"))

	aggs, err := NewAggregator().Collect(FromFile(f))
	require.NoError(t, err)
	require.Len(t, aggs, 2)

	ahmad := aggs[0]
	assert.Equal(t, "1234", ahmad.NIS)
	assert.Equal(t, "Ahmad", ahmad.Nama)
	assert.Equal(t, 2, ahmad.RowNumber)
	assert.Len(t, ahmad.NilaiUjian, 2)
	assert.Equal(t, "Safinah", ahmad.NilaiUjian[1].Kitab)
	require.Len(t, ahmad.NilaiHafalan, 1)
	assert.Equal(t, "A", ahmad.NilaiHafalan[0].Predikat)
	assert.Len(t, ahmad.Kehadiran, 2)
	assert.Equal(t, 1, ahmad.Rekap.Izin)
	assert.Equal(t, 3, ahmad.Rekap.Sakit)
	assert.Equal(t, 3, ahmad.Rekap.Alpha)
	assert.Len(t, ahmad.Sikap, 2)
	assert.Equal(t, "Ananda rajin", ahmad.CatatanWali)
	assert.Equal(t, "1", ahmad.Semester)
	assert.Equal(t, "2025/2026", ahmad.TahunAjaran)

	assert.Equal(t, "5678", aggs[1].NIS)
	assert.Equal(t, 4, aggs[1].RowNumber)
}

func TestAggregator_FirstSheetLocksPeriod(t *testing.T) {
	f := buildFile(t, sheetRows{
		SheetNilaiUjian: {
			examHeader,
			{"1234", "Ahmad", "Matematika", "", 85, "1", "2025/2026"},
		},
		SheetKehadiran: {
			attendanceHeader,
			{"1234", "Ahmad", "Mengaji", 0, 1, 0, "2", "2026/2027"},
			{"9999", "Citra", "Mengaji", 0, 0, 0, "2", "2026/2027"},
		},
	})

	aggs, err := NewAggregator().Collect(FromFile(f))
	require.NoError(t, err)
	require.Len(t, aggs, 2)

	assert.Equal(t, "1", aggs[0].Semester)
	assert.Equal(t, "2025/2026", aggs[0].TahunAjaran)
	assert.Equal(t, "2", aggs[1].Semester)
	assert.Equal(t, "2026/2027", aggs[1].TahunAjaran)
}

func TestAggregator_LaterSheetFillsMissingPeriod(t *testing.T) {
	f := buildFile(t, sheetRows{
		SheetNilaiUjian: {
			examHeader,
			{"1234", "Ahmad", "Matematika", "", 85, "", ""},
		},
		SheetSikap: {
			attitudeHeader,
			{"1234", "Ahmad", "Spiritual", "Khusyuk", 4, "2", "2025/2026"},
		},
	})

	aggs, err := NewAggregator().Collect(FromFile(f))
	require.NoError(t, err)
	require.Len(t, aggs, 1)
	assert.Equal(t, "2", aggs[0].Semester)
	assert.Equal(t, "2025/2026", aggs[0].TahunAjaran)
}

func TestAggregator_SkipsRowsWithoutKeys(t *testing.T) {
	f := buildFile(t, sheetRows{
		SheetNilaiUjian: {
			examHeader,
			{"", "Tanpa NIS", "Matematika", "", 85, "1", "2025/2026"},
			{"1234", "Ahmad", "Matematika", "", 85, "1", "2025/2026"},
		},
		SheetKehadiran: {
			attendanceHeader,
			{"1234", "Ahmad", "", 1, 0, 0, "1", "2025/2026"},
		},
		SheetSikap: {
			attitudeHeader,
			{"1234", "Ahmad", "Spiritual", "", 4, "1", "2025/2026"},
		},
	})

	agg := NewAggregator()
	aggs, err := agg.Collect(FromFile(f))
	require.NoError(t, err)
	require.Len(t, aggs, 1)
	assert.Empty(t, aggs[0].Kehadiran)
	assert.Empty(t, aggs[0].Sikap)
	assert.Equal(t, 1, agg.Skipped(SheetNilaiUjian))
	assert.Equal(t, 1, agg.Skipped(SheetKehadiran))
	assert.Equal(t, 1, agg.Skipped(SheetSikap))
}
