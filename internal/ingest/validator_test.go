package ingest

import (
	"context"
	"testing"

	"eraport-ingestion/internal/model"
	"eraport-ingestion/internal/resolver"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fullAggregate() *model.StudentAggregate {
	return &model.StudentAggregate{
		NIS:         "1234",
		Nama:        "Ahmad",
		RowNumber:   2,
		Semester:    "1",
		TahunAjaran: "2025/2026",
		NilaiUjian: []model.ExamEntry{
			{MataPelajaran: "Matematika", Nilai: "85"},
			{MataPelajaran: "Bahasa Arab", Nilai: ""},
		},
		NilaiHafalan: []model.MemorizationEntry{
			{MataPelajaran: "tahfidz", Kitab: "Juz 30", Nilai: "88,5", Predikat: "A"},
		},
		Kehadiran: []model.AttendanceEntry{
			{Kegiatan: "Sholat Berjamaah", Izin: "1", Sakit: "", Alpha: "2.0"},
		},
		Sikap: []model.AttitudeEntry{
			{JenisSikap: "Spiritual", Indikator: "Khusyuk", Nilai: "4"},
		},
	}
}

func TestValidate_AllRulesPass(t *testing.T) {
	f := newFixture(t)
	v := NewValidator(resolver.New(f.store))

	res, err := v.Validate(context.Background(), fullAggregate())
	require.NoError(t, err)
	assert.True(t, res.IsValid)
	assert.Empty(t, res.Errors)
	require.NotNil(t, res.SiswaID)
	assert.Equal(t, f.studentID, *res.SiswaID)
	require.NotNil(t, res.KelasID)
	assert.Equal(t, f.classID, *res.KelasID)
	require.NotNil(t, res.WaliKelasID)
	assert.Equal(t, f.waliID, *res.WaliKelasID)
}

func TestValidate_SingleRuleFailure(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(a *model.StudentAggregate)
		want   string
	}{
		{"unknown student", func(a *model.StudentAggregate) { a.NIS = "9999" }, `NIS "9999" student not found`},
		{"unknown memorization subject", func(a *model.StudentAggregate) { a.NilaiHafalan[0].MataPelajaran = "Nahwu" }, `Mata Pelajaran Hafalan "Nahwu" subject not found`},
		{"exam score", func(a *model.StudentAggregate) { a.NilaiUjian[0].Nilai = "delapan" }, `Nilai Ujian Matematika "delapan" must be a number`},
		{"memorization score", func(a *model.StudentAggregate) { a.NilaiHafalan[0].Nilai = "NaN" }, `Nilai Hafalan tahfidz "NaN" must be a number`},
		{"attitude score", func(a *model.StudentAggregate) { a.Sikap[0].Nilai = "baik" }, `Nilai Sikap Khusyuk "baik" must be a number`},
		{"negative count", func(a *model.StudentAggregate) { a.Kehadiran[0].Sakit = "-1" }, `Kehadiran Sholat Berjamaah Sakit "-1" must be a non-negative integer`},
		{"fractional count", func(a *model.StudentAggregate) { a.Kehadiran[0].Izin = "1.5" }, `Kehadiran Sholat Berjamaah Izin "1.5" must be a non-negative integer`},
		{"semester", func(a *model.StudentAggregate) { a.Semester = "3" }, `Semester "3" must be 1 or 2`},
		{"empty semester", func(a *model.StudentAggregate) { a.Semester = "" }, `Semester "" must be 1 or 2`},
		{"academic year", func(a *model.StudentAggregate) { a.TahunAjaran = "2025-2026" }, `Tahun Ajaran "2025-2026" must match YYYY/YYYY`},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := newFixture(t)
			v := NewValidator(resolver.New(f.store))
			agg := fullAggregate()
			tc.mutate(agg)

			res, err := v.Validate(context.Background(), agg)
			require.NoError(t, err)
			assert.False(t, res.IsValid)
			assert.Equal(t, []string{tc.want}, res.Errors)
		})
	}
}

func TestValidate_ErrorsAccumulate(t *testing.T) {
	f := newFixture(t)
	v := NewValidator(resolver.New(f.store))
	agg := fullAggregate()
	agg.NIS = "0000"
	agg.Semester = "3"
	agg.TahunAjaran = "25/26"

	res, err := v.Validate(context.Background(), agg)
	require.NoError(t, err)
	assert.False(t, res.IsValid)
	assert.Len(t, res.Errors, 3)
	assert.Nil(t, res.SiswaID)
}

func TestValidate_UnknownStudentUsesGlobalSubjects(t *testing.T) {
	f := newFixture(t)
	v := NewValidator(resolver.New(f.store))
	agg := fullAggregate()
	agg.NIS = "0000"

	res, err := v.Validate(context.Background(), agg)
	require.NoError(t, err)
	assert.Equal(t, []string{`NIS "0000" student not found`}, res.Errors)
}
