package ingest

import (
	"context"
	"fmt"
	"testing"

	"eraport-ingestion/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfirm_WritesEveryEntry(t *testing.T) {
	f := newFixture(t)
	agg := *fullAggregate()
	agg.Kehadiran = append(agg.Kehadiran, model.AttendanceEntry{Kegiatan: "Ro'an", Sakit: "1"})
	agg.Sikap = append(agg.Sikap, model.AttitudeEntry{JenisSikap: "Sosial", Indikator: "Santun"})
	agg.CatatanWali = "Ananda rajin"

	n, err := NewCommitter(f.store).Confirm(context.Background(), []model.StudentAggregate{agg})
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	exams := f.store.ExamGrades()
	require.Len(t, exams, 2)
	assert.Equal(t, f.mathID, exams[0].MapelID)
	assert.Equal(t, 85.0, *exams[0].Nilai)
	assert.Equal(t, f.periodID, exams[0].TahunAjaranID)
	assert.Nil(t, exams[1].Nilai)

	memorizations := f.store.MemorizationGrades()
	require.Len(t, memorizations, 1)
	assert.Equal(t, f.tahfidzID, memorizations[0].MapelID)
	assert.Equal(t, 88.5, *memorizations[0].Nilai)
	assert.Equal(t, "A", *memorizations[0].Predikat)

	attendances := f.store.Attendances()
	require.Len(t, attendances, 2)
	assert.Equal(t, f.sholatID, *attendances[0].IndikatorID)
	assert.Equal(t, 2, attendances[0].Alpha)
	assert.Nil(t, attendances[1].IndikatorID)
	assert.Equal(t, "Ro'an", attendances[1].Kegiatan)

	attitudes := f.store.Attitudes()
	require.Len(t, attitudes, 3)
	assert.Equal(t, f.khusyukID, *attitudes[0].IndikatorID)
	assert.Nil(t, attitudes[1].IndikatorID)
	assert.Equal(t, model.HomeroomNoteCategory, attitudes[2].JenisSikap)
	assert.Equal(t, "Ananda rajin", *attitudes[2].Deskripsi)
}

func TestConfirm_CreatesUnknownExamSubjectInCurriculum(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := NewCommitter(f.store).Confirm(ctx, []model.StudentAggregate{*fullAggregate()})
	require.NoError(t, err)

	curriculum, err := f.store.ListCurriculumSubjects(ctx, f.level)
	require.NoError(t, err)
	var names []string
	for _, s := range curriculum {
		names = append(names, s.Nama)
	}
	assert.Contains(t, names, "Bahasa Arab")
}

func TestConfirm_IsIdempotent(t *testing.T) {
	f := newFixture(t)
	c := NewCommitter(f.store)
	ctx := context.Background()

	_, err := c.Confirm(ctx, []model.StudentAggregate{validAggregate("1234", "70")})
	require.NoError(t, err)
	_, err = c.Confirm(ctx, []model.StudentAggregate{validAggregate("1234", "92")})
	require.NoError(t, err)

	exams := f.store.ExamGrades()
	require.Len(t, exams, 1)
	assert.Equal(t, 92.0, *exams[0].Nilai)
}

func TestConfirm_SkipsUnresolvedPeriodAndInvalidRows(t *testing.T) {
	f := newFixture(t)
	f.addStudent("5678", "Budi")
	f.addStudent("9012", "Citra")

	inactive := validAggregate("5678", "80")
	inactive.Semester = "2"
	unknownYear := validAggregate("9012", "80")
	unknownYear.TahunAjaran = "2030/2031"
	missing := validAggregate("0000", "80")

	n, err := NewCommitter(f.store).Confirm(context.Background(), []model.StudentAggregate{
		validAggregate("1234", "85"), inactive, unknownYear, missing,
	})
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Len(t, f.store.ExamGrades(), 1)
}

func TestConfirm_FatalErrorRollsBackEverything(t *testing.T) {
	f := newFixture(t)
	aggs := make([]model.StudentAggregate, 0, 10)
	for i := 1; i <= 10; i++ {
		nis := fmt.Sprintf("10%02d", i)
		f.addStudent(nis, "Siswa")
		aggs = append(aggs, validAggregate(nis, "75"))
	}
	store := &failingStore{DB: f.store, failAt: 5}

	n, err := NewCommitter(store).Confirm(context.Background(), aggs)
	require.ErrorIs(t, err, errConstraint)
	assert.Zero(t, n)
	assert.Empty(t, f.store.ExamGrades())
	assert.Equal(t, 5, store.calls)
}
