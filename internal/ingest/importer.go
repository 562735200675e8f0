package ingest

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"eraport-ingestion/internal/db"
	"eraport-ingestion/internal/excel"
	"eraport-ingestion/internal/logger"
	"eraport-ingestion/internal/model"
	"eraport-ingestion/internal/resolver"
	pkgerrors "eraport-ingestion/pkg/errors"

	"github.com/rs/zerolog"
)

// Importer runs the one-shot bulk import: every sheet is read row by row and
// written straight to the final tables, with no draft step. The class history
// decides which period a row lands in.
type Importer struct {
	store db.Store
	log   zerolog.Logger
}

func NewImporter(store db.Store) *Importer {
	return &Importer{store: store, log: logger.For("importer")}
}

// Run imports wb inside one transaction. Rows that cannot be resolved are
// counted as errors; a store error aborts and rolls back the whole import.
func (im *Importer) Run(ctx context.Context, wb *excel.Workbook, hints model.ImportHints) (model.ImportResults, error) {
	var results model.ImportResults
	err := im.store.WithTx(ctx, func(repo db.Repository) error {
		results = model.ImportResults{}
		run := &importRun{
			repo:  repo,
			res:   resolver.New(repo),
			hints: hints,
			notes: make(map[noteKey]bool),
			log:   im.log,
		}

		steps := []struct {
			sheet   string
			counter *model.SheetCounter
			handle  func(ctx context.Context, row excel.Row) (Outcome, error)
		}{
			{excel.SheetNilaiUjian, &results.NilaiUjian, run.exam},
			{excel.SheetHafalan, &results.Hafalan, run.memorization},
			{excel.SheetKehadiran, &results.Kehadiran, run.attendance},
			{excel.SheetSikap, &results.Sikap, run.attitude},
			{excel.SheetCatatanAkademik, &results.CatatanAkademik, run.note(model.NoteAkademik)},
			{excel.SheetCatatanSikap, &results.CatatanSikap, run.note(model.NoteSikap)},
		}

		for _, step := range steps {
			step := step
			err := wb.Walk(step.sheet, func(row excel.Row) error {
				outcome, err := step.handle(ctx, row)
				if err != nil {
					return err
				}
				tally(step.counter, outcome)
				if outcome.Kind == Invalid {
					im.log.Warn().Str("sheet", step.sheet).Int("row", row.Number).Str("reason", outcome.Reason).Msg("Row rejected")
				}
				return nil
			})
			if err != nil {
				return err
			}
			im.log.Info().Str("sheet", step.sheet).
				Int("success", step.counter.Success).
				Int("errors", step.counter.Errors).
				Int("skipped", step.counter.Skipped).
				Msg("Sheet imported")
		}
		return nil
	})
	if err != nil {
		im.log.Error().Err(err).Msg("Import rolled back")
		return model.ImportResults{}, err
	}
	return results, nil
}

type noteKey struct {
	siswaID  int64
	periodID int64
	semester string
}

// importRun holds the state of one Run: the transaction's repository and the
// resolver cache bound to it.
type importRun struct {
	repo  db.Repository
	res   *resolver.Resolver
	hints model.ImportHints
	notes map[noteKey]bool
	log   zerolog.Logger
}

// target picks the period and semester a student's row is written to. A
// matching class history overrides the sheet's year and semester; the
// request hints fill in what the sheet and history leave open.
func (r *importRun) target(ctx context.Context, student *model.Student, yearName, semester string) (int64, string, error) {
	var masterID int64
	if yearName != "" {
		if !excel.ValidAcademicYear(yearName) {
			return 0, "", pkgerrors.ValidationError{Field: "Tahun Ajaran", Value: yearName, Message: "must match YYYY/YYYY"}
		}
		master, err := r.res.MasterYear(ctx, yearName)
		switch {
		case err == nil:
			masterID = master.ID
		case !errors.Is(err, pkgerrors.ErrMasterYearNotFound):
			return 0, "", err
		}
	}
	if masterID == 0 && r.hints.MasterTahunAjaranID != nil {
		masterID = *r.hints.MasterTahunAjaranID
	}

	history, err := r.res.ClassHistory(ctx, student.ID, masterID, semester)
	switch {
	case err == nil:
		masterID = history.MasterTahunAjaranID
		semester = history.Semester
	case !errors.Is(err, pkgerrors.ErrClassHistoryNotFound):
		return 0, "", err
	}

	if !excel.ValidSemester(semester) {
		return 0, "", pkgerrors.ValidationError{Field: "Semester", Value: semester, Message: "must be 1 or 2"}
	}

	if masterID != 0 {
		period, err := r.res.ActivePeriod(ctx, masterID, semester)
		if err == nil {
			return period.ID, semester, nil
		}
		if !errors.Is(err, pkgerrors.ErrPeriodNotFound) || r.hints.TahunAjaranID == nil {
			return 0, "", err
		}
	}
	if r.hints.TahunAjaranID != nil {
		return *r.hints.TahunAjaranID, semester, nil
	}
	return 0, "", fmt.Errorf("%w: tahun ajaran %q semester %q", pkgerrors.ErrPeriodNotFound, yearName, semester)
}

func (r *importRun) exam(ctx context.Context, row excel.Row) (Outcome, error) {
	cols := excel.ExamColumns
	nis, name := row.Text(cols.NIS), row.Text(cols.MataPelajaran)
	if nis == "" || name == "" {
		return skipped("empty NIS or subject"), nil
	}

	student, err := r.res.Student(ctx, nis)
	if err != nil {
		return classify(err)
	}
	periodID, semester, err := r.target(ctx, student, row.Text(cols.TahunAjaran), row.Text(cols.Semester))
	if err != nil {
		return classify(err)
	}
	score, err := excel.ParseScore(row.Text(cols.Nilai))
	if err != nil {
		return invalid(scoreError("Nilai Ujian "+name, row.Text(cols.Nilai))), nil
	}
	level, err := r.res.GradeLevel(ctx, student)
	if err != nil {
		return Outcome{}, err
	}
	subject, _, err := r.res.ExamSubject(ctx, name, level)
	if err != nil {
		return classify(err)
	}

	err = r.repo.UpsertExamGrade(ctx, &model.ExamGrade{
		SiswaID:       student.ID,
		MapelID:       subject.ID,
		Kitab:         optional(row.Text(cols.Kitab)),
		Nilai:         score,
		Semester:      semester,
		TahunAjaranID: periodID,
	})
	if err != nil {
		return Outcome{}, err
	}
	return resolved(), nil
}

func (r *importRun) memorization(ctx context.Context, row excel.Row) (Outcome, error) {
	cols := excel.MemorizationColumns
	nis, name := row.Text(cols.NIS), row.Text(cols.MataPelajaran)
	if nis == "" || name == "" {
		return skipped("empty NIS or subject"), nil
	}

	student, err := r.res.Student(ctx, nis)
	if err != nil {
		return classify(err)
	}
	periodID, semester, err := r.target(ctx, student, row.Text(cols.TahunAjaran), row.Text(cols.Semester))
	if err != nil {
		return classify(err)
	}
	score, err := excel.ParseScore(row.Text(cols.Nilai))
	if err != nil {
		return invalid(scoreError("Nilai Hafalan "+name, row.Text(cols.Nilai))), nil
	}
	level, err := r.res.GradeLevel(ctx, student)
	if err != nil {
		return Outcome{}, err
	}
	subject, err := r.res.Subject(ctx, name, level)
	if err != nil {
		return classify(err)
	}

	err = r.repo.UpsertMemorizationGrade(ctx, &model.MemorizationGrade{
		SiswaID:       student.ID,
		MapelID:       subject.ID,
		Kitab:         optional(row.Text(cols.Kitab)),
		Nilai:         score,
		Predikat:      optional(row.Text(cols.Predikat)),
		Semester:      semester,
		TahunAjaranID: periodID,
	})
	if err != nil {
		return Outcome{}, err
	}
	return resolved(), nil
}

func (r *importRun) attendance(ctx context.Context, row excel.Row) (Outcome, error) {
	cols := excel.AttendanceColumns
	nis, activity := row.Text(cols.NIS), row.Text(cols.Kegiatan)
	if nis == "" || activity == "" {
		return skipped("empty NIS or activity"), nil
	}

	student, err := r.res.Student(ctx, nis)
	if err != nil {
		return classify(err)
	}
	periodID, semester, err := r.target(ctx, student, row.Text(cols.TahunAjaran), row.Text(cols.Semester))
	if err != nil {
		return classify(err)
	}
	indicator, err := r.res.AttendanceIndicator(ctx, activity)
	if err != nil {
		return classify(err)
	}

	counts := make(map[string]int, 3)
	var errs []error
	for _, c := range []struct{ name, col string }{{"Izin", cols.Izin}, {"Sakit", cols.Sakit}, {"Alpha", cols.Alpha}} {
		n, err := excel.ParseCount(row.Text(c.col))
		if err != nil {
			errs = append(errs, pkgerrors.ValidationError{
				Field:   fmt.Sprintf("Kehadiran %s %s", activity, c.name),
				Value:   row.Text(c.col),
				Message: "must be a non-negative integer",
			})
			continue
		}
		counts[c.name] = n
	}
	if len(errs) > 0 {
		return invalid(errs...), nil
	}

	err = r.repo.UpsertAttendance(ctx, &model.AttendanceRecord{
		SiswaID:       student.ID,
		IndikatorID:   &indicator.ID,
		Kegiatan:      activity,
		Izin:          counts["Izin"],
		Sakit:         counts["Sakit"],
		Alpha:         counts["Alpha"],
		Semester:      semester,
		TahunAjaranID: periodID,
	})
	if err != nil {
		return Outcome{}, err
	}
	return resolved(), nil
}

func (r *importRun) attitude(ctx context.Context, row excel.Row) (Outcome, error) {
	cols := excel.AttitudeColumns
	nis, category, text := row.Text(cols.NIS), row.Text(cols.JenisSikap), row.Text(cols.Indikator)
	if nis == "" || category == "" || text == "" {
		return skipped("empty NIS, category or indicator"), nil
	}

	student, err := r.res.Student(ctx, nis)
	if err != nil {
		return classify(err)
	}
	periodID, semester, err := r.target(ctx, student, row.Text(cols.TahunAjaran), row.Text(cols.Semester))
	if err != nil {
		return classify(err)
	}
	indicator, err := r.res.AttitudeIndicator(ctx, category, text)
	if err != nil {
		return classify(err)
	}
	score, err := excel.ParseScore(row.Text(cols.Nilai))
	if err != nil {
		return invalid(scoreError("Nilai Sikap "+text, row.Text(cols.Nilai))), nil
	}

	err = r.repo.UpsertAttitude(ctx, &model.AttitudeRecord{
		SiswaID:       student.ID,
		IndikatorID:   &indicator.ID,
		JenisSikap:    category,
		Indikator:     text,
		Nilai:         score,
		Semester:      semester,
		TahunAjaranID: periodID,
	})
	if err != nil {
		return Outcome{}, err
	}

	// A merged note column repeats the same text on every row of the student.
	key := noteKey{siswaID: student.ID, periodID: periodID, semester: semester}
	if note := row.Text(cols.CatatanWali); note != "" && !r.notes[key] {
		if err := r.repo.UpsertAttitude(ctx, homeroomNote(student.ID, note, semester, periodID)); err != nil {
			return Outcome{}, err
		}
		r.notes[key] = true
	}
	return resolved(), nil
}

// note imports "Catatan Akademik" or "Catatan Sikap" into the class history
// row chosen by the history priority rules.
func (r *importRun) note(kind model.NoteKind) func(ctx context.Context, row excel.Row) (Outcome, error) {
	return func(ctx context.Context, row excel.Row) (Outcome, error) {
		cols := excel.NoteColumns
		idText, text := row.Text(cols.SiswaID), row.Text(cols.Catatan)
		if idText == "" || text == "" {
			return skipped("empty student id or note"), nil
		}

		siswaID, err := strconv.ParseInt(idText, 10, 64)
		if err != nil {
			return invalid(pkgerrors.ValidationError{Field: "Siswa ID", Value: idText, Message: "must be an integer"}), nil
		}
		if _, err := r.res.StudentByID(ctx, siswaID); err != nil {
			return classify(err)
		}

		var masterID int64
		if r.hints.MasterTahunAjaranID != nil {
			masterID = *r.hints.MasterTahunAjaranID
		}
		history, err := r.res.ClassHistory(ctx, siswaID, masterID, row.Text(cols.Semester))
		if err != nil {
			return classify(err)
		}

		if err := r.repo.UpdateClassHistoryNote(ctx, history.ID, kind, text); err != nil {
			return Outcome{}, err
		}
		return resolved(), nil
	}
}
