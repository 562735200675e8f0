package ingest

import (
	"context"
	"errors"
	"fmt"

	"eraport-ingestion/internal/db"
	"eraport-ingestion/internal/excel"
	"eraport-ingestion/internal/logger"
	"eraport-ingestion/internal/model"
	"eraport-ingestion/internal/resolver"
	pkgerrors "eraport-ingestion/pkg/errors"

	"github.com/rs/zerolog"
)

// Committer writes client-approved aggregates to the final tables. The
// academic period comes from the aggregate's own year and semester.
type Committer struct {
	store db.Store
	log   zerolog.Logger
}

func NewCommitter(store db.Store) *Committer {
	return &Committer{store: store, log: logger.For("committer")}
}

// Confirm commits every aggregate in one transaction and returns how many
// were written. Aggregates that fail validation again, or whose period
// cannot be resolved, are skipped. A store error rolls back all of them.
func (c *Committer) Confirm(ctx context.Context, aggs []model.StudentAggregate) (int, error) {
	var processed int
	err := c.store.WithTx(ctx, func(repo db.Repository) error {
		processed = 0
		res := resolver.New(repo)
		validator := NewValidator(res)

		for i := range aggs {
			agg := &aggs[i]
			log := c.log.With().Str("nis", agg.NIS).Int("row", agg.RowNumber).Logger()

			outcome, err := c.commit(ctx, repo, res, validator, agg)
			if err != nil {
				log.Error().Err(err).Msg("Commit failed, rolling back")
				return fmt.Errorf("failed to commit NIS %s: %w", agg.NIS, err)
			}

			switch outcome.Kind {
			case Resolved:
				processed++
			case Skipped:
				log.Warn().Str("reason", outcome.Reason).Msg("Student skipped")
			case Invalid:
				log.Warn().Strs("errors", outcome.Errors).Msg("Student no longer valid, skipped")
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	c.log.Info().Int("received", len(aggs)).Int("processed", processed).Msg("Confirm committed")
	return processed, nil
}

func (c *Committer) commit(ctx context.Context, repo db.Repository, res *resolver.Resolver, validator *Validator, agg *model.StudentAggregate) (Outcome, error) {
	verdict, err := validator.Validate(ctx, agg)
	if err != nil {
		return Outcome{}, err
	}
	if !verdict.IsValid {
		return Outcome{Kind: Invalid, Errors: verdict.Errors}, nil
	}

	period, err := res.Period(ctx, agg.TahunAjaran, agg.Semester)
	if err != nil {
		if errors.Is(err, pkgerrors.ErrMasterYearNotFound) || errors.Is(err, pkgerrors.ErrPeriodNotFound) {
			return skipped(err.Error()), nil
		}
		return Outcome{}, err
	}

	student, err := res.Student(ctx, agg.NIS)
	if err != nil {
		return Outcome{}, err
	}
	level, err := res.GradeLevel(ctx, student)
	if err != nil {
		return Outcome{}, err
	}
	semester := agg.Semester

	for _, e := range agg.NilaiUjian {
		subject, _, err := res.ExamSubject(ctx, e.MataPelajaran, level)
		if err != nil {
			return Outcome{}, err
		}
		score, _ := excel.ParseScore(e.Nilai)
		err = repo.UpsertExamGrade(ctx, &model.ExamGrade{
			SiswaID:       student.ID,
			MapelID:       subject.ID,
			Kitab:         optional(e.Kitab),
			Nilai:         score,
			Semester:      semester,
			TahunAjaranID: period.ID,
		})
		if err != nil {
			return Outcome{}, err
		}
	}

	for _, e := range agg.NilaiHafalan {
		subject, err := res.Subject(ctx, e.MataPelajaran, level)
		if err != nil {
			return Outcome{}, err
		}
		score, _ := excel.ParseScore(e.Nilai)
		err = repo.UpsertMemorizationGrade(ctx, &model.MemorizationGrade{
			SiswaID:       student.ID,
			MapelID:       subject.ID,
			Kitab:         optional(e.Kitab),
			Nilai:         score,
			Predikat:      optional(e.Predikat),
			Semester:      semester,
			TahunAjaranID: period.ID,
		})
		if err != nil {
			return Outcome{}, err
		}
	}

	for _, e := range agg.Kehadiran {
		var indicatorID *int64
		indicator, err := res.AttendanceIndicator(ctx, e.Kegiatan)
		switch {
		case err == nil:
			indicatorID = &indicator.ID
		case !errors.Is(err, pkgerrors.ErrIndicatorNotFound):
			return Outcome{}, err
		}
		izin, _ := excel.ParseCount(e.Izin)
		sakit, _ := excel.ParseCount(e.Sakit)
		alpha, _ := excel.ParseCount(e.Alpha)
		err = repo.UpsertAttendance(ctx, &model.AttendanceRecord{
			SiswaID:       student.ID,
			IndikatorID:   indicatorID,
			Kegiatan:      e.Kegiatan,
			Izin:          izin,
			Sakit:         sakit,
			Alpha:         alpha,
			Semester:      semester,
			TahunAjaranID: period.ID,
		})
		if err != nil {
			return Outcome{}, err
		}
	}

	for _, e := range agg.Sikap {
		var indicatorID *int64
		indicator, err := res.AttitudeIndicator(ctx, e.JenisSikap, e.Indikator)
		switch {
		case err == nil:
			indicatorID = &indicator.ID
		case !errors.Is(err, pkgerrors.ErrIndicatorNotFound):
			return Outcome{}, err
		}
		score, _ := excel.ParseScore(e.Nilai)
		err = repo.UpsertAttitude(ctx, &model.AttitudeRecord{
			SiswaID:       student.ID,
			IndikatorID:   indicatorID,
			JenisSikap:    e.JenisSikap,
			Indikator:     e.Indikator,
			Nilai:         score,
			Semester:      semester,
			TahunAjaranID: period.ID,
		})
		if err != nil {
			return Outcome{}, err
		}
	}

	if agg.CatatanWali != "" {
		if err := repo.UpsertAttitude(ctx, homeroomNote(student.ID, agg.CatatanWali, semester, period.ID)); err != nil {
			return Outcome{}, err
		}
	}

	return resolved(), nil
}
