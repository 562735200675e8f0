package ingest

import (
	"context"
	"errors"
	"fmt"

	"eraport-ingestion/internal/excel"
	"eraport-ingestion/internal/model"
	"eraport-ingestion/internal/resolver"
	pkgerrors "eraport-ingestion/pkg/errors"
)

// Result is the verdict on one aggregate plus the references found while checking it.
type Result struct {
	IsValid     bool
	Errors      []string
	SiswaID     *int64
	KelasID     *int64
	WaliKelasID *int64
}

// Validator checks aggregates against the upload rules. Every rule runs; the
// errors accumulate in rule order.
type Validator struct {
	resolver *resolver.Resolver
}

func NewValidator(res *resolver.Resolver) *Validator {
	return &Validator{resolver: res}
}

// Validate returns an error only when a lookup fails for a reason other than
// a missing record.
func (v *Validator) Validate(ctx context.Context, agg *model.StudentAggregate) (Result, error) {
	var res Result
	var errs []error

	student, err := v.resolver.Student(ctx, agg.NIS)
	switch {
	case err == nil:
		res.SiswaID = &student.ID
	case errors.Is(err, pkgerrors.ErrStudentNotFound):
		errs = append(errs, pkgerrors.ValidationError{Field: "NIS", Value: agg.NIS, Message: "student not found"})
	default:
		return res, err
	}

	var level *int64
	if student != nil {
		class, err := v.resolver.Class(ctx, student)
		if err != nil {
			return res, err
		}
		if class != nil {
			res.KelasID = &class.ID
			res.WaliKelasID = class.WaliKelasID
			level = class.TingkatanID
		}
	}

	for _, e := range agg.NilaiUjian {
		// Unknown exam subjects are created on commit.
		if _, err := excel.ParseScore(e.Nilai); err != nil {
			errs = append(errs, scoreError("Nilai Ujian "+e.MataPelajaran, e.Nilai))
		}
	}

	for _, e := range agg.NilaiHafalan {
		_, err := v.resolver.Subject(ctx, e.MataPelajaran, level)
		switch {
		case err == nil:
		case errors.Is(err, pkgerrors.ErrSubjectNotFound):
			errs = append(errs, pkgerrors.ValidationError{Field: "Mata Pelajaran Hafalan", Value: e.MataPelajaran, Message: "subject not found"})
		default:
			return res, err
		}
		if _, err := excel.ParseScore(e.Nilai); err != nil {
			errs = append(errs, scoreError("Nilai Hafalan "+e.MataPelajaran, e.Nilai))
		}
	}

	for _, e := range agg.Kehadiran {
		for _, c := range []struct{ name, value string }{{"Izin", e.Izin}, {"Sakit", e.Sakit}, {"Alpha", e.Alpha}} {
			if _, err := excel.ParseCount(c.value); err != nil {
				errs = append(errs, pkgerrors.ValidationError{
					Field:   fmt.Sprintf("Kehadiran %s %s", e.Kegiatan, c.name),
					Value:   c.value,
					Message: "must be a non-negative integer",
				})
			}
		}
	}

	for _, e := range agg.Sikap {
		if _, err := excel.ParseScore(e.Nilai); err != nil {
			errs = append(errs, scoreError("Nilai Sikap "+e.Indikator, e.Nilai))
		}
	}

	if !excel.ValidSemester(agg.Semester) {
		errs = append(errs, pkgerrors.ValidationError{Field: "Semester", Value: agg.Semester, Message: "must be 1 or 2"})
	}
	if !excel.ValidAcademicYear(agg.TahunAjaran) {
		errs = append(errs, pkgerrors.ValidationError{Field: "Tahun Ajaran", Value: agg.TahunAjaran, Message: "must match YYYY/YYYY"})
	}

	for _, err := range errs {
		res.Errors = append(res.Errors, err.Error())
	}
	res.IsValid = len(res.Errors) == 0
	return res, nil
}

func scoreError(field, value string) error {
	return pkgerrors.ValidationError{Field: field, Value: value, Message: "must be a number"}
}
