package ingest

import (
	"errors"

	"eraport-ingestion/internal/model"
	pkgerrors "eraport-ingestion/pkg/errors"
)

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// isResolutionFailure reports whether err means a row could not be resolved
// or parsed, as opposed to a failing store.
func isResolutionFailure(err error) bool {
	var verr pkgerrors.ValidationError
	if errors.As(err, &verr) {
		return true
	}
	for _, target := range []error{
		pkgerrors.ErrNotFound,
		pkgerrors.ErrStudentNotFound,
		pkgerrors.ErrSubjectNotFound,
		pkgerrors.ErrMasterYearNotFound,
		pkgerrors.ErrPeriodNotFound,
		pkgerrors.ErrIndicatorNotFound,
		pkgerrors.ErrClassHistoryNotFound,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// classify turns a resolution failure into an Invalid outcome and passes any other error through.
func classify(err error) (Outcome, error) {
	if isResolutionFailure(err) {
		return invalid(err), nil
	}
	return Outcome{}, err
}

func homeroomNote(siswaID int64, note, semester string, periodID int64) *model.AttitudeRecord {
	return &model.AttitudeRecord{
		SiswaID:       siswaID,
		JenisSikap:    model.HomeroomNoteCategory,
		Indikator:     model.HomeroomNoteCategory,
		Deskripsi:     &note,
		Semester:      semester,
		TahunAjaranID: periodID,
	}
}

func tally(c *model.SheetCounter, o Outcome) {
	switch o.Kind {
	case Resolved:
		c.Success++
	case Skipped:
		c.Skipped++
	case Invalid:
		c.Errors++
	}
}
