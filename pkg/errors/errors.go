package errors

import (
	"errors"
	"fmt"
)

var (
	ErrMissingFile          = errors.New("no file uploaded")
	ErrInvalidFileFormat    = errors.New("invalid file format")
	ErrNotFound             = errors.New("record not found")
	ErrStudentNotFound      = errors.New("student not found")
	ErrSubjectNotFound      = errors.New("subject not found")
	ErrMasterYearNotFound   = errors.New("academic year not found")
	ErrPeriodNotFound       = errors.New("active academic period not found")
	ErrIndicatorNotFound    = errors.New("indicator not found")
	ErrClassHistoryNotFound = errors.New("class history not found")
	ErrBatchNotFound        = errors.New("upload batch not found")
	ErrBatchLocked          = errors.New("upload batch is being confirmed")
)

type ValidationError struct {
	Field   string
	Value   interface{}
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s %q %s", e.Field, fmt.Sprint(e.Value), e.Message)
}
