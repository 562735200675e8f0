package excel

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"eraport-ingestion/internal/logger"
	"eraport-ingestion/pkg/errors"

	"github.com/rs/zerolog"
	"github.com/xuri/excelize/v2"
)

type Workbook struct {
	file *excelize.File
	log  zerolog.Logger
}

func OpenFile(path string) (*Workbook, error) {
	file, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errors.ErrInvalidFileFormat, err)
	}
	return &Workbook{file: file, log: logger.For("excel")}, nil
}

func OpenBytes(data []byte) (*Workbook, error) {
	file, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errors.ErrInvalidFileFormat, err)
	}
	return &Workbook{file: file, log: logger.For("excel")}, nil
}

// FromFile wraps an already opened excelize file.
func FromFile(file *excelize.File) *Workbook {
	return &Workbook{file: file, log: logger.For("excel")}
}

func (w *Workbook) Close() error {
	return w.file.Close()
}

func (w *Workbook) HasSheet(name string) bool {
	idx, err := w.file.GetSheetIndex(name)
	return err == nil && idx >= 0
}

// Sheet gives merge-aware access to one worksheet.
type Sheet struct {
	file    *excelize.File
	name    string
	masters map[string]string
	lastRow int
}

func (w *Workbook) Sheet(name string) (*Sheet, error) {
	masters, mergedLast, err := mergeMasters(w.file, name)
	if err != nil {
		return nil, fmt.Errorf("failed to read merged cells of %q: %w", name, err)
	}

	rows, err := w.file.GetRows(name)
	if err != nil {
		return nil, fmt.Errorf("failed to get rows of %q: %w", name, err)
	}

	lastRow := len(rows)
	if mergedLast > lastRow {
		lastRow = mergedLast
	}

	return &Sheet{file: w.file, name: name, masters: masters, lastRow: lastRow}, nil
}

func (s *Sheet) Name() string { return s.name }

// Value returns the normalized value at axis. Cells inside a merged range are
// read from the range's master cell.
func (s *Sheet) Value(axis string) (string, bool) {
	if master, ok := s.masters[axis]; ok {
		axis = master
	}
	return NormalizeCell(s.file, s.name, axis)
}

type Row struct {
	Number int
	sheet  *Sheet
}

func (r Row) Sheet() *Sheet { return r.sheet }

func (r Row) Value(col string) (string, bool) {
	return r.sheet.Value(col + strconv.Itoa(r.Number))
}

// Text is the trimmed value of column col, "" when absent.
func (r Row) Text(col string) string {
	v, _ := r.Value(col)
	return strings.TrimSpace(v)
}

type RowHandler func(row Row) error

// Walk calls handler for rows 2..N of the named sheet in sheet order. A
// missing sheet is logged and skipped. The first handler error stops the walk.
func (w *Workbook) Walk(name string, handler RowHandler) error {
	if !w.HasSheet(name) {
		w.log.Info().Str("sheet", name).Msg("Sheet not found, skipping")
		return nil
	}

	sheet, err := w.Sheet(name)
	if err != nil {
		return err
	}

	w.log.Debug().Str("sheet", name).Int("last_row", sheet.lastRow).Msg("Walking sheet")
	for n := 2; n <= sheet.lastRow; n++ {
		if err := handler(Row{Number: n, sheet: sheet}); err != nil {
			return fmt.Errorf("sheet %q row %d: %w", name, n, err)
		}
	}
	return nil
}
