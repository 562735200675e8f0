package excel

import (
	"strings"

	"github.com/xuri/excelize/v2"
)

// NormalizeCell reads one cell as a scalar. Formulas yield their computed
// result, rich text yields the concatenated runs. ok is false when the cell
// is absent or empty.
func NormalizeCell(f *excelize.File, sheet, axis string) (string, bool) {
	raw := excelize.Options{RawCellValue: true}

	if formula, err := f.GetCellFormula(sheet, axis); err == nil && formula != "" {
		if v, err := f.CalcCellValue(sheet, axis, raw); err == nil && v != "" {
			return v, true
		}
		// Fall through to the cached result written by the spreadsheet application.
	}

	if runs, err := f.GetCellRichText(sheet, axis); err == nil && len(runs) > 0 {
		var b strings.Builder
		for _, run := range runs {
			b.WriteString(run.Text)
		}
		if b.Len() > 0 {
			return b.String(), true
		}
	}

	v, err := f.GetCellValue(sheet, axis, raw)
	if err != nil || v == "" {
		return "", false
	}
	return v, true
}

// mergeMasters maps every secondary cell of each merged range to the range's top-left cell.
func mergeMasters(f *excelize.File, sheet string) (map[string]string, int, error) {
	merges, err := f.GetMergeCells(sheet)
	if err != nil {
		return nil, 0, err
	}

	masters := make(map[string]string)
	lastRow := 0
	for _, mc := range merges {
		master := mc.GetStartAxis()
		startCol, startRow, err := excelize.CellNameToCoordinates(master)
		if err != nil {
			return nil, 0, err
		}
		endCol, endRow, err := excelize.CellNameToCoordinates(mc.GetEndAxis())
		if err != nil {
			return nil, 0, err
		}
		if endRow > lastRow {
			lastRow = endRow
		}
		for c := startCol; c <= endCol; c++ {
			for r := startRow; r <= endRow; r++ {
				axis, err := excelize.CoordinatesToCellName(c, r)
				if err != nil {
					return nil, 0, err
				}
				if axis != master {
					masters[axis] = master
				}
			}
		}
	}
	return masters, lastRow, nil
}
