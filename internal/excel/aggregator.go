package excel

import (
	"eraport-ingestion/internal/logger"
	"eraport-ingestion/internal/model"

	"github.com/rs/zerolog"
)

// AggregateSheets are walked in this order; semester and academic year are
// locked by the first sheet that supplies them.
var AggregateSheets = []string{SheetNilaiUjian, SheetHafalan, SheetKehadiran, SheetSikap}

// Aggregator merges the rows of the four template sheets into one
// StudentAggregate per NIS.
type Aggregator struct {
	byNIS   map[string]*model.StudentAggregate
	order   []*model.StudentAggregate
	skipped map[string]int
	log     zerolog.Logger
}

func NewAggregator() *Aggregator {
	return &Aggregator{
		byNIS:   make(map[string]*model.StudentAggregate),
		skipped: make(map[string]int),
		log:     logger.For("aggregator"),
	}
}

// Collect walks the template sheets of wb and returns the aggregates in order of first appearance.
func (a *Aggregator) Collect(wb *Workbook) ([]*model.StudentAggregate, error) {
	handlers := map[string]RowHandler{
		SheetNilaiUjian: a.addExam,
		SheetHafalan:    a.addMemorization,
		SheetKehadiran:  a.addAttendance,
		SheetSikap:      a.addAttitude,
	}

	for _, name := range AggregateSheets {
		if err := wb.Walk(name, handlers[name]); err != nil {
			return nil, err
		}
	}

	a.log.Info().Int("students", len(a.order)).Msg("Workbook aggregated")
	return a.order, nil
}

// Skipped reports how many rows of sheet lacked their key columns.
func (a *Aggregator) Skipped(sheet string) int {
	return a.skipped[sheet]
}

func (a *Aggregator) student(row Row, nis, nama string) *model.StudentAggregate {
	agg, ok := a.byNIS[nis]
	if !ok {
		agg = &model.StudentAggregate{NIS: nis, Nama: nama, RowNumber: row.Number}
		a.byNIS[nis] = agg
		a.order = append(a.order, agg)
	}
	if agg.Nama == "" {
		agg.Nama = nama
	}
	return agg
}

func (a *Aggregator) skip(row Row, reason string) error {
	a.skipped[row.Sheet().Name()]++
	a.log.Debug().Str("sheet", row.Sheet().Name()).Int("row", row.Number).Str("reason", reason).Msg("Row skipped")
	return nil
}

func (a *Aggregator) addExam(row Row) error {
	cols := ExamColumns
	nis := row.Text(cols.NIS)
	if nis == "" {
		return a.skip(row, "empty NIS")
	}
	subject := row.Text(cols.MataPelajaran)
	if subject == "" {
		return a.skip(row, "empty subject")
	}

	agg := a.student(row, nis, row.Text(cols.Nama))
	entry := model.ExamEntry{
		MataPelajaran: subject,
		Kitab:         row.Text(cols.Kitab),
		Nilai:         row.Text(cols.Nilai),
		Semester:      row.Text(cols.Semester),
		TahunAjaran:   row.Text(cols.TahunAjaran),
	}
	agg.NilaiUjian = append(agg.NilaiUjian, entry)
	agg.SetPeriod(entry.Semester, entry.TahunAjaran)
	return nil
}

func (a *Aggregator) addMemorization(row Row) error {
	cols := MemorizationColumns
	nis := row.Text(cols.NIS)
	if nis == "" {
		return a.skip(row, "empty NIS")
	}
	subject := row.Text(cols.MataPelajaran)
	if subject == "" {
		return a.skip(row, "empty subject")
	}

	agg := a.student(row, nis, row.Text(cols.Nama))
	entry := model.MemorizationEntry{
		MataPelajaran: subject,
		Kitab:         row.Text(cols.Kitab),
		Nilai:         row.Text(cols.Nilai),
		Predikat:      row.Text(cols.Predikat),
		Semester:      row.Text(cols.Semester),
		TahunAjaran:   row.Text(cols.TahunAjaran),
	}
	agg.NilaiHafalan = append(agg.NilaiHafalan, entry)
	agg.SetPeriod(entry.Semester, entry.TahunAjaran)
	return nil
}

func (a *Aggregator) addAttendance(row Row) error {
	cols := AttendanceColumns
	nis := row.Text(cols.NIS)
	if nis == "" {
		return a.skip(row, "empty NIS")
	}
	activity := row.Text(cols.Kegiatan)
	if activity == "" {
		return a.skip(row, "empty activity")
	}

	agg := a.student(row, nis, row.Text(cols.Nama))
	entry := model.AttendanceEntry{
		Kegiatan: activity,
		Izin:     row.Text(cols.Izin),
		Sakit:    row.Text(cols.Sakit),
		Alpha:    row.Text(cols.Alpha),
	}
	agg.Kehadiran = append(agg.Kehadiran, entry)
	agg.Rekap.Izin += lenientCount(entry.Izin)
	agg.Rekap.Sakit += lenientCount(entry.Sakit)
	agg.Rekap.Alpha += lenientCount(entry.Alpha)
	agg.SetPeriod(row.Text(cols.Semester), row.Text(cols.TahunAjaran))
	return nil
}

func (a *Aggregator) addAttitude(row Row) error {
	cols := AttitudeColumns
	nis := row.Text(cols.NIS)
	if nis == "" {
		return a.skip(row, "empty NIS")
	}
	category := row.Text(cols.JenisSikap)
	indicator := row.Text(cols.Indikator)
	if category == "" || indicator == "" {
		return a.skip(row, "empty attitude category or indicator")
	}

	agg := a.student(row, nis, row.Text(cols.Nama))
	agg.Sikap = append(agg.Sikap, model.AttitudeEntry{
		JenisSikap: category,
		Indikator:  indicator,
		Nilai:      row.Text(cols.Nilai),
	})
	// The note column is usually merged over all rows of one student.
	if agg.CatatanWali == "" {
		agg.CatatanWali = row.Text(cols.CatatanWali)
	}
	agg.SetPeriod(row.Text(cols.Semester), row.Text(cols.TahunAjaran))
	return nil
}

// lenientCount feeds the attendance summary only; validation reports bad counts.
func lenientCount(s string) int {
	n, err := ParseCount(s)
	if err != nil {
		return 0
	}
	return n
}
