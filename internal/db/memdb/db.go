// Package memdb is an in-memory db.Store. A transaction works on a copy of
// every table and replaces the live tables only when it commits.
package memdb

import (
	"context"
	"sync"
	"time"

	"eraport-ingestion/internal/db"
	"eraport-ingestion/internal/model"
)

type tables struct {
	nextID int64

	students             map[int64]model.Student
	classes              map[int64]model.Class
	subjects             map[int64]model.Subject
	curriculum           map[int64]map[int64]bool
	masters              map[int64]model.MasterAcademicYear
	periods              map[int64]model.AcademicPeriod
	histories            map[int64]model.ClassHistory
	attendanceIndicators map[int64]model.AttendanceIndicator
	attitudeIndicators   map[int64]model.AttitudeIndicator

	exams         map[int64]model.ExamGrade
	memorizations map[int64]model.MemorizationGrade
	attendances   map[int64]model.AttendanceRecord
	attitudes     map[int64]model.AttitudeRecord
	drafts        []model.DraftRow
}

func newTables() *tables {
	return &tables{
		students:             make(map[int64]model.Student),
		classes:              make(map[int64]model.Class),
		subjects:             make(map[int64]model.Subject),
		curriculum:           make(map[int64]map[int64]bool),
		masters:              make(map[int64]model.MasterAcademicYear),
		periods:              make(map[int64]model.AcademicPeriod),
		histories:            make(map[int64]model.ClassHistory),
		attendanceIndicators: make(map[int64]model.AttendanceIndicator),
		attitudeIndicators:   make(map[int64]model.AttitudeIndicator),
		exams:                make(map[int64]model.ExamGrade),
		memorizations:        make(map[int64]model.MemorizationGrade),
		attendances:          make(map[int64]model.AttendanceRecord),
		attitudes:            make(map[int64]model.AttitudeRecord),
	}
}

func (t *tables) id() int64 {
	t.nextID++
	return t.nextID
}

// clone copies the tables. Records are values; the pointer fields inside them
// are never mutated in place, so a shallow copy per record is enough.
func (t *tables) clone() *tables {
	c := newTables()
	c.nextID = t.nextID
	copyMap(c.students, t.students)
	copyMap(c.classes, t.classes)
	copyMap(c.subjects, t.subjects)
	for k, v := range t.curriculum {
		set := make(map[int64]bool, len(v))
		copyMap(set, v)
		c.curriculum[k] = set
	}
	copyMap(c.masters, t.masters)
	copyMap(c.periods, t.periods)
	copyMap(c.histories, t.histories)
	copyMap(c.attendanceIndicators, t.attendanceIndicators)
	copyMap(c.attitudeIndicators, t.attitudeIndicators)
	copyMap(c.exams, t.exams)
	copyMap(c.memorizations, t.memorizations)
	copyMap(c.attendances, t.attendances)
	copyMap(c.attitudes, t.attitudes)
	c.drafts = append([]model.DraftRow(nil), t.drafts...)
	return c
}

func copyMap[K comparable, V any](dst, src map[K]V) {
	for k, v := range src {
		dst[k] = v
	}
}

type repo struct {
	mu  *sync.Mutex
	t   *tables
	now func() time.Time
}

type DB struct {
	*repo
	mu sync.Mutex
}

func New() *DB {
	d := &DB{}
	d.repo = &repo{mu: &d.mu, t: newTables(), now: time.Now}
	return d
}

var _ db.Store = (*DB)(nil)

// WithTx holds the store lock for the whole transaction; fn must only use the repository it is given.
func (d *DB) WithTx(ctx context.Context, fn func(repo db.Repository) error) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	working := d.t.clone()
	tx := &repo{mu: &sync.Mutex{}, t: working, now: d.now}
	if err := fn(tx); err != nil {
		return err
	}

	d.t = working
	return nil
}
