package memdb

import (
	"context"
	"fmt"
	"sort"
	"time"

	"eraport-ingestion/internal/model"

	"gopkg.in/yaml.v3"
)

// The Add helpers insert reference data and return the assigned id.

func (d *DB) AddGradeLevel() int64 {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.t.id()
}

func (d *DB) AddClass(c model.Class) int64 {
	d.mu.Lock()
	defer d.mu.Unlock()
	c.ID = d.t.id()
	d.t.classes[c.ID] = c
	return c.ID
}

func (d *DB) AddStudent(s model.Student) int64 {
	d.mu.Lock()
	defer d.mu.Unlock()
	s.ID = d.t.id()
	d.t.students[s.ID] = s
	return s.ID
}

func (d *DB) AddSubject(name string, tingkatanIDs ...int64) int64 {
	d.mu.Lock()
	defer d.mu.Unlock()
	s := model.Subject{ID: d.t.id(), Nama: name}
	d.t.subjects[s.ID] = s
	for _, t := range tingkatanIDs {
		if d.t.curriculum[t] == nil {
			d.t.curriculum[t] = make(map[int64]bool)
		}
		d.t.curriculum[t][s.ID] = true
	}
	return s.ID
}

func (d *DB) AddMasterYear(name string) int64 {
	d.mu.Lock()
	defer d.mu.Unlock()
	m := model.MasterAcademicYear{ID: d.t.id(), Nama: name}
	d.t.masters[m.ID] = m
	return m.ID
}

func (d *DB) AddPeriod(masterID int64, semester string, active bool) int64 {
	d.mu.Lock()
	defer d.mu.Unlock()
	p := model.AcademicPeriod{ID: d.t.id(), MasterTahunAjaranID: masterID, Semester: semester, IsActive: active}
	d.t.periods[p.ID] = p
	return p.ID
}

func (d *DB) AddClassHistory(h model.ClassHistory) int64 {
	d.mu.Lock()
	defer d.mu.Unlock()
	h.ID = d.t.id()
	if h.CreatedAt.IsZero() {
		h.CreatedAt = d.now()
	}
	d.t.histories[h.ID] = h
	return h.ID
}

func (d *DB) AddAttendanceIndicator(name string) int64 {
	d.mu.Lock()
	defer d.mu.Unlock()
	i := model.AttendanceIndicator{ID: d.t.id(), Nama: name}
	d.t.attendanceIndicators[i.ID] = i
	return i.ID
}

func (d *DB) AddAttitudeIndicator(jenisSikap, indikator string) int64 {
	d.mu.Lock()
	defer d.mu.Unlock()
	i := model.AttitudeIndicator{ID: d.t.id(), JenisSikap: jenisSikap, Indikator: indikator}
	d.t.attitudeIndicators[i.ID] = i
	return i.ID
}

// Snapshots of the final tables, ordered by id.

func (d *DB) ExamGrades() []model.ExamGrade {
	d.mu.Lock()
	defer d.mu.Unlock()
	return sortedValues(d.t.exams, func(g model.ExamGrade) int64 { return g.ID })
}

func (d *DB) MemorizationGrades() []model.MemorizationGrade {
	d.mu.Lock()
	defer d.mu.Unlock()
	return sortedValues(d.t.memorizations, func(g model.MemorizationGrade) int64 { return g.ID })
}

func (d *DB) Attendances() []model.AttendanceRecord {
	d.mu.Lock()
	defer d.mu.Unlock()
	return sortedValues(d.t.attendances, func(r model.AttendanceRecord) int64 { return r.ID })
}

func (d *DB) Attitudes() []model.AttitudeRecord {
	d.mu.Lock()
	defer d.mu.Unlock()
	return sortedValues(d.t.attitudes, func(r model.AttitudeRecord) int64 { return r.ID })
}

func (d *DB) Subjects() []model.Subject {
	d.mu.Lock()
	defer d.mu.Unlock()
	return sortedValues(d.t.subjects, func(s model.Subject) int64 { return s.ID })
}

func (d *DB) ClassHistory(id int64) (model.ClassHistory, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	h, ok := d.t.histories[id]
	return h, ok
}

func sortedValues[V any](m map[int64]V, id func(V) int64) []V {
	out := make([]V, 0, len(m))
	for _, v := range m {
		out = append(out, v)
	}
	sort.Slice(out, func(i, j int) bool { return id(out[i]) < id(out[j]) })
	return out
}

// Seed is the yaml layout accepted by LoadSeed. Records refer to each other by name.
type Seed struct {
	AcademicYears []struct {
		Name           string   `yaml:"name"`
		ActiveSemester []string `yaml:"active_semesters"`
	} `yaml:"academic_years"`
	Classes []struct {
		Name       string   `yaml:"name"`
		GradeLevel string   `yaml:"grade_level"`
		Subjects   []string `yaml:"subjects"`
	} `yaml:"classes"`
	Students []struct {
		NIS          string `yaml:"nis"`
		Name         string `yaml:"name"`
		Class        string `yaml:"class"`
		AcademicYear string `yaml:"academic_year"`
		Semester     string `yaml:"semester"`
	} `yaml:"students"`
	AttendanceIndicators []string `yaml:"attendance_indicators"`
	AttitudeIndicators   []struct {
		Category  string `yaml:"category"`
		Indicator string `yaml:"indicator"`
	} `yaml:"attitude_indicators"`
}

// LoadSeed fills an empty store from yaml so the memory driver can serve a demo dataset.
func (d *DB) LoadSeed(data []byte) error {
	var seed Seed
	if err := yaml.Unmarshal(data, &seed); err != nil {
		return fmt.Errorf("failed to unmarshal seed: %w", err)
	}

	masters := make(map[string]int64)
	for _, y := range seed.AcademicYears {
		masters[y.Name] = d.AddMasterYear(y.Name)
		for _, sem := range []string{"1", "2"} {
			d.AddPeriod(masters[y.Name], sem, contains(y.ActiveSemester, sem))
		}
	}

	levels := make(map[string]int64)
	subjects := make(map[string]int64)
	classes := make(map[string]int64)
	for _, c := range seed.Classes {
		level, ok := levels[c.GradeLevel]
		if !ok {
			level = d.AddGradeLevel()
			levels[c.GradeLevel] = level
		}
		for _, name := range c.Subjects {
			if id, ok := subjects[name]; ok {
				if err := d.LinkCurriculumSubject(context.Background(), level, id); err != nil {
					return err
				}
				continue
			}
			subjects[name] = d.AddSubject(name, level)
		}
		lvl := level
		classes[c.Name] = d.AddClass(model.Class{Nama: c.Name, TingkatanID: &lvl})
	}

	for _, s := range seed.Students {
		student := model.Student{NIS: s.NIS, Nama: s.Name}
		classID, hasClass := classes[s.Class]
		if hasClass {
			student.KelasID = &classID
		}
		id := d.AddStudent(student)

		if masterID, ok := masters[s.AcademicYear]; ok && hasClass && s.Semester != "" {
			d.AddClassHistory(model.ClassHistory{
				SiswaID: id, KelasID: classID, MasterTahunAjaranID: masterID,
				Semester: s.Semester, CreatedAt: time.Now(),
			})
		}
	}

	for _, name := range seed.AttendanceIndicators {
		d.AddAttendanceIndicator(name)
	}
	for _, i := range seed.AttitudeIndicators {
		d.AddAttitudeIndicator(i.Category, i.Indicator)
	}
	return nil
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}
