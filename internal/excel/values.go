package excel

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
)

var academicYearPattern = regexp.MustCompile(`^\d{4}/\d{4}$`)

// ParseScore parses a score cell. Empty text yields nil. A comma is accepted
// as decimal separator when no dot is present.
func ParseScore(s string) (*float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	if !strings.Contains(s, ".") {
		s = strings.Replace(s, ",", ".", 1)
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return nil, fmt.Errorf("not a finite number")
	}
	return &v, nil
}

// ParseCount parses an attendance count. Empty text is 0; integral floats such as "3.0" are accepted.
func ParseCount(s string) (int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		f, ferr := strconv.ParseFloat(s, 64)
		if ferr != nil || f != math.Trunc(f) || math.IsInf(f, 0) {
			return 0, fmt.Errorf("not an integer")
		}
		n = int(f)
	}
	if n < 0 {
		return 0, fmt.Errorf("negative")
	}
	return n, nil
}

func ValidSemester(s string) bool {
	return s == "1" || s == "2"
}

func ValidAcademicYear(s string) bool {
	return academicYearPattern.MatchString(s)
}
