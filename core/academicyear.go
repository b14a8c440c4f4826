package core

import (
	"regexp"
	"strconv"
	"time"

	"github.com/pkg/errors"
)

var (
	academicYearRegex = regexp.MustCompile(`^\d{4}-\d{4}$`)

	ErrBadAcademicYear = errors.New("academic year must be of form YYYY-YYYY")
)

// MonthSlot is one calendar month of an academic year.
// Month is 0-based (0 = January) to match the stored attendance records.
type MonthSlot struct {
	Month int    `json:"month"`
	Year  int    `json:"year"`
	Label string `json:"label"`
}

// AcademicYearMonths expands a "YYYY-YYYY" label into its 12 ordered
// month slots: June through December of the start year, then January
// through May of the end year. The label's years are taken as given;
// no endYear = startYear+1 check is applied.
func AcademicYearMonths(label string) ([]MonthSlot, error) {
	if !academicYearRegex.MatchString(label) {
		return nil, ErrBadAcademicYear
	}
	startYear, _ := strconv.Atoi(label[:4])
	endYear, _ := strconv.Atoi(label[5:])

	slots := make([]MonthSlot, 0, 12)
	for m := 5; m <= 11; m++ {
		slots = append(slots, newMonthSlot(m, startYear))
	}
	for m := 0; m <= 4; m++ {
		slots = append(slots, newMonthSlot(m, endYear))
	}
	return slots, nil
}

func newMonthSlot(month, year int) MonthSlot {
	return MonthSlot{
		Month: month,
		Year:  year,
		Label: time.Month(month+1).String() + " " + strconv.Itoa(year),
	}
}

// IsAcademicYear reports whether label is a well-formed "YYYY-YYYY" academic year.
func IsAcademicYear(label string) bool {
	return academicYearRegex.MatchString(label)
}
