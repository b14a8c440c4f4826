package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAcademicYearMonths(t *testing.T) {
	slots, err := AcademicYearMonths("2024-2025")
	assert.NoError(t, err)
	assert.Len(t, slots, 12)

	assert.Equal(t, MonthSlot{Month: 5, Year: 2024, Label: "June 2024"}, slots[0])
	assert.Equal(t, MonthSlot{Month: 11, Year: 2024, Label: "December 2024"}, slots[6])
	assert.Equal(t, MonthSlot{Month: 0, Year: 2025, Label: "January 2025"}, slots[7])
	assert.Equal(t, MonthSlot{Month: 4, Year: 2025, Label: "May 2025"}, slots[11])

	for i := 1; i < len(slots); i++ {
		prev, curr := slots[i-1], slots[i]
		if curr.Year == prev.Year {
			assert.Equal(t, prev.Month+1, curr.Month)
		} else {
			assert.Equal(t, 11, prev.Month)
			assert.Equal(t, 0, curr.Month)
		}
	}
}

func TestAcademicYearMonths_acceptsYearsAsGiven(t *testing.T) {
	// no startYear+1 arithmetic check
	slots, err := AcademicYearMonths("2024-2030")
	assert.NoError(t, err)
	assert.Equal(t, 2024, slots[0].Year)
	assert.Equal(t, 2030, slots[11].Year)
}

func TestAcademicYearMonths_badLabel(t *testing.T) {
	for _, label := range []string{"", "2024", "2024-25", "24-2025", "2024/2025", "2024-2025x"} {
		_, err := AcademicYearMonths(label)
		assert.Equal(t, ErrBadAcademicYear, err, label)
	}
}
