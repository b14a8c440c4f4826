package attendance

import (
	"math"
	"strconv"
)

// Summary folds a list of monthly records into a single period.
type Summary struct {
	TotalWorkingDays int `json:"total_working_days"`
	DaysPresent      int `json:"days_present"`
	DaysAbsent       int `json:"days_absent"`
	// DaysLate exists in the data contract but no source populates it;
	// it is always 0.
	DaysLate   int `json:"days_late"`
	Percentage int `json:"percentage"`
}

// Summarize folds monthly attendance records into a single-period summary.
// Pure function of its inputs.
func Summarize(records []MonthlyRecord) Summary {
	var total, present int
	for _, r := range records {
		total += r.TotalWorkingDays
		present += r.DaysPresent
	}

	var pct int
	if total > 0 {
		pct = int(math.Round(float64(present) / float64(total) * 100))
	}

	return Summary{
		TotalWorkingDays: total,
		DaysPresent:      present,
		DaysAbsent:       total - present,
		Percentage:       pct,
	}
}

// RecordPercentage renders one record's attendance percentage for table
// views; months without working days show as "N/A".
func RecordPercentage(r MonthlyRecord) string {
	if r.TotalWorkingDays <= 0 {
		return "N/A"
	}
	pct := math.Round(float64(r.DaysPresent) / float64(r.TotalWorkingDays) * 100)
	return strconv.Itoa(int(pct)) + "%"
}
