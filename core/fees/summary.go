package fees

import (
	"math"

	"github.com/campusflow/campusflow/core/school"
)

// Summary is the derived fee position of one student for one academic year.
type Summary struct {
	TotalFee         float64 `json:"total_fee"`
	TotalPaid        float64 `json:"total_paid"`
	TotalConcessions float64 `json:"total_concessions"`
	NetPayable       float64 `json:"net_payable"`
	TotalDue         float64 `json:"total_due"`
	PercentagePaid   int     `json:"percentage_paid"`
}

// Summarize computes a student's fee summary from the school's tuition
// schedule, the student's payment history and their concessions for one
// academic year. Pure function of its inputs.
//
// An unknown class name yields an all-zero summary. Over- and negative
// payments are not rejected here: the summary may report TotalDue = 0
// while PercentagePaid is capped at 100. That is deliberate policy; the
// raw records still carry the truth.
func Summarize(tuitionFees []school.ClassTuition, className string, payments []Payment, concessions []Concession) Summary {
	var totalFee float64
	for _, ct := range tuitionFees {
		if ct.ClassName == className {
			for _, term := range ct.Terms {
				totalFee += term.Amount
			}
			break
		}
	}

	var totalPaid float64
	for _, p := range payments {
		totalPaid += p.AmountPaid
	}

	var totalConcessions float64
	for _, c := range concessions {
		totalConcessions += c.Amount
	}

	netPayable := totalFee - totalConcessions
	totalDue := math.Max(0, totalFee-totalPaid-totalConcessions)

	var pct int
	if netPayable > 0 {
		pct = int(math.Round(totalPaid / netPayable * 100))
	} else if totalPaid > 0 {
		pct = 100
	}
	if pct > 100 {
		pct = 100
	} else if pct < 0 {
		pct = 0
	}

	return Summary{
		TotalFee:         totalFee,
		TotalPaid:        totalPaid,
		TotalConcessions: totalConcessions,
		NetPayable:       netPayable,
		TotalDue:         totalDue,
		PercentagePaid:   pct,
	}
}
