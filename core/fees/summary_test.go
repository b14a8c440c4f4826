package fees

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/campusflow/campusflow/core/school"
)

func tuition(className string, amounts ...float64) []school.ClassTuition {
	terms := make([]school.Term, 0, len(amounts))
	for _, a := range amounts {
		terms = append(terms, school.Term{Amount: a})
	}
	return []school.ClassTuition{{ClassName: className, Terms: terms}}
}

func payments(amounts ...float64) []Payment {
	ps := make([]Payment, 0, len(amounts))
	for _, a := range amounts {
		ps = append(ps, Payment{AmountPaid: a})
	}
	return ps
}

func concessions(amounts ...float64) []Concession {
	cs := make([]Concession, 0, len(amounts))
	for _, a := range amounts {
		cs = append(cs, Concession{Amount: a})
	}
	return cs
}

func TestSummarize(t *testing.T) {
	tests := []struct {
		name        string
		tuition     []school.ClassTuition
		className   string
		payments    []Payment
		concessions []Concession
		want        Summary
	}{
		{
			name:        "reference scenario",
			tuition:     tuition("5", 1000, 500),
			className:   "5",
			payments:    payments(900),
			concessions: concessions(100),
			want: Summary{
				TotalFee:         1500,
				TotalPaid:        900,
				TotalConcessions: 100,
				NetPayable:       1400,
				TotalDue:         500,
				PercentagePaid:   64, // round(900/1400*100)
			},
		},
		{
			name:      "unknown class name contributes no fee",
			tuition:   tuition("5", 1000),
			className: "6",
			payments:  payments(250),
			want:      Summary{TotalPaid: 250, NetPayable: 0, PercentagePaid: 100},
		},
		{
			name:      "no records at all",
			tuition:   nil,
			className: "5",
			want:      Summary{},
		},
		{
			name:      "overpayment caps percentage at 100",
			tuition:   tuition("5", 1000),
			className: "5",
			payments:  payments(2500),
			want: Summary{
				TotalFee:       1000,
				TotalPaid:      2500,
				NetPayable:     1000,
				TotalDue:       0,
				PercentagePaid: 100,
			},
		},
		{
			name:        "concessions exceed fee",
			tuition:     tuition("5", 1000),
			className:   "5",
			payments:    payments(100),
			concessions: concessions(1200),
			want: Summary{
				TotalFee:         1000,
				TotalPaid:        100,
				TotalConcessions: 1200,
				NetPayable:       -200,
				TotalDue:         0,
				PercentagePaid:   100, // netPayable <= 0 but something was paid
			},
		},
		{
			name:        "fully concessioned, nothing paid",
			tuition:     tuition("5", 1000),
			className:   "5",
			concessions: concessions(1000),
			want: Summary{
				TotalFee:         1000,
				TotalConcessions: 1000,
			},
		},
		{
			name:      "negative payment is not rejected",
			tuition:   tuition("5", 1000),
			className: "5",
			payments:  payments(-200),
			want: Summary{
				TotalFee:       1000,
				TotalPaid:      -200,
				NetPayable:     1000,
				TotalDue:       1200,
				PercentagePaid: 0, // clamped from -20
			},
		},
		{
			name:      "exact payment",
			tuition:   tuition("5", 750, 750),
			className: "5",
			payments:  payments(750, 750),
			want: Summary{
				TotalFee:       1500,
				TotalPaid:      1500,
				NetPayable:     1500,
				TotalDue:       0,
				PercentagePaid: 100,
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Summarize(tt.tuition, tt.className, tt.payments, tt.concessions)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSummarize_totalDueNeverNegative(t *testing.T) {
	for _, paid := range []float64{0, 100, 1000, 1500, 10000} {
		for _, conc := range []float64{0, 500, 1500} {
			got := Summarize(tuition("5", 1000, 500), "5", payments(paid), concessions(conc))
			assert.GreaterOrEqual(t, got.TotalDue, 0.0)
			assert.GreaterOrEqual(t, got.PercentagePaid, 0)
			assert.LessOrEqual(t, got.PercentagePaid, 100)
		}
	}
}
