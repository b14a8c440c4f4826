package report

import (
	"math"

	"github.com/campusflow/campusflow/core/assessment"
	"github.com/campusflow/campusflow/core/attendance"
)

type (
	// GroupView is one assessment group's totals on the back of a report card.
	GroupView struct {
		Group      string  `json:"group"`
		Obtained   float64 `json:"obtained"`
		Max        float64 `json:"max"`
		Percentage int     `json:"percentage"`
	}

	// FrontView is the header side of a rendered report card.
	FrontView struct {
		StudentName          string `json:"student_name"`
		AdmissionID          string `json:"admission_id"`
		ClassName            string `json:"class_name"`
		SchoolName           string `json:"school_name"`
		AcademicYear         string `json:"academic_year"`
		Term                 string `json:"term"`
		AttendancePercentage int    `json:"attendance_percentage"`
		FinalGrade           string `json:"final_grade"`
	}

	// BackView is the marks side of a rendered report card.
	BackView struct {
		Formative    []GroupView `json:"formative"`
		Summative    []GroupView `json:"summative"`
		Obtained     float64     `json:"obtained"`
		Max          float64     `json:"max"`
		Percentage   int         `json:"percentage"`
		OverallGrade string      `json:"overall_grade"`
	}

	// StudentInfo is the minimal header data a FrontView needs.
	StudentInfo struct {
		Name        string
		AdmissionID string
		ClassName   string
		SchoolName  string
	}
)

// GradeLetter maps an overall percentage to its grade band.
func GradeLetter(pct int) string {
	switch {
	case pct >= 90:
		return "A+"
	case pct >= 75:
		return "A"
	case pct >= 60:
		return "B"
	case pct >= 45:
		return "C"
	case pct >= 33:
		return "D"
	default:
		return "E"
	}
}

// BuildFrontView derives the front of a report card. Pure function.
func BuildFrontView(rc ReportCard, info StudentInfo) FrontView {
	att := attendance.Summarize([]attendance.MonthlyRecord{{
		DaysPresent:      rc.Attendance.PresentDays,
		TotalWorkingDays: rc.Attendance.WorkingDays,
	}})
	return FrontView{
		StudentName:          info.Name,
		AdmissionID:          info.AdmissionID,
		ClassName:            info.ClassName,
		SchoolName:           info.SchoolName,
		AcademicYear:         rc.AcademicYear,
		Term:                 rc.Term,
		AttendancePercentage: att.Percentage,
		FinalGrade:           rc.FinalGrade,
	}
}

// BuildBackView derives per-group and overall totals from a report card
// and its class's assessment scheme. Scores for tests missing from the
// scheme are ignored; tests without scores count toward the maximum.
// Pure function.
func BuildBackView(rc ReportCard, scheme assessment.Scheme) BackView {
	var view BackView
	view.Formative = buildGroupViews(rc.Formative, scheme)
	view.Summative = buildGroupViews(rc.Summative, scheme)

	for _, g := range view.Formative {
		view.Obtained += g.Obtained
		view.Max += g.Max
	}
	for _, g := range view.Summative {
		view.Obtained += g.Obtained
		view.Max += g.Max
	}
	view.Percentage = percentage(view.Obtained, view.Max)
	view.OverallGrade = GradeLetter(view.Percentage)
	return view
}

func buildGroupViews(results []GroupResult, scheme assessment.Scheme) []GroupView {
	views := make([]GroupView, 0, len(results))
	for _, res := range results {
		group, ok := scheme.Group(res.Group)
		if !ok {
			continue
		}
		var obtained float64
		for _, t := range group.Tests {
			if score, ok := res.Scores[t.Name]; ok {
				obtained += score
			}
		}
		max := group.MaxTotal()
		views = append(views, GroupView{
			Group:      res.Group,
			Obtained:   obtained,
			Max:        max,
			Percentage: percentage(obtained, max),
		})
	}
	return views
}

func percentage(obtained, max float64) int {
	if max <= 0 {
		return 0
	}
	return int(math.Round(obtained / max * 100))
}
