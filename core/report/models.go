package report

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/campusflow/campusflow/core"
)

type (
	// GroupResult is one assessment group's scores as stored on a report card.
	GroupResult struct {
		Group  string             `json:"group" bson:"group" validate:"required"`
		Scores map[string]float64 `json:"scores" bson:"scores"` // test name -> score
	}

	// TermAttendance is the attendance slice stored on a report card.
	TermAttendance struct {
		WorkingDays int `json:"working_days" bson:"workingDays" validate:"min=0"`
		PresentDays int `json:"present_days" bson:"presentDays" validate:"min=0"`
	}

	// ReportCard aggregates formative/summative marks, attendance and a
	// final grade for one (student, school, academic year, template, term).
	// That tuple is the natural key; the store enforces its uniqueness.
	ReportCard struct {
		ID           string         `json:"id" bson:"_id,omitempty"`
		StudentID    string         `json:"student_id" bson:"studentId"`
		SchoolID     string         `json:"school_id" bson:"schoolId"`
		AcademicYear string         `json:"academic_year" bson:"academicYear"`
		TemplateKey  string         `json:"template_key" bson:"templateKey"`
		Term         string         `json:"term" bson:"term"`
		ClassName    string         `json:"class_name,omitempty" bson:"className,omitempty"`
		Formative    []GroupResult  `json:"formative" bson:"formative"`
		Summative    []GroupResult  `json:"summative" bson:"summative"`
		Attendance   TermAttendance `json:"attendance" bson:"attendance"`
		FinalGrade   string         `json:"final_grade,omitempty" bson:"finalGrade,omitempty"`
		Remarks      string         `json:"remarks,omitempty" bson:"remarks,omitempty"`
		CreatedAt    time.Time      `json:"created_at" bson:"createdAt"`
		UpdatedAt    time.Time      `json:"updated_at" bson:"updatedAt"`
	}

	// Key is a report card's natural key.
	Key struct {
		StudentID    string `json:"student_id" query:"student_id" validate:"required,objectid"`
		SchoolID     string `json:"school_id" query:"school_id" validate:"required,objectid"`
		AcademicYear string `json:"academic_year" query:"academic_year" validate:"required,acadyear"`
		TemplateKey  string `json:"template_key" query:"template_key" validate:"required"`
		Term         string `json:"term" query:"term" validate:"required"`
	}
)

func (k *Key) Validate(validate *validator.Validate) error {
	k.TemplateKey = core.CleanString(k.TemplateKey)
	k.Term = core.CleanString(k.Term)
	return validate.Struct(k)
}

// UpsertReportCard carries the mutable report card fields to persist
// under a natural key.
type UpsertReportCard struct {
	Key        Key            `json:"key"`
	ClassName  string         `json:"class_name"`
	Formative  []GroupResult  `json:"formative" validate:"dive"`
	Summative  []GroupResult  `json:"summative" validate:"dive"`
	Attendance TermAttendance `json:"attendance"`
	FinalGrade string         `json:"final_grade"`
	Remarks    string         `json:"remarks"`
}

func (u *UpsertReportCard) Validate(validate *validator.Validate) error {
	u.Key.TemplateKey = core.CleanString(u.Key.TemplateKey)
	u.Key.Term = core.CleanString(u.Key.Term)
	u.ClassName = core.CleanString(u.ClassName)
	return validate.Struct(u)
}
