package attendance

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/campusflow/campusflow/core"
)

// MonthlyRecord is one student's attendance for one calendar month.
// Month is 0-based (0 = January) to match the academic-year month slots.
type MonthlyRecord struct {
	ID               string    `json:"id" bson:"_id,omitempty"`
	StudentID        string    `json:"student_id" bson:"studentId"`
	SchoolID         string    `json:"school_id" bson:"schoolId"`
	ClassName        string    `json:"class_name,omitempty" bson:"className,omitempty"`
	Month            int       `json:"month" bson:"month"`
	Year             int       `json:"year" bson:"year"`
	DaysPresent      int       `json:"days_present" bson:"daysPresent"`
	TotalWorkingDays int       `json:"total_working_days" bson:"totalWorkingDays"`
	RecordedBy       string    `json:"recorded_by" bson:"recordedBy"`
	CreatedAt        time.Time `json:"created_at" bson:"createdAt"`
	UpdatedAt        time.Time `json:"updated_at" bson:"updatedAt"`
}

// NewRecord contains information needed to record one month of attendance.
// Re-recording the same (student, month, year) replaces the earlier entry.
type NewRecord struct {
	StudentID        string `json:"student_id" validate:"required,objectid"`
	SchoolID         string `json:"school_id" validate:"required,objectid"`
	ClassName        string `json:"class_name"`
	Month            int    `json:"month" validate:"min=0,max=11"`
	Year             int    `json:"year" validate:"required,min=2000,max=2200"`
	DaysPresent      int    `json:"days_present" validate:"min=0"`
	TotalWorkingDays int    `json:"total_working_days" validate:"min=0,gtefield=DaysPresent"`
}

func (nr *NewRecord) Validate(validate *validator.Validate) error {
	nr.ClassName = core.CleanString(nr.ClassName)
	return validate.Struct(nr)
}
