package school

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/campusflow/campusflow/core"
)

// School statuses; an inactive school gates login for everyone but superadmin.
const (
	StatusActive   = "active"
	StatusInactive = "inactive"
)

type (
	// Term is one installment of a class's tuition schedule.
	Term struct {
		Label  string  `json:"label,omitempty" bson:"label,omitempty"`
		Amount float64 `json:"amount" bson:"amount" validate:"gte=0"`
	}

	// ClassTuition is the tuition schedule for one class name.
	ClassTuition struct {
		ClassName string `json:"class_name" bson:"className" validate:"required"`
		Terms     []Term `json:"terms" bson:"terms" validate:"required,dive"`
	}

	// School is the tenant boundary; every entity below it carries its id.
	School struct {
		ID                 string         `json:"id" bson:"_id,omitempty"`
		Name               string         `json:"name" bson:"name"`
		Address            string         `json:"address,omitempty" bson:"address,omitempty"`
		Status             string         `json:"status" bson:"status"`
		ActiveAcademicYear string         `json:"active_academic_year" bson:"activeAcademicYear"`
		TuitionFees        []ClassTuition `json:"tuition_fees" bson:"tuitionFees"`
		CreatedAt          time.Time      `json:"created_at" bson:"createdAt"`
		UpdatedAt          time.Time      `json:"updated_at" bson:"updatedAt"`
	}

	// Class is one class/section of a school; its subject list guards
	// subject deletion.
	Class struct {
		ID         string    `json:"id" bson:"_id,omitempty"`
		SchoolID   string    `json:"school_id" bson:"schoolId"`
		Name       string    `json:"name" bson:"name"`
		Section    string    `json:"section,omitempty" bson:"section,omitempty"`
		SubjectIDs []string  `json:"subject_ids" bson:"subjectIds"`
		CreatedAt  time.Time `json:"created_at" bson:"createdAt"`
		UpdatedAt  time.Time `json:"updated_at" bson:"updatedAt"`
	}
)

func (s *School) IsActive() bool { return s.Status == StatusActive }

// TuitionForClass returns the tuition schedule matching className, if any.
func (s *School) TuitionForClass(className string) (ClassTuition, bool) {
	for _, ct := range s.TuitionFees {
		if ct.ClassName == className {
			return ct, true
		}
	}
	return ClassTuition{}, false
}

// NewSchool contains information needed to register a new School.
type NewSchool struct {
	Name               string `json:"name" validate:"required"`
	Address            string `json:"address"`
	ActiveAcademicYear string `json:"active_academic_year" validate:"required,acadyear"`
}

func (ns *NewSchool) Validate(validate *validator.Validate) error {
	ns.Name = core.CleanString(ns.Name)
	ns.Address = core.CleanString(ns.Address)
	return validate.Struct(ns)
}

// UpdateSchool defines what information may be provided to modify an existing School.
type UpdateSchool struct {
	Name               string `json:"name"`
	Address            string `json:"address"`
	Status             string `json:"status" validate:"omitempty,oneof=active inactive"`
	ActiveAcademicYear string `json:"active_academic_year" validate:"omitempty,acadyear"`
}

func (us *UpdateSchool) Validate(validate *validator.Validate) error {
	us.Name = core.CleanString(us.Name)
	us.Address = core.CleanString(us.Address)
	us.Status = core.CleanString(us.Status, true /* lower */)
	return validate.Struct(us)
}

// TuitionUpdate replaces a school's whole tuition schedule.
type TuitionUpdate struct {
	TuitionFees []ClassTuition `json:"tuition_fees" validate:"required,dive"`
}

func (tu *TuitionUpdate) Validate(validate *validator.Validate) error {
	return validate.Struct(tu)
}

// NewClass contains information needed to create a new Class.
type NewClass struct {
	SchoolID string `json:"school_id" validate:"required,objectid"`
	Name     string `json:"name" validate:"required"`
	Section  string `json:"section"`
}

func (nc *NewClass) Validate(validate *validator.Validate) error {
	nc.Name = core.CleanString(nc.Name)
	nc.Section = core.CleanString(nc.Section)
	return validate.Struct(nc)
}

// AssignSubjects replaces a class's subject list.
type AssignSubjects struct {
	SubjectIDs []string `json:"subject_ids" validate:"required,dive,objectid"`
}

func (as *AssignSubjects) Validate(validate *validator.Validate) error {
	return validate.Struct(as)
}
