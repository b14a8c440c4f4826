package assessment

import (
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/campusflow/campusflow/core"
)

type (
	// Test is one graded component of an assessment group.
	Test struct {
		Name     string  `json:"name" bson:"name" validate:"required"`
		MaxMarks float64 `json:"max_marks" bson:"maxMarks" validate:"gt=0"`
	}

	// Group is one formative or summative assessment (FA1, SA2, ...).
	Group struct {
		Name  string `json:"name" bson:"name" validate:"required"`
		Tests []Test `json:"tests" bson:"tests" validate:"required,dive"`
	}

	// Scheme defines the assessment structure for one
	// (school, class name, academic year). Exactly one scheme exists per
	// key; first reads create it with the default structure.
	Scheme struct {
		ID           string    `json:"id" bson:"_id,omitempty"`
		SchoolID     string    `json:"school_id" bson:"schoolId"`
		ClassName    string    `json:"class_name" bson:"className"`
		AcademicYear string    `json:"academic_year" bson:"academicYear"`
		Groups       []Group   `json:"groups" bson:"groups"`
		CreatedAt    time.Time `json:"created_at" bson:"createdAt"`
		UpdatedAt    time.Time `json:"updated_at" bson:"updatedAt"`
	}

	// StudentMarks holds one student's scores for one assessment group.
	StudentMarks struct {
		ID           string             `json:"id" bson:"_id,omitempty"`
		StudentID    string             `json:"student_id" bson:"studentId"`
		SchoolID     string             `json:"school_id" bson:"schoolId"`
		ClassName    string             `json:"class_name" bson:"className"`
		AcademicYear string             `json:"academic_year" bson:"academicYear"`
		Group        string             `json:"group" bson:"group"`
		Scores       map[string]float64 `json:"scores" bson:"scores"` // test name -> score
		EnteredBy    string             `json:"entered_by" bson:"enteredBy"`
		CreatedAt    time.Time          `json:"created_at" bson:"createdAt"`
		UpdatedAt    time.Time          `json:"updated_at" bson:"updatedAt"`
	}
)

// Key is the scheme's natural key.
func (s *Scheme) Key() string {
	return s.SchoolID + "/" + s.ClassName + "/" + s.AcademicYear
}

// Group returns the named group, if present.
func (s *Scheme) Group(name string) (Group, bool) {
	for _, g := range s.Groups {
		if g.Name == name {
			return g, true
		}
	}
	return Group{}, false
}

// MaxTotal sums a group's maximum marks.
func (g Group) MaxTotal() float64 {
	var total float64
	for _, t := range g.Tests {
		total += t.MaxMarks
	}
	return total
}

// DefaultGroups is the structure schemes are created with on first read:
// FA1..FA4 each with Tool 1..3 (max 10) and Tool 4 (max 20), and SA1..SA2
// each with AS1..AS6 (max 20). The persisted shape must not drift.
func DefaultGroups() []Group {
	groups := make([]Group, 0, 6)
	for i := 1; i <= 4; i++ {
		groups = append(groups, Group{
			Name: fmt.Sprintf("FA%d", i),
			Tests: []Test{
				{Name: "Tool 1", MaxMarks: 10},
				{Name: "Tool 2", MaxMarks: 10},
				{Name: "Tool 3", MaxMarks: 10},
				{Name: "Tool 4", MaxMarks: 20},
			},
		})
	}
	for i := 1; i <= 2; i++ {
		tests := make([]Test, 0, 6)
		for j := 1; j <= 6; j++ {
			tests = append(tests, Test{Name: fmt.Sprintf("AS%d", j), MaxMarks: 20})
		}
		groups = append(groups, Group{Name: fmt.Sprintf("SA%d", i), Tests: tests})
	}
	return groups
}

// SchemeKey identifies a scheme to resolve.
type SchemeKey struct {
	SchoolID     string `json:"school_id" validate:"required,objectid"`
	ClassName    string `json:"class_name" validate:"required"`
	AcademicYear string `json:"academic_year" validate:"required,acadyear"`
}

func (k *SchemeKey) Validate(validate *validator.Validate) error {
	k.ClassName = core.CleanString(k.ClassName)
	return validate.Struct(k)
}

// UpdateScheme replaces a scheme's groups.
type UpdateScheme struct {
	Groups []Group `json:"groups" validate:"required,dive"`
}

func (us *UpdateScheme) Validate(validate *validator.Validate) error {
	return validate.Struct(us)
}

// SaveMarks upserts one student's scores for one assessment group.
type SaveMarks struct {
	StudentID    string             `json:"student_id" validate:"required,objectid"`
	SchoolID     string             `json:"school_id" validate:"required,objectid"`
	ClassName    string             `json:"class_name" validate:"required"`
	AcademicYear string             `json:"academic_year" validate:"required,acadyear"`
	Group        string             `json:"group" validate:"required"`
	Scores       map[string]float64 `json:"scores" validate:"required"`
}

func (sm *SaveMarks) Validate(validate *validator.Validate) error {
	sm.ClassName = core.CleanString(sm.ClassName)
	sm.Group = core.CleanString(sm.Group)
	return validate.Struct(sm)
}
