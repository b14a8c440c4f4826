package subject

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/campusflow/campusflow/core"
)

type Subject struct {
	ID        string    `json:"id" bson:"_id,omitempty"`
	SchoolID  string    `json:"school_id" bson:"schoolId"`
	Name      string    `json:"name" bson:"name"`
	CreatedAt time.Time `json:"created_at" bson:"createdAt"`
	UpdatedAt time.Time `json:"updated_at" bson:"updatedAt"`
}

// NewSubject contains information needed to create a new Subject.
type NewSubject struct {
	SchoolID string `json:"school_id" validate:"required,objectid"`
	Name     string `json:"name" validate:"required"`
}

func (ns *NewSubject) Validate(validate *validator.Validate) error {
	ns.Name = core.CleanString(ns.Name)
	return validate.Struct(ns)
}

// RenameSubject renames an existing Subject.
type RenameSubject struct {
	Name string `json:"name" validate:"required"`
}

func (rs *RenameSubject) Validate(validate *validator.Validate) error {
	rs.Name = core.CleanString(rs.Name)
	return validate.Struct(rs)
}
