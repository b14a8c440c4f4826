package user

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"
	"golang.org/x/crypto/bcrypt"

	"github.com/campusflow/campusflow/core"
)

// Roles
const (
	RoleSuperAdmin  = "superadmin"
	RoleMasterAdmin = "masteradmin"
	RoleAdmin       = "admin"
	RoleTeacher     = "teacher"
	RoleStudent     = "student"
)

// Account statuses. Users are soft-removed via StatusDiscontinued;
// rows are only physically deleted on a full database reset.
const (
	StatusActive       = "active"
	StatusDiscontinued = "discontinued"
)

var (
	AllRoles = []string{RoleSuperAdmin, RoleMasterAdmin, RoleAdmin, RoleTeacher, RoleStudent}

	rolePriorities = map[string]int{
		RoleSuperAdmin:  50,
		RoleMasterAdmin: 40,
		RoleAdmin:       30,
		RoleTeacher:     20,
		RoleStudent:     10,
	}
)

func RolePriority(role string) int {
	return rolePriorities[role]
}

type User struct {
	ID           string    `json:"id" bson:"_id,omitempty"`
	Name         string    `json:"name" bson:"name"`
	Email        string    `json:"email,omitempty" bson:"email,omitempty"`
	Role         string    `json:"role" bson:"role"`
	SchoolID     string    `json:"school_id,omitempty" bson:"schoolId,omitempty"`
	ClassID      string    `json:"class_id,omitempty" bson:"classId,omitempty"`
	ClassName    string    `json:"class_name,omitempty" bson:"className,omitempty"`
	AdmissionID  string    `json:"admission_id,omitempty" bson:"admissionId,omitempty"`
	DateOfBirth  string    `json:"date_of_birth,omitempty" bson:"dateOfBirth,omitempty"` // YYYY-MM-DD
	FatherName   string    `json:"father_name,omitempty" bson:"fatherName,omitempty"`
	MotherName   string    `json:"mother_name,omitempty" bson:"motherName,omitempty"`
	Status       string    `json:"status" bson:"status"`
	PasswordHash []byte    `json:"-" bson:"passwordHash"`
	LastLogin    time.Time `json:"last_login,omitempty" bson:"lastLogin,omitempty"`
	CreatedAt    time.Time `json:"created_at" bson:"createdAt"`
	UpdatedAt    time.Time `json:"updated_at" bson:"updatedAt"`
}

func (u *User) SetPassword(pwd string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(pwd), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.PasswordHash = hash
	return nil
}

func (u *User) CheckPassword(pwd string) error {
	return bcrypt.CompareHashAndPassword(u.PasswordHash, []byte(pwd))
}

func (u *User) IsSuperAdmin() bool { return u.Role == RoleSuperAdmin }
func (u *User) IsTeacher() bool    { return u.Role == RoleTeacher }
func (u *User) IsStudent() bool    { return u.Role == RoleStudent }
func (u *User) IsActive() bool     { return u.Status == StatusActive }

// IsAdmin reports whether the user holds any administrative role.
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin || u.Role == RoleMasterAdmin || u.Role == RoleSuperAdmin
}

// NewUser contains information needed to create a new User.
type NewUser struct {
	Name            string `json:"name" validate:"required"`
	Email           string `json:"email" validate:"omitempty,email"`
	Role            string `json:"role" validate:"required,role"`
	SchoolID        string `json:"school_id" validate:"omitempty,objectid"`
	ClassID         string `json:"class_id" validate:"omitempty,objectid"`
	ClassName       string `json:"class_name"`
	AdmissionID     string `json:"admission_id"`
	DateOfBirth     string `json:"date_of_birth"`
	FatherName      string `json:"father_name"`
	MotherName      string `json:"mother_name"`
	Password        string `json:"password" validate:"required"`
	PasswordConfirm string `json:"password_confirm" validate:"required,eqfield=Password"`
}

func (nu *NewUser) Validate(ctx context.Context, validate *validator.Validate, svc Service) error {
	nu.Name = core.CleanString(nu.Name)
	nu.Email = core.CleanString(nu.Email, true /* lower */)
	// lowered so admission-number login lookups match regardless of input case
	nu.AdmissionID = core.CleanString(nu.AdmissionID, true /* lower */)

	if err := validate.Struct(nu); err != nil {
		return err
	}
	return svc.CheckUniqueness(ctx, nu.Email, nu.SchoolID, nu.AdmissionID)
}

// UpdateUser defines what information may be provided to modify an existing User.
// Zero-valued fields are left untouched.
type UpdateUser struct {
	Name            string  `json:"name"`
	Email           string  `json:"email" validate:"omitempty,email"`
	Role            string  `json:"role" validate:"omitempty,role"`
	ClassID         string  `json:"class_id" validate:"omitempty,objectid"`
	ClassName       string  `json:"class_name"`
	AdmissionID     string  `json:"admission_id"`
	DateOfBirth     string  `json:"date_of_birth"`
	FatherName      string  `json:"father_name"`
	MotherName      string  `json:"mother_name"`
	Status          *string `json:"status" validate:"omitempty,oneof=active discontinued"`
	Password        string  `json:"password"`
	PasswordConfirm string  `json:"password_confirm" validate:"required_with=Password,omitempty,eqfield=Password"`
}

func (uu *UpdateUser) Validate(ctx context.Context, usr User, validate *validator.Validate, svc Service) error {
	uu.Name = core.CleanString(uu.Name)
	uu.Email = core.CleanString(uu.Email, true /* lower */)
	uu.AdmissionID = core.CleanString(uu.AdmissionID, true /* lower */)

	if err := validate.Struct(uu); err != nil {
		return err
	}
	if uu.Email != "" && uu.Email != usr.Email {
		return svc.CheckUniqueness(ctx, uu.Email, "", "")
	}
	if uu.AdmissionID != "" && uu.AdmissionID != usr.AdmissionID {
		return svc.CheckUniqueness(ctx, "", usr.SchoolID, uu.AdmissionID)
	}
	return nil
}

// UpdateProfile is the self-service subset of UpdateUser.
type UpdateProfile struct {
	Name            string `json:"name"`
	DateOfBirth     string `json:"date_of_birth"`
	FatherName      string `json:"father_name"`
	MotherName      string `json:"mother_name"`
	Password        string `json:"password"`
	PasswordConfirm string `json:"password_confirm" validate:"required_with=Password,omitempty,eqfield=Password"`
}

func (up *UpdateProfile) Validate(validate *validator.Validate) error {
	up.Name = core.CleanString(up.Name)
	return validate.Struct(up)
}

// ResetUserPassword confirms a password reset initiated via email.
type ResetUserPassword struct {
	UID             string `json:"uid" validate:"required"`
	Token           string `json:"token" validate:"required"`
	Password        string `json:"password" validate:"required"`
	PasswordConfirm string `json:"password_confirm" validate:"required,eqfield=Password"`
}

func (rp *ResetUserPassword) Validate(validate *validator.Validate) error {
	return validate.Struct(rp)
}

// QueryFilter applies an AND operation on its non-zero fields.
type QueryFilter struct {
	SchoolID string `query:"school_id"`
	Role     string `query:"role"`
	ClassID  string `query:"class_id"`
	Status   string `query:"status"`
	Search   string `query:"search"` // case-insensitive match on Name, Email or AdmissionID
}

func (f *QueryFilter) Clean() {
	f.Role = core.CleanString(f.Role, true /* lower */)
	f.Status = core.CleanString(f.Status, true /* lower */)
	f.Search = core.CleanString(f.Search)
}
