package user

import (
	"context"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/campusflow/campusflow/core"
	"github.com/campusflow/campusflow/core/school"
)

var (
	// errors
	ErrNotFound           = errors.New("user not found")
	ErrEmailExists        = errors.New("a user with this email already exists")
	ErrAdmissionIDExists  = errors.New("a student with this admission number already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrSchoolInactive     = errors.New("this school is currently inactive")
	ErrDiscontinued       = errors.New("this account has been discontinued")
)

type (
	Repository interface {
		CheckEmailUniqueness(ctx context.Context, email string, excluded ...User) error
		CheckAdmissionIDUniqueness(ctx context.Context, schoolID, admissionID string, excluded ...User) error
		CreateUser(ctx context.Context, usr User) (User, error)
		GetUserByID(ctx context.Context, id string) (User, error)
		GetUserByEmail(ctx context.Context, email string) (User, error)
		// GetStudentByAdmissionID only ever matches users with role student.
		GetStudentByAdmissionID(ctx context.Context, admissionID string) (User, error)
		FilterUsers(ctx context.Context, filter QueryFilter) ([]User, error)
		UpdateUser(ctx context.Context, usr User) (User, error)
		SetUserLastLogin(ctx context.Context, id string, t time.Time) (User, error)
		DeleteUsersByID(ctx context.Context, ids ...string) error
	}

	Service interface {
		CheckUniqueness(ctx context.Context, email, schoolID, admissionID string, excluded ...User) error
		Create(ctx context.Context, nu NewUser) (User, error)
		Update(ctx context.Context, id string, uu UpdateUser) (User, error)
		UpdateProfile(ctx context.Context, id string, up UpdateProfile) (User, error)
		Query(ctx context.Context, filter QueryFilter) ([]User, error)
		GetByID(ctx context.Context, id string) (User, error)
		GetByEmail(ctx context.Context, email string) (User, error)
		Authenticate(ctx context.Context, identifier, password string) (User, error)
		Discontinue(ctx context.Context, id string) (User, error)
		RequestPasswordReset(ctx context.Context, email string) error
		ResetPassword(ctx context.Context, rp ResetUserPassword) error
	}

	service struct {
		repo    Repository
		schools school.Repository
		mailSvc core.EmailService
		conf    *core.Config
	}
)

var _ Service = (*service)(nil)

func NewService(repo Repository, schools school.Repository, mailSvc core.EmailService, conf *core.Config) Service {
	secretKey = conf.SecretKey
	passwordResetTimeoutDelta = conf.PasswordResetTimeoutDelta
	return &service{
		repo:    repo,
		schools: schools,
		mailSvc: mailSvc,
		conf:    conf,
	}
}

func (svc *service) CheckUniqueness(ctx context.Context, email, schoolID, admissionID string, excluded ...User) error {
	if email != "" {
		if err := svc.repo.CheckEmailUniqueness(ctx, email, excluded...); err != nil {
			if err == ErrEmailExists {
				return core.NewValidationError(err, core.FieldError{Field: "email", Error: err.Error()})
			}
			return err
		}
	}
	if admissionID != "" {
		if err := svc.repo.CheckAdmissionIDUniqueness(ctx, schoolID, admissionID, excluded...); err != nil {
			if err == ErrAdmissionIDExists {
				return core.NewValidationError(err, core.FieldError{Field: "admission_id", Error: err.Error()})
			}
			return err
		}
	}
	return nil
}

func (svc *service) Create(ctx context.Context, nu NewUser) (User, error) {
	now := time.Now().UTC()
	usr := User{
		Name:        nu.Name,
		Email:       nu.Email,
		Role:        nu.Role,
		SchoolID:    nu.SchoolID,
		ClassID:     nu.ClassID,
		ClassName:   nu.ClassName,
		AdmissionID: nu.AdmissionID,
		DateOfBirth: nu.DateOfBirth,
		FatherName:  nu.FatherName,
		MotherName:  nu.MotherName,
		Status:      StatusActive,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := usr.SetPassword(nu.Password); err != nil {
		return User{}, errors.Wrap(err, "hashing password")
	}
	return svc.repo.CreateUser(ctx, usr)
}

func (svc *service) Update(ctx context.Context, id string, uu UpdateUser) (User, error) {
	usr, err := svc.repo.GetUserByID(ctx, id)
	if err != nil {
		return User{}, err
	}

	if uu.Name != "" {
		usr.Name = uu.Name
	}
	if uu.Email != "" {
		usr.Email = uu.Email
	}
	if uu.Role != "" {
		usr.Role = uu.Role
	}
	if uu.ClassID != "" {
		usr.ClassID = uu.ClassID
	}
	if uu.ClassName != "" {
		usr.ClassName = uu.ClassName
	}
	if uu.AdmissionID != "" {
		usr.AdmissionID = uu.AdmissionID
	}
	if uu.DateOfBirth != "" {
		usr.DateOfBirth = uu.DateOfBirth
	}
	if uu.FatherName != "" {
		usr.FatherName = uu.FatherName
	}
	if uu.MotherName != "" {
		usr.MotherName = uu.MotherName
	}
	if uu.Status != nil {
		usr.Status = *uu.Status
	}
	if uu.Password != "" {
		if err := usr.SetPassword(uu.Password); err != nil {
			return User{}, errors.Wrap(err, "hashing password")
		}
	}
	usr.UpdatedAt = time.Now().UTC()
	return svc.repo.UpdateUser(ctx, usr)
}

func (svc *service) UpdateProfile(ctx context.Context, id string, up UpdateProfile) (User, error) {
	return svc.Update(ctx, id, UpdateUser{
		Name:        up.Name,
		DateOfBirth: up.DateOfBirth,
		FatherName:  up.FatherName,
		MotherName:  up.MotherName,
		Password:    up.Password,
	})
}

func (svc *service) Query(ctx context.Context, filter QueryFilter) ([]User, error) {
	filter.Clean()
	return svc.repo.FilterUsers(ctx, filter)
}

func (svc *service) GetByID(ctx context.Context, id string) (User, error) {
	return svc.repo.GetUserByID(ctx, id)
}

func (svc *service) GetByEmail(ctx context.Context, email string) (User, error) {
	return svc.repo.GetUserByEmail(ctx, core.CleanString(email, true /* lower */))
}

// Authenticate resolves identifier to exactly one user and checks their
// password. An identifier containing "@" is looked up by email; anything
// else is treated as a student admission number. Users of an inactive
// school are refused unless they are superadmin.
func (svc *service) Authenticate(ctx context.Context, identifier, password string) (User, error) {
	identifier = core.CleanString(identifier, true /* lower */)

	var usr User
	var err error
	if strings.Contains(identifier, "@") {
		usr, err = svc.repo.GetUserByEmail(ctx, identifier)
	} else {
		usr, err = svc.repo.GetStudentByAdmissionID(ctx, identifier)
	}
	if err != nil {
		if err == ErrNotFound {
			return User{}, ErrInvalidCredentials
		}
		return User{}, errors.Wrap(err, "finding user by identifier")
	}

	if !usr.IsActive() {
		return User{}, ErrDiscontinued
	}
	if !usr.IsSuperAdmin() && usr.SchoolID != "" {
		sch, err := svc.schools.GetSchoolByID(ctx, usr.SchoolID)
		if err != nil {
			return User{}, errors.Wrap(err, "finding owning school")
		}
		if !sch.IsActive() {
			return User{}, ErrSchoolInactive
		}
	}

	if err := usr.CheckPassword(password); err != nil {
		return User{}, ErrInvalidCredentials
	}

	usr, err = svc.repo.SetUserLastLogin(ctx, usr.ID, time.Now().UTC())
	if err != nil {
		return User{}, errors.Wrap(err, "setting lastLogin")
	}
	return usr, nil
}

func (svc *service) Discontinue(ctx context.Context, id string) (User, error) {
	status := StatusDiscontinued
	return svc.Update(ctx, id, UpdateUser{Status: &status})
}

func (svc *service) RequestPasswordReset(ctx context.Context, email string) error {
	usr, err := svc.GetByEmail(ctx, email)
	if err != nil {
		return err
	}
	go svc.sendPasswordResetMail(usr)
	return nil
}

func (svc *service) sendPasswordResetMail(usr User) {
	body := fmt.Sprintf(
		"You requested a password reset for your %s account.\n\n"+
			"Visit %s/password-reset/%s/%s to choose a new password.\n\n"+
			"If you did not request this, you can safely ignore this email.",
		svc.conf.AppName, svc.conf.FrontendBaseURL, encodeUID(usr), makeToken(usr),
	)
	svc.mailSvc.SendMessages(&core.EmailMessage{
		To:      []mail.Address{{Name: usr.Name, Address: usr.Email}},
		Subject: "Password reset",
		Body:    body,
	})
}

func (svc *service) ResetPassword(ctx context.Context, rp ResetUserPassword) error {
	uid, err := decodeUID(rp.UID)
	if err != nil {
		return core.NewValidationError(errInvalidToken)
	}
	usr, err := svc.repo.GetUserByID(ctx, uid)
	if err != nil {
		if err == ErrNotFound {
			return core.NewValidationError(errInvalidToken)
		}
		return err
	}
	if err := verifyToken(usr, rp.Token); err != nil {
		return core.NewValidationError(err)
	}
	if err := usr.SetPassword(rp.Password); err != nil {
		return errors.Wrap(err, "hashing password")
	}
	usr.UpdatedAt = time.Now().UTC()
	_, err = svc.repo.UpdateUser(ctx, usr)
	return err
}
