package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/campusflow/campusflow/core"
	"github.com/campusflow/campusflow/core/school"
	"github.com/campusflow/campusflow/core/subject"
	"github.com/campusflow/campusflow/core/user"
)

// CreateUser inserts a user directly through the repository, bypassing
// service validation.
func CreateUser(
	t *testing.T,
	repo user.Repository,
	name, email, pwd, role, schoolID string,
	active bool,
) user.User {
	t.Helper()

	now := time.Now().UTC()
	usr := user.User{
		Name:      name,
		Email:     email,
		Role:      role,
		SchoolID:  schoolID,
		Status:    user.StatusActive,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if !active {
		usr.Status = user.StatusDiscontinued
	}
	if pwd != "" {
		if err := usr.SetPassword(pwd); err != nil {
			t.Fatalf("CreateUser() failed: %v", err)
		}
	}
	usr, err := repo.CreateUser(context.Background(), usr)
	if err != nil {
		t.Fatalf("CreateUser() failed: %v", err)
	}
	return usr
}

// CreateStudent inserts a student with an admission number and class.
func CreateStudent(
	t *testing.T,
	repo user.Repository,
	name, admissionID, pwd, schoolID, className string,
) user.User {
	t.Helper()

	now := time.Now().UTC()
	usr := user.User{
		Name:        name,
		Role:        user.RoleStudent,
		SchoolID:    schoolID,
		ClassName:   className,
		AdmissionID: core.CleanString(admissionID, true /* lower */),
		Status:      user.StatusActive,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if pwd != "" {
		if err := usr.SetPassword(pwd); err != nil {
			t.Fatalf("CreateStudent() failed: %v", err)
		}
	}
	usr, err := repo.CreateUser(context.Background(), usr)
	if err != nil {
		t.Fatalf("CreateStudent() failed: %v", err)
	}
	return usr
}

// CreateSchool inserts an active school with an optional tuition schedule.
func CreateSchool(
	t *testing.T,
	repo school.Repository,
	name, academicYear string,
	tuition ...school.ClassTuition,
) school.School {
	t.Helper()

	now := time.Now().UTC()
	sch, err := repo.CreateSchool(context.Background(), school.School{
		Name:               name,
		Status:             school.StatusActive,
		ActiveAcademicYear: academicYear,
		TuitionFees:        tuition,
		CreatedAt:          now,
		UpdatedAt:          now,
	})
	if err != nil {
		t.Fatalf("CreateSchool() failed: %v", err)
	}
	return sch
}

// CreateClass inserts a class with an optional subject list.
func CreateClass(
	t *testing.T,
	repo school.Repository,
	schoolID, name string,
	subjectIDs ...string,
) school.Class {
	t.Helper()

	now := time.Now().UTC()
	cls, err := repo.CreateClass(context.Background(), school.Class{
		SchoolID:   schoolID,
		Name:       name,
		SubjectIDs: subjectIDs,
		CreatedAt:  now,
		UpdatedAt:  now,
	})
	if err != nil {
		t.Fatalf("CreateClass() failed: %v", err)
	}
	return cls
}

// CreateSubject inserts a subject directly.
func CreateSubject(t *testing.T, repo subject.Repository, schoolID, name string) subject.Subject {
	t.Helper()

	now := time.Now().UTC()
	sub, err := repo.CreateSubject(context.Background(), subject.Subject{
		SchoolID:  schoolID,
		Name:      name,
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		t.Fatalf("CreateSubject() failed: %v", err)
	}
	return sub
}
