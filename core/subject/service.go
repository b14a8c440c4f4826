package subject

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/campusflow/campusflow/core"
	"github.com/campusflow/campusflow/core/school"
)

var (
	// errors
	ErrNotFound   = errors.New("subject not found")
	ErrNameExists = errors.New("a subject with this name already exists for this school")
	ErrInUse      = errors.New("subject is assigned to one or more classes and cannot be deleted")
)

type (
	Repository interface {
		// CheckNameUniqueness matches the subject name case-insensitively
		// within one school.
		CheckNameUniqueness(ctx context.Context, schoolID, name string, excluded ...Subject) error
		CreateSubject(ctx context.Context, sub Subject) (Subject, error)
		GetSubjectByID(ctx context.Context, id string) (Subject, error)
		QuerySubjects(ctx context.Context, schoolID string) ([]Subject, error)
		UpdateSubject(ctx context.Context, sub Subject) (Subject, error)
		DeleteSubject(ctx context.Context, id string) error
	}

	Service interface {
		Create(ctx context.Context, ns NewSubject) (Subject, error)
		Rename(ctx context.Context, id string, rs RenameSubject) (Subject, error)
		GetByID(ctx context.Context, id string) (Subject, error)
		Query(ctx context.Context, schoolID string) ([]Subject, error)
		Delete(ctx context.Context, id string) error
	}

	service struct {
		repo    Repository
		classes school.Repository
	}
)

var _ Service = (*service)(nil)

func NewService(repo Repository, classes school.Repository) Service {
	return &service{repo: repo, classes: classes}
}

func (svc *service) checkUniqueness(ctx context.Context, schoolID, name string, excluded ...Subject) error {
	if err := svc.repo.CheckNameUniqueness(ctx, schoolID, name, excluded...); err != nil {
		if err == ErrNameExists {
			return core.NewValidationError(err, core.FieldError{Field: "name", Error: err.Error()})
		}
		return err
	}
	return nil
}

func (svc *service) Create(ctx context.Context, ns NewSubject) (Subject, error) {
	if err := svc.checkUniqueness(ctx, ns.SchoolID, ns.Name); err != nil {
		return Subject{}, err
	}
	now := time.Now().UTC()
	sub := Subject{
		SchoolID:  ns.SchoolID,
		Name:      ns.Name,
		CreatedAt: now,
		UpdatedAt: now,
	}
	return svc.repo.CreateSubject(ctx, sub)
}

func (svc *service) Rename(ctx context.Context, id string, rs RenameSubject) (Subject, error) {
	sub, err := svc.repo.GetSubjectByID(ctx, id)
	if err != nil {
		return Subject{}, err
	}
	if err := svc.checkUniqueness(ctx, sub.SchoolID, rs.Name, sub); err != nil {
		return Subject{}, err
	}
	sub.Name = rs.Name
	sub.UpdatedAt = time.Now().UTC()
	return svc.repo.UpdateSubject(ctx, sub)
}

func (svc *service) GetByID(ctx context.Context, id string) (Subject, error) {
	return svc.repo.GetSubjectByID(ctx, id)
}

func (svc *service) Query(ctx context.Context, schoolID string) ([]Subject, error) {
	return svc.repo.QuerySubjects(ctx, schoolID)
}

// Delete removes a subject unless any class of its school still references it.
func (svc *service) Delete(ctx context.Context, id string) error {
	sub, err := svc.repo.GetSubjectByID(ctx, id)
	if err != nil {
		return err
	}
	n, err := svc.classes.CountClassesReferencingSubject(ctx, sub.SchoolID, sub.ID)
	if err != nil {
		return errors.Wrap(err, "counting referencing classes")
	}
	if n > 0 {
		return ErrInUse
	}
	return svc.repo.DeleteSubject(ctx, id)
}
