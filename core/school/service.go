package school

import (
	"context"
	"time"

	"github.com/pkg/errors"
)

var (
	// errors
	ErrNotFound      = errors.New("school not found")
	ErrClassNotFound = errors.New("class not found")
)

type (
	Repository interface {
		CreateSchool(ctx context.Context, sch School) (School, error)
		GetSchoolByID(ctx context.Context, id string) (School, error)
		QuerySchools(ctx context.Context) ([]School, error)
		UpdateSchool(ctx context.Context, sch School) (School, error)

		CreateClass(ctx context.Context, cls Class) (Class, error)
		GetClassByID(ctx context.Context, id string) (Class, error)
		QueryClasses(ctx context.Context, schoolID string) ([]Class, error)
		UpdateClass(ctx context.Context, cls Class) (Class, error)
		DeleteClass(ctx context.Context, id string) error
		// CountClassesReferencingSubject counts classes of a school whose
		// subject list contains subjectID.
		CountClassesReferencingSubject(ctx context.Context, schoolID, subjectID string) (int64, error)
	}

	Service interface {
		Create(ctx context.Context, ns NewSchool) (School, error)
		Update(ctx context.Context, id string, us UpdateSchool) (School, error)
		GetByID(ctx context.Context, id string) (School, error)
		Query(ctx context.Context) ([]School, error)
		SetTuition(ctx context.Context, id string, tu TuitionUpdate) (School, error)

		CreateClass(ctx context.Context, nc NewClass) (Class, error)
		GetClassByID(ctx context.Context, id string) (Class, error)
		QueryClasses(ctx context.Context, schoolID string) ([]Class, error)
		AssignSubjects(ctx context.Context, classID string, as AssignSubjects) (Class, error)
		DeleteClass(ctx context.Context, id string) error
	}

	service struct {
		repo Repository
	}
)

var _ Service = (*service)(nil)

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (svc *service) Create(ctx context.Context, ns NewSchool) (School, error) {
	now := time.Now().UTC()
	sch := School{
		Name:               ns.Name,
		Address:            ns.Address,
		Status:             StatusActive,
		ActiveAcademicYear: ns.ActiveAcademicYear,
		TuitionFees:        []ClassTuition{},
		CreatedAt:          now,
		UpdatedAt:          now,
	}
	return svc.repo.CreateSchool(ctx, sch)
}

func (svc *service) Update(ctx context.Context, id string, us UpdateSchool) (School, error) {
	sch, err := svc.repo.GetSchoolByID(ctx, id)
	if err != nil {
		return School{}, err
	}
	if us.Name != "" {
		sch.Name = us.Name
	}
	if us.Address != "" {
		sch.Address = us.Address
	}
	if us.Status != "" {
		sch.Status = us.Status
	}
	if us.ActiveAcademicYear != "" {
		sch.ActiveAcademicYear = us.ActiveAcademicYear
	}
	sch.UpdatedAt = time.Now().UTC()
	return svc.repo.UpdateSchool(ctx, sch)
}

func (svc *service) GetByID(ctx context.Context, id string) (School, error) {
	return svc.repo.GetSchoolByID(ctx, id)
}

func (svc *service) Query(ctx context.Context) ([]School, error) {
	return svc.repo.QuerySchools(ctx)
}

func (svc *service) SetTuition(ctx context.Context, id string, tu TuitionUpdate) (School, error) {
	sch, err := svc.repo.GetSchoolByID(ctx, id)
	if err != nil {
		return School{}, err
	}
	sch.TuitionFees = tu.TuitionFees
	sch.UpdatedAt = time.Now().UTC()
	return svc.repo.UpdateSchool(ctx, sch)
}

func (svc *service) CreateClass(ctx context.Context, nc NewClass) (Class, error) {
	// the owning school must exist
	if _, err := svc.repo.GetSchoolByID(ctx, nc.SchoolID); err != nil {
		return Class{}, err
	}
	now := time.Now().UTC()
	cls := Class{
		SchoolID:   nc.SchoolID,
		Name:       nc.Name,
		Section:    nc.Section,
		SubjectIDs: []string{},
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	return svc.repo.CreateClass(ctx, cls)
}

func (svc *service) GetClassByID(ctx context.Context, id string) (Class, error) {
	return svc.repo.GetClassByID(ctx, id)
}

func (svc *service) QueryClasses(ctx context.Context, schoolID string) ([]Class, error) {
	return svc.repo.QueryClasses(ctx, schoolID)
}

func (svc *service) AssignSubjects(ctx context.Context, classID string, as AssignSubjects) (Class, error) {
	cls, err := svc.repo.GetClassByID(ctx, classID)
	if err != nil {
		return Class{}, err
	}
	cls.SubjectIDs = as.SubjectIDs
	cls.UpdatedAt = time.Now().UTC()
	return svc.repo.UpdateClass(ctx, cls)
}

func (svc *service) DeleteClass(ctx context.Context, id string) error {
	return svc.repo.DeleteClass(ctx, id)
}
