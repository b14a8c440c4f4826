package assessment

import (
	"context"
	"fmt"
	"time"

	"github.com/pkg/errors"

	"github.com/campusflow/campusflow/core"
)

var (
	// errors
	ErrNotFound      = errors.New("assessment scheme not found")
	ErrMarksNotFound = errors.New("marks not found")
	// ErrSchemeExists is returned by repositories when an insert collides
	// with the unique (schoolId, className, academicYear) index.
	ErrSchemeExists = errors.New("an assessment scheme already exists for this class and academic year")
)

type (
	Repository interface {
		// GetScheme looks a scheme up by its natural key.
		GetScheme(ctx context.Context, key SchemeKey) (Scheme, error)
		// CreateScheme inserts a scheme; ErrSchemeExists on a natural-key collision.
		CreateScheme(ctx context.Context, s Scheme) (Scheme, error)
		UpdateScheme(ctx context.Context, s Scheme) (Scheme, error)
		// UpsertMarks replaces the document matching the
		// (studentId, schoolId, className, academicYear, group) natural key.
		UpsertMarks(ctx context.Context, m StudentMarks) (StudentMarks, error)
		QueryMarks(ctx context.Context, studentID, academicYear string) ([]StudentMarks, error)
	}

	Service interface {
		// Resolve returns the scheme for key, creating it with the default
		// structure if none exists yet.
		Resolve(ctx context.Context, key SchemeKey) (Scheme, error)
		Update(ctx context.Context, key SchemeKey, us UpdateScheme) (Scheme, error)
		SaveMarks(ctx context.Context, sm SaveMarks, enteredBy string) (StudentMarks, error)
		StudentMarks(ctx context.Context, studentID, academicYear string) ([]StudentMarks, error)
	}

	service struct {
		repo Repository
	}
)

var _ Service = (*service)(nil)

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

// Resolve behaves as an atomic find-or-create per natural key: the insert
// races on the key's unique index and loses gracefully to a concurrent
// first writer by re-fetching the winner.
func (svc *service) Resolve(ctx context.Context, key SchemeKey) (Scheme, error) {
	s, err := svc.repo.GetScheme(ctx, key)
	if err == nil {
		return s, nil
	}
	if err != ErrNotFound {
		return Scheme{}, err
	}

	now := time.Now().UTC()
	s, err = svc.repo.CreateScheme(ctx, Scheme{
		SchoolID:     key.SchoolID,
		ClassName:    key.ClassName,
		AcademicYear: key.AcademicYear,
		Groups:       DefaultGroups(),
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err == ErrSchemeExists {
		// a concurrent request created it first; theirs wins
		return svc.repo.GetScheme(ctx, key)
	}
	return s, err
}

func (svc *service) Update(ctx context.Context, key SchemeKey, us UpdateScheme) (Scheme, error) {
	s, err := svc.Resolve(ctx, key)
	if err != nil {
		return Scheme{}, err
	}
	s.Groups = us.Groups
	s.UpdatedAt = time.Now().UTC()
	return svc.repo.UpdateScheme(ctx, s)
}

func (svc *service) SaveMarks(ctx context.Context, sm SaveMarks, enteredBy string) (StudentMarks, error) {
	scheme, err := svc.Resolve(ctx, SchemeKey{
		SchoolID:     sm.SchoolID,
		ClassName:    sm.ClassName,
		AcademicYear: sm.AcademicYear,
	})
	if err != nil {
		return StudentMarks{}, err
	}

	group, ok := scheme.Group(sm.Group)
	if !ok {
		return StudentMarks{}, core.NewValidationError(
			errors.New("unknown assessment group"),
			core.FieldError{Field: "group", Error: fmt.Sprintf("no group %q in the assessment scheme", sm.Group)},
		)
	}
	maxByTest := make(map[string]float64, len(group.Tests))
	for _, t := range group.Tests {
		maxByTest[t.Name] = t.MaxMarks
	}
	for test, score := range sm.Scores {
		max, ok := maxByTest[test]
		if !ok {
			return StudentMarks{}, core.NewValidationError(
				errors.New("unknown test"),
				core.FieldError{Field: "scores", Error: fmt.Sprintf("no test %q in group %q", test, sm.Group)},
			)
		}
		if score < 0 || score > max {
			return StudentMarks{}, core.NewValidationError(
				errors.New("score out of range"),
				core.FieldError{Field: "scores", Error: fmt.Sprintf("%s: score must be between 0 and %v", test, max)},
			)
		}
	}

	now := time.Now().UTC()
	return svc.repo.UpsertMarks(ctx, StudentMarks{
		StudentID:    sm.StudentID,
		SchoolID:     sm.SchoolID,
		ClassName:    sm.ClassName,
		AcademicYear: sm.AcademicYear,
		Group:        sm.Group,
		Scores:       sm.Scores,
		EnteredBy:    enteredBy,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
}

func (svc *service) StudentMarks(ctx context.Context, studentID, academicYear string) ([]StudentMarks, error) {
	return svc.repo.QueryMarks(ctx, studentID, academicYear)
}
