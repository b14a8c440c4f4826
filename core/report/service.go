package report

import (
	"context"
	"time"

	"github.com/pkg/errors"
)

var (
	// errors
	ErrNotFound = errors.New("report card not found")
)

type (
	Repository interface {
		// UpsertReportCard atomically replaces the mutable fields of the
		// document matching rc's natural key, inserting with CreatedAt set
		// when absent. Backed by the unique index on the key tuple.
		UpsertReportCard(ctx context.Context, rc ReportCard) (ReportCard, error)
		GetReportCard(ctx context.Context, key Key) (ReportCard, error)
		QueryStudentReportCards(ctx context.Context, studentID, academicYear string) ([]ReportCard, error)
	}

	Service interface {
		Upsert(ctx context.Context, u UpsertReportCard) (ReportCard, error)
		Get(ctx context.Context, key Key) (ReportCard, error)
		QueryStudent(ctx context.Context, studentID, academicYear string) ([]ReportCard, error)
	}

	service struct {
		repo Repository
	}
)

var _ Service = (*service)(nil)

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (svc *service) Upsert(ctx context.Context, u UpsertReportCard) (ReportCard, error) {
	now := time.Now().UTC()
	rc := ReportCard{
		StudentID:    u.Key.StudentID,
		SchoolID:     u.Key.SchoolID,
		AcademicYear: u.Key.AcademicYear,
		TemplateKey:  u.Key.TemplateKey,
		Term:         u.Key.Term,
		ClassName:    u.ClassName,
		Formative:    u.Formative,
		Summative:    u.Summative,
		Attendance:   u.Attendance,
		FinalGrade:   u.FinalGrade,
		Remarks:      u.Remarks,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	return svc.repo.UpsertReportCard(ctx, rc)
}

func (svc *service) Get(ctx context.Context, key Key) (ReportCard, error) {
	return svc.repo.GetReportCard(ctx, key)
}

func (svc *service) QueryStudent(ctx context.Context, studentID, academicYear string) ([]ReportCard, error) {
	return svc.repo.QueryStudentReportCards(ctx, studentID, academicYear)
}
