package attendance

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/campusflow/campusflow/core"
)

var (
	// errors
	ErrNotFound = errors.New("attendance record not found")
)

type (
	Repository interface {
		// UpsertMonthlyRecord replaces the record matching the
		// (studentId, schoolId, month, year) natural key, inserting if absent.
		UpsertMonthlyRecord(ctx context.Context, rec MonthlyRecord) (MonthlyRecord, error)
		// QueryStudentMonths returns a student's records for the given month slots.
		QueryStudentMonths(ctx context.Context, studentID string, slots []core.MonthSlot) ([]MonthlyRecord, error)
	}

	Service interface {
		Record(ctx context.Context, nr NewRecord, recordedBy string) (MonthlyRecord, error)
		// StudentRecords returns a student's monthly records for one academic
		// year, ordered by the academic-year month schedule.
		StudentRecords(ctx context.Context, studentID, academicYear string) ([]MonthlyRecord, error)
		// StudentSummary folds one academic year of records into a summary.
		StudentSummary(ctx context.Context, studentID, academicYear string) (Summary, error)
	}

	service struct {
		repo Repository
	}
)

var _ Service = (*service)(nil)

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (svc *service) Record(ctx context.Context, nr NewRecord, recordedBy string) (MonthlyRecord, error) {
	now := time.Now().UTC()
	rec := MonthlyRecord{
		StudentID:        nr.StudentID,
		SchoolID:         nr.SchoolID,
		ClassName:        nr.ClassName,
		Month:            nr.Month,
		Year:             nr.Year,
		DaysPresent:      nr.DaysPresent,
		TotalWorkingDays: nr.TotalWorkingDays,
		RecordedBy:       recordedBy,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	return svc.repo.UpsertMonthlyRecord(ctx, rec)
}

func (svc *service) StudentRecords(ctx context.Context, studentID, academicYear string) ([]MonthlyRecord, error) {
	slots, err := core.AcademicYearMonths(academicYear)
	if err != nil {
		return nil, core.NewValidationError(err, core.FieldError{Field: "academic_year", Error: err.Error()})
	}
	recs, err := svc.repo.QueryStudentMonths(ctx, studentID, slots)
	if err != nil {
		return nil, err
	}

	// order by the academic-year month schedule
	bySlot := make(map[[2]int]MonthlyRecord, len(recs))
	for _, r := range recs {
		bySlot[[2]int{r.Year, r.Month}] = r
	}
	ordered := make([]MonthlyRecord, 0, len(recs))
	for _, slot := range slots {
		if r, ok := bySlot[[2]int{slot.Year, slot.Month}]; ok {
			ordered = append(ordered, r)
		}
	}
	return ordered, nil
}

func (svc *service) StudentSummary(ctx context.Context, studentID, academicYear string) (Summary, error) {
	recs, err := svc.StudentRecords(ctx, studentID, academicYear)
	if err != nil {
		return Summary{}, err
	}
	return Summarize(recs), nil
}
