package fees

import (
	"context"
	"fmt"
	"net/mail"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/campusflow/campusflow/core"
	"github.com/campusflow/campusflow/core/school"
	"github.com/campusflow/campusflow/core/user"
)

var (
	// errors
	ErrNotFound = errors.New("fee payment not found")
)

type (
	Repository interface {
		CreatePayment(ctx context.Context, p Payment) (Payment, error)
		GetPaymentByID(ctx context.Context, id string) (Payment, error)
		FilterPayments(ctx context.Context, filter QueryFilter) ([]Payment, error)
		UpdatePayment(ctx context.Context, p Payment) (Payment, error)
		// QueryConcessions returns a student's concessions for one academic year.
		QueryConcessions(ctx context.Context, studentID, academicYear string) ([]Concession, error)
	}

	Service interface {
		RecordPayment(ctx context.Context, np NewPayment, recordedBy string) (Payment, error)
		UpdatePayment(ctx context.Context, id string, up UpdatePayment) (Payment, error)
		GetPayment(ctx context.Context, id string) (Payment, error)
		Query(ctx context.Context, filter QueryFilter) ([]Payment, error)
		// StudentSummary derives the fee position of one student for one
		// academic year from the tuition schedule, payments and concessions.
		StudentSummary(ctx context.Context, studentID, academicYear string) (Summary, error)
	}

	service struct {
		repo    Repository
		users   user.Repository
		schools school.Repository
		mailSvc core.EmailService
		conf    *core.Config
	}
)

var _ Service = (*service)(nil)

func NewService(repo Repository, users user.Repository, schools school.Repository, mailSvc core.EmailService, conf *core.Config) Service {
	return &service{
		repo:    repo,
		users:   users,
		schools: schools,
		mailSvc: mailSvc,
		conf:    conf,
	}
}

func (svc *service) RecordPayment(ctx context.Context, np NewPayment, recordedBy string) (Payment, error) {
	student, err := svc.users.GetUserByID(ctx, np.StudentID)
	if err != nil {
		return Payment{}, errors.Wrap(err, "finding student")
	}

	now := time.Now().UTC()
	p := Payment{
		StudentID:     np.StudentID,
		SchoolID:      np.SchoolID,
		ClassName:     np.ClassName,
		AcademicYear:  np.AcademicYear,
		AmountPaid:    np.AmountPaid,
		PaymentDate:   np.PaymentDate,
		PaymentMethod: np.PaymentMethod,
		Purpose:       np.Purpose,
		ReceiptNumber: uuid.New().String(),
		RecordedBy:    recordedBy,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	p, err = svc.repo.CreatePayment(ctx, p)
	if err != nil {
		return Payment{}, err
	}

	if student.Email != "" {
		go svc.sendReceiptMail(student, p)
	}
	return p, nil
}

func (svc *service) sendReceiptMail(student user.User, p Payment) {
	body := fmt.Sprintf(
		"Dear %s,\n\nA fee payment of %.2f (%s) was recorded for academic year %s.\nReceipt number: %s\n\n%s",
		student.Name, p.AmountPaid, p.PaymentMethod, p.AcademicYear, p.ReceiptNumber, svc.conf.AppName,
	)
	svc.mailSvc.SendMessages(&core.EmailMessage{
		To:      []mail.Address{{Name: student.Name, Address: student.Email}},
		Subject: "Fee payment receipt " + p.ReceiptNumber,
		Body:    body,
	})
}

// UpdatePayment revises the mutable fields of a recorded payment; the
// identifying keys and receipt number are untouched.
func (svc *service) UpdatePayment(ctx context.Context, id string, up UpdatePayment) (Payment, error) {
	p, err := svc.repo.GetPaymentByID(ctx, id)
	if err != nil {
		return Payment{}, err
	}
	if up.AmountPaid > 0 {
		p.AmountPaid = up.AmountPaid
	}
	if up.PaymentDate != nil {
		p.PaymentDate = *up.PaymentDate
	}
	if up.PaymentMethod != "" {
		p.PaymentMethod = up.PaymentMethod
	}
	if up.Purpose != "" {
		p.Purpose = up.Purpose
	}
	p.UpdatedAt = time.Now().UTC()
	return svc.repo.UpdatePayment(ctx, p)
}

func (svc *service) GetPayment(ctx context.Context, id string) (Payment, error) {
	return svc.repo.GetPaymentByID(ctx, id)
}

func (svc *service) Query(ctx context.Context, filter QueryFilter) ([]Payment, error) {
	return svc.repo.FilterPayments(ctx, filter)
}

func (svc *service) StudentSummary(ctx context.Context, studentID, academicYear string) (Summary, error) {
	student, err := svc.users.GetUserByID(ctx, studentID)
	if err != nil {
		return Summary{}, errors.Wrap(err, "finding student")
	}
	sch, err := svc.schools.GetSchoolByID(ctx, student.SchoolID)
	if err != nil {
		return Summary{}, errors.Wrap(err, "finding school")
	}
	payments, err := svc.repo.FilterPayments(ctx, QueryFilter{
		StudentID:    studentID,
		AcademicYear: academicYear,
	})
	if err != nil {
		return Summary{}, errors.Wrap(err, "querying payments")
	}
	concessions, err := svc.repo.QueryConcessions(ctx, studentID, academicYear)
	if err != nil {
		return Summary{}, errors.Wrap(err, "querying concessions")
	}
	return Summarize(sch.TuitionFees, student.ClassName, payments, concessions), nil
}
