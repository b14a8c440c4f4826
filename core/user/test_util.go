package user

import (
	"context"

	"github.com/campusflow/campusflow/core"
	"github.com/campusflow/campusflow/core/school"
)

type serviceMock struct {
	service
}

// NewServiceMock returns a Service whose side effects run synchronously.
func NewServiceMock(repo Repository, schools school.Repository, mailSvc core.EmailService, conf *core.Config) Service {
	secretKey = conf.SecretKey
	passwordResetTimeoutDelta = conf.PasswordResetTimeoutDelta
	return &serviceMock{
		service: service{
			repo:    repo,
			schools: schools,
			mailSvc: mailSvc,
			conf:    conf,
		},
	}
}

func (svc *serviceMock) RequestPasswordReset(ctx context.Context, email string) error {
	usr, err := svc.GetByEmail(ctx, email)
	if err != nil {
		return err
	}
	// run synchronously
	svc.sendPasswordResetMail(usr)
	return nil
}
