package user_test

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campusflow/campusflow/core"
	"github.com/campusflow/campusflow/core/school"
	"github.com/campusflow/campusflow/core/user"
	emailsvc "github.com/campusflow/campusflow/services/email"
	"github.com/campusflow/campusflow/storage/inmem"
	testutil "github.com/campusflow/campusflow/tests"
)

var resetLinkRegex = regexp.MustCompile(`/password-reset/([^/\s]+)/([^/\s]+)`)

func setup(t *testing.T) (user.Service, user.Repository, school.Repository) {
	t.Helper()

	db, err := inmem.Open()
	require.NoError(t, err)

	conf := &core.Config{
		AppName:                   "CampusFlow",
		SecretKey:                 []byte("secret"),
		PasswordResetTimeoutDelta: time.Hour,
	}
	usrRepo := inmem.NewUserRepository(db)
	schoolRepo := inmem.NewSchoolRepository(db)
	svc := user.NewServiceMock(usrRepo, schoolRepo, emailsvc.NewConsoleServiceMock(conf), conf)
	return svc, usrRepo, schoolRepo
}

func Test_service_Authenticate(t *testing.T) {
	svc, usrRepo, schoolRepo := setup(t)
	ctx := context.Background()

	sch := testutil.CreateSchool(t, schoolRepo, "Green Valley", "2025-2026")
	closed := testutil.CreateSchool(t, schoolRepo, "Closed Gate", "2025-2026")
	closedUpd := closed
	closedUpd.Status = school.StatusInactive
	_, err := schoolRepo.UpdateSchool(ctx, closedUpd)
	require.NoError(t, err)

	admin := testutil.CreateUser(t, usrRepo, "Admin", "admin@gv.test", "LePass123", user.RoleAdmin, sch.ID, true)
	student := testutil.CreateStudent(t, usrRepo, "Student", "s1001", "LePass123", sch.ID, "Class 5")
	testutil.CreateUser(t, usrRepo, "Gone", "gone@gv.test", "LePass123", user.RoleTeacher, sch.ID, false)
	testutil.CreateUser(t, usrRepo, "Locked", "locked@cg.test", "LePass123", user.RoleAdmin, closed.ID, true)

	// superadmins are exempt from the school gate even when attached to one
	super := user.User{
		Name:      "Root",
		Email:     "root@cf.test",
		Role:      user.RoleSuperAdmin,
		SchoolID:  closed.ID,
		Status:    user.StatusActive,
		CreatedAt: time.Now().UTC(),
	}
	require.NoError(t, super.SetPassword("LePass123"))
	super, err = usrRepo.CreateUser(ctx, super)
	require.NoError(t, err)

	// a stray admission number on a staff account must stay unreachable
	staff := admin
	staff.AdmissionID = "tadm01"
	_, err = usrRepo.UpdateUser(ctx, staff)
	require.NoError(t, err)

	t.Run("by email", func(t *testing.T) {
		usr, err := svc.Authenticate(ctx, "Admin@GV.Test", "LePass123")
		require.NoError(t, err)
		assert.Equal(t, admin.ID, usr.ID)
		assert.False(t, usr.LastLogin.IsZero())
	})

	t.Run("by admission number", func(t *testing.T) {
		usr, err := svc.Authenticate(ctx, "s1001", "LePass123")
		require.NoError(t, err)
		assert.Equal(t, student.ID, usr.ID)
	})

	t.Run("admission number is case-insensitive", func(t *testing.T) {
		other := testutil.CreateStudent(t, usrRepo, "Upper", "ADM001", "LePass123", sch.ID, "Class 5")
		assert.Equal(t, "adm001", other.AdmissionID)

		usr, err := svc.Authenticate(ctx, "ADM001", "LePass123")
		require.NoError(t, err)
		assert.Equal(t, other.ID, usr.ID)
	})

	t.Run("admission number lookup only matches students", func(t *testing.T) {
		_, err := svc.Authenticate(ctx, "tadm01", "LePass123")
		assert.Equal(t, user.ErrInvalidCredentials, err)
	})

	t.Run("wrong password", func(t *testing.T) {
		_, err := svc.Authenticate(ctx, "admin@gv.test", "nope")
		assert.Equal(t, user.ErrInvalidCredentials, err)
	})

	t.Run("unknown identifier", func(t *testing.T) {
		_, err := svc.Authenticate(ctx, "nobody@gv.test", "LePass123")
		assert.Equal(t, user.ErrInvalidCredentials, err)
	})

	t.Run("discontinued account", func(t *testing.T) {
		_, err := svc.Authenticate(ctx, "gone@gv.test", "LePass123")
		assert.Equal(t, user.ErrDiscontinued, err)
	})

	t.Run("inactive school blocks staff", func(t *testing.T) {
		_, err := svc.Authenticate(ctx, "locked@cg.test", "LePass123")
		assert.Equal(t, user.ErrSchoolInactive, err)
	})

	t.Run("inactive school never blocks superadmin", func(t *testing.T) {
		usr, err := svc.Authenticate(ctx, "root@cf.test", "LePass123")
		require.NoError(t, err)
		assert.Equal(t, super.ID, usr.ID)
	})
}

func Test_service_passwordReset(t *testing.T) {
	svc, usrRepo, schoolRepo := setup(t)
	ctx := context.Background()

	sch := testutil.CreateSchool(t, schoolRepo, "Green Valley", "2025-2026")
	usr := testutil.CreateUser(t, usrRepo, "Teach", "teach@gv.test", "OldPass123", user.RoleTeacher, sch.ID, true)

	emailsvc.ClearSentMessages()
	require.NoError(t, svc.RequestPasswordReset(ctx, "teach@gv.test"))
	require.Len(t, emailsvc.SentMessages, 1)

	m := resetLinkRegex.FindStringSubmatch(emailsvc.SentMessages[0].Body)
	require.Len(t, m, 3, "reset link not found in email body")
	uid, token := m[1], m[2]

	err := svc.ResetPassword(ctx, user.ResetUserPassword{
		UID:             uid,
		Token:           token,
		Password:        "NewPass456!",
		PasswordConfirm: "NewPass456!",
	})
	require.NoError(t, err)

	fresh, err := usrRepo.GetUserByID(ctx, usr.ID)
	require.NoError(t, err)
	assert.NoError(t, fresh.CheckPassword("NewPass456!"))
	assert.Error(t, fresh.CheckPassword("OldPass123"))

	// a used token cannot be replayed
	err = svc.ResetPassword(ctx, user.ResetUserPassword{
		UID:             uid,
		Token:           token,
		Password:        "Again789!",
		PasswordConfirm: "Again789!",
	})
	assert.Error(t, err)
}
