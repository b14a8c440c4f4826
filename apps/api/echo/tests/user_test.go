package tests

import (
	"context"
	"net/http"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	echoapi "github.com/campusflow/campusflow/apps/api/echo"
	"github.com/campusflow/campusflow/core/user"
	testutil "github.com/campusflow/campusflow/tests"
)

func Test_userApi_login(t *testing.T) {
	require.NoError(t, db.ResetData(context.Background()))

	sch := testutil.CreateSchool(t, schoolRepo, "Green Valley", "2025-2026")
	closed := testutil.CreateSchool(t, schoolRepo, "Closed Gate", "2025-2026")
	closedUpd := closed
	closedUpd.Status = "inactive"
	if _, err := schoolRepo.UpdateSchool(context.Background(), closedUpd); err != nil {
		t.Fatalf("UpdateSchool() failed: %v", err)
	}

	testutil.CreateUser(t, usrRepo, "Admin", "admin@gv.test", "LePass123", user.RoleAdmin, sch.ID, true)
	testutil.CreateStudent(t, usrRepo, "Student", "s1001", "LePass123", sch.ID, "Class 5")
	testutil.CreateUser(t, usrRepo, "Gone", "gone@gv.test", "LePass123", user.RoleTeacher, sch.ID, false)
	testutil.CreateUser(t, usrRepo, "Locked Out", "locked@cg.test", "LePass123", user.RoleAdmin, closed.ID, true)

	login := func(identifier, pwd string) []byte {
		return marchallObj(t, echoapi.LoginRequest{Identifier: identifier, Password: pwd})
	}

	tests := []httpTest{
		{
			name: "empty fields", method: http.MethodPost, path: "/api/login", body: login("", ""),
			wantCode: http.StatusBadRequest,
		},
		{name: "email login", method: http.MethodPost, path: "/api/login", body: login("admin@gv.test", "LePass123")},
		{name: "email login is case-insensitive", method: http.MethodPost, path: "/api/login", body: login("ADMIN@GV.Test", "LePass123")},
		{name: "admission number login", method: http.MethodPost, path: "/api/login", body: login("s1001", "LePass123")},
		{
			name: "wrong password", method: http.MethodPost, path: "/api/login", body: login("admin@gv.test", "nope"),
			wantCode: http.StatusUnauthorized, wantData: failureBody(t, user.ErrInvalidCredentials.Error()),
		},
		{
			name: "unknown identifier", method: http.MethodPost, path: "/api/login", body: login("who@gv.test", "LePass123"),
			wantCode: http.StatusUnauthorized, wantData: failureBody(t, user.ErrInvalidCredentials.Error()),
		},
		{
			// a staff email never doubles as an admission number
			name: "admission number lookup only matches students", method: http.MethodPost, path: "/api/login",
			body: login("admin", "LePass123"), wantCode: http.StatusUnauthorized,
			wantData: failureBody(t, user.ErrInvalidCredentials.Error()),
		},
		{
			name: "discontinued account", method: http.MethodPost, path: "/api/login", body: login("gone@gv.test", "LePass123"),
			wantCode: http.StatusForbidden, wantData: failureBody(t, user.ErrDiscontinued.Error()),
		},
		{
			name: "inactive school", method: http.MethodPost, path: "/api/login", body: login("locked@cg.test", "LePass123"),
			wantCode: http.StatusForbidden, wantData: failureBody(t, user.ErrSchoolInactive.Error()),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, tt)
			if rec.Code == http.StatusOK {
				var data echoapi.LoginResponse
				decodeData(t, rec, &data)
				assert.NotEmpty(t, data.Token)
			}
		})
	}
}

func Test_userApi_me(t *testing.T) {
	require.NoError(t, db.ResetData(context.Background()))

	sch := testutil.CreateSchool(t, schoolRepo, "Green Valley", "2025-2026")
	teacher := testutil.CreateUser(t, usrRepo, "Teach", "teach@gv.test", "LePass123", user.RoleTeacher, sch.ID, true)

	t.Run("auth required", func(t *testing.T) {
		do(t, httpTest{
			name: "auth required", path: "/api/users/me",
			wantCode: http.StatusUnauthorized, wantData: errMissingTokenBody,
		})
	})

	t.Run("own profile", func(t *testing.T) {
		rec := do(t, httpTest{name: "own profile", path: "/api/users/me", token: getToken(t, teacher)})
		var data user.User
		decodeData(t, rec, &data)
		assert.Equal(t, teacher.ID, data.ID)
		assert.Equal(t, teacher.Email, data.Email)
	})
}

func Test_userApi_create(t *testing.T) {
	require.NoError(t, db.ResetData(context.Background()))

	schA := testutil.CreateSchool(t, schoolRepo, "School A", "2025-2026")
	schB := testutil.CreateSchool(t, schoolRepo, "School B", "2025-2026")

	admin := testutil.CreateUser(t, usrRepo, "Admin A", "admin@a.test", "LePass123", user.RoleAdmin, schA.ID, true)
	teacher := testutil.CreateUser(t, usrRepo, "Teacher A", "teach@a.test", "LePass123", user.RoleTeacher, schA.ID, true)
	adminToken := getToken(t, admin)

	newUser := func(name, email, role, schoolID string) []byte {
		return marchallObj(t, user.NewUser{
			Name:            name,
			Email:           email,
			Role:            role,
			SchoolID:        schoolID,
			Password:        "StrongPass1!",
			PasswordConfirm: "StrongPass1!",
		})
	}

	tests := []httpTest{
		{
			name: "auth required", method: http.MethodPost, path: "/api/users",
			body: newUser("X", "x@a.test", user.RoleTeacher, ""), wantCode: http.StatusUnauthorized,
			wantData: errMissingTokenBody,
		},
		{
			name: "admin required", method: http.MethodPost, path: "/api/users", token: getToken(t, teacher),
			body: newUser("X", "x@a.test", user.RoleTeacher, ""), wantCode: http.StatusForbidden,
			wantData: errForbiddenBody,
		},
		{
			name: "cannot grant a role above own", method: http.MethodPost, path: "/api/users", token: adminToken,
			body: newUser("X", "x@a.test", user.RoleMasterAdmin, ""), wantCode: http.StatusBadRequest,
			wantData: failureBody(t, "validation failed", map[string]string{"role": "not enough rights to set this role"}),
		},
		{
			name: "cannot create into another school", method: http.MethodPost, path: "/api/users", token: adminToken,
			body: newUser("X", "x@a.test", user.RoleTeacher, schB.ID), wantCode: http.StatusNotFound,
			wantData: errNotFoundBody,
		},
		{
			name: "create teacher", method: http.MethodPost, path: "/api/users", token: adminToken,
			body: newUser("New Teacher", "new@a.test", user.RoleTeacher, ""), wantCode: http.StatusCreated,
		},
		{
			name: "duplicate email", method: http.MethodPost, path: "/api/users", token: adminToken,
			body: newUser("Again", "new@a.test", user.RoleTeacher, ""), wantCode: http.StatusBadRequest,
			wantData: failureBody(t, "validation failed", map[string]string{"email": user.ErrEmailExists.Error()}),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, tt)
			if rec.Code == http.StatusCreated {
				var data user.User
				decodeData(t, rec, &data)
				assert.NotEmpty(t, data.ID)
				// non-superadmin callers are pinned to their own school
				assert.Equal(t, schA.ID, data.SchoolID)
				assert.Equal(t, user.StatusActive, data.Status)
			}
		})
	}

	t.Run("student admission number stored lowercase", func(t *testing.T) {
		body := marchallObj(t, user.NewUser{
			Name:            "New Student",
			Role:            user.RoleStudent,
			ClassName:       "Class 5",
			AdmissionID:     "ADM777",
			DateOfBirth:     "2014-06-01",
			FatherName:      "Father",
			MotherName:      "Mother",
			Password:        "StrongPass1!",
			PasswordConfirm: "StrongPass1!",
		})
		rec := do(t, httpTest{
			name: "create student", method: http.MethodPost, path: "/api/users",
			token: adminToken, body: body, wantCode: http.StatusCreated,
		})
		var data user.User
		decodeData(t, rec, &data)
		assert.Equal(t, "adm777", data.AdmissionID)
	})
}

func Test_userApi_query(t *testing.T) {
	require.NoError(t, db.ResetData(context.Background()))

	schA := testutil.CreateSchool(t, schoolRepo, "School A", "2025-2026")
	schB := testutil.CreateSchool(t, schoolRepo, "School B", "2025-2026")

	adminA := testutil.CreateUser(t, usrRepo, "Admin A", "admin@a.test", "LePass123", user.RoleAdmin, schA.ID, true)
	testutil.CreateUser(t, usrRepo, "Teacher A", "teach@a.test", "", user.RoleTeacher, schA.ID, true)
	studentA := testutil.CreateStudent(t, usrRepo, "Student A", "a1001", "", schA.ID, "Class 5")
	testutil.CreateUser(t, usrRepo, "Admin B", "admin@b.test", "", user.RoleAdmin, schB.ID, true)

	super := testutil.CreateUser(t, usrRepo, "Root", "root@cf.test", "LePass123", user.RoleSuperAdmin, "", true)

	path := func(params url.Values) string { return "/api/users?" + params.Encode() }

	collect := func(t *testing.T, tt httpTest) []user.User {
		rec := do(t, tt)
		var users []user.User
		decodeData(t, rec, &users)
		return users
	}

	t.Run("admin only sees own school", func(t *testing.T) {
		users := collect(t, httpTest{name: "own school", path: "/api/users", token: getToken(t, adminA)})
		require.Len(t, users, 3)
		for _, u := range users {
			assert.Equal(t, schA.ID, u.SchoolID)
		}
	})

	t.Run("cross-tenant school_id reads as not found", func(t *testing.T) {
		do(t, httpTest{
			name: "cross-tenant", path: path(url.Values{"school_id": {schB.ID}}), token: getToken(t, adminA),
			wantCode: http.StatusNotFound, wantData: errNotFoundBody,
		})
	})

	t.Run("superadmin queries any school", func(t *testing.T) {
		users := collect(t, httpTest{
			name: "any school", path: path(url.Values{"school_id": {schB.ID}}), token: getToken(t, super),
		})
		require.Len(t, users, 1)
		assert.Equal(t, "Admin B", users[0].Name)
	})

	t.Run("search matches admission number", func(t *testing.T) {
		users := collect(t, httpTest{
			name: "search", path: path(url.Values{"search": {"a1001"}}), token: getToken(t, adminA),
		})
		require.Len(t, users, 1)
		assert.Equal(t, studentA.ID, users[0].ID)
	})

	t.Run("role filter", func(t *testing.T) {
		users := collect(t, httpTest{
			name: "role filter", path: path(url.Values{"role": {user.RoleTeacher}}), token: getToken(t, adminA),
		})
		require.Len(t, users, 1)
		assert.Equal(t, user.RoleTeacher, users[0].Role)
	})
}

func Test_userApi_discontinue(t *testing.T) {
	require.NoError(t, db.ResetData(context.Background()))

	schA := testutil.CreateSchool(t, schoolRepo, "School A", "2025-2026")
	schB := testutil.CreateSchool(t, schoolRepo, "School B", "2025-2026")

	admin := testutil.CreateUser(t, usrRepo, "Admin A", "admin@a.test", "LePass123", user.RoleAdmin, schA.ID, true)
	teacher := testutil.CreateUser(t, usrRepo, "Teacher A", "teach@a.test", "", user.RoleTeacher, schA.ID, true)
	other := testutil.CreateUser(t, usrRepo, "Admin B", "admin@b.test", "", user.RoleAdmin, schB.ID, true)
	adminToken := getToken(t, admin)

	t.Run("cannot discontinue self", func(t *testing.T) {
		do(t, httpTest{
			name: "self", method: http.MethodDelete, path: "/api/users/" + admin.ID, token: adminToken,
			wantCode: http.StatusForbidden, wantData: errForbiddenBody,
		})
	})

	t.Run("cross-tenant user reads as not found", func(t *testing.T) {
		do(t, httpTest{
			name: "cross-tenant", method: http.MethodDelete, path: "/api/users/" + other.ID, token: adminToken,
			wantCode: http.StatusNotFound, wantData: errNotFoundBody,
		})
	})

	t.Run("discontinue keeps the document", func(t *testing.T) {
		rec := do(t, httpTest{name: "ok", method: http.MethodDelete, path: "/api/users/" + teacher.ID, token: adminToken})
		var data user.User
		decodeData(t, rec, &data)
		assert.Equal(t, user.StatusDiscontinued, data.Status)

		kept, err := usrRepo.GetUserByID(context.Background(), teacher.ID)
		require.NoError(t, err)
		assert.Equal(t, user.StatusDiscontinued, kept.Status)
	})
}

func Test_userApi_tokenRefresh(t *testing.T) {
	require.NoError(t, db.ResetData(context.Background()))

	sch := testutil.CreateSchool(t, schoolRepo, "Green Valley", "2025-2026")
	teacher := testutil.CreateUser(t, usrRepo, "Teach", "teach@gv.test", "LePass123", user.RoleTeacher, sch.ID, true)
	gone := testutil.CreateUser(t, usrRepo, "Gone", "gone@gv.test", "LePass123", user.RoleTeacher, sch.ID, false)

	t.Run("refresh", func(t *testing.T) {
		rec := do(t, httpTest{name: "refresh", method: http.MethodPost, path: "/api/token-refresh", token: getToken(t, teacher)})
		var data echoapi.LoginResponse
		decodeData(t, rec, &data)
		assert.NotEmpty(t, data.Token)
	})

	t.Run("discontinued account cannot refresh", func(t *testing.T) {
		do(t, httpTest{
			name: "discontinued", method: http.MethodPost, path: "/api/token-refresh", token: getToken(t, gone),
			wantCode: http.StatusForbidden, wantData: failureBody(t, user.ErrDiscontinued.Error()),
		})
	})
}
