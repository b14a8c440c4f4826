package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/campusflow/campusflow/core"
	"github.com/campusflow/campusflow/core/attendance"
	"github.com/campusflow/campusflow/core/user"
)

type attendanceApi struct {
	svc      attendance.Service
	userSvc  user.Service
	validate *validator.Validate
}

func registerAttendanceAPI(g *echo.Group, jwt echo.MiddlewareFunc, opts *Options) {
	api := attendanceApi{svc: opts.AttendanceSvc, userSvc: opts.UserSvc, validate: opts.Validate}

	ag := g.Group("/attendance", jwt)
	ag.POST("", api.record, adminMiddleware(user.RoleTeacher))
	ag.GET("", api.studentRecords)
	ag.GET("/summary", api.summary)
	ag.GET("/months", api.months)
}

// Handlers

func (api *attendanceApi) record(ctx echo.Context) error {
	var data attendance.NewRecord
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewRecord")
	}

	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}
	if data.SchoolID, err = scopeSchoolID(claims, data.SchoolID); err != nil {
		return err
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}
	if err := canAccessStudent(ctx, claims, api.userSvc, data.StudentID); err != nil {
		return err
	}

	rec, err := api.svc.Record(ctx.Request().Context(), data, claims.Subject)
	if err != nil {
		return err
	}
	return respond(ctx, http.StatusOK, "attendance recorded", rec)
}

func (api *attendanceApi) studentParams(ctx echo.Context) (studentID, academicYear string, err error) {
	studentID = ctx.QueryParam("student_id")
	academicYear = ctx.QueryParam("academic_year")

	claims, err := getContextClaims(ctx)
	if err != nil {
		return "", "", errors.Wrap(err, "getting context claims")
	}
	if claims.IsStudent() && studentID == "" {
		studentID = claims.Subject
	}
	if err = canAccessStudent(ctx, claims, api.userSvc, studentID); err != nil {
		return "", "", err
	}
	return studentID, academicYear, nil
}

func (api *attendanceApi) studentRecords(ctx echo.Context) error {
	studentID, academicYear, err := api.studentParams(ctx)
	if err != nil {
		return err
	}

	records, err := api.svc.StudentRecords(ctx.Request().Context(), studentID, academicYear)
	if err != nil {
		return err
	}
	return respond(ctx, http.StatusOK, "attendance records", records)
}

func (api *attendanceApi) summary(ctx echo.Context) error {
	studentID, academicYear, err := api.studentParams(ctx)
	if err != nil {
		return err
	}

	summary, err := api.svc.StudentSummary(ctx.Request().Context(), studentID, academicYear)
	if err != nil {
		return err
	}
	return respond(ctx, http.StatusOK, "attendance summary", summary)
}

// months lists the calendar slots of an academic year, June through May.
func (api *attendanceApi) months(ctx echo.Context) error {
	slots, err := core.AcademicYearMonths(ctx.QueryParam("academic_year"))
	if err != nil {
		return core.NewValidationError(nil, core.FieldError{Field: "academic_year", Error: err.Error()})
	}
	return respond(ctx, http.StatusOK, "academic year months", slots)
}
