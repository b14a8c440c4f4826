package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/campusflow/campusflow/core/assessment"
	"github.com/campusflow/campusflow/core/report"
	"github.com/campusflow/campusflow/core/school"
	"github.com/campusflow/campusflow/core/user"
)

type reportApi struct {
	svc           report.Service
	userSvc       user.Service
	schoolSvc     school.Service
	assessmentSvc assessment.Service
	validate      *validator.Validate
}

func registerReportAPI(g *echo.Group, jwt echo.MiddlewareFunc, opts *Options) {
	api := reportApi{
		svc:           opts.ReportSvc,
		userSvc:       opts.UserSvc,
		schoolSvc:     opts.SchoolSvc,
		assessmentSvc: opts.AssessmentSvc,
		validate:      opts.Validate,
	}

	rg := g.Group("/reports", jwt)
	rg.PUT("", api.upsert, adminMiddleware(user.RoleTeacher))
	rg.GET("", api.retrieve)
	rg.GET("/student", api.queryStudent)
	rg.GET("/front", api.frontView)
	rg.GET("/back", api.backView)
}

// Handlers

// upsert saves a report card under its natural key: the same
// (student, school, academic year, template, term) always lands on one
// document, re-saves replace it.
func (api *reportApi) upsert(ctx echo.Context) error {
	var data report.UpsertReportCard
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpsertReportCard")
	}

	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}
	if data.Key.SchoolID, err = scopeSchoolID(claims, data.Key.SchoolID); err != nil {
		return err
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}
	if err := canAccessStudent(ctx, claims, api.userSvc, data.Key.StudentID); err != nil {
		return err
	}

	rc, err := api.svc.Upsert(ctx.Request().Context(), data)
	if err != nil {
		return err
	}
	return respond(ctx, http.StatusOK, "report card saved", rc)
}

func (api *reportApi) bindKey(ctx echo.Context) (report.Key, error) {
	var key report.Key
	if err := ctx.Bind(&key); err != nil {
		return key, errors.Wrap(err, "binding to report Key")
	}

	claims, err := getContextClaims(ctx)
	if err != nil {
		return key, errors.Wrap(err, "getting context claims")
	}
	if claims.IsStudent() && key.StudentID == "" {
		key.StudentID = claims.Subject
	}
	if key.SchoolID, err = scopeSchoolID(claims, key.SchoolID); err != nil {
		return key, err
	}
	if err = canAccessStudent(ctx, claims, api.userSvc, key.StudentID); err != nil {
		return key, err
	}
	return key, key.Validate(api.validate)
}

func (api *reportApi) retrieve(ctx echo.Context) error {
	key, err := api.bindKey(ctx)
	if err != nil {
		return err
	}
	rc, err := api.svc.Get(ctx.Request().Context(), key)
	if err != nil {
		return err
	}
	return respond(ctx, http.StatusOK, "report card", rc)
}

func (api *reportApi) queryStudent(ctx echo.Context) error {
	studentID := ctx.QueryParam("student_id")
	academicYear := ctx.QueryParam("academic_year")

	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}
	if claims.IsStudent() && studentID == "" {
		studentID = claims.Subject
	}
	if err := canAccessStudent(ctx, claims, api.userSvc, studentID); err != nil {
		return err
	}

	cards, err := api.svc.QueryStudent(ctx.Request().Context(), studentID, academicYear)
	if err != nil {
		return err
	}
	return respond(ctx, http.StatusOK, "report cards", cards)
}

func (api *reportApi) frontView(ctx echo.Context) error {
	key, err := api.bindKey(ctx)
	if err != nil {
		return err
	}
	rc, err := api.svc.Get(ctx.Request().Context(), key)
	if err != nil {
		return err
	}

	student, err := api.userSvc.GetByID(ctx.Request().Context(), rc.StudentID)
	if err != nil {
		return err
	}
	sch, err := api.schoolSvc.GetByID(ctx.Request().Context(), rc.SchoolID)
	if err != nil {
		return err
	}

	view := report.BuildFrontView(rc, report.StudentInfo{
		Name:        student.Name,
		AdmissionID: student.AdmissionID,
		ClassName:   rc.ClassName,
		SchoolName:  sch.Name,
	})
	return respond(ctx, http.StatusOK, "report card front", view)
}

func (api *reportApi) backView(ctx echo.Context) error {
	key, err := api.bindKey(ctx)
	if err != nil {
		return err
	}
	rc, err := api.svc.Get(ctx.Request().Context(), key)
	if err != nil {
		return err
	}

	scheme, err := api.assessmentSvc.Resolve(ctx.Request().Context(), assessment.SchemeKey{
		SchoolID:     rc.SchoolID,
		ClassName:    rc.ClassName,
		AcademicYear: rc.AcademicYear,
	})
	if err != nil {
		return err
	}

	return respond(ctx, http.StatusOK, "report card back", report.BuildBackView(rc, scheme))
}
