package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/campusflow/campusflow/core/assessment"
	"github.com/campusflow/campusflow/core/user"
)

type assessmentApi struct {
	svc      assessment.Service
	userSvc  user.Service
	validate *validator.Validate
}

func registerAssessmentAPI(g *echo.Group, jwt echo.MiddlewareFunc, opts *Options) {
	api := assessmentApi{svc: opts.AssessmentSvc, userSvc: opts.UserSvc, validate: opts.Validate}

	ag := g.Group("/assessment", jwt)
	ag.GET("/scheme", api.resolveScheme, adminMiddleware(user.RoleTeacher))
	ag.PUT("/scheme", api.updateScheme, adminMiddleware())
	ag.POST("/marks", api.saveMarks, adminMiddleware(user.RoleTeacher))
	ag.GET("/marks", api.studentMarks)
}

// Handlers

func (api *assessmentApi) bindKey(ctx echo.Context) (assessment.SchemeKey, error) {
	key := assessment.SchemeKey{
		SchoolID:     ctx.QueryParam("school_id"),
		ClassName:    ctx.QueryParam("class_name"),
		AcademicYear: ctx.QueryParam("academic_year"),
	}
	claims, err := getContextClaims(ctx)
	if err != nil {
		return key, errors.Wrap(err, "getting context claims")
	}
	if key.SchoolID, err = scopeSchoolID(claims, key.SchoolID); err != nil {
		return key, err
	}
	return key, key.Validate(api.validate)
}

// resolveScheme returns the class's scheme, creating it with the default
// structure on first read.
func (api *assessmentApi) resolveScheme(ctx echo.Context) error {
	key, err := api.bindKey(ctx)
	if err != nil {
		return err
	}
	scheme, err := api.svc.Resolve(ctx.Request().Context(), key)
	if err != nil {
		return err
	}
	return respond(ctx, http.StatusOK, "assessment scheme", scheme)
}

func (api *assessmentApi) updateScheme(ctx echo.Context) error {
	key, err := api.bindKey(ctx)
	if err != nil {
		return err
	}

	var data assessment.UpdateScheme
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateScheme")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	scheme, err := api.svc.Update(ctx.Request().Context(), key, data)
	if err != nil {
		return err
	}
	return respond(ctx, http.StatusOK, "assessment scheme updated", scheme)
}

func (api *assessmentApi) saveMarks(ctx echo.Context) error {
	var data assessment.SaveMarks
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to SaveMarks")
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

	marks, err := api.svc.SaveMarks(ctx.Request().Context(), data, claims.Subject)
	if err != nil {
		return err
	}
	return respond(ctx, http.StatusOK, "marks saved", marks)
}

func (api *assessmentApi) studentMarks(ctx echo.Context) error {
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

	marks, err := api.svc.StudentMarks(ctx.Request().Context(), studentID, academicYear)
	if err != nil {
		return err
	}
	return respond(ctx, http.StatusOK, "student marks", marks)
}
