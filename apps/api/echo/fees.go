package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/campusflow/campusflow/core/fees"
	"github.com/campusflow/campusflow/core/user"
)

type feesApi struct {
	svc      fees.Service
	userSvc  user.Service
	validate *validator.Validate
}

func registerFeesAPI(g *echo.Group, jwt echo.MiddlewareFunc, opts *Options) {
	api := feesApi{svc: opts.FeesSvc, userSvc: opts.UserSvc, validate: opts.Validate}

	fg := g.Group("/fees", jwt)
	// recording and revising payments is staff work
	fg.POST("/payments", api.record, adminMiddleware())
	fg.PUT("/payments/:id", api.update, adminMiddleware())
	fg.GET("/payments", api.query, adminMiddleware())
	fg.GET("/payments/:id", api.retrieve, adminMiddleware())
	// students may read their own summary
	fg.GET("/summary", api.summary)
}

// Handlers

func (api *feesApi) record(ctx echo.Context) error {
	var data fees.NewPayment
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewPayment")
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

	p, err := api.svc.RecordPayment(ctx.Request().Context(), data, claims.Subject)
	if err != nil {
		return err
	}
	return respond(ctx, http.StatusCreated, "payment recorded", p)
}

func (api *feesApi) update(ctx echo.Context) error {
	var data fees.UpdatePayment
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdatePayment")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}
	p, err := api.svc.GetPayment(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return err
	}
	if !claims.IsSuperAdmin() && p.SchoolID != claims.SchoolID {
		return errHttpNotFound
	}

	p, err = api.svc.UpdatePayment(ctx.Request().Context(), p.ID, data)
	if err != nil {
		return err
	}
	return respond(ctx, http.StatusOK, "payment updated", p)
}

func (api *feesApi) retrieve(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}
	p, err := api.svc.GetPayment(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return err
	}
	if !claims.IsSuperAdmin() && p.SchoolID != claims.SchoolID {
		return errHttpNotFound
	}
	return respond(ctx, http.StatusOK, "payment", p)
}

func (api *feesApi) query(ctx echo.Context) error {
	filter := new(fees.QueryFilter)
	if err := ctx.Bind(filter); err != nil {
		return respond(ctx, http.StatusOK, "payments", []fees.Payment{})
	}

	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}
	if filter.SchoolID, err = scopeSchoolID(claims, filter.SchoolID); err != nil {
		return err
	}

	payments, err := api.svc.Query(ctx.Request().Context(), *filter)
	if err != nil {
		return errors.Wrap(err, "querying payments")
	}
	return respond(ctx, http.StatusOK, "payments", payments)
}

func (api *feesApi) summary(ctx echo.Context) error {
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

	summary, err := api.svc.StudentSummary(ctx.Request().Context(), studentID, academicYear)
	if err != nil {
		return err
	}
	return respond(ctx, http.StatusOK, "fee summary", summary)
}
