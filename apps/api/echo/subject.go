package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	subj "github.com/campusflow/campusflow/core/subject"
)

type subjectApi struct {
	svc      subj.Service
	validate *validator.Validate
}

func registerSubjectAPI(g *echo.Group, jwt echo.MiddlewareFunc, opts *Options) {
	api := subjectApi{svc: opts.SubjectSvc, validate: opts.Validate}

	sg := g.Group("/subjects", jwt, adminMiddleware())
	sg.POST("", api.create)
	sg.GET("", api.query)
	sg.PUT("/:id", api.rename)
	sg.DELETE("/:id", api.destroy)
}

// Handlers

func (api *subjectApi) create(ctx echo.Context) error {
	var data subj.NewSubject
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewSubject")
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

	sub, err := api.svc.Create(ctx.Request().Context(), data)
	if err != nil {
		return err
	}
	return respond(ctx, http.StatusCreated, "subject created", sub)
}

func (api *subjectApi) query(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}
	schoolID, err := scopeSchoolID(claims, ctx.QueryParam("school_id"))
	if err != nil {
		return err
	}

	subjects, err := api.svc.Query(ctx.Request().Context(), schoolID)
	if err != nil {
		return errors.Wrap(err, "querying subjects")
	}
	return respond(ctx, http.StatusOK, "subjects", subjects)
}

func (api *subjectApi) getScoped(ctx echo.Context) (subj.Subject, error) {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return subj.Subject{}, errors.Wrap(err, "getting context claims")
	}
	sub, err := api.svc.GetByID(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return subj.Subject{}, err
	}
	if !claims.IsSuperAdmin() && sub.SchoolID != claims.SchoolID {
		return subj.Subject{}, errHttpNotFound
	}
	return sub, nil
}

func (api *subjectApi) rename(ctx echo.Context) error {
	sub, err := api.getScoped(ctx)
	if err != nil {
		return err
	}

	var data subj.RenameSubject
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to RenameSubject")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	sub, err = api.svc.Rename(ctx.Request().Context(), sub.ID, data)
	if err != nil {
		return err
	}
	return respond(ctx, http.StatusOK, "subject renamed", sub)
}

// destroy refuses to delete a subject that any class still references.
func (api *subjectApi) destroy(ctx echo.Context) error {
	sub, err := api.getScoped(ctx)
	if err != nil {
		return err
	}
	if err := api.svc.Delete(ctx.Request().Context(), sub.ID); err != nil {
		return err
	}
	return respond(ctx, http.StatusOK, "subject deleted", nil)
}
