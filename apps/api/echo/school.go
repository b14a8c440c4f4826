package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/campusflow/campusflow/core/school"
	"github.com/campusflow/campusflow/core/user"
)

type schoolApi struct {
	svc      school.Service
	validate *validator.Validate
}

func registerSchoolAPI(g *echo.Group, jwt echo.MiddlewareFunc, opts *Options) {
	api := schoolApi{svc: opts.SchoolSvc, validate: opts.Validate}

	// school administration is superadmin territory
	sg := g.Group("/schools", jwt, roleMiddleware(user.RoleSuperAdmin))
	sg.POST("", api.create)
	sg.GET("", api.query)
	sg.GET("/:id", api.retrieve)
	sg.PUT("/:id", api.update)
	sg.PUT("/:id/tuition", api.setTuition)

	cg := g.Group("/classes", jwt, adminMiddleware())
	cg.POST("", api.createClass)
	cg.GET("", api.queryClasses)
	cg.GET("/:id", api.retrieveClass)
	cg.PUT("/:id/subjects", api.assignSubjects)
	cg.DELETE("/:id", api.deleteClass)
}

// Handlers

func (api *schoolApi) create(ctx echo.Context) error {
	var data school.NewSchool
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewSchool")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	sch, err := api.svc.Create(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating school")
	}
	return respond(ctx, http.StatusCreated, "school created", sch)
}

func (api *schoolApi) query(ctx echo.Context) error {
	schools, err := api.svc.Query(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "querying schools")
	}
	return respond(ctx, http.StatusOK, "schools", schools)
}

func (api *schoolApi) retrieve(ctx echo.Context) error {
	sch, err := api.svc.GetByID(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return err
	}
	return respond(ctx, http.StatusOK, "school", sch)
}

func (api *schoolApi) update(ctx echo.Context) error {
	var data school.UpdateSchool
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateSchool")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	sch, err := api.svc.Update(ctx.Request().Context(), ctx.Param("id"), data)
	if err != nil {
		return err
	}
	return respond(ctx, http.StatusOK, "school updated", sch)
}

func (api *schoolApi) setTuition(ctx echo.Context) error {
	var data school.TuitionUpdate
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to TuitionUpdate")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	sch, err := api.svc.SetTuition(ctx.Request().Context(), ctx.Param("id"), data)
	if err != nil {
		return err
	}
	return respond(ctx, http.StatusOK, "tuition schedule updated", sch)
}

func (api *schoolApi) createClass(ctx echo.Context) error {
	var data school.NewClass
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewClass")
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

	cls, err := api.svc.CreateClass(ctx.Request().Context(), data)
	if err != nil {
		return err
	}
	return respond(ctx, http.StatusCreated, "class created", cls)
}

func (api *schoolApi) queryClasses(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}
	schoolID, err := scopeSchoolID(claims, ctx.QueryParam("school_id"))
	if err != nil {
		return err
	}

	classes, err := api.svc.QueryClasses(ctx.Request().Context(), schoolID)
	if err != nil {
		return errors.Wrap(err, "querying classes")
	}
	return respond(ctx, http.StatusOK, "classes", classes)
}

func (api *schoolApi) getScopedClass(ctx echo.Context) (school.Class, error) {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return school.Class{}, errors.Wrap(err, "getting context claims")
	}
	cls, err := api.svc.GetClassByID(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return school.Class{}, err
	}
	if !claims.IsSuperAdmin() && cls.SchoolID != claims.SchoolID {
		return school.Class{}, errHttpNotFound
	}
	return cls, nil
}

func (api *schoolApi) retrieveClass(ctx echo.Context) error {
	cls, err := api.getScopedClass(ctx)
	if err != nil {
		return err
	}
	return respond(ctx, http.StatusOK, "class", cls)
}

func (api *schoolApi) assignSubjects(ctx echo.Context) error {
	cls, err := api.getScopedClass(ctx)
	if err != nil {
		return err
	}

	var data school.AssignSubjects
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to AssignSubjects")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	cls, err = api.svc.AssignSubjects(ctx.Request().Context(), cls.ID, data)
	if err != nil {
		return err
	}
	return respond(ctx, http.StatusOK, "subjects assigned", cls)
}

func (api *schoolApi) deleteClass(ctx echo.Context) error {
	cls, err := api.getScopedClass(ctx)
	if err != nil {
		return err
	}
	if err := api.svc.DeleteClass(ctx.Request().Context(), cls.ID); err != nil {
		return err
	}
	return respond(ctx, http.StatusOK, "class deleted", nil)
}
