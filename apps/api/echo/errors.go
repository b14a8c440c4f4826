package echoapi

import (
	"net/http"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"

	"github.com/campusflow/campusflow/core"
	"github.com/campusflow/campusflow/core/assessment"
	"github.com/campusflow/campusflow/core/attendance"
	"github.com/campusflow/campusflow/core/fees"
	"github.com/campusflow/campusflow/core/report"
	"github.com/campusflow/campusflow/core/school"
	"github.com/campusflow/campusflow/core/subject"
	"github.com/campusflow/campusflow/core/user"
)

var (
	errUnauthorized   = echo.NewHTTPError(http.StatusUnauthorized, "user not authenticated")
	errRefreshExpired = echo.NewHTTPError(http.StatusForbidden, "refresh has expired")
	errHttpForbidden  = echo.NewHTTPError(http.StatusForbidden, "permission denied")
	errHttpNotFound   = echo.NewHTTPError(http.StatusNotFound, "not found")
)

// sentinelStatus maps the domain sentinels onto HTTP statuses. Anything
// not listed here is a server error.
func sentinelStatus(err error) (int, bool) {
	switch err {
	case user.ErrNotFound, school.ErrNotFound, school.ErrClassNotFound,
		subject.ErrNotFound, fees.ErrNotFound, attendance.ErrNotFound,
		assessment.ErrNotFound, assessment.ErrMarksNotFound, report.ErrNotFound:
		return http.StatusNotFound, true
	case user.ErrInvalidCredentials:
		return http.StatusUnauthorized, true
	case user.ErrDiscontinued, user.ErrSchoolInactive:
		return http.StatusForbidden, true
	case user.ErrEmailExists, user.ErrAdmissionIDExists,
		subject.ErrNameExists, subject.ErrInUse, assessment.ErrSchemeExists:
		return http.StatusConflict, true
	}
	return 0, false
}

// newAppHTTPErrorHandler returns a custom echo.HTTPErrorHandler mapping the
// app's typed errors onto envelope responses. signalShutdown is called
// whenever a core.shutdown error is caught.
func newAppHTTPErrorHandler(logger core.Logger, translator ut.Translator, signalShutdown func()) echo.HTTPErrorHandler {
	return func(err error, ctx echo.Context) {
		var code int
		var message string
		var errDetail interface{}

		cause := errors.Cause(err)
		if status, ok := sentinelStatus(cause); ok {
			code = status
			message = cause.Error()
		} else {
			switch origErr := cause.(type) {
			case *echo.HTTPError:
				if origErr == middleware.ErrJWTMissing {
					code = http.StatusUnauthorized
					message = "user not authenticated"
					break
				}
				if origErr.Internal != nil {
					if herr, ok := origErr.Internal.(*echo.HTTPError); ok {
						origErr = herr
					}
				}
				code = origErr.Code
				if m, ok := origErr.Message.(string); ok {
					message = m
				} else {
					message = http.StatusText(code)
				}
			case validator.ValidationErrors:
				fldErrs := make(map[string]string, len(origErr))
				for _, vErr := range origErr {
					fldErrs[vErr.Field()] = vErr.Translate(translator)
				}
				code = http.StatusBadRequest
				message = "validation failed"
				errDetail = fldErrs
			case *core.ValidationError:
				code = http.StatusBadRequest
				message = "validation failed"
				if origErr.Fields != nil {
					fldErrs := make(map[string]string, len(origErr.Fields))
					for _, fErr := range origErr.Fields {
						fldErrs[fErr.Field] = fErr.Error
					}
					errDetail = fldErrs
				} else {
					message = origErr.Error()
				}
			default: // any other error is a server error
				code = http.StatusInternalServerError
				message = http.StatusText(code)

				var usr user.User
				if claims, cErr := getContextClaims(ctx); cErr == nil {
					usr.ID = claims.Subject
					usr.Name = claims.Name
					usr.Email = claims.Email
				}
				logger.Error(message, errors.Wrap(err, message), usr)

				// shutting down...
				if core.IsShutdown(err) {
					signalShutdown()
				}
			}
		}

		if ctx.Echo().Debug && errDetail == nil {
			errDetail = err.Error()
		}

		// Send response
		if !ctx.Response().Committed {
			if ctx.Request().Method == http.MethodHead { // Issue #608
				err = ctx.NoContent(code)
			} else {
				err = respondError(ctx, code, message, errDetail)
			}
			if err != nil {
				ctx.Echo().Logger.Error(err)
			}
		}
	}
}
