package echoapi

import (
	"context"
	"net/http"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"

	"github.com/campusflow/campusflow/core"
	"github.com/campusflow/campusflow/core/assessment"
	"github.com/campusflow/campusflow/core/attendance"
	"github.com/campusflow/campusflow/core/fees"
	"github.com/campusflow/campusflow/core/report"
	"github.com/campusflow/campusflow/core/school"
	"github.com/campusflow/campusflow/core/subject"
	"github.com/campusflow/campusflow/core/user"
)

type (
	Options struct {
		Address        string
		DisableReqLogs bool

		Conf       *core.Config
		Logger     core.Logger
		Validate   *validator.Validate
		Translator ut.Translator

		UserSvc       user.Service
		SchoolSvc     school.Service
		SubjectSvc    subject.Service
		FeesSvc       fees.Service
		AttendanceSvc attendance.Service
		AssessmentSvc assessment.Service
		ReportSvc     report.Service

		// SignalShutdown triggers a graceful server shutdown on
		// unrecoverable errors.
		SignalShutdown func()
	}

	Server interface {
		http.Handler
		Start() error
		Stop(context.Context) error
	}

	server struct {
		opts *Options
		app  *echo.Echo
	}
)

var _ Server = (*server)(nil)

func NewServer(opts *Options) Server {
	s := &server{
		opts: opts,
		app:  echo.New(),
	}
	s.setup()
	return s
}

func (s *server) setup() {
	conf := s.opts.Conf
	initAuth(conf)

	s.app.Pre(middleware.RemoveTrailingSlash())
	if !s.opts.DisableReqLogs {
		s.app.Use(middleware.Logger())
	}
	// do not recover in DEV|TEST mode
	if !(conf.Debug || conf.TestMode) {
		s.app.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{LogLevel: log.ERROR}))
	}

	s.app.HTTPErrorHandler = newAppHTTPErrorHandler(s.opts.Logger, s.opts.Translator, s.opts.SignalShutdown)
	s.app.Debug = conf.Debug

	s.app.GET("/", home)

	api := s.app.Group("/api")
	jwt := middleware.JWTWithConfig(appJWTConfig)

	registerUserAPI(api, jwt, s.opts)
	registerSchoolAPI(api, jwt, s.opts)
	registerSubjectAPI(api, jwt, s.opts)
	registerFeesAPI(api, jwt, s.opts)
	registerAttendanceAPI(api, jwt, s.opts)
	registerAssessmentAPI(api, jwt, s.opts)
	registerReportAPI(api, jwt, s.opts)
}

func (s *server) Start() error {
	return s.app.Start(s.opts.Address)
}

func (s *server) Stop(ctx context.Context) error {
	return s.app.Shutdown(ctx)
}

func (s *server) ServeHTTP(w http.ResponseWriter, r *http.Request) { // for tests
	s.app.ServeHTTP(w, r)
}

func home(ctx echo.Context) error {
	return respond(ctx, http.StatusOK, "Welcome to CampusFlow API!", nil)
}
