package main

import (
	"context"
	"expvar"
	"flag"
	"fmt"
	"log"
	"net/http"
	_ "net/http/pprof"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	echoapi "github.com/campusflow/campusflow/apps/api/echo"
	"github.com/campusflow/campusflow/core"
	"github.com/campusflow/campusflow/core/assessment"
	"github.com/campusflow/campusflow/core/attendance"
	"github.com/campusflow/campusflow/core/fees"
	"github.com/campusflow/campusflow/core/report"
	"github.com/campusflow/campusflow/core/school"
	"github.com/campusflow/campusflow/core/subject"
	"github.com/campusflow/campusflow/core/user"
	emailsvc "github.com/campusflow/campusflow/services/email"
	logsvc "github.com/campusflow/campusflow/services/logger"
	"github.com/campusflow/campusflow/storage/inmem"
	mongodb "github.com/campusflow/campusflow/storage/mongo"
)

type repos struct {
	user       user.Repository
	school     school.Repository
	subject    subject.Repository
	fees       fees.Repository
	attendance attendance.Repository
	assessment assessment.Repository
	report     report.Repository
}

func main() {
	useMem := flag.Bool("mem", false, "use the in-memory store instead of MongoDB")
	flag.Parse()

	// =========================================================================
	// Set up Dependencies

	conf := core.NewConfig()

	logger := logsvc.NewRollbarLogger(
		log.New(os.Stdout, "API : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile),
		conf,
	)
	logger.Enable(!conf.Debug)

	r, closeDB, err := setUpRepos(conf, *useMem)
	if err != nil {
		logger.Fatal(fmt.Sprintf("setting up storage: %v", err), err)
	}
	defer closeDB()

	var mailSvc core.EmailService
	if conf.Debug {
		mailSvc = emailsvc.NewConsoleService(conf)
	} else {
		mailSvc = emailsvc.NewSendgridService(logger, conf)
	}

	usrSvc := user.NewService(r.user, r.school, mailSvc, conf)
	schoolSvc := school.NewService(r.school)
	subjectSvc := subject.NewService(r.subject, r.school)
	feesSvc := fees.NewService(r.fees, r.user, r.school, mailSvc, conf)
	attendanceSvc := attendance.NewService(r.attendance)
	assessmentSvc := assessment.NewService(r.assessment)
	reportSvc := report.NewService(r.report)

	// =========================================================================
	// Initialize App

	logger.Info(fmt.Sprintf("Application initializing : version %q", conf.Build))
	defer logger.Info("Application stopped")

	validate := validator.New()
	translator := newTranslator()
	core.InitValidators(validate, translator)
	user.InitValidators(validate, translator)

	user.LoadCommonPasswords(logger)

	// =========================================================================
	// Start Debug Service
	//
	// /debug/pprof - Added to the default mux by importing the net/http/pprof package.
	// /debug/vars - Added to the default mux by importing the expvar package.

	expvar.NewString("build").Set(conf.Build)
	expvar.NewString("env").Set(conf.Env)

	go func() {
		if err := http.ListenAndServe(conf.Server.DebugAddr, http.DefaultServeMux); err != nil {
			logger.Error(fmt.Sprintf("debug server closed: %v", err), err)
		}
	}()

	// =========================================================================
	// Start API Service

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)
	serverErrors := make(chan error, 1)

	server := echoapi.NewServer(&echoapi.Options{
		Address:        conf.Server.Addr,
		Conf:           conf,
		Logger:         logger,
		Validate:       validate,
		Translator:     translator,
		UserSvc:        usrSvc,
		SchoolSvc:      schoolSvc,
		SubjectSvc:     subjectSvc,
		FeesSvc:        feesSvc,
		AttendanceSvc:  attendanceSvc,
		AssessmentSvc:  assessmentSvc,
		ReportSvc:      reportSvc,
		SignalShutdown: func() { shutdown <- syscall.SIGTERM },
	})

	go func() {
		serverErrors <- server.Start()
	}()

	// =========================================================================
	// Shutdown

	select {
	case err := <-serverErrors:
		logger.Fatal(fmt.Sprintf("server error: %v", err), err)

	case sig := <-shutdown:
		logger.Info(fmt.Sprintf("%v: Start shutdown...", sig))

		// give outstanding requests a deadline for completion
		ctx, cancel := context.WithTimeout(context.Background(), conf.Server.ShutdownTimeout)
		defer cancel()

		if err := server.Stop(ctx); err != nil {
			logger.Error(fmt.Sprintf("could not stop server gracefully: %v", err), err)
		}
	}
}

func setUpRepos(conf *core.Config, useMem bool) (repos, func(), error) {
	if useMem {
		db, err := inmem.Open()
		if err != nil {
			return repos{}, nil, err
		}
		return repos{
			user:       inmem.NewUserRepository(db),
			school:     inmem.NewSchoolRepository(db),
			subject:    inmem.NewSubjectRepository(db),
			fees:       inmem.NewFeesRepository(db),
			attendance: inmem.NewAttendanceRepository(db),
			assessment: inmem.NewAssessmentRepository(db),
			report:     inmem.NewReportRepository(db),
		}, func() {}, nil
	}

	db, err := mongodb.Open(conf)
	if err != nil {
		return repos{}, nil, err
	}
	if err = mongodb.EnsureIndexes(context.Background(), db); err != nil {
		return repos{}, nil, err
	}
	closeDB := func() {
		ctx, cancel := context.WithTimeout(context.Background(), conf.Server.ShutdownTimeout)
		defer cancel()
		_ = db.Close(ctx)
	}
	return repos{
		user:       mongodb.NewUserRepository(db),
		school:     mongodb.NewSchoolRepository(db),
		subject:    mongodb.NewSubjectRepository(db),
		fees:       mongodb.NewFeesRepository(db),
		attendance: mongodb.NewAttendanceRepository(db),
		assessment: mongodb.NewAssessmentRepository(db),
		report:     mongodb.NewReportRepository(db),
	}, closeDB, nil
}

func newTranslator() ut.Translator {
	_en := en.New()
	uni := ut.New(_en, _en)
	translator, _ := uni.GetTranslator("en")
	return translator
}
