package main

import (
	"context"
	"expvar"
	"fmt"
	"log"
	"net/http"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	echoapi "github.com/trezcool/aula/apps/api/echo"
	"github.com/trezcool/aula/core"
	"github.com/trezcool/aula/core/assignment"
	"github.com/trezcool/aula/core/course"
	"github.com/trezcool/aula/core/enrollment"
	"github.com/trezcool/aula/core/forum"
	"github.com/trezcool/aula/core/user"
	emailsvc "github.com/trezcool/aula/services/email"
	logsvc "github.com/trezcool/aula/services/logger"
	"github.com/trezcool/aula/storage/kv"
	"github.com/trezcool/aula/storage/records"
)

func main() {
	// =========================================================================
	// Set up Dependencies

	conf := core.NewConfig()

	// set up loggers
	zl, err := logsvc.NewZapLogger("API", conf)
	if err != nil {
		log.Fatalf("setting up logger: %v", err)
	}
	logger := logsvc.NewRollbarLogger(zl, conf)
	logger.Enable(!conf.Debug)
	defer func() { _ = logger.Sync() }()

	dbLogger := logsvc.NewRollbarLogger(zl.Named("DB"), conf)

	// set up DB
	store, err := kv.Open(context.Background(), conf.Store)
	if err != nil {
		logger.Fatal(fmt.Sprintf("setting up store: %v", err), err)
	}
	db := records.Open(store)
	defer func() {
		if err = db.Close(); err != nil {
			dbLogger.Error("Failed to close", err)
		}
	}()
	dbLogger.Info(fmt.Sprintf("using %q store", conf.Store.Engine))

	// set up repos & services
	usrRepo := records.NewUserRepository(db)
	matRepo := records.NewMaterialRepository(db)
	assignRepo := records.NewAssignmentRepository(db)

	var mailSvc core.EmailService
	if conf.Debug {
		mailSvc = emailsvc.NewConsoleService(conf, logger)
	} else {
		mailSvc = emailsvc.NewSendgridService(conf, logger)
	}
	usrSvc := user.NewService(usrRepo, mailSvc)
	enrollSvc := enrollment.NewService(records.NewEnrollmentRepository(db), matRepo, assignRepo)

	// =========================================================================
	// Initialize App

	logger.Info(fmt.Sprintf("Application initializing : version %q", conf.Build))
	defer logger.Info("Application stopped")

	validate := validator.New()
	translator := newTranslator()
	core.InitValidators(validate, translator)
	user.InitValidators(validate, translator)

	// =========================================================================
	// Start Debug Service
	//
	// /debug/vars - Added to the default mux by importing the expvar package.

	// Expose important info under /debug/vars.
	expvar.NewString("build").Set(conf.Build)
	expvar.NewString("env").Set(conf.Env)
	expvar.NewString("store").Set(conf.Store.Engine)

	go func() {
		if err := http.ListenAndServe(conf.Server.DebugHost, http.DefaultServeMux); err != nil {
			logger.Error(fmt.Sprintf("debug server closed: %v", err), err)
		}
	}()

	// =========================================================================
	// Start API Service

	server := echoapi.NewServer(
		echoapi.ServerDeps{
			Conf:          conf,
			Logger:        logger,
			UserSvc:       usrSvc,
			CourseSvc:     course.NewService(matRepo),
			EnrollmentSvc: enrollSvc,
			AssignmentSvc: assignment.NewService(assignRepo, usrSvc, enrollSvc, mailSvc),
			ForumSvc:      forum.NewService(records.NewForumRepository(db), matRepo),
			Validate:      validate,
			Translator:    translator,
		},
	)

	go func() {
		server.Start()
	}()

	// =========================================================================
	// Shutdown

	select {
	case err = <-server.Errors():
		logger.Error(fmt.Sprintf("server error: %v", err), err)

	case sig := <-server.ShutdownSignal():
		logger.Info(fmt.Sprintf("%v: Start shutdown...", sig))

		// give outstanding requests a deadline for completion
		ctx, cancel := context.WithTimeout(context.Background(), conf.Server.ShutdownTimeout)
		defer cancel()

		// asking listener to shutdown and shed load
		if err = server.Shutdown(ctx); err != nil {
			logger.Error(fmt.Sprintf("could not stop server gracefully: %v", err), err)

			if err = server.Close(); err != nil {
				logger.Error(fmt.Sprintf("could not force stop server: %v", err), err)
			}
		}
	}
}

func newTranslator() ut.Translator {
	_en := en.New()
	uni := ut.New(_en, _en)
	translator, _ := uni.GetTranslator("en")
	return translator
}
