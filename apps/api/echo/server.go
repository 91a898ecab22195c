package echoapi

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"

	"github.com/trezcool/aula/core"
	"github.com/trezcool/aula/core/assignment"
	"github.com/trezcool/aula/core/course"
	"github.com/trezcool/aula/core/enrollment"
	"github.com/trezcool/aula/core/forum"
	"github.com/trezcool/aula/core/user"
)

type (
	ServerDeps struct {
		Conf          *core.Config
		Logger        core.Logger
		UserSvc       *user.Service
		CourseSvc     *course.Service
		EnrollmentSvc *enrollment.Service
		AssignmentSvc *assignment.Service
		ForumSvc      *forum.Service
		Validate      *validator.Validate
		Translator    ut.Translator
	}

	Server struct {
		deps     ServerDeps
		app      *echo.Echo
		auth     *Authenticator
		errors   chan error
		shutdown chan os.Signal
		stopOnce sync.Once
	}
)

func NewServer(deps ServerDeps) *Server {
	s := &Server{
		deps:     deps,
		app:      echo.New(),
		auth:     NewAuthenticator(deps.Conf),
		errors:   make(chan error, 1),
		shutdown: make(chan os.Signal, 1),
	}
	signal.Notify(s.shutdown, os.Interrupt, syscall.SIGTERM)
	s.setup()
	return s
}

func (s *Server) setup() {
	conf := s.deps.Conf

	s.app.HideBanner = true
	s.app.Pre(middleware.RemoveTrailingSlash())
	if !conf.Server.DisableReqLogs {
		s.app.Use(middleware.Logger())
	}
	// do not recover in DEV|TEST mode
	if !(conf.Debug || conf.TestMode) {
		s.app.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{LogLevel: log.ERROR}))
	}

	s.app.HTTPErrorHandler = newAppHTTPErrorHandler(s.deps.Logger, s.deps.Translator, s.auth, s.signalShutdown)
	s.app.Debug = conf.Debug

	s.app.GET("/", s.home)

	v1 := s.app.Group("/v1")
	authed := []echo.MiddlewareFunc{s.auth.Middleware(), ctxUserMiddleware(s.auth, s.deps.UserSvc)}

	registerUserAPI(v1, authed, s.auth, s.deps.UserSvc, s.deps.Validate)
	registerCourseAPI(v1, authed, s.deps.CourseSvc, s.deps.EnrollmentSvc, s.deps.Validate)
	registerAssignmentAPI(v1, authed, s.deps.AssignmentSvc, s.deps.EnrollmentSvc, s.deps.Validate)
	registerForumAPI(v1, authed, s.deps.ForumSvc, s.deps.Validate)
}

// Start blocks until the server stops; listen errors are sent to Errors().
func (s *Server) Start() {
	if err := s.app.Start(s.deps.Conf.Server.Address); err != nil && err != http.ErrServerClosed {
		s.errors <- err
	}
}

func (s *Server) Errors() <-chan error {
	return s.errors
}

func (s *Server) ShutdownSignal() <-chan os.Signal {
	return s.shutdown
}

func (s *Server) signalShutdown() {
	s.stopOnce.Do(func() {
		select {
		case s.shutdown <- syscall.SIGTERM:
		default: // already shutting down
		}
	})
}

func (s *Server) Shutdown(ctx context.Context) error {
	signal.Stop(s.shutdown)
	return s.app.Shutdown(ctx)
}

func (s *Server) Close() error {
	return s.app.Close()
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) { // for tests
	s.app.ServeHTTP(w, r)
}

// Auth gives access to the token issuer, eg. to sign test tokens.
func (s *Server) Auth() *Authenticator {
	return s.auth
}

func (s *Server) home(ctx echo.Context) error {
	return ctx.String(http.StatusOK, "Welcome to "+s.deps.Conf.AppName+" API!")
}
