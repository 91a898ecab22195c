package echoapi_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"
	"time"

	"go.uber.org/zap"

	echoapi "github.com/trezcool/aula/apps/api/echo"
	"github.com/trezcool/aula/core"
	"github.com/trezcool/aula/core/assignment"
	"github.com/trezcool/aula/core/course"
	"github.com/trezcool/aula/core/enrollment"
	"github.com/trezcool/aula/core/forum"
	"github.com/trezcool/aula/core/user"
	emailsvc "github.com/trezcool/aula/services/email"
	logsvc "github.com/trezcool/aula/services/logger"
	"github.com/trezcool/aula/storage/records"
	"github.com/trezcool/aula/tests"
)

var errMissingToken = httpErr{Error: "missing or malformed jwt"}

type testApp struct {
	*echoapi.Server
	usrRepo    user.Repository
	matRepo    course.Repository
	assignRepo assignment.Repository
	mailSvc    *emailsvc.ConsoleServiceMock
}

func setup(t *testing.T) testApp {
	conf := &core.Config{
		Env:       "TEST",
		TestMode:  true,
		AppName:   "Aula",
		SecretKey: "secret",
		Server: core.ServerConfig{
			Host:                      "localhost",
			DisableReqLogs:            true,
			JWTExpirationDelta:        10 * time.Minute,
			JWTRefreshExpirationDelta: 4 * time.Hour,
		},
	}
	logger := logsvc.NewRollbarLogger(zap.NewNop(), conf)
	logger.Enable(false)

	// set up DB & repos
	db := testutil.PrepareDB(t)
	usrRepo := records.NewUserRepository(db)
	matRepo := records.NewMaterialRepository(db)
	assignRepo := records.NewAssignmentRepository(db)
	enrollRepo := records.NewEnrollmentRepository(db)
	forumRepo := records.NewForumRepository(db)

	// set up services
	mailSvc := emailsvc.NewConsoleServiceMock(conf)
	usrSvc := user.NewService(usrRepo, mailSvc)
	enrollSvc := enrollment.NewService(enrollRepo, matRepo, assignRepo)
	validate, translator := testutil.NewValidator()

	// set up server
	srv := echoapi.NewServer(echoapi.ServerDeps{
		Conf:          conf,
		Logger:        logger,
		UserSvc:       usrSvc,
		CourseSvc:     course.NewService(matRepo),
		EnrollmentSvc: enrollSvc,
		AssignmentSvc: assignment.NewService(assignRepo, usrSvc, enrollSvc, mailSvc),
		ForumSvc:      forum.NewService(forumRepo, matRepo),
		Validate:      validate,
		Translator:    translator,
	})
	t.Cleanup(func() { _ = srv.Close() })

	return testApp{
		Server:     srv,
		usrRepo:    usrRepo,
		matRepo:    matRepo,
		assignRepo: assignRepo,
		mailSvc:    mailSvc,
	}
}

func (app testApp) run(t *testing.T, tests []httpTest) {
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			method := tt.method
			if method == "" {
				method = http.MethodGet
			}
			req, rec := newAuthRequest(method, tt.path, tt.token, tt.body)
			app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}
}

type httpErr struct {
	Error string `json:"error"`
}

type httpTest struct {
	name     string
	method   string
	path     string
	body     []byte
	token    string
	wantCode int
	wantData []byte
}

func newAuthRequest(method, path, token string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	var body bytes.Buffer
	if len(data) > 0 {
		body.Write(data[0])
	}
	req := httptest.NewRequest(method, path, &body)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	return req, rec
}

func newRequest(method, path string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	return newAuthRequest(method, path, "", data...)
}

func getToken(t *testing.T, app testApp, usr user.User) string {
	auth := app.Auth()
	token, err := auth.GenerateToken(auth.UserClaims(usr))
	if err != nil {
		t.Fatalf("getToken() failed: %v", err)
	}
	return token
}

func marshallObj(t *testing.T, obj interface{}) []byte {
	data, err := json.Marshal(obj)
	if err != nil {
		t.Fatalf("marshallObj() failed: %v", err)
	}
	return data
}

func jsonBytesEqual(b1, b2 []byte) (bool, error) {
	var j1, j2 interface{}
	if err := json.Unmarshal(b1, &j1); err != nil {
		return false, err
	}
	if err := json.Unmarshal(b2, &j2); err != nil {
		return false, err
	}
	return reflect.DeepEqual(j1, j2), nil
}

func checkCodeAndData(t *testing.T, tt httpTest, rec *httptest.ResponseRecorder) {
	wantCode := tt.wantCode
	if wantCode == 0 {
		wantCode = http.StatusOK
	}
	if rec.Code != wantCode {
		t.Errorf("failed! code = %v; wantCode %v", rec.Code, wantCode)
	}
	if tt.wantData == nil {
		return
	}
	ok, err := jsonBytesEqual(rec.Body.Bytes(), tt.wantData)
	if err != nil {
		t.Errorf("jsonBytesEqual() failed to compare; err %v", err)
	}
	if !ok {
		t.Errorf("failed! data = %v; wantData %v", rec.Body.String(), string(tt.wantData))
	}
}
