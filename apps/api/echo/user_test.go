package echoapi_test

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	echoapi "github.com/trezcool/aula/apps/api/echo"
	"github.com/trezcool/aula/core/user"
	"github.com/trezcool/aula/tests"
)

func Test_userApi_register(t *testing.T) {
	app := setup(t)
	testutil.CreateUser(t, app.usrRepo, "Taken", "taken@test.cd", "", user.RoleStudent)

	body := func(name, email, pwd, confirm, role string) []byte {
		return marshallObj(t, user.NewUser{Name: name, Email: email, Password: pwd, PasswordConfirm: confirm, Role: role})
	}
	required := "this field is required"

	tests := []httpTest{
		{
			name: "empty body", method: http.MethodPost, path: "/v1/users/register", body: []byte("{}"),
			wantCode: http.StatusBadRequest,
			wantData: marshallObj(t, map[string]string{
				"name":             required,
				"email":            required,
				"password":         required,
				"password_confirm": required,
				"role":             required,
			}),
		},
		{
			name: "unknown role", method: http.MethodPost, path: "/v1/users/register",
			body:     body("Jo", "jo@test.cd", "s3cr3t!pass", "s3cr3t!pass", "admin"),
			wantCode: http.StatusBadRequest,
			wantData: marshallObj(t, map[string]string{"role": "role must be one of: student, teacher"}),
		},
		{
			name: "short password", method: http.MethodPost, path: "/v1/users/register",
			body:     body("Jo", "jo@test.cd", "abc", "abc", user.RoleStudent),
			wantCode: http.StatusBadRequest,
			wantData: marshallObj(t, map[string]string{"password": "password must contain at least 6 characters"}),
		},
		{
			name: "email taken", method: http.MethodPost, path: "/v1/users/register",
			body:     body("Jo", " TAKEN@test.cd ", "s3cr3t!pass", "s3cr3t!pass", user.RoleStudent),
			wantCode: http.StatusBadRequest,
			wantData: marshallObj(t, map[string]string{"email": "a user with this email already exists"}),
		},
	}
	app.run(t, tests)
	assert.Empty(t, app.mailSvc.SentMessages())

	t.Run("success", func(t *testing.T) {
		req, rec := newRequest(http.MethodPost, "/v1/users/register", body("Jo", "Jo@Test.cd", "s3cr3t!pass", "s3cr3t!pass", "Teacher"))
		app.ServeHTTP(rec, req)
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

		var resp echoapi.LoginResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.NotEmpty(t, resp.Token)
		require.NotNil(t, resp.User)
		assert.Equal(t, "jo@test.cd", resp.User.Email)
		assert.Equal(t, user.RoleTeacher, resp.User.Role)
		assert.NotContains(t, rec.Body.String(), "password")

		sent := app.mailSvc.SentMessages()
		require.Len(t, sent, 1)
		assert.Equal(t, "jo@test.cd", sent[0].To[0].Address)
	})
}

func Test_userApi_login(t *testing.T) {
	app := setup(t)
	testutil.CreateUser(t, app.usrRepo, "Jo", "jo@test.cd", "s3cr3t!pass", user.RoleStudent)

	invalid := marshallObj(t, httpErr{Error: "invalid credentials"})
	tests := []httpTest{
		{
			name: "missing fields", method: http.MethodPost, path: "/v1/users/login", body: []byte("{}"),
			wantCode: http.StatusBadRequest,
			wantData: marshallObj(t, map[string]string{"email": "this field is required", "password": "this field is required"}),
		},
		{
			name: "unknown email", method: http.MethodPost, path: "/v1/users/login",
			body:     marshallObj(t, echoapi.LoginRequest{Email: "nobody@test.cd", Password: "s3cr3t!pass"}),
			wantCode: http.StatusBadRequest, wantData: invalid,
		},
		{
			name: "wrong password", method: http.MethodPost, path: "/v1/users/login",
			body:     marshallObj(t, echoapi.LoginRequest{Email: "jo@test.cd", Password: "nope!nope"}),
			wantCode: http.StatusBadRequest, wantData: invalid,
		},
	}
	app.run(t, tests)

	t.Run("success", func(t *testing.T) {
		req, rec := newRequest(http.MethodPost, "/v1/users/login", marshallObj(t, echoapi.LoginRequest{Email: " JO@test.cd", Password: "s3cr3t!pass"}))
		app.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		var resp echoapi.LoginResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.NotEmpty(t, resp.Token)

		// the token opens the authed endpoints
		req, rec = newAuthRequest(http.MethodGet, "/v1/users/me", resp.Token)
		app.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code)
	})
}

func Test_userApi_me(t *testing.T) {
	app := setup(t)
	usr := testutil.CreateUser(t, app.usrRepo, "Jo", "jo@test.cd", "", user.RoleStudent)
	ghost := user.User{ID: "ghost", Name: "Ghost", Email: "ghost@test.cd", Role: user.RoleStudent}

	tests := []httpTest{
		{name: "auth required", path: "/v1/users/me", wantCode: http.StatusUnauthorized, wantData: marshallObj(t, errMissingToken)},
		{
			name: "unknown user", path: "/v1/users/me", token: getToken(t, app, ghost),
			wantCode: http.StatusUnauthorized, wantData: marshallObj(t, httpErr{Error: "user not authenticated"}),
		},
		{name: "current user", path: "/v1/users/me/", token: getToken(t, app, usr), wantData: marshallObj(t, usr)},
	}
	app.run(t, tests)
}

func Test_userApi_refreshToken(t *testing.T) {
	app := setup(t)
	usr := testutil.CreateUser(t, app.usrRepo, "Jo", "jo@test.cd", "", user.RoleStudent)

	auth := app.Auth()
	expired := auth.UserClaims(usr, 0) // originally issued in 1970
	expiredToken, err := auth.GenerateToken(expired)
	require.NoError(t, err)

	tests := []httpTest{
		{name: "auth required", method: http.MethodPost, path: "/v1/users/token-refresh", wantCode: http.StatusUnauthorized},
		{
			name: "refresh expired", method: http.MethodPost, path: "/v1/users/token-refresh", token: expiredToken,
			wantCode: http.StatusForbidden, wantData: marshallObj(t, httpErr{Error: "refresh has expired"}),
		},
		{name: "refreshed", method: http.MethodPost, path: "/v1/users/token-refresh", token: getToken(t, app, usr)},
	}
	app.run(t, tests)
}
