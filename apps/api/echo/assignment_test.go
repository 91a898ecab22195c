package echoapi_test

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	echoapi "github.com/trezcool/aula/apps/api/echo"
	"github.com/trezcool/aula/core/assignment"
	"github.com/trezcool/aula/core/user"
	"github.com/trezcool/aula/tests"
)

func Test_assignmentApi_create(t *testing.T) {
	app := setup(t)
	teacher := testutil.CreateUser(t, app.usrRepo, "Mr T", "t@test.cd", "", user.RoleTeacher)
	student := testutil.CreateUser(t, app.usrRepo, "Sam", "s@test.cd", "", user.RoleStudent)
	teacherToken := getToken(t, app, teacher)
	due := time.Now().Add(24 * time.Hour)

	tests := []httpTest{
		{
			name: "teacher required", method: http.MethodPost, path: "/v1/assignments", token: getToken(t, app, student),
			body:     marshallObj(t, assignment.NewAssignment{Subject: "Math", Title: "Homework", Points: 100, DueDate: due}),
			wantCode: http.StatusForbidden,
		},
		{
			name: "missing fields", method: http.MethodPost, path: "/v1/assignments", token: teacherToken,
			body:     []byte(`{"subject": "Math"}`),
			wantCode: http.StatusBadRequest,
			wantData: marshallObj(t, map[string]string{
				"title":    "this field is required",
				"points":   "this field is required",
				"due_date": "this field is required",
			}),
		},
	}
	app.run(t, tests)

	t.Run("success", func(t *testing.T) {
		na := assignment.NewAssignment{Subject: "Math", Title: "Homework", Points: 100, DueDate: due}
		req, rec := newAuthRequest(http.MethodPost, "/v1/assignments", teacherToken, marshallObj(t, na))
		app.ServeHTTP(rec, req)
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

		var a assignment.Assignment
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &a))
		assert.Equal(t, teacher.ID, a.TeacherID)
		assert.Equal(t, 100, a.Points)
		assert.Empty(t, a.Submissions)
	})
}

func Test_assignmentApi_studentFlow(t *testing.T) {
	app := setup(t)
	teacher := testutil.CreateUser(t, app.usrRepo, "Mr T", "t@test.cd", "", user.RoleTeacher)
	other := testutil.CreateUser(t, app.usrRepo, "Ms O", "o@test.cd", "", user.RoleTeacher)
	student := testutil.CreateUser(t, app.usrRepo, "Sam", "s@test.cd", "", user.RoleStudent)
	testutil.CreateMaterial(t, app.matRepo, teacher, "Math", "Algebra")
	testutil.CreateMaterial(t, app.matRepo, teacher, "Physics", "Optics")

	late := testutil.CreateAssignment(t, app.assignRepo, teacher, "Math", "Late", 10, time.Now().Add(-time.Hour))
	hw := testutil.CreateAssignment(t, app.assignRepo, teacher, "Math", "Homework", 100, time.Now().Add(time.Hour))
	lab := testutil.CreateAssignment(t, app.assignRepo, teacher, "Physics", "Lab", 20, time.Now().Add(time.Hour))

	studentToken := getToken(t, app, student)
	teacherToken := getToken(t, app, teacher)
	gradePath := "/v1/assignments/" + hw.ID + "/submissions/0/grade"
	grade := func(g int) []byte { return marshallObj(t, assignment.NewGrade{Grade: &g}) }

	// enroll in Math only
	req, rec := newAuthRequest(http.MethodPost, "/v1/courses/enroll", studentToken, marshallObj(t, echoapi.EnrollRequest{Subject: "Math", TeacherID: teacher.ID}))
	app.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	tests := []httpTest{
		{
			name: "draft", method: http.MethodPut, path: "/v1/assignments/" + hw.ID + "/draft", token: studentToken,
			body: marshallObj(t, echoapi.DraftRequest{Content: "half done"}), wantCode: http.StatusNoContent,
		},
		{
			name: "draft on unknown assignment", method: http.MethodPut, path: "/v1/assignments/nope/draft", token: studentToken,
			body:     marshallObj(t, echoapi.DraftRequest{Content: "x"}),
			wantCode: http.StatusNotFound, wantData: marshallObj(t, httpErr{Error: "assignment not found"}),
		},
		{
			name: "blank submission", method: http.MethodPut, path: "/v1/assignments/" + hw.ID + "/submission", token: studentToken,
			body:     marshallObj(t, assignment.NewSubmission{Content: "  "}),
			wantCode: http.StatusBadRequest, wantData: marshallObj(t, map[string]string{"content": "this field is required"}),
		},
		{
			name: "teachers do not submit", method: http.MethodPut, path: "/v1/assignments/" + hw.ID + "/submission", token: teacherToken,
			body: marshallObj(t, assignment.NewSubmission{Content: "answer"}), wantCode: http.StatusForbidden,
		},
		{
			name: "submit to a subject not enrolled in", method: http.MethodPut, path: "/v1/assignments/" + lab.ID + "/submission",
			token: studentToken, body: marshallObj(t, assignment.NewSubmission{Content: "answer"}),
			wantCode: http.StatusForbidden, wantData: marshallObj(t, httpErr{Error: "permission denied"}),
		},
		{
			name: "draft for a subject not enrolled in", method: http.MethodPut, path: "/v1/assignments/" + lab.ID + "/draft",
			token: studentToken, body: marshallObj(t, echoapi.DraftRequest{Content: "x"}),
			wantCode: http.StatusForbidden, wantData: marshallObj(t, httpErr{Error: "permission denied"}),
		},
		{
			name: "submit", method: http.MethodPut, path: "/v1/assignments/" + hw.ID + "/submission", token: studentToken,
			body: marshallObj(t, assignment.NewSubmission{Content: "answer"}),
		},
		{
			name: "grade too high", method: http.MethodPut, path: gradePath, token: teacherToken, body: grade(150),
			wantCode: http.StatusBadRequest, wantData: marshallObj(t, map[string]string{"grade": "grade cannot exceed 100 points"}),
		},
		{
			name: "negative grade", method: http.MethodPut, path: gradePath, token: teacherToken, body: grade(-1),
			wantCode: http.StatusBadRequest, wantData: marshallObj(t, map[string]string{"grade": "grade cannot be negative"}),
		},
		{
			name: "missing grade", method: http.MethodPut, path: gradePath, token: teacherToken, body: []byte("{}"),
			wantCode: http.StatusBadRequest, wantData: marshallObj(t, map[string]string{"grade": "this field is required"}),
		},
		{
			name: "not the owner", method: http.MethodPut, path: gradePath, token: getToken(t, app, other), body: grade(85),
			wantCode: http.StatusForbidden,
		},
		{
			name: "unknown submission", method: http.MethodPut, path: "/v1/assignments/" + hw.ID + "/submissions/3/grade",
			token: teacherToken, body: grade(85),
			wantCode: http.StatusNotFound, wantData: marshallObj(t, httpErr{Error: "submission not found"}),
		},
		{name: "grade", method: http.MethodPut, path: gradePath, token: teacherToken, body: grade(85)},
		{name: "grades are for students", path: "/v1/grades", token: teacherToken, wantCode: http.StatusForbidden},
	}
	app.run(t, tests)

	t.Run("nothing stored for the unenrolled subject", func(t *testing.T) {
		stored, err := app.assignRepo.GetAssignmentByID(context.Background(), lab.ID)
		require.NoError(t, err)
		assert.Empty(t, stored.Submissions)
	})

	t.Run("student views", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/v1/assignments", studentToken)
		app.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		var views []assignment.StudentView
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &views))
		require.Len(t, views, 2) // Physics is not enrolled

		assert.Equal(t, late.ID, views[0].ID)
		assert.True(t, views[0].Overdue)
		assert.False(t, views[0].Submitted)

		assert.Equal(t, hw.ID, views[1].ID)
		assert.True(t, views[1].Submitted)
		assert.False(t, views[1].Overdue)
		assert.Empty(t, views[1].Draft) // removed on submit
		require.NotNil(t, views[1].Submission)
		require.NotNil(t, views[1].Submission.Grade)
		assert.Equal(t, 85, *views[1].Submission.Grade)
	})

	t.Run("teacher views", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/v1/assignments", teacherToken)
		app.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		var own []assignment.Assignment
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &own))
		assert.Len(t, own, 3)
	})

	t.Run("grades", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/v1/grades", studentToken)
		app.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		var resp echoapi.GradesResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, assignment.Stats{Total: 100, Graded: 1, Average: 85, TotalPointsEarned: 85}, resp.Stats)
		require.Len(t, resp.Grades, 1)
		assert.Equal(t, hw.ID, resp.Grades[0].AssignmentID)
	})

	t.Run("student is notified", func(t *testing.T) {
		var notified bool
		for _, msg := range app.mailSvc.SentMessages() {
			if msg.To[0].Address == student.Email {
				notified = true
			}
		}
		assert.True(t, notified)
	})
}
