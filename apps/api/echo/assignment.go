package echoapi

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/aula/core/assignment"
	"github.com/trezcool/aula/core/enrollment"
	"github.com/trezcool/aula/core/user"
)

type assignmentApi struct {
	svc         *assignment.Service
	enrollments *enrollment.Service
	validate    *validator.Validate
}

func registerAssignmentAPI(
	g *echo.Group,
	authed []echo.MiddlewareFunc,
	svc *assignment.Service,
	enrollments *enrollment.Service,
	validate *validator.Validate,
) {
	api := assignmentApi{
		svc:         svc,
		enrollments: enrollments,
		validate:    validate,
	}

	teacherOnly := roleMiddleware(user.RoleTeacher)
	studentOnly := roleMiddleware(user.RoleStudent)

	ag := g.Group("/assignments", authed...)
	ag.GET("", api.query)
	ag.POST("", api.create, teacherOnly)
	ag.PUT("/:id/submission", api.submit, studentOnly)
	ag.PUT("/:id/draft", api.saveDraft, studentOnly)
	ag.PUT("/:id/submissions/:index/grade", api.grade, teacherOnly)

	gg := g.Group("/grades", authed...)
	gg.GET("", api.grades, studentOnly)
}

// Handlers

// query lists a teacher's own assignments, or a student's enrolled ones with their own state only.
func (api *assignmentApi) query(ctx echo.Context) error {
	usr, err := getContextUser(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}
	rctx := ctx.Request().Context()

	if usr.IsTeacher() {
		assignments, err := api.svc.TeacherAssignments(rctx, usr.ID)
		if err != nil {
			return errors.Wrap(err, "querying teacher assignments")
		}
		return ctx.JSON(http.StatusOK, assignments)
	}

	assignments, err := api.enrollments.Assignments(rctx, usr.ID)
	if err != nil {
		return errors.Wrap(err, "querying enrolled assignments")
	}
	drafts, err := api.svc.Drafts(rctx, usr.ID)
	if err != nil {
		return errors.Wrap(err, "getting drafts")
	}
	return ctx.JSON(http.StatusOK, assignment.StudentViews(assignments, usr.ID, drafts, time.Now()))
}

func (api *assignmentApi) create(ctx echo.Context) error {
	usr, err := getContextUser(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	var data assignment.NewAssignment
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewAssignment")
	}
	if err = data.Validate(api.validate); err != nil {
		return err
	}

	a, err := api.svc.Create(ctx.Request().Context(), usr, data)
	if err != nil {
		return errors.Wrap(err, "creating assignment")
	}
	return ctx.JSON(http.StatusCreated, a)
}

func (api *assignmentApi) submit(ctx echo.Context) error {
	usr, err := getContextUser(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	var data assignment.NewSubmission
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewSubmission")
	}
	if err = data.Validate(api.validate); err != nil {
		return err
	}

	a, err := api.svc.Submit(ctx.Request().Context(), usr, ctx.Param("id"), data)
	if err != nil {
		return errors.Wrap(err, "submitting assignment")
	}
	sub, _, _ := a.SubmissionBy(usr.ID)
	return ctx.JSON(http.StatusOK, sub)
}

func (api *assignmentApi) saveDraft(ctx echo.Context) error {
	usr, err := getContextUser(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	var data DraftRequest
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to DraftRequest")
	}

	if err = api.svc.SaveDraft(ctx.Request().Context(), usr, ctx.Param("id"), data.Content); err != nil {
		return errors.Wrap(err, "saving draft")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *assignmentApi) grade(ctx echo.Context) error {
	usr, err := getContextUser(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}
	index, err := strconv.Atoi(ctx.Param("index"))
	if err != nil {
		return errors.Wrap(assignment.ErrSubmissionNotFound, "parsing submission index")
	}

	var data assignment.NewGrade
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewGrade")
	}
	if err = data.Validate(api.validate); err != nil {
		return err
	}

	a, err := api.svc.Grade(ctx.Request().Context(), usr, ctx.Param("id"), index, *data.Grade)
	if err != nil {
		return errors.Wrap(err, "grading submission")
	}
	return ctx.JSON(http.StatusOK, a)
}

func (api *assignmentApi) grades(ctx echo.Context) error {
	usr, err := getContextUser(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}
	rctx := ctx.Request().Context()

	stats, err := api.svc.StudentStats(rctx, usr.ID)
	if err != nil {
		return errors.Wrap(err, "computing stats")
	}
	grades, err := api.svc.StudentGrades(rctx, usr.ID)
	if err != nil {
		return errors.Wrap(err, "querying grades")
	}
	return ctx.JSON(http.StatusOK, GradesResponse{Stats: stats, Grades: grades})
}

type (
	DraftRequest struct {
		Content string `json:"content"`
	}

	GradesResponse struct {
		Stats  assignment.Stats        `json:"stats"`
		Grades []assignment.GradedWork `json:"grades"`
	}
)
