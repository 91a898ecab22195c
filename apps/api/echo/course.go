package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/aula/core"
	"github.com/trezcool/aula/core/course"
	"github.com/trezcool/aula/core/enrollment"
	"github.com/trezcool/aula/core/user"
)

type courseApi struct {
	svc         *course.Service
	enrollments *enrollment.Service
	validate    *validator.Validate
}

func registerCourseAPI(
	g *echo.Group,
	authed []echo.MiddlewareFunc,
	svc *course.Service,
	enrollments *enrollment.Service,
	validate *validator.Validate,
) {
	api := courseApi{
		svc:         svc,
		enrollments: enrollments,
		validate:    validate,
	}

	teacherOnly := roleMiddleware(user.RoleTeacher)
	studentOnly := roleMiddleware(user.RoleStudent)

	mg := g.Group("/materials", authed...)
	mg.GET("", api.teacherMaterials, teacherOnly)
	mg.POST("", api.upload, teacherOnly)
	mg.DELETE("/:id", api.destroy, teacherOnly)

	cg := g.Group("/courses", authed...)
	cg.GET("", api.courses)
	cg.POST("/enroll", api.enroll, studentOnly)

	eg := g.Group("/enrollments", authed...)
	eg.GET("", api.enrolled, studentOnly)
}

// Handlers

func (api *courseApi) teacherMaterials(ctx echo.Context) error {
	usr, err := getContextUser(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}
	sections, err := api.svc.TeacherMaterials(ctx.Request().Context(), usr.ID)
	if err != nil {
		return errors.Wrap(err, "querying teacher materials")
	}
	return ctx.JSON(http.StatusOK, sections)
}

func (api *courseApi) upload(ctx echo.Context) error {
	usr, err := getContextUser(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	var data course.NewMaterial
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewMaterial")
	}
	if err = data.Validate(api.validate); err != nil {
		return err
	}

	m, err := api.svc.Upload(ctx.Request().Context(), usr, data)
	if err != nil {
		return errors.Wrap(err, "uploading material")
	}
	return ctx.JSON(http.StatusCreated, m)
}

func (api *courseApi) destroy(ctx echo.Context) error {
	usr, err := getContextUser(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}
	if err = api.svc.Delete(ctx.Request().Context(), usr, ctx.Param("id")); err != nil {
		return errors.Wrap(err, "deleting material")
	}
	return ctx.NoContent(http.StatusNoContent)
}

// courses lists every course group; students also see which ones they are enrolled in.
func (api *courseApi) courses(ctx echo.Context) error {
	usr, err := getContextUser(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	if usr.IsStudent() {
		courses, err := api.enrollments.Courses(ctx.Request().Context(), usr.ID)
		if err != nil {
			return errors.Wrap(err, "querying courses")
		}
		return ctx.JSON(http.StatusOK, courses)
	}

	groups, err := api.svc.Groups(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "querying course groups")
	}
	return ctx.JSON(http.StatusOK, groups)
}

func (api *courseApi) enroll(ctx echo.Context) error {
	usr, err := getContextUser(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	var data EnrollRequest
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to EnrollRequest")
	}
	if err = data.Validate(api.validate); err != nil {
		return err
	}

	ids, err := api.enrollments.Enroll(ctx.Request().Context(), usr, data.Subject, data.TeacherID)
	if err != nil {
		return errors.Wrap(err, "enrolling")
	}
	return ctx.JSON(http.StatusOK, EnrollResponse{MaterialIDs: ids})
}

func (api *courseApi) enrolled(ctx echo.Context) error {
	usr, err := getContextUser(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}
	sections, err := api.enrollments.EnrolledBySubject(ctx.Request().Context(), usr.ID)
	if err != nil {
		return errors.Wrap(err, "querying enrolled materials")
	}
	return ctx.JSON(http.StatusOK, sections)
}

type (
	EnrollRequest struct {
		Subject   string `json:"subject" validate:"required"`
		TeacherID string `json:"teacher_id" validate:"required"`
	}

	EnrollResponse struct {
		MaterialIDs []string `json:"material_ids"`
	}
)

func (er *EnrollRequest) Validate(validate *validator.Validate) error {
	er.Subject = core.CleanString(er.Subject)
	er.TeacherID = core.CleanString(er.TeacherID)
	return validate.Struct(er)
}
