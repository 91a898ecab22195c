package course

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/trezcool/aula/core"
	"github.com/trezcool/aula/core/user"
)

var (
	nowFunc = time.Now // mockable

	ErrNotFound      = core.NewNotFoundError("material")
	ErrGroupNotFound = core.NewNotFoundError("course group")
)

type (
	Repository interface {
		QueryAllMaterials(ctx context.Context) ([]Material, error)
		CreateMaterial(ctx context.Context, m Material) (Material, error)
		// DeleteMaterial removes the material unless check fails. ErrNotFound if id is unknown.
		DeleteMaterial(ctx context.Context, id string, check func(Material) error) error
	}

	Service struct {
		repo Repository
	}
)

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Upload stores a validated material on behalf of a teacher.
func (svc *Service) Upload(ctx context.Context, teacher user.User, nm NewMaterial) (Material, error) {
	if !teacher.IsTeacher() {
		return Material{}, core.ErrPermissionDenied
	}
	m := Material{
		ID:          uuid.NewString(),
		Subject:     nm.Subject,
		TeacherID:   teacher.ID,
		TeacherName: teacher.Name,
		Title:       nm.Title,
		Description: nm.Description,
		Type:        nm.Type,
		FileURL:     nm.FileURL,
		UploadedAt:  nowFunc().UTC(),
	}
	if m.Type == "" {
		m.Type = TypePDF
	}
	m, err := svc.repo.CreateMaterial(ctx, m)
	return m, errors.Wrap(err, "creating material")
}

// Delete removes exactly one material owned by teacher. Enrollments pointing to it are left as is.
func (svc *Service) Delete(ctx context.Context, teacher user.User, id string) error {
	return svc.repo.DeleteMaterial(ctx, id, func(m Material) error {
		if m.TeacherID != teacher.ID {
			return core.ErrPermissionDenied
		}
		return nil
	})
}

func (svc *Service) QueryAll(ctx context.Context) ([]Material, error) {
	return svc.repo.QueryAllMaterials(ctx)
}

// TeacherMaterials returns the teacher's own materials per subject.
func (svc *Service) TeacherMaterials(ctx context.Context, teacherID string) ([]SubjectMaterials, error) {
	materials, err := svc.repo.QueryAllMaterials(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "querying materials")
	}
	own := make([]Material, 0)
	for _, m := range materials {
		if m.TeacherID == teacherID {
			own = append(own, m)
		}
	}
	return BySubject(own), nil
}

func (svc *Service) Groups(ctx context.Context) ([]Group, error) {
	materials, err := svc.repo.QueryAllMaterials(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "querying materials")
	}
	return GroupMaterials(materials), nil
}

func (svc *Service) FindGroup(ctx context.Context, subject, teacherID string) (Group, error) {
	groups, err := svc.Groups(ctx)
	if err != nil {
		return Group{}, err
	}
	for _, g := range groups {
		if g.Subject == subject && g.TeacherID == teacherID {
			return g, nil
		}
	}
	return Group{}, ErrGroupNotFound
}

func (svc *Service) Subjects(ctx context.Context) ([]string, error) {
	materials, err := svc.repo.QueryAllMaterials(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "querying materials")
	}
	return Subjects(materials), nil
}
