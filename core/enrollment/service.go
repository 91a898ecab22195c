package enrollment

import (
	"context"

	"github.com/pkg/errors"

	"github.com/trezcool/aula/core"
	"github.com/trezcool/aula/core/assignment"
	"github.com/trezcool/aula/core/course"
	"github.com/trezcool/aula/core/user"
)

var ErrGroupNotFound = course.ErrGroupNotFound

type (
	Repository interface {
		// GetEnrollment returns the persisted material ids, empty when the student never enrolled.
		GetEnrollment(ctx context.Context, studentID string) ([]string, error)
		UpdateEnrollment(ctx context.Context, studentID string, fn func(ids []string) ([]string, error)) ([]string, error)
	}

	Service struct {
		repo      Repository
		materials course.Repository
		assigns   assignment.Repository
	}

	// Course is a course group with the viewing student's enrollment state.
	Course struct {
		course.Group
		Enrolled bool `json:"enrolled"`
	}
)

func NewService(repo Repository, materials course.Repository, assigns assignment.Repository) *Service {
	return &Service{repo: repo, materials: materials, assigns: assigns}
}

// Enroll adds every material of the (subject, teacherID) group to the student's set.
// Re-enrolling is a no-op.
func (svc *Service) Enroll(ctx context.Context, student user.User, subject, teacherID string) ([]string, error) {
	if !student.IsStudent() {
		return nil, core.ErrPermissionDenied
	}

	materials, err := svc.materials.QueryAllMaterials(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "querying materials")
	}
	var group *course.Group
	for _, g := range course.GroupMaterials(materials) {
		if g.Subject == subject && g.TeacherID == teacherID {
			g := g
			group = &g
			break
		}
	}
	if group == nil {
		return nil, ErrGroupNotFound
	}

	return svc.repo.UpdateEnrollment(ctx, student.ID, func(ids []string) ([]string, error) {
		return merge(ids, group.MaterialIDs()), nil
	})
}

// EnrolledIDs returns the student's enrollment set as persisted, dangling ids included.
func (svc *Service) EnrolledIDs(ctx context.Context, studentID string) ([]string, error) {
	return svc.repo.GetEnrollment(ctx, studentID)
}

// EnrolledMaterials returns the existing materials the student is enrolled in.
func (svc *Service) EnrolledMaterials(ctx context.Context, studentID string) ([]course.Material, error) {
	set, err := svc.enrolledSet(ctx, studentID)
	if err != nil {
		return nil, err
	}
	materials, err := svc.materials.QueryAllMaterials(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "querying materials")
	}
	enrolled := make([]course.Material, 0)
	for _, m := range materials {
		if set[m.ID] {
			enrolled = append(enrolled, m)
		}
	}
	return enrolled, nil
}

// EnrolledBySubject is the student dashboard.
func (svc *Service) EnrolledBySubject(ctx context.Context, studentID string) ([]course.SubjectMaterials, error) {
	materials, err := svc.EnrolledMaterials(ctx, studentID)
	if err != nil {
		return nil, err
	}
	return course.BySubject(materials), nil
}

// EnrolledSubjects returns the distinct subjects of the student's enrolled materials.
func (svc *Service) EnrolledSubjects(ctx context.Context, studentID string) ([]string, error) {
	materials, err := svc.EnrolledMaterials(ctx, studentID)
	if err != nil {
		return nil, err
	}
	return course.Subjects(materials), nil
}

// Assignments returns the assignments of the student's enrolled subjects, in stored order.
func (svc *Service) Assignments(ctx context.Context, studentID string) ([]assignment.Assignment, error) {
	subjects, err := svc.EnrolledSubjects(ctx, studentID)
	if err != nil {
		return nil, err
	}
	enrolled := make(map[string]bool, len(subjects))
	for _, s := range subjects {
		enrolled[s] = true
	}

	all, err := svc.assigns.QueryAllAssignments(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "querying assignments")
	}
	filtered := make([]assignment.Assignment, 0)
	for _, a := range all {
		if enrolled[a.Subject] {
			filtered = append(filtered, a)
		}
	}
	return filtered, nil
}

// Courses returns every course group, flagged with the student's enrollment.
func (svc *Service) Courses(ctx context.Context, studentID string) ([]Course, error) {
	set, err := svc.enrolledSet(ctx, studentID)
	if err != nil {
		return nil, err
	}
	materials, err := svc.materials.QueryAllMaterials(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "querying materials")
	}
	groups := course.GroupMaterials(materials)
	courses := make([]Course, 0, len(groups))
	for _, g := range groups {
		courses = append(courses, Course{Group: g, Enrolled: g.EnrolledIn(set)})
	}
	return courses, nil
}

func (svc *Service) enrolledSet(ctx context.Context, studentID string) (map[string]bool, error) {
	ids, err := svc.repo.GetEnrollment(ctx, studentID)
	if err != nil {
		return nil, errors.Wrap(err, "getting enrollment")
	}
	set := make(map[string]bool, len(ids))
	for _, id := range ids {
		set[id] = true
	}
	return set, nil
}

// merge appends the ids of add missing from ids, keeping order and dropping duplicates.
func merge(ids, add []string) []string {
	seen := make(map[string]bool, len(ids)+len(add))
	merged := make([]string, 0, len(ids)+len(add))
	for _, list := range [][]string{ids, add} {
		for _, id := range list {
			if !seen[id] {
				seen[id] = true
				merged = append(merged, id)
			}
		}
	}
	return merged
}
