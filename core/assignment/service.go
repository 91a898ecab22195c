package assignment

import (
	"context"
	"fmt"
	"net/mail"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/trezcool/aula/core"
	"github.com/trezcool/aula/core/user"
)

var (
	nowFunc = time.Now // mockable

	ErrNotFound           = core.NewNotFoundError("assignment")
	ErrSubmissionNotFound = core.NewNotFoundError("submission")
)

type (
	Repository interface {
		QueryAllAssignments(ctx context.Context) ([]Assignment, error)
		GetAssignmentByID(ctx context.Context, id string) (Assignment, error)
		CreateAssignment(ctx context.Context, a Assignment) (Assignment, error)
		// UpdateAssignment applies fn to the stored assignment and persists the result.
		// Nothing is written when fn fails. ErrNotFound if id is unknown.
		UpdateAssignment(ctx context.Context, id string, fn func(*Assignment) error) (Assignment, error)

		// drafts: assignmentID -> content
		GetDrafts(ctx context.Context, studentID string) (map[string]string, error)
		UpdateDrafts(ctx context.Context, studentID string, fn func(drafts map[string]string) error) error
	}

	UserGetter interface {
		GetByID(ctx context.Context, id string) (user.User, error)
	}

	// SubjectsGetter returns the subjects a student is enrolled in.
	SubjectsGetter interface {
		EnrolledSubjects(ctx context.Context, studentID string) ([]string, error)
	}

	Service struct {
		repo     Repository
		users    UserGetter
		enrolled SubjectsGetter
		mailSvc  core.EmailService
	}
)

func NewService(repo Repository, users UserGetter, enrolled SubjectsGetter, mailSvc core.EmailService) *Service {
	return &Service{repo: repo, users: users, enrolled: enrolled, mailSvc: mailSvc}
}

func (svc *Service) Create(ctx context.Context, teacher user.User, na NewAssignment) (Assignment, error) {
	if !teacher.IsTeacher() {
		return Assignment{}, core.ErrPermissionDenied
	}
	a := Assignment{
		ID:          uuid.NewString(),
		Subject:     na.Subject,
		TeacherID:   teacher.ID,
		TeacherName: teacher.Name,
		Title:       na.Title,
		Description: na.Description,
		Points:      na.Points,
		DueDate:     na.DueDate.UTC(),
		CreatedAt:   nowFunc().UTC(),
	}
	a, err := svc.repo.CreateAssignment(ctx, a)
	return a, errors.Wrap(err, "creating assignment")
}

func (svc *Service) QueryAll(ctx context.Context) ([]Assignment, error) {
	return svc.repo.QueryAllAssignments(ctx)
}

func (svc *Service) GetByID(ctx context.Context, id string) (Assignment, error) {
	return svc.repo.GetAssignmentByID(ctx, id)
}

func (svc *Service) TeacherAssignments(ctx context.Context, teacherID string) ([]Assignment, error) {
	all, err := svc.repo.QueryAllAssignments(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "querying assignments")
	}
	own := make([]Assignment, 0)
	for _, a := range all {
		if a.TeacherID == teacherID {
			own = append(own, a)
		}
	}
	return own, nil
}

// Submit records the student's answer, replacing any previous one in place.
// A previous grade is dropped and the student's draft for the assignment is deleted.
// Only students enrolled in the assignment's subject may submit.
func (svc *Service) Submit(ctx context.Context, student user.User, assignmentID string, ns NewSubmission) (Assignment, error) {
	if err := svc.checkEnrolled(ctx, student, assignmentID); err != nil {
		return Assignment{}, err
	}
	a, err := svc.repo.UpdateAssignment(ctx, assignmentID, func(a *Assignment) error {
		a.upsert(Submission{
			StudentID:   student.ID,
			StudentName: student.Name,
			Content:     ns.Content,
			SubmittedAt: nowFunc().UTC(),
			Status:      StatusSubmitted,
		})
		return nil
	})
	if err != nil {
		return Assignment{}, err
	}

	err = svc.repo.UpdateDrafts(ctx, student.ID, func(drafts map[string]string) error {
		delete(drafts, assignmentID)
		return nil
	})
	return a, errors.Wrap(err, "deleting draft")
}

// SaveDraft keeps unsubmitted work. An empty content deletes the draft.
func (svc *Service) SaveDraft(ctx context.Context, student user.User, assignmentID, content string) error {
	if err := svc.checkEnrolled(ctx, student, assignmentID); err != nil {
		return err
	}
	return svc.repo.UpdateDrafts(ctx, student.ID, func(drafts map[string]string) error {
		if content == "" {
			delete(drafts, assignmentID)
		} else {
			drafts[assignmentID] = content
		}
		return nil
	})
}

// checkEnrolled lets through students enrolled in the subject of an existing assignment.
func (svc *Service) checkEnrolled(ctx context.Context, student user.User, assignmentID string) error {
	if !student.IsStudent() {
		return core.ErrPermissionDenied
	}
	a, err := svc.repo.GetAssignmentByID(ctx, assignmentID)
	if err != nil {
		return err
	}
	subjects, err := svc.enrolled.EnrolledSubjects(ctx, student.ID)
	if err != nil {
		return errors.Wrap(err, "getting enrolled subjects")
	}
	for _, s := range subjects {
		if s == a.Subject {
			return nil
		}
	}
	return core.ErrPermissionDenied
}

func (svc *Service) Drafts(ctx context.Context, studentID string) (map[string]string, error) {
	return svc.repo.GetDrafts(ctx, studentID)
}

// Grade sets the grade of the submission at index. Only the assignment's teacher may grade,
// and the grade must lie in [0, Points]; otherwise the submission is left untouched.
func (svc *Service) Grade(ctx context.Context, teacher user.User, assignmentID string, index, grade int) (Assignment, error) {
	var graded Submission
	a, err := svc.repo.UpdateAssignment(ctx, assignmentID, func(a *Assignment) error {
		if a.TeacherID != teacher.ID {
			return core.ErrPermissionDenied
		}
		if index < 0 || index >= len(a.Submissions) {
			return ErrSubmissionNotFound
		}
		if grade < 0 || grade > a.Points {
			return &core.InvalidGradeError{Grade: grade, Points: a.Points}
		}
		now := nowFunc().UTC()
		g := grade
		a.Submissions[index].Grade = &g
		a.Submissions[index].GradedAt = &now
		graded = a.Submissions[index]
		return nil
	})
	if err != nil {
		return Assignment{}, err
	}

	if student, err := svc.users.GetByID(ctx, graded.StudentID); err == nil {
		svc.sendGradedMail(student, a, graded)
	}
	return a, nil
}

func (svc *Service) StudentStats(ctx context.Context, studentID string) (Stats, error) {
	all, err := svc.repo.QueryAllAssignments(ctx)
	if err != nil {
		return Stats{}, errors.Wrap(err, "querying assignments")
	}
	return ComputeStats(all, studentID), nil
}

// StudentGrades lists the student's graded work in assignment order.
func (svc *Service) StudentGrades(ctx context.Context, studentID string) ([]GradedWork, error) {
	all, err := svc.repo.QueryAllAssignments(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "querying assignments")
	}
	grades := make([]GradedWork, 0)
	for _, a := range all {
		if sub, _, ok := a.SubmissionBy(studentID); ok && sub.IsGraded() {
			grades = append(grades, GradedWork{
				AssignmentID: a.ID,
				Subject:      a.Subject,
				Title:        a.Title,
				Points:       a.Points,
				Submission:   sub,
			})
		}
	}
	return grades, nil
}

// StudentViews strips other students' submissions and flags the student's own state.
func StudentViews(assignments []Assignment, studentID string, drafts map[string]string, now time.Time) []StudentView {
	views := make([]StudentView, 0, len(assignments))
	for _, a := range assignments {
		v := StudentView{
			Overdue: a.IsOverdue(now, studentID),
			Draft:   drafts[a.ID],
		}
		if sub, _, ok := a.SubmissionBy(studentID); ok {
			sub := sub
			v.Submitted = true
			v.Submission = &sub
		}
		a.Submissions = nil
		v.Assignment = a
		views = append(views, v)
	}
	return views
}

func (svc *Service) sendGradedMail(student user.User, a Assignment, sub Submission) {
	svc.mailSvc.SendMessages(&core.EmailMessage{
		To:      []mail.Address{{Name: student.Name, Address: student.Email}},
		Subject: fmt.Sprintf("%s: %s graded", a.Subject, a.Title),
		BodyStr: fmt.Sprintf("Hi %s,\n\n%s graded your submission for %q: %d/%d.", student.Name, a.TeacherName, a.Title, *sub.Grade, a.Points),
	})
}
