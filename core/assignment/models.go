package assignment

import (
	"math"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/trezcool/aula/core"
)

const StatusSubmitted = "submitted"

type Assignment struct {
	ID          string       `json:"id"`
	Subject     string       `json:"subject"`
	TeacherID   string       `json:"teacher_id"`
	TeacherName string       `json:"teacher_name"` // copied at creation, not kept in sync
	Title       string       `json:"title"`
	Description string       `json:"description"`
	Points      int          `json:"points"`
	DueDate     time.Time    `json:"due_date"`
	CreatedAt   time.Time    `json:"created_at"`
	Submissions []Submission `json:"submissions,omitempty"`
}

// Submission is a student's current answer. There is at most one per student and assignment.
type Submission struct {
	StudentID   string     `json:"student_id"`
	StudentName string     `json:"student_name"`
	Content     string     `json:"content"`
	SubmittedAt time.Time  `json:"submitted_at"`
	Status      string     `json:"status"`
	Grade       *int       `json:"grade,omitempty"`
	GradedAt    *time.Time `json:"graded_at,omitempty"` // set iff Grade is
}

func (s Submission) IsGraded() bool { return s.Grade != nil }

// SubmissionBy returns the student's submission and its index.
func (a Assignment) SubmissionBy(studentID string) (Submission, int, bool) {
	for i, s := range a.Submissions {
		if s.StudentID == studentID {
			return s, i, true
		}
	}
	return Submission{}, -1, false
}

// IsOverdue reports whether the due date has passed without the student submitting.
func (a Assignment) IsOverdue(now time.Time, studentID string) bool {
	if !a.DueDate.Before(now) {
		return false
	}
	_, _, submitted := a.SubmissionBy(studentID)
	return !submitted
}

// upsert replaces the student's submission in place, or appends it.
func (a *Assignment) upsert(sub Submission) {
	if _, i, ok := a.SubmissionBy(sub.StudentID); ok {
		a.Submissions[i] = sub
		return
	}
	a.Submissions = append(a.Submissions, sub)
}

type NewAssignment struct {
	Subject     string    `json:"subject" validate:"required,notblank"`
	Title       string    `json:"title" validate:"required,notblank"`
	Description string    `json:"description"`
	Points      int       `json:"points" validate:"required,gt=0"`
	DueDate     time.Time `json:"due_date" validate:"required"`
}

func (na *NewAssignment) Validate(validate *validator.Validate) error {
	na.Subject = core.CleanString(na.Subject)
	na.Title = core.CleanString(na.Title)
	na.Description = core.CleanString(na.Description)
	return validate.Struct(na)
}

type NewSubmission struct {
	Content string `json:"content" validate:"required,notblank"`
}

func (ns *NewSubmission) Validate(validate *validator.Validate) error {
	ns.Content = core.CleanString(ns.Content)
	return validate.Struct(ns)
}

type NewGrade struct {
	Grade *int `json:"grade" validate:"required"`
}

func (ng *NewGrade) Validate(validate *validator.Validate) error {
	return validate.Struct(ng)
}

// Stats aggregates a student's graded work.
type Stats struct {
	Total             int     `json:"total"` // points of the graded assignments only
	Graded            int     `json:"graded"`
	Average           float64 `json:"average"` // percentage, one decimal
	TotalPointsEarned int     `json:"total_points_earned"`
}

// ComputeStats aggregates the graded submissions of studentID across assignments.
func ComputeStats(assignments []Assignment, studentID string) Stats {
	var stats Stats
	for _, a := range assignments {
		sub, _, ok := a.SubmissionBy(studentID)
		if !ok || !sub.IsGraded() {
			continue
		}
		stats.Graded++
		stats.Total += a.Points
		stats.TotalPointsEarned += *sub.Grade
	}
	if stats.Graded > 0 && stats.Total > 0 {
		avg := float64(stats.TotalPointsEarned) / float64(stats.Total) * 100
		stats.Average = math.Round(avg*10) / 10
	}
	return stats
}

// StudentView is an assignment as seen by one student.
type StudentView struct {
	Assignment
	Submitted  bool        `json:"submitted"`
	Overdue    bool        `json:"overdue"`
	Submission *Submission `json:"submission,omitempty"`
	Draft      string      `json:"draft,omitempty"`
}

// GradedWork pairs an assignment with the student's graded submission.
type GradedWork struct {
	AssignmentID string     `json:"assignment_id"`
	Subject      string     `json:"subject"`
	Title        string     `json:"title"`
	Points       int        `json:"points"`
	Submission   Submission `json:"submission"`
}
