package forum

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/trezcool/aula/core"
	"github.com/trezcool/aula/core/course"
	"github.com/trezcool/aula/core/user"
)

var (
	nowFunc = time.Now // mockable

	ErrSubjectNotFound = core.NewNotFoundError("subject")
	errEmptyMessage    = errors.New("message cannot be empty")
)

// Message is append-only.
type Message struct {
	ID        string    `json:"id"` // UUIDv7, time ordered
	UserID    string    `json:"user_id"`
	UserName  string    `json:"user_name"`
	UserRole  string    `json:"user_role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

type NewMessage struct {
	Subject string `json:"subject" validate:"required"`
	Content string `json:"content"`
}

func (nm *NewMessage) Validate(validate *validator.Validate) error {
	nm.Subject = core.CleanString(nm.Subject)
	nm.Content = core.CleanString(nm.Content)
	if err := validate.Struct(nm); err != nil {
		return err
	}
	if nm.Content == "" {
		return core.NewValidationError(errEmptyMessage, core.FieldError{Field: "content", Error: errEmptyMessage.Error()})
	}
	return nil
}

type (
	Repository interface {
		// GetThread returns the subject's messages in insertion order, empty when there are none.
		GetThread(ctx context.Context, subject string) ([]Message, error)
		AppendMessage(ctx context.Context, subject string, msg Message) error
	}

	Service struct {
		repo      Repository
		materials course.Repository
	}
)

func NewService(repo Repository, materials course.Repository) *Service {
	return &Service{repo: repo, materials: materials}
}

// Subjects are the distinct subjects of the uploaded materials.
func (svc *Service) Subjects(ctx context.Context) ([]string, error) {
	materials, err := svc.materials.QueryAllMaterials(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "querying materials")
	}
	return course.Subjects(materials), nil
}

func (svc *Service) Thread(ctx context.Context, subject string) ([]Message, error) {
	return svc.repo.GetThread(ctx, core.CleanString(subject))
}

// Send appends a message to a selectable subject's thread.
func (svc *Service) Send(ctx context.Context, usr user.User, nm NewMessage) (Message, error) {
	content := core.CleanString(nm.Content)
	if content == "" {
		return Message{}, core.NewValidationError(errEmptyMessage, core.FieldError{Field: "content", Error: errEmptyMessage.Error()})
	}

	subjects, err := svc.Subjects(ctx)
	if err != nil {
		return Message{}, err
	}
	subject := core.CleanString(nm.Subject)
	if !contains(subjects, subject) {
		return Message{}, ErrSubjectNotFound
	}

	id, err := uuid.NewV7()
	if err != nil {
		return Message{}, errors.Wrap(err, "generating message id")
	}
	msg := Message{
		ID:        id.String(),
		UserID:    usr.ID,
		UserName:  usr.Name,
		UserRole:  usr.Role,
		Content:   content,
		Timestamp: nowFunc().UTC(),
	}
	if err = svc.repo.AppendMessage(ctx, subject, msg); err != nil {
		return Message{}, errors.Wrap(err, "appending message")
	}
	return msg, nil
}

func contains(list []string, s string) bool {
	for _, item := range list {
		if item == s {
			return true
		}
	}
	return false
}
