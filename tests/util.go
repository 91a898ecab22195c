package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/trezcool/aula/core"
	"github.com/trezcool/aula/core/assignment"
	"github.com/trezcool/aula/core/course"
	"github.com/trezcool/aula/core/user"
	inmemkv "github.com/trezcool/aula/storage/kv/inmem"
	"github.com/trezcool/aula/storage/records"
)

// PrepareDB returns an empty records DB over an in-memory store.
func PrepareDB(t *testing.T) *records.DB {
	db := records.Open(inmemkv.Open())
	t.Cleanup(func() { _ = db.Close() })
	return db
}

// NewValidator returns a validator with every custom validator registered.
func NewValidator() (*validator.Validate, ut.Translator) {
	_en := en.New()
	uni := ut.New(_en, _en)
	translator, _ := uni.GetTranslator("en")

	validate := validator.New()
	core.InitValidators(validate, translator)
	user.InitValidators(validate, translator)
	return validate, translator
}

func CreateUser(
	t *testing.T,
	repo user.Repository,
	name, email, pwd, role string,
	createdAt ...time.Time,
) user.User {
	tstamp := time.Now().UTC()
	if len(createdAt) > 0 {
		tstamp = createdAt[0].UTC()
	}
	usr := user.User{
		ID:        uuid.NewString(),
		Name:      name,
		Email:     email,
		Role:      role,
		CreatedAt: tstamp,
	}
	if pwd != "" {
		if err := usr.SetPassword(pwd); err != nil {
			t.Fatalf("CreateUser() failed: %v", err)
		}
	}
	usr, err := repo.CreateUser(context.Background(), usr)
	if err != nil {
		t.Fatalf("CreateUser() failed: %v", err)
	}
	return usr
}

func CreateMaterial(t *testing.T, repo course.Repository, teacher user.User, subject, title string) course.Material {
	m := course.Material{
		ID:          uuid.NewString(),
		Subject:     subject,
		TeacherID:   teacher.ID,
		TeacherName: teacher.Name,
		Title:       title,
		Type:        course.TypePDF,
		UploadedAt:  time.Now().UTC(),
	}
	m, err := repo.CreateMaterial(context.Background(), m)
	if err != nil {
		t.Fatalf("CreateMaterial() failed: %v", err)
	}
	return m
}

func CreateAssignment(
	t *testing.T,
	repo assignment.Repository,
	teacher user.User,
	subject, title string,
	points int,
	dueDate time.Time,
) assignment.Assignment {
	a := assignment.Assignment{
		ID:          uuid.NewString(),
		Subject:     subject,
		TeacherID:   teacher.ID,
		TeacherName: teacher.Name,
		Title:       title,
		Points:      points,
		DueDate:     dueDate.UTC(),
		CreatedAt:   time.Now().UTC(),
	}
	a, err := repo.CreateAssignment(context.Background(), a)
	if err != nil {
		t.Fatalf("CreateAssignment() failed: %v", err)
	}
	return a
}
