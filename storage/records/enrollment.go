package records

import (
	"context"

	"github.com/trezcool/aula/core/enrollment"
)

type enrollmentRepository struct {
	db *DB
}

var _ enrollment.Repository = (*enrollmentRepository)(nil)

func NewEnrollmentRepository(db *DB) enrollment.Repository {
	return &enrollmentRepository{db: db}
}

func (repo *enrollmentRepository) GetEnrollment(ctx context.Context, studentID string) ([]string, error) {
	ids, err := read[[]string](ctx, repo.db, enrollmentKey(studentID))
	if ids == nil {
		ids = []string{}
	}
	return ids, err
}

func (repo *enrollmentRepository) UpdateEnrollment(
	ctx context.Context,
	studentID string,
	fn func(ids []string) ([]string, error),
) ([]string, error) {
	return update(ctx, repo.db, enrollmentKey(studentID), func(ids []string) ([]string, error) {
		if ids == nil {
			ids = []string{}
		}
		return fn(ids)
	})
}
