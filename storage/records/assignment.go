package records

import (
	"context"

	"github.com/trezcool/aula/core/assignment"
)

type assignmentRepository struct {
	db *DB
}

var _ assignment.Repository = (*assignmentRepository)(nil)

func NewAssignmentRepository(db *DB) assignment.Repository {
	return &assignmentRepository{db: db}
}

func (repo *assignmentRepository) QueryAllAssignments(ctx context.Context) ([]assignment.Assignment, error) {
	all, err := read[[]assignment.Assignment](ctx, repo.db, assignmentsKey)
	if all == nil {
		all = []assignment.Assignment{}
	}
	return all, err
}

func (repo *assignmentRepository) GetAssignmentByID(ctx context.Context, id string) (assignment.Assignment, error) {
	all, err := repo.QueryAllAssignments(ctx)
	if err != nil {
		return assignment.Assignment{}, err
	}
	for _, a := range all {
		if a.ID == id {
			return a, nil
		}
	}
	return assignment.Assignment{}, assignment.ErrNotFound
}

func (repo *assignmentRepository) CreateAssignment(ctx context.Context, a assignment.Assignment) (assignment.Assignment, error) {
	_, err := update(ctx, repo.db, assignmentsKey, func(all []assignment.Assignment) ([]assignment.Assignment, error) {
		return append(all, a), nil
	})
	if err != nil {
		return assignment.Assignment{}, err
	}
	return a, nil
}

func (repo *assignmentRepository) UpdateAssignment(
	ctx context.Context,
	id string,
	fn func(*assignment.Assignment) error,
) (assignment.Assignment, error) {
	var updated assignment.Assignment
	_, err := update(ctx, repo.db, assignmentsKey, func(all []assignment.Assignment) ([]assignment.Assignment, error) {
		for i := range all {
			if all[i].ID != id {
				continue
			}
			if err := fn(&all[i]); err != nil {
				return nil, err
			}
			updated = all[i]
			return all, nil
		}
		return nil, assignment.ErrNotFound
	})
	if err != nil {
		return assignment.Assignment{}, err
	}
	return updated, nil
}

func (repo *assignmentRepository) GetDrafts(ctx context.Context, studentID string) (map[string]string, error) {
	drafts, err := read[map[string]string](ctx, repo.db, draftsKey(studentID))
	if drafts == nil {
		drafts = make(map[string]string)
	}
	return drafts, err
}

func (repo *assignmentRepository) UpdateDrafts(
	ctx context.Context,
	studentID string,
	fn func(drafts map[string]string) error,
) error {
	_, err := update(ctx, repo.db, draftsKey(studentID), func(drafts map[string]string) (map[string]string, error) {
		if drafts == nil {
			drafts = make(map[string]string)
		}
		return drafts, fn(drafts)
	})
	return err
}
