package records

import (
	"context"

	"github.com/trezcool/aula/core/course"
)

type materialRepository struct {
	db *DB
}

var _ course.Repository = (*materialRepository)(nil)

func NewMaterialRepository(db *DB) course.Repository {
	return &materialRepository{db: db}
}

func (repo *materialRepository) QueryAllMaterials(ctx context.Context) ([]course.Material, error) {
	materials, err := read[[]course.Material](ctx, repo.db, materialsKey)
	if materials == nil {
		materials = []course.Material{}
	}
	return materials, err
}

func (repo *materialRepository) CreateMaterial(ctx context.Context, m course.Material) (course.Material, error) {
	_, err := update(ctx, repo.db, materialsKey, func(materials []course.Material) ([]course.Material, error) {
		return append(materials, m), nil
	})
	if err != nil {
		return course.Material{}, err
	}
	return m, nil
}

func (repo *materialRepository) DeleteMaterial(ctx context.Context, id string, check func(course.Material) error) error {
	_, err := update(ctx, repo.db, materialsKey, func(materials []course.Material) ([]course.Material, error) {
		for i, m := range materials {
			if m.ID != id {
				continue
			}
			if check != nil {
				if err := check(m); err != nil {
					return nil, err
				}
			}
			return append(materials[:i], materials[i+1:]...), nil
		}
		return nil, course.ErrNotFound
	})
	return err
}
