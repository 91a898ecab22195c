package records

import (
	"context"

	"github.com/trezcool/aula/core/user"
)

// userRecord keeps the password hash, which user.User never serializes.
type userRecord struct {
	user.User
	Password string `json:"password"`
}

func (r userRecord) toUser() user.User {
	usr := r.User
	usr.PasswordHash = []byte(r.Password)
	return usr
}

func newUserRecord(usr user.User) userRecord {
	return userRecord{User: usr, Password: string(usr.PasswordHash)}
}

type userRepository struct {
	db *DB
}

var _ user.Repository = (*userRepository)(nil)

func NewUserRepository(db *DB) user.Repository {
	return &userRepository{db: db}
}

func (repo *userRepository) query(ctx context.Context) ([]userRecord, error) {
	return read[[]userRecord](ctx, repo.db, usersKey)
}

func (repo *userRepository) QueryAllUsers(ctx context.Context) ([]user.User, error) {
	recs, err := repo.query(ctx)
	if err != nil {
		return nil, err
	}
	users := make([]user.User, 0, len(recs))
	for _, r := range recs {
		users = append(users, r.toUser())
	}
	return users, nil
}

func (repo *userRepository) getBy(ctx context.Context, match func(user.User) bool) (user.User, error) {
	recs, err := repo.query(ctx)
	if err != nil {
		return user.User{}, err
	}
	for _, r := range recs {
		if match(r.User) {
			return r.toUser(), nil
		}
	}
	return user.User{}, user.ErrNotFound
}

func (repo *userRepository) GetUserByID(ctx context.Context, id string) (user.User, error) {
	return repo.getBy(ctx, func(u user.User) bool { return u.ID == id })
}

func (repo *userRepository) GetUserByEmail(ctx context.Context, email string) (user.User, error) {
	return repo.getBy(ctx, func(u user.User) bool { return u.Email == email })
}

func (repo *userRepository) CreateUser(ctx context.Context, usr user.User) (user.User, error) {
	_, err := update(ctx, repo.db, usersKey, func(recs []userRecord) ([]userRecord, error) {
		for _, r := range recs {
			if r.Email == usr.Email {
				return nil, user.ErrEmailExists
			}
		}
		return append(recs, newUserRecord(usr)), nil
	})
	if err != nil {
		return user.User{}, err
	}
	return usr, nil
}

// UpdateUser replaces the stored user with the same ID. The role never changes.
func (repo *userRepository) UpdateUser(ctx context.Context, usr user.User) (user.User, error) {
	var updated user.User
	_, err := update(ctx, repo.db, usersKey, func(recs []userRecord) ([]userRecord, error) {
		for i, r := range recs {
			if r.ID == usr.ID {
				usr.Role = r.Role
				usr.CreatedAt = r.CreatedAt
				recs[i] = newUserRecord(usr)
				updated = usr
				return recs, nil
			}
		}
		return nil, user.ErrNotFound
	})
	if err != nil {
		return user.User{}, err
	}
	return updated, nil
}
