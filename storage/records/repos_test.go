package records

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/aula/core"
	"github.com/trezcool/aula/core/assignment"
	"github.com/trezcool/aula/core/course"
	"github.com/trezcool/aula/core/forum"
	"github.com/trezcool/aula/core/user"
	inmemkv "github.com/trezcool/aula/storage/kv/inmem"
)

func TestUserRepository(t *testing.T) {
	ctx := context.Background()
	store := inmemkv.Open()
	repo := NewUserRepository(Open(store))

	usr := user.User{ID: "u1", Name: "Ada", Email: "ada@test.cd", Role: user.RoleTeacher}
	require.NoError(t, usr.SetPassword("lovelace"))

	_, err := repo.CreateUser(ctx, usr)
	require.NoError(t, err)

	t.Run("password hash survives a round trip", func(t *testing.T) {
		got, err := repo.GetUserByEmail(ctx, "ada@test.cd")
		require.NoError(t, err)
		assert.NoError(t, got.CheckPassword("lovelace"))
	})

	t.Run("duplicate email leaves users unchanged", func(t *testing.T) {
		before, err := store.Get(ctx, usersKey)
		require.NoError(t, err)

		_, err = repo.CreateUser(ctx, user.User{ID: "u2", Name: "Other", Email: "ada@test.cd", Role: user.RoleStudent})
		assert.Equal(t, user.ErrEmailExists, err)

		after, err := store.Get(ctx, usersKey)
		require.NoError(t, err)
		assert.Equal(t, before, after)
	})

	t.Run("unknown id", func(t *testing.T) {
		_, err := repo.GetUserByID(ctx, "nope")
		assert.Equal(t, user.ErrNotFound, err)
	})

	t.Run("update keeps the role", func(t *testing.T) {
		changed := usr
		changed.Name = "Ada L."
		changed.Role = user.RoleStudent
		got, err := repo.UpdateUser(ctx, changed)
		require.NoError(t, err)
		assert.Equal(t, "Ada L.", got.Name)
		assert.Equal(t, user.RoleTeacher, got.Role)

		all, err := repo.QueryAllUsers(ctx)
		require.NoError(t, err)
		require.Len(t, all, 1)
		assert.Equal(t, user.RoleTeacher, all[0].Role)
	})
}

func TestMaterialRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewMaterialRepository(Open(inmemkv.Open()))

	all, err := repo.QueryAllMaterials(ctx)
	require.NoError(t, err)
	assert.Equal(t, []course.Material{}, all)

	for _, id := range []string{"m1", "m2", "m3"} {
		_, err = repo.CreateMaterial(ctx, course.Material{ID: id, Subject: "Math", TeacherID: "t1"})
		require.NoError(t, err)
	}

	tests := []struct {
		name    string
		id      string
		check   func(course.Material) error
		wantErr error
		wantIDs []string
	}{
		{name: "unknown id", id: "nope", wantErr: course.ErrNotFound, wantIDs: []string{"m1", "m2", "m3"}},
		{
			name: "check refuses", id: "m2", wantErr: core.ErrPermissionDenied, wantIDs: []string{"m1", "m2", "m3"},
			check: func(course.Material) error { return core.ErrPermissionDenied },
		},
		{name: "removes exactly one row", id: "m2", wantIDs: []string{"m1", "m3"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := repo.DeleteMaterial(ctx, tt.id, tt.check)
			assert.Equal(t, tt.wantErr, err)

			all, err := repo.QueryAllMaterials(ctx)
			require.NoError(t, err)
			ids := make([]string, 0, len(all))
			for _, m := range all {
				ids = append(ids, m.ID)
			}
			assert.Equal(t, tt.wantIDs, ids)
		})
	}
}

func TestEnrollmentRepository(t *testing.T) {
	ctx := context.Background()
	store := inmemkv.Open()
	repo := NewEnrollmentRepository(Open(store))

	ids, err := repo.GetEnrollment(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, []string{}, ids)

	_, err = repo.UpdateEnrollment(ctx, "s1", func(ids []string) ([]string, error) {
		return append(ids, "m1"), nil
	})
	require.NoError(t, err)

	raw, err := store.Get(ctx, "enrollments_s1")
	require.NoError(t, err)
	assert.JSONEq(t, `["m1"]`, string(raw))
}

func TestAssignmentRepository(t *testing.T) {
	ctx := context.Background()
	store := inmemkv.Open()
	repo := NewAssignmentRepository(Open(store))

	_, err := repo.CreateAssignment(ctx, assignment.Assignment{ID: "a1", Subject: "Math", Points: 10, DueDate: time.Now()})
	require.NoError(t, err)

	t.Run("update unknown", func(t *testing.T) {
		_, err := repo.UpdateAssignment(ctx, "nope", func(*assignment.Assignment) error { return nil })
		assert.Equal(t, assignment.ErrNotFound, err)
	})

	t.Run("failed update writes nothing", func(t *testing.T) {
		_, err := repo.UpdateAssignment(ctx, "a1", func(a *assignment.Assignment) error {
			a.Title = "changed"
			return core.ErrPermissionDenied
		})
		assert.Equal(t, core.ErrPermissionDenied, err)

		a, err := repo.GetAssignmentByID(ctx, "a1")
		require.NoError(t, err)
		assert.Empty(t, a.Title)
	})

	t.Run("update", func(t *testing.T) {
		a, err := repo.UpdateAssignment(ctx, "a1", func(a *assignment.Assignment) error {
			a.Title = "Fractions"
			return nil
		})
		require.NoError(t, err)
		assert.Equal(t, "Fractions", a.Title)
	})

	t.Run("drafts", func(t *testing.T) {
		drafts, err := repo.GetDrafts(ctx, "s1")
		require.NoError(t, err)
		assert.Empty(t, drafts)

		require.NoError(t, repo.UpdateDrafts(ctx, "s1", func(d map[string]string) error {
			d["a1"] = "half done"
			return nil
		}))
		raw, err := store.Get(ctx, "submissions_s1")
		require.NoError(t, err)
		assert.JSONEq(t, `{"a1":"half done"}`, string(raw))
	})
}

func TestForumRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewForumRepository(Open(inmemkv.Open()))

	msgs, err := repo.GetThread(ctx, "Math")
	require.NoError(t, err)
	assert.Equal(t, []forum.Message{}, msgs)

	for _, id := range []string{"1", "2", "3"} {
		require.NoError(t, repo.AppendMessage(ctx, "Math", forum.Message{ID: id}))
	}
	require.NoError(t, repo.AppendMessage(ctx, "Art", forum.Message{ID: "4"}))

	msgs, err = repo.GetThread(ctx, "Math")
	require.NoError(t, err)
	require.Len(t, msgs, 3)
	assert.Equal(t, "1", msgs[0].ID)
	assert.Equal(t, "3", msgs[2].ID)
}
