package main

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"restaurantservice/internal/model"
	"restaurantservice/internal/service"
)

type stubUsers struct {
	service.UserService
	createErr error
	existing  []model.User
}

func (s *stubUsers) CreateUser(_ context.Context, in service.CreateUserInput) (*model.User, error) {
	if s.createErr != nil {
		return nil, s.createErr
	}
	return &model.User{ID: uuid.New(), Username: in.Username, IsAdmin: in.IsAdmin}, nil
}

func (s *stubUsers) ListUsers(context.Context) ([]model.User, error) {
	return s.existing, nil
}

func TestEnsureAdmin(t *testing.T) {
	ctx := context.Background()

	t.Run("creates the admin", func(t *testing.T) {
		admin, err := ensureAdmin(ctx, &stubUsers{}, "pw")
		require.NoError(t, err)
		assert.Equal(t, adminUsername, admin.Username)
		assert.True(t, admin.IsAdmin)
	})

	t.Run("reuses an existing admin", func(t *testing.T) {
		id := uuid.New()
		users := &stubUsers{
			createErr: &service.UserAlreadyExists{Field: "username"},
			existing:  []model.User{{ID: uuid.New(), Username: "bob"}, {ID: id, Username: adminUsername}},
		}
		admin, err := ensureAdmin(ctx, users, "pw")
		require.NoError(t, err)
		assert.Equal(t, id, admin.ID)
	})

	t.Run("other failures are returned", func(t *testing.T) {
		_, err := ensureAdmin(ctx, &stubUsers{createErr: errors.New("boom")}, "pw")
		assert.EqualError(t, err, "boom")
	})

	t.Run("email taken by someone else", func(t *testing.T) {
		users := &stubUsers{createErr: &service.UserAlreadyExists{Field: "email"}}
		_, err := ensureAdmin(ctx, users, "pw")
		assert.Error(t, err)
	})
}
