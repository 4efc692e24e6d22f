package repository

import (
	"context"

	"github.com/google/uuid"

	"restaurantservice/internal/model"
)

// UserRepository defines persistence operations for the user aggregate.
type UserRepository interface {
	CreateUser(ctx context.Context, user *model.User) error
	GetUser(ctx context.Context, id uuid.UUID, forUpdate bool) (*model.User, error)
	UserExists(ctx context.Context, id uuid.UUID) (bool, error)
	ListUsers(ctx context.Context) ([]model.User, error)
	UpdateUser(ctx context.Context, user *model.User) error
	CreateToken(ctx context.Context, token *model.Token) error
	Ping(ctx context.Context) error
	// Transaction methods
	WithTransaction(ctx context.Context, fn func(ctx context.Context, repo UserRepository) error) error
}

// userRelations are loaded with every user so token checks need no extra round-trip.
var userRelations = []string{"Tokens", "Employee"}

type userRepository struct {
	store *Store
}

// NewUserRepository builds a repository on top of the shared store.
func NewUserRepository(store *Store) UserRepository {
	return &userRepository{store: store}
}

// CreateUser inserts the user together with its employee info, if any.
func (r *userRepository) CreateUser(ctx context.Context, user *model.User) error {
	return r.store.Create(ctx, user)
}

// GetUser loads a user with its tokens and employee info.
func (r *userRepository) GetUser(ctx context.Context, id uuid.UUID, forUpdate bool) (*model.User, error) {
	var user model.User
	opts := GetOptions{ForUpdate: forUpdate, Preload: userRelations}
	if err := r.store.GetByID(ctx, &user, id, opts); err != nil {
		return nil, err
	}
	return &user, nil
}

// UserExists checks the users table without loading relations.
func (r *userRepository) UserExists(ctx context.Context, id uuid.UUID) (bool, error) {
	return r.store.Exists(ctx, &model.User{}, id)
}

// ListUsers returns all users, or an empty slice.
func (r *userRepository) ListUsers(ctx context.Context) ([]model.User, error) {
	users := make([]model.User, 0)
	if err := r.store.List(ctx, &users); err != nil {
		return nil, err
	}
	if users == nil {
		users = []model.User{}
	}
	return users, nil
}

// UpdateUser saves the user row and its employee info.
func (r *userRepository) UpdateUser(ctx context.Context, user *model.User) error {
	if err := r.store.Update(ctx, user); err != nil {
		return err
	}
	if user.Employee != nil {
		user.Employee.UserID = user.ID
		if err := r.store.Update(ctx, user.Employee); err != nil {
			return err
		}
	}
	return nil
}

// CreateToken inserts a token for an existing user.
func (r *userRepository) CreateToken(ctx context.Context, token *model.Token) error {
	return r.store.Create(ctx, token)
}

// Ping checks database connectivity.
func (r *userRepository) Ping(ctx context.Context) error {
	return r.store.Ping(ctx)
}

// WithTransaction executes fn with a repository bound to a single transaction.
func (r *userRepository) WithTransaction(ctx context.Context, fn func(ctx context.Context, repo UserRepository) error) error {
	return r.store.WithTransaction(ctx, func(ctx context.Context, tx *Store) error {
		return fn(ctx, &userRepository{store: tx})
	})
}
