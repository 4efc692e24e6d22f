package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"restaurantservice/internal/cache"
	"restaurantservice/internal/model"
	"restaurantservice/internal/repository"
)

// EmployeeInput carries employment details. Nil fields are left untouched on update.
type EmployeeInput struct {
	HireDate          *time.Time
	Salary            *decimal.Decimal
	Role              *string
	AvailableHolidays *int
}

// CreateUserInput is the payload of a new user.
type CreateUserInput struct {
	Username   string
	Password   string
	FirstName  string
	LastName   string
	Email      string
	IsAdmin    bool
	IsEmployee bool
	Employee   *EmployeeInput
}

// UpdateUserInput lists the fields to change. Nil fields are left untouched.
type UpdateUserInput struct {
	Username   *string
	Password   *string
	FirstName  *string
	LastName   *string
	Email      *string
	IsAdmin    *bool
	IsEmployee *bool
	Employee   *EmployeeInput
}

// UserService exposes domain operations on users and their tokens.
type UserService interface {
	CreateUser(ctx context.Context, in CreateUserInput) (*model.User, error)
	GetUser(ctx context.Context, id uuid.UUID, forUpdate bool) (*model.User, error)
	ListUsers(ctx context.Context) ([]model.User, error)
	GetUserToken(user *model.User, tokenID uuid.UUID) (*model.Token, error)
	CreateUserToken(ctx context.Context, user *model.User) (*model.Token, error)
	UpdateUserLastLogin(ctx context.Context, user *model.User, at time.Time) (*model.User, error)
	UpdateUserInfo(ctx context.Context, user *model.User, in UpdateUserInput) (*model.User, error)
	WithTransaction(ctx context.Context, fn func(ctx context.Context, svc UserService) error) error
}

type userService struct {
	repo     repository.UserRepository
	cache    *cache.Client
	cacheTTL time.Duration
	logger   *slog.Logger

	// touched collects users written inside a transaction; nil outside one.
	touched *[]uuid.UUID
}

// NewUserService builds a UserService with repository and cache.
func NewUserService(repo repository.UserRepository, cache *cache.Client, cacheTTL time.Duration, logger *slog.Logger) UserService {
	if logger == nil {
		logger = slog.Default()
	}
	return &userService{repo: repo, cache: cache, cacheTTL: cacheTTL, logger: logger}
}

func (s *userService) cacheKey(id uuid.UUID) string {
	return fmt.Sprintf("user:%s", id)
}

// invalidate drops the cached user. Inside a transaction the key is dropped again
// once the transaction ends, so a reader racing the commit cannot leave the old row behind.
func (s *userService) invalidate(ctx context.Context, id uuid.UUID) {
	_ = s.cache.Delete(ctx, s.cacheKey(id))
	if s.touched != nil {
		*s.touched = append(*s.touched, id)
	}
}

func (s *userService) inTransaction() bool {
	return s.touched != nil
}

// CreateUser hashes the password and persists a new user.
func (s *userService) CreateUser(ctx context.Context, in CreateUserInput) (*model.User, error) {
	user := &model.User{
		Username:   in.Username,
		FirstName:  in.FirstName,
		LastName:   in.LastName,
		Email:      in.Email,
		IsAdmin:    in.IsAdmin,
		IsEmployee: in.IsEmployee,
	}
	if err := user.SetPassword(in.Password); err != nil {
		return nil, err
	}
	if in.Employee != nil {
		user.Employee = &model.EmployeeInfo{}
		applyEmployee(user.Employee, in.Employee)
	}

	if err := s.repo.CreateUser(ctx, user); err != nil {
		return nil, s.translate(err, user)
	}

	s.logger.InfoContext(ctx, "user created",
		slog.String("user_id", user.ID.String()),
		slog.String("username", user.Username),
	)
	return user, nil
}

// GetUser fetches a user by id. Reads that will be followed by an update lock the
// row and bypass the cache, as do all reads inside a transaction. A cached user is
// only served after the row is confirmed to still exist.
func (s *userService) GetUser(ctx context.Context, id uuid.UUID, forUpdate bool) (*model.User, error) {
	useCache := !forUpdate && !s.inTransaction()

	if useCache {
		var cached model.User
		if s.cache.GetJSON(ctx, s.cacheKey(id), &cached) {
			exists, err := s.repo.UserExists(ctx, id)
			if err != nil {
				return nil, fmt.Errorf("get user: %w", err)
			}
			if exists {
				return &cached, nil
			}
			s.invalidate(ctx, id)
			return nil, &UserDoesNotExist{ID: id}
		}
	}

	user, err := s.repo.GetUser(ctx, id, forUpdate)
	if err != nil {
		var notFound *repository.EntityDoesNotExist
		if errors.As(err, &notFound) {
			return nil, &UserDoesNotExist{ID: id, Err: err}
		}
		return nil, fmt.Errorf("get user: %w", err)
	}

	if useCache {
		s.cache.SetJSON(ctx, s.cacheKey(id), user, s.cacheTTL)
	}
	return user, nil
}

// ListUsers returns every user.
func (s *userService) ListUsers(ctx context.Context) ([]model.User, error) {
	users, err := s.repo.ListUsers(ctx)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return users, nil
}

// GetUserToken searches the tokens already loaded with user.
func (s *userService) GetUserToken(user *model.User, tokenID uuid.UUID) (*model.Token, error) {
	token, ok := user.FindToken(tokenID)
	if !ok {
		return nil, &TokenDoesNotExist{ID: tokenID}
	}
	return token, nil
}

// CreateUserToken issues and persists a new token owned by user.
func (s *userService) CreateUserToken(ctx context.Context, user *model.User) (*model.Token, error) {
	token := &model.Token{UserID: user.ID}
	if err := s.repo.CreateToken(ctx, token); err != nil {
		return nil, fmt.Errorf("create token: %w", err)
	}
	user.Tokens = append(user.Tokens, *token)
	s.invalidate(ctx, user.ID)

	s.logger.InfoContext(ctx, "token issued",
		slog.String("user_id", user.ID.String()),
		slog.String("token_id", token.ID.String()),
	)
	return token, nil
}

// UpdateUserLastLogin stamps and persists the last login time.
func (s *userService) UpdateUserLastLogin(ctx context.Context, user *model.User, at time.Time) (*model.User, error) {
	user.LastLogin = &at
	if err := s.repo.UpdateUser(ctx, user); err != nil {
		return nil, fmt.Errorf("update last login: %w", err)
	}
	s.invalidate(ctx, user.ID)
	return user, nil
}

// UpdateUserInfo applies the non-nil fields of in and persists the user.
func (s *userService) UpdateUserInfo(ctx context.Context, user *model.User, in UpdateUserInput) (*model.User, error) {
	if in.Username != nil {
		user.Username = *in.Username
	}
	if in.FirstName != nil {
		user.FirstName = *in.FirstName
	}
	if in.LastName != nil {
		user.LastName = *in.LastName
	}
	if in.Email != nil {
		user.Email = *in.Email
	}
	if in.IsAdmin != nil {
		user.IsAdmin = *in.IsAdmin
	}
	if in.IsEmployee != nil {
		user.IsEmployee = *in.IsEmployee
	}
	if in.Password != nil {
		if err := user.SetPassword(*in.Password); err != nil {
			return nil, err
		}
	}
	if in.Employee != nil {
		if user.Employee == nil {
			user.Employee = &model.EmployeeInfo{UserID: user.ID}
		}
		applyEmployee(user.Employee, in.Employee)
	}

	if err := s.repo.UpdateUser(ctx, user); err != nil {
		return nil, s.translate(err, user)
	}
	s.invalidate(ctx, user.ID)
	return user, nil
}

// WithTransaction runs fn with a service whose repository shares one transaction.
// Users written by fn are evicted from the cache again after commit or rollback.
func (s *userService) WithTransaction(ctx context.Context, fn func(ctx context.Context, svc UserService) error) error {
	var touched []uuid.UUID
	err := s.repo.WithTransaction(ctx, func(ctx context.Context, repo repository.UserRepository) error {
		return fn(ctx, &userService{
			repo:     repo,
			cache:    s.cache,
			cacheTTL: s.cacheTTL,
			logger:   s.logger,
			touched:  &touched,
		})
	})
	for _, id := range touched {
		s.invalidate(ctx, id)
	}
	return err
}

func (s *userService) translate(err error, user *model.User) error {
	var notUnique *repository.EntityIsNotUnique
	if errors.As(err, &notUnique) {
		return &UserAlreadyExists{User: user, Field: notUnique.Field, Detail: notUnique.Detail, Err: err}
	}
	return fmt.Errorf("save user: %w", err)
}

func applyEmployee(dst *model.EmployeeInfo, in *EmployeeInput) {
	if in.HireDate != nil {
		dst.HireDate = in.HireDate
	}
	if in.Salary != nil {
		dst.Salary = *in.Salary
	}
	if in.Role != nil {
		dst.Role = *in.Role
	}
	if in.AvailableHolidays != nil {
		dst.AvailableHolidays = in.AvailableHolidays
	}
}
