package repository

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	mysqldriver "github.com/go-sql-driver/mysql"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"restaurantservice/internal/model"
)

func newStoreWithMock(t *testing.T) (*Store, sqlmock.Sqlmock) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	gormDB, err := gorm.Open(mysql.New(mysql.Config{
		Conn:                      sqlDB,
		SkipInitializeWithVersion: true,
	}), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)

	return NewStore(gormDB), mock
}

func TestStore_Create_DuplicateUsername(t *testing.T) {
	store, mock := newStoreWithMock(t)
	repo := NewUserRepository(store)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO `users`")).
		WillReturnError(&mysqldriver.MySQLError{
			Number:  1062,
			Message: "Duplicate entry 'a' for key 'users.idx_users_username'",
		})
	mock.ExpectRollback()

	user := &model.User{Username: "a", Email: "a@x.com", FirstName: "A", LastName: "B", PasswordHash: "h"}
	err := repo.CreateUser(context.Background(), user)

	var notUnique *EntityIsNotUnique
	require.True(t, errors.As(err, &notUnique), "got %v", err)
	assert.Equal(t, "username", notUnique.Field)
	assert.Equal(t, "Key (username)=(a) already exists.", notUnique.Detail)
	assert.Same(t, user, notUnique.Entity)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_Create_Success(t *testing.T) {
	store, mock := newStoreWithMock(t)
	repo := NewUserRepository(store)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO `users`")).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	user := &model.User{Username: "a", Email: "a@x.com", FirstName: "A", LastName: "B", PasswordHash: "h"}
	require.NoError(t, repo.CreateUser(context.Background(), user))
	assert.NotEqual(t, uuid.Nil, user.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_GetByID_NotFound(t *testing.T) {
	store, mock := newStoreWithMock(t)
	id := uuid.New()

	mock.ExpectQuery("SELECT \\* FROM `users` WHERE id = \\?").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	var user model.User
	err := store.GetByID(context.Background(), &user, id, GetOptions{})

	var notFound *EntityDoesNotExist
	require.True(t, errors.As(err, &notFound), "got %v", err)
	assert.Equal(t, "User", notFound.Entity)
	assert.Equal(t, id.String(), notFound.ID)
	assert.Contains(t, notFound.Detail, id.String())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_GetByID_ForUpdate(t *testing.T) {
	store, mock := newStoreWithMock(t)
	id := uuid.New()

	rows := sqlmock.NewRows([]string{"id", "username", "email"}).
		AddRow(id.String(), "a", "a@x.com")
	mock.ExpectQuery("SELECT \\* FROM `users` WHERE id = \\?.* FOR UPDATE").
		WillReturnRows(rows)

	var user model.User
	require.NoError(t, store.GetByID(context.Background(), &user, id, GetOptions{ForUpdate: true}))
	assert.Equal(t, id, user.ID)
	assert.Equal(t, "a", user.Username)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_GetByID_DatabaseError(t *testing.T) {
	store, mock := newStoreWithMock(t)

	mock.ExpectQuery("SELECT \\* FROM `users`").WillReturnError(errors.New("connection reset"))

	var user model.User
	err := store.GetByID(context.Background(), &user, uuid.New(), GetOptions{})
	require.Error(t, err)

	var notFound *EntityDoesNotExist
	assert.False(t, errors.As(err, &notFound))
}

func TestUserRepository_ListUsers_Empty(t *testing.T) {
	store, mock := newStoreWithMock(t)
	repo := NewUserRepository(store)

	mock.ExpectQuery("SELECT \\* FROM `users`").
		WillReturnRows(sqlmock.NewRows([]string{"id", "username"}))

	users, err := repo.ListUsers(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, users)
	assert.Empty(t, users)
}

func TestStore_Ping(t *testing.T) {
	t.Run("reachable", func(t *testing.T) {
		store, mock := newStoreWithMock(t)
		mock.ExpectExec(regexp.QuoteMeta(pingQuery)).WillReturnResult(sqlmock.NewResult(0, 0))

		assert.NoError(t, store.Ping(context.Background()))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("not reachable", func(t *testing.T) {
		store, mock := newStoreWithMock(t)
		mock.ExpectExec(regexp.QuoteMeta(pingQuery)).WillReturnError(errors.New("dial tcp: connection refused"))

		err := store.Ping(context.Background())
		assert.ErrorIs(t, err, ErrDatabaseNotReachable)
	})
}

func TestStore_WithTransaction_RollsBackOnError(t *testing.T) {
	store, mock := newStoreWithMock(t)
	repo := NewUserRepository(store)

	mock.ExpectBegin()
	mock.ExpectRollback()

	sentinel := errors.New("abort")
	err := repo.WithTransaction(context.Background(), func(ctx context.Context, tx UserRepository) error {
		return sentinel
	})
	assert.ErrorIs(t, err, sentinel)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_UpdateUser_CreatesMissingEmployeeInfo(t *testing.T) {
	store, mock := newStoreWithMock(t)
	repo := NewUserRepository(store)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("UPDATE `users` SET")).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()
	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO `employee_info`")).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	user := &model.User{
		ID:           uuid.New(),
		Username:     "a",
		Email:        "a@x.com",
		PasswordHash: "h",
		Employee:     &model.EmployeeInfo{Role: "chef"},
	}
	require.NoError(t, repo.UpdateUser(context.Background(), user))

	assert.Equal(t, user.ID, user.Employee.UserID)
	assert.NotEqual(t, uuid.Nil, user.Employee.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_UpdateUser_DuplicateEmail(t *testing.T) {
	store, mock := newStoreWithMock(t)
	repo := NewUserRepository(store)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("UPDATE `users` SET")).
		WillReturnError(&mysqldriver.MySQLError{
			Number:  1062,
			Message: "Duplicate entry 'b@x.com' for key 'users.idx_users_email'",
		})
	mock.ExpectRollback()

	user := &model.User{ID: uuid.New(), Username: "a", Email: "b@x.com", PasswordHash: "h"}
	err := repo.UpdateUser(context.Background(), user)

	var notUnique *EntityIsNotUnique
	require.True(t, errors.As(err, &notUnique), "got %v", err)
	assert.Equal(t, "email", notUnique.Field)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_UserExists(t *testing.T) {
	tests := []struct {
		name  string
		count int
		want  bool
	}{
		{name: "present", count: 1, want: true},
		{name: "deleted", count: 0, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store, mock := newStoreWithMock(t)
			repo := NewUserRepository(store)
			id := uuid.New()

			mock.ExpectQuery(regexp.QuoteMeta("SELECT count(*) FROM `users` WHERE id = ?")).
				WithArgs(id.String()).
				WillReturnRows(sqlmock.NewRows([]string{"count(*)"}).AddRow(tt.count))

			got, err := repo.UserExists(context.Background(), id)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}
