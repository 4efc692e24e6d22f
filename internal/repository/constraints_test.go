package repository

import (
	"errors"
	"fmt"
	"testing"

	"github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"restaurantservice/internal/model"
)

func TestTranslateWriteError(t *testing.T) {
	user := &model.User{Username: "a", Email: "a@x.com"}

	tests := []struct {
		name       string
		err        error
		wantField  string
		wantDetail string
	}{
		{
			name:       "mysql duplicate username",
			err:        &mysql.MySQLError{Number: 1062, Message: "Duplicate entry 'a' for key 'users.idx_users_username'"},
			wantField:  "username",
			wantDetail: "Key (username)=(a) already exists.",
		},
		{
			name:       "mysql duplicate email without table prefix",
			err:        &mysql.MySQLError{Number: 1062, Message: "Duplicate entry 'a@x.com' for key 'idx_users_email'"},
			wantField:  "email",
			wantDetail: "Key (email)=(a@x.com) already exists.",
		},
		{
			name:       "mysql unknown key falls back to message",
			err:        &mysql.MySQLError{Number: 1062, Message: "Duplicate entry 'x' for key 'other_idx'"},
			wantField:  "",
			wantDetail: "Duplicate entry 'x' for key 'other_idx'",
		},
		{
			name: "postgres constraint name",
			err: &pgconn.PgError{
				Code:           "23505",
				ConstraintName: "idx_users_email",
				Detail:         "Key (email)=(a@x.com) already exists.",
			},
			wantField:  "email",
			wantDetail: "Key (email)=(a@x.com) already exists.",
		},
		{
			name: "postgres unknown constraint uses detail columns",
			err: &pgconn.PgError{
				Code:           "23505",
				ConstraintName: "some_key",
				Detail:         "Key (nickname)=(b) already exists.",
			},
			wantField:  "nickname",
			wantDetail: "Key (nickname)=(b) already exists.",
		},
		{
			name:       "wrapped gorm duplicated key",
			err:        fmt.Errorf("insert: %w", gorm.ErrDuplicatedKey),
			wantField:  "",
			wantDetail: "duplicate key",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := translateWriteError(tt.err, user)

			var notUnique *EntityIsNotUnique
			require.True(t, errors.As(got, &notUnique), "got %v", got)
			assert.Same(t, user, notUnique.Entity)
			assert.Equal(t, tt.wantField, notUnique.Field)
			assert.Equal(t, tt.wantDetail, notUnique.Detail)
			assert.ErrorIs(t, got, tt.err)
		})
	}
}

func TestTranslateWriteError_PassesThroughOtherErrors(t *testing.T) {
	assert.NoError(t, translateWriteError(nil, nil))

	boom := errors.New("boom")
	assert.Same(t, boom, translateWriteError(boom, nil))

	fk := &mysql.MySQLError{Number: 1452, Message: "Cannot add or update a child row"}
	assert.Equal(t, error(fk), translateWriteError(fk, nil))
}
