package repository

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

const (
	mysqlDuplicateEntry = 1062
	pgUniqueViolation   = "23505"
)

// constraintFields maps unique index names, as reported by either driver, to the
// column they guard.
var constraintFields = map[string]string{
	"idx_users_username": "username",
	"idx_users_email":    "email",
	"users_username_key": "username",
	"users_email_key":    "email",
}

var (
	mysqlDuplicateRe = regexp.MustCompile(`^Duplicate entry '(.*)' for key '([^']+)'$`)
	pgDetailRe       = regexp.MustCompile(`^Key \(([^)]+)\)=\((.*)\) already exists\.?$`)
)

// translateWriteError turns a driver-level unique violation into EntityIsNotUnique.
// Other errors are returned unchanged.
func translateWriteError(err error, entity any) error {
	if err == nil {
		return nil
	}

	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) && myErr.Number == mysqlDuplicateEntry {
		field, value := "", ""
		if m := mysqlDuplicateRe.FindStringSubmatch(myErr.Message); m != nil {
			value = m[1]
			field = fieldForConstraint(m[2])
		}
		return newNotUnique(entity, field, value, myErr.Message, err)
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
		field := fieldForConstraint(pgErr.ConstraintName)
		value := ""
		if m := pgDetailRe.FindStringSubmatch(pgErr.Detail); m != nil {
			if field == "" {
				field = m[1]
			}
			value = m[2]
		}
		fallback := pgErr.Detail
		if fallback == "" {
			fallback = pgErr.ConstraintName
		}
		return newNotUnique(entity, field, value, fallback, err)
	}

	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return newNotUnique(entity, "", "", "duplicate key", err)
	}

	return err
}

func newNotUnique(entity any, field, value, fallback string, err error) *EntityIsNotUnique {
	detail := fallback
	if field != "" {
		detail = fmt.Sprintf("Key (%s)=(%s) already exists.", field, value)
	}
	return &EntityIsNotUnique{Entity: entity, Field: field, Detail: detail, Err: err}
}

// fieldForConstraint resolves a constraint name, with or without a "table." prefix.
func fieldForConstraint(name string) string {
	if i := strings.LastIndexByte(name, '.'); i >= 0 {
		name = name[i+1:]
	}
	return constraintFields[name]
}
