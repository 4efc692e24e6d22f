package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const pingQuery = "SELECT 1"

// GetOptions tunes a single-row lookup.
type GetOptions struct {
	// ForUpdate locks the row until the surrounding transaction ends.
	ForUpdate bool
	// Preload lists the relations loaded together with the row.
	Preload []string
}

// Store is the GORM-backed persistence adapter shared by the typed repositories.
type Store struct {
	db *gorm.DB
}

// NewStore wraps a GORM connection.
func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

// Create inserts entity and its new associations.
func (s *Store) Create(ctx context.Context, entity any) error {
	if err := s.db.WithContext(ctx).Create(entity).Error; err != nil {
		return translateWriteError(err, entity)
	}
	return nil
}

// GetByID loads exactly one row with the given primary key into dest.
func (s *Store) GetByID(ctx context.Context, dest any, id uuid.UUID, opts GetOptions) error {
	q := s.db.WithContext(ctx)
	for _, rel := range opts.Preload {
		q = q.Preload(rel)
	}
	if opts.ForUpdate {
		q = q.Clauses(clause.Locking{Strength: "UPDATE"})
	}

	if err := q.Where("id = ?", id).First(dest).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			name := s.entityName(dest)
			return &EntityDoesNotExist{
				Entity: name,
				ID:     id.String(),
				Detail: fmt.Sprintf("%s with id %s was not found.", name, id),
			}
		}
		return err
	}
	return nil
}

// Exists reports whether a row of model's table has the given primary key.
func (s *Store) Exists(ctx context.Context, model any, id uuid.UUID) (bool, error) {
	var n int64
	if err := s.db.WithContext(ctx).Model(model).Where("id = ?", id).Count(&n).Error; err != nil {
		return false, err
	}
	return n > 0, nil
}

// List loads every row of dest's table. dest must point to a slice.
func (s *Store) List(ctx context.Context, dest any) error {
	return s.db.WithContext(ctx).Find(dest).Error
}

// Update persists the columns of entity. Associations are saved by the caller.
func (s *Store) Update(ctx context.Context, entity any) error {
	if err := s.db.WithContext(ctx).Omit(clause.Associations).Save(entity).Error; err != nil {
		return translateWriteError(err, entity)
	}
	return nil
}

// Ping issues a trivial query. Every failure is reported as ErrDatabaseNotReachable.
func (s *Store) Ping(ctx context.Context) error {
	if err := s.db.WithContext(ctx).Exec(pingQuery).Error; err != nil {
		return fmt.Errorf("%w: %v", ErrDatabaseNotReachable, err)
	}
	return nil
}

// WithTransaction executes fn against a store bound to a database transaction.
func (s *Store) WithTransaction(ctx context.Context, fn func(ctx context.Context, tx *Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(ctx, &Store{db: tx})
	})
}

func (s *Store) entityName(dest any) string {
	stmt := &gorm.Statement{DB: s.db}
	if err := stmt.Parse(dest); err != nil || stmt.Schema == nil {
		return "entity"
	}
	return stmt.Schema.Name
}
