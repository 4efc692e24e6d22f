package model

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const bcryptCost = 10

// User is a restaurant staff account.
type User struct {
	ID           uuid.UUID  `json:"user_id" gorm:"type:char(36);primaryKey"`
	Username     string     `json:"username" gorm:"size:255;not null;uniqueIndex:idx_users_username"`
	PasswordHash string     `json:"-" gorm:"size:255;not null"` // Never expose in JSON
	FirstName    string     `json:"first_name" gorm:"size:255;not null"`
	LastName     string     `json:"last_name" gorm:"size:255;not null"`
	Email        string     `json:"email" gorm:"size:255;not null;uniqueIndex:idx_users_email"`
	LastLogin    *time.Time `json:"last_login"`
	RegisteredOn time.Time  `json:"registered_on" gorm:"not null;autoCreateTime"`
	IsAdmin      bool       `json:"is_admin" gorm:"not null;default:false"`
	IsEmployee   bool       `json:"is_employee" gorm:"not null;default:false"`

	// Relations
	Employee *EmployeeInfo `json:"employee,omitempty" gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
	Tokens   []Token       `json:"tokens,omitempty" gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
}

// BeforeCreate sets UUID before creating the record.
func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}

// SetPassword replaces the stored hash with a bcrypt hash of plaintext.
// The plaintext itself is never kept on the record.
func (u *User) SetPassword(plaintext string) error {
	hash, err := HashPassword(plaintext)
	if err != nil {
		return err
	}
	u.PasswordHash = hash
	return nil
}

// HashPassword derives the one-way hash stored for a password.
func HashPassword(plaintext string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(plaintext), bcryptCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hashed), nil
}

// FindToken returns the token with the given id among the loaded tokens.
func (u *User) FindToken(id uuid.UUID) (*Token, bool) {
	for i := range u.Tokens {
		if u.Tokens[i].ID == id {
			return &u.Tokens[i], true
		}
	}
	return nil, false
}
