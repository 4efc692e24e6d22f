package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// EmployeeInfo holds employment details owned by exactly one user.
type EmployeeInfo struct {
	ID                uuid.UUID       `json:"id" gorm:"type:char(36);primaryKey"`
	UserID            uuid.UUID       `json:"-" gorm:"type:char(36);not null;uniqueIndex"`
	HireDate          *time.Time      `json:"hire_date" gorm:"type:date"`
	Salary            decimal.Decimal `json:"salary" gorm:"type:decimal(10,3);not null"`
	Role              string          `json:"role" gorm:"size:255;not null"`
	AvailableHolidays *int            `json:"available_holidays"`
}

// TableName overrides the pluralised default.
func (EmployeeInfo) TableName() string {
	return "employee_info"
}

// BeforeCreate sets UUID before creating the record.
func (e *EmployeeInfo) BeforeCreate(tx *gorm.DB) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	return nil
}
