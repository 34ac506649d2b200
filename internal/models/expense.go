package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type ExpenseCategory struct {
	ID          uint   `gorm:"primaryKey" json:"id"`
	Name        string `gorm:"size:100;not null;index" json:"name"`
	Description string `json:"description"`
	Color       string `gorm:"size:7;not null;default:'#6B7280'" json:"color"`
}

// Expense is a one-off or recurring cost. Salary expenses carry an employee
// link and are produced by payroll generation.
type Expense struct {
	ID          uint             `gorm:"primaryKey" json:"id"`
	Description string           `gorm:"size:200;not null" json:"description"`
	CategoryID  *uint            `json:"category_id,omitempty"`
	Category    *ExpenseCategory `gorm:"foreignKey:CategoryID;constraint:OnDelete:SET NULL" json:"category,omitempty"`
	Amount      decimal.Decimal  `gorm:"type:decimal(10,2);not null" json:"amount"`
	Date        time.Time        `gorm:"type:date;not null;index" json:"date"`
	Kind        ExpenseKind      `gorm:"size:10;not null;default:'variable';index" json:"kind"`
	EmployeeID  *uint            `json:"employee_id,omitempty"`
	Employee    *Employee        `gorm:"foreignKey:EmployeeID;constraint:OnDelete:SET NULL" json:"employee,omitempty"`
	Notes       string           `json:"notes"`
	CreatedAt   time.Time        `json:"created_at"`
	UpdatedAt   time.Time        `json:"updated_at"`
}

// PayrollRun is the monthly payroll control record, unique per (month, year).
// Generation is idempotent once the run is processed.
type PayrollRun struct {
	ID          uint            `gorm:"primaryKey" json:"id"`
	Month       int             `gorm:"not null;uniqueIndex:idx_payroll_period,priority:1" json:"month"`
	Year        int             `gorm:"not null;uniqueIndex:idx_payroll_period,priority:2" json:"year"`
	GeneratedAt time.Time       `json:"generated_at"`
	Total       decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0" json:"total"`
	Processed   bool            `gorm:"not null;default:false" json:"processed"`
}
