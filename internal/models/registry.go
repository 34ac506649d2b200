package models

import (
	"regexp"
	"time"

	"github.com/shopspring/decimal"
)

// Registry entities: companies (pessoa jurídica), clients (pessoa física)
// and employees. Tax ids are optional but pattern-checked when present.

var (
	cnpjPattern = regexp.MustCompile(`^\d{2}\.\d{3}\.\d{3}/\d{4}-\d{2}$`)
	cpfPattern  = regexp.MustCompile(`^\d{3}\.\d{3}\.\d{3}-\d{2}$`)
)

// ValidCNPJ reports whether s is empty or formatted as 00.000.000/0000-00.
func ValidCNPJ(s string) bool { return s == "" || cnpjPattern.MatchString(s) }

// ValidCPF reports whether s is empty or formatted as 000.000.000-00.
func ValidCPF(s string) bool { return s == "" || cpfPattern.MatchString(s) }

type Company struct {
	ID          uint   `gorm:"primaryKey" json:"id"`
	CNPJ        string `gorm:"size:18;index" json:"cnpj"`
	Name        string `gorm:"size:200;not null;index" json:"name"`
	ContactName string `gorm:"size:200" json:"contact_name"`
	Phone       string `gorm:"size:20" json:"phone"`
	Email       string `gorm:"size:254" json:"email"`
	Address     string `json:"address"`
	Notes       string `json:"notes"`
	Active      bool   `gorm:"not null;default:true" json:"active"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type Client struct {
	ID        uint   `gorm:"primaryKey" json:"id"`
	CPF       string `gorm:"size:14;index" json:"cpf"`
	Name      string `gorm:"size:200;not null;index" json:"name"`
	Phone     string `gorm:"size:20" json:"phone"`
	Email     string `gorm:"size:254" json:"email"`
	Address   string `json:"address"`
	Notes     string `json:"notes"`
	Active    bool   `gorm:"not null;default:true" json:"active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type Employee struct {
	ID            uint            `gorm:"primaryKey" json:"id"`
	Name          string          `gorm:"size:200;not null;index" json:"name"`
	Role          string          `gorm:"size:100" json:"role"`
	Salary        decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"salary"`
	AdmissionDate *time.Time      `gorm:"type:date" json:"admission_date,omitempty"`
	Status        EmployeeStatus  `gorm:"size:10;not null;default:'active'" json:"status"`
	Phone         string          `gorm:"size:20" json:"phone"`
	Notes         string          `json:"notes"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}
