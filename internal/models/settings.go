package models

import "time"

// CompanyProfile is the single settings row rendered into document headers.
// It is loaded once at startup and handed to whoever needs it (see
// internal/profile); there is exactly one row, lazily created with defaults.
type CompanyProfile struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Name         string    `gorm:"size:200;not null" json:"name"`
	CNPJ         string    `gorm:"size:18" json:"cnpj"`
	Address      string    `json:"address"`
	Phone        string    `gorm:"size:20" json:"phone"`
	Email        string    `gorm:"size:254" json:"email"`
	LogoPath     string    `gorm:"size:255" json:"logo_path"`
	DefaultNotes string    `json:"default_notes"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// DefaultProfileName seeds the lazily created settings row.
const DefaultProfileName = "Tornearia Jair"
