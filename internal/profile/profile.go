// Package profile holds the single company-profile record used in document
// headers. The row is loaded once at startup and kept in an explicitly
// passed Store rather than re-read as ambient global state; updates write
// through to the database and refresh the in-process copy.
package profile

import (
	"sync"

	"gorm.io/gorm"

	"tornearia/internal/models"
)

type Store struct {
	db *gorm.DB

	mu      sync.RWMutex
	current models.CompanyProfile
}

// Load fetches the singleton row, creating it with the default shop name
// when the table is empty.
func Load(db *gorm.DB) (*Store, error) {
	var p models.CompanyProfile
	err := db.First(&p).Error
	if err == gorm.ErrRecordNotFound {
		p = models.CompanyProfile{Name: models.DefaultProfileName}
		if err := db.Create(&p).Error; err != nil {
			return nil, err
		}
	} else if err != nil {
		return nil, err
	}
	return &Store{db: db, current: p}, nil
}

// Get returns a copy of the current profile.
func (s *Store) Get() models.CompanyProfile {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

// Update persists the new field values onto the singleton row and refreshes
// the in-process copy. The row id never changes.
func (s *Store) Update(p models.CompanyProfile) (models.CompanyProfile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p.ID = s.current.ID
	if p.Name == "" {
		p.Name = models.DefaultProfileName
	}
	if err := s.db.Model(&models.CompanyProfile{}).Where("id = ?", p.ID).
		Updates(map[string]interface{}{
			"name":          p.Name,
			"cnpj":          p.CNPJ,
			"address":       p.Address,
			"phone":         p.Phone,
			"email":         p.Email,
			"logo_path":     p.LogoPath,
			"default_notes": p.DefaultNotes,
		}).Error; err != nil {
		return s.current, err
	}
	s.current = p
	return s.current, nil
}
