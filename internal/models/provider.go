package models

import (
	"strings"

	"gorm.io/gorm"
)

// Provider is a fuel-card provider that transactions are imported from. Each
// provider owns its import templates.
type Provider struct {
	DefaultModel
	Name        string `gorm:"uniqueIndex:provider_name"`
	Description string
	IsActive    bool
}

func (p Provider) Self() string {
	return "Provider"
}

func (p *Provider) BeforeSave(_ *gorm.DB) error {
	p.Name = strings.TrimSpace(p.Name)
	p.Description = strings.TrimSpace(p.Description)
	return nil
}
