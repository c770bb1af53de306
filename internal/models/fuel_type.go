package models

import (
	"strings"

	"gorm.io/gorm"
)

// FuelType is a normalized fuel kind, e.g. "ДТ" or "АИ-95". Fuel type
// mappings in templates translate raw source labels into these.
type FuelType struct {
	DefaultModel
	Name        string `gorm:"uniqueIndex:fuel_type_name"` // Normalized label, e.g. "ДТ"
	Description string // Full name, e.g. "Дизельное топливо"
	IsActive    bool
}

func (f FuelType) Self() string {
	return "Fuel Type"
}

func (f *FuelType) BeforeSave(_ *gorm.DB) error {
	f.Name = strings.TrimSpace(f.Name)
	f.Description = strings.TrimSpace(f.Description)
	return nil
}
