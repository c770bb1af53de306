package models

import (
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Vehicle is a fleet vehicle a fuel card is assigned to.
type Vehicle struct {
	DefaultModel
	Number     string `gorm:"uniqueIndex:vehicle_number"` // Registration number
	Name       string // Display name, e.g. make and model
	CardNumber string // Fuel card assigned to the vehicle
	FuelTypeID *uuid.UUID
	FuelType   *FuelType
	IsActive   bool
}

func (v Vehicle) Self() string {
	return "Vehicle"
}

func (v *Vehicle) BeforeSave(_ *gorm.DB) error {
	v.Number = strings.TrimSpace(v.Number)
	v.Name = strings.TrimSpace(v.Name)
	v.CardNumber = strings.TrimSpace(v.CardNumber)

	// Nil out a pointer to the nil UUID so the foreign key stays clean
	if v.FuelTypeID != nil && *v.FuelTypeID == uuid.Nil {
		v.FuelTypeID = nil
	}

	return nil
}
