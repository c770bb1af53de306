package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Transaction is a single fueling operation imported from a source.
type Transaction struct {
	DefaultModel
	ProviderID uuid.UUID
	Provider   Provider
	TemplateID *uuid.UUID
	Template   *Template
	VehicleID  *uuid.UUID
	Vehicle    *Vehicle

	Date         time.Time
	CardNumber   string
	CardHolder   string // The user system field
	Station      string // The kazs system field
	Organization string

	Quantity decimal.Decimal `gorm:"type:DECIMAL(20,8)"` // Fuel quantity in liters
	Amount   decimal.Decimal `gorm:"type:DECIMAL(20,8)"` // Total price, when the source reports one
	Currency string

	FuelType string // Normalized fuel label after fuel type mapping

	// SHA256 over the source row, used for duplicate detection on re-import
	ImportHash string `gorm:"index"`
}

func (t Transaction) Self() string {
	return "Transaction"
}

// AfterFind enforces UTC on the transaction date, like DefaultModel does for
// the timestamps.
func (t *Transaction) AfterFind(tx *gorm.DB) (err error) {
	err = t.DefaultModel.AfterFind(tx)
	if err != nil {
		return err
	}

	t.Date = t.Date.In(time.UTC)
	return
}

func (t *Transaction) BeforeSave(_ *gorm.DB) error {
	t.CardNumber = strings.TrimSpace(t.CardNumber)
	t.CardHolder = strings.TrimSpace(t.CardHolder)
	t.Station = strings.TrimSpace(t.Station)
	t.Organization = strings.TrimSpace(t.Organization)
	t.FuelType = strings.TrimSpace(t.FuelType)
	t.ImportHash = strings.TrimSpace(t.ImportHash)

	if t.Currency == "" {
		t.Currency = "RUB"
	}

	if t.Date.IsZero() {
		t.Date = time.Now().In(time.UTC)
	} else {
		t.Date = t.Date.In(time.UTC)
	}

	if t.TemplateID != nil && *t.TemplateID == uuid.Nil {
		t.TemplateID = nil
	}
	if t.VehicleID != nil && *t.VehicleID == uuid.Nil {
		t.VehicleID = nil
	}

	return nil
}
