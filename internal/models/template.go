package models

import (
	"encoding/json"
	"strings"

	"github.com/google/uuid"
	"github.com/gsmtrack/backend/internal/template"
	"gorm.io/gorm"
)

// Template is a saved import configuration for one transaction source.
//
// ConnectionSettings holds the flattened JSON wire format of the settings
// union; it is parsed through template.Parse so legacy field spellings are
// reconciled at the read boundary and never propagate further.
type Template struct {
	DefaultModel
	ProviderID uuid.UUID `gorm:"uniqueIndex:template_provider_name"`
	Provider   Provider

	Name        string `gorm:"uniqueIndex:template_provider_name"`
	Description string

	ConnectionType     template.ConnectionType
	ConnectionSettings string

	FieldMapping    template.FieldMapping `gorm:"serializer:json"`
	FuelTypeMapping map[string]string     `gorm:"serializer:json"`

	HeaderRow    int
	DataStartRow int

	SourceTable string
	SourceQuery string

	ExportStartRow  int
	ExportHeaderRow int

	IsActive bool

	AutoLoadEnabled        bool
	AutoLoadSchedule       string
	AutoLoadDateFromOffset int
	AutoLoadDateToOffset   int
}

func (t Template) Self() string {
	return "Template"
}

// Settings parses the persisted connection settings for the template's
// connection type.
func (t Template) Settings() template.ConnectionSettings {
	return template.Parse(t.ConnectionSettings, t.ConnectionType)
}

// ApplyPayload overwrites all editable fields from an assembled save payload.
// Saves are always full, never partial.
func (t *Template) ApplyPayload(p template.Payload) error {
	settings, err := json.Marshal(p.Settings)
	if err != nil {
		return err
	}

	t.Name = p.Name
	t.Description = p.Description
	t.ConnectionType = p.ConnectionType
	t.ConnectionSettings = string(settings)
	t.FieldMapping = p.Mapping
	t.FuelTypeMapping = p.FuelTypeMapping
	t.HeaderRow = p.HeaderRow
	t.DataStartRow = p.DataStartRow
	t.SourceTable = p.SourceTable
	t.SourceQuery = p.SourceQuery
	t.ExportStartRow = p.ExportStartRow
	t.ExportHeaderRow = p.ExportHeaderRow
	t.IsActive = p.IsActive
	t.AutoLoadEnabled = p.AutoLoadEnabled
	t.AutoLoadSchedule = p.AutoLoadSchedule
	t.AutoLoadDateFromOffset = p.DateFromOffset
	t.AutoLoadDateToOffset = p.DateToOffset

	return nil
}

// BeforeSave enforces the invariants of the template independently of the
// save path: trimmed name, offsets within range, and no source or auto-load
// state on connection types that cannot have one.
func (t *Template) BeforeSave(_ *gorm.DB) error {
	t.Name = strings.TrimSpace(t.Name)
	t.Description = strings.TrimSpace(t.Description)

	if t.FieldMapping == nil {
		t.FieldMapping = template.FieldMapping{}
	}

	t.AutoLoadDateFromOffset = template.ClampOffset(t.AutoLoadDateFromOffset)
	t.AutoLoadDateToOffset = template.ClampOffset(t.AutoLoadDateToOffset)

	if t.ConnectionType != template.ConnectionFirebird {
		t.SourceTable = ""
		t.SourceQuery = ""
	}

	if !t.ConnectionType.Remote() {
		t.AutoLoadEnabled = false
		t.AutoLoadSchedule = ""
	}

	return nil
}
