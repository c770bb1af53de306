package v1

import (
	"encoding/json"
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gsmtrack/backend/internal/models"
	"github.com/gsmtrack/backend/internal/template"
	ez_uuid "github.com/gsmtrack/backend/internal/uuid"
)

// TemplateEditable represents all user configurable parameters.
//
// Saves are always full: the editor sends the complete template state and the
// server assembles and validates the normalized payload from it.
type TemplateEditable struct {
	Name               string                  `json:"name" example:"Импорт Петрол Плюс" default:""`                  // Name of the template
	Description        string                  `json:"description" example:"Ежедневная выгрузка" default:""`          // Description of the template
	ConnectionType     template.ConnectionType `json:"connection_type" example:"firebird" default:"file"`             // Type of the transaction source
	ConnectionSettings json.RawMessage         `json:"connection_settings" swaggertype:"object"`                      // Settings for the connection, shape depends on connection_type
	FieldMapping       template.FieldMapping   `json:"field_mapping" swaggertype:"object"`                            // Mapping of system fields to source columns
	FuelTypeMapping    json.RawMessage         `json:"fuel_type_mapping" swaggertype:"object"`                        // Mapping of raw fuel labels to normalized ones, object or its JSON text
	HeaderRow          int                     `json:"header_row" example:"0" default:"0"`                            // Row of the column headers in uploaded files
	DataStartRow       int                     `json:"data_start_row" example:"1" default:"1"`                        // First data row in uploaded files
	SourceTable        string                  `json:"source_table" example:"OPERATIONS" default:""`                  // Source table, only for firebird
	SourceQuery        string                  `json:"source_query" example:"SELECT * FROM OPERATIONS" default:""`    // Source SQL query, only for firebird
	ExportStartRow     int                     `json:"export_start_row" example:"0" default:"0"`                      // First data row for exports
	ExportHeaderRow    int                     `json:"export_header_row" example:"0" default:"0"`                     // Header row for exports
	IsActive           bool                    `json:"is_active" example:"true" default:"true"`                       // Is the template active?
	AutoLoadEnabled    bool                    `json:"auto_load_enabled" example:"false" default:"false"`             // Load transactions on a schedule? Only for remote sources
	AutoLoadSchedule   string                  `json:"auto_load_schedule" example:"0 2 * * *" default:""`             // Schedule in cron or keyword notation
	DateFromOffset     int                     `json:"auto_load_date_from_offset" example:"-7" default:"-7"`          // Start of the auto-load window in days relative to today
	DateToOffset       int                     `json:"auto_load_date_to_offset" example:"-1" default:"-1"`            // End of the auto-load window in days relative to today
}

// form converts the editable to the editor form the save payload is
// assembled from.
func (editable TemplateEditable) form() template.Form {
	return template.Form{
		Name:             editable.Name,
		Description:      editable.Description,
		ConnectionType:   editable.ConnectionType,
		Settings:         template.Parse(editable.ConnectionSettings, editable.ConnectionType),
		Mapping:          editable.FieldMapping,
		FuelMappingText:  fuelMappingText(editable.FuelTypeMapping),
		HeaderRow:        editable.HeaderRow,
		DataStartRow:     editable.DataStartRow,
		SourceTable:      editable.SourceTable,
		SourceQuery:      editable.SourceQuery,
		ExportStartRow:   editable.ExportStartRow,
		ExportHeaderRow:  editable.ExportHeaderRow,
		IsActive:         editable.IsActive,
		AutoLoadEnabled:  editable.AutoLoadEnabled,
		AutoLoadSchedule: editable.AutoLoadSchedule,
		DateFromOffset:   editable.DateFromOffset,
		DateToOffset:     editable.DateToOffset,
	}
}

// fuelMappingText accepts both shapes clients send for the fuel type
// mapping: the editor's raw text (a JSON string) or the decoded object.
func fuelMappingText(raw json.RawMessage) string {
	if len(raw) == 0 || string(raw) == "null" {
		return ""
	}

	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}

	return string(raw)
}

type TemplateLinks struct {
	Self     string `json:"self" example:"https://example.com/api/v1/templates/8db7745a-a5bb-4db1-b475-b48e3db5dc4f"`                  // The template itself
	Provider string `json:"provider" example:"https://example.com/api/v1/providers/d1b7e624-71d5-455e-b868-9bbfc83e3f79"`             // The provider this template belongs to
	Load     string `json:"load" example:"https://example.com/api/v1/transactions/load-from-api?template_id=8db7745a-a5bb-4db1-b475-b48e3db5dc4f"` // Load endpoint for this template
}

type Template struct {
	models.DefaultModel
	ProviderID         uuid.UUID               `json:"provider_id" example:"d1b7e624-71d5-455e-b868-9bbfc83e3f79"` // ID of the provider this template belongs to
	Name               string                  `json:"name" example:"Импорт Петрол Плюс"`
	Description        string                  `json:"description" example:"Ежедневная выгрузка"`
	ConnectionType     template.ConnectionType `json:"connection_type" example:"firebird"`
	ConnectionSettings json.RawMessage         `json:"connection_settings" swaggertype:"object"` // Flattened settings of the active variant
	FieldMapping       template.FieldMapping   `json:"field_mapping" swaggertype:"object"`
	FuelTypeMapping    map[string]string       `json:"fuel_type_mapping"`
	HeaderRow          int                     `json:"header_row" example:"0"`
	DataStartRow       int                     `json:"data_start_row" example:"1"`
	SourceTable        *string                 `json:"source_table" example:"OPERATIONS"`
	SourceQuery        *string                 `json:"source_query" example:"SELECT * FROM OPERATIONS"`
	ExportStartRow     int                     `json:"export_start_row" example:"0"`
	ExportHeaderRow    int                     `json:"export_header_row" example:"0"`
	IsActive           bool                    `json:"is_active" example:"true"`
	AutoLoadEnabled    bool                    `json:"auto_load_enabled" example:"false"`
	AutoLoadSchedule   string                  `json:"auto_load_schedule" example:"0 2 * * *"`
	ScheduleText       string                  `json:"schedule_text" example:"один раз в сутки (02:00)"` // Human readable schedule in Russian
	DateFromOffset     int                     `json:"auto_load_date_from_offset" example:"-7"`
	DateToOffset       int                     `json:"auto_load_date_to_offset" example:"-1"`
	Links              TemplateLinks           `json:"links"`
}

func newTemplate(c *gin.Context, model models.Template) (Template, error) {
	url := c.GetString(string(models.DBContextURL))

	settings, err := json.Marshal(model.Settings())
	if err != nil {
		return Template{}, err
	}

	t := Template{
		DefaultModel:       model.DefaultModel,
		ProviderID:         model.ProviderID,
		Name:               model.Name,
		Description:        model.Description,
		ConnectionType:     model.ConnectionType,
		ConnectionSettings: settings,
		FieldMapping:       model.FieldMapping,
		FuelTypeMapping:    model.FuelTypeMapping,
		HeaderRow:          model.HeaderRow,
		DataStartRow:       model.DataStartRow,
		ExportStartRow:     model.ExportStartRow,
		ExportHeaderRow:    model.ExportHeaderRow,
		IsActive:           model.IsActive,
		AutoLoadEnabled:    model.AutoLoadEnabled,
		AutoLoadSchedule:   model.AutoLoadSchedule,
		ScheduleText:       template.FormatScheduleDetailed(model.AutoLoadSchedule),
		DateFromOffset:     model.AutoLoadDateFromOffset,
		DateToOffset:       model.AutoLoadDateToOffset,
		Links: TemplateLinks{
			Self:     fmt.Sprintf("%s/v1/templates/%s", url, model.ID),
			Provider: fmt.Sprintf("%s/v1/providers/%s", url, model.ProviderID),
			Load:     fmt.Sprintf("%s/v1/transactions/load-from-api?template_id=%s", url, model.ID),
		},
	}

	if t.FieldMapping == nil {
		t.FieldMapping = template.FieldMapping{}
	}

	// Source table and query are only meaningful for firebird templates and
	// are rendered as null otherwise
	if model.ConnectionType == template.ConnectionFirebird {
		table, query := model.SourceTable, model.SourceQuery
		t.SourceTable = &table
		t.SourceQuery = &query
	}

	return t, nil
}

type TemplateListResponse struct {
	Data       []Template  `json:"data"`                                                          // List of templates
	Error      *string     `json:"error" example:"the specified resource ID is not a valid UUID"` // The error, if any occurred
	Pagination *Pagination `json:"pagination"`                                                    // Pagination information
}

type TemplateResponse struct {
	Data  *Template `json:"data"`                                                          // Data for the template
	Error *string   `json:"error" example:"укажите название шаблона"`                      // The error, if any occurred
}

type TemplateQueryFilter struct {
	ProviderID     ez_uuid.UUID `form:"provider"`                   // By ID of the provider
	ConnectionType string       `form:"connection_type"`            // By connection type
	Name           string       `form:"name" filterField:"false"`   // By name
	IsActive       bool         `form:"is_active"`                  // Is the template active?
	Search         string       `form:"search" filterField:"false"` // By string in name or description
	Offset         uint         `form:"offset" filterField:"false"` // The offset of the first template returned. Defaults to 0.
	Limit          int          `form:"limit" filterField:"false"`  // Maximum number of templates to return. Defaults to 50.
}

func (f TemplateQueryFilter) model() models.Template {
	return models.Template{
		ProviderID:     f.ProviderID.UUID,
		ConnectionType: template.ConnectionType(f.ConnectionType),
		IsActive:       f.IsActive,
	}
}
