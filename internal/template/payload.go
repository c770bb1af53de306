package template

import (
	"errors"
	"fmt"
	"strings"
)

// Validation errors for the save payload. They are user facing and therefore
// worded in Russian, the locale of the operators.
var (
	ErrNameRequired           = errors.New("укажите название шаблона")
	ErrFirebirdSourceRequired = errors.New("укажите таблицу-источник или SQL-запрос")
	ErrAPIBaseURLRequired     = errors.New("укажите адрес API")
	ErrWebBaseURLRequired     = errors.New("укажите адрес веб-сервиса")
	ErrWebCertificateRequired = errors.New("укажите сертификат для подключения")
	ErrRequiredFieldsUnmapped = errors.New("не сопоставлены обязательные поля")
	ErrProviderFieldRequired  = errors.New("не заполнены обязательные параметры провайдера")
)

// Form is the editor state a save payload is assembled from.
type Form struct {
	Name             string
	Description      string
	ConnectionType   ConnectionType
	Settings         ConnectionSettings
	Mapping          FieldMapping
	FuelMappingText  string
	HeaderRow        int
	DataStartRow     int
	SourceTable      string
	SourceQuery      string
	ExportStartRow   int
	ExportHeaderRow  int
	IsActive         bool
	AutoLoadEnabled  bool
	AutoLoadSchedule string
	DateFromOffset   int
	DateToOffset     int
}

// Payload is the normalized template state that is persisted. Saves are
// always full: a payload carries every field, never a partial update.
type Payload struct {
	Name             string
	Description      string
	ConnectionType   ConnectionType
	Settings         ConnectionSettings
	Mapping          FieldMapping
	FuelTypeMapping  map[string]string
	HeaderRow        int
	DataStartRow     int
	SourceTable      string
	SourceQuery      string
	ExportStartRow   int
	ExportHeaderRow  int
	IsActive         bool
	AutoLoadEnabled  bool
	AutoLoadSchedule string
	DateFromOffset   int
	DateToOffset     int
}

// BuildSavePayload validates the form and assembles the normalized payload.
//
// The gates run in a fixed order and the first failing one aborts, so the
// operator always sees the most specific error first: fuel mapping text, then
// type-specific connection requirements, then the generic field mapping
// check, then the name.
func BuildSavePayload(f Form) (Payload, error) {
	if err := ValidateFuelMapping(f.FuelMappingText); err != nil {
		return Payload{}, err
	}

	switch f.ConnectionType {
	case ConnectionFirebird:
		if strings.TrimSpace(f.SourceQuery) == "" && strings.TrimSpace(f.SourceTable) == "" {
			return Payload{}, ErrFirebirdSourceRequired
		}
	case ConnectionAPI:
		if err := validateAPISettings(f.Settings); err != nil {
			return Payload{}, err
		}
	case ConnectionWeb:
		web := f.Settings.Web
		if web == nil || strings.TrimSpace(web.BaseURL) == "" {
			return Payload{}, ErrWebBaseURLRequired
		}
		if strings.TrimSpace(web.Certificate) == "" {
			return Payload{}, ErrWebCertificateRequired
		}
	}

	if missing := ValidateRequired(f.Mapping); len(missing) > 0 {
		return Payload{}, fmt.Errorf("%w: %s", ErrRequiredFieldsUnmapped, strings.Join(missing, ", "))
	}

	name := strings.TrimSpace(f.Name)
	if name == "" {
		return Payload{}, ErrNameRequired
	}

	p := Payload{
		Name:             name,
		Description:      strings.TrimSpace(f.Description),
		ConnectionType:   f.ConnectionType,
		Settings:         f.Settings,
		Mapping:          f.Mapping,
		FuelTypeMapping:  ParseFuelMapping(f.FuelMappingText),
		HeaderRow:        f.HeaderRow,
		DataStartRow:     f.DataStartRow,
		SourceTable:      strings.TrimSpace(f.SourceTable),
		SourceQuery:      strings.TrimSpace(f.SourceQuery),
		ExportStartRow:   f.ExportStartRow,
		ExportHeaderRow:  f.ExportHeaderRow,
		IsActive:         f.IsActive,
		AutoLoadEnabled:  f.AutoLoadEnabled,
		AutoLoadSchedule: strings.TrimSpace(f.AutoLoadSchedule),
		DateFromOffset:   ClampOffset(f.DateFromOffset),
		DateToOffset:     ClampOffset(f.DateToOffset),
	}

	// Mapping is always persisted as an object, never null.
	if p.Mapping == nil {
		p.Mapping = FieldMapping{}
	}

	// Source table and query only make sense for Firebird.
	if p.ConnectionType != ConnectionFirebird {
		p.SourceTable = ""
		p.SourceQuery = ""
	}

	// File templates have no live source: auto-load is off and the settings
	// reduce to the carried-over outbound API key.
	if !p.ConnectionType.Remote() {
		p.AutoLoadEnabled = false
		p.AutoLoadSchedule = ""
		p.Settings = ConnectionSettings{
			Type:   p.ConnectionType,
			APIKey: f.Settings.APIKey,
		}
	}

	return p, nil
}

func validateAPISettings(s ConnectionSettings) error {
	api := s.API
	if api == nil || strings.TrimSpace(api.BaseURL) == "" {
		return ErrAPIBaseURLRequired
	}

	var missing []string
	switch api.ProviderType {
	case ProviderPetrolPlus:
		if api.APIToken == "" {
			missing = append(missing, "API-токен")
		}
	case ProviderRNCard:
		if api.Login == "" {
			missing = append(missing, "логин")
		}
		if api.Password == "" {
			missing = append(missing, "пароль")
		}
		if api.Contract == "" {
			missing = append(missing, "номер договора")
		}
	case ProviderGPN:
		if s.APIKey == "" {
			missing = append(missing, "API-ключ")
		}
		if api.Login == "" {
			missing = append(missing, "логин")
		}
		if api.Password == "" {
			missing = append(missing, "пароль")
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("%w: %s", ErrProviderFieldRequired, strings.Join(missing, ", "))
	}

	return nil
}

// Auto-load date offsets are days relative to today and must stay within the
// last year.
const (
	MinDateOffset = -365
	MaxDateOffset = 0

	DefaultDateFromOffset = -7
	DefaultDateToOffset   = -1
)

// ClampOffset forces an auto-load date offset into [-365, 0].
func ClampOffset(offset int) int {
	if offset < MinDateOffset {
		return MinDateOffset
	}
	if offset > MaxDateOffset {
		return MaxDateOffset
	}
	return offset
}
