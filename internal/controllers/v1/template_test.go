package v1_test

import (
	"encoding/json"
	"fmt"
	"net/http"
	"testing"

	v1 "github.com/gsmtrack/backend/internal/controllers/v1"
	"github.com/gsmtrack/backend/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func (suite *TestSuiteStandard) TestTemplatesCreate() {
	p := createTestProvider(suite.T(), v1.ProviderEditable{Name: "Петрол Плюс"})

	tr := createTestTemplate(suite.T(), p.Data.ID.String(), defaultTemplateEditable())

	assert.Equal(suite.T(), "Импорт Петрол Плюс", tr.Data.Name)
	assert.Equal(suite.T(), p.Data.ID, tr.Data.ProviderID)
	assert.Equal(suite.T(), "Дата", tr.Data.FieldMapping["date"])

	// File templates never carry a remote source or a schedule
	assert.Nil(suite.T(), tr.Data.SourceTable)
	assert.Nil(suite.T(), tr.Data.SourceQuery)
	assert.False(suite.T(), tr.Data.AutoLoadEnabled)
}

func (suite *TestSuiteStandard) TestTemplatesCreateProviderNotFound() {
	editable := defaultTemplateEditable()

	r := test.Request(suite.T(), http.MethodPost, "http://example.com/v1/providers/4e743e94-6a4b-44d6-aba5-d77c82103fa7/templates", editable)
	test.AssertHTTPStatus(suite.T(), &r, http.StatusNotFound)
}

// TestTemplatesSaveGates verifies the validation gates and their order: the
// operator always sees the most specific error first.
func (suite *TestSuiteStandard) TestTemplatesSaveGates() {
	p := createTestProvider(suite.T(), v1.ProviderEditable{Name: "Петрол Плюс"})

	tests := []struct {
		name     string
		change   func(e *v1.TemplateEditable)
		expected string
	}{
		{
			"Missing required mapping names the fields",
			func(e *v1.TemplateEditable) {
				e.FieldMapping = map[string]string{"card": "Карта"}
			},
			"не сопоставлены обязательные поля: Дата и время, Количество, Вид топлива",
		},
		{
			"Missing name",
			func(e *v1.TemplateEditable) {
				e.Name = "   "
			},
			"укажите название шаблона",
		},
		{
			"Firebird without source",
			func(e *v1.TemplateEditable) {
				e.ConnectionType = "firebird"
			},
			"укажите таблицу-источник или SQL-запрос",
		},
		{
			"Firebird gate runs before the mapping gate",
			func(e *v1.TemplateEditable) {
				e.ConnectionType = "firebird"
				e.FieldMapping = nil
			},
			"укажите таблицу-источник или SQL-запрос",
		},
		{
			"API without credentials",
			func(e *v1.TemplateEditable) {
				e.ConnectionType = "api"
			},
			"не заполнены обязательные параметры провайдера: API-токен",
		},
		{
			"Web without certificate",
			func(e *v1.TemplateEditable) {
				e.ConnectionType = "web"
				e.ConnectionSettings = json.RawMessage(`{"base_url": "https://fuel.example.com"}`)
			},
			"укажите сертификат для подключения",
		},
		{
			"Fuel mapping text that is not an object",
			func(e *v1.TemplateEditable) {
				e.FuelTypeMapping = json.RawMessage(`"Дизельное топливо"`)
			},
			"сопоставление видов топлива должно быть JSON-объектом",
		},
	}

	for _, tt := range tests {
		suite.T().Run(tt.name, func(t *testing.T) {
			editable := defaultTemplateEditable()
			tt.change(&editable)

			tr := createTestTemplate(t, p.Data.ID.String(), editable, http.StatusBadRequest)
			require.NotNil(t, tr.Error)
			assert.Contains(t, *tr.Error, tt.expected)
		})
	}
}

func (suite *TestSuiteStandard) TestTemplatesCreateInvalidConnectionType() {
	p := createTestProvider(suite.T(), v1.ProviderEditable{Name: "Петрол Плюс"})

	editable := defaultTemplateEditable()
	editable.ConnectionType = "carrier-pigeon"

	tr := createTestTemplate(suite.T(), p.Data.ID.String(), editable, http.StatusBadRequest)
	require.NotNil(suite.T(), tr.Error)
	assert.Equal(suite.T(), "the specified connection type is invalid", *tr.Error)
}

func (suite *TestSuiteStandard) TestTemplatesCreateFirebird() {
	p := createTestProvider(suite.T(), v1.ProviderEditable{Name: "Роснефть"})

	editable := defaultTemplateEditable()
	editable.ConnectionType = "firebird"
	editable.SourceTable = "OPERATIONS"
	editable.ConnectionSettings = json.RawMessage(`{"host": "db.example.com", "database": "/var/lib/firebird/cards.fdb"}`)
	editable.AutoLoadEnabled = true
	editable.AutoLoadSchedule = "0 2 * * *"

	tr := createTestTemplate(suite.T(), p.Data.ID.String(), editable)

	require.NotNil(suite.T(), tr.Data.SourceTable)
	assert.Equal(suite.T(), "OPERATIONS", *tr.Data.SourceTable)
	assert.True(suite.T(), tr.Data.AutoLoadEnabled)
	assert.Equal(suite.T(), "один раз в сутки (02:00)", tr.Data.ScheduleText)

	var settings map[string]any
	require.NoError(suite.T(), json.Unmarshal(tr.Data.ConnectionSettings, &settings))
	assert.Equal(suite.T(), "db.example.com", settings["host"])
	assert.Equal(suite.T(), float64(3050), settings["port"])
}

func (suite *TestSuiteStandard) TestTemplatesScheduleText() {
	p := createTestProvider(suite.T(), v1.ProviderEditable{Name: "Петрол Плюс"})

	tests := []struct {
		schedule string
		text     string
	}{
		{"0 2 * * *", "один раз в сутки (02:00)"},
		{"0 */6 * * *", "каждые 6 часа"},
		{"0 * * * *", "один раз в час"},
	}

	for _, tt := range tests {
		suite.T().Run(tt.schedule, func(t *testing.T) {
			editable := defaultTemplateEditable()
			editable.Name = fmt.Sprintf("Шаблон %s", tt.schedule)
			editable.ConnectionType = "api"
			editable.ConnectionSettings = json.RawMessage(`{"base_url": "https://online.petrolplus.ru/api/public-api/v2", "api_token": "token"}`)
			editable.AutoLoadEnabled = true
			editable.AutoLoadSchedule = tt.schedule

			tr := createTestTemplate(t, p.Data.ID.String(), editable)
			assert.Equal(t, tt.text, tr.Data.ScheduleText)
		})
	}
}

func (suite *TestSuiteStandard) TestTemplatesFuelTypeMapping() {
	p := createTestProvider(suite.T(), v1.ProviderEditable{Name: "Петрол Плюс"})

	// The mapping is accepted both as an object and as editor text
	tests := []struct {
		name string
		raw  json.RawMessage
	}{
		{"Object", json.RawMessage(`{"Дизельное топливо": "ДТ", "АИ-95-К5": "АИ-95"}`)},
		{"Editor text", json.RawMessage(`"{\"Дизельное топливо\": \"ДТ\", \"АИ-95-К5\": \"АИ-95\"}"`)},
	}

	for _, tt := range tests {
		suite.T().Run(tt.name, func(t *testing.T) {
			editable := defaultTemplateEditable()
			editable.Name = fmt.Sprintf("Шаблон %s", tt.name)
			editable.FuelTypeMapping = tt.raw

			tr := createTestTemplate(t, p.Data.ID.String(), editable)
			assert.Equal(t, "ДТ", tr.Data.FuelTypeMapping["Дизельное топливо"])
			assert.Equal(t, "АИ-95", tr.Data.FuelTypeMapping["АИ-95-К5"])
		})
	}
}

func (suite *TestSuiteStandard) TestTemplatesUpdate() {
	p := createTestProvider(suite.T(), v1.ProviderEditable{Name: "Петрол Плюс"})
	tr := createTestTemplate(suite.T(), p.Data.ID.String(), defaultTemplateEditable())

	// Saves are full updates: the complete editor state is sent every time
	editable := defaultTemplateEditable()
	editable.Name = "Переименованный шаблон"
	editable.ConnectionType = "firebird"
	editable.SourceQuery = "SELECT * FROM OPERATIONS"

	r := test.Request(suite.T(), http.MethodPut, tr.Data.Links.Self, editable)
	test.AssertHTTPStatus(suite.T(), &r, http.StatusOK)

	var response v1.TemplateResponse
	test.DecodeResponse(suite.T(), &r, &response)

	assert.Equal(suite.T(), "Переименованный шаблон", response.Data.Name)
	require.NotNil(suite.T(), response.Data.SourceQuery)
	assert.Equal(suite.T(), "SELECT * FROM OPERATIONS", *response.Data.SourceQuery)
}

func (suite *TestSuiteStandard) TestTemplatesUpdateGateFails() {
	p := createTestProvider(suite.T(), v1.ProviderEditable{Name: "Петрол Плюс"})
	tr := createTestTemplate(suite.T(), p.Data.ID.String(), defaultTemplateEditable())

	editable := defaultTemplateEditable()
	editable.FieldMapping = nil

	r := test.Request(suite.T(), http.MethodPut, tr.Data.Links.Self, editable)
	test.AssertHTTPStatus(suite.T(), &r, http.StatusBadRequest)

	// The template is unchanged after a failed save
	r = test.Request(suite.T(), http.MethodGet, tr.Data.Links.Self, "")
	test.AssertHTTPStatus(suite.T(), &r, http.StatusOK)

	var response v1.TemplateResponse
	test.DecodeResponse(suite.T(), &r, &response)
	assert.Equal(suite.T(), "Дата", response.Data.FieldMapping["date"])
}

func (suite *TestSuiteStandard) TestTemplatesList() {
	p := createTestProvider(suite.T(), v1.ProviderEditable{Name: "Петрол Плюс"})
	other := createTestProvider(suite.T(), v1.ProviderEditable{Name: "Роснефть"})

	createTestTemplate(suite.T(), p.Data.ID.String(), defaultTemplateEditable())

	editable := defaultTemplateEditable()
	editable.Name = "Импорт Роснефть"
	editable.ConnectionType = "firebird"
	editable.SourceTable = "OPERATIONS"
	createTestTemplate(suite.T(), other.Data.ID.String(), editable)

	tests := []struct {
		name  string
		query string
		count int
	}{
		{"All templates", "", 2},
		{"By provider", fmt.Sprintf("provider=%s", p.Data.ID), 1},
		{"By connection type", "connection_type=firebird", 1},
		{"Search", "search=Роснефть", 1},
	}

	for _, tt := range tests {
		suite.T().Run(tt.name, func(t *testing.T) {
			r := test.Request(t, http.MethodGet, fmt.Sprintf("http://example.com/v1/templates?%s", tt.query), "")
			test.AssertHTTPStatus(t, &r, http.StatusOK)

			var response v1.TemplateListResponse
			test.DecodeResponse(t, &r, &response)
			assert.Len(t, response.Data, tt.count)
		})
	}
}

func (suite *TestSuiteStandard) TestTemplatesDelete() {
	p := createTestProvider(suite.T(), v1.ProviderEditable{Name: "Петрол Плюс"})
	tr := createTestTemplate(suite.T(), p.Data.ID.String(), defaultTemplateEditable())

	r := test.Request(suite.T(), http.MethodDelete, tr.Data.Links.Self, "")
	test.AssertHTTPStatus(suite.T(), &r, http.StatusNoContent)

	r = test.Request(suite.T(), http.MethodGet, tr.Data.Links.Self, "")
	test.AssertHTTPStatus(suite.T(), &r, http.StatusNotFound)
}

func (suite *TestSuiteStandard) TestTemplatesOptions() {
	p := createTestProvider(suite.T(), v1.ProviderEditable{Name: "Петрол Плюс"})
	tr := createTestTemplate(suite.T(), p.Data.ID.String(), defaultTemplateEditable())

	r := test.Request(suite.T(), http.MethodOptions, tr.Data.Links.Self, "")
	assert.Equal(suite.T(), http.StatusNoContent, r.Code)
	assert.Equal(suite.T(), "OPTIONS, GET, PUT, DELETE", r.Header().Get("allow"))
}
