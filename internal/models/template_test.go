package models_test

import (
	"github.com/gsmtrack/backend/internal/models"
	"github.com/gsmtrack/backend/internal/template"
)

func (suite *TestSuiteStandard) TestTemplateSettingsRoundTrip() {
	tmpl := suite.createTestTemplate(models.Template{
		Name:               "Firebird источник",
		ConnectionType:     template.ConnectionFirebird,
		ConnectionSettings: `{"host": "db.example.com", "port": 3051, "database": "/srv/fuel.fdb", "apiKey": "K1"}`,
		SourceTable:        "TRANSACTIONS",
		FieldMapping:       template.FieldMapping{"date": "TX_DATE", "quantity": "VOLUME", "fuel": "FUEL_NAME"},
	})

	var loaded models.Template
	suite.Require().NoError(models.DB.First(&loaded, tmpl.ID).Error)

	settings := loaded.Settings()
	suite.Require().NotNil(settings.Firebird)
	suite.Assert().Equal("db.example.com", settings.Firebird.Host)
	suite.Assert().Equal(3051, settings.Firebird.Port)
	suite.Assert().Equal("K1", settings.APIKey, "legacy apiKey spelling must be reconciled")
	suite.Assert().Equal("TX_DATE", loaded.FieldMapping["date"])
}

func (suite *TestSuiteStandard) TestTemplateBeforeSaveNarrowsFileType() {
	tmpl := suite.createTestTemplate(models.Template{
		Name:             "Файл",
		ConnectionType:   template.ConnectionFile,
		SourceTable:      "SHOULD_GO",
		SourceQuery:      "SELECT 1",
		AutoLoadEnabled:  true,
		AutoLoadSchedule: "daily",
	})

	var loaded models.Template
	suite.Require().NoError(models.DB.First(&loaded, tmpl.ID).Error)

	suite.Assert().Empty(loaded.SourceTable)
	suite.Assert().Empty(loaded.SourceQuery)
	suite.Assert().False(loaded.AutoLoadEnabled)
	suite.Assert().Empty(loaded.AutoLoadSchedule)
	suite.Assert().NotNil(loaded.FieldMapping)
}

func (suite *TestSuiteStandard) TestTemplateBeforeSaveClampsOffsets() {
	tmpl := suite.createTestTemplate(models.Template{
		Name:                   "АПИ",
		ConnectionType:         template.ConnectionAPI,
		AutoLoadDateFromOffset: -9000,
		AutoLoadDateToOffset:   30,
	})

	var loaded models.Template
	suite.Require().NoError(models.DB.First(&loaded, tmpl.ID).Error)

	suite.Assert().Equal(-365, loaded.AutoLoadDateFromOffset)
	suite.Assert().Equal(0, loaded.AutoLoadDateToOffset)
}

func (suite *TestSuiteStandard) TestTemplateNameUniquePerProvider() {
	provider := suite.createTestProvider(models.Provider{Name: "ППлюс"})

	_ = suite.createTestTemplate(models.Template{Name: "Шаблон", ProviderID: provider.ID, ConnectionType: template.ConnectionFile})

	duplicate := models.Template{Name: "Шаблон", ProviderID: provider.ID, ConnectionType: template.ConnectionFile}
	err := models.DB.Create(&duplicate).Error
	suite.Assert().ErrorIs(err, models.ErrTemplateNameNotUnique)

	// The same name under another provider is fine
	other := suite.createTestProvider(models.Provider{Name: "РН-Карт"})
	allowed := models.Template{Name: "Шаблон", ProviderID: other.ID, ConnectionType: template.ConnectionFile}
	suite.Assert().NoError(models.DB.Create(&allowed).Error)
}

func (suite *TestSuiteStandard) TestTemplateApplyPayload() {
	settings := template.DefaultsFor(template.ConnectionFirebird, "K1")
	settings.Firebird.Database = "/srv/fuel.fdb"

	payload, err := template.BuildSavePayload(template.Form{
		Name:           "Загрузка из Firebird",
		ConnectionType: template.ConnectionFirebird,
		Settings:       settings,
		Mapping:        template.FieldMapping{"date": "TX_DATE", "quantity": "VOLUME", "fuel": "FUEL_NAME"},
		SourceTable:    "TRANSACTIONS",
		IsActive:       true,
	})
	suite.Require().NoError(err)

	var tmpl models.Template
	tmpl.ProviderID = suite.createTestProvider(models.Provider{}).ID
	suite.Require().NoError(tmpl.ApplyPayload(payload))
	suite.Require().NoError(models.DB.Create(&tmpl).Error)

	var loaded models.Template
	suite.Require().NoError(models.DB.First(&loaded, tmpl.ID).Error)

	suite.Assert().Equal("Загрузка из Firebird", loaded.Name)
	suite.Assert().Equal("TRANSACTIONS", loaded.SourceTable)

	parsed := loaded.Settings()
	suite.Require().NotNil(parsed.Firebird)
	suite.Assert().Equal("/srv/fuel.fdb", parsed.Firebird.Database)
	suite.Assert().Equal("K1", parsed.APIKey)
}
