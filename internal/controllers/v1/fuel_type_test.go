package v1_test

import (
	"net/http"

	v1 "github.com/gsmtrack/backend/internal/controllers/v1"
	"github.com/gsmtrack/backend/test"
	"github.com/stretchr/testify/assert"
)

func (suite *TestSuiteStandard) TestFuelTypesCreate() {
	f := createTestFuelType(suite.T(), v1.FuelTypeEditable{
		Name:        "АИ-95",
		Description: "Бензин АИ-95",
		IsActive:    true,
	})

	assert.Equal(suite.T(), "АИ-95", f.Data.Name)
	assert.Contains(suite.T(), f.Data.Links.Self, "/v1/fuel-types/")
}

func (suite *TestSuiteStandard) TestFuelTypesCreateDuplicateName() {
	createTestFuelType(suite.T(), v1.FuelTypeEditable{Name: "ДТ"})

	r := test.Request(suite.T(), http.MethodPost, "http://example.com/v1/fuel-types", []v1.FuelTypeEditable{{Name: "ДТ"}})
	test.AssertHTTPStatus(suite.T(), &r, http.StatusBadRequest)
}

func (suite *TestSuiteStandard) TestFuelTypesUpdate() {
	f := createTestFuelType(suite.T(), v1.FuelTypeEditable{Name: "ДТ"})

	r := test.Request(suite.T(), http.MethodPatch, f.Data.Links.Self, map[string]any{
		"description": "Дизельное топливо",
	})
	test.AssertHTTPStatus(suite.T(), &r, http.StatusOK)

	var response v1.FuelTypeResponse
	test.DecodeResponse(suite.T(), &r, &response)
	assert.Equal(suite.T(), "Дизельное топливо", response.Data.Description)
}

func (suite *TestSuiteStandard) TestFuelTypesList() {
	createTestFuelType(suite.T(), v1.FuelTypeEditable{Name: "ДТ", IsActive: true})
	createTestFuelType(suite.T(), v1.FuelTypeEditable{Name: "АИ-92"})

	r := test.Request(suite.T(), http.MethodGet, "http://example.com/v1/fuel-types?is_active=true", "")
	test.AssertHTTPStatus(suite.T(), &r, http.StatusOK)

	var response v1.FuelTypeListResponse
	test.DecodeResponse(suite.T(), &r, &response)
	assert.Len(suite.T(), response.Data, 1)
	assert.Equal(suite.T(), "ДТ", response.Data[0].Name)
}

func (suite *TestSuiteStandard) TestFuelTypesDelete() {
	f := createTestFuelType(suite.T(), v1.FuelTypeEditable{Name: "ДТ"})

	r := test.Request(suite.T(), http.MethodDelete, f.Data.Links.Self, "")
	test.AssertHTTPStatus(suite.T(), &r, http.StatusNoContent)

	r = test.Request(suite.T(), http.MethodGet, f.Data.Links.Self, "")
	test.AssertHTTPStatus(suite.T(), &r, http.StatusNotFound)
}
