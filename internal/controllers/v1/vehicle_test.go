package v1_test

import (
	"fmt"
	"net/http"
	"testing"

	v1 "github.com/gsmtrack/backend/internal/controllers/v1"
	"github.com/gsmtrack/backend/test"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func (suite *TestSuiteStandard) TestVehiclesCreate() {
	f := createTestFuelType(suite.T(), v1.FuelTypeEditable{Name: "ДТ"})

	v := createTestVehicle(suite.T(), v1.VehicleEditable{
		Number:     "А123БВ 77",
		Name:       "КамАЗ 43118",
		CardNumber: "7005830900000001",
		FuelTypeID: f.Data.ID,
		IsActive:   true,
	})

	assert.Equal(suite.T(), "А123БВ 77", v.Data.Number)
	assert.Equal(suite.T(), f.Data.ID, v.Data.FuelTypeID)
}

func (suite *TestSuiteStandard) TestVehiclesCreateWithoutFuelType() {
	v := createTestVehicle(suite.T(), v1.VehicleEditable{Number: "В456ГД 99"})
	assert.Equal(suite.T(), uuid.Nil, v.Data.FuelTypeID)
}

func (suite *TestSuiteStandard) TestVehiclesList() {
	f := createTestFuelType(suite.T(), v1.FuelTypeEditable{Name: "ДТ"})
	createTestVehicle(suite.T(), v1.VehicleEditable{Number: "А123БВ 77", Name: "КамАЗ", FuelTypeID: f.Data.ID, IsActive: true})
	createTestVehicle(suite.T(), v1.VehicleEditable{Number: "В456ГД 99", Name: "ГАЗель", CardNumber: "7005830900000002"})

	tests := []struct {
		name  string
		query string
		count int
	}{
		{"All vehicles", "", 2},
		{"By number", "number=А123", 1},
		{"By card", "card_number=7005830900000002", 1},
		{"By fuel type", fmt.Sprintf("fuel_type=%s", f.Data.ID), 1},
		{"Search by name", "search=ГАЗель", 1},
		{"Active only", "is_active=true", 1},
	}

	for _, tt := range tests {
		suite.T().Run(tt.name, func(t *testing.T) {
			r := test.Request(t, http.MethodGet, fmt.Sprintf("http://example.com/v1/vehicles?%s", tt.query), "")
			test.AssertHTTPStatus(t, &r, http.StatusOK)

			var response v1.VehicleListResponse
			test.DecodeResponse(t, &r, &response)
			assert.Len(t, response.Data, tt.count)
		})
	}
}

func (suite *TestSuiteStandard) TestVehiclesUpdate() {
	v := createTestVehicle(suite.T(), v1.VehicleEditable{Number: "А123БВ 77"})

	r := test.Request(suite.T(), http.MethodPatch, v.Data.Links.Self, map[string]any{
		"card_number": "7005830900000009",
	})
	test.AssertHTTPStatus(suite.T(), &r, http.StatusOK)

	var response v1.VehicleResponse
	test.DecodeResponse(suite.T(), &r, &response)
	assert.Equal(suite.T(), "7005830900000009", response.Data.CardNumber)
}

func (suite *TestSuiteStandard) TestVehiclesDelete() {
	v := createTestVehicle(suite.T(), v1.VehicleEditable{Number: "А123БВ 77"})

	r := test.Request(suite.T(), http.MethodDelete, v.Data.Links.Self, "")
	test.AssertHTTPStatus(suite.T(), &r, http.StatusNoContent)

	r = test.Request(suite.T(), http.MethodGet, v.Data.Links.Self, "")
	test.AssertHTTPStatus(suite.T(), &r, http.StatusNotFound)
}
