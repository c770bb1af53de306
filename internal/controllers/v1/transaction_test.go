package v1_test

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	v1 "github.com/gsmtrack/backend/internal/controllers/v1"
	"github.com/gsmtrack/backend/internal/importer"
	"github.com/gsmtrack/backend/test"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// apiTemplate creates an api template reading from the given server URL, with
// a field mapping matching the rows transactionServer serves.
func (suite *TestSuiteStandard) apiTemplate(serverURL string) v1.TemplateResponse {
	p := createTestProvider(suite.T(), v1.ProviderEditable{Name: "Петрол Плюс"})

	editable := defaultTemplateEditable()
	editable.ConnectionType = "api"
	editable.ConnectionSettings = json.RawMessage(fmt.Sprintf(`{"provider_type": "petrolplus", "base_url": %q, "api_token": "token"}`, serverURL))
	editable.FieldMapping = map[string]string{
		"date":     "date",
		"card":     "cardNum",
		"quantity": "qty",
		"fuel":     "fuelName",
	}
	editable.FuelTypeMapping = json.RawMessage(`{"Дизельное топливо": "ДТ"}`)

	return createTestTemplate(suite.T(), p.Data.ID.String(), editable)
}

// transactionServer serves two fixed provider transactions.
func transactionServer() *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[
			{"date": "2024-03-17 08:31:00", "cardNum": "7005830900000001", "qty": "45,5", "fuelName": "Дизельное топливо"},
			{"date": "2024-03-18 12:00:00", "cardNum": "8001000000000002", "qty": "30", "fuelName": "АИ-95"}
		]`))
	}))
}

func (suite *TestSuiteStandard) TestTransactionsLoadFromAPI() {
	server := transactionServer()
	defer server.Close()

	tr := suite.apiTemplate(server.URL)

	url := fmt.Sprintf("http://example.com/v1/transactions/load-from-api?template_id=%s&date_from=2024-03-01&date_to=2024-03-31", tr.Data.ID)
	r := test.Request(suite.T(), http.MethodPost, url, "")
	test.AssertHTTPStatus(suite.T(), &r, http.StatusCreated)

	var result importer.LoadResult
	test.DecodeResponse(suite.T(), &r, &result)

	assert.Equal(suite.T(), 2, result.Created)
	assert.Equal(suite.T(), 0, result.Skipped)
	assert.Empty(suite.T(), result.Warnings)

	// The fuel label is normalized through the template's fuel type mapping
	r = test.Request(suite.T(), http.MethodGet, "http://example.com/v1/transactions?fuel_type=ДТ", "")
	test.AssertHTTPStatus(suite.T(), &r, http.StatusOK)

	var list v1.TransactionListResponse
	test.DecodeResponse(suite.T(), &r, &list)
	require.Len(suite.T(), list.Data, 1)
	assert.Equal(suite.T(), "7005830900000001", list.Data[0].CardNumber)
	assert.True(suite.T(), list.Data[0].Quantity.Equal(decimal.RequireFromString("45.5")))
}

func (suite *TestSuiteStandard) TestTransactionsLoadSkipsDuplicates() {
	server := transactionServer()
	defer server.Close()

	tr := suite.apiTemplate(server.URL)
	url := fmt.Sprintf("http://example.com/v1/transactions/load-from-api?template_id=%s&date_from=2024-03-01&date_to=2024-03-31", tr.Data.ID)

	r := test.Request(suite.T(), http.MethodPost, url, "")
	test.AssertHTTPStatus(suite.T(), &r, http.StatusCreated)

	r = test.Request(suite.T(), http.MethodPost, url, "")
	test.AssertHTTPStatus(suite.T(), &r, http.StatusCreated)

	var result importer.LoadResult
	test.DecodeResponse(suite.T(), &r, &result)
	assert.Equal(suite.T(), 0, result.Created)
	assert.Equal(suite.T(), 2, result.Skipped)
}

func (suite *TestSuiteStandard) TestTransactionsLoadCardFilter() {
	server := transactionServer()
	defer server.Close()

	tr := suite.apiTemplate(server.URL)

	url := fmt.Sprintf("http://example.com/v1/transactions/load-from-api?template_id=%s&date_from=2024-03-01&date_to=2024-03-31&card_numbers=7005*", tr.Data.ID)
	r := test.Request(suite.T(), http.MethodPost, url, "")
	test.AssertHTTPStatus(suite.T(), &r, http.StatusCreated)

	var result importer.LoadResult
	test.DecodeResponse(suite.T(), &r, &result)
	assert.Equal(suite.T(), 1, result.Created)
	assert.Equal(suite.T(), 1, result.Skipped)
}

func (suite *TestSuiteStandard) TestTransactionsLoadLinksVehicle() {
	server := transactionServer()
	defer server.Close()

	vehicle := createTestVehicle(suite.T(), v1.VehicleEditable{Number: "А123БВ 77", CardNumber: "7005830900000001"})
	tr := suite.apiTemplate(server.URL)

	url := fmt.Sprintf("http://example.com/v1/transactions/load-from-api?template_id=%s&date_from=2024-03-01&date_to=2024-03-31", tr.Data.ID)
	r := test.Request(suite.T(), http.MethodPost, url, "")
	test.AssertHTTPStatus(suite.T(), &r, http.StatusCreated)

	listURL := fmt.Sprintf("http://example.com/v1/transactions?vehicle=%s", vehicle.Data.ID)
	r = test.Request(suite.T(), http.MethodGet, listURL, "")
	test.AssertHTTPStatus(suite.T(), &r, http.StatusOK)

	var list v1.TransactionListResponse
	test.DecodeResponse(suite.T(), &r, &list)
	require.Len(suite.T(), list.Data, 1)
	assert.Equal(suite.T(), "7005830900000001", list.Data[0].CardNumber)
}

func (suite *TestSuiteStandard) TestTransactionsLoadParameterErrors() {
	p := createTestProvider(suite.T(), v1.ProviderEditable{Name: "Петрол Плюс"})
	fileTemplate := createTestTemplate(suite.T(), p.Data.ID.String(), defaultTemplateEditable())

	tests := []struct {
		name     string
		url      string
		status   int
		expected string
	}{
		{
			"Missing template_id",
			"http://example.com/v1/transactions/load-from-api",
			http.StatusBadRequest,
			"the template_id parameter must be set",
		},
		{
			"Invalid template_id",
			"http://example.com/v1/transactions/load-from-api?template_id=not-a-uuid",
			http.StatusBadRequest,
			"not a valid UUID",
		},
		{
			"Unknown template",
			"http://example.com/v1/transactions/load-from-api?template_id=4e743e94-6a4b-44d6-aba5-d77c82103fa7",
			http.StatusNotFound,
			"there is no Template matching your query",
		},
		{
			"File template has no remote source",
			fmt.Sprintf("http://example.com/v1/transactions/load-from-api?template_id=%s", fileTemplate.Data.ID),
			http.StatusBadRequest,
			"the template has no remote source",
		},
		{
			"File template cannot load from firebird either",
			fmt.Sprintf("http://example.com/v1/transactions/load-from-firebird?template_id=%s", fileTemplate.Data.ID),
			http.StatusBadRequest,
			"the template has no remote source",
		},
	}

	for _, tt := range tests {
		suite.T().Run(tt.name, func(t *testing.T) {
			r := test.Request(t, http.MethodPost, tt.url, "")
			test.AssertHTTPStatus(t, &r, tt.status)

			var response map[string]string
			test.DecodeResponse(t, &r, &response)
			assert.Contains(t, response["error"], tt.expected)
		})
	}
}

func (suite *TestSuiteStandard) TestTransactionsGetAndDelete() {
	server := transactionServer()
	defer server.Close()

	tr := suite.apiTemplate(server.URL)
	url := fmt.Sprintf("http://example.com/v1/transactions/load-from-api?template_id=%s&date_from=2024-03-01&date_to=2024-03-31", tr.Data.ID)
	r := test.Request(suite.T(), http.MethodPost, url, "")
	test.AssertHTTPStatus(suite.T(), &r, http.StatusCreated)

	r = test.Request(suite.T(), http.MethodGet, "http://example.com/v1/transactions", "")
	test.AssertHTTPStatus(suite.T(), &r, http.StatusOK)

	var list v1.TransactionListResponse
	test.DecodeResponse(suite.T(), &r, &list)
	require.Len(suite.T(), list.Data, 2)

	// Ordered by date, newest first
	assert.True(suite.T(), list.Data[0].Date.After(list.Data[1].Date))

	self := list.Data[0].Links.Self
	r = test.Request(suite.T(), http.MethodGet, self, "")
	test.AssertHTTPStatus(suite.T(), &r, http.StatusOK)

	r = test.Request(suite.T(), http.MethodDelete, self, "")
	test.AssertHTTPStatus(suite.T(), &r, http.StatusNoContent)

	r = test.Request(suite.T(), http.MethodGet, self, "")
	test.AssertHTTPStatus(suite.T(), &r, http.StatusNotFound)
}

func (suite *TestSuiteStandard) TestTransactionsDateFilter() {
	server := transactionServer()
	defer server.Close()

	tr := suite.apiTemplate(server.URL)
	url := fmt.Sprintf("http://example.com/v1/transactions/load-from-api?template_id=%s&date_from=2024-03-01&date_to=2024-03-31", tr.Data.ID)
	r := test.Request(suite.T(), http.MethodPost, url, "")
	test.AssertHTTPStatus(suite.T(), &r, http.StatusCreated)

	r = test.Request(suite.T(), http.MethodGet, "http://example.com/v1/transactions?date_from=2024-03-18", "")
	test.AssertHTTPStatus(suite.T(), &r, http.StatusOK)

	var list v1.TransactionListResponse
	test.DecodeResponse(suite.T(), &r, &list)
	assert.Len(suite.T(), list.Data, 1)
}

func (suite *TestSuiteStandard) TestTransactionsOptions() {
	r := test.Request(suite.T(), http.MethodOptions, "http://example.com/v1/transactions", "")
	assert.Equal(suite.T(), http.StatusNoContent, r.Code)
	assert.Equal(suite.T(), "OPTIONS, GET", r.Header().Get("allow"))

	r = test.Request(suite.T(), http.MethodOptions, "http://example.com/v1/transactions/load-from-api", "")
	assert.Equal(suite.T(), http.StatusNoContent, r.Code)
	assert.Equal(suite.T(), "OPTIONS, POST", r.Header().Get("allow"))
}
