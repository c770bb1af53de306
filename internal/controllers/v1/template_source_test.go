package v1_test

import (
	"bytes"
	"mime/multipart"
	"net/http"
	"net/http/httptest"

	v1 "github.com/gsmtrack/backend/internal/controllers/v1"
	"github.com/gsmtrack/backend/internal/importer"
	"github.com/gsmtrack/backend/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// multipartFile builds a multipart body with a single "file" part.
func multipartFile(suite *TestSuiteStandard, name string, content []byte) (*bytes.Buffer, map[string]string) {
	body := new(bytes.Buffer)
	mw := multipart.NewWriter(body)

	part, err := mw.CreateFormFile("file", name)
	require.NoError(suite.T(), err)

	_, err = part.Write(content)
	require.NoError(suite.T(), err)
	require.NoError(suite.T(), mw.Close())

	return body, map[string]string{"Content-Type": mw.FormDataContentType()}
}

func (suite *TestSuiteStandard) TestTemplatesAnalyze() {
	csv := "Дата;Номер карты;Количество;Вид топлива\n17.03.2024 08:31;7005830900000001;45,50;ДТ\n"
	body, headers := multipartFile(suite, "transactions.csv", []byte(csv))

	r := test.Request(suite.T(), http.MethodPost, "http://example.com/v1/templates/analyze", body, headers)
	test.AssertHTTPStatus(suite.T(), &r, http.StatusOK)

	var analysis importer.Analysis
	test.DecodeResponse(suite.T(), &r, &analysis)

	assert.Equal(suite.T(), []string{"Дата", "Номер карты", "Количество", "Вид топлива"}, analysis.Columns)
	assert.Equal(suite.T(), 0, analysis.HeaderRow)
	assert.Equal(suite.T(), 1, analysis.DataStartRow)
	assert.Equal(suite.T(), "Дата", analysis.FieldMapping["date"])
	assert.Equal(suite.T(), "Номер карты", analysis.FieldMapping["card"])
	assert.Equal(suite.T(), "Количество", analysis.FieldMapping["quantity"])
	assert.Equal(suite.T(), "Вид топлива", analysis.FieldMapping["fuel"])
}

func (suite *TestSuiteStandard) TestTemplatesAnalyzeWrongSuffix() {
	body, headers := multipartFile(suite, "transactions.pdf", []byte("%PDF-1.4"))

	r := test.Request(suite.T(), http.MethodPost, "http://example.com/v1/templates/analyze", body, headers)
	test.AssertHTTPStatus(suite.T(), &r, http.StatusBadRequest)

	var response map[string]string
	test.DecodeResponse(suite.T(), &r, &response)
	assert.Equal(suite.T(), "this endpoint only supports .xlsx, .xls and .csv files", response["error"])
}

func (suite *TestSuiteStandard) TestTemplatesAnalyzeNoFile() {
	r := test.Request(suite.T(), http.MethodPost, "http://example.com/v1/templates/analyze", "")
	test.AssertHTTPStatus(suite.T(), &r, http.StatusBadRequest)
}

// Connection test failures are reported in-band with HTTP 200 so the editor
// can show the message without special-casing error responses.
func (suite *TestSuiteStandard) TestFirebirdConnectionTestFails() {
	r := test.Request(suite.T(), http.MethodPost, "http://example.com/v1/templates/test-firebird-connection", map[string]any{
		"host": "localhost",
	})
	test.AssertHTTPStatus(suite.T(), &r, http.StatusOK)

	var response v1.ConnectionTestResponse
	test.DecodeResponse(suite.T(), &r, &response)

	assert.False(suite.T(), response.Success)
	assert.NotEmpty(suite.T(), response.Message)
	assert.Empty(suite.T(), response.Tables)
}

func (suite *TestSuiteStandard) TestFirebirdConnectionTestUnknownTemplate() {
	r := test.Request(suite.T(), http.MethodPost, "http://example.com/v1/templates/4e743e94-6a4b-44d6-aba5-d77c82103fa7/test-firebird-connection", "")
	test.AssertHTTPStatus(suite.T(), &r, http.StatusNotFound)
}

func (suite *TestSuiteStandard) TestFirebirdTableColumnsWithoutDatabase() {
	r := test.Request(suite.T(), http.MethodPost, "http://example.com/v1/templates/firebird-table-columns", map[string]any{
		"table_name":          "OPERATIONS",
		"connection_settings": map[string]any{"host": "localhost"},
	})
	test.AssertHTTPStatus(suite.T(), &r, http.StatusBadRequest)

	var response v1.ColumnsResponse
	test.DecodeResponse(suite.T(), &r, &response)

	assert.Empty(suite.T(), response.Columns)
	require.NotNil(suite.T(), response.Error)
}

func (suite *TestSuiteStandard) TestAPIConnectionInvalidType() {
	r := test.Request(suite.T(), http.MethodPost, "http://example.com/v1/templates/test-api-connection?connection_type=carrier-pigeon", "{}")
	test.AssertHTTPStatus(suite.T(), &r, http.StatusBadRequest)
}

func (suite *TestSuiteStandard) TestAPIConnectionTest() {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Contains(suite.T(), r.Header.Get("Authorization"), "Bearer ")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[{"cardNum": "7005830900000001", "amount": 45.5}]`))
	}))
	defer server.Close()

	r := test.Request(suite.T(), http.MethodPost, "http://example.com/v1/templates/test-api-connection", map[string]any{
		"provider_type": "petrolplus",
		"base_url":      server.URL,
		"api_token":     "token",
	})
	test.AssertHTTPStatus(suite.T(), &r, http.StatusOK)

	var response v1.ConnectionTestResponse
	test.DecodeResponse(suite.T(), &r, &response)

	assert.True(suite.T(), response.Success)
	assert.Equal(suite.T(), "Подключение установлено", response.Message)
}

func (suite *TestSuiteStandard) TestAPIFields() {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[{"cardNum": "7005830900000001", "fuel": {"name": "ДТ"}}]`))
	}))
	defer server.Close()

	r := test.Request(suite.T(), http.MethodPost, "http://example.com/v1/templates/api-fields", map[string]any{
		"provider_type": "petrolplus",
		"base_url":      server.URL,
		"api_token":     "token",
	})
	test.AssertHTTPStatus(suite.T(), &r, http.StatusOK)

	var response v1.FieldsResponse
	test.DecodeResponse(suite.T(), &r, &response)

	assert.Equal(suite.T(), response.Count, len(response.Fields))
	assert.Contains(suite.T(), response.Fields, "cardNum")
	assert.Contains(suite.T(), response.Fields, "fuel.name")
}

func (suite *TestSuiteStandard) TestAPIFieldsErrorInBand() {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error": "недействительный токен"}`, http.StatusUnauthorized)
	}))
	defer server.Close()

	r := test.Request(suite.T(), http.MethodPost, "http://example.com/v1/templates/api-fields", map[string]any{
		"provider_type": "petrolplus",
		"base_url":      server.URL,
		"api_token":     "wrong",
	})
	test.AssertHTTPStatus(suite.T(), &r, http.StatusOK)

	var response v1.FieldsResponse
	test.DecodeResponse(suite.T(), &r, &response)

	assert.Empty(suite.T(), response.Fields)
	require.NotNil(suite.T(), response.Error)
	assert.Contains(suite.T(), *response.Error, "недействительный токен")
}

func (suite *TestSuiteStandard) TestTemplateSourceOptions() {
	paths := []string{
		"http://example.com/v1/templates/analyze",
		"http://example.com/v1/templates/test-firebird-connection",
		"http://example.com/v1/templates/firebird-table-columns",
		"http://example.com/v1/templates/firebird-query-columns",
		"http://example.com/v1/templates/test-api-connection",
		"http://example.com/v1/templates/api-fields",
	}

	for _, path := range paths {
		r := test.Request(suite.T(), http.MethodOptions, path, "")
		assert.Equal(suite.T(), http.StatusNoContent, r.Code, path)
		assert.Equal(suite.T(), "OPTIONS, POST", r.Header().Get("allow"), path)
	}
}
