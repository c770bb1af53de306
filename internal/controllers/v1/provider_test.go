package v1_test

import (
	"fmt"
	"net/http"
	"testing"

	v1 "github.com/gsmtrack/backend/internal/controllers/v1"
	"github.com/gsmtrack/backend/test"
	"github.com/stretchr/testify/assert"
)

func (suite *TestSuiteStandard) TestProvidersCreate() {
	p := createTestProvider(suite.T(), v1.ProviderEditable{
		Name:        "Петрол Плюс",
		Description: "Топливные карты Вездеход",
		IsActive:    true,
	})

	assert.Equal(suite.T(), "Петрол Плюс", p.Data.Name)
	assert.True(suite.T(), p.Data.IsActive)
	assert.Contains(suite.T(), p.Data.Links.Self, "/v1/providers/")
}

func (suite *TestSuiteStandard) TestProvidersCreateDuplicateName() {
	createTestProvider(suite.T(), v1.ProviderEditable{Name: "Петрол Плюс"})

	r := test.Request(suite.T(), http.MethodPost, "http://example.com/v1/providers", []v1.ProviderEditable{{Name: "Петрол Плюс"}})
	test.AssertHTTPStatus(suite.T(), &r, http.StatusBadRequest)

	var response v1.ProviderCreateResponse
	test.DecodeResponse(suite.T(), &r, &response)
	assert.NotNil(suite.T(), response.Data[0].Error)
}

func (suite *TestSuiteStandard) TestProvidersGetSingle() {
	p := createTestProvider(suite.T(), v1.ProviderEditable{Name: "Роснефть"})

	r := test.Request(suite.T(), http.MethodGet, p.Data.Links.Self, "")
	test.AssertHTTPStatus(suite.T(), &r, http.StatusOK)

	var response v1.ProviderResponse
	test.DecodeResponse(suite.T(), &r, &response)
	assert.Equal(suite.T(), "Роснефть", response.Data.Name)
}

func (suite *TestSuiteStandard) TestProvidersGetNotFound() {
	r := test.Request(suite.T(), http.MethodGet, "http://example.com/v1/providers/4e743e94-6a4b-44d6-aba5-d77c82103fa7", "")
	test.AssertHTTPStatus(suite.T(), &r, http.StatusNotFound)
}

func (suite *TestSuiteStandard) TestProvidersGetInvalidID() {
	r := test.Request(suite.T(), http.MethodGet, "http://example.com/v1/providers/definitely-not-a-uuid", "")
	test.AssertHTTPStatus(suite.T(), &r, http.StatusBadRequest)
}

func (suite *TestSuiteStandard) TestProvidersList() {
	createTestProvider(suite.T(), v1.ProviderEditable{Name: "Петрол Плюс", IsActive: true})
	createTestProvider(suite.T(), v1.ProviderEditable{Name: "Газпромнефть"})

	tests := []struct {
		name  string
		query string
		count int
	}{
		{"All providers", "", 2},
		{"Active only", "is_active=true", 1},
		{"By name", "name=Петрол", 1},
		{"Search", "search=нефть", 1},
		{"No match", "name=Лукойл", 0},
	}

	for _, tt := range tests {
		suite.T().Run(tt.name, func(t *testing.T) {
			r := test.Request(t, http.MethodGet, fmt.Sprintf("http://example.com/v1/providers?%s", tt.query), "")
			test.AssertHTTPStatus(t, &r, http.StatusOK)

			var response v1.ProviderListResponse
			test.DecodeResponse(t, &r, &response)
			assert.Len(t, response.Data, tt.count)
		})
	}
}

func (suite *TestSuiteStandard) TestProvidersPagination() {
	for i := 0; i < 5; i++ {
		createTestProvider(suite.T(), v1.ProviderEditable{Name: fmt.Sprintf("Провайдер %d", i)})
	}

	r := test.Request(suite.T(), http.MethodGet, "http://example.com/v1/providers?offset=2&limit=2", "")
	test.AssertHTTPStatus(suite.T(), &r, http.StatusOK)

	var response v1.ProviderListResponse
	test.DecodeResponse(suite.T(), &r, &response)

	assert.Len(suite.T(), response.Data, 2)
	assert.Equal(suite.T(), int64(5), response.Pagination.Total)
	assert.Equal(suite.T(), uint(2), response.Pagination.Offset)
}

func (suite *TestSuiteStandard) TestProvidersUpdate() {
	p := createTestProvider(suite.T(), v1.ProviderEditable{Name: "Петрол Плюс"})

	r := test.Request(suite.T(), http.MethodPatch, p.Data.Links.Self, map[string]any{
		"description": "Обновлено",
	})
	test.AssertHTTPStatus(suite.T(), &r, http.StatusOK)

	var response v1.ProviderResponse
	test.DecodeResponse(suite.T(), &r, &response)
	assert.Equal(suite.T(), "Обновлено", response.Data.Description)
	assert.Equal(suite.T(), "Петрол Плюс", response.Data.Name)
}

func (suite *TestSuiteStandard) TestProvidersDelete() {
	p := createTestProvider(suite.T(), v1.ProviderEditable{Name: "Петрол Плюс"})

	r := test.Request(suite.T(), http.MethodDelete, p.Data.Links.Self, "")
	test.AssertHTTPStatus(suite.T(), &r, http.StatusNoContent)

	r = test.Request(suite.T(), http.MethodGet, p.Data.Links.Self, "")
	test.AssertHTTPStatus(suite.T(), &r, http.StatusNotFound)
}

func (suite *TestSuiteStandard) TestProvidersOptions() {
	p := createTestProvider(suite.T(), v1.ProviderEditable{Name: "Петрол Плюс"})

	r := test.Request(suite.T(), http.MethodOptions, "http://example.com/v1/providers", "")
	assert.Equal(suite.T(), http.StatusNoContent, r.Code)
	assert.Equal(suite.T(), "OPTIONS, GET, POST", r.Header().Get("allow"))

	r = test.Request(suite.T(), http.MethodOptions, p.Data.Links.Self, "")
	assert.Equal(suite.T(), http.StatusNoContent, r.Code)
	assert.Equal(suite.T(), "OPTIONS, GET, PATCH, DELETE", r.Header().Get("allow"))
}
