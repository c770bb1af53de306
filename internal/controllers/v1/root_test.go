package v1_test

import (
	"net/http"

	v1 "github.com/gsmtrack/backend/internal/controllers/v1"
	"github.com/gsmtrack/backend/test"
	"github.com/stretchr/testify/assert"
)

func (suite *TestSuiteStandard) TestGetV1() {
	r := test.Request(suite.T(), http.MethodGet, "http://example.com/v1", "")
	test.AssertHTTPStatus(suite.T(), &r, http.StatusOK)

	var response v1.Response
	test.DecodeResponse(suite.T(), &r, &response)

	assert.Equal(suite.T(), "http://example.com/v1/providers", response.Links.Providers)
	assert.Equal(suite.T(), "http://example.com/v1/templates", response.Links.Templates)
	assert.Equal(suite.T(), "http://example.com/v1/transactions", response.Links.Transactions)
}

func (suite *TestSuiteStandard) TestOptionsV1() {
	r := test.Request(suite.T(), http.MethodOptions, "http://example.com/v1", "")
	assert.Equal(suite.T(), http.StatusNoContent, r.Code)
	assert.Equal(suite.T(), "OPTIONS, GET", r.Header().Get("allow"))
}
