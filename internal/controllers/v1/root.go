package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gsmtrack/backend/internal/httputil"
	"github.com/gsmtrack/backend/internal/models"
)

type Response struct {
	Links Links `json:"links"` // Links for the v1 API
}

type Links struct {
	Providers    string `json:"providers" example:"https://example.com/api/v1/providers"`       // URL of the provider list endpoint
	Vehicles     string `json:"vehicles" example:"https://example.com/api/v1/vehicles"`         // URL of the vehicle list endpoint
	FuelTypes    string `json:"fuelTypes" example:"https://example.com/api/v1/fuel-types"`      // URL of the fuel type list endpoint
	Templates    string `json:"templates" example:"https://example.com/api/v1/templates"`       // URL of the import template list endpoint
	Transactions string `json:"transactions" example:"https://example.com/api/v1/transactions"` // URL of the transaction list endpoint
}

// Get returns the link list for v1
//
//	@Summary		v1 API
//	@Description	Returns general information about the v1 API
//	@Tags			v1
//	@Success		200	{object}	Response
//	@Router			/v1 [get]
func Get(c *gin.Context) {
	url := c.GetString(string(models.DBContextURL))

	c.JSON(http.StatusOK, Response{
		Links: Links{
			Providers:    url + "/v1/providers",
			Vehicles:     url + "/v1/vehicles",
			FuelTypes:    url + "/v1/fuel-types",
			Templates:    url + "/v1/templates",
			Transactions: url + "/v1/transactions",
		},
	})
}

// Options returns the allowed HTTP methods
//
//	@Summary		Allowed HTTP verbs
//	@Description	Returns an empty response with the HTTP Header "allow" set to the allowed HTTP verbs
//	@Tags			v1
//	@Success		204
//	@Router			/v1 [options]
func Options(c *gin.Context) {
	httputil.OptionsGet(c)
}
