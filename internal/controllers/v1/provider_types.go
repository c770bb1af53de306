package v1

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/gsmtrack/backend/internal/models"
)

// ProviderEditable represents all user configurable parameters
type ProviderEditable struct {
	Name        string `json:"name" example:"Петрол Плюс" default:""`                    // Name of the provider
	Description string `json:"description" example:"Топливные карты Вездеход" default:""` // Description of the provider
	IsActive    bool   `json:"is_active" example:"true" default:"false"`                 // Is the provider active?
}

func (editable ProviderEditable) model() models.Provider {
	return models.Provider{
		Name:        editable.Name,
		Description: editable.Description,
		IsActive:    editable.IsActive,
	}
}

type ProviderLinks struct {
	Self      string `json:"self" example:"https://example.com/api/v1/providers/d1b7e624-71d5-455e-b868-9bbfc83e3f79"`                // The provider itself
	Templates string `json:"templates" example:"https://example.com/api/v1/templates?provider=d1b7e624-71d5-455e-b868-9bbfc83e3f79"` // Import templates for this provider
}

type Provider struct {
	models.DefaultModel
	ProviderEditable
	Links ProviderLinks `json:"links"`
}

func newProvider(c *gin.Context, model models.Provider) Provider {
	url := c.GetString(string(models.DBContextURL))

	return Provider{
		DefaultModel: model.DefaultModel,
		ProviderEditable: ProviderEditable{
			Name:        model.Name,
			Description: model.Description,
			IsActive:    model.IsActive,
		},
		Links: ProviderLinks{
			Self:      fmt.Sprintf("%s/v1/providers/%s", url, model.ID),
			Templates: fmt.Sprintf("%s/v1/templates?provider=%s", url, model.ID),
		},
	}
}

type ProviderListResponse struct {
	Data       []Provider  `json:"data"`                                                          // List of providers
	Error      *string     `json:"error" example:"the specified resource ID is not a valid UUID"` // The error, if any occurred
	Pagination *Pagination `json:"pagination"`                                                    // Pagination information
}

type ProviderCreateResponse struct {
	Data  []ProviderResponse `json:"data"`                                                          // List of the created providers or their respective error
	Error *string            `json:"error" example:"the specified resource ID is not a valid UUID"` // The error, if any occurred
}

func (r *ProviderCreateResponse) appendError(err error, currentStatus int) int {
	s := err.Error()
	r.Data = append(r.Data, ProviderResponse{Error: &s})

	// The final status code is the highest HTTP status code number
	newStatus := status(err)
	if newStatus > currentStatus {
		return newStatus
	}

	return currentStatus
}

type ProviderResponse struct {
	Data  *Provider `json:"data"`                                                          // Data for the provider
	Error *string   `json:"error" example:"the specified resource ID is not a valid UUID"` // The error, if any occurred
}

type ProviderQueryFilter struct {
	Name        string `form:"name" filterField:"false"`        // By name
	Description string `form:"description" filterField:"false"` // By description
	IsActive    bool   `form:"is_active"`                       // Is the provider active?
	Search      string `form:"search" filterField:"false"`      // By string in name or description
	Offset      uint   `form:"offset" filterField:"false"`      // The offset of the first provider returned. Defaults to 0.
	Limit       int    `form:"limit" filterField:"false"`      // Maximum number of providers to return. Defaults to 50.
}

func (f ProviderQueryFilter) model() models.Provider {
	return models.Provider{
		IsActive: f.IsActive,
	}
}
