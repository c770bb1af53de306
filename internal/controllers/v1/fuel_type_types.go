package v1

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/gsmtrack/backend/internal/models"
)

// FuelTypeEditable represents all user configurable parameters
type FuelTypeEditable struct {
	Name        string `json:"name" example:"ДТ" default:""`                         // Normalized label of the fuel type
	Description string `json:"description" example:"Дизельное топливо" default:""` // Full name of the fuel type
	IsActive    bool   `json:"is_active" example:"true" default:"false"`             // Is the fuel type active?
}

func (editable FuelTypeEditable) model() models.FuelType {
	return models.FuelType{
		Name:        editable.Name,
		Description: editable.Description,
		IsActive:    editable.IsActive,
	}
}

type FuelTypeLinks struct {
	Self string `json:"self" example:"https://example.com/api/v1/fuel-types/65392deb-5e92-4268-b114-297faad6cdce"` // The fuel type itself
}

type FuelType struct {
	models.DefaultModel
	FuelTypeEditable
	Links FuelTypeLinks `json:"links"`
}

func newFuelType(c *gin.Context, model models.FuelType) FuelType {
	url := c.GetString(string(models.DBContextURL))

	return FuelType{
		DefaultModel: model.DefaultModel,
		FuelTypeEditable: FuelTypeEditable{
			Name:        model.Name,
			Description: model.Description,
			IsActive:    model.IsActive,
		},
		Links: FuelTypeLinks{
			Self: fmt.Sprintf("%s/v1/fuel-types/%s", url, model.ID),
		},
	}
}

type FuelTypeListResponse struct {
	Data       []FuelType  `json:"data"`                                                          // List of fuel types
	Error      *string     `json:"error" example:"the specified resource ID is not a valid UUID"` // The error, if any occurred
	Pagination *Pagination `json:"pagination"`                                                    // Pagination information
}

type FuelTypeCreateResponse struct {
	Data  []FuelTypeResponse `json:"data"`                                                          // List of the created fuel types or their respective error
	Error *string            `json:"error" example:"the specified resource ID is not a valid UUID"` // The error, if any occurred
}

func (r *FuelTypeCreateResponse) appendError(err error, currentStatus int) int {
	s := err.Error()
	r.Data = append(r.Data, FuelTypeResponse{Error: &s})

	newStatus := status(err)
	if newStatus > currentStatus {
		return newStatus
	}

	return currentStatus
}

type FuelTypeResponse struct {
	Data  *FuelType `json:"data"`                                                          // Data for the fuel type
	Error *string   `json:"error" example:"the specified resource ID is not a valid UUID"` // The error, if any occurred
}

type FuelTypeQueryFilter struct {
	Name        string `form:"name" filterField:"false"`        // By name
	Description string `form:"description" filterField:"false"` // By description
	IsActive    bool   `form:"is_active"`                       // Is the fuel type active?
	Search      string `form:"search" filterField:"false"`      // By string in name or description
	Offset      uint   `form:"offset" filterField:"false"`      // The offset of the first fuel type returned. Defaults to 0.
	Limit       int    `form:"limit" filterField:"false"`       // Maximum number of fuel types to return. Defaults to 50.
}

func (f FuelTypeQueryFilter) model() models.FuelType {
	return models.FuelType{
		IsActive: f.IsActive,
	}
}
