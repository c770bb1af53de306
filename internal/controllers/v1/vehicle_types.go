package v1

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gsmtrack/backend/internal/models"
	ez_uuid "github.com/gsmtrack/backend/internal/uuid"
)

// VehicleEditable represents all user configurable parameters
type VehicleEditable struct {
	Number     string    `json:"number" example:"А123БВ 77" default:""`                          // Registration number of the vehicle
	Name       string    `json:"name" example:"КамАЗ 43118" default:""`                          // Display name of the vehicle
	CardNumber string    `json:"card_number" example:"7005830900000001" default:""`             // Fuel card assigned to the vehicle
	FuelTypeID uuid.UUID `json:"fuel_type_id" example:"65392deb-5e92-4268-b114-297faad6cdce"`   // ID of the fuel type the vehicle uses
	IsActive   bool      `json:"is_active" example:"true" default:"false"`                      // Is the vehicle active?
}

func (editable VehicleEditable) model() models.Vehicle {
	vehicle := models.Vehicle{
		Number:     editable.Number,
		Name:       editable.Name,
		CardNumber: editable.CardNumber,
		IsActive:   editable.IsActive,
	}

	if editable.FuelTypeID != uuid.Nil {
		id := editable.FuelTypeID
		vehicle.FuelTypeID = &id
	}

	return vehicle
}

type VehicleLinks struct {
	Self         string `json:"self" example:"https://example.com/api/v1/vehicles/7e575fc4-354d-4787-a6d6-60dde2b68bd6"`                       // The vehicle itself
	Transactions string `json:"transactions" example:"https://example.com/api/v1/transactions?vehicle=7e575fc4-354d-4787-a6d6-60dde2b68bd6"` // Transactions for this vehicle
}

type Vehicle struct {
	models.DefaultModel
	VehicleEditable
	Links VehicleLinks `json:"links"`
}

func newVehicle(c *gin.Context, model models.Vehicle) Vehicle {
	url := c.GetString(string(models.DBContextURL))

	vehicle := Vehicle{
		DefaultModel: model.DefaultModel,
		VehicleEditable: VehicleEditable{
			Number:     model.Number,
			Name:       model.Name,
			CardNumber: model.CardNumber,
			IsActive:   model.IsActive,
		},
		Links: VehicleLinks{
			Self:         fmt.Sprintf("%s/v1/vehicles/%s", url, model.ID),
			Transactions: fmt.Sprintf("%s/v1/transactions?vehicle=%s", url, model.ID),
		},
	}

	if model.FuelTypeID != nil {
		vehicle.FuelTypeID = *model.FuelTypeID
	}

	return vehicle
}

type VehicleListResponse struct {
	Data       []Vehicle   `json:"data"`                                                          // List of vehicles
	Error      *string     `json:"error" example:"the specified resource ID is not a valid UUID"` // The error, if any occurred
	Pagination *Pagination `json:"pagination"`                                                    // Pagination information
}

type VehicleCreateResponse struct {
	Data  []VehicleResponse `json:"data"`                                                          // List of the created vehicles or their respective error
	Error *string           `json:"error" example:"the specified resource ID is not a valid UUID"` // The error, if any occurred
}

func (r *VehicleCreateResponse) appendError(err error, currentStatus int) int {
	s := err.Error()
	r.Data = append(r.Data, VehicleResponse{Error: &s})

	newStatus := status(err)
	if newStatus > currentStatus {
		return newStatus
	}

	return currentStatus
}

type VehicleResponse struct {
	Data  *Vehicle `json:"data"`                                                          // Data for the vehicle
	Error *string  `json:"error" example:"the specified resource ID is not a valid UUID"` // The error, if any occurred
}

type VehicleQueryFilter struct {
	Number     string       `form:"number" filterField:"false"` // By registration number
	Name       string       `form:"name" filterField:"false"`   // By name
	CardNumber string       `form:"card_number"`                // By assigned fuel card
	FuelTypeID ez_uuid.UUID `form:"fuel_type"`                  // By ID of the fuel type
	IsActive   bool         `form:"is_active"`                  // Is the vehicle active?
	Search     string       `form:"search" filterField:"false"` // By string in number or name
	Offset     uint         `form:"offset" filterField:"false"` // The offset of the first vehicle returned. Defaults to 0.
	Limit      int          `form:"limit" filterField:"false"`  // Maximum number of vehicles to return. Defaults to 50.
}

func (f VehicleQueryFilter) model() models.Vehicle {
	vehicle := models.Vehicle{
		CardNumber: f.CardNumber,
		IsActive:   f.IsActive,
	}

	if f.FuelTypeID.UUID != uuid.Nil {
		id := f.FuelTypeID.UUID
		vehicle.FuelTypeID = &id
	}

	return vehicle
}
