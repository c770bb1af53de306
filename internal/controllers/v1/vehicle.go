package v1

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gsmtrack/backend/internal/httputil"
	"github.com/gsmtrack/backend/internal/models"
	"golang.org/x/exp/slices"
)

// RegisterVehicleRoutes registers the routes for vehicles with
// the RouterGroup that is passed.
func RegisterVehicleRoutes(r *gin.RouterGroup) {
	// Root group
	{
		r.OPTIONS("", OptionsVehicleList)
		r.GET("", GetVehicles)
		r.POST("", CreateVehicles)
	}

	// Vehicle with ID
	{
		r.OPTIONS("/:id", OptionsVehicleDetail)
		r.GET("/:id", GetVehicle)
		r.PATCH("/:id", UpdateVehicle)
		r.DELETE("/:id", DeleteVehicle)
	}
}

// @Summary		Allowed HTTP verbs
// @Description	Returns an empty response with the HTTP Header "allow" set to the allowed HTTP verbs
// @Tags			Vehicles
// @Success		204
// @Router			/v1/vehicles [options]
func OptionsVehicleList(c *gin.Context) {
	httputil.OptionsGetPost(c)
}

// @Summary		Allowed HTTP verbs
// @Description	Returns an empty response with the HTTP Header "allow" set to the allowed HTTP verbs
// @Tags			Vehicles
// @Success		204
// @Failure		400	{object}	httpError
// @Failure		404	{object}	httpError
// @Failure		500	{object}	httpError
// @Param			id	path		URIID	true	"ignored, but needed: https://github.com/swaggo/swag/issues/1014"
// @Router			/v1/vehicles/{id} [options]
func OptionsVehicleDetail(c *gin.Context) {
	var uri URIID
	err := c.ShouldBindUri(&uri)
	if err != nil {
		c.JSON(status(err), httpError{
			Error: err.Error(),
		})
		return
	}

	err = models.DB.First(&models.Vehicle{}, uri.ID).Error
	if err != nil {
		c.JSON(status(err), httpError{
			Error: err.Error(),
		})
		return
	}

	httputil.OptionsGetPatchDelete(c)
}

// @Summary		Create vehicles
// @Description	Creates new vehicles
// @Tags			Vehicles
// @Accept			json
// @Produce		json
// @Success		201			{object}	VehicleCreateResponse
// @Failure		400			{object}	VehicleCreateResponse
// @Failure		500			{object}	VehicleCreateResponse
// @Param			vehicles	body		[]VehicleEditable	true	"Vehicles"
// @Router			/v1/vehicles [post]
func CreateVehicles(c *gin.Context) {
	var editables []VehicleEditable

	err := httputil.BindData(c, &editables)
	if err != nil {
		e := err.Error()
		c.JSON(status(err), VehicleCreateResponse{
			Error: &e,
		})
		return
	}

	// The final http status. Will be modified when errors occur
	status := http.StatusCreated
	r := VehicleCreateResponse{}

	for _, editable := range editables {
		vehicle := editable.model()

		err = models.DB.Create(&vehicle).Error
		if err != nil {
			status = r.appendError(err, status)
			continue
		}

		data := newVehicle(c, vehicle)
		r.Data = append(r.Data, VehicleResponse{Data: &data})
	}

	c.JSON(status, r)
}

// @Summary		Get vehicles
// @Description	Returns a list of vehicles
// @Tags			Vehicles
// @Produce		json
// @Success		200	{object}	VehicleListResponse
// @Failure		400	{object}	VehicleListResponse
// @Failure		500	{object}	VehicleListResponse
// @Router			/v1/vehicles [get]
// @Param			number		query	string	false	"Filter by registration number"
// @Param			name		query	string	false	"Filter by name"
// @Param			card_number	query	string	false	"Filter by assigned fuel card"
// @Param			fuel_type	query	string	false	"Filter by fuel type ID"
// @Param			is_active	query	bool	false	"Is the vehicle active?"
// @Param			search		query	string	false	"Search for this text in number and name"
// @Param			offset		query	uint	false	"The offset of the first vehicle returned. Defaults to 0."
// @Param			limit		query	int		false	"Maximum number of vehicles to return. Defaults to 50."
func GetVehicles(c *gin.Context) {
	var filter VehicleQueryFilter

	if err := c.ShouldBind(&filter); err != nil {
		s := httputil.ErrInvalidQuery.Error()
		c.JSON(http.StatusBadRequest, VehicleListResponse{
			Error: &s,
		})
		return
	}

	queryFields, setFields := httputil.GetURLFields(c.Request.URL, filter)

	q := models.DB.
		Order("number ASC").
		Where(filter.model(), queryFields...)

	// Vehicles search by number and name instead of name and description
	if filter.Number != "" {
		q = q.Where("number LIKE ?", fmt.Sprintf("%%%s%%", filter.Number))
	} else if slices.Contains(setFields, "Number") {
		q = q.Where("number = ''")
	}

	if filter.Name != "" {
		q = q.Where("name LIKE ?", fmt.Sprintf("%%%s%%", filter.Name))
	} else if slices.Contains(setFields, "Name") {
		q = q.Where("name = ''")
	}

	if filter.Search != "" {
		q = q.Where(
			models.DB.Where("number LIKE ?", fmt.Sprintf("%%%s%%", filter.Search)).Or(
				models.DB.Where("name LIKE ?", fmt.Sprintf("%%%s%%", filter.Search)),
			),
		)
	}

	q = q.Offset(int(filter.Offset))

	limit := 50
	if slices.Contains(setFields, "Limit") {
		limit = filter.Limit
	}
	q = q.Limit(limit)

	var vehicles []models.Vehicle
	err := q.Find(&vehicles).Error
	if err != nil {
		s := err.Error()
		c.JSON(status(err), VehicleListResponse{
			Error: &s,
		})
		return
	}

	var count int64
	err = q.Limit(-1).Offset(-1).Count(&count).Error
	if err != nil {
		e := err.Error()
		c.JSON(status(err), VehicleListResponse{
			Error: &e,
		})
		return
	}

	data := make([]Vehicle, 0)
	for _, vehicle := range vehicles {
		data = append(data, newVehicle(c, vehicle))
	}

	c.JSON(http.StatusOK, VehicleListResponse{
		Data: data,
		Pagination: &Pagination{
			Count:  len(data),
			Total:  count,
			Offset: filter.Offset,
			Limit:  limit,
		},
	})
}

// @Summary		Get vehicle
// @Description	Returns a specific vehicle
// @Tags			Vehicles
// @Produce		json
// @Success		200	{object}	VehicleResponse
// @Failure		400	{object}	VehicleResponse
// @Failure		404	{object}	VehicleResponse
// @Failure		500	{object}	VehicleResponse
// @Param			id	path		URIID	true	"ignored, but needed: https://github.com/swaggo/swag/issues/1014"
// @Router			/v1/vehicles/{id} [get]
func GetVehicle(c *gin.Context) {
	var uri URIID
	err := c.ShouldBindUri(&uri)
	if err != nil {
		s := err.Error()
		c.JSON(status(err), VehicleResponse{
			Error: &s,
		})
		return
	}

	var vehicle models.Vehicle
	err = models.DB.First(&vehicle, uri.ID).Error
	if err != nil {
		s := err.Error()
		c.JSON(status(err), VehicleResponse{
			Error: &s,
		})
		return
	}

	data := newVehicle(c, vehicle)
	c.JSON(http.StatusOK, VehicleResponse{Data: &data})
}

// @Summary		Update vehicle
// @Description	Update an existing vehicle. Only values to be updated need to be specified.
// @Tags			Vehicles
// @Accept			json
// @Produce		json
// @Success		200		{object}	VehicleResponse
// @Failure		400		{object}	VehicleResponse
// @Failure		404		{object}	VehicleResponse
// @Failure		500		{object}	VehicleResponse
// @Param			id		path		URIID			true	"ignored, but needed: https://github.com/swaggo/swag/issues/1014"
// @Param			vehicle	body		VehicleEditable	true	"Vehicle"
// @Router			/v1/vehicles/{id} [patch]
func UpdateVehicle(c *gin.Context) {
	var uri URIID
	err := c.ShouldBindUri(&uri)
	if err != nil {
		s := err.Error()
		c.JSON(status(err), VehicleResponse{
			Error: &s,
		})
		return
	}

	var vehicle models.Vehicle
	err = models.DB.First(&vehicle, uri.ID).Error
	if err != nil {
		s := err.Error()
		c.JSON(status(err), VehicleResponse{
			Error: &s,
		})
		return
	}

	updateFields, err := httputil.GetBodyFields(c, VehicleEditable{})
	if err != nil {
		s := err.Error()
		c.JSON(status(err), VehicleResponse{
			Error: &s,
		})
		return
	}

	var data VehicleEditable
	err = httputil.BindData(c, &data)
	if err != nil {
		s := err.Error()
		c.JSON(status(err), VehicleResponse{
			Error: &s,
		})
		return
	}

	err = models.DB.Model(&vehicle).Select("", updateFields...).Updates(data.model()).Error
	if err != nil {
		s := err.Error()
		c.JSON(status(err), VehicleResponse{
			Error: &s,
		})
		return
	}

	r := newVehicle(c, vehicle)
	c.JSON(http.StatusOK, VehicleResponse{Data: &r})
}

// @Summary		Delete vehicle
// @Description	Deletes a vehicle
// @Tags			Vehicles
// @Success		204
// @Failure		400	{object}	httpError
// @Failure		404	{object}	httpError
// @Failure		500	{object}	httpError
// @Param			id	path		URIID	true	"ignored, but needed: https://github.com/swaggo/swag/issues/1014"
// @Router			/v1/vehicles/{id} [delete]
func DeleteVehicle(c *gin.Context) {
	var uri URIID
	err := c.ShouldBindUri(&uri)
	if err != nil {
		c.JSON(status(err), httpError{
			Error: err.Error(),
		})
		return
	}

	var vehicle models.Vehicle
	err = models.DB.First(&vehicle, uri.ID).Error
	if err != nil {
		c.JSON(status(err), httpError{
			Error: err.Error(),
		})
		return
	}

	err = models.DB.Delete(&vehicle).Error
	if err != nil {
		c.JSON(status(err), httpError{
			Error: err.Error(),
		})
		return
	}

	c.Status(http.StatusNoContent)
}
