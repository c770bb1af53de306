package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gsmtrack/backend/internal/httputil"
	"github.com/gsmtrack/backend/internal/models"
	"golang.org/x/exp/slices"
)

// RegisterFuelTypeRoutes registers the routes for fuel types with
// the RouterGroup that is passed.
func RegisterFuelTypeRoutes(r *gin.RouterGroup) {
	// Root group
	{
		r.OPTIONS("", OptionsFuelTypeList)
		r.GET("", GetFuelTypes)
		r.POST("", CreateFuelTypes)
	}

	// Fuel type with ID
	{
		r.OPTIONS("/:id", OptionsFuelTypeDetail)
		r.GET("/:id", GetFuelType)
		r.PATCH("/:id", UpdateFuelType)
		r.DELETE("/:id", DeleteFuelType)
	}
}

// @Summary		Allowed HTTP verbs
// @Description	Returns an empty response with the HTTP Header "allow" set to the allowed HTTP verbs
// @Tags			FuelTypes
// @Success		204
// @Router			/v1/fuel-types [options]
func OptionsFuelTypeList(c *gin.Context) {
	httputil.OptionsGetPost(c)
}

// @Summary		Allowed HTTP verbs
// @Description	Returns an empty response with the HTTP Header "allow" set to the allowed HTTP verbs
// @Tags			FuelTypes
// @Success		204
// @Failure		400	{object}	httpError
// @Failure		404	{object}	httpError
// @Failure		500	{object}	httpError
// @Param			id	path		URIID	true	"ignored, but needed: https://github.com/swaggo/swag/issues/1014"
// @Router			/v1/fuel-types/{id} [options]
func OptionsFuelTypeDetail(c *gin.Context) {
	var uri URIID
	err := c.ShouldBindUri(&uri)
	if err != nil {
		c.JSON(status(err), httpError{
			Error: err.Error(),
		})
		return
	}

	err = models.DB.First(&models.FuelType{}, uri.ID).Error
	if err != nil {
		c.JSON(status(err), httpError{
			Error: err.Error(),
		})
		return
	}

	httputil.OptionsGetPatchDelete(c)
}

// @Summary		Create fuel types
// @Description	Creates new fuel types
// @Tags			FuelTypes
// @Accept			json
// @Produce		json
// @Success		201			{object}	FuelTypeCreateResponse
// @Failure		400			{object}	FuelTypeCreateResponse
// @Failure		500			{object}	FuelTypeCreateResponse
// @Param			fuelTypes	body		[]FuelTypeEditable	true	"Fuel types"
// @Router			/v1/fuel-types [post]
func CreateFuelTypes(c *gin.Context) {
	var editables []FuelTypeEditable

	err := httputil.BindData(c, &editables)
	if err != nil {
		e := err.Error()
		c.JSON(status(err), FuelTypeCreateResponse{
			Error: &e,
		})
		return
	}

	// The final http status. Will be modified when errors occur
	status := http.StatusCreated
	r := FuelTypeCreateResponse{}

	for _, editable := range editables {
		fuelType := editable.model()

		err = models.DB.Create(&fuelType).Error
		if err != nil {
			status = r.appendError(err, status)
			continue
		}

		data := newFuelType(c, fuelType)
		r.Data = append(r.Data, FuelTypeResponse{Data: &data})
	}

	c.JSON(status, r)
}

// @Summary		Get fuel types
// @Description	Returns a list of fuel types
// @Tags			FuelTypes
// @Produce		json
// @Success		200	{object}	FuelTypeListResponse
// @Failure		400	{object}	FuelTypeListResponse
// @Failure		500	{object}	FuelTypeListResponse
// @Router			/v1/fuel-types [get]
// @Param			name		query	string	false	"Filter by name"
// @Param			description	query	string	false	"Filter by description"
// @Param			is_active	query	bool	false	"Is the fuel type active?"
// @Param			search		query	string	false	"Search for this text in name and description"
// @Param			offset		query	uint	false	"The offset of the first fuel type returned. Defaults to 0."
// @Param			limit		query	int		false	"Maximum number of fuel types to return. Defaults to 50."
func GetFuelTypes(c *gin.Context) {
	var filter FuelTypeQueryFilter
	_ = c.ShouldBind(&filter)

	queryFields, setFields := httputil.GetURLFields(c.Request.URL, filter)

	q := models.DB.
		Order("name ASC").
		Where(filter.model(), queryFields...)

	q = stringFilters(models.DB, q, setFields, filter.Name, filter.Description, filter.Search)

	q = q.Offset(int(filter.Offset))

	limit := 50
	if slices.Contains(setFields, "Limit") {
		limit = filter.Limit
	}
	q = q.Limit(limit)

	var fuelTypes []models.FuelType
	err := q.Find(&fuelTypes).Error
	if err != nil {
		s := err.Error()
		c.JSON(status(err), FuelTypeListResponse{
			Error: &s,
		})
		return
	}

	var count int64
	err = q.Limit(-1).Offset(-1).Count(&count).Error
	if err != nil {
		e := err.Error()
		c.JSON(status(err), FuelTypeListResponse{
			Error: &e,
		})
		return
	}

	data := make([]FuelType, 0)
	for _, fuelType := range fuelTypes {
		data = append(data, newFuelType(c, fuelType))
	}

	c.JSON(http.StatusOK, FuelTypeListResponse{
		Data: data,
		Pagination: &Pagination{
			Count:  len(data),
			Total:  count,
			Offset: filter.Offset,
			Limit:  limit,
		},
	})
}

// @Summary		Get fuel type
// @Description	Returns a specific fuel type
// @Tags			FuelTypes
// @Produce		json
// @Success		200	{object}	FuelTypeResponse
// @Failure		400	{object}	FuelTypeResponse
// @Failure		404	{object}	FuelTypeResponse
// @Failure		500	{object}	FuelTypeResponse
// @Param			id	path		URIID	true	"ignored, but needed: https://github.com/swaggo/swag/issues/1014"
// @Router			/v1/fuel-types/{id} [get]
func GetFuelType(c *gin.Context) {
	var uri URIID
	err := c.ShouldBindUri(&uri)
	if err != nil {
		s := err.Error()
		c.JSON(status(err), FuelTypeResponse{
			Error: &s,
		})
		return
	}

	var fuelType models.FuelType
	err = models.DB.First(&fuelType, uri.ID).Error
	if err != nil {
		s := err.Error()
		c.JSON(status(err), FuelTypeResponse{
			Error: &s,
		})
		return
	}

	data := newFuelType(c, fuelType)
	c.JSON(http.StatusOK, FuelTypeResponse{Data: &data})
}

// @Summary		Update fuel type
// @Description	Update an existing fuel type. Only values to be updated need to be specified.
// @Tags			FuelTypes
// @Accept			json
// @Produce		json
// @Success		200			{object}	FuelTypeResponse
// @Failure		400			{object}	FuelTypeResponse
// @Failure		404			{object}	FuelTypeResponse
// @Failure		500			{object}	FuelTypeResponse
// @Param			id			path		URIID				true	"ignored, but needed: https://github.com/swaggo/swag/issues/1014"
// @Param			fuelType	body		FuelTypeEditable	true	"Fuel type"
// @Router			/v1/fuel-types/{id} [patch]
func UpdateFuelType(c *gin.Context) {
	var uri URIID
	err := c.ShouldBindUri(&uri)
	if err != nil {
		s := err.Error()
		c.JSON(status(err), FuelTypeResponse{
			Error: &s,
		})
		return
	}

	var fuelType models.FuelType
	err = models.DB.First(&fuelType, uri.ID).Error
	if err != nil {
		s := err.Error()
		c.JSON(status(err), FuelTypeResponse{
			Error: &s,
		})
		return
	}

	updateFields, err := httputil.GetBodyFields(c, FuelTypeEditable{})
	if err != nil {
		s := err.Error()
		c.JSON(status(err), FuelTypeResponse{
			Error: &s,
		})
		return
	}

	var data FuelTypeEditable
	err = httputil.BindData(c, &data)
	if err != nil {
		s := err.Error()
		c.JSON(status(err), FuelTypeResponse{
			Error: &s,
		})
		return
	}

	err = models.DB.Model(&fuelType).Select("", updateFields...).Updates(data.model()).Error
	if err != nil {
		s := err.Error()
		c.JSON(status(err), FuelTypeResponse{
			Error: &s,
		})
		return
	}

	r := newFuelType(c, fuelType)
	c.JSON(http.StatusOK, FuelTypeResponse{Data: &r})
}

// @Summary		Delete fuel type
// @Description	Deletes a fuel type
// @Tags			FuelTypes
// @Success		204
// @Failure		400	{object}	httpError
// @Failure		404	{object}	httpError
// @Failure		500	{object}	httpError
// @Param			id	path		URIID	true	"ignored, but needed: https://github.com/swaggo/swag/issues/1014"
// @Router			/v1/fuel-types/{id} [delete]
func DeleteFuelType(c *gin.Context) {
	var uri URIID
	err := c.ShouldBindUri(&uri)
	if err != nil {
		c.JSON(status(err), httpError{
			Error: err.Error(),
		})
		return
	}

	var fuelType models.FuelType
	err = models.DB.First(&fuelType, uri.ID).Error
	if err != nil {
		c.JSON(status(err), httpError{
			Error: err.Error(),
		})
		return
	}

	err = models.DB.Delete(&fuelType).Error
	if err != nil {
		c.JSON(status(err), httpError{
			Error: err.Error(),
		})
		return
	}

	c.Status(http.StatusNoContent)
}
