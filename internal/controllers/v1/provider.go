package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gsmtrack/backend/internal/httputil"
	"github.com/gsmtrack/backend/internal/models"
	"golang.org/x/exp/slices"
)

// RegisterProviderRoutes registers the routes for providers with
// the RouterGroup that is passed.
func RegisterProviderRoutes(r *gin.RouterGroup) {
	// Root group
	{
		r.OPTIONS("", OptionsProviderList)
		r.GET("", GetProviders)
		r.POST("", CreateProviders)
	}

	// Provider with ID
	{
		r.OPTIONS("/:id", OptionsProviderDetail)
		r.GET("/:id", GetProvider)
		r.PATCH("/:id", UpdateProvider)
		r.DELETE("/:id", DeleteProvider)
	}

	// Templates are created nested under their provider
	{
		r.OPTIONS("/:id/templates", OptionsProviderTemplates)
		r.POST("/:id/templates", CreateTemplate)
	}
}

// @Summary		Allowed HTTP verbs
// @Description	Returns an empty response with the HTTP Header "allow" set to the allowed HTTP verbs
// @Tags			Providers
// @Success		204
// @Router			/v1/providers [options]
func OptionsProviderList(c *gin.Context) {
	httputil.OptionsGetPost(c)
}

// @Summary		Allowed HTTP verbs
// @Description	Returns an empty response with the HTTP Header "allow" set to the allowed HTTP verbs
// @Tags			Providers
// @Success		204
// @Failure		400	{object}	httpError
// @Failure		404	{object}	httpError
// @Failure		500	{object}	httpError
// @Param			id	path		URIID	true	"ignored, but needed: https://github.com/swaggo/swag/issues/1014"
// @Router			/v1/providers/{id} [options]
func OptionsProviderDetail(c *gin.Context) {
	var uri URIID
	err := c.ShouldBindUri(&uri)
	if err != nil {
		c.JSON(status(err), httpError{
			Error: err.Error(),
		})
		return
	}

	err = models.DB.First(&models.Provider{}, uri.ID).Error
	if err != nil {
		c.JSON(status(err), httpError{
			Error: err.Error(),
		})
		return
	}

	httputil.OptionsGetPatchDelete(c)
}

// @Summary		Create providers
// @Description	Creates new providers
// @Tags			Providers
// @Accept			json
// @Produce		json
// @Success		201			{object}	ProviderCreateResponse
// @Failure		400			{object}	ProviderCreateResponse
// @Failure		500			{object}	ProviderCreateResponse
// @Param			providers	body		[]ProviderEditable	true	"Providers"
// @Router			/v1/providers [post]
func CreateProviders(c *gin.Context) {
	var editables []ProviderEditable

	// Bind data and return error if not possible
	err := httputil.BindData(c, &editables)
	if err != nil {
		e := err.Error()
		c.JSON(status(err), ProviderCreateResponse{
			Error: &e,
		})
		return
	}

	// The final http status. Will be modified when errors occur
	status := http.StatusCreated
	r := ProviderCreateResponse{}

	for _, editable := range editables {
		provider := editable.model()

		err = models.DB.Create(&provider).Error
		if err != nil {
			status = r.appendError(err, status)
			continue
		}

		data := newProvider(c, provider)
		r.Data = append(r.Data, ProviderResponse{Data: &data})
	}

	c.JSON(status, r)
}

// @Summary		Get providers
// @Description	Returns a list of providers
// @Tags			Providers
// @Produce		json
// @Success		200	{object}	ProviderListResponse
// @Failure		400	{object}	ProviderListResponse
// @Failure		500	{object}	ProviderListResponse
// @Router			/v1/providers [get]
// @Param			name		query	string	false	"Filter by name"
// @Param			description	query	string	false	"Filter by description"
// @Param			is_active	query	bool	false	"Is the provider active?"
// @Param			search		query	string	false	"Search for this text in name and description"
// @Param			offset		query	uint	false	"The offset of the first provider returned. Defaults to 0."
// @Param			limit		query	int		false	"Maximum number of providers to return. Defaults to 50."
func GetProviders(c *gin.Context) {
	var filter ProviderQueryFilter

	// Every parameter is bound into a string or bool, binding errors are
	// handled by the zero values
	_ = c.ShouldBind(&filter)

	// Get the fields that we are filtering for
	queryFields, setFields := httputil.GetURLFields(c.Request.URL, filter)

	q := models.DB.
		Order("name ASC").
		Where(filter.model(), queryFields...)

	q = stringFilters(models.DB, q, setFields, filter.Name, filter.Description, filter.Search)

	// Set the offset. Does not need checking since the default is 0
	q = q.Offset(int(filter.Offset))

	// Default to 50 providers and set the limit
	limit := 50
	if slices.Contains(setFields, "Limit") {
		limit = filter.Limit
	}
	q = q.Limit(limit)

	var providers []models.Provider
	err := q.Find(&providers).Error
	if err != nil {
		s := err.Error()
		c.JSON(status(err), ProviderListResponse{
			Error: &s,
		})
		return
	}

	var count int64
	err = q.Limit(-1).Offset(-1).Count(&count).Error
	if err != nil {
		e := err.Error()
		c.JSON(status(err), ProviderListResponse{
			Error: &e,
		})
		return
	}

	data := make([]Provider, 0)
	for _, provider := range providers {
		data = append(data, newProvider(c, provider))
	}

	c.JSON(http.StatusOK, ProviderListResponse{
		Data: data,
		Pagination: &Pagination{
			Count:  len(data),
			Total:  count,
			Offset: filter.Offset,
			Limit:  limit,
		},
	})
}

// @Summary		Get provider
// @Description	Returns a specific provider
// @Tags			Providers
// @Produce		json
// @Success		200	{object}	ProviderResponse
// @Failure		400	{object}	ProviderResponse
// @Failure		404	{object}	ProviderResponse
// @Failure		500	{object}	ProviderResponse
// @Param			id	path		URIID	true	"ignored, but needed: https://github.com/swaggo/swag/issues/1014"
// @Router			/v1/providers/{id} [get]
func GetProvider(c *gin.Context) {
	var uri URIID
	err := c.ShouldBindUri(&uri)
	if err != nil {
		s := err.Error()
		c.JSON(status(err), ProviderResponse{
			Error: &s,
		})
		return
	}

	var provider models.Provider
	err = models.DB.First(&provider, uri.ID).Error
	if err != nil {
		s := err.Error()
		c.JSON(status(err), ProviderResponse{
			Error: &s,
		})
		return
	}

	data := newProvider(c, provider)
	c.JSON(http.StatusOK, ProviderResponse{Data: &data})
}

// @Summary		Update provider
// @Description	Update an existing provider. Only values to be updated need to be specified.
// @Tags			Providers
// @Accept			json
// @Produce		json
// @Success		200			{object}	ProviderResponse
// @Failure		400			{object}	ProviderResponse
// @Failure		404			{object}	ProviderResponse
// @Failure		500			{object}	ProviderResponse
// @Param			id			path		URIID				true	"ignored, but needed: https://github.com/swaggo/swag/issues/1014"
// @Param			provider	body		ProviderEditable	true	"Provider"
// @Router			/v1/providers/{id} [patch]
func UpdateProvider(c *gin.Context) {
	var uri URIID
	err := c.ShouldBindUri(&uri)
	if err != nil {
		s := err.Error()
		c.JSON(status(err), ProviderResponse{
			Error: &s,
		})
		return
	}

	var provider models.Provider
	err = models.DB.First(&provider, uri.ID).Error
	if err != nil {
		s := err.Error()
		c.JSON(status(err), ProviderResponse{
			Error: &s,
		})
		return
	}

	updateFields, err := httputil.GetBodyFields(c, ProviderEditable{})
	if err != nil {
		s := err.Error()
		c.JSON(status(err), ProviderResponse{
			Error: &s,
		})
		return
	}

	var data ProviderEditable
	err = httputil.BindData(c, &data)
	if err != nil {
		s := err.Error()
		c.JSON(status(err), ProviderResponse{
			Error: &s,
		})
		return
	}

	err = models.DB.Model(&provider).Select("", updateFields...).Updates(data.model()).Error
	if err != nil {
		s := err.Error()
		c.JSON(status(err), ProviderResponse{
			Error: &s,
		})
		return
	}

	r := newProvider(c, provider)
	c.JSON(http.StatusOK, ProviderResponse{Data: &r})
}

// @Summary		Delete provider
// @Description	Deletes a provider
// @Tags			Providers
// @Success		204
// @Failure		400	{object}	httpError
// @Failure		404	{object}	httpError
// @Failure		500	{object}	httpError
// @Param			id	path		URIID	true	"ignored, but needed: https://github.com/swaggo/swag/issues/1014"
// @Router			/v1/providers/{id} [delete]
func DeleteProvider(c *gin.Context) {
	var uri URIID
	err := c.ShouldBindUri(&uri)
	if err != nil {
		c.JSON(status(err), httpError{
			Error: err.Error(),
		})
		return
	}

	var provider models.Provider
	err = models.DB.First(&provider, uri.ID).Error
	if err != nil {
		c.JSON(status(err), httpError{
			Error: err.Error(),
		})
		return
	}

	err = models.DB.Delete(&provider).Error
	if err != nil {
		c.JSON(status(err), httpError{
			Error: err.Error(),
		})
		return
	}

	c.Status(http.StatusNoContent)
}
