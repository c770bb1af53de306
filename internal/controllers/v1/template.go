package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gsmtrack/backend/internal/httputil"
	"github.com/gsmtrack/backend/internal/models"
	"github.com/gsmtrack/backend/internal/template"
	"golang.org/x/exp/slices"
)

// RegisterTemplateRoutes registers the routes for import templates with
// the RouterGroup that is passed.
//
// Template creation is registered under the provider routes, see
// RegisterProviderRoutes.
func RegisterTemplateRoutes(r *gin.RouterGroup) {
	// Root group
	{
		r.OPTIONS("", OptionsTemplateList)
		r.GET("", GetTemplates)
	}

	// File analysis and source introspection
	{
		r.OPTIONS("/analyze", OptionsTemplateAnalyze)
		r.POST("/analyze", AnalyzeTemplateFile)

		r.OPTIONS("/test-firebird-connection", OptionsTemplateSource)
		r.POST("/test-firebird-connection", TestFirebirdConnection)
		r.POST("/:id/test-firebird-connection", TestFirebirdConnection)

		r.OPTIONS("/firebird-table-columns", OptionsTemplateSource)
		r.POST("/firebird-table-columns", FirebirdTableColumns)
		r.GET("/:id/firebird-table-columns", FirebirdTableColumns)
		r.POST("/:id/firebird-table-columns", FirebirdTableColumns)

		r.OPTIONS("/firebird-query-columns", OptionsTemplateSource)
		r.POST("/firebird-query-columns", FirebirdQueryColumns)

		r.OPTIONS("/test-api-connection", OptionsTemplateSource)
		r.POST("/test-api-connection", TestAPIConnection)

		r.OPTIONS("/api-fields", OptionsTemplateSource)
		r.POST("/api-fields", APIFields)
	}

	// Template with ID
	{
		r.OPTIONS("/:id", OptionsTemplateDetail)
		r.GET("/:id", GetTemplate)
		r.PUT("/:id", UpdateTemplate)
		r.DELETE("/:id", DeleteTemplate)
	}
}

// @Summary		Allowed HTTP verbs
// @Description	Returns an empty response with the HTTP Header "allow" set to the allowed HTTP verbs
// @Tags			Templates
// @Success		204
// @Router			/v1/templates [options]
func OptionsTemplateList(c *gin.Context) {
	httputil.OptionsGet(c)
}

// @Summary		Allowed HTTP verbs
// @Description	Returns an empty response with the HTTP Header "allow" set to the allowed HTTP verbs
// @Tags			Providers
// @Success		204
// @Failure		400	{object}	httpError
// @Failure		404	{object}	httpError
// @Failure		500	{object}	httpError
// @Param			id	path		URIID	true	"ignored, but needed: https://github.com/swaggo/swag/issues/1014"
// @Router			/v1/providers/{id}/templates [options]
func OptionsProviderTemplates(c *gin.Context) {
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

	httputil.OptionsPost(c)
}

// @Summary		Allowed HTTP verbs
// @Description	Returns an empty response with the HTTP Header "allow" set to the allowed HTTP verbs
// @Tags			Templates
// @Success		204
// @Failure		400	{object}	httpError
// @Failure		404	{object}	httpError
// @Failure		500	{object}	httpError
// @Param			id	path		URIID	true	"ignored, but needed: https://github.com/swaggo/swag/issues/1014"
// @Router			/v1/templates/{id} [options]
func OptionsTemplateDetail(c *gin.Context) {
	var uri URIID
	err := c.ShouldBindUri(&uri)
	if err != nil {
		c.JSON(status(err), httpError{
			Error: err.Error(),
		})
		return
	}

	err = models.DB.First(&models.Template{}, uri.ID).Error
	if err != nil {
		c.JSON(status(err), httpError{
			Error: err.Error(),
		})
		return
	}

	httputil.OptionsGetPutDelete(c)
}

// @Summary		Create template
// @Description	Creates a new import template for the provider
// @Tags			Templates
// @Accept			json
// @Produce		json
// @Success		201			{object}	TemplateResponse
// @Failure		400			{object}	TemplateResponse
// @Failure		404			{object}	TemplateResponse
// @Failure		500			{object}	TemplateResponse
// @Param			id			path		URIID				true	"ignored, but needed: https://github.com/swaggo/swag/issues/1014"
// @Param			template	body		TemplateEditable	true	"Template"
// @Router			/v1/providers/{id}/templates [post]
func CreateTemplate(c *gin.Context) {
	var uri URIID
	err := c.ShouldBindUri(&uri)
	if err != nil {
		s := err.Error()
		c.JSON(status(err), TemplateResponse{
			Error: &s,
		})
		return
	}

	var provider models.Provider
	err = models.DB.First(&provider, uri.ID).Error
	if err != nil {
		s := err.Error()
		c.JSON(status(err), TemplateResponse{
			Error: &s,
		})
		return
	}

	var editable TemplateEditable
	err = httputil.BindData(c, &editable)
	if err != nil {
		s := err.Error()
		c.JSON(status(err), TemplateResponse{
			Error: &s,
		})
		return
	}

	if !editable.ConnectionType.Valid() {
		s := errConnectionTypeInvalid.Error()
		c.JSON(http.StatusBadRequest, TemplateResponse{
			Error: &s,
		})
		return
	}

	// All validation gates run before anything is persisted
	payload, err := template.BuildSavePayload(editable.form())
	if err != nil {
		s := err.Error()
		c.JSON(http.StatusBadRequest, TemplateResponse{
			Error: &s,
		})
		return
	}

	tmpl := models.Template{ProviderID: provider.ID}
	err = tmpl.ApplyPayload(payload)
	if err != nil {
		s := err.Error()
		c.JSON(status(err), TemplateResponse{
			Error: &s,
		})
		return
	}

	err = models.DB.Create(&tmpl).Error
	if err != nil {
		s := err.Error()
		c.JSON(status(err), TemplateResponse{
			Error: &s,
		})
		return
	}

	data, err := newTemplate(c, tmpl)
	if err != nil {
		s := err.Error()
		c.JSON(status(err), TemplateResponse{
			Error: &s,
		})
		return
	}

	c.JSON(http.StatusCreated, TemplateResponse{Data: &data})
}

// @Summary		Get templates
// @Description	Returns a list of import templates
// @Tags			Templates
// @Produce		json
// @Success		200	{object}	TemplateListResponse
// @Failure		400	{object}	TemplateListResponse
// @Failure		500	{object}	TemplateListResponse
// @Router			/v1/templates [get]
// @Param			provider		query	string	false	"Filter by provider ID"
// @Param			connection_type	query	string	false	"Filter by connection type"
// @Param			name			query	string	false	"Filter by name"
// @Param			is_active		query	bool	false	"Is the template active?"
// @Param			search			query	string	false	"Search for this text in name and description"
// @Param			offset			query	uint	false	"The offset of the first template returned. Defaults to 0."
// @Param			limit			query	int		false	"Maximum number of templates to return. Defaults to 50."
func GetTemplates(c *gin.Context) {
	var filter TemplateQueryFilter
	_ = c.ShouldBind(&filter)

	queryFields, setFields := httputil.GetURLFields(c.Request.URL, filter)

	q := models.DB.
		Order("name ASC").
		Where(filter.model(), queryFields...)

	q = stringFilters(models.DB, q, setFields, filter.Name, "", filter.Search)

	q = q.Offset(int(filter.Offset))

	limit := 50
	if slices.Contains(setFields, "Limit") {
		limit = filter.Limit
	}
	q = q.Limit(limit)

	var templates []models.Template
	err := q.Find(&templates).Error
	if err != nil {
		s := err.Error()
		c.JSON(status(err), TemplateListResponse{
			Error: &s,
		})
		return
	}

	var count int64
	err = q.Limit(-1).Offset(-1).Count(&count).Error
	if err != nil {
		e := err.Error()
		c.JSON(status(err), TemplateListResponse{
			Error: &e,
		})
		return
	}

	data := make([]Template, 0)
	for _, tmpl := range templates {
		apiResource, err := newTemplate(c, tmpl)
		if err != nil {
			s := err.Error()
			c.JSON(status(err), TemplateListResponse{
				Error: &s,
			})
			return
		}
		data = append(data, apiResource)
	}

	c.JSON(http.StatusOK, TemplateListResponse{
		Data: data,
		Pagination: &Pagination{
			Count:  len(data),
			Total:  count,
			Offset: filter.Offset,
			Limit:  limit,
		},
	})
}

// @Summary		Get template
// @Description	Returns a specific import template
// @Tags			Templates
// @Produce		json
// @Success		200	{object}	TemplateResponse
// @Failure		400	{object}	TemplateResponse
// @Failure		404	{object}	TemplateResponse
// @Failure		500	{object}	TemplateResponse
// @Param			id	path		URIID	true	"ignored, but needed: https://github.com/swaggo/swag/issues/1014"
// @Router			/v1/templates/{id} [get]
func GetTemplate(c *gin.Context) {
	var uri URIID
	err := c.ShouldBindUri(&uri)
	if err != nil {
		s := err.Error()
		c.JSON(status(err), TemplateResponse{
			Error: &s,
		})
		return
	}

	var tmpl models.Template
	err = models.DB.First(&tmpl, uri.ID).Error
	if err != nil {
		s := err.Error()
		c.JSON(status(err), TemplateResponse{
			Error: &s,
		})
		return
	}

	data, err := newTemplate(c, tmpl)
	if err != nil {
		s := err.Error()
		c.JSON(status(err), TemplateResponse{
			Error: &s,
		})
		return
	}

	c.JSON(http.StatusOK, TemplateResponse{Data: &data})
}

// @Summary		Update template
// @Description	Update an existing template. Every save sends the full template state, partial updates are not supported.
// @Tags			Templates
// @Accept			json
// @Produce		json
// @Success		200			{object}	TemplateResponse
// @Failure		400			{object}	TemplateResponse
// @Failure		404			{object}	TemplateResponse
// @Failure		500			{object}	TemplateResponse
// @Param			id			path		URIID				true	"ignored, but needed: https://github.com/swaggo/swag/issues/1014"
// @Param			template	body		TemplateEditable	true	"Template"
// @Router			/v1/templates/{id} [put]
func UpdateTemplate(c *gin.Context) {
	var uri URIID
	err := c.ShouldBindUri(&uri)
	if err != nil {
		s := err.Error()
		c.JSON(status(err), TemplateResponse{
			Error: &s,
		})
		return
	}

	var tmpl models.Template
	err = models.DB.First(&tmpl, uri.ID).Error
	if err != nil {
		s := err.Error()
		c.JSON(status(err), TemplateResponse{
			Error: &s,
		})
		return
	}

	var editable TemplateEditable
	err = httputil.BindData(c, &editable)
	if err != nil {
		s := err.Error()
		c.JSON(status(err), TemplateResponse{
			Error: &s,
		})
		return
	}

	if !editable.ConnectionType.Valid() {
		s := errConnectionTypeInvalid.Error()
		c.JSON(http.StatusBadRequest, TemplateResponse{
			Error: &s,
		})
		return
	}

	payload, err := template.BuildSavePayload(editable.form())
	if err != nil {
		s := err.Error()
		c.JSON(http.StatusBadRequest, TemplateResponse{
			Error: &s,
		})
		return
	}

	err = tmpl.ApplyPayload(payload)
	if err != nil {
		s := err.Error()
		c.JSON(status(err), TemplateResponse{
			Error: &s,
		})
		return
	}

	err = models.DB.Save(&tmpl).Error
	if err != nil {
		s := err.Error()
		c.JSON(status(err), TemplateResponse{
			Error: &s,
		})
		return
	}

	data, err := newTemplate(c, tmpl)
	if err != nil {
		s := err.Error()
		c.JSON(status(err), TemplateResponse{
			Error: &s,
		})
		return
	}

	c.JSON(http.StatusOK, TemplateResponse{Data: &data})
}

// @Summary		Delete template
// @Description	Deletes a template
// @Tags			Templates
// @Success		204
// @Failure		400	{object}	httpError
// @Failure		404	{object}	httpError
// @Failure		500	{object}	httpError
// @Param			id	path		URIID	true	"ignored, but needed: https://github.com/swaggo/swag/issues/1014"
// @Router			/v1/templates/{id} [delete]
func DeleteTemplate(c *gin.Context) {
	var uri URIID
	err := c.ShouldBindUri(&uri)
	if err != nil {
		c.JSON(status(err), httpError{
			Error: err.Error(),
		})
		return
	}

	var tmpl models.Template
	err = models.DB.First(&tmpl, uri.ID).Error
	if err != nil {
		c.JSON(status(err), httpError{
			Error: err.Error(),
		})
		return
	}

	err = models.DB.Delete(&tmpl).Error
	if err != nil {
		c.JSON(status(err), httpError{
			Error: err.Error(),
		})
		return
	}

	c.Status(http.StatusNoContent)
}
