package v1

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gsmtrack/backend/internal/httputil"
	"github.com/gsmtrack/backend/internal/importer"
	"github.com/gsmtrack/backend/internal/models"
	"github.com/gsmtrack/backend/internal/source"
	"github.com/gsmtrack/backend/internal/template"
)

// ConnectionTestResponse reports the outcome of a connection test. Failures
// are in-band: the HTTP status is 200 and success is false.
type ConnectionTestResponse struct {
	Success bool     `json:"success"`                                    // Did the connection succeed?
	Message string   `json:"message" example:"Подключение установлено"` // Human readable outcome
	Tables  []string `json:"tables,omitempty"`                           // Tables of the source database, only for firebird
}

type ColumnsResponse struct {
	Columns []string `json:"columns"`         // Column names of the table or query
	Error   *string  `json:"error,omitempty"` // The error, if any occurred
}

type FieldsResponse struct {
	Fields []string `json:"fields"`          // Discovered field paths of the source
	Count  int      `json:"count"`           // Number of discovered fields
	Error  *string  `json:"error,omitempty"` // The error, if any occurred
}

// sourceRequest is the shared request shape of the source introspection
// endpoints. Settings may be nested under connection_settings or flattened
// into the body itself.
type sourceRequest struct {
	TableName          string          `json:"table_name"`
	Query              string          `json:"query"`
	ConnectionSettings json.RawMessage `json:"connection_settings"`
}

// @Summary		Allowed HTTP verbs
// @Description	Returns an empty response with the HTTP Header "allow" set to the allowed HTTP verbs
// @Tags			Templates
// @Success		204
// @Router			/v1/templates/analyze [options]
func OptionsTemplateAnalyze(c *gin.Context) {
	httputil.OptionsPost(c)
}

// @Summary		Allowed HTTP verbs
// @Description	Returns an empty response with the HTTP Header "allow" set to the allowed HTTP verbs
// @Tags			Templates
// @Success		204
// @Router			/v1/templates/test-firebird-connection [options]
func OptionsTemplateSource(c *gin.Context) {
	httputil.OptionsPost(c)
}

// @Summary		Analyze transaction file
// @Description	Analyzes an uploaded transaction file and guesses header position and field mapping
// @Tags			Templates
// @Accept			multipart/form-data
// @Produce		json
// @Success		200		{object}	importer.Analysis
// @Failure		400		{object}	httpError
// @Param			file	formData	file	true	"Transaction file (.xlsx, .xls or .csv)"
// @Router			/v1/templates/analyze [post]
func AnalyzeTemplateFile(c *gin.Context) {
	header, err := httputil.File(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, httpError{
			Error: err.Error(),
		})
		return
	}

	f, err := header.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, httpError{
			Error: err.Error(),
		})
		return
	}
	defer f.Close()

	analysis, err := importer.Analyze(header.Filename, f)
	if err != nil {
		if errors.Is(err, importer.ErrUnsupportedFileType) {
			err = errWrongFileSuffix
		}
		c.JSON(http.StatusBadRequest, httpError{
			Error: err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, analysis)
}

// sourceSettings resolves the connection settings for a source endpoint
// request: the body settings take precedence, the stored settings of the
// template from the optional :id route parameter are the fallback.
func sourceSettings(c *gin.Context, t template.ConnectionType) (template.ConnectionSettings, sourceRequest, error) {
	var req sourceRequest

	body, _ := io.ReadAll(c.Request.Body)
	c.Request.Body = io.NopCloser(bytes.NewBuffer(body))

	// The body is optional for requests referencing a saved template
	_ = json.Unmarshal(body, &req)

	raw := req.ConnectionSettings
	if len(raw) == 0 {
		raw = body
	}

	var stored *models.Template
	if id := c.Param("id"); id != "" {
		var uri URIID
		if err := c.ShouldBindUri(&uri); err != nil {
			return template.ConnectionSettings{}, req, err
		}

		var tmpl models.Template
		if err := models.DB.First(&tmpl, uri.ID).Error; err != nil {
			return template.ConnectionSettings{}, req, err
		}
		stored = &tmpl
	}

	if stored != nil {
		// Fall back to the stored source table and query
		if req.TableName == "" {
			req.TableName = stored.SourceTable
		}
		if req.Query == "" {
			req.Query = stored.SourceQuery
		}

		var m map[string]any
		if err := json.Unmarshal(raw, &m); err != nil || len(m) == 0 {
			return stored.Settings(), req, nil
		}
	}

	return template.Parse(raw, t), req, nil
}

// @Summary		Test Firebird connection
// @Description	Tests a Firebird connection and lists the tables of the database. Settings are taken from the body, or from the saved template if an ID is given.
// @Tags			Templates
// @Accept			json
// @Produce		json
// @Success		200			{object}	ConnectionTestResponse
// @Failure		400			{object}	httpError
// @Failure		404			{object}	httpError
// @Param			settings	body		object	false	"Firebird connection settings"
// @Router			/v1/templates/test-firebird-connection [post]
func TestFirebirdConnection(c *gin.Context) {
	settings, _, err := sourceSettings(c, template.ConnectionFirebird)
	if err != nil {
		c.JSON(status(err), httpError{
			Error: err.Error(),
		})
		return
	}

	fb, err := source.NewFirebird(settings.Firebird)
	if err != nil {
		c.JSON(http.StatusOK, ConnectionTestResponse{
			Success: false,
			Message: err.Error(),
		})
		return
	}

	tables, err := fb.Test(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusOK, ConnectionTestResponse{
			Success: false,
			Message: err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, ConnectionTestResponse{
		Success: true,
		Message: "Подключение установлено",
		Tables:  tables,
	})
}

// @Summary		List Firebird table columns
// @Description	Returns the columns of a table in the source database
// @Tags			Templates
// @Accept			json
// @Produce		json
// @Success		200		{object}	ColumnsResponse
// @Failure		400		{object}	ColumnsResponse
// @Failure		404		{object}	httpError
// @Param			request	body		object	false	"table_name plus Firebird connection settings when the template is unsaved"
// @Router			/v1/templates/firebird-table-columns [post]
func FirebirdTableColumns(c *gin.Context) {
	settings, req, err := sourceSettings(c, template.ConnectionFirebird)
	if err != nil {
		c.JSON(status(err), httpError{
			Error: err.Error(),
		})
		return
	}

	// GET variants pass the table in the query string
	if req.TableName == "" {
		req.TableName = c.Query("table_name")
	}

	fb, err := source.NewFirebird(settings.Firebird)
	if err != nil {
		s := err.Error()
		c.JSON(http.StatusBadRequest, ColumnsResponse{
			Columns: []string{},
			Error:   &s,
		})
		return
	}

	columns, err := fb.TableColumns(c.Request.Context(), req.TableName)
	if err != nil {
		s := err.Error()
		c.JSON(http.StatusBadRequest, ColumnsResponse{
			Columns: []string{},
			Error:   &s,
		})
		return
	}

	c.JSON(http.StatusOK, ColumnsResponse{Columns: columns})
}

// @Summary		List columns of a SQL query
// @Description	Runs the query against the source database and returns the columns of the result set
// @Tags			Templates
// @Accept			json
// @Produce		json
// @Success		200		{object}	ColumnsResponse
// @Failure		400		{object}	ColumnsResponse
// @Param			request	body		object	true	"connection_settings and query"
// @Router			/v1/templates/firebird-query-columns [post]
func FirebirdQueryColumns(c *gin.Context) {
	settings, req, err := sourceSettings(c, template.ConnectionFirebird)
	if err != nil {
		c.JSON(status(err), httpError{
			Error: err.Error(),
		})
		return
	}

	fb, err := source.NewFirebird(settings.Firebird)
	if err != nil {
		s := err.Error()
		c.JSON(http.StatusBadRequest, ColumnsResponse{
			Columns: []string{},
			Error:   &s,
		})
		return
	}

	columns, err := fb.QueryColumns(c.Request.Context(), req.Query)
	if err != nil {
		s := err.Error()
		c.JSON(http.StatusBadRequest, ColumnsResponse{
			Columns: []string{},
			Error:   &s,
		})
		return
	}

	c.JSON(http.StatusOK, ColumnsResponse{Columns: columns})
}

// connectionTypeFromQuery returns the connection type for the API and Web
// shared endpoints: api unless ?connection_type=web is given.
func connectionTypeFromQuery(c *gin.Context) (template.ConnectionType, error) {
	switch c.Query("connection_type") {
	case "", string(template.ConnectionAPI):
		return template.ConnectionAPI, nil
	case string(template.ConnectionWeb):
		return template.ConnectionWeb, nil
	}
	return "", errConnectionTypeInvalid
}

// sourceTester is the common surface of the API and Web connectors.
type sourceTester interface {
	Test(ctx context.Context) error
	Fields(ctx context.Context) ([]string, error)
}

func newTester(t template.ConnectionType, settings template.ConnectionSettings) (sourceTester, error) {
	if t == template.ConnectionWeb {
		return source.NewWeb(settings)
	}
	return source.NewAPI(settings)
}

// @Summary		Test API or Web connection
// @Description	Tests a provider API connection, or a web service connection when connection_type=web is given
// @Tags			Templates
// @Accept			json
// @Produce		json
// @Success		200				{object}	ConnectionTestResponse
// @Failure		400				{object}	httpError
// @Param			connection_type	query		string	false	"api or web, defaults to api"
// @Param			settings		body		object	true	"Connection settings"
// @Router			/v1/templates/test-api-connection [post]
func TestAPIConnection(c *gin.Context) {
	t, err := connectionTypeFromQuery(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, httpError{
			Error: err.Error(),
		})
		return
	}

	settings, _, err := sourceSettings(c, t)
	if err != nil {
		c.JSON(status(err), httpError{
			Error: err.Error(),
		})
		return
	}

	tester, err := newTester(t, settings)
	if err != nil {
		c.JSON(http.StatusOK, ConnectionTestResponse{
			Success: false,
			Message: err.Error(),
		})
		return
	}

	if err := tester.Test(c.Request.Context()); err != nil {
		c.JSON(http.StatusOK, ConnectionTestResponse{
			Success: false,
			Message: err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, ConnectionTestResponse{
		Success: true,
		Message: "Подключение установлено",
	})
}

// @Summary		Discover API or Web fields
// @Description	Fetches a sample transaction from the source and returns its flattened field paths
// @Tags			Templates
// @Accept			json
// @Produce		json
// @Success		200				{object}	FieldsResponse
// @Failure		400				{object}	httpError
// @Param			connection_type	query		string	false	"api or web, defaults to api"
// @Param			settings		body		object	true	"Connection settings"
// @Router			/v1/templates/api-fields [post]
func APIFields(c *gin.Context) {
	t, err := connectionTypeFromQuery(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, httpError{
			Error: err.Error(),
		})
		return
	}

	settings, _, err := sourceSettings(c, t)
	if err != nil {
		c.JSON(status(err), httpError{
			Error: err.Error(),
		})
		return
	}

	tester, err := newTester(t, settings)
	if err != nil {
		s := err.Error()
		c.JSON(http.StatusOK, FieldsResponse{
			Fields: []string{},
			Error:  &s,
		})
		return
	}

	fields, err := tester.Fields(c.Request.Context())
	if err != nil {
		s := err.Error()
		c.JSON(http.StatusOK, FieldsResponse{
			Fields: []string{},
			Error:  &s,
		})
		return
	}

	c.JSON(http.StatusOK, FieldsResponse{
		Fields: fields,
		Count:  len(fields),
	})
}
