package v1

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gsmtrack/backend/internal/httputil"
	"github.com/gsmtrack/backend/internal/importer"
	"github.com/gsmtrack/backend/internal/models"
	"github.com/gsmtrack/backend/internal/source"
	"github.com/gsmtrack/backend/internal/template"
	ez_uuid "github.com/gsmtrack/backend/internal/uuid"
	"golang.org/x/exp/slices"
)

// RegisterTransactionRoutes registers the routes for transactions with
// the RouterGroup that is passed.
func RegisterTransactionRoutes(r *gin.RouterGroup) {
	// Root group
	{
		r.OPTIONS("", OptionsTransactionList)
		r.GET("", GetTransactions)
	}

	// Loading from remote sources
	{
		r.OPTIONS("/load-from-firebird", OptionsTransactionLoad)
		r.POST("/load-from-firebird", LoadFromFirebird)
		r.OPTIONS("/load-from-api", OptionsTransactionLoad)
		r.POST("/load-from-api", LoadFromAPI)
	}

	// Transaction with ID
	{
		r.OPTIONS("/:id", OptionsTransactionDetail)
		r.GET("/:id", GetTransaction)
		r.DELETE("/:id", DeleteTransaction)
	}
}

// @Summary		Allowed HTTP verbs
// @Description	Returns an empty response with the HTTP Header "allow" set to the allowed HTTP verbs
// @Tags			Transactions
// @Success		204
// @Router			/v1/transactions [options]
func OptionsTransactionList(c *gin.Context) {
	httputil.OptionsGet(c)
}

// @Summary		Allowed HTTP verbs
// @Description	Returns an empty response with the HTTP Header "allow" set to the allowed HTTP verbs
// @Tags			Transactions
// @Success		204
// @Router			/v1/transactions/load-from-firebird [options]
func OptionsTransactionLoad(c *gin.Context) {
	httputil.OptionsPost(c)
}

// @Summary		Allowed HTTP verbs
// @Description	Returns an empty response with the HTTP Header "allow" set to the allowed HTTP verbs
// @Tags			Transactions
// @Success		204
// @Failure		400	{object}	httpError
// @Failure		404	{object}	httpError
// @Failure		500	{object}	httpError
// @Param			id	path		URIID	true	"ignored, but needed: https://github.com/swaggo/swag/issues/1014"
// @Router			/v1/transactions/{id} [options]
func OptionsTransactionDetail(c *gin.Context) {
	var uri URIID
	err := c.ShouldBindUri(&uri)
	if err != nil {
		c.JSON(status(err), httpError{
			Error: err.Error(),
		})
		return
	}

	err = models.DB.First(&models.Transaction{}, uri.ID).Error
	if err != nil {
		c.JSON(status(err), httpError{
			Error: err.Error(),
		})
		return
	}

	httputil.OptionsGetDelete(c)
}

// @Summary		Get transactions
// @Description	Returns a list of transactions
// @Tags			Transactions
// @Produce		json
// @Success		200	{object}	TransactionListResponse
// @Failure		400	{object}	TransactionListResponse
// @Failure		500	{object}	TransactionListResponse
// @Router			/v1/transactions [get]
// @Param			provider	query	string	false	"Filter by provider ID"
// @Param			template	query	string	false	"Filter by template ID"
// @Param			vehicle		query	string	false	"Filter by vehicle ID"
// @Param			card_number	query	string	false	"Filter by fuel card number"
// @Param			fuel_type	query	string	false	"Filter by normalized fuel label"
// @Param			date_from	query	string	false	"Only transactions on or after this date"
// @Param			date_to		query	string	false	"Only transactions on or before this date"
// @Param			offset		query	uint	false	"The offset of the first transaction returned. Defaults to 0."
// @Param			limit		query	int		false	"Maximum number of transactions to return. Defaults to 50."
func GetTransactions(c *gin.Context) {
	var filter TransactionQueryFilter

	if err := c.ShouldBind(&filter); err != nil {
		s := httputil.ErrInvalidQuery.Error()
		c.JSON(http.StatusBadRequest, TransactionListResponse{
			Error: &s,
		})
		return
	}

	queryFields, setFields := httputil.GetURLFields(c.Request.URL, filter)

	q := models.DB.
		Order("date DESC").
		Where(filter.model(), queryFields...)

	if filter.DateFrom != "" {
		from, err := parseDateParam(filter.DateFrom)
		if err != nil {
			s := err.Error()
			c.JSON(http.StatusBadRequest, TransactionListResponse{
				Error: &s,
			})
			return
		}
		q = q.Where("date >= ?", from)
	}

	if filter.DateTo != "" {
		to, err := parseDateParam(filter.DateTo)
		if err != nil {
			s := err.Error()
			c.JSON(http.StatusBadRequest, TransactionListResponse{
				Error: &s,
			})
			return
		}
		q = q.Where("date <= ?", endOfDay(to))
	}

	q = q.Offset(int(filter.Offset))

	limit := 50
	if slices.Contains(setFields, "Limit") {
		limit = filter.Limit
	}
	q = q.Limit(limit)

	var transactions []models.Transaction
	err := q.Find(&transactions).Error
	if err != nil {
		s := err.Error()
		c.JSON(status(err), TransactionListResponse{
			Error: &s,
		})
		return
	}

	var count int64
	err = q.Limit(-1).Offset(-1).Count(&count).Error
	if err != nil {
		e := err.Error()
		c.JSON(status(err), TransactionListResponse{
			Error: &e,
		})
		return
	}

	data := make([]Transaction, 0)
	for _, transaction := range transactions {
		data = append(data, newTransaction(c, transaction))
	}

	c.JSON(http.StatusOK, TransactionListResponse{
		Data: data,
		Pagination: &Pagination{
			Count:  len(data),
			Total:  count,
			Offset: filter.Offset,
			Limit:  limit,
		},
	})
}

// @Summary		Get transaction
// @Description	Returns a specific transaction
// @Tags			Transactions
// @Produce		json
// @Success		200	{object}	TransactionResponse
// @Failure		400	{object}	TransactionResponse
// @Failure		404	{object}	TransactionResponse
// @Failure		500	{object}	TransactionResponse
// @Param			id	path		URIID	true	"ignored, but needed: https://github.com/swaggo/swag/issues/1014"
// @Router			/v1/transactions/{id} [get]
func GetTransaction(c *gin.Context) {
	var uri URIID
	err := c.ShouldBindUri(&uri)
	if err != nil {
		s := err.Error()
		c.JSON(status(err), TransactionResponse{
			Error: &s,
		})
		return
	}

	var transaction models.Transaction
	err = models.DB.First(&transaction, uri.ID).Error
	if err != nil {
		s := err.Error()
		c.JSON(status(err), TransactionResponse{
			Error: &s,
		})
		return
	}

	data := newTransaction(c, transaction)
	c.JSON(http.StatusOK, TransactionResponse{Data: &data})
}

// @Summary		Delete transaction
// @Description	Deletes a transaction
// @Tags			Transactions
// @Success		204
// @Failure		400	{object}	httpError
// @Failure		404	{object}	httpError
// @Failure		500	{object}	httpError
// @Param			id	path		URIID	true	"ignored, but needed: https://github.com/swaggo/swag/issues/1014"
// @Router			/v1/transactions/{id} [delete]
func DeleteTransaction(c *gin.Context) {
	var uri URIID
	err := c.ShouldBindUri(&uri)
	if err != nil {
		c.JSON(status(err), httpError{
			Error: err.Error(),
		})
		return
	}

	var transaction models.Transaction
	err = models.DB.First(&transaction, uri.ID).Error
	if err != nil {
		c.JSON(status(err), httpError{
			Error: err.Error(),
		})
		return
	}

	err = models.DB.Delete(&transaction).Error
	if err != nil {
		c.JSON(status(err), httpError{
			Error: err.Error(),
		})
		return
	}

	c.Status(http.StatusNoContent)
}

// loadWindow resolves the date window of a load request. Explicit date_from
// and date_to parameters win, otherwise the template's auto load offsets are
// applied to the current day.
func loadWindow(c *gin.Context, tmpl models.Template) (time.Time, time.Time, error) {
	now := time.Now().In(time.UTC)
	from := now.AddDate(0, 0, tmpl.AutoLoadDateFromOffset)
	to := now.AddDate(0, 0, tmpl.AutoLoadDateToOffset)

	if raw := c.Query("date_from"); raw != "" {
		parsed, err := parseDateParam(raw)
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
		from = parsed
	}

	if raw := c.Query("date_to"); raw != "" {
		parsed, err := parseDateParam(raw)
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
		to = parsed
	}

	return startOfDay(from), endOfDay(to), nil
}

// loadTemplate resolves the template_id parameter of a load request.
func loadTemplate(c *gin.Context) (models.Template, error) {
	raw := c.Query("template_id")
	if raw == "" {
		return models.Template{}, errTemplateIDParameter
	}

	var id ez_uuid.UUID
	if err := id.UnmarshalParam(raw); err != nil {
		return models.Template{}, httputil.ErrInvalidUUID
	}

	var tmpl models.Template
	if err := models.DB.First(&tmpl, id.UUID).Error; err != nil {
		return models.Template{}, err
	}

	return tmpl, nil
}

// cardPatterns splits the card_numbers parameter into glob patterns.
func cardPatterns(c *gin.Context) []string {
	raw := c.Query("card_numbers")
	if raw == "" {
		return nil
	}

	var patterns []string
	for _, p := range strings.Split(raw, ",") {
		p = strings.TrimSpace(p)
		if p != "" {
			patterns = append(patterns, p)
		}
	}

	return patterns
}

// @Summary		Load transactions from Firebird
// @Description	Loads transactions from the Firebird database configured in the template
// @Tags			Transactions
// @Produce		json
// @Success		201				{object}	importer.LoadResult
// @Failure		400				{object}	httpError
// @Failure		404				{object}	httpError
// @Failure		500				{object}	httpError
// @Param			template_id		query		string	true	"ID of the template to load with"
// @Param			date_from		query		string	false	"Start of the date window, defaults to the template's auto load offset"
// @Param			date_to			query		string	false	"End of the date window, defaults to the template's auto load offset"
// @Param			card_numbers	query		string	false	"Comma separated glob patterns for fuel card numbers"
// @Router			/v1/transactions/load-from-firebird [post]
func LoadFromFirebird(c *gin.Context) {
	tmpl, err := loadTemplate(c)
	if err != nil {
		c.JSON(status(err), httpError{
			Error: err.Error(),
		})
		return
	}

	if tmpl.ConnectionType != template.ConnectionFirebird {
		c.JSON(http.StatusBadRequest, httpError{
			Error: errTemplateNotRemote.Error(),
		})
		return
	}

	from, to, err := loadWindow(c, tmpl)
	if err != nil {
		c.JSON(http.StatusBadRequest, httpError{
			Error: err.Error(),
		})
		return
	}

	settings := tmpl.Settings()
	fb, err := source.NewFirebird(settings.Firebird)
	if err != nil {
		c.JSON(http.StatusBadRequest, httpError{
			Error: err.Error(),
		})
		return
	}

	query, err := source.SelectQuery(tmpl.SourceQuery, tmpl.SourceTable)
	if err != nil {
		c.JSON(http.StatusBadRequest, httpError{
			Error: err.Error(),
		})
		return
	}

	rows, err := fb.Rows(c.Request.Context(), query)
	if err != nil {
		c.JSON(http.StatusBadRequest, httpError{
			Error: err.Error(),
		})
		return
	}

	creator := importer.Creator{
		Template:     tmpl,
		DateFrom:     from,
		DateTo:       to,
		CardPatterns: cardPatterns(c),
	}

	result, err := creator.Load(models.DB, rows)
	if err != nil {
		c.JSON(status(err), httpError{
			Error: err.Error(),
		})
		return
	}

	c.JSON(http.StatusCreated, result)
}

// @Summary		Load transactions from API
// @Description	Loads transactions from the provider API or web service configured in the template
// @Tags			Transactions
// @Produce		json
// @Success		201				{object}	importer.LoadResult
// @Failure		400				{object}	httpError
// @Failure		404				{object}	httpError
// @Failure		500				{object}	httpError
// @Param			template_id		query		string	true	"ID of the template to load with"
// @Param			date_from		query		string	false	"Start of the date window, defaults to the template's auto load offset"
// @Param			date_to			query		string	false	"End of the date window, defaults to the template's auto load offset"
// @Param			card_numbers	query		string	false	"Comma separated glob patterns for fuel card numbers"
// @Router			/v1/transactions/load-from-api [post]
func LoadFromAPI(c *gin.Context) {
	tmpl, err := loadTemplate(c)
	if err != nil {
		c.JSON(status(err), httpError{
			Error: err.Error(),
		})
		return
	}

	if tmpl.ConnectionType != template.ConnectionAPI && tmpl.ConnectionType != template.ConnectionWeb {
		c.JSON(http.StatusBadRequest, httpError{
			Error: errTemplateNotRemote.Error(),
		})
		return
	}

	from, to, err := loadWindow(c, tmpl)
	if err != nil {
		c.JSON(http.StatusBadRequest, httpError{
			Error: err.Error(),
		})
		return
	}

	var fetcher interface {
		Fetch(ctx context.Context, from, to time.Time) ([]map[string]any, error)
	}

	settings := tmpl.Settings()
	if tmpl.ConnectionType == template.ConnectionWeb {
		fetcher, err = source.NewWeb(settings)
	} else {
		fetcher, err = source.NewAPI(settings)
	}
	if err != nil {
		c.JSON(http.StatusBadRequest, httpError{
			Error: err.Error(),
		})
		return
	}

	rows, err := fetcher.Fetch(c.Request.Context(), from, to)
	if err != nil {
		c.JSON(http.StatusBadRequest, httpError{
			Error: err.Error(),
		})
		return
	}

	creator := importer.Creator{
		Template:     tmpl,
		DateFrom:     from,
		DateTo:       to,
		CardPatterns: cardPatterns(c),
	}

	result, err := creator.Load(models.DB, rows)
	if err != nil {
		c.JSON(status(err), httpError{
			Error: err.Error(),
		})
		return
	}

	c.JSON(http.StatusCreated, result)
}

// Accepted layouts for date query parameters
var paramLayouts = []string{time.RFC3339, "2006-01-02"}

func parseDateParam(raw string) (time.Time, error) {
	for _, layout := range paramLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.In(time.UTC), nil
		}
	}

	return time.Time{}, fmt.Errorf("не удалось разобрать дату %q", raw)
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func endOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 23, 59, 59, 0, time.UTC)
}
