package v1

import (
	"errors"
	"net/http"

	"github.com/gsmtrack/backend/internal/httputil"
	"github.com/gsmtrack/backend/internal/models"
)

type httpError struct {
	Error string `json:"error" example:"the specified resource ID is not a valid UUID"`
}

// status returns the appropriate status for a database error
func status(err error) int {
	if errors.Is(err, models.ErrGeneral) {
		return http.StatusInternalServerError
	}

	if errors.Is(err, models.ErrResourceNotFound) {
		return http.StatusNotFound
	}

	if errors.Is(err, httputil.ErrRequestBodyEmpty) || errors.Is(err, httputil.ErrInvalidBody) {
		return http.StatusBadRequest
	}

	return http.StatusBadRequest
}

// Template source endpoint errors
var (
	errWrongFileSuffix       = errors.New("this endpoint only supports .xlsx, .xls and .csv files")
	errConnectionTypeInvalid = errors.New("the specified connection type is invalid")
	errTemplateIDParameter   = errors.New("the template_id parameter must be set")
	errTemplateNotRemote     = errors.New("the template has no remote source, loading is only possible for firebird, api and web templates")
)
