package source

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/gsmtrack/backend/internal/template"
)

var (
	ErrWebBaseURLRequired     = errors.New("the web settings do not contain a base url")
	ErrWebCertificateRequired = errors.New("the web settings do not contain a client certificate")
	ErrWebCertificateInvalid  = errors.New("the client certificate could not be parsed as a PEM bundle with certificate and key")
)

// Web reads transactions from a generic web service that authenticates
// clients with a TLS certificate instead of credentials.
type Web struct {
	settings template.WebSettings
	client   *http.Client
}

// NewWeb builds a client from the template's connection settings. The
// certificate field must hold a PEM bundle containing both the certificate
// and its private key.
func NewWeb(settings template.ConnectionSettings) (*Web, error) {
	if settings.Web == nil || strings.TrimSpace(settings.Web.BaseURL) == "" {
		return nil, ErrWebBaseURLRequired
	}
	if strings.TrimSpace(settings.Web.Certificate) == "" {
		return nil, ErrWebCertificateRequired
	}

	pem := []byte(settings.Web.Certificate)
	cert, err := tls.X509KeyPair(pem, pem)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrWebCertificateInvalid, err)
	}

	return &Web{
		settings: *settings.Web,
		client: &http.Client{
			Timeout: 60 * time.Second,
			Transport: &http.Transport{
				TLSClientConfig: &tls.Config{
					Certificates: []tls.Certificate{cert},
				},
			},
		},
	}, nil
}

func (w *Web) endpoint() string {
	path := "/transactions"
	if w.settings.Endpoint != nil && *w.settings.Endpoint != "" {
		path = *w.settings.Endpoint
		if !strings.HasPrefix(path, "/") {
			path = "/" + path
		}
	}
	return strings.TrimRight(w.settings.BaseURL, "/") + path
}

// Test performs a minimal request to verify that the service accepts the
// certificate.
func (w *Web) Test(ctx context.Context) error {
	_, err := w.Fetch(ctx, time.Now().AddDate(0, 0, -1), time.Now())
	return err
}

// Fields discovers the service's transaction field names from a recent sample.
func (w *Web) Fields(ctx context.Context) ([]string, error) {
	rows, err := w.Fetch(ctx, time.Now().AddDate(0, 0, -7), time.Now())
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, ErrNoSampleData
	}

	return flattenKeys("", rows[0]), nil
}

// Fetch returns the service's transactions for the date range.
func (w *Web) Fetch(ctx context.Context, from, to time.Time) ([]map[string]any, error) {
	query := url.Values{}
	query.Set("date_from", from.Format("2006-01-02"))
	query.Set("date_to", to.Format("2006-01-02"))
	if w.settings.POSCode != nil {
		query.Set("pos_code", strconv.Itoa(*w.settings.POSCode))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, w.endpoint()+"?"+query.Encode(), nil)
	if err != nil {
		return nil, err
	}

	resp, err := w.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("web service request failed: %s", responseError(resp))
	}

	var payload any
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("web service returned an unreadable response: %w", err)
	}

	return extractRows(payload), nil
}
