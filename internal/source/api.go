package source

import (
	"bytes"
	"context"
	"crypto/md5"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/exp/slices"

	"github.com/gsmtrack/backend/internal/template"
)

var (
	ErrAPIBaseURLRequired = errors.New("the api settings do not contain a base url")
	ErrNoSampleData       = errors.New("the source returned no transactions to discover fields from")
)

// API reads transactions from a fuel-card provider's HTTP API. The request
// and authentication shape depends on the provider type.
type API struct {
	settings template.APISettings
	apiKey   string // gpn credential, shared with the outbound key slot
	client   *http.Client
}

// NewAPI builds a provider client from the template's connection settings.
func NewAPI(settings template.ConnectionSettings) (*API, error) {
	if settings.API == nil || strings.TrimSpace(settings.API.BaseURL) == "" {
		return nil, ErrAPIBaseURLRequired
	}

	return &API{
		settings: *settings.API,
		apiKey:   settings.APIKey,
		client:   &http.Client{Timeout: 60 * time.Second},
	}, nil
}

// Test performs a minimal authenticated request against the provider.
func (a *API) Test(ctx context.Context) error {
	_, err := a.fetch(ctx, time.Now().AddDate(0, 0, -1), time.Now())
	return err
}

// Fields discovers the field names the provider reports for a transaction by
// fetching a small recent sample and flattening the keys of the first row.
func (a *API) Fields(ctx context.Context) ([]string, error) {
	rows, err := a.fetch(ctx, time.Now().AddDate(0, 0, -7), time.Now())
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, ErrNoSampleData
	}

	return flattenKeys("", rows[0]), nil
}

// Fetch returns the provider's transactions for the date range as generic
// rows for the importer.
func (a *API) Fetch(ctx context.Context, from, to time.Time) ([]map[string]any, error) {
	return a.fetch(ctx, from, to)
}

func (a *API) fetch(ctx context.Context, from, to time.Time) ([]map[string]any, error) {
	switch a.settings.ProviderType {
	case template.ProviderRNCard:
		return a.fetchRNCard(ctx, from, to)
	case template.ProviderGPN:
		return a.fetchGPN(ctx, from, to)
	default:
		return a.fetchPetrolPlus(ctx, from, to)
	}
}

// fetchPetrolPlus reads transactions with a bearer token.
func (a *API) fetchPetrolPlus(ctx context.Context, from, to time.Time) ([]map[string]any, error) {
	endpoint := fmt.Sprintf("%s/transactions?dateFrom=%s&dateTo=%s",
		strings.TrimRight(a.settings.BaseURL, "/"),
		from.Format("2006-01-02"), to.Format("2006-01-02"))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+a.settings.APIToken)

	return a.do(req)
}

// fetchRNCard logs in first, optionally hashing the password with MD5, then
// reads the contract's transactions with the session token.
func (a *API) fetchRNCard(ctx context.Context, from, to time.Time) ([]map[string]any, error) {
	password := a.settings.Password
	if a.settings.UseMD5Hash {
		password = fmt.Sprintf("%x", md5.Sum([]byte(password)))
	}

	body, err := json.Marshal(map[string]string{
		"login":    a.settings.Login,
		"password": password,
	})
	if err != nil {
		return nil, err
	}

	loginURL := strings.TrimRight(a.settings.BaseURL, "/") + "/login"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, loginURL, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := a.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("provider login failed: %s", responseError(resp))
	}

	var login struct {
		Token string `json:"token"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&login); err != nil {
		return nil, fmt.Errorf("provider login returned an unreadable response: %w", err)
	}

	query := url.Values{}
	query.Set("contract", a.settings.Contract)
	query.Set("begin", from.Format("2006-01-02"))
	query.Set("end", to.Format("2006-01-02"))

	txURL := strings.TrimRight(a.settings.BaseURL, "/") + "/transactions?" + query.Encode()
	req, err = http.NewRequestWithContext(ctx, http.MethodGet, txURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+login.Token)

	return a.do(req)
}

// fetchGPN authenticates with the api key header plus login and password.
func (a *API) fetchGPN(ctx context.Context, from, to time.Time) ([]map[string]any, error) {
	query := url.Values{}
	query.Set("date_from", from.Format("2006-01-02"))
	query.Set("date_to", to.Format("2006-01-02"))

	endpoint := strings.TrimRight(a.settings.BaseURL, "/") + "/transactions?" + query.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("api_key", a.apiKey)
	req.SetBasicAuth(a.settings.Login, a.settings.Password)

	return a.do(req)
}

func (a *API) do(req *http.Request) ([]map[string]any, error) {
	resp, err := a.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("provider request failed: %s", responseError(resp))
	}

	var payload any
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("provider returned an unreadable response: %w", err)
	}

	return extractRows(payload), nil
}

// responseError extracts a human readable message from an error response:
// the body's detail or message field when present, the raw text otherwise, and
// the status line as a last resort.
func responseError(resp *http.Response) string {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 64*1024))

	var structured struct {
		Detail  string `json:"detail"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &structured); err == nil {
		if structured.Detail != "" {
			return structured.Detail
		}
		if structured.Message != "" {
			return structured.Message
		}
	}

	if text := strings.TrimSpace(string(body)); text != "" {
		return text
	}

	return resp.Status
}

// extractRows digs the transaction list out of a provider response: either a
// top-level array or an array under one of the usual wrapper keys.
func extractRows(payload any) []map[string]any {
	switch v := payload.(type) {
	case []any:
		return toRows(v)
	case map[string]any:
		for _, key := range []string{"transactions", "items", "data", "result", "rows"} {
			if list, ok := v[key].([]any); ok {
				return toRows(list)
			}
		}
	}
	return []map[string]any{}
}

func toRows(list []any) []map[string]any {
	rows := make([]map[string]any, 0, len(list))
	for _, item := range list {
		if row, ok := item.(map[string]any); ok {
			rows = append(rows, row)
		}
	}
	return rows
}

// flattenKeys lists the field names of a row, flattening nested objects into
// dot paths ("card.number"). Order is sorted for stable output.
func flattenKeys(prefix string, row map[string]any) []string {
	var keys []string
	for k, v := range row {
		name := k
		if prefix != "" {
			name = prefix + "." + k
		}

		if nested, ok := v.(map[string]any); ok {
			keys = append(keys, flattenKeys(name, nested)...)
			continue
		}
		keys = append(keys, name)
	}

	slices.Sort(keys)
	return keys
}
