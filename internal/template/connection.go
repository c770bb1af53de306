package template

import (
	"encoding/json"
	"strconv"
	"strings"
)

// ConnectionType determines which ConnectionSettings variant a template uses
// and which of its source fields are meaningful.
//
// swagger:enum ConnectionType
type ConnectionType string

const (
	ConnectionFile     ConnectionType = "file"
	ConnectionFirebird ConnectionType = "firebird"
	ConnectionAPI      ConnectionType = "api"
	ConnectionWeb      ConnectionType = "web"
)

// Valid reports whether the connection type is one of the known variants.
func (t ConnectionType) Valid() bool {
	switch t {
	case ConnectionFile, ConnectionFirebird, ConnectionAPI, ConnectionWeb:
		return true
	}
	return false
}

// Remote reports whether templates of this type read from a live source and
// therefore may carry source_table/source_query and auto-load configuration.
func (t ConnectionType) Remote() bool {
	return t == ConnectionFirebird || t == ConnectionAPI || t == ConnectionWeb
}

// Charset is the character set used when talking to a Firebird database.
//
// swagger:enum Charset
type Charset string

const (
	CharsetUTF8    Charset = "UTF8"
	CharsetWIN1251 Charset = "WIN1251"
	CharsetWIN1252 Charset = "WIN1252"
)

// ProviderType identifies a supported fuel-card provider API.
//
// swagger:enum ProviderType
type ProviderType string

const (
	ProviderPetrolPlus ProviderType = "petrolplus"
	ProviderRNCard     ProviderType = "rncard"
	ProviderGPN        ProviderType = "gpn"
)

var defaultBaseURLs = map[ProviderType]string{
	ProviderPetrolPlus: "https://online.petrolplus.ru/api/public-api/v2",
	ProviderRNCard:     "https://lkapi.rn-card.ru/api/emv",
	ProviderGPN:        "https://api.opti-24.com/vip/v1",
}

// DefaultBaseURL returns the provider-specific default API endpoint.
func DefaultBaseURL(p ProviderType) string {
	return defaultBaseURLs[p]
}

// FirebirdSettings holds the parameters to reach a Firebird database.
type FirebirdSettings struct {
	Host     string  `json:"host" example:"localhost"`
	Port     int     `json:"port" example:"3050"`
	Database string  `json:"database" example:"C:\\fuel\\TRANSACTIONS.FDB"` // Path or alias of the database, required
	User     string  `json:"user" example:"SYSDBA"`
	Password string  `json:"password"`
	Charset  Charset `json:"charset" example:"UTF8"`
}

// APISettings holds the credentials for a provider API.
//
// Which of the credential fields are required depends on ProviderType:
// petrolplus uses APIToken, rncard uses Login/Password/Contract and gpn uses
// the outbound key slot on ConnectionSettings together with Login/Password.
type APISettings struct {
	ProviderType ProviderType `json:"provider_type" example:"petrolplus"`
	BaseURL      string       `json:"base_url" example:"https://online.petrolplus.ru/api/public-api/v2"`
	Currency     string       `json:"currency" example:"RUB"`
	APIToken     string       `json:"api_token,omitempty"`
	Login        string       `json:"login,omitempty"`
	Password     string       `json:"password,omitempty"`
	Contract     string       `json:"contract,omitempty"`
	UseMD5Hash   bool         `json:"use_md5_hash"` // rncard only: send MD5 of the password instead of plain text
}

// WebSettings holds the parameters for a generic web-service source that is
// authenticated with a TLS client certificate instead of credentials.
type WebSettings struct {
	BaseURL     string  `json:"base_url"`
	Currency    string  `json:"currency" example:"RUB"`
	Certificate string  `json:"certificate"` // PEM bundle with certificate and key
	POSCode     *int    `json:"pos_code"`
	Endpoint    *string `json:"endpoint"`
}

// ConnectionSettings describes how to reach a transaction source. It is a
// tagged union: exactly the variant matching Type is set, the others are nil.
//
// APIKey is the outbound API key exposed to the provider-facing endpoint. It
// is unrelated to source ingestion and survives connection type switches. For
// the gpn provider the same slot doubles as the required inbound credential,
// matching the persisted format.
type ConnectionSettings struct {
	Type   ConnectionType `json:"-"`
	APIKey string         `json:"api_key,omitempty"`

	Firebird *FirebirdSettings `json:"-"`
	API      *APISettings      `json:"-"`
	Web      *WebSettings      `json:"-"`
}

// DefaultsFor returns the default settings for the target connection type,
// carrying over a previously entered outbound API key. The caller replaces its
// stored settings with the result atomically so that no field from a previous
// variant leaks into the new one.
func DefaultsFor(t ConnectionType, previousAPIKey string) ConnectionSettings {
	s := ConnectionSettings{Type: t, APIKey: previousAPIKey}

	switch t {
	case ConnectionFirebird:
		s.Firebird = &FirebirdSettings{
			Host:    "localhost",
			Port:    3050,
			User:    "SYSDBA",
			Charset: CharsetUTF8,
		}
	case ConnectionAPI:
		s.API = &APISettings{
			ProviderType: ProviderPetrolPlus,
			BaseURL:      DefaultBaseURL(ProviderPetrolPlus),
			Currency:     "RUB",
			UseMD5Hash:   true,
		}
	case ConnectionWeb:
		s.Web = &WebSettings{
			Currency: "RUB",
		}
	}

	return s
}

// MarshalJSON flattens the active variant and the outbound API key into a
// single object, which is the persisted wire format.
func (s ConnectionSettings) MarshalJSON() ([]byte, error) {
	flat := map[string]any{}

	var variant any
	switch {
	case s.Firebird != nil:
		variant = s.Firebird
	case s.API != nil:
		variant = s.API
	case s.Web != nil:
		variant = s.Web
	}

	if variant != nil {
		b, err := json.Marshal(variant)
		if err != nil {
			return nil, err
		}
		if err := json.Unmarshal(b, &flat); err != nil {
			return nil, err
		}
	}

	if s.APIKey != "" {
		flat["api_key"] = s.APIKey
	}

	return json.Marshal(flat)
}

// Alternate spellings that have been observed in persisted settings. They are
// collapsed into the canonical key at the parse boundary and never propagate
// past it.
var legacyKeys = map[string][]string{
	"api_key":     {"api_key", "apiKey", "api_klyuch"},
	"certificate": {"certificate", "cert"},
}

// Parse interprets persisted connection settings for the given type.
//
// raw may be nil, a JSON string or an already decoded object. On any parse
// failure the variant defaults are returned, never an error: a template with
// broken settings must still be loadable so the operator can fix it.
func Parse(raw any, t ConnectionType) ConnectionSettings {
	m := rawObject(raw)
	if m == nil {
		return DefaultsFor(t, "")
	}

	s := DefaultsFor(t, stringField(m, legacyKeys["api_key"]...))

	switch t {
	case ConnectionFirebird:
		fb := s.Firebird
		if v := stringField(m, "host"); v != "" {
			fb.Host = v
		}
		if v, ok := intField(m, "port"); ok {
			fb.Port = v
		}
		fb.Database = stringField(m, "database")
		if v := stringField(m, "user"); v != "" {
			fb.User = v
		}
		fb.Password = stringField(m, "password")
		switch Charset(strings.ToUpper(stringField(m, "charset"))) {
		case CharsetWIN1251:
			fb.Charset = CharsetWIN1251
		case CharsetWIN1252:
			fb.Charset = CharsetWIN1252
		}
	case ConnectionAPI:
		api := s.API
		switch ProviderType(stringField(m, "provider_type")) {
		case ProviderRNCard:
			api.ProviderType = ProviderRNCard
		case ProviderGPN:
			api.ProviderType = ProviderGPN
		}
		api.BaseURL = stringField(m, "base_url")
		if api.BaseURL == "" {
			api.BaseURL = DefaultBaseURL(api.ProviderType)
		}
		if v := stringField(m, "currency"); v != "" {
			api.Currency = v
		}
		api.APIToken = stringField(m, "api_token")
		api.Login = stringField(m, "login")
		api.Password = stringField(m, "password")
		api.Contract = stringField(m, "contract")
		if v, ok := boolField(m, "use_md5_hash"); ok {
			api.UseMD5Hash = v
		}
	case ConnectionWeb:
		web := s.Web
		web.BaseURL = stringField(m, "base_url")
		if v := stringField(m, "currency"); v != "" {
			web.Currency = v
		}
		web.Certificate = stringField(m, legacyKeys["certificate"]...)
		if v, ok := intField(m, "pos_code"); ok {
			web.POSCode = &v
		}
		if v := stringField(m, "endpoint"); v != "" {
			web.Endpoint = &v
		}
	}

	return s
}

// rawObject converts the accepted input shapes into a generic object,
// returning nil when there is nothing usable.
func rawObject(raw any) map[string]any {
	switch v := raw.(type) {
	case nil:
		return nil
	case map[string]any:
		return v
	case string:
		if strings.TrimSpace(v) == "" {
			return nil
		}
		var m map[string]any
		if err := json.Unmarshal([]byte(v), &m); err != nil {
			return nil
		}
		return m
	case []byte:
		var m map[string]any
		if err := json.Unmarshal(v, &m); err != nil {
			return nil
		}
		return m
	case json.RawMessage:
		return rawObject([]byte(v))
	}
	return nil
}

// stringField returns the first non-empty string value found under any of the
// given keys.
func stringField(m map[string]any, keys ...string) string {
	for _, k := range keys {
		if v, ok := m[k].(string); ok && v != "" {
			return v
		}
	}
	return ""
}

// intField reads an integer that may be persisted as a JSON number or string.
func intField(m map[string]any, key string) (int, bool) {
	switch v := m[key].(type) {
	case float64:
		return int(v), true
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return 0, false
		}
		return n, true
	}
	return 0, false
}

func boolField(m map[string]any, key string) (bool, bool) {
	v, ok := m[key].(bool)
	return v, ok
}
