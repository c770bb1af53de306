package template

// SystemField describes one of the abstract fields transactions are imported
// into. The set is closed: sources are mapped onto these and nothing else.
type SystemField struct {
	Key      string
	Label    string // Russian label shown to operators and used in validation messages
	Required bool
}

// SystemFields lists all system fields in display order.
var SystemFields = []SystemField{
	{Key: "user", Label: "Пользователь"},
	{Key: "card", Label: "Номер карты"},
	{Key: "kazs", Label: "АЗС"},
	{Key: "date", Label: "Дата и время", Required: true},
	{Key: "quantity", Label: "Количество", Required: true},
	{Key: "fuel", Label: "Вид топлива", Required: true},
	{Key: "organization", Label: "Организация"},
}

// SystemFieldLabel returns the Russian label for a system field key, or the
// key itself when it is unknown.
func SystemFieldLabel(key string) string {
	for _, f := range SystemFields {
		if f.Key == key {
			return f.Label
		}
	}
	return key
}

// FieldMapping associates system field keys with source field identifiers
// (file column names, database column names or API field names). An empty
// value means the key is present but effectively unmapped.
type FieldMapping map[string]string

// Mapping is the editor state for a field mapping. Besides the values it
// tracks which entries were filled in by file analysis rather than typed by
// the operator. The provenance is presentation-only and never persisted.
type Mapping struct {
	values FieldMapping
	auto   map[string]bool
}

// NewMapping returns editor state seeded with the given values, all of them
// considered manual.
func NewMapping(values FieldMapping) *Mapping {
	m := &Mapping{
		values: FieldMapping{},
		auto:   map[string]bool{},
	}
	for k, v := range values {
		m.values[k] = v
	}
	return m
}

// Set assigns a source identifier to a system field. Setting the empty string
// keeps the key present but unmapped. Any manual edit clears the auto flag,
// even when the typed value happens to match the auto-mapped one.
func (m *Mapping) Set(key, source string) {
	m.values[key] = source
	delete(m.auto, key)
}

// ApplyAnalysis merges the mapping returned by a file analysis. Analysis
// values win over existing manual values for shared keys: re-analyzing a file
// reflects the current structure of the source and is treated as the source
// of truth.
func (m *Mapping) ApplyAnalysis(auto FieldMapping) {
	for k, v := range auto {
		m.values[k] = v
		m.auto[k] = true
	}
}

// IsAuto reports whether the value for key came from the last file analysis.
func (m *Mapping) IsAuto(key string) bool {
	return m.auto[key]
}

// Values returns a copy of the current mapping.
func (m *Mapping) Values() FieldMapping {
	out := FieldMapping{}
	for k, v := range m.values {
		out[k] = v
	}
	return out
}

// ValidateRequired returns the Russian labels of all required system fields
// that have no mapped source, in SystemFields order.
func ValidateRequired(mapping FieldMapping) []string {
	var missing []string
	for _, f := range SystemFields {
		if f.Required && mapping[f.Key] == "" {
			missing = append(missing, f.Label)
		}
	}
	return missing
}
