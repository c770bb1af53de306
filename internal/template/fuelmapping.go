package template

import (
	"bytes"
	"encoding/json"
	"errors"
	"strconv"
	"strings"
)

// FuelMappingEntry is one line of the fuel-type mapping editor: a raw fuel
// label as reported by the source and the normalized label it maps to.
type FuelMappingEntry struct {
	Key   string `json:"key" example:"Дизельное топливо"`
	Value string `json:"value" example:"ДТ"`
}

// ErrFuelMappingNotObject is returned when fuel mapping text parses as JSON
// but is not an object.
var ErrFuelMappingNotObject = errors.New("сопоставление видов топлива должно быть JSON-объектом")

// EntriesToText serializes mapping entries to JSON text with stable 2-space
// indentation, preserving entry order. Entries with an empty key or value are
// skipped.
func EntriesToText(entries []FuelMappingEntry) string {
	kept := make([]FuelMappingEntry, 0, len(entries))
	for _, e := range entries {
		if e.Key != "" && e.Value != "" {
			kept = append(kept, e)
		}
	}

	if len(kept) == 0 {
		return "{}"
	}

	// Built by hand because encoding/json does not keep map order.
	var b bytes.Buffer
	b.WriteString("{\n")
	for i, e := range kept {
		k, _ := json.Marshal(e.Key)
		v, _ := json.Marshal(e.Value)
		b.WriteString("  ")
		b.Write(k)
		b.WriteString(": ")
		b.Write(v)
		if i < len(kept)-1 {
			b.WriteString(",")
		}
		b.WriteString("\n")
	}
	b.WriteString("}")
	return b.String()
}

// TextToEntries parses JSON text into mapping entries, preserving the key
// order of the object. The second return value reports whether the text was
// valid: when it is false the caller keeps its current entries, so an
// operator editing the text never loses state mid-edit.
func TextToEntries(text string) ([]FuelMappingEntry, bool) {
	if strings.TrimSpace(text) == "" {
		return []FuelMappingEntry{}, true
	}

	dec := json.NewDecoder(strings.NewReader(text))
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return nil, false
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, false
	}

	// Walking the token stream keeps the object key order, which a map
	// round-trip would lose.
	var entries []FuelMappingEntry
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return nil, false
		}
		key, ok := keyTok.(string)
		if !ok {
			return nil, false
		}

		valTok, err := dec.Token()
		if err != nil {
			return nil, false
		}

		// Scalar values are coerced to their text form, nested
		// structures make the whole text invalid.
		var val string
		switch v := valTok.(type) {
		case string:
			val = v
		case json.Number:
			val = v.String()
		case bool:
			val = strconv.FormatBool(v)
		case nil:
			val = ""
		default:
			return nil, false
		}

		entries = append(entries, FuelMappingEntry{Key: key, Value: val})
	}

	if _, err := dec.Token(); err != nil {
		return nil, false
	}

	if entries == nil {
		entries = []FuelMappingEntry{}
	}
	return entries, true
}

// ValidateFuelMapping checks user-entered fuel mapping text. Blank text is
// valid since the mapping is optional; anything else must parse as a JSON
// object with string keys and values.
func ValidateFuelMapping(text string) error {
	if strings.TrimSpace(text) == "" {
		return nil
	}

	var probe any
	if err := json.Unmarshal([]byte(text), &probe); err != nil {
		return ErrFuelMappingNotObject
	}
	if _, ok := probe.(map[string]any); !ok {
		return ErrFuelMappingNotObject
	}

	return nil
}

// ParseFuelMapping converts validated fuel mapping text into the lookup map
// used when importing transactions. Invalid or blank text yields an empty map.
func ParseFuelMapping(text string) map[string]string {
	out := map[string]string{}
	entries, ok := TextToEntries(text)
	if !ok {
		return out
	}
	for _, e := range entries {
		out[e.Key] = e.Value
	}
	return out
}
