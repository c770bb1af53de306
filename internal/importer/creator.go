package importer

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gsmtrack/backend/internal/importer/helpers"
	"github.com/gsmtrack/backend/internal/models"
	"github.com/ryanuber/go-glob"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// LoadResult sums up one load run.
type LoadResult struct {
	Created  int      `json:"transactions_created"`
	Skipped  int      `json:"transactions_skipped"`
	Warnings []string `json:"validation_warnings,omitempty"`
}

// Creator turns source rows into transactions for one template. Rows are
// mapped through the template's field mapping, fuel labels are normalized
// through its fuel type mapping, and duplicates are skipped by import hash.
type Creator struct {
	Template models.Template

	// Optional date window, applied to the mapped transaction date
	DateFrom time.Time
	DateTo   time.Time

	// Optional card number filters; glob patterns, a row passes when any
	// pattern matches
	CardPatterns []string
}

// Date layouts seen in provider exports and Firebird columns.
var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
	"02.01.2006 15:04:05",
	"02.01.2006 15:04",
	"02.01.2006",
}

// Load maps all rows and creates the resulting transactions. Rows that
// cannot be mapped produce a warning and are counted as skipped; duplicates
// and filtered rows are skipped silently.
func (c Creator) Load(db *gorm.DB, rows []map[string]any) (LoadResult, error) {
	result := LoadResult{Warnings: []string{}}
	mapping := c.Template.FieldMapping

	for i, row := range rows {
		tx, err := c.mapRow(row)
		if err != nil {
			result.Skipped++
			result.Warnings = append(result.Warnings, fmt.Sprintf("строка %d: %v", i+1, err))
			continue
		}

		if !c.matchesFilters(tx) {
			result.Skipped++
			continue
		}

		tx.ImportHash = c.rowHash(row, mapping)

		var count int64
		err = db.Model(&models.Transaction{}).
			Where(&models.Transaction{ImportHash: tx.ImportHash, ProviderID: c.Template.ProviderID}).
			Count(&count).Error
		if err != nil {
			return result, err
		}
		if count > 0 {
			result.Skipped++
			continue
		}

		c.linkVehicle(db, &tx)

		if err := db.Create(&tx).Error; err != nil {
			return result, err
		}
		result.Created++
	}

	return result, nil
}

// mapRow applies the field mapping to one source row.
func (c Creator) mapRow(row map[string]any) (models.Transaction, error) {
	mapping := c.Template.FieldMapping

	rawDate := stringValue(lookup(row, mapping["date"]))
	if rawDate == "" {
		return models.Transaction{}, fmt.Errorf("нет значения в поле даты (%s)", mapping["date"])
	}

	date, err := parseDate(rawDate)
	if err != nil {
		return models.Transaction{}, fmt.Errorf("не удалось разобрать дату %q", rawDate)
	}

	rawQuantity := stringValue(lookup(row, mapping["quantity"]))
	quantity, err := parseQuantity(rawQuantity)
	if err != nil {
		return models.Transaction{}, fmt.Errorf("не удалось разобрать количество %q", rawQuantity)
	}

	fuel := stringValue(lookup(row, mapping["fuel"]))
	if normalized, ok := c.Template.FuelTypeMapping[fuel]; ok {
		fuel = normalized
	}

	templateID := c.Template.ID

	return models.Transaction{
		ProviderID:   c.Template.ProviderID,
		TemplateID:   &templateID,
		Date:         date,
		Quantity:     quantity,
		FuelType:     fuel,
		CardNumber:   stringValue(lookup(row, mapping["card"])),
		CardHolder:   stringValue(lookup(row, mapping["user"])),
		Station:      stringValue(lookup(row, mapping["kazs"])),
		Organization: stringValue(lookup(row, mapping["organization"])),
	}, nil
}

func (c Creator) matchesFilters(tx models.Transaction) bool {
	if !c.DateFrom.IsZero() && tx.Date.Before(c.DateFrom) {
		return false
	}
	if !c.DateTo.IsZero() && tx.Date.After(c.DateTo) {
		return false
	}

	if len(c.CardPatterns) == 0 {
		return true
	}
	for _, pattern := range c.CardPatterns {
		if glob.Glob(pattern, tx.CardNumber) {
			return true
		}
	}
	return false
}

// rowHash builds the duplicate-detection hash from the mapped values of the
// row, keyed in a stable order, so re-importing the same source data is
// idempotent.
func (c Creator) rowHash(row map[string]any, mapping map[string]string) string {
	keys := make([]string, 0, len(mapping))
	for k, source := range mapping {
		if source != "" {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys)+1)
	parts = append(parts, c.Template.ProviderID.String())
	for _, k := range keys {
		parts = append(parts, stringValue(lookup(row, mapping[k])))
	}

	return helpers.Sha256String(strings.Join(parts, "|"))
}

// linkVehicle attaches the vehicle whose fuel card matches the transaction,
// if there is exactly one.
func (c Creator) linkVehicle(db *gorm.DB, tx *models.Transaction) {
	if tx.CardNumber == "" {
		return
	}

	var vehicles []models.Vehicle
	err := db.Where(&models.Vehicle{CardNumber: tx.CardNumber}).Limit(2).Find(&vehicles).Error
	if err != nil || len(vehicles) != 1 {
		return
	}

	if vehicles[0].ID != uuid.Nil {
		id := vehicles[0].ID
		tx.VehicleID = &id
	}
}

// lookup reads a value from a row. Dot paths descend into nested objects, the
// shape API sources produce ("card.number").
func lookup(row map[string]any, field string) any {
	if field == "" {
		return nil
	}

	if v, ok := row[field]; ok {
		return v
	}

	parts := strings.Split(field, ".")
	var current any = row
	for _, part := range parts {
		m, ok := current.(map[string]any)
		if !ok {
			return nil
		}
		current, ok = m[part]
		if !ok {
			return nil
		}
	}
	return current
}

func stringValue(v any) string {
	switch value := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(value)
	case float64:
		return strings.TrimRight(strings.TrimRight(fmt.Sprintf("%f", value), "0"), ".")
	default:
		return strings.TrimSpace(fmt.Sprint(value))
	}
}

func parseDate(raw string) (time.Time, error) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unsupported date format: %s", raw)
}

// parseQuantity accepts both dot and comma decimal separators.
func parseQuantity(raw string) (decimal.Decimal, error) {
	raw = strings.ReplaceAll(strings.ReplaceAll(raw, " ", ""), ",", ".")
	return decimal.NewFromString(raw)
}
