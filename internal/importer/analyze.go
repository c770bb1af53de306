package importer

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/gsmtrack/backend/internal/template"
	"github.com/xuri/excelize/v2"
	"golang.org/x/text/encoding/charmap"
)

var ErrUnsupportedFileType = errors.New("only .xlsx, .xls and .csv files are supported")

// Analysis is the result of inspecting an uploaded transaction file: the
// columns of the detected header row, a field mapping guessed from the
// column names, and the rows the editor should preset.
type Analysis struct {
	Columns      []string              `json:"columns"`
	FieldMapping template.FieldMapping `json:"field_mapping"`
	HeaderRow    int                   `json:"header_row"`
	DataStartRow int                   `json:"data_start_row"`
}

// Keywords matched against lowercased column names when guessing the mapping,
// checked per system field in SystemFields order. Russian first since that is
// what provider reports usually contain.
var fieldKeywords = map[string][]string{
	"user":         {"держатель", "водитель", "пользователь", "фио", "holder", "driver"},
	"card":         {"карт", "card"},
	"kazs":         {"азс", "казс", "станц", "терминал", "ткт", "station"},
	"date":         {"дата", "время", "date", "time"},
	"quantity":     {"кол-во", "колич", "литр", "объем", "объём", "qty", "quantity", "volume"},
	"fuel":         {"топлив", "гсм", "нефтепродукт", "fuel", "product"},
	"organization": {"организац", "контрагент", "клиент", "предприят", "company", "organization"},
}

// Analyze inspects an uploaded file and guesses header position and field
// mapping. The format is picked from the file name extension.
func Analyze(filename string, r io.Reader) (Analysis, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".xlsx", ".xls":
		return analyzeExcel(r)
	case ".csv", ".txt":
		return analyzeCSV(r)
	}
	return Analysis{}, ErrUnsupportedFileType
}

func analyzeExcel(r io.Reader) (Analysis, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return Analysis{}, fmt.Errorf("could not read the spreadsheet: %w", err)
	}
	defer f.Close()

	sheet := f.GetSheetName(0)
	rows, err := f.GetRows(sheet)
	if err != nil {
		return Analysis{}, fmt.Errorf("could not read sheet %q: %w", sheet, err)
	}

	return analyzeRows(rows), nil
}

func analyzeCSV(r io.Reader) (Analysis, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return Analysis{}, err
	}

	// Provider exports from Russian systems are frequently WIN1251 encoded
	if !utf8.Valid(raw) {
		decoded, err := charmap.Windows1251.NewDecoder().Bytes(raw)
		if err == nil {
			raw = decoded
		}
	}

	reader := csv.NewReader(bytes.NewReader(raw))
	reader.Comma = detectDelimiter(raw)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	var rows [][]string
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return Analysis{}, fmt.Errorf("could not read line in CSV: %w", err)
		}
		rows = append(rows, record)
	}

	return analyzeRows(rows), nil
}

// detectDelimiter picks the CSV delimiter from the first line: semicolon
// exports are the norm for Russian spreadsheets, comma is the fallback.
func detectDelimiter(raw []byte) rune {
	line := raw
	if idx := bytes.IndexByte(raw, '\n'); idx >= 0 {
		line = raw[:idx]
	}

	if bytes.Count(line, []byte{';'}) > bytes.Count(line, []byte{','}) {
		return ';'
	}
	return ','
}

func analyzeRows(rows [][]string) Analysis {
	header := findHeaderRow(rows)

	a := Analysis{
		Columns:      []string{},
		FieldMapping: template.FieldMapping{},
		HeaderRow:    header,
		DataStartRow: header + 1,
	}

	if header >= len(rows) {
		return a
	}

	for _, cell := range rows[header] {
		if name := strings.TrimSpace(cell); name != "" {
			a.Columns = append(a.Columns, name)
		}
	}

	a.FieldMapping = autoMap(a.Columns)
	return a
}

// findHeaderRow returns the first row that looks like a header: at least two
// non-empty cells and at least one cell matching a known field keyword. When
// nothing matches, the first row is assumed.
func findHeaderRow(rows [][]string) int {
	for i, row := range rows {
		filled := 0
		keyword := false

		for _, cell := range row {
			cell = strings.TrimSpace(cell)
			if cell == "" {
				continue
			}
			filled++

			if !keyword {
				lower := strings.ToLower(cell)
				for _, words := range fieldKeywords {
					for _, w := range words {
						if strings.Contains(lower, w) {
							keyword = true
							break
						}
					}
				}
			}
		}

		if filled >= 2 && keyword {
			return i
		}
	}

	return 0
}

// autoMap guesses the field mapping from column names. Each column is used at
// most once, system fields are filled in SystemFields order and the first
// matching column wins.
func autoMap(columns []string) template.FieldMapping {
	mapping := template.FieldMapping{}
	used := map[string]bool{}

	for _, field := range template.SystemFields {
		for _, column := range columns {
			if used[column] {
				continue
			}

			lower := strings.ToLower(column)
			for _, w := range fieldKeywords[field.Key] {
				if strings.Contains(lower, w) {
					mapping[field.Key] = column
					used[column] = true
					break
				}
			}

			if mapping[field.Key] != "" {
				break
			}
		}
	}

	return mapping
}
