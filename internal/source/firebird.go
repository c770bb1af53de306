package source

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/gsmtrack/backend/internal/template"

	// Firebird driver, registered as "firebirdsql"
	_ "github.com/nakagami/firebirdsql"
)

var ErrFirebirdDatabaseRequired = errors.New("the firebird settings do not contain a database path")

// Firebird reads transaction rows and schema metadata from a Firebird
// database described by the template's connection settings.
type Firebird struct {
	settings template.FirebirdSettings
}

// NewFirebird validates the settings and returns a source. No connection is
// opened yet; every operation opens and closes its own.
func NewFirebird(settings *template.FirebirdSettings) (*Firebird, error) {
	if settings == nil || strings.TrimSpace(settings.Database) == "" {
		return nil, ErrFirebirdDatabaseRequired
	}

	s := *settings
	if s.Host == "" {
		s.Host = "localhost"
	}
	if s.Port == 0 {
		s.Port = 3050
	}
	if s.User == "" {
		s.User = "SYSDBA"
	}
	if s.Charset == "" {
		s.Charset = template.CharsetUTF8
	}

	return &Firebird{settings: s}, nil
}

func (f *Firebird) dsn() string {
	s := f.settings
	return fmt.Sprintf("%s:%s@%s:%d/%s?charset=%s", s.User, s.Password, s.Host, s.Port, s.Database, s.Charset)
}

func (f *Firebird) open() (*sql.DB, error) {
	db, err := sql.Open("firebirdsql", f.dsn())
	if err != nil {
		return nil, fmt.Errorf("failed to open firebird connection: %w", err)
	}
	return db, nil
}

// Test verifies that the database is reachable and returns the user tables so
// the editor can offer them as source candidates.
func (f *Firebird) Test(ctx context.Context) ([]string, error) {
	db, err := f.open()
	if err != nil {
		return nil, err
	}
	defer db.Close()

	if err := db.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("firebird connection failed: %w", err)
	}

	return f.tables(ctx, db)
}

// Tables lists the user tables of the database.
func (f *Firebird) Tables(ctx context.Context) ([]string, error) {
	db, err := f.open()
	if err != nil {
		return nil, err
	}
	defer db.Close()

	return f.tables(ctx, db)
}

func (f *Firebird) tables(ctx context.Context, db *sql.DB) ([]string, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT TRIM(RDB$RELATION_NAME)
		FROM RDB$RELATIONS
		WHERE RDB$SYSTEM_FLAG = 0 AND RDB$VIEW_BLR IS NULL
		ORDER BY 1`)
	if err != nil {
		return nil, fmt.Errorf("failed to list firebird tables: %w", err)
	}
	defer rows.Close()

	tables := make([]string, 0)
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		tables = append(tables, name)
	}

	return tables, rows.Err()
}

// TableColumns lists the columns of a table in their definition order.
func (f *Firebird) TableColumns(ctx context.Context, table string) ([]string, error) {
	db, err := f.open()
	if err != nil {
		return nil, err
	}
	defer db.Close()

	rows, err := db.QueryContext(ctx, `
		SELECT TRIM(RDB$FIELD_NAME)
		FROM RDB$RELATION_FIELDS
		WHERE RDB$RELATION_NAME = ?
		ORDER BY RDB$FIELD_POSITION`, strings.ToUpper(strings.TrimSpace(table)))
	if err != nil {
		return nil, fmt.Errorf("failed to list columns of %s: %w", table, err)
	}
	defer rows.Close()

	columns := make([]string, 0)
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		columns = append(columns, name)
	}

	return columns, rows.Err()
}

// QueryColumns returns the result columns of an arbitrary SQL query without
// consuming its rows.
func (f *Firebird) QueryColumns(ctx context.Context, query string) ([]string, error) {
	db, err := f.open()
	if err != nil {
		return nil, err
	}
	defer db.Close()

	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query failed: %w", err)
	}
	defer rows.Close()

	return rows.Columns()
}

// Rows runs the query and returns all rows as column-name keyed maps, the
// shape the importer maps system fields onto.
func (f *Firebird) Rows(ctx context.Context, query string) ([]map[string]any, error) {
	db, err := f.open()
	if err != nil {
		return nil, err
	}
	defer db.Close()

	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query failed: %w", err)
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, err
	}

	var out []map[string]any
	for rows.Next() {
		values := make([]any, len(columns))
		ptrs := make([]any, len(columns))
		for i := range values {
			ptrs[i] = &values[i]
		}

		if err := rows.Scan(ptrs...); err != nil {
			return nil, err
		}

		row := make(map[string]any, len(columns))
		for i, col := range columns {
			if b, ok := values[i].([]byte); ok {
				row[col] = string(b)
			} else {
				row[col] = values[i]
			}
		}
		out = append(out, row)
	}

	return out, rows.Err()
}

// SelectQuery returns the SQL to read from the template's source: the raw
// source query when one is set, otherwise a full scan of the source table.
func SelectQuery(sourceQuery, sourceTable string) (string, error) {
	if q := strings.TrimSpace(sourceQuery); q != "" {
		return q, nil
	}
	if t := strings.TrimSpace(sourceTable); t != "" {
		return fmt.Sprintf("SELECT * FROM %s", t), nil
	}
	return "", errors.New("the template has neither a source query nor a source table")
}
