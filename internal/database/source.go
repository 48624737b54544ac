package database

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/lib/pq"

	"github.com/Capstone-E1/soilsense_backend/internal/services"
)

// wallClockLayout renders timestamp columns without an offset so the
// normalizer places them in the configured data timezone.
const wallClockLayout = "2006-01-02 15:04:05.999999999"

// TableSource reads the sensor table from a PostgreSQL table. Every column
// is returned, the normalizer picks the ones it needs by name.
type TableSource struct {
	db    *DB
	table string
}

// NewTableSource creates a source for the given table, optionally schema
// qualified ("public.dados_sensores").
func NewTableSource(db *DB, table string) *TableSource {
	return &TableSource{db: db, table: table}
}

// Describe identifies the source in logs and status output
func (s *TableSource) Describe() string {
	return "postgres:" + s.table
}

// ReadTable runs a full select over the table and converts every cell to text
func (s *TableSource) ReadTable(ctx context.Context) (*services.RawTable, error) {
	query := "SELECT * FROM " + quoteTable(s.table)

	rows, err := s.db.QueryxContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", s.table, err)
	}
	defer rows.Close()

	columns, err := rows.ColumnTypes()
	if err != nil {
		return nil, fmt.Errorf("column types for %s: %w", s.table, err)
	}

	table := &services.RawTable{Headers: make([]string, len(columns))}
	for i, col := range columns {
		table.Headers[i] = col.Name()
	}

	for rows.Next() {
		values, err := rows.SliceScan()
		if err != nil {
			return nil, fmt.Errorf("scan %s: %w", s.table, err)
		}
		row := make([]string, len(columns))
		for i, v := range values {
			row[i] = formatCell(v, columns[i].DatabaseTypeName())
		}
		table.Rows = append(table.Rows, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read %s: %w", s.table, err)
	}

	return table, nil
}

func quoteTable(name string) string {
	parts := strings.Split(name, ".")
	for i, p := range parts {
		parts[i] = pq.QuoteIdentifier(p)
	}
	return strings.Join(parts, ".")
}

// formatCell converts a scanned driver value to the text form the
// normalizer parses.
func formatCell(v any, dbType string) string {
	switch val := v.(type) {
	case nil:
		return ""
	case []byte:
		return string(val)
	case string:
		return val
	case time.Time:
		if dbType == "TIMESTAMPTZ" {
			return val.Format(time.RFC3339Nano)
		}
		return val.Format(wallClockLayout)
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(val), 'f', -1, 32)
	case int64:
		return strconv.FormatInt(val, 10)
	case bool:
		return strconv.FormatBool(val)
	default:
		return fmt.Sprint(val)
	}
}
