package services

import (
	"math"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/Capstone-E1/soilsense_backend/internal/models"
)

// Schema names the source columns that map onto the canonical reading fields
type Schema struct {
	TimestampColumn string
	DepthColumns    [models.DepthCount]string
}

// DefaultSchema is the layout of the deployed sensor spreadsheet
func DefaultSchema() Schema {
	return Schema{
		TimestampColumn: "data_hora",
		DepthColumns: [models.DepthCount]string{
			"profundidade 0,3 m",
			"profundidade 0,8 m",
			"profundidade 1,5 m",
			"profundidade 2,0 m",
			"profundidade 2,5 m",
		},
	}
}

// timestampLayouts are tried in order for text timestamps. Layouts without an
// offset are interpreted in the normalizer's location.
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05.999999999",
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04",
	"2006-01-02T15:04",
	"02/01/2006 15:04:05",
	"02/01/2006 15:04",
	"02/01/2006",
	"2006-01-02",
}

// Normalizer converts a RawTable into time-ordered readings
type Normalizer struct {
	schema   Schema
	location *time.Location
}

// NewNormalizer creates a normalizer; a nil location means UTC
func NewNormalizer(schema Schema, location *time.Location) *Normalizer {
	if location == nil {
		location = time.UTC
	}
	return &Normalizer{schema: schema, location: location}
}

// Normalize projects the table onto the canonical columns, parses every
// row and sorts the result by timestamp (stable, so ties keep source order).
// Any invalid cell fails the whole table with a *models.SchemaError.
func (n *Normalizer) Normalize(table *RawTable) ([]models.Reading, error) {
	if table == nil || len(table.Headers) == 0 {
		return nil, &models.SchemaError{Kind: models.SchemaEmptyTable}
	}

	index := make(map[string]int, len(table.Headers))
	for i, header := range table.Headers {
		if _, seen := index[header]; !seen {
			index[header] = i
		}
	}

	tsCol, ok := index[n.schema.TimestampColumn]
	if !ok {
		return nil, &models.SchemaError{Kind: models.SchemaMissingColumn, Column: n.schema.TimestampColumn}
	}
	var depthCols [models.DepthCount]int
	for i, name := range n.schema.DepthColumns {
		col, ok := index[name]
		if !ok {
			return nil, &models.SchemaError{Kind: models.SchemaMissingColumn, Column: name}
		}
		depthCols[i] = col
	}

	readings := make([]models.Reading, 0, len(table.Rows))
	for i, row := range table.Rows {
		if isBlankRow(row) {
			continue
		}
		rowNum := i + 1

		value := cell(row, tsCol)
		ts, err := n.parseTimestamp(value, table.Date1904)
		if err != nil {
			return nil, &models.SchemaError{
				Kind:   models.SchemaUnparseableTimestamp,
				Column: n.schema.TimestampColumn,
				Row:    rowNum,
				Value:  value,
				Err:    err,
			}
		}

		reading := models.Reading{Timestamp: ts}
		for d, col := range depthCols {
			raw := cell(row, col)
			v, err := parseHumidity(raw)
			if err != nil {
				return nil, &models.SchemaError{
					Kind:   models.SchemaInvalidDepthValue,
					Column: n.schema.DepthColumns[d],
					Row:    rowNum,
					Value:  raw,
					Err:    err,
				}
			}
			reading.Depths[d] = v
		}
		readings = append(readings, reading)
	}

	slices.SortStableFunc(readings, func(a, b models.Reading) int {
		return a.Timestamp.Compare(b.Timestamp)
	})
	return readings, nil
}

// parseTimestamp accepts spreadsheet serial dates and the text layouts above
func (n *Normalizer) parseTimestamp(value string, date1904 bool) (time.Time, error) {
	if value == "" {
		return time.Time{}, strconv.ErrSyntax
	}

	if serial, err := strconv.ParseFloat(value, 64); err == nil {
		if math.IsNaN(serial) || math.IsInf(serial, 0) || serial < 0 {
			return time.Time{}, strconv.ErrRange
		}
		t, err := excelize.ExcelDateToTime(serial, date1904)
		if err != nil {
			return time.Time{}, err
		}
		t = t.Round(time.Millisecond)
		return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), n.location), nil
	}

	var lastErr error
	for _, layout := range timestampLayouts {
		t, err := time.ParseInLocation(layout, value, n.location)
		if err == nil {
			return t, nil
		}
		lastErr = err
	}
	return time.Time{}, lastErr
}

// parseHumidity parses a percentage with either '.' or ',' as decimal mark
func parseHumidity(value string) (float64, error) {
	if value == "" {
		return 0, strconv.ErrSyntax
	}
	if !strings.Contains(value, ".") {
		value = strings.Replace(value, ",", ".", 1)
	}
	v, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, strconv.ErrRange
	}
	return v, nil
}

func cell(row []string, i int) string {
	if i < len(row) {
		return row[i]
	}
	return ""
}

func isBlankRow(row []string) bool {
	for _, c := range row {
		if c != "" {
			return false
		}
	}
	return true
}
