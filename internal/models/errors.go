package models

import (
	"errors"
	"fmt"
)

// ErrNoData is returned by the cycling feed when no dataset is loaded
var ErrNoData = errors.New("no data available")

// SchemaErrorKind classifies why a table could not be normalized
type SchemaErrorKind string

const (
	SchemaMissingColumn        SchemaErrorKind = "missing_column"
	SchemaUnparseableTimestamp SchemaErrorKind = "unparseable_timestamp"
	SchemaInvalidDepthValue    SchemaErrorKind = "invalid_depth_value"
	SchemaEmptyTable           SchemaErrorKind = "empty_table"
)

// SchemaError reports a source table that does not match the expected layout.
// Row is the 1-based data row (0 when the error is about the header).
type SchemaError struct {
	Kind   SchemaErrorKind
	Column string
	Row    int
	Value  string
	Err    error
}

func (e *SchemaError) Error() string {
	switch e.Kind {
	case SchemaMissingColumn:
		return fmt.Sprintf("schema: expected column %q not found", e.Column)
	case SchemaUnparseableTimestamp:
		return fmt.Sprintf("schema: row %d: cannot parse timestamp %q in column %q", e.Row, e.Value, e.Column)
	case SchemaInvalidDepthValue:
		return fmt.Sprintf("schema: row %d: invalid humidity value %q in column %q", e.Row, e.Value, e.Column)
	case SchemaEmptyTable:
		return "schema: table has no header row"
	default:
		return fmt.Sprintf("schema: %s", e.Kind)
	}
}

func (e *SchemaError) Unwrap() error {
	return e.Err
}

// IndexError is returned when a dataset position outside [0, Size) is requested
type IndexError struct {
	Index int
	Size  int
}

func (e *IndexError) Error() string {
	return fmt.Sprintf("index %d out of range for dataset of size %d", e.Index, e.Size)
}
