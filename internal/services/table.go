package services

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"
)

// ErrSourceNotFound is returned when the configured table file does not exist
var ErrSourceNotFound = errors.New("table source not found")

// RawTable is an untyped table as read from the source: a header row plus
// data rows, every cell as text. Rows may be shorter than Headers.
type RawTable struct {
	Headers []string
	Rows    [][]string

	// Date1904 is set when serial dates in the table use the 1904 epoch
	Date1904 bool
}

// TableSource produces the raw table the dataset is built from
type TableSource interface {
	ReadTable(ctx context.Context) (*RawTable, error)
	Describe() string
}

// FileSource reads a spreadsheet (.xlsx/.xlsm) or .csv file from disk
type FileSource struct {
	path  string
	sheet string
}

// NewFileSource creates a file table source. An empty sheet selects the first
// sheet of the workbook; it is ignored for CSV files.
func NewFileSource(path, sheet string) *FileSource {
	return &FileSource{path: path, sheet: sheet}
}

// Describe identifies the source in logs and status output
func (s *FileSource) Describe() string {
	if s.sheet != "" {
		return fmt.Sprintf("file:%s#%s", s.path, s.sheet)
	}
	return "file:" + s.path
}

// ReadTable reads the whole file into memory
func (s *FileSource) ReadTable(ctx context.Context) (*RawTable, error) {
	if _, err := os.Stat(s.path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrSourceNotFound, s.path)
		}
		return nil, fmt.Errorf("stat %s: %w", s.path, err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	switch strings.ToLower(filepath.Ext(s.path)) {
	case ".csv":
		return s.readCSV()
	case ".xlsx", ".xlsm":
		return s.readWorkbook()
	default:
		return nil, fmt.Errorf("unsupported table file type %q", filepath.Ext(s.path))
	}
}

// readWorkbook reads raw cell values so date cells arrive as serial numbers
// regardless of the display format of the sheet.
func (s *FileSource) readWorkbook() (*RawTable, error) {
	start := time.Now()
	f, err := excelize.OpenFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer func() {
		if err := f.Close(); err != nil {
			slog.Warn("close workbook", "path", s.path, "error", err)
		}
	}()

	sheet := s.sheet
	if sheet == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return nil, fmt.Errorf("workbook %s has no sheets", s.path)
		}
		sheet = sheets[0]
	}

	rows, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %q: %w", sheet, err)
	}

	date1904 := false
	if props, err := f.GetWorkbookProps(); err == nil && props.Date1904 != nil {
		date1904 = *props.Date1904
	}

	slog.Debug("workbook read", "path", s.path, "sheet", sheet, "rows", len(rows), "elapsed", time.Since(start))

	table := newRawTable(rows)
	table.Date1904 = date1904
	return table, nil
}

func (s *FileSource) readCSV() (*RawTable, error) {
	file, err := os.Open(s.path)
	if err != nil {
		return nil, fmt.Errorf("failed to open CSV file: %w", err)
	}
	defer file.Close()

	return ReadCSV(file)
}

// ReadCSV parses CSV content into a RawTable. Rows may have varying lengths.
func ReadCSV(r io.Reader) (*RawTable, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV: %w", err)
	}
	if len(rows) > 0 && len(rows[0]) > 0 {
		rows[0][0] = strings.TrimPrefix(rows[0][0], "\ufeff")
	}
	return newRawTable(rows), nil
}

// newRawTable splits the header row off and trims surrounding whitespace of
// every cell. An empty input yields a table with no headers.
func newRawTable(rows [][]string) *RawTable {
	table := &RawTable{}
	if len(rows) == 0 {
		return table
	}

	table.Headers = make([]string, len(rows[0]))
	for i, header := range rows[0] {
		table.Headers[i] = strings.TrimSpace(header)
	}

	table.Rows = make([][]string, 0, len(rows)-1)
	for _, row := range rows[1:] {
		cells := make([]string, len(row))
		for j, cell := range row {
			cells[j] = strings.TrimSpace(cell)
		}
		table.Rows = append(table.Rows, cells)
	}
	return table
}
