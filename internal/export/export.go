package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/Capstone-E1/soilsense_backend/internal/models"
	"github.com/Capstone-E1/soilsense_backend/internal/services"
)

const (
	dataSheet    = "dados"
	summarySheet = "Resumo"

	// Exported timestamps are wall clock text in the dataset's location so the
	// file loads back through the normalizer unchanged.
	timestampLayout = "2006-01-02 15:04:05.999999999"
)

// ExportService writes the dataset back out in the same column layout the
// loader reads.
type ExportService struct {
	schema services.Schema
}

// NewExportService creates a new export service using the given column names
func NewExportService(schema services.Schema) *ExportService {
	return &ExportService{schema: schema}
}

// ExportMetadata contains information about the export
type ExportMetadata struct {
	GeneratedAt time.Time
	Source      string
}

// Headers returns the header row of the export
func (es *ExportService) Headers() []string {
	headers := make([]string, 0, models.DepthCount+1)
	headers = append(headers, es.schema.TimestampColumn)
	headers = append(headers, es.schema.DepthColumns[:]...)
	return headers
}

// GenerateExcel creates a workbook with the readings sheet first and a
// summary sheet after it. The caller must Close the returned file.
func (es *ExportService) GenerateExcel(readings []models.Reading, meta ExportMetadata) (*excelize.File, error) {
	f := excelize.NewFile()

	f.SetDocProps(&excelize.DocProperties{
		Category:       "SoilSense Soil Humidity",
		Created:        meta.GeneratedAt.Format(time.RFC3339),
		Creator:        "SoilSense Backend",
		Description:    "Soil humidity readings by depth",
		LastModifiedBy: "SoilSense Backend",
		Modified:       meta.GeneratedAt.Format(time.RFC3339),
		Title:          "SoilSense Sensor Data",
	})

	if err := es.createDataSheet(f, readings); err != nil {
		f.Close()
		return nil, err
	}
	if err := es.createSummarySheet(f, readings, meta); err != nil {
		f.Close()
		return nil, err
	}

	f.SetActiveSheet(0)
	return f, nil
}

// WriteExcel generates the workbook and writes it to w
func (es *ExportService) WriteExcel(w io.Writer, readings []models.Reading, meta ExportMetadata) error {
	f, err := es.GenerateExcel(readings, meta)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

func (es *ExportService) createDataSheet(f *excelize.File, readings []models.Reading) error {
	if err := f.SetSheetName("Sheet1", dataSheet); err != nil {
		return fmt.Errorf("failed to name data sheet: %w", err)
	}

	headers := es.Headers()
	if err := f.SetSheetRow(dataSheet, "A1", &headers); err != nil {
		return fmt.Errorf("failed to write header row: %w", err)
	}

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"70AD47"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center"},
		Border: []excelize.Border{
			{Type: "left", Color: "000000", Style: 1},
			{Type: "top", Color: "000000", Style: 1},
			{Type: "bottom", Color: "000000", Style: 1},
			{Type: "right", Color: "000000", Style: 1},
		},
	})
	lastCol, _ := excelize.ColumnNumberToName(len(headers))
	f.SetCellStyle(dataSheet, "A1", lastCol+"1", headerStyle)

	for i, reading := range readings {
		row := []any{reading.Timestamp.Format(timestampLayout)}
		for _, v := range reading.Depths {
			row = append(row, v)
		}
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := f.SetSheetRow(dataSheet, cell, &row); err != nil {
			return fmt.Errorf("failed to write row %d: %w", i+2, err)
		}
	}

	f.SetColWidth(dataSheet, "A", "A", 22)
	f.SetColWidth(dataSheet, "B", lastCol, 18)
	return nil
}

func (es *ExportService) createSummarySheet(f *excelize.File, readings []models.Reading, meta ExportMetadata) error {
	if _, err := f.NewSheet(summarySheet); err != nil {
		return fmt.Errorf("failed to create summary sheet: %w", err)
	}

	titleStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 14, Color: "FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})

	f.SetCellValue(summarySheet, "A1", "SoilSense Soil Humidity Report")
	f.MergeCell(summarySheet, "A1", "C1")
	f.SetCellStyle(summarySheet, "A1", "C1", titleStyle)
	f.SetRowHeight(summarySheet, 1, 25)

	f.SetCellValue(summarySheet, "A3", "Generated At:")
	f.SetCellValue(summarySheet, "B3", meta.GeneratedAt.Format("2006-01-02 15:04:05"))
	f.SetCellValue(summarySheet, "A4", "Source:")
	f.SetCellValue(summarySheet, "B4", meta.Source)
	f.SetCellValue(summarySheet, "A5", "Total Readings:")
	f.SetCellValue(summarySheet, "B5", len(readings))
	f.SetCellValue(summarySheet, "A6", "Date Range:")
	f.SetCellValue(summarySheet, "B6", dateRange(readings))

	summaries, err := services.SummarizeDepths(readings, es.schema)
	if err != nil {
		return err
	}

	columns := []any{"Column", "Mean", "Median", "Min", "Max", "Std Dev"}
	if err := f.SetSheetRow(summarySheet, "A8", &columns); err != nil {
		return fmt.Errorf("failed to write summary header: %w", err)
	}
	f.SetCellStyle(summarySheet, "A8", "F8", titleStyle)
	for i, sum := range summaries {
		row := []any{sum.Column, sum.Mean, sum.Median, sum.Min, sum.Max, sum.StdDev}
		if err := f.SetSheetRow(summarySheet, fmt.Sprintf("A%d", 9+i), &row); err != nil {
			return fmt.Errorf("failed to write summary row: %w", err)
		}
	}

	f.SetColWidth(summarySheet, "A", "A", 20)
	f.SetColWidth(summarySheet, "B", "F", 14)
	return nil
}

func dateRange(readings []models.Reading) string {
	if len(readings) == 0 {
		return "-"
	}
	return fmt.Sprintf("%s - %s",
		readings[0].Timestamp.Format("2006-01-02 15:04"),
		readings[len(readings)-1].Timestamp.Format("2006-01-02 15:04"))
}

// GenerateCSV creates CSV records for the readings, header row first
func (es *ExportService) GenerateCSV(readings []models.Reading) [][]string {
	records := [][]string{es.Headers()}

	for _, reading := range readings {
		record := make([]string, 0, models.DepthCount+1)
		record = append(record, reading.Timestamp.Format(timestampLayout))
		for _, v := range reading.Depths {
			record = append(record, strconv.FormatFloat(v, 'f', -1, 64))
		}
		records = append(records, record)
	}

	return records
}

// WriteCSV writes CSV data to a writer
func (es *ExportService) WriteCSV(w io.Writer, readings []models.Reading) error {
	cw := csv.NewWriter(w)
	if err := cw.WriteAll(es.GenerateCSV(readings)); err != nil {
		return fmt.Errorf("failed to write csv: %w", err)
	}
	return nil
}
