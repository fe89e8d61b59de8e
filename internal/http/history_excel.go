package httpapi

import (
	"bytes"
	"fmt"
	"time"

	"github.com/omarioz/BiyoKaab/internal/domain"

	"github.com/xuri/excelize/v2"
)

// maxExportRows caps one export at the repository history limit.
const maxExportRows = 200

// historyExportHeader lists the exported columns in order.
var historyExportHeader = []string{
	"Recorded At",
	"Distance (cm)",
	"Water Level (L)",
	"Humidity (%)",
	"Temperature (C)",
	"Soil Moisture (%)",
	"Motion Detected",
}

// GenerateHistoryExport renders readings as an Excel workbook, newest first.
func GenerateHistoryExport(deviceID string, readings []domain.SensorReading) ([]byte, error) {
	f := excelize.NewFile()
	// Don't defer Close() here, WriteTo needs the file open.

	sheetName := "Readings"
	index, err := f.NewSheet(sheetName)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to create sheet: %w", err)
	}
	f.DeleteSheet("Sheet1")
	f.SetActiveSheet(index)

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{
			Type:    "pattern",
			Color:   []string{"#E6F3FF"},
			Pattern: 1,
		},
		Alignment: &excelize.Alignment{
			Horizontal: "center",
			Vertical:   "center",
		},
	})
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to create header style: %w", err)
	}

	for col, header := range historyExportHeader {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			f.Close()
			return nil, fmt.Errorf("failed to convert coordinates: %w", err)
		}
		if err := f.SetCellValue(sheetName, cell, header); err != nil {
			f.Close()
			return nil, fmt.Errorf("failed to set header cell %s: %w", cell, err)
		}
		if err := f.SetCellStyle(sheetName, cell, cell, headerStyle); err != nil {
			f.Close()
			return nil, fmt.Errorf("failed to set header style: %w", err)
		}
	}

	columnWidths := []float64{22, 14, 16, 14, 16, 16, 16}
	for i := range historyExportHeader {
		col, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			f.Close()
			return nil, fmt.Errorf("failed to convert column number: %w", err)
		}
		if err := f.SetColWidth(sheetName, col, col, columnWidths[i]); err != nil {
			f.Close()
			return nil, fmt.Errorf("failed to set column width: %w", err)
		}
	}

	for rowIdx := range readings {
		reading := &readings[rowIdx]
		row := rowIdx + 2
		values := []any{
			reading.RecordedAt.UTC().Format(time.RFC3339),
			reading.DistanceCm,
			optionalCell(reading.WaterLevel),
			optionalCell(reading.Humidity),
			optionalCell(reading.Temperature),
			optionalCell(reading.SoilMoisture),
			reading.MotionDetected,
		}
		for col, value := range values {
			cell, err := excelize.CoordinatesToCellName(col+1, row)
			if err != nil {
				f.Close()
				return nil, fmt.Errorf("failed to convert coordinates: %w", err)
			}
			if err := f.SetCellValue(sheetName, cell, value); err != nil {
				f.Close()
				return nil, fmt.Errorf("failed to set cell %s: %w", cell, err)
			}
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to write workbook: %w", err)
	}
	if err := f.Close(); err != nil {
		return nil, fmt.Errorf("failed to close workbook: %w", err)
	}

	return buf.Bytes(), nil
}

// optionalCell renders missing measurements as empty cells rather than 0.
func optionalCell(v *float64) any {
	if v == nil {
		return ""
	}
	return *v
}
