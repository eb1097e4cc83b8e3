// Package export renders a transaction listing as a downloadable file.
package export

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"cashflow_tracker/internal/aggregate"
	"cashflow_tracker/internal/model"

	"github.com/xuri/excelize/v2"
)

// Format is a supported export file type
type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
)

// ErrUnsupportedFormat is returned by ParseFormat for anything but csv or xlsx
var ErrUnsupportedFormat = errors.New("unsupported export format")

const sheetName = "Transactions"

var header = []string{"ID", "Date", "Description", "Kind", "Category", "Amount"}

var columnWidths = map[string]float64{"A": 10, "B": 12, "C": 40, "D": 10, "E": 20, "F": 14}

// ParseFormat resolves a format name; empty means CSV.
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(s))) {
	case "", FormatCSV:
		return FormatCSV, nil
	case FormatXLSX:
		return FormatXLSX, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, s)
}

// ContentType returns the MIME type served for f
func (f Format) ContentType() string {
	if f == FormatXLSX {
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	}
	return "text/csv"
}

// FileName returns the attachment name served for f
func (f Format) FileName() string {
	return "transactions." + string(f)
}

func record(t model.Transaction) []string {
	return []string{
		strconv.FormatInt(t.ID, 10),
		t.OccurredOn.Format(model.DateLayout),
		t.Description,
		string(t.Kind),
		aggregate.Label(t),
		t.Amount.StringFixed(2),
	}
}

// Write renders rows in format f to w, in the order given.
func Write(w io.Writer, f Format, rows []model.Transaction) error {
	switch f {
	case FormatCSV:
		return writeCSV(w, rows)
	case FormatXLSX:
		return writeXLSX(w, rows)
	}
	return fmt.Errorf("%w: %q", ErrUnsupportedFormat, f)
}

func writeCSV(w io.Writer, rows []model.Transaction) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(header); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}
	for _, t := range rows {
		if err := writer.Write(record(t)); err != nil {
			return fmt.Errorf("failed to write CSV row: %w", err)
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return fmt.Errorf("error flushing CSV writer: %w", err)
	}
	return nil
}

func writeXLSX(w io.Writer, rows []model.Transaction) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", sheetName); err != nil {
		return fmt.Errorf("failed to name sheet: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 12, Color: "FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"4F81BD"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}
	totalStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Size: 11},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"FFC000"}, Pattern: 1},
	})
	if err != nil {
		return fmt.Errorf("failed to create total style: %w", err)
	}

	for col, width := range columnWidths {
		if err := f.SetColWidth(sheetName, col, col, width); err != nil {
			return fmt.Errorf("failed to set width of column %s: %w", col, err)
		}
	}

	for i, h := range header {
		cell := fmt.Sprintf("%c1", 'A'+i)
		if err := f.SetCellValue(sheetName, cell, h); err != nil {
			return fmt.Errorf("failed to write XLSX header: %w", err)
		}
	}
	if err := f.SetCellStyle(sheetName, "A1", fmt.Sprintf("%c1", 'A'+len(header)-1), headerStyle); err != nil {
		return fmt.Errorf("failed to style XLSX header: %w", err)
	}

	for i, t := range rows {
		cells := record(t)
		row := i + 2
		if err := f.SetCellValue(sheetName, fmt.Sprintf("A%d", row), t.ID); err != nil {
			return fmt.Errorf("failed to write XLSX row %d: %w", row, err)
		}
		for col := 1; col < len(cells); col++ {
			// Amounts are written as text so the cell keeps the exact decimal.
			if err := f.SetCellValue(sheetName, fmt.Sprintf("%c%d", 'A'+col, row), cells[col]); err != nil {
				return fmt.Errorf("failed to write XLSX row %d: %w", row, err)
			}
		}
	}

	balance := aggregate.Balance(rows)
	totals := []struct {
		label string
		value string
	}{
		{"Total income", balance.TotalIncome.StringFixed(2)},
		{"Total expense", balance.TotalExpense.StringFixed(2)},
		{"Net", balance.Net.StringFixed(2)},
	}
	for i, total := range totals {
		row := len(rows) + 3 + i
		label, value := fmt.Sprintf("E%d", row), fmt.Sprintf("F%d", row)
		if err := f.SetCellValue(sheetName, label, total.label); err != nil {
			return fmt.Errorf("failed to write XLSX totals: %w", err)
		}
		if err := f.SetCellValue(sheetName, value, total.value); err != nil {
			return fmt.Errorf("failed to write XLSX totals: %w", err)
		}
		if err := f.SetCellStyle(sheetName, label, value, totalStyle); err != nil {
			return fmt.Errorf("failed to style XLSX totals: %w", err)
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write XLSX: %w", err)
	}
	return nil
}
