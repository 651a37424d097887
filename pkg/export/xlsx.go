package export

import (
	"fmt"
	"unicode/utf8"

	"github.com/xuri/excelize/v2"
)

const (
	sheetName     = "Data"
	minColumnWide = 10
	maxColumnWide = 50
)

// RenderXLSX writes a single "Data" sheet with a bold header row and columns
// sized to their longest value.
func RenderXLSX(table Table) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close() //nolint:errcheck

	if err := f.SetSheetName(f.GetSheetName(0), sheetName); err != nil {
		return nil, fmt.Errorf("name sheet: %w", err)
	}

	if table.Len() > 0 {
		if err := writeSheet(f, table); err != nil {
			return nil, err
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("render xlsx: %w", err)
	}
	return buf.Bytes(), nil
}

func writeSheet(f *excelize.File, table Table) error {
	header := make([]interface{}, len(table.Columns))
	widths := make([]int, len(table.Columns))
	for i, column := range table.Columns {
		header[i] = column
		widths[i] = utf8.RuneCountInString(column)
	}
	if err := f.SetSheetRow(sheetName, "A1", &header); err != nil {
		return fmt.Errorf("write xlsx header: %w", err)
	}

	for r, row := range table.Rows {
		cells := make([]interface{}, len(table.Columns))
		for i := range table.Columns {
			if i >= len(row) {
				continue
			}
			cells[i] = cellValue(row[i])
			if n := utf8.RuneCountInString(FormatValue(row[i])); n > widths[i] {
				widths[i] = n
			}
		}
		cell, err := excelize.CoordinatesToCellName(1, r+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheetName, cell, &cells); err != nil {
			return fmt.Errorf("write xlsx row %d: %w", r+1, err)
		}
	}

	style, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("create header style: %w", err)
	}
	last, err := excelize.CoordinatesToCellName(len(table.Columns), 1)
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(sheetName, "A1", last, style); err != nil {
		return fmt.Errorf("style xlsx header: %w", err)
	}

	for i, width := range widths {
		name, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return err
		}
		if err := f.SetColWidth(sheetName, name, name, float64(ColumnWidth(width))); err != nil {
			return fmt.Errorf("size column %s: %w", name, err)
		}
	}
	return nil
}

// ColumnWidth clamps a content length into a spreadsheet column width.
func ColumnWidth(longest int) int {
	if longest < minColumnWide {
		longest = minColumnWide
	}
	width := longest + 2
	if width > maxColumnWide {
		width = maxColumnWide
	}
	return width
}

// cellValue keeps numbers numeric and flattens everything else to text.
func cellValue(v interface{}) interface{} {
	switch value := plain(v).(type) {
	case nil:
		return nil
	case int, int32, int64, float32, float64, bool:
		return value
	default:
		return FormatValue(value)
	}
}
