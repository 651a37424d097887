package export

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"time"
)

// Format names accepted by Render.
const (
	FormatCSV         = "csv"
	FormatXLSX        = "xlsx"
	FormatSpreadsheet = "spreadsheet"
	FormatPDF         = "pdf"
	FormatJSON        = "json"
)

// Filter is one labelled entry of the "Applied Filters" block.
type Filter struct {
	Label string
	Value string
}

// Table is a homogeneous, ordered set of flat records.
type Table struct {
	Title   string
	Columns []string
	Rows    [][]interface{}
	Filters []Filter
}

// Len returns the number of data rows.
func (t Table) Len() int {
	return len(t.Rows)
}

// Records returns the rows keyed by column name.
func (t Table) Records() []map[string]interface{} {
	records := make([]map[string]interface{}, 0, len(t.Rows))
	for _, row := range t.Rows {
		record := make(map[string]interface{}, len(t.Columns))
		for i, column := range t.Columns {
			if i < len(row) {
				record[column] = plain(row[i])
			} else {
				record[column] = nil
			}
		}
		records = append(records, record)
	}
	return records
}

// Output is a rendered export ready to stream.
type Output struct {
	Body        []byte
	ContentType string
	Extension   string
}

// Filename builds "<module>-<unix millis>.<ext>".
func (o Output) Filename(module string, at time.Time) string {
	return fmt.Sprintf("%s-%d.%s", module, at.UnixMilli(), o.Extension)
}

// Supported reports whether format names a known renderer.
func Supported(format string) bool {
	switch strings.ToLower(format) {
	case FormatCSV, FormatXLSX, FormatSpreadsheet, FormatPDF, FormatJSON:
		return true
	}
	return false
}

// Render dispatches to the renderer for format.
func Render(format string, table Table, now time.Time) (Output, error) {
	switch strings.ToLower(format) {
	case FormatCSV:
		body, err := RenderCSV(table)
		return Output{Body: body, ContentType: "text/csv", Extension: "csv"}, err
	case FormatXLSX, FormatSpreadsheet:
		body, err := RenderXLSX(table)
		return Output{Body: body, ContentType: "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", Extension: "xlsx"}, err
	case FormatPDF:
		body, err := RenderPDF(table, now)
		return Output{Body: body, ContentType: "application/pdf", Extension: "pdf"}, err
	case FormatJSON:
		body, err := RenderJSON(table)
		return Output{Body: body, ContentType: "application/json", Extension: "json"}, err
	default:
		return Output{}, fmt.Errorf("unsupported export format %q", format)
	}
}

// FormatValue renders a cell as text; nil and nil pointers become "".
func FormatValue(v interface{}) string {
	v = plain(v)
	switch value := v.(type) {
	case nil:
		return ""
	case string:
		return value
	case bool:
		return strconv.FormatBool(value)
	case time.Time:
		return value.UTC().Format(time.RFC3339)
	case float64:
		return strconv.FormatFloat(value, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(value), 'f', -1, 32)
	default:
		return fmt.Sprint(value)
	}
}

func plain(v interface{}) interface{} {
	if v == nil {
		return nil
	}
	rv := reflect.ValueOf(v)
	for rv.Kind() == reflect.Ptr {
		if rv.IsNil() {
			return nil
		}
		rv = rv.Elem()
	}
	return rv.Interface()
}
