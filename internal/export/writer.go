package export

import (
	"fmt"
	"io"
	"strings"

	"uaexport/internal/query"
)

// Format controls how header names and cells are written.
// encoding/csv is not used because it only quotes cells that need it.
type Format struct {
	// HeaderDelimiter separates the namespace from header names ("ga:pagePath").
	// Everything up to and including the first delimiter is stripped. Empty keeps names whole.
	HeaderDelimiter string

	// TrailingComma writes a comma after every cell, including the last one on a line
	TrailingComma bool
}

// DefaultFormat matches the exporter's historical output
func DefaultFormat() Format {
	return Format{HeaderDelimiter: ":", TrailingComma: true}
}

// WriteHeader writes one line naming every dimension and metric column.
// It returns the number of columns written.
func (f Format) WriteHeader(w io.Writer, page *query.Page) (int, error) {
	cells := make([]string, 0, len(page.DimensionHeaders)+len(page.MetricHeaders))
	for _, name := range page.DimensionHeaders {
		cells = append(cells, StripPrefix(name, f.HeaderDelimiter))
	}
	for _, name := range page.MetricHeaders {
		cells = append(cells, StripPrefix(name, f.HeaderDelimiter))
	}

	if err := f.writeLine(w, cells); err != nil {
		return 0, fmt.Errorf("failed to write CSV header: %w", err)
	}
	return len(cells), nil
}

// WriteRow writes the row's dimension values followed by every metric value.
// It returns the number of columns written.
func (f Format) WriteRow(w io.Writer, row query.Row) (int, error) {
	cells := make([]string, 0, row.CellCount())
	cells = append(cells, row.Dimensions...)
	for _, values := range row.Metrics {
		cells = append(cells, values...)
	}

	if err := f.writeLine(w, cells); err != nil {
		return 0, fmt.Errorf("failed to write CSV row: %w", err)
	}
	return len(cells), nil
}

func (f Format) writeLine(w io.Writer, cells []string) error {
	var b strings.Builder
	for i, cell := range cells {
		b.WriteString(QuoteCell(cell))
		if f.TrailingComma || i < len(cells)-1 {
			b.WriteByte(',')
		}
	}
	b.WriteByte('\n')

	_, err := io.WriteString(w, b.String())
	return err
}

// QuoteCell wraps s in double quotes and doubles any quotes inside it
func QuoteCell(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}

// StripPrefix removes everything up to and including the first delimiter in name
func StripPrefix(name, delimiter string) string {
	if delimiter == "" {
		return name
	}
	if _, after, found := strings.Cut(name, delimiter); found {
		return after
	}
	return name
}
