package results

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"

	"uaexport/internal/ledger"
)

// Source is the read side of the run ledger
type Source interface {
	List(ctx context.Context) ([]ledger.Entry, error)
	Stats(ctx context.Context) (*ledger.Stats, error)
}

// Manager reads and renders export history
type Manager struct {
	source Source
}

// NewManager creates a new results manager
func NewManager(source Source) *Manager {
	return &Manager{
		source: source,
	}
}

// History loads every recorded month and the ledger totals
func (m *Manager) History(ctx context.Context) (*History, error) {
	entries, err := m.source.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list ledger entries: %w", err)
	}

	stats, err := m.source.Stats(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load ledger stats: %w", err)
	}

	return &History{Entries: entries, Stats: stats}, nil
}

// Write renders the history to w in the requested format
func (m *Manager) Write(ctx context.Context, w io.Writer, format OutputFormat, maxWidth int) error {
	history, err := m.History(ctx)
	if err != nil {
		return err
	}

	switch format {
	case FormatJSON:
		encoder := json.NewEncoder(w)
		encoder.SetIndent("", "  ")
		if err := encoder.Encode(history); err != nil {
			return fmt.Errorf("failed to write JSON: %w", err)
		}
		return nil
	case FormatTable, "":
		for _, line := range FormatHistoryTable(history, maxWidth) {
			fmt.Fprintln(w, line)
		}
		return nil
	default:
		return fmt.Errorf("unsupported format: %s", format)
	}
}

// FormatHistoryTable formats ledger entries for console display
func FormatHistoryTable(history *History, maxWidth int) []string {
	if history == nil || len(history.Entries) == 0 {
		return []string{"No months exported yet"}
	}
	if maxWidth <= 0 {
		maxWidth = 40
	}

	headers := []string{"month", "end", "status", "pages", "rows", "file", "error"}
	records := make([][]string, 0, len(history.Entries))
	for _, e := range history.Entries {
		records = append(records, []string{
			e.MonthStart.Format("2006-01-02"),
			e.MonthEnd.Format("2006-01-02"),
			string(e.Status),
			strconv.Itoa(e.Pages),
			strconv.Itoa(e.Rows),
			filepath.Base(e.FilePath),
			e.Error,
		})
	}

	// Calculate column widths
	colWidths := make([]int, len(headers))
	for i, header := range headers {
		colWidths[i] = len(header)
	}
	for _, record := range records {
		for i, value := range record {
			if len(value) > colWidths[i] {
				colWidths[i] = min(len(value), maxWidth)
			}
		}
	}

	var lines []string

	headerParts := make([]string, len(headers))
	for i, header := range headers {
		headerParts[i] = padOrTruncate(header, colWidths[i])
	}
	lines = append(lines, "| "+strings.Join(headerParts, " | ")+" |")

	separatorParts := make([]string, len(headers))
	for i, width := range colWidths {
		separatorParts[i] = strings.Repeat("-", width+2)
	}
	lines = append(lines, "|"+strings.Join(separatorParts, "|")+"|")

	for _, record := range records {
		rowParts := make([]string, len(record))
		for i, value := range record {
			rowParts[i] = padOrTruncate(value, colWidths[i])
		}
		lines = append(lines, "| "+strings.Join(rowParts, " | ")+" |")
	}

	if s := history.Stats; s != nil {
		lines = append(lines, "")
		lines = append(lines, fmt.Sprintf("%d months: %d written, %d empty, %d failed, %d rows",
			s.Months, s.Written, s.Empty, s.Failed, s.TotalRows))
	}

	return lines
}

func padOrTruncate(s string, width int) string {
	if len(s) > width {
		if width > 3 {
			return s[:width-3] + "..."
		}
		return s[:width]
	}
	return s + strings.Repeat(" ", width-len(s))
}
