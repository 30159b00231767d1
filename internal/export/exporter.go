package export

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"uaexport/internal/ledger"
	"uaexport/internal/query"
)

// Exporter writes one CSV file per month of report data
type Exporter struct {
	viewID  string
	fetcher *Fetcher
	opts    Options
}

// New creates an exporter for the given view
func New(viewID string, fetcher *Fetcher, opts Options) *Exporter {
	if opts.Out == nil {
		opts.Out = io.Discard
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.DataDir == "" {
		opts.DataDir = "data"
	}
	return &Exporter{
		viewID:  viewID,
		fetcher: fetcher,
		opts:    opts,
	}
}

// Run exports every month from start until the present.
// It stops at the first failure, leaving that month's file as written so far.
func (e *Exporter) Run(ctx context.Context, start time.Time) (*Summary, error) {
	if err := os.MkdirAll(e.opts.DataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	summary := &Summary{}
	for month := range Months(start, e.opts.Now) {
		result, err := e.ExportMonth(ctx, month)
		summary.Months++
		summary.Rows += result.Rows
		if err != nil {
			return summary, fmt.Errorf("export of %s failed: %w", month, err)
		}
		if result.Kept() {
			summary.Written++
		} else {
			summary.Empty++
		}
	}

	return summary, nil
}

// ExportMonth fetches every page for the month and streams it to <data dir>/<start>.csv.
// A file that ends up empty is removed.
func (e *Exporter) ExportMonth(ctx context.Context, month Month) (MonthResult, error) {
	result := MonthResult{
		Month:     month,
		Path:      filepath.Join(e.opts.DataDir, month.FileName()),
		StartedAt: time.Now(),
	}

	fmt.Fprintf(e.opts.Out, "Starting %s - %s\n", month.Start.Format(DateLayout), month.End.Format(DateLayout))

	q := query.NewMonthly(e.viewID, month.Start, month.End)

	fh, err := os.Create(result.Path)
	if err != nil {
		return e.fail(ctx, result, fmt.Errorf("failed to create output file: %w", err))
	}

	err = e.paginate(ctx, q, fh, &result)
	if closeErr := fh.Close(); err == nil && closeErr != nil {
		err = fmt.Errorf("failed to close output file: %w", closeErr)
	}
	if err != nil {
		return e.fail(ctx, result, err)
	}

	info, err := os.Stat(result.Path)
	if err != nil {
		return e.fail(ctx, result, fmt.Errorf("failed to stat output file: %w", err))
	}

	result.Status = ledger.StatusWritten
	if info.Size() == 0 {
		if err := os.Remove(result.Path); err != nil {
			return e.fail(ctx, result, fmt.Errorf("failed to remove empty output file: %w", err))
		}
		result.Status = ledger.StatusEmpty
	}

	result.FinishedAt = time.Now()
	if err := e.record(ctx, result, nil); err != nil {
		return result, err
	}

	return result, nil
}

func (e *Exporter) paginate(ctx context.Context, q query.Query, w io.Writer, result *MonthResult) error {
	bw := bufio.NewWriter(w)
	headerWritten := false
	token := ""

	for {
		label := token
		if label == "" {
			label = "0"
		}
		fmt.Fprintf(e.opts.Out, "Requesting page %s\n", label)

		page, err := e.fetcher.Fetch(ctx, q, token)
		if err != nil {
			if flushErr := bw.Flush(); flushErr != nil {
				return errors.Join(err, flushErr)
			}
			return err
		}
		result.Pages++

		if len(page.Rows) > 0 {
			if !headerWritten {
				result.Columns, err = e.opts.Format.WriteHeader(bw, page)
				if err != nil {
					return err
				}
				headerWritten = true
			}

			for i, row := range page.Rows {
				if n := row.CellCount(); n != result.Columns {
					fmt.Fprintf(e.opts.Out, "Warning: page %d row %d has %d columns, header has %d\n",
						result.Pages, i+1, n, result.Columns)
					result.Mismatched++
				}
				if _, err := e.opts.Format.WriteRow(bw, row); err != nil {
					return err
				}
			}
			result.Rows += len(page.Rows)
		}

		if err := bw.Flush(); err != nil {
			return fmt.Errorf("failed to write output file: %w", err)
		}

		if e.opts.Verbose {
			fmt.Fprintf(e.opts.Out, "  %d rows (%d total)\n", len(page.Rows), result.Rows)
		}

		step := query.StepAfter(page)
		if step.IsDone() {
			return nil
		}
		token = step.Token()
	}
}

func (e *Exporter) fail(ctx context.Context, result MonthResult, err error) (MonthResult, error) {
	result.Status = ledger.StatusFailed
	result.FinishedAt = time.Now()
	if recErr := e.record(ctx, result, err); recErr != nil {
		return result, errors.Join(err, recErr)
	}
	return result, err
}

func (e *Exporter) record(ctx context.Context, result MonthResult, cause error) error {
	if e.opts.Ledger == nil {
		return nil
	}
	if err := e.opts.Ledger.Record(ctx, result.entry(cause)); err != nil {
		return fmt.Errorf("failed to update ledger: %w", err)
	}
	return nil
}
