package export

import (
	"context"
	"io"
	"time"

	"uaexport/internal/ledger"
)

// Recorder persists the outcome of each exported month
type Recorder interface {
	Record(ctx context.Context, e ledger.Entry) error
}

// Options configures an Exporter
type Options struct {
	DataDir string
	Format  Format
	Out     io.Writer // progress lines, discarded when nil
	Verbose bool
	Ledger  Recorder // optional

	// Now is the clock used to decide when to stop advancing months
	Now func() time.Time
}

// MonthResult summarizes the export of one month
type MonthResult struct {
	Month      Month
	Path       string
	Status     ledger.Status
	Pages      int
	Rows       int
	Columns    int
	Mismatched int // rows written with a different cell count than the header
	StartedAt  time.Time
	FinishedAt time.Time
}

// Kept reports whether the month's file was left on disk
func (r MonthResult) Kept() bool {
	return r.Status != ledger.StatusEmpty
}

// Summary totals a whole run
type Summary struct {
	Months  int
	Written int
	Empty   int
	Rows    int
}

func (r MonthResult) entry(err error) ledger.Entry {
	e := ledger.Entry{
		MonthStart: r.Month.Start,
		MonthEnd:   r.Month.End,
		FilePath:   r.Path,
		Status:     r.Status,
		Pages:      r.Pages,
		Rows:       r.Rows,
		StartedAt:  r.StartedAt,
		FinishedAt: r.FinishedAt,
	}
	if err != nil {
		e.Error = err.Error()
	}
	return e
}
