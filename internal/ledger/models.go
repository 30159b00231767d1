package ledger

import "time"

// Status is the outcome of exporting one month
type Status string

const (
	StatusWritten Status = "written" // file kept with at least a header
	StatusEmpty   Status = "empty"   // no rows, file removed
	StatusFailed  Status = "failed"  // service or I/O failure, file left as is
)

// Entry records one month's export
type Entry struct {
	MonthStart time.Time `json:"month_start"`
	MonthEnd   time.Time `json:"month_end"`
	FilePath   string    `json:"file_path"`
	Status     Status    `json:"status"`
	Pages      int       `json:"pages"`
	Rows       int       `json:"rows"`
	Error      string    `json:"error,omitempty"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
}

// Stats summarizes the ledger
type Stats struct {
	Months    int   `json:"months"`
	Written   int   `json:"written"`
	Empty     int   `json:"empty"`
	Failed    int   `json:"failed"`
	TotalRows int64 `json:"total_rows"`
}
