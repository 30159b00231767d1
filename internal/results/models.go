package results

import "uaexport/internal/ledger"

// History is the ledger contents as shown by the history command
type History struct {
	Entries []ledger.Entry `json:"entries"`
	Stats   *ledger.Stats  `json:"stats"`
}

// OutputFormat represents supported history output formats
type OutputFormat string

const (
	FormatTable OutputFormat = "table"
	FormatJSON  OutputFormat = "json"
)
