package query

// PageSize is the number of rows requested per page
const PageSize int64 = 10000

// Query describes one paginated report request for a date range.
// Everything except Token stays fixed for the duration of a month.
type Query struct {
	ViewID     string   `json:"view_id" yaml:"view_id"`
	StartDate  string   `json:"start_date" yaml:"start_date"` // YYYY-MM-DD
	EndDate    string   `json:"end_date" yaml:"end_date"`     // YYYY-MM-DD
	Dimensions []string `json:"dimensions" yaml:"dimensions"`
	Metrics    []string `json:"metrics" yaml:"metrics"` // metric expressions
	PageSize   int64    `json:"page_size" yaml:"page_size"`

	// Token is the opaque cursor returned by the previous page. Empty on the first request.
	Token string `json:"page_token,omitempty" yaml:"page_token,omitempty"`
}

// WithToken returns a copy of the query pointing at the given page
func (q Query) WithToken(token string) Query {
	q.Token = token
	return q
}

// Page is one page of a report response
type Page struct {
	DimensionHeaders []string
	MetricHeaders    []string
	Rows             []Row
	NextPageToken    string
}

// Row is a single report row. Metrics holds one value list per date range.
type Row struct {
	Dimensions []string
	Metrics    [][]string
}

// CellCount returns the number of CSV cells the row expands to
func (r Row) CellCount() int {
	n := len(r.Dimensions)
	for _, values := range r.Metrics {
		n += len(values)
	}
	return n
}

// Step tells the pagination loop whether another page follows
type Step struct {
	done  bool
	token string
}

// Done ends pagination
func Done() Step {
	return Step{done: true}
}

// NextPage continues pagination with the service-issued token
func NextPage(token string) Step {
	return Step{token: token}
}

// IsDone reports whether pagination has finished
func (s Step) IsDone() bool {
	return s.done
}

// Token returns the token for the next request. Only meaningful when !IsDone().
func (s Step) Token() string {
	return s.token
}

// StepAfter decides how pagination continues after page p.
// An empty page ends pagination even when the service sent a token.
// An empty token also ends pagination.
func StepAfter(p *Page) Step {
	if p == nil || len(p.Rows) == 0 {
		return Done()
	}
	if p.NextPageToken == "" {
		return Done()
	}
	return NextPage(p.NextPageToken)
}
