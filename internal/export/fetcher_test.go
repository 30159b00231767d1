package export

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"uaexport/internal/query"
)

// scriptedReporter serves pages keyed by month start date and page token
type scriptedReporter struct {
	mu      sync.Mutex
	pages   map[string]map[string]*query.Page
	errs    map[string]error
	queries []query.Query
}

func newScriptedReporter() *scriptedReporter {
	return &scriptedReporter{
		pages: make(map[string]map[string]*query.Page),
		errs:  make(map[string]error),
	}
}

func (r *scriptedReporter) add(startDate, token string, page *query.Page) {
	if r.pages[startDate] == nil {
		r.pages[startDate] = make(map[string]*query.Page)
	}
	r.pages[startDate][token] = page
}

func (r *scriptedReporter) fail(startDate, token string, err error) {
	r.errs[startDate+"|"+token] = err
}

func (r *scriptedReporter) FetchPage(ctx context.Context, q query.Query) (*query.Page, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.queries = append(r.queries, q)
	if err, ok := r.errs[q.StartDate+"|"+q.Token]; ok {
		return nil, err
	}
	if page, ok := r.pages[q.StartDate][q.Token]; ok {
		return page, nil
	}
	return &query.Page{}, nil
}

func (r *scriptedReporter) tokens() []string {
	tokens := make([]string, 0, len(r.queries))
	for _, q := range r.queries {
		tokens = append(tokens, q.Token)
	}
	return tokens
}

func newTestFetcher(reporter Reporter, slept *[]time.Duration) *Fetcher {
	f := NewFetcher(reporter)
	f.sleep = func(d time.Duration) {
		if slept != nil {
			*slept = append(*slept, d)
		}
	}
	return f
}

func TestFetcherSleepsBeforeEveryRequest(t *testing.T) {
	reporter := newScriptedReporter()
	var slept []time.Duration
	f := newTestFetcher(reporter, &slept)

	q := query.NewMonthly("123", date(2021, time.January, 1), date(2021, time.January, 31))
	_, err := f.Fetch(context.Background(), q, "")
	require.NoError(t, err)
	_, err = f.Fetch(context.Background(), q, "10000")
	require.NoError(t, err)

	assert.Equal(t, []time.Duration{100 * time.Millisecond, 100 * time.Millisecond}, slept)
}

func TestFetcherPassesTokenVerbatim(t *testing.T) {
	reporter := newScriptedReporter()
	f := newTestFetcher(reporter, nil)
	q := query.NewMonthly("123", date(2021, time.January, 1), date(2021, time.January, 31))

	for _, token := range []string{"", "10000", "opaque:cursor/==", " spaced "} {
		_, err := f.Fetch(context.Background(), q, token)
		require.NoError(t, err)
	}

	assert.Equal(t, []string{"", "10000", "opaque:cursor/==", " spaced "}, reporter.tokens())
	assert.Empty(t, q.Token, "caller's query must not be modified")
}

func TestFetcherWrapsServiceErrors(t *testing.T) {
	upstream := errors.New("quota exceeded")
	reporter := newScriptedReporter()
	reporter.fail("2021-01-01", "", upstream)
	f := newTestFetcher(reporter, nil)

	q := query.NewMonthly("123", date(2021, time.January, 1), date(2021, time.January, 31))
	page, err := f.Fetch(context.Background(), q, "")

	require.Error(t, err)
	assert.Nil(t, page)
	assert.ErrorIs(t, err, ErrServiceFailure)
	assert.ErrorIs(t, err, upstream)
	assert.Len(t, reporter.queries, 1, "failures are not retried")
}

type nilReporter struct{}

func (nilReporter) FetchPage(ctx context.Context, q query.Query) (*query.Page, error) {
	return nil, nil
}

func TestFetcherNilPageIsEmpty(t *testing.T) {
	f := newTestFetcher(nilReporter{}, nil)
	page, err := f.Fetch(context.Background(), query.Query{}, "")
	require.NoError(t, err)
	require.NotNil(t, page)
	assert.Empty(t, page.Rows)
}

func rowsPage(n int, offset int, next string) *query.Page {
	page := &query.Page{
		DimensionHeaders: query.DefaultDimensions,
		MetricHeaders:    query.DefaultMetrics,
		NextPageToken:    next,
	}
	for i := 0; i < n; i++ {
		id := offset + i
		page.Rows = append(page.Rows, query.Row{
			Dimensions: []string{
				fmt.Sprintf("/page/%d", id), "20210101", "(direct)", "desktop", "Oslo", "Oslo", "Norway",
			},
			Metrics: [][]string{{fmt.Sprint(id), fmt.Sprint(id * 2)}},
		})
	}
	return page
}
