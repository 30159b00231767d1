package export

import (
	"context"
	"errors"
	"fmt"
	"time"

	"uaexport/internal/query"
)

// RequestDelay is the pause before every report request
const RequestDelay = 100 * time.Millisecond

// ErrServiceFailure wraps any error returned by the reporting service
var ErrServiceFailure = errors.New("reporting service failure")

// Reporter returns one page of report rows for a query
type Reporter interface {
	FetchPage(ctx context.Context, q query.Query) (*query.Page, error)
}

// Fetcher issues paced, one-at-a-time page requests
type Fetcher struct {
	reporter Reporter
	sleep    func(time.Duration)
}

// NewFetcher creates a fetcher that sleeps RequestDelay before each request
func NewFetcher(reporter Reporter) *Fetcher {
	return &Fetcher{
		reporter: reporter,
		sleep:    time.Sleep,
	}
}

// Fetch requests the page identified by token. An empty token requests the first page.
func (f *Fetcher) Fetch(ctx context.Context, q query.Query, token string) (*query.Page, error) {
	f.sleep(RequestDelay)

	page, err := f.reporter.FetchPage(ctx, q.WithToken(token))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrServiceFailure, err)
	}
	if page == nil {
		page = &query.Page{}
	}

	return page, nil
}
