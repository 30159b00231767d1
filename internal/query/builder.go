package query

import (
	"fmt"
	"time"
)

const dateLayout = "2006-01-02"

// Available dimensions and metrics: https://ga-dev-tools.google/dimensions-metrics-explorer/
var (
	// DefaultDimensions is the dimension set requested for every month
	DefaultDimensions = []string{
		"ga:pagePath",
		"ga:date",
		"ga:fullReferrer",
		"ga:deviceCategory",
		"ga:city",
		"ga:region",
		"ga:country",
	}

	// DefaultMetrics is the metric set requested for every month
	DefaultMetrics = []string{
		"ga:sessions",
		"ga:pageviews",
	}
)

// NewMonthly builds the query for the given date range using the fixed dimension and metric set
func NewMonthly(viewID string, start, end time.Time) Query {
	dims := make([]string, len(DefaultDimensions))
	copy(dims, DefaultDimensions)
	metrics := make([]string, len(DefaultMetrics))
	copy(metrics, DefaultMetrics)

	return Query{
		ViewID:     viewID,
		StartDate:  start.Format(dateLayout),
		EndDate:    end.Format(dateLayout),
		Dimensions: dims,
		Metrics:    metrics,
		PageSize:   PageSize,
	}
}

// Validate checks that a query can be sent to the reporting service
func Validate(q Query) error {
	if q.ViewID == "" {
		return fmt.Errorf("view ID is required")
	}
	if q.StartDate == "" || q.EndDate == "" {
		return fmt.Errorf("date range is required (start_date and end_date)")
	}

	start, err := time.Parse(dateLayout, q.StartDate)
	if err != nil {
		return fmt.Errorf("invalid start date %q: %w", q.StartDate, err)
	}
	end, err := time.Parse(dateLayout, q.EndDate)
	if err != nil {
		return fmt.Errorf("invalid end date %q: %w", q.EndDate, err)
	}
	if end.Before(start) {
		return fmt.Errorf("end date %s is before start date %s", q.EndDate, q.StartDate)
	}

	if len(q.Dimensions) == 0 && len(q.Metrics) == 0 {
		return fmt.Errorf("at least one dimension or metric is required")
	}

	if q.PageSize <= 0 || q.PageSize > 100000 {
		return fmt.Errorf("page size must be between 1 and 100,000")
	}

	return nil
}
