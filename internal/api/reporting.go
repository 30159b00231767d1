package api

import (
	"context"
	"fmt"

	"golang.org/x/oauth2/google"
	"google.golang.org/api/analyticsreporting/v4"
	"google.golang.org/api/option"

	"uaexport/internal/query"
)

// ReportingClient runs paginated report queries against the Analytics Reporting API v4
type ReportingClient struct {
	service *analyticsreporting.Service
}

// NewReportingClient creates a client authenticated with service account credentials
func NewReportingClient(ctx context.Context, creds *google.Credentials) (*ReportingClient, error) {
	if creds == nil {
		return nil, fmt.Errorf("credentials are required")
	}
	return NewReportingClientWithOptions(ctx, option.WithCredentials(creds))
}

// NewReportingClientWithOptions creates a client from raw client options (endpoint overrides, custom HTTP clients)
func NewReportingClientWithOptions(ctx context.Context, opts ...option.ClientOption) (*ReportingClient, error) {
	service, err := analyticsreporting.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create reporting service: %w", err)
	}

	return &ReportingClient{service: service}, nil
}

// FetchPage sends one report request and returns the first report of the response
func (c *ReportingClient) FetchPage(ctx context.Context, q query.Query) (*query.Page, error) {
	if err := query.Validate(q); err != nil {
		return nil, fmt.Errorf("query validation failed: %w", err)
	}

	resp, err := c.service.Reports.BatchGet(&analyticsreporting.GetReportsRequest{
		ReportRequests: []*analyticsreporting.ReportRequest{BuildRequest(q)},
	}).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("reports.batchGet for view %s (%s - %s) failed: %w",
			q.ViewID, q.StartDate, q.EndDate, err)
	}

	if len(resp.Reports) == 0 {
		return &query.Page{}, nil
	}

	return ConvertReport(resp.Reports[0]), nil
}

// BuildRequest converts a query into a Reporting API request.
// The page token is only attached after the first page.
func BuildRequest(q query.Query) *analyticsreporting.ReportRequest {
	request := &analyticsreporting.ReportRequest{
		ViewId: q.ViewID,
		DateRanges: []*analyticsreporting.DateRange{
			{
				StartDate: q.StartDate,
				EndDate:   q.EndDate,
			},
		},
		PageSize: q.PageSize,
	}

	for _, name := range q.Dimensions {
		request.Dimensions = append(request.Dimensions, &analyticsreporting.Dimension{Name: name})
	}

	for _, expression := range q.Metrics {
		request.Metrics = append(request.Metrics, &analyticsreporting.Metric{Expression: expression})
	}

	if q.Token != "" {
		request.PageToken = q.Token
	}

	return request
}

// ConvertReport flattens an API report into a page
func ConvertReport(report *analyticsreporting.Report) *query.Page {
	page := &query.Page{}
	if report == nil {
		return page
	}

	page.NextPageToken = report.NextPageToken

	if header := report.ColumnHeader; header != nil {
		page.DimensionHeaders = append(page.DimensionHeaders, header.Dimensions...)
		if header.MetricHeader != nil {
			for _, entry := range header.MetricHeader.MetricHeaderEntries {
				if entry != nil {
					page.MetricHeaders = append(page.MetricHeaders, entry.Name)
				}
			}
		}
	}

	if report.Data == nil {
		return page
	}

	page.Rows = make([]query.Row, 0, len(report.Data.Rows))
	for _, apiRow := range report.Data.Rows {
		if apiRow == nil {
			continue
		}
		row := query.Row{Dimensions: apiRow.Dimensions}
		for _, values := range apiRow.Metrics {
			if values == nil {
				row.Metrics = append(row.Metrics, nil)
				continue
			}
			row.Metrics = append(row.Metrics, values.Values)
		}
		page.Rows = append(page.Rows, row)
	}

	return page
}
