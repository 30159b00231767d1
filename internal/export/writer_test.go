package export

import (
	"bytes"
	"encoding/csv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"uaexport/internal/query"
)

func TestQuoteCell(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"plain", `"plain"`},
		{"", `""`},
		{`He said "hi"`, `"He said ""hi"""`},
		{`a,b`, `"a,b"`},
		{`""`, `""""""`},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, QuoteCell(tt.input))
	}
}

func TestWriteRowQuotesUnconditionally(t *testing.T) {
	var buf bytes.Buffer
	n, err := DefaultFormat().WriteRow(&buf, query.Row{Dimensions: []string{`He said "hi"`}})
	require.NoError(t, err)

	assert.Equal(t, 1, n)
	assert.Equal(t, "\"He said \"\"hi\"\"\",\n", buf.String())

	record, err := csv.NewReader(strings.NewReader(buf.String())).Read()
	require.NoError(t, err)
	assert.Equal(t, `He said "hi"`, record[0])
}

func TestWriteRowFlattensMetrics(t *testing.T) {
	row := query.Row{
		Dimensions: []string{"/home", "20210101"},
		Metrics:    [][]string{{"10", "20"}, {"30"}},
	}

	var buf bytes.Buffer
	n, err := Format{TrailingComma: false}.WriteRow(&buf, row)
	require.NoError(t, err)

	assert.Equal(t, 5, n)
	assert.Equal(t, `"/home","20210101","10","20","30"`+"\n", buf.String())
}

func TestWriteHeaderStripsNamespace(t *testing.T) {
	page := &query.Page{
		DimensionHeaders: query.DefaultDimensions,
		MetricHeaders:    query.DefaultMetrics,
	}

	var buf bytes.Buffer
	n, err := DefaultFormat().WriteHeader(&buf, page)
	require.NoError(t, err)

	assert.Equal(t, len(query.DefaultDimensions)+len(query.DefaultMetrics), n)
	assert.Equal(t,
		`"pagePath","date","fullReferrer","deviceCategory","city","region","country","sessions","pageviews",`+"\n",
		buf.String())
}

func TestLinesEndWithNewlineOnly(t *testing.T) {
	var buf bytes.Buffer
	_, err := DefaultFormat().WriteRow(&buf, query.Row{Dimensions: []string{"a", "b"}})
	require.NoError(t, err)

	assert.False(t, strings.Contains(buf.String(), "\r"))
	assert.True(t, strings.HasSuffix(buf.String(), ",\n"))
}

func TestWithoutTrailingCommaIsStandardCSV(t *testing.T) {
	f := Format{HeaderDelimiter: ":", TrailingComma: false}
	page := &query.Page{
		DimensionHeaders: []string{"ga:city"},
		MetricHeaders:    []string{"ga:sessions"},
		Rows: []query.Row{
			{Dimensions: []string{`Quote "City"`}, Metrics: [][]string{{"5"}}},
			{Dimensions: []string{"Comma, Town"}, Metrics: [][]string{{"7"}}},
		},
	}

	var buf bytes.Buffer
	_, err := f.WriteHeader(&buf, page)
	require.NoError(t, err)
	for _, row := range page.Rows {
		_, err := f.WriteRow(&buf, row)
		require.NoError(t, err)
	}

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	assert.Equal(t, [][]string{
		{"city", "sessions"},
		{`Quote "City"`, "5"},
		{"Comma, Town", "7"},
	}, records)
}

func TestStripPrefix(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		delimiter string
		expected  string
	}{
		{"ga namespace", "ga:pagePath", ":", "pagePath"},
		{"no delimiter present", "pagePath", ":", "pagePath"},
		{"only first delimiter", "ga:dimension:1", ":", "dimension:1"},
		{"custom delimiter", "ns.metric", ".", "metric"},
		{"empty delimiter keeps name", "ga:city", "", "ga:city"},
		{"longer prefix", "custom:sessions", ":", "sessions"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, StripPrefix(tt.input, tt.delimiter))
		})
	}
}
