package export

import (
	"errors"
	"fmt"
	"iter"
	"strconv"
	"strings"
	"time"
)

// DateLayout is the format used for query dates and output file names
const DateLayout = "2006-01-02"

// ErrInvalidInput is returned when the start date cannot be parsed
var ErrInvalidInput = errors.New("invalid input")

// Accepted start date forms, tried in order
var startDateLayouts = []string{
	DateLayout,
	"2006-1-2",
	"2006/01/02",
	"20060102",
	"2006-01",
	time.RFC3339,
	"2006-01-02 15:04:05",
	"Jan 2 2006",
	"Jan 2, 2006",
	"January 2 2006",
	"January 2, 2006",
	"2 Jan 2006",
	"2 January 2006",
}

// ParseStartDate parses a calendar date in any of the accepted forms, in local time
func ParseStartDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, fmt.Errorf("%w: start date is required", ErrInvalidInput)
	}

	for _, layout := range startDateLayouts {
		t, err := time.ParseInLocation(layout, s, time.Local)
		if err == nil {
			y, m, d := t.Date()
			return time.Date(y, m, d, 0, 0, 0, 0, time.Local), nil
		}
	}

	if t, ok := parseOverflowDate(s); ok {
		return t, nil
	}

	return time.Time{}, fmt.Errorf("%w: %q is not a date (expected YYYY-MM-DD)", ErrInvalidInput, s)
}

// parseOverflowDate accepts Y-M-D with a day up to 31 in any month and rolls
// the excess into the next month (2021-02-30 is March 2).
func parseOverflowDate(s string) (time.Time, bool) {
	parts := strings.Split(s, "-")
	if len(parts) != 3 || len(parts[0]) != 4 {
		return time.Time{}, false
	}

	var n [3]int
	for i, part := range parts {
		if part == "" || strings.Trim(part, "0123456789") != "" {
			return time.Time{}, false
		}
		v, err := strconv.Atoi(part)
		if err != nil {
			return time.Time{}, false
		}
		n[i] = v
	}
	if n[1] < 1 || n[1] > 12 || n[2] < 1 || n[2] > 31 {
		return time.Time{}, false
	}

	return time.Date(n[0], time.Month(n[1]), n[2], 0, 0, 0, 0, time.Local), true
}

// Month is one exported date range: Start through the last day of Start's month
type Month struct {
	Start time.Time
	End   time.Time
}

// NewMonth returns the range from start to the end of its calendar month
func NewMonth(start time.Time) Month {
	return Month{Start: start, End: EndOfMonth(start)}
}

// FileName is the CSV file name for the month, named by its start date
func (m Month) FileName() string {
	return m.Start.Format(DateLayout) + ".csv"
}

func (m Month) String() string {
	return m.Start.Format(DateLayout) + " - " + m.End.Format(DateLayout)
}

// EndOfMonth returns the last day of t's month
func EndOfMonth(t time.Time) time.Time {
	y, m, _ := t.Date()
	return time.Date(y, m+1, 0, 0, 0, 0, 0, t.Location())
}

// AddMonth moves t to the same day one month later. Days past the end of the
// next month roll over into the month after (Jan 31 -> Mar 3).
func AddMonth(t time.Time) time.Time {
	return t.AddDate(0, 1, 0)
}

// Months yields one Month per step from start while the month start is before now().
// now is consulted before every step so a long run stops once it reaches the present.
func Months(start time.Time, now func() time.Time) iter.Seq[Month] {
	if now == nil {
		now = time.Now
	}
	return func(yield func(Month) bool) {
		for cur := start; cur.Before(now()); cur = AddMonth(cur) {
			if !yield(NewMonth(cur)) {
				return
			}
		}
	}
}
