package domain

import (
	"errors"
	"fmt"
	"time"
)

// QueryCategory is the protocol-level query shape of a report.
type QueryCategory string

const (
	DetailQuery  QueryCategory = "DetailQuery"
	SummaryQuery QueryCategory = "SummaryQuery"
	AgingQuery   QueryCategory = "AgingQuery"
)

func (c QueryCategory) Valid() bool {
	switch c {
	case DetailQuery, SummaryQuery, AgingQuery:
		return true
	}
	return false
}

// ReportDefinition describes one supported report. Definitions are created
// once at startup and never mutated.
type ReportDefinition struct {
	Key           string
	DisplayName   string
	ReportType    string
	Category      QueryCategory
	UsesDateRange bool
}

const DateLayout = "2006-01-02"

var ErrInvalidDateRange = errors.New("invalid date range")

// DateRange is an inclusive pair of calendar dates.
type DateRange struct {
	From time.Time
	To   time.Time
}

func NewDateRange(from, to time.Time) (DateRange, error) {
	r := DateRange{From: truncateDay(from), To: truncateDay(to)}
	if err := r.Validate(); err != nil {
		return DateRange{}, err
	}
	return r, nil
}

func (r DateRange) Validate() error {
	if r.From.After(r.To) {
		return fmt.Errorf("%w: from %s is after to %s", ErrInvalidDateRange,
			r.From.Format(DateLayout), r.To.Format(DateLayout))
	}
	return nil
}

func (r DateRange) String() string {
	return r.From.Format(DateLayout) + ".." + r.To.Format(DateLayout)
}

// CurrentMonth returns the calendar month containing now.
func CurrentMonth(now time.Time) DateRange {
	first := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	last := first.AddDate(0, 1, -1)
	return DateRange{From: first, To: last}
}

// ParseDateRange parses YYYY-MM-DD bounds. Missing, unparsable or inverted
// input falls back to def.
func ParseDateRange(from, to string, def DateRange) DateRange {
	if from == "" || to == "" {
		return def
	}
	f, err := time.Parse(DateLayout, from)
	if err != nil {
		return def
	}
	t, err := time.Parse(DateLayout, to)
	if err != nil {
		return def
	}
	r, err := NewDateRange(f, t)
	if err != nil {
		return def
	}
	return r
}

func truncateDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
