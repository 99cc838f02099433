package model

import (
	"errors"
	"fmt"
	"time"
)

// DateLayout is the calendar date format used on the wire and by the provider.
const DateLayout = "2006-01-02"

// TransactionHistoryFloor is the default start of a transaction window when
// the caller gives none.
const TransactionHistoryFloor = "2024-01-01"

// ErrInvertedDateRange is returned when the start date falls after the end date.
var ErrInvertedDateRange = errors.New("start_date is after end_date")

// DateRange is an inclusive window of calendar dates.
type DateRange struct {
	Start time.Time
	End   time.Time
}

// NewDateRange parses optional start and end dates. An empty start defaults
// to TransactionHistoryFloor and an empty end to the UTC calendar date of now.
func NewDateRange(start, end string, now time.Time) (DateRange, error) {
	if start == "" {
		start = TransactionHistoryFloor
	}
	if end == "" {
		end = now.UTC().Format(DateLayout)
	}

	s, err := time.Parse(DateLayout, start)
	if err != nil {
		return DateRange{}, fmt.Errorf("start_date %q must be YYYY-MM-DD", start)
	}
	e, err := time.Parse(DateLayout, end)
	if err != nil {
		return DateRange{}, fmt.Errorf("end_date %q must be YYYY-MM-DD", end)
	}
	if s.After(e) {
		return DateRange{}, ErrInvertedDateRange
	}
	return DateRange{Start: s, End: e}, nil
}

// StartDate returns the start in YYYY-MM-DD form.
func (r DateRange) StartDate() string { return r.Start.Format(DateLayout) }

// EndDate returns the end in YYYY-MM-DD form.
func (r DateRange) EndDate() string { return r.End.Format(DateLayout) }
