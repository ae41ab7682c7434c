package model

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// DateLayout is the calendar date format used on the wire and in drafts.
const DateLayout = "2006-01-02"

// DefaultRangeDays is the length of the default filter range ending today.
const DefaultRangeDays = 7

// PriceBucket selects a price band for the product list.
type PriceBucket string

const (
	BucketAll      PriceBucket = "all"
	BucketBelow50  PriceBucket = "below-50"
	Bucket50To100  PriceBucket = "50-to-100"
	BucketAbove100 PriceBucket = "above-100"
)

// Buckets lists the price buckets in display order.
var Buckets = []PriceBucket{BucketAll, BucketBelow50, Bucket50To100, BucketAbove100}

var bucketAliases = map[string]PriceBucket{
	"":          BucketAll,
	"all":       BucketAll,
	"below-50":  BucketBelow50,
	"lt50":      BucketBelow50,
	"50-to-100": Bucket50To100,
	"50to100":   Bucket50To100,
	"above-100": BucketAbove100,
	"gt100":     BucketAbove100,
}

// ParsePriceBucket parses a bucket name. An empty name means all prices.
func ParsePriceBucket(s string) (PriceBucket, error) {
	if b, ok := bucketAliases[strings.ToLower(strings.TrimSpace(s))]; ok {
		return b, nil
	}
	return "", NewDomainError(ErrCodeInvalidFilter, fmt.Sprintf("unknown price bucket %q", s))
}

// Label returns a human readable description of the bucket.
func (b PriceBucket) Label() string {
	switch b {
	case BucketBelow50:
		return "Price < 50"
	case Bucket50To100:
		return "50 ≤ Price ≤ 100"
	case BucketAbove100:
		return "Price > 100"
	default:
		return "All prices"
	}
}

// Next cycles to the following bucket in display order.
func (b PriceBucket) Next() PriceBucket {
	for i, candidate := range Buckets {
		if candidate == b {
			return Buckets[(i+1)%len(Buckets)]
		}
	}
	return BucketAll
}

// DateRange is an inclusive range of calendar dates.
type DateRange struct {
	Start time.Time
	End   time.Time
}

// DefaultDateRange returns the last seven days ending on now's calendar date.
func DefaultDateRange(now time.Time) DateRange {
	end := truncateDay(now)
	return DateRange{Start: end.AddDate(0, 0, -DefaultRangeDays), End: end}
}

// ParseDateRange parses YYYY-MM-DD bounds. Empty bounds fall back to the
// default range computed from now.
func ParseDateRange(start, end string, now time.Time) (DateRange, error) {
	r := DefaultDateRange(now)

	if start = strings.TrimSpace(start); start != "" {
		t, err := time.Parse(DateLayout, start)
		if err != nil {
			return DateRange{}, NewDomainError(ErrCodeInvalidDateRange, fmt.Sprintf("invalid start date %q", start))
		}
		r.Start = t
	}

	if end = strings.TrimSpace(end); end != "" {
		t, err := time.Parse(DateLayout, end)
		if err != nil {
			return DateRange{}, NewDomainError(ErrCodeInvalidDateRange, fmt.Sprintf("invalid end date %q", end))
		}
		r.End = t
	}

	if err := r.Validate(); err != nil {
		return DateRange{}, err
	}
	return r, nil
}

// Validate rejects a range whose end precedes its start.
func (r DateRange) Validate() error {
	if truncateDay(r.End).Before(truncateDay(r.Start)) {
		return ErrInvalidDateRange
	}
	return nil
}

// Strings returns the bounds formatted as YYYY-MM-DD.
func (r DateRange) Strings() (string, string) {
	return r.Start.Format(DateLayout), r.End.Format(DateLayout)
}

// MarshalJSON encodes the range as {"startDate": ..., "endDate": ...}.
func (r DateRange) MarshalJSON() ([]byte, error) {
	start, end := r.Strings()
	return json.Marshal(struct {
		StartDate string `json:"startDate"`
		EndDate   string `json:"endDate"`
	}{start, end})
}

func truncateDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// FilterState is the list view's filter bar. The date range is carried into
// the add-product wizard; it does not filter the list.
type FilterState struct {
	Range  DateRange   `json:"dateRange"`
	Search string      `json:"search"`
	Bucket PriceBucket `json:"priceBucket"`
}

// DefaultFilterState returns the filter bar as it is on first load.
func DefaultFilterState(now time.Time) FilterState {
	return FilterState{
		Range:  DefaultDateRange(now),
		Bucket: BucketAll,
	}
}
