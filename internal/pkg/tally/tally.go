// Package tally holds the daily counter record shared by the widget, the
// tracker and the persistence backend, and decodes stored payloads.
package tally

import (
	"fmt"
	"strings"
	"time"
)

// DateLayout matches the date strings the widget has always written
// (e.g. "Mon Jan 01 2024").
const DateLayout = "Mon Jan 02 2006"

// DateKey returns the local calendar date of t as a storage key.
func DateKey(t time.Time) string {
	return t.Local().Format(DateLayout)
}

// Bucket identifies one of the two independent counters.
type Bucket string

const (
	BucketA Bucket = "a"
	BucketB Bucket = "b"
)

// ParseBucket accepts "a"/"b" (any case) and the historical box numbers "1"/"2".
func ParseBucket(raw string) (Bucket, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "a", "1":
		return BucketA, nil
	case "b", "2":
		return BucketB, nil
	}
	return "", fmt.Errorf("unknown bucket %q", raw)
}

// Record is the live count for one day.
type Record struct {
	Date   string `json:"date"`
	CountA int    `json:"countA"`
	CountB int    `json:"countB"`
}

// Zero returns an empty record for date.
func Zero(date string) Record {
	return Record{Date: date}
}

// Total is always derived from the two buckets.
func (r Record) Total() int {
	return r.CountA + r.CountB
}

// Add returns a copy of r with bucket incremented by one.
func (r Record) Add(b Bucket) Record {
	switch b {
	case BucketA:
		r.CountA++
	case BucketB:
		r.CountB++
	}
	return r
}

// Payload is the wire shape written by the widget and the backend.
type Payload struct {
	Date       string `json:"date"`
	TotalCount int    `json:"totalCount"`
	CountA     int    `json:"countA"`
	CountB     int    `json:"countB"`
}

// Payload converts r to its wire shape.
func (r Record) Payload() Payload {
	return Payload{
		Date:       r.Date,
		TotalCount: r.Total(),
		CountA:     r.CountA,
		CountB:     r.CountB,
	}
}

// Split divides a legacy combined total between the buckets.
func Split(total int) (a, b int) {
	if total < 0 {
		total = 0
	}
	a = total / 2
	return a, total - a
}
