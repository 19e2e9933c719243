package tally

import (
	"bytes"
	"errors"
	"fmt"
	"math"
	"strconv"

	"github.com/goccy/go-json"
)

// ErrMalformedData marks stored payloads that cannot be interpreted at all.
var ErrMalformedData = errors.New("malformed counter data")

// Counts is either LegacyTotal or SplitCounts.
type Counts interface {
	buckets() (a, b int)
}

// LegacyTotal is a combined count written before the buckets existed.
type LegacyTotal struct {
	Total int
}

func (l LegacyTotal) buckets() (int, int) {
	return Split(l.Total)
}

// SplitCounts carries both bucket counts.
type SplitCounts struct {
	A int
	B int
}

func (s SplitCounts) buckets() (int, int) {
	return s.A, s.B
}

// Stored is a decoded payload before it is checked against today.
type Stored struct {
	Date   string
	Counts Counts
}

// Resolve adopts s only when it belongs to today.
func (s Stored) Resolve(today string) (Record, bool) {
	if s.Date != today {
		return Zero(today), false
	}
	rec := Record{Date: today}
	if s.Counts != nil {
		rec.CountA, rec.CountB = s.Counts.buckets()
	}
	return rec, true
}

// StoredOf wraps a record so it can travel through the same paths as decoded data.
func StoredOf(r Record) Stored {
	return Stored{Date: r.Date, Counts: SplitCounts{A: r.CountA, B: r.CountB}}
}

type rawPayload struct {
	Date       *string         `json:"date"`
	Count      json.RawMessage `json:"count"`
	TotalCount json.RawMessage `json:"totalCount"`
	CountA     json.RawMessage `json:"countA"`
	CountB     json.RawMessage `json:"countB"`
	CountBox1  json.RawMessage `json:"countBox1"`
	CountBox2  json.RawMessage `json:"countBox2"`
}

// Decode parses a stored or received payload. Count fields are coerced, so
// only a payload that is not an object with a string date is rejected.
func Decode(data []byte) (Stored, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return Stored{}, fmt.Errorf("%w: not a JSON object", ErrMalformedData)
	}

	var raw rawPayload
	if err := json.Unmarshal(trimmed, &raw); err != nil {
		return Stored{}, fmt.Errorf("%w: %v", ErrMalformedData, err)
	}

	stored := Stored{}
	if raw.Date != nil {
		stored.Date = *raw.Date
	}

	a, b := first(raw.CountA, raw.CountBox1), first(raw.CountB, raw.CountBox2)
	switch {
	case present(a) || present(b):
		stored.Counts = SplitCounts{A: Coerce(a), B: Coerce(b)}
	case present(raw.TotalCount):
		stored.Counts = LegacyTotal{Total: Coerce(raw.TotalCount)}
	case present(raw.Count):
		stored.Counts = LegacyTotal{Total: Coerce(raw.Count)}
	default:
		stored.Counts = SplitCounts{}
	}
	return stored, nil
}

// DecodeLegacyValue reads the bare integer values old Redis deployments stored.
func DecodeLegacyValue(date, value string) (Stored, error) {
	n, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return Stored{}, fmt.Errorf("%w: %q is not a count", ErrMalformedData, value)
	}
	return Stored{Date: date, Counts: LegacyTotal{Total: CoerceFloat(n)}}, nil
}

// Coerce turns any JSON value into a non-negative count.
func Coerce(v json.RawMessage) int {
	if !present(v) {
		return 0
	}
	var n float64
	if err := json.Unmarshal(v, &n); err != nil {
		return 0
	}
	return CoerceFloat(n)
}

// CoerceFloat floors n into a non-negative count capped at MaxInt32.
func CoerceFloat(n float64) int {
	if math.IsNaN(n) || math.IsInf(n, 0) || n <= 0 {
		return 0
	}
	if n > math.MaxInt32 {
		return math.MaxInt32
	}
	return int(math.Floor(n))
}

func present(v json.RawMessage) bool {
	return len(v) > 0 && !bytes.Equal(v, []byte("null"))
}

func first(vs ...json.RawMessage) json.RawMessage {
	for _, v := range vs {
		if present(v) {
			return v
		}
	}
	return nil
}

// Encode serializes r in its wire shape.
func Encode(r Record) ([]byte, error) {
	return json.Marshal(r.Payload())
}
