package shotgroup

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/goccy/go-json"
)

// KindCircle is the only record kind that can become a Sample. Records
// without a kind are assumed to be circles.
const KindCircle = "circle"

// Drop reasons reported in Dropped.Reason.
const (
	ReasonMissingField      = "missing field"
	ReasonNotNumeric        = "not numeric"
	ReasonNotFinite         = "not finite"
	ReasonNonPositiveRadius = "non-positive radius"
	ReasonNotCircle         = "not a circle"
	ReasonNotObject         = "not an object"
)

// Record is one raw source record, typically decoded from JSON or built by a
// detector. Recognised keys are "id", "kind", "x" (or "cx"), "y" (or "cy")
// and "r". Values may be any Go number or a numeric string. A nil Record
// stands for a source element that was not an object.
type Record map[string]any

// UnmarshalJSON accepts any JSON value so that one bad element cannot fail
// a whole list. Anything but an object decodes to a nil Record.
func (r *Record) UnmarshalJSON(data []byte) error {
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	m, _ := v.(map[string]any)
	*r = m
	return nil
}

// Dropped describes a record that ingestion skipped.
type Dropped struct {
	// Index is the record's position in the ingested sequence.
	Index int `json:"index"`

	// ID is the record's identifier, or "#<index>" when it has none.
	ID string `json:"id"`

	// Reason is one of the Reason* constants, with the offending field.
	Reason string `json:"reason"`
}

func (d Dropped) String() string {
	return fmt.Sprintf("record %d (%s): %s", d.Index, d.ID, d.Reason)
}

// Validate turns a single record into a Sample. When the record is malformed
// it returns a non-nil *Dropped and the zero Sample.
func Validate(index int, rec Record) (Sample, *Dropped) {
	id := recordID(index, rec)
	drop := func(reason string) (Sample, *Dropped) {
		return Sample{}, &Dropped{Index: index, ID: id, Reason: reason}
	}

	if rec == nil {
		return drop(ReasonNotObject)
	}
	if kind, ok := rec["kind"]; ok {
		if s, _ := kind.(string); !strings.EqualFold(s, KindCircle) {
			return drop(ReasonNotCircle)
		}
	}

	var vals [3]float64
	for i, keys := range [][]string{{"x", "cx"}, {"y", "cy"}, {"r"}} {
		raw, ok := lookup(rec, keys...)
		if !ok {
			return drop(ReasonMissingField + ": " + keys[0])
		}
		v, err := toFloat(raw)
		if err != nil {
			return drop(ReasonNotNumeric + ": " + keys[0])
		}
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return drop(ReasonNotFinite + ": " + keys[0])
		}
		vals[i] = v
	}
	if vals[2] <= 0 {
		return drop(ReasonNonPositiveRadius)
	}

	return Sample{ID: id, X: vals[0], Y: vals[1], R: vals[2]}, nil
}

func recordID(index int, rec Record) string {
	if v, ok := rec["id"]; ok && v != nil {
		if s := fmt.Sprint(v); s != "" {
			return s
		}
	}
	return "#" + strconv.Itoa(index)
}

func lookup(rec Record, keys ...string) (any, bool) {
	for _, k := range keys {
		if v, ok := rec[k]; ok && v != nil {
			return v, true
		}
	}
	return nil, false
}

// toFloat accepts Go numeric types, json.Number style values and numeric
// strings. Booleans and everything else are rejected.
func toFloat(v any) (float64, error) {
	switch n := v.(type) {
	case float64:
		return n, nil
	case float32:
		return float64(n), nil
	case int:
		return float64(n), nil
	case int32:
		return float64(n), nil
	case int64:
		return float64(n), nil
	case uint:
		return float64(n), nil
	case uint32:
		return float64(n), nil
	case uint64:
		return float64(n), nil
	case interface{ Float64() (float64, error) }:
		return n.Float64()
	case string:
		return strconv.ParseFloat(strings.TrimSpace(n), 64)
	default:
		return 0, fmt.Errorf("unsupported value type %T", v)
	}
}
