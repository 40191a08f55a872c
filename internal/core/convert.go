package core

// convert.go turns the legacy export's loosely formatted text cells into
// typed values.
//
// These functions never fail. Input they cannot read yields an invalid
// pgtype value or a zero, and the caller decides on the fallback:
//   - Dates are day/month/2-digit-year with an optional H:MM[:SS] time
//   - Costs carry a "$" marker and use "-" for "nothing charged"
//   - Free text may contain apostrophes that must survive SQL quoting

import (
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgtype"
)

// DefaultTime is assumed when a date cell has no matching time cell.
const DefaultTime = "00:00"

// timestampLayouts are tried in order. Two-digit years pivot the POSIX way:
// 69-99 are 19xx, 00-68 are 20xx.
var timestampLayouts = []string{
	"2/1/06 15:04:05",
	"2/1/06 15:04",
}

// ParseTimestamp combines a date and an optional time cell into milliseconds
// since epoch, interpreted in loc. Returns invalid for an empty or
// unparseable date.
func ParseTimestamp(date, timeOfDay string, loc *time.Location) pgtype.Int8 {
	date = strings.TrimSpace(date)
	if date == "" {
		return pgtype.Int8{Valid: false}
	}

	timeOfDay = strings.TrimSpace(timeOfDay)
	if timeOfDay == "" {
		timeOfDay = DefaultTime
	}
	if loc == nil {
		loc = time.Local
	}

	value := date + " " + padTimeParts(timeOfDay)
	for _, layout := range timestampLayouts {
		t, err := time.ParseInLocation(layout, value, loc)
		if err == nil {
			return pgtype.Int8{Int64: t.UnixMilli(), Valid: true}
		}
	}

	return pgtype.Int8{Valid: false}
}

// padTimeParts zero-pads single-digit hour, minute and second parts
// ("9:5" → "09:05") since the legacy sheet does not pad them consistently.
func padTimeParts(s string) string {
	parts := strings.Split(s, ":")
	for i, p := range parts {
		if len(p) == 1 {
			parts[i] = "0" + p
		}
	}
	return strings.Join(parts, ":")
}

// ParseCost reads a currency cell such as " $30 " or " $-   ".
// A dash, an empty cell, or anything unparseable is zero.
func ParseCost(s string) float64 {
	v, _ := parseCost(s)
	return v
}

// parseCost is ParseCost that also reports whether a non-empty, non-dash
// value had to be discarded.
func parseCost(s string) (float64, bool) {
	s = strings.TrimSpace(strings.ReplaceAll(s, "$", ""))
	if s == "" || s == "-" {
		return 0, true
	}

	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

// FormatCost renders a cost the way the legacy import always did: shortest
// decimal form with at least one fractional digit (30 → "30.0").
func FormatCost(v float64) string {
	s := strconv.FormatFloat(v, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}

// EscapeText doubles every single quote so s can be embedded in a
// single-quoted SQL literal.
func EscapeText(s string) string {
	return strings.ReplaceAll(s, "'", "''")
}
