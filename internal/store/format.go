package store

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

const (
	// SheetDateLayout is how the Date column of the claims sheet is written.
	SheetDateLayout = "02/01/2006 15:04:05"
	// isoMillis matches JavaScript's Date.toISOString.
	isoMillis = "2006-01-02T15:04:05.000Z"
)

var sheetHeader = []interface{}{"Timestamp", "Instagram", "Amount (VND)", "Date"}

// ParseClaimTime accepts the timestamp spellings found in claim sheets: ISO 8601
// from scripts and the API, or the sheet's own display layout in loc.
func ParseClaimTime(raw string, loc *time.Location) (time.Time, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, false
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, true
	}
	if loc == nil {
		loc = time.UTC
	}
	for _, layout := range []string{SheetDateLayout, "2/1/2006 15:04:05", "2006-01-02 15:04:05"} {
		if t, err := time.ParseInLocation(layout, raw, loc); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// cellInt reads an amount cell that the API may return as a number or a string.
func cellInt(v interface{}) (int64, error) {
	switch n := v.(type) {
	case float64:
		return int64(n), nil
	case int64:
		return n, nil
	case int:
		return int64(n), nil
	case string:
		s := strings.ReplaceAll(strings.TrimSpace(n), ",", "")
		if i, err := strconv.ParseInt(s, 10, 64); err == nil {
			return i, nil
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, fmt.Errorf("invalid amount %q: %w", n, err)
		}
		return int64(f), nil
	default:
		return 0, fmt.Errorf("unexpected amount cell %T", v)
	}
}

// cellTime reads a timestamp cell. Date cells arrive as serial day numbers counted
// from 1899-12-30 in the spreadsheet's zone; text cells are parsed in textLoc.
func cellTime(row []interface{}, i int, sheetLoc, textLoc *time.Location) (time.Time, bool) {
	if i >= len(row) {
		return time.Time{}, false
	}
	switch v := row[i].(type) {
	case float64:
		if v <= 0 || math.IsNaN(v) || math.IsInf(v, 0) {
			return time.Time{}, false
		}
		days := math.Floor(v)
		secs := math.Round((v - days) * 86400)
		return time.Date(1899, 12, 30+int(days), 0, 0, int(secs), 0, sheetLoc), true
	case string:
		return ParseClaimTime(v, textLoc)
	default:
		return time.Time{}, false
	}
}

func cellString(row []interface{}, i int) string {
	if i >= len(row) || row[i] == nil {
		return ""
	}
	return fmt.Sprint(row[i])
}
