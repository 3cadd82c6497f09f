package query

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ParseNumericFilter reads the compact "mode:operand" notation used on the
// command line, e.g. "gt:10", "equal:5" or "between:1..100".
func ParseNumericFilter(s string) (*NumericFilter, error) {
	mode, operand, err := splitSpec(s)
	if err != nil {
		return nil, err
	}
	if mode == ModeBetween {
		lo, hi, ok := strings.Cut(operand, "..")
		if !ok {
			return nil, fmt.Errorf("between filter %q: expected min..max", s)
		}
		return NumericFilterFromParts(string(mode), "", lo, hi)
	}
	return NumericFilterFromParts(string(mode), operand, "", "")
}

// ParseDateFilter reads "mode:date" or "between:date..date" where dates are
// YYYY-MM-DD or RFC 3339.
func ParseDateFilter(s string) (*DateFilter, error) {
	mode, operand, err := splitSpec(s)
	if err != nil {
		return nil, err
	}
	if mode == ModeBetween {
		lo, hi, ok := strings.Cut(operand, "..")
		if !ok {
			return nil, fmt.Errorf("between filter %q: expected start..end", s)
		}
		return DateFilterFromParts(string(mode), "", lo, hi)
	}
	return DateFilterFromParts(string(mode), operand, "", "")
}

func splitSpec(s string) (Mode, string, error) {
	mode, operand, ok := strings.Cut(s, ":")
	if !ok || mode == "" || operand == "" {
		return "", "", fmt.Errorf("filter %q: expected mode:value", s)
	}
	return Mode(mode), operand, nil
}

// NumericFilterFromParts assembles a numeric filter from separately supplied
// fields, as submitted by a form. Empty strings are absent operands. It
// returns nil when every part is empty.
func NumericFilterFromParts(mode, value, min, max string) (*NumericFilter, error) {
	if mode == "" && value == "" && min == "" && max == "" {
		return nil, nil
	}
	f := &NumericFilter{Mode: Mode(mode)}
	var err error
	if f.Value, err = parseIntOperand(value); err != nil {
		return nil, fmt.Errorf("value: %w", err)
	}
	if f.Min, err = parseIntOperand(min); err != nil {
		return nil, fmt.Errorf("min: %w", err)
	}
	if f.Max, err = parseIntOperand(max); err != nil {
		return nil, fmt.Errorf("max: %w", err)
	}
	return f, nil
}

// DateFilterFromParts is the date counterpart of NumericFilterFromParts.
func DateFilterFromParts(mode, value, min, max string) (*DateFilter, error) {
	if mode == "" && value == "" && min == "" && max == "" {
		return nil, nil
	}
	f := &DateFilter{Mode: Mode(mode)}
	var err error
	if f.Value, err = parseDateOperand(value); err != nil {
		return nil, fmt.Errorf("value: %w", err)
	}
	if f.Min, err = parseDateOperand(min); err != nil {
		return nil, fmt.Errorf("min: %w", err)
	}
	if f.Max, err = parseDateOperand(max); err != nil {
		return nil, fmt.Errorf("max: %w", err)
	}
	return f, nil
}

func parseIntOperand(s string) (*int64, error) {
	if s == "" {
		return nil, nil
	}
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid number %q", s)
	}
	return &v, nil
}

// ParseDate accepts YYYY-MM-DD or RFC 3339 timestamps.
func ParseDate(s string) (time.Time, error) {
	if t, err := time.Parse(time.DateOnly, s); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: use YYYY-MM-DD or RFC 3339", s)
	}
	return t, nil
}

func parseDateOperand(s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	t, err := ParseDate(s)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
