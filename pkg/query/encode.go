package query

import (
	"strconv"
	"time"
)

// Mode selects the comparison a range filter applies to its operand(s).
type Mode string

const (
	ModeEqual      Mode = "equal"
	ModeGreater    Mode = "gt"
	ModeLess       Mode = "lt"
	ModeBefore     Mode = "before"
	ModeOnOrBefore Mode = "onOrBefore"
	ModeAfter      Mode = "after"
	ModeOnOrAfter  Mode = "onOrAfter"
	ModeBetween    Mode = "between"
)

// Kind tags a range filter as numeric or date based. Each kind accepts its
// own subset of modes.
type Kind int

const (
	KindNumeric Kind = iota
	KindDate
)

func (k Kind) String() string {
	switch k {
	case KindNumeric:
		return "numeric"
	case KindDate:
		return "date"
	default:
		return "unknown"
	}
}

var kindModes = map[Kind][]Mode{
	KindNumeric: {ModeEqual, ModeGreater, ModeLess, ModeBetween},
	KindDate:    {ModeBefore, ModeOnOrBefore, ModeAfter, ModeOnOrAfter, ModeBetween},
}

// Modes returns the modes accepted by the kind, in display order.
func (k Kind) Modes() []Mode {
	return append([]Mode(nil), kindModes[k]...)
}

// Accepts reports whether mode is valid for filters of this kind.
func (k Kind) Accepts(mode Mode) bool {
	for _, m := range kindModes[k] {
		if m == mode {
			return true
		}
	}
	return false
}

// EncodeOptions tweaks how range filters are turned into query tokens.
type EncodeOptions struct {
	// StrictDateBounds keeps the strict/inclusive distinction of date modes:
	// before encodes as "<" and after as ">". When false both before and
	// onOrBefore encode as "<=" (likewise after/onOrAfter as ">=").
	StrictDateBounds bool
}

// RangeFilter is a single comparison constraint that can be rendered as a
// `key:<op><operand>` query token.
type RangeFilter interface {
	Kind() Kind
	FilterMode() Mode
	// Encode returns the token for key, or false when the filter is
	// incomplete or its mode does not belong to its kind.
	Encode(key string, opts EncodeOptions) (string, bool)
}

// EncodeRange maps a mode and its already rendered operands to a query
// token. Nil operands are absent. It returns false when the mode is empty or
// unknown, or when an operand the mode needs is missing.
func EncodeRange(key string, mode Mode, value, min, max *string) (string, bool) {
	return encodeRange(key, mode, value, min, max, EncodeOptions{})
}

func encodeRange(key string, mode Mode, value, min, max *string, opts EncodeOptions) (string, bool) {
	if mode == "" {
		return "", false
	}

	single := func(op string) (string, bool) {
		if value == nil {
			return "", false
		}
		return key + ":" + op + *value, true
	}

	switch mode {
	case ModeEqual:
		return single("")
	case ModeGreater:
		return single(">")
	case ModeLess:
		return single("<")
	case ModeBefore:
		if opts.StrictDateBounds {
			return single("<")
		}
		return single("<=")
	case ModeOnOrBefore:
		return single("<=")
	case ModeAfter:
		if opts.StrictDateBounds {
			return single(">")
		}
		return single(">=")
	case ModeOnOrAfter:
		return single(">=")
	case ModeBetween:
		if min == nil || max == nil {
			return "", false
		}
		return key + ":" + *min + ".." + *max, true
	default:
		return "", false
	}
}

// NumericFilter constrains an integer attribute such as stars or size (KB).
type NumericFilter struct {
	Mode  Mode   `json:"mode"`
	Value *int64 `json:"value,omitempty"`
	Min   *int64 `json:"min,omitempty"`
	Max   *int64 `json:"max,omitempty"`
}

func (f *NumericFilter) Kind() Kind       { return KindNumeric }
func (f *NumericFilter) FilterMode() Mode { return f.Mode }

func (f *NumericFilter) Encode(key string, opts EncodeOptions) (string, bool) {
	if f == nil || !KindNumeric.Accepts(f.Mode) {
		return "", false
	}
	return encodeRange(key, f.Mode, formatInt(f.Value), formatInt(f.Min), formatInt(f.Max), opts)
}

// DateFilter constrains a date attribute such as the creation date.
type DateFilter struct {
	Mode  Mode       `json:"mode"`
	Value *time.Time `json:"value,omitempty"`
	Min   *time.Time `json:"min,omitempty"`
	Max   *time.Time `json:"max,omitempty"`
}

func (f *DateFilter) Kind() Kind       { return KindDate }
func (f *DateFilter) FilterMode() Mode { return f.Mode }

func (f *DateFilter) Encode(key string, opts EncodeOptions) (string, bool) {
	if f == nil || !KindDate.Accepts(f.Mode) {
		return "", false
	}
	return encodeRange(key, f.Mode, formatDate(f.Value), formatDate(f.Min), formatDate(f.Max), opts)
}

// Int64 returns a pointer to v, handy for filling filter operands.
func Int64(v int64) *int64 { return &v }

// Date returns a pointer to the UTC midnight of the given day.
func Date(year int, month time.Month, day int) *time.Time {
	t := time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
	return &t
}

func formatInt(v *int64) *string {
	if v == nil {
		return nil
	}
	s := strconv.FormatInt(*v, 10)
	return &s
}

// formatDate renders a bare date for UTC midnights and RFC 3339 otherwise.
func formatDate(t *time.Time) *string {
	if t == nil {
		return nil
	}
	u := t.UTC()
	var s string
	if u.Hour() == 0 && u.Minute() == 0 && u.Second() == 0 && u.Nanosecond() == 0 {
		s = u.Format(time.DateOnly)
	} else {
		s = u.Format(time.RFC3339)
	}
	return &s
}
