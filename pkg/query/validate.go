package query

import (
	"errors"
	"fmt"
	"slices"
	"strings"
)

// MinSearchTermLength is the shortest accepted search term.
const MinSearchTermLength = 3

// ErrInvalidForm is matched by every ValidationErrors value.
var ErrInvalidForm = errors.New("invalid search form")

// FieldError describes one failing form field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e FieldError) Error() string {
	return e.Field + ": " + e.Message
}

// ValidationErrors collects all field errors of a form.
type ValidationErrors []FieldError

func (v ValidationErrors) Error() string {
	msgs := make([]string, len(v))
	for i, e := range v {
		msgs[i] = e.Error()
	}
	return fmt.Sprintf("%s: %s", ErrInvalidForm, strings.Join(msgs, "; "))
}

func (v ValidationErrors) Is(target error) bool {
	return target == ErrInvalidForm
}

// Validate applies the field-level form rules. It returns nil or a
// ValidationErrors listing every failing field.
func Validate(form Form) error {
	var errs ValidationErrors
	add := func(field, format string, args ...any) {
		errs = append(errs, FieldError{Field: field, Message: fmt.Sprintf(format, args...)})
	}

	if len([]rune(strings.TrimSpace(form.SearchTerm))) < MinSearchTermLength {
		add("searchTerm", "enter at least %d characters", MinSearchTermLength)
	}
	if strings.Contains(form.SearchTerm, ":") {
		add("searchTerm", "must not contain ':'")
	}

	if len(form.SearchIn) == 0 {
		add("searchIn", "select at least one field to search in")
	}
	seen := make(map[string]bool, len(form.SearchIn))
	for _, field := range form.SearchIn {
		switch {
		case !slices.Contains(SearchInFields, field):
			add("searchIn", "unknown field %q", field)
		case seen[field]:
			add("searchIn", "duplicate field %q", field)
		}
		seen[field] = true
	}

	af := form.AdvancedFilters
	for _, name := range []struct {
		field, value string
	}{{"userName", af.UserName}, {"organization", af.Organization}} {
		if strings.ContainsAny(name.value, " :") {
			add(name.field, "must not contain spaces or ':'")
		}
	}

	if af.Stars != nil {
		validateNumeric("starsFilter", af.Stars, add)
	}
	if af.Size != nil {
		validateNumeric("sizeFilter", af.Size, add)
	}
	if af.Created != nil {
		validateDate("createdDateFilter", af.Created, add)
	}

	if len(errs) == 0 {
		return nil
	}
	return errs
}

func validateNumeric(field string, f *NumericFilter, add func(string, string, ...any)) {
	if !KindNumeric.Accepts(f.Mode) {
		add(field, "mode %q is not a numeric mode", f.Mode)
		return
	}
	if f.Mode == ModeBetween {
		if f.Min == nil || f.Max == nil {
			add(field, "between needs both a minimum and a maximum")
			return
		}
		if *f.Min > *f.Max {
			add(field, "minimum %d is greater than maximum %d", *f.Min, *f.Max)
		}
		return
	}
	if f.Value == nil {
		add(field, "a value is required")
		return
	}
	if *f.Value < 0 {
		add(field, "value must not be negative")
	}
}

func validateDate(field string, f *DateFilter, add func(string, string, ...any)) {
	if !KindDate.Accepts(f.Mode) {
		add(field, "mode %q is not a date mode", f.Mode)
		return
	}
	if f.Mode == ModeBetween {
		if f.Min == nil || f.Max == nil {
			add(field, "between needs both a start and an end date")
			return
		}
		if f.Min.After(*f.Max) {
			add(field, "start date is after end date")
		}
		return
	}
	if f.Value == nil {
		add(field, "a date is required")
	}
}
