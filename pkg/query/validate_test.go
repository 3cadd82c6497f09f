package query

import (
	"errors"
	"strings"
	"testing"
)

func TestValidate(t *testing.T) {
	valid := Form{SearchTerm: "react", SearchIn: []string{InName}}

	tests := []struct {
		name      string
		mutate    func(f *Form)
		wantField string
	}{
		{"valid form", func(f *Form) {}, ""},
		{"short term", func(f *Form) { f.SearchTerm = "go" }, "searchTerm"},
		{"blank term", func(f *Form) { f.SearchTerm = "     " }, "searchTerm"},
		{"colon in term", func(f *Form) { f.SearchTerm = "user:bob" }, "searchTerm"},
		{"no search-in fields", func(f *Form) { f.SearchIn = nil }, "searchIn"},
		{"unknown search-in field", func(f *Form) { f.SearchIn = []string{"topics"} }, "searchIn"},
		{"duplicate search-in field", func(f *Form) { f.SearchIn = []string{InName, InName} }, "searchIn"},
		{"user with space", func(f *Form) { f.AdvancedFilters.UserName = "a b" }, "userName"},
		{
			"numeric filter with date mode",
			func(f *Form) { f.AdvancedFilters.Stars = &NumericFilter{Mode: ModeAfter, Value: Int64(1)} },
			"starsFilter",
		},
		{
			"between missing bound",
			func(f *Form) { f.AdvancedFilters.Size = &NumericFilter{Mode: ModeBetween, Min: Int64(1)} },
			"sizeFilter",
		},
		{
			"between inverted",
			func(f *Form) {
				f.AdvancedFilters.Stars = &NumericFilter{Mode: ModeBetween, Min: Int64(10), Max: Int64(1)}
			},
			"starsFilter",
		},
		{
			"negative value",
			func(f *Form) { f.AdvancedFilters.Stars = &NumericFilter{Mode: ModeGreater, Value: Int64(-1)} },
			"starsFilter",
		},
		{
			"date filter missing value",
			func(f *Form) { f.AdvancedFilters.Created = &DateFilter{Mode: ModeBefore} },
			"createdDateFilter",
		},
		{
			"date range inverted",
			func(f *Form) {
				f.AdvancedFilters.Created = &DateFilter{Mode: ModeBetween, Min: Date(2024, 2, 1), Max: Date(2024, 1, 1)}
			},
			"createdDateFilter",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			form := valid
			form.SearchIn = append([]string(nil), valid.SearchIn...)
			tt.mutate(&form)

			err := Validate(form)
			if tt.wantField == "" {
				if err != nil {
					t.Fatalf("expected no error, got %v", err)
				}
				return
			}
			if !errors.Is(err, ErrInvalidForm) {
				t.Fatalf("expected ErrInvalidForm, got %v", err)
			}
			var verrs ValidationErrors
			if !errors.As(err, &verrs) {
				t.Fatalf("expected ValidationErrors, got %T", err)
			}
			found := false
			for _, fe := range verrs {
				if fe.Field == tt.wantField {
					found = true
				}
			}
			if !found {
				t.Errorf("expected error on %s, got %v", tt.wantField, verrs)
			}
		})
	}
}

func TestValidateCollectsAllErrors(t *testing.T) {
	err := Validate(Form{})
	var verrs ValidationErrors
	if !errors.As(err, &verrs) {
		t.Fatalf("expected ValidationErrors, got %v", err)
	}
	if len(verrs) != 2 {
		t.Errorf("expected 2 errors, got %d: %v", len(verrs), verrs)
	}
	if !strings.Contains(err.Error(), "at least 3 characters") {
		t.Errorf("unexpected message: %s", err)
	}
}
