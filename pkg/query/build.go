// Package query turns a structured repository search form into a GitHub
// search query string and parses such strings back into display data.
//
// The two directions are deliberately independent: Parse does not know which
// form field produced a given token, so Parse(Build(form)) only recovers the
// search term and the search-in fields.
package query

import "strings"

// Fields a search term can be matched against.
const (
	InName        = "name"
	InDescription = "description"
	InReadme      = "readme"
)

// SearchInFields lists the accepted search-in fields in display order.
var SearchInFields = []string{InName, InDescription, InReadme}

// Form is the structured input of a repository search.
type Form struct {
	SearchTerm      string          `json:"searchTerm"`
	SearchIn        []string        `json:"searchIn"`
	AdvancedFilters AdvancedFilters `json:"advancedFilters"`
}

// AdvancedFilters holds the optional qualifiers of a search.
type AdvancedFilters struct {
	UserName     string         `json:"userName,omitempty"`
	Organization string         `json:"organization,omitempty"`
	Topics       []string       `json:"topics"`
	Languages    []string       `json:"languages"`
	Stars        *NumericFilter `json:"starsFilter,omitempty"`
	Size         *NumericFilter `json:"sizeFilter,omitempty"`
	Created      *DateFilter    `json:"createdDateFilter,omitempty"`
}

// Builder composes query strings from forms.
type Builder struct {
	Options EncodeOptions
}

// Build composes the query string for form using the default encoding.
func Build(form Form) string {
	return Builder{}.Build(form)
}

// Build composes the query string for form. Tokens are emitted in a fixed
// order: term group, user, org, languages, topics, stars, size, created.
// Absent or incomplete parts are skipped; an empty form yields "".
func (b Builder) Build(form Form) string {
	var parts []string

	if form.SearchTerm != "" && len(form.SearchIn) > 0 {
		parts = append(parts, form.SearchTerm+" in:"+strings.Join(form.SearchIn, ","))
	}

	af := form.AdvancedFilters
	if af.UserName != "" {
		parts = append(parts, "user:"+af.UserName)
	}
	if af.Organization != "" {
		parts = append(parts, "org:"+af.Organization)
	}
	for _, l := range af.Languages {
		parts = append(parts, "language:"+l)
	}
	for _, t := range af.Topics {
		parts = append(parts, "topic:"+t)
	}

	ranges := []struct {
		key    string
		filter RangeFilter
	}{
		{"stars", nilIfEmpty(af.Stars)},
		{"size", nilIfEmpty(af.Size)},
		{"created", nilIfEmptyDate(af.Created)},
	}
	for _, r := range ranges {
		if r.filter == nil {
			continue
		}
		if token, ok := r.filter.Encode(r.key, b.Options); ok {
			parts = append(parts, token)
		}
	}

	return strings.Join(parts, " ")
}

// nilIfEmpty avoids storing a typed nil pointer in the RangeFilter interface.
func nilIfEmpty(f *NumericFilter) RangeFilter {
	if f == nil {
		return nil
	}
	return f
}

func nilIfEmptyDate(f *DateFilter) RangeFilter {
	if f == nil {
		return nil
	}
	return f
}
