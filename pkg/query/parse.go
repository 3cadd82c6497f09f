package query

import "strings"

// Filter is one key:value token of a parsed query.
type Filter struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// FormattedQuery is the display structure recovered from a query string.
type FormattedQuery struct {
	RawQuery   string   `json:"rawQuery"`
	SearchTerm string   `json:"searchTerm,omitempty"`
	SearchIn   []string `json:"searchIn,omitempty"`
	Filters    []Filter `json:"filters"`
}

// Parse decomposes a query string into its search term, search-in fields and
// the remaining filters, in encounter order. It never fails.
//
// Tokens are separated by single spaces with no quoting, so a value holding
// a space cannot be represented. A token is a filter when it contains a
// colon; only the first colon separates key from value.
func Parse(raw string) FormattedQuery {
	fq := FormattedQuery{RawQuery: raw, Filters: []Filter{}}
	if raw == "" {
		return fq
	}

	var terms []string
	for _, part := range strings.Split(raw, " ") {
		if part == "" {
			continue
		}
		if key, value, ok := strings.Cut(part, ":"); ok {
			fq.Filters = append(fq.Filters, Filter{Key: key, Value: value})
			continue
		}
		terms = append(terms, part)
	}
	fq.SearchTerm = strings.Join(terms, " ")

	kept := fq.Filters[:0]
	for _, f := range fq.Filters {
		if f.Key == "in" {
			fq.SearchIn = append(fq.SearchIn, strings.Split(f.Value, ",")...)
			continue
		}
		kept = append(kept, f)
	}
	fq.Filters = kept

	return fq
}
