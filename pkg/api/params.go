package api

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/rubiojr/reposearch/pkg/query"
	"github.com/rubiojr/reposearch/pkg/search"
)

// formFromValues reads a search form from query parameters. "in", "language"
// and "topic" may repeat or hold comma separated lists.
func formFromValues(v url.Values) (query.Form, error) {
	form := query.Form{
		SearchTerm: strings.TrimSpace(v.Get("term")),
		SearchIn:   listParam(v, "in"),
		AdvancedFilters: query.AdvancedFilters{
			UserName:     strings.TrimSpace(v.Get("user")),
			Organization: strings.TrimSpace(v.Get("org")),
			Languages:    listParam(v, "language"),
			Topics:       listParam(v, "topic"),
		},
	}

	var err error
	if form.AdvancedFilters.Stars, err = numericParam(v, "stars"); err != nil {
		return form, err
	}
	if form.AdvancedFilters.Size, err = numericParam(v, "size"); err != nil {
		return form, err
	}
	if form.AdvancedFilters.Created, err = query.DateFilterFromParts(
		v.Get("created_mode"), v.Get("created"), v.Get("created_min"), v.Get("created_max"),
	); err != nil {
		return form, fmt.Errorf("created: %w", err)
	}
	return form, nil
}

func numericParam(v url.Values, name string) (*query.NumericFilter, error) {
	f, err := query.NumericFilterFromParts(v.Get(name+"_mode"), v.Get(name), v.Get(name+"_min"), v.Get(name+"_max"))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return f, nil
}

func listParam(v url.Values, name string) []string {
	out := []string{}
	for _, raw := range v[name] {
		for _, part := range strings.Split(raw, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

// requestFromValues reads sort, order and page.
func requestFromValues(v url.Values) (search.Request, error) {
	sort, err := search.ParseSort(v.Get("sort"))
	if err != nil {
		return search.Request{}, err
	}
	order, err := search.ParseOrder(v.Get("order"))
	if err != nil {
		return search.Request{}, err
	}

	page := 1
	if p := v.Get("page"); p != "" {
		page, err = strconv.Atoi(p)
		if err != nil || page < 1 {
			return search.Request{}, fmt.Errorf("invalid page %q", p)
		}
	}
	return search.Request{Sort: sort, Order: order, Page: page}, nil
}

func boolParam(v url.Values, name string, def bool) (bool, error) {
	raw := v.Get(name)
	if raw == "" {
		return def, nil
	}
	b, err := strconv.ParseBool(raw)
	if err != nil {
		return def, fmt.Errorf("invalid %s %q", name, raw)
	}
	return b, nil
}
