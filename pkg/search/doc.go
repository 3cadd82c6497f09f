// Package search queries the GitHub repository search API.
//
// A Client issues one request per Request (query text, sort key, order and
// page) with a fixed page size. Failures are re-attempted a configurable
// number of times (once by default) and successful pages are kept for a short
// while so paging back and forth does not hit the API again.
//
// Any non-2xx answer surfaces as an *APIError carrying the HTTP status:
//
//	res, err := client.Search(ctx, search.Request{Query: "react in:name", Sort: search.SortStars})
//	var apiErr *search.APIError
//	if errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusForbidden {
//		// rate limited
//	}
package search
