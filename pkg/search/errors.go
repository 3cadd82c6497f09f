package search

import (
	"errors"
	"fmt"

	"github.com/google/go-github/v73/github"
)

// ErrEmptyQuery is returned for requests without query text.
var ErrEmptyQuery = errors.New("empty search query")

// APIError is a non-2xx answer from the search API.
type APIError struct {
	StatusCode int
	// Message is the API's own explanation, when it sent one.
	Message string
	Err     error
}

func (e *APIError) Error() string {
	return fmt.Sprintf("GitHub API error: %d", e.StatusCode)
}

func (e *APIError) Unwrap() error {
	return e.Err
}

// asAPIError turns go-github response errors into *APIError and wraps
// everything else.
func asAPIError(err error) error {
	var errResp *github.ErrorResponse
	if errors.As(err, &errResp) && errResp.Response != nil {
		return &APIError{StatusCode: errResp.Response.StatusCode, Message: errResp.Message, Err: err}
	}
	var rateErr *github.RateLimitError
	if errors.As(err, &rateErr) && rateErr.Response != nil {
		return &APIError{StatusCode: rateErr.Response.StatusCode, Message: rateErr.Message, Err: err}
	}
	var abuseErr *github.AbuseRateLimitError
	if errors.As(err, &abuseErr) && abuseErr.Response != nil {
		return &APIError{StatusCode: abuseErr.Response.StatusCode, Message: abuseErr.Message, Err: err}
	}
	return fmt.Errorf("searching repositories: %w", err)
}
