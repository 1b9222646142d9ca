package audit

import (
	"errors"
	"fmt"
)

// ErrHTTPStatus matches any *HTTPStatusError.
var ErrHTTPStatus = errors.New("page returned an error status")

// HTTPStatusError reports a main-document response of 400 or above.
type HTTPStatusError struct {
	URL    string
	Status int
}

func (e *HTTPStatusError) Error() string {
	return fmt.Sprintf("HTTP %d for %s", e.Status, e.URL)
}

func (e *HTTPStatusError) Is(target error) bool {
	return target == ErrHTTPStatus
}
