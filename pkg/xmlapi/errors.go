package xmlapi

import (
	"errors"
	"fmt"
)

// ErrMalformedResponse indicates a body that is not XML or lacks one of the
// mandatory timestamps. It is never cached.
var ErrMalformedResponse = errors.New("malformed XML API response")

// APIError is the application-level error element embedded in a response.
type APIError struct {
	Code    int    `xml:"code,attr"`
	Message string `xml:",chardata"`
}

// Error implements the error interface.
func (e *APIError) Error() string {
	return fmt.Sprintf("API error %d: %s", e.Code, e.Message)
}
