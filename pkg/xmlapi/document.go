package xmlapi

import (
	"encoding/xml"
	"fmt"
	"strings"
	"time"
)

// envelope mirrors the fixed element paths present in every response.
type envelope struct {
	Version     string    `xml:"version,attr"`
	CurrentTime *string   `xml:"currentTime"`
	CachedUntil *string   `xml:"cachedUntil"`
	Error       *APIError `xml:"error"`
}

// Envelope is the caching view of a response: the server clock, the
// cache-valid-until instant and the optional error marker.
type Envelope struct {
	CurrentTime time.Time
	CachedUntil time.Time
	Error       *APIError
}

// TTL returns cachedUntil - currentTime, truncated to whole seconds.
// The result is zero or negative when the response must not be cached.
func (e Envelope) TTL() time.Duration {
	return e.CachedUntil.Sub(e.CurrentTime).Truncate(time.Second)
}

// Cacheable reports whether the response asks to be cached at all.
func (e Envelope) Cacheable() bool {
	return e.TTL() > 0
}

// Document is a parsed response body. It keeps the raw bytes so callers can
// decode whatever result shape the action returns.
type Document struct {
	Version     string
	CurrentTime time.Time
	CachedUntil time.Time
	Error       *APIError

	raw []byte
}

// Parse parses a response body. The body is retained by the returned
// Document and must not be modified afterwards.
func Parse(body []byte) (*Document, error) {
	var env envelope
	if err := xml.Unmarshal(body, &env); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	if env.CurrentTime == nil {
		return nil, fmt.Errorf("%w: missing currentTime", ErrMalformedResponse)
	}
	if env.CachedUntil == nil {
		return nil, fmt.Errorf("%w: missing cachedUntil", ErrMalformedResponse)
	}

	current, err := ParseTime(*env.CurrentTime)
	if err != nil {
		return nil, fmt.Errorf("%w: currentTime: %v", ErrMalformedResponse, err)
	}
	until, err := ParseTime(*env.CachedUntil)
	if err != nil {
		return nil, fmt.Errorf("%w: cachedUntil: %v", ErrMalformedResponse, err)
	}

	if env.Error != nil {
		env.Error.Message = strings.TrimSpace(env.Error.Message)
	}

	return &Document{
		Version:     env.Version,
		CurrentTime: current,
		CachedUntil: until,
		Error:       env.Error,
		raw:         body,
	}, nil
}

// Envelope returns the caching view of the document.
func (d *Document) Envelope() Envelope {
	return Envelope{
		CurrentTime: d.CurrentTime,
		CachedUntil: d.CachedUntil,
		Error:       d.Error,
	}
}

// Raw returns the unparsed body the document was built from.
func (d *Document) Raw() []byte {
	return d.raw
}

// Decode unmarshals the raw body into v using encoding/xml.
func (d *Document) Decode(v any) error {
	if err := xml.Unmarshal(d.raw, v); err != nil {
		return fmt.Errorf("decode document: %w", err)
	}
	return nil
}
