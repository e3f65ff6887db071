// Package request builds validated query parameters for XML API actions.
//
// Every action declares the parameter names it accepts. Build rejects any
// other name before a cache or network call happens, and normalizes values
// that carry an identifier (such as a Character) to that identifier.
package request

import (
	"errors"
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"time"
)

// ErrUnexpectedParam is wrapped by every *ParamError.
var ErrUnexpectedParam = errors.New("unexpected parameter")

// timeLayout matches the XML API timestamp format.
const timeLayout = "2006-01-02 15:04:05"

// Identifier is implemented by domain values that stand for an id, so they
// can be passed wherever the raw id is accepted.
type Identifier interface {
	ID() int64
}

// Endpoint declares an action and the parameters it accepts.
type Endpoint struct {
	Action string
	Params []string
}

// Args maps parameter names to values. Supported value types are string,
// the integer kinds, bool, time.Time, fmt.Stringer and Identifier.
type Args map[string]any

// ParamError reports a parameter that is not accepted or cannot be encoded.
type ParamError struct {
	Action string
	Param  string
	Err    error
}

// Error implements the error interface.
func (e *ParamError) Error() string {
	return fmt.Sprintf("%s: parameter %q: %v", e.Action, e.Param, e.Err)
}

// Unwrap implements error unwrapping for errors.Is/As.
func (e *ParamError) Unwrap() error {
	return e.Err
}

// Accepts reports whether name is on the endpoint's allow-list.
func (ep Endpoint) Accepts(name string) bool {
	for _, p := range ep.Params {
		if p == name {
			return true
		}
	}
	return false
}

// Build validates args against the allow-list and encodes them as a query.
// Nil values are skipped. Names are checked in sorted order so the
// reported parameter is deterministic.
func Build(ep Endpoint, args Args) (url.Values, error) {
	names := make([]string, 0, len(args))
	for name := range args {
		names = append(names, name)
	}
	sort.Strings(names)

	query := make(url.Values, len(args))
	for _, name := range names {
		if !ep.Accepts(name) {
			return nil, &ParamError{Action: ep.Action, Param: name, Err: ErrUnexpectedParam}
		}

		value := args[name]
		if value == nil {
			continue
		}
		encoded, err := Normalize(value)
		if err != nil {
			return nil, &ParamError{Action: ep.Action, Param: name, Err: err}
		}
		query.Set(name, encoded)
	}
	return query, nil
}

// Normalize renders a single parameter value as it appears in the query.
func Normalize(value any) (string, error) {
	switch v := value.(type) {
	case Identifier:
		return strconv.FormatInt(v.ID(), 10), nil
	case string:
		return v, nil
	case int:
		return strconv.Itoa(v), nil
	case int32:
		return strconv.FormatInt(int64(v), 10), nil
	case int64:
		return strconv.FormatInt(v, 10), nil
	case uint32:
		return strconv.FormatUint(uint64(v), 10), nil
	case uint64:
		return strconv.FormatUint(v, 10), nil
	case bool:
		if v {
			return "1", nil
		}
		return "0", nil
	case time.Time:
		return v.UTC().Format(timeLayout), nil
	case fmt.Stringer:
		return v.String(), nil
	default:
		return "", fmt.Errorf("unsupported value type %T", value)
	}
}
