// Package query parses textual query requests and reduces windows of stored
// events into throughput, error-rate and latency results.
package query

import (
	"errors"
	"fmt"
	"strings"

	"github.com/runnerr0/apmq/internal/timekey"
)

// Kind selects the aggregate a Query computes.
type Kind int

const (
	Throughput Kind = iota + 1
	Error
	Latency
)

func (k Kind) String() string {
	switch k {
	case Throughput:
		return "throughput"
	case Error:
		return "error"
	case Latency:
		return "latency"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// ParseKind matches "throughput", "error" or "latency" case-insensitively.
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(s) {
	case "throughput":
		return Throughput, nil
	case "error":
		return Error, nil
	case "latency":
		return Latency, nil
	default:
		return 0, &RequestFormatError{Input: s, Reason: fmt.Sprintf("invalid query type %q", s)}
	}
}

// RequestFormatError reports a malformed textual request or an invalid
// Query. When a time token failed to parse, Err holds the
// *timekey.TimeFormatError.
type RequestFormatError struct {
	Input  string
	Reason string
	Err    error
}

func (e *RequestFormatError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("invalid request %q: %s: %v", e.Input, e.Reason, e.Err)
	}
	return fmt.Sprintf("invalid request %q: %s", e.Input, e.Reason)
}

func (e *RequestFormatError) Unwrap() error {
	return e.Err
}

// Query asks for one aggregate over the inclusive window [From, To] of a
// single endpoint.
type Query struct {
	Endpoint string
	Kind     Kind
	From     int64
	To       int64
}

// NewQuery builds a validated Query.
func NewQuery(endpoint string, kind Kind, from, to int64) (Query, error) {
	q := Query{Endpoint: endpoint, Kind: kind, From: from, To: to}
	if err := q.Validate(); err != nil {
		return Query{}, err
	}
	return q, nil
}

// Validate rejects unknown kinds and inverted windows.
func (q Query) Validate() error {
	switch q.Kind {
	case Throughput, Error, Latency:
	default:
		return &RequestFormatError{Input: q.Endpoint, Reason: fmt.Sprintf("unknown query kind %s", q.Kind)}
	}
	if q.To < q.From {
		return &RequestFormatError{
			Input:  q.Endpoint,
			Reason: fmt.Sprintf("window end %s is before start %s", timekey.Format(q.To), timekey.Format(q.From)),
		}
	}
	return nil
}

// Width is the inclusive window size in seconds.
func (q Query) Width() int64 {
	return q.To - q.From + 1
}

func (q Query) String() string {
	return fmt.Sprintf("%s %s %s %s", q.Endpoint, q.Kind, timekey.Format(q.From), timekey.Format(q.To))
}

// ParseRequest parses "<METHOD> <PATH> <kind> <from> <to>". Tokens are
// separated by any run of whitespace; exactly five are required. The
// endpoint is METHOD and PATH joined by one space.
func ParseRequest(input string) (Query, error) {
	parts := strings.Fields(input)
	if len(parts) != 5 {
		return Query{}, &RequestFormatError{
			Input:  input,
			Reason: fmt.Sprintf("expected 5 parts (method, path, query type, from, to), got %d", len(parts)),
		}
	}

	endpoint := parts[0] + " " + parts[1]

	kind, err := ParseKind(parts[2])
	if err != nil {
		var rfe *RequestFormatError
		if errors.As(err, &rfe) {
			rfe.Input = input
		}
		return Query{}, err
	}

	from, err := timekey.Parse(parts[3])
	if err != nil {
		return Query{}, &RequestFormatError{Input: input, Reason: "invalid from time", Err: err}
	}
	to, err := timekey.Parse(parts[4])
	if err != nil {
		return Query{}, &RequestFormatError{Input: input, Reason: "invalid to time", Err: err}
	}

	q := Query{Endpoint: endpoint, Kind: kind, From: from, To: to}
	if err := q.Validate(); err != nil {
		var rfe *RequestFormatError
		if errors.As(err, &rfe) {
			rfe.Input = input
		}
		return Query{}, err
	}
	return q, nil
}
