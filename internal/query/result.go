package query

import (
	"math"
	"strconv"
)

// Result is one of ThroughputResult, ErrorResult or LatencyResult.
type Result interface {
	Kind() Kind
}

// ThroughputResult holds the matched event count and the count per second
// of window.
type ThroughputResult struct {
	Total uint64
	Rate  float64
}

func (ThroughputResult) Kind() Kind { return Throughput }

// ErrorResult holds the number of events flagged as errors and the
// percentage of matched events they represent.
type ErrorResult struct {
	Errors  uint64
	Total   uint64
	Percent float64
}

func (ErrorResult) Kind() Kind { return Error }

// RateString renders Percent as the shortest decimal that round-trips;
// zero renders as "0".
func (r ErrorResult) RateString() string {
	return strconv.FormatFloat(r.Percent, 'f', -1, 64)
}

// LatencyResult holds average, min and max latency. With no samples Min is
// +Inf and Max is -Inf; use HasData to tell.
type LatencyResult struct {
	Average float64
	Min     float64
	Max     float64
	Samples uint64
}

func (LatencyResult) Kind() Kind { return Latency }

// HasData reports whether any latency was folded in.
func (r LatencyResult) HasData() bool {
	return r.Samples > 0
}

func emptyLatency() LatencyResult {
	return LatencyResult{Average: 0, Min: math.Inf(1), Max: math.Inf(-1)}
}
