package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/runnerr0/apmq/internal/query"
	"github.com/runnerr0/apmq/internal/storage"
	"github.com/runnerr0/apmq/internal/telemetry"
	"github.com/runnerr0/apmq/internal/timekey"
)

// resultJSON is the JSON output structure for a query result. Exactly one
// of Throughput, Error and Latency is set.
type resultJSON struct {
	Endpoint   string          `json:"endpoint"`
	Kind       string          `json:"kind"`
	From       string          `json:"from"`
	To         string          `json:"to"`
	Throughput *throughputJSON `json:"throughput,omitempty"`
	Error      *errorJSON      `json:"error,omitempty"`
	Latency    *latencyJSON    `json:"latency,omitempty"`
}

type throughputJSON struct {
	Total uint64  `json:"total"`
	Rate  float64 `json:"rate"`
}

type errorJSON struct {
	Errors  uint64  `json:"errors"`
	Total   uint64  `json:"total"`
	Percent float64 `json:"percent"`
}

// Average, Min and Max are null when no event matched.
type latencyJSON struct {
	Samples uint64   `json:"samples"`
	Average *float64 `json:"average"`
	Min     *float64 `json:"min"`
	Max     *float64 `json:"max"`
}

type statsJSON struct {
	TotalEvents       int64               `json:"total_events"`
	DistinctEndpoints int64               `json:"distinct_endpoints"`
	Earliest          string              `json:"earliest,omitempty"`
	Latest            string              `json:"latest,omitempty"`
	TopEndpoints      []endpointCountJSON `json:"top_endpoints"`
}

type endpointCountJSON struct {
	Endpoint string `json:"endpoint"`
	Count    int64  `json:"count"`
}

type sampleJSON struct {
	Name   string  `json:"name"`
	Labels string  `json:"labels,omitempty"`
	Value  float64 `json:"value"`
}

func encodeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func writeResult(w io.Writer, q query.Query, res query.Result, asJSON bool) error {
	if asJSON {
		out := resultJSON{
			Endpoint: q.Endpoint,
			Kind:     q.Kind.String(),
			From:     timekey.Format(q.From),
			To:       timekey.Format(q.To),
		}
		switch r := res.(type) {
		case query.ThroughputResult:
			out.Throughput = &throughputJSON{Total: r.Total, Rate: r.Rate}
		case query.ErrorResult:
			out.Error = &errorJSON{Errors: r.Errors, Total: r.Total, Percent: r.Percent}
		case query.LatencyResult:
			l := &latencyJSON{Samples: r.Samples}
			if r.HasData() {
				avg, lo, hi := r.Average, r.Min, r.Max
				l.Average, l.Min, l.Max = &avg, &lo, &hi
			}
			out.Latency = l
		}
		return encodeJSON(w, out)
	}

	fmt.Fprintln(w, q.String())
	switch r := res.(type) {
	case query.ThroughputResult:
		fmt.Fprintf(w, "  total: %d\n", r.Total)
		fmt.Fprintf(w, "  rate:  %s/s\n", formatNumber(r.Rate))
	case query.ErrorResult:
		fmt.Fprintf(w, "  errors: %d of %d\n", r.Errors, r.Total)
		fmt.Fprintf(w, "  rate:   %s%%\n", r.RateString())
	case query.LatencyResult:
		fmt.Fprintf(w, "  samples: %d\n", r.Samples)
		if !r.HasData() {
			fmt.Fprintln(w, "  avg: n/a")
			fmt.Fprintln(w, "  min: n/a")
			fmt.Fprintln(w, "  max: n/a")
			return nil
		}
		fmt.Fprintf(w, "  avg: %s\n", formatNumber(r.Average))
		fmt.Fprintf(w, "  min: %s\n", formatNumber(r.Min))
		fmt.Fprintf(w, "  max: %s\n", formatNumber(r.Max))
	}
	return nil
}

func writeStats(w io.Writer, stats *storage.Stats, asJSON bool) error {
	if asJSON {
		out := statsJSON{
			TotalEvents:       stats.TotalEvents,
			DistinctEndpoints: stats.DistinctEndpoints,
			TopEndpoints:      make([]endpointCountJSON, len(stats.TopEndpoints)),
		}
		if stats.TotalEvents > 0 {
			out.Earliest = timekey.Format(stats.EarliestKey)
			out.Latest = timekey.Format(stats.LatestKey)
		}
		for i, ep := range stats.TopEndpoints {
			out.TopEndpoints[i] = endpointCountJSON{Endpoint: ep.Endpoint, Count: ep.Count}
		}
		return encodeJSON(w, out)
	}

	if stats.TotalEvents == 0 {
		fmt.Fprintln(w, "No events stored.")
		return nil
	}

	fmt.Fprintf(w, "Events:     %d\n", stats.TotalEvents)
	fmt.Fprintf(w, "Endpoints:  %d\n", stats.DistinctEndpoints)
	fmt.Fprintf(w, "Earliest:   %s\n", timekey.Format(stats.EarliestKey))
	fmt.Fprintf(w, "Latest:     %s\n", timekey.Format(stats.LatestKey))

	if len(stats.TopEndpoints) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, "Top endpoints:")
		width := 0
		for _, ep := range stats.TopEndpoints {
			if len(ep.Endpoint) > width {
				width = len(ep.Endpoint)
			}
		}
		for _, ep := range stats.TopEndpoints {
			fmt.Fprintf(w, "  %-*s  %d\n", width, ep.Endpoint, ep.Count)
		}
	}
	return nil
}

func writeSamples(w io.Writer, samples []telemetry.Sample, asJSON bool) error {
	if asJSON {
		out := make([]sampleJSON, len(samples))
		for i, s := range samples {
			out[i] = sampleJSON{Name: s.Name, Labels: s.Labels, Value: s.Value}
		}
		return encodeJSON(w, out)
	}

	if len(samples) == 0 {
		fmt.Fprintln(w, "No metrics recorded.")
		return nil
	}
	for _, s := range samples {
		if s.Labels != "" {
			fmt.Fprintf(w, "%s{%s} %s\n", s.Name, s.Labels, formatNumber(s.Value))
		} else {
			fmt.Fprintf(w, "%s %s\n", s.Name, formatNumber(s.Value))
		}
	}
	return nil
}
