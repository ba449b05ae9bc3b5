package ingest

import (
	"fmt"
	"regexp"
)

// DefaultExcludedEndpoints returns the curated list of probe endpoints that
// usually carry no useful signal: liveness, readiness and scrape handlers.
func DefaultExcludedEndpoints() []string {
	return []string{
		// Kubernetes probes
		"GET /healthz",
		"GET /readyz",
		"GET /livez",

		// Conventional health checks
		"GET /health",
		"GET /healthcheck",
		"GET /ping",
		"GET /status",
		"HEAD /",

		// Scrapers
		"GET /metrics",
		"GET /favicon.ico",
	}
}

// Rules decides which endpoints are dropped before insertion.
type Rules struct {
	exact map[string]struct{}
	regex []*regexp.Regexp
}

// NewRules compiles exclusion rules. When withDefaults is set the curated
// probe list is added to the exact matches. An invalid pattern is an error.
func NewRules(exact, patterns []string, withDefaults bool) (*Rules, error) {
	r := &Rules{exact: make(map[string]struct{})}

	if withDefaults {
		for _, e := range DefaultExcludedEndpoints() {
			r.exact[e] = struct{}{}
		}
	}
	for _, e := range exact {
		r.exact[e] = struct{}{}
	}

	for _, p := range patterns {
		re, err := regexp.Compile(p)
		if err != nil {
			return nil, fmt.Errorf("compile exclusion %q: %w", p, err)
		}
		r.regex = append(r.regex, re)
	}

	return r, nil
}

// Excluded reports whether endpoint matches any rule. A nil *Rules excludes
// nothing.
func (r *Rules) Excluded(endpoint string) bool {
	if r == nil {
		return false
	}
	if _, ok := r.exact[endpoint]; ok {
		return true
	}
	for _, re := range r.regex {
		if re.MatchString(endpoint) {
			return true
		}
	}
	return false
}

// Len returns the number of exact and regex rules.
func (r *Rules) Len() int {
	if r == nil {
		return 0
	}
	return len(r.exact) + len(r.regex)
}
