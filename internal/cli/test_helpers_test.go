package cli

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/runnerr0/apmq/internal/config"
)

// fixtureJSONL holds three POST /v1/orders events and three single-event
// GET /v1/orders/{id} endpoints, one per second from 10:00:00.
const fixtureJSONL = `{"endpoint":"POST /v1/orders","event_id":1,"timestamp":"10:00:00","latency":100,"status_code":200,"is_error":false}
{"endpoint":"POST /v1/orders","event_id":2,"timestamp":"10:00:01","latency":200,"status_code":200,"is_error":false}
{"endpoint":"POST /v1/orders","event_id":3,"timestamp":"10:00:02","latency":300,"status_code":500,"is_error":true}
{"endpoint":"GET /v1/orders/1","event_id":4,"timestamp":"10:00:03","latency":400,"status_code":200,"is_error":false}
{"endpoint":"GET /v1/orders/2","event_id":5,"timestamp":"10:00:04","latency":500,"status_code":401,"is_error":true}
{"endpoint":"GET /v1/orders/3","event_id":6,"timestamp":"10:00:05","latency":600,"status_code":500,"is_error":true}
`

// captureOutput captures stdout during fn execution and returns it as a string.
func captureOutput(t *testing.T, fn func()) string {
	t.Helper()
	old := os.Stdout
	r, w, err := os.Pipe()
	require.NoError(t, err)
	os.Stdout = w

	fn()

	w.Close()
	os.Stdout = old

	var buf bytes.Buffer
	_, _ = io.Copy(&buf, r)
	return buf.String()
}

// captureStderr captures stderr during fn execution and returns it as a string.
func captureStderr(t *testing.T, fn func()) string {
	t.Helper()
	old := os.Stderr
	r, w, err := os.Pipe()
	require.NoError(t, err)
	os.Stderr = w

	fn()

	w.Close()
	os.Stderr = old

	var buf bytes.Buffer
	_, _ = io.Copy(&buf, r)
	return buf.String()
}

// writeTestFile writes content under a fresh temp dir and returns its path.
func writeTestFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

// writeTestConfig writes a config file so tests never read the user's own.
func writeTestConfig(t *testing.T, content string) string {
	t.Helper()
	return writeTestFile(t, "config.yaml", content)
}

// newTestSession builds a session from defaults, optionally adjusted by
// mutate, and loads the fixture events.
func newTestSession(t *testing.T, globals *GlobalFlags, mutate func(*config.Config)) *session {
	t.Helper()
	cfg := config.DefaultConfig()
	cfg.Logging.Level = "error"
	if mutate != nil {
		mutate(cfg)
	}

	s, err := newSession(cfg, globals)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	_, err = s.load(context.Background(), []string{writeTestFile(t, "events.jsonl", fixtureJSONL)})
	require.NoError(t, err)
	return s
}
