// Package ingest loads raw events from JSON Lines or YAML files into a store.
package ingest

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/runnerr0/apmq/internal/storage"
	"github.com/runnerr0/apmq/internal/telemetry"
	"github.com/runnerr0/apmq/internal/timekey"
)

// Format identifies an event file encoding.
type Format string

const (
	FormatJSONL Format = "jsonl"
	FormatYAML  Format = "yaml"
)

// StdinPath is the path that selects standard input as a JSON Lines source.
const StdinPath = "-"

const maxLineSize = 1 << 20

// FormatForPath picks the decoder from the file extension.
func FormatForPath(path string) (Format, error) {
	if path == StdinPath {
		return FormatJSONL, nil
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".jsonl", ".ndjson":
		return FormatJSONL, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	default:
		return "", fmt.Errorf("unsupported event file %q (use .jsonl, .ndjson, .yaml or .yml)", path)
	}
}

// Report summarises one or more loads.
type Report struct {
	Accepted   int `json:"accepted"`
	Rejected   int `json:"rejected"`
	Excluded   int `json:"excluded"`
	Collisions int `json:"collisions"`
}

// Add accumulates other into r.
func (r *Report) Add(other Report) {
	r.Accepted += other.Accepted
	r.Rejected += other.Rejected
	r.Excluded += other.Excluded
	r.Collisions += other.Collisions
}

// Options configures a Loader.
type Options struct {
	// Strict aborts a load at the first rejected event.
	Strict bool
	Rules  *Rules
	// Stdin is read when a path is "-". Defaults to os.Stdin.
	Stdin io.Reader
}

// Loader decodes events and inserts them into a store.
type Loader struct {
	store   storage.Store
	opts    Options
	logger  *zap.Logger
	metrics *telemetry.Metrics
}

// NewLoader creates a Loader. A nil logger is replaced by a no-op logger and
// a nil metrics collector records nothing.
func NewLoader(store storage.Store, opts Options, logger *zap.Logger, metrics *telemetry.Metrics) *Loader {
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.Stdin == nil {
		opts.Stdin = os.Stdin
	}
	return &Loader{
		store:   store,
		opts:    opts,
		logger:  logger.Named("ingest"),
		metrics: metrics,
	}
}

// LoadFiles loads each path in order and returns the combined report. The
// report covers everything inserted before an error.
func (l *Loader) LoadFiles(ctx context.Context, paths []string) (Report, error) {
	var total Report
	for _, p := range paths {
		rep, err := l.LoadFile(ctx, p)
		total.Add(rep)
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

// LoadFile loads a single event file, or stdin when path is "-".
func (l *Loader) LoadFile(ctx context.Context, path string) (Report, error) {
	format, err := FormatForPath(path)
	if err != nil {
		return Report{}, err
	}

	if path == StdinPath {
		return l.Load(ctx, l.opts.Stdin, format, "stdin")
	}

	f, err := os.Open(path)
	if err != nil {
		return Report{}, fmt.Errorf("open event file: %w", err)
	}
	defer f.Close()

	return l.Load(ctx, f, format, path)
}

// Load decodes r in the given format. source names the input in logs and
// errors.
func (l *Loader) Load(ctx context.Context, r io.Reader, format Format, source string) (Report, error) {
	var rep Report
	var err error

	switch format {
	case FormatJSONL:
		err = l.loadJSONL(ctx, r, source, &rep)
	case FormatYAML:
		err = l.loadYAML(ctx, r, source, &rep)
	default:
		err = fmt.Errorf("unknown event format %q", format)
	}

	l.logger.Info("load finished",
		zap.String("source", source),
		zap.Int("accepted", rep.Accepted),
		zap.Int("rejected", rep.Rejected),
		zap.Int("excluded", rep.Excluded),
		zap.Int("collisions", rep.Collisions),
	)
	return rep, err
}

func (l *Loader) loadJSONL(ctx context.Context, r io.Reader, source string, rep *Report) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)

	line := 0
	for scanner.Scan() {
		line++
		raw := bytes.TrimSpace(scanner.Bytes())
		if len(raw) == 0 {
			continue
		}

		var event storage.RawEvent
		if err := json.Unmarshal(raw, &event); err != nil {
			if rerr := l.reject(rep, source, line, fmt.Errorf("decode event: %w", err)); rerr != nil {
				return rerr
			}
			continue
		}

		if err := l.insert(ctx, event, source, line, rep); err != nil {
			return err
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("read %s: %w", source, err)
	}
	return nil
}

type yamlEventFile struct {
	Events []storage.RawEvent `yaml:"events"`
}

func (l *Loader) loadYAML(ctx context.Context, r io.Reader, source string, rep *Report) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return fmt.Errorf("read %s: %w", source, err)
	}

	var file yamlEventFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return fmt.Errorf("parse %s: %w", source, err)
	}

	for i, event := range file.Events {
		if err := l.insert(ctx, event, source, i+1, rep); err != nil {
			return err
		}
	}
	return nil
}

// insert applies exclusions and stores one event. It returns an error only
// when the load must stop.
func (l *Loader) insert(ctx context.Context, event storage.RawEvent, source string, pos int, rep *Report) error {
	if l.opts.Rules.Excluded(event.Endpoint) {
		rep.Excluded++
		l.metrics.RecordIngest(telemetry.OutcomeExcluded)
		return nil
	}

	if err := checkLatency(event.Latency); err != nil {
		return l.reject(rep, source, pos, err)
	}

	replaced, err := l.store.Insert(ctx, event)
	if err != nil {
		var tfe *timekey.TimeFormatError
		if errors.As(err, &tfe) {
			return l.reject(rep, source, pos, err)
		}
		return fmt.Errorf("insert event from %s:%d: %w", source, pos, err)
	}

	rep.Accepted++
	l.metrics.RecordIngest(telemetry.OutcomeAccepted)
	if replaced {
		rep.Collisions++
		l.metrics.RecordCollision()
		l.logger.Debug("time-key collision, previous event replaced",
			zap.String("source", source),
			zap.Int("position", pos),
			zap.String("endpoint", event.Endpoint),
			zap.String("timestamp", event.Timestamp),
		)
	}
	return nil
}

// checkLatency accepts finite, non-negative latencies. A NaN would poison
// every latency aggregate over its window.
func checkLatency(v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return fmt.Errorf("invalid latency %v: must be a finite non-negative number", v)
	}
	return nil
}

func (l *Loader) reject(rep *Report, source string, pos int, err error) error {
	rep.Rejected++
	l.metrics.RecordIngest(telemetry.OutcomeRejected)
	if l.opts.Strict {
		return fmt.Errorf("%s:%d: %w", source, pos, err)
	}
	l.logger.Warn("event rejected",
		zap.String("source", source),
		zap.Int("position", pos),
		zap.Error(err),
	)
	return nil
}
