package storage

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/runnerr0/apmq/internal/timekey"
)

// Store defines the event store operations.
//
// Events are keyed by time-key alone: inserting an event at a second that
// already holds one replaces it, whatever the endpoint. Insert reports
// replaced=true when that happens.
type Store interface {
	Insert(ctx context.Context, event RawEvent) (replaced bool, err error)
	QueryWindow(ctx context.Context, from, to int64, endpoint string) ([]StoredEvent, error)
	GetStats(ctx context.Context, topN int) (*Stats, error)
	Len(ctx context.Context) (int, error)
	Close() error
}

// normalize converts a RawEvent into its stored form.
func normalize(event RawEvent) (StoredEvent, error) {
	key, err := timekey.Parse(event.Timestamp)
	if err != nil {
		return StoredEvent{}, fmt.Errorf("normalize event %d: %w", event.EventID, err)
	}
	return StoredEvent{
		Endpoint:   event.Endpoint,
		TimeKey:    key,
		Latency:    event.Latency,
		StatusCode: event.StatusCode,
		IsError:    event.IsError,
	}, nil
}

// MemoryStore implements Store with a map from time-key to event.
type MemoryStore struct {
	mu     sync.RWMutex
	events map[int64]StoredEvent
}

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{events: make(map[int64]StoredEvent)}
}

// Insert normalizes the event and stores it under its time-key.
func (s *MemoryStore) Insert(ctx context.Context, event RawEvent) (bool, error) {
	stored, err := normalize(event)
	if err != nil {
		return false, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	_, replaced := s.events[stored.TimeKey]
	s.events[stored.TimeKey] = stored
	return replaced, nil
}

// QueryWindow returns every event with from <= TimeKey <= to whose endpoint
// equals endpoint exactly. Order is unspecified. The read lock is held for
// the whole scan.
func (s *MemoryStore) QueryWindow(ctx context.Context, from, to int64, endpoint string) ([]StoredEvent, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	events := []StoredEvent{}
	for key, e := range s.events {
		if key >= from && key <= to && e.Endpoint == endpoint {
			events = append(events, e)
		}
	}
	return events, nil
}

// GetStats returns aggregate statistics. topN <= 0 returns every endpoint.
func (s *MemoryStore) GetStats(ctx context.Context, topN int) (*Stats, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := &Stats{TotalEvents: int64(len(s.events))}
	counts := make(map[string]int64)
	first := true
	for key, e := range s.events {
		counts[e.Endpoint]++
		if first || key < stats.EarliestKey {
			stats.EarliestKey = key
		}
		if first || key > stats.LatestKey {
			stats.LatestKey = key
		}
		first = false
	}
	stats.DistinctEndpoints = int64(len(counts))
	stats.TopEndpoints = rankEndpoints(counts, topN)

	return stats, nil
}

// Len returns the number of stored events.
func (s *MemoryStore) Len(ctx context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.events), nil
}

// Close is a no-op for MemoryStore.
func (s *MemoryStore) Close() error {
	return nil
}

// rankEndpoints orders endpoints by count descending, then by name.
func rankEndpoints(counts map[string]int64, topN int) []EndpointCount {
	ranked := make([]EndpointCount, 0, len(counts))
	for ep, n := range counts {
		ranked = append(ranked, EndpointCount{Endpoint: ep, Count: n})
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].Count != ranked[j].Count {
			return ranked[i].Count > ranked[j].Count
		}
		return ranked[i].Endpoint < ranked[j].Endpoint
	})
	if topN > 0 && len(ranked) > topN {
		ranked = ranked[:topN]
	}
	return ranked
}
