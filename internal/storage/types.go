package storage

// RawEvent is a single API call as submitted for ingestion.
type RawEvent struct {
	Endpoint   string  `json:"endpoint" yaml:"endpoint"` // "METHOD PATH"
	EventID    uint64  `json:"event_id" yaml:"event_id"`
	Timestamp  string  `json:"timestamp" yaml:"timestamp"` // "HH:MM:SS"
	Latency    float64 `json:"latency" yaml:"latency"`
	StatusCode uint16  `json:"status_code" yaml:"status_code"`
	IsError    bool    `json:"is_error" yaml:"is_error"`
}

// StoredEvent is the normalized form of a RawEvent, keyed by the number of
// seconds since midnight. EventID is dropped on normalization.
type StoredEvent struct {
	Endpoint   string
	TimeKey    int64
	Latency    float64
	StatusCode uint16
	IsError    bool
}

// Stats holds aggregate statistics about the events held by a Store.
type Stats struct {
	TotalEvents       int64
	DistinctEndpoints int64
	EarliestKey       int64
	LatestKey         int64
	TopEndpoints      []EndpointCount
}

// EndpointCount pairs an endpoint with its event count.
type EndpointCount struct {
	Endpoint string
	Count    int64
}
