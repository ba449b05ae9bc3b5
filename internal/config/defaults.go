package config

// DefaultConfig returns a Config populated with all default values.
func DefaultConfig() *Config {
	return &Config{
		Storage: StorageConfig{
			Backend:   "memory",
			SQLiteDSN: "file::memory:",
		},
		Ingest: IngestConfig{
			Strict:               false,
			ExcludeDefaultProbes: false,
			ExcludeEndpoints:     []string{},
			ExcludeRegex:         []string{},
		},
		Query: QueryConfig{
			TopEndpoints: 10,
		},
		Logging: LoggingConfig{
			Level:  "warn",
			Format: "json",
		},
		Metrics: MetricsConfig{
			Enabled: true,
		},
	}
}
