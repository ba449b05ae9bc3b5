package cli

// GlobalFlags holds flags available to all subcommands.
type GlobalFlags struct {
	Config  string `long:"config" description:"Path to config file" default:""`
	JSON    bool   `long:"json" description:"Output in JSON format"`
	Verbose bool   `long:"verbose" description:"Enable debug logging"`
	Version bool   `long:"version" description:"Show version and exit"`
}

// IngestCommand loads event files and reports what was stored.
type IngestCommand struct {
	Events []string `long:"events" short:"e" description:"Event file (.jsonl, .ndjson, .yaml, .yml, or - for stdin); repeatable"`

	globals *GlobalFlags
	version string
}

// QueryCommand loads event files and runs a single query.
type QueryCommand struct {
	Events []string `long:"events" short:"e" description:"Event file to load before querying; repeatable"`

	globals *GlobalFlags
	version string
}

// ShellCommand reads query requests from stdin, one per line.
type ShellCommand struct {
	Events []string `long:"events" short:"e" description:"Event file to load before reading requests; repeatable"`

	globals *GlobalFlags
	version string
}

// StatsCommand prints store statistics.
type StatsCommand struct {
	Events []string `long:"events" short:"e" description:"Event file to load; repeatable"`
	Top    int      `long:"top" description:"Number of endpoints to rank (0 uses query.top_endpoints from config)" default:"0"`

	globals *GlobalFlags
	version string
}

// InitCommand writes a default config file.
type InitCommand struct {
	Path string `long:"path" description:"Config file to create" default:""`

	globals *GlobalFlags
	version string
}
