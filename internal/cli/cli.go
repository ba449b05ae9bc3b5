package cli

import (
	"fmt"
	"os"

	goflags "github.com/jessevdk/go-flags"
)

// commands holds references to all subcommand structs for inspection/testing.
type commands struct {
	Ingest *IngestCommand
	Query  *QueryCommand
	Shell  *ShellCommand
	Stats  *StatsCommand
	Init   *InitCommand
}

// buildParser constructs the go-flags parser with all subcommands registered.
func buildParser(version string) (*goflags.Parser, *GlobalFlags, *commands) {
	var globals GlobalFlags

	// Errors are returned, not printed; main reports them once.
	parser := goflags.NewParser(&globals, goflags.HelpFlag|goflags.PassDoubleDash)
	parser.Name = "apmq"
	parser.LongDescription = "In-memory API performance event store with throughput, error-rate and latency queries."

	cmds := &commands{
		Ingest: &IngestCommand{globals: &globals, version: version},
		Query:  &QueryCommand{globals: &globals, version: version},
		Shell:  &ShellCommand{globals: &globals, version: version},
		Stats:  &StatsCommand{globals: &globals, version: version},
		Init:   &InitCommand{globals: &globals, version: version},
	}

	parser.AddCommand("ingest", "Load event files", "Load JSON Lines or YAML event files and print the ingestion report.", cmds.Ingest)
	parser.AddCommand("query", "Run one query", "Load event files, then run METHOD PATH KIND FROM TO and print the result. Put -- before the request when a time is negative, e.g. apmq query -- GET /a latency -1:00:00 00:00:00.", cmds.Query)
	parser.AddCommand("shell", "Answer queries from stdin", "Load event files, then answer one request per line read from stdin.", cmds.Shell)
	parser.AddCommand("stats", "Show store statistics", "Load event files and show event counts, time range and busiest endpoints.", cmds.Stats)
	parser.AddCommand("init", "Write a default config file", "Write the default configuration unless the file already exists.", cmds.Init)

	return parser, &globals, cmds
}

// Run is the main entry point for the apmq CLI using os.Args.
func Run(version string) error {
	return RunWithArgs(version, nil)
}

// RunWithArgs parses the given args (or os.Args if nil) and executes the matched subcommand.
func RunWithArgs(version string, args []string) error {
	// Handle --version before parser (go-flags requires a subcommand, but
	// --version is valid without one).
	checkArgs := args
	if checkArgs == nil {
		checkArgs = os.Args[1:]
	}
	for _, arg := range checkArgs {
		if arg == "--version" {
			fmt.Printf("apmq %s\n", version)
			return nil
		}
		if arg == "--" {
			break
		}
	}

	parser, _, _ := buildParser(version)

	var err error
	if args != nil {
		_, err = parser.ParseArgs(args)
	} else {
		_, err = parser.Parse()
	}

	if err != nil {
		if flagsErr, ok := err.(*goflags.Error); ok {
			if flagsErr.Type == goflags.ErrHelp {
				fmt.Println(flagsErr.Message)
				return nil
			}
		}
		return err
	}

	return nil
}
