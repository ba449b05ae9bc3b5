package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/runnerr0/apmq/internal/ingest"
	"github.com/runnerr0/apmq/internal/query"
)

const shellPrompt = "apmq> "

const shellHelp = `Requests:
  METHOD PATH KIND FROM TO    e.g. GET /v1/users latency 10:00:00 10:00:05
                              KIND is throughput, error or latency
Commands:
  :load FILE   load an event file
  :stats       show store statistics
  :metrics     show ingestion and query counters
  :help        show this help
  :quit        exit
`

// Execute implements the go-flags Commander interface for ShellCommand.
func (c *ShellCommand) Execute(args []string) error {
	paths := append(append([]string{}, c.Events...), args...)
	for _, p := range paths {
		if err := checkShellSource(p); err != nil {
			return err
		}
	}

	s, err := openSession(c.globals)
	if err != nil {
		return err
	}
	defer s.Close()

	ctx := context.Background()
	if _, err := s.load(ctx, paths); err != nil {
		return err
	}

	interactive := term.IsTerminal(int(os.Stdin.Fd()))
	return c.run(ctx, s, os.Stdin, os.Stdout, interactive)
}

// run answers one request per input line until EOF or :quit. Bad requests
// are reported and the loop continues.
func (c *ShellCommand) run(ctx context.Context, s *session, in io.Reader, out io.Writer, interactive bool) error {
	asJSON := c.globals != nil && c.globals.JSON
	scanner := bufio.NewScanner(in)

	for {
		if interactive {
			fmt.Fprint(out, shellPrompt)
		}
		if !scanner.Scan() {
			break
		}

		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		if strings.HasPrefix(line, ":") {
			quit, err := c.meta(ctx, s, line, out)
			if err != nil {
				c.printError(out, err, asJSON)
			}
			if quit {
				return nil
			}
			continue
		}

		q, err := query.ParseRequest(line)
		if err != nil {
			c.printError(out, err, asJSON)
			continue
		}
		res, err := s.engine.Execute(ctx, q)
		if err != nil {
			c.printError(out, err, asJSON)
			continue
		}
		if err := writeResult(out, q, res, asJSON); err != nil {
			return err
		}
	}

	if interactive {
		fmt.Fprintln(out)
	}
	return scanner.Err()
}

// meta handles a ":command" line and reports whether the shell should exit.
func (c *ShellCommand) meta(ctx context.Context, s *session, line string, out io.Writer) (bool, error) {
	asJSON := c.globals != nil && c.globals.JSON
	fields := strings.Fields(line)

	switch fields[0] {
	case ":quit", ":q", ":exit":
		return true, nil

	case ":help":
		fmt.Fprint(out, shellHelp)
		return false, nil

	case ":load":
		if len(fields) != 2 {
			return false, fmt.Errorf(":load takes exactly one file")
		}
		if err := checkShellSource(fields[1]); err != nil {
			return false, err
		}
		rep, loadErr := s.loader.LoadFile(ctx, fields[1])
		if loadErr != nil {
			s.logger.Debug("shell load failed", zap.String("path", fields[1]), zap.Error(loadErr))
		}
		stored, err := s.store.Len(ctx)
		if err != nil {
			return false, fmt.Errorf("count events: %w", err)
		}
		if err := writeReport(out, rep, stored, asJSON); err != nil {
			return false, err
		}
		return false, loadErr

	case ":stats":
		stats, err := s.store.GetStats(ctx, s.cfg.Query.TopEndpoints)
		if err != nil {
			return false, fmt.Errorf("get stats: %w", err)
		}
		return false, writeStats(out, stats, asJSON)

	case ":metrics":
		if s.metrics == nil {
			return false, fmt.Errorf("metrics are disabled (metrics.enabled: false)")
		}
		samples, err := s.metrics.Snapshot()
		if err != nil {
			return false, err
		}
		return false, writeSamples(out, samples, asJSON)

	default:
		return false, fmt.Errorf("unknown command %s (try :help)", fields[0])
	}
}

// checkShellSource refuses stdin as an event file: the shell reads its
// requests from there.
func checkShellSource(path string) error {
	if path == ingest.StdinPath {
		return fmt.Errorf("stdin is reserved for shell requests; pass event files by path")
	}
	return nil
}

func (c *ShellCommand) printError(out io.Writer, err error, asJSON bool) {
	if asJSON {
		_ = encodeJSON(out, map[string]string{"error": err.Error()})
		return
	}
	fmt.Fprintf(out, "error: %v\n", err)
}
