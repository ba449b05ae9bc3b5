package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/runnerr0/apmq/internal/ingest"
)

// reportJSON is the JSON output structure for an ingestion report.
type reportJSON struct {
	Accepted   int `json:"accepted"`
	Rejected   int `json:"rejected"`
	Excluded   int `json:"excluded"`
	Collisions int `json:"collisions"`
	Stored     int `json:"stored"`
}

// Execute implements the go-flags Commander interface for IngestCommand.
func (c *IngestCommand) Execute(args []string) error {
	paths := append(append([]string{}, c.Events...), args...)
	if len(paths) == 0 {
		return fmt.Errorf("ingest requires at least one --events file")
	}

	s, err := openSession(c.globals)
	if err != nil {
		return err
	}
	defer s.Close()

	return c.executeWithSession(context.Background(), s, paths, os.Stdout)
}

// executeWithSession loads paths into a provided session (for testing).
func (c *IngestCommand) executeWithSession(ctx context.Context, s *session, paths []string, w io.Writer) error {
	rep, loadErr := s.loader.LoadFiles(ctx, paths)

	stored, err := s.store.Len(ctx)
	if err != nil {
		return fmt.Errorf("count events: %w", err)
	}

	if err := writeReport(w, rep, stored, c.globals != nil && c.globals.JSON); err != nil {
		return err
	}
	if loadErr != nil {
		return fmt.Errorf("load events: %w", loadErr)
	}
	return nil
}

func writeReport(w io.Writer, rep ingest.Report, stored int, asJSON bool) error {
	if asJSON {
		return encodeJSON(w, reportJSON{
			Accepted:   rep.Accepted,
			Rejected:   rep.Rejected,
			Excluded:   rep.Excluded,
			Collisions: rep.Collisions,
			Stored:     stored,
		})
	}

	eventWord := "events"
	if rep.Accepted == 1 {
		eventWord = "event"
	}
	fmt.Fprintf(w, "Accepted %d %s (%d rejected, %d excluded, %d collisions)\n",
		rep.Accepted, eventWord, rep.Rejected, rep.Excluded, rep.Collisions)
	fmt.Fprintf(w, "Stored:   %d\n", stored)
	return nil
}
