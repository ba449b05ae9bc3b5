package cli

import (
	"context"
	"fmt"
	"io"
	"os"
)

// Execute implements the go-flags Commander interface for StatsCommand.
func (c *StatsCommand) Execute(args []string) error {
	s, err := openSession(c.globals)
	if err != nil {
		return err
	}
	defer s.Close()

	ctx := context.Background()
	if _, err := s.load(ctx, append(append([]string{}, c.Events...), args...)); err != nil {
		return err
	}

	return c.executeWithSession(ctx, s, os.Stdout)
}

// executeWithSession prints statistics for a provided session (for testing).
func (c *StatsCommand) executeWithSession(ctx context.Context, s *session, w io.Writer) error {
	top := c.Top
	if top == 0 {
		top = s.cfg.Query.TopEndpoints
	}

	stats, err := s.store.GetStats(ctx, top)
	if err != nil {
		return fmt.Errorf("get stats: %w", err)
	}
	return writeStats(w, stats, c.globals != nil && c.globals.JSON)
}
