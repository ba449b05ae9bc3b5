package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/runnerr0/apmq/internal/query"
)

// Usage implements goflags.Usage for the help text.
func (c *QueryCommand) Usage() string {
	return "[OPTIONS] [--] METHOD PATH KIND FROM TO"
}

// Execute implements the go-flags Commander interface for QueryCommand.
func (c *QueryCommand) Execute(args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("query requires METHOD PATH KIND FROM TO")
	}

	q, err := query.ParseRequest(strings.Join(args, " "))
	if err != nil {
		return err
	}

	s, err := openSession(c.globals)
	if err != nil {
		return err
	}
	defer s.Close()

	ctx := context.Background()
	if _, err := s.load(ctx, c.Events); err != nil {
		return err
	}

	return c.executeWithSession(ctx, s, q, os.Stdout)
}

// executeWithSession runs q against a provided session (for testing).
func (c *QueryCommand) executeWithSession(ctx context.Context, s *session, q query.Query, w io.Writer) error {
	res, err := s.engine.Execute(ctx, q)
	if err != nil {
		return fmt.Errorf("query failed: %w", err)
	}
	return writeResult(w, q, res, c.globals != nil && c.globals.JSON)
}
