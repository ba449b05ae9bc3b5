package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/runnerr0/apmq/internal/config"
)

// Execute implements the go-flags Commander interface for InitCommand.
func (c *InitCommand) Execute(args []string) error {
	path := c.Path
	if path == "" {
		path = config.DefaultConfigPath
	}
	return c.executeAt(path, os.Stdout)
}

// executeAt writes the default config to path unless it already exists.
func (c *InitCommand) executeAt(path string, w io.Writer) error {
	path, err := config.ExpandPath(path)
	if err != nil {
		return err
	}

	_, statErr := os.Stat(path)
	created := os.IsNotExist(statErr)

	if _, err := config.LoadOrCreateAt(path); err != nil {
		return fmt.Errorf("init config: %w", err)
	}

	if c.globals != nil && c.globals.JSON {
		return encodeJSON(w, map[string]interface{}{
			"path":    path,
			"created": created,
		})
	}

	if created {
		fmt.Fprintf(w, "Wrote default config to %s\n", path)
	} else {
		fmt.Fprintf(w, "Config already exists at %s\n", path)
	}
	return nil
}
