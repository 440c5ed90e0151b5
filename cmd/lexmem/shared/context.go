// Package shared holds the context passed to all CLI commands.
package shared

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"

	"github.com/go-ports/lexmemory/internal/config"
	"github.com/go-ports/lexmemory/internal/service"
)

// Context carries global CLI state (flags set on the root command).
type Context struct {
	// DataDir overrides the data directory.
	// When empty, resolution falls through to LEXMEM_DATA env var → persisted config → current dir.
	DataDir string

	// Verbose enables debug logging.
	Verbose bool
}

// ResolveDataDir returns the effective data directory and where it came from.
func (c *Context) ResolveDataDir() (path, source string) {
	return config.ResolveDataDir(c.DataDir)
}

// OpenService loads the corpus from the effective data directory.
func (c *Context) OpenService(ctx context.Context) (*service.Service, error) {
	dir, source := c.ResolveDataDir()
	slog.Debug("opening data dir", "path", dir, "source", source)
	return service.New(ctx, dir)
}

// SetupLogging installs the process-wide slog handler writing to w.
func (c *Context) SetupLogging(w io.Writer) {
	level := slog.LevelWarn
	if c.Verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})))
}

// PrintJSON writes v as indented JSON followed by a newline.
func PrintJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
