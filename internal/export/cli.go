package export

import (
	"fmt"
	"io"
	"os"

	"github.com/okian/marquee/pkg/logger"
)

const logFilePermission = 0o600

// SetupLogging initializes the global logger on stderr, and also on
// logFile when one is given. The returned closer releases the file.
func SetupLogging(level, logFile string) (io.Closer, error) {
	var out io.Writer = os.Stderr
	var closer io.Closer = io.NopCloser(nil)

	if logFile != "" {
		file, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, logFilePermission)
		if err != nil {
			return nil, fmt.Errorf("failed to create log file: %w", err)
		}
		out = io.MultiWriter(os.Stderr, file)
		closer = file
	}

	if err := logger.Init(logger.WithOutput(out), logger.WithLevel(level)); err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	return closer, nil
}

// ShowHelp prints usage information for the render command.
func ShowHelp(w io.Writer) {
	_, _ = io.WriteString(w, `marquee render
==============

Renders every dashboard chart to SVG files without starting a server.

Usage:
  render [options]

Options:
  -data string     directory, http(s) base URL, or "embedded" (default "embedded")
  -out string      output directory (default "out")
  -width float     viewport width in pixels (default 1200)
  -height float    viewport height in pixels (default 600)
  -hover string    entity id to focus in every chart
  -pin string      title id or year to pin
  -charts string   comma separated subset of timeline,connections,dotplot,revenue,ratings
  -layouts         also write JSON layout documents
  -annotations     YAML file replacing the built-in annotation table
  -log string      also write logs to this file
  -level string    log level (default "info")

Examples:
  render -out site/charts
  render -data https://example.com/marquee -hover m01 -layouts
`)
}
