// Package obs configures logging and tracing.
package obs

import (
	"fmt"
	"io"
	"strings"

	log "github.com/sirupsen/logrus"
)

// Log formats accepted by ConfigureLogging.
const (
	FormatText = "text"
	FormatJSON = "json"
)

// ConfigureLogging sets the global logrus level and formatter.
func ConfigureLogging(level, format string, out io.Writer) error {
	lvl, err := log.ParseLevel(level)
	if err != nil {
		return fmt.Errorf("log level: %w", err)
	}

	var formatter log.Formatter
	switch strings.ToLower(format) {
	case FormatJSON:
		formatter = &log.JSONFormatter{}
	case FormatText, "":
		formatter = &log.TextFormatter{FullTimestamp: true}
	default:
		return fmt.Errorf("log format %q: must be %s or %s", format, FormatText, FormatJSON)
	}

	log.SetLevel(lvl)
	log.SetFormatter(formatter)
	if out != nil {
		log.SetOutput(out)
	}
	return nil
}
