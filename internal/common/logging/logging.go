package logging

import (
	"io"
	"os"

	log "github.com/sirupsen/logrus"
)

// ConfigureLogging sets up the standard logrus logger for an application. Logs go to stderr so that
// stdout stays free for program output.
func ConfigureLogging(level log.Level) {
	ConfigureLoggingTo(os.Stderr, level)
}

// ConfigureLoggingTo is ConfigureLogging with an explicit destination.
func ConfigureLoggingTo(out io.Writer, level log.Level) {
	log.SetFormatter(&log.TextFormatter{ForceColors: false, FullTimestamp: true})
	log.SetOutput(out)
	log.SetLevel(level)
}

// ConfigureCliLogging sets up logging for short-lived command line tools: bare messages only.
func ConfigureCliLogging() {
	log.SetFormatter(new(CommandLineFormatter))
	log.SetOutput(os.Stderr)
}
