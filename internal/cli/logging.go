package cli

import (
	"io"
	"os"
	"path/filepath"

	log "github.com/sirupsen/logrus"

	"tugestor-cli/internal/store"
)

// newLogger logs warnings (or everything with debug) to w.
func newLogger(w io.Writer, debug bool) *log.Logger {
	l := log.New()
	l.SetOutput(w)
	l.SetFormatter(&log.TextFormatter{DisableTimestamp: !debug, FullTimestamp: true})
	l.SetLevel(log.WarnLevel)
	if debug {
		l.SetLevel(log.DebugLevel)
	}
	return l
}

// fileLogger writes to the config dir log file so the TUI screen stays clean.
func fileLogger(debug bool) (*log.Logger, func(), error) {
	path, err := store.LogPath()
	if err != nil {
		return nil, nil, err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, nil, err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600)
	if err != nil {
		return nil, nil, err
	}
	l := newLogger(f, debug)
	l.SetFormatter(&log.JSONFormatter{})
	if !debug {
		l.SetLevel(log.InfoLevel)
	}
	return l, func() { _ = f.Close() }, nil
}
