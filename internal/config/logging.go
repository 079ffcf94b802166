package config

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"time"
)

const (
	logFilePrefix = "portal-"
	logTimeFormat = "2006-01-02T15-04-05"
)

// SetupLogFile opens a new log file named after the start time in dir and
// prunes older ones down to maxFiles (0 keeps all). Caller closes the file.
func SetupLogFile(dir string, maxFiles int) (*os.File, error) {
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("create log directory: %w", err)
	}

	name := filepath.Join(dir, logFilePrefix+time.Now().UTC().Format(logTimeFormat)+".log")
	f, err := os.OpenFile(name, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o640)
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}

	if maxFiles > 0 {
		if err := pruneLogs(dir, maxFiles); err != nil {
			// logging to the new file still works
			fmt.Fprintf(os.Stderr, "warning: failed to prune old logs: %v\n", err)
		}
	}
	return f, nil
}

// pruneLogs removes the oldest log files beyond keep. Names sort
// chronologically because of the timestamp layout.
func pruneLogs(dir string, keep int) error {
	files, err := filepath.Glob(filepath.Join(dir, logFilePrefix+"*.log"))
	if err != nil {
		return err
	}
	if len(files) <= keep {
		return nil
	}

	slices.Sort(files)
	for _, old := range files[:len(files)-keep] {
		if err := os.Remove(old); err != nil {
			return fmt.Errorf("remove %s: %w", old, err)
		}
	}
	return nil
}
