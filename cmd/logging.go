// file: cmd/logging.go
// version: 1.0.0
// guid: 5ebbd883-139f-402f-a9af-ae5501533db2

package cmd

import (
	"bytes"
	"io"
	"log"
	"os"
	"strings"
)

var logLevels = map[string]int{"debug": 0, "info": 1, "warn": 2, "error": 3}

// levelFilter drops log lines tagged below the configured level. Untagged
// lines always pass.
type levelFilter struct {
	out io.Writer
	min int
}

func (f *levelFilter) Write(p []byte) (int, error) {
	if lineLevel(p) < f.min {
		return len(p), nil
	}
	return f.out.Write(p)
}

func lineLevel(p []byte) int {
	switch {
	case bytes.Contains(p, []byte("[DEBUG]")):
		return logLevels["debug"]
	case bytes.Contains(p, []byte("[INFO]")):
		return logLevels["info"]
	case bytes.Contains(p, []byte("[WARN]")):
		return logLevels["warn"]
	case bytes.Contains(p, []byte("[ERROR]")):
		return logLevels["error"]
	default:
		return logLevels["error"]
	}
}

// setupLogging routes the standard logger to stderr, filtered by level.
func setupLogging(level string) {
	min, ok := logLevels[strings.ToLower(level)]
	if !ok {
		min = logLevels["info"]
	}
	log.SetOutput(&levelFilter{out: os.Stderr, min: min})
}
