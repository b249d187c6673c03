package logging

import (
	"context"
	"log/slog"
	"strings"
)

// Writer is an io.Writer that forwards each line written to it to slog.
// It backs the *log.Logger hooks of http.Server and similar APIs.
type Writer struct {
	logger *slog.Logger
	level  slog.Level
	msg    string
}

// NewWriter constructs a Writer logging at level with the given message.
func NewWriter(logger *slog.Logger, level slog.Level, msg string) *Writer {
	return &Writer{logger: logger, level: level, msg: msg}
}

// Write logs p, one record per non-empty line.
func (w *Writer) Write(p []byte) (int, error) {
	if w.logger == nil {
		return len(p), nil
	}
	for _, line := range strings.Split(strings.TrimRight(string(p), "\n"), "\n") {
		if line = strings.TrimSpace(line); line != "" {
			w.logger.Log(context.Background(), w.level, w.msg, "line", line)
		}
	}
	return len(p), nil
}
