package cmd

import (
	"bytes"
	"log/slog"
	"os"
	"sync"

	"github.com/k1LoW/pngicon/handler/console"
	slogmulti "github.com/samber/slog-multi"
)

const maxLogLines = 100

// logTail keeps the latest JSON logs of the current run for error.json.
var logTail = newTailBuffer(maxLogLines)

func newLogger() *slog.Logger {
	return slog.New(slogmulti.Fanout(
		console.New(slog.NewTextHandler(os.Stdout, nil)),
		slog.NewJSONHandler(logTail, &slog.HandlerOptions{Level: slog.LevelDebug}),
	))
}

func logLines() []string {
	return logTail.Lines()
}

// tailBuffer is an io.Writer that retains only the last limit complete lines.
type tailBuffer struct {
	mu      sync.Mutex
	limit   int
	lines   []string
	partial []byte
}

func newTailBuffer(limit int) *tailBuffer {
	return &tailBuffer{limit: limit}
}

func (b *tailBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.partial = append(b.partial, p...)
	for {
		i := bytes.IndexByte(b.partial, '\n')
		if i < 0 {
			break
		}
		if line := string(bytes.TrimSpace(b.partial[:i])); line != "" {
			b.lines = append(b.lines, line)
		}
		b.partial = b.partial[i+1:]
	}
	if len(b.lines) > b.limit {
		b.lines = append(b.lines[:0:0], b.lines[len(b.lines)-b.limit:]...)
	}
	return len(p), nil
}

// Lines returns the retained lines, oldest first.
func (b *tailBuffer) Lines() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	if len(b.lines) == 0 {
		return nil
	}
	return append([]string(nil), b.lines...)
}
