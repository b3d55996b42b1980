package console

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/fatih/color"
	"github.com/k1LoW/errors"
	"github.com/mattn/go-colorable"
)

var (
	green = color.New(color.FgGreen).SprintFunc()
	gray  = color.New(color.FgHiBlack).SprintFunc()
	red   = color.New(color.FgRed).SprintFunc()
	bold  = color.New(color.Bold).SprintFunc()
)

var _ slog.Handler = (*consoleHandler)(nil)

// New returns a handler that prints icon progress to stdout.
// h only decides which levels are enabled.
func New(h slog.Handler) slog.Handler {
	return newHandler(h, colorable.NewColorableStdout())
}

func newHandler(h slog.Handler, w io.Writer) *consoleHandler {
	return &consoleHandler{
		handler: h,
		stdout:  w,
	}
}

type consoleHandler struct {
	handler slog.Handler
	stdout  io.Writer
}

func (h *consoleHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.handler.Enabled(ctx, level)
}

func (h *consoleHandler) Handle(ctx context.Context, r slog.Record) (err error) {
	defer func() {
		err = errors.WithStack(err)
	}()

	attrs := map[string]slog.Value{}
	r.Attrs(func(attr slog.Attr) bool {
		attrs[attr.Key] = attr.Value
		return true
	})
	switch {
	case r.Message == "created icon":
		return h.printf("%s %s\n", green("Created"), attrs["path"])
	case r.Message == "verified icon":
		note := "equivalent"
		if v, ok := attrs["identical"]; ok && v.Kind() == slog.KindBool && v.Bool() {
			note = "identical"
		}
		return h.printf("%s %s %s\n", green("OK"), attrs["path"], gray("("+note+")"))
	case strings.HasPrefix(r.Message, "failed to verify"):
		return h.printf("%s %s: %s\n", red("NG"), attrs["path"], attrs["error"])
	case strings.Contains(r.Message, "failed to"):
		if p, ok := attrs["path"]; ok {
			return h.printf("%s %s %s: %s\n", red("!"), r.Message, p, attrs["error"])
		}
		return h.printf("%s %s: %s\n", red("!"), r.Message, attrs["error"])
	case r.Message == "verify completed":
		return h.printf("%s\n", bold(fmt.Sprintf("%s/%s icons", attrs["ok"], attrs["total"])))
	}
	return nil
}

func (h *consoleHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &consoleHandler{handler: h.handler.WithAttrs(attrs), stdout: h.stdout}
}

func (h *consoleHandler) WithGroup(name string) slog.Handler {
	return &consoleHandler{handler: h.handler.WithGroup(name), stdout: h.stdout}
}

func (h *consoleHandler) printf(format string, a ...any) error {
	_, err := fmt.Fprintf(h.stdout, format, a...)
	return err
}
