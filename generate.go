package pngicon

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/k1LoW/errors"
)

// Icon is a single entry of an icon set.
type Icon struct {
	Size     int    `yaml:"size" json:"size"`
	Filename string `yaml:"filename" json:"filename"`
}

// DefaultIcons is the icon set generated when nothing else is configured.
var DefaultIcons = []Icon{
	{Size: 16, Filename: "icon16.png"},
	{Size: 32, Filename: "icon32.png"},
	{Size: 48, Filename: "icon48.png"},
	{Size: 128, Filename: "icon128.png"},
}

// Generate writes every icon into dir in order.
// A failed icon does not stop the remaining ones; all failures are returned joined.
func (e *Encoder) Generate(ctx context.Context, dir string, icons []Icon) (err error) {
	defer func() {
		err = errors.WithStack(err)
	}()
	var errs []error
	for _, icon := range icons {
		if err := ctx.Err(); err != nil {
			return errors.Join(append(errs, err)...)
		}
		path := filepath.Join(dir, icon.Filename)
		n, err := e.writeIcon(icon.Size, path)
		if err != nil {
			e.logger.Error("failed to create icon", slog.String("path", path), slog.Int("size", icon.Size), slog.String("error", err.Error()))
			errs = append(errs, fmt.Errorf("failed to create %s: %w", path, err))
			continue
		}
		e.logger.Info("created icon", slog.String("path", path), slog.Int("size", icon.Size), slog.Int("bytes", n))
	}
	return errors.Join(errs...)
}
