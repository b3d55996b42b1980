/*
Copyright © 2025 Ken'ichiro Oyama <k1lowxb@gmail.com>

Permission is hereby granted, free of charge, to any person obtaining a copy
of this software and associated documentation files (the "Software"), to deal
in the Software without restriction, including without limitation the rights
to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
copies of the Software, and to permit persons to whom the Software is
furnished to do so, subject to the following conditions:

The above copyright notice and this permission notice shall be included in
all copies or substantial portions of the Software.

THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN
THE SOFTWARE.
*/
package cmd

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/k1LoW/errors"
	"github.com/k1LoW/pngicon"
	"github.com/spf13/cobra"
)

var verifyCmd = &cobra.Command{
	Use:   "verify [ICON_FILE...]",
	Short: "verify generated PNG icons",
	Long: `verify generated PNG icons.

Without arguments the configured icon set is verified in the output directory.
With arguments each file is verified using the size declared in its IHDR chunk.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := loadSettings(cmd)
		if err != nil {
			return err
		}
		return verify(cmd.Context(), s, args, newLogger())
	},
}

func init() {
	rootCmd.AddCommand(verifyCmd)
	verifyCmd.Flags().StringVarP(&outDir, "out-dir", "o", "", "directory of the icon set")
	verifyCmd.Flags().IntVarP(&level, "level", "l", 0, "zlib compression level the icons were generated with (-2 to 9)")
}

type verifyTarget struct {
	path string
	size int
}

func verify(ctx context.Context, s *settings, files []string, logger *slog.Logger) (err error) {
	defer func() {
		err = errors.WithStack(err)
	}()
	e, err := pngicon.New(pngicon.WithLogger(logger), pngicon.WithCompressionLevel(s.level))
	if err != nil {
		return err
	}
	var targets []verifyTarget
	if len(files) > 0 {
		for _, f := range files {
			targets = append(targets, verifyTarget{path: f})
		}
	} else {
		for _, icon := range s.icons {
			targets = append(targets, verifyTarget{path: filepath.Join(s.dir, icon.Filename), size: icon.Size})
		}
	}
	var failed int
	for _, t := range targets {
		if err := ctx.Err(); err != nil {
			return err
		}
		identical, err := verifyIcon(e, t)
		if err != nil {
			failed++
			logger.Error("failed to verify icon", slog.String("path", t.path), slog.String("error", err.Error()))
			continue
		}
		logger.Info("verified icon", slog.String("path", t.path), slog.Bool("identical", identical))
	}
	logger.Info("verify completed", slog.Int("ok", len(targets)-failed), slog.Int("total", len(targets)))
	if failed > 0 {
		return fmt.Errorf("%d of %d icons failed verification", failed, len(targets))
	}
	return nil
}

// verifyIcon reports whether the icon is byte-identical to a fresh encode.
func verifyIcon(e *pngicon.Encoder, t verifyTarget) (bool, error) {
	b, err := os.ReadFile(t.path)
	if err != nil {
		return false, err
	}
	r, err := pngicon.Verify(b, t.size)
	if err != nil {
		return false, err
	}
	ref, err := e.Reference(r.Width)
	if err != nil {
		return false, err
	}
	if bytes.Equal(b, ref) {
		return true, nil
	}
	eq, err := pngicon.Equivalent(b, ref)
	if err != nil {
		return false, err
	}
	if !eq {
		return false, fmt.Errorf("%s is not equivalent to a %dx%d icon", t.path, r.Width, r.Height)
	}
	return false, nil
}
