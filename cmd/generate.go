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
	"context"
	"log/slog"

	"github.com/k1LoW/pngicon"
	"github.com/k1LoW/pngicon/config"
	"github.com/spf13/cobra"
)

var (
	outDir    string
	iconSpecs []string
	level     int
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "generate solid color PNG icons",
	Long:  `generate solid color PNG icons (icon16.png, icon32.png, icon48.png and icon128.png unless configured).`,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := loadSettings(cmd)
		if err != nil {
			return err
		}
		return generate(cmd.Context(), s, newLogger())
	},
}

func init() {
	rootCmd.AddCommand(generateCmd)
	generateCmd.Flags().StringVarP(&outDir, "out-dir", "o", "", "output directory")
	generateCmd.Flags().StringArrayVarP(&iconSpecs, "icon", "i", nil, "icon to generate as SIZE=FILENAME (repeatable)")
	generateCmd.Flags().IntVarP(&level, "level", "l", 0, "zlib compression level (-2 to 9)")
}

func loadSettings(cmd *cobra.Command) (*settings, error) {
	cfg, err := config.Load(profile)
	if err != nil {
		return nil, err
	}
	var dir *string
	if cmd.Flags().Changed("out-dir") {
		dir = &outDir
	}
	var lv *int
	if cmd.Flags().Lookup("level") != nil && cmd.Flags().Changed("level") {
		lv = &level
	}
	var specs []string
	if cmd.Flags().Lookup("icon") != nil {
		specs = iconSpecs
	}
	return resolveSettings(cfg, dir, lv, specs)
}

func generate(ctx context.Context, s *settings, logger *slog.Logger) error {
	e, err := pngicon.New(
		pngicon.WithLogger(logger),
		pngicon.WithCompressionLevel(s.level),
	)
	if err != nil {
		return err
	}
	return e.Generate(ctx, s.dir, s.icons)
}
