package cmd

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/k1LoW/pngicon"
	"github.com/k1LoW/pngicon/config"
	"github.com/klauspost/compress/zlib"
)

type settings struct {
	dir   string
	level int
	icons []pngicon.Icon
}

// resolveSettings merges flags over the config file. Nil or empty flag values are unset.
func resolveSettings(cfg *config.Config, dir *string, level *int, iconSpecs []string) (*settings, error) {
	s := &settings{
		dir:   cfg.OutDir,
		level: zlib.DefaultCompression,
		icons: cfg.IconSet(),
	}
	if cfg.CompressionLevel != nil {
		s.level = *cfg.CompressionLevel
	}
	if dir != nil {
		s.dir = *dir
	}
	if level != nil {
		s.level = *level
	}
	if len(iconSpecs) > 0 {
		icons, err := parseIconSpecs(iconSpecs)
		if err != nil {
			return nil, err
		}
		s.icons = icons
	}
	if err := (&config.Config{CompressionLevel: &s.level, Icons: s.icons}).Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

// parseIconSpecs parses SIZE=FILENAME pairs. A bare SIZE means iconSIZE.png.
func parseIconSpecs(specs []string) ([]pngicon.Icon, error) {
	icons := make([]pngicon.Icon, 0, len(specs))
	for _, spec := range specs {
		sizeStr, filename, ok := strings.Cut(spec, "=")
		size, err := strconv.Atoi(strings.TrimSpace(sizeStr))
		if err != nil {
			return nil, fmt.Errorf("invalid icon %q: size must be an integer", spec)
		}
		if !ok {
			filename = fmt.Sprintf("icon%d.png", size)
		}
		icons = append(icons, pngicon.Icon{Size: size, Filename: strings.TrimSpace(filename)})
	}
	return icons, nil
}
