package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/k1LoW/pngicon"
)

func TestLoad(t *testing.T) {
	tests := []struct {
		name      string
		files     map[string]string
		profile   string
		want      *Config
		wantIcons []pngicon.Icon
		wantErr   bool
	}{
		{
			name:      "no config file",
			want:      &Config{},
			wantIcons: pngicon.DefaultIcons,
		},
		{
			name: "config.yml",
			files: map[string]string{
				"config.yml": `
outDir: images
compressionLevel: 9
icons:
  - size: 16
    filename: icon16.png
  - size: 64
    filename: icon64.png
`,
			},
			want: &Config{
				OutDir:           "images",
				CompressionLevel: intPtr(9),
				Icons: []pngicon.Icon{
					{Size: 16, Filename: "icon16.png"},
					{Size: 64, Filename: "icon64.png"},
				},
			},
			wantIcons: []pngicon.Icon{
				{Size: 16, Filename: "icon16.png"},
				{Size: 64, Filename: "icon64.png"},
			},
		},
		{
			name: "profile config takes precedence",
			files: map[string]string{
				"config.yml":      "outDir: default\n",
				"config-ext.yaml": "outDir: ext\n",
			},
			profile:   "ext",
			want:      &Config{OutDir: "ext"},
			wantIcons: pngicon.DefaultIcons,
		},
		{
			name: "missing profile falls back to config.yml",
			files: map[string]string{
				"config.yml": "outDir: default\n",
			},
			profile:   "missing",
			want:      &Config{OutDir: "default"},
			wantIcons: pngicon.DefaultIcons,
		},
		{
			name: "invalid size",
			files: map[string]string{
				"config.yml": "icons:\n  - size: 0\n    filename: icon0.png\n",
			},
			wantErr: true,
		},
		{
			name: "invalid compression level",
			files: map[string]string{
				"config.yml": "compressionLevel: 12\n",
			},
			wantErr: true,
		},
		{
			name: "broken yaml",
			files: map[string]string{
				"config.yml": "icons: [",
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tmpDir := t.TempDir()
			t.Setenv("XDG_CONFIG_HOME", tmpDir)
			configHomePath = ""
			t.Cleanup(func() { configHomePath = "" })

			dir := filepath.Join(tmpDir, "pngicon")
			if err := os.MkdirAll(dir, 0o755); err != nil {
				t.Fatalf("Failed to create config directory: %v", err)
			}
			for name, content := range tt.files {
				if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o600); err != nil {
					t.Fatalf("Failed to write config file: %v", err)
				}
			}

			cfg, err := Load(tt.profile)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Load() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			if diff := cmp.Diff(tt.want, cfg); diff != "" {
				t.Errorf("Load() mismatch (-want +got):\n%s", diff)
			}
			if diff := cmp.Diff(tt.wantIcons, cfg.IconSet()); diff != "" {
				t.Errorf("IconSet() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		icons   []pngicon.Icon
		wantErr error
		ok      bool
	}{
		{"default icons", pngicon.DefaultIcons, nil, true},
		{"negative size", []pngicon.Icon{{Size: -16, Filename: "a.png"}}, pngicon.ErrInvalidSize, false},
		{"empty filename", []pngicon.Icon{{Size: 16}}, nil, false},
		{"path separator", []pngicon.Icon{{Size: 16, Filename: "a/b.png"}}, nil, false},
		{"duplicate", []pngicon.Icon{{Size: 16, Filename: "a.png"}, {Size: 32, Filename: "a.png"}}, nil, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := (&Config{Icons: tt.icons}).Validate()
			if tt.ok {
				if err != nil {
					t.Errorf("Validate() error = %v", err)
				}
				return
			}
			if err == nil {
				t.Fatal("Validate() want error")
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Errorf("Validate() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestStateHomePath(t *testing.T) {
	tmpDir := t.TempDir()
	t.Setenv("XDG_STATE_HOME", tmpDir)
	stateHomePath = ""
	t.Cleanup(func() { stateHomePath = "" })

	if got, want := StateHomePath(), filepath.Join(tmpDir, "pngicon"); got != want {
		t.Errorf("StateHomePath() = %s, want %s", got, want)
	}
}

func intPtr(v int) *int {
	return &v
}
