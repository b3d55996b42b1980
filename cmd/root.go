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
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/k1LoW/errors"
	"github.com/k1LoW/pngicon/config"
	"github.com/k1LoW/pngicon/version"
	"github.com/spf13/cobra"
)

var profile string

var rootCmd = &cobra.Command{
	Use:          "pngicon",
	Short:        "pngicon is a tool for generating solid color PNG icons",
	Long:         `pngicon is a tool for generating solid color PNG icons by assembling PNG chunks directly.`,
	SilenceUsage: true,
	Version:      fmt.Sprintf("%s (rev:%s)", version.Version, version.Revision),
}

type errorData struct {
	LatestLogs  []any     `json:"latest_logs"`
	StackTraces any       `json:"stack_traces"`
	CreatedAt   time.Time `json:"created_at"`
	Version     string    `json:"version"`
	Revision    string    `json:"revision"`
}

func Execute() {
	if code := run(os.Args[1:]); code != 0 {
		os.Exit(code)
	}
}

func run(args []string) int {
	rootCmd.SetArgs(args)
	if err := rootCmd.Execute(); err != nil {
		if _, err := writeErrorDump(config.StateHomePath(), err); err != nil {
			_, _ = fmt.Fprintf(os.Stderr, "%v\n", err)
		}
		return 1
	}
	return 0
}

// writeErrorDump writes the latest logs and stack traces of err to dir/error.json.
func writeErrorDump(dir string, err error) (string, error) {
	var latestLogs []any
	for _, line := range logLines() {
		var m map[string]any
		if err := json.Unmarshal([]byte(line), &m); err != nil {
			latestLogs = append(latestLogs, line)
		} else {
			latestLogs = append(latestLogs, m)
		}
	}
	d := &errorData{
		LatestLogs:  latestLogs,
		StackTraces: errors.StackTraces(err),
		CreatedAt:   time.Now(),
		Version:     version.Version,
		Revision:    version.Revision,
	}
	b, err := json.Marshal(d)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return "", fmt.Errorf("failed to create %s: %w", dir, err)
	}
	dumpPath := filepath.Join(dir, "error.json")
	if err := os.WriteFile(dumpPath, b, 0o600); err != nil {
		return "", fmt.Errorf("failed to write error.json to %s: %w", dumpPath, err)
	}
	return dumpPath, nil
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&profile, "profile", "", "", "profile name")
}
