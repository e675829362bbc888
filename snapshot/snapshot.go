// (c) Siemens AG 2026
//
// SPDX-License-Identifier: MIT

package snapshot

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/siemens/whaletopo/model"
	"gopkg.in/yaml.v3"
)

// Format of a snapshot or configuration.
type Format string

// Supported formats.
const (
	JSON Format = "json"
	YAML Format = "yaml"
)

// Stdio is the file name referring to stdin or stdout.
const Stdio = "-"

// ParseFormat returns the format of the specified name, which is case
// insensitive. An empty name returns the zero format.
func ParseFormat(name string) (Format, error) {
	switch strings.ToLower(name) {
	case "":
		return "", nil
	case "json":
		return JSON, nil
	case "yaml", "yml":
		return YAML, nil
	}
	return "", fmt.Errorf("unsupported format '%s', must be 'json' or 'yaml'", name)
}

// FormatOf returns the format implied by the extension of the specified file
// name.
func FormatOf(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return YAML
	}
	return JSON
}

// Decode a value in the specified format from the reader. An empty input
// leaves the value untouched.
func Decode(r io.Reader, format Format, v any) error {
	var err error
	switch format {
	case YAML:
		err = yaml.NewDecoder(r).Decode(v)
	default:
		err = json.NewDecoder(r).Decode(v)
	}
	if errors.Is(err, io.EOF) {
		return nil
	}
	return err
}

// Encode a value in the specified format to the writer.
func Encode(w io.Writer, format Format, v any) error {
	switch format {
	case YAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	default:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	}
}

// LoadSystem reads a system snapshot from the specified file. An empty file
// yields an empty system.
func LoadSystem(path string) (*model.System, error) {
	s := &model.System{}
	if err := load(path, s); err != nil {
		return nil, fmt.Errorf("cannot load system snapshot, reason: %w", err)
	}
	return s, nil
}

// SaveSystem writes a system snapshot to the specified file, in the format
// implied by the file name extension unless a format is specified.
func SaveSystem(path string, format Format, s *model.System) error {
	if err := save(path, format, s); err != nil {
		return fmt.Errorf("cannot save system snapshot, reason: %w", err)
	}
	return nil
}

// LoadConfig reads an analysis configuration from the specified file and
// validates it.
func LoadConfig(path string) (*model.Config, error) {
	cfg := &model.Config{}
	if err := load(path, cfg); err != nil {
		return nil, fmt.Errorf("cannot load configuration, reason: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func load(path string, v any) error {
	if path == Stdio {
		return Decode(os.Stdin, YAML, v)
	}
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return Decode(f, FormatOf(path), v)
}

func save(path string, format Format, v any) error {
	if path == Stdio {
		if format == "" {
			format = JSON
		}
		return Encode(os.Stdout, format, v)
	}
	if format == "" {
		format = FormatOf(path)
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := Encode(f, format, v); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}
