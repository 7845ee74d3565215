package policy

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// Format is a policy file encoding.
type Format uint8

const (
	FormatTOML Format = iota
	FormatYAML
)

// ErrUnknownFormat is returned for file extensions other than
// .toml, .yaml and .yml.
var ErrUnknownFormat = errors.New("policy: unknown file format")

// FormatOf returns the format implied by the file extension of path.
func FormatOf(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		return FormatTOML, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	}
	return 0, fmt.Errorf("%w: %s", ErrUnknownFormat, path)
}

// Load reads and validates a policy file. Keys missing from the file keep
// their [Default] values; unknown keys are an error.
func Load(path string) (Policy, error) {
	f, err := FormatOf(path)
	if err != nil {
		return Policy{}, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Policy{}, fmt.Errorf("policy: %w", err)
	}
	p, err := Decode(bytes.NewReader(data), f)
	if err != nil {
		return Policy{}, fmt.Errorf("%w (%s)", err, path)
	}
	return p, nil
}

// Decode reads a policy in the given format on top of [Default] and
// validates the result.
func Decode(r io.Reader, f Format) (Policy, error) {
	p := Default()
	switch f {
	case FormatTOML:
		dec := toml.NewDecoder(r)
		dec.DisallowUnknownFields()
		if err := dec.Decode(&p); err != nil {
			return Policy{}, fmt.Errorf("policy: decode toml: %w", err)
		}
	case FormatYAML:
		dec := yaml.NewDecoder(r)
		dec.KnownFields(true)
		if err := dec.Decode(&p); err != nil && !errors.Is(err, io.EOF) {
			return Policy{}, fmt.Errorf("policy: decode yaml: %w", err)
		}
	default:
		return Policy{}, fmt.Errorf("%w: %d", ErrUnknownFormat, f)
	}
	if err := p.Validate(); err != nil {
		return Policy{}, err
	}
	return p, nil
}

// Encode writes p in the given format.
func Encode(w io.Writer, p Policy, f Format) error {
	switch f {
	case FormatTOML:
		return toml.NewEncoder(w).Encode(p)
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		if err := enc.Encode(p); err != nil {
			return err
		}
		return enc.Close()
	}
	return fmt.Errorf("%w: %d", ErrUnknownFormat, f)
}
