// Package input loads networks from JSON, YAML or TOML files.
//
// A file gives either a full capacity matrix or a vertex count plus an edge
// list; parallel edges in the list are summed.
//
//	name = "pipes"
//	source = 0
//	sink = 2
//	vertices = 3
//
//	[[edges]]
//	from = 0
//	to = 1
//	capacity = 4
package input

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"flowtrace/pkg/domain"
)

// Supported formats
const (
	FormatJSON = "json"
	FormatYAML = "yaml"
	FormatTOML = "toml"
)

var (
	// ErrUnsupportedFormat the file extension or format name is unknown.
	ErrUnsupportedFormat = errors.New("unsupported network file format")

	// ErrAmbiguousNetwork both matrix and edges were given, or neither.
	ErrAmbiguousNetwork = errors.New("network must define exactly one of matrix or edges")
)

// File is the on-disk shape of a network.
type File struct {
	Name        string           `json:"name" yaml:"name" toml:"name"`
	Description string           `json:"description" yaml:"description" toml:"description"`
	Source      int              `json:"source" yaml:"source" toml:"source"`
	Sink        int              `json:"sink" yaml:"sink" toml:"sink"`
	Matrix      [][]int64        `json:"matrix" yaml:"matrix" toml:"matrix"`
	Vertices    int              `json:"vertices" yaml:"vertices" toml:"vertices"`
	Edges       []EdgeDefinition `json:"edges" yaml:"edges" toml:"edges"`
}

// EdgeDefinition is one entry of an edge list.
type EdgeDefinition struct {
	From     int   `json:"from" yaml:"from" toml:"from"`
	To       int   `json:"to" yaml:"to" toml:"to"`
	Capacity int64 `json:"capacity" yaml:"capacity" toml:"capacity"`
}

// FormatFromPath picks the format from the file extension.
func FormatFromPath(path string) (string, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".toml":
		return FormatTOML, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, filepath.Ext(path))
	}
}

// LoadFile reads and parses a network file.
func LoadFile(path string) (*domain.Network, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read network file: %w", err)
	}

	net, err := Parse(data, format)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if net.Name == "" {
		net.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	return net, nil
}

// Decode reads everything from r and parses it.
func Decode(r io.Reader, format string) (*domain.Network, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	return Parse(data, format)
}

// Parse decodes data in the given format and validates the resulting network.
func Parse(data []byte, format string) (*domain.Network, error) {
	var f File

	switch format {
	case FormatJSON:
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&f); err != nil {
			return nil, fmt.Errorf("decode json: %w", err)
		}
	case FormatYAML:
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&f); err != nil {
			return nil, fmt.Errorf("decode yaml: %w", err)
		}
	case FormatTOML:
		md, err := toml.Decode(string(data), &f)
		if err != nil {
			return nil, fmt.Errorf("decode toml: %w", err)
		}
		if undecoded := md.Undecoded(); len(undecoded) > 0 {
			return nil, fmt.Errorf("decode toml: unknown keys %v", undecoded)
		}
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}

	return f.Network()
}

// Network converts the file into a validated network.
func (f *File) Network() (*domain.Network, error) {
	var matrix domain.Matrix

	switch {
	case len(f.Matrix) > 0 && len(f.Edges) == 0:
		matrix = domain.Matrix(f.Matrix).Clone()
	case len(f.Matrix) == 0 && f.Vertices > 0:
		edges := make([]domain.Edge, len(f.Edges))
		for i, e := range f.Edges {
			edges[i] = domain.Edge{From: e.From, To: e.To, Capacity: e.Capacity}
		}
		m, err := domain.FromEdges(f.Vertices, edges)
		if err != nil {
			return nil, err
		}
		matrix = m
	default:
		return nil, ErrAmbiguousNetwork
	}

	net := &domain.Network{
		Name:        f.Name,
		Description: f.Description,
		Matrix:      matrix,
		Source:      f.Source,
		Sink:        f.Sink,
	}
	if err := net.Validate(); err != nil {
		return nil, err
	}
	return net, nil
}
