package catalog

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/kilianp07/voltgo/core/model"
)

type file struct {
	Stations []model.Station `json:"stations" yaml:"stations"`
}

// LoadFile reads a catalog from a JSON or YAML file. An empty path yields the
// built-in catalog.
func LoadFile(path string) (*Catalog, error) {
	if path == "" {
		return Default(), nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
	return Decode(f, ext)
}

// Decode reads a catalog document in the given format ("yaml", "yml" or "json").
func Decode(r io.Reader, format string) (*Catalog, error) {
	var doc file
	switch strings.ToLower(format) {
	case "yaml", "yml":
		if err := yaml.NewDecoder(r).Decode(&doc); err != nil {
			return nil, fmt.Errorf("decode catalog: %w", err)
		}
	case "json":
		if err := json.NewDecoder(r).Decode(&doc); err != nil {
			return nil, fmt.Errorf("decode catalog: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported catalog format: %s", format)
	}
	if len(doc.Stations) == 0 {
		return nil, fmt.Errorf("catalog has no stations")
	}
	return New(doc.Stations)
}
