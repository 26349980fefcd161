package route

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/v2xlab/obu/core/model"
)

// File is the on-disk route definition format:
//
//	routes:
//	  campus:
//	    - {latitude: 13.73, longitude: 100.53, color: red}
type File struct {
	Routes map[string][]model.Waypoint `json:"routes" yaml:"routes"`
}

// LoadFile reads route definitions from a JSON or YAML file.
func LoadFile(path string) (File, error) {
	f, err := os.Open(path)
	if err != nil {
		return File{}, err
	}
	defer func() { _ = f.Close() }()
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
	return Decode(f, ext)
}

// Decode reads route definitions from r in the given format ("yaml", "yml"
// or "json") and validates every waypoint color.
func Decode(r io.Reader, format string) (File, error) {
	var rf File
	switch strings.ToLower(format) {
	case "yaml", "yml":
		if err := yaml.NewDecoder(r).Decode(&rf); err != nil {
			return rf, err
		}
	case "json":
		if err := json.NewDecoder(r).Decode(&rf); err != nil {
			return rf, err
		}
	default:
		return rf, fmt.Errorf("unsupported format: %s", format)
	}
	for name, wps := range rf.Routes {
		for i, wp := range wps {
			c, ok := model.ParseColor(string(wp.Color))
			if !ok && wp.Color != "" {
				return rf, fmt.Errorf("route %s waypoint %d: unknown color %q", name, i, wp.Color)
			}
			wps[i].Color = c
		}
	}
	return rf, nil
}

// Register adds every route of the file to the registry.
func (f File) Register(r *Registry) error {
	for name, wps := range f.Routes {
		if err := r.Add(name, wps); err != nil {
			return err
		}
	}
	return nil
}
