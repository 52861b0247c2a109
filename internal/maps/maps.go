// Package maps describes the disposal-location map shown next to a result
package maps

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// LatLng is a map coordinate
type LatLng struct {
	Lat float64 `yaml:"lat" json:"lat"`
	Lng float64 `yaml:"lng" json:"lng"`
}

// Config is everything the map widget needs to render markers
type Config struct {
	APIKey  string   `yaml:"-" json:"-"`
	Center  LatLng   `yaml:"center" json:"center"`
	Zoom    int      `yaml:"zoom" json:"zoom"`
	Markers []LatLng `yaml:"markers" json:"markers"`
}

// Default is central Tokyo with two nearby disposal points
func Default() Config {
	return Config{
		Center: LatLng{Lat: 35.6895, Lng: 139.7514},
		Zoom:   13,
		Markers: []LatLng{
			{Lat: 35.6895, Lng: 139.7514},
			{Lat: 35.6825, Lng: 139.7554},
		},
	}
}

// Load reads a marker file. Fields missing from the file keep their defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}

	var file Config
	if err := yaml.Unmarshal(data, &file); err != nil {
		return cfg, fmt.Errorf("parse %s: %w", path, err)
	}
	if file.Center != (LatLng{}) {
		cfg.Center = file.Center
	}
	if file.Zoom > 0 {
		cfg.Zoom = file.Zoom
	}
	if file.Markers != nil {
		cfg.Markers = file.Markers
	}
	return cfg, nil
}

// Enabled reports whether the map can be drawn
func (c Config) Enabled() bool {
	return c.APIKey != ""
}

// Points returns every marker plus the center, which is always marked
func (c Config) Points() []LatLng {
	points := make([]LatLng, 0, len(c.Markers)+1)
	points = append(points, c.Markers...)
	return append(points, c.Center)
}
