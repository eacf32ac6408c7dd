package config

import (
	"fmt"

	"github.com/kilianp07/voltgo/core/view"
)

// CatalogConfig locates the station catalog. An empty path selects the
// built-in catalog.
type CatalogConfig struct {
	Path string `json:"path"`
}

// HTTPConfig configures the API server.
type HTTPConfig struct {
	Address        string   `json:"address"`
	AllowedOrigins []string `json:"allowed_origins"`
}

// SetDefaults applies sane defaults.
func (c *HTTPConfig) SetDefaults() {
	if c.Address == "" {
		c.Address = ":8080"
	}
	if len(c.AllowedOrigins) == 0 {
		c.AllowedOrigins = []string{"*"}
	}
}

// Validate checks mandatory fields.
func (c HTTPConfig) Validate() error {
	if c.Address == "" {
		return fmt.Errorf("http: address is required")
	}
	return nil
}

// MapConfig sets the initial viewport of the station map.
type MapConfig struct {
	CenterLat float64 `json:"center_lat"`
	CenterLng float64 `json:"center_lng"`
	Zoom      int     `json:"zoom"`
}

// SetDefaults applies sane defaults.
func (c *MapConfig) SetDefaults() {
	def := view.DefaultMapSettings()
	if c.CenterLat == 0 && c.CenterLng == 0 {
		c.CenterLat = def.Center.Lat
		c.CenterLng = def.Center.Lng
	}
	if c.Zoom == 0 {
		c.Zoom = def.Zoom
	}
}

// Validate checks coordinate ranges.
func (c MapConfig) Validate() error {
	if c.CenterLat < -90 || c.CenterLat > 90 || c.CenterLng < -180 || c.CenterLng > 180 {
		return fmt.Errorf("map: center out of range")
	}
	if c.Zoom < 0 || c.Zoom > 22 {
		return fmt.Errorf("map: zoom must be between 0 and 22")
	}
	return nil
}

// Settings converts the config to view settings.
func (c MapConfig) Settings() view.MapSettings {
	s := view.MapSettings{Zoom: c.Zoom}
	s.Center.Lat = c.CenterLat
	s.Center.Lng = c.CenterLng
	return s
}
