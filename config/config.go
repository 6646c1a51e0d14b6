package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// TomlServer represents HTTP server configuration
type TomlServer struct {
	Hostname string `toml:"hostname"`
	Port     int    `toml:"port,omitempty"`
}

// TomlBackend represents the moderation backend configuration
type TomlBackend struct {
	URL            string `toml:"url"`
	TimeoutSeconds int    `toml:"timeout_seconds,omitempty"`
}

// TomlGeocoder represents the remote geocoder configuration
type TomlGeocoder struct {
	URL             string `toml:"url"`
	CountryCodes    string `toml:"country_codes,omitempty"`
	TimeoutSeconds  int    `toml:"timeout_seconds,omitempty"`
	MinIntervalMs   int    `toml:"min_interval_ms,omitempty"`
	DebounceMs      int    `toml:"debounce_ms,omitempty"`
	ContactComments string `toml:"contact,omitempty"` // sent as part of the User-Agent
}

// TomlCache represents the post cache configuration
type TomlCache struct {
	Database   string `toml:"database,omitempty"`
	TTLMinutes int    `toml:"ttl_minutes,omitempty"`
}

// TomlPlace represents an extra gazetteer entry
type TomlPlace struct {
	Name       string  `toml:"name"`
	Prov       string  `toml:"prov"`
	Population int     `toml:"population"`
	Lat        float64 `toml:"lat"`
	Lng        float64 `toml:"lng"`
}

// TomlConfig represents the top-level configuration
type TomlConfig struct {
	Server   TomlServer   `toml:"server"`
	Backend  TomlBackend  `toml:"backend"`
	Geocoder TomlGeocoder `toml:"geocoder"`
	Cache    TomlCache    `toml:"cache"`
	Places   []TomlPlace  `toml:"places"`
}

func LoadConfig(path string) (*TomlConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	var config TomlConfig
	if err := toml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("error parsing config file: %w", err)
	}

	return &config, nil
}
