package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/kilianp07/voltgo/core/metrics"
	"github.com/kilianp07/voltgo/infra/mqtt"
	"github.com/kilianp07/voltgo/infra/redis"
)

// EnvPrefix marks environment variables that override file values.
// K_RESERVATION__HOLD_SECONDS=60 sets reservation.hold_seconds.
const EnvPrefix = "K_"

type Config struct {
	Reservation ReservationConfig `json:"reservation"`
	Catalog     CatalogConfig     `json:"catalog"`
	HTTP        HTTPConfig        `json:"http"`
	Map         MapConfig         `json:"map"`
	Log         LogConfig         `json:"log"`
	MQTT        mqtt.Config       `json:"mqtt"`
	Metrics     metrics.Config    `json:"metrics"`
	Journal     JournalConfig     `json:"journal"`
	Redis       redis.Config      `json:"redis"`
	Sentry      SentryConfig      `json:"sentry"`
}

// Load reads the configuration file at path and applies environment
// overrides. An empty path yields the defaults plus environment overrides.
func Load(path string) (*Config, error) {
	k := koanf.New(".")
	if path != "" {
		ext := strings.ToLower(filepath.Ext(path))
		var parser koanf.Parser
		switch ext {
		case ".yaml", ".yml":
			parser = yaml.Parser()
		case ".json":
			parser = json.Parser()
		default:
			return nil, fmt.Errorf("unsupported config format: %s", ext)
		}
		if err := k.Load(file.Provider(path), parser); err != nil {
			return nil, err
		}
	}
	// Optional environment overrides
	if err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		s = strings.TrimPrefix(strings.ToLower(s), strings.ToLower(EnvPrefix))
		return strings.ReplaceAll(s, "__", ".")
	}), nil); err != nil {
		return nil, err
	}
	var cfg Config
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "json"}); err != nil {
		return nil, err
	}
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// SetDefaults applies the defaults of every section.
func (c *Config) SetDefaults() {
	c.Reservation.SetDefaults()
	c.HTTP.SetDefaults()
	c.Map.SetDefaults()
	c.Log.SetDefaults()
	c.MQTT.SetDefaults()
	c.Journal.SetDefaults()
	c.Redis.SetDefaults()
}

// Validate checks every section and reports all problems at once.
func (c Config) Validate() error {
	return errors.Join(
		c.Reservation.Validate(),
		c.HTTP.Validate(),
		c.Map.Validate(),
		c.Log.Validate(),
		c.MQTT.Validate(),
		c.Journal.Validate(),
		c.Redis.Validate(),
	)
}
