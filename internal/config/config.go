// Package config loads mapty settings from defaults, an optional YAML file
// and MAPTY_* environment variables, in increasing order of precedence.
package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

type Config struct {
	Storage StorageConfig `mapstructure:"storage"`
	IDs     IDConfig      `mapstructure:"ids"`
	Map     MapConfig     `mapstructure:"map"`
	Server  ServerConfig  `mapstructure:"server"`
	Log     LogConfig     `mapstructure:"log"`
}

type StorageConfig struct {
	// Backend is one of "sqlite", "badger" or "memory".
	Backend string `mapstructure:"backend"`
	// Path is the sqlite file or the badger directory. An empty badger
	// path runs badger in memory.
	Path  string `mapstructure:"path"`
	Key   string `mapstructure:"key"`
	Codec string `mapstructure:"codec"`
	// QuotaBytes caps the stored collection; 0 means no cap.
	QuotaBytes int `mapstructure:"quota_bytes"`
}

type IDConfig struct {
	Scheme string `mapstructure:"scheme"`
}

type MapConfig struct {
	Zoom int `mapstructure:"zoom"`
	// Locate is "home" to center the map on Home, or "none" to run
	// without a location, which disables the map.
	Locate string     `mapstructure:"locate"`
	Home   HomeConfig `mapstructure:"home"`
	Tiles  TileConfig `mapstructure:"tiles"`
}

type HomeConfig struct {
	Lat float64 `mapstructure:"lat"`
	Lng float64 `mapstructure:"lng"`
}

type TileConfig struct {
	URL        string   `mapstructure:"url"`
	Subdomains []string `mapstructure:"subdomains"`
	MaxZoom    int      `mapstructure:"max_zoom"`
}

type ServerConfig struct {
	Addr  string `mapstructure:"addr"`
	UIDir string `mapstructure:"ui_dir"`
}

type LogConfig struct {
	Format string `mapstructure:"format"`
	Level  string `mapstructure:"level"`
}

func SetDefaults(v *viper.Viper) {
	v.SetDefault("storage.backend", "sqlite")
	v.SetDefault("storage.path", "mapty.db")
	v.SetDefault("storage.key", "workouts")
	v.SetDefault("storage.codec", "json")
	v.SetDefault("storage.quota_bytes", 5*1024*1024)
	v.SetDefault("ids.scheme", "ksuid")
	v.SetDefault("map.zoom", 13)
	v.SetDefault("map.locate", "home")
	v.SetDefault("map.home.lat", 0.0)
	v.SetDefault("map.home.lng", 0.0)
	v.SetDefault("map.tiles.url", "http://{s}.google.com/vt?lyrs=p&x={x}&y={y}&z={z}")
	v.SetDefault("map.tiles.subdomains", []string{"mt0", "mt1", "mt2", "mt3"})
	v.SetDefault("map.tiles.max_zoom", 20)
	v.SetDefault("server.addr", ":8222")
	v.SetDefault("server.ui_dir", "./ui")
	v.SetDefault("log.format", "text")
	v.SetDefault("log.level", "info")
}

// Load reads the config file at path, if any, over the defaults and lets
// MAPTY_* variables override both (MAPTY_STORAGE_BACKEND for
// storage.backend).
func Load(path string) (Config, error) {
	v := viper.New()
	SetDefaults(v)

	v.SetEnvPrefix("MAPTY")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("reading config %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decoding config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	var problems []string

	switch c.Storage.Backend {
	case "sqlite", "badger", "memory":
	default:
		problems = append(problems, fmt.Sprintf("storage.backend %q is not sqlite, badger or memory", c.Storage.Backend))
	}
	if c.Storage.Backend == "sqlite" && c.Storage.Path == "" {
		problems = append(problems, "storage.path is required")
	}
	if c.Storage.Key == "" {
		problems = append(problems, "storage.key is required")
	}
	switch c.Storage.Codec {
	case "json", "msgpack":
	default:
		problems = append(problems, fmt.Sprintf("storage.codec %q is not json or msgpack", c.Storage.Codec))
	}
	switch c.IDs.Scheme {
	case "ksuid", "uuid":
	default:
		problems = append(problems, fmt.Sprintf("ids.scheme %q is not ksuid or uuid", c.IDs.Scheme))
	}
	switch c.Map.Locate {
	case "home", "none":
	default:
		problems = append(problems, fmt.Sprintf("map.locate %q is not home or none", c.Map.Locate))
	}
	if c.Map.Zoom < 0 || c.Map.Zoom > c.Map.Tiles.MaxZoom {
		problems = append(problems, fmt.Sprintf("map.zoom %d is outside 0-%d", c.Map.Zoom, c.Map.Tiles.MaxZoom))
	}
	if c.Map.Home.Lat < -90 || c.Map.Home.Lat > 90 || c.Map.Home.Lng < -180 || c.Map.Home.Lng > 180 {
		problems = append(problems, "map.home is not a valid coordinate")
	}

	if len(problems) > 0 {
		return fmt.Errorf("invalid config: %s", strings.Join(problems, "; "))
	}
	return nil
}
