package config

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/sagarc03/statica"
	statichttp "github.com/sagarc03/statica/http"
)

// configKey is the context key for storing the loaded configuration.
type configKey struct{}

// WithContext returns a new context with the config stored.
func WithContext(ctx context.Context, cfg *Config) context.Context {
	return context.WithValue(ctx, configKey{}, cfg)
}

// FromContext retrieves the config from context.
// Returns an error if config is not found.
func FromContext(ctx context.Context) (*Config, error) {
	cfg, ok := ctx.Value(configKey{}).(*Config)
	if !ok || cfg == nil {
		return nil, errors.New("config not found in context")
	}
	return cfg, nil
}

// Config is the root configuration struct for statica.
type Config struct {
	Server      ServerConfig                 `mapstructure:"server" yaml:"server"`
	Storage     StorageConfig                `mapstructure:"storage" yaml:"storage"`
	Cache       CacheConfig                  `mapstructure:"cache" yaml:"cache"`
	Compression statichttp.CompressionConfig `mapstructure:"compression" yaml:"compression"`
	Listing     ListingConfig                `mapstructure:"listing" yaml:"listing"`
	CORS        statichttp.CORSConfig        `mapstructure:"cors" yaml:"cors"`
	Log         LogConfig                    `mapstructure:"log" yaml:"log"`
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Host string `mapstructure:"host" yaml:"host"`
	Port int    `mapstructure:"port" yaml:"port" validate:"required,min=1,max=65535"`
	Mode string `mapstructure:"mode" yaml:"mode" validate:"required,oneof=compat strict"`
}

// StorageConfig holds the directory that is served.
type StorageConfig struct {
	Path string `mapstructure:"path" yaml:"path" validate:"required"`
}

// CacheConfig holds the freshness advertised in Cache-Control.
type CacheConfig struct {
	MaxAge int `mapstructure:"max_age" yaml:"max_age" validate:"min=0"`
}

// ListingConfig toggles directory listings.
type ListingConfig struct {
	Enabled bool `mapstructure:"enabled" yaml:"enabled"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level  string `mapstructure:"level" yaml:"level" validate:"required,oneof=debug info warn error"`
	Format string `mapstructure:"format" yaml:"format" validate:"required,oneof=text json"`
}

// Addr returns the listen address.
func (c *Config) Addr() string {
	return net.JoinHostPort(c.Server.Host, strconv.Itoa(c.Server.Port))
}

// HandlerConfig converts the loaded configuration for the http package.
func (c *Config) HandlerConfig() (statichttp.HandlerConfig, error) {
	mode, err := statica.ParseProtocolMode(c.Server.Mode)
	if err != nil {
		return statichttp.HandlerConfig{}, fmt.Errorf("handler config: %w", err)
	}

	return statichttp.HandlerConfig{
		Mode:        mode,
		MaxAge:      time.Duration(c.Cache.MaxAge) * time.Second,
		Compression: c.Compression,
		Listing:     c.Listing.Enabled,
		CORS:        c.CORS,
	}, nil
}

// flagToViperKey maps CLI flag names to viper configuration keys.
var flagToViperKey = map[string]string{
	"dir":        "storage.path",
	"host":       "server.host",
	"port":       "server.port",
	"mode":       "server.mode",
	"max-age":    "cache.max_age",
	"compress":   "compression.enabled",
	"listing":    "listing.enabled",
	"log-level":  "log.level",
	"log-format": "log.format",
}

// bindFlags binds CLI flags to viper keys with custom name mapping.
func bindFlags(v *viper.Viper, flags *pflag.FlagSet) {
	flags.VisitAll(func(f *pflag.Flag) {
		// Use custom mapping if it exists, otherwise use flag name as-is
		viperKey := f.Name
		if mapped, ok := flagToViperKey[viperKey]; ok {
			viperKey = mapped
		}

		// Only bind if the flag was explicitly set
		if f.Changed {
			_ = v.BindPFlag(viperKey, f)
		}
	})
}

// setDefaults configures default values on the viper instance.
func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "localhost")
	v.SetDefault("server.port", 3000)
	v.SetDefault("server.mode", string(statica.ModeCompat))

	v.SetDefault("storage.path", ".")

	v.SetDefault("cache.max_age", int(statica.DefaultMaxAge/time.Second))

	v.SetDefault("compression.enabled", true)
	v.SetDefault("compression.level", statica.DefaultCompressionLevel)

	v.SetDefault("listing.enabled", true)

	v.SetDefault("cors.enabled", false)
	v.SetDefault("cors.allowed_origins", []string{"*"})
	v.SetDefault("cors.allowed_methods", []string{"GET", "HEAD"})
	v.SetDefault("cors.allowed_headers", []string{"Range", "If-None-Match", "If-Modified-Since"})
	v.SetDefault("cors.exposed_headers", []string{"Etag", "Last-Modified", "Content-Range", "Accept-Ranges"})
	v.SetDefault("cors.allow_credentials", false)
	v.SetDefault("cors.max_age", 300)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
}

// Load reads configuration and returns a validated Config struct.
// Order of precedence (highest to lowest): flags > env > config files > defaults
//
// Parameters:
//   - configFiles: list of config file paths (later files override earlier ones)
//   - flags: cobra flag set for flag binding (can be nil)
func Load(configFiles []string, flags *pflag.FlagSet) (*Config, error) {
	v := viper.New()

	// 1. Set defaults
	setDefaults(v)

	// 2. Read config files
	if len(configFiles) > 0 {
		v.SetConfigFile(configFiles[0])
		if err := v.ReadInConfig(); err != nil {
			slog.Warn("error reading config file", "file", configFiles[0], "err", err)
		}

		for _, cf := range configFiles[1:] {
			v.SetConfigFile(cf)
			if err := v.MergeInConfig(); err != nil {
				slog.Warn("error merging config file", "file", cf, "err", err)
			}
		}
	} else {
		v.SetConfigName("statica")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")

		if err := v.ReadInConfig(); err != nil {
			var configNotFound viper.ConfigFileNotFoundError
			if !errors.As(err, &configNotFound) {
				slog.Warn("error reading config file", "err", err)
			}
		}
	}

	// 3. Bind environment variables
	v.SetEnvPrefix("STATICA")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// 4. Bind flags (if provided)
	if flags != nil {
		bindFlags(v, flags)
	}

	// 5. Unmarshal into Config struct
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	// 6. Validate using go-playground/validator
	validate := validator.New()
	if err := validate.Struct(&cfg); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return &cfg, nil
}
