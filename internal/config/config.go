// Package config loads the application configuration.
//
// Values resolve in the usual precedence order: explicit config file,
// then NUMBERHOP_* environment variables, then built-in defaults. The
// file is YAML and every field below maps to a dotted key, so
// server.port becomes NUMBERHOP_SERVER_PORT in the environment.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/numberhop/numberhop/internal/sequencer"
)

// Config is the root application configuration.
type Config struct {
	Server      ServerConfig      `mapstructure:"server"`
	Database    DatabaseConfig    `mapstructure:"database"`
	Redis       RedisConfig       `mapstructure:"redis"`
	Leaderboard LeaderboardConfig `mapstructure:"leaderboard"`
	Walk        WalkConfig        `mapstructure:"walk"`
	Logging     LoggingConfig     `mapstructure:"logging"`
}

// ServerConfig controls the HTTP listener.
type ServerConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
}

// Addr returns the host:port the server binds to.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// DatabaseConfig selects the relational backend. Driver is sqlite3 or
// postgres; DSN follows the driver's conventions.
type DatabaseConfig struct {
	Driver string `mapstructure:"driver"`
	DSN    string `mapstructure:"dsn"`
}

// RedisConfig controls the leaderboard ranker. When disabled, an
// in-memory ranker serves the same role.
type RedisConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	Key      string `mapstructure:"key"`
}

// LeaderboardConfig controls ranking reads and reconciliation.
type LeaderboardConfig struct {
	Size              int           `mapstructure:"size"`
	ReconcileInterval time.Duration `mapstructure:"reconcile_interval"`
}

// WalkConfig controls the sequencer rhythm and the run registry.
type WalkConfig struct {
	Transition time.Duration `mapstructure:"transition"`
	Hold       time.Duration `mapstructure:"hold"`
	Pause      time.Duration `mapstructure:"pause"`
	MaxRuns    int           `mapstructure:"max_runs"`
	RunTTL     time.Duration `mapstructure:"run_ttl"`
}

// Timings maps the walk section onto a sequencer profile.
func (w WalkConfig) Timings() sequencer.Timings {
	return sequencer.Timings{
		Transition: w.Transition,
		Hold:       w.Hold,
		Pause:      w.Pause,
	}
}

// LoggingConfig controls log verbosity and encoding.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// DefaultConfig returns the configuration used when nothing overrides it.
func DefaultConfig() *Config {
	tm := sequencer.DefaultTimings()
	return &Config{
		Server: ServerConfig{
			Host: "0.0.0.0",
			Port: 8080,
		},
		Database: DatabaseConfig{
			Driver: "sqlite3",
			DSN:    "numberhop.db",
		},
		Redis: RedisConfig{
			Enabled: false,
			Addr:    "localhost:6379",
			Key:     "numberhop:leaderboard",
		},
		Leaderboard: LeaderboardConfig{
			Size:              10,
			ReconcileInterval: 5 * time.Minute,
		},
		Walk: WalkConfig{
			Transition: tm.Transition,
			Hold:       tm.Hold,
			Pause:      tm.Pause,
			MaxRuns:    64,
			RunTTL:     10 * time.Minute,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// yamlFile mirrors Config in the layout the config file uses.
// Durations render in Go notation, not nanosecond integers.
type yamlFile struct {
	Server struct {
		Host string `yaml:"host"`
		Port int    `yaml:"port"`
	} `yaml:"server"`
	Database struct {
		Driver string `yaml:"driver"`
		DSN    string `yaml:"dsn"`
	} `yaml:"database"`
	Redis struct {
		Enabled  bool   `yaml:"enabled"`
		Addr     string `yaml:"addr"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
		Key      string `yaml:"key"`
	} `yaml:"redis"`
	Leaderboard struct {
		Size              int    `yaml:"size"`
		ReconcileInterval string `yaml:"reconcile_interval"`
	} `yaml:"leaderboard"`
	Walk struct {
		Transition string `yaml:"transition"`
		Hold       string `yaml:"hold"`
		Pause      string `yaml:"pause"`
		MaxRuns    int    `yaml:"max_runs"`
		RunTTL     string `yaml:"run_ttl"`
	} `yaml:"walk"`
	Logging struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"`
	} `yaml:"logging"`
}

// YAML renders the configuration as a config file. The output parses
// back through LoadFromFile to an identical Config.
func (c *Config) YAML() ([]byte, error) {
	var f yamlFile
	f.Server.Host = c.Server.Host
	f.Server.Port = c.Server.Port
	f.Database.Driver = c.Database.Driver
	f.Database.DSN = c.Database.DSN
	f.Redis.Enabled = c.Redis.Enabled
	f.Redis.Addr = c.Redis.Addr
	f.Redis.Password = c.Redis.Password
	f.Redis.DB = c.Redis.DB
	f.Redis.Key = c.Redis.Key
	f.Leaderboard.Size = c.Leaderboard.Size
	f.Leaderboard.ReconcileInterval = c.Leaderboard.ReconcileInterval.String()
	f.Walk.Transition = c.Walk.Transition.String()
	f.Walk.Hold = c.Walk.Hold.String()
	f.Walk.Pause = c.Walk.Pause.String()
	f.Walk.MaxRuns = c.Walk.MaxRuns
	f.Walk.RunTTL = c.Walk.RunTTL.String()
	f.Logging.Level = c.Logging.Level
	f.Logging.Format = c.Logging.Format
	return yaml.Marshal(&f)
}

// Loader reads configuration from files and the environment.
type Loader struct {
	v *viper.Viper
}

// NewLoader creates a loader with defaults registered and NUMBERHOP_*
// environment overrides enabled.
func NewLoader() *Loader {
	v := viper.New()
	v.SetConfigName("numberhop")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("$HOME/.config/numberhop")
	v.SetEnvPrefix("NUMBERHOP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)
	return &Loader{v: v}
}

// Load resolves configuration from the search paths. A missing config
// file is not an error; defaults and environment variables apply.
func (l *Loader) Load() (*Config, error) {
	if err := l.v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}
	return l.unmarshal()
}

// LoadFromFile resolves configuration from one explicit file.
func (l *Loader) LoadFromFile(path string) (*Config, error) {
	l.v.SetConfigFile(path)
	if err := l.v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	return l.unmarshal()
}

func (l *Loader) unmarshal() (*Config, error) {
	cfg := &Config{}
	if err := l.v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	return cfg, nil
}

// setDefaults registers every key so environment overrides resolve
// even when no config file mentions them.
func setDefaults(v *viper.Viper) {
	def := DefaultConfig()
	v.SetDefault("server.host", def.Server.Host)
	v.SetDefault("server.port", def.Server.Port)
	v.SetDefault("database.driver", def.Database.Driver)
	v.SetDefault("database.dsn", def.Database.DSN)
	v.SetDefault("redis.enabled", def.Redis.Enabled)
	v.SetDefault("redis.addr", def.Redis.Addr)
	v.SetDefault("redis.password", def.Redis.Password)
	v.SetDefault("redis.db", def.Redis.DB)
	v.SetDefault("redis.key", def.Redis.Key)
	v.SetDefault("leaderboard.size", def.Leaderboard.Size)
	v.SetDefault("leaderboard.reconcile_interval", def.Leaderboard.ReconcileInterval)
	v.SetDefault("walk.transition", def.Walk.Transition)
	v.SetDefault("walk.hold", def.Walk.Hold)
	v.SetDefault("walk.pause", def.Walk.Pause)
	v.SetDefault("walk.max_runs", def.Walk.MaxRuns)
	v.SetDefault("walk.run_ttl", def.Walk.RunTTL)
	v.SetDefault("logging.level", def.Logging.Level)
	v.SetDefault("logging.format", def.Logging.Format)
}
