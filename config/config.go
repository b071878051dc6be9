// Package config loads the game settings from defaults, an optional config file,
// TERMTRIS_* environment variables and command line flags, in increasing priority.
package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math/rand/v2"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/athoscouto/codename"
	"github.com/kirsle/configdir"
	"github.com/mitchellh/mapstructure"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"termtris/leaderboard"
	"termtris/tetris"
)

const (
	appName    = "termtris"
	configName = "config"
	configType = "yaml"

	maxNameLength = 16
)

var ErrInvalid = errors.New("invalid configuration")

type Config struct {
	Name        string            `mapstructure:"name"`
	NoGhost     bool              `mapstructure:"no-ghost"`
	Randomizer  string            `mapstructure:"randomizer"`
	Speed       string            `mapstructure:"speed"`
	Log         LogConfig         `mapstructure:"log"`
	Leaderboard LeaderboardConfig `mapstructure:"leaderboard"`
}

type LogConfig struct {
	Level slog.Level `mapstructure:"level"`
	// File is where the JSON logs go. Empty disables logging.
	File string `mapstructure:"file"`
}

type LeaderboardConfig struct {
	File   string      `mapstructure:"file"`
	SQLite string      `mapstructure:"sqlite"`
	Redis  RedisConfig `mapstructure:"redis"`
}

type RedisConfig struct {
	Addr     string        `mapstructure:"addr"`
	Username string        `mapstructure:"username"`
	Password string        `mapstructure:"password"`
	TLS      bool          `mapstructure:"tls"`
	Timeout  time.Duration `mapstructure:"timeout"`
}

// flags maps command line flags to config keys.
var flags = map[string]string{
	"name":        "name",
	"no-ghost":    "no-ghost",
	"randomizer":  "randomizer",
	"speed":       "speed",
	"log-level":   "log.level",
	"log-file":    "log.file",
	"scores-file": "leaderboard.file",
	"sqlite":      "leaderboard.sqlite",
	"redis-addr":  "leaderboard.redis.addr",
}

// Flags registers the command line flags Load understands.
func Flags(fs *pflag.FlagSet) {
	fs.String("config", "", "config file (default "+filepath.Join(Dir(), configName+"."+configType)+")")
	fs.StringP("name", "n", "", "nickname for the leaderboard (default: a random one)")
	fs.Bool("no-ghost", false, "hide the ghost piece")
	fs.String("randomizer", "bag", "piece randomizer: bag or uniform")
	fs.String("speed", "modern", "speed curve: modern or classic")
	fs.String("log-level", "info", "log level: debug, info, warn or error")
	fs.String("log-file", "", "log file (default "+filepath.Join(Dir(), appName+".log")+")")
	fs.String("scores-file", "", "JSON leaderboard file")
	fs.String("sqlite", "", "SQLite leaderboard database, tried before the JSON file")
	fs.String("redis-addr", "", "Redis address for a shared leaderboard, tried first")
}

// Dir is the directory of the config file and the default data files.
func Dir() string { return configdir.LocalConfig(appName) }

// Load reads the configuration. fs may be nil.
func Load(fs *pflag.FlagSet) (*Config, error) {
	return load(fs, Dir())
}

func load(fs *pflag.FlagSet, dir string) (*Config, error) {
	v := newViper(dir)

	if fs != nil {
		for flag, key := range flags {
			if f := fs.Lookup(flag); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, fmt.Errorf("binding flag %s: %w", flag, err)
				}
			}
		}
		if f := fs.Lookup("config"); f != nil && f.Value.String() != "" {
			v.SetConfigFile(f.Value.String())
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	var c Config
	hook := viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
		mapstructure.StringToTimeDurationHookFunc(),
		mapstructure.StringToSliceHookFunc(","),
		mapstructure.TextUnmarshallerHookFunc(),
	))
	if err := v.Unmarshal(&c, hook); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	if c.Name == "" {
		c.Name = randomName()
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

func newViper(dir string) *viper.Viper {
	v := viper.New()
	v.SetDefault("name", "")
	v.SetDefault("no-ghost", false)
	v.SetDefault("randomizer", "bag")
	v.SetDefault("speed", "modern")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.file", filepath.Join(dir, appName+".log"))
	v.SetDefault("leaderboard.file", filepath.Join(dir, "leaderboard.json"))
	v.SetDefault("leaderboard.sqlite", "")
	v.SetDefault("leaderboard.redis.addr", "")
	v.SetDefault("leaderboard.redis.username", "")
	v.SetDefault("leaderboard.redis.password", "")
	v.SetDefault("leaderboard.redis.tls", false)
	v.SetDefault("leaderboard.redis.timeout", "1500ms")

	v.SetEnvPrefix(appName)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	v.SetConfigName(configName)
	v.SetConfigType(configType)
	v.AddConfigPath(dir)
	return v
}

// WriteDefault writes a config file with the default values unless one exists. It
// returns the path of the file.
func WriteDefault() (string, error) { return writeDefault(Dir()) }

func writeDefault(dir string) (string, error) {
	if err := configdir.MakePath(dir); err != nil {
		return "", fmt.Errorf("creating %s: %w", dir, err)
	}
	path := filepath.Join(dir, configName+"."+configType)
	if err := newViper(dir).SafeWriteConfigAs(path); err != nil {
		return "", fmt.Errorf("writing %s: %w", path, err)
	}
	return path, nil
}

func (c *Config) Validate() error {
	switch c.Randomizer {
	case "bag", "uniform":
	default:
		return fmt.Errorf("%w: unknown randomizer %q", ErrInvalid, c.Randomizer)
	}
	switch c.Speed {
	case "modern", "classic":
	default:
		return fmt.Errorf("%w: unknown speed %q", ErrInvalid, c.Speed)
	}
	if n := len([]rune(c.Name)); n == 0 || n > maxNameLength {
		return fmt.Errorf("%w: name must be 1 to %d characters long", ErrInvalid, maxNameLength)
	}
	if c.Leaderboard.Redis.Timeout < 0 {
		return fmt.Errorf("%w: negative redis timeout", ErrInvalid)
	}
	return nil
}

// PieceRandomizer returns the configured piece randomizer. A nil rnd is randomly seeded.
func (c *Config) PieceRandomizer(rnd *rand.Rand) tetris.Randomizer {
	if c.Randomizer == "uniform" {
		return tetris.NewUniform(rnd)
	}
	return tetris.NewBag(rnd)
}

func (c *Config) SpeedCurve() tetris.Speed {
	if c.Speed == "classic" {
		return tetris.Classic{}
	}
	return tetris.Modern{}
}

// TetrisOptions builds the options of a new game.
func (c *Config) TetrisOptions(l *slog.Logger) *tetris.Options {
	return &tetris.Options{
		Randomizer: c.PieceRandomizer(nil),
		Speed:      c.SpeedCurve(),
		Logger:     l,
	}
}

// Logger opens the log file. The returned closer must be closed on exit.
func (c *Config) Logger() (*slog.Logger, io.Closer, error) {
	if c.Log.File == "" {
		return slog.New(slog.NewTextHandler(io.Discard, nil)), io.NopCloser(nil), nil
	}
	if err := os.MkdirAll(filepath.Dir(c.Log.File), 0o755); err != nil {
		return nil, nil, fmt.Errorf("creating log dir: %w", err)
	}
	f, err := os.OpenFile(c.Log.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		return nil, nil, fmt.Errorf("opening log file: %w", err)
	}
	h := slog.NewJSONHandler(f, &slog.HandlerOptions{Level: c.Log.Level})
	return slog.New(h), f, nil
}

// Providers returns the leaderboard providers in order of preference: Redis and
// SQLite when configured, then the JSON file.
func (c *Config) Providers(l *slog.Logger) []leaderboard.Provider {
	var p []leaderboard.Provider
	if r := c.Leaderboard.Redis; r.Addr != "" {
		p = append(p, leaderboard.NewRedis(leaderboard.RedisOptions{
			Addr:        r.Addr,
			Username:    r.Username,
			Password:    r.Password,
			TLS:         r.TLS,
			DialTimeout: r.Timeout,
		}, l))
	}
	if c.Leaderboard.SQLite != "" {
		p = append(p, leaderboard.NewSQLite(c.Leaderboard.SQLite, l))
	}
	return append(p, leaderboard.NewFile(c.Leaderboard.File, l))
}

func randomName() string {
	rng, err := codename.DefaultRNG()
	if err != nil {
		return "player"
	}
	name := codename.Generate(rng, 0)
	if len(name) > maxNameLength {
		name = name[:maxNameLength]
	}
	return strings.TrimRight(name, "-")
}
