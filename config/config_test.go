package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	qt "github.com/frankban/quicktest"
	"github.com/spf13/pflag"

	"termtris/tetris"
)

func flagSet(c *qt.C, args ...string) *pflag.FlagSet {
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	Flags(fs)
	c.Assert(fs.Parse(args), qt.IsNil)
	return fs
}

func TestDefaults(t *testing.T) {
	c := qt.New(t)
	dir := t.TempDir()

	cfg, err := load(nil, dir)
	c.Assert(err, qt.IsNil)
	c.Check(cfg.Randomizer, qt.Equals, "bag")
	c.Check(cfg.Speed, qt.Equals, "modern")
	c.Check(cfg.NoGhost, qt.IsFalse)
	c.Check(cfg.Log.Level, qt.Equals, slog.LevelInfo)
	c.Check(cfg.Log.File, qt.Equals, filepath.Join(dir, "termtris.log"))
	c.Check(cfg.Leaderboard.File, qt.Equals, filepath.Join(dir, "leaderboard.json"))
	c.Check(cfg.Leaderboard.Redis.Timeout, qt.Equals, 1500*time.Millisecond)
	c.Check(cfg.Name, qt.Not(qt.Equals), "")
	c.Check(len(cfg.Name) <= maxNameLength, qt.IsTrue)
}

func TestPriority(t *testing.T) {
	c := qt.New(t)
	dir := t.TempDir()
	yaml := `
name: from-file
speed: classic
randomizer: uniform
log:
  level: debug
leaderboard:
  redis:
    addr: localhost:6379
    timeout: 2s
`
	c.Assert(os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0o600), qt.IsNil)

	c.Run("config file", func(c *qt.C) {
		cfg, err := load(flagSet(c), dir)
		c.Assert(err, qt.IsNil)
		c.Check(cfg.Name, qt.Equals, "from-file")
		c.Check(cfg.Speed, qt.Equals, "classic")
		c.Check(cfg.Randomizer, qt.Equals, "uniform")
		c.Check(cfg.Log.Level, qt.Equals, slog.LevelDebug)
		c.Check(cfg.Leaderboard.Redis.Addr, qt.Equals, "localhost:6379")
		c.Check(cfg.Leaderboard.Redis.Timeout, qt.Equals, 2*time.Second)
	})

	c.Run("environment over file", func(c *qt.C) {
		c.Setenv("TERMTRIS_SPEED", "modern")
		c.Setenv("TERMTRIS_NO_GHOST", "true")
		c.Setenv("TERMTRIS_LEADERBOARD_REDIS_PASSWORD", "secret")
		cfg, err := load(flagSet(c), dir)
		c.Assert(err, qt.IsNil)
		c.Check(cfg.Speed, qt.Equals, "modern")
		c.Check(cfg.NoGhost, qt.IsTrue)
		c.Check(cfg.Leaderboard.Redis.Password, qt.Equals, "secret")
	})

	c.Run("flags over environment", func(c *qt.C) {
		c.Setenv("TERMTRIS_NAME", "from-env")
		cfg, err := load(flagSet(c, "--name", "ada", "--log-level", "warn", "--sqlite", "/tmp/s.db"), dir)
		c.Assert(err, qt.IsNil)
		c.Check(cfg.Name, qt.Equals, "ada")
		c.Check(cfg.Log.Level, qt.Equals, slog.LevelWarn)
		c.Check(cfg.Leaderboard.SQLite, qt.Equals, "/tmp/s.db")
	})
}

func TestExplicitConfigFile(t *testing.T) {
	c := qt.New(t)
	path := filepath.Join(t.TempDir(), "custom.yaml")
	c.Assert(os.WriteFile(path, []byte("speed: classic\n"), 0o600), qt.IsNil)

	cfg, err := load(flagSet(c, "--config", path), t.TempDir())
	c.Assert(err, qt.IsNil)
	c.Check(cfg.Speed, qt.Equals, "classic")

	_, err = load(flagSet(c, "--config", filepath.Join(t.TempDir(), "missing.yaml")), t.TempDir())
	c.Check(err, qt.ErrorMatches, "reading config: .*")
}

func TestInvalid(t *testing.T) {
	c := qt.New(t)
	tests := []struct {
		name string
		args []string
	}{
		{name: "randomizer", args: []string{"--randomizer", "dice"}},
		{name: "speed", args: []string{"--speed", "warp"}},
		{name: "log level", args: []string{"--log-level", "loud"}},
		{name: "name too long", args: []string{"--name", strings.Repeat("x", maxNameLength+1)}},
	}
	for _, tt := range tests {
		c.Run(tt.name, func(c *qt.C) {
			_, err := load(flagSet(c, tt.args...), c.TempDir())
			c.Assert(err, qt.ErrorIs, ErrInvalid)
		})
	}
}

func TestFactories(t *testing.T) {
	c := qt.New(t)
	cfg := &Config{Randomizer: "uniform", Speed: "classic"}
	c.Check(cfg.PieceRandomizer(nil), qt.Satisfies, func(r tetris.Randomizer) bool {
		_, ok := r.(*tetris.Uniform)
		return ok
	})
	c.Check(cfg.SpeedCurve(), qt.Equals, tetris.Speed(tetris.Classic{}))

	cfg = &Config{Randomizer: "bag", Speed: "modern"}
	opts := cfg.TetrisOptions(nil)
	c.Check(opts.Randomizer, qt.Satisfies, func(r tetris.Randomizer) bool {
		_, ok := r.(*tetris.Bag)
		return ok
	})
	c.Check(opts.Speed, qt.Equals, tetris.Speed(tetris.Modern{}))
}

func TestProviders(t *testing.T) {
	c := qt.New(t)
	cfg := &Config{Leaderboard: LeaderboardConfig{File: "/tmp/scores.json"}}
	p := cfg.Providers(nil)
	c.Assert(p, qt.HasLen, 1)
	c.Check(p[0].Name(), qt.Equals, "JSON (/tmp/scores.json)")

	cfg.Leaderboard.SQLite = "/tmp/scores.db"
	cfg.Leaderboard.Redis.Addr = "localhost:6379"
	p = cfg.Providers(nil)
	c.Assert(p, qt.HasLen, 3)
	c.Check(p[0].Name(), qt.Matches, "Redis .*")
	c.Check(p[1].Name(), qt.Matches, "SQLite .*")
	c.Check(p[2].Name(), qt.Matches, "JSON .*")
}

func TestLogger(t *testing.T) {
	c := qt.New(t)
	path := filepath.Join(t.TempDir(), "logs", "termtris.log")
	cfg := &Config{Log: LogConfig{Level: slog.LevelWarn, File: path}}

	l, closer, err := cfg.Logger()
	c.Assert(err, qt.IsNil)
	l.Info("hidden")
	l.Warn("shown", slog.Int("score", 800))
	c.Assert(closer.Close(), qt.IsNil)

	b, err := os.ReadFile(path)
	c.Assert(err, qt.IsNil)
	c.Check(string(b), qt.Not(qt.Contains), "hidden")
	c.Check(string(b), qt.Contains, `"msg":"shown","score":800`)

	cfg.Log.File = ""
	l, closer, err = cfg.Logger()
	c.Assert(err, qt.IsNil)
	l.Error("discarded")
	c.Check(closer.Close(), qt.IsNil)
}

func TestWriteDefault(t *testing.T) {
	c := qt.New(t)
	dir := filepath.Join(t.TempDir(), "termtris")

	path, err := writeDefault(dir)
	c.Assert(err, qt.IsNil)
	c.Check(path, qt.Equals, filepath.Join(dir, "config.yaml"))

	cfg, err := load(nil, dir)
	c.Assert(err, qt.IsNil)
	c.Check(cfg.Speed, qt.Equals, "modern")

	_, err = writeDefault(dir)
	c.Check(err, qt.IsNotNil)
}
