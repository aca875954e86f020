// Package config loads liveboard.toml and applies environment overrides.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"LiveBoard/internal/relay"
	"LiveBoard/internal/session"
)

// DefaultPath is read when no -config flag is given.
const DefaultPath = "liveboard.toml"

// Duration is a time.Duration written as a string ("33ms", "1h").
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return fmt.Errorf("parse duration %q: %w", text, err)
	}
	d.Duration = v
	return nil
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

type Config struct {
	LogLevel string `toml:"log_level"`
	Client   Client `toml:"client"`
	Relay    Relay  `toml:"relay"`
}

type Client struct {
	RelayURL       string   `toml:"relay_url"` // liveboard://host:port used when hosting
	CursorThrottle Duration `toml:"cursor_throttle"`
	MinScale       float64  `toml:"min_scale"`
	MaxScale       float64  `toml:"max_scale"`
	ZoomSpeed      float64  `toml:"zoom_speed"`
	BrushColor     string   `toml:"brush_color"`
	BrushWidth     float64  `toml:"brush_width"`
	FrameInterval  Duration `toml:"frame_interval"`
}

type Relay struct {
	Listen          string   `toml:"listen"`
	RedisAddr       string   `toml:"redis_addr"` // empty selects the in-process broker
	CursorThrottle  Duration `toml:"cursor_throttle"`
	SendBuffer      int      `toml:"send_buffer"`
	ReplayHistory   bool     `toml:"replay_history"`
	RoomIdleTTL     Duration `toml:"room_idle_ttl"`
	CleanupInterval Duration `toml:"cleanup_interval"`
	Advertise       bool     `toml:"advertise"`
}

// Default returns the configuration used when no file is present.
func Default() Config {
	r := relay.DefaultConfig()
	return Config{
		LogLevel: "info",
		Client: Client{
			CursorThrottle: Duration{session.DefaultCursorThrottle},
			MinScale:       0.1,
			MaxScale:       10,
			ZoomSpeed:      500,
			BrushColor:     session.DefaultBrush.Color,
			BrushWidth:     session.DefaultBrush.Width,
			FrameInterval:  Duration{16 * time.Millisecond},
		},
		Relay: Relay{
			Listen:          ":8888",
			CursorThrottle:  Duration{r.CursorThrottle},
			SendBuffer:      r.SendBuffer,
			RoomIdleTTL:     Duration{r.RoomIdleTTL},
			CleanupInterval: Duration{r.CleanupInterval},
			Advertise:       true,
		},
	}
}

// Load reads path over the defaults, then applies environment overrides.
// A missing file is not an error.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		if _, err := toml.DecodeFile(path, &cfg); err != nil {
			if !errors.Is(err, fs.ErrNotExist) {
				return Config{}, fmt.Errorf("load config %s: %w", path, err)
			}
		}
	}
	cfg.applyEnv(os.LookupEnv)
	return cfg, nil
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) {
	if v, ok := lookup("LIVEBOARD_RELAY_URL"); ok {
		c.Client.RelayURL = v
	}
	if v, ok := lookup("LIVEBOARD_LISTEN"); ok {
		c.Relay.Listen = v
	}
	if v, ok := lookup("REDIS_ADDR"); ok {
		c.Relay.RedisAddr = v
	}
	if v, ok := lookup("LIVEBOARD_LOG_LEVEL"); ok {
		c.LogLevel = v
	}
}

// Level maps LogLevel to a slog level, defaulting to info.
func (c Config) Level() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// RelayConfig converts the [relay] section.
func (c Config) RelayConfig() relay.Config {
	return relay.Config{
		CursorThrottle:  c.Relay.CursorThrottle.Duration,
		SendBuffer:      c.Relay.SendBuffer,
		ReplayHistory:   c.Relay.ReplayHistory,
		RoomIdleTTL:     c.Relay.RoomIdleTTL.Duration,
		CleanupInterval: c.Relay.CleanupInterval.Duration,
	}
}

// SessionConfig converts the [client] section.
func (c Config) SessionConfig() session.Config {
	brush := session.DefaultBrush
	if c.Client.BrushColor != "" {
		brush.Color = c.Client.BrushColor
	}
	if c.Client.BrushWidth > 0 {
		brush.Width = c.Client.BrushWidth
	}
	return session.Config{
		CursorThrottle: c.Client.CursorThrottle.Duration,
		MinScale:       c.Client.MinScale,
		MaxScale:       c.Client.MaxScale,
		ZoomSpeed:      c.Client.ZoomSpeed,
		Brush:          brush,
	}
}
