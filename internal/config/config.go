// Package config loads the TOML configuration of the player.
package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Renderer backends.
const (
	BackendAuto = "auto"
	BackendBeep = "beep"
	BackendMPV  = "mpv"
)

const defaultRemoteAddr = "127.0.0.1:8765"

type Config struct {
	Renderer  RendererConfig  `koanf:"renderer"`
	Playback  PlaybackConfig  `koanf:"playback"`
	Surface   SurfaceConfig   `koanf:"surface"`
	Subtitles SubtitlesConfig `koanf:"subtitles"`
	Chapters  ChaptersConfig  `koanf:"chapters"`
	Log       LogConfig       `koanf:"log"`
	Remote    RemoteConfig    `koanf:"remote"`
	Notify    NotifyConfig    `koanf:"notify"`
}

// RendererConfig selects the rendering backend.
type RendererConfig struct {
	Backend string `koanf:"backend"`  // "auto", "beep" or "mpv" (default: "auto")
	MPVPath string `koanf:"mpv_path"` // mpv binary (default: "mpv" on PATH)
}

// PlaybackConfig holds engine tuning.
type PlaybackConfig struct {
	PreviousThreshold time.Duration `koanf:"previous_threshold"` // default: 3s
	ChapterThreshold  time.Duration `koanf:"chapter_threshold"`  // default: 5s
	ABLoopInterval    time.Duration `koanf:"ab_loop_interval"`   // default: 500ms
	SleepFade         time.Duration `koanf:"sleep_fade"`         // default: 2s
	SleepFadeStep     time.Duration `koanf:"sleep_fade_step"`    // default: 100ms
	Volume            float64       `koanf:"volume"`             // 0.0-1.0 (default: 1.0)
	Speed             float64       `koanf:"speed"`              // default: 1.0
}

// SurfaceConfig holds control surface tuning.
type SurfaceConfig struct {
	AutoHide       time.Duration `koanf:"auto_hide"`       // default: 3s
	DoubleTapSeek  time.Duration `koanf:"double_tap_seek"` // default: 10s
	VolumeStep     float64       `koanf:"volume_step"`     // default: 0.05
	BrightnessStep float64       `koanf:"brightness_step"` // default: 0.1
}

// SubtitlesConfig controls external subtitle discovery.
type SubtitlesConfig struct {
	Extensions []string `koanf:"extensions"`
	Watch      *bool    `koanf:"watch"` // re-discover when files appear (default: true)
}

// ChaptersConfig controls the ffprobe chapter fallback.
type ChaptersConfig struct {
	FFprobe     *bool  `koanf:"ffprobe"`      // default: true
	FFprobePath string `koanf:"ffprobe_path"` // default: "ffprobe" on PATH
}

// LogConfig controls logging.
type LogConfig struct {
	Level string `koanf:"level"` // debug, info, warn, error (default: info)
	File  string `koanf:"file"`  // default: XDG state dir
}

// RemoteConfig configures the HTTP remote control.
type RemoteConfig struct {
	Addr string `koanf:"addr"` // default: 127.0.0.1:8765
}

// NotifyConfig controls desktop notifications.
type NotifyConfig struct {
	Enabled bool `koanf:"enabled"` // now playing and failure notifications (default: false)
}

// Load reads the user and working-directory config files.
func Load() (*Config, error) {
	return LoadFrom(getConfigPaths()...)
}

// LoadFrom reads the given config files in order; later files override
// earlier ones and missing files are skipped.
func LoadFrom(paths ...string) (*Config, error) {
	k := koanf.New(".")

	for _, path := range paths {
		if _, err := os.Stat(path); err == nil {
			if err := k.Load(file.Provider(path), toml.Parser()); err != nil {
				return nil, err
			}
		}
	}

	cfg := &Config{}

	if err := k.Unmarshal("", cfg); err != nil {
		return nil, err
	}

	cfg.Renderer.Backend = strings.ToLower(strings.TrimSpace(cfg.Renderer.Backend))
	cfg.Renderer.MPVPath = expandPath(cfg.Renderer.MPVPath)
	cfg.Chapters.FFprobePath = expandPath(cfg.Chapters.FFprobePath)
	cfg.Log.File = expandPath(cfg.Log.File)

	return cfg, nil
}

func getConfigPaths() []string {
	paths := []string{}

	// 1. ~/.config/deck/config.toml
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, ".config", "deck", "config.toml"))
	}

	// 2. ./config.toml (pwd, highest priority)
	paths = append(paths, "config.toml")

	return paths
}

func expandPath(path string) string {
	if path != "" && path[0] == '~' {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, path[1:])
		}
	}
	return path
}

// Backend returns the configured renderer backend, "auto" when unset or
// unknown.
func (c *Config) Backend() string {
	switch c.Renderer.Backend {
	case BackendBeep, BackendMPV:
		return c.Renderer.Backend
	default:
		return BackendAuto
	}
}

// GetPlaybackConfig returns the playback configuration with defaults applied.
func (c *Config) GetPlaybackConfig() PlaybackConfig {
	cfg := c.Playback

	// Apply defaults
	if cfg.PreviousThreshold <= 0 {
		cfg.PreviousThreshold = 3 * time.Second
	}
	if cfg.ChapterThreshold <= 0 {
		cfg.ChapterThreshold = 5 * time.Second
	}
	if cfg.ABLoopInterval <= 0 {
		cfg.ABLoopInterval = 500 * time.Millisecond
	}
	if cfg.SleepFade <= 0 {
		cfg.SleepFade = 2 * time.Second
	}
	if cfg.SleepFadeStep <= 0 || cfg.SleepFadeStep > cfg.SleepFade {
		cfg.SleepFadeStep = 100 * time.Millisecond
	}
	if cfg.Volume <= 0 || cfg.Volume > 1 {
		cfg.Volume = 1.0
	}
	if cfg.Speed <= 0 {
		cfg.Speed = 1.0
	}

	return cfg
}

// GetSurfaceConfig returns the surface configuration with defaults applied.
func (c *Config) GetSurfaceConfig() SurfaceConfig {
	cfg := c.Surface

	if cfg.AutoHide <= 0 {
		cfg.AutoHide = 3 * time.Second
	}
	if cfg.DoubleTapSeek <= 0 {
		cfg.DoubleTapSeek = 10 * time.Second
	}
	if cfg.VolumeStep <= 0 || cfg.VolumeStep > 1 {
		cfg.VolumeStep = 0.05
	}
	if cfg.BrightnessStep <= 0 || cfg.BrightnessStep > 1 {
		cfg.BrightnessStep = 0.1
	}

	return cfg
}

// SubtitleExtensions returns the subtitle file extensions, lower-cased and
// dot-prefixed.
func (c *Config) SubtitleExtensions() []string {
	if len(c.Subtitles.Extensions) == 0 {
		return []string{".srt", ".vtt", ".ass", ".ssa", ".sub"}
	}
	exts := make([]string, 0, len(c.Subtitles.Extensions))
	for _, e := range c.Subtitles.Extensions {
		e = strings.ToLower(strings.TrimSpace(e))
		if e == "" {
			continue
		}
		if !strings.HasPrefix(e, ".") {
			e = "." + e
		}
		exts = append(exts, e)
	}
	return exts
}

// WatchSubtitles reports whether subtitle directories are watched.
func (c *Config) WatchSubtitles() bool {
	return c.Subtitles.Watch == nil || *c.Subtitles.Watch
}

// UseFFprobe reports whether ffprobe is used for chapters.
func (c *Config) UseFFprobe() bool {
	return c.Chapters.FFprobe == nil || *c.Chapters.FFprobe
}

// LogLevel returns the log level, "info" when unset.
func (c *Config) LogLevel() string {
	if c.Log.Level == "" {
		return "info"
	}
	return c.Log.Level
}

// RemoteAddr returns the remote control listen address.
func (c *Config) RemoteAddr() string {
	if c.Remote.Addr == "" {
		return defaultRemoteAddr
	}
	return c.Remote.Addr
}
