// Package config provides configuration loading from YAML files.
package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Provider types.
const (
	ProviderYouTube = "youtube"
	ProviderSpotify = "spotify"
)

// Config represents the application configuration.
type Config struct {
	Player  PlayerConfig  `yaml:"player"`
	YTDLP   YTDLPConfig   `yaml:"ytdlp"`
	Search  SearchConfig  `yaml:"search"`
	Spotify SpotifyConfig `yaml:"spotify"`
	LastFM  LastFMConfig  `yaml:"lastfm"`
	Remote  RemoteConfig  `yaml:"remote"`
	History HistoryConfig `yaml:"history"`
	Log     LogConfig     `yaml:"log"`
}

// PlayerConfig represents mpv configuration.
type PlayerConfig struct {
	Path           string   `yaml:"path" default:"mpv"`
	Volume         int      `yaml:"volume" default:"80" validate:"gte=0,lte=100"`
	SeekStepSec    int      `yaml:"seek_step_sec" default:"10" validate:"gte=1,lte=600"`
	SocketDir      string   `yaml:"socket_dir"`
	ExtraArgs      []string `yaml:"extra_args"`
	StartTimeoutMs int      `yaml:"start_timeout_ms" default:"5000" validate:"gte=100,lte=60000"`
}

// YTDLPConfig represents yt-dlp configuration.
type YTDLPConfig struct {
	Path       string `yaml:"path" default:"yt-dlp"`
	Format     string `yaml:"format" default:"bestaudio"`
	TimeoutSec int    `yaml:"timeout_sec" default:"60" validate:"gte=1,lte=600"`
}

// SearchConfig represents catalog search configuration.
type SearchConfig struct {
	Limit     int              `yaml:"limit" default:"10" validate:"gte=1,lte=50"`
	Providers []ProviderConfig `yaml:"providers" validate:"dive"`
	Filters   []FilterConfig   `yaml:"filters" validate:"dive"`
}

// ProviderConfig represents a single catalog provider configuration.
type ProviderConfig struct {
	Type        string         `yaml:"type" validate:"required,oneof=youtube spotify"`
	DisplayName string         `yaml:"display_name"`
	Settings    map[string]any `yaml:"settings"`
}

// FilterConfig represents a single search result filter configuration.
type FilterConfig struct {
	Name     string         `yaml:"name" validate:"required"`
	Settings map[string]any `yaml:"settings"`
}

// SpotifyConfig represents Spotify API configuration.
type SpotifyConfig struct {
	ClientID     string `yaml:"client_id"`
	ClientSecret string `yaml:"client_secret"`
	RefreshToken string `yaml:"refresh_token"`
	Market       string `yaml:"market" validate:"omitempty,len=2" default:"US"`
}

// LastFMConfig represents Last.fm API configuration.
type LastFMConfig struct {
	APIKey string `yaml:"api_key"`
	Limit  int    `yaml:"limit" default:"20" validate:"gte=1,lte=100"`
}

// RemoteConfig represents the remote control server configuration.
// The server is disabled when Addr is empty.
type RemoteConfig struct {
	Addr  string `yaml:"addr" validate:"omitempty,hostname_port"`
	Token string `yaml:"token"`
}

// HistoryConfig represents prompt history configuration.
type HistoryConfig struct {
	File  string `yaml:"file"`
	Limit int    `yaml:"limit" default:"500" validate:"gte=0"`
}

// LogConfig represents logging configuration.
type LogConfig struct {
	Output string `yaml:"output" default:"stderr"`
	Level  string `yaml:"level" default:"warn" validate:"oneof=debug info warn warning error"`
	File   string `yaml:"file"`
}

// DefaultPath returns ~/.config/ytmusic/config.yaml.
func DefaultPath() string {
	return filepath.Join(configDir(), "config.yaml")
}

// DefaultHistoryPath returns ~/.config/ytmusic/history.
func DefaultHistoryPath() string {
	return filepath.Join(configDir(), "history")
}

func configDir() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		home, _ := os.UserHomeDir()
		dir = filepath.Join(home, ".config")
	}
	return filepath.Join(dir, "ytmusic")
}

// Load loads configuration from a YAML file.
// An empty path means the default path, which may be missing: then every value is defaulted.
// Environment variables take precedence over file values for sensitive fields.
func Load(path string) (*Config, error) {
	optional := path == ""
	if optional {
		path = DefaultPath()
	}

	data, err := os.ReadFile(ExpandHome(path))
	if err != nil {
		if !optional || !errors.Is(err, os.ErrNotExist) {
			return nil, errors.Wrap(err, "failed to read config file")
		}
		data = nil
	}

	return Parse(data)
}

// Parse parses YAML configuration data.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, errors.Wrap(err, "failed to parse config file")
	}

	// Override with environment variables
	cfg.overrideFromEnv()

	// Set defaults using creasty/defaults
	if err := defaults.Set(&cfg); err != nil {
		return nil, errors.Wrap(err, "failed to set defaults")
	}
	if len(cfg.Search.Providers) == 0 {
		cfg.Search.Providers = []ProviderConfig{{Type: ProviderYouTube, DisplayName: "YouTube Music"}}
	}
	if cfg.History.File == "" {
		cfg.History.File = DefaultHistoryPath()
	}
	cfg.History.File = ExpandHome(cfg.History.File)
	if cfg.Log.File != "" {
		cfg.Log.File = ExpandHome(cfg.Log.File)
	}

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "config validation failed")
	}

	return &cfg, nil
}

// overrideFromEnv overrides config values with environment variables.
func (c *Config) overrideFromEnv() {
	if v := os.Getenv("SPOTIFY_CLIENT_ID"); v != "" {
		c.Spotify.ClientID = v
	}
	if v := os.Getenv("SPOTIFY_CLIENT_SECRET"); v != "" {
		c.Spotify.ClientSecret = v
	}
	if v := os.Getenv("SPOTIFY_REFRESH_TOKEN"); v != "" {
		c.Spotify.RefreshToken = v
	}
	if v := os.Getenv("LASTFM_API_KEY"); v != "" {
		c.LastFM.APIKey = v
	}
	if v := os.Getenv("YTMUSIC_REMOTE_TOKEN"); v != "" {
		c.Remote.Token = v
	}
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	validate := validator.New()
	if err := validate.Struct(c); err != nil {
		return errors.Wrap(err, "struct validation failed")
	}

	if c.HasProvider(ProviderSpotify) && !c.Spotify.Enabled() {
		return errors.New("spotify provider requires spotify.client_id and spotify.client_secret")
	}

	return nil
}

// HasProvider reports whether a provider of the given type is configured.
func (c *Config) HasProvider(providerType string) bool {
	for _, p := range c.Search.Providers {
		if p.Type == providerType {
			return true
		}
	}
	return false
}

// Enabled reports whether Spotify credentials are set.
func (s SpotifyConfig) Enabled() bool {
	return s.ClientID != "" && s.ClientSecret != ""
}

// SeekStep returns the seek step as a duration.
func (p PlayerConfig) SeekStep() time.Duration {
	return time.Duration(p.SeekStepSec) * time.Second
}

// StartTimeout returns the mpv start timeout as a duration.
func (p PlayerConfig) StartTimeout() time.Duration {
	return time.Duration(p.StartTimeoutMs) * time.Millisecond
}

// Timeout returns the yt-dlp timeout as a duration.
func (y YTDLPConfig) Timeout() time.Duration {
	return time.Duration(y.TimeoutSec) * time.Second
}

// ExpandHome replaces a leading "~" with the user's home directory.
func ExpandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}
