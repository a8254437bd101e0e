package config

import (
	"time"

	"github.com/dmitrijs2005/chirp/internal/client/cache"
	"github.com/dmitrijs2005/chirp/internal/client/client"
	"github.com/dmitrijs2005/chirp/internal/common"
	"github.com/dmitrijs2005/chirp/internal/logging"
)

// Config holds runtime settings for the chirp CLI.
//
// Units: StaleTime, GCTime and UploadTimeout are time.Duration values.
// UploadTimeout 0 leaves uploads unbounded.
type Config struct {
	BaseURL          string
	StaleTime        time.Duration
	GCTime           time.Duration
	CacheSize        int
	MaxReadRetries   int
	UploadTimeout    time.Duration
	MaxAttachments   int
	TimelineLimit    int
	LogLevel         string
	LogFormat        string
	MetricsNamespace string
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.BaseURL = "http://127.0.0.1:8080"
	c.StaleTime = cache.DefaultStaleTime
	c.GCTime = cache.DefaultGCTime
	c.CacheSize = cache.DefaultMaxEntries
	c.MaxReadRetries = client.MaxReadRetries
	c.UploadTimeout = 0
	c.MaxAttachments = common.MaxAttachments
	c.TimelineLimit = client.DefaultTimelineLimit
	c.LogLevel = "info"
	c.LogFormat = logging.FormatText
	c.MetricsNamespace = "chirp_media"
}

// LoadConfig constructs a Config, applies defaults, then overlays values from
// JSON (if present) and command-line flags (if present). Later sources take
// precedence over earlier ones. args excludes the program name.
func LoadConfig(args []string) (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()
	if err := parseJSON(cfg, args); err != nil {
		return nil, err
	}
	if err := parseFlags(cfg, args); err != nil {
		return nil, err
	}
	return cfg, nil
}
