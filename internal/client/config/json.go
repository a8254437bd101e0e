package config

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/dmitrijs2005/chirp/internal/flagx"
	"github.com/dmitrijs2005/chirp/internal/timex"
)

// JSONConfig is a DTO used exclusively for JSON unmarshalling. Durations are
// timex.Duration so the file may carry "90s" or integer nanoseconds. Pointer
// fields distinguish an absent key from an explicit zero.
type JSONConfig struct {
	BaseURL          *string         `json:"base_url"`
	StaleTime        *timex.Duration `json:"stale_time"`
	GCTime           *timex.Duration `json:"gc_time"`
	CacheSize        *int            `json:"cache_size"`
	MaxReadRetries   *int            `json:"max_read_retries"`
	UploadTimeout    *timex.Duration `json:"upload_timeout"`
	MaxAttachments   *int            `json:"max_attachments"`
	TimelineLimit    *int            `json:"timeline_limit"`
	LogLevel         *string         `json:"log_level"`
	LogFormat        *string         `json:"log_format"`
	MetricsNamespace *string         `json:"metrics_namespace"`
}

// parseJSON overlays cfg with the JSON file named by -c or -config. Keys
// missing from the file keep their current value.
func parseJSON(cfg *Config, args []string) error {
	path := flagx.ConfigFile(args)
	if path == "" {
		return nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config: %w", err)
	}
	var jc JSONConfig
	if err := json.Unmarshal(data, &jc); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}

	setString(&cfg.BaseURL, jc.BaseURL)
	setDuration(&cfg.StaleTime, jc.StaleTime)
	setDuration(&cfg.GCTime, jc.GCTime)
	setInt(&cfg.CacheSize, jc.CacheSize)
	setInt(&cfg.MaxReadRetries, jc.MaxReadRetries)
	setDuration(&cfg.UploadTimeout, jc.UploadTimeout)
	setInt(&cfg.MaxAttachments, jc.MaxAttachments)
	setInt(&cfg.TimelineLimit, jc.TimelineLimit)
	setString(&cfg.LogLevel, jc.LogLevel)
	setString(&cfg.LogFormat, jc.LogFormat)
	setString(&cfg.MetricsNamespace, jc.MetricsNamespace)
	return nil
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}

func setInt(dst *int, v *int) {
	if v != nil {
		*dst = *v
	}
}

func setDuration(dst *time.Duration, v *timex.Duration) {
	if v != nil {
		*dst = v.Duration
	}
}
