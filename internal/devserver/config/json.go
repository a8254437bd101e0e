package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/dmitrijs2005/chirp/internal/flagx"
	"github.com/dmitrijs2005/chirp/internal/timex"
)

// JSONConfig is a DTO used only for reading JSON configuration files.
// Durations accept "15m" as well as integer nanoseconds. Absent keys keep
// the current value.
type JSONConfig struct {
	Addr           *string         `json:"addr"`
	PublicURL      *string         `json:"public_url"`
	SecretKey      *string         `json:"secret_key"`
	SessionTTL     *timex.Duration `json:"session_ttl"`
	MaxUploadBytes *int64          `json:"max_upload_bytes"`
	PresignExpiry  *timex.Duration `json:"presign_expiry"`
	StorageBackend *string         `json:"storage_backend"`
	S3RootUser     *string         `json:"s3_root_user"`
	S3RootPassword *string         `json:"s3_root_password"`
	S3Bucket       *string         `json:"s3_bucket"`
	S3Region       *string         `json:"s3_region"`
	S3BaseEndpoint *string         `json:"s3_base_endpoint"`
	LogLevel       *string         `json:"log_level"`
	LogFormat      *string         `json:"log_format"`
}

// parseJSON overlays cfg with the JSON file named by -c or -config.
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

	for dst, v := range map[*string]*string{
		&cfg.Addr:           jc.Addr,
		&cfg.PublicURL:      jc.PublicURL,
		&cfg.SecretKey:      jc.SecretKey,
		&cfg.StorageBackend: jc.StorageBackend,
		&cfg.S3RootUser:     jc.S3RootUser,
		&cfg.S3RootPassword: jc.S3RootPassword,
		&cfg.S3Bucket:       jc.S3Bucket,
		&cfg.S3Region:       jc.S3Region,
		&cfg.S3BaseEndpoint: jc.S3BaseEndpoint,
		&cfg.LogLevel:       jc.LogLevel,
		&cfg.LogFormat:      jc.LogFormat,
	} {
		if v != nil {
			*dst = *v
		}
	}
	if jc.SessionTTL != nil {
		cfg.SessionTTL = jc.SessionTTL.Duration
	}
	if jc.PresignExpiry != nil {
		cfg.PresignExpiry = jc.PresignExpiry.Duration
	}
	if jc.MaxUploadBytes != nil {
		cfg.MaxUploadBytes = *jc.MaxUploadBytes
	}
	return nil
}
