// Package config handles configuration for the reference API server,
// including defaults, JSON overlay, and command-line flags.
package config

import (
	"time"

	"github.com/dmitrijs2005/chirp/internal/logging"
)

// Storage backends understood by StorageBackend.
const (
	StorageLocal = "local"
	StorageS3    = "s3"
)

// Config holds runtime settings for the reference server.
//
// Fields:
//   - Addr: bind address of the HTTP listener.
//   - PublicURL: origin clients use to reach this server; presigned URLs of
//     the local object store point here.
//   - SecretKey: HMAC secret for session JWTs and local presigned URLs.
//     Do not use the default outside development.
//   - SessionTTL: lifetime of a login session.
//   - MaxUploadBytes: largest media file /media/init accepts.
//   - PresignExpiry: validity of issued presigned URLs.
//   - StorageBackend: "local" (in-process) or "s3".
//   - S3*: object storage settings for the "s3" backend (MinIO compatible).
type Config struct {
	Addr           string
	PublicURL      string
	SecretKey      string
	SessionTTL     time.Duration
	MaxUploadBytes int64
	PresignExpiry  time.Duration
	StorageBackend string
	S3RootUser     string
	S3RootPassword string
	S3Bucket       string
	S3Region       string
	S3BaseEndpoint string
	LogLevel       string
	LogFormat      string
}

// LoadDefaults populates Config with development defaults.
// NOTE: These values are insecure for production and should be overridden.
func (c *Config) LoadDefaults() {
	c.Addr = ":8080"
	c.PublicURL = "http://127.0.0.1:8080"
	c.SecretKey = "secretKey"
	c.SessionTTL = 24 * time.Hour
	c.MaxUploadBytes = 512 << 20
	c.PresignExpiry = 15 * time.Minute
	c.StorageBackend = StorageLocal
	c.S3RootUser = "admin"
	c.S3RootPassword = "secretpassword"
	c.S3Bucket = "chirp-media"
	c.S3Region = "us-east-1"
	c.S3BaseEndpoint = "http://127.0.0.1:9000/"
	c.LogLevel = "info"
	c.LogFormat = logging.FormatJSON
}

// LoadConfig builds a Config by applying defaults, then overlaying values
// from an optional JSON file and finally from command-line flags.
// args excludes the program name.
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
