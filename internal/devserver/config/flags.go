package config

import (
	"flag"
	"io"

	"github.com/dmitrijs2005/chirp/internal/flagx"
)

var knownFlags = []string{
	"-a", "-public-url", "-s", "-session-ttl", "-max-upload", "-presign-expiry",
	"-storage", "-u", "-p", "-b", "-g", "-e", "-log-level", "-log-format",
}

// parseFlags populates Config fields from command-line flags.
//
//	-a string                address and port to listen on
//	-public-url string       origin clients reach the server at
//	-s string                secret key
//	-session-ttl duration    login session lifetime
//	-max-upload int          largest accepted media file, bytes
//	-presign-expiry duration validity of presigned URLs
//	-storage string          object store backend: local or s3
//	-u string                S3 root user
//	-p string                S3 root password
//	-b string                S3 bucket
//	-g string                S3 region
//	-e string                S3 base endpoint (e.g. "http://127.0.0.1:9000/")
//	-log-level string        debug, info, warn or error
//	-log-format string       json, text or zap
func parseFlags(cfg *Config, args []string) error {
	args = flagx.FilterArgs(args, knownFlags)

	fs := flag.NewFlagSet("devserver", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.StringVar(&cfg.Addr, "a", cfg.Addr, "address and port to listen on")
	fs.StringVar(&cfg.PublicURL, "public-url", cfg.PublicURL, "origin clients reach the server at")
	fs.StringVar(&cfg.SecretKey, "s", cfg.SecretKey, "secret key")
	fs.DurationVar(&cfg.SessionTTL, "session-ttl", cfg.SessionTTL, "login session lifetime")
	fs.Int64Var(&cfg.MaxUploadBytes, "max-upload", cfg.MaxUploadBytes, "largest accepted media file, bytes")
	fs.DurationVar(&cfg.PresignExpiry, "presign-expiry", cfg.PresignExpiry, "validity of presigned URLs")
	fs.StringVar(&cfg.StorageBackend, "storage", cfg.StorageBackend, "object store backend: local or s3")
	fs.StringVar(&cfg.S3RootUser, "u", cfg.S3RootUser, "S3 root user")
	fs.StringVar(&cfg.S3RootPassword, "p", cfg.S3RootPassword, "S3 root password")
	fs.StringVar(&cfg.S3Bucket, "b", cfg.S3Bucket, "S3 bucket")
	fs.StringVar(&cfg.S3Region, "g", cfg.S3Region, "S3 region")
	fs.StringVar(&cfg.S3BaseEndpoint, "e", cfg.S3BaseEndpoint, "S3 base endpoint")
	fs.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "debug, info, warn or error")
	fs.StringVar(&cfg.LogFormat, "log-format", cfg.LogFormat, "json, text or zap")

	return fs.Parse(args)
}
