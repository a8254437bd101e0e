package config

import (
	"flag"
	"io"

	"github.com/dmitrijs2005/chirp/internal/flagx"
)

var knownFlags = []string{
	"-a", "-stale", "-gc", "-cache-size", "-retries", "-upload-timeout",
	"-max-attachments", "-timeline-limit", "-log-level", "-log-format", "-metrics-namespace",
}

// parseFlags populates Config fields from command-line flags.
//
//	-a string                 base URL of the chirp API
//	-stale duration           how long cached reads stay fresh
//	-gc duration              how long unused cache entries are kept
//	-cache-size int           maximum number of cached queries
//	-retries int              extra attempts for failed reads
//	-upload-timeout duration  bound on one attachment upload (0 = none)
//	-max-attachments int      attachments per post
//	-timeline-limit int       timeline page size
//	-log-level string         debug, info, warn or error
//	-log-format string        json, text or zap
//	-metrics-namespace string Prometheus namespace of upload metrics
//
// args is filtered with flagx.FilterArgs so flags owned by other components
// do not interfere.
func parseFlags(cfg *Config, args []string) error {
	args = flagx.FilterArgs(args, knownFlags)

	fs := flag.NewFlagSet("chirp", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.StringVar(&cfg.BaseURL, "a", cfg.BaseURL, "base URL of the chirp API")
	fs.DurationVar(&cfg.StaleTime, "stale", cfg.StaleTime, "how long cached reads stay fresh")
	fs.DurationVar(&cfg.GCTime, "gc", cfg.GCTime, "how long unused cache entries are kept")
	fs.IntVar(&cfg.CacheSize, "cache-size", cfg.CacheSize, "maximum number of cached queries")
	fs.IntVar(&cfg.MaxReadRetries, "retries", cfg.MaxReadRetries, "extra attempts for failed reads")
	fs.DurationVar(&cfg.UploadTimeout, "upload-timeout", cfg.UploadTimeout, "bound on one attachment upload (0 = none)")
	fs.IntVar(&cfg.MaxAttachments, "max-attachments", cfg.MaxAttachments, "attachments per post")
	fs.IntVar(&cfg.TimelineLimit, "timeline-limit", cfg.TimelineLimit, "timeline page size")
	fs.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "debug, info, warn or error")
	fs.StringVar(&cfg.LogFormat, "log-format", cfg.LogFormat, "json, text or zap")
	fs.StringVar(&cfg.MetricsNamespace, "metrics-namespace", cfg.MetricsNamespace, "Prometheus namespace of upload metrics")

	return fs.Parse(args)
}
