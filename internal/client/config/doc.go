// Package config loads runtime configuration for the chirp CLI.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file selected via -c or -config.
//  3. Command-line flags, which override earlier values.
//
// # JSON schema
//
// Durations use timex.Duration, so values can be strings like "30s" or
// integer nanoseconds. Absent keys keep the default:
//
//	{
//	  "base_url": "http://127.0.0.1:8080",
//	  "stale_time": "1m",
//	  "gc_time": "5m",
//	  "cache_size": 512,
//	  "max_read_retries": 2,
//	  "upload_timeout": "0s",
//	  "max_attachments": 4,
//	  "timeline_limit": 50,
//	  "log_level": "info",
//	  "log_format": "text",
//	  "metrics_namespace": "chirp_media"
//	}
//
// This package does not read environment variables.
package config
