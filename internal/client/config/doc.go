// Package config loads runtime configuration for the gallerist CLI.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional config file (see parseFile) selected via flags: -c or -config.
//     Files ending in .yaml or .yml are read as YAML, anything else as JSON.
//  3. Command-line flags (see parseFlags), which override earlier values.
//
// # File schema
//
// The file loader uses timex.Duration for intervals, so values can be either
// strings like "3s" or integer nanoseconds:
//
//	api_base_url: http://127.0.0.1:8080/api
//	state_dsn: gallerist.db
//	request_timeout: 15s
//	upload_accept: [image/*]
//	upload_max_size: 10485760
//	upload_multiple: true
//	upload_stall_timeout: 1m
//	transfer_mode: s3
//	s3_bucket: gallerist
//
// Keys absent from the file leave the default in place.
//
// Note: This package does not read environment variables directly; use the
// config file or flags to configure values.
package config
