package config

import (
	"errors"
	"fmt"
	"time"
)

const (
	TransferHTTP = "http"
	TransferS3   = "s3"
)

// Config holds runtime settings for the gallerist CLI.
//
// Units: RequestTimeout and UploadStallTimeout are time.Duration values;
// UploadMaxSize is in bytes.
type Config struct {
	APIBaseURL     string
	StateDSN       string
	RequestTimeout time.Duration

	UploadAccept       []string
	UploadMaxSize      int64
	UploadMultiple     bool
	UploadStallTimeout time.Duration

	TransferMode    string
	S3Bucket        string
	S3Region        string
	S3BaseEndpoint  string
	S3AccessKey     string
	S3SecretKey     string
	S3PublicBaseURL string

	CookieSecret string

	LogLevel  string
	LogFormat string
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.APIBaseURL = "http://127.0.0.1:8080/api"
	c.StateDSN = "gallerist.db"
	c.RequestTimeout = 15 * time.Second

	c.UploadAccept = []string{"image/jpeg", "image/png", "image/webp", "image/gif"}
	c.UploadMaxSize = 10 << 20
	c.UploadMultiple = true
	c.UploadStallTimeout = 60 * time.Second

	c.TransferMode = TransferHTTP
	c.S3Bucket = "gallerist"
	c.S3Region = "us-east-1"
	c.S3BaseEndpoint = "http://127.0.0.1:9000"
	c.S3AccessKey = "minioadmin"
	c.S3SecretKey = "minioadmin"

	c.CookieSecret = "gallerist-local-secret"

	c.LogLevel = "info"
	c.LogFormat = "text"
}

// Validate reports settings the client cannot start with.
func (c *Config) Validate() error {
	var errs []error
	if c.APIBaseURL == "" {
		errs = append(errs, errors.New("api base url is required"))
	}
	if c.StateDSN == "" {
		errs = append(errs, errors.New("state dsn is required"))
	}
	if c.UploadMaxSize <= 0 {
		errs = append(errs, fmt.Errorf("upload max size must be positive, got %d", c.UploadMaxSize))
	}
	if c.UploadStallTimeout < 0 {
		errs = append(errs, errors.New("upload stall timeout must not be negative"))
	}
	switch c.TransferMode {
	case TransferHTTP:
	case TransferS3:
		if c.S3Bucket == "" {
			errs = append(errs, errors.New("s3 transfer mode needs a bucket"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown transfer mode %q (want %s or %s)", c.TransferMode, TransferHTTP, TransferS3))
	}
	if c.CookieSecret == "" {
		errs = append(errs, errors.New("cookie secret is required"))
	}
	return errors.Join(errs...)
}

// LoadConfig constructs a Config, applies defaults, then overlays values from
// a config file (if present) and command-line flags (if present). Later
// sources take precedence over earlier ones.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseFile(cfg)
	parseFlags(cfg)
	return cfg
}
