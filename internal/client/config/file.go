package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/dmitrijs2005/gallerist/internal/flagx"
	"github.com/dmitrijs2005/gallerist/internal/timex"
	"gopkg.in/yaml.v3"
)

// FileConfig is a DTO used exclusively for config file unmarshalling. It
// relies on timex.Duration so files can specify intervals either as strings
// like "3s" or as integer nanoseconds. Only fields present in the file are
// copied into the runtime Config.
type FileConfig struct {
	APIBaseURL     string         `json:"api_base_url" yaml:"api_base_url"`
	StateDSN       string         `json:"state_dsn" yaml:"state_dsn"`
	RequestTimeout timex.Duration `json:"request_timeout" yaml:"request_timeout"`

	UploadAccept       []string       `json:"upload_accept" yaml:"upload_accept"`
	UploadMaxSize      int64          `json:"upload_max_size" yaml:"upload_max_size"`
	UploadMultiple     *bool          `json:"upload_multiple" yaml:"upload_multiple"`
	UploadStallTimeout timex.Duration `json:"upload_stall_timeout" yaml:"upload_stall_timeout"`

	TransferMode    string `json:"transfer_mode" yaml:"transfer_mode"`
	S3Bucket        string `json:"s3_bucket" yaml:"s3_bucket"`
	S3Region        string `json:"s3_region" yaml:"s3_region"`
	S3BaseEndpoint  string `json:"s3_base_endpoint" yaml:"s3_base_endpoint"`
	S3AccessKey     string `json:"s3_access_key" yaml:"s3_access_key"`
	S3SecretKey     string `json:"s3_secret_key" yaml:"s3_secret_key"`
	S3PublicBaseURL string `json:"s3_public_base_url" yaml:"s3_public_base_url"`

	CookieSecret string `json:"cookie_secret" yaml:"cookie_secret"`

	LogLevel  string `json:"log_level" yaml:"log_level"`
	LogFormat string `json:"log_format" yaml:"log_format"`
}

// readFile decodes path as YAML when it ends in .yaml or .yml and as JSON
// otherwise.
func readFile(path string) (*FileConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var fc FileConfig
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &fc)
	default:
		err = json.Unmarshal(data, &fc)
	}
	if err != nil {
		return nil, err
	}
	return &fc, nil
}

func (fc *FileConfig) apply(cfg *Config) {
	str := func(dst *string, v string) {
		if v != "" {
			*dst = v
		}
	}

	str(&cfg.APIBaseURL, fc.APIBaseURL)
	str(&cfg.StateDSN, fc.StateDSN)
	if fc.RequestTimeout.Duration != 0 {
		cfg.RequestTimeout = fc.RequestTimeout.Duration
	}

	if fc.UploadAccept != nil {
		cfg.UploadAccept = fc.UploadAccept
	}
	if fc.UploadMaxSize != 0 {
		cfg.UploadMaxSize = fc.UploadMaxSize
	}
	if fc.UploadMultiple != nil {
		cfg.UploadMultiple = *fc.UploadMultiple
	}
	if fc.UploadStallTimeout.Duration != 0 {
		cfg.UploadStallTimeout = fc.UploadStallTimeout.Duration
	}

	str(&cfg.TransferMode, fc.TransferMode)
	str(&cfg.S3Bucket, fc.S3Bucket)
	str(&cfg.S3Region, fc.S3Region)
	str(&cfg.S3BaseEndpoint, fc.S3BaseEndpoint)
	str(&cfg.S3AccessKey, fc.S3AccessKey)
	str(&cfg.S3SecretKey, fc.S3SecretKey)
	str(&cfg.S3PublicBaseURL, fc.S3PublicBaseURL)
	str(&cfg.CookieSecret, fc.CookieSecret)
	str(&cfg.LogLevel, fc.LogLevel)
	str(&cfg.LogFormat, fc.LogFormat)
}

// parseFile overlays Config with values loaded from the file named by -c or
// -config. Without either flag nothing is loaded.
//
// Panics on read or decode errors (caller should recover if desired).
func parseFile(cfg *Config) {
	path := flagx.ConfigFile(os.Args[1:])
	if path == "" {
		return
	}

	fc, err := readFile(path)
	if err != nil {
		panic(err)
	}
	fc.apply(cfg)
}
