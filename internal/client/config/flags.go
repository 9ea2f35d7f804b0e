package config

import (
	"flag"
	"os"
	"strings"
	"time"

	"github.com/dmitrijs2005/gallerist/internal/flagx"
)

var knownFlags = []string{
	"-a", "-d", "-t", "-accept", "-max-size", "-multiple", "-stall",
	"-transfer", "-s3-bucket", "-s3-region", "-s3-endpoint", "-s3-access-key",
	"-s3-secret-key", "-s3-public-url", "-secret", "-l", "-log-format",
}

// parseFlags populates Config fields from command-line flags.
//
// Supported flags:
//
//	-a string           backend API base URL
//	-d string           local state database path
//	-t int              request timeout (seconds)
//	-accept string      comma separated accepted types ("image/*,.psd")
//	-max-size int       upload size limit (bytes)
//	-multiple bool      allow several files per upload command
//	-stall int          fail uploads silent for this long (seconds, 0 = never)
//	-transfer string    "http" (backend endpoint) or "s3" (presigned PUT)
//	-s3-bucket, -s3-region, -s3-endpoint, -s3-access-key, -s3-secret-key,
//	-s3-public-url      direct-to-bucket settings
//	-secret string      key material for sealing the local cookie jar
//	-l string           log level (debug, info, warn, error)
//	-log-format string  text or json
//
// Note: The function filters os.Args to only include the flags it knows about,
// using flagx.FilterArgs, to avoid interference with other components.
func parseFlags(cfg *Config) {
	args := flagx.FilterArgs(os.Args[1:], knownFlags)

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&cfg.APIBaseURL, "a", cfg.APIBaseURL, "backend API base URL")
	fs.StringVar(&cfg.StateDSN, "d", cfg.StateDSN, "local state database path")
	timeout := fs.Int("t", int(cfg.RequestTimeout.Seconds()), "request timeout (in seconds)")

	accept := fs.String("accept", strings.Join(cfg.UploadAccept, ","), "accepted upload types")
	fs.Int64Var(&cfg.UploadMaxSize, "max-size", cfg.UploadMaxSize, "upload size limit (in bytes)")
	fs.BoolVar(&cfg.UploadMultiple, "multiple", cfg.UploadMultiple, "allow several files per upload")
	stall := fs.Int("stall", int(cfg.UploadStallTimeout.Seconds()), "upload stall timeout (in seconds)")

	fs.StringVar(&cfg.TransferMode, "transfer", cfg.TransferMode, "upload transfer mode: http or s3")
	fs.StringVar(&cfg.S3Bucket, "s3-bucket", cfg.S3Bucket, "S3 bucket")
	fs.StringVar(&cfg.S3Region, "s3-region", cfg.S3Region, "S3 region")
	fs.StringVar(&cfg.S3BaseEndpoint, "s3-endpoint", cfg.S3BaseEndpoint, "S3 endpoint")
	fs.StringVar(&cfg.S3AccessKey, "s3-access-key", cfg.S3AccessKey, "S3 access key")
	fs.StringVar(&cfg.S3SecretKey, "s3-secret-key", cfg.S3SecretKey, "S3 secret key")
	fs.StringVar(&cfg.S3PublicBaseURL, "s3-public-url", cfg.S3PublicBaseURL, "public base URL of the bucket")

	fs.StringVar(&cfg.CookieSecret, "secret", cfg.CookieSecret, "cookie jar secret")
	fs.StringVar(&cfg.LogLevel, "l", cfg.LogLevel, "log level")
	fs.StringVar(&cfg.LogFormat, "log-format", cfg.LogFormat, "log format: text or json")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	cfg.RequestTimeout = time.Duration(*timeout) * time.Second
	cfg.UploadStallTimeout = time.Duration(*stall) * time.Second
	cfg.UploadAccept = splitList(*accept)
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
