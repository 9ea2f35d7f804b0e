package upload

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"path"
	"strings"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/dmitrijs2005/gallerist/internal/client/models"
	"github.com/dmitrijs2005/gallerist/internal/netx"
	"github.com/google/uuid"
)

// Transport moves one file to the backend and returns where it landed. It
// must stop promptly once ctx is done.
type Transport interface {
	Transfer(ctx context.Context, file models.FileSource, progress models.ProgressFunc) (string, error)
}

type TransportFunc func(ctx context.Context, file models.FileSource, progress models.ProgressFunc) (string, error)

func (f TransportFunc) Transfer(ctx context.Context, file models.FileSource, progress models.ProgressFunc) (string, error) {
	return f(ctx, file, progress)
}

// Uploader is the backend's multipart upload endpoint.
type Uploader interface {
	Upload(ctx context.Context, file models.FileSource, progress models.ProgressFunc) (*models.UploadResult, error)
}

// APITransport posts files to the backend's upload endpoint.
type APITransport struct {
	uploader Uploader
}

func NewAPITransport(u Uploader) *APITransport {
	return &APITransport{uploader: u}
}

func (t *APITransport) Transfer(ctx context.Context, file models.FileSource, progress models.ProgressFunc) (string, error) {
	res, err := t.uploader.Upload(ctx, file, progress)
	if err != nil {
		return "", err
	}
	if !res.Success {
		return "", errors.New("upload rejected by server")
	}
	if res.URL == "" {
		return "", errors.New("server returned no file url")
	}
	return res.URL, nil
}

var (
	loadDefaultAWSConfig = config.LoadDefaultConfig

	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) *s3.Client {
		return s3.NewFromConfig(cfg, optFns...)
	}

	newS3PresignClient = func(c *s3.Client) *s3.PresignClient {
		return s3.NewPresignClient(c)
	}

	presignPutObject = func(pc *s3.PresignClient, ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
		return pc.PresignPutObject(ctx, in, optFns...)
	}
	presignGetObject = func(pc *s3.PresignClient, ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
		return pc.PresignGetObject(ctx, in, optFns...)
	}
)

type S3Config struct {
	Bucket       string
	Region       string
	BaseEndpoint string
	AccessKey    string
	SecretKey    string
	// PublicBaseURL, when set, is joined with the object key to form the
	// file URL. Otherwise a presigned GET URL is returned.
	PublicBaseURL string
}

// S3Transport uploads straight to a bucket through presigned PUT URLs.
type S3Transport struct {
	cfg    S3Config
	client *http.Client

	mu      sync.Mutex
	presign *s3.PresignClient
}

func NewS3Transport(cfg S3Config, client *http.Client) *S3Transport {
	return &S3Transport{cfg: cfg, client: client}
}

func storageKey(name string, now time.Time) string {
	base := path.Base(strings.ReplaceAll(name, "\\", "/"))
	if base == "." || base == "/" {
		base = "file"
	}
	return fmt.Sprintf("uploads/%d/%02d/%02d/%s/%s", now.Year(), now.Month(), now.Day(), uuid.New(), base)
}

func (t *S3Transport) presignClient(ctx context.Context) (*s3.PresignClient, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.presign != nil {
		return t.presign, nil
	}

	cfg, err := loadDefaultAWSConfig(ctx,
		config.WithRegion(t.cfg.Region),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			t.cfg.AccessKey,
			t.cfg.SecretKey,
			"",
		)))
	if err != nil {
		return nil, err
	}

	client := newS3ClientFromConfig(cfg, func(o *s3.Options) {
		if t.cfg.BaseEndpoint != "" {
			o.BaseEndpoint = aws.String(t.cfg.BaseEndpoint)
			o.UsePathStyle = true
		}
	})

	t.presign = newS3PresignClient(client)
	return t.presign, nil
}

func (t *S3Transport) Transfer(ctx context.Context, file models.FileSource, progress models.ProgressFunc) (string, error) {
	pc, err := t.presignClient(ctx)
	if err != nil {
		return "", fmt.Errorf("s3 client: %w", err)
	}

	bucket := t.cfg.Bucket
	key := storageKey(file.Name, time.Now())

	in := &s3.PutObjectInput{Bucket: &bucket, Key: &key}
	if file.MimeType != "" {
		in.ContentType = aws.String(file.MimeType)
	}
	req, err := presignPutObject(pc, ctx, in, s3.WithPresignExpires(15*time.Minute))
	if err != nil {
		return "", fmt.Errorf("presign put: %w", err)
	}

	rc, err := file.Open()
	if err != nil {
		return "", fmt.Errorf("open %s: %w", file.Name, err)
	}
	defer rc.Close()

	if err := netx.PutPresigned(ctx, t.client, req.URL, rc, file.Size, file.MimeType, netx.ProgressFunc(progress)); err != nil {
		return "", err
	}

	if t.cfg.PublicBaseURL != "" {
		return strings.TrimRight(t.cfg.PublicBaseURL, "/") + "/" + escapeKey(key), nil
	}

	get, err := presignGetObject(pc, ctx, &s3.GetObjectInput{Bucket: &bucket, Key: &key}, s3.WithPresignExpires(24*time.Hour))
	if err != nil {
		return "", fmt.Errorf("presign get: %w", err)
	}
	return get.URL, nil
}

func escapeKey(key string) string {
	parts := strings.Split(key, "/")
	for i, p := range parts {
		parts[i] = url.PathEscape(p)
	}
	return strings.Join(parts, "/")
}
