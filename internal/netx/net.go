package netx

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"sync"
)

// ProgressFunc receives the running byte count and the expected total.
type ProgressFunc func(loaded, total int64)

// ProgressReader reports every successful Read to fn.
type ProgressReader struct {
	r     io.Reader
	total int64
	fn    ProgressFunc

	mu     sync.Mutex
	loaded int64
}

func NewProgressReader(r io.Reader, total int64, fn ProgressFunc) *ProgressReader {
	return &ProgressReader{r: r, total: total, fn: fn}
}

func (p *ProgressReader) Read(b []byte) (int, error) {
	n, err := p.r.Read(b)
	if n > 0 {
		p.mu.Lock()
		p.loaded += int64(n)
		loaded := p.loaded
		p.mu.Unlock()
		if p.fn != nil {
			p.fn(loaded, p.total)
		}
	}
	return n, err
}

// Loaded returns the number of bytes read so far.
func (p *ProgressReader) Loaded() int64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.loaded
}

// PutPresigned streams body to a presigned URL with a PUT. size must be the
// exact body length; progress may be nil.
func PutPresigned(ctx context.Context, client *http.Client, url string, body io.Reader, size int64, contentType string, progress ProgressFunc) error {
	if client == nil {
		client = http.DefaultClient
	}
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, url, NewProgressReader(body, size, progress))
	if err != nil {
		return err
	}
	req.ContentLength = size
	req.Header.Set("Content-Type", contentType)

	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("upload failed: %s; body: %s", resp.Status, string(b))
	}
	return nil
}
