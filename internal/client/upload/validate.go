package upload

import (
	"fmt"
	"mime"
	"path/filepath"
	"strings"
	"time"

	"github.com/dmitrijs2005/gallerist/internal/client/models"
	"github.com/dustin/go-humanize"
)

// Options constrain what Enqueue accepts and how long a silent transfer may
// run.
type Options struct {
	// Accept lists MIME types ("image/png"), wildcards ("image/*") or
	// extensions (".png"). Empty accepts anything.
	Accept   []string
	MaxSize  int64
	Multiple bool
	// StallTimeout fails a transfer that reports no progress for this long.
	// Zero disables the check.
	StallTimeout time.Duration
}

// Rejection explains why a file never became an upload item.
type Rejection struct {
	Filename string
	Reason   string
}

func (r Rejection) String() string {
	return r.Filename + ": " + r.Reason
}

const reasonTooMany = "too many files: only one file can be uploaded at a time"

func (o Options) check(f models.FileSource) string {
	if f.Open == nil {
		return "file cannot be read"
	}
	if o.MaxSize > 0 && f.Size > o.MaxSize {
		size, limit := humanize.IBytes(uint64(f.Size)), humanize.IBytes(uint64(o.MaxSize))
		if size == limit {
			size, limit = humanize.Comma(f.Size)+" bytes", humanize.Comma(o.MaxSize)+" bytes"
		}
		return fmt.Sprintf("file size %s exceeds limit of %s", size, limit)
	}
	if !o.accepts(f) {
		mt := mimeOf(f)
		if mt == "" {
			mt = "unknown"
		}
		return fmt.Sprintf("file type %s is not allowed", mt)
	}
	return ""
}

func (o Options) accepts(f models.FileSource) bool {
	if len(o.Accept) == 0 {
		return true
	}

	mt := mimeOf(f)
	ext := strings.ToLower(filepath.Ext(f.Name))

	for _, a := range o.Accept {
		a = strings.ToLower(strings.TrimSpace(a))
		switch {
		case a == "":
			continue
		case a == "*/*" || a == "*":
			return true
		case strings.HasPrefix(a, "."):
			if ext == a {
				return true
			}
		case strings.HasSuffix(a, "/*"):
			if mt != "" && strings.HasPrefix(mt, strings.TrimSuffix(a, "*")) {
				return true
			}
		default:
			if mt == a {
				return true
			}
		}
	}
	return false
}

// mimeOf returns the declared type without parameters, falling back to the
// extension.
func mimeOf(f models.FileSource) string {
	mt := f.MimeType
	if mt == "" {
		mt = mime.TypeByExtension(filepath.Ext(f.Name))
	}
	if mt == "" {
		return ""
	}
	if parsed, _, err := mime.ParseMediaType(mt); err == nil {
		return strings.ToLower(parsed)
	}
	return strings.ToLower(mt)
}
