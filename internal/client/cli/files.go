package cli

import (
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"os"
	"path/filepath"

	"github.com/dmitrijs2005/gallerist/internal/client/models"
)

// sniffLen is how much http.DetectContentType looks at.
const sniffLen = 512

// fileSource describes the file at path for the upload registry. The file is
// reopened on every transfer attempt.
func fileSource(path string) (models.FileSource, error) {
	st, err := os.Stat(path)
	if err != nil {
		return models.FileSource{}, err
	}
	if st.IsDir() {
		return models.FileSource{}, fmt.Errorf("%s is a directory", path)
	}

	ct, err := detectMime(path)
	if err != nil {
		return models.FileSource{}, err
	}

	return models.FileSource{
		Name:     filepath.Base(path),
		Size:     st.Size(),
		MimeType: ct,
		Open:     func() (io.ReadCloser, error) { return os.Open(path) },
	}, nil
}

// detectMime trusts a known extension first and sniffs the content
// otherwise.
func detectMime(path string) (string, error) {
	if ct := mime.TypeByExtension(filepath.Ext(path)); ct != "" {
		if mt, _, err := mime.ParseMediaType(ct); err == nil {
			return mt, nil
		}
	}

	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	buf := make([]byte, sniffLen)
	n, err := io.ReadFull(f, buf)
	if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, io.ErrUnexpectedEOF) {
		return "", err
	}

	mt, _, err := mime.ParseMediaType(http.DetectContentType(buf[:n]))
	if err != nil {
		return "application/octet-stream", nil
	}
	return mt, nil
}
