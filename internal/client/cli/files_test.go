package cli

import (
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileSource(t *testing.T) {
	p := writeFile(t, "photo.png", pngHeader)

	f, err := fileSource(p)
	require.NoError(t, err)
	assert.Equal(t, "photo.png", f.Name)
	assert.Equal(t, int64(len(pngHeader)), f.Size)
	assert.Equal(t, "image/png", f.MimeType)

	for range 2 {
		rc, err := f.Open()
		require.NoError(t, err)
		b, err := io.ReadAll(rc)
		require.NoError(t, err)
		require.NoError(t, rc.Close())
		assert.Equal(t, pngHeader, b)
	}
}

func TestFileSource_Errors(t *testing.T) {
	_, err := fileSource(t.TempDir())
	assert.ErrorContains(t, err, "is a directory")

	_, err = fileSource("/does/not/exist.png")
	assert.Error(t, err)
}

func TestDetectMime_SniffsUnknownExtension(t *testing.T) {
	tests := []struct {
		name string
		data []byte
		want string
	}{
		{"png", pngHeader, "image/png"},
		{"jpeg", []byte("\xff\xd8\xff\xe0rest-of-jpeg"), "image/jpeg"},
		{"text", []byte("plain words"), "text/plain"},
		{"empty", nil, "text/plain"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := detectMime(writeFile(t, "upload.bin-unknown", tc.data))
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestProgressBar(t *testing.T) {
	assert.Equal(t, "[--------------------]   0%", progressBar(0))
	assert.Equal(t, "[##########----------]  50%", progressBar(50))
	assert.Equal(t, "[####################] 100%", progressBar(140))
}
