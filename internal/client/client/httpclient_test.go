package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/dmitrijs2005/gallerist/internal/client/models"
	"github.com/dmitrijs2005/gallerist/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type staticToken string

func (s staticToken) Token(context.Context) (string, error) { return string(s), nil }

type failingToken struct{}

func (failingToken) Token(context.Context) (string, error) { return "", errors.New("jar locked") }

func newTestClient(t *testing.T, h http.HandlerFunc, tokens TokenSource) *HTTPClient {
	t.Helper()
	ts := httptest.NewServer(h)
	t.Cleanup(ts.Close)

	c, err := NewHTTPClient(ts.URL+"/api/", 5*time.Second, tokens)
	require.NoError(t, err)
	return c
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func TestNewHTTPClient_RejectsBadURL(t *testing.T) {
	_, err := NewHTTPClient("ftp://example.org", time.Second, nil)
	require.Error(t, err)

	_, err = NewHTTPClient("://nope", time.Second, nil)
	require.Error(t, err)
}

func TestMe_SendsBearerToken(t *testing.T) {
	var gotAuth, gotPath string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotPath = r.URL.Path
		writeJSON(w, http.StatusOK, map[string]any{"user": map[string]any{
			"id": "u-1", "email": "ada@example.org", "firstName": "Ada", "role": "gallery_manager",
		}})
	}, staticToken("tok-123"))

	u, err := c.Me(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "Bearer tok-123", gotAuth)
	assert.Equal(t, "/api/auth/me", gotPath)
	assert.Equal(t, "u-1", u.ID)
	assert.Equal(t, models.RoleGalleryManager, u.Role)
}

func TestMe_AnonymousHasNoAuthHeader(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Empty(t, r.Header.Get("Authorization"))
		w.WriteHeader(http.StatusUnauthorized)
	}, staticToken(""))

	_, err := c.Me(context.Background())
	assert.ErrorIs(t, err, common.ErrorUnauthorized)
}

func TestMe_EmptyUserIsUnauthorized(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{})
	}, nil)

	_, err := c.Me(context.Background())
	assert.ErrorIs(t, err, common.ErrorUnauthorized)
}

func TestTokenSourceError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("request must not be sent")
	}, failingToken{})

	_, err := c.Me(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "jar locked")
}

func TestStatusMapping(t *testing.T) {
	tests := []struct {
		status int
		body   any
		want   error
		msg    string
	}{
		{status: http.StatusBadRequest, body: map[string]string{"message": "title is required"}, want: common.ErrorValidation, msg: "title is required"},
		{status: http.StatusUnprocessableEntity, want: common.ErrorValidation},
		{status: http.StatusUnauthorized, want: common.ErrorUnauthorized},
		{status: http.StatusForbidden, body: map[string]string{"error": "admins only"}, want: common.ErrorForbidden, msg: "admins only"},
		{status: http.StatusNotFound, want: common.ErrorNotFound},
		{status: http.StatusInternalServerError, want: common.ErrorUnavailable},
		{status: http.StatusBadGateway, want: common.ErrorUnavailable},
		{status: http.StatusTeapot, want: common.ErrorInternal},
	}

	for _, tt := range tests {
		t.Run(http.StatusText(tt.status), func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				if tt.body != nil {
					writeJSON(w, tt.status, tt.body)
					return
				}
				w.WriteHeader(tt.status)
			}, nil)

			_, err := c.GetArtwork(context.Background(), "a-1")
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.want)
			if tt.msg != "" {
				assert.Contains(t, err.Error(), tt.msg)
			}
		})
	}
}

func TestNetworkErrorIsUnavailable(t *testing.T) {
	ts := httptest.NewServer(http.NotFoundHandler())
	ts.Close()

	c, err := NewHTTPClient(ts.URL, time.Second, nil)
	require.NoError(t, err)

	err = c.Logout(context.Background())
	assert.ErrorIs(t, err, common.ErrorUnavailable)
}

func TestCancelledContextPassesThrough(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}, nil)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	err := c.Logout(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.NotErrorIs(t, err, common.ErrorUnavailable)
}

func TestLogin(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/auth/login", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var in map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&in))
		if in["password"] != "s3cret" {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"message": "invalid credentials"})
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"token": "jwt",
			"user":  map[string]any{"id": "u-1", "email": in["email"], "role": "artist"},
		})
	}, nil)

	res, err := c.Login(context.Background(), "ada@example.org", "s3cret")
	require.NoError(t, err)
	assert.Equal(t, "jwt", res.Token)
	assert.Equal(t, "ada@example.org", res.User.Email)

	_, err = c.Login(context.Background(), "ada@example.org", "wrong")
	assert.ErrorIs(t, err, common.ErrorUnauthorized)
	assert.Contains(t, err.Error(), "invalid credentials")
}

func TestLogin_MissingTokenIsAnError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"user": map[string]any{"id": "u-1"}})
	}, nil)

	_, err := c.Login(context.Background(), "a", "b")
	assert.ErrorIs(t, err, common.ErrorInternal)
}

func TestPasswordFlows(t *testing.T) {
	var paths []string
	var bodies []map[string]string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		paths = append(paths, r.URL.Path)
		var in map[string]string
		_ = json.NewDecoder(r.Body).Decode(&in)
		bodies = append(bodies, in)
		w.WriteHeader(http.StatusNoContent)
	}, nil)

	require.NoError(t, c.ForgotPassword(context.Background(), "ada@example.org"))
	require.NoError(t, c.ResetPassword(context.Background(), "reset-tok", "n3w"))

	assert.Equal(t, []string{"/api/auth/forgot-password", "/api/auth/reset-password"}, paths)
	assert.Equal(t, "ada@example.org", bodies[0]["email"])
	assert.Equal(t, map[string]string{"token": "reset-tok", "password": "n3w"}, bodies[1])
}

func TestUpdateProfile(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPatch, r.Method)
		assert.Equal(t, "/api/users/me", r.URL.Path)

		var in map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&in))
		assert.Equal(t, map[string]any{"bio": "painter"}, in)

		writeJSON(w, http.StatusOK, map[string]any{"user": map[string]any{"id": "u-1", "bio": "painter"}})
	}, nil)

	bio := "painter"
	u, err := c.UpdateProfile(context.Background(), models.ProfileUpdate{Bio: &bio})
	require.NoError(t, err)
	require.NotNil(t, u.Bio)
	assert.Equal(t, "painter", *u.Bio)
}

func TestUpload_MultipartWithProgress(t *testing.T) {
	payload := bytes.Repeat([]byte("p"), 4096)

	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/uploads", r.URL.Path)
		require.NoError(t, r.ParseMultipartForm(1<<20))

		f, hdr, err := r.FormFile("file")
		require.NoError(t, err)
		defer f.Close()
		got, _ := io.ReadAll(f)

		assert.Equal(t, `we"ird.png`, hdr.Filename)
		assert.Equal(t, "image/png", hdr.Header.Get("Content-Type"))
		assert.Equal(t, payload, got)

		writeJSON(w, http.StatusCreated, models.UploadResult{
			Success: true, FileID: "f-1", URL: "https://cdn.example.org/f-1.png",
			Filename: hdr.Filename, Size: int64(len(got)), MimeType: "image/png",
		})
	}, staticToken("tok"))

	var last int64
	file := models.FileSource{
		Name: `we"ird.png`, Size: int64(len(payload)), MimeType: "image/png",
		Open: func() (io.ReadCloser, error) { return io.NopCloser(bytes.NewReader(payload)), nil },
	}

	res, err := c.Upload(context.Background(), file, func(loaded, total int64) {
		assert.Equal(t, int64(len(payload)), total)
		last = loaded
	})
	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.Equal(t, "https://cdn.example.org/f-1.png", res.URL)
	assert.Equal(t, int64(len(payload)), last)
}

func TestUpload_ServerErrorDoesNotHang(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}, nil)

	file := models.FileSource{
		Name: "big.png", Size: 8 << 20, MimeType: "image/png",
		Open: func() (io.ReadCloser, error) { return io.NopCloser(bytes.NewReader(make([]byte, 8<<20))), nil },
	}

	_, err := c.Upload(context.Background(), file, nil)
	assert.ErrorIs(t, err, common.ErrorUnavailable)
}

// slowReader drains a request body in small chunks so the exchange
// takes far longer than the client's request timeout.
func slowReader(t *testing.T, r io.Reader) int64 {
	t.Helper()
	buf := make([]byte, 1<<10)
	var n int64
	for {
		k, err := r.Read(buf)
		n += int64(k)
		if err == io.EOF {
			return n
		}
		require.NoError(t, err)
		time.Sleep(20 * time.Millisecond)
	}
}

func TestUpload_OutlivesRequestTimeoutWhileProgressing(t *testing.T) {
	payload := bytes.Repeat([]byte("s"), 48<<10)

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := slowReader(t, r.Body)
		assert.Greater(t, n, int64(len(payload)))
		writeJSON(w, http.StatusCreated, models.UploadResult{Success: true, URL: "https://cdn.example.org/slow.png"})
	}))
	t.Cleanup(ts.Close)

	c, err := NewHTTPClient(ts.URL, 300*time.Millisecond, nil)
	require.NoError(t, err)

	file := models.FileSource{
		Name: "slow.png", Size: int64(len(payload)), MimeType: "image/png",
		Open: func() (io.ReadCloser, error) { return io.NopCloser(bytes.NewReader(payload)), nil },
	}

	start := time.Now()
	res, err := c.Upload(context.Background(), file, nil)
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example.org/slow.png", res.URL)
	assert.Greater(t, time.Since(start), 300*time.Millisecond)
}

func TestUpload_SilentServerStillTimesOut(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.Copy(io.Discard, r.Body)
		select {
		case <-r.Context().Done():
		case <-time.After(5 * time.Second):
		}
	}))
	t.Cleanup(ts.Close)

	c, err := NewHTTPClient(ts.URL, 200*time.Millisecond, nil)
	require.NoError(t, err)

	file := models.FileSource{
		Name: "a.png", Size: 3, MimeType: "image/png",
		Open: func() (io.ReadCloser, error) { return io.NopCloser(bytes.NewReader([]byte("abc"))), nil },
	}

	start := time.Now()
	_, err = c.Upload(context.Background(), file, nil)
	require.Error(t, err)
	assert.Less(t, time.Since(start), 4*time.Second)
}

func TestUpload_OpenError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("request must not be sent")
	}, nil)

	file := models.FileSource{
		Name: "gone.png",
		Open: func() (io.ReadCloser, error) { return nil, errors.New("no such file") },
	}
	_, err := c.Upload(context.Background(), file, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no such file")
}

func TestListArtworks_QueryEncoding(t *testing.T) {
	var gotQuery string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		writeJSON(w, http.StatusOK, Page[models.Artwork]{
			Items: []models.Artwork{{ID: "a-1", Title: "Dawn"}},
			Total: 1,
		})
	}, nil)

	page, err := c.ListArtworks(context.Background(), ListQuery{ArtistID: "u-9", Sort: "price", Order: "desc", Limit: 20})
	require.NoError(t, err)

	assert.Equal(t, "artistId=u-9&limit=20&order=desc&sort=price", gotQuery)
	require.Len(t, page.Items, 1)
	assert.Equal(t, "Dawn", page.Items[0].Title)
}

func TestList_RejectsUnknownSort(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("request must not be sent")
	}, nil)

	_, err := c.ListGalleries(context.Background(), ListQuery{Sort: "price"})
	assert.ErrorIs(t, err, common.ErrorValidation)

	_, err = c.ListArtworks(context.Background(), ListQuery{Order: "sideways"})
	assert.ErrorIs(t, err, common.ErrorValidation)
}

func TestGalleryCRUD(t *testing.T) {
	type call struct{ method, path string }
	var calls []call

	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls = append(calls, call{r.Method, r.URL.EscapedPath()})
		switch r.Method {
		case http.MethodDelete:
			w.WriteHeader(http.StatusNoContent)
		default:
			writeJSON(w, http.StatusOK, models.Gallery{ID: "g/1", Name: "North"})
		}
	}, nil)

	ctx := context.Background()
	g, err := c.CreateGallery(ctx, models.GalleryInput{Name: "North"})
	require.NoError(t, err)
	assert.Equal(t, "North", g.Name)

	_, err = c.UpdateGallery(ctx, g.ID, models.GalleryInput{Name: "North"})
	require.NoError(t, err)
	_, err = c.GetGallery(ctx, g.ID)
	require.NoError(t, err)
	require.NoError(t, c.DeleteGallery(ctx, g.ID))

	assert.Equal(t, []call{
		{http.MethodPost, "/api/galleries"},
		{http.MethodPut, "/api/galleries/g%2F1"},
		{http.MethodGet, "/api/galleries/g%2F1"},
		{http.MethodDelete, "/api/galleries/g%2F1"},
	}, calls)
}

func TestArtworkCRUD(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodPost:
			var in models.ArtworkInput
			require.NoError(t, json.NewDecoder(r.Body).Decode(&in))
			writeJSON(w, http.StatusCreated, models.Artwork{ID: "a-1", Title: in.Title, Year: in.Year})
		case http.MethodPut:
			writeJSON(w, http.StatusOK, models.Artwork{ID: "a-1", Title: "Renamed"})
		case http.MethodDelete:
			w.WriteHeader(http.StatusNotFound)
		}
	}, nil)

	ctx := context.Background()
	a, err := c.CreateArtwork(ctx, models.ArtworkInput{Title: "Dawn", Year: 1901})
	require.NoError(t, err)
	assert.Equal(t, 1901, a.Year)

	a, err = c.UpdateArtwork(ctx, "a-1", models.ArtworkInput{Title: "Renamed"})
	require.NoError(t, err)
	assert.Equal(t, "Renamed", a.Title)

	assert.ErrorIs(t, c.DeleteArtwork(ctx, "a-1"), common.ErrorNotFound)
}
