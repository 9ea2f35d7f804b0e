package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"slices"
	"strings"
	"time"

	"github.com/dmitrijs2005/gallerist/internal/client/models"
	"github.com/dmitrijs2005/gallerist/internal/common"
	"github.com/dmitrijs2005/gallerist/internal/netx"
)

type HTTPClient struct {
	baseURL    string
	httpClient *http.Client
	// uploadClient has no overall deadline; a slow transfer is bounded by
	// the caller's context and by timeout applied to the response headers.
	uploadClient *http.Client
	tokens       TokenSource
}

// NewHTTPClient returns a client rooted at baseURL (for example
// "http://127.0.0.1:8080/api"). tokens may be nil for anonymous use.
func NewHTTPClient(baseURL string, timeout time.Duration, tokens TokenSource) (*HTTPClient, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid api base url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("invalid api base url %q: scheme must be http or https", baseURL)
	}

	tr := http.DefaultTransport.(*http.Transport).Clone()
	tr.ResponseHeaderTimeout = timeout

	return &HTTPClient{
		baseURL:      strings.TrimRight(baseURL, "/"),
		httpClient:   &http.Client{Timeout: timeout},
		uploadClient: &http.Client{Transport: tr},
		tokens:       tokens,
	}, nil
}

func (c *HTTPClient) newRequest(ctx context.Context, method, path string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	if c.tokens != nil {
		tok, err := c.tokens.Token(ctx)
		if err != nil {
			return nil, fmt.Errorf("read credential: %w", err)
		}
		if tok != "" {
			req.Header.Set(common.AuthorizationHeaderName, "Bearer "+tok)
		}
	}
	return req, nil
}

func (c *HTTPClient) send(hc *http.Client, req *http.Request, out any) error {
	resp, err := hc.Do(req)
	if err != nil {
		return mapError(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return mapStatus(resp)
	}
	if out == nil || resp.StatusCode == http.StatusNoContent {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: decode %s %s: %v", common.ErrorInternal, req.Method, req.URL.Path, err)
	}
	return nil
}

// do sends in as JSON (when non-nil) and decodes the answer into out (when
// non-nil).
func (c *HTTPClient) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return err
		}
		body = bytes.NewReader(b)
	}

	req, err := c.newRequest(ctx, method, path, body)
	if err != nil {
		return err
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return c.send(c.httpClient, req, out)
}

type userEnvelope struct {
	User *models.User `json:"user"`
}

func (c *HTTPClient) Me(ctx context.Context) (*models.User, error) {
	var out userEnvelope
	if err := c.do(ctx, http.MethodGet, "/auth/me", nil, &out); err != nil {
		return nil, err
	}
	if out.User == nil {
		return nil, common.ErrorUnauthorized
	}
	return out.User, nil
}

func (c *HTTPClient) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	in := map[string]string{"email": email, "password": password}

	var out LoginResult
	if err := c.do(ctx, http.MethodPost, "/auth/login", in, &out); err != nil {
		return nil, err
	}
	if out.Token == "" || out.User == nil {
		return nil, fmt.Errorf("%w: login response without credential", common.ErrorInternal)
	}
	return &out, nil
}

func (c *HTTPClient) Logout(ctx context.Context) error {
	return c.do(ctx, http.MethodPost, "/auth/logout", nil, nil)
}

func (c *HTTPClient) ForgotPassword(ctx context.Context, email string) error {
	return c.do(ctx, http.MethodPost, "/auth/forgot-password", map[string]string{"email": email}, nil)
}

func (c *HTTPClient) ResetPassword(ctx context.Context, token, password string) error {
	in := map[string]string{"token": token, "password": password}
	return c.do(ctx, http.MethodPost, "/auth/reset-password", in, nil)
}

func (c *HTTPClient) UpdateProfile(ctx context.Context, p models.ProfileUpdate) (*models.User, error) {
	var out userEnvelope
	if err := c.do(ctx, http.MethodPatch, "/users/me", p, &out); err != nil {
		return nil, err
	}
	return out.User, nil
}

// Upload streams file as multipart/form-data (field "file") to /uploads.
// progress sees bytes of the file itself, not of the multipart framing.
func (c *HTTPClient) Upload(ctx context.Context, file models.FileSource, progress models.ProgressFunc) (*models.UploadResult, error) {
	rc, err := file.Open()
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", file.Name, err)
	}
	defer rc.Close()

	pr, pw := io.Pipe()
	mw := multipart.NewWriter(pw)
	written := make(chan struct{})

	go func() {
		defer close(written)
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename="%s"`, escapeQuotes(file.Name)))
		ct := file.MimeType
		if ct == "" {
			ct = "application/octet-stream"
		}
		h.Set("Content-Type", ct)

		part, err := mw.CreatePart(h)
		if err != nil {
			pw.CloseWithError(err)
			return
		}
		if _, err := io.Copy(part, netx.NewProgressReader(rc, file.Size, netx.ProgressFunc(progress))); err != nil {
			pw.CloseWithError(err)
			return
		}
		pw.CloseWithError(mw.Close())
	}()

	req, err := c.newRequest(ctx, http.MethodPost, "/uploads", pr)
	if err != nil {
		pr.CloseWithError(err)
		<-written
		return nil, err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	var out models.UploadResult
	err = c.send(c.uploadClient, req, &out)
	// unblock the writer if the server answered before reading everything
	pr.CloseWithError(io.ErrClosedPipe)
	<-written
	if err != nil {
		return nil, err
	}
	return &out, nil
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

func escapeQuotes(s string) string {
	return quoteEscaper.Replace(s)
}

// ListQuery filters and orders a list endpoint. Zero values are omitted.
type ListQuery struct {
	ArtistID  string
	GalleryID string
	ManagerID string
	Search    string
	Sort      string
	// Order is "asc" or "desc".
	Order string
	Page  int
	Limit int
}

var (
	ArtworkSorts = []string{"title", "year", "price", "createdAt", "updatedAt"}
	GallerySorts = []string{"name", "location", "createdAt", "updatedAt"}
)

func (q ListQuery) encode(sorts []string) (string, error) {
	v := url.Values{}
	if q.Sort != "" {
		if !slices.Contains(sorts, q.Sort) {
			return "", fmt.Errorf("%w: cannot sort by %q (allowed: %s)", common.ErrorValidation, q.Sort, strings.Join(sorts, ", "))
		}
		v.Set("sort", q.Sort)
	}
	switch q.Order {
	case "":
	case "asc", "desc":
		v.Set("order", q.Order)
	default:
		return "", fmt.Errorf("%w: order must be asc or desc", common.ErrorValidation)
	}

	set := func(k, val string) {
		if val != "" {
			v.Set(k, val)
		}
	}
	set("artistId", q.ArtistID)
	set("galleryId", q.GalleryID)
	set("managerId", q.ManagerID)
	set("search", q.Search)
	if q.Page > 0 {
		v.Set("page", fmt.Sprint(q.Page))
	}
	if q.Limit > 0 {
		v.Set("limit", fmt.Sprint(q.Limit))
	}

	if len(v) == 0 {
		return "", nil
	}
	return "?" + v.Encode(), nil
}

func list[T any](ctx context.Context, c *HTTPClient, path string, q ListQuery, sorts []string) (*Page[T], error) {
	qs, err := q.encode(sorts)
	if err != nil {
		return nil, err
	}
	var out Page[T]
	if err := c.do(ctx, http.MethodGet, path+qs, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func item[T any](ctx context.Context, c *HTTPClient, method, path string, in any) (*T, error) {
	var out T
	if err := c.do(ctx, method, path, in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func artworkPath(id string) string { return "/artworks/" + url.PathEscape(id) }
func galleryPath(id string) string { return "/galleries/" + url.PathEscape(id) }

func (c *HTTPClient) ListArtworks(ctx context.Context, q ListQuery) (*Page[models.Artwork], error) {
	return list[models.Artwork](ctx, c, "/artworks", q, ArtworkSorts)
}

func (c *HTTPClient) GetArtwork(ctx context.Context, id string) (*models.Artwork, error) {
	return item[models.Artwork](ctx, c, http.MethodGet, artworkPath(id), nil)
}

func (c *HTTPClient) CreateArtwork(ctx context.Context, in models.ArtworkInput) (*models.Artwork, error) {
	return item[models.Artwork](ctx, c, http.MethodPost, "/artworks", in)
}

func (c *HTTPClient) UpdateArtwork(ctx context.Context, id string, in models.ArtworkInput) (*models.Artwork, error) {
	return item[models.Artwork](ctx, c, http.MethodPut, artworkPath(id), in)
}

func (c *HTTPClient) DeleteArtwork(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, artworkPath(id), nil, nil)
}

func (c *HTTPClient) ListGalleries(ctx context.Context, q ListQuery) (*Page[models.Gallery], error) {
	return list[models.Gallery](ctx, c, "/galleries", q, GallerySorts)
}

func (c *HTTPClient) GetGallery(ctx context.Context, id string) (*models.Gallery, error) {
	return item[models.Gallery](ctx, c, http.MethodGet, galleryPath(id), nil)
}

func (c *HTTPClient) CreateGallery(ctx context.Context, in models.GalleryInput) (*models.Gallery, error) {
	return item[models.Gallery](ctx, c, http.MethodPost, "/galleries", in)
}

func (c *HTTPClient) UpdateGallery(ctx context.Context, id string, in models.GalleryInput) (*models.Gallery, error) {
	return item[models.Gallery](ctx, c, http.MethodPut, galleryPath(id), in)
}

func (c *HTTPClient) DeleteGallery(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, galleryPath(id), nil, nil)
}

var _ Client = (*HTTPClient)(nil)
