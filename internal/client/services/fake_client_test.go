package services

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/dmitrijs2005/gallerist/internal/client/client"
	"github.com/dmitrijs2005/gallerist/internal/client/models"
	"github.com/dmitrijs2005/gallerist/internal/client/storage"
	"github.com/dmitrijs2005/gallerist/internal/cryptox"
	"github.com/stretchr/testify/require"
)

// ---- helpers ----

func setupDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := storage.Open(context.Background(), filepath.Join(t.TempDir(), "state.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func testSealer(t *testing.T) *cryptox.Sealer {
	t.Helper()
	s, err := cryptox.NewSealer([]byte("test-secret"), []byte("gallerist-test"))
	require.NoError(t, err)
	return s
}

// ---- fake client ----

// fakeClient implements client.Client for service unit tests.
type fakeClient struct {
	client.Client

	LoginRet *client.LoginResult
	LoginErr error

	LogoutErr error
	MeRet     *models.User
	MeErr     error

	ForgotErr error
	ResetErr  error

	UpdateProfileRet *models.User
	UpdateProfileErr error

	ArtworksRet     *client.Page[models.Artwork]
	GalleriesRet    *client.Page[models.Gallery]
	ListErr         error
	CreateErr       error
	DeleteArtErr    error
	DeleteGalErr    error
	deleteObserved  func()
	LastLoginEmail  string
	LastLoginPass   string
	LastForgotEmail string
	LastResetToken  string
	LastResetPass   string
	LogoutCalls     int
}

func (f *fakeClient) Login(ctx context.Context, email, password string) (*client.LoginResult, error) {
	f.LastLoginEmail, f.LastLoginPass = email, password
	return f.LoginRet, f.LoginErr
}

func (f *fakeClient) Logout(ctx context.Context) error {
	f.LogoutCalls++
	return f.LogoutErr
}

func (f *fakeClient) Me(ctx context.Context) (*models.User, error) {
	return f.MeRet, f.MeErr
}

func (f *fakeClient) ForgotPassword(ctx context.Context, email string) error {
	f.LastForgotEmail = email
	return f.ForgotErr
}

func (f *fakeClient) ResetPassword(ctx context.Context, token, password string) error {
	f.LastResetToken, f.LastResetPass = token, password
	return f.ResetErr
}

func (f *fakeClient) UpdateProfile(ctx context.Context, p models.ProfileUpdate) (*models.User, error) {
	return f.UpdateProfileRet, f.UpdateProfileErr
}

func (f *fakeClient) ListArtworks(ctx context.Context, q client.ListQuery) (*client.Page[models.Artwork], error) {
	return f.ArtworksRet, f.ListErr
}

func (f *fakeClient) CreateArtwork(ctx context.Context, in models.ArtworkInput) (*models.Artwork, error) {
	if f.CreateErr != nil {
		return nil, f.CreateErr
	}
	return &models.Artwork{ID: "new", Title: in.Title}, nil
}

func (f *fakeClient) UpdateArtwork(ctx context.Context, id string, in models.ArtworkInput) (*models.Artwork, error) {
	return &models.Artwork{ID: id, Title: in.Title}, nil
}

func (f *fakeClient) DeleteArtwork(ctx context.Context, id string) error {
	if f.deleteObserved != nil {
		f.deleteObserved()
	}
	return f.DeleteArtErr
}

func (f *fakeClient) ListGalleries(ctx context.Context, q client.ListQuery) (*client.Page[models.Gallery], error) {
	return f.GalleriesRet, f.ListErr
}

func (f *fakeClient) CreateGallery(ctx context.Context, in models.GalleryInput) (*models.Gallery, error) {
	if f.CreateErr != nil {
		return nil, f.CreateErr
	}
	return &models.Gallery{ID: "new", Name: in.Name}, nil
}

func (f *fakeClient) DeleteGallery(ctx context.Context, id string) error {
	return f.DeleteGalErr
}
