package client

import (
	"context"

	"github.com/dmitrijs2005/gallerist/internal/client/models"
)

type Client interface {
	Me(ctx context.Context) (*models.User, error)
	Login(ctx context.Context, email, password string) (*LoginResult, error)
	Logout(ctx context.Context) error
	ForgotPassword(ctx context.Context, email string) error
	ResetPassword(ctx context.Context, token, password string) error
	UpdateProfile(ctx context.Context, p models.ProfileUpdate) (*models.User, error)

	Upload(ctx context.Context, file models.FileSource, progress models.ProgressFunc) (*models.UploadResult, error)

	ListArtworks(ctx context.Context, q ListQuery) (*Page[models.Artwork], error)
	GetArtwork(ctx context.Context, id string) (*models.Artwork, error)
	CreateArtwork(ctx context.Context, in models.ArtworkInput) (*models.Artwork, error)
	UpdateArtwork(ctx context.Context, id string, in models.ArtworkInput) (*models.Artwork, error)
	DeleteArtwork(ctx context.Context, id string) error

	ListGalleries(ctx context.Context, q ListQuery) (*Page[models.Gallery], error)
	GetGallery(ctx context.Context, id string) (*models.Gallery, error)
	CreateGallery(ctx context.Context, in models.GalleryInput) (*models.Gallery, error)
	UpdateGallery(ctx context.Context, id string, in models.GalleryInput) (*models.Gallery, error)
	DeleteGallery(ctx context.Context, id string) error
}

// TokenSource yields the current session credential; "" means anonymous.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

type LoginResult struct {
	Token string       `json:"token"`
	User  *models.User `json:"user"`
}

// Page is one page of a list endpoint.
type Page[T any] struct {
	Items []T `json:"items"`
	Total int `json:"total"`
}
