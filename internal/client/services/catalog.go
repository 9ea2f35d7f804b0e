package services

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/dmitrijs2005/gallerist/internal/client/client"
	"github.com/dmitrijs2005/gallerist/internal/client/models"
	"github.com/dmitrijs2005/gallerist/internal/common"
	"github.com/dmitrijs2005/gallerist/internal/logging"
)

// CatalogService wraps artwork and gallery CRUD and keeps the last listed
// page of each so deletes can update the view before the backend answers.
type CatalogService struct {
	client client.Client
	logger logging.Logger

	mu        sync.Mutex
	artworks  []models.Artwork
	galleries []models.Gallery
}

func NewCatalogService(c client.Client, logger logging.Logger) *CatalogService {
	return &CatalogService{client: c, logger: logger}
}

func (s *CatalogService) ListArtworks(ctx context.Context, q client.ListQuery) ([]models.Artwork, int, error) {
	page, err := s.client.ListArtworks(ctx, q)
	if err != nil {
		return nil, 0, err
	}
	s.mu.Lock()
	s.artworks = slices.Clone(page.Items)
	s.mu.Unlock()
	return page.Items, page.Total, nil
}

// Artworks returns the cached list from the last ListArtworks call.
func (s *CatalogService) Artworks() []models.Artwork {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.artworks)
}

func validateArtwork(in models.ArtworkInput) error {
	if strings.TrimSpace(in.Title) == "" {
		return fmt.Errorf("%w: title is required", common.ErrorValidation)
	}
	if in.Year < 0 {
		return fmt.Errorf("%w: year must not be negative", common.ErrorValidation)
	}
	if in.Price < 0 {
		return fmt.Errorf("%w: price must not be negative", common.ErrorValidation)
	}
	return nil
}

func (s *CatalogService) GetArtwork(ctx context.Context, id string) (*models.Artwork, error) {
	return s.client.GetArtwork(ctx, id)
}

func (s *CatalogService) CreateArtwork(ctx context.Context, in models.ArtworkInput) (*models.Artwork, error) {
	if err := validateArtwork(in); err != nil {
		return nil, err
	}
	a, err := s.client.CreateArtwork(ctx, in)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	s.artworks = append(s.artworks, *a)
	s.mu.Unlock()
	return a, nil
}

func (s *CatalogService) UpdateArtwork(ctx context.Context, id string, in models.ArtworkInput) (*models.Artwork, error) {
	if err := validateArtwork(in); err != nil {
		return nil, err
	}
	a, err := s.client.UpdateArtwork(ctx, id, in)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	replace(s.artworks, func(x models.Artwork) bool { return x.ID == id }, *a)
	s.mu.Unlock()
	return a, nil
}

// DeleteArtwork drops the artwork from the cached list at once and puts it
// back if the backend refuses.
func (s *CatalogService) DeleteArtwork(ctx context.Context, id string) error {
	return optimisticRemove(ctx, s, &s.artworks, func(x models.Artwork) bool { return x.ID == id },
		func() error { return s.client.DeleteArtwork(ctx, id) })
}

func (s *CatalogService) ListGalleries(ctx context.Context, q client.ListQuery) ([]models.Gallery, int, error) {
	page, err := s.client.ListGalleries(ctx, q)
	if err != nil {
		return nil, 0, err
	}
	s.mu.Lock()
	s.galleries = slices.Clone(page.Items)
	s.mu.Unlock()
	return page.Items, page.Total, nil
}

func (s *CatalogService) Galleries() []models.Gallery {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.galleries)
}

func (s *CatalogService) GetGallery(ctx context.Context, id string) (*models.Gallery, error) {
	return s.client.GetGallery(ctx, id)
}

func (s *CatalogService) CreateGallery(ctx context.Context, in models.GalleryInput) (*models.Gallery, error) {
	if strings.TrimSpace(in.Name) == "" {
		return nil, fmt.Errorf("%w: name is required", common.ErrorValidation)
	}
	g, err := s.client.CreateGallery(ctx, in)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	s.galleries = append(s.galleries, *g)
	s.mu.Unlock()
	return g, nil
}

func (s *CatalogService) UpdateGallery(ctx context.Context, id string, in models.GalleryInput) (*models.Gallery, error) {
	if strings.TrimSpace(in.Name) == "" {
		return nil, fmt.Errorf("%w: name is required", common.ErrorValidation)
	}
	g, err := s.client.UpdateGallery(ctx, id, in)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	replace(s.galleries, func(x models.Gallery) bool { return x.ID == id }, *g)
	s.mu.Unlock()
	return g, nil
}

func (s *CatalogService) DeleteGallery(ctx context.Context, id string) error {
	return optimisticRemove(ctx, s, &s.galleries, func(x models.Gallery) bool { return x.ID == id },
		func() error { return s.client.DeleteGallery(ctx, id) })
}

func replace[T any](list []T, match func(T) bool, v T) {
	if i := slices.IndexFunc(list, match); i >= 0 {
		list[i] = v
	}
}

func optimisticRemove[T any](ctx context.Context, s *CatalogService, list *[]T, match func(T) bool, del func() error) error {
	s.mu.Lock()
	i := slices.IndexFunc(*list, match)
	var removed T
	if i >= 0 {
		removed = (*list)[i]
		*list = slices.Delete(*list, i, i+1)
	}
	s.mu.Unlock()

	err := del()
	if err == nil || i < 0 {
		return err
	}

	s.logger.Warn(ctx, "delete failed, restoring item", "error", err)
	s.mu.Lock()
	*list = slices.Insert(*list, min(i, len(*list)), removed)
	s.mu.Unlock()
	return err
}
