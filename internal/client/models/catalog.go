package models

import "time"

type Artwork struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	ArtistID    string    `json:"artistId"`
	GalleryID   *string   `json:"galleryId,omitempty"`
	Medium      string    `json:"medium,omitempty"`
	Year        int       `json:"year,omitempty"`
	Price       float64   `json:"price,omitempty"`
	ImageURL    string    `json:"imageUrl,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// ArtworkInput is the create/update payload for an artwork.
type ArtworkInput struct {
	Title       string  `json:"title"`
	Description string  `json:"description,omitempty"`
	ArtistID    string  `json:"artistId,omitempty"`
	GalleryID   *string `json:"galleryId,omitempty"`
	Medium      string  `json:"medium,omitempty"`
	Year        int     `json:"year,omitempty"`
	Price       float64 `json:"price,omitempty"`
	ImageURL    string  `json:"imageUrl,omitempty"`
}

type Gallery struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	Location    string    `json:"location,omitempty"`
	ManagerID   string    `json:"managerId"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// GalleryInput is the create/update payload for a gallery.
type GalleryInput struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Location    string `json:"location,omitempty"`
	ManagerID   string `json:"managerId,omitempty"`
}
