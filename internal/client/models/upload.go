package models

import (
	"io"
	"time"
)

// UploadStatus is a step of an upload item's lifecycle.
type UploadStatus string

const (
	UploadPending   UploadStatus = "pending"
	UploadUploading UploadStatus = "uploading"
	UploadCompleted UploadStatus = "completed"
	UploadFailed    UploadStatus = "failed"
	UploadCancelled UploadStatus = "cancelled"
)

// Terminal reports whether no further progress is expected in this state.
func (s UploadStatus) Terminal() bool {
	return s == UploadCompleted || s == UploadFailed || s == UploadCancelled
}

// ProgressFunc receives transfer progress in bytes.
type ProgressFunc func(loaded, total int64)

// FileSource describes a file chosen for upload. Open may be called more
// than once (a retry re-reads the same file).
type FileSource struct {
	Name     string
	Size     int64
	MimeType string
	Open     func() (io.ReadCloser, error)
}

// UploadItem is one file's upload lifecycle.
//
// Progress == 100 iff Status == UploadCompleted; Error != "" iff
// Status == UploadFailed.
type UploadItem struct {
	ID        string
	File      FileSource
	Progress  int
	Status    UploadStatus
	URL       string
	Error     string
	CreatedAt time.Time
}

// UploadResult is the backend's answer to POST /uploads.
type UploadResult struct {
	Success  bool   `json:"success"`
	FileID   string `json:"fileId"`
	URL      string `json:"url"`
	Filename string `json:"filename"`
	Size     int64  `json:"size"`
	MimeType string `json:"mimeType"`
}
