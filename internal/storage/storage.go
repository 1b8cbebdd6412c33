// Package storage records file metadata for uploads. File contents are not
// kept; each file gets a stable download URL derived from its id.
package storage

import (
	"time"

	"github.com/wondertwin-ai/backoffice/pkg/store"
)

// DefaultContentType is used when an upload does not name one.
const DefaultContentType = "application/octet-stream"

// File is stored file metadata.
type File struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	ContentType string    `json:"contentType"`
	Size        int64     `json:"size"`
	URL         string    `json:"url"`
	CreatedAt   time.Time `json:"createdAt"`
}

// UploadInput is a validated upload request.
type UploadInput struct {
	Name        string
	ContentType string
	Size        int64
}

// Service owns stored files.
type Service struct {
	files *store.Store[File]
	clock *store.Clock
}

// New creates a storage service.
func New(clock *store.Clock) *Service {
	return &Service{files: store.New[File]("file", store.WithRandomIDs()), clock: clock}
}

// Upload records a new file.
func (s *Service) Upload(in UploadInput) File {
	contentType := in.ContentType
	if contentType == "" {
		contentType = DefaultContentType
	}
	return s.files.Create(func(id string) File {
		return File{
			ID:          id,
			Name:        in.Name,
			ContentType: contentType,
			Size:        in.Size,
			URL:         "/storage/" + id,
			CreatedAt:   s.clock.Now(),
		}
	})
}

// Get returns the file with id.
func (s *Service) Get(id string) (File, bool) {
	return s.files.Get(id)
}

// Remove deletes the file with id and reports whether it existed.
func (s *Service) Remove(id string) bool {
	return s.files.Delete(id)
}

// List returns every file, oldest first.
func (s *Service) List() []File {
	return s.files.List()
}

// Snapshot returns every file in upload order.
func (s *Service) Snapshot() []File {
	return s.files.List()
}

// Load replaces all files.
func (s *Service) Load(files []File) {
	entries := make([]store.Entry[File], 0, len(files))
	for _, f := range files {
		entries = append(entries, store.Entry[File]{ID: f.ID, Item: f})
	}
	s.files.Load(entries)
}

// Reset removes every file.
func (s *Service) Reset() {
	s.files.Reset()
}
