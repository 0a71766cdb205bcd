package drive

import (
	"context"
	"io"
)

// File describes an object stored in the remote drive.
type File struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	MimeType     string `json:"mimeType"`
	WebLink      string `json:"webViewLink"`
	DownloadLink string `json:"webContentLink,omitempty"`
	Size         int64  `json:"size,omitempty"`
}

// Client is the remote document store the registration pipeline writes into.
// Uploads are idempotent per (folder, name) pair.
type Client interface {
	// EnsureFolder returns the folder with the given name under parentID,
	// creating it when absent.
	EnsureFolder(ctx context.Context, parentID, name string) (*File, error)

	// Upsert uploads content under the given name inside folderID. When a file
	// with that name already exists its content is replaced in place so the
	// file ID and any shared links stay stable.
	Upsert(ctx context.Context, folderID, name, mimeType string, content io.Reader) (*File, error)

	// AllowPublicRead grants anyone-with-the-link read access.
	AllowPublicRead(ctx context.Context, fileID string) error

	// List returns the files directly inside folderID.
	List(ctx context.Context, folderID string) ([]*File, error)
}
